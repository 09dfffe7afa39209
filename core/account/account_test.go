package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightsurety/core/errs"
	"flightsurety/core/state"
	"flightsurety/core/storage"
	"flightsurety/types/ids"
)

var (
	operator  = ids.AddressFromSeed(1)
	passenger = ids.AddressFromSeed(2)
)

func newState(t *testing.T) *state.ChainState {
	t.Helper()
	db, err := storage.NewMemStorage()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cs, err := state.NewChainState(db)
	require.NoError(t, err)

	_, err = cs.Update("genesis", func(tx *state.Tx) error {
		return SetOperator(tx, operator)
	})
	require.NoError(t, err)
	return cs
}

func TestAuthorizeCaller(t *testing.T) {
	cs := newState(t)

	_, err := cs.Update("test", func(tx *state.Tx) error {
		return AuthorizeCaller(tx, passenger, passenger)
	})
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = cs.Update("test", func(tx *state.Tx) error {
		return AuthorizeCaller(tx, operator, passenger)
	})
	require.NoError(t, err)

	require.NoError(t, cs.View(func(tx *state.Tx) error {
		ok, err := IsAuthorizedCaller(tx, passenger)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	}))

	_, err = cs.Update("test", func(tx *state.Tx) error {
		return DeauthorizeCaller(tx, operator, passenger)
	})
	require.NoError(t, err)

	require.NoError(t, cs.View(func(tx *state.Tx) error {
		ok, err := IsAuthorizedCaller(tx, passenger)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestUnknownAccountIsBlank(t *testing.T) {
	cs := newState(t)
	require.NoError(t, cs.View(func(tx *state.Tx) error {
		a, err := Get(tx, ids.AddressFromSeed(99))
		require.NoError(t, err)
		assert.Equal(t, ids.AddressFromSeed(99), a.Address)
		assert.False(t, a.AuthorizedCaller)
		assert.False(t, a.RegisteredAirline)
		return nil
	}))
}

func TestSetOperatorRejectsZero(t *testing.T) {
	cs := newState(t)
	_, err := cs.Update("test", func(tx *state.Tx) error {
		return SetOperator(tx, ids.ZeroAddress)
	})
	assert.ErrorIs(t, err, ids.ErrInvalidAddress)
}
