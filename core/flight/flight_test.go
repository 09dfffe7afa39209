package flight

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"flightsurety/core/airline"
	"flightsurety/core/errs"
	"flightsurety/core/params"
	"flightsurety/core/state"
	"flightsurety/core/storage"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

var first = ids.AddressFromSeed(101)

func newState(t *testing.T, fund bool) *state.ChainState {
	t.Helper()
	db, err := storage.NewMemStorage()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cs, err := state.NewChainState(db)
	require.NoError(t, err)

	gov := airline.New(params.Default())
	_, err = cs.Update("genesis", func(tx *state.Tx) error {
		if err := airline.Bootstrap(tx, first, "First Air"); err != nil {
			return err
		}
		if fund {
			return gov.Fund(tx, first, 10*units.Ether)
		}
		return nil
	})
	require.NoError(t, err)
	return cs
}

func TestKeyIDIsKeccakOfPackedFields(t *testing.T) {
	k := Key{Airline: first, Code: "ND1309", Timestamp: 1_700_000_000}

	packed := append([]byte{}, first[:]...)
	packed = append(packed, []byte("ND1309")...)
	word := make([]byte, 32)
	word[28], word[29], word[30], word[31] = 0x65, 0x53, 0xf1, 0x00
	packed = append(packed, word...)

	h := sha3.NewLegacyKeccak256()
	h.Write(packed)
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), k.ID().String())

	other := k
	other.Timestamp++
	assert.NotEqual(t, k.ID(), other.ID())
}

func TestRegisterRequiresFundedAirline(t *testing.T) {
	cs := newState(t, false)
	_, err := cs.Update("test", func(tx *state.Tx) error {
		_, err := Register(tx, Key{Airline: first, Code: "ND1309", Timestamp: 1})
		return err
	})
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestRegisterAndFinalize(t *testing.T) {
	cs := newState(t, true)
	k := Key{Airline: first, Code: "ND1309", Timestamp: 1}

	_, err := cs.Update("test", func(tx *state.Tx) error {
		_, err := Register(tx, k)
		return err
	})
	require.NoError(t, err)

	_, err = cs.Update("test", func(tx *state.Tx) error {
		_, err := Register(tx, k)
		return err
	})
	assert.ErrorIs(t, err, errs.ErrAlreadyRegistered)

	_, err = cs.Update("test", func(tx *state.Tx) error {
		require.NoError(t, MarkPending(tx, k.ID()))
		_, err := Finalize(tx, k.ID(), StatusLateAirline)
		return err
	})
	require.NoError(t, err)

	_, err = cs.Update("test", func(tx *state.Tx) error {
		_, err := Finalize(tx, k.ID(), StatusOnTime)
		return err
	})
	assert.ErrorIs(t, err, errs.ErrAlreadyFinalized)

	require.NoError(t, cs.View(func(tx *state.Tx) error {
		status, final, err := Status(tx, k.ID())
		require.NoError(t, err)
		assert.True(t, final)
		assert.Equal(t, StatusLateAirline, status)

		all, err := List(tx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.False(t, all[0].Pending)

		_, _, err = Status(tx, Key{Airline: first, Code: "XX1", Timestamp: 1}.ID())
		assert.ErrorIs(t, err, errs.ErrNotFound)
		return nil
	}))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("LATE_AIRLINE")
	require.NoError(t, err)
	assert.Equal(t, StatusLateAirline, s)

	s, err = ParseStatus("30")
	require.NoError(t, err)
	assert.Equal(t, StatusLateWeather, s)

	_, err = ParseStatus("15")
	assert.Error(t, err)
	assert.False(t, StatusCode(15).Valid())
}
