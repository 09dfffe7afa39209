package insurance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightsurety/core/account"
	"flightsurety/core/airline"
	"flightsurety/core/errs"
	"flightsurety/core/flight"
	"flightsurety/core/params"
	"flightsurety/core/state"
	"flightsurety/core/storage"
	"flightsurety/core/treasury"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

var (
	operator  = ids.AddressFromSeed(1)
	carrier   = ids.AddressFromSeed(101)
	passenger = ids.AddressFromSeed(201)
	stranger  = ids.AddressFromSeed(202)
	nd1309    = flight.Key{Airline: carrier, Code: "ND1309", Timestamp: 1_700_000_000}
)

type fixture struct {
	cs     *state.ChainState
	ledger *Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.NewMemStorage()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cs, err := state.NewChainState(db)
	require.NoError(t, err)

	p := params.Default()
	_, err = cs.Update("genesis", func(tx *state.Tx) error {
		require.NoError(t, account.SetOperator(tx, operator))
		require.NoError(t, airline.Bootstrap(tx, carrier, "Carrier"))
		require.NoError(t, airline.New(p).Fund(tx, carrier, 10*units.Ether))
		require.NoError(t, account.AuthorizeCaller(tx, operator, passenger))
		_, err := flight.Register(tx, nd1309)
		return err
	})
	require.NoError(t, err)
	return &fixture{cs: cs, ledger: New(p)}
}

func (f *fixture) buy(premium units.Amount, who ids.Address) error {
	_, err := f.cs.Update("test", func(tx *state.Tx) error {
		_, err := f.ledger.Buy(tx, nd1309, premium, who)
		return err
	})
	return err
}

func (f *fixture) finalize(t *testing.T, status flight.StatusCode) {
	_, err := f.cs.Update("test", func(tx *state.Tx) error {
		if _, err := flight.Finalize(tx, nd1309.ID(), status); err != nil {
			return err
		}
		return f.ledger.Settle(tx, nd1309.ID(), status)
	})
	require.NoError(t, err)
}

func (f *fixture) credit(t *testing.T, who ids.Address) units.Amount {
	var c units.Amount
	require.NoError(t, f.cs.View(func(tx *state.Tx) error {
		var err error
		c, err = f.ledger.CheckCredit(tx, who)
		return err
	}))
	return c
}

func TestBuyValidation(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.buy(units.Ether, stranger), errs.ErrUnauthorized)
	assert.ErrorIs(t, f.buy(0, passenger), errs.ErrInvalidAmount)
	assert.ErrorIs(t, f.buy(units.Ether+1, passenger), errs.ErrInvalidAmount)

	require.NoError(t, f.buy(units.Ether, passenger))
	assert.ErrorIs(t, f.buy(units.Ether/2, passenger), errs.ErrAlreadyInsured)

	_, err := f.cs.Update("test", func(tx *state.Tx) error {
		_, err := f.ledger.Buy(tx, flight.Key{Airline: carrier, Code: "XX1", Timestamp: 1}, units.Ether, passenger)
		return err
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, f.cs.View(func(tx *state.Tx) error {
		ok, err := f.ledger.IsFlightInsured(tx, nd1309.ID(), passenger)
		require.NoError(t, err)
		assert.True(t, ok)

		tr, err := treasury.Get(tx)
		require.NoError(t, err)
		assert.Equal(t, 11*units.Ether, tr.Balance)
		return nil
	}))
}

func TestBuyAfterFinalization(t *testing.T) {
	f := newFixture(t)
	f.finalize(t, flight.StatusOnTime)
	assert.ErrorIs(t, f.buy(units.Ether, passenger), errs.ErrAlreadyFinalized)
}

func TestSettleCreditsOnlyAirlineDelay(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.buy(units.Ether, passenger))
	f.finalize(t, flight.StatusLateWeather)
	assert.Zero(t, f.credit(t, passenger))
}

func TestSettleCreditsOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.buy(units.Ether, passenger))
	f.finalize(t, flight.StatusLateAirline)
	assert.Equal(t, units.Amount(1_500_000_000), f.credit(t, passenger))

	// A repeated settlement must not credit again.
	_, err := f.cs.Update("test", func(tx *state.Tx) error {
		return f.ledger.Settle(tx, nd1309.ID(), flight.StatusLateAirline)
	})
	require.NoError(t, err)
	assert.Equal(t, units.Amount(1_500_000_000), f.credit(t, passenger))
}

func TestPay(t *testing.T) {
	f := newFixture(t)

	_, err := f.cs.Update("test", func(tx *state.Tx) error {
		_, err := f.ledger.Pay(tx, passenger)
		return err
	})
	assert.ErrorIs(t, err, errs.ErrNoFunds)

	require.NoError(t, f.buy(units.Ether, passenger))
	f.finalize(t, flight.StatusLateAirline)

	r, err := f.cs.Update("test", func(tx *state.Tx) error {
		p, err := f.ledger.Pay(tx, passenger)
		assert.Equal(t, units.Amount(1_500_000_000), p.Amount)
		return err
	})
	require.NoError(t, err)
	require.Len(t, r.Events, 1)
	assert.Zero(t, f.credit(t, passenger))

	_, err = f.cs.Update("test", func(tx *state.Tx) error {
		_, err := f.ledger.Pay(tx, passenger)
		return err
	})
	assert.ErrorIs(t, err, errs.ErrNoFunds)
}

func TestPayRollsBackWhenReserveIsShort(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.buy(units.Ether, passenger))

	// Plant a credit larger than everything the treasury holds.
	_, err := f.cs.Update("test", func(tx *state.Tx) error {
		return tx.Put(creditKey(passenger), 100*units.Ether)
	})
	require.NoError(t, err)

	_, err = f.cs.Update("test", func(tx *state.Tx) error {
		_, err := f.ledger.Pay(tx, passenger)
		return err
	})
	assert.ErrorIs(t, err, errs.ErrInsufficientReserve)
	assert.Equal(t, 100*units.Ether, f.credit(t, passenger))
}
