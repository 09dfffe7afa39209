// Package treasury tracks the ledger's operating balance: airline seed
// funding, oracle registration fees and escrowed premiums flow in, passenger
// payouts flow out.
package treasury

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"flightsurety/core/errs"
	"flightsurety/core/state"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

const (
	balanceKey   = "treasury:balance"
	payoutPrefix = "payout:"
)

type Source string

const (
	SourceSeedFunding Source = "seed_funding"
	SourceOracleFee   Source = "oracle_fee"
	SourcePremium     Source = "premium"
)

type Treasury struct {
	Balance  units.Amount            `json:"balance"`
	TotalIn  units.Amount            `json:"totalIn"`
	TotalOut units.Amount            `json:"totalOut"`
	BySource map[Source]units.Amount `json:"bySource,omitempty"`
}

// Payout is the receipt of one withdrawal.
type Payout struct {
	ID        uuid.UUID    `json:"id"`
	Passenger ids.Address  `json:"passenger"`
	Amount    units.Amount `json:"amount"`
	PaidAt    time.Time    `json:"paidAt"`
}

func Get(tx *state.Tx) (Treasury, error) {
	var t Treasury
	if _, err := tx.Get(balanceKey, &t); err != nil {
		return t, err
	}
	return t, nil
}

func Deposit(tx *state.Tx, amount units.Amount, src Source) error {
	t, err := Get(tx)
	if err != nil {
		return err
	}
	bal, ok := t.Balance.Add(amount)
	if !ok {
		return fmt.Errorf("deposit %s: %w", amount, errs.ErrInvalidAmount)
	}
	t.Balance = bal
	t.TotalIn, _ = t.TotalIn.Add(amount)
	if t.BySource == nil {
		t.BySource = make(map[Source]units.Amount)
	}
	t.BySource[src], _ = t.BySource[src].Add(amount)
	return tx.Put(balanceKey, t)
}

// Withdraw debits amount and records a payout to passenger.
func Withdraw(tx *state.Tx, passenger ids.Address, amount units.Amount) (Payout, error) {
	t, err := Get(tx)
	if err != nil {
		return Payout{}, err
	}
	if t.Balance < amount {
		return Payout{}, fmt.Errorf("payout %s exceeds reserve %s: %w", amount, t.Balance, errs.ErrInsufficientReserve)
	}
	t.Balance -= amount
	t.TotalOut, _ = t.TotalOut.Add(amount)
	if err := tx.Put(balanceKey, t); err != nil {
		return Payout{}, err
	}

	p := Payout{
		ID:        uuid.New(),
		Passenger: passenger,
		Amount:    amount,
		PaidAt:    tx.Now(),
	}
	if err := tx.Put(fmt.Sprintf("%s%s:%s", payoutPrefix, passenger, p.ID), p); err != nil {
		return Payout{}, err
	}
	return p, nil
}

// Payouts lists every payout made to passenger.
func Payouts(tx *state.Tx, passenger ids.Address) ([]Payout, error) {
	keys, err := tx.Keys(payoutPrefix + passenger.String() + ":")
	if err != nil {
		return nil, err
	}
	out := make([]Payout, 0, len(keys))
	for _, k := range keys {
		var p Payout
		if _, err := tx.Get(k, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
