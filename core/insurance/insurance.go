package insurance

import (
	"fmt"
	"strconv"
	"time"

	"flightsurety/core/account"
	"flightsurety/core/errs"
	"flightsurety/core/events"
	"flightsurety/core/flight"
	"flightsurety/core/params"
	"flightsurety/core/state"
	"flightsurety/core/treasury"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

const (
	policyPrefix = "policy:"
	creditPrefix = "credit:"
)

type Policy struct {
	FlightID    ids.ID       `json:"flightId"`
	Flight      flight.Key   `json:"flight"`
	Passenger   ids.Address  `json:"passenger"`
	Premium     units.Amount `json:"premium"`
	Credited    bool         `json:"credited"`
	PurchasedAt time.Time    `json:"purchasedAt"`
}

// Ledger holds premiums in escrow and pays out credits.
type Ledger struct {
	Params params.Params
}

func New(p params.Params) *Ledger {
	return &Ledger{Params: p}
}

func policyKey(id ids.ID, passenger ids.Address) string {
	return policyPrefix + id.String() + ":" + passenger.String()
}

func creditKey(passenger ids.Address) string {
	return creditPrefix + passenger.String()
}

// Buy insures passenger on the flight for premium.
func (l *Ledger) Buy(tx *state.Tx, k flight.Key, premium units.Amount, passenger ids.Address) (Policy, error) {
	authorized, err := account.IsAuthorizedCaller(tx, passenger)
	if err != nil {
		return Policy{}, err
	}
	if !authorized {
		return Policy{}, fmt.Errorf("passenger %s: %w", passenger, errs.ErrUnauthorized)
	}
	if premium == 0 || premium > l.Params.MaxInsuranceAmount {
		return Policy{}, fmt.Errorf("premium %s outside (0, %s]: %w", premium, l.Params.MaxInsuranceAmount, errs.ErrInvalidAmount)
	}

	id := k.ID()
	f, err := flight.MustGet(tx, id)
	if err != nil {
		return Policy{}, err
	}
	if f.Finalized {
		return Policy{}, fmt.Errorf("flight %s: %w", k, errs.ErrAlreadyFinalized)
	}
	if insured, err := l.IsFlightInsured(tx, id, passenger); err != nil {
		return Policy{}, err
	} else if insured {
		return Policy{}, fmt.Errorf("flight %s: %w", k, errs.ErrAlreadyInsured)
	}

	p := Policy{
		FlightID:    id,
		Flight:      f.Key,
		Passenger:   passenger,
		Premium:     premium,
		PurchasedAt: tx.Now(),
	}
	if err := tx.Put(policyKey(id, passenger), p); err != nil {
		return Policy{}, err
	}
	if err := treasury.Deposit(tx, premium, treasury.SourcePremium); err != nil {
		return Policy{}, err
	}

	attrs := f.Key.Attributes()
	attrs["passenger"] = passenger.String()
	attrs["premium"] = strconv.FormatUint(uint64(premium), 10)
	tx.Emit(events.InsurancePurchased, attrs)
	return p, nil
}

func (l *Ledger) IsFlightInsured(tx *state.Tx, id ids.ID, passenger ids.Address) (bool, error) {
	return tx.Get(policyKey(id, passenger), &Policy{})
}

func (l *Ledger) Policy(tx *state.Tx, id ids.ID, passenger ids.Address) (Policy, bool, error) {
	var p Policy
	ok, err := tx.Get(policyKey(id, passenger), &p)
	return p, ok, err
}

// Policies lists every policy sold for the flight.
func (l *Ledger) Policies(tx *state.Tx, id ids.ID) ([]Policy, error) {
	keys, err := tx.Keys(policyPrefix + id.String() + ":")
	if err != nil {
		return nil, err
	}
	out := make([]Policy, 0, len(keys))
	for _, key := range keys {
		var p Policy
		if _, err := tx.Get(key, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Settle is run when a flight is finalized. Only an airline-caused delay
// pays; each policy is credited at most once.
func (l *Ledger) Settle(tx *state.Tx, id ids.ID, status flight.StatusCode) error {
	if status != flight.StatusLateAirline {
		return nil
	}
	policies, err := l.Policies(tx, id)
	if err != nil {
		return err
	}
	for _, p := range policies {
		if p.Credited {
			continue
		}
		payout, ok := p.Premium.MulRatio(l.Params.PayoutNumerator, l.Params.PayoutDenominator)
		if !ok {
			return fmt.Errorf("payout for %s: %w", p.Passenger, errs.ErrInvalidAmount)
		}
		balance, err := l.CheckCredit(tx, p.Passenger)
		if err != nil {
			return err
		}
		if balance, ok = balance.Add(payout); !ok {
			return fmt.Errorf("credit for %s: %w", p.Passenger, errs.ErrInvalidAmount)
		}
		if err := tx.Put(creditKey(p.Passenger), balance); err != nil {
			return err
		}
		p.Credited = true
		if err := tx.Put(policyKey(id, p.Passenger), p); err != nil {
			return err
		}

		attrs := p.Flight.Attributes()
		attrs["passenger"] = p.Passenger.String()
		attrs["amount"] = strconv.FormatUint(uint64(payout), 10)
		tx.Emit(events.InsureeCredited, attrs)
	}
	return nil
}

func (l *Ledger) CheckCredit(tx *state.Tx, passenger ids.Address) (units.Amount, error) {
	var balance units.Amount
	if _, err := tx.Get(creditKey(passenger), &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Pay withdraws the passenger's entire credit. The balance is zeroed and the
// treasury debited in the same transition.
func (l *Ledger) Pay(tx *state.Tx, passenger ids.Address) (treasury.Payout, error) {
	balance, err := l.CheckCredit(tx, passenger)
	if err != nil {
		return treasury.Payout{}, err
	}
	if balance == 0 {
		return treasury.Payout{}, fmt.Errorf("passenger %s: %w", passenger, errs.ErrNoFunds)
	}
	if err := tx.Delete(creditKey(passenger)); err != nil {
		return treasury.Payout{}, err
	}
	payout, err := treasury.Withdraw(tx, passenger, balance)
	if err != nil {
		return treasury.Payout{}, err
	}
	tx.Emit(events.InsureePaid, map[string]string{
		"passenger": passenger.String(),
		"amount":    strconv.FormatUint(uint64(balance), 10),
		"payout":    payout.ID.String(),
	})
	return payout, nil
}
