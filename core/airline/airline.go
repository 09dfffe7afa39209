package airline

import (
	"fmt"
	"strconv"
	"time"

	"flightsurety/core/account"
	"flightsurety/core/errs"
	"flightsurety/core/events"
	"flightsurety/core/params"
	"flightsurety/core/state"
	"flightsurety/core/treasury"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

const prefix = "airline:"

// Airline is a member (or candidate member) of the airline group. Funded
// implies Registered.
type Airline struct {
	Address      ids.Address   `json:"address"`
	Name         string        `json:"name"`
	Registered   bool          `json:"registered"`
	Funded       bool          `json:"funded"`
	FundedAmount units.Amount  `json:"fundedAmount"`
	Votes        []ids.Address `json:"votes,omitempty"`
	RegisteredAt time.Time     `json:"registeredAt,omitempty"`
}

func (a Airline) hasVote(voter ids.Address) bool {
	for _, v := range a.Votes {
		if v == voter {
			return true
		}
	}
	return false
}

// Result reports what a registration call did.
type Result struct {
	Registered bool `json:"registered"`
	Votes      int  `json:"votes"`
	Required   int  `json:"required"`
}

// Governance applies the membership rules.
type Governance struct {
	Params params.Params
}

func New(p params.Params) *Governance {
	return &Governance{Params: p}
}

func key(addr ids.Address) string {
	return prefix + addr.String()
}

// Get returns the airline record and whether it exists.
func Get(tx *state.Tx, addr ids.Address) (Airline, bool, error) {
	var a Airline
	ok, err := tx.Get(key(addr), &a)
	return a, ok, err
}

func IsRegistered(tx *state.Tx, addr ids.Address) (bool, error) {
	a, _, err := Get(tx, addr)
	return a.Registered, err
}

func IsFunded(tx *state.Tx, addr ids.Address) (bool, error) {
	a, _, err := Get(tx, addr)
	return a.Funded, err
}

// List returns every airline record, candidates included.
func List(tx *state.Tx) ([]Airline, error) {
	keys, err := tx.Keys(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]Airline, 0, len(keys))
	for _, k := range keys {
		var a Airline
		if _, err := tx.Get(k, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Counts returns the number of registered and funded airlines.
func Counts(tx *state.Tx) (registered, funded int, err error) {
	all, err := List(tx)
	if err != nil {
		return 0, 0, err
	}
	for _, a := range all {
		if a.Registered {
			registered++
		}
		if a.Funded {
			funded++
		}
	}
	return registered, funded, nil
}

// TotalAirlines is the number of registered airlines.
func TotalAirlines(tx *state.Tx) (int, error) {
	registered, _, err := Counts(tx)
	return registered, err
}

// Bootstrap registers the first airline at genesis, unfunded.
func Bootstrap(tx *state.Tx, addr ids.Address, name string) error {
	if addr.IsZero() {
		return fmt.Errorf("first airline: %w", ids.ErrInvalidAddress)
	}
	a := Airline{Address: addr, Name: name}
	return admit(tx, a)
}

func admit(tx *state.Tx, a Airline) error {
	a.Registered = true
	a.RegisteredAt = tx.Now()
	if err := tx.Put(key(a.Address), a); err != nil {
		return err
	}
	if err := account.Update(tx, a.Address, func(acct *account.Account) { acct.RegisteredAirline = true }); err != nil {
		return err
	}
	tx.Emit(events.AirlineRegistered, map[string]string{
		"airline": a.Address.String(),
		"name":    a.Name,
	})
	return nil
}

// Register proposes candidate on behalf of caller. While fewer than the
// bootstrap number of airlines are registered, any funded airline admits the
// candidate directly. After that the call counts as a vote and the candidate
// is admitted once ceil(funded/2) distinct funded airlines have voted.
func (g *Governance) Register(tx *state.Tx, caller, candidate ids.Address, name string) (Result, error) {
	funded, err := IsFunded(tx, caller)
	if err != nil {
		return Result{}, err
	}
	if !funded {
		return Result{}, fmt.Errorf("caller %s is not a funded airline: %w", caller, errs.ErrUnauthorized)
	}
	if candidate.IsZero() {
		return Result{}, fmt.Errorf("candidate: %w", ids.ErrInvalidAddress)
	}

	cand, exists, err := Get(tx, candidate)
	if err != nil {
		return Result{}, err
	}
	if cand.Registered {
		return Result{}, fmt.Errorf("airline %s: %w", candidate, errs.ErrAlreadyRegistered)
	}
	if !exists {
		cand = Airline{Address: candidate}
	}
	if name != "" {
		cand.Name = name
	}

	registered, fundedCount, err := Counts(tx)
	if err != nil {
		return Result{}, err
	}
	if registered < g.Params.BootstrapAirlines {
		if err := admit(tx, cand); err != nil {
			return Result{}, err
		}
		return Result{Registered: true}, nil
	}

	required := params.VotesRequired(fundedCount)
	if cand.hasVote(caller) {
		return Result{Votes: len(cand.Votes), Required: required}, nil
	}
	cand.Votes = append(cand.Votes, caller)
	tx.Emit(events.AirlineVoted, map[string]string{
		"airline":  candidate.String(),
		"voter":    caller.String(),
		"votes":    strconv.Itoa(len(cand.Votes)),
		"required": strconv.Itoa(required),
	})

	res := Result{Votes: len(cand.Votes), Required: required}
	if len(cand.Votes) >= required {
		if err := admit(tx, cand); err != nil {
			return Result{}, err
		}
		res.Registered = true
		return res, nil
	}
	return res, tx.Put(key(candidate), cand)
}

// Fund deposits amount for a registered airline. The first deposit of at
// least the seed funding makes the airline funded; later deposits are
// absorbed.
func (g *Governance) Fund(tx *state.Tx, caller ids.Address, amount units.Amount) error {
	a, _, err := Get(tx, caller)
	if err != nil {
		return err
	}
	if !a.Registered {
		return fmt.Errorf("caller %s is not a registered airline: %w", caller, errs.ErrUnauthorized)
	}
	if amount < g.Params.SeedFunding {
		return fmt.Errorf("funding %s below %s: %w", amount, g.Params.SeedFunding, errs.ErrInsufficientFunds)
	}
	total, ok := a.FundedAmount.Add(amount)
	if !ok {
		return fmt.Errorf("funding %s: %w", amount, errs.ErrInvalidAmount)
	}
	a.Funded = true
	a.FundedAmount = total
	if err := tx.Put(key(caller), a); err != nil {
		return err
	}
	if err := account.Update(tx, caller, func(acct *account.Account) { acct.FundedAirline = true }); err != nil {
		return err
	}
	if err := treasury.Deposit(tx, amount, treasury.SourceSeedFunding); err != nil {
		return err
	}
	tx.Emit(events.AirlineFunded, map[string]string{
		"airline": caller.String(),
		"amount":  strconv.FormatUint(uint64(amount), 10),
	})
	return nil
}
