package account

import (
	"fmt"
	"time"

	"flightsurety/core/errs"
	"flightsurety/core/events"
	"flightsurety/core/state"
	"flightsurety/types/ids"
)

const (
	prefix      = "account:"
	operatorKey = "meta:operator"
)

// Account holds the role flags of one identity. Accounts are created on the
// first action that touches them and are never deleted.
type Account struct {
	Address           ids.Address `json:"address"`
	AuthorizedCaller  bool        `json:"authorizedCaller"`
	RegisteredAirline bool        `json:"registeredAirline"`
	FundedAirline     bool        `json:"fundedAirline"`
	RegisteredOracle  bool        `json:"registeredOracle"`
	CreatedAt         time.Time   `json:"createdAt"`
}

func key(addr ids.Address) string {
	return prefix + addr.String()
}

// Get returns the account for addr, or a fresh unsaved one.
func Get(tx *state.Tx, addr ids.Address) (Account, error) {
	var a Account
	ok, err := tx.Get(key(addr), &a)
	if err != nil {
		return a, err
	}
	if !ok {
		return Account{Address: addr, CreatedAt: tx.Now()}, nil
	}
	return a, nil
}

func Save(tx *state.Tx, a Account) error {
	return tx.Put(key(a.Address), a)
}

// Update loads the account for addr, applies fn and saves it.
func Update(tx *state.Tx, addr ids.Address, fn func(a *Account)) error {
	a, err := Get(tx, addr)
	if err != nil {
		return err
	}
	fn(&a)
	return Save(tx, a)
}

func SetOperator(tx *state.Tx, addr ids.Address) error {
	if addr.IsZero() {
		return fmt.Errorf("operator: %w", ids.ErrInvalidAddress)
	}
	return tx.Put(operatorKey, addr)
}

func Operator(tx *state.Tx) (ids.Address, error) {
	var addr ids.Address
	ok, err := tx.Get(operatorKey, &addr)
	if err != nil {
		return addr, err
	}
	if !ok {
		return addr, fmt.Errorf("operator: %w", errs.ErrNotFound)
	}
	return addr, nil
}

// RequireOperator fails with ErrUnauthorized unless caller is the operator.
func RequireOperator(tx *state.Tx, caller ids.Address) error {
	op, err := Operator(tx)
	if err != nil {
		return err
	}
	if caller != op {
		return fmt.Errorf("caller %s is not the operator: %w", caller, errs.ErrUnauthorized)
	}
	return nil
}

func AuthorizeCaller(tx *state.Tx, operator, addr ids.Address) error {
	if err := RequireOperator(tx, operator); err != nil {
		return err
	}
	if err := Update(tx, addr, func(a *Account) { a.AuthorizedCaller = true }); err != nil {
		return err
	}
	tx.Emit(events.CallerAuthorized, map[string]string{"address": addr.String()})
	return nil
}

func DeauthorizeCaller(tx *state.Tx, operator, addr ids.Address) error {
	if err := RequireOperator(tx, operator); err != nil {
		return err
	}
	if err := Update(tx, addr, func(a *Account) { a.AuthorizedCaller = false }); err != nil {
		return err
	}
	tx.Emit(events.CallerDeauthorized, map[string]string{"address": addr.String()})
	return nil
}

func IsAuthorizedCaller(tx *state.Tx, addr ids.Address) (bool, error) {
	a, err := Get(tx, addr)
	return a.AuthorizedCaller, err
}
