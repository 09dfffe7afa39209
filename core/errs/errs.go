// Package errs holds the error kinds shared by every ledger component.
// Components wrap these with context; callers match with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrInvalidAmount)
	ErrInvalidIndex      = errors.New("invalid oracle index")
	ErrAlreadyFinalized  = errors.New("flight status already finalized")
	ErrNoFunds           = errors.New("no funds to withdraw")
	ErrNotFound          = errors.New("not found")

	ErrNotOperational      = errors.New("contract is not operational")
	ErrAlreadyRegistered   = errors.New("already registered")
	ErrAlreadyInsured      = errors.New("flight already insured by passenger")
	ErrInvalidStatusCode   = errors.New("invalid flight status code")
	ErrInsufficientReserve = errors.New("insufficient reserve for payout")
)
