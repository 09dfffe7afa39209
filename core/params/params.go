// Package params holds the economic and consensus constants of a ledger.
// They are fixed at genesis and never change afterwards.
package params

import (
	"fmt"

	"flightsurety/types/units"
)

type Params struct {
	RegistrationFee    units.Amount `json:"registrationFee"`
	SeedFunding        units.Amount `json:"seedFunding"`
	MaxInsuranceAmount units.Amount `json:"maxInsuranceAmount"`
	PayoutNumerator    uint64       `json:"payoutNumerator"`
	PayoutDenominator  uint64       `json:"payoutDenominator"`
	MinResponses       int          `json:"minResponses"`
	IndexRange         int          `json:"indexRange"`
	IndexesPerOracle   int          `json:"indexesPerOracle"`
	BootstrapAirlines  int          `json:"bootstrapAirlines"`
}

func Default() Params {
	return Params{
		RegistrationFee:    1 * units.Ether,
		SeedFunding:        10 * units.Ether,
		MaxInsuranceAmount: 1 * units.Ether,
		PayoutNumerator:    3,
		PayoutDenominator:  2,
		MinResponses:       3,
		IndexRange:         10,
		IndexesPerOracle:   3,
		BootstrapAirlines:  4,
	}
}

func (p Params) Validate() error {
	switch {
	case p.PayoutDenominator == 0:
		return fmt.Errorf("payout denominator must be positive")
	case p.PayoutNumerator < p.PayoutDenominator:
		return fmt.Errorf("payout ratio %d/%d is below 1", p.PayoutNumerator, p.PayoutDenominator)
	case p.MinResponses < 1:
		return fmt.Errorf("minResponses must be at least 1")
	case p.IndexRange < 1 || p.IndexRange > 256:
		return fmt.Errorf("indexRange %d out of [1, 256]", p.IndexRange)
	case p.IndexesPerOracle < 1:
		return fmt.Errorf("indexesPerOracle must be at least 1")
	case p.BootstrapAirlines < 1:
		return fmt.Errorf("bootstrapAirlines must be at least 1")
	case p.MaxInsuranceAmount == 0:
		return fmt.Errorf("maxInsuranceAmount must be positive")
	}
	return nil
}

// VotesRequired is the number of distinct funded voters needed to admit an
// airline once the bootstrap phase is over: ceil(funded/2).
func VotesRequired(funded int) int {
	return (funded + 1) / 2
}
