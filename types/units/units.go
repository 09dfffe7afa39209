package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a value in gwei. One ether is 1e9 gwei, which keeps every
// amount the scheme deals with well inside uint64.
type Amount uint64

const (
	Gwei  Amount = 1
	Ether Amount = 1_000_000_000
)

// MulRatio returns a*num/den rounded down. It reports false on overflow.
func (a Amount) MulRatio(num, den uint64) (Amount, bool) {
	if den == 0 {
		return 0, false
	}
	if num != 0 && uint64(a) > math.MaxUint64/num {
		return 0, false
	}
	return Amount(uint64(a) * num / den), true
}

// Add returns a+b and false on overflow.
func (a Amount) Add(b Amount) (Amount, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// String renders the amount in ether with up to nine decimals.
func (a Amount) String() string {
	whole := uint64(a) / uint64(Ether)
	frac := uint64(a) % uint64(Ether)
	if frac == 0 {
		return fmt.Sprintf("%d ETH", whole)
	}
	f := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return fmt.Sprintf("%d.%s ETH", whole, f)
}

// ParseEther parses a decimal ether value such as "1.5" into gwei.
func ParseEther(s string) (Amount, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "ETH"))
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ether %q: %w", s, err)
	}
	if len(frac) > 9 {
		return 0, fmt.Errorf("parse ether %q: more than 9 decimals", s)
	}
	var f uint64
	if frac != "" {
		f, err = strconv.ParseUint(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse ether %q: %w", s, err)
		}
	}
	if w > math.MaxUint64/uint64(Ether) {
		return 0, fmt.Errorf("parse ether %q: overflow", s)
	}
	a, ok := Amount(w * uint64(Ether)).Add(Amount(f))
	if !ok {
		return 0, fmt.Errorf("parse ether %q: overflow", s)
	}
	return a, nil
}
