package relay

import (
	"sync"

	"golang.org/x/exp/rand"

	"flightsurety/core/flight"
	"flightsurety/types/ids"
)

// StatusStrategy decides what an oracle reports for a flight.
type StatusStrategy interface {
	Status(k flight.Key, reporter ids.Address) flight.StatusCode
}

// RandomStrategy reports a uniformly random code, UNKNOWN included.
type RandomStrategy struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomStrategy(seed uint64) *RandomStrategy {
	return &RandomStrategy{rnd: rand.New(rand.NewSource(seed))}
}

func (s *RandomStrategy) Status(flight.Key, ids.Address) flight.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return flight.Codes[s.rnd.Intn(len(flight.Codes))]
}

// FixedStrategy always reports the same code.
type FixedStrategy flight.StatusCode

func (s FixedStrategy) Status(flight.Key, ids.Address) flight.StatusCode {
	return flight.StatusCode(s)
}

// ParseStrategy maps "random" to a RandomStrategy and a status name or code,
// e.g. "LATE_AIRLINE" or "20", to a FixedStrategy.
func ParseStrategy(s string, seed uint64) (StatusStrategy, error) {
	if s == "" || s == "random" {
		return NewRandomStrategy(seed), nil
	}
	code, err := flight.ParseStatus(s)
	if err != nil {
		return nil, err
	}
	return FixedStrategy(code), nil
}
