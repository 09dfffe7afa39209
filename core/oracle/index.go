package oracle

import (
	"sync"

	"golang.org/x/exp/rand"
)

// IndexSource draws pseudo-random oracle indexes.
type IndexSource interface {
	Intn(n int) int
}

type randSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandSource returns an IndexSource seeded with seed.
func NewRandSource(seed uint64) IndexSource {
	return &randSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *randSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

// SequenceSource replays fixed values modulo n, cycling when exhausted.
type SequenceSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

func NewSequenceSource(values ...int) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return ((v % n) + n) % n
}
