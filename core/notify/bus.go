package notify

import (
	"sync"

	"flightsurety/core/events"
	"flightsurety/core/logger"
)

// Sink receives every published event after commit. Once the bus is
// sequenced with StartAfter, sinks see events in Seq order.
type Sink interface {
	Deliver(e events.Event) error
	Close() error
}

// Bus fans committed ledger events out to in-process subscribers and sinks.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*Subscription
	nextID int
	sinks  []Sink
	closed bool

	sinkMu  sync.Mutex
	ordered bool
	nextSeq uint64
	pending map[uint64]events.Event

	// SinkRetries is the number of attempts per event and sink.
	SinkRetries int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]*Subscription), pending: make(map[uint64]events.Event), SinkRetries: 3}
}

// StartAfter makes sink delivery follow event Seq, starting at seq+1.
// Events published ahead of a gap are held until the gap is filled.
func (b *Bus) StartAfter(seq uint64) {
	b.sinkMu.Lock()
	defer b.sinkMu.Unlock()
	b.ordered = true
	b.nextSeq = seq + 1
}

// Subscription receives events of the requested types on C. An empty type
// list receives everything.
type Subscription struct {
	C <-chan events.Event

	id    int
	ch    chan events.Event
	types map[events.Type]bool
	done  chan struct{}
	once  sync.Once
	bus   *Bus
}

func (s *Subscription) wants(t events.Type) bool {
	return len(s.types) == 0 || s.types[t]
}

// Close detaches the subscription. C is not closed; pending publishers are
// released.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
	})
}

// Done is closed once the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (b *Bus) Subscribe(buffer int, types ...events.Type) *Subscription {
	ch := make(chan events.Event, buffer)
	sub := &Subscription{
		C:     ch,
		ch:    ch,
		types: make(map[events.Type]bool, len(types)),
		done:  make(chan struct{}),
		bus:   b,
	}
	for _, t := range types {
		sub.types[t] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	sub.id = b.nextID
	b.nextID++
	if b.closed {
		sub.once.Do(func() { close(sub.done) })
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) AddSink(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Publish delivers evts in order. Delivery to a subscriber blocks while its
// buffer is full, until the subscription is closed.
func (b *Bus) Publish(evts ...events.Event) {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	sinks := append([]Sink(nil), b.sinks...)
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return
	}

	for _, e := range evts {
		for _, s := range subs {
			if !s.wants(e.Type) {
				continue
			}
			select {
			case s.ch <- e:
			case <-s.done:
			}
		}
	}
	b.deliverSinks(sinks, evts)
}

func (b *Bus) deliverSinks(sinks []Sink, evts []events.Event) {
	b.sinkMu.Lock()
	defer b.sinkMu.Unlock()
	for _, e := range evts {
		if !b.ordered || e.Seq == 0 || e.Seq < b.nextSeq {
			b.deliverAll(sinks, e)
			continue
		}
		b.pending[e.Seq] = e
	}
	for b.ordered {
		e, ok := b.pending[b.nextSeq]
		if !ok {
			return
		}
		delete(b.pending, b.nextSeq)
		b.nextSeq++
		b.deliverAll(sinks, e)
	}
}

func (b *Bus) deliverAll(sinks []Sink, e events.Event) {
	for _, sink := range sinks {
		b.deliver(sink, e)
	}
}

func (b *Bus) deliver(sink Sink, e events.Event) {
	retries := b.SinkRetries
	if retries < 1 {
		retries = 1
	}
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		if err = sink.Deliver(e); err == nil {
			return
		}
		logger.Internal.Debug().Err(err).Int("attempt", attempt).Str("event", string(e.Type)).Msg("sink delivery failed")
	}
	notifyAdmin(e.ID.String(), "event dropped by sink: "+err.Error(), retries)
}

// Close detaches every subscriber and closes every sink.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[int]*Subscription)
	sinks := b.sinks
	b.sinks = nil
	b.mu.Unlock()

	for _, s := range subs {
		s.once.Do(func() { close(s.done) })
	}
	var firstErr error
	for _, s := range sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
