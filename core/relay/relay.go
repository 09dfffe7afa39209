// Package relay simulates the off-chain oracle network: it owns a set of
// oracle identities, listens for status requests and answers them.
package relay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"flightsurety/core/errs"
	"flightsurety/core/events"
	"flightsurety/core/flight"
	"flightsurety/core/logger"
	"flightsurety/core/notify"
	"flightsurety/core/oracle"
	"flightsurety/core/state"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

// Ledger is the part of the ledger API the relay uses.
type Ledger interface {
	RegisterOracle(caller ids.Address, fee units.Amount) (oracle.Oracle, state.Receipt, error)
	GetMyIndexes(caller ids.Address) ([]uint8, error)
	SubmitOracleResponse(caller ids.Address, index uint8, k flight.Key, status flight.StatusCode) (oracle.Outcome, state.Receipt, error)
	Bus() *notify.Bus
}

type Config struct {
	Oracles int
	Fee     units.Amount
	Workers int
	// SeedOffset shifts the identities the relay mints, so several relays
	// can share a ledger.
	SeedOffset uint64
}

func DefaultConfig() Config {
	return Config{Oracles: 30, Fee: units.Ether, Workers: 4, SeedOffset: 1000}
}

type Stats struct {
	Requests int64 `json:"requests"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

type Relay struct {
	ledger   Ledger
	strategy StatusStrategy
	cfg      Config
	oracles  []oracle.Oracle

	requests atomic.Int64
	accepted atomic.Int64
	rejected atomic.Int64
}

func New(l Ledger, s StatusStrategy, cfg Config) *Relay {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Relay{ledger: l, strategy: s, cfg: cfg}
}

// Oracles returns the identities registered by RegisterOracles.
func (r *Relay) Oracles() []oracle.Oracle {
	return r.oracles
}

func (r *Relay) Stats() Stats {
	return Stats{
		Requests: r.requests.Load(),
		Accepted: r.accepted.Load(),
		Rejected: r.rejected.Load(),
	}
}

// RegisterOracles enrolls the relay's identities. Identities that are already
// registered, e.g. after a restart, are reloaded.
func (r *Relay) RegisterOracles() error {
	r.oracles = r.oracles[:0]
	for i := 0; i < r.cfg.Oracles; i++ {
		addr := ids.AddressFromSeed(r.cfg.SeedOffset + uint64(i))
		o, _, err := r.ledger.RegisterOracle(addr, r.cfg.Fee)
		if errors.Is(err, errs.ErrAlreadyRegistered) {
			idx, ierr := r.ledger.GetMyIndexes(addr)
			if ierr != nil {
				return ierr
			}
			o = oracle.Oracle{Address: addr, Indexes: idx}
		} else if err != nil {
			return fmt.Errorf("register oracle %d: %w", i, err)
		}
		r.oracles = append(r.oracles, o)
	}
	logger.Relay.Info().Int("oracles", len(r.oracles)).Msg("oracles registered")
	return nil
}

// Run answers OracleRequest events until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.ledger.Bus().Subscribe(64, events.OracleRequest)
	defer sub.Close()

	jobs := make(chan events.Event)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-sub.Done():
				return nil
			case e := <-sub.C:
				select {
				case jobs <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	for w := 0; w < r.cfg.Workers; w++ {
		g.Go(func() error {
			for e := range jobs {
				r.Handle(e)
			}
			return nil
		})
	}
	return g.Wait()
}

// Handle submits one report for every relay oracle owning the requested
// index.
func (r *Relay) Handle(e events.Event) {
	r.requests.Add(1)
	k, index, err := parseRequest(e)
	if err != nil {
		logger.Relay.Warn().Err(err).Str("event", e.ID.String()).Msg("malformed oracle request")
		return
	}

	for _, o := range r.oracles {
		if !o.Owns(index) {
			continue
		}
		status := r.strategy.Status(k, o.Address)
		out, _, err := r.ledger.SubmitOracleResponse(o.Address, index, k, status)
		if err != nil {
			r.rejected.Add(1)
			logger.Relay.Debug().Err(err).Str("oracle", o.Address.String()).Msg("report rejected")
			continue
		}
		r.accepted.Add(1)
		if out.Finalized && out.Counted {
			logger.Relay.Info().Str("flight", k.String()).Str("status", out.Status.String()).Msg("flight status finalized")
		}
	}
}

func parseRequest(e events.Event) (flight.Key, uint8, error) {
	var k flight.Key
	airline, err := ids.ParseAddress(e.Attr("airline"))
	if err != nil {
		return k, 0, err
	}
	ts, err := strconv.ParseInt(e.Attr("timestamp"), 10, 64)
	if err != nil {
		return k, 0, fmt.Errorf("timestamp: %w", err)
	}
	index, err := strconv.ParseUint(e.Attr("index"), 10, 8)
	if err != nil {
		return k, 0, fmt.Errorf("index: %w", err)
	}
	k = flight.Key{Airline: airline, Code: e.Attr("flight"), Timestamp: ts}
	return k, uint8(index), nil
}
