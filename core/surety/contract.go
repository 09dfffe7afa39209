// Package surety is the entry point to the ledger. It owns the operator and
// the operational switch, runs every mutation as one atomic transition,
// audits rejected calls and publishes committed events.
package surety

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"flightsurety/core/account"
	"flightsurety/core/airline"
	"flightsurety/core/audit"
	"flightsurety/core/errs"
	"flightsurety/core/events"
	"flightsurety/core/genesis"
	"flightsurety/core/insurance"
	"flightsurety/core/logger"
	"flightsurety/core/notify"
	"flightsurety/core/oracle"
	"flightsurety/core/params"
	"flightsurety/core/state"
	"flightsurety/types/ids"
)

const (
	genesisKey     = "meta:genesis"
	operationalKey = "meta:operational"
)

var ErrGenesisMismatch = errors.New("store was initialised from a different genesis")

type Contract struct {
	state    *state.ChainState
	params   params.Params
	chainID  string
	airlines *airline.Governance
	ledger   *insurance.Ledger
	oracles  *oracle.Engine
	bus      *notify.Bus
	audit    audit.AuditLogger
}

type Option func(*Contract)

func WithAuditLogger(l audit.AuditLogger) Option {
	return func(c *Contract) { c.audit = l }
}

func WithBus(b *notify.Bus) Option {
	return func(c *Contract) { c.bus = b }
}

func WithIndexSource(src oracle.IndexSource) Option {
	return func(c *Contract) { c.oracles.Indexes = src }
}

// Open binds the ledger to cs. An empty store is initialised from cfg; a
// populated one must have been initialised from the same cfg.
func Open(cs *state.ChainState, cfg *genesis.GenesisConfig, opts ...Option) (*Contract, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Contract{
		state:    cs,
		params:   cfg.Params,
		chainID:  cfg.ChainID,
		airlines: airline.New(cfg.Params),
		ledger:   insurance.New(cfg.Params),
		bus:      notify.NewBus(),
		audit:    audit.NewZerologAuditLogger(),
	}
	c.oracles = oracle.New(cfg.Params, oracle.NewRandSource(uint64(time.Now().UnixNano())), c.ledger.Settle)
	for _, opt := range opts {
		opt(c)
	}

	hash, err := cfg.Hash()
	if err != nil {
		return nil, err
	}
	var stored string
	var found bool
	if err := cs.View(func(tx *state.Tx) error {
		found, err = tx.Get(genesisKey, &stored)
		return err
	}); err != nil {
		return nil, err
	}
	c.bus.StartAfter(cs.EventSeq)
	if found {
		if stored != hash {
			return nil, fmt.Errorf("%w: have %s, got %s", ErrGenesisMismatch, stored, hash)
		}
		return c, nil
	}

	receipt, err := cs.Update("genesis", func(tx *state.Tx) error {
		if err := account.SetOperator(tx, cfg.Operator); err != nil {
			return err
		}
		if err := tx.Put(operationalKey, true); err != nil {
			return err
		}
		if err := airline.Bootstrap(tx, cfg.FirstAirline.Address, cfg.FirstAirline.Name); err != nil {
			return err
		}
		for _, addr := range cfg.AuthorizedCallers {
			if err := account.AuthorizeCaller(tx, cfg.Operator, addr); err != nil {
				return err
			}
		}
		return tx.Put(genesisKey, hash)
	})
	if err != nil {
		return nil, fmt.Errorf("apply genesis: %w", err)
	}
	logger.Ledger.Info().Str("chain", cfg.ChainID).Str("genesis", hash).Msg("genesis applied")
	c.bus.Publish(receipt.Events...)
	return c, nil
}

func (c *Contract) Params() params.Params { return c.params }

func (c *Contract) ChainID() string { return c.chainID }

func (c *Contract) Bus() *notify.Bus { return c.bus }

func (c *Contract) Height() uint64 {
	var h uint64
	_ = c.state.View(func(*state.Tx) error {
		h = c.state.Height
		return nil
	})
	return h
}

// Close detaches subscribers and sinks. The store is owned by the caller.
func (c *Contract) Close() error {
	return c.bus.Close()
}

func operational(tx *state.Tx) (bool, error) {
	var on bool
	if _, err := tx.Get(operationalKey, &on); err != nil {
		return false, err
	}
	return on, nil
}

// mutate runs fn as one transition on behalf of caller. Unless op is exempt,
// it fails with ErrNotOperational while the switch is off.
func (c *Contract) mutate(op string, caller ids.Address, exempt bool, meta map[string]string, fn func(tx *state.Tx) error) (state.Receipt, error) {
	receipt, err := c.state.Update(caller.String(), func(tx *state.Tx) error {
		if !exempt {
			on, err := operational(tx)
			if err != nil {
				return err
			}
			if !on {
				return errs.ErrNotOperational
			}
		}
		return fn(tx)
	})
	if err != nil {
		c.audit.LogEvent(audit.AuditEvent{
			Timestamp: receipt.Timestamp,
			EventType: op,
			EntityID:  caller.String(),
			Result:    "failure",
			Reason:    err.Error(),
			Metadata:  meta,
		})
		return receipt, fmt.Errorf("%s: %w", op, err)
	}
	c.bus.Publish(receipt.Events...)
	return receipt, nil
}

func (c *Contract) view(fn func(tx *state.Tx) error) error {
	return c.state.View(fn)
}

// SetOperatingStatus turns mutations on or off. Operator only; allowed
// while paused.
func (c *Contract) SetOperatingStatus(caller ids.Address, mode bool) (state.Receipt, error) {
	meta := map[string]string{"operational": strconv.FormatBool(mode)}
	return c.mutate("SetOperatingStatus", caller, true, meta, func(tx *state.Tx) error {
		if err := account.RequireOperator(tx, caller); err != nil {
			return err
		}
		if err := tx.Put(operationalKey, mode); err != nil {
			return err
		}
		tx.Emit(events.OperatingStatusChanged, meta)
		return nil
	})
}

func (c *Contract) IsOperational() (bool, error) {
	var on bool
	err := c.view(func(tx *state.Tx) error {
		var err error
		on, err = operational(tx)
		return err
	})
	return on, err
}

func (c *Contract) Operator() (ids.Address, error) {
	var op ids.Address
	err := c.view(func(tx *state.Tx) error {
		var err error
		op, err = account.Operator(tx)
		return err
	})
	return op, err
}

func (c *Contract) AuthorizeCaller(caller, addr ids.Address) (state.Receipt, error) {
	return c.mutate("AuthorizeCaller", caller, false, map[string]string{"address": addr.String()}, func(tx *state.Tx) error {
		return account.AuthorizeCaller(tx, caller, addr)
	})
}

func (c *Contract) DeauthorizeCaller(caller, addr ids.Address) (state.Receipt, error) {
	return c.mutate("DeauthorizeCaller", caller, false, map[string]string{"address": addr.String()}, func(tx *state.Tx) error {
		return account.DeauthorizeCaller(tx, caller, addr)
	})
}

func (c *Contract) IsAuthorizedCaller(addr ids.Address) (bool, error) {
	var ok bool
	err := c.view(func(tx *state.Tx) error {
		var err error
		ok, err = account.IsAuthorizedCaller(tx, addr)
		return err
	})
	return ok, err
}

func (c *Contract) Account(addr ids.Address) (account.Account, error) {
	var a account.Account
	err := c.view(func(tx *state.Tx) error {
		var err error
		a, err = account.Get(tx, addr)
		return err
	})
	return a, err
}

// Events returns committed events with Seq > after.
func (c *Contract) Events(after uint64, limit int) ([]events.Event, error) {
	return c.state.Events(after, limit)
}
