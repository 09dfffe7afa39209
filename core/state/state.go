package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"flightsurety/core/events"
	"flightsurety/core/logger"
	"flightsurety/core/storage"
)

const (
	heightKey   = "meta:height"
	eventSeqKey = "meta:event_seq"
	eventPrefix = "event:"
)

const (
	StatusCommitted = "committed"
	StatusRejected  = "rejected"
)

// ChainState is the single authoritative ledger state. Every mutation runs
// through Update, one at a time, and lands in the store as one batch.
type ChainState struct {
	mu       sync.Mutex
	StateDB  storage.StateBackend
	Height   uint64
	EventSeq uint64

	// Clock returns the transition timestamp. Defaults to time.Now in UTC.
	Clock func() time.Time
}

// Receipt describes the outcome of one state transition.
type Receipt struct {
	TxID      uuid.UUID      `json:"txId"`
	Height    uint64         `json:"height"`
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	UpdatedBy string         `json:"updatedBy"`
	Events    []events.Event `json:"events,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
}

// NewChainState loads the height and event counters persisted in db.
func NewChainState(db storage.StateBackend) (*ChainState, error) {
	if db == nil {
		return nil, errors.New("StateDB is nil")
	}
	cs := &ChainState{StateDB: db}
	var err error
	if cs.Height, err = loadCounter(db, heightKey); err != nil {
		return nil, err
	}
	if cs.EventSeq, err = loadCounter(db, eventSeqKey); err != nil {
		return nil, err
	}
	return cs, nil
}

func loadCounter(db storage.StateBackend, key string) (uint64, error) {
	data, err := db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", key, err)
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return n, nil
}

func (cs *ChainState) now() time.Time {
	if cs.Clock != nil {
		return cs.Clock().UTC()
	}
	return time.Now().UTC()
}

// Update runs fn inside a new transaction. When fn returns nil, its writes
// and events are committed in one batch together with the new height. When
// fn fails nothing is written and the receipt is marked rejected.
func (cs *ChainState) Update(updatedBy string, fn func(tx *Tx) error) (Receipt, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	tx := newTx(cs.StateDB, cs.now(), false)
	receipt := Receipt{
		TxID:      uuid.New(),
		Timestamp: tx.now,
		UpdatedBy: updatedBy,
		Height:    cs.Height,
	}

	if err := fn(tx); err != nil {
		receipt.Status = StatusRejected
		receipt.Errors = append(receipt.Errors, err.Error())
		logStateUpdate(receipt, err.Error())
		return receipt, err
	}

	height := cs.Height + 1
	seq := cs.EventSeq
	for i := range tx.events {
		seq++
		tx.events[i].Seq = seq
		tx.events[i].Height = height
		data, err := json.Marshal(tx.events[i])
		if err != nil {
			receipt.Status = StatusRejected
			receipt.Errors = append(receipt.Errors, "marshal_error")
			logStateUpdate(receipt, "event marshal error")
			return receipt, fmt.Errorf("marshal event: %w", err)
		}
		tx.writes[eventKey(seq)] = data
	}
	tx.writes[heightKey] = []byte(strconv.FormatUint(height, 10))
	tx.writes[eventSeqKey] = []byte(strconv.FormatUint(seq, 10))

	if err := cs.StateDB.WriteBatch(tx.writes); err != nil {
		receipt.Status = StatusRejected
		receipt.Errors = append(receipt.Errors, "db_write_error")
		logStateUpdate(receipt, "DB write error")
		return receipt, fmt.Errorf("commit: %w", err)
	}

	cs.Height = height
	cs.EventSeq = seq
	receipt.Height = height
	receipt.Status = StatusCommitted
	receipt.Events = tx.events
	logStateUpdate(receipt, "transition committed")
	return receipt, nil
}

// View runs fn against the committed state. Writes staged by fn are dropped.
func (cs *ChainState) View(fn func(tx *Tx) error) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return fn(newTx(cs.StateDB, cs.now(), true))
}

// Events returns up to limit committed events with Seq > after, oldest first.
func (cs *ChainState) Events(after uint64, limit int) ([]events.Event, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if after == math.MaxUint64 {
		return nil, nil
	}
	values, err := cs.StateDB.Scan(eventPrefix, eventKey(after+1), limit)
	if err != nil {
		return nil, err
	}
	out := make([]events.Event, 0, len(values))
	for _, data := range values {
		var e events.Event
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func eventKey(seq uint64) string {
	return fmt.Sprintf("%s%020d", eventPrefix, seq)
}

func logStateUpdate(r Receipt, reason string) {
	evt := logger.Ledger.Debug()
	if r.Status == StatusRejected {
		evt = logger.Ledger.Info()
	}
	evt.Str("tx", r.TxID.String()).
		Uint64("height", r.Height).
		Str("status", r.Status).
		Str("updatedBy", r.UpdatedBy).
		Int("events", len(r.Events)).
		Msg(reason)
}
