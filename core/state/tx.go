package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"flightsurety/core/events"
	"flightsurety/core/storage"
)

var ErrReadOnly = errors.New("state: read-only transaction")

// Tx stages writes and events over the committed store. Reads see the
// transaction's own writes.
type Tx struct {
	db       storage.StateBackend
	writes   map[string][]byte
	events   []events.Event
	now      time.Time
	readOnly bool
}

func newTx(db storage.StateBackend, now time.Time, readOnly bool) *Tx {
	return &Tx{
		db:       db,
		writes:   make(map[string][]byte),
		now:      now,
		readOnly: readOnly,
	}
}

// Now is the timestamp of the transition.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// Get decodes the JSON value stored under key into v. It reports false when
// the key does not exist.
func (tx *Tx) Get(key string, v any) (bool, error) {
	data, ok := tx.writes[key]
	if !ok {
		var err error
		data, err = tx.db.Get(key)
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("get %s: %w", key, err)
		}
	} else if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Put stages v, JSON encoded, under key.
func (tx *Tx) Put(key string, v any) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	tx.writes[key] = data
	return nil
}

// Delete stages the removal of key.
func (tx *Tx) Delete(key string) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	tx.writes[key] = nil
	return nil
}

// Keys lists keys with prefix, merging staged writes and deletes.
func (tx *Tx) Keys(prefix string) ([]string, error) {
	stored, err := tx.db.Keys(prefix)
	if err != nil {
		return nil, fmt.Errorf("keys %s: %w", prefix, err)
	}
	set := make(map[string]struct{}, len(stored))
	for _, k := range stored {
		set[k] = struct{}{}
	}
	for k, v := range tx.writes {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if v == nil {
			delete(set, k)
		} else {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Emit records an event that is persisted and published only if the
// transaction commits.
func (tx *Tx) Emit(typ events.Type, attrs map[string]string) {
	tx.events = append(tx.events, events.New(typ, tx.now, attrs))
}

// Events returns the events emitted so far.
func (tx *Tx) Events() []events.Event {
	return tx.events
}
