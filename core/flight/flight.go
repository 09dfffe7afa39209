package flight

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/sha3"

	"flightsurety/core/airline"
	"flightsurety/core/errs"
	"flightsurety/core/events"
	"flightsurety/core/state"
	"flightsurety/types/ids"
)

const prefix = "flight:"

// Key identifies a flight.
type Key struct {
	Airline   ids.Address `json:"airline"`
	Code      string      `json:"flight"`
	Timestamp int64       `json:"timestamp"`
}

// ID is keccak-256 over the packed airline address, flight code and the
// timestamp as a 32-byte big-endian word.
func (k Key) ID() ids.ID {
	var ts [32]byte
	binary.BigEndian.PutUint64(ts[24:], uint64(k.Timestamp))

	h := sha3.NewLegacyKeccak256()
	h.Write(k.Airline[:])
	h.Write([]byte(k.Code))
	h.Write(ts[:])

	var id ids.ID
	copy(id[:], h.Sum(nil))
	return id
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s@%d", k.Airline, k.Code, k.Timestamp)
}

// Attributes renders the key for event payloads.
func (k Key) Attributes() map[string]string {
	return map[string]string{
		"airline":   k.Airline.String(),
		"flight":    k.Code,
		"timestamp": strconv.FormatInt(k.Timestamp, 10),
	}
}

// Flight moves from unknown to pending (status requested) to finalized,
// and never back.
type Flight struct {
	Key          Key        `json:"key"`
	ID           ids.ID     `json:"id"`
	StatusCode   StatusCode `json:"statusCode"`
	Pending      bool       `json:"pending"`
	Finalized    bool       `json:"finalized"`
	RegisteredAt time.Time  `json:"registeredAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func storeKey(id ids.ID) string {
	return prefix + id.String()
}

func Get(tx *state.Tx, id ids.ID) (Flight, bool, error) {
	var f Flight
	ok, err := tx.Get(storeKey(id), &f)
	return f, ok, err
}

// MustGet is Get that fails with ErrNotFound for unregistered flights.
func MustGet(tx *state.Tx, id ids.ID) (Flight, error) {
	f, ok, err := Get(tx, id)
	if err != nil {
		return f, err
	}
	if !ok {
		return f, fmt.Errorf("flight %s: %w", id, errs.ErrNotFound)
	}
	return f, nil
}

func IsRegistered(tx *state.Tx, id ids.ID) (bool, error) {
	_, ok, err := Get(tx, id)
	return ok, err
}

// Status returns the flight's status code and whether it is final.
func Status(tx *state.Tx, id ids.ID) (StatusCode, bool, error) {
	f, err := MustGet(tx, id)
	if err != nil {
		return StatusUnknown, false, err
	}
	return f.StatusCode, f.Finalized, nil
}

func List(tx *state.Tx) ([]Flight, error) {
	keys, err := tx.Keys(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]Flight, 0, len(keys))
	for _, k := range keys {
		var f Flight
		if _, err := tx.Get(k, &f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Register records a flight for a funded airline.
func Register(tx *state.Tx, k Key) (Flight, error) {
	funded, err := airline.IsFunded(tx, k.Airline)
	if err != nil {
		return Flight{}, err
	}
	if !funded {
		return Flight{}, fmt.Errorf("airline %s is not funded: %w", k.Airline, errs.ErrUnauthorized)
	}

	id := k.ID()
	if _, exists, err := Get(tx, id); err != nil {
		return Flight{}, err
	} else if exists {
		return Flight{}, fmt.Errorf("flight %s: %w", k, errs.ErrAlreadyRegistered)
	}

	f := Flight{
		Key:          k,
		ID:           id,
		StatusCode:   StatusUnknown,
		RegisteredAt: tx.Now(),
		UpdatedAt:    tx.Now(),
	}
	if err := tx.Put(storeKey(id), f); err != nil {
		return Flight{}, err
	}
	tx.Emit(events.FlightRegistered, k.Attributes())
	return f, nil
}

// MarkPending flags that a status request has been opened.
func MarkPending(tx *state.Tx, id ids.ID) error {
	f, err := MustGet(tx, id)
	if err != nil {
		return err
	}
	if f.Pending || f.Finalized {
		return nil
	}
	f.Pending = true
	f.UpdatedAt = tx.Now()
	return tx.Put(storeKey(id), f)
}

// Finalize sets the flight's status. A flight is finalized at most once.
func Finalize(tx *state.Tx, id ids.ID, status StatusCode) (Flight, error) {
	f, err := MustGet(tx, id)
	if err != nil {
		return f, err
	}
	if f.Finalized {
		return f, fmt.Errorf("flight %s: %w", f.Key, errs.ErrAlreadyFinalized)
	}
	f.StatusCode = status
	f.Pending = false
	f.Finalized = true
	f.UpdatedAt = tx.Now()
	return f, tx.Put(storeKey(id), f)
}
