package oracle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"flightsurety/core/account"
	"flightsurety/core/errs"
	"flightsurety/core/events"
	"flightsurety/core/flight"
	"flightsurety/core/logger"
	"flightsurety/core/params"
	"flightsurety/core/state"
	"flightsurety/core/treasury"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

const (
	oraclePrefix  = "oracle:"
	requestPrefix = "request:"
)

type Oracle struct {
	Address      ids.Address `json:"address"`
	Indexes      []uint8     `json:"indexes"`
	RegisteredAt time.Time   `json:"registeredAt"`
}

func (o Oracle) Owns(index uint8) bool {
	for _, i := range o.Indexes {
		if i == index {
			return true
		}
	}
	return false
}

// Request is an open call for status reports on one flight, addressed to
// the oracles owning Index.
type Request struct {
	Index      uint8                             `json:"index"`
	FlightID   ids.ID                            `json:"flightId"`
	Flight     flight.Key                        `json:"flight"`
	OpenedAt   time.Time                         `json:"openedAt"`
	Open       bool                              `json:"open"`
	Responders map[ids.Address]flight.StatusCode `json:"responders"`
	Tally      map[flight.StatusCode]int         `json:"tally"`
}

// Outcome reports the effect of one submitted response.
type Outcome struct {
	Counted   bool              `json:"counted"`
	Finalized bool              `json:"finalized"`
	Status    flight.StatusCode `json:"status"`
	Matching  int               `json:"matching"`
}

// SettleFunc runs inside the finalizing transition.
type SettleFunc func(tx *state.Tx, id ids.ID, status flight.StatusCode) error

// Engine runs the register / request / respond protocol.
type Engine struct {
	Params  params.Params
	Indexes IndexSource
	Settle  SettleFunc
}

func New(p params.Params, src IndexSource, settle SettleFunc) *Engine {
	return &Engine{Params: p, Indexes: src, Settle: settle}
}

func oracleKey(addr ids.Address) string {
	return oraclePrefix + addr.String()
}

func requestKey(id ids.ID, index uint8) string {
	return fmt.Sprintf("%s%s:%03d", requestPrefix, id, index)
}

func Get(tx *state.Tx, addr ids.Address) (Oracle, bool, error) {
	var o Oracle
	ok, err := tx.Get(oracleKey(addr), &o)
	return o, ok, err
}

func List(tx *state.Tx) ([]Oracle, error) {
	keys, err := tx.Keys(oraclePrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Oracle, 0, len(keys))
	for _, k := range keys {
		var o Oracle
		if _, err := tx.Get(k, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (e *Engine) randomIndex() uint8 {
	return uint8(e.Indexes.Intn(e.Params.IndexRange))
}

// Register enrolls addr as an oracle for exactly the registration fee and
// assigns its indexes. Indexes may repeat.
func (e *Engine) Register(tx *state.Tx, addr ids.Address, fee units.Amount) (Oracle, error) {
	if fee != e.Params.RegistrationFee {
		return Oracle{}, fmt.Errorf("fee %s, want %s: %w", fee, e.Params.RegistrationFee, errs.ErrInsufficientFunds)
	}
	if addr.IsZero() {
		return Oracle{}, fmt.Errorf("oracle: %w", ids.ErrInvalidAddress)
	}
	if _, exists, err := Get(tx, addr); err != nil {
		return Oracle{}, err
	} else if exists {
		return Oracle{}, fmt.Errorf("oracle %s: %w", addr, errs.ErrAlreadyRegistered)
	}

	o := Oracle{Address: addr, RegisteredAt: tx.Now()}
	for i := 0; i < e.Params.IndexesPerOracle; i++ {
		o.Indexes = append(o.Indexes, e.randomIndex())
	}
	if err := tx.Put(oracleKey(addr), o); err != nil {
		return Oracle{}, err
	}
	if err := account.Update(tx, addr, func(a *account.Account) { a.RegisteredOracle = true }); err != nil {
		return Oracle{}, err
	}
	if err := treasury.Deposit(tx, fee, treasury.SourceOracleFee); err != nil {
		return Oracle{}, err
	}
	tx.Emit(events.OracleRegistered, map[string]string{
		"oracle":  addr.String(),
		"indexes": joinIndexes(o.Indexes),
	})
	return o, nil
}

func (e *Engine) GetMyIndexes(tx *state.Tx, addr ids.Address) ([]uint8, error) {
	o, ok, err := Get(tx, addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("oracle %s: %w", addr, errs.ErrNotFound)
	}
	return o.Indexes, nil
}

// FetchFlightStatus opens a status request under a fresh random index and
// emits OracleRequest. If that (index, flight) request is already open it is
// reused and the event is emitted again.
func (e *Engine) FetchFlightStatus(tx *state.Tx, k flight.Key) (Request, error) {
	id := k.ID()
	f, err := flight.MustGet(tx, id)
	if err != nil {
		return Request{}, err
	}
	if f.Finalized {
		return Request{}, fmt.Errorf("flight %s: %w", k, errs.ErrAlreadyFinalized)
	}

	index := e.randomIndex()
	var req Request
	ok, err := tx.Get(requestKey(id, index), &req)
	if err != nil {
		return Request{}, err
	}
	if !ok || !req.Open {
		req = Request{
			Index:      index,
			FlightID:   id,
			Flight:     f.Key,
			OpenedAt:   tx.Now(),
			Open:       true,
			Responders: make(map[ids.Address]flight.StatusCode),
			Tally:      make(map[flight.StatusCode]int),
		}
		if err := tx.Put(requestKey(id, index), req); err != nil {
			return Request{}, err
		}
	}
	if err := flight.MarkPending(tx, id); err != nil {
		return Request{}, err
	}

	attrs := f.Key.Attributes()
	attrs["index"] = strconv.Itoa(int(index))
	tx.Emit(events.OracleRequest, attrs)
	return req, nil
}

// Requests lists every request ever opened for the flight.
func Requests(tx *state.Tx, id ids.ID) ([]Request, error) {
	keys, err := tx.Keys(requestPrefix + id.String() + ":")
	if err != nil {
		return nil, err
	}
	out := make([]Request, 0, len(keys))
	for _, key := range keys {
		var r Request
		if _, err := tx.Get(key, &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Submit records one oracle's report. The submitter must own index and the
// (index, flight) request must be open. Reports for a flight that is already
// final are accepted without effect, as are repeats by the same oracle. When
// MinResponses oracles agree the flight is finalized, every request for it
// closes, and the settlement hook runs in the same transition.
func (e *Engine) Submit(tx *state.Tx, submitter ids.Address, index uint8, k flight.Key, status flight.StatusCode) (Outcome, error) {
	o, ok, err := Get(tx, submitter)
	if err != nil {
		return Outcome{}, err
	}
	if !ok || !o.Owns(index) {
		return Outcome{}, fmt.Errorf("oracle %s does not own index %d: %w", submitter, index, errs.ErrInvalidIndex)
	}
	if !status.Valid() || status == flight.StatusUnknown {
		return Outcome{}, fmt.Errorf("status %d: %w", status, errs.ErrInvalidStatusCode)
	}

	id := k.ID()
	f, registered, err := flight.Get(tx, id)
	if err != nil {
		return Outcome{}, err
	}
	if registered && f.Finalized {
		logger.Oracle.Debug().Str("flight", k.String()).Str("oracle", submitter.String()).Msg("late report ignored")
		return Outcome{Finalized: true, Status: f.StatusCode}, nil
	}

	var req Request
	ok, err = tx.Get(requestKey(id, index), &req)
	if err != nil {
		return Outcome{}, err
	}
	if !ok || !req.Open {
		return Outcome{}, fmt.Errorf("no open request for %s at index %d: %w", k, index, errs.ErrInvalidIndex)
	}

	if _, dup := req.Responders[submitter]; dup {
		return Outcome{Status: status, Matching: req.Tally[status]}, nil
	}
	req.Responders[submitter] = status
	req.Tally[status]++
	out := Outcome{Counted: true, Status: status, Matching: req.Tally[status]}

	attrs := k.Attributes()
	attrs["status"] = strconv.Itoa(int(status))
	attrs["oracle"] = submitter.String()
	tx.Emit(events.OracleReport, attrs)

	if req.Tally[status] < e.Params.MinResponses {
		return out, tx.Put(requestKey(id, index), req)
	}

	req.Open = false
	if err := tx.Put(requestKey(id, index), req); err != nil {
		return Outcome{}, err
	}
	if err := closeRequests(tx, id); err != nil {
		return Outcome{}, err
	}
	if _, err := flight.Finalize(tx, id, status); err != nil {
		return Outcome{}, err
	}

	info := k.Attributes()
	info["status"] = strconv.Itoa(int(status))
	tx.Emit(events.FlightStatusInfo, info)

	if e.Settle != nil {
		if err := e.Settle(tx, id, status); err != nil {
			return Outcome{}, fmt.Errorf("settle %s: %w", k, err)
		}
	}
	out.Finalized = true
	return out, nil
}

func closeRequests(tx *state.Tx, id ids.ID) error {
	reqs, err := Requests(tx, id)
	if err != nil {
		return err
	}
	for _, r := range reqs {
		if !r.Open {
			continue
		}
		r.Open = false
		if err := tx.Put(requestKey(id, r.Index), r); err != nil {
			return err
		}
	}
	return nil
}

func joinIndexes(idx []uint8) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, ",")
}
