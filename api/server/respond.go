package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"flightsurety/core/auth"
	"flightsurety/core/errs"
	"flightsurety/core/flight"
	"flightsurety/core/logger"
	"flightsurety/core/state"
	"flightsurety/core/validation"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MutationResponse wraps the result of a state transition with its receipt.
type MutationResponse struct {
	Result  interface{}   `json:"result,omitempty"`
	Receipt state.Receipt `json:"receipt"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.API.Error().Err(err).Msg("encode response")
	}
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

// writeFailure maps a ledger error onto its HTTP status.
func writeFailure(w http.ResponseWriter, err error) {
	writeErr(w, statusFor(err), err)
}

func statusFor(err error) int {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotOperational):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyRegistered),
		errors.Is(err, errs.ErrAlreadyInsured),
		errors.Is(err, errs.ErrAlreadyFinalized),
		errors.Is(err, errs.ErrNoFunds),
		errors.Is(err, errs.ErrInsufficientReserve):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInvalidAmount),
		errors.Is(err, errs.ErrInvalidIndex),
		errors.Is(err, errs.ErrInvalidStatusCode),
		errors.Is(err, ids.ErrInvalidAddress):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody validates the request body against schema and decodes it into v.
func decodeBody(r *http.Request, schema string, v interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &validation.Error{Schema: schema, Reason: err.Error()}
	}
	if err := validation.ValidatePayload(schema, raw); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return err
		}
		return &validation.Error{Schema: schema, Reason: err.Error()}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &validation.Error{Schema: schema, Reason: err.Error()}
	}
	return nil
}

func pathAddress(r *http.Request, name string) (ids.Address, error) {
	return ids.ParseAddress(mux.Vars(r)[name])
}

// pathFlight reads the {airline}/{flight}/{timestamp} route variables.
func pathFlight(r *http.Request) (flight.Key, error) {
	vars := mux.Vars(r)
	airline, err := ids.ParseAddress(vars["airline"])
	if err != nil {
		return flight.Key{}, err
	}
	ts, err := strconv.ParseInt(vars["timestamp"], 10, 64)
	if err != nil {
		return flight.Key{}, &validation.Error{Schema: "path", Reason: fmt.Sprintf("timestamp %q", vars["timestamp"])}
	}
	return flight.Key{Airline: airline, Code: vars["flight"], Timestamp: ts}, nil
}

func parseAmount(field, s string) (units.Amount, error) {
	a, err := units.ParseEther(s)
	if err != nil {
		return 0, &validation.Error{Schema: field, Reason: err.Error()}
	}
	return a, nil
}
