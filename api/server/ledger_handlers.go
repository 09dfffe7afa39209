package server

import (
	"net/http"
	"strconv"

	"flightsurety/core/validation"
	"flightsurety/types/ids"
)

type operatingStatusRequest struct {
	Operational bool `json:"operational"`
}

type addressRequest struct {
	Address string `json:"address"`
}

func (s *Server) apiInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "FlightSurety ledger API",
		"chainId": s.contract.ChainID(),
		"version": APIVersion(),
	})
}

func (s *Server) getOperational(w http.ResponseWriter, r *http.Request) {
	on, err := s.contract.IsOperational()
	if err != nil {
		writeFailure(w, err)
		return
	}
	op, err := s.contract.Operator()
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"operational": on,
		"operator":    op,
	})
}

func (s *Server) setOperational(w http.ResponseWriter, r *http.Request) {
	var req operatingStatusRequest
	if err := decodeBody(r, validation.OperatingStatus, &req); err != nil {
		writeFailure(w, err)
		return
	}
	receipt, err := s.contract.SetOperatingStatus(callerFrom(r), req.Operational)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Result: req, Receipt: receipt})
}

func (s *Server) authorizeCaller(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := decodeBody(r, validation.AuthorizeCaller, &req); err != nil {
		writeFailure(w, err)
		return
	}
	addr, err := ids.ParseAddress(req.Address)
	if err != nil {
		writeFailure(w, err)
		return
	}
	receipt, err := s.contract.AuthorizeCaller(callerFrom(r), addr)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Result: req, Receipt: receipt})
}

func (s *Server) deauthorizeCaller(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeFailure(w, err)
		return
	}
	receipt, err := s.contract.DeauthorizeCaller(callerFrom(r), addr)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Receipt: receipt})
}

func (s *Server) getCaller(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeFailure(w, err)
		return
	}
	ok, err := s.contract.IsAuthorizedCaller(addr)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"address": addr, "authorized": ok})
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeFailure(w, err)
		return
	}
	acct, err := s.contract.Account(addr)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) getTreasury(w http.ResponseWriter, r *http.Request) {
	t, err := s.contract.Treasury()
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// listEvents pages through committed events: ?after=<seq>&limit=<n>.
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var after uint64
	limit := 100
	if v := q.Get("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeFailure(w, &validation.Error{Schema: "query", Reason: "after must be an unsigned integer"})
			return
		}
		after = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			writeFailure(w, &validation.Error{Schema: "query", Reason: "limit must be between 1 and 1000"})
			return
		}
		limit = n
	}
	evts, err := s.contract.Events(after, limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evts)
}
