package server

import (
	"net/http"

	"flightsurety/core/flight"
	"flightsurety/core/validation"
)

type registerOracleRequest struct {
	Fee string `json:"fee"`
}

type oracleResponseRequest struct {
	flightRequest
	Index      uint8 `json:"index"`
	StatusCode uint8 `json:"statusCode"`
}

func (s *Server) registerOracle(w http.ResponseWriter, r *http.Request) {
	var req registerOracleRequest
	if err := decodeBody(r, validation.RegisterOracle, &req); err != nil {
		writeFailure(w, err)
		return
	}
	fee, err := parseAmount(validation.RegisterOracle, req.Fee)
	if err != nil {
		writeFailure(w, err)
		return
	}
	o, receipt, err := s.contract.RegisterOracle(callerFrom(r), fee)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Result: o, Receipt: receipt})
}

func (s *Server) getMyIndexes(w http.ResponseWriter, r *http.Request) {
	idx, err := s.contract.GetMyIndexes(callerFrom(r))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"indexes": idx})
}

func (s *Server) listOracles(w http.ResponseWriter, r *http.Request) {
	list, err := s.contract.ListOracles()
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) fetchFlightStatus(w http.ResponseWriter, r *http.Request) {
	var req flightRequest
	if err := decodeBody(r, validation.FetchFlightStatus, &req); err != nil {
		writeFailure(w, err)
		return
	}
	k, err := req.key()
	if err != nil {
		writeFailure(w, err)
		return
	}
	request, receipt, err := s.contract.FetchFlightStatus(callerFrom(r), k)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Result: request, Receipt: receipt})
}

func (s *Server) submitOracleResponse(w http.ResponseWriter, r *http.Request) {
	var req oracleResponseRequest
	if err := decodeBody(r, validation.SubmitOracleResponse, &req); err != nil {
		writeFailure(w, err)
		return
	}
	k, err := req.key()
	if err != nil {
		writeFailure(w, err)
		return
	}
	out, receipt, err := s.contract.SubmitOracleResponse(callerFrom(r), req.Index, k, flight.StatusCode(req.StatusCode))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Result: out, Receipt: receipt})
}
