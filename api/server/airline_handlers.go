package server

import (
	"fmt"
	"net/http"

	"flightsurety/core/errs"
	"flightsurety/core/validation"
	"flightsurety/types/ids"
)

type registerAirlineRequest struct {
	Airline string `json:"airline"`
	Name    string `json:"name,omitempty"`
}

type fundAirlineRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) registerAirline(w http.ResponseWriter, r *http.Request) {
	var req registerAirlineRequest
	if err := decodeBody(r, validation.RegisterAirline, &req); err != nil {
		writeFailure(w, err)
		return
	}
	candidate, err := ids.ParseAddress(req.Airline)
	if err != nil {
		writeFailure(w, err)
		return
	}
	res, receipt, err := s.contract.RegisterAirline(callerFrom(r), candidate, req.Name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Result: res, Receipt: receipt})
}

func (s *Server) fundAirline(w http.ResponseWriter, r *http.Request) {
	var req fundAirlineRequest
	if err := decodeBody(r, validation.FundAirline, &req); err != nil {
		writeFailure(w, err)
		return
	}
	amount, err := parseAmount(validation.FundAirline, req.Amount)
	if err != nil {
		writeFailure(w, err)
		return
	}
	receipt, err := s.contract.FundAirline(callerFrom(r), amount)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Result: map[string]interface{}{"amount": amount}, Receipt: receipt})
}

func (s *Server) listAirlines(w http.ResponseWriter, r *http.Request) {
	list, err := s.contract.ListAirlines()
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getAirline(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeFailure(w, err)
		return
	}
	a, ok, err := s.contract.GetAirline(addr)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if !ok {
		writeFailure(w, fmt.Errorf("airline %s: %w", addr, errs.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, a)
}
