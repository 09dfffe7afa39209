package server

import (
	"fmt"
	"net/http"

	"flightsurety/core/errs"
	"flightsurety/core/flight"
	"flightsurety/core/validation"
	"flightsurety/types/ids"
)

type registerFlightRequest struct {
	Flight    string `json:"flight"`
	Timestamp int64  `json:"timestamp"`
}

// flightRequest names a flight by its key fields.
type flightRequest struct {
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Timestamp int64  `json:"timestamp"`
}

func (f flightRequest) key() (flight.Key, error) {
	airline, err := ids.ParseAddress(f.Airline)
	if err != nil {
		return flight.Key{}, err
	}
	return flight.Key{Airline: airline, Code: f.Flight, Timestamp: f.Timestamp}, nil
}

type buyInsuranceRequest struct {
	flightRequest
	Premium string `json:"premium"`
}

func (s *Server) registerFlight(w http.ResponseWriter, r *http.Request) {
	var req registerFlightRequest
	if err := decodeBody(r, validation.RegisterFlight, &req); err != nil {
		writeFailure(w, err)
		return
	}
	f, receipt, err := s.contract.RegisterFlight(callerFrom(r), req.Flight, req.Timestamp)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Result: f, Receipt: receipt})
}

func (s *Server) listFlights(w http.ResponseWriter, r *http.Request) {
	list, err := s.contract.ListFlights()
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// flightIndex lists registered flights as code -> [airline, timestamp].
func (s *Server) flightIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.contract.ListFlights()
	if err != nil {
		writeFailure(w, err)
		return
	}
	index := make(map[string][2]interface{}, len(list))
	for _, f := range list {
		index[f.Key.Code] = [2]interface{}{f.Key.Airline, f.Key.Timestamp}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"flights": index})
}

func (s *Server) getFlight(w http.ResponseWriter, r *http.Request) {
	k, err := pathFlight(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	f, ok, err := s.contract.GetFlight(k)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if !ok {
		writeFailure(w, fmt.Errorf("flight %s: %w", k, errs.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"flight": f,
		"status": f.StatusCode.String(),
	})
}

func (s *Server) getPolicies(w http.ResponseWriter, r *http.Request) {
	k, err := pathFlight(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	list, err := s.contract.Policies(k)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getInsured(w http.ResponseWriter, r *http.Request) {
	k, err := pathFlight(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	passenger, err := pathAddress(r, "passenger")
	if err != nil {
		writeFailure(w, err)
		return
	}
	ok, err := s.contract.IsFlightInsured(k, passenger)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"passenger": passenger, "insured": ok})
}

func (s *Server) buyInsurance(w http.ResponseWriter, r *http.Request) {
	var req buyInsuranceRequest
	if err := decodeBody(r, validation.BuyInsurance, &req); err != nil {
		writeFailure(w, err)
		return
	}
	k, err := req.key()
	if err != nil {
		writeFailure(w, err)
		return
	}
	premium, err := parseAmount(validation.BuyInsurance, req.Premium)
	if err != nil {
		writeFailure(w, err)
		return
	}
	p, receipt, err := s.contract.BuyInsurance(callerFrom(r), k, premium)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Result: p, Receipt: receipt})
}

func (s *Server) getCredit(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeFailure(w, err)
		return
	}
	credit, err := s.contract.CheckCredit(addr)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"passenger": addr,
		"credit":    credit,
		"display":   credit.String(),
	})
}

func (s *Server) pay(w http.ResponseWriter, r *http.Request) {
	payout, receipt, err := s.contract.Pay(callerFrom(r))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Result: payout, Receipt: receipt})
}
