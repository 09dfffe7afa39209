package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"flightsurety/core/auth"
	"flightsurety/core/logger"
	"flightsurety/core/surety"
)

// RequestTimeout bounds how long a single API request may run.
var RequestTimeout = 30 * time.Second

// maxBodyBytes caps request bodies; every payload is a small JSON object.
const maxBodyBytes = 64 << 10

// Server exposes the ledger over HTTP. Mutations need a bearer token whose
// subject is the caller address.
type Server struct {
	contract *surety.Contract
	verifier *auth.Verifier
	relay    RelayStats
	limiter  *RateLimiter
	router   *mux.Router
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit caps each client IP at max requests per minute.
func WithRateLimit(max int) Option {
	return func(s *Server) {
		if max > 0 {
			s.limiter = NewRateLimiter(max)
		}
	}
}

func NewServer(contract *surety.Contract, verifier *auth.Verifier, listenAddr string, opts ...Option) *Server {
	s := &Server{
		contract: contract,
		verifier: verifier,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	s.server = &http.Server{
		Addr:         listenAddr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: RequestTimeout,
		IdleTimeout:  15 * time.Second,
		Handler:      s.router,
	}
	return s
}

// SetRelay attaches the in-process oracle relay so /status can report it.
func (s *Server) SetRelay(r RelayStats) {
	s.relay = r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	// Probes
	r.HandleFunc("/health/liveness", s.HandleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/readiness", s.HandleReadiness).Methods(http.MethodGet)
	r.HandleFunc("/nodehealth", s.HandleNodeHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.HandleStatus).Methods(http.MethodGet)

	// Relay-compatible endpoints.
	r.HandleFunc("/api", s.apiInfo).Methods(http.MethodGet)
	r.HandleFunc("/flights", s.flightIndex).Methods(http.MethodGet)
	r.HandleFunc("/events", s.listEvents).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Reads are public.
	api.HandleFunc("/operational", s.getOperational).Methods(http.MethodGet)
	api.HandleFunc("/callers/{address}", s.getCaller).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{address}", s.getAccount).Methods(http.MethodGet)
	api.HandleFunc("/airlines", s.listAirlines).Methods(http.MethodGet)
	api.HandleFunc("/airlines/{address}", s.getAirline).Methods(http.MethodGet)
	api.HandleFunc("/flights", s.listFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights/{airline}/{flight}/{timestamp}", s.getFlight).Methods(http.MethodGet)
	api.HandleFunc("/flights/{airline}/{flight}/{timestamp}/policies", s.getPolicies).Methods(http.MethodGet)
	api.HandleFunc("/flights/{airline}/{flight}/{timestamp}/insured/{passenger}", s.getInsured).Methods(http.MethodGet)
	api.HandleFunc("/credits/{address}", s.getCredit).Methods(http.MethodGet)
	api.HandleFunc("/treasury", s.getTreasury).Methods(http.MethodGet)
	api.HandleFunc("/oracles", s.listOracles).Methods(http.MethodGet)
	api.HandleFunc("/events", s.listEvents).Methods(http.MethodGet)

	// Mutations act on behalf of the token subject.
	signed := api.NewRoute().Subrouter()
	signed.Use(s.requireCaller)
	signed.HandleFunc("/operational", s.setOperational).Methods(http.MethodPost)
	signed.HandleFunc("/callers", s.authorizeCaller).Methods(http.MethodPost)
	signed.HandleFunc("/callers/{address}", s.deauthorizeCaller).Methods(http.MethodDelete)
	signed.HandleFunc("/airlines", s.registerAirline).Methods(http.MethodPost)
	signed.HandleFunc("/airlines/fund", s.fundAirline).Methods(http.MethodPost)
	signed.HandleFunc("/flights", s.registerFlight).Methods(http.MethodPost)
	signed.HandleFunc("/flights/status", s.fetchFlightStatus).Methods(http.MethodPost)
	signed.HandleFunc("/insurance", s.buyInsurance).Methods(http.MethodPost)
	signed.HandleFunc("/credits/withdraw", s.pay).Methods(http.MethodPost)
	signed.HandleFunc("/oracles", s.registerOracle).Methods(http.MethodPost)
	signed.HandleFunc("/oracles/indexes", s.getMyIndexes).Methods(http.MethodGet)
	signed.HandleFunc("/oracles/responses", s.submitOracleResponse).Methods(http.MethodPost)

	return r
}

// Listen serves until Close is called.
func (s *Server) Listen() error {
	logger.API.Info().Str("addr", s.server.Addr).Msg("API server listening")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Close() error {
	logger.API.Info().Msg("API server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
