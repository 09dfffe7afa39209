package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"flightsurety/core/auth"
	"flightsurety/core/logger"
	"flightsurety/types/ids"
)

type ctxKey int

const callerKey ctxKey = iota

var (
	errMissingToken = errors.New("missing bearer token")
	errRateLimited  = errors.New("rate limit exceeded")
)

// requireCaller authenticates the Authorization: Bearer header and stores
// the caller address on the request context.
func (s *Server) requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, errMissingToken)
			return
		}
		if s.verifier == nil {
			writeErr(w, http.StatusUnauthorized, auth.ErrInvalidToken)
			return
		}
		caller, _, err := s.verifier.Authenticate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.API.Warn().Err(err).Str("path", r.URL.Path).Msg("rejected token")
			writeErr(w, http.StatusUnauthorized, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, caller)))
	})
}

func callerFrom(r *http.Request) ids.Address {
	caller, _ := r.Context().Value(callerKey).(ids.Address)
	return caller
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.API.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
