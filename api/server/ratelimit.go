package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"flightsurety/core/logger"
)

const rateLimitWindow = 60 * time.Second

// Progressive ban durations; clients exceeding the limit more often than
// this are banned for the last entry.
var banDurations = []time.Duration{
	10 * time.Minute,
	1 * time.Hour,
	24 * time.Hour,
}

// RateLimiter allows each client Max requests per sliding window and bans
// repeat offenders for increasing durations.
type RateLimiter struct {
	Max int

	mu       sync.Mutex
	requests map[string][]time.Time
	strikes  map[string]int
	bans     map[string]time.Time
	now      func() time.Time
}

func NewRateLimiter(max int) *RateLimiter {
	return &RateLimiter{
		Max:      max,
		requests: make(map[string][]time.Time),
		strikes:  make(map[string]int),
		bans:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow records a request from client and reports whether it may proceed.
func (l *RateLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.banned(client, now) {
		return false
	}

	recent := l.requests[client][:0]
	for _, t := range l.requests[client] {
		if now.Sub(t) < rateLimitWindow {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	l.requests[client] = recent
	if len(recent) <= l.Max {
		return true
	}

	l.strikes[client]++
	n := l.strikes[client]
	if n > len(banDurations) {
		n = len(banDurations)
	}
	l.bans[client] = now.Add(banDurations[n-1])
	delete(l.requests, client)
	logger.API.Warn().Str("client", client).Dur("ban", banDurations[n-1]).Int("strike", l.strikes[client]).Msg("rate limit exceeded")
	return false
}

func (l *RateLimiter) banned(client string, now time.Time) bool {
	until, ok := l.bans[client]
	if !ok {
		return false
	}
	if now.After(until) {
		delete(l.bans, client)
		return false
	}
	return true
}

// Middleware rejects over-limit clients, keyed by remote IP.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !l.Allow(host) {
			writeErr(w, http.StatusTooManyRequests, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
