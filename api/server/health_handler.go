package server

import (
	"net/http"
)

// NodeLiveness reports whether the ledger store answers reads.
func (s *Server) NodeLiveness() bool {
	_, err := s.contract.IsOperational()
	return err == nil
}

// NodeReadiness reports whether the ledger accepts mutations.
func (s *Server) NodeReadiness() bool {
	on, err := s.contract.IsOperational()
	return err == nil && on
}

func (s *Server) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	resp := LivenessResponse{Alive: s.NodeLiveness()}
	code := http.StatusOK
	if !resp.Alive {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (s *Server) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{Ready: s.NodeReadiness()}
	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// HandleNodeHealth serves a health summary for the CLI.
func (s *Server) HandleNodeHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.GetNodeMetrics()
	writeJSON(w, http.StatusOK, NodeHealthResponse{
		Status:  nodeStatus(metrics),
		Metrics: metrics,
	})
}

func nodeStatus(m NodeMetrics) string {
	switch {
	case !m.Operational:
		return "paused"
	case m.Airlines == 0:
		return "initializing"
	default:
		return "healthy"
	}
}
