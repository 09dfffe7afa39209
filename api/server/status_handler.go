package server

import (
	"net/http"
)

// HandleStatus responds to /status with node status
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	metrics := s.GetNodeMetrics()
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:     nodeStatus(metrics),
		ChainID:    s.contract.ChainID(),
		Uptime:     metrics.UptimeSeconds,
		Height:     metrics.Height,
		Version:    NodeVersion(),
		APIVersion: APIVersion(),
		Params:     s.contract.Params(),
		Metrics:    metrics,
	})
}
