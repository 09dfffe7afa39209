package server

import "flightsurety/core/params"

// StatusResponse is the body of /status.
type StatusResponse struct {
	Status     string        `json:"status"`
	ChainID    string        `json:"chain_id"`
	Uptime     int64         `json:"uptime_seconds"`
	Height     uint64        `json:"height"`
	Version    string        `json:"version"`
	APIVersion string        `json:"api_version"`
	Params     params.Params `json:"params"`
	Metrics    NodeMetrics   `json:"metrics"`
}

type NodeHealthResponse struct {
	Status  string      `json:"status"`
	Metrics NodeMetrics `json:"metrics"`
}

type LivenessResponse struct {
	Alive bool `json:"alive"`
}

type ReadinessResponse struct {
	Ready bool `json:"ready"`
}
