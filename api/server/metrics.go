package server

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"

	"flightsurety/core/logger"
	"flightsurety/core/relay"
)

// RelayStats is implemented by the in-process oracle relay.
type RelayStats interface {
	Stats() relay.Stats
}

// NodeMetrics holds health metrics for the ledger node.
type NodeMetrics struct {
	UptimeSeconds  int64        `json:"uptime_seconds"`
	Height         uint64       `json:"height"`
	Operational    bool         `json:"operational"`
	Airlines       int          `json:"airlines"`
	Flights        int          `json:"flights"`
	Oracles        int          `json:"oracles"`
	CPULoadPercent float64      `json:"cpu_load_percent"`
	MemoryMB       float64      `json:"memory_mb"`
	DiskFreeMB     float64      `json:"disk_free_mb"`
	Relay          *relay.Stats `json:"relay,omitempty"`
}

var startTime = time.Now()

// GetNodeMetrics samples ledger counters and host resource usage.
func (s *Server) GetNodeMetrics() NodeMetrics {
	m := NodeMetrics{
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Height:        s.contract.Height(),
	}

	var err error
	if m.Operational, err = s.contract.IsOperational(); err != nil {
		logger.API.Warn().Err(err).Msg("metrics: operational status")
	}
	if m.Airlines, err = s.contract.TotalAirlines(); err != nil {
		logger.API.Warn().Err(err).Msg("metrics: airlines")
	}
	if flights, err := s.contract.ListFlights(); err == nil {
		m.Flights = len(flights)
	}
	if oracles, err := s.contract.ListOracles(); err == nil {
		m.Oracles = len(oracles)
	}
	if s.relay != nil {
		st := s.relay.Stats()
		m.Relay = &st
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.MemoryMB = float64(mem.Alloc) / (1024 * 1024)

	if usage, err := disk.Usage("/"); err == nil {
		m.DiskFreeMB = float64(usage.Free) / (1024 * 1024)
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		m.CPULoadPercent = percents[0]
	}
	return m
}
