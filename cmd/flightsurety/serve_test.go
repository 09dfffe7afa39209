package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightsurety/core/config"
	"flightsurety/core/storage"
)

func TestLoadGenesisFallsBackToDev(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	gen, err := loadGenesis(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Dev.Operator, gen.Operator)
	assert.Equal(t, cfg.Dev.FirstAirline, gen.FirstAirline.Address)
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	assert.Error(t, initLogger(config.LogConfig{Level: "loud"}))
	assert.Error(t, initLogger(config.LogConfig{Level: "info", Format: "xml"}))
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.Storage.Engine = storage.EngineMemory
	cfg.Relay.Enabled = true
	cfg.Relay.Oracles = 3
	cfg.Relay.Strategy = "LATE_AIRLINE"

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	assert.NoError(t, serve(ctx, cfg))
}
