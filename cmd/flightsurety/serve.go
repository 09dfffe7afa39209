package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"flightsurety/api/server"
	"flightsurety/core/audit"
	"flightsurety/core/auth"
	"flightsurety/core/config"
	"flightsurety/core/genesis"
	"flightsurety/core/logger"
	"flightsurety/core/notify"
	"flightsurety/core/relay"
	"flightsurety/core/state"
	"flightsurety/core/storage"
	"flightsurety/core/surety"
	"flightsurety/core/validation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a ledger node",
	Example: `  flightsurety serve
  FLIGHTSURETY_STORAGE_ENGINE=pebble FLIGHTSURETY_RELAY_ENABLED=true flightsurety serve -c node.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFiles(".env"); err != nil {
			return err
		}
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if err := initLogger(cfg.Log); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func initLogger(c config.LogConfig) error {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	format, err := logger.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	logger.Init(logger.Options{Level: level, Format: format})
	return nil
}

func loadGenesis(cfg *config.Config) (*genesis.GenesisConfig, error) {
	if cfg.GenesisFile == "" {
		logger.Root.Warn().Msg("no genesis file set, using development genesis")
		return genesis.Default(cfg.Dev.Operator, cfg.Dev.FirstAirline), nil
	}
	return genesis.LoadGenesisConfig(cfg.GenesisFile)
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := storage.Open(cfg.Storage.Engine, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Engine, err)
	}
	defer db.Close() //nolint:errcheck

	cs, err := state.NewChainState(db)
	if err != nil {
		return err
	}
	gen, err := loadGenesis(cfg)
	if err != nil {
		return err
	}

	auditLog := audit.NewZerologAuditLogger()
	validation.SetAuditLogger(auditLog)

	bus := notify.NewBus()
	if cfg.Redis != nil {
		sink, err := notify.NewRedisSink(cfg.Redis, cfg.RedisChannel)
		if err != nil {
			return err
		}
		bus.AddSink(sink)
		logger.Root.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.RedisChannel).Msg("publishing events to redis")
	}

	contract, err := surety.Open(cs, gen, surety.WithBus(bus), surety.WithAuditLogger(auditLog))
	if err != nil {
		return err
	}
	defer contract.Close() //nolint:errcheck

	if cfg.JWTSecret == "" {
		logger.Root.Warn().Msg("no JWT secret set, signed endpoints will reject every request")
	}
	verifier := &auth.Verifier{
		KeyProvider: &auth.SecretKeyProvider{Secret: []byte(cfg.JWTSecret)},
		ChainID:     contract.ChainID(),
		AuditLogger: auditLog,
	}
	srv := server.NewServer(contract, verifier, cfg.ListenAddr, server.WithRateLimit(cfg.RateLimit))

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Relay.Enabled {
		r, err := newRelay(contract, cfg.Relay)
		if err != nil {
			return err
		}
		srv.SetRelay(r)
		g.Go(func() error { return r.Run(ctx) })
	}
	g.Go(srv.Listen)
	g.Go(func() error {
		<-ctx.Done()
		return srv.Close()
	})

	logger.Root.Info().
		Str("chain", contract.ChainID()).
		Uint64("height", contract.Height()).
		Str("engine", cfg.Storage.Engine).
		Msg("node started")
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	logger.Root.Info().Msg("node stopped")
	return nil
}

func newRelay(contract *surety.Contract, c config.RelayConfig) (*relay.Relay, error) {
	strategy, err := relay.ParseStrategy(c.Strategy, c.Seed)
	if err != nil {
		return nil, err
	}
	rc := relay.DefaultConfig()
	rc.Oracles = c.Oracles
	rc.Workers = c.Workers
	rc.Fee = contract.Params().RegistrationFee
	r := relay.New(contract, strategy, rc)
	if err := r.RegisterOracles(); err != nil {
		return nil, err
	}
	logger.Root.Info().Int("oracles", c.Oracles).Str("strategy", c.Strategy).Str("fee", rc.Fee.String()).Msg("oracle relay enabled")
	return r, nil
}
