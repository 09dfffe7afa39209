package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-redis/redis"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"flightsurety/core/storage"
	"flightsurety/types/ids"
)

const appName = "flightsurety"

const (
	keyListenAddr    = "listenAddr"
	keyGenesisFile   = "genesisFile"
	keyJWTSecret     = "jwtSecret"
	keyRateLimit     = "rateLimit"
	keyStorageEngine = "storage_engine"
	keyStoragePath   = "storage_path"
	keyLogLevel      = "log_level"
	keyLogFormat     = "log_format"
	keyRedisAddr     = "redis_addr"
	keyRedisPassword = "redis_password"
	keyRedisDB       = "redis_db"
	keyRedisChannel  = "redis_channel"
	keyRelayEnabled  = "relay_enabled"
	keyRelayOracles  = "relay_oracles"
	keyRelayWorkers  = "relay_workers"
	keyRelayStrategy = "relay_strategy"
	keyRelaySeed     = "relay_seed"
	keyDevOperator   = "dev_operator"
	keyDevAirline    = "dev_firstAirline"
)

var defaults = map[string]interface{}{
	keyListenAddr:  ":8080",
	keyGenesisFile: "",
	keyJWTSecret:   "",
	keyRateLimit:   600,
	"storage": map[string]interface{}{
		"engine": storage.EngineLevelDB,
		"path":   "./data/flightsurety",
	},
	"log": map[string]interface{}{
		"level":  "info",
		"format": "console",
	},
	"redis": map[string]interface{}{
		"addr":     "",
		"password": "",
		"db":       0,
		"channel":  "flightsurety:events",
	},
	"relay": map[string]interface{}{
		"enabled":  false,
		"oracles":  30,
		"workers":  4,
		"strategy": "random",
		"seed":     0,
	},
	"dev": map[string]interface{}{
		"operator":     ids.AddressFromSeed(1).String(),
		"firstAirline": ids.AddressFromSeed(101).String(),
	},
}

type StorageConfig struct {
	Engine string
	Path   string
}

type LogConfig struct {
	Level  string
	Format string
}

type RelayConfig struct {
	Enabled  bool
	Oracles  int
	Workers  int
	Strategy string
	Seed     uint64
}

// DevConfig supplies the genesis identities used when no genesis file is set.
type DevConfig struct {
	Operator     ids.Address
	FirstAirline ids.Address
}

type Config struct {
	ListenAddr   string
	GenesisFile  string
	JWTSecret    string
	// RateLimit is the per-client request budget per minute; 0 disables it.
	RateLimit    int
	Storage      StorageConfig
	Log          LogConfig
	Redis        *redis.Options
	RedisChannel string
	Relay        RelayConfig
	Dev          DevConfig
}

// LoadEnvFiles loads the given .env files into the environment. Missing
// files are skipped.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func getConfigViper(file string) (*viper.Viper, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("_"))

	v.SetEnvPrefix(appName)
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Load reads the optional config file; FLIGHTSURETY_* variables override it,
// e.g. FLIGHTSURETY_STORAGE_ENGINE=pebble.
func Load(file string) (*Config, error) {
	v, err := getConfigViper(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		ListenAddr:  v.GetString(keyListenAddr),
		GenesisFile: v.GetString(keyGenesisFile),
		JWTSecret:   v.GetString(keyJWTSecret),
		RateLimit:   v.GetInt(keyRateLimit),
		Storage: StorageConfig{
			Engine: v.GetString(keyStorageEngine),
			Path:   v.GetString(keyStoragePath),
		},
		Log: LogConfig{
			Level:  v.GetString(keyLogLevel),
			Format: v.GetString(keyLogFormat),
		},
		RedisChannel: v.GetString(keyRedisChannel),
		Relay: RelayConfig{
			Enabled:  v.GetBool(keyRelayEnabled),
			Oracles:  v.GetInt(keyRelayOracles),
			Workers:  v.GetInt(keyRelayWorkers),
			Strategy: v.GetString(keyRelayStrategy),
			Seed:     v.GetUint64(keyRelaySeed),
		},
	}
	if addr := v.GetString(keyRedisAddr); addr != "" {
		cfg.Redis = &redis.Options{
			Addr:     addr,
			Password: v.GetString(keyRedisPassword),
			DB:       v.GetInt(keyRedisDB),
		}
	}

	if cfg.Dev.Operator, err = ids.ParseAddress(v.GetString(keyDevOperator)); err != nil {
		return nil, fmt.Errorf("dev operator: %w", err)
	}
	if cfg.Dev.FirstAirline, err = ids.ParseAddress(v.GetString(keyDevAirline)); err != nil {
		return nil, fmt.Errorf("dev first airline: %w", err)
	}

	switch cfg.Storage.Engine {
	case storage.EngineLevelDB, storage.EnginePebble, storage.EngineMemory:
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.Engine)
	}
	return cfg, nil
}
