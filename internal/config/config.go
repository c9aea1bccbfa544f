// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/konkers/sdv-predict/internal/rng"
)

// Server is the predictor server's configuration.
type Server struct {
	HTTPAddr string `env:"SDV_HTTP_ADDR" envDefault:":8080"`
	// GRPCAddr empty disables the gRPC listener.
	GRPCAddr string `env:"SDV_GRPC_ADDR" envDefault:":9090"`

	DataDir    string `env:"SDV_DATA_DIR" envDefault:"data"`
	OverlayDir string `env:"SDV_OVERLAY_DIR"`
	// WatchInterval 0 disables hot reload.
	WatchInterval time.Duration `env:"SDV_WATCH_INTERVAL" envDefault:"2s"`

	SeedStrategy string `env:"SDV_SEED_STRATEGY" envDefault:"hashed"`
	// DBPath, when set, is the forecast archive served by /forecast.
	DBPath string `env:"SDV_DB_PATH"`
}

// Load parses the environment and checks the result.
func Load() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.HTTPAddr == "" {
		return Server{}, fmt.Errorf("SDV_HTTP_ADDR must not be empty")
	}
	if cfg.WatchInterval < 0 {
		return Server{}, fmt.Errorf("SDV_WATCH_INTERVAL must not be negative")
	}
	if _, err := cfg.Strategy(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Strategy resolves SeedStrategy.
func (c Server) Strategy() (rng.SeedStrategy, error) {
	s, err := rng.StrategyByName(c.SeedStrategy)
	if err != nil {
		return nil, fmt.Errorf("SDV_SEED_STRATEGY: %w", err)
	}
	return s, nil
}
