package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration, loaded from environment
// variables.
type Config struct {
	// RunsDir is the directory trace logs are written to and served from.
	RunsDir string `env:"REWEAVE_RUNS_DIR" envDefault:"runs"`
	// ListenAddr is the viewer server's listen address.
	ListenAddr string `env:"REWEAVE_LISTEN_ADDR" envDefault:":8081"`
}

// FromEnv loads configuration from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
