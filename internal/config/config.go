// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls the console state core. Zero latencies make the in-memory
// services resolve immediately, which tests rely on.
type Config struct {
	LogLevel  string `env:"CONSOLE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"CONSOLE_LOG_FORMAT" envDefault:"json"`

	SnapshotPath string `env:"CONSOLE_SESSION_SNAPSHOT" envDefault:"session.json"`

	PerPage int `env:"CONSOLE_PER_PAGE" envDefault:"10"`

	MockLatencyMin time.Duration `env:"CONSOLE_MOCK_LATENCY_MIN" envDefault:"200ms"`
	MockLatencyMax time.Duration `env:"CONSOLE_MOCK_LATENCY_MAX" envDefault:"500ms"`

	ResendWindowSeconds int           `env:"CONSOLE_RESEND_WINDOW_SECONDS" envDefault:"60"`
	CountdownTick       time.Duration `env:"CONSOLE_COUNTDOWN_TICK" envDefault:"1s"`

	MetricsAddr string `env:"CONSOLE_METRICS_ADDR"`
}

// Load parses and validates configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PerPage < 1 {
		return Config{}, fmt.Errorf("CONSOLE_PER_PAGE must be positive, got %d", cfg.PerPage)
	}
	if cfg.MockLatencyMin < 0 || cfg.MockLatencyMax < cfg.MockLatencyMin {
		return Config{}, fmt.Errorf("invalid mock latency range [%s, %s]", cfg.MockLatencyMin, cfg.MockLatencyMax)
	}
	if cfg.ResendWindowSeconds < 1 {
		return Config{}, fmt.Errorf("CONSOLE_RESEND_WINDOW_SECONDS must be positive, got %d", cfg.ResendWindowSeconds)
	}
	if cfg.CountdownTick <= 0 {
		return Config{}, fmt.Errorf("CONSOLE_COUNTDOWN_TICK must be positive, got %s", cfg.CountdownTick)
	}
	return cfg, nil
}
