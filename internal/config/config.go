// Package config defines the match configuration and its loading order.
//
// Conventions:
// - New returns defaults; Load layers an optional YAML file and env vars.
// - Validation runs before the engine sees the config: a bad configuration
//   must fail before any simulation tick.
// - External errors are wrapped via this package's sentinel kinds.
package config

import (
	"fmt"
	"time"
)

// Config is the full process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Seed drives every stochastic decision in the match. The same seed and
	// configuration reproduce an identical event log.
	Seed int64 `koanf:"seed"`

	// DurationMinutes is the simulated match length. Zero is a valid
	// boundary (no ticks); negative is rejected.
	DurationMinutes int `koanf:"duration_minutes"`

	// HomeFormation and AwayFormation are dash-separated outfield counts,
	// e.g. "4-4-2".
	HomeFormation string `koanf:"home_formation"`
	AwayFormation string `koanf:"away_formation"`

	// KickoffTime anchors record timestamps (RFC3339). Fixed by default so
	// exports are reproducible.
	KickoffTime string `koanf:"kickoff_time"`

	// OutputDir receives the CSV and XES files.
	OutputDir string `koanf:"output_dir"`

	// SQLitePath enables the durable event store when non-empty.
	SQLitePath string `koanf:"sqlite_path"`

	// MetricsAddr serves Prometheus metrics when non-empty, e.g. ":9091".
	MetricsAddr string `koanf:"metrics_addr"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Seed:            1,
		DurationMinutes: 90,
		HomeFormation:   "4-4-2",
		AwayFormation:   "4-3-3",
		KickoffTime:     "2025-05-17T15:00:00Z",
		OutputDir:       ".",
	}
}

// Validate checks fields that must fail fast, before a match is built.
func (c *Config) Validate() error {
	if c.DurationMinutes < 0 {
		return fmt.Errorf("%w: duration_minutes must not be negative", ErrInvalidConfig)
	}
	if c.HomeFormation == "" || c.AwayFormation == "" {
		return fmt.Errorf("%w: formations must not be empty", ErrInvalidConfig)
	}
	if _, err := time.Parse(time.RFC3339, c.KickoffTime); err != nil {
		return fmt.Errorf("%w: kickoff_time: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Kickoff parses the configured kickoff time. Validate must have passed.
func (c *Config) Kickoff() time.Time {
	t, _ := time.Parse(time.RFC3339, c.KickoffTime)
	return t.UTC()
}
