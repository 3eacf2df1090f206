// Package config defines the rank command configuration and its loading hooks.
//
// Conventions:
// - New() returns a Config holding every default.
// - Load(ctx) layers an optional YAML file and GAMBIT_* env vars on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
)

// Output formats understood by the leaderboard renderer.
const (
	FormatPlain = "plain"
	FormatTable = "table"
)

// Default configuration values.
const (
	DefaultDeviationThreshold   = 200.0
	DefaultTau                  = 0.5
	DefaultConvergenceTolerance = 0.000001
	DefaultAddr                 = ":9080"
	DefaultMaxLeaderboardLimit  = 1000
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Archive is the path of the game archive to rate. Plain, gzip and
	// zstd compressed archives are accepted.
	Archive string `koanf:"archive"`

	// DeviationThreshold excludes competitors whose rating deviation is
	// not strictly below it from the leaderboard.
	DeviationThreshold float64 `koanf:"deviation_threshold"`

	// Tau is the Glicko-2 system constant constraining volatility change.
	Tau float64 `koanf:"tau"`

	// ConvergenceTolerance bounds the volatility root finding.
	ConvergenceTolerance float64 `koanf:"convergence_tolerance"`

	// HistoryCompetitor, when set, prints that competitor's rating history
	// after the leaderboard.
	HistoryCompetitor string `koanf:"history_competitor"`

	// OutputFormat selects the leaderboard layout: plain or table.
	OutputFormat string `koanf:"output_format"`

	// MetricsFile, when set, receives the run's metrics in Prometheus
	// text format.
	MetricsFile string `koanf:"metrics_file"`

	// Addr is the listen address of the report server.
	Addr string `koanf:"addr"`

	// MaxLeaderboardLimit caps the page size of GET /leaderboard.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		DeviationThreshold:   DefaultDeviationThreshold,
		Tau:                  DefaultTau,
		ConvergenceTolerance: DefaultConvergenceTolerance,
		OutputFormat:         FormatPlain,
		Addr:                 DefaultAddr,
		MaxLeaderboardLimit:  DefaultMaxLeaderboardLimit,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.DeviationThreshold <= 0:
		return fmt.Errorf("%w: deviation_threshold must be positive, got %v", ErrInvalidConfig, c.DeviationThreshold)
	case c.Tau <= 0:
		return fmt.Errorf("%w: tau must be positive, got %v", ErrInvalidConfig, c.Tau)
	case c.ConvergenceTolerance <= 0:
		return fmt.Errorf("%w: convergence_tolerance must be positive, got %v", ErrInvalidConfig, c.ConvergenceTolerance)
	case c.OutputFormat != FormatPlain && c.OutputFormat != FormatTable:
		return fmt.Errorf("%w: unknown output_format %q", ErrInvalidConfig, c.OutputFormat)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be at least 1, got %d", ErrInvalidConfig, c.MaxLeaderboardLimit)
	}
	return nil
}
