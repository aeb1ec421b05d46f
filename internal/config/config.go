// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/tandem/internal/policy"
)

// Config is the runtime configuration shared by the CLI commands. Flags
// override these values.
type Config struct {
	DBPath         string        `env:"TANDEM_DB_PATH" envDefault:"tandem.db"`
	PolicyPath     string        `env:"TANDEM_POLICY_PATH"`
	LogLevel       string        `env:"TANDEM_LOG_LEVEL" envDefault:"info"`
	RenderInterval time.Duration `env:"TANDEM_RENDER_INTERVAL" envDefault:"1100ms"`
	Workers        int           `env:"TANDEM_WORKERS" envDefault:"8"`
}

// Load reads Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that the env tags cannot express.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("TANDEM_DB_PATH must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("TANDEM_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.RenderInterval < 0 {
		return fmt.Errorf("TANDEM_RENDER_INTERVAL must not be negative, got %s", c.RenderInterval)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level. Validate has already rejected
// unknown names, so an invalid value falls back to info.
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Policy loads the matching policy from PolicyPath, or returns the default
// policy when no path is configured.
func (c Config) Policy() (policy.Policy, error) {
	if c.PolicyPath == "" {
		return policy.Default(), nil
	}
	return policy.Load(c.PolicyPath)
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}
