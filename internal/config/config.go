// Package config loads process configuration from the environment.
//
// Values set here are defaults; CLI flags override them.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/temporalq/internal/sqlgen"
	"github.com/roach88/temporalq/internal/temporal"
)

// Config is the environment-derived configuration.
type Config struct {
	UnresolvedMarker temporal.UnresolvedPolicy `env:"TEMPORALQ_UNRESOLVED_MARKER" envDefault:"drop"`
	Dialect          string                    `env:"TEMPORALQ_DIALECT" envDefault:"sqlite"`
	RelationalNulls  bool                      `env:"TEMPORALQ_RELATIONAL_NULLS"`
	Format           string                    `env:"TEMPORALQ_FORMAT" envDefault:"text"`
	Verbose          bool                      `env:"TEMPORALQ_VERBOSE"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env parsing cannot.
func (c *Config) Validate() error {
	if _, err := sqlgen.ParseDialect(c.Dialect); err != nil {
		return fmt.Errorf("TEMPORALQ_DIALECT: %w", err)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("TEMPORALQ_FORMAT: unknown format %q (expected text or json)", c.Format)
	}
	return nil
}

// SQLDialect returns the configured dialect.
func (c *Config) SQLDialect() sqlgen.Dialect {
	d, err := sqlgen.ParseDialect(c.Dialect)
	if err != nil {
		return sqlgen.SQLite
	}
	return d
}

// TemporalOptions returns the options the temporal services are
// registered with.
func (c *Config) TemporalOptions() []temporal.Option {
	return []temporal.Option{temporal.WithPolicy(c.UnresolvedMarker)}
}
