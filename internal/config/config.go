// Package config defines the service configuration and how it is loaded.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Randomness providers understood by RandomProvider.
const (
	RandomProviderRandomOrg = "random_org"
	RandomProviderLocal     = "local"
)

// DefaultRandomURL returns one two-decimal fraction as plain text.
const DefaultRandomURL = "https://www.random.org/decimal-fractions/?num=1&dec=2&col=1&format=plain&rnd=new"

// Config contains process configuration.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8008".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// DatabasePath is the SQLite file; ":memory:" is accepted.
	DatabasePath string `koanf:"database_path"`

	// TTLSeconds is how long a cached combatant is served without a store query.
	TTLSeconds int `koanf:"ttl_seconds"`

	// RandomProvider selects where bout draws come from: random_org or local.
	RandomProvider string `koanf:"random_provider"`

	RandomURL       string `koanf:"random_url"`
	RandomTimeoutMS int    `koanf:"random_timeout_ms"`

	JWTSecret   string `koanf:"jwt_secret"`
	JWTIssuer   string `koanf:"jwt_issuer"`
	JWTAudience string `koanf:"jwt_audience"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:            ":8008",
		LogLevel:        "info",
		LogFormat:       "text",
		DatabasePath:    "arena.db",
		TTLSeconds:      60,
		RandomProvider:  RandomProviderRandomOrg,
		RandomURL:       DefaultRandomURL,
		RandomTimeoutMS: 5000,
		JWTSecret:       "development-insecure-secret-change-me",
		JWTIssuer:       "boxing-arena-api",
		JWTAudience:     "boxing-arena-clients",
	}
}

// TTL returns TTLSeconds as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RandomTimeout returns RandomTimeoutMS as a duration.
func (c *Config) RandomTimeout() time.Duration {
	return time.Duration(c.RandomTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatabasePath == "":
		return fmt.Errorf("%w: database_path must not be empty", ErrInvalidConfig)
	case c.TTLSeconds <= 0:
		return fmt.Errorf("%w: ttl_seconds must be positive, got %d", ErrInvalidConfig, c.TTLSeconds)
	case c.RandomTimeoutMS <= 0:
		return fmt.Errorf("%w: random_timeout_ms must be positive, got %d", ErrInvalidConfig, c.RandomTimeoutMS)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: jwt_secret must not be empty", ErrInvalidConfig)
	}
	switch c.RandomProvider {
	case RandomProviderRandomOrg:
		if c.RandomURL == "" {
			return fmt.Errorf("%w: random_url must not be empty", ErrInvalidConfig)
		}
	case RandomProviderLocal:
	default:
		return fmt.Errorf("%w: unknown random_provider %q", ErrInvalidConfig, c.RandomProvider)
	}
	return nil
}
