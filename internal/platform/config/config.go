// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A '.env' file in the
working directory (or the one named by EDURA_ENV_FILE) is loaded first with
'joho/godotenv'; variables already present in the environment win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to the composition root via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Session Store Backends

const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the Edura client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// Backend REST API origin. Asset paths are prefixed with it as well.
	APIURL string `env:"EDURA_API_URL" envDefault:"http://localhost:8080"`

	// Profile scopes the persisted session, like a browser origin scopes local storage.
	Profile string `env:"EDURA_PROFILE" envDefault:"default"`

	// Durable session storage
	SessionStore string `env:"EDURA_SESSION_STORE" envDefault:"file"`
	SessionDir   string `env:"EDURA_SESSION_DIR"`
	RedisURL     string `env:"REDIS_URL"           envDefault:"redis://localhost:6379/0"`

	// Outbound HTTP behaviour
	RequestTimeout    time.Duration `env:"EDURA_REQUEST_TIMEOUT"     envDefault:"15s"`
	RateLimitRPS      float64       `env:"EDURA_RATE_LIMIT_RPS"      envDefault:"20"`
	RateLimitBurst    int           `env:"EDURA_RATE_LIMIT_BURST"    envDefault:"40"`
	RetryAfterRefresh bool          `env:"EDURA_RETRY_AFTER_REFRESH" envDefault:"false"`

	// Display
	Currency string `env:"EDURA_CURRENCY" envDefault:"VND"`
	Locale   string `env:"EDURA_LOCALE"   envDefault:"vi"`
}

// SandboxConfig holds runtime configuration for the local stand-in backend.
type SandboxConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	ServerPort     string        `env:"SANDBOX_PORT"             envDefault:"8080"`
	AccessTokenTTL time.Duration `env:"SANDBOX_ACCESS_TOKEN_TTL" envDefault:"15m"`
	Seed           bool          `env:"SANDBOX_SEED"             envDefault:"true"`

	// PublicURL is used to build payment gateway redirect links.
	PublicURL string `env:"SANDBOX_PUBLIC_URL" envDefault:"http://localhost:8080"`

	// RSA key pair (PEM). When either path is empty a key is generated at startup
	// and tokens do not survive a restart.
	PrivateKeyPath string `env:"SANDBOX_JWT_PRIVATE_KEY_PATH"`
	PublicKeyPath  string `env:"SANDBOX_JWT_PUBLIC_KEY_PATH"`
}

// HasKeyFiles reports whether a persistent signing key pair is configured.
func (c *SandboxConfig) HasKeyFiles() bool {
	return c.PrivateKeyPath != "" && c.PublicKeyPath != ""
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.SessionDir == "" {
		dir, err := defaultSessionDir()
		if err != nil {
			return nil, err
		}
		cfg.SessionDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadSandbox parses environment variables into a [SandboxConfig] struct.
func LoadSandbox() (*SandboxConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &SandboxConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations the client cannot start with.
func (c *Config) Validate() error {
	switch c.SessionStore {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("config: unknown EDURA_SESSION_STORE %q (want file, redis or memory)", c.SessionStore)
	}

	if c.APIURL == "" {
		return errors.New("config: EDURA_API_URL must not be empty")
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("config: rate limit values must be positive")
	}

	return nil
}

// IsDevelopment reports whether the client is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsDevelopment reports whether the sandbox is running in development mode.
func (c *SandboxConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// loadDotEnv reads the optional .env file. A missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv("EDURA_ENV_FILE")
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: failed to load %s: %w", path, err)
	}

	return nil
}

// defaultSessionDir resolves the per-user directory for file-backed sessions.
func defaultSessionDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot resolve user config dir: %w", err)
	}
	return filepath.Join(base, "edura"), nil
}
