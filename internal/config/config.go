// Package config loads process configuration from environment variables
// via viper, the way sethbacon's backend layers config: defaults set
// before AutomaticEnv, validated once at startup so a bad configuration
// crashes the process before any listener opens.
package config

import (
	"fmt"
	"time"

	"github.com/faiscadev/flaglite/internal/auth"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL    string
	JWTSecret      string
	Port           string
	Host           string
	LogLevel       string
	RequestTimeout time.Duration
}

// Load reads configuration from the environment and validates it. It
// returns an error rather than calling os.Exit so callers (including
// tests) control how a failure is surfaced.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("DATABASE_URL", "sqlite:flaglite.db?mode=rwc")
	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.AutomaticEnv()

	requestTimeout, err := time.ParseDuration(v.GetString("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	cfg := &Config{
		DatabaseURL:    v.GetString("DATABASE_URL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		Port:           v.GetString("PORT"),
		Host:           v.GetString("HOST"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		RequestTimeout: requestTimeout,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < auth.MinJWTSecretBytes {
		return fmt.Errorf("JWT_SECRET must be set and at least %d bytes", auth.MinJWTSecretBytes)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
