package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Trigger phrase a message must contain (after mention removal)
	// for points to be transferred
	TriggerPhrase string `envconfig:"TRIGGER_PHRASE" default:"thanks"`

	// Timezone the daily quota reset runs in
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`

	// Environment is "development" or "production"
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.TriggerPhrase == "" {
		return fmt.Errorf("TRIGGER_PHRASE must not be empty")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured timezone. Validate has already
// checked that it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
