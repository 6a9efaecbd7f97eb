// Package config provides configuration loading for meetfetch.
package config

import (
	"fmt"

	"github.com/meetfetch/meetfetch/internal/auth"
	"github.com/meetfetch/meetfetch/internal/drive"
	"github.com/meetfetch/meetfetch/internal/logging"
	"github.com/meetfetch/meetfetch/internal/meet"
	"github.com/meetfetch/meetfetch/internal/retry"
)

// Config is the root configuration.
type Config struct {
	Auth    auth.Config        `koanf:"auth"`
	Meet    meet.ClientConfig  `koanf:"meet"`
	Drive   drive.ClientConfig `koanf:"drive"`
	Retry   retry.Config       `koanf:"retry"`
	Logging logging.Config     `koanf:"logging"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	cfg.Auth.ApplyDefaults()
	cfg.Meet.ApplyDefaults()
	cfg.Drive.ApplyDefaults()
	cfg.Retry.ApplyDefaults()

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = logging.NewDefaultConfig().Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = logging.NewDefaultConfig().Format
	}
}

// Validate checks the full configuration.
func (c *Config) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Meet.Validate(); err != nil {
		return fmt.Errorf("meet: %w", err)
	}
	if err := c.Drive.Validate(); err != nil {
		return fmt.Errorf("drive: %w", err)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
