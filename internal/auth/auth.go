// Package auth manages OAuth credentials for the Google Meet and Drive
// APIs: client secrets loading, token persistence, refresh, and the
// initial browser-based authorization flow.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// OAuth scopes required to read conference records and export their
// documents.
const (
	ScopeMeetReadonly  = "https://www.googleapis.com/auth/meetings.space.readonly"
	ScopeDriveReadonly = "https://www.googleapis.com/auth/drive.readonly"
)

// Scopes returns the full scope set requested during authorization.
func Scopes() []string {
	return []string{ScopeMeetReadonly, ScopeDriveReadonly}
}

var (
	// ErrConfigMissing indicates the OAuth client secrets file could not
	// be loaded.
	ErrConfigMissing = errors.New("oauth client secrets not found")

	// ErrRefreshFailed indicates a stored token exists but could not be
	// refreshed; the user must re-authorize.
	ErrRefreshFailed = errors.New("token refresh failed, re-authorization required")

	// ErrNotAuthorized indicates no stored token exists yet.
	ErrNotAuthorized = errors.New("not authorized, run the login flow first")
)

// Config holds credential file locations.
type Config struct {
	// ClientSecretsFile is the OAuth client configuration downloaded
	// from the Google Cloud Console.
	ClientSecretsFile string `koanf:"client_secrets_file"`

	// TokenFile stores the authorized user token.
	TokenFile string `koanf:"token_file"`
}

// DefaultConfig returns credential paths under the user config
// directory.
func DefaultConfig() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	base := configDir()
	if c.ClientSecretsFile == "" {
		c.ClientSecretsFile = filepath.Join(base, "client_secrets.json")
	}
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(base, "tokens.json")
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ClientSecretsFile == "" {
		return fmt.Errorf("client_secrets_file is required")
	}
	if c.TokenFile == "" {
		return fmt.Errorf("token_file is required")
	}
	return nil
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "meetfetch")
	}
	return filepath.Join(".", ".meetfetch")
}
