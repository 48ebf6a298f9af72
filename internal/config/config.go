package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// GoogleConfig holds the OAuth client credentials for the Google Calendar
// provider. Both fields must be set before authorization URLs can be built
// or codes exchanged.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

// Config is the top-level application configuration.
type Config struct {
	// Google holds the OAuth client credentials for Google Calendar.
	Google GoogleConfig `yaml:"google"`

	// RequestTimeoutSeconds is the fixed timeout applied to every outbound
	// HTTP call (provider REST, feed fetch, token exchange).
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// DatabaseURL, if set, selects the postgres-backed stores. When empty
	// the in-memory stores are used.
	DatabaseURL string `yaml:"database_url"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

// Default returns an in-memory default configuration.
func Default() *Config {
	return &Config{
		RequestTimeoutSeconds: 15,
		LogLevel:              "info",
	}
}

// RequestTimeout returns the outbound call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Load reads the configuration from path, creating the file with defaults
// on first run. Environment variables CALSYNC_GOOGLE_CLIENT_ID,
// CALSYNC_GOOGLE_CLIENT_SECRET and CALSYNC_DATABASE_URL override the file
// so credentials can stay out of it.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("CALSYNC_GOOGLE_CLIENT_ID"); v != "" {
		cfg.Google.ClientID = v
	}
	if v := os.Getenv("CALSYNC_GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Google.ClientSecret = v
	}
	if v := os.Getenv("CALSYNC_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	return cfg, nil
}

// Save writes the configuration to path with 0600 permissions, since the
// file may hold client credentials.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns the default config file location under the user
// config directory.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "calsync", "config.yaml")
}
