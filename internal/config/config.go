// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	BaseURL        string        `env:"SIGNUP_BASE_URL" envDefault:"http://127.0.0.1:8000"`
	DBPath         string        `env:"SIGNUP_DB_PATH" envDefault:"signupdesk.db"`
	SecretKeyHex   string        `env:"SIGNUP_SECRET_KEY"`
	RequestTimeout time.Duration `env:"SIGNUP_REQUEST_TIMEOUT" envDefault:"0s"`
	MessageTTL     time.Duration `env:"SIGNUP_MESSAGE_TTL" envDefault:"5s"`
	HTTPCache      bool          `env:"SIGNUP_HTTP_CACHE" envDefault:"true"`
	LogLevel       string        `env:"SIGNUP_LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"SIGNUP_LOG_FORMAT" envDefault:"text"`

	// SecretKey is the decoded SIGNUP_SECRET_KEY, nil when unset.
	SecretKey []byte
	// Origin is scheme://host[:port] of BaseURL. Stored credentials are scoped to it.
	Origin string
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional. SIGNUP_SECRET_KEY, when set, must be 64 hex characters
// (32 bytes) and enables AES-256-GCM encryption of the stored admin token.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("SIGNUP_BASE_URL is not a valid URL %q: %w", cfg.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("SIGNUP_BASE_URL must be an absolute http(s) URL, got %q", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.Origin = u.Scheme + "://" + strings.ToLower(u.Host)

	if cfg.SecretKeyHex != "" {
		key, err := hex.DecodeString(cfg.SecretKeyHex)
		if err != nil {
			return nil, fmt.Errorf("SIGNUP_SECRET_KEY must be hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("SIGNUP_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		cfg.SecretKey = key
	}

	if cfg.RequestTimeout < 0 {
		return nil, fmt.Errorf("SIGNUP_REQUEST_TIMEOUT must not be negative, got %s", cfg.RequestTimeout)
	}
	if cfg.MessageTTL <= 0 {
		return nil, fmt.Errorf("SIGNUP_MESSAGE_TTL must be positive, got %s", cfg.MessageTTL)
	}

	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("SIGNUP_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return &cfg, nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("SIGNUP_LOG_LEVEL has invalid level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// HasSecretKey reports whether the stored admin token is encrypted at rest.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}
