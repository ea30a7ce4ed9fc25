// Package config loads the client configuration: a YAML file with
// environment overrides for the endpoints.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level client configuration.
type Config struct {
	// StreamURL is the websocket push-stream endpoint.
	StreamURL string `yaml:"stream_url" validate:"required"`

	// APIBaseURL is the REST base URL for mutations and fallbacks.
	APIBaseURL string `yaml:"api_base_url" validate:"required"`

	// DBPath is the local BoltDB file for the persisted cache copy.
	DBPath string `yaml:"db_path"`

	// ReconnectBaseMs scales the reconnect delay per attempt.
	ReconnectBaseMs int `yaml:"reconnect_base_ms" validate:"gte=0"`

	// ReconnectCapMs caps the reconnect delay.
	ReconnectCapMs int `yaml:"reconnect_cap_ms" validate:"gte=0"`

	// MaxReconnectAttempts bounds reconnection; 0 means unbounded.
	MaxReconnectAttempts int `yaml:"max_reconnect_attempts" validate:"gte=0"`

	// SuppressTTLMs is the lifetime of local-operation keys.
	SuppressTTLMs int `yaml:"suppress_ttl_ms" validate:"gte=0"`

	// CacheTTLMs bounds the age of the persisted cache on startup.
	CacheTTLMs int `yaml:"cache_ttl_ms" validate:"gte=0"`

	// WindowMinutes is the coarse scheduling window length.
	WindowMinutes int `yaml:"window_minutes" validate:"eq=0|gte=60"`

	// DayStart is the minute-of-day the first window opens at ("HH:MM").
	DayStart string `yaml:"day_start"`

	// FreeRoam toggles free-roam scheduling mode.
	FreeRoam bool `yaml:"free_roam"`
}

// Defaults applied before validation.
const (
	defaultDBPath          = "bookdesk-client.db"
	defaultReconnectBaseMs = 1000
	defaultReconnectCapMs  = 30000
	defaultSuppressTTLMs   = 5000
	defaultCacheTTLMs      = 3600000
)

// Load reads the YAML config at path and applies environment overrides
// (BOOKDESK_STREAM_URL, BOOKDESK_API_URL, BOOKDESK_DB). A .env file is
// honored when present.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}

	// .env необязателен
	_ = godotenv.Load()

	if v := os.Getenv("BOOKDESK_STREAM_URL"); v != "" {
		cfg.StreamURL = v
	}
	if v := os.Getenv("BOOKDESK_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("BOOKDESK_DB"); v != "" {
		cfg.DBPath = v
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}
	if c.ReconnectBaseMs == 0 {
		c.ReconnectBaseMs = defaultReconnectBaseMs
	}
	if c.ReconnectCapMs == 0 {
		c.ReconnectCapMs = defaultReconnectCapMs
	}
	if c.SuppressTTLMs == 0 {
		c.SuppressTTLMs = defaultSuppressTTLMs
	}
	if c.CacheTTLMs == 0 {
		c.CacheTTLMs = defaultCacheTTLMs
	}
}

// ReconnectBase returns the base reconnect interval as a duration.
func (c *Config) ReconnectBase() time.Duration {
	return time.Duration(c.ReconnectBaseMs) * time.Millisecond
}

// ReconnectCap returns the reconnect delay cap as a duration.
func (c *Config) ReconnectCap() time.Duration {
	return time.Duration(c.ReconnectCapMs) * time.Millisecond
}

// SuppressTTL returns the local-operation key lifetime as a duration.
func (c *Config) SuppressTTL() time.Duration {
	return time.Duration(c.SuppressTTLMs) * time.Millisecond
}

// CacheTTL returns the persisted-cache lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMs) * time.Millisecond
}
