// Package config loads aria configuration: defaults in code, overridden by a
// yaml file, overridden by environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"aria/internal/llm"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	EnableCORS bool   `yaml:"enable_cors"`
	Debug      bool   `yaml:"debug"`
}

// GraphConfig configures the workspace API client.
type GraphConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TokenFile      string `yaml:"token_file"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig toggles the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ConfirmConfig tunes the confirmation workflow's expiry policy.
type ConfirmConfig struct {
	// MaxAgeMinutes bounds how long an unconfirmed action stays available.
	MaxAgeMinutes int `yaml:"max_age_minutes"`
	// SweepIntervalMinutes is how often the expiry sweep runs.
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
}

// SessionConfig selects conversation persistence.
type SessionConfig struct {
	Backend string `yaml:"backend"` // memory, file
	Dir     string `yaml:"dir"`
}

// VoiceConfig selects speech providers.
type VoiceConfig struct {
	Provider string `yaml:"provider"` // mock
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	LLM      llm.Config    `yaml:"llm"`
	Graph    GraphConfig   `yaml:"graph"`
	Logging  LoggingConfig `yaml:"logging"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Confirm  ConfirmConfig `yaml:"confirm"`
	Sessions SessionConfig `yaml:"sessions"`
	Voice    VoiceConfig   `yaml:"voice"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:       "localhost",
			Port:       8080,
			EnableCORS: true,
		},
		LLM: llm.Config{
			Provider:   "openai",
			Model:      "gpt-4o-mini",
			MaxRetries: 2,
		},
		Graph: GraphConfig{
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{Enabled: true},
		Confirm: ConfirmConfig{
			MaxAgeMinutes:        60,
			SweepIntervalMinutes: 5,
		},
		Sessions: SessionConfig{Backend: "memory"},
		Voice:    VoiceConfig{Provider: "mock"},
	}
}

// Load reads configuration from path (optional) and applies environment
// overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the system assumes.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Confirm.MaxAgeMinutes <= 0 {
		return fmt.Errorf("confirm.max_age_minutes must be positive")
	}
	if c.Confirm.SweepIntervalMinutes <= 0 {
		return fmt.Errorf("confirm.sweep_interval_minutes must be positive")
	}
	switch c.Sessions.Backend {
	case "memory", "file":
	default:
		return fmt.Errorf("unknown session backend %q", c.Sessions.Backend)
	}
	return nil
}

// applyEnv overlays ARIA_* environment variables.
func applyEnv(cfg *Config) {
	setString(&cfg.LLM.APIKey, "ARIA_LLM_API_KEY", "OPENAI_API_KEY")
	setString(&cfg.LLM.BaseURL, "ARIA_LLM_BASE_URL")
	setString(&cfg.LLM.Model, "ARIA_LLM_MODEL")
	setString(&cfg.Graph.Token, "ARIA_GRAPH_TOKEN")
	setString(&cfg.Graph.TokenFile, "ARIA_GRAPH_TOKEN_FILE")
	setString(&cfg.Graph.BaseURL, "ARIA_GRAPH_BASE_URL")
	setString(&cfg.Logging.Level, "ARIA_LOG_LEVEL")
	setString(&cfg.Logging.Format, "ARIA_LOG_FORMAT")
	setString(&cfg.Sessions.Dir, "ARIA_SESSIONS_DIR")
	setInt(&cfg.Server.Port, "ARIA_PORT")
}

func setString(dst *string, keys ...string) {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			*dst = value
			return
		}
	}
}

func setInt(dst *int, key string) {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			*dst = n
		}
	}
}
