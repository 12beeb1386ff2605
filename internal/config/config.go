package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port     int    `env:"CIRCLE_PORT" envDefault:"8742"`
	DBPath   string `env:"CIRCLE_DB_PATH" envDefault:"./data/circle.db"`
	DBDriver string `env:"CIRCLE_DB_DRIVER" envDefault:"sqlite3"`
	APIKey   string `env:"CIRCLE_API_KEY"`
	LogLevel string `env:"CIRCLE_LOG_LEVEL" envDefault:"info"`
	// Seed data
	Seed     bool   `env:"CIRCLE_SEED" envDefault:"true"`
	SeedFile string `env:"CIRCLE_SEED_FILE"`
	// Narrative generation
	AIProvider string        `env:"CIRCLE_AI_PROVIDER" envDefault:"gemini"`
	AIModel    string        `env:"CIRCLE_AI_MODEL"`
	AIAPIKey   string        `env:"CIRCLE_AI_API_KEY"`
	AITimeout  time.Duration `env:"CIRCLE_AI_TIMEOUT" envDefault:"60s"`
	// Tracing
	OTLPEndpoint string `env:"CIRCLE_OTLP_ENDPOINT"`
	// Terminal app and MCP adapter
	ServerURL string `env:"CIRCLE_SERVER_URL" envDefault:"http://localhost:8742"`
	TUILog    string `env:"CIRCLE_TUI_LOG"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// API_KEY is honoured when CIRCLE_AI_API_KEY is unset.
	if cfg.AIAPIKey == "" {
		fallback, err := env.ParseAsWithOptions[struct {
			Key string `env:"API_KEY"`
		}](opts)
		if err != nil {
			return nil, fmt.Errorf("parse env: %w", err)
		}
		cfg.AIAPIKey = fallback.Key
	}

	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("CIRCLE_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("CIRCLE_DB_PATH must not be empty")
	}
	switch c.DBDriver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("CIRCLE_DB_DRIVER must be sqlite3 or sqlite, got %q", c.DBDriver)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("CIRCLE_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.AIProvider {
	case "gemini", "openai", "anthropic", "none":
	default:
		return fmt.Errorf("CIRCLE_AI_PROVIDER must be gemini, openai, anthropic or none, got %q", c.AIProvider)
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("CIRCLE_AI_TIMEOUT must be positive, got %s", c.AITimeout)
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CIRCLE_SERVER_URL must be an absolute URL, got %q", c.ServerURL)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
