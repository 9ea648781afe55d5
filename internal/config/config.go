package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends for session snapshots.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// devTokenSecret signs session tokens when no secret is configured in memory mode.
const devTokenSecret = "dev-only-session-secret"

// Config holds the server configuration, read from the environment.
type Config struct {
	HTTPAddr string     `env:"TTT_HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"TTT_LOG_LEVEL" envDefault:"info"`

	Store      string        `env:"TTT_STORE" envDefault:"memory"`
	RedisAddr  string        `env:"REDIS_CONNSTRING" envDefault:"localhost:6379"`
	SessionTTL time.Duration `env:"TTT_SESSION_TTL" envDefault:"30m"`

	TokenSecret string        `env:"TTT_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"TTT_TOKEN_TTL" envDefault:"24h"`

	Otel OtelConfig
}

// OtelConfig controls the OpenTelemetry exporters.
type OtelConfig struct {
	Enabled     bool   `env:"TTT_OTEL_ENABLED" envDefault:"false"`
	Endpoint    string `env:"TTT_OTEL_ENDPOINT" envDefault:"otel-collector:4317"`
	Stdout      bool   `env:"TTT_OTEL_STDOUT" envDefault:"false"`
	ServiceName string `env:"TTT_OTEL_SERVICE_NAME" envDefault:"tic-tac-toe"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory:
		if c.TokenSecret == "" {
			c.TokenSecret = devTokenSecret
		}
	case StoreRedis:
		if c.TokenSecret == "" {
			return errors.New("TTT_TOKEN_SECRET is required with the redis store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}
