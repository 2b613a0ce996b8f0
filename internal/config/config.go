// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting. Optional integrations (Telegram,
// Redis, PostgreSQL) are disabled when their address is empty.
type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	HTTPAddr  string `env:"HTTP_ADDR,default=:8080" validate:"required"`
	JWTSecret string `env:"JWT_SECRET" validate:"omitempty,min=16"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0" validate:"gte=0"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	// RelayLimit is the number of payloads a user may relay per RelayWindow.
	// Zero disables limiting.
	RelayLimit  int           `env:"RELAY_LIMIT,default=30" validate:"gte=0"`
	RelayWindow time.Duration `env:"RELAY_WINDOW,default=10s" validate:"gt=0"`

	StatsFlushInterval time.Duration `env:"STATS_FLUSH_INTERVAL,default=1m" validate:"gt=0"`
	ClientBufferSize   int           `env:"CLIENT_BUFFER_SIZE,default=32" validate:"gte=1,lte=4096"`
	DefaultLanguage    string        `env:"DEFAULT_LANGUAGE,default=en" validate:"oneof=en uk ru"`

	LogLevel  string `env:"LOG_LEVEL,default=info" validate:"oneof=trace debug info warn error"`
	LogPretty bool   `env:"LOG_PRETTY,default=false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether the Telegram transport should start.
func (c *Config) TelegramEnabled() bool { return c.TelegramBotToken != "" }

// RedisEnabled reports whether the relay limiter has a Redis backend.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" && c.RelayLimit > 0 }

// DatabaseEnabled reports whether usage stats are persisted.
func (c *Config) DatabaseEnabled() bool { return c.DatabaseDSN != "" }
