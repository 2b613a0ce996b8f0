package config_test

import (
	"strangerchat/backend/internal/config"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_DSN", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30, cfg.RelayLimit)
	assert.Equal(t, 10*time.Second, cfg.RelayWindow)
	assert.Equal(t, time.Minute, cfg.StatsFlushInterval)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.False(t, cfg.TelegramEnabled())
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.DatabaseEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("REDIS_ADDR", "localhost:6380")
	t.Setenv("RELAY_LIMIT", "5")
	t.Setenv("RELAY_WINDOW", "2s")
	t.Setenv("DEFAULT_LANGUAGE", "uk")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.True(t, cfg.TelegramEnabled())
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 5, cfg.RelayLimit)
	assert.Equal(t, 2*time.Second, cfg.RelayWindow)
	assert.Equal(t, "uk", cfg.DefaultLanguage)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"negative relay limit", func(c *config.Config) { c.RelayLimit = -1 }},
		{"zero window", func(c *config.Config) { c.RelayWindow = 0 }},
		{"unknown language", func(c *config.Config) { c.DefaultLanguage = "fr" }},
		{"short jwt secret", func(c *config.Config) { c.JWTSecret = "short" }},
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{
				HTTPAddr:           ":8080",
				RelayLimit:         1,
				RelayWindow:        time.Second,
				StatsFlushInterval: time.Minute,
				ClientBufferSize:   8,
				DefaultLanguage:    "en",
				LogLevel:           "info",
			}
			require.NoError(t, cfg.Validate())

			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSetupLogger(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	defer func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	}()

	require.NoError(t, config.SetupLogger("warn", false))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	require.NoError(t, config.SetupLogger("debug", true))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	assert.Error(t, config.SetupLogger("loud", false))
}
