package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strangerchat/backend/internal/analysis"
	"strangerchat/backend/internal/api/handler"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/localization"
	"strangerchat/backend/internal/ratelimit"
	"strangerchat/backend/internal/storage"
	"strangerchat/backend/internal/telegram"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("StrangerChat stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.SetupLogger(cfg.LogLevel, cfg.LogPretty); err != nil {
		return err
	}
	log.Info().Msg("Starting StrangerChat backend...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional PostgreSQL for anonymous daily totals.
	var (
		store      storage.Storage
		statsStore analysis.StatsStore
	)
	if cfg.DatabaseEnabled() {
		db, err := storage.Open(cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		svc := storage.NewStorageService(db)
		if err := svc.Migrate(); err != nil {
			return err
		}
		store, statsStore = svc, svc
		log.Info().Msg("Usage stats are persisted to PostgreSQL")
	}

	// Optional Redis for the relay flood limiter.
	var limiter chathub.RelayLimiter = ratelimit.Unlimited{}
	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect Redis: %w", err)
		}
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RelayLimit, cfg.RelayWindow)
		log.Info().Int("limit", cfg.RelayLimit).Dur("window", cfg.RelayWindow).Msg("Relay limiter enabled")
	}

	counter := analysis.NewCounter(statsStore)
	hub := chathub.NewManagerService(counter, limiter)

	localizer, err := localization.New(cfg.DefaultLanguage)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		counter.Run(ctx, cfg.StatsFlushInterval)
	}()

	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBotService(cfg.TelegramBotToken, hub, localizer, cfg.ClientBufferSize)
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("failed to start Telegram bot: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			bot.Run(ctx)
		}()
	} else {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, Telegram transport disabled")
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = uuid.NewString() + uuid.NewString()
		log.Warn().Msg("JWT_SECRET not set, anonymous tokens are valid until restart")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger())
	h := handler.NewHandler(ctx, hub, counter, store, jwtSecret, cfg.ClientBufferSize)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
	case err = <-serveErr:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("HTTP server forced to shutdown")
	}

	wg.Wait()
	log.Info().Msg("StrangerChat exited")
	return err
}
