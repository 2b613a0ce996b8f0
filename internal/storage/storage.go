// Package storage persists anonymous usage statistics in PostgreSQL. Pairing
// state is never stored: it lives only in the hub's memory.
package storage

import (
	"context"
	"fmt"
	"strangerchat/backend/internal/models"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Storage is the read/write surface used by the service and the admin CLI.
type Storage interface {
	AddUsage(ctx context.Context, day time.Time, delta models.UsageDelta) error
	RecentStats(ctx context.Context, days int) ([]models.DailyStats, error)
	Migrate() error
}

// Service is the gorm implementation of Storage.
type Service struct {
	DB *gorm.DB
}

// Open connects to PostgreSQL.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect PostgreSQL: %w", err)
	}
	return db, nil
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Migrate creates or updates the stats table.
func (s *Service) Migrate() error {
	if err := s.DB.AutoMigrate(&models.DailyStats{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// AddUsage adds delta to the row of day, creating it if needed.
func (s *Service) AddUsage(ctx context.Context, day time.Time, delta models.UsageDelta) error {
	if err := upsertUsage(s.DB.WithContext(ctx), day, delta, time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("add usage for %s: %w", day.Format(time.DateOnly), err)
	}
	return nil
}

func upsertUsage(tx *gorm.DB, day time.Time, delta models.UsageDelta, now time.Time) *gorm.DB {
	row := models.DailyStats{
		Day:       day,
		Matches:   delta.Matches,
		Messages:  delta.Messages,
		Rotations: delta.Rotations,
		UpdatedAt: now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"matches":    gorm.Expr("daily_stats.matches + ?", delta.Matches),
			"messages":   gorm.Expr("daily_stats.messages + ?", delta.Messages),
			"rotations":  gorm.Expr("daily_stats.rotations + ?", delta.Rotations),
			"updated_at": now,
		}),
	}).Create(&row)
}

// RecentStats returns the last days rows, newest first.
func (s *Service) RecentStats(ctx context.Context, days int) ([]models.DailyStats, error) {
	var rows []models.DailyStats
	since := time.Now().UTC().AddDate(0, 0, -days)
	err := s.DB.WithContext(ctx).
		Where("day > ?", since).
		Order("day desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent stats: %w", err)
	}
	return rows, nil
}
