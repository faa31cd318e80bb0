package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/depot-checkins/internal/config"
	"github.com/nurpe/depot-checkins/internal/model"
)

// New opens the kiosk's local SQLite store and brings the schema up to
// date. The kiosk is a single-node appliance; there is exactly one writer
// process, so no connection pooling concerns apply.
func New(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	gormLevel := gormlogger.Warn
	if cfg.Environment == "development" {
		gormLevel = gormlogger.Info
	}

	database, err := gorm.Open(sqlite.Open(cfg.DB.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DB.Path, err)
	}

	if err := Migrate(database); err != nil {
		return nil, err
	}

	log.Info().Str("path", cfg.DB.Path).Msg("database ready")
	return database, nil
}

// Migrate creates or updates the schema for all persisted records.
func Migrate(database *gorm.DB) error {
	err := database.AutoMigrate(
		&model.Driver{},
		&model.CheckinEvent{},
		&model.IncidentReport{},
		&model.NotificationSettings{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
