package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/terraincognita07/medport/internal/config"
	"github.com/terraincognita07/medport/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to the configured database and brings its schema up to date.
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "", config.DriverSQLite:
		return OpenSQLite(cfg.Path, logger, cfg.LogLevel)
	case config.DriverPostgres:
		return OpenPostgres(cfg.DSN, logger, cfg.LogLevel)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func OpenSQLite(dbPath string, logger *slog.Logger, logLevel string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	gormLogger, levelErr := newGormLogger(logger, logLevel)
	if levelErr != nil && logger != nil {
		logger.Warn("invalid gorm log level", "value", logLevel, "error", levelErr)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyEmbeddedMigrations(database, logger); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return database, nil
}

// OpenPostgres connects to PostgreSQL. The embedded migrations are SQLite
// dialect, so the schema is reconciled from the models instead.
func OpenPostgres(dsn string, logger *slog.Logger, logLevel string) (*gorm.DB, error) {
	gormLogger, levelErr := newGormLogger(logger, logLevel)
	if levelErr != nil && logger != nil {
		logger.Warn("invalid gorm log level", "value", logLevel, "error", levelErr)
	}

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := database.AutoMigrate(&models.Color{}, &models.Medication{}, &models.Reminder{}, &models.ReminderEvent{}); err != nil {
		return nil, fmt.Errorf("auto-migrate postgres: %w", err)
	}
	return database, nil
}
