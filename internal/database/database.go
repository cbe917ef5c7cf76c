package database

import (
	"fmt"

	"boxing-arena-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options controls how the database is opened.
type Options struct {
	// Path is the SQLite file; ":memory:" opens a private in-memory database.
	Path string
	// LogLevel is the application log level; gorm logs SQL only at debug.
	LogLevel string
}

// Open connects to SQLite and runs migrations.
// Using glebarez/sqlite which is a pure Go implementation (no CGO required)
func Open(opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(opts.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLevel(opts.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database %q: %w", opts.Path, err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:" shared.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Boxer{},
		&models.Meal{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
