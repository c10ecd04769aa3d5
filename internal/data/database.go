/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package data

import (
	"context"
	"fmt"
	"time"

	"studybud/internal/entity"
	"studybud/internal/nlog"
	"studybud/internal/repository"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Where and how to reach the database
type DBConfig struct {
	Driver string // sqlite or postgres
	DSN    string // File path (or ":memory:") for sqlite, connection URL for postgres
	Logger nlog.Logger
	Debug  bool // Logs every statement instead of just errors and slow queries
}

// Opens the database and applies the schema.
func Open(cfg DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.New(sqlite.Config{DriverName: repository.SQLiteDriver, DSN: cfg.DSN})
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger(cfg.Logger, cfg.Debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// A single connection serializes writers and keeps ":memory:" a single database
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Creates or updates the tables of every entity.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&entity.Room{}, "Participants", &entity.RoomParticipant{}); err != nil {
		return fmt.Errorf("setting up participants: %w", err)
	}
	return db.AutoMigrate(
		&entity.User{},
		&entity.UserSecret{},
		&entity.Topic{},
		&entity.Room{},
		&entity.RoomParticipant{},
		&entity.Message{},
	)
}

// Checks the connection is alive
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Adapts a subsystem logger to the Printf writer gorm expects
type gormWriter struct {
	logger nlog.Logger
}

func (w gormWriter) Printf(format string, v ...any) {
	w.logger.Logf(format, v...)
}

func gormLogger(l nlog.Logger, debug bool) logger.Interface {
	if l == nil {
		return logger.Default.LogMode(logger.Silent)
	}
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(gormWriter{l}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
