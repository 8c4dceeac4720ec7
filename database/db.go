// Package database opens, migrates and closes the relational store that
// holds users and projects.
package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dboika/folio/config"
	"github.com/dboika/folio/database/model"
	"github.com/dboika/folio/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func initModels(db *gorm.DB) error {
	models := []any{
		&model.User{},
		&model.Project{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			logger.Errorf("Error auto migrating model %T: %v", m, err)
			return err
		}
	}
	return nil
}

// Open connects to the configured database, applies connection pragmas and
// migrates the schema. The caller owns the handle and must Close it.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectoryExists(); err != nil {
		return nil, err
	}

	var gormLogger gormlogger.Interface
	if config.IsDebug() {
		gormLogger = gormlogger.Default
	} else {
		gormLogger = gormlogger.Discard
	}

	c := &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case config.DatabaseTypePostgreSQL:
		dialector = postgres.Open(cfg.GetDSN())
	default:
		dialector = sqlite.Open(cfg.GetDSN())
	}

	db, err := gorm.Open(dialector, c)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}

	if cfg.IsSQLite() {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		for _, pragma := range []string{
			"PRAGMA cache_size = -64000;",
			"PRAGMA temp_store = MEMORY;",
		} {
			if _, err := sqlDB.Exec(pragma); err != nil {
				_ = sqlDB.Close()
				return nil, err
			}
		}
	}

	if err := initModels(db); err != nil {
		_ = Close(db)
		return nil, err
	}
	return db, nil
}

// Close checkpoints the SQLite WAL when applicable and releases the pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if IsSQLite(db) {
		if err := Checkpoint(db); err != nil {
			logger.Warning("error executing checkpoint:", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate brings the schema up to date on an already open handle.
func Migrate(db *gorm.DB) error {
	return initModels(db)
}

func IsSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err comes from a unique index. Drivers
// that gorm cannot translate are recognised by their message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

func Checkpoint(db *gorm.DB) error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
