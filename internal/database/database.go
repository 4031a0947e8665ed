package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabeVald/Personal-Task-Manager/internal/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pragmas builds the per-database settings. WAL lets readers run while a
// statement import is writing; busy_timeout absorbs the remaining write
// contention instead of failing fast with SQLITE_BUSY.
func pragmas(cfg config.DatabaseConfig) []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeoutMS),
	}
}

// Init opens the SQLite database at cfg.Path, applies the pragmas, sizes the
// connection pool from config and migrates the schema. TranslateError is on
// so unique violations surface as gorm.ErrDuplicatedKey for the handlers.
func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if cfg.LogMode {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	for _, pragma := range pragmas(cfg) {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
