// Package sqlite opens the SQLite flavour of the task store, used for local
// development (DB_DRIVER=sqlite) and as the in-memory database in tests.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"taskmanager-api/infrastructure/postgres"
)

// NewDatabase opens (or creates) the database file at path and migrates it.
func NewDatabase(path string, logSQL bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if logSQL {
		logLevel = logger.Info
	}
	return open(withParams(path, "_foreign_keys=on&_busy_timeout=5000"), logLevel)
}

// NewMemoryDatabase returns a private, migrated in-memory database.
func NewMemoryDatabase() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	return open(dsn, logger.Silent)
}

// withParams appends connection parameters to a path that may already carry
// a query string of its own.
func withParams(path, params string) string {
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers; one connection keeps transactions and the
	// conditional completion update from tripping over "database is locked".
	sqlDB.SetMaxOpenConns(1)

	if err := postgres.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}
	return db, nil
}
