package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteFile is the database file used when the sqlite driver has no DSN.
const SQLiteFile = "trinix.db"

// Open returns the RecordStore selected by driver. "csv" (or "") keeps the
// flat files under dataDir; the SQL drivers connect through GORM using dsn.
func Open(driver, dataDir, dsn string) (RecordStore, error) {
	var dialector gorm.Dialector

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "csv":
		return NewCSVStore(dataDir)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		if dsn == "" {
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
			dsn = filepath.Join(dataDir, SQLiteFile)
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s database: %w", driver, err)
	}

	s, err := NewGormStore(db)
	if err != nil {
		return nil, err
	}
	log.Printf("[STORE] connected %s backend", driver)
	return s, nil
}
