// Package db owns the shared database handle. It supports the
// production PostgreSQL backend and an embedded SQLite backend for
// local runs and tests, behind the same sqlx interface.
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bible-concord-api/internal/config"
)

var (
	sqlDB  *sqlx.DB
	dbOnce sync.Once
	dbMu   sync.RWMutex
)

// Init opens the configured database, verifies connectivity and runs
// migrations. Safe to call more than once; only the first call does
// any work.
func Init(ctx context.Context) error {
	var initErr error
	dbOnce.Do(func() {
		cfg := config.GetConfig()
		d, err := Open(ctx, cfg.DBDriver, cfg.DBURI)
		if err != nil {
			initErr = err
			return
		}
		sqlDB = d
	})
	return initErr
}

// Open connects to the given database, tunes the pool, pings it and
// applies the schema. Callers outside of Init (scripts, tests) use it
// to get an independent handle.
func Open(ctx context.Context, driver, uri string) (*sqlx.DB, error) {
	if uri == "" {
		return nil, fmt.Errorf("DB_URI is required")
	}

	d, err := sqlx.ConnectContext(ctx, driver, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	switch driver {
	case "sqlite3":
		// A single connection keeps in-memory databases coherent and
		// serializes writers, which SQLite requires anyway.
		d.SetMaxOpenConns(1)
	default:
		d.SetMaxOpenConns(25)
		d.SetMaxIdleConns(25)
		d.SetConnMaxLifetime(5 * time.Minute)
		d.SetConnMaxIdleTime(1 * time.Minute)
	}

	if err := d.PingContext(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	if err := Migrate(d); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to migrate %s: %w", driver, err)
	}

	return d, nil
}

// Get returns the shared database handle.
func Get() *sqlx.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return sqlDB
}

// Close closes the shared database handle.
func Close() error {
	dbMu.Lock()
	defer dbMu.Unlock()
	if sqlDB != nil {
		return sqlDB.Close()
	}
	return nil
}
