// Package sqlstore implements storage.Storage on top of sqlx.
//
// The same queries run against two drivers: SQLite (mattn/go-sqlite3, the
// default, also used in tests with ":memory:") and PostgreSQL (lib/pq).
// Queries are written with ? placeholders and rebound for the active driver.
package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/college-api/internal/storage"
)

// Supported values for the storage driver setting.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var _ storage.Storage = (*Store)(nil)

// Store is the sqlx-backed storage.Storage.
type Store struct {
	db     *sqlx.DB
	driver string

	// now is the clock used for createdAt/updatedAt.
	now func() time.Time
}

// DriverFor resolves the configured driver, falling back to the DSN's scheme
// when none is set.
func DriverFor(driver, dsn string) string {
	if driver != "" {
		return driver
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// New connects to dsn and makes sure the schema exists.
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	s, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.db.Close()
		return nil, err
	}
	return s, nil
}

// Open connects without touching the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var sqlDriver string
	switch driver {
	case DriverSQLite:
		sqlDriver = "sqlite3"
	case DriverPostgres:
		sqlDriver = "postgres"
	default:
		return nil, fmt.Errorf("sqlstore.Open: unsupported driver %q", driver)
	}

	if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("sqlstore.Open: create database directory: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore.Open: connect %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one connection: every ":memory:" connection is its own database,
		// and SQLite serializes writers anyway.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlstore.Open: enable foreign keys: %w", err)
		}
	}

	return &Store{
		db:     db,
		driver: driver,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}, nil
}

// Migrate creates the tables and indexes if they do not exist yet. It is
// idempotent and safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore.Migrate: %w", err)
		}
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// forUpdate is the row lock clause for read-modify-write transactions.
// SQLite locks the whole database for a write transaction and has no such clause.
func (s *Store) forUpdate() string {
	if s.driver == DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id         TEXT      PRIMARY KEY,
		name       TEXT      NOT NULL,
		course     TEXT      NOT NULL,
		level      INTEGER   NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id           TEXT      PRIMARY KEY,
		title        TEXT      NOT NULL,
		code         TEXT      NOT NULL,
		department   TEXT      NOT NULL,
		credit_units INTEGER   NOT NULL,
		level        INTEGER   NOT NULL,
		semester     TEXT      NOT NULL,
		is_elective  BOOLEAN   NOT NULL DEFAULT FALSE,
		description  TEXT      NOT NULL DEFAULT '',
		created_at   TIMESTAMP NOT NULL,
		updated_at   TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS courses_code_key ON courses (code)`,
}
