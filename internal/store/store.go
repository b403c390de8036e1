// Package store persists tracked industries, search history, the credit-risk
// company table, alerts, notifications, reports and county metrics in SQL.
// SQLite is the default; Postgres is used through pgx.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultSQLitePath = "riskmap.db"

type dialect int

const (
	sqliteDialect dialect = iota
	postgresDialect
)

// Store wraps a database/sql handle.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to driver (sqlite or postgres) at dsn and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		s   *Store
		err error
	)
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		s, err = openSQLite(dsn)
	case DriverPostgres, "pgx":
		s, err = openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		_ = s.db.Close()
		return nil, err
	}
	return s, nil
}

func openSQLite(path string) (*Store, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases shared and avoids
	// SQLITE_BUSY between writers.
	db.SetMaxOpenConns(1)
	return &Store{db: db, dialect: sqliteDialect}, nil
}

func openPostgres(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = "postgres://localhost/riskmap?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db, dialect: postgresDialect}, nil
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(q string) string {
	if s.dialect != postgresDialect {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(q), args...)
}

func (s *Store) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(q), args...)
}

func (s *Store) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(q), args...)
}

func (s *Store) migrate(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == postgresDialect {
		serial = "BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_industries (
			username TEXT NOT NULL,
			industry TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (username, industry)
		)`,
		`CREATE TABLE IF NOT EXISTS search_history (
			id ` + serial + `,
			username TEXT NOT NULL,
			query TEXT NOT NULL,
			searched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS companies (
			company TEXT PRIMARY KEY,
			industry TEXT NOT NULL,
			sub_industry TEXT NOT NULL,
			credit_rating TEXT NOT NULL,
			pd DOUBLE PRECISION NOT NULL,
			lgd DOUBLE PRECISION NOT NULL,
			expected_loss DOUBLE PRECISION NOT NULL,
			current_ratio DOUBLE PRECISION NOT NULL,
			roa DOUBLE PRECISION NOT NULL,
			roe DOUBLE PRECISION NOT NULL,
			leverage_ratio DOUBLE PRECISION NOT NULL,
			credit_var DOUBLE PRECISION NOT NULL,
			loan_amount DOUBLE PRECISION NOT NULL,
			fcr DOUBLE PRECISION NOT NULL,
			rating_change_prob DOUBLE PRECISION NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			company_name TEXT NOT NULL,
			metric TEXT NOT NULL,
			condition TEXT NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			notify_email INTEGER NOT NULL,
			notify_sms INTEGER NOT NULL,
			notify_dashboard INTEGER NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_checked_at TEXT NOT NULL,
			last_triggered_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id ` + serial + `,
			alert_id TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL,
			is_read INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			company_name TEXT NOT NULL,
			sections TEXT NOT NULL,
			format TEXT NOT NULL,
			schedule TEXT NOT NULL,
			blob_key TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS county_metrics (
			county_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
