package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the database handle and hands out repositories. Queries are
// built with the ent SQL builder so the same repositories run on SQLite
// and Postgres.
type Store struct {
	db      *sql.DB
	dialect string
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs the schema migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: pragmas are per connection and SQLite has a single
	// writer anyway.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s, err := New(context.Background(), db, dialect.SQLite)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database. name is an ent dialect name
// (dialect.SQLite or dialect.Postgres).
func New(ctx context.Context, db *sql.DB, name string) (*Store, error) {
	switch name {
	case dialect.SQLite, dialect.Postgres:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", name)
	}
	s := &Store{db: db, dialect: name}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect the store was opened with.
func (s *Store) Dialect() string {
	return s.dialect
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Assessments returns the assessment repository.
func (s *Store) Assessments() *AssessmentRepo {
	return &AssessmentRepo{s: s}
}

// Profiles returns the profile skill repository.
func (s *Store) Profiles() *ProfileRepo {
	return &ProfileRepo{s: s}
}

// LLMEvents returns the LLM request event repository.
func (s *Store) LLMEvents() *EventRepo {
	return &EventRepo{s: s}
}

// Analytics returns the per-skill statistics repository.
func (s *Store) Analytics() *AnalyticsRepo {
	return &AnalyticsRepo{s: s}
}

func (s *Store) sql() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// applyPragmas configures SQLite for a small server with one writer.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ZIRAK_DB environment variable
// 2. $XDG_DATA_HOME/zirak/zirak.db
// 3. ~/.local/share/zirak/zirak.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ZIRAK_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "zirak", "zirak.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Times are stored as unix milliseconds in UTC.

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
