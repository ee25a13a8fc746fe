// Package sqlite provides SQLite-backed persistence for the gallery.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/mansionapp/mansion-server/internal/util"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// defaultCategories is the fixed seed set. Inserted with INSERT OR IGNORE
// on every open; existing rows are never touched. Slugs are derived with
// util.Slugify ("All" -> "all").
var defaultCategories = []string{
	"All", "Latina", "Ebony", "Asian", "Thick", "Slim", "Bikini", "Lingerie",
}

// Store provides SQLite-backed persistence for the gallery server.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, runs schema migrations, and seeds
// the default categories.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer; keep the pool small.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	s := &Store{db: db, logger: logger}

	if err := s.seedCategories(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// seedCategories inserts the default category set, ignoring duplicates.
func (s *Store) seedCategories(ctx context.Context) error {
	now := formatTime(time.Now().UTC())
	for _, name := range defaultCategories {
		slug := util.Slugify(name)
		_, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO categories (name, slug, created_at)
			VALUES (?, ?, ?)`,
			name, slug, now)
		if err != nil {
			return fmt.Errorf("insert category %q: %w", slug, err)
		}
	}
	return nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
// Lexicographic order on the stored strings matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString returns a sql.NullString from a string, treating "" as NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt converts a bool to the 0/1 representation stored in SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
