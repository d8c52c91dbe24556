// Package store provides the SQLite storage layer for nhac.
//
// All schedule data lives in a single SQLite database file: the events
// extracted from natural-language sentences, their reminder state, and the
// raw input each record was extracted from.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/trmanh/nhac/internal/nlp"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.nhac/nhac.db"

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("event not found")

// Event is a persisted schedule event.
type Event struct {
	ID              int64
	Title           string
	StartTime       time.Time
	EndTime         *time.Time
	Location        string
	ReminderMinutes int
	Notified        bool
	RawText         string
	CreatedAt       time.Time
}

// FromExtracted converts an extraction result into a storable event.
func FromExtracted(ev nlp.ExtractedEvent) *Event {
	return &Event{
		Title:           ev.Title,
		StartTime:       ev.StartTime,
		EndTime:         ev.EndTime,
		Location:        ev.Location,
		ReminderMinutes: ev.ReminderMinutes,
		RawText:         ev.RawText,
	}
}

// EventPatch holds a partial update; nil fields are left unchanged.
type EventPatch struct {
	Title           *string
	StartTime       *time.Time
	EndTime         *time.Time
	Location        *string
	ReminderMinutes *int
	Notified        *bool
}

// StoreStats holds observability statistics about the store.
type StoreStats struct {
	EventCount      int64
	UnnotifiedCount int64
	DBSizeBytes     int64
}

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath string
}

// Store defines the storage interface consumed by the CLI, the reminder
// watcher, and the MCP surface.
type Store interface {
	AddEvent(ctx context.Context, e *Event) (int64, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	UpdateEvent(ctx context.Context, id int64, patch EventPatch) error
	DeleteEvent(ctx context.Context, id int64) error

	// Range queries. EventsBetween is half-open: [from, to).
	EventsBetween(ctx context.Context, from, to time.Time) ([]*Event, error)
	EventsOnDay(ctx context.Context, day time.Time) ([]*Event, error)
	EventsInWeek(ctx context.Context, weekStart time.Time) ([]*Event, error)
	EventsInMonth(ctx context.Context, year int, month time.Month) ([]*Event, error)

	SearchEvents(ctx context.Context, keyword string) ([]*Event, error)
	AllEvents(ctx context.Context) ([]*Event, error)

	// Reminder state
	UnnotifiedEvents(ctx context.Context) ([]*Event, error)
	MarkNotified(ctx context.Context, id int64) error

	Stats(ctx context.Context) (*StoreStats, error)
	Vacuum(ctx context.Context) error
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new SQLite-backed Store.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (Store, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = ExpandPath(DefaultDBPath)
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite allows one writer; a single pooled connection also keeps
	// ":memory:" databases from silently splitting across connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: cfg.DBPath}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Vacuum runs VACUUM on the database. Manual only, never automatic.
func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// Stats returns current database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{}

	queries := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM events", &stats.EventCount},
		{"SELECT COUNT(*) FROM events WHERE notified = 0", &stats.UnnotifiedCount},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("querying stats (%s): %w", q.query, err)
		}
	}

	// DB size only works for file-based databases.
	if s.dbPath != ":memory:" {
		var pageCount, pageSize int64
		s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
		s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		stats.DBSizeBytes = pageCount * pageSize
	}

	return stats, nil
}

// ExpandPath expands ~ to the home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// formatTime renders a timestamp in the wire layout used for all time
// columns. Lexicographic order on the stored strings matches chronological
// order, which the range queries rely on.
func formatTime(t time.Time) string {
	return t.Format(nlp.TimeLayout)
}

// parseTime reads a stored timestamp back as local wall time, the same
// interpretation the extractor used when it produced it.
func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(nlp.TimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored timestamp %q: %w", s, err)
	}
	return t, nil
}
