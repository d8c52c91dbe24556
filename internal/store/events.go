package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const eventColumns = `id, title, start_time, end_time, location, reminder_minutes, notified, raw_text, created_at`

// AddEvent inserts a new event and sets its ID and CreatedAt.
func (s *SQLiteStore) AddEvent(ctx context.Context, e *Event) (int64, error) {
	if e.Title == "" {
		return 0, fmt.Errorf("adding event: title is empty")
	}

	now := time.Now()

	var end any
	if e.EndTime != nil {
		end = formatTime(*e.EndTime)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO events (title, start_time, end_time, location, reminder_minutes, notified, raw_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Title, formatTime(e.StartTime), end, e.Location, e.ReminderMinutes,
		boolToInt(e.Notified), e.RawText, formatTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("adding event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting event id: %w", err)
	}

	e.ID = id
	e.CreatedAt = now
	return id, nil
}

// GetEvent fetches one event by ID. Returns ErrNotFound when it does not
// exist.
func (s *SQLiteStore) GetEvent(ctx context.Context, id int64) (*Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting event %d: %w", id, err)
	}
	return e, nil
}

// UpdateEvent applies a partial update to an event. A patch with no set
// fields is a no-op.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, id int64, patch EventPatch) error {
	var sets []string
	var args []any

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.StartTime != nil {
		sets = append(sets, "start_time = ?")
		args = append(args, formatTime(*patch.StartTime))
	}
	if patch.EndTime != nil {
		sets = append(sets, "end_time = ?")
		args = append(args, formatTime(*patch.EndTime))
	}
	if patch.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *patch.Location)
	}
	if patch.ReminderMinutes != nil {
		sets = append(sets, "reminder_minutes = ?")
		args = append(args, *patch.ReminderMinutes)
	}
	if patch.Notified != nil {
		sets = append(sets, "notified = ?")
		args = append(args, boolToInt(*patch.Notified))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	result, err := s.db.ExecContext(ctx,
		"UPDATE events SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating event %d: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating event %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event by ID.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting event %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EventsBetween returns events with start_time in [from, to), ordered by
// start time. The comparison runs on the stored strings; the wire layout
// keeps lexicographic and chronological order identical.
func (s *SQLiteStore) EventsBetween(ctx context.Context, from, to time.Time) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE start_time >= ? AND start_time < ?
		 ORDER BY start_time ASC`,
		formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("querying events between: %w", err)
	}
	return collectEvents(rows)
}

// EventsOnDay returns the events of one calendar day (00:00 to 24:00).
func (s *SQLiteStore) EventsOnDay(ctx context.Context, day time.Time) ([]*Event, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return s.EventsBetween(ctx, start, start.AddDate(0, 0, 1))
}

// EventsInWeek returns the events of the seven days starting at weekStart.
func (s *SQLiteStore) EventsInWeek(ctx context.Context, weekStart time.Time) ([]*Event, error) {
	start := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())
	return s.EventsBetween(ctx, start, start.AddDate(0, 0, 7))
}

// EventsInMonth returns the events of one calendar month.
func (s *SQLiteStore) EventsInMonth(ctx context.Context, year int, month time.Month) ([]*Event, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return s.EventsBetween(ctx, start, start.AddDate(0, 1, 0))
}

// SearchEvents finds events whose title or location contains the keyword.
// Uses LIKE rather than FTS: titles and locations are short diacritic-heavy
// Vietnamese phrases that FTS5's unicode tokenizer splits poorly.
func (s *SQLiteStore) SearchEvents(ctx context.Context, keyword string) ([]*Event, error) {
	kw := "%" + keyword + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE title LIKE ? OR location LIKE ?
		 ORDER BY start_time ASC`,
		kw, kw,
	)
	if err != nil {
		return nil, fmt.Errorf("searching events: %w", err)
	}
	return collectEvents(rows)
}

// AllEvents returns every event ordered by start time.
func (s *SQLiteStore) AllEvents(ctx context.Context) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return collectEvents(rows)
}

// UnnotifiedEvents returns events whose reminder has not fired yet, ordered
// by start time.
func (s *SQLiteStore) UnnotifiedEvents(ctx context.Context) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE notified = 0 ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying unnotified events: %w", err)
	}
	return collectEvents(rows)
}

// MarkNotified records that the reminder for an event has been delivered.
func (s *SQLiteStore) MarkNotified(ctx context.Context, id int64) error {
	notified := true
	return s.UpdateEvent(ctx, id, EventPatch{Notified: &notified})
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		e          Event
		start      string
		end        sql.NullString
		location   sql.NullString
		rawText    sql.NullString
		notified   int
		createdStr string
	)
	if err := row.Scan(&e.ID, &e.Title, &start, &end, &location,
		&e.ReminderMinutes, &notified, &rawText, &createdStr); err != nil {
		return nil, err
	}

	st, err := parseTime(start)
	if err != nil {
		return nil, err
	}
	e.StartTime = st

	if end.Valid && end.String != "" {
		et, err := parseTime(end.String)
		if err != nil {
			return nil, err
		}
		e.EndTime = &et
	}

	ct, err := parseTime(createdStr)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = ct

	e.Location = location.String
	e.RawText = rawText.String
	e.Notified = notified != 0
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]*Event, error) {
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
