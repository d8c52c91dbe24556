package store

import "fmt"

// migrate creates all tables if they don't exist and applies idempotent
// schema evolutions.
func (s *SQLiteStore) migrate() error {
	if err := s.runBootstrapDDL(); err != nil {
		return err
	}

	// Schema evolution: raw_text provenance column. Added after the first
	// release; ALTER TABLE can't live inside CREATE TABLE IF NOT EXISTS, so
	// we check for the column first to keep this idempotent.
	if err := s.migrateRawTextColumn(); err != nil {
		return fmt.Errorf("migrating raw_text column: %w", err)
	}

	return nil
}

// runBootstrapDDL creates the base schema in one transaction.
func (s *SQLiteStore) runBootstrapDDL() error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT,
			location TEXT DEFAULT '',
			reminder_minutes INTEGER DEFAULT 10,
			notified INTEGER DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_start_time ON events(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_events_notified ON events(notified, start_time)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', '1')`,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting bootstrap transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range ddl {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("bootstrap DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bootstrap: %w", err)
	}
	return nil
}

// migrateRawTextColumn adds the raw_text column when missing.
func (s *SQLiteStore) migrateRawTextColumn() error {
	has, err := s.hasColumn("events", "raw_text")
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	if _, err := s.db.Exec(`ALTER TABLE events ADD COLUMN raw_text TEXT DEFAULT ''`); err != nil {
		return fmt.Errorf("adding raw_text column: %w", err)
	}
	return nil
}

// hasColumn reports whether a table already has the named column.
func (s *SQLiteStore) hasColumn(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("reading table info for %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  any
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return false, fmt.Errorf("scanning table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
