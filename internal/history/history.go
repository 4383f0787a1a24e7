// Package history keeps the listening log: one row per station that
// started playing, stored in SQLite. Nothing here feeds back into playback.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"tuner/internal/station"
)

// maxEntries bounds the log; older rows are pruned on Save.
const maxEntries = 1000

// Entry is one play of a station.
type Entry struct {
	ID        int64
	StationID string
	Name      string
	URL       string
	StartedAt time.Time
}

// Store is the listening log database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the log at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			station_id TEXT NOT NULL,
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			started_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_plays_started_at ON plays(started_at);
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save records that st started playing at the given time.
func (s *Store) Save(ctx context.Context, st station.Station, at time.Time) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO plays (station_id, name, url, started_at) VALUES (?, ?, ?, ?)`,
			st.ID, st.Name, st.URL, at.Unix(),
		); err != nil {
			return fmt.Errorf("inserting play: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM plays WHERE id NOT IN (
				SELECT id FROM plays ORDER BY started_at DESC, id DESC LIMIT ?
			)`, maxEntries,
		); err != nil {
			return fmt.Errorf("pruning history: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, station_id, name, url, started_at
		FROM plays
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started int64
		if err := rows.Scan(&e.ID, &e.StationID, &e.Name, &e.URL, &started); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.StartedAt = time.Unix(started, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

// Remove deletes every entry for a station.
func (s *Store) Remove(ctx context.Context, stationID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plays WHERE station_id = ?`, stationID); err != nil {
		return fmt.Errorf("removing %s from history: %w", stationID, err)
	}
	return nil
}

// Clear empties the log.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plays`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// FormatForDisplay creates one display line per entry.
func FormatForDisplay(entries []Entry) []string {
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		items = append(items, fmt.Sprintf("%s  %-24s %s",
			e.StartedAt.Local().Format("2006-01-02 15:04"), e.Name, e.StationID))
	}
	return items
}

// withTx runs fn in a transaction, rolling back on error.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
