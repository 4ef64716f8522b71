// Package storage keeps the recents database: which videos the user has
// asked about and when. Conversations themselves are never stored.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mvens/tubefrage/internal/types"
	_ "modernc.org/sqlite"
)

// migration is a numbered schema change. Migrations are applied in order
// and tracked in the schema_migrations table so each runs exactly once.
type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS recents (
    id             INTEGER PRIMARY KEY,
    video_id       TEXT UNIQUE NOT NULL,
    title          TEXT DEFAULT '',
    questions      INTEGER NOT NULL DEFAULT 0,
    last_asked_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
	},
}

// DefaultDBPath returns the standard location of the recents database.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "tubefrage", "tubefrage.db"), nil
}

// OpenDB opens (or creates) a SQLite database at the given path.
// It creates parent directories if needed, enables foreign keys and WAL mode,
// and runs any pending migrations.
func OpenDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// runMigrations ensures the schema_migrations table exists and applies any
// pending migrations in order.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return err
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := db.Exec(
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// TouchRecent records one asked question for a video: the row is created
// on first sight, the question counter increments, and last_asked_at moves
// to now. A non-empty title overwrites a previously unknown one.
func TouchRecent(db *sql.DB, videoID, title string) error {
	_, err := db.Exec(`
INSERT INTO recents (video_id, title, questions, last_asked_at)
VALUES (?, ?, 1, ?)
ON CONFLICT(video_id) DO UPDATE SET
    questions = questions + 1,
    last_asked_at = excluded.last_asked_at,
    title = CASE WHEN excluded.title != '' THEN excluded.title ELSE recents.title END`,
		videoID, title, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("touch recent %s: %w", videoID, err)
	}
	return nil
}

// SetTitle stores a title learned after the first question (the watch-page
// fetch races the first submit). Empty titles are ignored.
func SetTitle(db *sql.DB, videoID, title string) error {
	if title == "" {
		return nil
	}
	_, err := db.Exec("UPDATE recents SET title = ? WHERE video_id = ?", title, videoID)
	if err != nil {
		return fmt.Errorf("set title for %s: %w", videoID, err)
	}
	return nil
}

// ListRecents returns the most recently asked-about videos, newest first.
// limit <= 0 means no limit.
func ListRecents(db *sql.DB, limit int) ([]types.Recent, error) {
	q := "SELECT video_id, title, questions, last_asked_at FROM recents ORDER BY last_asked_at DESC"
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("list recents: %w", err)
	}
	defer rows.Close()

	var recents []types.Recent
	for rows.Next() {
		var r types.Recent
		if err := rows.Scan(&r.VideoID, &r.Title, &r.Questions, &r.LastAskedAt); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		recents = append(recents, r)
	}
	return recents, rows.Err()
}
