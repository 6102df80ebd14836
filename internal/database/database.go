// Package database implements the SQLite store for rooms, users and
// reservations.
package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the booking bot.
type DB struct {
	*sql.DB
	path string
}

// New opens the database at path and runs migrations. Transactions start
// with BEGIN IMMEDIATE so the overlap re-check in CreateReservation holds
// the write lock for its whole check-then-insert sequence.
func New(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_fk=1&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate&_loc=Local", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{DB: db, path: path}, nil
}

// Path returns the filesystem path of the database file.
func (db *DB) Path() string {
	return db.path
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS rooms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			number TEXT UNIQUE NOT NULL,
			name TEXT,
			floor INTEGER NOT NULL,
			capacity INTEGER DEFAULT 0,
			equipment TEXT,
			description TEXT,
			is_active BOOLEAN DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			full_name TEXT NOT NULL,
			purpose TEXT,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'confirmed',
			recurrence_kind TEXT NOT NULL DEFAULT 'none',
			recurrence_until DATETIME,
			recurrence_group TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (room_id) REFERENCES rooms(id)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_rooms_floor ON rooms(floor, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_room_times ON reservations(room_id, start_time, end_time)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_user ON reservations(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_group ON reservations(recurrence_group)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
