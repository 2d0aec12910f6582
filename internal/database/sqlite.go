// Package database provides the SQLite-backed preference store.
package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS user_preferences (
	user_id                        INTEGER PRIMARY KEY,
	enable_learning_reminder       BOOLEAN NOT NULL DEFAULT 1,
	enable_content_filter_reminder BOOLEAN NOT NULL DEFAULT 1,
	ignored_keywords               TEXT    NOT NULL DEFAULT '[]',
	created_at                     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at                     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Open connects to the SQLite database at path and ensures the schema exists.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}

	// sqlite tolerates a single writer; cap connections accordingly.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
