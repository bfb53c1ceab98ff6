package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitActivityDB opens the local SQLite database for the activity log and
// creates the schema if needed.
func InitActivityDB(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createActivitySchema(db); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

func createActivitySchema(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS activity (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			action TEXT NOT NULL,
			room_id TEXT,
			user_id TEXT,
			message TEXT NOT NULL,
			metadata TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_room_id ON activity(room_id);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_action ON activity(action);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity(timestamp);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
