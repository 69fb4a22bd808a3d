// Package storage persists tournament results in a local SQLite database.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite initializes the local SQLite database and creates the schemas
// for persisting runs, matches, standings and media deliveries.
func InitSQLite(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME NOT NULL,
			seed INTEGER NOT NULL,
			rounds INTEGER NOT NULL,
			continuation REAL NOT NULL,
			noise REAL NOT NULL,
			repeats INTEGER NOT NULL,
			payoffs_json TEXT NOT NULL,
			strategies_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			run_id INTEGER NOT NULL,
			rep INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			player_a TEXT NOT NULL,
			player_b TEXT NOT NULL,
			rounds INTEGER NOT NULL,
			score_a INTEGER NOT NULL,
			score_b INTEGER NOT NULL,
			avg_a REAL NOT NULL,
			avg_b REAL NOT NULL,
			history_a TEXT NOT NULL,
			history_b TEXT NOT NULL,
			PRIMARY KEY (run_id, rep, ordinal),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);`,
		`CREATE TABLE IF NOT EXISTS standings (
			run_id INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			name TEXT NOT NULL,
			matches INTEGER NOT NULL,
			total_score INTEGER NOT NULL,
			total_rounds INTEGER NOT NULL,
			avg_per_round REAL NOT NULL,
			PRIMARY KEY (run_id, rank),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);`,
		`CREATE TABLE IF NOT EXISTS media_deliveries (
			run_id INTEGER NOT NULL,
			recipient TEXT NOT NULL,
			outlet TEXT NOT NULL,
			accurate BOOLEAN NOT NULL,
			delay INTEGER NOT NULL,
			rep INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			payload_json TEXT NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_run_id ON matches(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_standings_run_id ON standings(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_run_id ON media_deliveries(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_recipient ON media_deliveries(run_id, recipient);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
