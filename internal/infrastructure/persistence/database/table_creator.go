// Package database provides schema instantiation
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the backend's database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS calendar_results (day INTEGER PRIMARY KEY, outcome TEXT NOT NULL, tier_type TEXT, tier_name TEXT, description TEXT, code TEXT, reveal_state TEXT NOT NULL DEFAULT 'confirmed', drawn_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS opened_days (day INTEGER PRIMARY KEY, opened_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS attempt_flags (identity TEXT NOT NULL, date TEXT NOT NULL, day INTEGER NOT NULL, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, PRIMARY KEY (identity, date, day))`,
	`CREATE TABLE IF NOT EXISTS attempts (id TEXT PRIMARY KEY, identity TEXT NOT NULL, date TEXT NOT NULL, day INTEGER NOT NULL, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_attempts_date ON attempts(date)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_identity_date ON attempts(identity, date)`,
	`CREATE INDEX IF NOT EXISTS idx_attempt_flags_date ON attempt_flags(date)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_results_reveal_state ON calendar_results(reveal_state)`,
}
