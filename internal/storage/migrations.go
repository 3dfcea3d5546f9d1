package storage

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// migration represents a single schema migration
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS brands (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				kind TEXT NOT NULL,
				color TEXT NOT NULL DEFAULT '',
				variations TEXT NOT NULL DEFAULT '[]',
				ordinal INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS prompts (
				id TEXT PRIMARY KEY,
				query TEXT NOT NULL,
				ordinal INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS runs (
				prompt_id TEXT NOT NULL,
				id TEXT NOT NULL,
				scraped_at INTEGER NOT NULL,
				response_text TEXT NOT NULL DEFAULT '',
				citations TEXT NOT NULL DEFAULT 'null',
				PRIMARY KEY (prompt_id, id)
			)`,
			`CREATE TABLE IF NOT EXISTS mentions (
				prompt_id TEXT NOT NULL,
				run_id TEXT NOT NULL,
				brand_id TEXT NOT NULL,
				mentioned INTEGER NOT NULL,
				position INTEGER NOT NULL DEFAULT 0,
				sentiment TEXT NOT NULL DEFAULT 'neutral',
				ts INTEGER NOT NULL,
				PRIMARY KEY (prompt_id, run_id, brand_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_mentions_brand ON mentions(brand_id, ts)`,
			`CREATE INDEX IF NOT EXISTS idx_mentions_prompt ON mentions(prompt_id, ts)`,
		},
	},
	{
		version: 2,
		name:    "sources",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS sources (
				domain TEXT PRIMARY KEY,
				usage_rate REAL NOT NULL DEFAULT 0,
				avg_citations REAL NOT NULL DEFAULT 0,
				ordinal INTEGER NOT NULL DEFAULT 0
			)`,
		},
	},
}

// runMigrations applies every migration newer than the recorded version
func (s *SQLiteStore) runMigrations() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		logrus.Infof("Running migration %d: %s", m.version, m.name)
		for _, stmt := range m.stmts {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	return nil
}
