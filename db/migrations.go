package db

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

var postgresMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_articles_table",
		Up: `
			CREATE TABLE IF NOT EXISTS articles (
				id TEXT PRIMARY KEY,
				dedupe_key TEXT NOT NULL UNIQUE,
				url TEXT,
				source TEXT NOT NULL DEFAULT '',
				title TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				extracted_chars INTEGER NOT NULL DEFAULT 0,
				total_sentences INTEGER NOT NULL DEFAULT 0,
				category TEXT NOT NULL DEFAULT 'umum',
				label INTEGER NOT NULL DEFAULT 0,
				p_valid DOUBLE PRECISION NOT NULL DEFAULT 0,
				p_hoax DOUBLE PRECISION NOT NULL DEFAULT 0,
				verdict TEXT NOT NULL DEFAULT '',
				confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
				reasons TEXT NOT NULL DEFAULT '[]',
				credibility_score DOUBLE PRECISION NOT NULL DEFAULT 0,
				published_at TEXT,
				input_type TEXT NOT NULL DEFAULT 'url',
				timing TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`,
		Down: `DROP TABLE IF EXISTS articles;`,
	},
	{
		Version: 2,
		Name:    "index_articles_verdict",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_articles_verdict ON articles (verdict);
			CREATE INDEX IF NOT EXISTS idx_articles_label ON articles (label);
			CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles (published_at DESC);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_articles_verdict;
			DROP INDEX IF EXISTS idx_articles_label;
			DROP INDEX IF EXISTS idx_articles_published_at;
		`,
	},
}

// Migrate runs all pending PostgreSQL migrations
func Migrate(db *sql.DB) error {
	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	sortedMigrations := make([]Migration, len(postgresMigrations))
	copy(sortedMigrations, postgresMigrations)
	sort.Slice(sortedMigrations, func(i, j int) bool {
		return sortedMigrations[i].Version < sortedMigrations[j].Version
	})

	for _, m := range sortedMigrations {
		if m.Version <= currentVersion {
			continue
		}
		if err := runMigration(db, m); err != nil {
			return fmt.Errorf("failed to run migration %d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist
func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// getCurrentVersion returns the current migration version
func getCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// runMigration executes a single migration inside a transaction
func runMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.Up); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

// Rollback rolls back the last applied migration
func Rollback(db *sql.DB) error {
	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if currentVersion == 0 {
		return fmt.Errorf("no migrations to rollback")
	}

	var target *Migration
	for i := range postgresMigrations {
		if postgresMigrations[i].Version == currentVersion {
			target = &postgresMigrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %d not found", currentVersion)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(target.Down); err != nil {
		return fmt.Errorf("failed to execute rollback SQL: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", target.Version); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}

	return tx.Commit()
}
