package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step. Steps use IF NOT EXISTS so a
// database created before version tracking can be adopted.
type migration struct {
	version     int
	description string
	statements  []string
}

var migrations = []migration{
	{
		version:     1,
		description: "baseline: trainer, trainee, promotion, session",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS trainer (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS promotion (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				start_at TEXT NOT NULL DEFAULT '',
				end_at TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS trainee (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				phone TEXT NOT NULL DEFAULT '',
				promotion_id INTEGER,
				created_at TEXT NOT NULL,
				FOREIGN KEY (promotion_id) REFERENCES promotion(id)
			)`,
			`CREATE TABLE IF NOT EXISTS session (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				promotion_id INTEGER NOT NULL,
				description TEXT NOT NULL,
				start_at TEXT NOT NULL,
				end_at TEXT NOT NULL,
				trainer_id INTEGER NOT NULL,
				FOREIGN KEY (promotion_id) REFERENCES promotion(id),
				FOREIGN KEY (trainer_id) REFERENCES trainer(id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_session_promotion ON session(promotion_id)`,
		},
	},
	{
		version:     2,
		description: "notification outbox",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS outbox (
				id TEXT PRIMARY KEY,
				action_type TEXT NOT NULL,
				payload TEXT NOT NULL,
				status TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				max_attempts INTEGER NOT NULL DEFAULT 5,
				last_attempted_at TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				external_id TEXT NOT NULL DEFAULT '',
				error_message TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, created_at)`,
		},
	},
	{
		version:     3,
		description: "schedule history",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS audit_event (
				id TEXT PRIMARY KEY,
				timestamp TEXT NOT NULL,
				promotion_id INTEGER NOT NULL,
				session_id INTEGER NOT NULL,
				action TEXT NOT NULL,
				description TEXT NOT NULL,
				metadata TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_event_promotion ON audit_event(promotion_id, timestamp)`,
		},
	},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, 0 for an untracked database.
// PRE: db is a valid database connection
// POST: Returns the highest recorded version
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL, applied_at TEXT NOT NULL DEFAULT (datetime('now')))`); err != nil {
		return 0, fmt.Errorf("failed to create schema_version table: %w", err)
	}
	var version int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid database connection
// POST: Schema is at LatestSchemaVersion, foreign keys enabled
// INVARIANT: Already-applied migrations are never re-run
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s) on %s: %w", m.version, m.description, dbPath, err)
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description, "db", dbPath)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}
