package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenMemory opens a migrated in-memory SQLite database.
// The pool is capped at one connection: every new connection to ":memory:"
// would otherwise see its own empty database.
// PRE: none
// POST: Returns a database at LatestSchemaVersion
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := MigrateDB(db, ":memory:"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
