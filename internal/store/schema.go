package store

import (
	"database/sql"
	"time"

	"codeberg.org/mutker/energyctl/internal/errors"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS domains (
	       id          INTEGER PRIMARY KEY AUTOINCREMENT,
	       units       TEXT NOT NULL UNIQUE,
	       nr_states   INTEGER NOT NULL CHECK (nr_states > 0),
	       created_at  INTEGER NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS capacity_states (
	       domain_id    INTEGER NOT NULL REFERENCES domains(id),
	       state        INTEGER NOT NULL CHECK (state >= 0),
	       frequency_hz INTEGER NOT NULL CHECK (frequency_hz > 0),
	       power_mw     INTEGER NOT NULL CHECK (power_mw > 0),
	       cost         INTEGER NOT NULL,
	       PRIMARY KEY (domain_id, state)
	   );`

	insertDomainSQL = `
    INSERT INTO domains (units, nr_states, created_at) VALUES (?, ?, ?)`

	insertStateSQL = `
    INSERT INTO capacity_states (domain_id, state, frequency_hz, power_mw, cost)
    VALUES (?, ?, ?, ?, ?)`
)

// initSchema creates the schema and records the current version
func initSchema(db *sql.DB) error {
	errFactory := errors.New()

	if _, err := db.Exec(createTablesSQL); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	_, err := db.Exec(
		"INSERT OR IGNORE INTO schema_versions (version, applied_at) VALUES (?, ?)",
		SchemaVersion, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}
