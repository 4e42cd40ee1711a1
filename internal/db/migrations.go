package db

import (
	"database/sql"
	"fmt"
)

// schema creates every table with the columns of the first release. Columns
// added later are listed in columnMigrations so that stores created by any
// earlier release catch up.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS asset_types (
    code       TEXT PRIMARY KEY,
    label      TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assets (
    id         INTEGER PRIMARY KEY,
    code       TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    type_code  TEXT NOT NULL REFERENCES asset_types(code),
    location   TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS code_sequences (
    prefix     TEXT PRIMARY KEY,
    last_value INTEGER NOT NULL CHECK (last_value >= 0)
);

CREATE TABLE IF NOT EXISTS custody_transfers (
    id             INTEGER PRIMARY KEY,
    asset_id       INTEGER NOT NULL REFERENCES assets(id),
    from_username  TEXT NOT NULL DEFAULT '',
    from_name      TEXT NOT NULL DEFAULT '',
    to_username    TEXT NOT NULL,
    to_name        TEXT NOT NULL,
    note           TEXT NOT NULL DEFAULT '',
    transferred_by TEXT NOT NULL,
    transferred_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS maintenance_records (
    id           INTEGER PRIMARY KEY,
    asset_id     INTEGER NOT NULL REFERENCES assets(id),
    performed_on TEXT NOT NULL,
    description  TEXT NOT NULL,
    cost         INTEGER NOT NULL DEFAULT 0 CHECK (cost >= 0),
    recorded_by  TEXT NOT NULL,
    recorded_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

type columnMigration struct {
	table      string
	column     string
	definition string
}

// columnMigrations are applied in order after schema creation. Each one is
// skipped when the column already exists. Append new columns at the end;
// definitions must be valid for ALTER TABLE ADD COLUMN (constant defaults).
var columnMigrations = []columnMigration{
	{"users", "display_name", "TEXT NOT NULL DEFAULT ''"},
	{"users", "email", "TEXT NOT NULL DEFAULT ''"},
	{"users", "org_unit", "TEXT NOT NULL DEFAULT ''"},
	{"users", "building", "TEXT NOT NULL DEFAULT ''"},
	{"users", "room", "TEXT NOT NULL DEFAULT ''"},
	{"users", "deleted_at", "DATETIME"},

	{"assets", "acquired_on", "TEXT NOT NULL DEFAULT ''"},
	{"assets", "custodian_id", "INTEGER REFERENCES users(id)"},
	{"assets", "condition", "TEXT NOT NULL DEFAULT 'New'"},
	{"assets", "value", "INTEGER NOT NULL DEFAULT 0"},
	{"assets", "photo", "BLOB"},
	{"assets", "photo_mime", "TEXT"},
}

// indexes reference migrated columns, so they are created last.
const indexes = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_assets_type ON assets(type_code);
CREATE INDEX IF NOT EXISTS idx_assets_custodian ON assets(custodian_id);
CREATE INDEX IF NOT EXISTS idx_custody_transfers_asset ON custody_transfers(asset_id);
CREATE INDEX IF NOT EXISTS idx_maintenance_records_asset ON maintenance_records(asset_id);
`

// Migrate creates missing tables, adds missing columns and creates indexes.
// It is idempotent and runs on every startup.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range columnMigrations {
		exists, err := columnExists(db, m.table, m.column)
		if err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.table, m.column, m.definition)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("running migration %d (%s.%s): %w", i+1, m.table, m.column, err)
		}
	}

	if _, err := db.Exec(indexes); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	return nil
}

// columnExists reports whether table has a column with the given name.
func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("scanning column of %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
