package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateFreshDatabase(t *testing.T) {
	database := NewTestDB(t)

	for _, m := range columnMigrations {
		ok, err := columnExists(database, m.table, m.column)
		if err != nil {
			t.Fatalf("columnExists(%s, %s): %v", m.table, m.column, err)
		}
		if !ok {
			t.Errorf("expected column %s.%s to exist", m.table, m.column)
		}
	}

	// Running again must be a no-op.
	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestMigrateLegacyDatabase(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "legacy.sqlite3"), DefaultBusyTimeout)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	// A store from an earlier release: users already has display_name but
	// none of the organizational fields.
	_, err = database.Exec(`
		CREATE TABLE users (
		    id            INTEGER PRIMARY KEY,
		    username      TEXT NOT NULL,
		    display_name  TEXT NOT NULL DEFAULT '',
		    password_hash TEXT NOT NULL,
		    role          TEXT NOT NULL DEFAULT 'user',
		    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		INSERT INTO users (username, display_name, password_hash, role)
		VALUES ('admin', 'Administrator', 'hash', 'admin');
	`)
	if err != nil {
		t.Fatalf("creating legacy table: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := Migrate(database); err != nil {
			t.Fatalf("Migrate run %d: %v", i+1, err)
		}
	}

	for _, col := range []string{"email", "org_unit", "building", "room", "deleted_at"} {
		ok, err := columnExists(database, "users", col)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Errorf("expected users.%s to be added", col)
		}
	}

	var name, email string
	err = database.QueryRow(`SELECT display_name, email FROM users WHERE username = 'admin'`).Scan(&name, &email)
	if err != nil {
		t.Fatalf("reading legacy row: %v", err)
	}
	if name != "Administrator" || email != "" {
		t.Errorf("unexpected legacy row after migration: name=%q email=%q", name, email)
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("expected nil for nil error")
	}
	if IsBusy(nil) || IsUniqueViolation(nil) {
		t.Error("nil must not be classified")
	}

	database := NewTestDB(t)
	_, err := database.Exec(`INSERT INTO asset_types (code, label) VALUES ('EL', 'Electronics')`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = database.Exec(`INSERT INTO asset_types (code, label) VALUES ('EL', 'Again')`)
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}
}
