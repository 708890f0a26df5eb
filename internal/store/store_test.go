// ABOUTME: Tests for SQLite store initialization and schema migrations.
// ABOUTME: Verifies database setup, table creation, and idempotent reopening.

package store

import (
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *Store {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "joinlab.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	for _, table := range []string{"schema_migrations", "backend_calls"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		t.Fatalf("getCurrentMigrationVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "joinlab.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.LogCall(&Call{Method: "GET", URL: "http://x/api/dept", Path: "/api/dept", StatusCode: 200}); err != nil {
		t.Fatalf("LogCall() error = %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	var applied int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatal(err)
	}
	if applied != CurrentSchemaVersion {
		t.Errorf("migration rows = %d, want %d", applied, CurrentSchemaVersion)
	}

	calls, err := s.GetCalls(&CallQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 {
		t.Errorf("calls after reopen = %d, want 1", len(calls))
	}
}

func TestMigrations_Ordered(t *testing.T) {
	for i, m := range migrations {
		if m.version != i+1 {
			t.Errorf("migrations[%d].version = %d, want %d", i, m.version, i+1)
		}
		if m.description == "" || len(m.statements) == 0 {
			t.Errorf("migration v%d is empty", m.version)
		}
	}
	if last := migrations[len(migrations)-1].version; last != CurrentSchemaVersion {
		t.Errorf("last migration = %d, CurrentSchemaVersion = %d", last, CurrentSchemaVersion)
	}
}
