// ABOUTME: SQLite store for the admin's local backend call history.
// ABOUTME: Opens the database, tunes the connection pool, and applies versioned migrations.

package store

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Migration version constants
const (
	MigrationV1 = 1 // backend_calls table
	MigrationV2 = 2 // composite indexes for stats and filtering
)

// CurrentSchemaVersion is the target version for the database schema
const CurrentSchemaVersion = MigrationV2

type migration struct {
	version     int
	description string
	statements  []string
}

// Timestamps are UTC text in timeLayout so range filters compare lexically.
var migrations = []migration{
	{
		version:     MigrationV1,
		description: "Create backend_calls table and indexes",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS backend_calls (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp TEXT NOT NULL,
				resource TEXT DEFAULT '',
				method TEXT NOT NULL,
				url TEXT NOT NULL,
				path TEXT NOT NULL,
				status_code INTEGER,
				duration_ms INTEGER,
				request_body TEXT,
				response_body TEXT,
				error TEXT
			)`,
			"CREATE INDEX IF NOT EXISTS idx_backend_calls_timestamp ON backend_calls(timestamp DESC)",
			"CREATE INDEX IF NOT EXISTS idx_backend_calls_path ON backend_calls(path)",
			"CREATE INDEX IF NOT EXISTS idx_backend_calls_status ON backend_calls(status_code)",
			"CREATE INDEX IF NOT EXISTS idx_backend_calls_resource ON backend_calls(resource)",
		},
	},
	{
		version:     MigrationV2,
		description: "Add composite indexes for stats and filtering",
		statements: []string{
			// GetTopEndpoints
			"CREATE INDEX IF NOT EXISTS idx_backend_calls_method_path ON backend_calls(method, path)",
			// GetResourceCallCount and GetResourceErrorRate
			"CREATE INDEX IF NOT EXISTS idx_backend_calls_resource_timestamp ON backend_calls(resource, timestamp DESC)",
			// GetCalls with several filters
			"CREATE INDEX IF NOT EXISTS idx_backend_calls_resource_method_status ON backend_calls(resource, method, status_code)",
		},
	},
}

type Store struct {
	db *sql.DB
}

// New opens the database at dbPath, or an in-memory one for ":memory:".
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies every migration newer than the recorded version, each in
// its own transaction.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := s.getCurrentMigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if current < CurrentSchemaVersion {
		log.Printf("Database schema version: %d, target version: %d", current, CurrentSchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.apply(m); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
		log.Printf("Applied migration v%d: %s", m.version, m.description)
	}
	return nil
}

func (s *Store) apply(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`, m.version, m.description); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) getCurrentMigrationVersion() (int, error) {
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	return version, err
}
