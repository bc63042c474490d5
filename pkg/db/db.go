// Package db persists analysis runs and the training samples consumed by
// the offline weight trainer.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Store struct {
	*sql.DB
	path string
}

// Open opens or creates the SQLite database at path. ":memory:" works for
// tests.
func Open(path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{DB: sqlDB, path: path}
	if err := store.ensureSchemaExists(); err != nil {
		_ = store.Close() // Close error less important than schema error
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// ensureSchemaExists checks for the samples table and initializes the
// schema if missing.
func (s *Store) ensureSchemaExists() error {
	var tableName string
	err := s.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='training_samples'").Scan(&tableName)

	if err == sql.ErrNoRows {
		return s.InitSchema()
	}
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// InitSchema applies the schema.
func (s *Store) InitSchema() error {
	_, err := s.Exec(schema)
	return err
}
