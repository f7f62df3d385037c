// Package duckdb stores variant records in DuckDB so large cohorts can be
// imported once and queried by region or gene when rendering tracks.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding variant records.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS variant_records (
		seq BIGINT,
		id VARCHAR PRIMARY KEY,
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		dt INTEGER,
		class VARCHAR,
		name VARCHAR,
		occurrence INTEGER,
		aa_pos BIGINT,
		side TINYINT,
		partner VARCHAR,
		gene VARCHAR,
		rim1 BOOLEAN,
		rim2 BOOLEAN
	)`,
	// sample is empty for plain attributes and set for per-sample values.
	`CREATE TABLE IF NOT EXISTS variant_scores (
		id VARCHAR,
		name VARCHAR,
		sample VARCHAR,
		value DOUBLE,
		PRIMARY KEY (id, name, sample)
	)`,
	`CREATE TABLE IF NOT EXISTS imports (
		path VARCHAR PRIMARY KEY,
		size BIGINT,
		mod_time TIMESTAMP,
		records BIGINT,
		imported_at TIMESTAMP
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
