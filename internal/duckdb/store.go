// Package duckdb persists scored loci in DuckDB so that runs can be queried
// and compared later.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding locus statistics.
type Store struct {
	db *sql.DB
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
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

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS locus_stats (
		run_id VARCHAR,
		panel VARCHAR,
		panel_index INTEGER,
		chrom VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		annotation VARCHAR,
		tp INTEGER,
		tn INTEGER,
		fp INTEGER,
		fn INTEGER,
		specificity DOUBLE,
		sensitivity DOUBLE,
		accuracy DOUBLE
	)`)
	return err
}
