// Package duckdb persists loaded models in DuckDB so they can be queried
// with SQL after the load. Each write replaces the previous model.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding one model.
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
			return nil, fmt.Errorf("create database directory: %w", err)
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

// Path returns the database file, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS genes (
		ordinal BIGINT,
		name VARCHAR,
		bsu VARCHAR,
		start BIGINT,
		"end" BIGINT,
		rbs_start BIGINT,
		rbs_end BIGINT,
		sense TINYINT,
		sequence VARCHAR,
		aa_sequence VARCHAR,
		aa_composition VARCHAR,
		declared_tus VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS transcription_units (
		ordinal BIGINT,
		name VARCHAR,
		start BIGINT,
		"end" BIGINT,
		sense TINYINT,
		sigma VARCHAR,
		count_a BIGINT,
		count_c BIGINT,
		count_g BIGINT,
		count_t BIGINT,
		declared_genes VARCHAR,
		per_gene BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS tu_genes (
		tu_ordinal BIGINT,
		tu_name VARCHAR,
		gene_name VARCHAR,
		position BIGINT,
		per_gene BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS report_entries (
		ordinal BIGINT,
		category VARCHAR,
		severity VARCHAR,
		gene_name VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS tu_extensions (
		ordinal BIGINT,
		tu_name VARCHAR,
		gene_name VARCHAR,
		old_start BIGINT,
		old_end BIGINT,
		new_start BIGINT,
		new_end BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS orphan_genes (
		ordinal BIGINT,
		gene_name VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS tu_overlaps (
		ordinal BIGINT,
		first_tu VARCHAR,
		second_tu VARCHAR,
		sense TINYINT
	)`,
	`CREATE TABLE IF NOT EXISTS load_sources (
		role VARCHAR,
		path VARCHAR,
		size BIGINT,
		mod_time TIMESTAMP
	)`,
}

// modelTables lists the tables replaced by every model write.
var modelTables = []string{
	"genes", "transcription_units", "tu_genes", "report_entries",
	"tu_extensions", "orphan_genes", "tu_overlaps", "load_sources",
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
