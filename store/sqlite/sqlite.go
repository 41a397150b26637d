/*
Package sqlite provides the SQL-backed reference data source.

PURPOSE:
  Implements refdata.Source over database/sql. The dashboard only ever
  reads three projections, once, at startup:

    stores:    store_id, store_name, country, city
    products:  product_id, description
    employees: employee_id, name

  The same queries are plain ANSI SQL; pointing this at PostgreSQL is a
  driver swap, not a redesign.

WRITES:
  The engine never writes reference data. The Seed* helpers exist for test
  fixtures and local development only.

WAL MODE:
  Opened with WAL journaling and foreign keys on, matching how the rest of
  our services open SQLite.

USAGE:
  src, err := sqlite.New("./skippy.db")
  if err != nil {
      log.Fatal(err)
  }
  defer src.Close()
  cache, err := refdata.Load(ctx, src)

SEE ALSO:
  - refdata/refdata.go: Source interface and cache
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/refdata"
)

// Store implements refdata.Source using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and if needed migrates) the reference database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the reference schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stores (
		store_id   TEXT PRIMARY KEY,
		store_name TEXT NOT NULL,
		country    TEXT NOT NULL,
		city       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		product_id  TEXT PRIMARY KEY,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		employee_id TEXT PRIMARY KEY,
		name        TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REFDATA.SOURCE - the three read-only projections
// =============================================================================

// Stores returns the full stores projection.
func (s *Store) Stores(ctx context.Context) ([]refdata.Store, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT store_id, store_name, country, city FROM stores`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var out []refdata.Store
	for rows.Next() {
		var st refdata.Store
		if err := rows.Scan(&st.ID, &st.Name, &st.Country, &st.City); err != nil {
			return nil, fmt.Errorf("failed to scan store row: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Products returns the full products projection.
func (s *Store) Products(ctx context.Context) ([]refdata.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT product_id, description FROM products`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []refdata.Product
	for rows.Next() {
		var p refdata.Product
		if err := rows.Scan(&p.ID, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Employees returns the full employees projection.
func (s *Store) Employees(ctx context.Context) ([]refdata.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT employee_id, name FROM employees`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []refdata.Employee
	for rows.Next() {
		var e refdata.Employee
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// SEED HELPERS - test fixtures and local development only
// =============================================================================

// SeedStores inserts or replaces store rows.
func (s *Store) SeedStores(ctx context.Context, stores []refdata.Store) error {
	for _, st := range stores {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO stores (store_id, store_name, country, city) VALUES (?, ?, ?, ?)`,
			st.ID, st.Name, st.Country, st.City)
		if err != nil {
			return fmt.Errorf("failed to seed store %s: %w", st.ID, err)
		}
	}
	return nil
}

// SeedProducts inserts or replaces product rows.
func (s *Store) SeedProducts(ctx context.Context, products []refdata.Product) error {
	for _, p := range products {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO products (product_id, description) VALUES (?, ?)`,
			p.ID, p.Description)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}
	return nil
}

// SeedEmployees inserts or replaces employee rows.
func (s *Store) SeedEmployees(ctx context.Context, employees []refdata.Employee) error {
	for _, e := range employees {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO employees (employee_id, name) VALUES (?, ?)`,
			e.ID, e.Name)
		if err != nil {
			return fmt.Errorf("failed to seed employee %s: %w", e.ID, err)
		}
	}
	return nil
}
