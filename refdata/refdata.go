/*
Package refdata holds the immutable reference lookup tables.

PURPOSE:
  Stores, products, and employees are loaded exactly once at startup and
  cached for the process lifetime. Stale reference data is an accepted
  tradeoff; there is no refresh path. Keys are canonicalized to strings on
  load so joins against string-typed event fields are stable.

LIFECYCLE:
  src := sqlite.New(path)       // or any Source
  cache, err := refdata.Load(ctx, src)   // fatal on error
  ... read-only from here on

SEE ALSO:
  - store/sqlite/sqlite.go: the SQL-backed Source
  - enrich/enrich.go: the left joins against this cache
*/
package refdata

import (
	"context"
	"fmt"
	"strings"
)

// Store is one row of the stores projection.
type Store struct {
	ID      string
	Name    string
	Country string
	City    string
}

// Product is one row of the products projection.
type Product struct {
	ID          string
	Description string
}

// Employee is one row of the employees projection.
type Employee struct {
	ID   string
	Name string
}

// Source provides the three read-only reference projections. Each is
// queried exactly once, at startup.
type Source interface {
	Stores(ctx context.Context) ([]Store, error)
	Products(ctx context.Context) ([]Product, error)
	Employees(ctx context.Context) ([]Employee, error)
}

// Cache is the loaded, immutable reference data, keyed by canonical
// string IDs.
type Cache struct {
	Stores    map[string]Store
	Products  map[string]Product
	Employees map[string]Employee
}

// Load runs the three projections and builds the cache. Any query error
// propagates to the caller; startup treats it as fatal.
func Load(ctx context.Context, src Source) (*Cache, error) {
	stores, err := src.Stores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}
	products, err := src.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	employees, err := src.Employees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	cache := &Cache{
		Stores:    make(map[string]Store, len(stores)),
		Products:  make(map[string]Product, len(products)),
		Employees: make(map[string]Employee, len(employees)),
	}
	for _, s := range stores {
		s.ID = CanonicalID(s.ID)
		cache.Stores[s.ID] = s
	}
	for _, p := range products {
		p.ID = CanonicalID(p.ID)
		cache.Products[p.ID] = p
	}
	for _, e := range employees {
		e.ID = CanonicalID(e.ID)
		cache.Employees[e.ID] = e
	}
	return cache, nil
}

// CanonicalID normalizes a reference key for joining.
func CanonicalID(id string) string {
	return strings.TrimSpace(id)
}
