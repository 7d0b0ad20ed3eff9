// Package cache persists raw lookup bodies keyed by the exact search name.
//
// The store is append-only: Insert always adds a record, even when the name is
// already present, and nothing is ever updated or deleted. FirstMatch returns the
// oldest record for a name. Stores assume a single active user and do no
// conflict detection between concurrent writers.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-report/internal/config"
	"catalog-report/internal/logging"
)

// Store is the cache persistence contract.
type Store interface {
	// Insert appends a record for name.
	Insert(ctx context.Context, name string, body []byte) error
	// Exists reports whether at least one record for name exists.
	Exists(ctx context.Context, name string) (bool, error)
	// FirstMatch returns the body of the oldest record for name.
	FirstMatch(ctx context.Context, name string) ([]byte, bool, error)
	// Count returns how many records exist for name.
	Count(ctx context.Context, name string) (int, error)
	// Close releases the underlying handle.
	Close() error
}

// Record is one stored lookup.
type Record struct {
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// Open creates the store selected by cfg.Driver.
func Open(cfg config.CacheConfig) (Store, error) {
	driver := strings.ToLower(cfg.Driver)
	logging.Logf(logging.Debug, "Opening '%s' cache store at '%s'", driver, cfg.Path)
	switch driver {
	case config.DriverSQLite:
		return NewSQLite(cfg.Path)
	case config.DriverBolt:
		return NewBolt(cfg.Path)
	case config.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver '%s'", cfg.Driver)
	}
}
