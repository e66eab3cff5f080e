package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/officeflow/officeflow/internal/model"
)

// DefaultLookupTTL is how long cached lookup rows stay fresh.
const DefaultLookupTTL = 30 * time.Second

// LookupCache is a read-through cache over the lookup tables, keyed by table
// name. Entries expire after a short TTL and are invalidated explicitly after
// writes; other processes' writes become visible after at most one TTL.
type LookupCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]lookupEntry
}

type lookupEntry struct {
	rows    []model.Lookup
	fetched time.Time
}

// NewLookupCache creates a cache with the given TTL (DefaultLookupTTL if zero).
func NewLookupCache(ttl time.Duration) *LookupCache {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &LookupCache{
		ttl:     ttl,
		entries: make(map[string]lookupEntry),
	}
}

// Get returns the rows of a lookup table, fetching from the database when the
// cached copy is missing or stale.
func (c *LookupCache) Get(ctx context.Context, db *sql.DB, table string) ([]model.Lookup, error) {
	c.mu.Lock()
	entry, ok := c.entries[table]
	c.mu.Unlock()

	if ok && time.Since(entry.fetched) < c.ttl {
		return entry.rows, nil
	}

	rows, err := ListLookups(ctx, db, table)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[table] = lookupEntry{rows: rows, fetched: time.Now()}
	c.mu.Unlock()

	return rows, nil
}

// Invalidate drops the cached rows for a table. Callers invoke this after
// every write to that table.
func (c *LookupCache) Invalidate(table string) {
	c.mu.Lock()
	delete(c.entries, table)
	c.mu.Unlock()
}
