package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aretw0/schemata/pkg/domain"
)

// Cache implements ports.ValidationCache in memory.
// Safe for concurrent use. It grows without bound; create one per run or share
// it deliberately across runs.
type Cache struct {
	data map[domain.CacheKey]domain.CacheEntry
	mu   sync.RWMutex

	hits   atomic.Int64
	misses atomic.Int64
	puts   atomic.Int64
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits    int64
	Misses  int64
	Puts    int64
	Entries int
}

// NewCache creates an empty in-memory cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[domain.CacheKey]domain.CacheEntry),
	}
}

// Get returns a copy of the stored outcome so callers cannot mutate the cache.
func (c *Cache) Get(ctx context.Context, key domain.CacheKey) (domain.CacheEntry, bool, error) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return domain.CacheEntry{}, false, nil
	}
	c.hits.Add(1)
	entry.Errors = entry.Errors.Clone()
	return entry, true, nil
}

// Put stores a copy of entry.
func (c *Cache) Put(ctx context.Context, key domain.CacheKey, entry domain.CacheEntry) error {
	entry.Errors = entry.Errors.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry
	c.puts.Add(1)
	return nil
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Stats returns hit, miss and put counters since creation.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Puts:    c.puts.Load(),
		Entries: c.Len(),
	}
}
