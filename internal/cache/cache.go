package cache

import (
	"os"
	"sync"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

// Cache holds parsed category documents, each stamped with the store file's
// modification time at load. An entry is served only while the live file's
// modification time still matches the stamp.
type Cache struct {
	enabled bool
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	modTime time.Time
	records []shape.Record
}

// New constructs a cache. A disabled cache misses every Get and drops every
// Put, so callers never branch on the config themselves.
func New(enabled bool) *Cache {
	return &Cache{
		enabled: enabled,
		entries: make(map[string]entry),
	}
}

// Get returns the cached records for category while storeFile's current
// modification time matches the cached stamp. A mismatch or a failed stat
// evicts the entry and misses. Returned records are deep copies.
func (c *Cache) Get(category, storeFile string) ([]shape.Record, bool) {
	if c == nil || !c.enabled {
		return nil, false
	}

	c.mu.RLock()
	cached, ok := c.entries[category]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	info, err := os.Stat(storeFile)
	if err != nil || !info.ModTime().Equal(cached.modTime) {
		c.Invalidate(category)
		return nil, false
	}
	return shape.CloneAll(cached.records), true
}

// Put stores records for category stamped with storeFile's current
// modification time. A file that cannot be stat'd is not cached; a write that
// lands after the stat produces a later miss, which is the safe direction.
func (c *Cache) Put(category, storeFile string, records []shape.Record) {
	if c == nil || !c.enabled {
		return
	}
	info, err := os.Stat(storeFile)
	if err != nil {
		return
	}

	c.mu.Lock()
	c.entries[category] = entry{
		modTime: info.ModTime(),
		records: shape.CloneAll(records),
	}
	c.mu.Unlock()
}

// Invalidate drops the entry for category.
func (c *Cache) Invalidate(category string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, category)
	c.mu.Unlock()
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Count reports the number of live entries.
func (c *Cache) Count() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
