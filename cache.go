package hoaxcheck

import (
	"sync"
	"time"

	"github.com/zombar/hoaxcheck/models"
)

type cacheEntry struct {
	result    *models.ExtractionResult
	createdAt time.Time
}

// Cache is a TTL-bounded store of extraction results keyed by normalized
// URL. Entries are replaced whole on write and handed out as shared
// read-only pointers; expired entries behave as misses and are evicted
// lazily on lookup. Safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewCache creates a cache with the given TTL. maxEntries bounds memory;
// when full, the oldest entry is evicted. maxEntries <= 0 means unbounded.
func NewCache(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached result for key, or (nil, false) when absent or
// expired. Expired entries are removed.
func (c *Cache) Get(key string) (*models.ExtractionResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.createdAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// replaced the entry in the meantime.
		if current, ok := c.entries[key]; ok && c.now().Sub(current.createdAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.result, true
}

// Put stores result under key, replacing any existing entry. Last writer
// wins.
func (c *Cache) Put(key string, result *models.ExtractionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictOldestLocked()
		}
	}
	c.entries[key] = cacheEntry{result: result, createdAt: c.now()}
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.createdAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.createdAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
