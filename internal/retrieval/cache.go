package retrieval

import (
	"sync"
	"time"

	"github.com/sandevgo/recall/internal/core"
)

type cacheEntry struct {
	value     core.ProcessedContext
	expiresAt time.Time
}

// ContextCache memoizes assembled contexts keyed by fingerprint. Expiry is
// bounded by a TTL and a hard entry cap, and Clear provides an explicit
// lifecycle hook instead of relying on process restart.
type ContextCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
}

func NewContextCache(ttl time.Duration, maxEntries int) *ContextCache {
	return &ContextCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (c *ContextCache) Get(key string) (core.ProcessedContext, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return core.ProcessedContext{}, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return core.ProcessedContext{}, false
	}
	return entry.value, true
}

func (c *ContextCache) Set(key string, value core.ProcessedContext) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Clear drops every entry.
func (c *ContextCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *ContextCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked removes expired entries first and, if the cache is still
// full, the entry closest to expiry.
func (c *ContextCache) evictLocked() {
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.expiresAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
