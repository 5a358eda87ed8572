package backend

import (
	"sync"
	"time"
)

type cacheEntry struct {
	id      int64
	expires time.Time
}

// idCache maps Telegram IDs to backend user IDs for a fixed TTL.
// Expired entries are dropped lazily on lookup.
type idCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[int64]cacheEntry
}

func newIDCache(ttl time.Duration) *idCache {
	return &idCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[int64]cacheEntry),
	}
}

func (c *idCache) get(key int64) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return 0, false
	}
	return e.id, true
}

func (c *idCache) set(key, id int64) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{id: id, expires: c.now().Add(c.ttl)}
}

func (c *idCache) forget(key int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
