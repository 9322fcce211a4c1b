// Package cache is a small in-memory TTL cache used by the stub backend to
// absorb the 3-second escalation-status pollers and to keep the FAQ greeting
// warm.
package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

type item struct {
	v   any
	exp int64 // unix seconds; 0 = no expiry
}

// Cache is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]item
	maxItems int // 0 = unlimited
}

var (
	defaultCache *Cache
	once         sync.Once
)

// Default returns a process-wide cache instance with a background janitor.
func Default() *Cache {
	once.Do(func() {
		defaultCache = New(500)
		go defaultCache.janitor(60 * time.Second)
	})
	return defaultCache
}

// New builds an isolated cache (tests use this to avoid cross-contamination).
func New(maxItems int) *Cache {
	return &Cache{items: make(map[string]item), maxItems: maxItems}
}

// Get returns the value and whether it exists and has not expired.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	now := time.Now().Unix()
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if it.exp != 0 && it.exp < now {
		// lazy delete
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return it.v, true
}

// Set stores a value. ttl<=0 means no expiry.
func (c *Cache) Set(key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).Unix()
	}
	c.mu.Lock()
	if c.maxItems > 0 && len(c.items) >= c.maxItems {
		c.evictOneLocked()
	}
	c.items[key] = item{v: v, exp: exp}
	c.mu.Unlock()
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *Cache) janitor(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for range t.C {
		now := time.Now().Unix()
		c.mu.Lock()
		for k, it := range c.items {
			if it.exp != 0 && it.exp < now {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}

// evictOneLocked drops the entry closest to expiry (or an arbitrary one when
// nothing expires). Caller holds c.mu.
func (c *Cache) evictOneLocked() {
	var victim string
	var soonest int64 = -1
	for k, it := range c.items {
		if it.exp != 0 && (soonest == -1 || it.exp < soonest) {
			soonest = it.exp
			victim = k
		}
	}
	if victim == "" {
		for k := range c.items {
			victim = k
			break
		}
	}
	delete(c.items, victim)
}

// KeyFromStrings creates a compact stable key from parts.
func KeyFromStrings(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	return string(h.Sum(nil))
}
