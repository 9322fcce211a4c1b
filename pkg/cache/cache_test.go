package cache

import (
	"testing"
	"time"
)

func TestSetGetDelete(t *testing.T) {
	c := New(0)
	c.Set("k", "v", 0)

	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("Get = %v %v, want v true", got, ok)
	}

	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("key should be gone after Delete")
	}
}

func TestExpiry(t *testing.T) {
	c := New(0)
	c.Set("short", 1, 1*time.Second)

	if _, ok := c.Get("short"); !ok {
		t.Fatalf("value should live until its ttl")
	}

	// expiry is tracked in unix seconds, so step past the boundary
	c.mu.Lock()
	it := c.items["short"]
	it.exp = time.Now().Add(-2 * time.Second).Unix()
	c.items["short"] = it
	c.mu.Unlock()

	if _, ok := c.Get("short"); ok {
		t.Fatalf("expired value should not be returned")
	}
	c.mu.RLock()
	_, still := c.items["short"]
	c.mu.RUnlock()
	if still {
		t.Fatalf("expired value should be lazily deleted on read")
	}
}

func TestEvictionPrefersClosestExpiry(t *testing.T) {
	c := New(2)
	c.Set("soon", 1, 1*time.Minute)
	c.Set("later", 2, 1*time.Hour)
	c.Set("new", 3, 0)

	if _, ok := c.Get("soon"); ok {
		t.Fatalf("the entry closest to expiry should be the eviction victim")
	}
	if _, ok := c.Get("later"); !ok {
		t.Fatalf("later entry should survive")
	}
	if _, ok := c.Get("new"); !ok {
		t.Fatalf("newly set entry should be present")
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	c.Set("k", "v", 0)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("nil cache should report nothing")
	}
}

func TestKeyFromStringsDistinguishesBoundaries(t *testing.T) {
	if KeyFromStrings("ab", "c") == KeyFromStrings("a", "bc") {
		t.Fatalf("part boundaries must affect the key")
	}
	if KeyFromStrings("x", "y") != KeyFromStrings("x", "y") {
		t.Fatalf("key must be stable")
	}
}
