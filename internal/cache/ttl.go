package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long a derived-analysis entry stays fresh.
const DefaultTTL = 15 * time.Minute

// TTLCache is a thread-safe cache whose entries expire after a per-entry TTL.
// Expiry is lazy: an expired entry is dropped on the read that discovers it.
// There is no eviction beyond TTL expiry, and concurrent populations resolve
// last-write-wins; entries are pure functions of their key, so recomputing
// one twice is wasteful but harmless.
//
// Usage:
//
//	c := NewTTLCache[string, Frequency]()
//	c.Put("demo/pattern-frequency", freq, 15*time.Minute)
//	if v, ok := c.Get("demo/pattern-frequency"); ok { ... }
type TTLCache[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]ttlEntry[V]
	now   func() time.Time // injectable for tests
}

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

func NewTTLCache[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{
		items: make(map[K]ttlEntry[V]),
		now:   time.Now,
	}
}

// Get returns the cached value and true if the key exists and has not
// expired. An expired entry is removed and reported as a miss.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Put inserts or overwrites a key with the given TTL. A ttl <= 0 falls back
// to DefaultTTL.
func (c *TTLCache[K, V]) Put(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = ttlEntry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Evict removes a specific key. No-op when absent.
func (c *TTLCache[K, V]) Evict(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of entries currently held, expired or not.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// PurgeExpired drops every expired entry and returns how many were removed.
func (c *TTLCache[K, V]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, entry := range c.items {
		if now.After(entry.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]ttlEntry[V])
}
