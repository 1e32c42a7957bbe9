// Package ttlcache is a generic in-memory key/value cache where every entry
// shares one time-to-live. Expired entries are dropped lazily on access;
// there is no background sweeper and no size bound.
package ttlcache

import (
	"strings"
	"sync"
	"time"

	"github.com/sadopc/streakr/internal/clock"
)

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// Cache is safe for concurrent use. Reads take a shared lock; only a read
// that finds a stale entry escalates to the write lock to evict it.
type Cache[T any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   clock.Clock
	entries map[string]entry[T]
}

// New creates a cache whose entries expire ttl after they were stored.
// A nil clock means wall-clock time.
func New[T any](ttl time.Duration, c clock.Clock) *Cache[T] {
	if c == nil {
		c = clock.Real()
	}
	return &Cache[T]{
		ttl:     ttl,
		clock:   c,
		entries: make(map[string]entry[T]),
	}
}

// TTL returns the configured time-to-live.
func (c *Cache[T]) TTL() time.Duration { return c.ttl }

// Get returns the value stored under key if its age is below the TTL.
func (c *Cache[T]) Get(key string) (T, bool) {
	now := c.clock.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero T
		return zero, false
	}
	if now.Sub(e.storedAt) < c.ttl {
		return e.value, true
	}

	c.mu.Lock()
	// A concurrent Set may have refreshed the key after we read it.
	if cur, ok := c.entries[key]; ok && now.Sub(cur.storedAt) >= c.ttl {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	var zero T
	return zero, false
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[T]) Set(key string, value T) {
	e := entry[T]{value: value, storedAt: c.clock.Now()}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Invalidate removes a single key. Removing a missing key is a no-op.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePrefix removes every key that starts with prefix.
func (c *Cache[T]) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// InvalidateAll removes every entry.
func (c *Cache[T]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()
}

// Len reports how many entries are held, including expired ones that have
// not been read since they went stale.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
