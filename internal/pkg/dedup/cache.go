// Package dedup provides a process-wide at-most-once guard for scheduled
// side effects. Keys are composite identities such as
// "overtime:<recordID>:<day>"; entries are evicted after a fixed TTL or by
// an explicit reset so the next day starts clean.
package dedup

import (
	"sync"
	"time"
)

// Guard is the narrow interface the schedulers depend on. Implementations
// must support concurrent insert-if-absent; the storage choice (in-process
// map, shared key-value store) must not leak into scheduler logic.
type Guard interface {
	HasFired(key string) bool
	MarkFired(key string)
	Reset()
}

// Cache is an in-process Guard backed by a mutex-guarded map with TTL
// eviction.
type Cache struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	stopCh  chan struct{}
	once    sync.Once
}

// NewCache creates a Cache whose entries expire after ttl and starts a
// background janitor so the map never grows unbounded.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}
	go c.janitor()
	return c
}

// HasFired reports whether key was marked within the TTL.
func (c *Cache) HasFired(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	firedAt, ok := c.entries[key]
	if !ok {
		return false
	}
	if time.Since(firedAt) > c.ttl {
		delete(c.entries, key)
		return false
	}
	return true
}

// MarkFired records that the side effect for key has been executed.
func (c *Cache) MarkFired(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = time.Now()
}

// Reset drops all entries. Called at midnight so a fresh cycle can start.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]time.Time)
}

// Len returns the current number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stop terminates the background janitor.
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.stopCh) })
}

func (c *Cache) janitor() {
	interval := c.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, firedAt := range c.entries {
		if now.Sub(firedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}
