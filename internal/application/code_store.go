package application

import (
	"sync"
	"time"
)

// codeStore keeps hashed verification codes keyed by e-mail until they expire.
// Expired entries are purged on every lookup.
type codeStore struct {
	mu         sync.Mutex
	now        func() time.Time
	maxEntries int
	entries    map[string]codeEntry
}

type codeEntry struct {
	hash      string
	expiresAt time.Time
}

func newCodeStore(maxEntries int, now func() time.Time) *codeStore {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	if now == nil {
		now = time.Now
	}
	return &codeStore{now: now, maxEntries: maxEntries, entries: make(map[string]codeEntry)}
}

// Put replaces any code pending for key.
func (c *codeStore) Put(key, hash string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = codeEntry{hash: hash, expiresAt: c.now().Add(ttl)}
}

// Get returns the live hash for key.
func (c *codeStore) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	entry, ok := c.entries[key]
	return entry.hash, ok
}

// Delete drops the code for key.
func (c *codeStore) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports how many live codes are stored.
func (c *codeStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	return len(c.entries)
}

func (c *codeStore) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *codeStore) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey, oldest = key, entry.expiresAt
		}
	}
	delete(c.entries, oldestKey)
}
