package credentials

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// CacheKey computes the SHA-256 hex digest of a raw API key, used as the
// cache index so plaintext keys never sit in memory longer than necessary.
func CacheKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	projectID string
	expiresAt time.Time
}

// KeyCache is a concurrent-safe, per-key TTL cache mapping a hashed API key
// to the project ID it resolved to. Built for the many-readers,
// infrequent-writers access pattern of request-path auth, with no
// central lock.
type KeyCache struct {
	entries sync.Map // cache key (string) -> *cacheEntry
}

// NewKeyCache constructs an empty cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{}
}

// Get returns the cached project ID for rawKey if present and not expired.
// Expired entries are evicted lazily on read, never proactively.
func (c *KeyCache) Get(rawKey string) (string, bool) {
	key := CacheKey(rawKey)
	v, ok := c.entries.Load(key)
	if !ok {
		return "", false
	}
	entry := v.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(key)
		return "", false
	}
	return entry.projectID, true
}

// Insert caches rawKey -> projectID for the given TTL.
func (c *KeyCache) Insert(rawKey, projectID string, ttl time.Duration) {
	c.entries.Store(CacheKey(rawKey), &cacheEntry{
		projectID: projectID,
		expiresAt: time.Now().Add(ttl),
	})
}

// Remove evicts rawKey immediately, e.g. on explicit revocation.
func (c *KeyCache) Remove(rawKey string) {
	c.entries.Delete(CacheKey(rawKey))
}
