// ABOUTME: Bounded, time-expiring embedding cache keyed by content fingerprint
// ABOUTME: LRU eviction on capacity, lazy expiry on lookup, safe for concurrent use
package embedding

import (
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/harper/semantic-canvas/internal/metrics"
)

const (
	// DefaultCacheSize is the default number of cached vectors
	DefaultCacheSize = 1000
	// DefaultCacheTTL is the default lifetime of a cached vector
	DefaultCacheTTL = time.Hour
)

// Cache maps fingerprints to vectors. Vectors are copied on the way in and
// on the way out so no caller can observe or cause a partial write.
type Cache struct {
	lru     *expirable.LRU[string, []float64]
	size    int
	ttl     time.Duration
	metrics metrics.Recorder
}

// NewCache creates a cache holding at most size entries for at most ttl each.
// Non-positive arguments fall back to the defaults.
func NewCache(size int, ttl time.Duration, rec metrics.Recorder) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{
		size:    size,
		ttl:     ttl,
		metrics: metrics.OrNoop(rec),
	}
	c.lru = expirable.NewLRU[string, []float64](size, func(string, []float64) {
		c.metrics.CacheEviction()
	}, ttl)
	return c
}

// Get returns the vector for fp. Entries older than the TTL are absent.
func (c *Cache) Get(fp string) ([]float64, bool) {
	v, ok := c.lru.Get(fp)
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Put stores vector under fp, evicting the least recently used entry when full
func (c *Cache) Put(fp string, vector []float64) {
	c.lru.Add(fp, slices.Clone(vector))
}

// Contains reports whether fp is cached without touching its recency
func (c *Cache) Contains(fp string) bool {
	_, ok := c.lru.Peek(fp)
	return ok
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.lru.Purge()
}

// Len returns the number of entries, including expired ones not yet swept
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Size returns the configured capacity
func (c *Cache) Size() int {
	return c.size
}

// TTL returns the configured entry lifetime
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
