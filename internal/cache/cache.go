package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultTTL matches the original search-response cache window.
	DefaultTTL = 10 * time.Minute

	// DefaultSize bounds the number of cached responses.
	DefaultSize = 128
)

// QueryCache is a TTL-bounded LRU for raw backend responses, keyed by a
// normalized query digest. Entries expire after the TTL regardless of use.
type QueryCache struct {
	lru *expirable.LRU[string, []byte]
}

// New creates a query cache. Zero values fall back to the defaults.
func New(size int, ttl time.Duration) *QueryCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryCache{
		lru: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

// Key derives a stable cache key from a namespace and query text.
// Case and surrounding whitespace are ignored.
func Key(namespace, query string) string {
	sum := md5.Sum([]byte(namespace + ":" + strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached payload for a key, if present and unexpired.
func (c *QueryCache) Get(key string) ([]byte, bool) {
	return c.lru.Get(key)
}

// Set stores a payload under a key.
func (c *QueryCache) Set(key string, payload []byte) {
	c.lru.Add(key, payload)
}
