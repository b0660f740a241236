package tokenizer

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of distinct tokenizers kept in memory.
const DefaultCacheSize = 8

type cacheEntry struct {
	codec Codec
	err   error
}

// Cache keeps loaded codecs keyed by model identifier. Failed loads are cached
// too so an unreachable model hub is not hit on every Encode call.
// A Cache is owned by the caller and may be shared between Tokenizers.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, cacheEntry]
}

// NewCache creates a Cache holding at most size entries.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("tokenizer cache size must be positive, got %d", size)
	}
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// MustNewCache is NewCache that panics on an invalid size.
func MustNewCache(size int) *Cache {
	c, err := NewCache(size)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the codec stored under key, calling load on a miss.
func (c *Cache) Get(key string, load func() (Codec, error)) (Codec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries.Get(key); ok {
		return e.codec, e.err
	}

	codec, err := load()
	c.entries.Add(key, cacheEntry{codec: codec, err: err})
	return codec, err
}

// Forget drops key, so the next Get loads it again.
func (c *Cache) Forget(key string) {
	c.entries.Remove(key)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}
