package scan

import (
	"context"
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/observability"
)

// DefaultCacheSize is the number of outcomes a Cache keeps when no size is
// given.
const DefaultCacheSize = 128

type outcome struct {
	results []*pdf417scan.Result
	err     error
}

// Cache memoizes scan outcomes by the BLAKE2b-256 hash of the image bytes.
// Concurrent requests for the same bytes share one decode. Once full, the
// oldest entry is evicted.
type Cache struct {
	scanner *Scanner
	size    int
	group   singleflight.Group

	mu      sync.Mutex
	entries map[string]outcome
	order   []string
}

// NewCache wraps scanner with a cache of size entries.
func NewCache(scanner *Scanner, size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		scanner: scanner,
		size:    size,
		entries: make(map[string]outcome, size),
	}
}

// Key returns the cache key of data.
func Key(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ScanBytes decodes data through the cache. The shared decode is not tied
// to any one caller's context: a caller whose ctx ends stops waiting and
// gets Cancelled while the others still receive the outcome.
func (c *Cache) ScanBytes(ctx context.Context, data []byte) ([]*pdf417scan.Result, error) {
	if err := pdf417scan.ContextError(ctx); err != nil {
		return nil, err
	}
	key := Key(data)
	if o, ok := c.lookup(key); ok {
		c.scanner.opts.Log().Debug("cache hit", observability.String("key", key[:16]))
		return o.results, o.err
	}
	ch := c.group.DoChan(key, func() (any, error) {
		if o, ok := c.lookup(key); ok {
			return o, nil
		}
		results, err := c.scanner.ScanBytes(context.WithoutCancel(ctx), data)
		o := outcome{results: results, err: err}
		c.store(key, o)
		return o, nil
	})
	select {
	case r := <-ch:
		o := r.Val.(outcome)
		return o.results, o.err
	case <-ctx.Done():
		return nil, pdf417scan.ContextError(ctx)
	}
}

// Len returns the number of cached outcomes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) (outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.entries[key]
	return o, ok
}

func (c *Cache) store(key string, o outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	for len(c.order) >= c.size {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = o
	c.order = append(c.order, key)
}
