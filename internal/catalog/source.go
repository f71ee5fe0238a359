package catalog

import (
	"context"
	"sync"
	"time"
)

// Source lists the products a POS session may sell.
type Source interface {
	ListAvailableProducts(ctx context.Context) ([]Product, error)
}

// CachedSource keeps the last successful listing for ttl. Concurrent misses
// share one upstream call.
type CachedSource struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	items   []Product
	expires time.Time
}

func NewCachedSource(src Source, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, ttl: ttl, now: time.Now}
}

func (c *CachedSource) ListAvailableProducts(ctx context.Context) ([]Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.items != nil && c.now().Before(c.expires) {
		return copyProducts(c.items), nil
	}
	items, err := c.src.ListAvailableProducts(ctx)
	if err != nil {
		return nil, err
	}
	c.items = copyProducts(items)
	c.expires = c.now().Add(c.ttl)
	return copyProducts(items), nil
}

// Invalidate forces the next call upstream.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

func copyProducts(in []Product) []Product {
	out := make([]Product, len(in))
	copy(out, in)
	return out
}
