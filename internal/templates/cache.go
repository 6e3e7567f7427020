package templates

import (
	"context"
	"slices"
	"sync"
)

// Cache holds the catalog after the first successful fetch. It is never
// invalidated.
type Cache struct {
	mu     sync.RWMutex
	filled bool
	items  []Template
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached catalog and whether it has been populated.
func (c *Cache) Get() ([]Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items), c.filled
}

// Set populates the cache. Later calls are ignored.
func (c *Cache) Set(items []Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filled {
		return
	}
	c.items = slices.Clone(items)
	c.filled = true
}

// CachedProvider serves the catalog from a cache, fetching it once on first use.
// Failed fetches are not cached.
type CachedProvider struct {
	next  Provider
	cache *Cache
	mu    sync.Mutex // one fetch at a time
}

// NewCachedProvider wraps next with cache.
func NewCachedProvider(next Provider, cache *Cache) *CachedProvider {
	if cache == nil {
		cache = NewCache()
	}
	return &CachedProvider{next: next, cache: cache}
}

// FetchTemplates implements Provider.
func (p *CachedProvider) FetchTemplates(ctx context.Context) ([]Template, error) {
	if items, ok := p.cache.Get(); ok {
		return items, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if items, ok := p.cache.Get(); ok {
		return items, nil
	}
	items, err := p.next.FetchTemplates(ctx)
	if err != nil {
		return nil, err
	}
	p.cache.Set(items)
	return slices.Clone(items), nil
}
