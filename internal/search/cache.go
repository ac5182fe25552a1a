package search

import (
	"container/list"
	"context"
	"sync"
	"time"

	"shelfapi/internal/book"
	"shelfapi/internal/metrics"
)

// DetailCache stores book details keyed by external ID. Implementations must
// be safe for concurrent use; concurrent Puts of one key may race, the last
// one wins.
type DetailCache interface {
	Get(externalID string) (book.Detail, bool)
	Put(externalID string, d book.Detail)
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(string) (book.Detail, bool) { return book.Detail{}, false }
func (NopCache) Put(string, book.Detail)        {}

type cacheEntry struct {
	key       string
	detail    book.Detail
	expiresAt time.Time
}

// MemoryCache is a size-bounded LRU with per-entry TTL.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List
	items    map[string]*list.Element
	now      func() time.Time
}

func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = 512
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryCache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

func (c *MemoryCache) Get(externalID string) (book.Detail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[externalID]
	if !ok {
		return book.Detail{}, false
	}
	entry := el.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.items, externalID)
		return book.Detail{}, false
	}
	c.order.MoveToFront(el)
	return entry.detail, true
}

func (c *MemoryCache) Put(externalID string, d book.Detail) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.items[externalID]; ok {
		entry := el.Value.(*cacheEntry)
		entry.detail = d
		entry.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	c.items[externalID] = c.order.PushFront(&cacheEntry{key: externalID, detail: d, expiresAt: expiresAt})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CachedCatalog is a read-through DetailSource over a Catalog.
type CachedCatalog struct {
	catalog Catalog
	cache   DetailCache
}

func NewCachedCatalog(catalog Catalog, cache DetailCache) *CachedCatalog {
	if cache == nil {
		cache = NopCache{}
	}
	return &CachedCatalog{catalog: catalog, cache: cache}
}

func (c *CachedCatalog) Detail(ctx context.Context, externalID string) (*book.Detail, error) {
	if d, ok := c.cache.Get(externalID); ok {
		metrics.DetailCacheLookups.WithLabelValues("hit").Inc()
		return &d, nil
	}
	metrics.DetailCacheLookups.WithLabelValues("miss").Inc()

	d, err := c.catalog.GetDetail(ctx, externalID)
	if err != nil || d == nil {
		return d, err
	}
	c.cache.Put(externalID, *d)
	return d, nil
}
