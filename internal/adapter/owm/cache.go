package owm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-index-etl/internal/observability"
)

// CachedFetcher wraps a Fetcher with an in-memory LRU cache whose entries
// expire after a TTL. Index data changes slowly, so repeated polls for the
// same coordinates within the TTL are served from memory.
type CachedFetcher struct {
	inner   Fetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner Fetcher, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl),
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchUV(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	return c.fetch(ctx, endpointUV, lat, lon, c.inner.FetchUV)
}

func (c *CachedFetcher) FetchSO2(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	return c.fetch(ctx, endpointSO2, lat, lon, c.inner.FetchSO2)
}

func (c *CachedFetcher) fetch(ctx context.Context, endpoint string, lat, lon float64, do func(context.Context, float64, float64) (json.RawMessage, error)) (json.RawMessage, error) {
	key := fmt.Sprintf("%s:%.4f,%.4f", endpoint, lat, lon)
	if payload, ok := c.cache.get(key); ok {
		c.metrics.ProviderCache.WithLabelValues(endpoint, "hit").Inc()
		return payload, nil
	}
	c.metrics.ProviderCache.WithLabelValues(endpoint, "miss").Inc()

	payload, err := do(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, payload)
	return payload, nil
}

// lruCache is a thread-safe LRU cache with per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     json.RawMessage
	expiresAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int, ttl time.Duration) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clockwork.NewRealClock(),
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = c.clock.Now().Add(c.ttl)
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: c.clock.Now().Add(c.ttl)}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
