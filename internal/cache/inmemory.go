package cache

import (
	"context"
	"strings"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/config"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration applies when cache.ttl_seconds is 0
const DefaultExpiration = 30 * time.Minute

// DefaultCleanupInterval is how often expired items are removed from the cache
const DefaultCleanupInterval = 10 * time.Minute

// InMemoryCache implements the Cache interface using github.com/patrickmn/go-cache
type InMemoryCache struct {
	cache   *goCache.Cache
	enabled bool
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewInMemoryCache creates a new InMemoryCache. When the cache is disabled
// every Get misses and Set is dropped.
func NewInMemoryCache(cfg *config.Configuration, m *metrics.Metrics) *InMemoryCache {
	ttl := cfg.Cache.TTL()
	if ttl == 0 {
		ttl = DefaultExpiration
	}
	return &InMemoryCache{
		cache:   goCache.New(ttl, DefaultCleanupInterval),
		enabled: cfg.Cache.Enabled,
		ttl:     ttl,
		metrics: m,
	}
}

// Get retrieves a value from the cache
func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}
	value, found := c.cache.Get(key)
	c.record(key, found)
	return value, found
}

// Set adds a value to the cache with the specified expiration
func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	if !c.enabled {
		return
	}
	if expiration == 0 {
		expiration = c.ttl
	}
	c.cache.Set(key, value, expiration)
}

// Delete removes a key from the cache
func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

// Flush removes all items from the cache
func (c *InMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}

func (c *InMemoryCache) record(key string, hit bool) {
	if c.metrics == nil {
		return
	}
	name := key
	if idx := strings.Index(key, ":"); idx > 0 {
		name = key[:idx]
	}
	if hit {
		c.metrics.CacheHitsTotal.WithLabelValues(name).Inc()
	} else {
		c.metrics.CacheMissesTotal.WithLabelValues(name).Inc()
	}
}
