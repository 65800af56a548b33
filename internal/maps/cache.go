package maps

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mmcloughlin/geohash"
	"go.uber.org/zap"

	"github.com/mytrips/service-trips/internal/domain/geo"
	"github.com/mytrips/service-trips/internal/domain/route"
)

const (
	// defaultCacheTTL is how long a cached route stays valid.
	defaultCacheTTL = 2 * time.Minute

	// defaultCacheEntries caps the number of cached routes.
	defaultCacheEntries = 1024

	// geohashPrecision 7 is a cell of roughly 150m x 150m.
	geohashPrecision = 7
)

// CachedDirections wraps another Directions and caches its routes. Keys are
// the geohash cell of the origin, the exact target and the travel mode, so
// small device movements reuse the previous result while every placemark
// gets its own route.
type CachedDirections struct {
	inner      Directions
	ttl        time.Duration
	maxEntries int
	logger     *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	route     *route.Route
	expiresAt time.Time
}

// CacheOption configures a CachedDirections.
type CacheOption func(*CachedDirections)

// WithCacheTTL overrides the entry lifetime.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedDirections) { c.ttl = ttl }
}

// WithMaxEntries overrides the cache size limit.
func WithMaxEntries(n int) CacheOption {
	return func(c *CachedDirections) { c.maxEntries = n }
}

// WithCacheLogger sets the logger used for cache hit/miss debugging.
func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *CachedDirections) { c.logger = l }
}

// withClock replaces the time source. Tests only.
func withClock(now func() time.Time) CacheOption {
	return func(c *CachedDirections) { c.now = now }
}

// NewCachedDirections wraps inner with an in-memory cache-aside layer.
func NewCachedDirections(inner Directions, opts ...CacheOption) *CachedDirections {
	c := &CachedDirections{
		inner:      inner,
		ttl:        defaultCacheTTL,
		maxEntries: defaultCacheEntries,
		logger:     zap.NewNop(),
		now:        time.Now,
		entries:    make(map[string]cacheEntry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Route satisfies the Directions interface. Failures are never cached.
func (c *CachedDirections) Route(ctx context.Context, req DirectionsRequest) (*route.Route, error) {
	key := cacheKey(req)

	if r, ok := c.get(key); ok {
		c.logger.Debug("directions cache hit", zap.String("key", key))
		return withOrigin(r, req), nil
	}

	r, err := c.inner.Route(ctx, req)
	if err != nil {
		return nil, err
	}
	c.set(key, r)
	return r, nil
}

// Len returns the number of live entries.
func (c *CachedDirections) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *CachedDirections) get(key string) (*route.Route, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.route, true
}

func (c *CachedDirections) set(key string, r *route.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.entries) >= c.maxEntries {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
	// Still full: drop an arbitrary entry.
	if len(c.entries) >= c.maxEntries {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = cacheEntry{route: r, expiresAt: now.Add(c.ttl)}
}

func cacheKey(req DirectionsRequest) string {
	return fmt.Sprintf("%s:%.6f,%.6f:%s",
		cellHash(req.Origin), req.Target.Latitude, req.Target.Longitude, req.Mode)
}

func cellHash(c geo.Coordinate) string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, geohashPrecision)
}

// withOrigin returns a copy of a cached route carrying the caller's exact
// origin. The target is part of the key and already matches.
func withOrigin(r *route.Route, req DirectionsRequest) *route.Route {
	cp := *r
	cp.Origin = req.Origin
	return &cp
}
