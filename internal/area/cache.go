package area

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/redis/go-redis/v9"

	"github.com/example/fleet-availability/internal/models"
	"github.com/example/fleet-availability/internal/observability"
)

// cellPrecision 8 gives ~±19m cells. Coordinates in the same cell resolve
// to the same area except within a cell of the boundary, which is an
// acceptable blur for a cache in front of exact containment queries.
const cellPrecision = 8

// Cache is a best-effort Redis read-through cache of resolved service
// areas keyed by geohash cell. Every failure path degrades to a store
// query; the cache can disappear without affecting decisions.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(addr, password string, ttl time.Duration) *Cache {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &Cache{client: c, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, coord models.Coord) (models.ServiceArea, bool) {
	raw, err := c.client.Get(ctx, cacheKey(coord)).Bytes()
	if err != nil {
		observability.ResolverCacheHits.WithLabelValues("miss").Inc()
		return models.ServiceArea{}, false
	}
	var a models.ServiceArea
	if err := json.Unmarshal(raw, &a); err != nil {
		observability.ResolverCacheHits.WithLabelValues("miss").Inc()
		return models.ServiceArea{}, false
	}
	observability.ResolverCacheHits.WithLabelValues("hit").Inc()
	return a, true
}

func (c *Cache) Put(ctx context.Context, coord models.Coord, a models.ServiceArea) {
	raw, err := json.Marshal(a)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(coord), raw, c.ttl).Err()
}

func cacheKey(c models.Coord) string {
	return "area:resolve:" + geohash.EncodeWithPrecision(c.Lat, c.Lon, cellPrecision)
}
