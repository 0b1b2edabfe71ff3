// Package redis caches hotspot query results in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/darshan1137/case/internal/density"
)

// DefaultKeyPrefix namespaces cache keys.
const DefaultKeyPrefix = "ward-engine"

// commander is the subset of the go-redis client used by the cache.
type commander interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// HotspotCache implements engine.HotspotCache with a TTL per entry.
type HotspotCache struct {
	client commander
	prefix string
	ttl    time.Duration
}

// NewClient opens a Redis client. It does not dial until first use.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
}

// NewHotspotCache wraps client. Entries expire after ttl.
func NewHotspotCache(client commander, prefix string, ttl time.Duration) *HotspotCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &HotspotCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *HotspotCache) key(minCount int, radiusKm float64) string {
	return fmt.Sprintf("%s:hotspots:%d:%.4f", c.prefix, minCount, radiusKm)
}

// GetHotspots returns a cached result. A missing key is a miss, not an error.
func (c *HotspotCache) GetHotspots(ctx context.Context, minCount int, radiusKm float64) ([]density.Hotspot, bool, error) {
	data, err := c.client.Get(ctx, c.key(minCount, radiusKm)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get hotspots: %w", err)
	}
	var hs []density.Hotspot
	if err := json.Unmarshal(data, &hs); err != nil {
		return nil, false, fmt.Errorf("decode cached hotspots: %w", err)
	}
	if hs == nil {
		hs = []density.Hotspot{}
	}
	return hs, true, nil
}

// SetHotspots stores a result under the query's key.
func (c *HotspotCache) SetHotspots(ctx context.Context, minCount int, radiusKm float64, hs []density.Hotspot) error {
	data, err := json.Marshal(hs)
	if err != nil {
		return fmt.Errorf("encode hotspots: %w", err)
	}
	if err := c.client.Set(ctx, c.key(minCount, radiusKm), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set hotspots: %w", err)
	}
	return nil
}
