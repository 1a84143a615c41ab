package snapshot

import (
	"context"
	"time"

	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/pkg/redis"
)

// Cache keeps the latest snapshot in Redis. A disabled Redis client makes
// every call a pass-through.
type Cache struct {
	cache *redis.Cache
	ttl   time.Duration
}

// NewCache wraps a redis cache helper; ttl <= 0 uses redis.TTLLong
func NewCache(cache *redis.Cache, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	return &Cache{cache: cache, ttl: ttl}
}

// Latest returns the cached latest snapshot, calling load on a miss and
// caching its result
func (c *Cache) Latest(ctx context.Context, load func(context.Context) (*contracts.Snapshot, error)) (*contracts.Snapshot, error) {
	var snap contracts.Snapshot
	err := c.cache.GetOrSet(ctx, redis.LatestSnapshotKey(), &snap, c.ttl, func() (interface{}, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Put stores snap as the latest snapshot
func (c *Cache) Put(ctx context.Context, snap *contracts.Snapshot) error {
	return c.cache.Set(ctx, redis.LatestSnapshotKey(), snap, c.ttl)
}

// Invalidate drops the latest snapshot entry
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, redis.LatestSnapshotKey())
}

// Summary returns the cached summary for snap's date, computing it on a miss
func (c *Cache) Summary(ctx context.Context, snap *contracts.Snapshot) (contracts.Summary, error) {
	var summary contracts.Summary
	key := redis.SummaryKey(snap.Date.Format(dateLayout))
	err := c.cache.GetOrSet(ctx, key, &summary, redis.TTLMedium, func() (interface{}, error) {
		return snap.Summarize(), nil
	})
	return summary, err
}
