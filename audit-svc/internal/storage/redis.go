package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// StatsCache drops memoized report aggregates after a cascade commit.
// Readers repopulate lazily; a failed delete only extends staleness up
// to the cache TTL.
type StatsCache struct {
	Client *redis.Client
}

func NewStatsCache(client *redis.Client) *StatsCache {
	return &StatsCache{Client: client}
}

func (c *StatsCache) Invalidate(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}
