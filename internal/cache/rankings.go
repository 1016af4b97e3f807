// Package cache holds the Redis cache for home-page ranking lists.
// The top today/week/month queries aggregate over view_counts on every
// home render, so their results are kept for a short TTL.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"mangaden/internal/models"
)

const keyPrefix = "rankings:"

// RankingsCache caches ranked manga lists keyed by period
// ("today", "week", "month"). A nil *RankingsCache is a valid no-op
// cache, used when Redis is not available.
type RankingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRankingsCache(client *redis.Client, ttl time.Duration) *RankingsCache {
	return &RankingsCache{client: client, ttl: ttl}
}

// Get returns the cached list for a period, with ok=false on miss or any
// Redis error (the caller falls back to the database).
func (c *RankingsCache) Get(ctx context.Context, period string) ([]models.Manga, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, keyPrefix+period).Bytes()
	if err != nil {
		return nil, false
	}
	var list []models.Manga
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	return list, true
}

// Set stores the list for a period. Failures are ignored; the cache is
// best effort.
func (c *RankingsCache) Set(ctx context.Context, period string, list []models.Manga) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	c.client.Set(ctx, keyPrefix+period, raw, c.ttl)
}
