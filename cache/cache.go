// Package cache implements a Redis-backed cache-aside layer for filter lists.
//
// Read path: check cache, return on hit; on miss query the source of truth
// and store the result. Write path: invalidate the affected keys.
// Every Redis failure is treated as a miss or a no-op; this layer is not on
// a security path and fails open.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Filter list cache keys
const (
	KeyCategories = "filters:categories"
	KeyColors     = "filters:colors"
	KeyMaterials  = "filters:materials"
)

// DefaultTTL bounds staleness of cached filter lists
const DefaultTTL = 5 * time.Minute

// Cache is a JSON value cache on Redis
type Cache struct {
	redis redis.UniversalClient
	ttl   time.Duration
	log   zerolog.Logger
}

// New creates a Cache with the given TTL
func New(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{redis: client, ttl: ttl, log: log}
}

// Get unmarshals the cached value for key into dest. Returns false on miss
// or on any cache error.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache value corrupt")
		return false
	}

	c.log.Debug().Str("key", key).Msg("cache hit")
	return true
}

// Set marshals value to JSON and stores it with the cache TTL. Errors are
// logged and otherwise ignored.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}

	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Invalidate deletes one or more exact keys
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidate failed")
	}
}
