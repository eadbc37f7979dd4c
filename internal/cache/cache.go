package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// QueryCache is a read-through cache for list/summary queries, keyed by query
// shape (see config.CacheKey). Invalidation is explicit: every mutator on a
// collection must call Invalidate with the keys it stales. A TTL bounds
// staleness if an invalidation is ever missed.
//
// Cache failures are never surfaced to callers: a broken cache degrades to
// hitting the store, it does not break reads.
type QueryCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// New creates a QueryCache backed by the given redis client.
func New(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *QueryCache {
	return &QueryCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "query_cache").Logger(),
	}
}

// GetJSON loads a cached value into dst. Returns true on a usable hit.
func (c *QueryCache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache entry corrupt, dropping")
		c.rdb.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores a value under key with the configured TTL.
func (c *QueryCache) SetJSON(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// Invalidate removes the given keys. Mutators call this as part of their
// contract, not as an incidental side effect.
func (c *QueryCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
	}
}
