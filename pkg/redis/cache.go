package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a small JSON read-through cache over Redis for public listing
// endpoints. A nil *Cache is a no-op, so handlers can be wired without
// Redis (e.g. in tests).
type Cache struct {
	client *Client
	ttl    time.Duration
}

// NewCache creates a cache with the given entry TTL. Returns nil when
// client is nil or ttl is not positive, which disables caching.
func NewCache(client *Client, ttl time.Duration) *Cache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// Get unmarshals the cached value for key into dest. Returns false on
// miss or decode failure.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.client.logger.Warn("cache get", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// Set stores value under key for the configured TTL. Failures are logged
// and ignored; the cache is best-effort.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.client.logger.Warn("cache set", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the given keys after a write.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.client.logger.Warn("cache invalidate", zap.Error(err))
	}
}
