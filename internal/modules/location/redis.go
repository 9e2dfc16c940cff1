// README: Redis-backed driver location cache with per-key TTL.
package location

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "location:driver:"

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl}
}

func (c *RedisCache) Set(ctx context.Context, fix Fix) error {
	body, err := json.Marshal(fix)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, keyPrefix+fix.DriverID.String(), body, c.ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, driverID uuid.UUID) (*Fix, error) {
	val, err := c.redis.Get(ctx, keyPrefix+driverID.String()).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var fix Fix
	if err := json.Unmarshal([]byte(val), &fix); err != nil {
		return nil, err
	}
	return &fix, nil
}
