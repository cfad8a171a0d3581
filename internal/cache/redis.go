package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefix for uploaded-file references
const fileRefPrefix = "fileref:"

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a connected Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) GetFileRef(ctx context.Context, docIdentity string) (string, error) {
	id, err := c.client.Get(ctx, fileRefPrefix+docIdentity).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *RedisCache) SetFileRef(ctx context.Context, docIdentity, fileID string, ttl time.Duration) error {
	return c.client.Set(ctx, fileRefPrefix+docIdentity, fileID, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, docIdentity string) error {
	return c.client.Del(ctx, fileRefPrefix+docIdentity).Err()
}

// Close closes the cache connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
