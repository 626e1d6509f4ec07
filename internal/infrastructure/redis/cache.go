package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// TokenCache stores short-lived upstream tokens under a key prefix.
type TokenCache struct {
	client goredis.Cmdable
	prefix string
}

func NewTokenCache(client goredis.Cmdable, prefix string) *TokenCache {
	return &TokenCache{client: client, prefix: prefix}
}

// Get returns domain.ErrCacheMiss when the key is absent or expired.
func (c *TokenCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (c *TokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *TokenCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
