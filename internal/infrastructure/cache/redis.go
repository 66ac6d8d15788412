package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/nutriswap/backend/internal/domain"
)

// RedisCache implements domain.CacheRepository on Redis via rueidis.
type RedisCache struct {
	client rueidis.Client
	prefix string
}

// Compile-time check: RedisCache implements domain.CacheRepository.
var _ domain.CacheRepository = (*RedisCache)(nil)

// NewRedisCache connects to the given addresses. Keys are stored under prefix.
func NewRedisCache(addrs []string, password, prefix string) (*RedisCache, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  addrs,
		Password:     password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	return newRedisCache(client, prefix), nil
}

func newRedisCache(client rueidis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

// Get retrieves a value by key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.B().Get().Key(c.key(key)).Build()
	data, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Set stores a value with an expiration.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := c.client.B().Set().Key(c.key(key)).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	cmd := c.client.B().Del().Key(c.key(key)).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Exists reports whether the key is present.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	cmd := c.client.B().Exists().Key(c.key(key)).Build()
	n, err := c.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Do(ctx, c.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (c *RedisCache) Close() {
	c.client.Close()
}
