package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisResultCache stores rendered analytics results in Redis so multiple
// instances can share them. Values are opaque bytes; callers own the
// serialization.
type RedisResultCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisResultCache creates a new Redis-backed result cache
func NewRedisResultCache(cfg RedisConfig) (*RedisResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisResultCache{
		client:    client,
		keyPrefix: "analytics:result:",
	}, nil
}

// NewRedisResultCacheWithClient creates a cache with an existing Redis
// client. This is useful for testing or when sharing a client across
// components.
func NewRedisResultCacheWithClient(client *redis.Client, keyPrefix string) *RedisResultCache {
	if keyPrefix == "" {
		keyPrefix = "analytics:result:"
	}
	return &RedisResultCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached payload for key, or nil without error on a miss.
func (c *RedisResultCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached result: %w", err)
	}
	return data, nil
}

// Set stores the payload under key with the given TTL.
func (c *RedisResultCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// Invalidate removes every cached result for an organization scope.
func (c *RedisResultCache) Invalidate(ctx context.Context, scope string) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+scope+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached results: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached results: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *RedisResultCache) Close() error {
	return c.client.Close()
}
