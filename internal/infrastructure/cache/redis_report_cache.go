// Package cache provides the byte-oriented cache backing rendered reports,
// with a Redis implementation for deployments and an in-memory one for
// single-instance setups and tests.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kontor/backend/internal/application/report"
	"github.com/kontor/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisReportCache implements report.ReportCache using Redis. Suitable for
// distributed deployments where multiple instances share cached reports.
type RedisReportCache struct {
	client *redis.Client
}

// NewRedisReportCache creates a Redis-backed report cache from configuration
func NewRedisReportCache(cfg *config.RedisConfig) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisReportCache{client: client}, nil
}

// NewRedisReportCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisReportCacheWithClient(client *redis.Client) *RedisReportCache {
	return &RedisReportCache{client: client}
}

// Get returns the cached value for the key, or (nil, nil) on a miss
func (c *RedisReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	return value, nil
}

// Set stores a value under the key with the given TTL
func (c *RedisReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys
func (c *RedisReportCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

// Ensure RedisReportCache implements ReportCache
var _ report.ReportCache = (*RedisReportCache)(nil)
