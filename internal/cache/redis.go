// Package cache provides Redis cache access layer.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connection pool settings shared by every environment.
const (
	poolSize        = 10
	minIdleConns    = 2
	poolTimeout     = 4 * time.Second
	connMaxIdleTime = 5 * time.Minute
)

// Cache provides Redis cache access methods.
type Cache struct {
	client     *redis.Client
	pricingTTL time.Duration
}

// New connects to Redis at the given URL and verifies the connection
// with a ping before returning.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = poolSize
	opt.MinIdleConns = minIdleConns
	opt.PoolTimeout = poolTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client, pricingTTL: DefaultPricingTTL}, nil
}

// SetPricingTTL overrides the TTL used for cached pricing views.
// Non-positive values are ignored.
func (c *Cache) SetPricingTTL(ttl time.Duration) {
	if ttl > 0 {
		c.pricingTTL = ttl
	}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to Cache.
func (c *Cache) Client() *redis.Client {
	return c.client
}
