package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pricewell/pricewell/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for verified identities.
	identityCachePrefix = "identity:"
	// identityCacheTTL is the time-to-live for cached identities.
	identityCacheTTL = 5 * time.Minute
)

// CachedIdentity represents a verified identity stored in Redis.
type CachedIdentity struct {
	TokenID     string   `json:"token_id"`
	TokenPrefix string   `json:"token_prefix"`
	UserID      string   `json:"user_id"`
	Scopes      []string `json:"scopes"`
}

// GetIdentity retrieves a cached verified identity by cache key.
// Returns nil if not found (cache miss).
func (c *Cache) GetIdentity(ctx context.Context, cacheKey string) (*model.Identity, error) {
	key := identityCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached CachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Identity{
		TokenID:     cached.TokenID,
		TokenPrefix: cached.TokenPrefix,
		UserID:      cached.UserID,
		Scopes:      cached.Scopes,
	}, nil
}

// SetIdentity caches a verified identity.
func (c *Cache) SetIdentity(ctx context.Context, cacheKey string, identity *model.Identity) error {
	key := identityCachePrefix + cacheKey

	cached := CachedIdentity{
		TokenID:     identity.TokenID,
		TokenPrefix: identity.TokenPrefix,
		UserID:      identity.UserID,
		Scopes:      identity.Scopes,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, key, data, identityCacheTTL).Err()
}

// DeleteIdentity removes a cached identity.
// Used when a token is revoked.
func (c *Cache) DeleteIdentity(ctx context.Context, cacheKey string) error {
	key := identityCachePrefix + cacheKey
	return c.client.Del(ctx, key).Err()
}
