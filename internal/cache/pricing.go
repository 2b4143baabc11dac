package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pricewell/pricewell/internal/model"
)

// Cache key prefixes and TTLs.
const (
	pricingKeyPrefix  = "pricing:view:"
	pricingVerPrefix  = "pricing:ver:"
	unknownSlugPrefix = "pricing:slug:"
	unknownSlugSuffix = ":neg"

	// DefaultPricingTTL is the TTL for cached pricing views. Admin
	// writes bump the product version; entries for stale versions
	// still age out on their own.
	DefaultPricingTTL = 60 * time.Second

	// NegativeCacheTTL is the TTL for unknown-slug cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// anonymousUserKey identifies pricing views resolved without a user.
const anonymousUserKey = "anon"

// GetPricingView retrieves a cached pricing view for a (slug, user) pair.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetPricingView(ctx context.Context, slug string, userID *string) (*model.PricingView, error) {
	key, err := c.pricingKey(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var view model.PricingView
	if err := json.Unmarshal(data, &view); err != nil {
		// Corrupted entry - treat as miss
		return nil, ErrCacheMiss
	}

	return &view, nil
}

// SetPricingView caches a pricing view for a (slug, user) pair.
func (c *Cache) SetPricingView(ctx context.Context, slug string, userID *string, view *model.PricingView) error {
	key, err := c.pricingKey(ctx, slug, userID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal pricing view: %w", err)
	}

	ttl := c.pricingTTL
	if ttl <= 0 {
		ttl = DefaultPricingTTL
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache pricing view: %w", err)
	}

	return nil
}

// BumpPricingVersion invalidates all cached pricing views for a product by
// incrementing its version counter. Entries keyed to older versions become
// unreachable and expire via their TTL; no key scanning is needed.
func (c *Cache) BumpPricingVersion(ctx context.Context, slug string) error {
	if err := c.client.Incr(ctx, pricingVerPrefix+slug).Err(); err != nil {
		return fmt.Errorf("failed to bump pricing version: %w", err)
	}
	return nil
}

// IsUnknownSlug checks if a product slug is in the negative cache.
func (c *Cache) IsUnknownSlug(ctx context.Context, slug string) (bool, error) {
	key := unknownSlugPrefix + slug + unknownSlugSuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// MarkUnknownSlug marks a product slug as not found.
func (c *Cache) MarkUnknownSlug(ctx context.Context, slug string) error {
	key := unknownSlugPrefix + slug + unknownSlugSuffix

	if err := c.client.SetEx(ctx, key, "", NegativeCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}

// ClearUnknownSlug removes a negative cache entry, called when a product
// with that slug is created.
func (c *Cache) ClearUnknownSlug(ctx context.Context, slug string) error {
	key := unknownSlugPrefix + slug + unknownSlugSuffix
	return c.client.Del(ctx, key).Err()
}

// pricingKey builds the cache key for a (slug, user) pair, embedding the
// product's current version counter.
func (c *Cache) pricingKey(ctx context.Context, slug string, userID *string) (string, error) {
	ver, err := c.client.Get(ctx, pricingVerPrefix+slug).Int64()
	if err != nil {
		// Missing counter means version 0
		ver = 0
	}

	userKey := anonymousUserKey
	if userID != nil {
		userKey = hashUserID(*userID)
	}

	return pricingKeyPrefix + slug + ":v" + strconv.FormatInt(ver, 10) + ":" + userKey, nil
}

// hashUserID creates a truncated SHA256 hash of a user ID so raw
// identifiers never appear in Redis keys.
func hashUserID(userID string) string {
	hash := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
