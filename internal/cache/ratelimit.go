package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// rateLimitTokenPrefix is the Redis key prefix for identity token rate limits.
	rateLimitTokenPrefix = "ratelimit:token:"
	// rateLimitIPPrefix is the Redis key prefix for IP rate limits.
	rateLimitIPPrefix = "ratelimit:ip:"
	// rateLimitTokenTTL is the TTL for token rate limit keys.
	rateLimitTokenTTL = 120 * time.Second
	// rateLimitIPTTL is the TTL for IP rate limit keys.
	rateLimitIPTTL = 10 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// bucketScript implements a token bucket in Lua so that refill and
// consumption happen atomically on the Redis side.
var bucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(state[1]) or burst
	local last_update = tonumber(state[2]) or now

	-- refill for the time elapsed since the last check
	tokens = math.min(burst, tokens + ((now - last_update) * rate))

	local allowed = 0
	local retry_after = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckTokenRateLimit checks and updates the per-minute rate limit for
// an identity token. A zero rate means unlimited.
func (c *Cache) CheckTokenRateLimit(ctx context.Context, tokenID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute == 0 {
		return allowResult(burst), nil
	}

	key := rateLimitTokenPrefix + tokenID
	ratePerSecond := float64(ratePerMinute) / 60.0

	return c.consumeBucket(ctx, key, ratePerSecond, burst, int(rateLimitTokenTTL.Seconds()))
}

// CheckIPRateLimit checks and updates the per-second rate limit for a
// client IP. The IP is hashed before use as a key so raw addresses are
// never stored in Redis.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	key := rateLimitIPPrefix + hashIP(ip)
	return c.consumeBucket(ctx, key, float64(ratePerSecond), burst, int(rateLimitIPTTL.Seconds()))
}

func (c *Cache) consumeBucket(ctx context.Context, key string, rate float64, burst, ttl int) (*RateLimitResult, error) {
	now := time.Now().Unix()

	result, err := bucketScript.Run(ctx, c.client, []string{key}, rate, burst, now, ttl).Int64Slice()
	if err != nil {
		// Fail open: an unreachable Redis must not take pricing down
		// with it.
		return allowResult(burst), nil
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Remaining:  result[2],
		ResetAt:    time.Now().Add(time.Duration(float64(time.Second) / rate)),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

func allowResult(burst int) *RateLimitResult {
	return &RateLimitResult{
		Allowed:   true,
		Remaining: int64(burst),
		ResetAt:   time.Now().Add(time.Minute),
	}
}

// hashIP returns a truncated SHA256 of the IP, unique enough for rate
// limit keys.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
