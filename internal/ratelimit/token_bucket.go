package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// The script answers {allowed, millitokens}. Lua numbers come back as integer
// replies, so the remaining tokens are scaled to keep sub-token precision for
// the retry delay.
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
else
  local delta = math.max(0, now - ts)
  tokens = math.min(burst, tokens + (delta / 1000) * rate)
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, math.floor(tokens * 1000)}
`

// TokenBucket is a redis-backed bucket shared by every bot process using the same redis.
type TokenBucket struct {
	client redis.Scripter
	script *redis.Script
}

// RateLimitResult is the bucket's answer for one send.
type RateLimitResult struct {
	Allowed bool
	// RetryAfter is how long until one token is available; zero when allowed.
	RetryAfter time.Duration
}

func NewTokenBucket(client redis.Scripter) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{
		client: client,
		script: redis.NewScript(tokenBucketScript),
	}
}

func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (*RateLimitResult, error) {
	if t == nil || t.client == nil {
		return &RateLimitResult{}, errors.New("rate limiter not configured")
	}
	if key == "" {
		return &RateLimitResult{}, errors.New("rate limiter key is empty")
	}
	if rate <= 0 {
		return &RateLimitResult{}, errors.New("rate limiter rate must be positive")
	}
	if burst <= 0 {
		return &RateLimitResult{}, errors.New("rate limiter burst must be positive")
	}

	ttl := defaultBucketTTL(rate, burst)
	res, err := t.script.Run(ctx, t.client, []string{key}, rate, burst, ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return &RateLimitResult{}, err
	}
	if len(res) < 2 {
		return &RateLimitResult{}, errors.New("invalid rate limit script response")
	}

	return decide(res[0] == 1, float64(res[1])/1000, rate), nil
}

func decide(allowed bool, remaining, rate float64) *RateLimitResult {
	if allowed {
		return &RateLimitResult{Allowed: true}
	}
	retryAfter := time.Duration(0)
	if needed := 1.0 - remaining; needed > 0 {
		retryAfter = time.Duration(needed / rate * float64(time.Second))
	}
	return &RateLimitResult{RetryAfter: retryAfter}
}

func defaultBucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	seconds := math.Ceil((float64(burst) / rate) * 2)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}
