//go:build redis

package ratelimit

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: REDIS_ADDR=localhost:6379 go test -tags redis ./internal/ratelimit
func TestTokenBucketAgainstRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	key := "orderrelay:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })

	bucket := NewTokenBucket(client)
	for i := 0; i < 2; i++ {
		res, err := bucket.Allow(ctx, key, 0.5, 2)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "send %d", i)
	}

	res, err := bucket.Allow(ctx, key, 0.5, 2)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter.Milliseconds(), int64(1000))
	assert.LessOrEqual(t, res.RetryAfter.Milliseconds(), int64(2000))
}
