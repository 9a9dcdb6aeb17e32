package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripter answers EvalSha with a fixed reply and records the call.
type scripter struct {
	redis.Scripter

	reply any
	err   error

	keys []string
	args []any
}

func (s *scripter) EvalSha(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	s.keys, s.args = keys, args
	cmd := redis.NewCmd(ctx)
	if s.err != nil {
		cmd.SetErr(s.err)
		return cmd
	}
	cmd.SetVal(s.reply)
	return cmd
}

func TestTokenBucketAllowed(t *testing.T) {
	s := &scripter{reply: []any{int64(1), int64(2000)}}

	res, err := NewTokenBucket(s).Allow(context.Background(), "orderrelay:send:chat:555", 1, 3)

	require.NoError(t, err)
	assert.Equal(t, &RateLimitResult{Allowed: true}, res)
	assert.Equal(t, []string{"orderrelay:send:chat:555"}, s.keys)
	assert.Equal(t, []any{1.0, 3, int64(6000)}, s.args)
}

func TestTokenBucketRetryAfterUsesFractionalTokens(t *testing.T) {
	s := &scripter{reply: []any{int64(0), int64(250)}}

	res, err := NewTokenBucket(s).Allow(context.Background(), "k", 1, 3)

	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 750*time.Millisecond, res.RetryAfter)
}

func TestTokenBucketScriptErrors(t *testing.T) {
	_, err := NewTokenBucket(&scripter{err: errors.New("connection refused")}).Allow(context.Background(), "k", 1, 1)
	assert.EqualError(t, err, "connection refused")

	_, err = NewTokenBucket(&scripter{reply: []any{int64(1)}}).Allow(context.Background(), "k", 1, 1)
	assert.EqualError(t, err, "invalid rate limit script response")
}

func TestTokenBucketRejectsBadArguments(t *testing.T) {
	b := NewTokenBucket(&scripter{})
	for _, tc := range []struct {
		key   string
		rate  float64
		burst int
	}{
		{"", 1, 1},
		{"k", 0, 1},
		{"k", 1, 0},
	} {
		res, err := b.Allow(context.Background(), tc.key, tc.rate, tc.burst)
		assert.Error(t, err)
		assert.False(t, res.Allowed)
	}
}

func TestNilTokenBucketRefuses(t *testing.T) {
	var b *TokenBucket
	res, err := b.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
	assert.False(t, res.Allowed)
	assert.Nil(t, NewTokenBucket(nil))
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 6*time.Second, defaultBucketTTL(1, 3))
	assert.Equal(t, 2*time.Second, defaultBucketTTL(30, 30))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 1))
}
