package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/orderrelay/internal/clock"
	"github.com/smallbiznis/orderrelay/internal/config"
	"github.com/smallbiznis/orderrelay/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keySendGlobal = "orderrelay:send:global"
	keySendChat   = "orderrelay:send:chat:%s"

	minRetryDelay = 50 * time.Millisecond
)

type bucket interface {
	Allow(ctx context.Context, key string, rate float64, burst int) (*RateLimitResult, error)
}

// SendLimiter paces outbound messages below the chat platform's flood
// limits. A nil *SendLimiter never waits.
type SendLimiter struct {
	bucket  bucket
	sleeper clock.Sleeper
	log     *zap.Logger
	metrics *metrics.Metrics

	perChatRate  float64
	perChatBurst int
	globalRate   float64
	globalBurst  int
}

type SendLimiterParams struct {
	fx.In

	Lc      fx.Lifecycle
	Cfg     config.Config
	Sleeper clock.Sleeper
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

// NewSendLimiter returns nil when rate limiting is disabled.
func NewSendLimiter(p SendLimiterParams) (*SendLimiter, error) {
	limitCfg := p.Cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	if p.Lc != nil {
		p.Lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	return newSendLimiter(NewTokenBucket(client), p.Sleeper, p.Log, p.Metrics, limitCfg)
}

func newSendLimiter(b bucket, sleeper clock.Sleeper, log *zap.Logger, m *metrics.Metrics, cfg config.RateLimitConfig) (*SendLimiter, error) {
	if cfg.PerChatRate <= 0 || cfg.PerChatBurst <= 0 {
		return nil, errors.New("per chat send rate limit must be positive")
	}
	if cfg.GlobalRate <= 0 || cfg.GlobalBurst <= 0 {
		return nil, errors.New("global send rate limit must be positive")
	}
	if sleeper == nil {
		sleeper = clock.System{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SendLimiter{
		bucket:       b,
		sleeper:      sleeper,
		log:          log.Named("ratelimit"),
		metrics:      m,
		perChatRate:  cfg.PerChatRate,
		perChatBurst: cfg.PerChatBurst,
		globalRate:   cfg.GlobalRate,
		globalBurst:  cfg.GlobalBurst,
	}, nil
}

// Wait blocks until both the global and the per-chat bucket grant a token,
// or ctx is done. Redis errors fail open: the send goes ahead.
func (l *SendLimiter) Wait(ctx context.Context, chatID string) error {
	if l == nil {
		return nil
	}
	if err := l.take(ctx, keySendGlobal, "global", l.globalRate, l.globalBurst); err != nil {
		return err
	}
	return l.take(ctx, fmt.Sprintf(keySendChat, chatID), "per_chat", l.perChatRate, l.perChatBurst)
}

func (l *SendLimiter) take(ctx context.Context, key, scope string, rate float64, burst int) error {
	for {
		res, err := l.bucket.Allow(ctx, key, rate, burst)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			l.log.Warn("rate limiter unavailable, sending unthrottled", zap.String("scope", scope), zap.Error(err))
			return nil
		}
		if res.Allowed {
			return nil
		}

		l.metrics.RecordRateLimitWait(ctx, scope)
		delay := res.RetryAfter
		if delay < minRetryDelay {
			delay = minRetryDelay
		}
		if err := l.sleeper.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}
