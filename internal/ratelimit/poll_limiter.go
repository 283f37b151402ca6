package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bloomloft/garland/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyOrderPoll = "orders:poll:%s"

// PollLimiter throttles the public order-tracking endpoint, which the
// gateway's confirmation page polls while waiting for the callback to land.
// Disabled (nil limiter) when no Redis address is configured.
type PollLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewPollLimiter(cfg config.Config) *PollLimiter {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})

	return &PollLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.Redis.PollRate,
		burst:  cfg.Redis.PollBurst,
	}
}

func (l *PollLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *PollLimiter) Allow(ctx context.Context, clientKey string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyOrderPoll, strings.TrimSpace(clientKey)), l.rate, l.burst)
}

// NewPromotionLocker shares the poll limiter's Redis connection for the
// fallback store's best-effort lock. Nil when Redis is not configured.
func NewPromotionLocker(cfg config.Config) *Locker {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})
	return NewLocker(client)
}

// DefaultLockTTL bounds how long a promotion lock can outlive its holder.
const DefaultLockTTL = 30 * time.Second
