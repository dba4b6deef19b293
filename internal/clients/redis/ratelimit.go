package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/utils"
)

// Decision is the outcome of one quota check. Allow consumes a slot,
// so Remaining reflects the state after this request.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter is a fixed-window per-owner counter. It lives in a
// shared store so every service instance sees the same quota.
type RateLimiter interface {
	Allow(ctx context.Context, ownerID uuid.UUID) (Decision, error)
	Close() error
}

type rateLimiter struct {
	log    *logger.Logger
	rdb    *goredis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(log *logger.Logger, limit int, window time.Duration) (RateLimiter, error) {
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", limit)
	}
	if window <= 0 {
		return nil, fmt.Errorf("rate window must be positive, got %s", window)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    utils.GetEnv("REDIS_PASSWORD", "", log),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &rateLimiter{
		log:    log.With("client", "RateLimiter"),
		rdb:    rdb,
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

// windowKey buckets an owner into the current fixed window.
func windowKey(ownerID uuid.UUID, now time.Time, window time.Duration) string {
	start := now.UTC().Truncate(window)
	return fmt.Sprintf("genquota:%s:%d", ownerID, start.Unix())
}

// windowRetryAfter is the time until the current fixed window rolls
// over, used as the retry hint when the counter is exhausted.
func windowRetryAfter(now time.Time, window time.Duration) time.Duration {
	start := now.UTC().Truncate(window)
	return start.Add(window).Sub(now.UTC())
}

func (l *rateLimiter) Allow(ctx context.Context, ownerID uuid.UUID) (Decision, error) {
	now := l.now()
	key := windowKey(ownerID, now, l.window)

	// INCR + EXPIRE NX in one round trip. The atomic increment makes
	// concurrent requests from the same owner agree on the count.
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}

	count := int(incr.Val())
	if count > l.limit {
		retryAfter := windowRetryAfter(now, l.window)
		if ttl, err := l.rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			retryAfter = ttl
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}
	return Decision{Allowed: true, Remaining: l.limit - count}, nil
}

func (l *rateLimiter) Close() error {
	return l.rdb.Close()
}
