package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:events:create:"

// NewRedisClient builds a client with conservative timeouts; the
// limiter sits on the request path and must fail fast.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// RedisLimiter closes the check-then-log race with an atomic
// SET NX PX: Allow reserves the client's slot for the whole window up
// front. Because reservation happens before the pipeline runs, callers
// must Release when the request later fails so a rejected submission
// does not consume the slot.
type RedisLimiter struct {
	rdb    *redis.Client
	window time.Duration
}

func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		window: Window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, clientID string, now time.Time) (Decision, error) {
	ok, err := l.rdb.SetNX(ctx, redisKeyPrefix+clientID, now.Unix(), l.window).Result()

	if err != nil {
		return Decision{}, err
	}

	if !ok {
		return Decision{Permit: false, RetryAfter: l.window}, nil
	}

	return Decision{Permit: true}, nil
}

func (l *RedisLimiter) Release(ctx context.Context, clientID string) error {
	return l.rdb.Del(ctx, redisKeyPrefix+clientID).Err()
}

// Ping checks connectivity for the readiness probe.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.rdb.Ping(ctx).Err()
}
