package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed window counter shared by every replica. Each client
// gets budget requests per window.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	budget int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter spreads burst requests over the window that rps would take to refill them.
func NewRedisLimiter(client redis.UniversalClient, prefix string, rps float64, burst int) *RedisLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	window := time.Second
	if rps > 0 && burst > 0 {
		window = time.Duration(float64(burst) / rps * float64(time.Second))
	}
	if window < time.Millisecond {
		window = time.Millisecond
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		budget: int64(max(burst, 1)),
		window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l.client == nil {
		return false, 0, errors.New("redis client is nil")
	}
	if key == "" {
		key = "unknown"
	}

	nowMS := l.now().UnixMilli()
	windowMS := l.window.Milliseconds()
	slot := nowMS / windowMS
	storeKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, storeKey)
		pipe.PExpire(ctx, storeKey, l.window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	if incr.Val() > l.budget {
		retry := time.Duration((slot+1)*windowMS-nowMS) * time.Millisecond
		return false, retry, nil
	}
	return true, 0, nil
}
