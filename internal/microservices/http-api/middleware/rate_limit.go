package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Limiter decides whether the client identified by key may proceed. On denial
// retryAfter says how long the client should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter keeps one token bucket per client in process memory.
type LocalLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
	cleanup  time.Time
}

func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  3 * time.Minute,
		cleanup:  time.Now().Add(time.Minute),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()
	l.mu.Lock()
	if now.After(l.cleanup) {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idleTTL {
				delete(l.visitors, k)
			}
		}
		l.cleanup = now.Add(time.Minute)
	}
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	res := v.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second, nil
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

// RateLimit rejects requests over budget with 429 and a Retry-After header.
// Limiter errors let the request through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "rate limiter backend unavailable, allowing request",
				"client_ip", key,
				"error", err,
			)
			c.Next()
			return
		}
		if !allowed {
			rateLimitRejects.Inc()
			c.Header("Retry-After", retryAfterHeader(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "too many requests"})
			return
		}
		c.Next()
	}
}

func retryAfterHeader(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds <= 0 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
