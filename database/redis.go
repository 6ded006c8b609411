package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipebook/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil when no REDIS_URL is configured. Both
// redis:// URLs and bare host:port addresses are accepted.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	var opts *redis.Options
	if strings.HasPrefix(cfg.RedisURL, "redis://") || strings.HasPrefix(cfg.RedisURL, "rediss://") {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.RedisURL}
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	opts.DialTimeout = 2 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
