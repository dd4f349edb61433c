// Package cache fronts slow lookups with Redis. Every type here works with a
// nil client and then simply passes through.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil when Redis is not configured or unreachable so
// callers degrade to uncached lookups.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		logger.Info("redis not configured, role cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, role cache disabled", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("connected to redis", "addr", cfg.Addr)
	return client
}
