package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

const roleKeyPrefix = "classbook:role:"

// RoleCache is a read-through cache over a RoleLookup. Redis failures are
// logged and fall through to the underlying lookup; lookup failures are never
// cached. A non-positive TTL disables caching, since Redis would keep the
// entry forever.
type RoleCache struct {
	inner  application.RoleLookup
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRoleCache(inner application.RoleLookup, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RoleCache {
	return &RoleCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RoleCache) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	if c.client == nil || c.ttl <= 0 {
		return c.inner.RoleOf(ctx, userID)
	}

	key := roleKeyPrefix + userID
	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return domain.Role(cached), nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("role cache read failed", "user_id", userID, "error", err)
	}

	role, err := c.inner.RoleOf(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, string(role), c.ttl).Err(); err != nil {
		c.logger.Warn("role cache write failed", "user_id", userID, "error", err)
	}
	return role, nil
}
