package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const unreadTTL = 60 * time.Second

// RedisUnreadCache keeps per-user unread counts in Redis with a short TTL.
// Writers invalidate; readers fall through to Postgres on any miss or
// Redis error.
type RedisUnreadCache struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisUnreadCache(client *redis.Client, logger zerolog.Logger) *RedisUnreadCache {
	return &RedisUnreadCache{
		client: client,
		logger: logger.With().Str("component", "unread_cache").Logger(),
	}
}

func key(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}

func (c *RedisUnreadCache) Get(ctx context.Context, userID uuid.UUID) (int, bool) {
	count, err := c.client.Get(ctx, key(userID)).Int()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug().Err(err).Msg("unread cache read failed")
		}
		return 0, false
	}
	return count, true
}

func (c *RedisUnreadCache) Set(ctx context.Context, userID uuid.UUID, count int) {
	if err := c.client.Set(ctx, key(userID), count, unreadTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("unread cache write failed")
	}
}

func (c *RedisUnreadCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("unread cache invalidation failed")
	}
}
