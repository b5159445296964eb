package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GrantCache caches computed course-access grants with a short TTL. The
// cache is advisory: a miss just recomputes from postgres, and purchase
// confirmation invalidates the pair so a fresh paid grant is visible
// immediately.
type GrantCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGrantCache returns redis-backed cache.
func NewGrantCache(client *redis.Client, ttl time.Duration) *GrantCache {
	return &GrantCache{client: client, ttl: ttl}
}

func (c *GrantCache) key(userID, courseID int64) string {
	return fmt.Sprintf("access:grant:%d:%d", userID, courseID)
}

// Get returns the cached grant and whether the key was present.
func (c *GrantCache) Get(ctx context.Context, userID, courseID int64) (bool, bool, error) {
	result, err := c.client.Get(ctx, c.key(userID, courseID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return result == "1", true, nil
}

// Save caches the grant for the configured TTL.
func (c *GrantCache) Save(ctx context.Context, userID, courseID int64, allowed bool) error {
	value := "0"
	if allowed {
		value = "1"
	}
	return c.client.Set(ctx, c.key(userID, courseID), value, c.ttl).Err()
}

// Invalidate drops the cached grant for the pair.
func (c *GrantCache) Invalidate(ctx context.Context, userID, courseID int64) error {
	return c.client.Del(ctx, c.key(userID, courseID)).Err()
}
