package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"menuengine/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisMenuCache struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisMenuCache creates a Redis-backed menu cache. Redis expires keys on
// its own; the stored expiry is still checked on read so a skewed server
// clock can never serve a stale menu.
func NewRedisMenuCache(client *redis.Client) MenuCache {
	return &redisMenuCache{
		client: client,
		now:    time.Now,
	}
}

func (c *redisMenuCache) key(placeID string) string {
	return fmt.Sprintf("menu:%s", placeID)
}

func (c *redisMenuCache) Get(ctx context.Context, placeID string) (*model.MenuDocument, error) {
	data, err := c.client.Get(ctx, c.key(placeID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry model.CacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("decode cached menu %s: %w", placeID, err)
	}
	if entry.Menu == nil || !entry.Live(c.now()) {
		if err := c.client.Del(ctx, c.key(placeID)).Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return entry.Menu, nil
}

func (c *redisMenuCache) Put(ctx context.Context, placeID string, menu *model.MenuDocument, ttl time.Duration) error {
	entry := model.CacheEntry{
		Menu:      menu,
		ExpiresAt: c.now().Add(ttl),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(placeID), data, ttl).Err()
}
