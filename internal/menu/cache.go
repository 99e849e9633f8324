package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds the active menu of each stall.
type Cache interface {
	Get(ctx context.Context, stallID string) ([]Item, error)
	Set(ctx context.Context, stallID string, items []Item) error
	Delete(ctx context.Context, stallID string) error
}

type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 10 * time.Minute,
	}
}

func (c *RedisCache) Get(ctx context.Context, stallID string) ([]Item, error) {
	data, err := c.client.Get(ctx, cacheKey(stallID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal menu failed: %w", err)
	}
	return items, nil
}

func (c *RedisCache) Set(ctx context.Context, stallID string, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal menu failed: %w", err)
	}

	// jitter spreads expiry so stalls don't all miss at once
	ttl := c.baseTTL + time.Duration(rand.Intn(120))*time.Second
	if err := c.client.Set(ctx, cacheKey(stallID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, stallID string) error {
	if err := c.client.Del(ctx, cacheKey(stallID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(stallID string) string {
	return fmt.Sprintf("menu:stall:%s", stallID)
}

// NopCache is used when no Redis address is configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]Item, error) { return nil, ErrCacheMiss }
func (NopCache) Set(context.Context, string, []Item) error   { return nil }
func (NopCache) Delete(context.Context, string) error        { return nil }
