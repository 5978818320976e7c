package cache

import (
	"context"
	"encoding/json"
	"time"

	appmenu "github.com/craveup/leclerc-storefront/internal/application/menu"
	"github.com/craveup/leclerc-storefront/internal/domain/menu"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InMemoryMenuCache holds normalized menus in process memory
type InMemoryMenuCache struct {
	entries *expiringMap[[]menu.Menu]
}

// NewInMemoryMenuCache creates an in-memory menu cache
func NewInMemoryMenuCache() *InMemoryMenuCache {
	return &InMemoryMenuCache{entries: newExpiringMap[[]menu.Menu](time.Minute)}
}

// Get returns cached menus for key
func (c *InMemoryMenuCache) Get(_ context.Context, key string) ([]menu.Menu, bool) {
	return c.entries.get(key)
}

// Set caches menus for ttl
func (c *InMemoryMenuCache) Set(_ context.Context, key string, menus []menu.Menu, ttl time.Duration) {
	c.entries.set(key, menus, ttl)
}

// Close stops the cleanup goroutine
func (c *InMemoryMenuCache) Close() error {
	c.entries.close()
	return nil
}

// RedisMenuCache stores normalized menus as JSON in Redis.
// Failures degrade to cache misses.
type RedisMenuCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisMenuCache creates a menu cache on an existing client
func NewRedisMenuCache(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisMenuCache {
	if keyPrefix == "" {
		keyPrefix = "storefront:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMenuCache{client: client, keyPrefix: keyPrefix, logger: logger}
}

// Get returns cached menus for key
func (c *RedisMenuCache) Get(ctx context.Context, key string) ([]menu.Menu, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("menu cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var menus []menu.Menu
	if err := json.Unmarshal(data, &menus); err != nil {
		c.logger.Warn("menu cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return menus, true
}

// Set caches menus for ttl
func (c *RedisMenuCache) Set(ctx context.Context, key string, menus []menu.Menu, ttl time.Duration) {
	data, err := json.Marshal(menus)
	if err != nil {
		c.logger.Warn("menu cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		c.logger.Warn("menu cache write failed", zap.String("key", key), zap.Error(err))
	}
}

var (
	_ appmenu.Cache = (*InMemoryMenuCache)(nil)
	_ appmenu.Cache = (*RedisMenuCache)(nil)
)
