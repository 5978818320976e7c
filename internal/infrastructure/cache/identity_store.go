package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

// DefaultIdentityTTL is how long an unused cart id is remembered
const DefaultIdentityTTL = 7 * 24 * time.Hour

// InMemoryIdentityStore keeps cart ids in process memory.
// State is lost on restart and not shared between instances.
type InMemoryIdentityStore struct {
	entries *expiringMap[string]
	ttl     time.Duration
}

// NewInMemoryIdentityStore creates an in-memory identity store; ttl <= 0 uses DefaultIdentityTTL
func NewInMemoryIdentityStore(ttl time.Duration) *InMemoryIdentityStore {
	if ttl <= 0 {
		ttl = DefaultIdentityTTL
	}
	return &InMemoryIdentityStore{
		entries: newExpiringMap[string](5 * time.Minute),
		ttl:     ttl,
	}
}

// Get returns the cart id for key and refreshes its TTL
func (s *InMemoryIdentityStore) Get(_ context.Context, key cart.IdentityKey) (string, bool, error) {
	id, ok := s.entries.touch(key.String(), s.ttl)
	return id, ok, nil
}

// Set stores the cart id for key
func (s *InMemoryIdentityStore) Set(_ context.Context, key cart.IdentityKey, cartID string) error {
	s.entries.set(key.String(), cartID, s.ttl)
	return nil
}

// Clear forgets the cart id for key
func (s *InMemoryIdentityStore) Clear(_ context.Context, key cart.IdentityKey) error {
	s.entries.delete(key.String())
	return nil
}

// Size returns the number of stored ids
func (s *InMemoryIdentityStore) Size() int {
	return s.entries.size()
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdentityStore) Close() error {
	s.entries.close()
	return nil
}

// RedisIdentityStore keeps cart ids in Redis so every instance sees them
type RedisIdentityStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisIdentityStore creates a store on an existing client
func NewRedisIdentityStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisIdentityStore {
	if keyPrefix == "" {
		keyPrefix = "storefront:"
	}
	if ttl <= 0 {
		ttl = DefaultIdentityTTL
	}
	return &RedisIdentityStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Get returns the cart id for key and refreshes its TTL
func (s *RedisIdentityStore) Get(ctx context.Context, key cart.IdentityKey) (string, bool, error) {
	id, err := s.client.GetEx(ctx, s.redisKey(key), s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cart identity: %w", err)
	}
	return id, true, nil
}

// Set stores the cart id for key
func (s *RedisIdentityStore) Set(ctx context.Context, key cart.IdentityKey, cartID string) error {
	if err := s.client.Set(ctx, s.redisKey(key), cartID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cart identity: %w", err)
	}
	return nil
}

// Clear forgets the cart id for key
func (s *RedisIdentityStore) Clear(ctx context.Context, key cart.IdentityKey) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart identity: %w", err)
	}
	return nil
}

func (s *RedisIdentityStore) redisKey(key cart.IdentityKey) string {
	return s.keyPrefix + key.String()
}

var (
	_ cart.IdentityStore = (*InMemoryIdentityStore)(nil)
	_ cart.IdentityStore = (*RedisIdentityStore)(nil)
)
