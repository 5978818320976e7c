package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// DefaultTokenTTL is used for tokens that carry no readable expiry
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrEmptyToken is returned when storing a blank token
	ErrEmptyToken = errors.New("auth token is empty")
	// ErrTokenExpired is returned when storing a JWT whose exp is in the past
	ErrTokenExpired = errors.New("auth token is expired")
)

// TokenStore keeps the bearer token of each shopper session.
// Token reads the session id from the request context.
type TokenStore interface {
	Token(ctx context.Context) (string, bool)
	Set(ctx context.Context, sessionID, token string) error
	Clear(ctx context.Context, sessionID string) error
}

// tokenTTL returns how long token should be kept. Tokens that parse as a
// JWT live until their exp claim; signatures are not checked because the
// token is only forwarded to the storefront API.
func tokenTTL(token string, fallback time.Duration, now time.Time) (time.Duration, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, ErrEmptyToken
	}
	if fallback <= 0 {
		fallback = DefaultTokenTTL
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback, nil
	}
	if claims.ExpiresAt == nil {
		return fallback, nil
	}

	ttl := claims.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return 0, ErrTokenExpired
	}
	return ttl, nil
}

// InMemoryTokenStore keeps session tokens in process memory
type InMemoryTokenStore struct {
	entries    *expiringMap[string]
	defaultTTL time.Duration
}

// NewInMemoryTokenStore creates an in-memory token store
func NewInMemoryTokenStore(defaultTTL time.Duration) *InMemoryTokenStore {
	return &InMemoryTokenStore{
		entries:    newExpiringMap[string](5 * time.Minute),
		defaultTTL: defaultTTL,
	}
}

// Token returns the token of the session carried by ctx
func (s *InMemoryTokenStore) Token(ctx context.Context) (string, bool) {
	sessionID, ok := shared.SessionIDFromContext(ctx)
	if !ok {
		return "", false
	}
	return s.entries.get(sessionID)
}

// Set stores token for sessionID
func (s *InMemoryTokenStore) Set(_ context.Context, sessionID, token string) error {
	ttl, err := tokenTTL(token, s.defaultTTL, s.entries.now())
	if err != nil {
		return err
	}
	s.entries.set(sessionID, strings.TrimSpace(token), ttl)
	return nil
}

// Clear removes the token of sessionID
func (s *InMemoryTokenStore) Clear(_ context.Context, sessionID string) error {
	s.entries.delete(sessionID)
	return nil
}

// Close stops the cleanup goroutine
func (s *InMemoryTokenStore) Close() error {
	s.entries.close()
	return nil
}

// RedisTokenStore keeps session tokens in Redis
type RedisTokenStore struct {
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
	now        func() time.Time
}

// NewRedisTokenStore creates a token store on an existing client
func NewRedisTokenStore(client *redis.Client, keyPrefix string, defaultTTL time.Duration) *RedisTokenStore {
	if keyPrefix == "" {
		keyPrefix = "storefront:"
	}
	return &RedisTokenStore{
		client:     client,
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Token returns the token of the session carried by ctx. Redis errors
// are treated as "no token" so requests go out unauthenticated.
func (s *RedisTokenStore) Token(ctx context.Context) (string, bool) {
	sessionID, ok := shared.SessionIDFromContext(ctx)
	if !ok {
		return "", false
	}
	token, err := s.client.Get(ctx, s.redisKey(sessionID)).Result()
	if err != nil {
		return "", false
	}
	return token, token != ""
}

// Set stores token for sessionID
func (s *RedisTokenStore) Set(ctx context.Context, sessionID, token string) error {
	ttl, err := tokenTTL(token, s.defaultTTL, s.now())
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.redisKey(sessionID), strings.TrimSpace(token), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store auth token: %w", err)
	}
	return nil
}

// Clear removes the token of sessionID
func (s *RedisTokenStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear auth token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) redisKey(sessionID string) string {
	return s.keyPrefix + "token:" + sessionID
}

var (
	_ TokenStore = (*InMemoryTokenStore)(nil)
	_ TokenStore = (*RedisTokenStore)(nil)
)
