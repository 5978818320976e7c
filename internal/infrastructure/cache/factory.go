package cache

import (
	"errors"
	"fmt"
	"time"

	appmenu "github.com/craveup/leclerc-storefront/internal/application/menu"
	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the session-scoped stores used by the server
type Stores struct {
	Identities cart.IdentityStore
	Tokens     TokenStore
	Menus      appmenu.Cache
	Backend string

	closers []func() error
}

// Close releases every store and the Redis client when one is used
func (s *Stores) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StoreOptions tunes store lifetimes
type StoreOptions struct {
	KeyPrefix   string
	IdentityTTL time.Duration
	TokenTTL    time.Duration
}

// StoreFactory creates stores based on configuration
type StoreFactory struct {
	redisConfig           RedisConfig
	redisEnabled          bool
	options               StoreOptions
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithRedis enables Redis-backed stores
func WithRedis(cfg RedisConfig) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.redisConfig = cfg
		f.redisEnabled = true
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(options StoreOptions, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		options:               options,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemoryStores creates process-local stores. Carts and tokens are
// not shared across instances.
func (f *StoreFactory) CreateInMemoryStores() *Stores {
	identities := NewInMemoryIdentityStore(f.options.IdentityTTL)
	tokens := NewInMemoryTokenStore(f.options.TokenTTL)
	menus := NewInMemoryMenuCache()
	return &Stores{
		Identities: identities,
		Tokens:     tokens,
		Menus:      menus,
		Backend:    "memory",
		closers:    []func() error{identities.Close, tokens.Close, menus.Close},
	}
}

// CreateRedisStores creates stores sharing one Redis client
func (f *StoreFactory) CreateRedisStores() (*Stores, error) {
	client, err := NewRedisClient(f.redisConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis stores: %w", err)
	}
	return f.redisStores(client), nil
}

func (f *StoreFactory) redisStores(client *redis.Client) *Stores {
	return &Stores{
		Identities: NewRedisIdentityStore(client, f.options.KeyPrefix, f.options.IdentityTTL),
		Tokens:     NewRedisTokenStore(client, f.options.KeyPrefix, f.options.TokenTTL),
		Menus:      NewRedisMenuCache(client, f.options.KeyPrefix, f.logger),
		Backend:    "redis",
		closers:    []func() error{client.Close},
	}
}

// CreateStores creates Redis stores when Redis is enabled and reachable,
// and in-memory stores otherwise (if fallback is allowed)
func (f *StoreFactory) CreateStores() (*Stores, error) {
	if !f.redisEnabled {
		f.logger.Info("using in-memory session stores")
		return f.CreateInMemoryStores(), nil
	}

	stores, err := f.CreateRedisStores()
	if err == nil {
		f.logger.Info("using Redis session stores", zap.String("addr", f.redisConfig.Addr()))
		return stores, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for session stores but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory session stores. "+
		"Carts will not be shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStores(), nil
}
