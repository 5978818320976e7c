package menu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/craveup/leclerc-storefront/internal/domain/menu"
	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrUnknownView is returned for a view name with no flag policy
var ErrUnknownView = shared.NewDomainError("INVALID_VIEW", "Unknown menu view")

// ErrLocationRequired is returned when no location id is given or configured
var ErrLocationRequired = shared.NewDomainError("LOCATION_REQUIRED", "Location ID is required")

// Source fetches raw menus from the storefront API
type Source interface {
	ListMenus(ctx context.Context, locationID string) ([]menu.RawMenu, error)
}

// Cache keeps normalized menus for a while
type Cache interface {
	Get(ctx context.Context, key string) ([]menu.Menu, bool)
	Set(ctx context.Context, key string, menus []menu.Menu, ttl time.Duration)
}

// Service serves normalized menus for a location
type Service struct {
	source          Source
	cache           Cache
	ttl             time.Duration
	defaultLocation string
	logger          *zap.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithCache caches normalized menus for ttl
func WithCache(cache Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = cache
		s.ttl = ttl
	}
}

// WithDefaultLocation sets the location used when a request names none
func WithDefaultLocation(locationID string) ServiceOption {
	return func(s *Service) {
		s.defaultLocation = locationID
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a menu service
func NewService(source Source, opts ...ServiceOption) *Service {
	s := &Service{
		source: source,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetMenus returns the menus of a location normalized for a view ("home" or "full")
func (s *Service) GetMenus(ctx context.Context, locationID, view string) ([]menu.Menu, error) {
	policy, ok := menu.PolicyForView(view)
	if !ok {
		return nil, ErrUnknownView
	}

	locationID = s.ResolveLocation(locationID)
	if locationID == "" {
		return nil, ErrLocationRequired
	}

	key := cacheKey(locationID, view)
	if s.cache != nil {
		if menus, hit := s.cache.Get(ctx, key); hit {
			return menus, nil
		}
	}

	raw, err := s.source.ListMenus(ctx, locationID)
	if err != nil {
		s.logger.Warn("failed to fetch menus", zap.String("location_id", locationID), zap.Error(err))
		return nil, err
	}

	menus := menu.NormalizeMenus(raw, policy)
	if s.cache != nil {
		s.cache.Set(ctx, key, menus, s.ttl)
	}
	return menus, nil
}

// GetItems returns every item of a location's menus in menu order
func (s *Service) GetItems(ctx context.Context, locationID, view string) ([]menu.MenuItem, error) {
	menus, err := s.GetMenus(ctx, locationID, view)
	if err != nil {
		return nil, err
	}

	items := make([]menu.MenuItem, 0)
	for _, m := range menus {
		for _, section := range m.Sections {
			items = append(items, section.Items...)
		}
	}
	return items, nil
}

// ResolveLocation returns the location a request for locationID is served
// from: the trimmed id, or the default location when it is blank
func (s *Service) ResolveLocation(locationID string) string {
	if locationID = strings.TrimSpace(locationID); locationID != "" {
		return locationID
	}
	return s.defaultLocation
}

// FindItem looks a product up by id across a location's full menus
func (s *Service) FindItem(ctx context.Context, locationID, productID string) (*menu.MenuItem, error) {
	items, err := s.GetItems(ctx, locationID, "full")
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == productID {
			return &items[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func cacheKey(locationID, view string) string {
	if view == "" {
		view = "home"
	}
	return fmt.Sprintf("menu:%s:%s", locationID, strings.ToLower(view))
}
