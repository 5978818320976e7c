package menu

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/craveup/leclerc-storefront/internal/domain/menu"
	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSource is a mock implementation of Source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) ListMenus(ctx context.Context, locationID string) ([]menu.RawMenu, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.RawMenu), args.Error(1)
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]menu.Menu
	ttls    map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]menu.Menu{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]menu.Menu, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[key]
	return m, ok
}

func (c *mapCache) Set(_ context.Context, key string, menus []menu.Menu, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = menus
	c.ttls[key] = ttl
}

func rawBundle() []menu.RawMenu {
	return []menu.RawMenu{{
		ID:   "m1",
		Name: "Daily",
		Categories: []menu.RawCategory{
			{ID: "c1", Name: "Viennoiserie Pastries", Products: []menu.RawProduct{
				{ID: "p1", Name: "Butter Croissant", Price: menu.PriceFromString("4.50")},
			}},
			{ID: "c2", Name: "Breads", Products: []menu.RawProduct{
				{ID: "p2", Name: "Sourdough Loaf", Price: menu.PriceFromNumber(8)},
			}},
		},
	}}
}

func TestService_GetMenus(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes with the view policy", func(t *testing.T) {
		source := new(MockSource)
		source.On("ListMenus", ctx, "loc1").Return(rawBundle(), nil).Once()
		svc := NewService(source)

		menus, err := svc.GetMenus(ctx, "loc1", "full")
		require.NoError(t, err)
		require.Len(t, menus, 1)

		croissant := menus[0].Sections[0].Items[0]
		assert.Equal(t, menu.CategoryPastries, croissant.Category)
		assert.True(t, croissant.IsPopular, "full view applies name hints")
		assert.NotNil(t, croissant.Image)
		source.AssertExpectations(t)
	})

	t.Run("home view uses tags only", func(t *testing.T) {
		source := new(MockSource)
		source.On("ListMenus", ctx, "loc1").Return(rawBundle(), nil).Once()
		svc := NewService(source)

		menus, err := svc.GetMenus(ctx, "loc1", "")
		require.NoError(t, err)
		croissant := menus[0].Sections[0].Items[0]
		assert.False(t, croissant.IsPopular)
		assert.Nil(t, croissant.Image)
	})

	t.Run("cached per location and view", func(t *testing.T) {
		source := new(MockSource)
		source.On("ListMenus", ctx, "loc1").Return(rawBundle(), nil).Twice()
		cache := newMapCache()
		svc := NewService(source, WithCache(cache, 5*time.Minute))

		for i := 0; i < 3; i++ {
			_, err := svc.GetMenus(ctx, "loc1", "home")
			require.NoError(t, err)
		}
		_, err := svc.GetMenus(ctx, "loc1", "full")
		require.NoError(t, err)

		source.AssertNumberOfCalls(t, "ListMenus", 2)
		assert.Equal(t, 5*time.Minute, cache.ttls["menu:loc1:home"])
		assert.Contains(t, cache.entries, "menu:loc1:full")
	})

	t.Run("default location", func(t *testing.T) {
		source := new(MockSource)
		source.On("ListMenus", ctx, "fallback-loc").Return([]menu.RawMenu{}, nil).Once()
		svc := NewService(source, WithDefaultLocation("fallback-loc"))

		menus, err := svc.GetMenus(ctx, " ", "home")
		require.NoError(t, err)
		assert.Empty(t, menus)

		assert.Equal(t, "fallback-loc", svc.ResolveLocation(" "))
		assert.Equal(t, "loc1", svc.ResolveLocation(" loc1 "))
	})

	t.Run("missing location", func(t *testing.T) {
		svc := NewService(new(MockSource))
		_, err := svc.GetMenus(ctx, "", "home")
		assert.ErrorIs(t, err, ErrLocationRequired)
	})

	t.Run("unknown view", func(t *testing.T) {
		svc := NewService(new(MockSource))
		_, err := svc.GetMenus(ctx, "loc1", "sideways")
		assert.ErrorIs(t, err, ErrUnknownView)
	})

	t.Run("source error is not cached", func(t *testing.T) {
		source := new(MockSource)
		source.On("ListMenus", ctx, "loc1").Return(nil, errors.New("boom")).Once()
		cache := newMapCache()
		svc := NewService(source, WithCache(cache, time.Minute))

		_, err := svc.GetMenus(ctx, "loc1", "home")
		assert.Error(t, err)
		assert.Empty(t, cache.entries)
	})
}

func TestService_FindItem(t *testing.T) {
	ctx := context.Background()
	source := new(MockSource)
	source.On("ListMenus", ctx, "loc1").Return(rawBundle(), nil)
	svc := NewService(source)

	item, err := svc.FindItem(ctx, "loc1", "p2")
	require.NoError(t, err)
	assert.Equal(t, "Sourdough Loaf", item.Name)
	assert.Equal(t, "8", item.Price.String())

	_, err = svc.FindItem(ctx, "loc1", "nope")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
