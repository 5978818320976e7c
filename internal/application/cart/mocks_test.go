package cart

import (
	"context"
	"sync"

	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/stretchr/testify/mock"
)

// MockAPI is a mock implementation of cart.API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) CreateCart(ctx context.Context, locationID, fulfillmentMethod string) (*cart.CreatedCart, error) {
	args := m.Called(ctx, locationID, fulfillmentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.CreatedCart), args.Error(1)
}

func (m *MockAPI) GetCart(ctx context.Context, locationID, cartID string) (*cart.RemoteCart, error) {
	args := m.Called(ctx, locationID, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.RemoteCart), args.Error(1)
}

func (m *MockAPI) AddCartItem(ctx context.Context, locationID, cartID string, req cart.AddItemRequest) error {
	args := m.Called(ctx, locationID, cartID, req)
	return args.Error(0)
}

func (m *MockAPI) UpdateCartItemQuantity(ctx context.Context, locationID, cartID, lineID string, quantity int) error {
	args := m.Called(ctx, locationID, cartID, lineID, quantity)
	return args.Error(0)
}

func (m *MockAPI) ApplyDiscount(ctx context.Context, locationID, cartID, code string) (*cart.DiscountResult, error) {
	args := m.Called(ctx, locationID, cartID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.DiscountResult), args.Error(1)
}

// MockNotifier is a mock implementation of cart.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Success(ctx context.Context, sessionID, title, description string) {
	m.Called(ctx, sessionID, title, description)
}

func (m *MockNotifier) Error(ctx context.Context, sessionID, message string) {
	m.Called(ctx, sessionID, message)
}

// memoryIdentities is a map-backed cart.IdentityStore
type memoryIdentities struct {
	mu     sync.Mutex
	ids    map[string]string
	getErr error
}

func newMemoryIdentities() *memoryIdentities {
	return &memoryIdentities{ids: make(map[string]string)}
}

func (m *memoryIdentities) Get(_ context.Context, key cart.IdentityKey) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	id, ok := m.ids[key.String()]
	return id, ok, nil
}

func (m *memoryIdentities) Set(_ context.Context, key cart.IdentityKey, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[key.String()] = cartID
	return nil
}

func (m *memoryIdentities) Clear(_ context.Context, key cart.IdentityKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ids, key.String())
	return nil
}
