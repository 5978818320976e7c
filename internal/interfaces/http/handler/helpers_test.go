package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/craveup/leclerc-storefront/internal/domain/menu"
	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const headerTestSession = "X-Test-Session"

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

// withTestSession stands in for the session middleware
func withTestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(logger.GinSessionIDKey, c.GetHeader(headerTestSession))
		c.Next()
	}
}

func doRequest(t *testing.T, r http.Handler, method, path, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = jsonBody(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(headerTestSession, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeData decodes the data member of a success envelope
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// fakeCartAPI is an in-memory storefront cart backend. Every line costs 4.50.
type fakeCartAPI struct {
	mu       sync.Mutex
	carts    map[string][]cart.RemoteCartItem
	created  int
	addErr   error
	discount *cart.DiscountResult
	// catalog, when set, is the set of product ids the storefront accepts
	catalog map[string]bool
}

func newFakeCartAPI() *fakeCartAPI {
	return &fakeCartAPI{carts: make(map[string][]cart.RemoteCartItem)}
}

func (f *fakeCartAPI) CreateCart(_ context.Context, _, _ string) (*cart.CreatedCart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	id := fmt.Sprintf("cart-%d", f.created)
	f.carts[id] = nil
	return &cart.CreatedCart{CartID: id}, nil
}

func (f *fakeCartAPI) GetCart(_ context.Context, locationID, cartID string) (*cart.RemoteCart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines, ok := f.carts[cartID]
	if !ok {
		return nil, &shared.RemoteError{StatusCode: http.StatusNotFound, Message: "Cart not found"}
	}

	unit := decimal.RequireFromString("4.50")
	subtotal := decimal.Zero
	items := make([]cart.RemoteCartItem, len(lines))
	copy(items, lines)
	for _, line := range lines {
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return &cart.RemoteCart{
		ID:         cartID,
		LocationID: locationID,
		Items:      items,
		SubTotal:   subtotal.StringFixed(2),
		TaxTotal:   "0.00",
	}, nil
}

func (f *fakeCartAPI) AddCartItem(_ context.Context, _, cartID string, req cart.AddItemRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	if f.catalog != nil && !f.catalog[req.ProductID] {
		return &shared.RemoteError{StatusCode: http.StatusNotFound, Message: "Product not found"}
	}
	lines := f.carts[cartID]
	for i := range lines {
		if lines[i].ProductID == req.ProductID {
			lines[i].Quantity += req.Quantity
			return nil
		}
	}
	price := "4.50"
	f.carts[cartID] = append(lines, cart.RemoteCartItem{
		ID:        "line-" + req.ProductID,
		ProductID: req.ProductID,
		Name:      req.ProductID,
		Price:     &price,
		Quantity:  req.Quantity,
	})
	return nil
}

func (f *fakeCartAPI) UpdateCartItemQuantity(_ context.Context, _, cartID, lineID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := f.carts[cartID]
	for i := range lines {
		if lines[i].ID != lineID {
			continue
		}
		if quantity == 0 {
			f.carts[cartID] = append(lines[:i], lines[i+1:]...)
		} else {
			lines[i].Quantity = quantity
		}
		return nil
	}
	return &shared.RemoteError{StatusCode: http.StatusNotFound, Message: "Item not found"}
}

func (f *fakeCartAPI) ApplyDiscount(_ context.Context, _, _, code string) (*cart.DiscountResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.discount == nil {
		return nil, &shared.RemoteError{StatusCode: http.StatusBadRequest, Message: "Unknown code " + code}
	}
	result := *f.discount
	return &result, nil
}

// MockItemFinder is a mock implementation of ItemFinder
type MockItemFinder struct {
	mock.Mock
}

func (m *MockItemFinder) FindItem(ctx context.Context, locationID, productID string) (*menu.MenuItem, error) {
	args := m.Called(ctx, locationID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*menu.MenuItem), args.Error(1)
}

// MockMenuReader is a mock implementation of MenuReader
type MockMenuReader struct {
	mock.Mock
	defaultLocation string
}

func (m *MockMenuReader) ResolveLocation(locationID string) string {
	if locationID = strings.TrimSpace(locationID); locationID != "" {
		return locationID
	}
	return m.defaultLocation
}

func (m *MockMenuReader) GetMenus(ctx context.Context, locationID, view string) ([]menu.Menu, error) {
	args := m.Called(ctx, locationID, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.Menu), args.Error(1)
}

func (m *MockMenuReader) GetItems(ctx context.Context, locationID, view string) ([]menu.MenuItem, error) {
	args := m.Called(ctx, locationID, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.MenuItem), args.Error(1)
}

// MockProductLister is a mock implementation of ProductLister
type MockProductLister struct {
	mock.Mock
}

func (m *MockProductLister) ListProducts(ctx context.Context, locationID string) (json.RawMessage, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
