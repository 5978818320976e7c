package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	appcart "github.com/craveup/leclerc-storefront/internal/application/cart"
	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/craveup/leclerc-storefront/internal/domain/menu"
	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/cache"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/event"
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	api      *fakeCartAPI
	finder   *MockItemFinder
	inbox    *event.ToastInbox
	registry *appcart.Registry
	router   *gin.Engine
}

func newCartFixture(t *testing.T, locationID string) *cartFixture {
	t.Helper()

	api := newFakeCartAPI()
	identities := cache.NewInMemoryIdentityStore(0)
	t.Cleanup(func() { _ = identities.Close() })

	bus := event.NewInMemoryEventBus(nil)
	inbox := event.NewToastInbox(0)
	bus.Subscribe(inbox)

	registry := appcart.NewRegistry(
		appcart.RegistryConfig{LocationID: locationID},
		appcart.Dependencies{
			API:        api,
			Identities: identities,
			Notifier:   event.NewBusNotifier(bus, nil),
		},
	)
	t.Cleanup(func() { _ = registry.Close() })

	finder := new(MockItemFinder)
	h := NewCartHandler(registry, finder, inbox)

	r := gin.New()
	r.Use(withTestSession())
	g := r.Group("/api/v1/cart")
	g.GET("", h.Get)
	g.DELETE("", h.Clear)
	g.POST("/items", h.AddItem)
	g.PATCH("/items/:lineId", h.UpdateQuantity)
	g.DELETE("/items/:lineId", h.RemoveItem)
	g.POST("/discounts", h.ApplyDiscount)
	g.POST("/open", h.Open)
	g.POST("/close", h.Close)
	g.DELETE("/error", h.ClearError)
	g.GET("/notifications", h.Notifications)

	return &cartFixture{
		api:      api,
		finder:   finder,
		inbox:    inbox,
		registry: registry,
		router:   r,
	}
}

func (f *cartFixture) croissant() {
	f.finder.On("FindItem", mock.Anything, "loc-1", "croissant").
		Return(&menu.MenuItem{ID: "croissant", Name: "Butter Croissant", Price: decimal.RequireFromString("4.50")}, nil)
}

func TestCartHandler_GetCreatesCart(t *testing.T) {
	f := newCartFixture(t, "loc-1")

	w := doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var state appcart.State
	decodeData(t, w, &state)
	require.NotNil(t, state.CartID)
	assert.Equal(t, "cart-1", *state.CartID)
	assert.Equal(t, "loc-1", state.LocationID)
	assert.Empty(t, state.Items)
	assert.Nil(t, state.Error)

	// the stored identity is reused
	w = doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.api.created)

	// another session gets its own cart
	w = doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-b", "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &state)
	assert.Equal(t, "cart-2", *state.CartID)
}

func TestCartHandler_GetWithoutLocation(t *testing.T) {
	f := newCartFixture(t, "")

	w := doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeCartNotReady, resp.Error.Code)
	assert.Equal(t, 0, f.api.created)
}

func TestCartHandler_AddItem(t *testing.T) {
	f := newCartFixture(t, "loc-1")
	f.croissant()

	doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
	w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-a",
		`{"productId":"croissant","options":{"warming":"warm","packaging":"paper","giftBox":true}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var state appcart.State
	decodeData(t, w, &state)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "croissant", state.Items[0].ID)
	assert.Equal(t, "line-croissant", state.Items[0].CartID)
	assert.Equal(t, 1, state.ItemCount)
	assert.True(t, decimal.RequireFromString("4.50").Equal(state.Subtotal))

	w = doRequest(t, f.router, http.MethodGet, "/api/v1/cart/notifications", "session-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	var notes NotificationsResponse
	decodeData(t, w, &notes)
	require.Len(t, notes.Notifications, 1)
	assert.Equal(t, cart.NotificationSuccess, notes.Notifications[0].Level)
	assert.Equal(t, "Butter Croissant added to cart", notes.Notifications[0].Title)

	// draining empties the inbox
	w = doRequest(t, f.router, http.MethodGet, "/api/v1/cart/notifications", "session-a", "")
	decodeData(t, w, &notes)
	assert.Empty(t, notes.Notifications)
}

func TestCartHandler_AddItemBeforeCartExists(t *testing.T) {
	f := newCartFixture(t, "loc-1")
	f.croissant()

	w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-a", `{"productId":"croissant"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeCartNotReady, resp.Error.Code)
	assert.Equal(t, 0, f.api.created)
	assert.Empty(t, f.api.carts)
	f.finder.AssertNotCalled(t, "FindItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartHandler_AddItemBeforeCartExistsIgnoresMenuOutage(t *testing.T) {
	f := newCartFixture(t, "loc-1")
	f.finder.On("FindItem", mock.Anything, "loc-1", "croissant").Return(nil, errors.New("menu unavailable"))

	w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-a", `{"productId":"croissant"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeCartNotReady, resp.Error.Code)
	f.finder.AssertNotCalled(t, "FindItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartHandler_AddItemMenuLookupFailure(t *testing.T) {
	f := newCartFixture(t, "loc-1")
	f.finder.On("FindItem", mock.Anything, "loc-1", "croissant").Return(nil, errors.New("menu unavailable"))

	doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
	w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-a", `{"productId":"croissant"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var state appcart.State
	decodeData(t, w, &state)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "croissant", state.Items[0].ID)

	toasts := f.inbox.Drain("session-a")
	require.Len(t, toasts, 1)
	assert.Equal(t, cart.NotificationSuccess, toasts[0].Level)
	assert.Equal(t, "croissant added to cart", toasts[0].Title)
	f.finder.AssertExpectations(t)
}

func TestCartHandler_AddItemValidation(t *testing.T) {
	f := newCartFixture(t, "loc-1")

	w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-a", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	f.finder.AssertNotCalled(t, "FindItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartHandler_AddUnknownProduct(t *testing.T) {
	f := newCartFixture(t, "loc-1")
	f.finder.On("FindItem", mock.Anything, "loc-1", "ghost").Return(nil, shared.ErrNotFound)

	f.api.catalog = map[string]bool{"croissant": true}

	doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
	w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-a", `{"productId":"ghost"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRemote, resp.Error.Code)
	assert.Equal(t, "Product not found", resp.Error.Message)

	s, ok := f.registry.Lookup("session-a")
	require.True(t, ok)
	state := s.State()
	require.NotNil(t, state.Error)
	assert.Equal(t, "Product not found", *state.Error)
	assert.Empty(t, state.Items)

	toasts := f.inbox.Drain("session-a")
	require.Len(t, toasts, 1)
	assert.Equal(t, cart.NotificationError, toasts[0].Level)
	f.finder.AssertExpectations(t)
}

func TestCartHandler_AddItemRemoteFailure(t *testing.T) {
	f := newCartFixture(t, "loc-1")
	f.croissant()
	f.api.addErr = &shared.RemoteError{StatusCode: http.StatusConflict, Message: "Item is sold out"}

	doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
	w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-a", `{"productId":"croissant"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRemote, resp.Error.Code)
	assert.Equal(t, "Item is sold out", resp.Error.Message)

	s, ok := f.registry.Lookup("session-a")
	require.True(t, ok)
	state := s.State()
	require.NotNil(t, state.Error)
	assert.Equal(t, "Item is sold out", *state.Error)

	toasts := f.inbox.Drain("session-a")
	require.Len(t, toasts, 1)
	assert.Equal(t, cart.NotificationError, toasts[0].Level)

	w = doRequest(t, f.router, http.MethodDelete, "/api/v1/cart/error", "session-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &state)
	assert.Nil(t, state.Error)
}

func TestCartHandler_UpdateAndRemove(t *testing.T) {
	f := newCartFixture(t, "loc-1")
	f.croissant()

	doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
	doRequest(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-a", `{"productId":"croissant"}`)

	w := doRequest(t, f.router, http.MethodPatch, "/api/v1/cart/items/line-croissant", "session-a", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state appcart.State
	decodeData(t, w, &state)
	assert.Equal(t, 3, state.ItemCount)
	assert.True(t, decimal.RequireFromString("13.50").Equal(state.Subtotal))

	w = doRequest(t, f.router, http.MethodPatch, "/api/v1/cart/items/line-croissant", "session-a", `{"quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidQuantity, resp.Error.Code)

	w = doRequest(t, f.router, http.MethodPatch, "/api/v1/cart/items/line-croissant", "session-a", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, f.router, http.MethodDelete, "/api/v1/cart/items/line-croissant", "session-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &state)
	assert.Empty(t, state.Items)
	assert.Equal(t, 0, state.ItemCount)

	w = doRequest(t, f.router, http.MethodDelete, "/api/v1/cart/items/line-croissant", "session-a", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartHandler_ApplyDiscount(t *testing.T) {
	t.Run("applied", func(t *testing.T) {
		f := newCartFixture(t, "loc-1")
		f.api.discount = &cart.DiscountResult{
			DiscountApplied: true,
			DiscountAmount:  decimal.RequireFromString("1.00"),
			DiscountCode:    "BREAD10",
		}

		doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
		w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/discounts", "session-a", `{"code":"BREAD10"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp DiscountResponse
		decodeData(t, w, &resp)
		require.NotNil(t, resp.Discount)
		assert.True(t, resp.Discount.DiscountApplied)
		assert.Nil(t, resp.Cart.Error)
	})

	t.Run("rejected", func(t *testing.T) {
		f := newCartFixture(t, "loc-1")
		f.api.discount = &cart.DiscountResult{DiscountApplied: false}

		doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
		w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/discounts", "session-a", `{"code":"NOPE"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp DiscountResponse
		decodeData(t, w, &resp)
		assert.False(t, resp.Discount.DiscountApplied)
		require.NotNil(t, resp.Cart.Error)
		assert.Equal(t, appcart.DiscountRejectedError, *resp.Cart.Error)
	})

	t.Run("blank code", func(t *testing.T) {
		f := newCartFixture(t, "loc-1")

		doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
		w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/discounts", "session-a", `{"code":"   "}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidDiscount, resp.Error.Code)
	})
}

func TestCartHandler_ClearStartsFreshCart(t *testing.T) {
	f := newCartFixture(t, "loc-1")
	f.croissant()

	doRequest(t, f.router, http.MethodGet, "/api/v1/cart", "session-a", "")
	doRequest(t, f.router, http.MethodPost, "/api/v1/cart/items", "session-a", `{"productId":"croissant"}`)
	doRequest(t, f.router, http.MethodPost, "/api/v1/cart/open", "session-a", "")

	w := doRequest(t, f.router, http.MethodDelete, "/api/v1/cart", "session-a", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var state appcart.State
	decodeData(t, w, &state)
	require.NotNil(t, state.CartID)
	assert.Equal(t, "cart-2", *state.CartID)
	assert.Empty(t, state.Items)
	assert.False(t, state.IsCartOpen)
}

func TestCartHandler_OpenClose(t *testing.T) {
	f := newCartFixture(t, "loc-1")

	w := doRequest(t, f.router, http.MethodPost, "/api/v1/cart/open", "session-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	var state appcart.State
	decodeData(t, w, &state)
	assert.True(t, state.IsCartOpen)

	w = doRequest(t, f.router, http.MethodPost, "/api/v1/cart/close", "session-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &state)
	assert.False(t, state.IsCartOpen)
}

func TestCartHandler_NotificationsAreScopedToSession(t *testing.T) {
	f := newCartFixture(t, "loc-1")
	require.NoError(t, f.inbox.Handle(context.Background(),
		cart.NewNotificationEvent("session-b", cart.NotificationSuccess, "Hello", "")))

	w := doRequest(t, f.router, http.MethodGet, "/api/v1/cart/notifications", "session-a", "")
	var notes NotificationsResponse
	decodeData(t, w, &notes)
	assert.Empty(t, notes.Notifications)

	w = doRequest(t, f.router, http.MethodGet, "/api/v1/cart/notifications", "session-b", "")
	decodeData(t, w, &notes)
	assert.Len(t, notes.Notifications, 1)
}
