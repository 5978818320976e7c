package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/craveup/leclerc-storefront/internal/domain/menu"
	"github.com/craveup/leclerc-storefront/internal/domain/shared"
)

// ErrNotConfigured is returned by every API call when no client is set,
// i.e. the API key or base URL is missing
var ErrNotConfigured = shared.NewDomainError("NOT_CONFIGURED", "Storefront API is not configured")

// API exposes the typed storefront endpoints on top of Client
type API struct {
	client *Client
}

// NewAPI wraps a client. A nil client gives an API whose calls all fail
// with ErrNotConfigured.
func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) configured() error {
	if a == nil || a.client == nil {
		return ErrNotConfigured
	}
	return nil
}

// Client returns the underlying client
func (a *API) Client() *Client {
	return a.client
}

func locationPath(locationID string) string {
	return "/api/v1/locations/" + url.PathEscape(locationID)
}

func cartPath(locationID, cartID string) string {
	return locationPath(locationID) + "/carts/" + url.PathEscape(cartID)
}

// ListProducts returns the raw product listing of a location
func (a *API) ListProducts(ctx context.Context, locationID string) (json.RawMessage, error) {
	if err := a.configured(); err != nil {
		return nil, err
	}
	return a.client.GetRaw(ctx, locationPath(locationID)+"/products")
}

type menusResponse struct {
	Menus []menu.RawMenu `json:"menus"`
}

// ListMenus returns the raw menu bundle of a location
func (a *API) ListMenus(ctx context.Context, locationID string) ([]menu.RawMenu, error) {
	if err := a.configured(); err != nil {
		return nil, err
	}
	var resp menusResponse
	if err := a.client.Get(ctx, locationPath(locationID)+"/menus", &resp); err != nil {
		return nil, err
	}
	return resp.Menus, nil
}

type createCartRequest struct {
	FulfillmentMethod string `json:"fulfillmentMethod"`
}

// CreateCart opens a new cart at a location
func (a *API) CreateCart(ctx context.Context, locationID, fulfillmentMethod string) (*cart.CreatedCart, error) {
	if err := a.configured(); err != nil {
		return nil, err
	}
	var created cart.CreatedCart
	err := a.client.Post(ctx, locationPath(locationID)+"/carts", createCartRequest{FulfillmentMethod: fulfillmentMethod}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetCart fetches a cart
func (a *API) GetCart(ctx context.Context, locationID, cartID string) (*cart.RemoteCart, error) {
	if err := a.configured(); err != nil {
		return nil, err
	}
	var remote cart.RemoteCart
	if err := a.client.Get(ctx, cartPath(locationID, cartID), &remote); err != nil {
		return nil, err
	}
	return &remote, nil
}

// AddCartItem creates a cart line
func (a *API) AddCartItem(ctx context.Context, locationID, cartID string, req cart.AddItemRequest) error {
	if err := a.configured(); err != nil {
		return err
	}
	return a.client.Post(ctx, cartPath(locationID, cartID)+"/cart-item", req, nil)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItemQuantity sets the quantity of a cart line; zero removes it
func (a *API) UpdateCartItemQuantity(ctx context.Context, locationID, cartID, lineID string, quantity int) error {
	if err := a.configured(); err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/cart-item/%s/quantity", cartPath(locationID, cartID), url.PathEscape(lineID))
	return a.client.Patch(ctx, endpoint, quantityRequest{Quantity: quantity}, nil)
}

type discountRequest struct {
	DiscountCode string `json:"discountCode"`
}

// ApplyDiscount applies a discount code to a cart
func (a *API) ApplyDiscount(ctx context.Context, locationID, cartID, code string) (*cart.DiscountResult, error) {
	if err := a.configured(); err != nil {
		return nil, err
	}
	var result cart.DiscountResult
	err := a.client.Post(ctx, cartPath(locationID, cartID)+"/discounts/apply-discount", discountRequest{DiscountCode: code}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Ensure API implements cart.API
var _ cart.API = (*API)(nil)
