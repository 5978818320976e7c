package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCategory is the category every cart line carries.
// Cart lines are not classified the way menu items are.
const DefaultCategory = "signature"

// DefaultFulfillmentMethod is used when a session does not choose one
const DefaultFulfillmentMethod = "takeout"

// ItemOptions are the per-line presentation options shown in the cart drawer
type ItemOptions struct {
	Warming   string `json:"warming"`
	Packaging string `json:"packaging"`
	GiftBox   bool   `json:"giftBox"`
}

// DefaultItemOptions returns the options every projected line is given
func DefaultItemOptions() ItemOptions {
	return ItemOptions{
		Warming:   "room-temp",
		Packaging: "standard",
		GiftBox:   false,
	}
}

// CartItem is one line of the cart as the storefront renders it
type CartItem struct {
	CartID      string          `json:"cartId"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       *string         `json:"image"`
	Category    string          `json:"category"`
	Calories    int             `json:"calories"`
	Options     ItemOptions     `json:"options"`
}

// Cart is the client-visible projection of a remote cart
type Cart struct {
	CartID      string          `json:"cartId"`
	LocationID  string          `json:"locationId"`
	Items       []CartItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"itemCount"`
	CheckoutURL string          `json:"checkoutUrl,omitempty"`
}

// EmptyCart returns a zero-value cart with a non-nil item list
func EmptyCart() Cart {
	return Cart{
		Items:    []CartItem{},
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
}

// IdentityKey is the key a persisted remote cart identifier lives under
type IdentityKey struct {
	SessionID         string
	LocationID        string
	FulfillmentMethod string
}

// NewIdentityKey builds a key, defaulting the fulfillment method
func NewIdentityKey(sessionID, locationID, fulfillmentMethod string) IdentityKey {
	if fulfillmentMethod == "" {
		fulfillmentMethod = DefaultFulfillmentMethod
	}
	return IdentityKey{
		SessionID:         sessionID,
		LocationID:        locationID,
		FulfillmentMethod: fulfillmentMethod,
	}
}

// String renders the key as a store key
func (k IdentityKey) String() string {
	return fmt.Sprintf("cart:%s:%s:%s", k.SessionID, k.LocationID, k.FulfillmentMethod)
}
