package cart

import (
	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// State is the read model of one session's cart, as the storefront UI renders it
type State struct {
	Items       []cart.CartItem `json:"items"`
	ItemCount   int             `json:"itemCount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	IsLoading   bool            `json:"isLoading"`
	Error       *string         `json:"error"`
	IsCartOpen  bool            `json:"isCartOpen"`
	CartID      *string         `json:"cartId"`
	LocationID  string          `json:"locationId"`
	CheckoutURL string          `json:"checkoutUrl,omitempty"`
}
