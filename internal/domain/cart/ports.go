package cart

import "context"

// ItemUnavailableRemoveItem asks the remote to drop a line whose product runs out
const ItemUnavailableRemoveItem = "REMOVE_ITEM"

// IdentityStore persists the remote cart id of a session
type IdentityStore interface {
	// Get returns the cart id stored under key, or false when there is none
	Get(ctx context.Context, key IdentityKey) (string, bool, error)
	// Set stores the cart id under key
	Set(ctx context.Context, key IdentityKey, cartID string) error
	// Clear forgets the cart id stored under key
	Clear(ctx context.Context, key IdentityKey) error
}

// Selection is a modifier choice attached to a cart line
type Selection struct {
	GroupID  string `json:"groupId"`
	OptionID string `json:"optionId"`
}

// AddItemRequest is the body of a create-line-item call
type AddItemRequest struct {
	ProductID             string      `json:"productId"`
	Quantity              int         `json:"quantity"`
	SpecialInstructions   string      `json:"specialInstructions"`
	ItemUnavailableAction string      `json:"itemUnavailableAction"`
	Selections            []Selection `json:"selections"`
}

// NewAddItemRequest builds the single-unit request the storefront sends
func NewAddItemRequest(productID string) AddItemRequest {
	return AddItemRequest{
		ProductID:             productID,
		Quantity:              1,
		SpecialInstructions:   "",
		ItemUnavailableAction: ItemUnavailableRemoveItem,
		Selections:            []Selection{},
	}
}

// API is the slice of the storefront API the cart synchronizer uses
type API interface {
	CreateCart(ctx context.Context, locationID, fulfillmentMethod string) (*CreatedCart, error)
	GetCart(ctx context.Context, locationID, cartID string) (*RemoteCart, error)
	AddCartItem(ctx context.Context, locationID, cartID string, req AddItemRequest) error
	UpdateCartItemQuantity(ctx context.Context, locationID, cartID, lineID string, quantity int) error
	ApplyDiscount(ctx context.Context, locationID, cartID, code string) (*DiscountResult, error)
}

// Notifier delivers user-facing notifications for a session
type Notifier interface {
	Success(ctx context.Context, sessionID, title, description string)
	Error(ctx context.Context, sessionID, message string)
}
