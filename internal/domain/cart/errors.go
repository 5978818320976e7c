package cart

import "github.com/craveup/leclerc-storefront/internal/domain/shared"

// Cart error codes
const (
	CodeCartNotReady    = "CART_NOT_READY"
	CodeInvalidQuantity = "INVALID_QUANTITY"
	CodeInvalidDiscount = "INVALID_DISCOUNT"
)

var (
	// ErrCartNotReady is recorded when a mutation runs before a location and
	// remote cart id are known. It never reaches the network.
	ErrCartNotReady = shared.NewDomainError(CodeCartNotReady, "Cart is not ready. Please try again.")
	// ErrInvalidQuantity rejects negative line quantities before they are sent
	ErrInvalidQuantity = shared.NewDomainError(CodeInvalidQuantity, "Quantity cannot be negative.")
	// ErrEmptyDiscountCode rejects blank discount codes
	ErrEmptyDiscountCode = shared.NewDomainError(CodeInvalidDiscount, "Enter a discount code.")
)
