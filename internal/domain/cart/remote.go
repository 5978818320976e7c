package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RemoteCartItem is a cart line as returned by the storefront API
type RemoteCartItem struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    *string `json:"imageUrl"`
}

// RemoteCart is the cart resource as returned by the storefront API.
// Money fields are decimal strings.
type RemoteCart struct {
	ID                       string           `json:"id"`
	LocationID               string           `json:"locationId"`
	Items                    []RemoteCartItem `json:"items"`
	SubTotal                 string           `json:"subTotal"`
	TaxTotal                 string           `json:"taxTotal"`
	OrderTotalWithServiceFee *string          `json:"orderTotalWithServiceFee"`
	NetSalesTotal            *string          `json:"netSalesTotal"`
	TotalQuantity            *int             `json:"totalQuantity"`
	CheckoutURL              string           `json:"checkoutUrl,omitempty"`
	CartURL                  string           `json:"cartUrl,omitempty"`
}

// CreatedCart is the answer to a cart creation request
type CreatedCart struct {
	CartID string `json:"cartId"`
	ID     string `json:"id"`
}

// Identifier returns whichever id field the remote filled in
func (c CreatedCart) Identifier() string {
	if c.CartID != "" {
		return c.CartID
	}
	return c.ID
}

// DiscountResult is the answer to a discount application
type DiscountResult struct {
	DiscountApplied bool            `json:"discountApplied"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	DiscountCode    string          `json:"discountCode"`
}

// ParseAmount parses a remote decimal string. Empty or malformed input is zero.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Project maps a remote cart onto the client-visible cart.
// When remote is nil the result is an empty cart at the given location.
func Project(remote *RemoteCart, cartID, locationID string) Cart {
	out := EmptyCart()
	out.CartID = cartID
	out.LocationID = locationID
	if remote == nil {
		return out
	}
	if out.CartID == "" {
		out.CartID = remote.ID
	}
	if out.LocationID == "" {
		out.LocationID = remote.LocationID
	}

	quantity := 0
	for _, line := range remote.Items {
		out.Items = append(out.Items, projectLine(line))
		quantity += line.Quantity
	}

	out.Subtotal = ParseAmount(remote.SubTotal)
	out.Tax = ParseAmount(remote.TaxTotal)

	totalText := remote.OrderTotalWithServiceFee
	if totalText == nil {
		totalText = remote.NetSalesTotal
	}
	if totalText != nil && *totalText != "" {
		out.Total = ParseAmount(*totalText)
	} else {
		out.Total = out.Subtotal.Add(out.Tax)
	}

	if remote.TotalQuantity != nil {
		out.ItemCount = *remote.TotalQuantity
	} else {
		out.ItemCount = quantity
	}

	out.CheckoutURL = remote.CheckoutURL
	return out
}

func projectLine(line RemoteCartItem) CartItem {
	item := CartItem{
		CartID:   line.ID,
		ID:       line.ProductID,
		Name:     line.Name,
		Quantity: line.Quantity,
		Image:    line.ImageURL,
		Category: DefaultCategory,
		Options:  DefaultItemOptions(),
		Price:    decimal.Zero,
	}
	if item.ID == "" {
		item.ID = line.ID
	}
	if line.Description != nil {
		item.Description = *line.Description
	}
	if line.Price != nil {
		item.Price = ParseAmount(*line.Price)
	}
	return item
}
