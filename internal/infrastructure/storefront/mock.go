package storefront

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	mockUnitPrice = decimal.RequireFromString("5.00")
	mockTaxRate   = decimal.RequireFromString("0.08")
)

// mockPostResponse builds the canned answer for a POST to endpoint.
// Responses are keyed on the path shape only.
func mockPostResponse(endpoint string, body any, now time.Time) ([]byte, error) {
	data := bodyFields(body)

	var response map[string]any
	switch {
	case strings.Contains(endpoint, "/carts") && !strings.Contains(endpoint, "/cart-item"):
		response = map[string]any{
			"cartId":   fmt.Sprintf("mock-cart-%d", now.UnixMilli()),
			"items":    []any{},
			"subtotal": 0,
			"tax":      0,
			"total":    0,
			"status":   "active",
		}
	case strings.Contains(endpoint, "/cart-item"):
		quantity := int64(1)
		if q, ok := data["quantity"].(float64); ok && q > 0 {
			quantity = int64(q)
		}
		subtotal := mockUnitPrice.Mul(decimal.NewFromInt(quantity))
		tax := subtotal.Mul(mockTaxRate)
		response = map[string]any{
			"cartId": "mock-cart-123",
			"items": []any{map[string]any{
				"_id":       fmt.Sprintf("mock-item-%d", now.UnixMilli()),
				"productId": data["productId"],
				"quantity":  quantity,
				"price":     number(mockUnitPrice),
				"itemTotal": number(subtotal),
			}},
			"subtotal": number(subtotal),
			"tax":      number(tax),
			"total":    number(subtotal.Add(tax)),
		}
	case strings.Contains(endpoint, "/discounts/apply-discount"):
		response = map[string]any{
			"discountApplied": true,
			"discountAmount":  number(decimal.RequireFromString("2.00")),
			"discountCode":    data["discountCode"],
		}
	default:
		response = map[string]any{
			"success": true,
			"message": "Mock response for local development",
			"data":    data,
		}
	}

	return json.Marshal(response)
}

// bodyFields reads a request body back as generic JSON fields
func bodyFields(body any) map[string]any {
	fields := map[string]any{}
	if body == nil {
		return fields
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fields
	}
	_ = json.Unmarshal(raw, &fields)
	return fields
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
