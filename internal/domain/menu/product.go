package menu

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// RawProduct is a product record exactly as the storefront API sends it
type RawProduct struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Price       RawPrice     `json:"price"`
	Images      LooseStrings `json:"images,omitempty"`
	Tags        LooseStrings `json:"tags,omitempty"`
}

// DescriptionText returns the description, or "" when the API sent none
func (p *RawProduct) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// RawCategory is a named group of products inside a remote menu
type RawCategory struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Products []RawProduct `json:"products"`
}

// RawMenu is one menu of the remote menu bundle
type RawMenu struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Categories []RawCategory `json:"categories"`
}

// priceKind tells how the remote encoded a price
type priceKind int

const (
	priceAbsent priceKind = iota
	priceText
	priceNumber
)

// RawPrice holds a price that may arrive as a JSON string, a JSON number or not at all
type RawPrice struct {
	kind  priceKind
	value string
}

// PriceFromString builds a RawPrice the way a string-encoded price decodes
func PriceFromString(s string) RawPrice {
	return RawPrice{kind: priceText, value: s}
}

// PriceFromNumber builds a RawPrice the way a numeric price decodes
func PriceFromNumber(f float64) RawPrice {
	return RawPrice{kind: priceNumber, value: decimal.NewFromFloat(f).String()}
}

// UnmarshalJSON accepts strings, numbers and null. Any other JSON shape is
// treated as an absent price rather than an error.
func (p *RawPrice) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*p = RawPrice{}
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*p = PriceFromString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			*p = RawPrice{}
			return nil
		}
		*p = RawPrice{kind: priceNumber, value: n.String()}
	}
	return nil
}

// MarshalJSON writes the price back in the shape it arrived in
func (p RawPrice) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case priceText:
		return json.Marshal(p.value)
	case priceNumber:
		return []byte(p.value), nil
	default:
		return []byte("null"), nil
	}
}

// IsSet reports whether the remote sent a price at all
func (p RawPrice) IsSet() bool {
	return p.kind != priceAbsent
}

// Decimal coerces the price. Absent, unparseable and negative prices are zero.
func (p RawPrice) Decimal() decimal.Decimal {
	if p.kind == priceAbsent {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(p.value))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// LooseStrings decodes a JSON array of strings and tolerates anything else.
// Non-array values decode to an empty set and non-string entries are skipped.
type LooseStrings []string

// UnmarshalJSON implements json.Unmarshaler
func (s *LooseStrings) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = nil
		return nil
	}

	out := make(LooseStrings, 0, len(raw))
	for _, entry := range raw {
		var v string
		if err := json.Unmarshal(entry, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*s = out
	return nil
}

// First returns the first non-empty entry
func (s LooseStrings) First() (string, bool) {
	for _, v := range s {
		if v != "" {
			return v, true
		}
	}
	return "", false
}
