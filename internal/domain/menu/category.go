package menu

import "strings"

// Category is the fixed set of menu groupings the storefront renders
type Category string

const (
	CategoryCookies  Category = "cookies"
	CategoryPastries Category = "pastries"
	CategoryBreads   Category = "breads"
)

// DeriveCategory classifies a remote category name.
// Rules are checked in order and the first match wins; unknown names are cookies.
func DeriveCategory(categoryName string) Category {
	normalized := strings.ToLower(categoryName)
	if strings.Contains(normalized, "pastr") {
		return CategoryPastries
	}
	if strings.Contains(normalized, "bread") ||
		strings.Contains(normalized, "loaf") ||
		strings.Contains(normalized, "baguette") {
		return CategoryBreads
	}
	return CategoryCookies
}
