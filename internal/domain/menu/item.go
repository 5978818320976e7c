package menu

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MenuItem is the canonical menu entry the storefront renders
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       *string         `json:"image"`
	Calories    int             `json:"calories"`
	Category    Category        `json:"category"`
	IsPopular   bool            `json:"isPopular"`
	IsNew       bool            `json:"isNew"`
}

// Section is one normalized category of a menu
type Section struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// Menu is a normalized remote menu
type Menu struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Sections []Section `json:"sections"`
}

// ImageFallback supplies artwork for products the storefront API has no image for
type ImageFallback struct {
	// ByName maps a product name, or "<category>-<name>", to an image path
	ByName map[string]string
	// Default is used when neither key is present
	Default string
}

// Resolve returns the fallback image for a product
func (f *ImageFallback) Resolve(name, categoryName string) string {
	if img, ok := f.ByName[name]; ok {
		return img
	}
	if categoryName != "" {
		if img, ok := f.ByName[categoryName+"-"+name]; ok {
			return img
		}
	}
	return f.Default
}

// FlagPolicy declares which heuristics derive the popular and new flags.
// Tag hints match tags case-insensitively by substring, name hints match the
// product name the same way.
type FlagPolicy struct {
	PopularTags  []string
	NewTags      []string
	PopularNames []string
	NewNames     []string
	Images       *ImageFallback
}

// HomePolicy derives flags from tags only and leaves missing images empty
func HomePolicy() FlagPolicy {
	return FlagPolicy{
		PopularTags: []string{"popular"},
		NewTags:     []string{"new"},
	}
}

// MenuPagePolicy is the full menu page: tags plus name hints, with bakery artwork fallback
func MenuPagePolicy() FlagPolicy {
	return FlagPolicy{
		PopularTags:  []string{"popular"},
		NewTags:      []string{"new"},
		PopularNames: []string{"croissant"},
		NewNames:     []string{"seasonal"},
		Images:       bakeryImages(),
	}
}

// PolicyForView maps a page view name to its policy
func PolicyForView(view string) (FlagPolicy, bool) {
	switch strings.ToLower(view) {
	case "", "home":
		return HomePolicy(), true
	case "full", "menu":
		return MenuPagePolicy(), true
	default:
		return FlagPolicy{}, false
	}
}

// Normalize maps a raw product and the name of its owning category to a MenuItem
func Normalize(product RawProduct, categoryName string, policy FlagPolicy) MenuItem {
	description := product.DescriptionText()
	tags := []string(product.Tags)

	item := MenuItem{
		ID:          product.ID,
		Name:        product.Name,
		Description: StripCaloriesFromDescription(description),
		Price:       product.Price.Decimal(),
		Calories:    DeriveCalories(product.Name, description),
		Category:    DeriveCategory(categoryName),
		IsPopular:   anyContains(tags, policy.PopularTags) || containsAny(product.Name, policy.PopularNames),
		IsNew:       anyContains(tags, policy.NewTags) || containsAny(product.Name, policy.NewNames),
	}

	if img, ok := product.Images.First(); ok {
		item.Image = &img
	} else if policy.Images != nil {
		if img := policy.Images.Resolve(product.Name, categoryName); img != "" {
			item.Image = &img
		}
	}

	return item
}

// NormalizeCategory normalizes every product of a raw category
func NormalizeCategory(category RawCategory, policy FlagPolicy) Section {
	section := Section{
		ID:    category.ID,
		Name:  category.Name,
		Items: make([]MenuItem, 0, len(category.Products)),
	}
	for _, product := range category.Products {
		section.Items = append(section.Items, Normalize(product, category.Name, policy))
	}
	return section
}

// NormalizeMenus normalizes a remote menu bundle, keeping menu and category order
func NormalizeMenus(menus []RawMenu, policy FlagPolicy) []Menu {
	out := make([]Menu, 0, len(menus))
	for _, m := range menus {
		normalized := Menu{
			ID:       m.ID,
			Name:     m.Name,
			Sections: make([]Section, 0, len(m.Categories)),
		}
		for _, category := range m.Categories {
			normalized.Sections = append(normalized.Sections, NormalizeCategory(category, policy))
		}
		out = append(out, normalized)
	}
	return out
}

// anyContains reports whether any value contains any hint, ignoring case
func anyContains(values, hints []string) bool {
	for _, v := range values {
		if containsAny(v, hints) {
			return true
		}
	}
	return false
}

func containsAny(value string, hints []string) bool {
	lowered := strings.ToLower(value)
	for _, hint := range hints {
		if hint != "" && strings.Contains(lowered, strings.ToLower(hint)) {
			return true
		}
	}
	return false
}

func bakeryImages() *ImageFallback {
	const (
		signature = "/images/leclerc-bakery/signature/"
		menuDir   = "/images/leclerc-bakery/menu/"
	)
	return &ImageFallback{
		ByName: map[string]string{
			"Classic Chocolate Chip": signature + "choc-chip-walnut.webp",
			"Double Dark Chocolate":  signature + "dark-choc-chip.webp",
			"Oatmeal Raisin":         signature + "oatmeal-raisin.webp",
			"Peanut Butter Dream":    signature + "pb-choc-chip.webp",
			"Butter Croissant":       menuDir + "butter-croissant.webp",
			"Pain au Chocolat":       menuDir + "pain-au-chocolat.webp",
			"Almond Croissant":       menuDir + "almond-croissant.webp",
			"Fruit Danish":           menuDir + "fruit-danish.webp",
			"Palmier":                menuDir + "palmier.webp",
			"Eclair":                 menuDir + "eclair.webp",
			"Sourdough Loaf":         menuDir + "sourdough-loaf.webp",
			"French Baguette":        menuDir + "french-baguette.webp",
			"Whole Wheat Country":    menuDir + "whole-wheat-country.webp",
			"Olive Rosemary":         menuDir + "olive-rosemary.webp",
			"Brioche":                menuDir + "brioche.webp",
			"Multigrain":             menuDir + "multigrain.webp",
		},
		Default: signature + "choc-chip-walnut.webp",
	}
}
