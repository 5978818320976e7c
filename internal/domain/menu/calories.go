package menu

import (
	"regexp"
	"strconv"
	"strings"
)

// FallbackCalories is used until the dashboard stores explicit nutrition
const FallbackCalories = 300

var (
	calorieMention   = regexp.MustCompile(`(?i)\b(\d{2,4})\s*cal(?:ories)?\b`)
	caloriePhrase    = regexp.MustCompile(`(?i)(?:[-–—,]\s*)?\b\d{2,4}\s*cal(?:ories)?\b`)
	repeatedSpace    = regexp.MustCompile(`\s{2,}`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.,!?])`)
)

var caloriesByName = map[string]int{
	"Classic Chocolate Chip":    320,
	"Double Dark Chocolate":     340,
	"Oatmeal Raisin":            290,
	"Peanut Butter Dream":       330,
	"White Chocolate Macadamia": 350,
	"Snickerdoodle":             280,
	"Butter Croissant":          270,
	"Pain au Chocolat":          320,
	"Almond Croissant":          340,
	"Fruit Danish":              310,
	"Palmier":                   240,
	"Eclair":                    290,
	"Sourdough Loaf":            120,
	"French Baguette":           110,
	"Whole Wheat Country":       130,
	"Olive Rosemary":            140,
	"Brioche":                   150,
	"Multigrain":                125,
}

// ExtractCalories finds the first "<n> cal" or "<n> calories" mention in text.
// It reports false when there is none or the number is zero.
func ExtractCalories(text string) (int, bool) {
	match := calorieMention.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// KnownCalories looks a product name up in the static nutrition table
func KnownCalories(productName string) (int, bool) {
	n, ok := caloriesByName[productName]
	return n, ok
}

// DeriveCalories picks, in order: a mention in the description, the static
// table entry for the name, FallbackCalories.
func DeriveCalories(productName, description string) int {
	if n, ok := ExtractCalories(description); ok {
		return n
	}
	if n, ok := KnownCalories(productName); ok {
		return n
	}
	return FallbackCalories
}

// StripCaloriesFromDescription removes calorie phrases and tidies the
// whitespace they leave behind. Applying it twice gives the same result as once.
func StripCaloriesFromDescription(description string) string {
	if description == "" {
		return ""
	}

	// Removing one phrase can butt a number up against a later "cal",
	// so keep going until nothing matches.
	cleaned := description
	for caloriePhrase.MatchString(cleaned) {
		cleaned = caloriePhrase.ReplaceAllString(cleaned, "")
	}

	cleaned = repeatedSpace.ReplaceAllString(cleaned, " ")
	cleaned = spaceBeforePunct.ReplaceAllString(cleaned, "${1}")
	return strings.TrimSpace(cleaned)
}
