// Package menu contains the Menu bounded context of the storefront.
// It turns loosely typed storefront API product records into canonical menu items.
//
// Key concepts:
//   - RawProduct: the product record as the storefront API sends it (string or number prices,
//     optional tags and images). Coercion happens only here, at the normalizer boundary.
//   - MenuItem: the canonical item the UI renders. It never carries optional or ambiguous fields
//     besides the nullable image.
//   - FlagPolicy: which popular/new heuristics a page enables.
package menu
