package catalog

import "strings"

// Variant palettes. The remote source has no variant data, so options are
// derived from the category alone; deriving from a stable rule table keeps
// the assignment deterministic across fetches.
var (
	shoeSizes    = []string{"US 6", "US 7", "US 8", "US 9", "US 10", "US 11"}
	apparelSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}
	storageSizes = []string{"128GB", "256GB", "512GB", "1TB"}

	leatherColors = []string{"Black", "Brown", "Tan", "Red"}
	metalColors   = []string{"Gold", "Silver", "Rose Gold", "Black"}
	frameColors   = []string{"Black", "Tortoise", "Gold", "Silver"}
	apparelColors = []string{"Black", "White", "Navy", "Red", "Green", "Beige"}
	techColors    = []string{"Space Grey", "Silver", "Gold", "Midnight Green", "Phantom Black"}
	woodColors    = []string{"Oak", "Walnut", "White", "Black", "Grey"}
	defaultColors = []string{"Original", "Black", "Red", "Blue"}
)

// Enrich assigns color and size options to a product based on its category.
//
// The rule list is ordered; the first matching category family wins:
//
//  1. Apparel/fashion (shirt, dress, top, women, men, fashion) — sizes by
//     sub-family (shoes, one-size accessories, garments), colors by material
//     sub-family.
//  2. Electronics (phone, laptop, tablet, mobile, electronic) — storage
//     sizes, tech colors.
//  3. Home/furniture/decor — standard size, material colors.
//  4. Beauty/skincare/fragrance/grocery — pack sizes, single color.
//  5. Everything else — standard size, generic colors.
//
// Matching is case-insensitive substring. Enrich is total and idempotent;
// output lists are deduplicated preserving first-seen order.
func Enrich(p Product) Product {
	category := strings.ToLower(p.Category)

	var colors, sizes []string

	switch {
	case containsAny(category, "shirt", "dress", "top", "women", "men", "fashion"):
		switch {
		case containsAny(category, "shoe", "sneaker"):
			sizes = shoeSizes
		case containsAny(category, "watch", "jewel", "bag", "glass"):
			sizes = []string{"One Size"}
		default:
			sizes = apparelSizes
		}
		switch {
		case containsAny(category, "bag", "leather"):
			colors = leatherColors
		case containsAny(category, "jewel", "watch"):
			colors = metalColors
		case strings.Contains(category, "glass"):
			colors = frameColors
		default:
			colors = apparelColors
		}

	case containsAny(category, "phone", "laptop", "tablet", "mobile", "electronic"):
		sizes = storageSizes
		colors = techColors

	case containsAny(category, "furniture", "decoration", "home"):
		sizes = []string{"Standard"}
		colors = woodColors

	case containsAny(category, "beauty", "skin", "fragrance", "grocer"):
		sizes = []string{"Standard", "Large Pack"}
		colors = []string{"Original"}

	default:
		sizes = []string{"Standard"}
		colors = defaultColors
	}

	p.Colors = dedupe(colors)
	p.Sizes = dedupe(sizes)
	return p
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// dedupe returns a copy with duplicates removed, first occurrence wins.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
