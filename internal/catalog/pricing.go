package catalog

import (
	"math"
	"strings"
)

// sizeRule maps a size token to a price multiplier. Rules are evaluated in
// order; the first match wins.
type sizeRule struct {
	token      string
	exact      bool // equality match instead of substring
	multiplier float64
}

var sizeRules = []sizeRule{
	{token: "256GB", multiplier: 1.10},
	{token: "512GB", multiplier: 1.25},
	{token: "1TB", multiplier: 1.40},
	{token: "L", exact: true, multiplier: 1.05},
	{token: "XL", exact: true, multiplier: 1.10},
	{token: "XXL", exact: true, multiplier: 1.15},
}

// EffectivePrice returns the price for a base price and selected size.
//
// Storage tokens match by substring, garment tokens by exact (case-sensitive)
// equality; sizes outside the rule table keep the base price. The result is
// rounded half-up to cents. Pure function; the caller freezes the result
// into the cart line at add time.
func EffectivePrice(basePrice float64, selectedSize string) float64 {
	multiplier := 1.0
	for _, r := range sizeRules {
		if r.exact {
			if selectedSize == r.token {
				multiplier = r.multiplier
				break
			}
		} else if strings.Contains(selectedSize, r.token) {
			multiplier = r.multiplier
			break
		}
	}
	return math.Round(basePrice*multiplier*100) / 100
}

// DiscountedPrice applies a percentage discount to a base price, rounded
// half-up to cents. Display only; cart lines always freeze the
// undiscounted effective price.
func DiscountedPrice(basePrice, discountPercentage float64) float64 {
	return math.Round(basePrice*(1-discountPercentage/100)*100) / 100
}
