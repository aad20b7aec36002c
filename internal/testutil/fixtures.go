package testutil

import "github.com/roach88/merch/internal/catalog"

// Phone returns an enriched electronics fixture.
func Phone() catalog.Product {
	return catalog.Enrich(catalog.Product{
		ID:                 1,
		Title:              "Aster Phone X",
		Description:        "A phone.",
		Price:              899.99,
		DiscountPercentage: 10.5,
		Rating:             4.6,
		Stock:              34,
		Brand:              "Aster",
		Category:           "smartphones",
		Thumbnail:          "https://example.test/phone/thumb.jpg",
		Images:             []string{"https://example.test/phone/1.jpg"},
	})
}

// Shirt returns an enriched apparel fixture.
func Shirt() catalog.Product {
	return catalog.Enrich(catalog.Product{
		ID:       2,
		Title:    "Plain Tee",
		Price:    19.99,
		Rating:   4.1,
		Stock:    120,
		Brand:    "Basics",
		Category: "mens-shirts",
	})
}

// Lamp returns an enriched home-decor fixture.
func Lamp() catalog.Product {
	return catalog.Enrich(catalog.Product{
		ID:       3,
		Title:    "Desk Lamp",
		Price:    24.50,
		Rating:   3.9,
		Stock:    8,
		Brand:    "Lumen",
		Category: "home-decoration",
	})
}
