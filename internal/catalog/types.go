package catalog

// Product is one catalog item as served by the remote collaborator,
// enriched with variant options. The remote payload is read-only; a
// Product is reconstructed (and re-enriched) on every fetch.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`

	// Enrichment output. Deduplicated, first-seen order preserved.
	Colors []string `json:"colors,omitempty"`
	Sizes  []string `json:"sizes,omitempty"`
}

// Variant is a shopper's selected attribute combination. Either field may
// be empty; empty attributes collapse to "default" in line identity.
type Variant struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// Page is one page of catalog results.
type Page struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// EmptyPage is the degraded result shape for failed or exhausted fetches.
// Callers treat it exactly like a normal empty page.
func EmptyPage() Page {
	return Page{Products: []Product{}, Total: 0}
}
