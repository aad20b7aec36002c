package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/merch/internal/explorer"
)

// BrowseOptions holds flags for the browse command.
type BrowseOptions struct {
	*RootOptions
	Search   string
	Category string
	Sort     string
	Pages    int
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BrowseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the product catalog",
		Long: `Browse the product catalog with optional search, category filter,
and price sort. Additional pages extend the result set the same way
infinite scroll does.

Search and category filter are mutually exclusive per request; search
wins when both are given.

Examples:
  merch browse
  merch browse --search phone
  merch browse --category laptops --sort asc
  merch browse --pages 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "search text")
	cmd.Flags().StringVar(&opts.Category, "category", explorer.CategoryAll, "category filter (\"all\" for none)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "none", "price sort (none|asc|desc)")
	cmd.Flags().IntVar(&opts.Pages, "pages", 1, "number of pages to load")

	return cmd
}

// browseRow is one product in the browse result payload.
type browseRow struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Brand    string  `json:"brand,omitempty"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount_percentage,omitempty"`
	Rating   float64 `json:"rating"`
	Stock    int     `json:"stock"`
}

// browseResult is the browse command's payload.
type browseResult struct {
	Products []browseRow `json:"products"`
	Total    int         `json:"total"`
	HasMore  bool        `json:"has_more"`
}

func runBrowse(opts *BrowseOptions, cmd *cobra.Command) error {
	sortOrder := explorer.SortOrder(opts.Sort)
	switch sortOrder {
	case explorer.SortNone, explorer.SortAsc, explorer.SortDesc:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid sort %q: must be none, asc or desc", opts.Sort))
	}
	if opts.Pages < 1 {
		return NewExitError(ExitCommandError, "pages must be at least 1")
	}

	a, err := newApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	eng := explorer.New(a.client,
		explorer.WithPageSize(a.cfg.Explorer.PageSize),
		explorer.WithDebounce(a.cfg.Explorer.Debounce()),
	)
	defer eng.Close()

	eng.SetSearch(opts.Search)
	eng.SetCategory(opts.Category)
	eng.Refresh()
	for i := 1; i < opts.Pages; i++ {
		eng.LoadNextPage()
	}
	eng.SetPriceSort(sortOrder)

	snap := eng.Snapshot()
	a.out.VerboseLog("loaded %d of %d products (hasMore=%v)", len(snap.Items), snap.Total, snap.HasMore)

	result := browseResult{
		Products: make([]browseRow, len(snap.Items)),
		Total:    snap.Total,
		HasMore:  snap.HasMore,
	}
	for i, p := range snap.Items {
		result.Products[i] = browseRow{
			ID:       p.ID,
			Title:    p.Title,
			Brand:    p.Brand,
			Category: p.Category,
			Price:    p.Price,
			Discount: p.DiscountPercentage,
			Rating:   p.Rating,
			Stock:    p.Stock,
		}
	}

	if opts.Format == "json" {
		return a.out.Success(result)
	}
	return a.out.Success(renderBrowse(result))
}

func renderBrowse(r browseResult) string {
	if len(r.Products) == 0 {
		return "No products found."
	}

	var b strings.Builder
	for _, p := range r.Products {
		fmt.Fprintf(&b, "%6d  %-40s %10s  %s\n", p.ID, truncate(p.Title, 40), formatPrice(p.Price), p.Category)
	}
	fmt.Fprintf(&b, "\n%d of %d products", len(r.Products), r.Total)
	if !r.HasMore {
		b.WriteString(" (end of list)")
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
