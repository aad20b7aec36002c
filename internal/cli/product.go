package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/merch/internal/catalog"
)

// NewProductCommand creates the product command.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product with its variant options and prices",
		Long: `Show a single product in detail: description, stock, discount, the
variant options derived from its category, and the effective price each
size selection yields.

Example:
  merch product 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", args[0]))
			}
			return runProduct(rootOpts, cmd, id)
		},
	}
	return cmd
}

// productDetail is the product command's payload.
type productDetail struct {
	catalog.Product
	DiscountedPrice float64            `json:"discounted_price"`
	SizePrices      map[string]float64 `json:"size_prices,omitempty"`
}

func runProduct(opts *RootOptions, cmd *cobra.Command, id int) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}

	p, ok := a.client.FetchProductByID(cmd.Context(), id)
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("product %d not found", id))
	}

	detail := productDetail{
		Product:         p,
		DiscountedPrice: catalog.DiscountedPrice(p.Price, p.DiscountPercentage),
	}
	if len(p.Sizes) > 0 {
		detail.SizePrices = make(map[string]float64, len(p.Sizes))
		for _, size := range p.Sizes {
			detail.SizePrices[size] = catalog.EffectivePrice(p.Price, size)
		}
	}

	if opts.Format == "json" {
		return a.out.Success(detail)
	}
	return a.out.Success(renderProduct(detail))
}

func renderProduct(d productDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", d.Title, d.ID)
	if d.Brand != "" {
		fmt.Fprintf(&b, "Brand:    %s\n", d.Brand)
	}
	fmt.Fprintf(&b, "Category: %s\n", d.Category)
	fmt.Fprintf(&b, "Price:    %s", formatPrice(d.Price))
	if d.DiscountPercentage > 0 {
		fmt.Fprintf(&b, "  (%.2f%% off: %s)", d.DiscountPercentage, formatPrice(d.DiscountedPrice))
	}
	fmt.Fprintf(&b, "\nRating:   %.2f\n", d.Rating)
	fmt.Fprintf(&b, "Stock:    %d\n", d.Stock)
	if d.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Description)
	}
	if len(d.Colors) > 0 {
		fmt.Fprintf(&b, "\nColors: %s\n", strings.Join(d.Colors, ", "))
	}
	if len(d.Sizes) > 0 {
		b.WriteString("Sizes:\n")
		for _, size := range d.Sizes {
			fmt.Fprintf(&b, "  %-8s %s\n", size, formatPrice(d.SizePrices[size]))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
