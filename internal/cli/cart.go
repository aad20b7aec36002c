package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/merch/internal/cart"
	"github.com/roach88/merch/internal/catalog"
)

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
		Long: `Manage the persistent shopping cart. Lines are identified by
product+variant; adding the same combination again increments its
quantity. The cart survives across invocations.`,
	}

	cmd.AddCommand(newCartAddCommand(rootOpts))
	cmd.AddCommand(newCartListCommand(rootOpts))
	cmd.AddCommand(newCartUpdateCommand(rootOpts))
	cmd.AddCommand(newCartRemoveCommand(rootOpts))
	cmd.AddCommand(newCartClearCommand(rootOpts))

	return cmd
}

// CartAddOptions holds flags for cart add.
type CartAddOptions struct {
	*RootOptions
	Color string
	Size  string
}

func newCartAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CartAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Long: `Add one unit of a product to the cart. Without --color or --size the
first available option of each is selected. The unit price is computed
from the selected size and frozen into the line.

Examples:
  merch cart add 1
  merch cart add 1 --size 512GB --color Silver`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", args[0]))
			}
			return runCartAdd(opts, cmd, id)
		},
	}

	cmd.Flags().StringVar(&opts.Color, "color", "", "variant color (defaults to the first option)")
	cmd.Flags().StringVar(&opts.Size, "size", "", "variant size (defaults to the first option)")

	return cmd
}

func runCartAdd(opts *CartAddOptions, cmd *cobra.Command, id int) error {
	a, err := newApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	if err := a.openState(cmd.Context(), opts.RootOptions); err != nil {
		return err
	}
	defer a.Close()

	p, ok := a.client.FetchProductByID(cmd.Context(), id)
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("product %d not found", id))
	}

	variant := catalog.Variant{Color: opts.Color, Size: opts.Size}
	if variant.Color == "" && len(p.Colors) > 0 {
		variant.Color = p.Colors[0]
	}
	if variant.Size == "" && len(p.Sizes) > 0 {
		variant.Size = p.Sizes[0]
	}

	price := catalog.EffectivePrice(p.Price, variant.Size)
	if err := a.cart.Add(cmd.Context(), p, variant, price); err != nil {
		return WrapExitError(ExitCommandError, "failed to save cart", err)
	}

	lineID := cart.LineID(p.ID, variant)
	a.out.VerboseLog("added line %s at %s", lineID, formatPrice(price))

	if opts.Format == "json" {
		return a.out.Success(map[string]any{
			"line_id": lineID,
			"title":   p.Title,
			"color":   variant.Color,
			"size":    variant.Size,
			"price":   price,
			"lines":   a.cart.Len(),
		})
	}
	return a.out.Success(fmt.Sprintf("Added %s (%s) at %s.", p.Title, describeVariant(variant), formatPrice(price)))
}

func describeVariant(v catalog.Variant) string {
	parts := []string{}
	if v.Color != "" {
		parts = append(parts, v.Color)
	}
	if v.Size != "" {
		parts = append(parts, v.Size)
	}
	if len(parts) == 0 {
		return "default"
	}
	return strings.Join(parts, ", ")
}

// cartView is the cart list payload.
type cartView struct {
	Lines []cart.Line `json:"lines"`
	Total float64     `json:"total"`
}

func newCartListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "Show the cart contents",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartList(rootOpts, cmd)
		},
	}
	return cmd
}

func runCartList(opts *RootOptions, cmd *cobra.Command) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	if err := a.openState(cmd.Context(), opts); err != nil {
		return err
	}
	defer a.Close()

	view := cartView{Lines: a.cart.Lines(), Total: a.cart.TotalPrice()}

	if opts.Format == "json" {
		return a.out.Success(view)
	}
	return a.out.Success(renderCart(view))
}

func renderCart(v cartView) string {
	if len(v.Lines) == 0 {
		return "Your cart is empty."
	}

	var b strings.Builder
	for _, l := range v.Lines {
		fmt.Fprintf(&b, "%-28s %-32s x%-3d %10s  %s\n",
			l.LineID, truncate(l.Product.Title, 32), l.Quantity,
			formatPrice(l.Price*float64(l.Quantity)), describeVariant(catalog.Variant{Color: l.SelectedColor, Size: l.SelectedSize}))
	}
	fmt.Fprintf(&b, "\nTotal: %s", formatPrice(v.Total))
	return b.String()
}

func newCartUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <line-id> <quantity>",
		Short: "Set a line's quantity",
		Long: `Set the quantity of a cart line. Quantities below one are clamped to
one; removing a line is a separate action ("cart remove").`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]))
			}
			return runCartUpdate(rootOpts, cmd, args[0], qty)
		},
	}
	return cmd
}

func runCartUpdate(opts *RootOptions, cmd *cobra.Command, lineID string, qty int) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	if err := a.openState(cmd.Context(), opts); err != nil {
		return err
	}
	defer a.Close()

	if !hasLine(a.cart.Lines(), lineID) {
		return NewExitError(ExitFailure, fmt.Sprintf("no cart line %q", lineID))
	}
	if err := a.cart.UpdateQuantity(cmd.Context(), lineID, qty); err != nil {
		return WrapExitError(ExitCommandError, "failed to save cart", err)
	}

	if opts.Format == "json" {
		return a.out.Success(cartView{Lines: a.cart.Lines(), Total: a.cart.TotalPrice()})
	}
	return a.out.Success(renderCart(cartView{Lines: a.cart.Lines(), Total: a.cart.TotalPrice()}))
}

func newCartRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "remove <line-id>",
		Short:         "Remove a line from the cart",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartRemove(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runCartRemove(opts *RootOptions, cmd *cobra.Command, lineID string) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	if err := a.openState(cmd.Context(), opts); err != nil {
		return err
	}
	defer a.Close()

	if !hasLine(a.cart.Lines(), lineID) {
		return NewExitError(ExitFailure, fmt.Sprintf("no cart line %q", lineID))
	}
	if err := a.cart.Remove(cmd.Context(), lineID); err != nil {
		return WrapExitError(ExitCommandError, "failed to save cart", err)
	}

	if opts.Format == "json" {
		return a.out.Success(cartView{Lines: a.cart.Lines(), Total: a.cart.TotalPrice()})
	}
	return a.out.Success(fmt.Sprintf("Removed %s.", lineID))
}

func newCartClearCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Empty the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartClear(rootOpts, cmd)
		},
	}
	return cmd
}

func runCartClear(opts *RootOptions, cmd *cobra.Command) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	if err := a.openState(cmd.Context(), opts); err != nil {
		return err
	}
	defer a.Close()

	if err := a.cart.Clear(cmd.Context()); err != nil {
		return WrapExitError(ExitCommandError, "failed to save cart", err)
	}

	if opts.Format == "json" {
		return a.out.Success(cartView{Lines: []cart.Line{}, Total: 0})
	}
	return a.out.Success("Cart cleared.")
}

func hasLine(lines []cart.Line, lineID string) bool {
	for _, l := range lines {
		if l.LineID == lineID {
			return true
		}
	}
	return false
}
