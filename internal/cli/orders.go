package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/merch/internal/cart"
	"github.com/roach88/merch/internal/orders"
)

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show the order history",
		Long: `Show the order history, newest first. Each order lists its fulfillment
progress; with --verbose the full item lines are included.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrders(rootOpts, cmd)
		},
	}
	return cmd
}

func runOrders(opts *RootOptions, cmd *cobra.Command) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	if err := a.openState(cmd.Context(), opts); err != nil {
		return err
	}
	defer a.Close()

	history := a.orders.All()

	if opts.Format == "json" {
		return a.out.Success(map[string]any{"orders": history})
	}
	if len(history) == 0 {
		return a.out.Success("No orders yet.")
	}

	var b strings.Builder
	for i, o := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderOrderSummary(o, opts.Verbose))
	}
	return a.out.Success(strings.TrimRight(b.String(), "\n"))
}

func renderOrderSummary(o orders.Order, verbose bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %3d item(s)  %10s  %s\n",
		o.ID, o.Date.Format("2006-01-02 15:04"), countItems(o.Items), formatPrice(o.Total), renderProgress(o.Status))
	if verbose {
		for _, l := range o.Items {
			fmt.Fprintf(&b, "    %-32s x%-3d %10s\n", truncate(l.Product.Title, 32), l.Quantity, formatPrice(l.Price*float64(l.Quantity)))
		}
	}
	return b.String()
}

// renderProgress shows the fulfillment stage as a filled sequence, e.g.
// "placed [#----]".
func renderProgress(s orders.Status) string {
	idx := s.Index()
	if idx < 0 {
		return string(s)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-9s [", string(s))
	for i := range orders.Statuses {
		if i <= idx {
			b.WriteString("#")
		} else {
			b.WriteString("-")
		}
	}
	b.WriteString("]")
	return b.String()
}

func countItems(lines []cart.Line) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}
