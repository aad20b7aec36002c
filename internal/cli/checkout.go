package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/merch/internal/checkout"
	"github.com/roach88/merch/internal/orders"
)

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	Form checkout.Form
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the current cart",
		Long: `Run the checkout flow: validate the shipping and payment form, submit,
and wait for the simulated payment to resolve. On success the order is
appended to the history and the cart is cleared.

All form fields are required. Validation failures list every offending
field and nothing is submitted.

Example:
  merch checkout --name "John Doe" --email john@example.com \
    --address "123 Main St" --city Springfield --zip 12345 \
    --card 4242424242424242 --exp 12/30 --cvc 123`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Form.Name, "name", "", "full name")
	cmd.Flags().StringVar(&opts.Form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Form.Address, "address", "", "street address")
	cmd.Flags().StringVar(&opts.Form.City, "city", "", "city")
	cmd.Flags().StringVar(&opts.Form.Zip, "zip", "", "zip code (digits)")
	cmd.Flags().StringVar(&opts.Form.Card, "card", "", "card number (13-19 digits)")
	cmd.Flags().StringVar(&opts.Form.Exp, "exp", "", "card expiry (MM/YY)")
	cmd.Flags().StringVar(&opts.Form.CVC, "cvc", "", "card verification code (3 digits)")

	return cmd
}

func runCheckout(opts *CheckoutOptions, cmd *cobra.Command) error {
	a, err := newApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	if err := a.openState(cmd.Context(), opts.RootOptions); err != nil {
		return err
	}
	defer a.Close()

	m := checkout.New(a.cart, a.orders,
		checkout.WithSubmitDelay(a.cfg.Checkout.SubmitDelay()),
	)

	if err := m.Begin(); err != nil {
		return NewExitError(ExitFailure, "cart is empty; add something first")
	}

	m.SetForm(opts.Form)
	if !m.Valid() {
		problems := m.FieldErrors()
		if opts.Format == "json" {
			a.out.Error("invalid_form", "form validation failed", problems)
			return NewExitError(ExitFailure, "form validation failed")
		}
		var b strings.Builder
		b.WriteString("Form validation failed:\n")
		for _, field := range []string{
			checkout.FieldName, checkout.FieldEmail, checkout.FieldAddress,
			checkout.FieldCity, checkout.FieldZip, checkout.FieldCard,
			checkout.FieldExp, checkout.FieldCVC,
		} {
			if msg, bad := problems[field]; bad {
				fmt.Fprintf(&b, "  %-8s %s\n", field, msg)
			}
		}
		fmt.Fprint(a.out.Writer, b.String())
		return NewExitError(ExitFailure, "form validation failed")
	}

	a.out.VerboseLog("submitting order for %s", formatPrice(a.cart.TotalPrice()))

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Checkout.SubmitDelay()+a.cfg.API.Timeout())
	defer cancel()

	if err := m.Submit(ctx); err != nil {
		return WrapExitError(ExitFailure, "submission rejected", err)
	}

	for m.Step() != checkout.StepSuccess {
		select {
		case <-m.Updates():
			if !m.InFlight() && m.Step() == checkout.StepCheckout {
				return NewExitError(ExitCommandError, "failed to persist order; cart unchanged, try again")
			}
		case <-ctx.Done():
			return WrapExitError(ExitCommandError, "submission timed out", ctx.Err())
		}
	}

	order, _ := m.LastOrder()

	if opts.Format == "json" {
		return a.out.Success(order)
	}
	return a.out.Success(renderOrderConfirmation(order))
}

func renderOrderConfirmation(o orders.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s placed.\n", o.ID)
	fmt.Fprintf(&b, "Date:  %s\n", o.Date.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Ship:  %s, %s, %s %s\n", o.ShippingInfo.Name, o.ShippingInfo.Address, o.ShippingInfo.City, o.ShippingInfo.Zip)
	for _, l := range o.Items {
		fmt.Fprintf(&b, "  %-32s x%-3d %10s\n", truncate(l.Product.Title, 32), l.Quantity, formatPrice(l.Price*float64(l.Quantity)))
	}
	fmt.Fprintf(&b, "Total: %s", formatPrice(o.Total))
	return b.String()
}
