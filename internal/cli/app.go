package cli

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/merch/internal/api"
	"github.com/roach88/merch/internal/cart"
	"github.com/roach88/merch/internal/config"
	"github.com/roach88/merch/internal/orders"
	"github.com/roach88/merch/internal/store"
)

// app bundles the explicitly composed collaborators a command needs:
// configuration, the output formatter, the catalog client, and (once
// openState is called) the durable store with its cart and order stores.
type app struct {
	cfg    config.Config
	out    *OutputFormatter
	client *api.Client

	state  *store.Store
	cart   *cart.Store
	orders *orders.Store
}

// newApp loads configuration and builds the catalog client. State stores
// are opened separately; catalog-only commands never touch the database.
func newApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	client := api.New(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout()}),
	)

	return &app{cfg: cfg, out: out, client: client}, nil
}

// openState opens the durable store and restores the cart and order
// stores from it.
func (a *app) openState(ctx context.Context, opts *RootOptions) error {
	path := a.cfg.Store.Path
	if opts.DB != "" {
		path = opts.DB
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WrapExitError(ExitCommandError, "failed to create state directory", err)
		}
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open state database", err)
	}

	cartStore, err := cart.New(ctx, st)
	if err != nil {
		st.Close()
		return WrapExitError(ExitCommandError, "failed to restore cart", err)
	}
	orderStore, err := orders.New(ctx, st)
	if err != nil {
		st.Close()
		return WrapExitError(ExitCommandError, "failed to restore order history", err)
	}

	a.state = st
	a.cart = cartStore
	a.orders = orderStore
	return nil
}

// Close releases the durable store, if open.
func (a *app) Close() {
	if a.state != nil {
		a.state.Close()
	}
}
