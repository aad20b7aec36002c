package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		Long: `List the category tokens the remote catalog serves. Any of them can
be passed to "browse --category".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategories(rootOpts, cmd)
		},
	}
	return cmd
}

func runCategories(opts *RootOptions, cmd *cobra.Command) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}

	categories := a.client.FetchCategories(cmd.Context())
	a.out.VerboseLog("fetched %d categories", len(categories))

	if opts.Format == "json" {
		return a.out.Success(map[string]any{"categories": categories})
	}
	if len(categories) == 0 {
		return a.out.Success("No categories available.")
	}
	return a.out.Success(strings.Join(categories, "\n"))
}
