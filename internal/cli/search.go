package cli

import (
	"fmt"
	"strings"

	"github.com/aiseo/brand-visibility/internal/search"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the 'search' command
func NewSearchCmd(opts *Options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search brands, prompts and sources",
		Args:  cobra.MinimumNArgs(1),
		Example: `  visctl search shopify --dataset data.json
  visctl search "best platform" --dataset data.json --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, closeFn, err := openFacade(opts)
			defer closeFn()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results := facade.NewSearchIndex().Search(query, limit)

			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, results)
			}

			if results.TotalResults() == 0 {
				fmt.Fprintf(out, "No results for %q\n", query)
				return nil
			}

			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d results for %q", results.TotalResults(), query)))
			for _, g := range results.Groups {
				fmt.Fprintf(out, "\n%s\n", g.Label)
				for _, r := range g.Results {
					fmt.Fprintf(out, "  %s  %s\n", r.Title, mutedStyle.Render(r.Subtitle))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", search.DefaultMaxPerCategory, "Maximum results per category")

	return cmd
}
