package cli

import (
	"fmt"
	"strconv"

	"github.com/aiseo/brand-visibility/internal/analytics"
	"github.com/spf13/cobra"
)

// NewPromptsCmd creates the 'prompts' command
func NewPromptsCmd(opts *Options) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "List tracked prompts with their pooled visibility",
		Example: `  visctl prompts --dataset data.json
  visctl prompts --dataset data.json --filter ecommerce`,
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, closeFn, err := openFacade(opts)
			defer closeFn()
			if err != nil {
				return err
			}

			prompts, err := facade.ListPromptsWithMetrics(filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, prompts)
			}

			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Prompts (%d)", len(prompts))))
			rows := make([][]string, 0, len(prompts))
			for _, p := range prompts {
				rows = append(rows, []string{
					p.Prompt.ID, strconv.Itoa(len(p.Prompt.RunIDs)), formatFloat(p.Metric.Visibility) + "%", p.Prompt.QueryText,
				})
			}
			return printTable(out, []string{"ID", "RUNS", "VISIBILITY", "QUERY"}, rows)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Case-insensitive filter on the query text")

	return cmd
}

// NewPromptCmd creates the 'prompt' command showing one prompt's runs
func NewPromptCmd(opts *Options) *cobra.Command {
	var runNumber int

	cmd := &cobra.Command{
		Use:   "prompt <id>",
		Short: "Show a prompt with its runs and per-brand breakdown",
		Args:  cobra.ExactArgs(1),
		Example: `  visctl prompt p1 --dataset data.json
  visctl prompt p1 --dataset data.json --run 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, closeFn, err := openFacade(opts)
			defer closeFn()
			if err != nil {
				return err
			}

			detail, err := facade.PromptDetail(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if runNumber > 0 {
				run, ok := detail.RunAt(runNumber - 1)
				if !ok {
					return fmt.Errorf("prompt %s has %d runs", args[0], len(detail.Runs))
				}
				detail.Runs = []analytics.RunDetail{run}
			}
			if opts.JSON {
				return printJSON(out, detail)
			}

			fmt.Fprintln(out, titleStyle.Render(detail.Prompt.QueryText))
			fmt.Fprintf(out, "%s\n\n", mutedStyle.Render(fmt.Sprintf("%s visibility across %d runs",
				formatFloat(detail.Metric.Visibility)+"%", len(detail.Prompt.RunIDs))))

			for _, run := range detail.Runs {
				fmt.Fprintf(out, "Run %d  %s  (%s%% visibility)\n",
					run.Number, run.Run.Timestamp.Format("2006-01-02 15:04"), formatFloat(run.Metric.Visibility))

				rows := make([][]string, 0, len(run.Brands))
				for _, b := range run.Brands {
					mark := "-"
					if b.Mentioned {
						mark = fmt.Sprintf("#%d", b.Position)
					}
					rows = append(rows, []string{b.BrandName, mark, string(b.Sentiment)})
				}
				if err := printTable(out, []string{"BRAND", "RANK", "SENTIMENT"}, rows); err != nil {
					return err
				}

				for _, c := range run.Run.Citations {
					fmt.Fprintf(out, "  [%d] %s %s\n", c.Order, c.Domain, c.URL)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&runNumber, "run", 0, "Show only this run (1-based)")

	return cmd
}
