package cli

import (
	"fmt"
	"strconv"

	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/spf13/cobra"
)

// NewBrandsCmd creates the 'brands' command listing brands by visibility
func NewBrandsCmd(opts *Options) *cobra.Command {
	var rangeToken string

	cmd := &cobra.Command{
		Use:   "brands",
		Short: "List brands ranked by visibility",
		Example: `  visctl brands --dataset data.json
  visctl brands --dataset data.json --range 7d
  visctl brands --sqlite visibility.db --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, closeFn, err := openFacade(opts)
			defer closeFn()
			if err != nil {
				return err
			}

			window, err := models.ParseRange(rangeToken, facade.Now())
			if err != nil {
				return err
			}
			brands, err := facade.ListBrandsWithMetrics(window)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, brands)
			}

			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Brands (%d)", len(brands))))
			rows := make([][]string, 0, len(brands))
			for i, b := range brands {
				rows = append(rows, []string{
					strconv.Itoa(i + 1), b.Brand.DisplayName, string(b.Brand.Kind),
					formatFloat(b.Metric.Visibility) + "%", formatPosition(b.Metric.AvgPosition),
					strconv.Itoa(b.Metric.MentionCount), formatTrend(b.Trend),
				})
			}
			return printTable(out, []string{"#", "BRAND", "TYPE", "VISIBILITY", "AVG POS", "MENTIONS", "TREND"}, rows)
		},
	}

	cmd.Flags().StringVarP(&rangeToken, "range", "r", "all", "Time range (e.g. 24h, 7d, 30d, all)")

	return cmd
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPosition(v float64) string {
	if v <= 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatTrend(t models.Trend) string {
	if t.Provisional {
		return "n/a"
	}
	switch t.Direction {
	case models.TrendUp:
		return "↑ +" + formatFloat(t.Delta)
	case models.TrendDown:
		return "↓ " + formatFloat(t.Delta)
	default:
		return "→ " + formatFloat(t.Delta)
	}
}
