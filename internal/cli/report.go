package cli

import (
	"fmt"
	"strconv"

	"github.com/aiseo/brand-visibility/internal/config"
	"github.com/aiseo/brand-visibility/internal/reporting"
	"github.com/spf13/cobra"
)

// NewReportCmd creates the 'report' command which builds a report offline
// without archiving or sending it
func NewReportCmd(opts *Options) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a daily or weekly visibility report",
		Example: `  visctl report --dataset data.json
  visctl report --dataset data.json --period daily --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if period != "daily" && period != "weekly" {
				return fmt.Errorf("period must be 'daily' or 'weekly', got %q", period)
			}

			facade, closeFn, err := openFacade(opts)
			defer closeFn()
			if err != nil {
				return err
			}

			svc := reporting.NewService(&config.Config{ReportSchedule: period}, facade, nil, nil)
			report, err := svc.GenerateReport(svc.ReportWindow(facade.Now()))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, report)
			}

			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s visibility report", period)))
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s - %s",
				report.Window.Start.Format("2006-01-02 15:04"), report.Window.End.Format("2006-01-02 15:04"))))
			if report.Primary != nil {
				fmt.Fprintf(out, "Primary: %s at %s%% (%s)\n",
					report.Primary.Name, formatFloat(report.Primary.Visibility), formatTrend(report.Primary.Trend))
			}
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(report.Brands))
			for _, b := range report.Brands {
				rows = append(rows, []string{b.Name, formatFloat(b.Visibility) + "%", strconv.Itoa(b.Mentions), formatTrend(b.Trend)})
			}
			if err := printTable(out, []string{"BRAND", "VISIBILITY", "MENTIONS", "TREND"}, rows); err != nil {
				return err
			}

			if len(report.TopSources) > 0 {
				fmt.Fprintln(out, "\nTop sources:")
				for _, s := range report.TopSources {
					fmt.Fprintf(out, "  %s (%s%%)\n", s.Domain, formatFloat(s.UsageRate))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "weekly", "Report period (daily or weekly)")

	return cmd
}
