package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sla-insights/aggregate"
	"sla-insights/formatter"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		format  string
		top     int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Risk distributions, root causes, trends and heatmaps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := formatter.ValidateFormat(format, formatter.TextFormat, formatter.JSONFormat); err != nil {
				return err
			}
			cases, err := a.selectCases(cmd, &filters)
			if err != nil {
				return err
			}
			if top == 0 {
				top = a.cfg.Report.TopActions
			}

			report := aggregate.BuildReport(cases, top)
			out := cmd.OutOrStdout()
			if format == formatter.JSONFormat {
				s, err := formatter.FormatJSON(report)
				if err != nil {
					return err
				}
				fmt.Fprint(out, s)
				return nil
			}
			fmt.Fprint(out, formatter.FormatReportText(report, a.stats))
			return nil
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVar(&format, "format", formatter.TextFormat, "Output format: text|json")
	cmd.Flags().IntVar(&top, "top", 0, "Number of top actions (0 = config report.top_actions)")
	return cmd
}
