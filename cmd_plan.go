package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sla-insights/aggregate"
	"sla-insights/formatter"
)

func newPlanCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		groupBy string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Group recommended actions for operational planning",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := formatter.ValidateFormat(format, formatter.TextFormat, formatter.JSONFormat); err != nil {
				return err
			}
			field, err := aggregate.ParseGroupField(groupBy)
			if err != nil {
				return err
			}
			cases, err := a.selectCases(cmd, &filters)
			if err != nil {
				return err
			}

			groups := aggregate.ActionGroups(cases, field)
			out := cmd.OutOrStdout()
			if format == formatter.JSONFormat {
				s, err := formatter.FormatJSON(groups)
				if err != nil {
					return err
				}
				fmt.Fprint(out, s)
				return nil
			}
			fmt.Fprint(out, formatter.FormatActionGroupsText(groups))
			return nil
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVar(&groupBy, "group-by", string(aggregate.GroupByQueue), "Group by: queue|risk|bottleneck|action")
	cmd.Flags().StringVar(&format, "format", formatter.TextFormat, "Output format: text|json")
	return cmd
}
