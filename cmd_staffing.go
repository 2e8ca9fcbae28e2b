package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sla-insights/formatter"
	"sla-insights/scheduler"
)

func newStaffingCmd(a *app) *cobra.Command {
	var (
		filters     filterFlags
		utilization float64
		capacity    int
		format      string
	)

	cmd := &cobra.Command{
		Use:   "staffing",
		Short: "Agents needed per arrival hour and queue, with capacity-constrained allocation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := formatter.ValidateFormat(format, formatter.TextFormat, formatter.JSONFormat, formatter.CSVFormat); err != nil {
				return err
			}
			if !cmd.Flags().Changed("utilization") {
				utilization = a.cfg.Staffing.Utilization
			}
			if !cmd.Flags().Changed("capacity") {
				capacity = a.cfg.Staffing.Capacity
			}
			cases, err := a.selectCases(cmd, &filters)
			if err != nil {
				return err
			}

			schedule, err := scheduler.GenerateSchedule(cases, utilization, capacity)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatter.JSONFormat:
				fmt.Fprint(out, formatter.FormatScheduleJSON(schedule))
			case formatter.CSVFormat:
				fmt.Fprint(out, formatter.FormatScheduleCSV(schedule))
			default:
				fmt.Fprint(out, formatter.FormatScheduleText(schedule))
			}
			return nil
		},
	}

	filters.bind(cmd)
	cmd.Flags().Float64Var(&utilization, "utilization", 1.0, "Utilization multiplier (between 0 and 1)")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "Maximum agent capacity per hour (0 = unlimited)")
	cmd.Flags().StringVar(&format, "format", formatter.TextFormat, "Output format: text|json|csv")
	return cmd
}
