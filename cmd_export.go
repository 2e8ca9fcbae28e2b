package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sla-insights/formatter"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		output  string
	)

	cmd := &cobra.Command{
		Use:       "export cases|actions",
		Short:     "Export the case report or the action plan as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"cases", "actions"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := a.selectCases(cmd, &filters)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if args[0] == "actions" {
				err = formatter.WriteActionPlanCSV(w, cases)
			} else {
				err = formatter.WriteCasesCSV(w, cases)
			}
			if err != nil {
				return fmt.Errorf("write %s export: %w", args[0], err)
			}
			if output != "" && output != "-" {
				a.logger.Info("export written", "kind", args[0], "path", output, "cases", len(cases))
			}
			return nil
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
