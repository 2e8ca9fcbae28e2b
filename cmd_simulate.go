package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sla-insights/aggregate"
	"sla-insights/errors"
	"sla-insights/formatter"
	"sla-insights/models"
	"sla-insights/query"
	"sla-insights/simulation"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		caseID     string
		agents     int
		queueDepth int
		automation float64
		fromCase   bool
		highRisk   int
		format     string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project SLA risk under hypothetical staffing, queue and automation levels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := formatter.ValidateFormat(format, formatter.TextFormat, formatter.JSONFormat); err != nil {
				return err
			}
			if caseID == "" && highRisk <= 0 {
				return fmt.Errorf("either --case or --high-risk is required")
			}
			repo, err := a.load(cmd.Context())
			if err != nil {
				return err
			}

			params := a.cfg.Scenario
			flags := cmd.Flags()
			override := func(p models.ScenarioParameters) models.ScenarioParameters {
				if flags.Changed("agents") {
					p.ActiveAgents = agents
				}
				if flags.Changed("queue-depth") {
					p.QueueDepth = queueDepth
				}
				if flags.Changed("automation") {
					p.AutomationLevelPct = automation
				}
				return p
			}
			out := cmd.OutOrStdout()

			if caseID == "" {
				params = override(params)
				candidates := query.Filter(repo.All(), query.Filters{RiskLevel: string(models.RiskHigh)})
				results, err := simulation.SimulateAll(aggregate.Top(candidates, highRisk), params)
				if err != nil {
					return err
				}
				if format == formatter.JSONFormat {
					views := make([]formatter.SimulationView, len(results))
					for i, r := range results {
						views[i] = formatter.NewSimulationView(r.Case, params, r.Result, nil)
					}
					s, err := formatter.FormatJSON(views)
					if err != nil {
						return err
					}
					fmt.Fprint(out, s)
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "Case ID\tQueue\tCurrent %\tSimulated %\tReduction")
				for _, r := range results {
					fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.1f\n", r.Case.CaseID, r.Case.QueueName,
						r.Case.PredictedSLARisk, r.Result.SimulatedRiskPct, r.Result.RiskReductionPct)
				}
				return tw.Flush()
			}

			c, ok := repo.Get(caseID)
			if !ok {
				return fmt.Errorf("%w: %s", errors.ErrCaseNotFound, caseID)
			}
			if fromCase {
				params = simulation.ParametersFor(c)
			}
			params = override(params)

			result, err := simulation.Simulate(c, params)
			if err != nil {
				return err
			}
			actions, err := simulation.RankActions(c, params)
			if err != nil {
				return err
			}

			view := formatter.NewSimulationView(c, params, result, actions)
			if format == formatter.JSONFormat {
				s, err := formatter.FormatJSON(view)
				if err != nil {
					return err
				}
				fmt.Fprint(out, s)
				return nil
			}
			fmt.Fprint(out, formatter.FormatSimulationText(view))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&caseID, "case", "", "Case to simulate")
	fs.IntVar(&agents, "agents", 0, "Active agents in the scenario (default from config)")
	fs.IntVar(&queueDepth, "queue-depth", 0, "Queue depth in the scenario (default from config)")
	fs.Float64Var(&automation, "automation", 0, "Automation level 0-100% in the scenario (default from config)")
	fs.BoolVar(&fromCase, "from-case", false, "Start from the case's own agents, queue depth and automation level")
	fs.IntVar(&highRisk, "high-risk", 0, "Simulate the first N High risk cases instead of one case")
	fs.StringVar(&format, "format", formatter.TextFormat, "Output format: text|json")
	return cmd
}
