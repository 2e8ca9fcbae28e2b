package formatter

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"sla-insights/aggregate"
	"sla-insights/models"
	"sla-insights/normalizer"
	"sla-insights/simulation"
)

// FormatReportText renders every report view as plain text sections.
func FormatReportText(report aggregate.Report, stats normalizer.JoinStats) string {
	var sb strings.Builder

	k := report.KPIs
	sb.WriteString("== Overview ==\n")
	sb.WriteString(fmt.Sprintf("Cases: %d (state rows %d, insight rows %d, dropped %d)\n",
		k.Total, stats.StateRows, stats.InsightRows, stats.Dropped()+stats.UnmatchedInsight))
	sb.WriteString(fmt.Sprintf("Risk: High=%d Medium=%d Low=%d ; high-risk %.1f%% ; avg risk %.1f%%\n",
		k.High, k.Medium, k.Low, k.HighRiskPct, k.AvgRisk))
	sb.WriteString(fmt.Sprintf("Avg time to breach: %.0f min\n", k.AvgTimeToBreach))

	in := report.Insights
	sb.WriteString(fmt.Sprintf("Peak hour: %s (avg risk %.1f%%) ; peak day: %s (avg risk %.1f%%) ; top bottleneck: %s\n",
		in.PeakHour.Label, in.PeakHour.AvgRisk, in.PeakDay.Label, in.PeakDay.AvgRisk, in.TopBottleneck))

	writeCounts(&sb, "Risk distribution", report.RiskDistribution)
	writeCounts(&sb, "Bottleneck distribution", report.Bottlenecks)
	writeCounts(&sb, "Top actions", report.TopActions)

	sb.WriteString("\n== Root causes ==\n")
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Bottleneck\tCases\tHigh risk\tHigh risk %\tAvg load")
	for _, rc := range report.RootCauses {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%.2f\n", rc.Bottleneck, rc.Count, rc.HighRiskCount, rc.HighRiskPct, rc.AvgLoadIndex)
	}
	tw.Flush()
	for _, b := range []*aggregate.BottleneckInsight{report.Staffing, report.Workload} {
		if b != nil {
			sb.WriteString(fmt.Sprintf("%s: %d high-risk cases (%.1f%% of all high-risk), avg load %.2f\n",
				b.Bottleneck, b.HighRiskCount, b.ShareOfHighRisk, b.AvgLoadIndex))
		}
	}

	cf := report.Contributors
	sb.WriteString(fmt.Sprintf("Skill dependency: %d expert-dependent high-risk cases ; automation gaps: %d manual high-risk cases ; avg load %.2f\n",
		cf.SkillDependency, cf.AutomationGaps, cf.AvgLoadIndex))

	sb.WriteString("\n== Complexity vs risk ==\n")
	tw = tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Complexity\tCases\tHigh risk\tRisk rate %")
	for _, c := range report.Complexity {
		fmt.Fprintf(tw, "%.1f\t%d\t%d\t%.1f\n", c.Complexity, c.TotalCases, c.HighRiskCases, c.RiskRate)
	}
	tw.Flush()

	sb.WriteString("\n== Daily trend ==\n")
	tw = tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tTotal\tHigh\tMedium\tLow\tAvg risk %")
	for _, p := range report.DailyTrend {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.1f\n", p.Date, p.Total, p.High, p.Medium, p.Low, p.AvgRisk)
	}
	tw.Flush()

	writeTimeBuckets(&sb, "Risk by arrival hour", report.Hourly)
	writeTimeBuckets(&sb, "Risk by weekday", report.Weekday)
	writeSegments(&sb, "Risk by case type", report.CaseTypes)
	writeSegments(&sb, "Risk by queue", report.Queues)

	return sb.String()
}

func writeCounts(sb *strings.Builder, title string, counts []aggregate.Count) {
	sb.WriteString(fmt.Sprintf("\n== %s ==\n", title))
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", c.Key, c.Count))
	}
}

func writeTimeBuckets(sb *strings.Builder, title string, buckets []aggregate.TimeBucket) {
	sb.WriteString(fmt.Sprintf("\n== %s ==\n", title))
	tw := tabwriter.NewWriter(sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Slot\tTotal\tHigh risk\tAvg risk %\tRisk rate %")
	for _, b := range buckets {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%.1f\n", b.Label, b.Total, b.HighRisk, b.AvgRisk, b.RiskRate)
	}
	tw.Flush()
}

func writeSegments(sb *strings.Builder, title string, segments []aggregate.SegmentRisk) {
	sb.WriteString(fmt.Sprintf("\n== %s ==\n", title))
	tw := tabwriter.NewWriter(sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Segment\tTotal\tHigh\tMedium\tLow\tAvg risk %\tHigh risk %")
	for _, s := range segments {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.1f\t%.1f\n", s.Key, s.Total, s.High, s.Medium, s.Low, s.AvgRisk, s.HighRiskRate)
	}
	tw.Flush()
}

// FormatCasesText renders cases as an aligned table.
func FormatCasesText(cases []models.Case) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Case ID\tType\tQueue\tRisk %\tLevel\tBreach\tBottleneck\tAction")
	for _, c := range cases {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.CaseID, c.CaseType, c.QueueName, percent(c.PredictedSLARisk), c.RiskLevel,
			minutesLabel(c.EstimatedTimeToBreachMinutes),
			aggregate.Label(c.OperationalBottleneck), aggregate.ActionLabel(c.RecommendedAction))
	}
	tw.Flush()
	return sb.String()
}

// FormatActionGroupsText renders the action planner grouping.
func FormatActionGroupsText(groups []aggregate.ActionGroup) string {
	var sb strings.Builder
	for _, g := range groups {
		sb.WriteString(fmt.Sprintf("%s: %d cases, %d high risk, avg expected reduction %.1f%%\n",
			g.Group, g.TotalCases, g.HighRisk, g.AvgRiskReduction))
		for _, c := range g.Cases {
			sb.WriteString(fmt.Sprintf("  %s  %s%%  %s  -> %s (confidence %s)\n",
				c.CaseID, percent(c.PredictedSLARisk), c.RiskLevel,
				aggregate.ActionLabel(c.RecommendedAction),
				simulation.ConfidenceFor(c.ExpectedRiskReduction())))
		}
	}
	return sb.String()
}

// SimulationView is the current-versus-simulated comparison of one case.
type SimulationView struct {
	CaseID    string                    `json:"case_id"`
	Params    models.ScenarioParameters `json:"params"`
	Current   Snapshot                  `json:"current"`
	Simulated Snapshot                  `json:"simulated"`
	Reduction float64                   `json:"risk_reduction_pct"`
	Actions   []simulation.ActionImpact `json:"actions,omitempty"`
}

// Snapshot is one side of a simulation comparison.
type Snapshot struct {
	RiskPct      float64 `json:"risk_pct"`
	LoadIndex    float64 `json:"load_index"`
	TimeToBreach *int    `json:"time_to_breach_minutes,omitempty"`
}

// NewSimulationView pairs a case's current figures with a simulation result.
func NewSimulationView(c models.Case, p models.ScenarioParameters, r models.SimulationResult, actions []simulation.ActionImpact) SimulationView {
	return SimulationView{
		CaseID: c.CaseID,
		Params: p,
		Current: Snapshot{
			RiskPct:      c.PredictedSLARisk,
			LoadIndex:    c.LoadIndex,
			TimeToBreach: c.EstimatedTimeToBreachMinutes,
		},
		Simulated: Snapshot{
			RiskPct:      r.SimulatedRiskPct,
			LoadIndex:    r.SimulatedLoadIndex,
			TimeToBreach: r.ProjectedTimeToBreachMinutes,
		},
		Reduction: r.RiskReductionPct,
		Actions:   actions,
	}
}

// FormatSimulationText renders a simulation comparison. A negative reduction
// is reported as an increase.
func FormatSimulationText(v SimulationView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Case %s  (agents=%d, queue depth=%d, automation=%.0f%%)\n",
		v.CaseID, v.Params.ActiveAgents, v.Params.QueueDepth, v.Params.AutomationLevelPct))

	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tCurrent\tSimulated")
	fmt.Fprintf(tw, "SLA risk %%\t%.1f\t%.1f\n", v.Current.RiskPct, v.Simulated.RiskPct)
	fmt.Fprintf(tw, "Load index\t%.2f\t%.2f\n", v.Current.LoadIndex, v.Simulated.LoadIndex)
	fmt.Fprintf(tw, "Time to breach\t%s\t%s\n", minutesLabel(v.Current.TimeToBreach), minutesLabel(v.Simulated.TimeToBreach))
	tw.Flush()

	if v.Reduction >= 0 {
		sb.WriteString(fmt.Sprintf("Risk reduction: %.1f points\n", v.Reduction))
	} else {
		sb.WriteString(fmt.Sprintf("Risk increase: %.1f points\n", -v.Reduction))
	}

	if len(v.Actions) > 0 {
		best := v.Actions[0]
		sb.WriteString(fmt.Sprintf("Best action: %s (impact %.1f, confidence %s)\n", best.Name, best.Impact, best.Confidence))
		for _, a := range v.Actions[1:] {
			sb.WriteString(fmt.Sprintf("  alternative: %s (impact %.1f, confidence %s)\n", a.Name, a.Impact, a.Confidence))
		}
	}
	return sb.String()
}
