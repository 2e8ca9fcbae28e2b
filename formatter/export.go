package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"sla-insights/aggregate"
	"sla-insights/models"
)

// NotAvailable is printed for an absent time to breach.
const NotAvailable = "N/A"

// WriteCasesCSV writes the full case report, one row per case.
func WriteCasesCSV(w io.Writer, cases []models.Case) error {
	writer := csv.NewWriter(w)
	writer.Write([]string{
		"Case ID", "Timestamp", "Case Type", "Queue", "SLA Risk %", "Risk Level",
		"Time to Breach", "Bottleneck", "Recommended Action",
	})
	for _, c := range cases {
		writer.Write([]string{
			c.CaseID,
			c.Timestamp,
			c.CaseType,
			c.QueueName,
			percent(c.PredictedSLARisk),
			string(c.RiskLevel),
			minutes(c.EstimatedTimeToBreachMinutes),
			aggregate.Label(c.OperationalBottleneck),
			aggregate.ActionLabel(c.RecommendedAction),
		})
	}
	writer.Flush()
	return writer.Error()
}

// WriteActionPlanCSV writes the action plan: only cases with a recommended action.
func WriteActionPlanCSV(w io.Writer, cases []models.Case) error {
	writer := csv.NewWriter(w)
	writer.Write([]string{
		"Case ID", "Queue", "Case Type", "Current Risk %", "Risk Level", "Recommended Action",
		"Expected Risk After Action %", "Risk Reduction %", "Time to Breach",
	})
	for _, c := range cases {
		if !HasAction(c) {
			continue
		}
		writer.Write([]string{
			c.CaseID,
			c.QueueName,
			c.CaseType,
			percent(c.PredictedSLARisk),
			string(c.RiskLevel),
			*c.RecommendedAction,
			percent(c.ExpectedRiskAfterAction),
			percent(c.ExpectedRiskReduction()),
			minutes(c.EstimatedTimeToBreachMinutes),
		})
	}
	writer.Flush()
	return writer.Error()
}

// HasAction reports whether a case carries an actionable recommendation.
func HasAction(c models.Case) bool {
	return c.RecommendedAction != nil && *c.RecommendedAction != aggregate.NoActionLabel
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func minutes(v *int) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.Itoa(*v)
}

func minutesLabel(v *int) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%d min", *v)
}
