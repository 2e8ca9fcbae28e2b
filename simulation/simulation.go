// Package simulation projects SLA-breach risk for a case under hypothetical
// staffing, queue and automation parameters.
package simulation

import (
	"fmt"
	"math"
	"strings"

	"sla-insights/errors"
	"sla-insights/metrics"
	"sla-insights/models"
)

const (
	// maxAutomationDiscount is the largest share of load automation can remove.
	maxAutomationDiscount = 0.3

	minRisk = 5.0
	maxRisk = 95.0

	// breachLoadThreshold is the adjusted load above which a breach is projected.
	breachLoadThreshold = 40.0
	// breachSLAFraction of the SLA limit is the projected time to breach.
	breachSLAFraction = 0.3

	complexityWeight = 10.0
)

// Validate rejects scenarios the model cannot evaluate.
func Validate(p models.ScenarioParameters) error {
	if p.ActiveAgents <= 0 {
		return fmt.Errorf("%w: active agents must be positive (got %d)", errors.ErrInvalidScenario, p.ActiveAgents)
	}
	if p.QueueDepth < 0 {
		return fmt.Errorf("%w: queue depth must not be negative (got %d)", errors.ErrInvalidScenario, p.QueueDepth)
	}
	if math.IsNaN(p.AutomationLevelPct) || p.AutomationLevelPct < 0 || p.AutomationLevelPct > 100 {
		return fmt.Errorf("%w: automation level must be within 0-100%% (got %v)", errors.ErrInvalidScenario, p.AutomationLevelPct)
	}
	return nil
}

// Simulate projects the case's load, risk and time to breach under p.
// It is pure: the same inputs always give the same result.
func Simulate(c models.Case, p models.ScenarioParameters) (models.SimulationResult, error) {
	if err := Validate(p); err != nil {
		metrics.InvalidScenariosTotal.Inc()
		return models.SimulationResult{}, err
	}
	metrics.SimulationsTotal.Inc()

	projected := float64(p.QueueDepth) / float64(p.ActiveAgents) * (float64(c.AvgHandleTimeMinutes) / 60)
	discount := 1 - (p.AutomationLevelPct/100)*maxAutomationDiscount
	load := projected * discount

	risk := riskCurve(load) + c.ComplexityScore*complexityWeight
	risk = math.Min(maxRisk, math.Max(minRisk, risk))

	result := models.SimulationResult{
		SimulatedLoadIndex: load,
		SimulatedRiskPct:   risk,
		RiskReductionPct:   c.PredictedSLARisk - risk,
	}
	if load > breachLoadThreshold {
		minutes := int(math.Round(float64(c.SLALimitMinutes) * breachSLAFraction))
		result.ProjectedTimeToBreachMinutes = &minutes
	}
	return result, nil
}

// riskCurve maps adjusted load to a base risk percentage.
func riskCurve(load float64) float64 {
	switch {
	case load > 50:
		return math.Min(maxRisk, 50+(load-50)*0.9)
	case load > 20:
		return 30 + (load-20)*0.67
	default:
		return load * 1.5
	}
}

// AutomationPct maps an Automation_Level label to a percentage.
// Unknown labels count as manual.
func AutomationPct(label string) float64 {
	normalized := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(label))
	switch normalized {
	case "auto", "automated", "full", "fullauto", "fullyautomated":
		return 100
	case "semiauto", "partial", "hybrid", "assisted":
		return 50
	default:
		return 0
	}
}

// ParametersFor returns the case's own operating point as scenario parameters.
// A case recorded with no agents is evaluated with one.
func ParametersFor(c models.Case) models.ScenarioParameters {
	return models.ScenarioParameters{
		ActiveAgents:       max(1, c.ActiveAgents),
		QueueDepth:         max(0, c.QueueDepth),
		AutomationLevelPct: AutomationPct(c.AutomationLevel),
	}
}

// CaseSimulation pairs a case with its projection.
type CaseSimulation struct {
	Case   models.Case
	Result models.SimulationResult
}

// SimulateAll runs the same scenario over every case, in order.
func SimulateAll(cases []models.Case, p models.ScenarioParameters) ([]CaseSimulation, error) {
	if err := Validate(p); err != nil {
		metrics.InvalidScenariosTotal.Inc()
		return nil, err
	}
	out := make([]CaseSimulation, 0, len(cases))
	for _, c := range cases {
		r, err := Simulate(c, p)
		if err != nil {
			return nil, err
		}
		out = append(out, CaseSimulation{Case: c, Result: r})
	}
	return out, nil
}
