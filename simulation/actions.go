package simulation

import (
	"sort"

	"sla-insights/models"
)

// Confidence is the qualitative strength of a projected improvement.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// ConfidenceFor labels a risk reduction in percentage points.
func ConfidenceFor(reduction float64) Confidence {
	switch {
	case reduction > 40:
		return ConfidenceHigh
	case reduction > 20:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Perturbation is a canned change to a scenario.
type Perturbation struct {
	Name  string
	Apply func(models.ScenarioParameters) models.ScenarioParameters
}

// Perturbations are the candidate actions evaluated by RankActions, in tie-break order.
var Perturbations = []Perturbation{
	{
		Name: "Add Agents",
		Apply: func(p models.ScenarioParameters) models.ScenarioParameters {
			p.ActiveAgents += 2
			return p
		},
	},
	{
		Name: "Increase Automation",
		Apply: func(p models.ScenarioParameters) models.ScenarioParameters {
			p.AutomationLevelPct = 100
			return p
		},
	},
	{
		Name: "Reduce Queue Depth",
		Apply: func(p models.ScenarioParameters) models.ScenarioParameters {
			p.QueueDepth = max(10, p.QueueDepth-50)
			return p
		},
	},
}

// ActionImpact is the projected effect of one perturbation.
type ActionImpact struct {
	Name       string                    `json:"name"`
	Params     models.ScenarioParameters `json:"params"`
	Result     models.SimulationResult   `json:"result"`
	Impact     float64                   `json:"impact"`
	Confidence Confidence                `json:"confidence"`
}

// RankActions evaluates every perturbation of base and orders them by impact,
// highest first. Impact is the risk reduction floored at zero.
func RankActions(c models.Case, base models.ScenarioParameters) ([]ActionImpact, error) {
	if err := Validate(base); err != nil {
		return nil, err
	}

	ranked := make([]ActionImpact, 0, len(Perturbations))
	for _, pert := range Perturbations {
		params := pert.Apply(base)
		result, err := Simulate(c, params)
		if err != nil {
			return nil, err
		}
		impact := max(0, result.RiskReductionPct)
		ranked = append(ranked, ActionImpact{
			Name:       pert.Name,
			Params:     params,
			Result:     result,
			Impact:     impact,
			Confidence: ConfidenceFor(impact),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Impact > ranked[j].Impact
	})
	return ranked, nil
}

// BestAction returns the highest-impact perturbation of base for the case.
func BestAction(c models.Case, base models.ScenarioParameters) (ActionImpact, error) {
	ranked, err := RankActions(c, base)
	if err != nil {
		return ActionImpact{}, err
	}
	return ranked[0], nil
}
