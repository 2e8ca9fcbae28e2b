package models

import "time"

// Row is one raw source record keyed by CSV header name.
// Only the parser and normalizer operate on rows.
type Row map[string]string

// RiskLevel is the categorical risk band supplied by the insight source.
// It is trusted as given and never re-derived from PredictedSLARisk.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// Case is one service-queue work item joined from a state row and an insight row.
// Cases are created by the normalizer and are read-only afterwards.
type Case struct {
	CaseID    string `json:"case_id"`
	CaseType  string `json:"case_type"`
	QueueName string `json:"queue_name"`

	// Timestamp is the raw arrival value; ArrivedAt is only meaningful when TimestampValid is set.
	Timestamp      string    `json:"timestamp"`
	ArrivedAt      time.Time `json:"arrived_at,omitzero"`
	TimestampValid bool      `json:"-"`

	ArrivalHour          int     `json:"arrival_hour"`
	DayOfWeek            int     `json:"day_of_week"`
	SLALimitMinutes      int     `json:"sla_limit_minutes"`
	QueueDepth           int     `json:"queue_depth"`
	ActiveAgents         int     `json:"active_agents"`
	AvgHandleTimeMinutes int     `json:"avg_handle_time_minutes"`
	ComplexityScore      float64 `json:"complexity_score"`
	LoadIndex            float64 `json:"load_index"`
	AgentSkillLevel      string  `json:"agent_skill_level"`
	AutomationLevel      string  `json:"automation_level"`

	PredictedSLARisk             float64   `json:"predicted_sla_risk"`
	RiskLevel                    RiskLevel `json:"risk_level"`
	EstimatedTimeToBreachMinutes *int      `json:"estimated_time_to_breach_minutes"`
	OperationalBottleneck        *string   `json:"operational_bottleneck"`
	RecommendedAction            *string   `json:"recommended_action"`
	ExpectedRiskAfterAction      float64   `json:"expected_risk_after_action"`
}

// IsHighRisk reports whether the case is in the High risk band.
func (c Case) IsHighRisk() bool {
	return c.RiskLevel == RiskHigh
}

// ExpectedRiskReduction is the drop in predicted risk if the recommended action is taken.
func (c Case) ExpectedRiskReduction() float64 {
	return c.PredictedSLARisk - c.ExpectedRiskAfterAction
}

// ScenarioParameters describes a hypothetical operating point for simulation.
type ScenarioParameters struct {
	ActiveAgents       int     `json:"active_agents" yaml:"active_agents"`
	QueueDepth         int     `json:"queue_depth" yaml:"queue_depth"`
	AutomationLevelPct float64 `json:"automation_level_pct" yaml:"automation_level_pct"`
}

// SimulationResult is the projection of one case under a scenario.
type SimulationResult struct {
	SimulatedLoadIndex           float64 `json:"simulated_load_index"`
	SimulatedRiskPct             float64 `json:"simulated_risk_pct"`
	RiskReductionPct             float64 `json:"risk_reduction_pct"`
	ProjectedTimeToBreachMinutes *int    `json:"projected_time_to_breach_minutes,omitempty"`
}

// Schedule represents the agent requirements per arrival hour derived from case workload.
type Schedule struct {
	// HourlyRequirements maps hour (0-23) to a list of queue requirements
	HourlyRequirements [][]QueueRequirement
	// UnmetDemands tracks hours where capacity was exceeded
	UnmetDemands []UnmetDemand
	// Days is the number of distinct arrival dates the workload was averaged over
	Days int
}

// QueueRequirement holds the number of agents needed for a queue in one hour.
type QueueRequirement struct {
	Queue        string
	AgentsNeeded int
	Cases        int
	Priority     int
}

// UnmetDemand tracks when demand cannot be met due to capacity constraints
type UnmetDemand struct {
	Hour            int
	TotalDemand     int
	AllocatedAgents int
	UnmetAgents     int
	ImpactedQueues  []ImpactedQueue
}

// ImpactedQueue represents a queue whose demand was not fully met
type ImpactedQueue struct {
	Queue           string `json:"queue"`
	RequestedAgents int    `json:"requested_agents"`
	AllocatedAgents int    `json:"allocated_agents"`
	UnmetAgents     int    `json:"unmet_agents"`
	Priority        int    `json:"priority"`
}
