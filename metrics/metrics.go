// Package metrics provides Prometheus observability metrics for the SLA insights pipeline.
// It covers data quality at load time and the volume of analysis work performed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// DATA QUALITY METRICS - Load and Join Visibility
// =============================================================================

// ParserRowsTotal tracks rows read per source file.
var ParserRowsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "rows_total",
	Help:      "Total CSV rows read, by source",
}, []string{"source"})

// ParserErrorsTotal tracks malformed source files.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total source files rejected as malformed CSV, by source",
}, []string{"source"})

// ParserDurationSeconds tracks time to read both sources.
var ParserDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to read the state and insight CSV files",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// CasesJoinedTotal tracks cases produced by the normalizer.
var CasesJoinedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "normalizer",
	Name:      "cases_joined_total",
	Help:      "Total cases produced by joining state and insight rows",
})

// RowsDroppedTotal tracks rows that did not become cases.
// High values mean the two sources disagree on which cases exist.
var RowsDroppedTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "normalizer",
	Name:      "rows_dropped_total",
	Help:      "Rows dropped during the join, by reason",
}, []string{"reason"})

// RepositoryCases tracks the size of the currently loaded repository.
var RepositoryCases = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "repository",
	Name:      "cases",
	Help:      "Number of cases in the loaded repository",
})

// =============================================================================
// ANALYSIS METRICS - Operational Health
// =============================================================================

// SimulationsTotal tracks simulations run.
var SimulationsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "simulation",
	Name:      "runs_total",
	Help:      "Total what-if simulations evaluated",
})

// InvalidScenariosTotal tracks scenarios rejected at the boundary.
var InvalidScenariosTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "simulation",
	Name:      "invalid_scenarios_total",
	Help:      "Total simulations rejected because of invalid scenario parameters",
})

// ReportDurationSeconds tracks time to build a full report.
var ReportDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "aggregate",
	Name:      "report_duration_seconds",
	Help:      "Time taken to compute all report views",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// HighRiskCases tracks the high-risk count of the last report.
var HighRiskCases = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "aggregate",
	Name:      "high_risk_cases",
	Help:      "Number of High risk cases in the last computed report",
})

// AgentsDemandedTotal tracks total agent demand of the last staffing schedule.
var AgentsDemandedTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "scheduler",
	Name:      "agents_demanded_total",
	Help:      "Total number of agents demanded across all queues and hours",
})

// AgentsUnmetTotal tracks agent demand that exceeded hourly capacity.
// High values indicate capacity planning issues.
var AgentsUnmetTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "scheduler",
	Name:      "agents_unmet_total",
	Help:      "Total number of agents that could not be allocated due to capacity constraints",
})

// HoursWithUnmetDemand tracks number of hours where capacity was exceeded.
var HoursWithUnmetDemand = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "scheduler",
	Name:      "hours_with_unmet_demand",
	Help:      "Number of hours in the schedule where demand exceeded capacity",
})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetLoadGauges resets gauges tied to a loaded dataset.
// Call this before replacing the repository.
func ResetLoadGauges() {
	RepositoryCases.Set(0)
	HighRiskCases.Set(0)
}

// ResetSchedulerGauges resets all scheduler gauges before a new scheduling run.
func ResetSchedulerGauges() {
	AgentsDemandedTotal.Set(0)
	AgentsUnmetTotal.Set(0)
	HoursWithUnmetDemand.Set(0)
}
