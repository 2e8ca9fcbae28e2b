package aggregate

import (
	"fmt"
	"strings"
	"time"

	"sla-insights/metrics"
	"sla-insights/models"
)

// KPIs are the headline numbers of a case set.
type KPIs struct {
	Total           int     `json:"total"`
	High            int     `json:"high"`
	Medium          int     `json:"medium"`
	Low             int     `json:"low"`
	HighRiskPct     float64 `json:"high_risk_pct"`
	AvgRisk         float64 `json:"avg_risk"`
	AvgTimeToBreach float64 `json:"avg_time_to_breach_minutes"`
}

// Summarize computes KPIs. AvgTimeToBreach averages only cases with a breach estimate.
func Summarize(cases []models.Case) KPIs {
	all := single(cases, Spec[struct{}]{Match: IsHighRisk, Value: PredictedRisk})
	breach := single(cases, Spec[struct{}]{
		Filter: func(c models.Case) bool { return c.EstimatedTimeToBreachMinutes != nil },
		Value:  func(c models.Case) float64 { return float64(*c.EstimatedTimeToBreachMinutes) },
	})

	return KPIs{
		Total:           all.Count,
		High:            all.Level(models.RiskHigh),
		Medium:          all.Level(models.RiskMedium),
		Low:             all.Level(models.RiskLow),
		HighRiskPct:     all.Rate(),
		AvgRisk:         all.Mean(),
		AvgTimeToBreach: breach.Mean(),
	}
}

// GroupField selects the grouping of the action planner.
type GroupField string

const (
	GroupByQueue      GroupField = "queue"
	GroupByRisk       GroupField = "risk"
	GroupByBottleneck GroupField = "bottleneck"
	GroupByAction     GroupField = "action"
)

// ParseGroupField validates a planner grouping name.
func ParseGroupField(s string) (GroupField, error) {
	switch f := GroupField(strings.ToLower(strings.TrimSpace(s))); f {
	case GroupByQueue, GroupByRisk, GroupByBottleneck, GroupByAction:
		return f, nil
	}
	return "", fmt.Errorf("unknown group field %q", s)
}

// ActionGroup is one group of the action planner.
type ActionGroup struct {
	Group            string        `json:"group"`
	TotalCases       int           `json:"total_cases"`
	HighRisk         int           `json:"high_risk"`
	AvgRiskReduction float64       `json:"avg_risk_reduction"`
	Cases            []models.Case `json:"-"`
}

// ActionGroups groups cases for action planning. Cases within a group are
// ordered by predicted risk, highest first; groups by high-risk count.
func ActionGroups(cases []models.Case, by GroupField) []ActionGroup {
	key := byQueue
	switch by {
	case GroupByRisk:
		key = byRiskLevel
	case GroupByBottleneck:
		key = byBottleneck
	case GroupByAction:
		key = byAction
	}

	buckets := Group(cases, Spec[string]{
		Key:       key,
		Match:     IsHighRisk,
		Value:     func(c models.Case) float64 { return c.ExpectedRiskReduction() },
		KeepCases: true,
	})
	SortStable(buckets, ByMatchedDesc[string])

	out := make([]ActionGroup, len(buckets))
	for i, b := range buckets {
		members := b.Cases
		SortStable(members, func(x, y models.Case) bool { return x.PredictedSLARisk > y.PredictedSLARisk })
		out[i] = ActionGroup{
			Group:            b.Key,
			TotalCases:       b.Count,
			HighRisk:         b.Matched,
			AvgRiskReduction: b.Mean(),
			Cases:            members,
		}
	}
	return out
}

// BottleneckInsight is one root cause with its share of all high-risk cases.
type BottleneckInsight struct {
	RootCause
	ShareOfHighRisk float64 `json:"share_of_high_risk"`
}

// BottleneckShare finds the first root cause whose name contains substr
// (case-insensitive) and reports its share of all high-risk cases.
func BottleneckShare(cases []models.Case, substr string) (BottleneckInsight, bool) {
	summary := RootCauseSummary(cases)
	totalHigh := 0
	for _, rc := range summary {
		totalHigh += rc.HighRiskCount
	}
	needle := strings.ToLower(substr)
	for _, rc := range summary {
		if strings.Contains(strings.ToLower(rc.Bottleneck), needle) {
			return BottleneckInsight{RootCause: rc, ShareOfHighRisk: Percent(rc.HighRiskCount, totalHigh)}, true
		}
	}
	return BottleneckInsight{}, false
}

// Labels of the levels that mark a high-risk case as skill- or automation-bound.
const (
	ExpertSkillLevel      = "Expert"
	ManualAutomationLevel = "Manual"
)

// Contributors counts high-risk cases by contributing factor.
type Contributors struct {
	SkillDependency int     `json:"skill_dependency"` // High risk cases that need an Expert agent
	AutomationGaps  int     `json:"automation_gaps"`  // High risk cases handled manually
	AvgLoadIndex    float64 `json:"avg_load_index"`
}

// ContributingFactors computes the skill and automation counts and the
// load index averaged over every case.
func ContributingFactors(cases []models.Case) Contributors {
	expert := single(cases, Spec[struct{}]{Filter: func(c models.Case) bool {
		return c.IsHighRisk() && c.AgentSkillLevel == ExpertSkillLevel
	}})
	manual := single(cases, Spec[struct{}]{Filter: func(c models.Case) bool {
		return c.IsHighRisk() && c.AutomationLevel == ManualAutomationLevel
	}})
	load := single(cases, Spec[struct{}]{Value: LoadIndex})

	return Contributors{
		SkillDependency: expert.Count,
		AutomationGaps:  manual.Count,
		AvgLoadIndex:    load.Mean(),
	}
}

// single accumulates every case that passes spec.Filter into one bucket.
func single(cases []models.Case, spec Spec[struct{}]) Bucket[struct{}] {
	spec.Key = func(models.Case) (struct{}, bool) { return struct{}{}, true }
	spec.Seed = []struct{}{{}}
	return Group(cases, spec)[0]
}

// KeyInsights are the narrative numbers of the reports page.
type KeyInsights struct {
	TotalCases    int        `json:"total_cases"`
	HighRiskCases int        `json:"high_risk_cases"`
	HighRiskPct   float64    `json:"high_risk_pct"`
	AvgRisk       float64    `json:"avg_risk"`
	PeakHour      TimeBucket `json:"peak_hour"`
	PeakDay       TimeBucket `json:"peak_day"`
	TopBottleneck string     `json:"top_bottleneck"`
}

// Insights derives the peak hour and day (highest average risk, earliest on ties)
// and the most frequent bottleneck.
func Insights(cases []models.Case) KeyInsights {
	kpis := Summarize(cases)
	insights := KeyInsights{
		TotalCases:    kpis.Total,
		HighRiskCases: kpis.High,
		HighRiskPct:   kpis.HighRiskPct,
		AvgRisk:       kpis.AvgRisk,
		PeakHour:      peak(HourlyRisk(cases)),
		PeakDay:       peak(WeekdayRisk(cases)),
		TopBottleneck: NoneLabel,
	}

	buckets := Group(cases, Spec[string]{Key: byBottleneck})
	SortStable(buckets, ByCountDesc[string])
	if len(buckets) > 0 {
		insights.TopBottleneck = buckets[0].Key
	}
	return insights
}

func peak(buckets []TimeBucket) TimeBucket {
	best := buckets[0]
	for _, b := range buckets[1:] {
		if b.AvgRisk > best.AvgRisk {
			best = b
		}
	}
	return best
}

// Report bundles every view of a case set.
type Report struct {
	KPIs             KPIs               `json:"kpis"`
	Insights         KeyInsights        `json:"insights"`
	RiskDistribution []Count            `json:"risk_distribution"`
	Bottlenecks      []Count            `json:"bottleneck_distribution"`
	TopActions       []Count            `json:"top_actions"`
	RootCauses       []RootCause        `json:"root_causes"`
	Staffing         *BottleneckInsight `json:"staffing,omitempty"`
	Workload         *BottleneckInsight `json:"workload,omitempty"`
	Contributors     Contributors       `json:"contributors"`
	Complexity       []ComplexityBucket `json:"complexity_risk"`
	DailyTrend       []TrendPoint       `json:"daily_trend"`
	Hourly           []TimeBucket       `json:"hourly_risk"`
	Weekday          []TimeBucket       `json:"weekday_risk"`
	CaseTypes        []SegmentRisk      `json:"case_type_risk"`
	Queues           []SegmentRisk      `json:"queue_risk"`
}

// BuildReport computes every view. topActions bounds the TopActions list.
func BuildReport(cases []models.Case, topActions int) Report {
	start := time.Now()
	defer func() {
		metrics.ReportDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	report := Report{
		KPIs:             Summarize(cases),
		Insights:         Insights(cases),
		RiskDistribution: RiskDistribution(cases),
		Bottlenecks:      BottleneckDistribution(cases),
		TopActions:       TopActions(cases, topActions),
		RootCauses:       RootCauseSummary(cases),
		Contributors:     ContributingFactors(cases),
		Complexity:       ComplexityRisk(cases),
		DailyTrend:       DailyTrend(cases),
		Hourly:           HourlyRisk(cases),
		Weekday:          WeekdayRisk(cases),
		CaseTypes:        CaseTypeRisk(cases),
		Queues:           QueueRisk(cases),
	}
	if s, ok := BottleneckShare(cases, "staffing"); ok {
		report.Staffing = &s
	}
	if w, ok := BottleneckShare(cases, "workload"); ok {
		report.Workload = &w
	}

	metrics.HighRiskCases.Set(float64(report.KPIs.High))
	return report
}
