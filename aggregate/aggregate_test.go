package aggregate_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sla-insights/aggregate"
	"sla-insights/models"
)

func ptr[T any](v T) *T { return &v }

type caseOpt func(*models.Case)

func newCase(id string, level models.RiskLevel, opts ...caseOpt) models.Case {
	c := models.Case{CaseID: id, RiskLevel: level, QueueName: "Billing", CaseType: "Refund"}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func bottleneck(s string) caseOpt { return func(c *models.Case) { c.OperationalBottleneck = ptr(s) } }
func action(s string) caseOpt     { return func(c *models.Case) { c.RecommendedAction = ptr(s) } }
func risk(pct float64) caseOpt    { return func(c *models.Case) { c.PredictedSLARisk = pct } }
func load(v float64) caseOpt      { return func(c *models.Case) { c.LoadIndex = v } }
func hour(h int) caseOpt          { return func(c *models.Case) { c.ArrivalHour = h } }
func day(d int) caseOpt           { return func(c *models.Case) { c.DayOfWeek = d } }
func complexity(v float64) caseOpt {
	return func(c *models.Case) { c.ComplexityScore = v }
}
func caseType(s string) caseOpt { return func(c *models.Case) { c.CaseType = s } }
func arrived(ts string) caseOpt {
	return func(c *models.Case) {
		c.Timestamp = ts
		if t, err := time.Parse("2006-01-02T15:04:05", ts); err == nil {
			c.ArrivedAt, c.TimestampValid = t, true
		}
	}
}

func TestGroup_SeedAndEncounterOrder(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskHigh, caseType("B")),
		newCase("2", models.RiskLow, caseType("A")),
		newCase("3", models.RiskHigh, caseType("B")),
	}

	buckets := aggregate.Group(cases, aggregate.Spec[string]{
		Key:   func(c models.Case) (string, bool) { return c.CaseType, true },
		Match: aggregate.IsHighRisk,
		Seed:  []string{"Z"},
	})

	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"Z", "B", "A"}, []string{buckets[0].Key, buckets[1].Key, buckets[2].Key})
	assert.Equal(t, 0, buckets[0].Count)
	assert.Zero(t, buckets[0].Rate())
	assert.Zero(t, buckets[0].Mean())
	assert.Equal(t, 2, buckets[1].Count)
	assert.Equal(t, 2, buckets[1].Matched)
	assert.Equal(t, 2, buckets[1].Level(models.RiskHigh))
	assert.InDelta(t, 100.0, buckets[1].Rate(), 1e-9)
}

func TestGroup_FilterAndKeepCases(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskHigh, risk(80)),
		newCase("2", models.RiskLow, risk(10)),
		newCase("3", models.RiskHigh, risk(60)),
	}

	buckets := aggregate.Group(cases, aggregate.Spec[string]{
		Key:       func(c models.Case) (string, bool) { return string(c.RiskLevel), true },
		Filter:    aggregate.IsHighRisk,
		Value:     aggregate.PredictedRisk,
		KeepCases: true,
	})

	require.Len(t, buckets, 1)
	assert.InDelta(t, 70.0, buckets[0].Mean(), 1e-9)
	assert.Len(t, buckets[0].Cases, 2)
}

func TestRootCauseSummary(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskHigh, bottleneck("Staffing"), load(4)),
		newCase("2", models.RiskHigh, bottleneck("Staffing"), load(6)),
		newCase("3", models.RiskLow, load(1)),
	}

	got := aggregate.RootCauseSummary(cases)
	want := []aggregate.RootCause{
		{Bottleneck: "Staffing", Count: 2, HighRiskCount: 2, HighRiskPct: 100, AvgLoadIndex: 5},
		{Bottleneck: "None", Count: 1, HighRiskCount: 0, HighRiskPct: 0, AvgLoadIndex: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RootCauseSummary mismatch (-want +got):\n%s", diff)
	}
}

func TestRootCauseSummary_TiesKeepEncounterOrder(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskLow, bottleneck("Tooling")),
		newCase("2", models.RiskHigh, bottleneck("Workload Spike")),
		newCase("3", models.RiskHigh, bottleneck("Staffing")),
	}

	got := aggregate.RootCauseSummary(cases)
	require.Len(t, got, 3)
	assert.Equal(t, "Workload Spike", got[0].Bottleneck)
	assert.Equal(t, "Staffing", got[1].Bottleneck)
	assert.Equal(t, "Tooling", got[2].Bottleneck)
}

func TestDistributions(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskHigh, bottleneck("Staffing"), caseType("Refund")),
		newCase("2", models.RiskLow, caseType("Outage")),
		newCase("3", models.RiskHigh, bottleneck("Staffing"), caseType("Refund")),
		newCase("4", ""),
	}

	assert.Equal(t, []aggregate.Count{
		{Key: "High", Count: 2}, {Key: "Low", Count: 1}, {Key: "None", Count: 1},
	}, aggregate.RiskDistribution(cases))
	assert.Equal(t, []aggregate.Count{
		{Key: "Staffing", Count: 2}, {Key: "None", Count: 2},
	}, aggregate.BottleneckDistribution(cases))
	assert.Equal(t, []aggregate.Count{
		{Key: "Refund", Count: 3}, {Key: "Outage", Count: 1},
	}, aggregate.CaseTypeDistribution(cases))
}

func TestTopActions(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskHigh, action("Escalate")),
		newCase("2", models.RiskHigh),
		newCase("3", models.RiskHigh, action("Add agents")),
		newCase("4", models.RiskHigh, action("Add agents")),
		newCase("5", models.RiskHigh, action("Reroute")),
	}

	assert.Equal(t, []aggregate.Count{
		{Key: "Add agents", Count: 2},
		{Key: "Escalate", Count: 1},
	}, aggregate.TopActions(cases, 2))
	assert.Len(t, aggregate.TopActions(cases, 0), 4)
	assert.Len(t, aggregate.TopActions(cases, 10), 4)
}

func TestComplexityRisk(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskHigh, complexity(0.87)),
		newCase("2", models.RiskLow, complexity(0.12)),
		newCase("3", models.RiskLow, complexity(0.8)),
		newCase("4", models.RiskHigh, complexity(0.19)),
		newCase("5", models.RiskMedium, complexity(0)),
	}

	got := aggregate.ComplexityRisk(cases)
	want := []aggregate.ComplexityBucket{
		{Complexity: 0, TotalCases: 1, HighRiskCases: 0, RiskRate: 0},
		{Complexity: 0.1, TotalCases: 2, HighRiskCases: 1, RiskRate: 50},
		{Complexity: 0.8, TotalCases: 2, HighRiskCases: 1, RiskRate: 50},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComplexityRisk mismatch (-want +got):\n%s", diff)
	}
}

func TestDailyTrend(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskHigh, risk(80), arrived("2024-03-05T08:00:00")),
		newCase("2", models.RiskLow, risk(20), arrived("2024-03-04T23:59:59")),
		newCase("3", models.RiskMedium, risk(50), arrived("2024-03-05T12:00:00")),
		newCase("4", models.RiskHigh, risk(99), arrived("not a date")),
	}

	got := aggregate.DailyTrend(cases)
	want := []aggregate.TrendPoint{
		{Date: "2024-03-04", Total: 1, Low: 1, AvgRisk: 20},
		{Date: "2024-03-05", Total: 2, High: 1, Medium: 1, AvgRisk: 65},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DailyTrend mismatch (-want +got):\n%s", diff)
	}
}

func TestFixedDomainBuckets(t *testing.T) {
	tests := map[string]struct {
		cases []models.Case
	}{
		"NoCases":     {cases: nil},
		"SparseCases": {cases: []models.Case{newCase("1", models.RiskHigh, hour(3), day(6), risk(90))}},
		"OutOfRange":  {cases: []models.Case{newCase("1", models.RiskHigh, hour(24), day(-1))}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			hours := aggregate.HourlyRisk(tc.cases)
			days := aggregate.WeekdayRisk(tc.cases)
			require.Len(t, hours, 24)
			require.Len(t, days, 7)
			for i, h := range hours {
				assert.Equal(t, i, h.Index)
				assertRate(t, h.RiskRate)
			}
			for i, d := range days {
				assert.Equal(t, i, d.Index)
				assert.Equal(t, aggregate.WeekdayNames[i], d.Label)
				assertRate(t, d.RiskRate)
			}
		})
	}

	hours := aggregate.HourlyRisk([]models.Case{
		newCase("1", models.RiskHigh, hour(3), risk(90)),
		newCase("2", models.RiskLow, hour(3), risk(30)),
	})
	assert.Equal(t, "03:00", hours[3].Label)
	assert.Equal(t, 2, hours[3].Total)
	assert.Equal(t, 1, hours[3].HighRisk)
	assert.InDelta(t, 60.0, hours[3].AvgRisk, 1e-9)
	assert.InDelta(t, 50.0, hours[3].RiskRate, 1e-9)
	assert.Zero(t, hours[4].Total)
}

func assertRate(t *testing.T, rate float64) {
	t.Helper()
	assert.False(t, math.IsNaN(rate))
	assert.GreaterOrEqual(t, rate, 0.0)
	assert.LessOrEqual(t, rate, 100.0)
}

func TestCaseTypeRisk(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskLow, caseType("Refund"), risk(20)),
		newCase("2", models.RiskHigh, caseType("Outage"), risk(90)),
		newCase("3", models.RiskMedium, caseType("Outage"), risk(50)),
	}

	got := aggregate.CaseTypeRisk(cases)
	require.Len(t, got, 2)
	assert.Equal(t, aggregate.SegmentRisk{
		Key: "Outage", Total: 2, High: 1, Medium: 1, AvgRisk: 70, HighRiskRate: 50,
	}, got[0])
	assert.Equal(t, "Refund", got[1].Key)
}

func TestSummarize(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskHigh, risk(90), func(c *models.Case) { c.EstimatedTimeToBreachMinutes = ptr(10) }),
		newCase("2", models.RiskMedium, risk(50), func(c *models.Case) { c.EstimatedTimeToBreachMinutes = ptr(30) }),
		newCase("3", models.RiskLow, risk(10)),
		newCase("4", models.RiskHigh, risk(70)),
	}

	assert.Equal(t, aggregate.KPIs{
		Total: 4, High: 2, Medium: 1, Low: 1,
		HighRiskPct: 50, AvgRisk: 55, AvgTimeToBreach: 20,
	}, aggregate.Summarize(cases))

	assert.Equal(t, aggregate.KPIs{}, aggregate.Summarize(nil))
}

func TestActionGroups(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskLow, risk(30), func(c *models.Case) { c.QueueName = "Claims"; c.ExpectedRiskAfterAction = 30 }),
		newCase("2", models.RiskHigh, risk(80), func(c *models.Case) { c.ExpectedRiskAfterAction = 40 }),
		newCase("3", models.RiskHigh, risk(95), func(c *models.Case) { c.ExpectedRiskAfterAction = 35 }),
	}

	groups := aggregate.ActionGroups(cases, aggregate.GroupByQueue)
	require.Len(t, groups, 2)
	assert.Equal(t, "Billing", groups[0].Group)
	assert.Equal(t, 2, groups[0].HighRisk)
	assert.InDelta(t, 50.0, groups[0].AvgRiskReduction, 1e-9)
	assert.Equal(t, "3", groups[0].Cases[0].CaseID, "highest risk first")
	assert.Equal(t, "Claims", groups[1].Group)

	byAction := aggregate.ActionGroups(cases, aggregate.GroupByAction)
	require.Len(t, byAction, 1)
	assert.Equal(t, aggregate.NoActionLabel, byAction[0].Group)
}

func TestParseGroupField(t *testing.T) {
	f, err := aggregate.ParseGroupField(" Bottleneck ")
	require.NoError(t, err)
	assert.Equal(t, aggregate.GroupByBottleneck, f)

	_, err = aggregate.ParseGroupField("agent")
	assert.Error(t, err)
}

func TestBottleneckShareAndInsights(t *testing.T) {
	cases := []models.Case{
		newCase("1", models.RiskHigh, bottleneck("Staffing Shortage"), hour(9), day(1), risk(90), load(8)),
		newCase("2", models.RiskHigh, bottleneck("Staffing Shortage"), hour(9), day(1), risk(80), load(6)),
		newCase("3", models.RiskHigh, bottleneck("Workload Spike"), hour(14), day(3), risk(70)),
		newCase("4", models.RiskLow, hour(2), day(3), risk(10)),
	}

	staffing, ok := aggregate.BottleneckShare(cases, "staffing")
	require.True(t, ok)
	assert.Equal(t, 2, staffing.HighRiskCount)
	assert.InDelta(t, 200.0/3, staffing.ShareOfHighRisk, 1e-9)
	assert.InDelta(t, 7.0, staffing.AvgLoadIndex, 1e-9)

	_, ok = aggregate.BottleneckShare(cases, "tooling")
	assert.False(t, ok)

	insights := aggregate.Insights(cases)
	assert.Equal(t, 4, insights.TotalCases)
	assert.Equal(t, 3, insights.HighRiskCases)
	assert.Equal(t, 9, insights.PeakHour.Index)
	assert.Equal(t, "Monday", insights.PeakDay.Label)
	assert.Equal(t, "Staffing Shortage", insights.TopBottleneck)
}

func TestContributingFactors(t *testing.T) {
	skill := func(s string) caseOpt { return func(c *models.Case) { c.AgentSkillLevel = s } }
	automation := func(s string) caseOpt { return func(c *models.Case) { c.AutomationLevel = s } }
	cases := []models.Case{
		newCase("1", models.RiskHigh, skill("Expert"), automation("Manual"), load(8)),
		newCase("2", models.RiskHigh, skill("Expert"), automation("Auto"), load(4)),
		newCase("3", models.RiskLow, skill("Expert"), automation("Manual"), load(2)),
		newCase("4", models.RiskHigh, skill("expert"), automation("Manual"), load(2)),
	}

	assert.Equal(t, aggregate.Contributors{
		SkillDependency: 2,
		AutomationGaps:  2,
		AvgLoadIndex:    4,
	}, aggregate.ContributingFactors(cases))
	assert.Equal(t, aggregate.Contributors{}, aggregate.ContributingFactors(nil))

	report := aggregate.BuildReport(cases, 5)
	assert.Equal(t, 2, report.Contributors.SkillDependency)
}

func TestBuildReport_Empty(t *testing.T) {
	report := aggregate.BuildReport(nil, 5)

	assert.Zero(t, report.KPIs.Total)
	assert.Empty(t, report.RiskDistribution)
	assert.Empty(t, report.RootCauses)
	assert.Empty(t, report.DailyTrend)
	assert.Len(t, report.Hourly, 24)
	assert.Len(t, report.Weekday, 7)
	assert.Nil(t, report.Staffing)
	assert.Equal(t, aggregate.Contributors{}, report.Contributors)
	assert.Equal(t, aggregate.NoneLabel, report.Insights.TopBottleneck)
	assert.Equal(t, 0, report.Insights.PeakHour.Index)
}
