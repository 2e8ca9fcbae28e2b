package aggregate

import (
	"fmt"
	"math"

	"sla-insights/models"
)

// Sentinel labels for absent categories.
const (
	NoneLabel     = "None"
	NoActionLabel = "No action needed"
)

// HoursPerDay and DaysPerWeek size the fixed-domain views.
const (
	HoursPerDay = 24
	DaysPerWeek = 7
)

// WeekdayNames indexes day names by Day_Of_Week (0 = Sunday).
var WeekdayNames = [DaysPerWeek]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Count is a (key, count) pair of a distribution.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RootCause summarizes the cases attributed to one bottleneck.
type RootCause struct {
	Bottleneck    string  `json:"bottleneck"`
	Count         int     `json:"count"`
	HighRiskCount int     `json:"high_risk_count"`
	HighRiskPct   float64 `json:"high_risk_pct"`
	AvgLoadIndex  float64 `json:"avg_load_index"`
}

// ComplexityBucket is the risk profile of one 0.1-wide complexity band.
type ComplexityBucket struct {
	Complexity    float64 `json:"complexity"`
	TotalCases    int     `json:"total_cases"`
	HighRiskCases int     `json:"high_risk_cases"`
	RiskRate      float64 `json:"risk_rate"`
}

// TrendPoint is one calendar day of the risk trend.
type TrendPoint struct {
	Date    string  `json:"date"`
	Total   int     `json:"total"`
	High    int     `json:"high_risk"`
	Medium  int     `json:"medium_risk"`
	Low     int     `json:"low_risk"`
	AvgRisk float64 `json:"avg_risk"`
}

// TimeBucket is one hour of the day or one day of the week.
type TimeBucket struct {
	Index    int     `json:"index"`
	Label    string  `json:"label"`
	Total    int     `json:"total"`
	HighRisk int     `json:"high_risk"`
	AvgRisk  float64 `json:"avg_risk"`
	RiskRate float64 `json:"risk_rate"`
}

// SegmentRisk is the risk mix of one categorical segment, e.g. a case type.
type SegmentRisk struct {
	Key          string  `json:"key"`
	Total        int     `json:"total"`
	High         int     `json:"high"`
	Medium       int     `json:"medium"`
	Low          int     `json:"low"`
	AvgRisk      float64 `json:"avg_risk"`
	HighRiskRate float64 `json:"high_risk_rate"`
}

// Label renders an optional category, mapping absent to NoneLabel.
func Label(v *string) string {
	if v == nil || *v == "" {
		return NoneLabel
	}
	return *v
}

// ActionLabel renders an optional recommended action.
func ActionLabel(v *string) string {
	if v == nil || *v == "" {
		return NoActionLabel
	}
	return *v
}

func textKey(s string) string {
	if s == "" {
		return NoneLabel
	}
	return s
}

func byRiskLevel(c models.Case) (string, bool)  { return textKey(string(c.RiskLevel)), true }
func byBottleneck(c models.Case) (string, bool) { return Label(c.OperationalBottleneck), true }
func byCaseType(c models.Case) (string, bool)   { return textKey(c.CaseType), true }
func byQueue(c models.Case) (string, bool)      { return textKey(c.QueueName), true }
func byAction(c models.Case) (string, bool)     { return ActionLabel(c.RecommendedAction), true }

func counts(buckets []Bucket[string]) []Count {
	out := make([]Count, len(buckets))
	for i, b := range buckets {
		out[i] = Count{Key: b.Key, Count: b.Count}
	}
	return out
}

// RiskDistribution counts cases per risk level in encounter order.
func RiskDistribution(cases []models.Case) []Count {
	return counts(Group(cases, Spec[string]{Key: byRiskLevel}))
}

// BottleneckDistribution counts cases per bottleneck in encounter order.
func BottleneckDistribution(cases []models.Case) []Count {
	return counts(Group(cases, Spec[string]{Key: byBottleneck}))
}

// CaseTypeDistribution counts cases per case type in encounter order.
func CaseTypeDistribution(cases []models.Case) []Count {
	return counts(Group(cases, Spec[string]{Key: byCaseType}))
}

// TopActions returns the n most frequent recommended actions.
func TopActions(cases []models.Case, n int) []Count {
	buckets := Group(cases, Spec[string]{Key: byAction})
	SortStable(buckets, ByCountDesc[string])
	return counts(Top(buckets, n))
}

// RootCauseSummary groups by bottleneck, most high-risk cases first.
func RootCauseSummary(cases []models.Case) []RootCause {
	buckets := Group(cases, Spec[string]{
		Key:   byBottleneck,
		Match: IsHighRisk,
		Value: LoadIndex,
	})
	SortStable(buckets, ByMatchedDesc[string])

	out := make([]RootCause, len(buckets))
	for i, b := range buckets {
		out[i] = RootCause{
			Bottleneck:    b.Key,
			Count:         b.Count,
			HighRiskCount: b.Matched,
			HighRiskPct:   b.Rate(),
			AvgLoadIndex:  b.Mean(),
		}
	}
	return out
}

// ComplexityRisk buckets complexity_score at 0.1 resolution, ascending.
func ComplexityRisk(cases []models.Case) []ComplexityBucket {
	buckets := Group(cases, Spec[int]{
		Key: func(c models.Case) (int, bool) {
			return int(math.Floor(c.ComplexityScore * 10)), true
		},
		Match: IsHighRisk,
	})
	SortStable(buckets, func(a, b Bucket[int]) bool { return a.Key < b.Key })

	out := make([]ComplexityBucket, len(buckets))
	for i, b := range buckets {
		out[i] = ComplexityBucket{
			Complexity:    float64(b.Key) / 10,
			TotalCases:    b.Count,
			HighRiskCases: b.Matched,
			RiskRate:      b.Rate(),
		}
	}
	return out
}

// DailyTrend groups by arrival date, ascending. Cases whose timestamp did not
// parse are left out of this view only.
func DailyTrend(cases []models.Case) []TrendPoint {
	buckets := Group(cases, Spec[string]{
		Key: func(c models.Case) (string, bool) {
			if !c.TimestampValid {
				return "", false
			}
			return c.ArrivedAt.Format("2006-01-02"), true
		},
		Value: PredictedRisk,
	})
	SortStable(buckets, func(a, b Bucket[string]) bool { return a.Key < b.Key })

	out := make([]TrendPoint, len(buckets))
	for i, b := range buckets {
		out[i] = TrendPoint{
			Date:    b.Key,
			Total:   b.Count,
			High:    b.Level(models.RiskHigh),
			Medium:  b.Level(models.RiskMedium),
			Low:     b.Level(models.RiskLow),
			AvgRisk: b.Mean(),
		}
	}
	return out
}

// HourlyRisk always returns 24 buckets, hour 0 first.
func HourlyRisk(cases []models.Case) []TimeBucket {
	buckets := Group(cases, Spec[int]{
		Key:   inRange(func(c models.Case) int { return c.ArrivalHour }, HoursPerDay),
		Match: IsHighRisk,
		Value: PredictedRisk,
		Seed:  sequence(HoursPerDay),
	})
	return timeBuckets(buckets, hourLabel)
}

// WeekdayRisk always returns 7 buckets, Sunday first.
func WeekdayRisk(cases []models.Case) []TimeBucket {
	buckets := Group(cases, Spec[int]{
		Key:   inRange(func(c models.Case) int { return c.DayOfWeek }, DaysPerWeek),
		Match: IsHighRisk,
		Value: PredictedRisk,
		Seed:  sequence(DaysPerWeek),
	})
	return timeBuckets(buckets, func(i int) string { return WeekdayNames[i] })
}

// CaseTypeRisk returns the risk mix per case type, highest average risk first.
func CaseTypeRisk(cases []models.Case) []SegmentRisk {
	return segmentRisk(cases, byCaseType)
}

// QueueRisk returns the risk mix per queue, highest average risk first.
func QueueRisk(cases []models.Case) []SegmentRisk {
	return segmentRisk(cases, byQueue)
}

func segmentRisk(cases []models.Case, key func(models.Case) (string, bool)) []SegmentRisk {
	buckets := Group(cases, Spec[string]{
		Key:   key,
		Match: IsHighRisk,
		Value: PredictedRisk,
	})
	SortStable(buckets, ByMeanDesc[string])

	out := make([]SegmentRisk, len(buckets))
	for i, b := range buckets {
		out[i] = SegmentRisk{
			Key:          b.Key,
			Total:        b.Count,
			High:         b.Level(models.RiskHigh),
			Medium:       b.Level(models.RiskMedium),
			Low:          b.Level(models.RiskLow),
			AvgRisk:      b.Mean(),
			HighRiskRate: b.Rate(),
		}
	}
	return out
}

func timeBuckets(buckets []Bucket[int], label func(int) string) []TimeBucket {
	out := make([]TimeBucket, len(buckets))
	for i, b := range buckets {
		out[i] = TimeBucket{
			Index:    b.Key,
			Label:    label(b.Key),
			Total:    b.Count,
			HighRisk: b.Matched,
			AvgRisk:  b.Mean(),
			RiskRate: b.Rate(),
		}
	}
	return out
}

func inRange(field func(models.Case) int, n int) func(models.Case) (int, bool) {
	return func(c models.Case) (int, bool) {
		v := field(c)
		return v, v >= 0 && v < n
	}
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range n {
		out[i] = i
	}
	return out
}

func hourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
