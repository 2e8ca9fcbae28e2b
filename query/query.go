// Package query filters, searches, sorts and pages case sequences.
// Every function returns a new slice and leaves its input untouched.
package query

import (
	"cmp"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"sla-insights/errors"
	"sla-insights/models"
)

// Filters are AND-ed together. Empty strings and nil pointers are inactive.
type Filters struct {
	QueueName       string
	CaseType        string
	RiskLevel       string
	AgentSkillLevel string
	AutomationLevel string
	DayOfWeek       *int
	ArrivalHour     *int
	Search          string
}

// Active reports whether any filter is set.
func (f Filters) Active() bool {
	return f.QueueName != "" || f.CaseType != "" || f.RiskLevel != "" ||
		f.AgentSkillLevel != "" || f.AutomationLevel != "" ||
		f.DayOfWeek != nil || f.ArrivalHour != nil || f.Search != ""
}

// Match reports whether a case passes every active filter.
func (f Filters) Match(c models.Case) bool {
	switch {
	case f.QueueName != "" && c.QueueName != f.QueueName:
		return false
	case f.CaseType != "" && c.CaseType != f.CaseType:
		return false
	case f.RiskLevel != "" && string(c.RiskLevel) != f.RiskLevel:
		return false
	case f.AgentSkillLevel != "" && c.AgentSkillLevel != f.AgentSkillLevel:
		return false
	case f.AutomationLevel != "" && c.AutomationLevel != f.AutomationLevel:
		return false
	case f.DayOfWeek != nil && c.DayOfWeek != *f.DayOfWeek:
		return false
	case f.ArrivalHour != nil && c.ArrivalHour != *f.ArrivalHour:
		return false
	}
	return Matches(c, f.Search)
}

// Filter returns the cases that pass f, in input order.
func Filter(cases []models.Case, f Filters) []models.Case {
	return lo.Filter(cases, func(c models.Case, _ int) bool {
		return f.Match(c)
	})
}

// Matches is a case-insensitive substring search over the case id, type,
// queue, bottleneck and recommended action. An absent field never matches;
// an empty term matches everything.
func Matches(c models.Case, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	fields := []*string{&c.CaseID, &c.CaseType, &c.QueueName, c.OperationalBottleneck, c.RecommendedAction}
	return lo.SomeBy(fields, func(v *string) bool {
		return v != nil && strings.Contains(strings.ToLower(*v), needle)
	})
}

// Direction of a sort.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Field names a sortable case attribute.
type Field string

const (
	FieldCaseID          Field = "case_id"
	FieldCaseType        Field = "case_type"
	FieldQueueName       Field = "queue_name"
	FieldTimestamp       Field = "timestamp"
	FieldArrivalHour     Field = "arrival_hour"
	FieldDayOfWeek       Field = "day_of_week"
	FieldSLALimit        Field = "sla_limit_minutes"
	FieldQueueDepth      Field = "queue_depth"
	FieldActiveAgents    Field = "active_agents"
	FieldAvgHandleTime   Field = "avg_handle_time_minutes"
	FieldComplexity      Field = "complexity_score"
	FieldLoadIndex       Field = "load_index"
	FieldSkillLevel      Field = "agent_skill_level"
	FieldAutomationLevel Field = "automation_level"
	FieldPredictedRisk   Field = "predicted_sla_risk"
	FieldRiskLevel       Field = "risk_level"
	FieldTimeToBreach    Field = "estimated_time_to_breach_minutes"
	FieldBottleneck      Field = "operational_bottleneck"
	FieldAction          Field = "recommended_action"
	FieldExpectedRisk    Field = "expected_risk_after_action"
)

var comparators = map[Field]func(a, b models.Case) int{
	FieldCaseID:          byText(func(c models.Case) string { return c.CaseID }),
	FieldCaseType:        byText(func(c models.Case) string { return c.CaseType }),
	FieldQueueName:       byText(func(c models.Case) string { return c.QueueName }),
	FieldTimestamp:       byText(func(c models.Case) string { return c.Timestamp }),
	FieldArrivalHour:     byNumber(func(c models.Case) int { return c.ArrivalHour }),
	FieldDayOfWeek:       byNumber(func(c models.Case) int { return c.DayOfWeek }),
	FieldSLALimit:        byNumber(func(c models.Case) int { return c.SLALimitMinutes }),
	FieldQueueDepth:      byNumber(func(c models.Case) int { return c.QueueDepth }),
	FieldActiveAgents:    byNumber(func(c models.Case) int { return c.ActiveAgents }),
	FieldAvgHandleTime:   byNumber(func(c models.Case) int { return c.AvgHandleTimeMinutes }),
	FieldComplexity:      byNumber(func(c models.Case) float64 { return c.ComplexityScore }),
	FieldLoadIndex:       byNumber(func(c models.Case) float64 { return c.LoadIndex }),
	FieldSkillLevel:      byText(func(c models.Case) string { return c.AgentSkillLevel }),
	FieldAutomationLevel: byText(func(c models.Case) string { return c.AutomationLevel }),
	FieldPredictedRisk:   byNumber(func(c models.Case) float64 { return c.PredictedSLARisk }),
	FieldRiskLevel:       byText(func(c models.Case) string { return string(c.RiskLevel) }),
	FieldTimeToBreach:    byOptional(func(c models.Case) *int { return c.EstimatedTimeToBreachMinutes }, cmp.Compare[int]),
	FieldBottleneck:      byOptional(func(c models.Case) *string { return c.OperationalBottleneck }, compareFold),
	FieldAction:          byOptional(func(c models.Case) *string { return c.RecommendedAction }, compareFold),
	FieldExpectedRisk:    byNumber(func(c models.Case) float64 { return c.ExpectedRiskAfterAction }),
}

// ParseField resolves a field name. Source column names such as
// "Predicted_SLA_Risk" are accepted as well as the snake_case names.
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := comparators[f]; ok {
		return f, nil
	}
	if alias, ok := sourceAliases[f]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("%w: %q", errors.ErrUnknownField, name)
}

var sourceAliases = map[Field]Field{
	"sla_limit_mins":                FieldSLALimit,
	"avg_handle_time_mins":          FieldAvgHandleTime,
	"estimated_time_to_breach_mins": FieldTimeToBreach,
	"predicted_sla_risk_%":          FieldPredictedRisk,
	"expected_risk_after_action_%":  FieldExpectedRisk,
}

// Sort returns a stably sorted copy of cases. Text compares case-insensitively
// and absent optional values sort before present ones in ascending order.
// An unknown field returns the cases in their original order.
func Sort(cases []models.Case, field Field, dir Direction) []models.Case {
	out := make([]models.Case, len(cases))
	copy(out, cases)

	compare, ok := comparators[field]
	if !ok {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Descending {
			return compare(out[i], out[j]) > 0
		}
		return compare(out[i], out[j]) < 0
	})
	return out
}

// Page returns the 1-based page of the given size. Out of range pages are empty.
func Page(cases []models.Case, page, size int) []models.Case {
	if page < 1 || size < 1 {
		return []models.Case{}
	}
	start := (page - 1) * size
	if start >= len(cases) {
		return []models.Case{}
	}
	end := min(start+size, len(cases))
	out := make([]models.Case, end-start)
	copy(out, cases[start:end])
	return out
}

// PageCount is the number of pages needed for n items.
func PageCount(n, size int) int {
	if size < 1 {
		return 0
	}
	return (n + size - 1) / size
}

// Distinct returns the sorted, unique non-empty values of a text attribute,
// for building filter option lists.
func Distinct(cases []models.Case, value func(models.Case) string) []string {
	values := lo.Uniq(lo.FilterMap(cases, func(c models.Case, _ int) (string, bool) {
		v := value(c)
		return v, v != ""
	}))
	sort.Strings(values)
	return values
}

func byText(value func(models.Case) string) func(a, b models.Case) int {
	return func(a, b models.Case) int {
		return compareFold(value(a), value(b))
	}
}

func byNumber[T int | float64](value func(models.Case) T) func(a, b models.Case) int {
	return func(a, b models.Case) int {
		return cmp.Compare(value(a), value(b))
	}
}

func byOptional[T any](value func(models.Case) *T, compare func(a, b T) int) func(a, b models.Case) int {
	return func(a, b models.Case) int {
		va, vb := value(a), value(b)
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return -1
		case vb == nil:
			return 1
		}
		return compare(*va, *vb)
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
