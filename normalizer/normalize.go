// Package normalizer turns raw state and insight rows into typed cases.
//
// It is the only place raw rows are interpreted. Numeric fields never fail a
// row: unparsable values fall back to zero. A case is produced only when both
// a state row and an insight row exist for the same non-empty Case_ID.
package normalizer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"sla-insights/logging"
	"sla-insights/metrics"
	"sla-insights/models"
)

// Source column names.
const (
	FieldCaseID               = "Case_ID"
	FieldCaseType             = "Case_Type"
	FieldQueueName            = "Queue_Name"
	FieldTimestamp            = "Timestamp"
	FieldArrivalHour          = "Arrival_Hour"
	FieldDayOfWeek            = "Day_Of_Week"
	FieldSLALimit             = "SLA_Limit_Mins"
	FieldQueueDepth           = "Queue_Depth"
	FieldActiveAgents         = "Active_Agents"
	FieldAvgHandleTime        = "Avg_Handle_Time_Mins"
	FieldComplexityScore      = "Complexity_Score"
	FieldLoadIndex            = "Load_Index"
	FieldAgentSkillLevel      = "Agent_Skill_Level"
	FieldAutomationLevel      = "Automation_Level"
	FieldRiskLevel            = "Risk_Level"
	FieldPredictedSLARisk     = "Predicted_SLA_Risk"
	FieldTimeToBreach         = "Estimated_Time_To_Breach_Mins"
	FieldBottleneck           = "Operational_Bottleneck"
	FieldRecommendedAction    = "Recommended_Action"
	FieldExpectedRiskAfterAct = "Expected_Risk_After_Action"
)

// notAvailable marks a missing time-to-breach in the insight source.
const notAvailable = "NA"

// timestampLayouts are tried in order when parsing Timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalize converts one state row and its matching insight row into a Case.
// It returns false when insight is nil or the state row has no Case_ID.
func Normalize(state, insight models.Row) (models.Case, bool) {
	if state == nil || insight == nil {
		return models.Case{}, false
	}
	id := strings.TrimSpace(state[FieldCaseID])
	if id == "" {
		return models.Case{}, false
	}

	c := models.Case{
		CaseID:               id,
		CaseType:             state[FieldCaseType],
		QueueName:            state[FieldQueueName],
		Timestamp:            state[FieldTimestamp],
		ArrivalHour:          parseInt(state[FieldArrivalHour]),
		DayOfWeek:            parseInt(state[FieldDayOfWeek]),
		SLALimitMinutes:      parseInt(state[FieldSLALimit]),
		QueueDepth:           parseInt(state[FieldQueueDepth]),
		ActiveAgents:         parseInt(state[FieldActiveAgents]),
		AvgHandleTimeMinutes: parseInt(state[FieldAvgHandleTime]),
		ComplexityScore:      parseFloat(state[FieldComplexityScore]),
		LoadIndex:            parseFloat(state[FieldLoadIndex]),
		AgentSkillLevel:      state[FieldAgentSkillLevel],
		AutomationLevel:      state[FieldAutomationLevel],

		RiskLevel:                    models.RiskLevel(strings.TrimSpace(insight[FieldRiskLevel])),
		PredictedSLARisk:             parsePercent(percentField(insight, FieldPredictedSLARisk)),
		ExpectedRiskAfterAction:      parsePercent(percentField(insight, FieldExpectedRiskAfterAct)),
		EstimatedTimeToBreachMinutes: parseOptionalInt(insight[FieldTimeToBreach]),
		OperationalBottleneck:        optionalString(insight[FieldBottleneck]),
		RecommendedAction:            optionalString(insight[FieldRecommendedAction]),
	}
	c.ArrivedAt, c.TimestampValid = ParseTimestamp(c.Timestamp)

	return c, true
}

// JoinStats counts what happened to every input row during Join.
type JoinStats struct {
	StateRows        int `json:"state_rows"`
	InsightRows      int `json:"insight_rows"`
	Joined           int `json:"joined"`
	MissingID        int `json:"missing_id"`
	UnmatchedState   int `json:"unmatched_state"`
	UnmatchedInsight int `json:"unmatched_insight"`
	DuplicateState   int `json:"duplicate_state"`
}

// Dropped is the total number of state rows that did not become cases.
func (s JoinStats) Dropped() int {
	return s.MissingID + s.UnmatchedState + s.DuplicateState
}

// Join inner-joins state and insight rows on Case_ID, preserving state row order.
// The first insight row for an id wins, and so does the first state row, keeping
// Case_ID unique. Unmatched rows are dropped silently and only counted in the stats.
func Join(state, insight []models.Row) ([]models.Case, JoinStats) {
	logger := logging.New("normalizer")
	stats := JoinStats{StateRows: len(state), InsightRows: len(insight)}

	byID := make(map[string]models.Row, len(insight))
	for _, row := range insight {
		id := strings.TrimSpace(row[FieldCaseID])
		if id == "" {
			continue
		}
		if _, exists := byID[id]; !exists {
			byID[id] = row
		}
	}

	cases := make([]models.Case, 0, len(state))
	seen := make(map[string]bool, len(state))
	for i, row := range state {
		id := strings.TrimSpace(row[FieldCaseID])
		switch {
		case id == "":
			stats.MissingID++
			logger.Debug("dropping state row without Case_ID", "row", i+1)
			continue
		case seen[id]:
			stats.DuplicateState++
			logger.Debug("dropping duplicate state row", "case_id", id)
			continue
		}

		c, ok := Normalize(row, byID[id])
		if !ok {
			stats.UnmatchedState++
			logger.Debug("dropping state row without insight", "case_id", id)
			continue
		}
		seen[id] = true
		cases = append(cases, c)
	}

	for id := range byID {
		if !seen[id] {
			stats.UnmatchedInsight++
		}
	}
	stats.Joined = len(cases)

	metrics.CasesJoinedTotal.Add(float64(stats.Joined))
	metrics.RowsDroppedTotal.WithLabelValues("missing_id").Add(float64(stats.MissingID))
	metrics.RowsDroppedTotal.WithLabelValues("unmatched_state").Add(float64(stats.UnmatchedState))
	metrics.RowsDroppedTotal.WithLabelValues("unmatched_insight").Add(float64(stats.UnmatchedInsight))
	metrics.RowsDroppedTotal.WithLabelValues("duplicate_state").Add(float64(stats.DuplicateState))

	logger.Info("joined sources",
		"state_rows", stats.StateRows,
		"insight_rows", stats.InsightRows,
		"cases", stats.Joined,
		"unmatched_state", stats.UnmatchedState,
		"unmatched_insight", stats.UnmatchedInsight,
	)
	return cases, stats
}

// ParseTimestamp parses an ISO-8601 style arrival timestamp.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// percentField looks a percentage column up under its "_%" name, its "_" name,
// and its bare name, in that order.
func percentField(row models.Row, base string) string {
	for _, name := range []string{base + "_%", base + "_", base} {
		if v, ok := row[name]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parsePercent(value string) float64 {
	value = strings.TrimSpace(value)
	value = strings.TrimSpace(strings.TrimSuffix(value, "%"))
	return parseFloat(value)
}

func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseInt accepts a leading integer prefix ("12.5" -> 12, "7 min" -> 7) and
// falls back to 0.
func parseInt(value string) int {
	n, ok := leadingInt(value)
	if !ok {
		return 0
	}
	return n
}

func parseOptionalInt(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" || value == notAvailable {
		return nil
	}
	n, ok := leadingInt(value)
	if !ok {
		return nil
	}
	return &n
}

func leadingInt(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n, true
	}
	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	digits := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
