package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"sla-insights/errors"
	"sla-insights/models"
)

// Output formats understood by the Format* helpers.
const (
	TextFormat = "text"
	JSONFormat = "json"
	CSVFormat  = "csv"
)

// ValidateFormat checks a format name against the allowed set.
func ValidateFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (want one of: %s)", errors.ErrUnknownFormat, format, strings.Join(allowed, ", "))
}

// ScheduleData holds prepared schedule data used by all schedule formatters
type ScheduleData struct {
	Hours       []HourlyData
	UnmetByHour map[int]*models.UnmetDemand
}

// HourlyData groups queue requirements for an hour
type HourlyData struct {
	Hour        int              `json:"hour"`
	Total       int              `json:"total"`
	Queues      map[string]int   `json:"queues,omitempty"`
	UnmetDemand *UnmetDemandInfo `json:"unmet_demand,omitempty"`
}

// UnmetDemandInfo represents unmet demand for a specific hour
type UnmetDemandInfo struct {
	TotalDemand     int                    `json:"total_demand"`
	AllocatedAgents int                    `json:"allocated_agents"`
	UnmetAgents     int                    `json:"unmet_agents"`
	ImpactedQueues  []models.ImpactedQueue `json:"impacted_queues"`
}

// prepareScheduleData extracts and organizes schedule data for formatting
func prepareScheduleData(schedule *models.Schedule) *ScheduleData {
	unmetByHour := make(map[int]*models.UnmetDemand)
	for i := range schedule.UnmetDemands {
		unmetByHour[schedule.UnmetDemands[i].Hour] = &schedule.UnmetDemands[i]
	}

	hours := make([]HourlyData, 24)
	for h := range 24 {
		hours[h] = processHour(schedule, h)

		if unmet, exists := unmetByHour[h]; exists {
			hours[h].UnmetDemand = &UnmetDemandInfo{
				TotalDemand:     unmet.TotalDemand,
				AllocatedAgents: unmet.AllocatedAgents,
				UnmetAgents:     unmet.UnmetAgents,
				ImpactedQueues:  append([]models.ImpactedQueue(nil), unmet.ImpactedQueues...),
			}
		}
	}

	return &ScheduleData{
		Hours:       hours,
		UnmetByHour: unmetByHour,
	}
}

// FormatScheduleText returns the text representation of the schedule
func FormatScheduleText(schedule *models.Schedule) string {
	data := prepareScheduleData(schedule)
	var sb strings.Builder

	for _, hourData := range data.Hours {
		sb.WriteString(formatTextLine(hourData))
		sb.WriteString("\n")

		if hourData.UnmetDemand != nil {
			unmet := hourData.UnmetDemand
			sb.WriteString(fmt.Sprintf("  CAPACITY WARNING: Demand=%d, Allocated=%d, Unmet=%d\n",
				unmet.TotalDemand, unmet.AllocatedAgents, unmet.UnmetAgents))
			sb.WriteString("  Impacted queues:\n")
			for _, q := range unmet.ImpactedQueues {
				sb.WriteString(fmt.Sprintf("    - %s [Priority %d]: Requested=%d, Allocated=%d, Unmet=%d\n",
					q.Queue, q.Priority, q.RequestedAgents, q.AllocatedAgents, q.UnmetAgents))
			}
		}
	}

	return sb.String()
}

// FormatScheduleJSON returns the JSON representation of the schedule
func FormatScheduleJSON(schedule *models.Schedule) string {
	data := prepareScheduleData(schedule)
	jsonBytes, _ := json.MarshalIndent(data.Hours, "", "  ")
	return string(jsonBytes)
}

// FormatScheduleCSV returns the CSV representation of the schedule
func FormatScheduleCSV(schedule *models.Schedule) string {
	data := prepareScheduleData(schedule)
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{
		"Hour", "Total Agents", "Queue Details",
		"Capacity Warning", "Total Demand", "Allocated", "Unmet", "Impacted Queues",
	})

	for _, hourData := range data.Hours {
		writeHourToCSV(writer, hourData)
	}

	writer.Flush()
	return sb.String()
}

// writeHourToCSV writes a single hour's data to CSV
func writeHourToCSV(writer *csv.Writer, hourData HourlyData) {
	hour := hourData.Hour
	unmet := hourData.UnmetDemand

	if hourData.Total == 0 {
		writer.Write([]string{fmt.Sprintf("%02d:00", hour), "0", "", "No", "", "", "", ""})
		return
	}

	var details []string
	for _, queue := range sortedKeys(hourData.Queues) {
		details = append(details, fmt.Sprintf("%s(agents=%d)", queue, hourData.Queues[queue]))
	}

	row := []string{
		fmt.Sprintf("%02d:00", hour),
		fmt.Sprintf("%d", hourData.Total),
		strings.Join(details, "; "),
	}

	if unmet != nil {
		var impacted []string
		for _, q := range unmet.ImpactedQueues {
			impacted = append(impacted, fmt.Sprintf("%s(priority=%d,requested=%d,allocated=%d,unmet=%d)",
				q.Queue, q.Priority, q.RequestedAgents, q.AllocatedAgents, q.UnmetAgents))
		}
		row = append(row,
			"Yes",
			fmt.Sprintf("%d", unmet.TotalDemand),
			fmt.Sprintf("%d", unmet.AllocatedAgents),
			fmt.Sprintf("%d", unmet.UnmetAgents),
			strings.Join(impacted, "; "),
		)
	} else {
		row = append(row, "No", "", "", "", "")
	}

	writer.Write(row)
}

// processHour sums requirements per queue for a given hour
func processHour(schedule *models.Schedule, hour int) HourlyData {
	data := HourlyData{
		Hour:   hour,
		Queues: make(map[string]int),
	}

	if hour >= len(schedule.HourlyRequirements) {
		return data
	}

	for _, req := range schedule.HourlyRequirements[hour] {
		data.Queues[req.Queue] += req.AgentsNeeded
		data.Total += req.AgentsNeeded
	}

	return data
}

// formatTextLine formats a single hour line for text output
func formatTextLine(data HourlyData) string {
	if data.Total == 0 {
		return fmt.Sprintf("%02d:00 : total=0 ; none", data.Hour)
	}

	var parts []string
	for _, queue := range sortedKeys(data.Queues) {
		parts = append(parts, fmt.Sprintf("%s=%d", queue, data.Queues[queue]))
	}

	return fmt.Sprintf("%02d:00 : total=%d ; [%s]", data.Hour, data.Total, strings.Join(parts, ", "))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatJSON renders any result as indented JSON.
func FormatJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(b) + "\n", nil
}
