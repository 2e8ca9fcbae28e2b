package scheduler

import (
	"fmt"
	"math"
	"sort"

	"sla-insights/metrics"
	"sla-insights/models"
)

// Priorities assigned to a queue-hour from the worst risk level among its cases.
const (
	PriorityHighRisk   = 1
	PriorityMediumRisk = 2
	PriorityLowRisk    = 3
)

// GenerateSchedule calculates the number of agents needed per arrival hour for each queue.
// Handle time of all cases arriving in an hour is averaged over the distinct arrival dates
// in the data, converted to agents at the given utilization, and optionally capped at
// capacityPerHour with risk-priority allocation.
func GenerateSchedule(cases []models.Case, utilization float64, capacityPerHour int) (*models.Schedule, error) {
	if utilization <= 0 || utilization > 1 {
		return nil, fmt.Errorf("utilization must be within (0, 1] (got %v)", utilization)
	}

	metrics.ResetSchedulerGauges()
	days := distinctDays(cases)

	type slot struct {
		minutes  int
		cases    int
		priority int
	}
	hourly := make([]map[string]*slot, 24)
	order := make([][]string, 24)
	for h := range 24 {
		hourly[h] = make(map[string]*slot)
	}

	for _, c := range cases {
		h := c.ArrivalHour
		if h < 0 || h >= 24 {
			continue
		}
		s, exists := hourly[h][c.QueueName]
		if !exists {
			s = &slot{priority: PriorityLowRisk}
			hourly[h][c.QueueName] = s
			order[h] = append(order[h], c.QueueName)
		}
		s.minutes += c.AvgHandleTimeMinutes
		s.cases++
		s.priority = min(s.priority, priorityFor(c.RiskLevel))
	}

	hourlyRequests := make([][]models.QueueRequirement, 24)
	for h := range 24 {
		hourlyRequests[h] = make([]models.QueueRequirement, 0, len(order[h]))
		for _, queue := range order[h] {
			s := hourly[h][queue]
			// Agents = ceil(handle minutes per day / 60 / utilization)
			minutesPerDay := float64(s.minutes) / float64(days)
			agentsNeeded := int(math.Ceil(minutesPerDay / 60.0 / utilization))
			hourlyRequests[h] = append(hourlyRequests[h], models.QueueRequirement{
				Queue:        queue,
				AgentsNeeded: agentsNeeded,
				Cases:        s.cases,
				Priority:     s.priority,
			})
		}
	}

	demanded := 0
	for _, reqs := range hourlyRequests {
		for _, req := range reqs {
			demanded += req.AgentsNeeded
		}
	}
	metrics.AgentsDemandedTotal.Set(float64(demanded))

	schedule := models.Schedule{
		HourlyRequirements: hourlyRequests,
		UnmetDemands:       make([]models.UnmetDemand, 0),
		Days:               days,
	}
	// Apply capacity constraints if capacityPerHour > 0
	if capacityPerHour > 0 {
		for h := range 24 {
			allocated, unmet := allocateWithConstraints(hourlyRequests[h], capacityPerHour)
			schedule.HourlyRequirements[h] = allocated
			if unmet != nil {
				unmet.Hour = h
				schedule.UnmetDemands = append(schedule.UnmetDemands, *unmet)
				metrics.AgentsUnmetTotal.Add(float64(unmet.UnmetAgents))
			}
		}
		metrics.HoursWithUnmetDemand.Set(float64(len(schedule.UnmetDemands)))
	}

	return &schedule, nil
}

func priorityFor(level models.RiskLevel) int {
	switch level {
	case models.RiskHigh:
		return PriorityHighRisk
	case models.RiskMedium:
		return PriorityMediumRisk
	default:
		return PriorityLowRisk
	}
}

// distinctDays counts distinct arrival dates, at least 1.
func distinctDays(cases []models.Case) int {
	dates := make(map[string]struct{})
	for _, c := range cases {
		if c.TimestampValid {
			dates[c.ArrivedAt.Format("2006-01-02")] = struct{}{}
		}
	}
	return max(1, len(dates))
}

// allocateWithConstraints performs priority-based allocation.
// Queues with the same priority keep their encounter order.
func allocateWithConstraints(requests []models.QueueRequirement, capacity int) ([]models.QueueRequirement, *models.UnmetDemand) {
	if len(requests) == 0 {
		return requests, nil
	}

	totalDemand := 0
	for _, req := range requests {
		totalDemand += req.AgentsNeeded
	}

	// Fast path: if capacity exceeds demand, no allocation logic needed
	if capacity >= totalDemand {
		return requests, nil
	}

	sorted := make([]models.QueueRequirement, len(requests))
	copy(sorted, requests)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	allocated := make([]models.QueueRequirement, 0, len(sorted))
	impacted := make([]models.ImpactedQueue, 0)
	remaining := capacity

	for _, req := range sorted {
		if remaining <= 0 {
			// No capacity left - fully unmet
			impacted = append(impacted, models.ImpactedQueue{
				Queue:           req.Queue,
				RequestedAgents: req.AgentsNeeded,
				AllocatedAgents: 0,
				UnmetAgents:     req.AgentsNeeded,
				Priority:        req.Priority,
			})
			continue
		}

		if remaining >= req.AgentsNeeded {
			allocated = append(allocated, req)
			remaining -= req.AgentsNeeded
			continue
		}

		// Partial allocation - give what's left
		partial := req
		partial.AgentsNeeded = remaining
		allocated = append(allocated, partial)
		impacted = append(impacted, models.ImpactedQueue{
			Queue:           req.Queue,
			RequestedAgents: req.AgentsNeeded,
			AllocatedAgents: remaining,
			UnmetAgents:     req.AgentsNeeded - remaining,
			Priority:        req.Priority,
		})
		remaining = 0
	}

	return allocated, &models.UnmetDemand{
		TotalDemand:     totalDemand,
		AllocatedAgents: capacity,
		UnmetAgents:     totalDemand - capacity,
		ImpactedQueues:  impacted,
	}
}
