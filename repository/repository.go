// Package repository holds the joined, normalized cases of one loaded dataset.
package repository

import (
	"context"
	"fmt"

	"sla-insights/metrics"
	"sla-insights/models"
	"sla-insights/normalizer"
	"sla-insights/parser"
)

// Repository is an immutable, ordered collection of cases.
// A new dataset load builds a new Repository; there is no mutation API.
type Repository struct {
	cases []models.Case
	index map[string]int
}

// New builds a repository from already normalized cases, keeping their order.
// The input cases are deep-copied. Later duplicates of a Case_ID are ignored.
func New(cases []models.Case) *Repository {
	r := &Repository{
		cases: make([]models.Case, 0, len(cases)),
		index: make(map[string]int, len(cases)),
	}
	for _, c := range cases {
		if _, exists := r.index[c.CaseID]; exists {
			continue
		}
		r.index[c.CaseID] = len(r.cases)
		r.cases = append(r.cases, clone(c))
	}
	return r
}

// FromRows joins raw state and insight rows into a repository.
func FromRows(state, insight []models.Row) (*Repository, normalizer.JoinStats) {
	cases, stats := normalizer.Join(state, insight)
	return New(cases), stats
}

// Load reads both source files and builds a repository from them.
func Load(ctx context.Context, statePath, insightPath string) (*Repository, normalizer.JoinStats, error) {
	metrics.ResetLoadGauges()

	state, insight, err := parser.LoadFiles(ctx, statePath, insightPath)
	if err != nil {
		return nil, normalizer.JoinStats{}, fmt.Errorf("load sources: %w", err)
	}

	repo, stats := FromRows(state, insight)
	metrics.RepositoryCases.Set(float64(repo.Len()))
	return repo, stats, nil
}

// All returns every case in insertion order. The returned cases are deep copies,
// so writes through their optional fields never reach the repository.
func (r *Repository) All() []models.Case {
	out := make([]models.Case, len(r.cases))
	for i, c := range r.cases {
		out[i] = clone(c)
	}
	return out
}

// Len returns the number of cases.
func (r *Repository) Len() int {
	return len(r.cases)
}

// Get looks a case up by id.
func (r *Repository) Get(caseID string) (models.Case, bool) {
	i, ok := r.index[caseID]
	if !ok {
		return models.Case{}, false
	}
	return clone(r.cases[i]), true
}

// clone copies a case including the values behind its optional fields.
func clone(c models.Case) models.Case {
	c.EstimatedTimeToBreachMinutes = clonePtr(c.EstimatedTimeToBreachMinutes)
	c.OperationalBottleneck = clonePtr(c.OperationalBottleneck)
	c.RecommendedAction = clonePtr(c.RecommendedAction)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
