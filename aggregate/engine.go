// Package aggregate implements the grouping engine behind every summary view.
//
// All views are instances of Group: a key function picks the bucket, an
// optional filter drops cases before grouping, a match predicate counts a
// sub-population (usually High risk) and a value function feeds a sum/mean.
package aggregate

import (
	"sort"

	"sla-insights/models"
)

// Predicate selects cases.
type Predicate func(models.Case) bool

// Spec parameterizes one grouping.
type Spec[K comparable] struct {
	// Key returns the bucket for a case; false excludes the case from this grouping only.
	Key func(models.Case) (K, bool)
	// Filter is applied before grouping. Nil keeps every case.
	Filter Predicate
	// Match selects the cases counted in Bucket.Matched. Nil matches nothing.
	Match Predicate
	// Value is summed into Bucket.Sum. Nil sums nothing.
	Value func(models.Case) float64
	// Seed pre-creates buckets, in order, so empty ones are reported with zero values.
	Seed []K
	// KeepCases retains each bucket's member cases in input order.
	KeepCases bool
}

// Bucket is the accumulated state of one group.
type Bucket[K comparable] struct {
	Key     K
	Count   int
	Matched int
	Sum     float64
	Levels  map[models.RiskLevel]int
	Cases   []models.Case
}

// Rate is Matched as a percentage of Count, 0 for an empty bucket.
func (b Bucket[K]) Rate() float64 {
	return Percent(b.Matched, b.Count)
}

// Mean is Sum divided by Count, 0 for an empty bucket.
func (b Bucket[K]) Mean() float64 {
	if b.Count == 0 {
		return 0
	}
	return b.Sum / float64(b.Count)
}

// Level returns the number of cases in the bucket with the given risk level.
func (b Bucket[K]) Level(level models.RiskLevel) int {
	return b.Levels[level]
}

// Group buckets cases by spec.Key. Seeded keys come first in seed order,
// the rest in first-encounter order.
func Group[K comparable](cases []models.Case, spec Spec[K]) []Bucket[K] {
	buckets := make([]Bucket[K], 0, len(spec.Seed))
	index := make(map[K]int, len(spec.Seed))
	for _, k := range spec.Seed {
		if _, exists := index[k]; exists {
			continue
		}
		index[k] = len(buckets)
		buckets = append(buckets, Bucket[K]{Key: k, Levels: map[models.RiskLevel]int{}})
	}

	for _, c := range cases {
		if spec.Filter != nil && !spec.Filter(c) {
			continue
		}
		k, ok := spec.Key(c)
		if !ok {
			continue
		}
		i, exists := index[k]
		if !exists {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, Bucket[K]{Key: k, Levels: map[models.RiskLevel]int{}})
		}

		b := &buckets[i]
		b.Count++
		b.Levels[c.RiskLevel]++
		if spec.Match != nil && spec.Match(c) {
			b.Matched++
		}
		if spec.Value != nil {
			b.Sum += spec.Value(c)
		}
		if spec.KeepCases {
			b.Cases = append(b.Cases, c)
		}
	}
	return buckets
}

// SortStable sorts items in place by less, keeping encounter order on ties.
func SortStable[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}

// Top truncates a sorted result to its first n entries. n <= 0 keeps everything.
func Top[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// ByMatchedDesc orders buckets by Matched, highest first.
func ByMatchedDesc[K comparable](a, b Bucket[K]) bool { return a.Matched > b.Matched }

// ByCountDesc orders buckets by Count, highest first.
func ByCountDesc[K comparable](a, b Bucket[K]) bool { return a.Count > b.Count }

// ByMeanDesc orders buckets by Mean, highest first.
func ByMeanDesc[K comparable](a, b Bucket[K]) bool { return a.Mean() > b.Mean() }

// Percent returns part/total*100, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// IsHighRisk matches High risk cases.
func IsHighRisk(c models.Case) bool {
	return c.IsHighRisk()
}

// PredictedRisk feeds the predicted SLA risk into a bucket sum.
func PredictedRisk(c models.Case) float64 {
	return c.PredictedSLARisk
}

// LoadIndex feeds the load index into a bucket sum.
func LoadIndex(c models.Case) float64 {
	return c.LoadIndex
}
