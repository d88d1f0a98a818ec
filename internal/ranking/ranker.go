package ranking

import (
	"slices"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// Result is a restaurant together with its distance from the search origin.
type Result struct {
	Restaurant models.Restaurant
	Distance   Distance
}

// Ranker orders restaurants by distance from an origin.
type Ranker struct {
	measure Measure
}

// NewRanker creates a Ranker using the given measure.
func NewRanker(measure Measure) *Ranker {
	return &Ranker{measure: measure}
}

// Rank returns every candidate sorted ascending by distance from origin.
// Candidates without a location get Unknown and end up last. The sort is
// stable, so equal distances keep their input order.
func (r *Ranker) Rank(origin models.Coordinates, candidates []models.Restaurant) []Result {
	results := make([]Result, len(candidates))
	for i, candidate := range candidates {
		results[i] = Result{Restaurant: candidate, Distance: Unknown}
		if candidate.Location != nil {
			results[i].Distance = Miles(r.measure(origin, *candidate.Location))
		}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return a.Distance.Compare(b.Distance)
	})

	return results
}

// Unranked wraps candidates in their original order with Unknown distances.
func Unranked(candidates []models.Restaurant) []Result {
	results := make([]Result, len(candidates))
	for i, candidate := range candidates {
		results[i] = Result{Restaurant: candidate, Distance: Unknown}
	}

	return results
}
