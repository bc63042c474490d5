// Package contrib converts factor weights and measured values into
// per-entity scores. The hidden contribution is interpolated from rank
// position; it is a modeling heuristic, not a measurement.
package contrib

import (
	"math"

	"github.com/placemetrics/rankengine/models"
)

// Scores computes per-factor contributions and total scores for every
// entity. Entities must already carry ranks; weights must include the
// hidden factor.
func Scores(entities []models.Entity, weights models.FactorWeights) []models.EntityScore {
	n := len(entities)
	if n == 0 {
		return nil
	}

	// Per-factor maxima over the whole set; max 0 yields ratio 0 for all.
	maxima := make(map[string]int, len(weights))
	for factor := range weights {
		if factor == models.FactorHidden {
			continue
		}
		for _, e := range entities {
			if v := e.FactorValue(factor); v > maxima[factor] {
				maxima[factor] = v
			}
		}
	}

	hiddenWeight := weights[models.FactorHidden]
	denom := float64(n - 1)
	if denom < 1 {
		denom = 1
	}

	scores := make([]models.EntityScore, 0, n)
	for _, e := range entities {
		contributions := make(map[string]float64, len(weights))
		var total float64

		for factor, weight := range weights {
			if factor == models.FactorHidden {
				continue
			}
			ratio := 0.0
			if maxValue := maxima[factor]; maxValue > 0 {
				ratio = float64(e.FactorValue(factor)) / float64(maxValue)
			}
			c := round1(ratio * weight)
			contributions[factor] = c
			total += c
		}

		// Rank 1 gets the full hidden weight, the last rank gets none.
		hiddenRatio := 1 - float64(e.Rank-1)/denom
		hc := round1(hiddenRatio * hiddenWeight)
		contributions[models.FactorHidden] = hc
		total += hc

		scores = append(scores, models.EntityScore{
			PlaceID:       e.ID,
			Name:          e.Name,
			Rank:          e.Rank,
			Contributions: contributions,
			TotalScore:    round1(total),
		})
	}
	return scores
}

// HiddenRatio exposes the rank interpolation for reuse by the planner.
func HiddenRatio(rank, n int) float64 {
	denom := float64(n - 1)
	if denom < 1 {
		denom = 1
	}
	return 1 - float64(rank-1)/denom
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
