// Package weights infers per-keyword factor weights from the observed rank
// ordering using Spearman rank correlation. The hidden factor absorbs the
// variance the measurable signals do not explain.
package weights

import (
	"math"
	"sort"

	"github.com/placemetrics/rankengine/models"
)

// Engine computes factor weights for one keyword sample.
type Engine struct {
	cfg models.WeightSettings
}

func New(cfg models.WeightSettings) *Engine {
	return &Engine{cfg: cfg}
}

// Result carries the weights plus the raw correlations for transparency.
type Result struct {
	Weights          models.FactorWeights
	Correlations     map[string]float64
	SampleSize       int
	SaveCountVisible bool
}

// Compute derives weights from the top-ranked entities. ok=false means the
// sample is too small to say anything (fewer than MinSample entities).
//
// Factor floors guarantee no factor is ever zero-influence; sparse or
// uninformative data degrades to the floor instead of erroring.
func (e *Engine) Compute(entities []models.Entity) (Result, bool) {
	if len(entities) < e.cfg.MinSample {
		return Result{}, false
	}

	sample := entities
	if len(sample) > e.cfg.SampleSize {
		sample = sample[:e.cfg.SampleSize]
	}
	n := len(sample)

	// Save counts are only publicly visible for the food/cafe vertical;
	// the first-ranked entity's category decides for the whole keyword.
	factors := append([]string{}, models.MeasurableFactors...)
	saveVisible := e.cfg.IsFoodCafeCategory(sample[0].Category)
	if saveVisible {
		factors = append(factors, models.FactorSaveCount)
	}

	correlations := make(map[string]float64, len(factors))
	raw := make(map[string]float64, len(factors))
	var measurableTotal float64

	for _, f := range factors {
		rho := spearman(sample, f)
		correlations[f] = rho

		w := math.Max(0, rho)
		if w < e.cfg.FactorFloor {
			w = e.cfg.FactorFloor
		}
		raw[f] = w
		measurableTotal += w
	}

	hidden := math.Max(e.cfg.HiddenFloor, 1-measurableTotal)
	if measurableTotal+hidden > 1 && measurableTotal > 0 {
		// Scale only the measurables; the hidden floor never shrinks.
		scale := (1 - hidden) / measurableTotal
		for f := range raw {
			raw[f] *= scale
		}
	}

	// Round measurables to one decimal, then let hidden absorb the rounding
	// remainder so the total is exactly 100.
	weights := make(models.FactorWeights, len(raw)+1)
	var roundedTotal float64
	for f, w := range raw {
		r := round1(w * 100)
		weights[f] = r
		roundedTotal += r
	}
	weights[models.FactorHidden] = round1(100 - roundedTotal)

	return Result{
		Weights:          weights,
		Correlations:     correlations,
		SampleSize:       n,
		SaveCountVisible: saveVisible,
	}, true
}

// spearman computes ρ = 1 − 6·Σd²/(n·(n²−1)) between the actual rank order
// and the rank order induced by the factor's values. Identical values across
// the sample carry no information and yield 0.
func spearman(sample []models.Entity, factor string) float64 {
	n := len(sample)
	if n < 2 {
		return 0
	}

	values := make([]int, n)
	identical := true
	for i, e := range sample {
		values[i] = e.FactorValue(factor)
		if values[i] != values[0] {
			identical = false
		}
	}
	if identical {
		return 0
	}

	factorRank := rankByValue(values)

	var sumD2 float64
	for i := 0; i < n; i++ {
		d := float64((i + 1) - factorRank[i])
		sumD2 += d * d
	}
	nf := float64(n)
	return 1 - (6*sumD2)/(nf*(nf*nf-1))
}

// rankByValue assigns each index a 1-based rank by descending value, ties
// broken by original order.
func rankByValue(values []int) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})

	ranks := make([]int, len(values))
	for pos, i := range idx {
		ranks[i] = pos + 1
	}
	return ranks
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
