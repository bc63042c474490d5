// Package gapplan turns the score gap to the current #1 into a prioritized,
// quantity-specific action plan. Factors are consumed in controllability
// order (how easy they are to influence through marketing), never by weight.
package gapplan

import (
	"fmt"
	"math"
	"sort"

	"github.com/placemetrics/rankengine/models"
)

// Planner computes gap plans under one configuration.
type Planner struct {
	cfg models.PlanSettings
}

func New(cfg models.PlanSettings) *Planner {
	return &Planner{cfg: cfg}
}

// Input bundles everything the planner needs about one keyword sample.
type Input struct {
	Target       models.EntityScore
	Leader       models.EntityScore
	TargetEntity models.Entity
	Entities     []models.Entity
	Weights      models.FactorWeights
	// TrafficCount is the caller-observed visit count, 0 when unknown.
	TrafficCount int
}

// lever is one candidate factor with its conversion rate and headroom.
type lever struct {
	factor        string
	order         int
	pointsPerUnit float64
	headroom      int // units the target can still add
	potentialGain float64
}

// Plan builds the combined greedy plan plus per-factor single-lever reports.
func (p *Planner) Plan(in Input) *models.GapPlan {
	rawGap := in.Leader.TotalScore - in.Target.TotalScore
	if rawGap <= 0 {
		return &models.GapPlan{
			Gap:             rawGap,
			Achievable:      true,
			Recommendations: []string{"already at or above the leader's score, maintain current factors"},
		}
	}
	gap := rawGap + p.cfg.GapMargin

	levers := p.levers(in)
	plan := &models.GapPlan{Gap: gap}

	remaining := gap
	for _, l := range levers {
		if remaining <= 0 {
			break
		}
		if l.potentialGain >= remaining {
			units := ceilUnits(remaining, l.pointsPerUnit)
			if units > l.headroom {
				units = l.headroom
			}
			gained := round1(float64(units) * l.pointsPerUnit)
			plan.Actions = append(plan.Actions, models.FactorAction{
				Factor:        l.factor,
				Units:         units,
				PointsPerUnit: round2(l.pointsPerUnit),
				GainedPoints:  gained,
			})
			remaining = 0
			break
		}

		// Full headroom is not enough; consume it and move on.
		plan.Actions = append(plan.Actions, models.FactorAction{
			Factor:        l.factor,
			Units:         l.headroom,
			PointsPerUnit: round2(l.pointsPerUnit),
			GainedPoints:  round1(l.potentialGain),
		})
		remaining -= l.potentialGain
	}

	plan.Achievable = remaining <= 1e-9
	if !plan.Achievable {
		plan.ResidualGap = round1(remaining)
	}

	for _, l := range levers {
		recommended := ceilUnits(gap, l.pointsPerUnit)
		if recommended > l.headroom {
			recommended = l.headroom
		}
		plan.Levers = append(plan.Levers, models.SingleLever{
			Factor:           l.factor,
			PotentialGain:    round1(l.potentialGain),
			CanBeatAlone:     l.potentialGain >= gap,
			RecommendedUnits: recommended,
		})
	}

	if in.TrafficCount > 0 {
		plan.Traffic = p.trafficEstimate(in, plan)
	}
	plan.Recommendations = p.recommendations(plan)
	return plan
}

// levers builds the candidate list in controllability order, ties broken by
// larger potential gain.
func (p *Planner) levers(in Input) []lever {
	var out []lever

	// The hidden lever is expressed directly in score points; a "unit" is
	// one tenth of a point so small gaps still get a concrete quantity.
	hiddenWeight := in.Weights[models.FactorHidden]
	hiddenHave := in.Target.Contributions[models.FactorHidden]
	if hiddenPotential := hiddenWeight - hiddenHave; hiddenPotential > 0 {
		out = append(out, lever{
			factor:        models.FactorHidden,
			order:         p.order(models.FactorHidden),
			pointsPerUnit: 0.1,
			headroom:      int(math.Ceil(hiddenPotential * 10)),
			potentialGain: hiddenPotential,
		})
	}

	for factor, weight := range in.Weights {
		if factor == models.FactorHidden || weight <= 0 {
			continue
		}
		maxObserved := 0
		for _, e := range in.Entities {
			if v := e.FactorValue(factor); v > maxObserved {
				maxObserved = v
			}
		}
		if maxObserved == 0 {
			continue
		}
		headroom := maxObserved - in.TargetEntity.FactorValue(factor)
		if headroom <= 0 {
			continue
		}
		ppu := weight / float64(maxObserved)
		out = append(out, lever{
			factor:        factor,
			order:         p.order(factor),
			pointsPerUnit: ppu,
			headroom:      headroom,
			potentialGain: float64(headroom) * ppu,
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].order != out[b].order {
			return out[a].order < out[b].order
		}
		return out[a].potentialGain > out[b].potentialGain
	})
	return out
}

func (p *Planner) order(factor string) int {
	if o, ok := p.cfg.Controllability[factor]; ok {
		return o
	}
	return len(p.cfg.Controllability) + 1
}

// trafficEstimate converts the hidden-score portion of the plan into visit
// counts. Every number here is heuristic; the rank-ratio floor keeps low
// ranks from exploding the estimate.
func (p *Planner) trafficEstimate(in Input, plan *models.GapPlan) *models.TrafficEstimate {
	rank := in.TargetEntity.Rank
	rankRatio := 1 - float64(rank-1)*0.15
	if rankRatio < 0.3 {
		rankRatio = 0.3
	}

	hiddenWeight := in.Weights[models.FactorHidden]
	hiddenHave := in.Target.Contributions[models.FactorHidden]

	estByRank := float64(in.TrafficCount) / rankRatio
	estimatedLeader := estByRank
	if hiddenHave > 0 {
		estByHidden := float64(in.TrafficCount) * hiddenWeight / hiddenHave
		estimatedLeader = (estByRank + estByHidden) / 2
	}

	var hiddenPoints float64
	for _, a := range plan.Actions {
		if a.Factor == models.FactorHidden {
			hiddenPoints = a.GainedPoints
		}
	}
	recommended := 0
	if hiddenWeight > 0 && hiddenPoints > 0 {
		recommended = int(math.Ceil(hiddenPoints / hiddenWeight * estimatedLeader))
	}

	return &models.TrafficEstimate{
		ObservedTraffic:   in.TrafficCount,
		RankRatio:         round2(rankRatio),
		EstimatedLeader:   int(math.Round(estimatedLeader)),
		RecommendedVisits: recommended,
		ExpectedCTR:       p.cfg.RankCTR[rank],
	}
}

func (p *Planner) recommendations(plan *models.GapPlan) []string {
	var recs []string
	for _, a := range plan.Actions {
		switch a.Factor {
		case models.FactorHidden:
			recs = append(recs, fmt.Sprintf("raise hidden-signal score by %.1f points, e.g. paid traffic or saves (+%.1f pts)", float64(a.Units)*0.1, a.GainedPoints))
		case models.FactorFreshness:
			recs = append(recs, fmt.Sprintf("gather %d reviews within the next 7 days (+%.1f pts)", a.Units, a.GainedPoints))
		case models.FactorBlogReview:
			recs = append(recs, fmt.Sprintf("add %d blog reviews (+%.1f pts)", a.Units, a.GainedPoints))
		case models.FactorVisitorReview:
			recs = append(recs, fmt.Sprintf("add %d visitor reviews (+%.1f pts)", a.Units, a.GainedPoints))
		case models.FactorSaveCount:
			recs = append(recs, fmt.Sprintf("add %d saves (+%.1f pts)", a.Units, a.GainedPoints))
		}
	}
	if !plan.Achievable {
		recs = append(recs, fmt.Sprintf("every factor at its observed maximum still leaves a %.1f point gap, rank 1 is not reachable this period", plan.ResidualGap))
	}
	return recs
}

// ceilUnits is ceil(points/pointsPerUnit) with a tolerance so float noise
// does not add a phantom unit.
func ceilUnits(points, pointsPerUnit float64) int {
	return int(math.Ceil(points/pointsPerUnit - 1e-9))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
