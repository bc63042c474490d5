package models

// FactorWeights maps factor name to a weight in [0,100]. Weights always
// include FactorHidden and sum to 100.
type FactorWeights map[string]float64

// Sum returns the total weight across all factors.
func (w FactorWeights) Sum() float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}

// EntityScore holds the per-factor contributions for one ranked entity.
// Each contribution lies in [0, weight]; TotalScore is their sum.
type EntityScore struct {
	PlaceID       string             `json:"place_id" yaml:"place_id"`
	Name          string             `json:"name" yaml:"name"`
	Rank          int                `json:"rank" yaml:"rank"`
	Contributions map[string]float64 `json:"contributions" yaml:"contributions"`
	TotalScore    float64            `json:"total_score" yaml:"total_score"`
}

// FactorAction is one step of the combined greedy plan.
type FactorAction struct {
	Factor        string  `json:"factor" yaml:"factor"`
	Units         int     `json:"units" yaml:"units"`
	PointsPerUnit float64 `json:"points_per_unit" yaml:"points_per_unit"`
	GainedPoints  float64 `json:"gained_points" yaml:"gained_points"`
}

// SingleLever reports whether one factor alone could close the whole gap.
type SingleLever struct {
	Factor           string  `json:"factor" yaml:"factor"`
	PotentialGain    float64 `json:"potential_gain" yaml:"potential_gain"`
	CanBeatAlone     bool    `json:"can_beat_alone" yaml:"can_beat_alone"`
	RecommendedUnits int     `json:"recommended_units" yaml:"recommended_units"`
}

// TrafficEstimate is a heuristic translation of the hidden-score gap into
// visit counts, available only when the caller supplied an observed traffic
// count. It is a modeling guess, not a measurement.
type TrafficEstimate struct {
	ObservedTraffic   int     `json:"observed_traffic" yaml:"observed_traffic"`
	RankRatio         float64 `json:"rank_ratio" yaml:"rank_ratio"`
	EstimatedLeader   int     `json:"estimated_leader_traffic" yaml:"estimated_leader_traffic"`
	RecommendedVisits int     `json:"recommended_extra_visits" yaml:"recommended_extra_visits"`
	ExpectedCTR       float64 `json:"expected_ctr" yaml:"expected_ctr"`
}

// GapPlan is the ordered action plan to close the score gap to rank 1.
type GapPlan struct {
	Gap             float64          `json:"gap" yaml:"gap"`
	Achievable      bool             `json:"achievable" yaml:"achievable"`
	ResidualGap     float64          `json:"residual_gap" yaml:"residual_gap"`
	Actions         []FactorAction   `json:"actions" yaml:"actions"`
	Levers          []SingleLever    `json:"levers" yaml:"levers"`
	Traffic         *TrafficEstimate `json:"traffic,omitempty" yaml:"traffic,omitempty"`
	Recommendations []string         `json:"recommendations" yaml:"recommendations"`
}

// Comparison bundles the neighbors directly above and below the target for
// UI context.
type Comparison struct {
	Above *Entity `json:"above,omitempty" yaml:"above,omitempty"`
	Below *Entity `json:"below,omitempty" yaml:"below,omitempty"`
}

// Analysis is the full factor decomposition for one keyword sample. The
// hidden factor is inferred from rank position, a clearly-labeled heuristic
// rather than a measured signal.
type Analysis struct {
	SampleSize       int                `json:"sample_size" yaml:"sample_size"`
	SaveCountVisible bool               `json:"save_count_visible" yaml:"save_count_visible"`
	Weights          FactorWeights      `json:"weights" yaml:"weights"`
	Correlations     map[string]float64 `json:"correlations" yaml:"correlations"`
	Scores           []EntityScore      `json:"scores" yaml:"scores"`
	Target           *EntityScore       `json:"target,omitempty" yaml:"target,omitempty"`
	Plan             *GapPlan           `json:"plan,omitempty" yaml:"plan,omitempty"`
	Comparison       *Comparison        `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}
