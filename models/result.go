package models

import "time"

// ResolveResult is the top-level answer for one (target, keyword) request.
// Rank is nil when the target sits below the collected window, which is a
// normal outcome, not an error.
type ResolveResult struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	PlaceID      string    `json:"place_id" yaml:"place_id"`
	Keyword      string    `json:"keyword" yaml:"keyword"`
	Rank         *int      `json:"rank" yaml:"rank"`
	TotalResults int       `json:"total_results" yaml:"total_results"`
	Target       *Entity   `json:"target,omitempty" yaml:"target,omitempty"`
	Competitors  []Entity  `json:"competitors" yaml:"competitors"`
	Analysis     *Analysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	FromCache    bool      `json:"from_cache" yaml:"from_cache"`
	CollectedAt  time.Time `json:"collected_at" yaml:"collected_at"`
}
