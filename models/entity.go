// Package models defines the value types shared across the engine.
package models

import "time"

// Factor names used in weights, contributions and plans.
const (
	FactorVisitorReview = "visitorReview"
	FactorBlogReview    = "blogReview"
	FactorFreshness     = "freshness"
	FactorSaveCount     = "saveCount"
	FactorHidden        = "hidden"
)

// MeasurableFactors lists the directly measured factors in their canonical
// order. FactorSaveCount is category-gated and appended separately.
var MeasurableFactors = []string{FactorVisitorReview, FactorBlogReview, FactorFreshness}

// Entity is one competing listing in a keyword search result. Instances are
// assembled during a collection run and never mutated after rank assignment.
type Entity struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Category       string `json:"category" yaml:"category"`
	VisitorReviews int    `json:"visitor_reviews" yaml:"visitor_reviews"`
	BlogReviews    int    `json:"blog_reviews" yaml:"blog_reviews"`
	SaveCount      int    `json:"save_count" yaml:"save_count"`
	FreshnessCount int    `json:"freshness_count" yaml:"freshness_count"`
	// Rank is 1-based, assigned from list position. Zero until assigned.
	Rank int `json:"rank" yaml:"rank"`
}

// FactorValue returns the measured counter for a factor name. The hidden
// factor has no measured value and returns 0.
func (e Entity) FactorValue(factor string) int {
	switch factor {
	case FactorVisitorReview:
		return e.VisitorReviews
	case FactorBlogReview:
		return e.BlogReviews
	case FactorSaveCount:
		return e.SaveCount
	case FactorFreshness:
		return e.FreshnessCount
	default:
		return 0
	}
}

// SearchResultSet is the ordered collection outcome for one keyword. The
// slice order is the authoritative rank order.
type SearchResultSet struct {
	Keyword      string    `json:"keyword" yaml:"keyword"`
	Entities     []Entity  `json:"entities" yaml:"entities"`
	TotalResults int       `json:"total_results" yaml:"total_results"`
	CollectedAt  time.Time `json:"collected_at" yaml:"collected_at"`
	FromCache    bool      `json:"from_cache" yaml:"from_cache"`
}
