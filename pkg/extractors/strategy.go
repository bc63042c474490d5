// Package extractors pulls entity data out of the source's markup. The
// source renders search results through several markup families whose
// structural markers differ by entity type, so each family gets its own
// strategy and markup drift stays isolated here.
package extractors

import "regexp"

// Strategy identifies entities in one markup family.
type Strategy interface {
	// Name identifies the marker family.
	Name() string
	// IDs returns entity ids found in the page, in document order,
	// duplicates included.
	IDs(html string) []string
}

// MarkerStrategy matches a single structural marker pattern whose first
// capture group is the entity id.
type MarkerStrategy struct {
	name string
	re   *regexp.Regexp
}

func NewMarkerStrategy(name, pattern string) *MarkerStrategy {
	return &MarkerStrategy{name: name, re: regexp.MustCompile(pattern)}
}

func (s *MarkerStrategy) Name() string { return s.name }

func (s *MarkerStrategy) IDs(html string) []string {
	var ids []string
	for _, m := range s.re.FindAllStringSubmatch(html, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

// builtin covers every result-list marker family observed on the source.
// The typename pattern is the catch-all for graph objects keyed "id:slot".
var builtin = []*MarkerStrategy{
	NewMarkerStrategy("place_summary", `PlaceSummary:(\d+)`),
	NewMarkerStrategy("restaurant_list", `RestaurantListSummary:(\d+)`),
	NewMarkerStrategy("cafe_list", `CafeListSummary:(\d+)`),
	NewMarkerStrategy("attraction_list", `AttractionListItem:(\d+)`),
	NewMarkerStrategy("place_list", `PlaceListSummary:(\d+)`),
	NewMarkerStrategy("typename", `"(\d+):\d+":\{"__typename":"(?:Restaurant|Cafe|Place|Attraction)`),
}

// BuiltinStrategies returns the default strategy set.
func BuiltinStrategies() []Strategy {
	out := make([]Strategy, len(builtin))
	for i, s := range builtin {
		out[i] = s
	}
	return out
}

// UniqueMarkerIDs returns the distinct ids across all strategies. The count
// drives the scroll loop's stop condition.
func UniqueMarkerIDs(html string, strategies []Strategy) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, s := range strategies {
		for _, id := range s.IDs(html) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
