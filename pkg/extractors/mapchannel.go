package extractors

import "regexp"

// The map/list view exposes ids only, through any of these shapes. Ids on
// this source are at least 8 digits, which keeps short numerics (counts,
// coordinates) out of the match set.
var mapPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/place/(\d{8,})`),
	regexp.MustCompile(`data-id="(\d{8,})"`),
	regexp.MustCompile(`"id"\s*:\s*"?(\d{8,})`),
}

// MapChannelIDs extracts distinct place ids from the secondary map channel,
// in document order.
func MapChannelIDs(html string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, re := range mapPatterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				ids = append(ids, m[1])
			}
		}
	}
	return ids
}
