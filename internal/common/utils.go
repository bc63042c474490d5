package common

import (
	"regexp"
	"strings"
)

var (
	placeIDRe     = regexp.MustCompile(`^\d{6,}$`)
	placeURLRe    = regexp.MustCompile(`/(?:place|restaurant|cafe|attraction)/(\d{6,})`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	trailingJunk  = []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"}
	leadingJunk   = []string{"(", "[", "<", "\"", "'"}
)

// ParsePlaceID accepts either a bare numeric place id or a place URL pasted
// from the browser and returns the id. ok=false means the input is neither.
func ParsePlaceID(input string) (string, bool) {
	cleaned := strings.TrimSpace(input)
	for _, ch := range trailingJunk {
		cleaned = strings.TrimSuffix(cleaned, ch)
	}
	for _, ch := range leadingJunk {
		cleaned = strings.TrimPrefix(cleaned, ch)
	}
	cleaned = strings.TrimSpace(cleaned)

	if placeIDRe.MatchString(cleaned) {
		return cleaned, true
	}
	if m := placeURLRe.FindStringSubmatch(cleaned); m != nil {
		return m[1], true
	}
	return "", false
}

// NormalizeKeyword collapses internal whitespace so cache keys and queries
// are stable across copy-paste variants.
func NormalizeKeyword(keyword string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(keyword), " ")
}
