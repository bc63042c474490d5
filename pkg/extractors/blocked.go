package extractors

import "strings"

// IsBlocked reports whether the page is the source's access-restriction
// interstitial. Detection is a literal phrase match; the phrase is
// configurable because the source has changed its wording before.
func IsBlocked(html, phrase string) bool {
	return phrase != "" && strings.Contains(html, phrase)
}
