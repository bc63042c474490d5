package extractors

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DetailProfile pulls the display name and primary category from an entity
// detail page. The og:title meta is the stable anchor; the category falls
// back to the embedded graph payload when no meta carries it.
func DetailProfile(html string) (name, category string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse detail page: %w", err)
	}

	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		name = strings.TrimSpace(v)
		// Titles arrive as "상호명 : 네이버" style; keep the leading part.
		if idx := strings.Index(name, " : "); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
	}

	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && looksLikeCategory(v) {
		category = strings.TrimSpace(v)
	}
	if category == "" {
		if m := categoryRe.FindStringSubmatch(html); m != nil {
			category = cleanText(m[1])
			if idx := strings.Index(category, ","); idx >= 0 {
				category = strings.TrimSpace(category[:idx])
			}
		}
	}
	return name, category, nil
}

// looksLikeCategory filters out long marketing descriptions that sometimes
// occupy og:description.
func looksLikeCategory(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && len([]rune(v)) <= 20 && !strings.ContainsAny(v, ".!?")
}
