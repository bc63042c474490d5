package extractors

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/placemetrics/rankengine/models"
	"github.com/placemetrics/rankengine/pkg/normalize"
)

var (
	nameRe     = regexp.MustCompile(`"name"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	categoryRe = regexp.MustCompile(`"category"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	visitorRe  = regexp.MustCompile(`"visitorReview(?:s)?(?:Total|Count)"\s*:\s*"?([\d,]+)`)
	blogRe     = regexp.MustCompile(`"blogCafeReviewCount"\s*:\s*"?([\d,]+)`)
	tagRe      = regexp.MustCompile(`<[^>]*>`)
)

// ExtractEntities scans the result page for every marker family and builds
// one Entity per distinct id, filling whatever fields the surrounding graph
// object exposes. Fields missing from the markup stay zero; the enrichment
// passes fill them later.
func ExtractEntities(html string, strategies []Strategy) []models.Entity {
	seen := make(map[string]bool)
	var out []models.Entity

	for _, s := range strategies {
		ms, ok := s.(*MarkerStrategy)
		if !ok {
			for _, id := range s.IDs(html) {
				if !seen[id] {
					seen[id] = true
					out = append(out, models.Entity{ID: id})
				}
			}
			continue
		}

		for _, m := range ms.re.FindAllStringSubmatchIndex(html, -1) {
			id := html[m[2]:m[3]]
			if seen[id] {
				continue
			}
			seen[id] = true

			e := models.Entity{ID: id}
			if obj := objectAfter(html, m[1]); obj != "" {
				fillFields(&e, obj)
			}
			out = append(out, e)
		}
	}
	return out
}

// objectAfter returns the balanced JSON object starting at the first brace
// at or after from. Brace counting is string-aware so braces inside values
// do not break the scan.
func objectAfter(html string, from int) string {
	start := strings.IndexByte(html[from:], '{')
	if start < 0 || start > 200 {
		return ""
	}
	start += from

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(html); i++ {
		c := html[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return html[start : i+1]
			}
		}
	}
	return ""
}

func fillFields(e *models.Entity, obj string) {
	if m := nameRe.FindStringSubmatch(obj); m != nil {
		e.Name = cleanText(m[1])
	}
	if m := categoryRe.FindStringSubmatch(obj); m != nil {
		// The source joins subcategories with commas; the first segment is
		// the primary vertical.
		cat := cleanText(m[1])
		if idx := strings.Index(cat, ","); idx >= 0 {
			cat = strings.TrimSpace(cat[:idx])
		}
		e.Category = cat
	}
	if m := visitorRe.FindStringSubmatch(obj); m != nil {
		e.VisitorReviews = normalize.ParseCount(m[1], 0)
	}
	if m := blogRe.FindStringSubmatch(obj); m != nil {
		e.BlogReviews = normalize.ParseCount(m[1], 0)
	}
}

// cleanText resolves JSON escapes and strips embedded markup.
func cleanText(raw string) string {
	var s string
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &s); err != nil {
		s = raw
	}
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
