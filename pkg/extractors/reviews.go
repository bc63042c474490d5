package extractors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/placemetrics/rankengine/pkg/normalize"
)

var (
	blogTextRe = regexp.MustCompile(`블로그\s*리뷰\s*([\d,]+)`)
	blogJSONRe = regexp.MustCompile(`"blogCafeReviewCount"\s*:\s*"?([\d,]+)`)
)

// BlogReviewCount reads the blog review tally from a detail page. The
// visible tab label is tried first, then the embedded graph payload.
func BlogReviewCount(html string) (int, bool) {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		count := -1
		doc.Find("a, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if m := blogTextRe.FindStringSubmatch(s.Text()); m != nil {
				count = normalize.ParseCount(m[1], 0)
				return false
			}
			return true
		})
		if count >= 0 {
			return count, true
		}
	}

	if m := blogJSONRe.FindStringSubmatch(html); m != nil {
		return normalize.ParseCount(m[1], 0), true
	}
	return 0, false
}
