package extractors

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	// Review identifiers are MongoDB-style ObjectIds; the first 8 hex chars
	// encode the creation time as unix seconds.
	objectIDRe    = regexp.MustCompile(`"(?:id|reviewId)"\s*:\s*"([0-9a-f]{24})"`)
	relativeDayRe = regexp.MustCompile(`(\d+)일\s*전`)
)

// ObjectIDTime decodes the creation timestamp embedded in a review id.
func ObjectIDTime(id string) (time.Time, bool) {
	if len(id) != 24 {
		return time.Time{}, false
	}
	secs, err := strconv.ParseUint(id[:8], 16, 64)
	if err != nil || secs == 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(secs), 0), true
}

// CountRecentReviews counts reviews on a review-listing page created within
// the last windowDays. Embedded ObjectIds are authoritative; relative-date
// labels ("오늘", "어제", "N일 전") are the fallback when the page carries
// no decodable ids.
func CountRecentReviews(html string, now time.Time, windowDays int) int {
	since := now.AddDate(0, 0, -windowDays)

	seen := make(map[string]bool)
	count := 0
	for _, m := range objectIDRe.FindAllStringSubmatch(html, -1) {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		if t, ok := ObjectIDTime(id); ok && t.After(since) && !t.After(now.Add(time.Hour)) {
			count++
		}
	}
	if len(seen) > 0 {
		return count
	}

	return countRelativeDates(html, windowDays)
}

// countRelativeDates counts date labels inside <time> elements so stray
// page copy does not inflate the tally.
func countRelativeDates(html string, windowDays int) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}

	count := 0
	doc.Find("time").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		switch {
		case strings.Contains(text, "오늘"), strings.Contains(text, "어제"):
			count++
		default:
			if m := relativeDayRe.FindStringSubmatch(text); m != nil {
				if days, err := strconv.Atoi(m[1]); err == nil && days <= windowDays {
					count++
				}
			}
		}
	})
	return count
}
