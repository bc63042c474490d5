package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/placemetrics/rankengine/models"
	"github.com/placemetrics/rankengine/pkg/caching"
	"github.com/placemetrics/rankengine/pkg/fetcher"
	"github.com/placemetrics/rankengine/pkg/rankerr"
)

// fakeSurface replays a scripted sequence of rendered surfaces.
type fakeSurface struct {
	steps   []string
	idx     int
	opened  int
	extends int
}

func (s *fakeSurface) Open(ctx context.Context, keyword string) error {
	s.opened++
	s.idx = 0
	return nil
}

func (s *fakeSurface) Extend(ctx context.Context) error {
	s.extends++
	if s.idx < len(s.steps)-1 {
		s.idx++
	}
	return nil
}

func (s *fakeSurface) HTML() string { return s.steps[s.idx] }
func (s *fakeSurface) Close() error { return nil }

// resultHTML renders a primary-channel page for the given ids.
func resultHTML(ids ...string) string {
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, `"PlaceSummary:%s":{"name":"상점%s","category":"한식","visitorReviewCount":"%s0","blogCafeReviewCount":"3"},`, id, id, id)
	}
	return b.String()
}

// newTestCollector wires a collector against an httptest server for the
// enrichment and map-channel endpoints.
func newTestCollector(t *testing.T, surface *fakeSurface, mapIDs []string) *Collector {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/map", func(w http.ResponseWriter, r *http.Request) {
		for _, id := range mapIDs {
			fmt.Fprintf(w, `<a href="/place/%s">x</a>`, id)
		}
	})
	mux.HandleFunc("/place/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		id := parts[2]
		if strings.HasSuffix(r.URL.Path, "/review") {
			fmt.Fprint(w, `<ul><li><time>오늘</time></li><li><time>어제</time></li></ul>`)
			return
		}
		fmt.Fprintf(w, `<html><head><meta property="og:title" content="보강상점%s : 네이버"><meta property="og:description" content="카페"></head><body><a>블로그리뷰 7</a></body></html>`, id)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := models.Default().Collect
	cfg.MapSearchURLTemplate = srv.URL + "/map?query=%s"
	cfg.DetailURLTemplate = srv.URL + "/place/%s/home"
	cfg.ReviewURLTemplate = srv.URL + "/place/%s/review"
	cfg.BatchPauseMillis = 0

	cache, err := caching.New(t.TempDir(), 30*time.Minute, nil)
	if err != nil {
		t.Fatal(err)
	}

	return New(cfg, Deps{
		Fetcher:    fetcher.New(5*time.Second, models.Default().Fetch.UserAgents),
		Cache:      cache,
		NewSurface: func() ScrollSurface { return surface },
	})
}

func TestCollectDeduplicatesAndEnriches(t *testing.T) {
	surface := &fakeSurface{steps: []string{
		resultHTML("11111111"),
		resultHTML("11111111", "22222222"),
		resultHTML("11111111", "22222222") + resultHTML("11111111"), // duplicate marker
	}}
	c := newTestCollector(t, surface, nil)

	set, err := c.Collect(context.Background(), "강남  맛집", Options{TargetCount: 2})
	if err != nil {
		t.Fatalf("Collect() failed: %v", err)
	}
	if set.Keyword != "강남 맛집" {
		t.Errorf("keyword not normalized: %q", set.Keyword)
	}
	if len(set.Entities) != 2 {
		t.Fatalf("got %d entities, want 2 deduplicated", len(set.Entities))
	}

	first := set.Entities[0]
	if first.Name != "상점11111111" {
		t.Errorf("markup name must survive enrichment untouched, got %q", first.Name)
	}
	if first.FreshnessCount != 2 {
		t.Errorf("freshness = %d, want 2 from the review page", first.FreshnessCount)
	}
	// Blog count came from the markup (3), enrichment must not overwrite it.
	if first.BlogReviews != 3 {
		t.Errorf("blog reviews = %d, want the original 3", first.BlogReviews)
	}
}

func TestCollectStopsWhenSurfaceStalls(t *testing.T) {
	same := resultHTML("11111111")
	surface := &fakeSurface{steps: []string{same}}
	c := newTestCollector(t, surface, nil)

	if _, err := c.Collect(context.Background(), "정체 키워드", Options{TargetCount: 50}); err != nil {
		t.Fatalf("Collect() failed: %v", err)
	}
	// 3 unchanged extensions end the loop well before the 15-attempt cap.
	if surface.extends != 3 {
		t.Errorf("extends = %d, want 3 (stable-stop)", surface.extends)
	}
}

func TestCollectBlockedPage(t *testing.T) {
	surface := &fakeSurface{steps: []string{"<html>서비스 이용이 제한되었습니다</html>"}}
	c := newTestCollector(t, surface, nil)

	_, err := c.Collect(context.Background(), "강남 맛집", Options{})
	if !rankerr.Is(err, rankerr.KindBlocked) {
		t.Errorf("err = %v, want KindBlocked", err)
	}
}

func TestCollectEmptyResultIsNotAnError(t *testing.T) {
	surface := &fakeSurface{steps: []string{"<html>검색결과가 없습니다</html>"}}
	c := newTestCollector(t, surface, nil)

	set, err := c.Collect(context.Background(), "없는키워드", Options{})
	if err != nil {
		t.Fatalf("zero results must not error: %v", err)
	}
	if len(set.Entities) != 0 {
		t.Errorf("got %d entities, want 0", len(set.Entities))
	}
}

func TestMapChannelMergeFillsPlaceholders(t *testing.T) {
	surface := &fakeSurface{steps: []string{resultHTML("11111111")}}
	c := newTestCollector(t, surface, []string{"11111111", "33333333"})

	set, err := c.Collect(context.Background(), "강남 맛집", Options{TargetCount: 5})
	if err != nil {
		t.Fatalf("Collect() failed: %v", err)
	}
	if len(set.Entities) != 2 {
		t.Fatalf("got %d entities, want primary + 1 new map id", len(set.Entities))
	}

	placeholder := set.Entities[1]
	if placeholder.ID != "33333333" {
		t.Fatalf("merged id = %s", placeholder.ID)
	}
	// The placeholder arrived id-only; name enrichment must have filled it.
	if placeholder.Name != "보강상점33333333" {
		t.Errorf("placeholder name = %q, want enriched detail name", placeholder.Name)
	}
	if placeholder.Category != "카페" {
		t.Errorf("placeholder category = %q", placeholder.Category)
	}
	if placeholder.BlogReviews != 7 {
		t.Errorf("placeholder blog reviews = %d, want 7 from detail page", placeholder.BlogReviews)
	}
}

func TestSearchCacheAndForceRefresh(t *testing.T) {
	surface := &fakeSurface{steps: []string{resultHTML("11111111", "22222222")}}
	c := newTestCollector(t, surface, nil)
	ctx := context.Background()

	if _, err := c.Collect(ctx, "강남 맛집", Options{TargetCount: 2}); err != nil {
		t.Fatal(err)
	}
	if surface.opened != 1 {
		t.Fatalf("opened = %d after first collect", surface.opened)
	}

	set, err := c.Collect(ctx, "강남 맛집", Options{TargetCount: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !set.FromCache {
		t.Error("second collect must come from cache")
	}
	if surface.opened != 1 {
		t.Errorf("opened = %d, cache must avoid re-collection", surface.opened)
	}

	set, err = c.Collect(ctx, "강남 맛집", Options{TargetCount: 2, ForceRefresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if set.FromCache {
		t.Error("forceRefresh must bypass the cache")
	}
	if surface.opened != 2 {
		t.Errorf("opened = %d, forceRefresh must re-collect", surface.opened)
	}
}
