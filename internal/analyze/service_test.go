package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/placemetrics/rankengine/models"
	"github.com/placemetrics/rankengine/pkg/rankerr"
)

// searchPage renders result markup for ids with monotone decreasing counts.
func searchPage(ids ...string) string {
	var b strings.Builder
	for i, id := range ids {
		fmt.Fprintf(&b, `"PlaceSummary:%s":{"name":"상점%d","category":"한식","visitorReviewCount":%d,"blogCafeReviewCount":%d},`,
			id, i+1, 900-i*150, 300-i*40)
	}
	return b.String()
}

func upstreamBody(ids []string, extra string) string {
	var items []string
	for i, id := range ids {
		items = append(items, fmt.Sprintf(
			`{"id":"%s","name":"상점%d","category":"한식","visitorReviewCount":%d,"blogReviewCount":%d,"saveCount":%d}`,
			id, i+1, 900-i*150, 300-i*40, 500-i*80))
	}
	if extra != "" {
		items = append(items, fmt.Sprintf(
			`{"id":"%s","name":"꼴찌상점","category":"한식","visitorReviewCount":10,"blogReviewCount":5,"saveCount":2}`, extra))
	}
	return fmt.Sprintf(`{"code":"0000","items":[%s]}`, strings.Join(items, ","))
}

func newTestService(t *testing.T, upstreamStatus int) *Service {
	t.Helper()

	ids := []string{"11111111", "22222222", "33333333", "44444444", "55555555"}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPage(ids...))
	})
	mux.HandleFunc("/analysis", func(w http.ResponseWriter, r *http.Request) {
		if upstreamStatus != http.StatusOK {
			w.WriteHeader(upstreamStatus)
			return
		}
		fmt.Fprint(w, upstreamBody(ids, "99999999"))
	})
	mux.HandleFunc("/place/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/review") {
			fmt.Fprint(w, `<ul><li><time>어제</time></li></ul>`)
			return
		}
		fmt.Fprint(w, `<html><head><meta property="og:title" content="상점 : 네이버"></head></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := models.Default()
	cfg.CacheDir = t.TempDir()
	cfg.DBPath = ":memory:"
	cfg.UpstreamURL = srv.URL + "/analysis"
	cfg.Collect.SearchURLTemplate = srv.URL + "/search?query=%s"
	cfg.Collect.MapSearchURLTemplate = srv.URL + "/map?query=%s"
	cfg.Collect.DetailURLTemplate = srv.URL + "/place/%s/home"
	cfg.Collect.ReviewURLTemplate = srv.URL + "/place/%s/review"
	cfg.Collect.TargetCount = 5
	cfg.Collect.BatchPauseMillis = 0

	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	svc, err := NewService(cfg, logger)
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func TestResolveEndToEnd(t *testing.T) {
	svc := newTestService(t, http.StatusOK)

	result, err := svc.Resolve(context.Background(),
		"https://m.place.naver.com/restaurant/22222222/home", "강남  맛집", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if result.Keyword != "강남 맛집" {
		t.Errorf("keyword = %q, want normalized", result.Keyword)
	}
	if result.Rank == nil || *result.Rank != 2 {
		t.Fatalf("rank = %v, want 2", result.Rank)
	}
	// Five collected plus the upstream-only tail entity.
	if result.TotalResults != 6 {
		t.Errorf("total results = %d, want 6", result.TotalResults)
	}
	if result.Target == nil || result.Target.SaveCount != 420 {
		t.Errorf("target save count not merged from the analysis service: %+v", result.Target)
	}

	a := result.Analysis
	if a == nil {
		t.Fatal("analysis missing for a 6-entity sample")
	}
	if !a.SaveCountVisible {
		t.Error("save counts must be visible for a food-category leader")
	}
	if sum := a.Weights.Sum(); sum < 99.9 || sum > 100.1 {
		t.Errorf("weights sum = %.2f, want 100", sum)
	}
	if a.Target == nil || a.Plan == nil {
		t.Fatal("target score and plan expected when the target is ranked")
	}
	if a.Plan.Gap <= 0 {
		t.Errorf("gap = %.2f, want positive for a rank-2 target", a.Plan.Gap)
	}
	if a.Comparison == nil || a.Comparison.Above == nil || a.Comparison.Above.ID != "11111111" {
		t.Errorf("comparison above = %+v, want the leader", a.Comparison)
	}

	count, err := svc.store.RunCount("강남 맛집")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("recorded runs = %d, want 1", count)
	}
	samples, err := svc.store.RecentSamples("강남 맛집", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 6 {
		t.Errorf("recorded samples = %d, want one per ranked entity", len(samples))
	}
}

func TestResolveSecondCallServedFromCache(t *testing.T) {
	svc := newTestService(t, http.StatusOK)
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, "22222222", "강남 맛집", Options{}); err != nil {
		t.Fatal(err)
	}
	result, err := svc.Resolve(ctx, "22222222", "강남 맛집", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !result.FromCache {
		t.Error("second resolve must reuse the search cache")
	}
}

func TestResolveToleratesUpstreamFailure(t *testing.T) {
	svc := newTestService(t, http.StatusInternalServerError)

	result, err := svc.Resolve(context.Background(), "33333333", "강남 맛집", Options{})
	if err != nil {
		t.Fatalf("upstream being down must not fail the resolve: %v", err)
	}
	if result.TotalResults != 5 {
		t.Errorf("total results = %d, want the 5 collected entities", result.TotalResults)
	}
	if result.Target == nil || result.Target.SaveCount != 0 {
		t.Errorf("save count should stay zero without the analysis service: %+v", result.Target)
	}
	if result.Analysis == nil {
		t.Error("factor analysis must still run on collected data")
	}
}

func TestResolveRejectsBadInput(t *testing.T) {
	svc := newTestService(t, http.StatusOK)
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, "not-a-place", "강남 맛집", Options{}); !rankerr.Is(err, rankerr.KindInvalidInput) {
		t.Errorf("err = %v, want KindInvalidInput for a bad place", err)
	}
	if _, err := svc.Resolve(ctx, "22222222", "   ", Options{}); !rankerr.Is(err, rankerr.KindInvalidInput) {
		t.Errorf("err = %v, want KindInvalidInput for an empty keyword", err)
	}
}

func TestUnrankedTargetIsNotAnError(t *testing.T) {
	svc := newTestService(t, http.StatusOK)

	result, err := svc.Resolve(context.Background(), "77777777", "강남 맛집", Options{})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if result.Rank != nil {
		t.Errorf("rank = %v, want nil for a place outside the window", result.Rank)
	}
	if result.Analysis == nil {
		t.Error("competitor analysis still applies without the target")
	}
	if result.Analysis != nil && result.Analysis.Plan != nil {
		t.Error("no plan without a ranked target")
	}
}
