package db

import (
	"testing"

	"github.com/placemetrics/rankengine/models"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func rankedEntities() []models.Entity {
	return []models.Entity{
		{ID: "11111111", Name: "강남불백", Rank: 1, VisitorReviews: 900, BlogReviews: 300, SaveCount: 120, FreshnessCount: 9},
		{ID: "22222222", Name: "역삼식당", Rank: 2, VisitorReviews: 700, BlogReviews: 250, SaveCount: 80, FreshnessCount: 5},
		{ID: "33333333", Name: "미등록", Rank: 0}, // never surfaced in ranking
	}
}

func TestInsertAndCountRuns(t *testing.T) {
	store := setupTestDB(t)

	rank := 2
	err := store.InsertRun(RunRecord{
		ID:            "run-1",
		Keyword:       "강남 맛집",
		TargetPlaceID: "22222222",
		TargetRank:    &rank,
		TotalResults:  2,
	})
	if err != nil {
		t.Fatalf("InsertRun() failed: %v", err)
	}

	count, err := store.RunCount("강남 맛집")
	if err != nil {
		t.Fatalf("RunCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("run count = %d, want 1", count)
	}

	count, err = store.RunCount("다른 키워드")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("run count for unseen keyword = %d, want 0", count)
	}
}

func TestInsertRunWithoutRank(t *testing.T) {
	store := setupTestDB(t)

	// Target not found in results: rank stays NULL.
	err := store.InsertRun(RunRecord{
		ID:            "run-nil",
		Keyword:       "강남 맛집",
		TargetPlaceID: "99999999",
		TotalResults:  50,
	})
	if err != nil {
		t.Fatalf("InsertRun() with nil rank failed: %v", err)
	}
}

func TestInsertSamplesSkipsUnranked(t *testing.T) {
	store := setupTestDB(t)

	if err := store.InsertRun(RunRecord{ID: "run-1", Keyword: "강남 맛집", TargetPlaceID: "11111111", TotalResults: 3}); err != nil {
		t.Fatal(err)
	}
	if err := store.InsertSamples("run-1", "강남 맛집", rankedEntities()); err != nil {
		t.Fatalf("InsertSamples() failed: %v", err)
	}

	samples, err := store.RecentSamples("강남 맛집", 10)
	if err != nil {
		t.Fatalf("RecentSamples() failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2 (unranked entity skipped)", len(samples))
	}

	first := samples[0]
	if first.PlaceID != "11111111" || first.Position != 1 {
		t.Errorf("first sample = %s at %d, want 11111111 at 1", first.PlaceID, first.Position)
	}
	if first.VisitorReviews != 900 || first.BlogReviews != 300 || first.SaveCount != 120 || first.FreshnessCount != 9 {
		t.Errorf("factor columns round-tripped wrong: %+v", first)
	}
}

func TestRecentSamplesLimit(t *testing.T) {
	store := setupTestDB(t)

	if err := store.InsertRun(RunRecord{ID: "run-1", Keyword: "강남 맛집", TargetPlaceID: "11111111", TotalResults: 2}); err != nil {
		t.Fatal(err)
	}
	if err := store.InsertSamples("run-1", "강남 맛집", rankedEntities()); err != nil {
		t.Fatal(err)
	}

	samples, err := store.RecentSamples("강남 맛집", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 {
		t.Errorf("got %d samples, want limit of 1", len(samples))
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	store := setupTestDB(t)
	if err := store.InitSchema(); err != nil {
		t.Fatalf("re-applying schema failed: %v", err)
	}
}
