package extractors

import (
	"reflect"
	"testing"
)

const resultFixture = `<script>window.__APOLLO_STATE__={
"PlaceSummary:11111111":{"__typename":"PlaceSummary","name":"소문난 국밥집","category":"한식,국밥","visitorReviewCount":"1,204","blogCafeReviewCount":"321"},
"RestaurantListSummary:22222222":{"__typename":"RestaurantListSummary","name":"밥&면","category":"분식","visitorReviewsTotal":88},
"CafeListSummary:33333333":{"__typename":"CafeListSummary","name":"카페 <b>온도</b>","category":"카페","visitorReviewCount":"452","blogCafeReviewCount":"97"},
"44444444:1":{"__typename":"Cafe","name":"숨은카페","category":"카페,디저트"},
"PlaceSummary:11111111":{"__typename":"PlaceSummary"}
}</script>`

func TestMarkerStrategyIDs(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		want     []string
	}{
		{"place_summary", builtin[0], []string{"11111111", "11111111"}},
		{"restaurant_list", builtin[1], []string{"22222222"}},
		{"cafe_list", builtin[2], []string{"33333333"}},
		{"typename", builtin[5], []string{"44444444"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.strategy.IDs(resultFixture)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("IDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUniqueMarkerIDs(t *testing.T) {
	ids := UniqueMarkerIDs(resultFixture, BuiltinStrategies())
	if len(ids) != 4 {
		t.Fatalf("UniqueMarkerIDs() returned %d ids, want 4: %v", len(ids), ids)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestUniqueMarkerIDsEmptyPage(t *testing.T) {
	if ids := UniqueMarkerIDs("<html><body>검색결과가 없습니다</body></html>", BuiltinStrategies()); len(ids) != 0 {
		t.Errorf("expected no ids on an empty result page, got %v", ids)
	}
}

func TestIsBlocked(t *testing.T) {
	blocked := `<html><body>서비스 이용이 제한되었습니다.</body></html>`
	if !IsBlocked(blocked, "서비스 이용이 제한") {
		t.Error("blocked page not detected")
	}
	if IsBlocked("<html>ok</html>", "서비스 이용이 제한") {
		t.Error("normal page misdetected as blocked")
	}
	if IsBlocked(blocked, "") {
		t.Error("empty phrase must never match")
	}
}
