package common

import "testing"

func TestParsePlaceID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12345678", "12345678", true},
		{" 12345678 ", "12345678", true},
		{"https://m.place.naver.com/place/12345678/home", "12345678", true},
		{"https://m.place.naver.com/restaurant/98765432/review/visitor", "98765432", true},
		{"(https://m.place.naver.com/place/12345678)", "12345678", true},
		{"12ab", "", false},
		{"", "", false},
		{"https://example.com/about", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePlaceID(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParsePlaceID(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeKeyword(t *testing.T) {
	if got := NormalizeKeyword("  강남   맛집 "); got != "강남 맛집" {
		t.Errorf("NormalizeKeyword() = %q", got)
	}
}
