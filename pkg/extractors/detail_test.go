package extractors

import "testing"

func TestDetailProfile(t *testing.T) {
	tests := []struct {
		name         string
		html         string
		wantName     string
		wantCategory string
	}{
		{
			name: "meta tags",
			html: `<html><head>
<meta property="og:title" content="소문난 국밥집 : 네이버">
<meta property="og:description" content="한식">
</head></html>`,
			wantName:     "소문난 국밥집",
			wantCategory: "한식",
		},
		{
			name: "marketing description falls back to graph payload",
			html: `<html><head>
<meta property="og:title" content="카페 온도">
<meta property="og:description" content="서울에서 가장 분위기 좋은 카페를 찾는다면? 지금 방문해보세요!">
</head><body><script>{"category":"카페,디저트"}</script></body></html>`,
			wantName:     "카페 온도",
			wantCategory: "카페",
		},
		{
			name:         "empty page",
			html:         `<html><head></head><body></body></html>`,
			wantName:     "",
			wantCategory: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, category, err := DetailProfile(tt.html)
			if err != nil {
				t.Fatalf("DetailProfile() error: %v", err)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if category != tt.wantCategory {
				t.Errorf("category = %q, want %q", category, tt.wantCategory)
			}
		})
	}
}

func TestBlogReviewCount(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		want  int
		found bool
	}{
		{
			name:  "visible tab label",
			html:  `<html><body><a href="#review">블로그리뷰 1,234</a></body></html>`,
			want:  1234,
			found: true,
		},
		{
			name:  "graph payload fallback",
			html:  `<html><body><script>{"blogCafeReviewCount":"97"}</script></body></html>`,
			want:  97,
			found: true,
		},
		{
			name:  "absent",
			html:  `<html><body><span>리뷰 없음</span></body></html>`,
			want:  0,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := BlogReviewCount(tt.html)
			if found != tt.found || got != tt.want {
				t.Errorf("BlogReviewCount() = (%d, %v), want (%d, %v)", got, found, tt.want, tt.found)
			}
		})
	}
}
