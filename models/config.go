package models

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the engine. All heuristic constants are
// named here rather than embedded at use sites; the YAML file overrides
// individual fields on top of Default().
type Config struct {
	UpstreamURL string   `yaml:"upstream_url"`
	CacheDir    string   `yaml:"cache_dir"`
	DBPath      string   `yaml:"db_path"`
	Proxies     []string `yaml:"proxies"`

	Fetch   FetchSettings   `yaml:"fetch"`
	Collect CollectSettings `yaml:"collect"`
	Weights WeightSettings  `yaml:"weights"`
	Plan    PlanSettings    `yaml:"plan"`
}

// FetchSettings tunes the resilient fetch layer.
type FetchSettings struct {
	HTTPTimeoutSeconds      int      `yaml:"http_timeout_seconds"`
	AnalysisCacheTTLSeconds int      `yaml:"analysis_cache_ttl_seconds"`
	SearchCacheTTLSeconds   int      `yaml:"search_cache_ttl_seconds"`
	MinuteLimit             int      `yaml:"minute_limit"`
	HourLimit               int      `yaml:"hour_limit"`
	ProxyCooldownMinutes    int      `yaml:"proxy_cooldown_minutes"`
	RateLimitSentinel       string   `yaml:"rate_limit_sentinel"`
	UserAgents              []string `yaml:"user_agents"`
	MobileUserAgent         string   `yaml:"mobile_user_agent"`
}

// CollectSettings tunes the search collector and its enrichment passes.
type CollectSettings struct {
	SearchURLTemplate    string `yaml:"search_url_template"`
	MapSearchURLTemplate string `yaml:"map_search_url_template"`
	DetailURLTemplate    string `yaml:"detail_url_template"`
	ReviewURLTemplate    string `yaml:"review_url_template"`

	TargetCount         int    `yaml:"target_count"`
	DeepTargetCount     int    `yaml:"deep_target_count"`
	MaxScrollAttempts   int    `yaml:"max_scroll_attempts"`
	StableStopRounds    int    `yaml:"stable_stop_rounds"`
	NameBatchSize       int    `yaml:"name_batch_size"`
	NameLookupCap       int    `yaml:"name_lookup_cap"`
	BlogBatchSize       int    `yaml:"blog_batch_size"`
	FreshnessBatchSize  int    `yaml:"freshness_batch_size"`
	BatchPauseMillis    int    `yaml:"batch_pause_millis"`
	FreshnessWindowDays int    `yaml:"freshness_window_days"`
	BlockedPhrase       string `yaml:"blocked_phrase"`
}

// WeightSettings tunes the factor weight engine.
type WeightSettings struct {
	SampleSize         int      `yaml:"sample_size"`
	MinSample          int      `yaml:"min_sample"`
	FactorFloor        float64  `yaml:"factor_floor"`
	HiddenFloor        float64  `yaml:"hidden_floor"`
	FoodCafeCategories []string `yaml:"food_cafe_categories"`
}

// IsFoodCafeCategory reports whether save counts are publicly visible for
// the category. Matching is a substring check, the category strings from the
// source are free-form.
func (w WeightSettings) IsFoodCafeCategory(category string) bool {
	if category == "" {
		return false
	}
	lower := strings.ToLower(category)
	for _, c := range w.FoodCafeCategories {
		if strings.Contains(lower, strings.ToLower(c)) {
			return true
		}
	}
	return false
}

// PlanSettings tunes the gap strategy planner. Controllability ranks factors
// by assumed ease of marketing intervention, smaller is easier; it orders
// the plan, never the weights.
type PlanSettings struct {
	GapMargin       float64         `yaml:"gap_margin"`
	Controllability map[string]int  `yaml:"controllability"`
	RankCTR         map[int]float64 `yaml:"rank_ctr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UpstreamURL: "http://adlog.ai.kr/placeAnalysis.php",
		CacheDir:    ".cache",
		DBPath:      "rankengine.db",
		Fetch: FetchSettings{
			HTTPTimeoutSeconds:      15,
			AnalysisCacheTTLSeconds: 86400,
			SearchCacheTTLSeconds:   1800,
			MinuteLimit:             5,
			HourLimit:               30,
			ProxyCooldownMinutes:    30,
			RateLimitSentinel:       "2000",
			UserAgents: []string{
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			},
			MobileUserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
		},
		Collect: CollectSettings{
			SearchURLTemplate:    "https://m.place.naver.com/place/list?query=%s",
			MapSearchURLTemplate: "https://m.map.naver.com/search2/search.naver?query=%s",
			DetailURLTemplate:    "https://m.place.naver.com/place/%s/home",
			ReviewURLTemplate:    "https://m.place.naver.com/place/%s/review/visitor",
			TargetCount:          50,
			DeepTargetCount:      300,
			MaxScrollAttempts:    15,
			StableStopRounds:     3,
			NameBatchSize:        10,
			NameLookupCap:        50,
			BlogBatchSize:        10,
			FreshnessBatchSize:   5,
			BatchPauseMillis:     500,
			FreshnessWindowDays:  7,
			BlockedPhrase:        "서비스 이용이 제한",
		},
		Weights: WeightSettings{
			SampleSize:  30,
			MinSample:   3,
			FactorFloor: 0.05,
			HiddenFloor: 0.10,
			FoodCafeCategories: []string{
				"음식점", "식당", "맛집", "카페", "베이커리", "빵집", "디저트",
				"한식", "중식", "일식", "양식", "분식", "패스트푸드", "치킨",
				"피자", "햄버거", "술집", "호프", "포차", "이자카야", "바",
				"브런치", "레스토랑", "뷔페", "고기", "삼겹살", "곱창", "족발",
				"해산물", "초밥", "라멘", "우동", "국수", "냉면", "칼국수",
			},
		},
		Plan: PlanSettings{
			GapMargin: 0.1,
			Controllability: map[string]int{
				FactorHidden:        1,
				FactorFreshness:     2,
				FactorBlogReview:    3,
				FactorVisitorReview: 4,
			},
			RankCTR: map[int]float64{
				1: 0.35, 2: 0.17, 3: 0.11, 4: 0.08, 5: 0.06,
				6: 0.05, 7: 0.04, 8: 0.03, 9: 0.025, 10: 0.02,
			},
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error, the defaults apply as-is.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes the default configuration as a starter file.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
