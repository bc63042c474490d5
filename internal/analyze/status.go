package analyze

import (
	"time"

	"github.com/placemetrics/rankengine/pkg/caching"
	"github.com/placemetrics/rankengine/pkg/proxy"
)

// QuotaStatus is the operator view of one local rate window.
type QuotaStatus struct {
	Name       string        `json:"name" yaml:"name"`
	Remaining  int           `json:"remaining" yaml:"remaining"`
	RetryAfter time.Duration `json:"retry_after" yaml:"retry_after"`
}

// EngineStatus aggregates every operational surface for the status command.
type EngineStatus struct {
	SearchCache   caching.Stats  `json:"search_cache" yaml:"search_cache"`
	AnalysisCache caching.Stats  `json:"analysis_cache" yaml:"analysis_cache"`
	Quotas        []QuotaStatus  `json:"quotas" yaml:"quotas"`
	Proxies       []proxy.Status `json:"proxies" yaml:"proxies"`
}

// Status collects cache, quota, and proxy state.
func (s *Service) Status() EngineStatus {
	return EngineStatus{
		SearchCache:   s.searchCache.Snapshot(),
		AnalysisCache: s.analysisCache.Snapshot(),
		Quotas: []QuotaStatus{
			{Name: s.minute.Name(), Remaining: s.minute.Remaining(), RetryAfter: s.minute.RetryAfter()},
			{Name: s.hour.Name(), Remaining: s.hour.Remaining(), RetryAfter: s.hour.RetryAfter()},
		},
		Proxies: s.proxies.Snapshot(),
	}
}

// ClearCaches drops every cached entry and returns how many were removed.
func (s *Service) ClearCaches() int {
	return s.searchCache.Clear() + s.analysisCache.Clear()
}

// CleanupCaches removes only expired entries.
func (s *Service) CleanupCaches() int {
	return s.searchCache.CleanupExpired() + s.analysisCache.CleanupExpired()
}

// ResetProxies returns every proxy to rotation and clears the global
// backoff flag. Operator escape hatch for a stuck midnight backoff.
func (s *Service) ResetProxies() {
	s.proxies.ResetAll()
	s.upstream.ClearBackoff()
}
