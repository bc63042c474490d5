// Package collect produces a deduplicated, ranked result set for a keyword.
// It drives the scroll surface until enough entities are visible, merges the
// secondary map channel when the primary under-returns, and runs bounded
// enrichment passes to fill the fields the list view does not expose.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/placemetrics/rankengine/internal/common"
	"github.com/placemetrics/rankengine/models"
	"github.com/placemetrics/rankengine/pkg/caching"
	"github.com/placemetrics/rankengine/pkg/extractors"
	"github.com/placemetrics/rankengine/pkg/fetcher"
	"github.com/placemetrics/rankengine/pkg/rankerr"
)

// Collector assembles SearchResultSets. Construct one per configuration via
// New and share it across requests.
type Collector struct {
	cfg         models.CollectSettings
	fetch       *fetcher.Fetcher
	cache       *caching.Cache
	strategies  []extractors.Strategy
	newSurface  func() ScrollSurface
	mobileAgent string
	logger      *slog.Logger
	now         func() time.Time
}

// Deps are the collector's injected collaborators. NewSurface may be nil,
// which selects the HTTP paged surface.
type Deps struct {
	Fetcher     *fetcher.Fetcher
	Cache       *caching.Cache
	NewSurface  func() ScrollSurface
	MobileAgent string
	Logger      *slog.Logger
}

func New(cfg models.CollectSettings, d Deps) *Collector {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newSurface := d.NewSurface
	if newSurface == nil {
		newSurface = func() ScrollSurface {
			return NewPagedSurface(d.Fetcher, cfg.SearchURLTemplate)
		}
	}
	return &Collector{
		cfg:         cfg,
		fetch:       d.Fetcher,
		cache:       d.Cache,
		strategies:  extractors.BuiltinStrategies(),
		newSurface:  newSurface,
		mobileAgent: d.MobileAgent,
		logger:      logger,
		now:         time.Now,
	}
}

// Options tune one collection run.
type Options struct {
	// TargetCount overrides the configured default when positive.
	TargetCount int
	// ForceRefresh bypasses the per-keyword search cache.
	ForceRefresh bool
}

// Collect returns the enriched result set for a keyword. The raw
// deduplicated list (pre-enrichment) is cached per keyword; enrichment runs
// on every call so freshly cached lists still pick up names and counters.
func (c *Collector) Collect(ctx context.Context, keyword string, opts Options) (*models.SearchResultSet, error) {
	keyword = common.NormalizeKeyword(keyword)
	if keyword == "" {
		return nil, rankerr.New(rankerr.KindInvalidInput, "collect.Collect", "empty keyword")
	}

	target := c.cfg.TargetCount
	if opts.TargetCount > 0 {
		target = opts.TargetCount
	}

	key := caching.Key("search", keyword, strconv.Itoa(target))
	fromCache := false
	var entities []models.Entity

	if !opts.ForceRefresh {
		if data, ok := c.cache.Get(key); ok {
			if err := json.Unmarshal(data, &entities); err == nil {
				fromCache = true
				c.logger.Info("search served from cache", "keyword", keyword, "count", len(entities))
			} else {
				c.cache.Delete(key)
				entities = nil
			}
		}
	}

	if !fromCache {
		var err error
		entities, err = c.collectRaw(ctx, keyword, target)
		if err != nil {
			return nil, err
		}
		// The search cache is constructed with the medium TTL; 0 keeps it.
		if data, err := json.Marshal(entities); err == nil {
			c.cache.Set(key, data, 0)
		}
	}

	c.enrich(ctx, entities)

	return &models.SearchResultSet{
		Keyword:      keyword,
		Entities:     entities,
		TotalResults: len(entities),
		CollectedAt:  c.now(),
		FromCache:    fromCache,
	}, nil
}

// collectRaw runs the scroll loop and the map-channel merge. Zero results
// are returned as an empty list; only the blocked interstitial is an error.
func (c *Collector) collectRaw(ctx context.Context, keyword string, target int) ([]models.Entity, error) {
	surface := c.newSurface()
	defer surface.Close()

	if err := surface.Open(ctx, keyword); err != nil {
		return nil, rankerr.Wrap(rankerr.KindTransientFailure, "collect.open", err)
	}

	best := surface.HTML()
	if extractors.IsBlocked(best, c.cfg.BlockedPhrase) {
		return nil, rankerr.New(rankerr.KindBlocked, "collect.open", "source denied access for %q", keyword)
	}
	bestCount := len(extractors.UniqueMarkerIDs(best, c.strategies))

	unchanged := 0
	for attempt := 0; attempt < c.cfg.MaxScrollAttempts && bestCount < target && unchanged < c.cfg.StableStopRounds; attempt++ {
		if err := surface.Extend(ctx); err != nil {
			c.logger.Warn("scroll extension failed, keeping best surface", "attempt", attempt+1, "error", err)
			break
		}
		html := surface.HTML()
		count := len(extractors.UniqueMarkerIDs(html, c.strategies))
		if count > bestCount {
			best = html
			bestCount = count
			unchanged = 0
		} else {
			unchanged++
		}
	}

	entities := extractors.ExtractEntities(best, c.strategies)
	c.logger.Info("primary channel collected", "keyword", keyword, "count", len(entities), "target", target)

	if len(entities) < target {
		entities = c.mergeMapChannel(ctx, keyword, entities)
	}
	return entities, nil
}

// mergeMapChannel pulls extra ids from the map/list view. The channel only
// supplies ids; entries join as placeholders for the name enrichment pass.
func (c *Collector) mergeMapChannel(ctx context.Context, keyword string, entities []models.Entity) []models.Entity {
	mapURL := fmt.Sprintf(c.cfg.MapSearchURLTemplate, url.QueryEscape(keyword))
	html, err := c.fetch.GetHTMLWithAgent(ctx, mapURL, c.mobileAgent)
	if err != nil {
		c.logger.Warn("map channel unavailable, continuing with primary only", "keyword", keyword, "error", err)
		return entities
	}

	seen := make(map[string]bool, len(entities))
	for _, e := range entities {
		seen[e.ID] = true
	}

	added := 0
	for _, id := range extractors.MapChannelIDs(html) {
		if !seen[id] {
			seen[id] = true
			entities = append(entities, models.Entity{ID: id})
			added++
		}
	}
	if added > 0 {
		c.logger.Info("map channel merged", "keyword", keyword, "added", added)
	}
	return entities
}
