// Package analyze wires the collector, the upstream client, and the scoring
// pipeline into the resolve operation behind the CLI.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/placemetrics/rankengine/internal/collect"
	"github.com/placemetrics/rankengine/internal/common"
	"github.com/placemetrics/rankengine/internal/contrib"
	"github.com/placemetrics/rankengine/internal/gapplan"
	"github.com/placemetrics/rankengine/internal/rank"
	"github.com/placemetrics/rankengine/internal/upstream"
	"github.com/placemetrics/rankengine/internal/weights"
	"github.com/placemetrics/rankengine/models"
	"github.com/placemetrics/rankengine/pkg/caching"
	"github.com/placemetrics/rankengine/pkg/db"
	"github.com/placemetrics/rankengine/pkg/fetcher"
	"github.com/placemetrics/rankengine/pkg/proxy"
	"github.com/placemetrics/rankengine/pkg/rankerr"
	"github.com/placemetrics/rankengine/pkg/ratelimit"
	"github.com/placemetrics/rankengine/pkg/session"
)

// Service owns the full resolve pipeline and the operator surfaces around
// it (cache stats, quota status, proxy state).
type Service struct {
	cfg    *models.Config
	logger *slog.Logger

	collector *collect.Collector
	upstream  *upstream.Client
	engine    *weights.Engine
	planner   *gapplan.Planner
	store     *db.Store

	searchCache   *caching.Cache
	analysisCache *caching.Cache
	minute        *ratelimit.Window
	hour          *ratelimit.Window
	proxies       *proxy.Rotator
}

// NewService builds the pipeline from config. Cache and quota state live
// under cfg.CacheDir so repeated invocations share limits.
func NewService(cfg *models.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fetch := fetcher.New(time.Duration(cfg.Fetch.HTTPTimeoutSeconds)*time.Second, cfg.Fetch.UserAgents)

	analysisCache, err := caching.New(filepath.Join(cfg.CacheDir, "upstream"),
		time.Duration(cfg.Fetch.AnalysisCacheTTLSeconds)*time.Second, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analysis cache: %w", err)
	}
	searchCache, err := caching.New(filepath.Join(cfg.CacheDir, "search"),
		time.Duration(cfg.Fetch.SearchCacheTTLSeconds)*time.Second, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize search cache: %w", err)
	}

	stateDir := filepath.Join(cfg.CacheDir, "state")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	minute, err := ratelimit.NewWindow(stateDir, "minute", cfg.Fetch.MinuteLimit, time.Minute, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minute window: %w", err)
	}
	hour, err := ratelimit.NewWindow(stateDir, "hour", cfg.Fetch.HourLimit, time.Hour, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hour window: %w", err)
	}

	proxies := proxy.NewRotator(cfg.Proxies, time.Duration(cfg.Fetch.ProxyCooldownMinutes)*time.Minute, logger)

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Service{
		cfg:    cfg,
		logger: logger,
		collector: collect.New(cfg.Collect, collect.Deps{
			Fetcher:     fetch,
			Cache:       searchCache,
			MobileAgent: cfg.Fetch.MobileUserAgent,
			Logger:      logger,
		}),
		upstream: upstream.New(cfg.Fetch, cfg.UpstreamURL, upstream.Deps{
			Cache:    analysisCache,
			Minute:   minute,
			Hour:     hour,
			Proxies:  proxies,
			Fetcher:  fetch,
			Logger:   logger,
			StateDir: stateDir,
		}),
		engine:        weights.New(cfg.Weights),
		planner:       gapplan.New(cfg.Plan),
		store:         store,
		searchCache:   searchCache,
		analysisCache: analysisCache,
		minute:        minute,
		hour:          hour,
		proxies:       proxies,
	}, nil
}

// Close releases the database handle.
func (s *Service) Close() error {
	return s.store.Close()
}

// Options tune one resolve run.
type Options struct {
	ForceRefresh bool
	// Deep collects the extended result window before locating the target.
	Deep bool
	// TrafficCount is the caller-observed monthly visit count, 0 when unknown.
	TrafficCount int
}

// Resolve answers "where does this place rank for this keyword, and what
// would move it". An absent rank is a normal outcome; upstream being down
// degrades the factor data but never fails the resolve.
func (s *Service) Resolve(ctx context.Context, placeInput, keyword string, opts Options) (*models.ResolveResult, error) {
	const op = "analyze.Resolve"

	placeID, ok := common.ParsePlaceID(placeInput)
	if !ok {
		return nil, rankerr.New(rankerr.KindInvalidInput, op, "cannot extract a place id from %q", placeInput)
	}
	keyword = common.NormalizeKeyword(keyword)
	if keyword == "" {
		return nil, rankerr.New(rankerr.KindInvalidInput, op, "empty keyword")
	}

	run := session.NewRun(keyword, placeID)
	s.logger.Info("resolve started", "run_id", run.ID, "place_id", placeID, "keyword", keyword)

	target := 0
	if opts.Deep {
		target = s.cfg.Collect.DeepTargetCount
	}
	set, err := s.collector.Collect(ctx, keyword, collect.Options{
		TargetCount:  target,
		ForceRefresh: opts.ForceRefresh,
	})
	if err != nil {
		return nil, err
	}

	entities := set.Entities
	if items, uerr := s.upstream.Analyze(ctx, keyword); uerr == nil {
		entities = mergeUpstream(entities, items)
	} else {
		s.logger.Warn("upstream analysis unavailable, continuing with collected data",
			"keyword", keyword, "kind", rankerr.KindOf(uerr).String(), "error", uerr)
	}

	entities = rank.Assign(entities)
	targetEntity, targetRank, found := rank.Locate(entities, placeID)

	result := &models.ResolveResult{
		RunID:        run.ID,
		PlaceID:      placeID,
		Keyword:      keyword,
		TotalResults: len(entities),
		Competitors:  entities,
		FromCache:    set.FromCache,
		CollectedAt:  set.CollectedAt,
	}
	if found {
		result.Rank = &targetRank
		result.Target = targetEntity
	}

	result.Analysis = s.analyze(entities, placeID, targetEntity, targetRank, opts.TrafficCount)

	s.recordRun(run, result, entities)
	return result, nil
}

// analyze runs the weight, contribution, and planning stages. Returns nil
// when the sample is too small for correlations to mean anything.
func (s *Service) analyze(entities []models.Entity, placeID string, targetEntity *models.Entity, targetRank, trafficCount int) *models.Analysis {
	res, ok := s.engine.Compute(entities)
	if !ok {
		s.logger.Info("sample too small for factor analysis", "count", len(entities))
		return nil
	}

	scores := contrib.Scores(entities, res.Weights)
	analysis := &models.Analysis{
		SampleSize:       res.SampleSize,
		SaveCountVisible: res.SaveCountVisible,
		Weights:          res.Weights,
		Correlations:     res.Correlations,
		Scores:           scores,
	}
	if targetEntity == nil || len(scores) == 0 {
		return analysis
	}

	var targetScore *models.EntityScore
	for i := range scores {
		if scores[i].PlaceID == placeID {
			targetScore = &scores[i]
			break
		}
	}
	if targetScore == nil {
		return analysis
	}

	analysis.Target = targetScore
	analysis.Comparison = rank.Neighbors(entities, targetRank)
	analysis.Plan = s.planner.Plan(gapplan.Input{
		Target:       *targetScore,
		Leader:       scores[0],
		TargetEntity: *targetEntity,
		Entities:     entities,
		Weights:      res.Weights,
		TrafficCount: trafficCount,
	})
	return analysis
}

// recordRun persists the run and its training samples. Persistence failures
// are logged, never surfaced; the resolve result is already complete.
func (s *Service) recordRun(run session.Run, result *models.ResolveResult, entities []models.Entity) {
	rec := db.RunRecord{
		ID:            run.ID,
		Keyword:       run.Keyword,
		TargetPlaceID: run.PlaceID,
		TargetRank:    result.Rank,
		TotalResults:  result.TotalResults,
	}
	if err := s.store.InsertRun(rec); err != nil {
		s.logger.Warn("failed to record run", "run_id", run.ID, "error", err)
		return
	}
	if err := s.store.InsertSamples(run.ID, run.Keyword, entities); err != nil {
		s.logger.Warn("failed to record training samples", "run_id", run.ID, "error", err)
	}
}

// mergeUpstream folds the analysis items into the collected entities by id.
// Collected fields win; upstream fills gaps and contributes save counts,
// which the list markup never carries. Unseen items join at the tail.
func mergeUpstream(entities []models.Entity, items []upstream.Item) []models.Entity {
	index := make(map[string]int, len(entities))
	for i, e := range entities {
		index[e.ID] = i
	}
	for _, it := range items {
		if it.PlaceID == "" {
			continue
		}
		i, seen := index[it.PlaceID]
		if !seen {
			entities = append(entities, models.Entity{
				ID:             it.PlaceID,
				Name:           it.Name,
				Category:       it.Category,
				VisitorReviews: it.VisitorReviews,
				BlogReviews:    it.BlogReviews,
				SaveCount:      it.SaveCount,
			})
			index[it.PlaceID] = len(entities) - 1
			continue
		}
		e := &entities[i]
		if e.Name == "" {
			e.Name = it.Name
		}
		if e.Category == "" {
			e.Category = it.Category
		}
		if e.VisitorReviews == 0 {
			e.VisitorReviews = it.VisitorReviews
		}
		if e.BlogReviews == 0 {
			e.BlogReviews = it.BlogReviews
		}
		if e.SaveCount == 0 {
			e.SaveCount = it.SaveCount
		}
	}
	return entities
}
