package collect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/placemetrics/rankengine/models"
	"github.com/placemetrics/rankengine/pkg/extractors"
)

// enrich fills missing fields in place. Every pass is an idempotent merge:
// a populated field is never overwritten, and per-item failures leave the
// entity as it was. Batches are bounded and paused between, a politeness
// control the source punishes us for skipping.
func (c *Collector) enrich(ctx context.Context, entities []models.Entity) {
	c.enrichNames(ctx, entities)
	c.enrichBlogReviews(ctx, entities)
	c.enrichFreshness(ctx, entities)
}

func (c *Collector) enrichNames(ctx context.Context, entities []models.Entity) {
	var todo []int
	for i := range entities {
		if entities[i].Name == "" {
			todo = append(todo, i)
		}
		if len(todo) >= c.cfg.NameLookupCap {
			break
		}
	}
	if len(todo) == 0 {
		return
	}

	var mu sync.Mutex
	c.runBatches(ctx, todo, c.cfg.NameBatchSize, func(gctx context.Context, i int) {
		detailURL := fmt.Sprintf(c.cfg.DetailURLTemplate, entities[i].ID)
		html, err := c.fetch.GetHTML(gctx, detailURL)
		if err != nil {
			c.logger.Warn("name lookup failed", "id", entities[i].ID, "error", err)
			return
		}
		name, category, err := extractors.DetailProfile(html)
		if err != nil {
			return
		}

		mu.Lock()
		if entities[i].Name == "" && name != "" {
			entities[i].Name = name
		}
		if entities[i].Category == "" && category != "" {
			entities[i].Category = category
		}
		mu.Unlock()
	})
}

// enrichBlogReviews fills blog counts that came through as zero, a common
// under-report in the primary channel.
func (c *Collector) enrichBlogReviews(ctx context.Context, entities []models.Entity) {
	var todo []int
	for i := range entities {
		if entities[i].BlogReviews == 0 {
			todo = append(todo, i)
		}
	}
	if len(todo) == 0 {
		return
	}

	var mu sync.Mutex
	c.runBatches(ctx, todo, c.cfg.BlogBatchSize, func(gctx context.Context, i int) {
		detailURL := fmt.Sprintf(c.cfg.DetailURLTemplate, entities[i].ID)
		html, err := c.fetch.GetHTML(gctx, detailURL)
		if err != nil {
			c.logger.Warn("blog review lookup failed", "id", entities[i].ID, "error", err)
			return
		}
		count, found := extractors.BlogReviewCount(html)
		if !found {
			return
		}

		mu.Lock()
		if entities[i].BlogReviews == 0 {
			entities[i].BlogReviews = count
		}
		mu.Unlock()
	})
}

// enrichFreshness counts each entity's reviews from the last window by
// fetching its review listing.
func (c *Collector) enrichFreshness(ctx context.Context, entities []models.Entity) {
	var todo []int
	for i := range entities {
		if entities[i].FreshnessCount == 0 {
			todo = append(todo, i)
		}
	}
	if len(todo) == 0 {
		return
	}

	now := c.now()
	var mu sync.Mutex
	c.runBatches(ctx, todo, c.cfg.FreshnessBatchSize, func(gctx context.Context, i int) {
		reviewURL := fmt.Sprintf(c.cfg.ReviewURLTemplate, entities[i].ID)
		html, err := c.fetch.GetHTML(gctx, reviewURL)
		if err != nil {
			c.logger.Warn("freshness lookup failed", "id", entities[i].ID, "error", err)
			return
		}
		count := extractors.CountRecentReviews(html, now, c.cfg.FreshnessWindowDays)

		mu.Lock()
		if entities[i].FreshnessCount == 0 {
			entities[i].FreshnessCount = count
		}
		mu.Unlock()
	})
}

// runBatches processes indexes in bounded concurrent batches with an
// inter-batch pause. Cancellation abandons the remaining batches; item
// workers never fail the group, errors degrade to unfilled fields.
func (c *Collector) runBatches(ctx context.Context, todo []int, batchSize int, work func(ctx context.Context, i int)) {
	if batchSize <= 0 {
		batchSize = 1
	}
	pause := time.Duration(c.cfg.BatchPauseMillis) * time.Millisecond

	for start := 0; start < len(todo); start += batchSize {
		if ctx.Err() != nil {
			return
		}
		end := start + batchSize
		if end > len(todo) {
			end = len(todo)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, i := range todo[start:end] {
			i := i
			g.Go(func() error {
				work(gctx, i)
				return nil
			})
		}
		_ = g.Wait()

		if end < len(todo) && pause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(pause):
			}
		}
	}
}
