// Package upstream implements the composed fetch protocol against the
// proxy-analysis service: cache, local quota windows, proxy rotation with
// failure classification, and a calendar-aligned global backoff flag.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/placemetrics/rankengine/models"
	"github.com/placemetrics/rankengine/pkg/caching"
	"github.com/placemetrics/rankengine/pkg/fetcher"
	"github.com/placemetrics/rankengine/pkg/normalize"
	"github.com/placemetrics/rankengine/pkg/proxy"
	"github.com/placemetrics/rankengine/pkg/rankerr"
	"github.com/placemetrics/rankengine/pkg/ratelimit"
)

// Item is one normalized row from the analysis service.
type Item struct {
	PlaceID        string `json:"place_id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	VisitorReviews int    `json:"visitor_reviews"`
	BlogReviews    int    `json:"blog_reviews"`
	SaveCount      int    `json:"save_count"`
}

// rawResponse mirrors the service payload. Count fields arrive as numbers
// or decorated strings interchangeably.
type rawResponse struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Items   []rawItem `json:"items"`
}

type rawItem struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Category string             `json:"category"`
	Visitor  normalize.RawCount `json:"visitorReviewCount"`
	Blog     normalize.RawCount `json:"blogReviewCount"`
	Save     normalize.RawCount `json:"saveCount"`
}

// globalFlag marks the period during which every proxy is known to be
// rate limited. It lives on disk so restarts keep the backoff.
type globalFlag struct {
	LimitedUntil time.Time `json:"limited_until"`
}

// Client is the resilient fetch layer for upstream analysis calls.
type Client struct {
	url      string
	sentinel string

	cache    *caching.Cache
	cacheTTL time.Duration
	minute   *ratelimit.Window
	hour     *ratelimit.Window
	proxies  *proxy.Rotator
	fetcher  *fetcher.Fetcher
	logger   *slog.Logger

	flagPath string
	flagMu   sync.Mutex
	now      func() time.Time
}

// Deps bundles the injected collaborators. One Client is built per process
// configuration; nothing here is a package-level singleton.
type Deps struct {
	Cache   *caching.Cache
	Minute  *ratelimit.Window
	Hour    *ratelimit.Window
	Proxies *proxy.Rotator
	Fetcher *fetcher.Fetcher
	Logger  *slog.Logger
	// StateDir holds the all-proxies-limited flag file.
	StateDir string
}

// New wires a Client from config and dependencies.
func New(cfg models.FetchSettings, url string, d Deps) *Client {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:      url,
		sentinel: cfg.RateLimitSentinel,
		cache:    d.Cache,
		cacheTTL: time.Duration(cfg.AnalysisCacheTTLSeconds) * time.Second,
		minute:   d.Minute,
		hour:     d.Hour,
		proxies:  d.Proxies,
		fetcher:  d.Fetcher,
		logger:   logger,
		flagPath: filepath.Join(d.StateDir, "all_proxies_limited.json"),
		now:      time.Now,
	}
}

// Analyze runs the composed fetch protocol for one query.
func (c *Client) Analyze(ctx context.Context, query string) ([]Item, error) {
	const op = "upstream.Analyze"

	key := caching.Key("analysis", query)
	if data, ok := c.cache.Get(key); ok {
		items, err := decodeItems(data)
		if err == nil {
			c.logger.Debug("analysis served from cache", "query", query)
			return items, nil
		}
		// A cache entry that no longer decodes is dropped and refetched.
		c.cache.Delete(key)
	}

	if until, limited := c.allLimited(); limited {
		return nil, rankerr.New(rankerr.KindAllProxiesExhausted, op,
			"all proxies rate limited until %s", until.Format(time.RFC3339))
	}

	if !c.minute.Acquire() {
		return nil, rankerr.New(rankerr.KindRateLimitExceeded, op,
			"per-minute quota exhausted, retry in %s", c.minute.RetryAfter().Round(time.Second))
	}
	if !c.hour.Acquire() {
		return nil, rankerr.New(rankerr.KindRateLimitExceeded, op,
			"per-hour quota exhausted, retry in %s", c.hour.RetryAfter().Round(time.Second))
	}

	items, err := c.fetchWithRotation(ctx, op, query)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(items); merr == nil {
		c.cache.Set(key, data, c.cacheTTL)
	}
	return items, nil
}

// fetchWithRotation iterates proxies, classifying each failure and marking
// the proxy before moving on. A direct connection is attempted exactly once
// when no proxy is available.
func (c *Client) fetchWithRotation(ctx context.Context, op, query string) ([]Item, error) {
	attempts := c.proxies.Len()
	if attempts < 3 {
		attempts = 3
	}

	triedDirect := false
	var lastErr error
	lastKind := rankerr.KindTransientFailure

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, rankerr.Wrap(rankerr.KindTransientFailure, op, err)
		}

		endpoint, ok := c.proxies.Next()
		proxyURL := ""
		label := "direct"
		if ok {
			proxyURL = endpoint.URL
			label = endpoint.Name
		} else {
			if triedDirect {
				break
			}
			triedDirect = true
		}

		items, err := c.fetchOnce(ctx, query, proxyURL)
		if err == nil {
			c.logger.Info("upstream analysis succeeded", "query", query, "via", label, "items", len(items))
			return items, nil
		}
		lastErr = err

		switch {
		case errors.Is(err, errUpstreamRateLimited):
			lastKind = rankerr.KindUpstreamRateLimited
			if endpoint != nil {
				c.proxies.MarkRateLimited(endpoint)
			}
		default:
			var httpErr *fetcher.HTTPError
			reason := "connect_error"
			if errors.As(err, &httpErr) {
				reason = fmt.Sprintf("http_%d", httpErr.StatusCode)
			}
			lastKind = rankerr.KindTransientFailure
			if endpoint != nil {
				c.proxies.MarkFailed(endpoint, reason)
			}
		}
		c.logger.Warn("upstream attempt failed", "query", query, "via", label, "error", err)
	}

	// The global flag is only set when the available set is actually empty,
	// not on generic failures.
	if c.proxies.Len() > 0 && c.proxies.AvailableCount() == 0 {
		until := proxy.NextMidnight(c.now())
		c.setAllLimited(until)
		return nil, rankerr.New(rankerr.KindAllProxiesExhausted, op,
			"no proxy remains usable, backing off until %s", until.Format(time.RFC3339))
	}
	if lastKind == rankerr.KindUpstreamRateLimited {
		return nil, rankerr.Wrap(rankerr.KindUpstreamRateLimited, op, lastErr)
	}
	return nil, rankerr.Wrap(rankerr.KindTransientFailure, op, lastErr)
}

// errUpstreamRateLimited is internal to attempt classification; callers see
// rankerr kinds.
var errUpstreamRateLimited = errors.New("upstream reported its daily quota")

func (c *Client) fetchOnce(ctx context.Context, query, proxyURL string) ([]Item, error) {
	body, err := c.fetcher.PostJSON(ctx, c.url, proxyURL, map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	var resp rawResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Code == c.sentinel {
		return nil, fmt.Errorf("%w: %s", errUpstreamRateLimited, resp.Message)
	}

	items := make([]Item, 0, len(resp.Items))
	for _, r := range resp.Items {
		items = append(items, Item{
			PlaceID:        r.ID,
			Name:           r.Name,
			Category:       r.Category,
			VisitorReviews: r.Visitor.Int(0),
			BlogReviews:    r.Blog.Int(0),
			SaveCount:      r.Save.Int(0),
		})
	}
	return items, nil
}

func decodeItems(data []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// allLimited reports whether the midnight-aligned global backoff is active.
func (c *Client) allLimited() (time.Time, bool) {
	c.flagMu.Lock()
	defer c.flagMu.Unlock()

	data, err := os.ReadFile(c.flagPath)
	if err != nil {
		return time.Time{}, false
	}
	var f globalFlag
	if err := json.Unmarshal(data, &f); err != nil {
		_ = os.Remove(c.flagPath)
		return time.Time{}, false
	}
	if c.now().Before(f.LimitedUntil) {
		return f.LimitedUntil, true
	}
	_ = os.Remove(c.flagPath)
	return time.Time{}, false
}

func (c *Client) setAllLimited(until time.Time) {
	c.flagMu.Lock()
	defer c.flagMu.Unlock()

	data, err := json.Marshal(globalFlag{LimitedUntil: until})
	if err != nil {
		return
	}
	if err := os.WriteFile(c.flagPath, data, 0644); err != nil {
		c.logger.Error("failed to persist global rate limit flag", "error", err)
	}
}

// ClearBackoff removes the global flag. Operator escape hatch, paired with
// Rotator.ResetAll.
func (c *Client) ClearBackoff() {
	c.flagMu.Lock()
	defer c.flagMu.Unlock()
	_ = os.Remove(c.flagPath)
}
