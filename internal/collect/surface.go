package collect

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/placemetrics/rankengine/pkg/fetcher"
)

// ScrollSurface abstracts the incrementally extendable result surface. The
// production surface talks HTTP; tests drive a scripted fake. Browser-level
// rendering can slot in behind the same interface.
type ScrollSurface interface {
	// Open loads the first result window for a keyword.
	Open(ctx context.Context, keyword string) error
	// Extend grows the surface by one step (one scroll / one page).
	Extend(ctx context.Context) error
	// HTML returns everything rendered so far.
	HTML() string
	Close() error
}

// pagedSurface fetches the search endpoint page by page and accumulates the
// markup, approximating what infinite scroll exposes to the client.
type pagedSurface struct {
	fetch    *fetcher.Fetcher
	template string
	keyword  string
	page     int
	buf      strings.Builder
}

// NewPagedSurface returns the default HTTP-backed surface.
func NewPagedSurface(f *fetcher.Fetcher, urlTemplate string) ScrollSurface {
	return &pagedSurface{fetch: f, template: urlTemplate}
}

func (s *pagedSurface) Open(ctx context.Context, keyword string) error {
	s.keyword = keyword
	s.page = 1
	s.buf.Reset()
	return s.load(ctx)
}

func (s *pagedSurface) Extend(ctx context.Context) error {
	s.page++
	return s.load(ctx)
}

func (s *pagedSurface) load(ctx context.Context) error {
	target := fmt.Sprintf(s.template, url.QueryEscape(s.keyword))
	if s.page > 1 {
		target = fmt.Sprintf("%s&page=%d", target, s.page)
	}
	html, err := s.fetch.GetHTML(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to load result page %d: %w", s.page, err)
	}
	s.buf.WriteString(html)
	return nil
}

func (s *pagedSurface) HTML() string { return s.buf.String() }

func (s *pagedSurface) Close() error { return nil }
