// Package fetcher wraps net/http with the transport behavior the collector
// needs: per-request timeouts, rotating desktop user agents, and an optional
// per-call proxy.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

// HTTPError reports a non-2xx response so callers can classify it apart
// from connect errors.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

type Fetcher struct {
	timeout time.Duration
	agents  []string
}

// New builds a Fetcher. agents must be non-empty; requests pick one at
// random per call.
func New(timeout time.Duration, agents []string) *Fetcher {
	return &Fetcher{
		timeout: timeout,
		agents:  agents,
	}
}

// userAgent picks a random agent. The top-level rand source is locked, so
// concurrent enrichment batches can call this safely.
func (f *Fetcher) userAgent() string {
	if len(f.agents) == 0 {
		return "Mozilla/5.0"
	}
	return f.agents[rand.Intn(len(f.agents))]
}

// client builds an http.Client, dialing through proxyURL when non-empty.
func (f *Fetcher) client(proxyURL string) (*http.Client, error) {
	c := &http.Client{Timeout: f.timeout}
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		c.Transport = &http.Transport{Proxy: http.ProxyURL(parsed)}
	}
	return c, nil
}

// GetHTML fetches a page with a rotating desktop user agent.
func (f *Fetcher) GetHTML(ctx context.Context, rawURL string) (string, error) {
	return f.GetHTMLWithAgent(ctx, rawURL, f.userAgent())
}

// GetHTMLWithAgent fetches a page with an explicit user agent. The map
// channel uses this with a mobile agent.
func (f *Fetcher) GetHTMLWithAgent(ctx context.Context, rawURL, agent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", agent)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9")

	client, err := f.client("")
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// PostJSON sends a JSON payload, optionally through a proxy, and returns
// the raw response body. Non-200 responses come back as *HTTPError.
func (f *Fetcher) PostJSON(ctx context.Context, rawURL, proxyURL string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", f.userAgent())

	client, err := f.client(proxyURL)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return respBody, nil
}
