// Package proxy provides a round-robin proxy rotator with failure cooldowns.
// A failed proxy sits out a fixed cooldown; a rate-limited proxy sits out
// until the next local midnight, since upstream quotas are daily. Recovery
// is lazy: states expire when read, there is no background timer.
package proxy

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// State of one endpoint in the rotation.
type State int

const (
	Available State = iota
	FailedCooldown
	RateLimited
)

func (s State) String() string {
	switch s {
	case FailedCooldown:
		return "failed_cooldown"
	case RateLimited:
		return "rate_limited"
	default:
		return "available"
	}
}

// Endpoint is one proxy in the rotation.
type Endpoint struct {
	URL  string
	Name string

	state State
	until time.Time
}

// Status is a read-only view of an endpoint for reporting.
type Status struct {
	Name  string    `json:"name" yaml:"name"`
	State string    `json:"state" yaml:"state"`
	Until time.Time `json:"until,omitempty" yaml:"until,omitempty"`
}

// Rotator selects endpoints round-robin, skipping any in cooldown.
type Rotator struct {
	mu        sync.Mutex
	endpoints []*Endpoint
	next      int
	cooldown  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewRotator builds a rotator over the given proxy URLs.
func NewRotator(urls []string, cooldown time.Duration, logger *slog.Logger) *Rotator {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Rotator{cooldown: cooldown, logger: logger, now: time.Now}
	for _, u := range urls {
		r.endpoints = append(r.endpoints, &Endpoint{URL: u, Name: displayName(u)})
	}
	return r
}

// displayName strips credentials so proxies can be logged safely.
func displayName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "proxy"
	}
	return u.Host
}

// Len returns the configured endpoint count, regardless of state.
func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.endpoints)
}

// Next returns the next available endpoint. ok=false means nothing is
// currently selectable; the caller may then try a direct connection once.
func (r *Rotator) Next() (*Endpoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.endpoints)
	for i := 0; i < n; i++ {
		e := r.endpoints[r.next%n]
		r.next++
		if r.refresh(e) == Available {
			return e, true
		}
	}
	return nil, false
}

// refresh lazily expires a stale cooldown. Caller holds the lock.
func (r *Rotator) refresh(e *Endpoint) State {
	if e.state != Available && !r.now().Before(e.until) {
		e.state = Available
		e.until = time.Time{}
	}
	return e.state
}

// MarkFailed puts the endpoint into a fixed-length cooldown.
func (r *Rotator) MarkFailed(e *Endpoint, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.state = FailedCooldown
	e.until = r.now().Add(r.cooldown)
	r.logger.Warn("proxy failed, cooling down",
		"proxy", e.Name, "reason", reason, "until", e.until)
}

// MarkRateLimited excludes the endpoint until the next local midnight.
func (r *Rotator) MarkRateLimited(e *Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.state = RateLimited
	e.until = NextMidnight(r.now())
	r.logger.Warn("proxy rate limited until midnight", "proxy", e.Name, "until", e.until)
}

// ResetAll clears every cooldown. Operator escape hatch.
func (r *Rotator) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.endpoints {
		e.state = Available
		e.until = time.Time{}
	}
	r.logger.Info("all proxy cooldowns cleared", "count", len(r.endpoints))
}

// AvailableCount returns how many endpoints are selectable right now.
func (r *Rotator) AvailableCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, e := range r.endpoints {
		if r.refresh(e) == Available {
			count++
		}
	}
	return count
}

// Snapshot reports every endpoint's current state.
func (r *Rotator) Snapshot() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Status, 0, len(r.endpoints))
	for _, e := range r.endpoints {
		st := r.refresh(e)
		s := Status{Name: e.Name, State: st.String()}
		if st != Available {
			s.Until = e.until
		}
		out = append(out, s)
	}
	return out
}

// NextMidnight returns the first instant of the next local day.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// String implements fmt.Stringer for logging.
func (e *Endpoint) String() string {
	return fmt.Sprintf("%s(%s)", e.Name, e.state)
}
