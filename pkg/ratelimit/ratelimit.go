// Package ratelimit implements a persisted sliding-window rate limiter.
// Call timestamps are written to a state file so a process restart does not
// reset the quota.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type state struct {
	Calls     []time.Time `json:"calls"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Window enforces at most maxCalls acquisitions within any trailing period.
type Window struct {
	name      string
	maxCalls  int
	period    time.Duration
	stateFile string
	logger    *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewWindow creates a limiter persisting under dir. name distinguishes
// limiters sharing a directory (e.g. "minute", "hourly").
func NewWindow(dir, name string, maxCalls int, period time.Duration, logger *slog.Logger) (*Window, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create rate limit directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{
		name:      name,
		maxCalls:  maxCalls,
		period:    period,
		stateFile: filepath.Join(dir, fmt.Sprintf("rate_limit_%s.json", name)),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Name returns the limiter identifier.
func (w *Window) Name() string { return w.name }

// Acquire atomically checks the window, evicts timestamps older than the
// period, and either records a new call and returns true or returns false
// without recording. It never blocks.
func (w *Window) Acquire() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	calls := w.trimmed(now)
	if len(calls) >= w.maxCalls {
		return false
	}

	calls = append(calls, now)
	w.save(calls)
	return true
}

// Remaining reports how many acquisitions are left in the current window
// without recording anything.
func (w *Window) Remaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	left := w.maxCalls - len(w.trimmed(w.now()))
	if left < 0 {
		return 0
	}
	return left
}

// RetryAfter returns how long until the oldest recorded call leaves the
// window, or zero when quota is available now.
func (w *Window) RetryAfter() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	calls := w.trimmed(now)
	if len(calls) < w.maxCalls {
		return 0
	}
	oldest := calls[0]
	for _, t := range calls[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	return oldest.Add(w.period).Sub(now)
}

// trimmed loads persisted calls and drops those outside the window.
func (w *Window) trimmed(now time.Time) []time.Time {
	cutoff := now.Add(-w.period)
	var kept []time.Time
	for _, t := range w.load() {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

func (w *Window) load() []time.Time {
	data, err := os.ReadFile(w.stateFile)
	if err != nil {
		return nil
	}
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		// Corrupted state resets the window rather than wedging it.
		return nil
	}
	return s.Calls
}

func (w *Window) save(calls []time.Time) {
	data, err := json.Marshal(state{Calls: calls, UpdatedAt: w.now()})
	if err != nil {
		w.logger.Error("failed to encode rate limit state", "name", w.name, "error", err)
		return
	}
	if err := os.WriteFile(w.stateFile, data, 0644); err != nil {
		w.logger.Error("failed to save rate limit state", "name", w.name, "error", err)
	}
}
