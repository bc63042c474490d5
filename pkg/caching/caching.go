// Package caching provides a file-based cache with per-entry TTLs. Entries
// survive process restarts; expired or corrupted entries are evicted on
// read, never surfaced as errors.
package caching

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// entry is the on-disk envelope around a cached value.
type entry struct {
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	TTL       int             `json:"ttl_seconds"`
}

// Stats counts cache activity since process start.
type Stats struct {
	Hits      int    `json:"hits" yaml:"hits"`
	Misses    int    `json:"misses" yaml:"misses"`
	Sets      int    `json:"sets" yaml:"sets"`
	Evictions int    `json:"evictions" yaml:"evictions"`
	Entries   int    `json:"entries" yaml:"entries"`
	HitRate   string `json:"hit_rate" yaml:"hit_rate"`
	Dir       string `json:"dir" yaml:"dir"`
}

// Cache is a file-per-entry TTL cache.
type Cache struct {
	dir        string
	defaultTTL time.Duration
	logger     *slog.Logger

	mu        sync.Mutex
	hits      int
	misses    int
	sets      int
	evictions int
	now       func() time.Time
}

// New creates the cache directory if needed.
func New(dir string, defaultTTL time.Duration, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		dir:        dir,
		defaultTTL: defaultTTL,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Key builds a stable cache key from an operation name and its arguments.
func Key(op string, args ...string) string {
	h := sha256.New()
	h.Write([]byte(op))
	for _, a := range args {
		h.Write([]byte{0})
		h.Write([]byte(a))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached value and true on a hit. Expired entries are
// deleted and reported as a miss, as are unreadable ones.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.path(key)
	data, err := os.ReadFile(p)
	if err != nil {
		c.misses++
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("evicting corrupted cache entry", "key", key[:8], "error", err)
		_ = os.Remove(p)
		c.misses++
		return nil, false
	}

	if c.now().After(e.ExpiresAt) {
		_ = os.Remove(p)
		c.evictions++
		c.misses++
		return nil, false
	}

	c.hits++
	return e.Value, true
}

// Set stores a value with the given TTL (the default when ttl <= 0).
// Caching is best-effort: write failures are logged, not propagated.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e := entry{
		Value:     json.RawMessage(value),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		TTL:       int(ttl.Seconds()),
	}
	data, err := json.Marshal(e)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", "key", key[:8], "error", err)
		return
	}
	if err := os.WriteFile(c.path(key), data, 0644); err != nil {
		c.logger.Warn("failed to write cache entry", "key", key[:8], "error", err)
		return
	}
	c.sets++
}

// Delete removes one entry, reporting whether it existed.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.Remove(c.path(key)) == nil
}

// Clear removes every entry and returns the count removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, p := range c.entryPaths() {
		if os.Remove(p) == nil {
			count++
		}
	}
	return count
}

// CleanupExpired removes entries past their deadline, plus any file that no
// longer parses. Returns the count removed.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, p := range c.entryPaths() {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(data, &e); err != nil || now.After(e.ExpiresAt) {
			if os.Remove(p) == nil {
				removed++
			}
		}
	}
	c.evictions += removed
	return removed
}

// Snapshot returns current statistics.
func (c *Cache) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total) * 100
	}
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Sets:      c.sets,
		Evictions: c.evictions,
		Entries:   len(c.entryPaths()),
		HitRate:   fmt.Sprintf("%.1f%%", rate),
		Dir:       c.dir,
	}
}

func (c *Cache) entryPaths() []string {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return nil
	}
	return matches
}
