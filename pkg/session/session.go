// Package session identifies resolve runs so snapshots, log lines, and
// training samples can be correlated after the fact.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run identifies one resolve invocation.
type Run struct {
	ID        string    `json:"run_id" yaml:"run_id"`
	Keyword   string    `json:"keyword" yaml:"keyword"`
	PlaceID   string    `json:"place_id" yaml:"place_id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
}

// NewRun starts a run for the given target.
func NewRun(keyword, placeID string) Run {
	return Run{
		ID:        uuid.NewString(),
		Keyword:   keyword,
		PlaceID:   placeID,
		StartedAt: time.Now(),
	}
}

// SnapshotName builds a timestamp-first file name for a run's result
// snapshot, so a directory listing sorts chronologically.
func (r Run) SnapshotName(ext string) string {
	return fmt.Sprintf("%s-%s.%s", r.StartedAt.Format("2006-01-02T15-04-05"), r.ID[:8], ext)
}
