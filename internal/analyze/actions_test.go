package analyze

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/placemetrics/rankengine/models"
)

func TestSnapshotPathComposesRunFileName(t *testing.T) {
	dir := t.TempDir()
	result := &models.ResolveResult{
		RunID:       "0f5a3c21-9b77-4d10-8c55-2e1f6a0d9b42",
		CollectedAt: time.Date(2026, 3, 1, 14, 30, 5, 0, time.Local),
	}

	got := snapshotPath(dir, "yaml", result)
	want := filepath.Join(dir, "2026-03-01T14-30-05-0f5a3c21.yaml")
	if got != want {
		t.Errorf("snapshotPath(dir) = %q, want %q", got, want)
	}

	// The stdout format picks the extension for directory targets.
	if got := snapshotPath(dir, "json", result); filepath.Ext(got) != ".json" {
		t.Errorf("snapshotPath(dir, json) = %q, want a .json name", got)
	}

	// An explicit file path passes through untouched.
	if got := snapshotPath("custom.json", "yaml", result); got != "custom.json" {
		t.Errorf("snapshotPath(file) = %q, want custom.json", got)
	}
}
