package session

import (
	"testing"
	"time"
)

func TestNewRunAssignsUniqueIDs(t *testing.T) {
	a := NewRun("강남 맛집", "12345678")
	b := NewRun("강남 맛집", "12345678")

	if a.ID == "" || b.ID == "" {
		t.Fatal("run IDs must be non-empty")
	}
	if a.ID == b.ID {
		t.Errorf("two runs share the ID %s", a.ID)
	}
	if a.Keyword != "강남 맛집" || a.PlaceID != "12345678" {
		t.Errorf("run does not carry its target: %+v", a)
	}
	if a.StartedAt.IsZero() {
		t.Error("StartedAt must be set")
	}
}

func TestSnapshotNameSortsChronologically(t *testing.T) {
	run := Run{
		ID:        "0f5a3c21-9b77-4d10-8c55-2e1f6a0d9b42",
		StartedAt: time.Date(2026, 3, 1, 14, 30, 5, 0, time.Local),
	}

	got := run.SnapshotName("json")
	want := "2026-03-01T14-30-05-0f5a3c21.json"
	if got != want {
		t.Errorf("SnapshotName() = %q, want %q", got, want)
	}

	later := Run{ID: run.ID, StartedAt: run.StartedAt.Add(time.Minute)}
	if later.SnapshotName("json") <= got {
		t.Error("a later run must sort after an earlier one")
	}
}
