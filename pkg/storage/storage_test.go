package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type snapshot struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Rank    int    `json:"rank" yaml:"rank"`
}

func TestSaveSnapshotPicksEncodingFromExtension(t *testing.T) {
	dir := t.TempDir()
	s := &Storage{}
	in := snapshot{Keyword: "강남 맛집", Rank: 3}

	jsonPath := filepath.Join(dir, "nested", "result.json")
	if err := s.SaveSnapshot(jsonPath, in); err != nil {
		t.Fatalf("SaveSnapshot(json) failed: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON snapshot
	if err := json.Unmarshal(data, &fromJSON); err != nil || fromJSON != in {
		t.Errorf("json snapshot round trip: %+v, err %v", fromJSON, err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("json snapshot must be indented")
	}

	yamlPath := filepath.Join(dir, "result.yaml")
	if err := s.SaveSnapshot(yamlPath, in); err != nil {
		t.Fatalf("SaveSnapshot(yaml) failed: %v", err)
	}
	data, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML snapshot
	if err := yaml.Unmarshal(data, &fromYAML); err != nil || fromYAML != in {
		t.Errorf("yaml snapshot round trip: %+v, err %v", fromYAML, err)
	}
}

func TestHasFile(t *testing.T) {
	dir := t.TempDir()
	s := &Storage{}

	path := filepath.Join(dir, "rankengine.yaml")
	if s.HasFile(path) {
		t.Error("HasFile() = true for a missing file")
	}
	if err := s.SaveFile(path, []byte("keyword: test\n")); err != nil {
		t.Fatal(err)
	}
	if !s.HasFile(path) {
		t.Error("HasFile() = false for an existing file")
	}
}
