// Package storage writes result snapshots to disk.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Storage struct{}

func (s *Storage) SaveFile(filePath string, content []byte) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

// SaveSnapshot marshals v to the path, choosing the encoding from the file
// extension. ".json" gets indented JSON, anything else YAML.
func (s *Storage) SaveSnapshot(filePath string, v any) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = yaml.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("error encoding snapshot: %w", err)
	}
	return s.SaveFile(filePath, data)
}

func (s *Storage) HasFile(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil || !os.IsNotExist(err)
}
