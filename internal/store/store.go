// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the pipeline's local state as flat JSON files.
//
// Each store owns one file under the storage directory and rewrites it
// completely on every mutation. Access is single-process and sequential;
// there is no file locking. A missing or unreadable file degrades to an
// empty store with a logged warning, never a failed run.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// loadJSON reads path into v. A missing file is not an error; the store
// simply starts empty. A corrupt file is reported so the caller can log it
// and proceed with empty state.
func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// saveJSON rewrites path with the full marshaled state. The file is built
// in memory first so a failed write cannot corrupt prior state.
func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}
