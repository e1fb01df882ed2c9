package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	artifactFormat  = "beyond-intent-model"
	artifactVersion = 1
)

type artifact struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
	Model   *Model `json:"model"`
}

// Save writes m to path as a single JSON artifact. The file is written to a
// temporary sibling and renamed into place.
func Save(m *Model, path string) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid model: %w", err)
	}
	data, err := json.Marshal(artifact{Format: artifactFormat, Version: artifactVersion, Model: m})
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to install model: %w", err)
	}
	return nil
}

// LoadModel reads and validates an artifact written by Save. A missing file
// is reported with an error wrapping os.ErrNotExist.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}
	if a.Format != artifactFormat {
		return nil, fmt.Errorf("unexpected artifact format %q", a.Format)
	}
	if a.Version != artifactVersion {
		return nil, fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	if a.Model == nil {
		return nil, fmt.Errorf("artifact has no model")
	}
	if err := a.Model.Validate(); err != nil {
		return nil, fmt.Errorf("incompatible model artifact: %w", err)
	}
	a.Model.Vectorizer.buildIndex()
	return a.Model, nil
}
