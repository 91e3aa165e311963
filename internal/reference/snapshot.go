package reference

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"guidechat/internal/model"

	"gopkg.in/yaml.v3"
)

// Snapshot is the on-disk form of the reference data.
type Snapshot struct {
	GeneratedAt time.Time                         `yaml:"generated_at"`
	Provinces   []model.ReferenceEntry            `yaml:"provinces"`
	Amenities   []model.ReferenceEntry            `yaml:"amenities"`
	Wards       map[string][]model.ReferenceEntry `yaml:"wards,omitempty"`
}

// ReadSnapshot loads a snapshot from a YAML file.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// WriteSnapshot writes a snapshot as YAML, creating parent directories.
func WriteSnapshot(path string, snap *Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
