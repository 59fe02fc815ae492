package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

func fileName(t Target) string {
	return "model_" + string(t) + ".json"
}

// Save writes one JSON document per target into dir.
func (s *Set) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	for _, t := range Targets() {
		m, ok := s.models[t]
		if !ok {
			continue
		}
		b, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", t, err)
		}
		if err := os.WriteFile(filepath.Join(dir, fileName(t)), b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", t, err)
		}
	}
	return nil
}

// Load reads a model set saved by Save. Every target must be present.
func Load(dir string) (*Set, error) {
	set := NewSet()
	for _, t := range Targets() {
		b, err := os.ReadFile(filepath.Join(dir, fileName(t)))
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s missing in %s", ErrNoModel, t, dir)
		}
		if err != nil {
			return nil, fmt.Errorf("read model %s: %w", t, err)
		}
		var m Model
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("unmarshal model %s: %w", t, err)
		}
		if m.Target != t {
			return nil, fmt.Errorf("model file %s holds target %q", fileName(t), m.Target)
		}
		set.models[t] = &m
	}
	return set, nil
}
