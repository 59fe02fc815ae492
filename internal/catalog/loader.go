package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a catalog document (JSON, or YAML for .yaml/.yml) and
// layers it over the default catalog: profiles present in the file replace
// the default profile of the same type, and a costs block replaces the
// default costs.
func LoadFromFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal catalog yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal catalog: %w", err)
		}
	}

	c, err := New(Overlay(DefaultDocument(), doc))
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}

// Overlay returns base with the costs and profiles of top applied.
func Overlay(base, top Document) Document {
	out := Document{
		Costs:    base.Costs,
		Profiles: make(map[PropertyType]Profile, len(base.Profiles)+len(top.Profiles)),
	}
	if top.Costs != nil {
		out.Costs = top.Costs
	}
	for pt, p := range base.Profiles {
		out.Profiles[pt] = p
	}
	for pt, p := range top.Profiles {
		out.Profiles[ParsePropertyType(string(pt))] = p
	}
	return out
}
