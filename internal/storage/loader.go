package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

// LoadRequestsFromFile reads a batch of report requests from a JSON array,
// or a YAML sequence for .yaml/.yml files.
func LoadRequestsFromFile(path string) ([]domain.ReportRequest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}

	var reqs []domain.ReportRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &reqs); err != nil {
			return nil, fmt.Errorf("unmarshal requests yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &reqs); err != nil {
			return nil, fmt.Errorf("unmarshal requests: %w", err)
		}
	}
	return reqs, nil
}
