// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scirate-digest/pkg/types"
)

// DefaultModels is the built-in fallback chain, tried in order. Ceilings
// follow the free-tier limits of each model.
func DefaultModels() []types.Model {
	return []types.Model{
		{Name: "gemini-2.5-flash", RPM: 10},
		{Name: "gemini-2.0-flash", RPM: 15},
		{Name: "gemini-2.0-flash-lite", RPM: 30},
	}
}

// modelsFile is the on-disk shape of models.yaml.
type modelsFile struct {
	Models []types.Model `yaml:"models"`
}

// LoadModels reads the candidate model list from path. A missing file
// returns the default chain; an unreadable or empty list is an error so a
// misconfigured file does not silently disable fallback.
func LoadModels(path string) ([]types.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultModels(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f modelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(f.Models) == 0 {
		return nil, fmt.Errorf("%s lists no models", path)
	}
	for i, m := range f.Models {
		if m.Name == "" {
			return nil, fmt.Errorf("%s: model %d has no name", path, i)
		}
		if m.RPM <= 0 {
			f.Models[i].RPM = 10
		}
	}
	return f.Models, nil
}
