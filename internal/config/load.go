package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadBatch loads a batch of jobs from a YAML file. Omitted fields get their
// defaults and every job is validated.
func LoadBatch(path string) (*Batch, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned
	if err != nil {
		return nil, err
	}
	var batch Batch
	if err := yaml.Unmarshal(b, &batch); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", cleanPath, err)
	}
	for i := range batch.Jobs {
		batch.Jobs[i] = batch.Jobs[i].WithDefaults()
		if err := batch.Jobs[i].Validate(); err != nil {
			return nil, fmt.Errorf("config: job %d: %w", i+1, err)
		}
	}
	return &batch, nil
}
