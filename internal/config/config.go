// Package config loads and saves run configuration as YAML, so a
// pipeline invocation can be captured once and replayed.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of one pipeline run with YAML tags for
// serialization. Zero values mean "not set" and defer to defaults.
type Config struct {
	// InputDir is the directory holding DICOM files, organized or flat.
	InputDir string `yaml:"input_dir"`
	// OutputDir receives the summary CSV; empty means InputDir.
	OutputDir string `yaml:"output_dir,omitempty"`
	// Workers caps the parallel pools; zero selects a CPU-based default.
	Workers int `yaml:"workers,omitempty"`
	// Convert runs dcm2niix after gathering.
	Convert bool `yaml:"convert,omitempty"`
	// Dcm2niixPath overrides the executable name, "dcm2niix" by default.
	Dcm2niixPath string `yaml:"dcm2niix_path,omitempty"`
	// Overwrite replaces existing outputs without prompting.
	Overwrite bool `yaml:"overwrite,omitempty"`
	// Quiet suppresses per-series progress output.
	Quiet bool `yaml:"quiet,omitempty"`
}

// LoadFromYAML reads a Config from a YAML file.
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// SaveToYAML writes a Config to a YAML file.
func SaveToYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
