// Package config loads the optional workspace configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cobitscope/internal/catalog"
)

// Config carries workspace-level settings. Every field has a default;
// an absent file yields the defaults.
type Config struct {
	// DatasetPath and MetadataPath override the standard data document
	// locations, resolved relative to the workspace root.
	DatasetPath  string `yaml:"dataset_path"`
	MetadataPath string `yaml:"metadata_path"`

	// Display scale for tool nodes; monotonic power-law over the
	// unfiltered degree.
	ToolExponent    float64 `yaml:"tool_exponent"`
	ToolMinRadius   float64 `yaml:"tool_min_radius"`
	ToolMaxRadius   float64 `yaml:"tool_max_radius"`
	ObjectiveRadius float64 `yaml:"objective_radius"`

	// PerPage is the default table page size.
	PerPage int `yaml:"per_page"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		ToolExponent:    catalog.DefaultToolExponent,
		ToolMinRadius:   catalog.DefaultToolMinRadius,
		ToolMaxRadius:   catalog.DefaultToolMaxRadius,
		ObjectiveRadius: catalog.DefaultObjectiveRadius,
		PerPage:         50,
	}
}

// Load reads a config file and fills unset fields with defaults. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var raw Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if raw.DatasetPath != "" {
		cfg.DatasetPath = raw.DatasetPath
	}
	if raw.MetadataPath != "" {
		cfg.MetadataPath = raw.MetadataPath
	}
	if raw.ToolExponent > 0 {
		cfg.ToolExponent = raw.ToolExponent
	}
	if raw.ToolMinRadius > 0 {
		cfg.ToolMinRadius = raw.ToolMinRadius
	}
	if raw.ToolMaxRadius > 0 {
		cfg.ToolMaxRadius = raw.ToolMaxRadius
	}
	if raw.ObjectiveRadius > 0 {
		cfg.ObjectiveRadius = raw.ObjectiveRadius
	}
	if raw.PerPage > 0 {
		cfg.PerPage = raw.PerPage
	}
	return cfg, nil
}
