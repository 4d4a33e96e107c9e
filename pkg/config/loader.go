package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ParseJSON decodes and validates a JSON form configuration. Schema
// violations are returned as Issues wrapped in the error.
func ParseJSON(data []byte) (FormConfig, error) {
	var cfg FormConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return FormConfig{}, fmt.Errorf("config: decode json: %w", err)
	}
	if iss := Validate(cfg); len(iss) > 0 {
		return FormConfig{}, fmt.Errorf("config: invalid form config: %w", iss)
	}
	return cfg, nil
}

// ParseYAML decodes and validates a YAML form configuration.
func ParseYAML(data []byte) (FormConfig, error) {
	var cfg FormConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FormConfig{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	if iss := Validate(cfg); len(iss) > 0 {
		return FormConfig{}, fmt.Errorf("config: invalid form config: %w", iss)
	}
	return cfg, nil
}

// LoadFile reads a form configuration from disk, dispatching on the file
// extension (.json, .yaml, .yml).
func LoadFile(path string) (FormConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FormConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return FormConfig{}, fmt.Errorf("config: unsupported extension %q", filepath.Ext(path))
	}
}
