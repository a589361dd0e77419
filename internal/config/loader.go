package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// configNames are the file names tried in the user and local config
// directories, in order.
var configNames = []string{"tetris.yaml", "tetris.yml", "tetris.toml"}

// Load loads the tetris configuration.
// Search order: customPath -> ~/.tetris/configs/tetris.{yaml,toml} -> ./configs/tetris.{yaml,toml} -> embedded default
//
// A custom path that cannot be read, parsed or validated is an error. Files
// found while searching are skipped silently when they are broken.
func Load(customPath string) (TetrisConfig, error) {
	if customPath != "" {
		cfg, err := LoadFile(customPath)
		if err != nil {
			return TetrisConfig{}, err
		}
		return cfg, nil
	}

	for _, path := range searchPaths() {
		if cfg, err := LoadFile(path); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := Decode(defaultTetrisYAML, "yaml")
	if err != nil {
		return DefaultTetrisConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Find returns the first config file on the search path that loads cleanly.
func Find() (string, bool) {
	for _, path := range searchPaths() {
		if _, err := LoadFile(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// LoadFile reads, decodes and validates one config file. The format is taken
// from the file extension: .toml is TOML, anything else is YAML.
func LoadFile(path string) (TetrisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TetrisConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Decode(data, formatOf(path))
	if err != nil {
		return TetrisConfig{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return TetrisConfig{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses data in the given format ("yaml" or "toml") on top of the
// hardcoded defaults, so a partial file only overrides the keys it sets.
func Decode(data []byte, format string) (TetrisConfig, error) {
	cfg := DefaultTetrisConfig()
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return TetrisConfig{}, fmt.Errorf("parse toml: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return TetrisConfig{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return TetrisConfig{}, fmt.Errorf("unsupported config format %q: %w", format, ErrInvalidConfig)
	}
	return cfg, nil
}

// Encode renders cfg in the given format. Used by tests and to dump the
// effective configuration.
func Encode(cfg TetrisConfig, format string) ([]byte, error) {
	switch format {
	case "toml":
		return toml.Marshal(cfg)
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("config: unsupported format %q: %w", format, ErrInvalidConfig)
	}
}

// formatOf maps a file extension to a decoder name.
func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// searchPaths lists the candidate config files outside a custom path.
func searchPaths() []string {
	var paths []string
	if dir := userConfigDir(); dir != "" {
		for _, name := range configNames {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	for _, name := range configNames {
		paths = append(paths, filepath.Join("configs", name))
	}
	return paths
}

// userConfigDir returns ~/.tetris/configs, or empty if home is unavailable.
func userConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tetris", "configs")
}
