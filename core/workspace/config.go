package workspace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config tunes the engine. Zero values take the documented defaults.
type Config struct {
	// HistoryDepth bounds the undo stack.
	HistoryDepth int `json:"history_depth" yaml:"history_depth"`
	// ConflictPageSize is the fixed page size for filtered conflicts.
	ConflictPageSize int `json:"conflict_page_size" yaml:"conflict_page_size"`
	// HoursPerDay is the load each allocation contributes to every day of
	// its planned window. One full shift per allocation per day.
	HoursPerDay float64 `json:"hours_per_day" yaml:"hours_per_day"`
}

// SetDefaults applies the engine defaults.
func (c *Config) SetDefaults() {
	if c.HistoryDepth <= 0 {
		c.HistoryDepth = DefaultHistoryDepth
	}
	if c.ConflictPageSize <= 0 {
		c.ConflictPageSize = 10
	}
	if c.HoursPerDay <= 0 {
		c.HoursPerDay = 8
	}
}

// Validate rejects nonsensical settings.
func (c Config) Validate() error {
	if c.HistoryDepth < 0 {
		return fmt.Errorf("history_depth must not be negative")
	}
	if c.HoursPerDay < 0 {
		return fmt.Errorf("hours_per_day must not be negative")
	}
	return nil
}

// LoadConfig loads a Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err != nil {
		return Config{}, err
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}
