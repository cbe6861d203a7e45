// Package config loads and validates the application configuration from a
// JSON or YAML file with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pcouderc/worksched/core/metrics"
	"github.com/pcouderc/worksched/core/model"
	"github.com/pcouderc/worksched/core/workspace"
	"github.com/pcouderc/worksched/infra/notify"
	"github.com/pcouderc/worksched/infra/rest"
)

type Config struct {
	API       APIConfig        `json:"api"`
	Backend   rest.Config      `json:"backend"`
	Workspace workspace.Config `json:"workspace"`
	Scope     model.Scope      `json:"scope"`
	Logging   LoggingConfig    `json:"logging"`
	Metrics   metrics.Config   `json:"metrics"`
	Notify    notify.Config    `json:"notify"`
	Sentry    SentryConfig     `json:"sentry"`
	Export    ExportConfig     `json:"export"`
}

// Load reads the configuration at path. Environment variables prefixed
// with WS_ override file values, with __ separating nested keys
// (WS_BACKEND__TOKEN overrides backend.token).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("WS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ws_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.API.SetDefaults()
	cfg.Backend.SetDefaults()
	cfg.Workspace.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Notify.SetDefaults()
	cfg.Export.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Backend.Validate(); err != nil {
		return err
	}
	if err := c.Workspace.Validate(); err != nil {
		return err
	}
	if err := c.Scope.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Notify.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
}
