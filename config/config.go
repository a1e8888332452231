// Package config loads the application configuration from yaml or json
// files with optional environment overrides.
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

	coremetrics "github.com/kilianp07/chargeplan/core/metrics"
	"github.com/kilianp07/chargeplan/core/plan"
	"github.com/kilianp07/chargeplan/core/session"
	"github.com/kilianp07/chargeplan/infra/mqtt"
)

// Config is the root configuration of a planning run.
type Config struct {
	Inputs  InputsConfig       `json:"inputs"`
	Output  OutputConfig       `json:"output"`
	Window  WindowConfig       `json:"window"`
	Session session.Config     `json:"session"`
	Plan    plan.Config        `json:"plan"`
	Metrics coremetrics.Config `json:"metrics"`
	MQTT    mqtt.Config        `json:"mqtt"`
}

// InputsConfig points at the tabular input files.
type InputsConfig struct {
	ForecastCSV string `json:"forecast_csv"`
	SessionsCSV string `json:"sessions_csv"`
}

// Validate checks that both inputs are set.
func (c InputsConfig) Validate() error {
	if c.ForecastCSV == "" {
		return fmt.Errorf("inputs.forecast_csv is required")
	}
	if c.SessionsCSV == "" {
		return fmt.Errorf("inputs.sessions_csv is required")
	}
	return nil
}

// OutputConfig controls where result files are written.
type OutputConfig struct {
	Dir string `json:"dir"`
}

// SetDefaults applies the default output directory.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "results"
	}
}

// Load reads the configuration file at path. Environment variables of the
// form K_section__key override file values.
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
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Output.SetDefaults()
	cfg.Session.SetDefaults()
	cfg.Plan.SetDefaults()
	if err := cfg.Inputs.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Window.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Session.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Plan.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
