// Package config loads the node configuration from a YAML or JSON file
// with optional environment overrides.
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

	"github.com/medibox-iot/medibox/core/metrics"
	"github.com/medibox-iot/medibox/infra/mqtt"
)

type Config struct {
	MQTT      mqtt.Config     `json:"mqtt"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Dispenser DispenserConfig `json:"dispenser"`
	Metrics   metrics.Config  `json:"metrics"`
}

// Load reads the file at path and applies MEDIBOX_ environment overrides,
// e.g. MEDIBOX_MQTT__BROKER=tcp://localhost:1883.
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
	if err := k.Load(env.Provider("MEDIBOX_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "medibox_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	cfg.Scheduler.SetDefaults()
	cfg.Dispenser.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Dispenser.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
