// Package config loads the reach configuration file. Values come from
// defaults, an optional YAML file, and environment overrides, in that
// order. A .env file in the working directory is loaded if present.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Playbooks struct {
		Dir string `yaml:"dir"`
	} `yaml:"playbooks"`
	Personalize struct {
		Endpoint  string `yaml:"endpoint"`
		Model     string `yaml:"model"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"personalize"`
	Outreach struct {
		DefaultKind string `yaml:"default_kind"`
	} `yaml:"outreach"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load reads the config at path. A missing file is not an error; the
// defaults plus env overrides apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional
	cfg := defaultConfig()
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	var cfg Config
	cfg.Database.Path = "reach.db"
	cfg.Playbooks.Dir = "playbooks"
	cfg.Personalize.Model = "draft-small"
	cfg.Personalize.TimeoutMs = 30000
	cfg.Outreach.DefaultKind = "connection_note"
	cfg.Logging.Level = "info"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REACH_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("REACH_PLAYBOOK_DIR"); v != "" {
		cfg.Playbooks.Dir = v
	}
	if v := os.Getenv("REACH_PERSONALIZE_ENDPOINT"); v != "" {
		cfg.Personalize.Endpoint = v
	}
	if v := os.Getenv("REACH_PERSONALIZE_MODEL"); v != "" {
		cfg.Personalize.Model = v
	}
	if v := os.Getenv("REACH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if cfg.Personalize.TimeoutMs <= 0 {
		return errors.New("personalize.timeout_ms must be > 0")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", cfg.Logging.Level)
	}
	return nil
}
