// Package config loads the run configuration from YAML or JSON, with
// environment fallbacks for connection settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"sift/internal/classify"
	"sift/internal/fetch"
	"sift/internal/schedule"
)

// Connection holds the reporting-system endpoint settings.
type Connection struct {
	URL        string  `yaml:"url" json:"url"`
	Project    string  `yaml:"project" json:"project"`
	Token      string  `yaml:"token" json:"token"`
	TokenFile  string  `yaml:"token_file" json:"token_file"`
	Insecure   bool    `yaml:"insecure" json:"insecure"`
	RateLimit  float64 `yaml:"rate_limit" json:"rate_limit"`
	TimeoutSec int     `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Schedule holds the concurrency and timeout knobs for classification.
type Schedule struct {
	BatchSize      int `yaml:"batch_size" json:"batch_size"`
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency"`
	ItemTimeoutSec int `yaml:"item_timeout_seconds" json:"item_timeout_seconds"`
}

// Backend selects and configures the analysis backend.
type Backend struct {
	Kind classify.BackendKind `yaml:"kind" json:"kind"`
	classify.BackendConfig   `yaml:",inline" json:",inline"`
}

// Config is the full run configuration.
type Config struct {
	RP          Connection     `yaml:"report_portal" json:"report_portal"`
	Backend     Backend        `yaml:"backend" json:"backend"`
	Criteria    fetch.Criteria `yaml:"criteria" json:"criteria"`
	Schedule    Schedule       `yaml:"schedule" json:"schedule"`
	HistoryPath string         `yaml:"history_path" json:"history_path"`
	SubmittedBy string         `yaml:"submitted_by" json:"submitted_by"`
}

// Default returns a Config with every knob at its default.
func Default() Config {
	return Config{
		Backend: Backend{Kind: classify.BackendClaude},
		Criteria: fetch.Criteria{
			HoursBack: 24,
			MaxTests:  50,
		},
		Schedule: Schedule{
			BatchSize:      schedule.DefaultBatchSize,
			MaxConcurrency: schedule.DefaultMaxConcurrency,
			ItemTimeoutSec: int(schedule.DefaultItemTimeout / time.Second),
		},
		SubmittedBy: "sift",
	}
}

// Load reads a config file (YAML or JSON, detected by extension then
// content) on top of the defaults, then applies environment fallbacks.
// An empty path loads defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := parse(data, filepath.Ext(path), &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parse(data []byte, ext string, cfg *Config) error {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	switch ext {
	case ".yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config json: %w", err)
		}
	default:
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			if err := json.Unmarshal(data, cfg); err != nil {
				return fmt.Errorf("parse config json: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config yaml: %w", err)
		}
	}
	return nil
}

// applyEnv fills connection and credential gaps from the environment.
// File values win over the environment.
func applyEnv(cfg *Config) {
	if cfg.RP.URL == "" {
		cfg.RP.URL = os.Getenv("SIFT_RP_URL")
	}
	if cfg.RP.Project == "" {
		cfg.RP.Project = os.Getenv("SIFT_RP_PROJECT")
	}
	if cfg.RP.Token == "" {
		cfg.RP.Token = os.Getenv("SIFT_RP_TOKEN")
	}
	if cfg.Backend.APIKey == "" {
		cfg.Backend.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

func (c Config) validate() error {
	if c.Schedule.BatchSize < 0 || c.Schedule.MaxConcurrency < 0 || c.Schedule.ItemTimeoutSec < 0 {
		return fmt.Errorf("schedule values must not be negative: %+v", c.Schedule)
	}
	if c.Criteria.HoursBack < 0 {
		return fmt.Errorf("hours_back must not be negative, got %d", c.Criteria.HoursBack)
	}
	switch c.Backend.Kind {
	case classify.BackendClaude, classify.BackendOllama, classify.BackendStatic, "":
	default:
		return fmt.Errorf("unknown backend kind %q", c.Backend.Kind)
	}
	return nil
}

// ItemTimeout returns the per-item timeout as a duration, falling back to
// the scheduler default when unset.
func (s Schedule) ItemTimeout() time.Duration {
	if s.ItemTimeoutSec <= 0 {
		return schedule.DefaultItemTimeout
	}
	return time.Duration(s.ItemTimeoutSec) * time.Second
}
