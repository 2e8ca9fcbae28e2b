// Package config loads CLI defaults from a YAML or JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sla-insights/models"
)

// Config is the on-disk configuration. Zero values are filled from Default.
type Config struct {
	Data     DataConfig                `yaml:"data" json:"data"`
	Log      LogConfig                 `yaml:"log" json:"log"`
	Scenario models.ScenarioParameters `yaml:"scenario" json:"scenario"`
	Report   ReportConfig              `yaml:"report" json:"report"`
	Staffing StaffingConfig            `yaml:"staffing" json:"staffing"`
	Metrics  MetricsConfig             `yaml:"metrics" json:"metrics"`
}

// DataConfig locates the two source files.
type DataConfig struct {
	StatePath   string `yaml:"state_path" json:"state_path"`
	InsightPath string `yaml:"insight_path" json:"insight_path"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// ReportConfig tunes report views.
type ReportConfig struct {
	TopActions int `yaml:"top_actions" json:"top_actions"`
	PageSize   int `yaml:"page_size" json:"page_size"`
}

// StaffingConfig tunes the staffing schedule.
type StaffingConfig struct {
	Utilization float64 `yaml:"utilization" json:"utilization"`
	Capacity    int     `yaml:"capacity" json:"capacity"`
}

// MetricsConfig configures prometheus exposure.
type MetricsConfig struct {
	Addr    string `yaml:"addr" json:"addr"`
	PushURL string `yaml:"push_url" json:"push_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: DataConfig{
			StatePath:   "operations_input_state_FINAL.csv",
			InsightPath: "operations_decision_insights_FINAL.csv",
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Scenario: models.ScenarioParameters{
			ActiveAgents:       8,
			QueueDepth:         100,
			AutomationLevelPct: 50,
		},
		Report:   ReportConfig{TopActions: 5, PageSize: 20},
		Staffing: StaffingConfig{Utilization: 1.0},
	}
}

// LoadFromPath reads a config file (YAML or JSON) and merges it over Default.
// Format is detected by extension (.yaml/.yml, .json) or by content.
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config bytes. ext is a format hint; empty means detect from content.
func Load(data []byte, ext string) (Config, error) {
	cfg := Default()
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" && strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		ext = ".json"
	}

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config json: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that the commands cannot recover from.
func (c Config) Validate() error {
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	if c.Report.TopActions < 0 {
		return fmt.Errorf("report.top_actions must not be negative (got %d)", c.Report.TopActions)
	}
	if c.Report.PageSize < 0 {
		return fmt.Errorf("report.page_size must not be negative (got %d)", c.Report.PageSize)
	}
	if c.Staffing.Utilization <= 0 || c.Staffing.Utilization > 1 {
		return fmt.Errorf("staffing.utilization must be within (0, 1] (got %v)", c.Staffing.Utilization)
	}
	if c.Staffing.Capacity < 0 {
		return fmt.Errorf("staffing.capacity must not be negative (got %d)", c.Staffing.Capacity)
	}
	return nil
}
