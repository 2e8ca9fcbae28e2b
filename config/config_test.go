package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sla-insights/config"
	"sla-insights/models"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, models.ScenarioParameters{ActiveAgents: 8, QueueDepth: 100, AutomationLevelPct: 50}, cfg.Scenario)
	assert.Equal(t, 5, cfg.Report.TopActions)
	assert.Equal(t, 1.0, cfg.Staffing.Utilization)
}

func TestLoad(t *testing.T) {
	tests := map[string]struct {
		data string
		ext  string
		want func(config.Config) config.Config
	}{
		"YAMLPartial": {
			data: "data:\n  state_path: state.csv\nscenario:\n  active_agents: 12\n",
			ext:  ".yaml",
			want: func(c config.Config) config.Config {
				c.Data.StatePath = "state.csv"
				c.Scenario.ActiveAgents = 12
				return c
			},
		},
		"YMLExtension": {
			data: "log:\n  level: debug\n  format: json\n",
			ext:  ".yml",
			want: func(c config.Config) config.Config {
				c.Log = config.LogConfig{Level: "debug", Format: "json"}
				return c
			},
		},
		"JSONByExtension": {
			data: `{"staffing": {"utilization": 0.8, "capacity": 40}}`,
			ext:  ".json",
			want: func(c config.Config) config.Config {
				c.Staffing = config.StaffingConfig{Utilization: 0.8, Capacity: 40}
				return c
			},
		},
		"JSONByContent": {
			data: ` {"report": {"top_actions": 3}}`,
			want: func(c config.Config) config.Config {
				c.Report.TopActions = 3
				return c
			},
		},
		"Empty": {
			data: "",
			ext:  ".yaml",
			want: func(c config.Config) config.Config { return c },
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := config.Load([]byte(tc.data), tc.ext)
			require.NoError(t, err)
			assert.Equal(t, tc.want(config.Default()), got)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]struct {
		data string
		ext  string
	}{
		"BadYAML":          {data: "scenario: [1, 2", ext: ".yaml"},
		"BadJSON":          {data: `{"scenario":`, ext: ".json"},
		"UnknownLogFormat": {data: "log:\n  format: xml\n", ext: ".yaml"},
		"ZeroUtilization":  {data: "staffing:\n  utilization: 0\n", ext: ".yaml"},
		"NegativeTop":      {data: "report:\n  top_actions: -1\n", ext: ".yaml"},
		"NegativeCapacity": {data: "staffing:\n  capacity: -5\n", ext: ".yaml"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load([]byte(tc.data), tc.ext)
			assert.Error(t, err)
		})
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slainsights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report:\n  page_size: 50\n"), 0o644))

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Report.PageSize)

	_, err = config.LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
