package aarbuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/assemble"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "AAR-TSS.docx", config.DocumentName)
	assert.Equal(t, "Gaps.xlsx", config.GapsName)
	assert.Equal(t, assemble.DefaultSentinel, config.Sentinel)
	assert.Equal(t, "FF0000", config.HighlightColor)
	assert.Equal(t, 16, config.CacheMaxSize)
	assert.Equal(t, filepath.Join("templates", "NDcPP-template.docx"), config.TemplatePath("NDcPP"))

	// defaults alone are invalid: nothing is selected
	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selections")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty selection key",
			mutate:  func(c *Config) { c.Selections = []string{"NDcPP", " "} },
			wantErr: "selection keys cannot be empty",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level: verbose",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "log_format",
		},
		{
			name:    "non hex color",
			mutate:  func(c *Config) { c.HighlightColor = "red" },
			wantErr: "highlight_color",
		},
		{
			name:    "negative cache size",
			mutate:  func(c *Config) { c.CacheMaxSize = -1 },
			wantErr: "cache_max_size",
		},
		{
			name:    "unknown sentinel match",
			mutate:  func(c *Config) { c.SentinelMatch = "prefix" },
			wantErr: "sentinel_match",
		},
		{
			name: "several issues",
			mutate: func(c *Config) {
				c.LogLevel = "loud"
				c.DocumentName = ""
			},
			wantErr: "2 validation issues",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Selections = []string{"NDcPP"}
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitConfig, ExitCode(err))
		})
	}
}

func TestLoadConfigYAML(t *testing.T) {
	t.Setenv("AAR_TEST_ROOT", "/srv/aar")
	path := filepath.Join(t.TempDir(), "aarbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
templates_dir: ${AAR_TEST_ROOT}/templates
selections: [NDcPP_v3.0, MOD_VPN]
gaps_name: Gaps.csv
sentinel_match: contains
log_format: json
`), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/aar/templates", config.TemplatesDir)
	assert.Equal(t, []string{"NDcPP_v3.0", "MOD_VPN"}, config.Selections)
	assert.Equal(t, "Gaps.csv", config.GapsName)
	assert.Equal(t, "contains", config.SentinelMatch)
	assert.Equal(t, "json", config.LogFormat)
	// untouched fields keep their defaults
	assert.Equal(t, "AAR-TSS.docx", config.DocumentName)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aarbuild.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_dir = "report"
selections = ["NDcPP"]
highlight_color = "00ff00"
cache_max_size = 0
`), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "report", config.OutputDir)
	assert.Equal(t, []string{"NDcPP"}, config.Selections)
	assert.Equal(t, 0, config.CacheMaxSize)
	assert.Equal(t, "00FF00", config.AssembleOptions().HighlightColor)
}

func TestLoadConfigEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aarbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte("selections: [FROM_FILE]\nlog_level: info\n"), 0o644))

	t.Setenv(EnvSelections, "A, B,,C")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvCacheMaxSize, "4")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, config.Selections)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, 4, config.CacheMaxSize)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("selections: [unclosed"), 0o644))
	ini := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o644))

	tests := []struct {
		name    string
		setup   func(t *testing.T)
		path    string
		wantErr string
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.yaml"), wantErr: "nope.yaml"},
		{name: "malformed yaml", path: bad, wantErr: "parse yaml"},
		{name: "unsupported format", path: ini, wantErr: "unsupported config format"},
		{
			name:    "bad cache size in environment",
			setup:   func(t *testing.T) { t.Setenv(EnvCacheMaxSize, "many") },
			wantErr: EnvCacheMaxSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup(t)
			}
			_, err := LoadConfig(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitConfig, ExitCode(err))
		})
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv(EnvTemplatesDir, "/tmp/t")
	t.Setenv(EnvAnswers, "/tmp/a.json")
	t.Setenv(EnvMetricsFile, "/tmp/m.prom")

	config := ConfigFromEnvironment()
	assert.Equal(t, "/tmp/t", config.TemplatesDir)
	assert.Equal(t, "/tmp/a.json", config.Answers)
	assert.Equal(t, "/tmp/m.prom", config.MetricsFile)
}
