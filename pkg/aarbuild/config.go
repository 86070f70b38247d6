package aarbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/assemble"
)

// Config contains all configuration options for an assembly run
type Config struct {
	// TemplatesDir holds one <selection>-template.docx per selection key
	TemplatesDir string `yaml:"templates_dir" toml:"templates_dir"`
	// OutputDir receives the assembled document and the gap report
	OutputDir string `yaml:"output_dir" toml:"output_dir"`
	// Answers is the path of the answer JSON document
	Answers string `yaml:"answers" toml:"answers"`
	// Selections are the template keys, in selection order
	Selections   []string `yaml:"selections" toml:"selections"`
	DocumentName string   `yaml:"document_name" toml:"document_name"`
	// GapsName selects the gap writer by extension (.xlsx or .csv)
	GapsName       string `yaml:"gaps_name" toml:"gaps_name"`
	PreambleMarker string `yaml:"preamble_marker" toml:"preamble_marker"`
	Sentinel       string `yaml:"sentinel" toml:"sentinel"`
	// SentinelMatch is "exact" or "contains"
	SentinelMatch  string `yaml:"sentinel_match" toml:"sentinel_match"`
	HighlightColor string `yaml:"highlight_color" toml:"highlight_color"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error)
	LogLevel string `yaml:"log_level" toml:"log_level"`
	// LogFormat is "text" or "json"
	LogFormat string `yaml:"log_format" toml:"log_format"`
	// MetricsFile, when set, receives Prometheus metrics in textfile format
	MetricsFile string `yaml:"metrics_file" toml:"metrics_file"`
	// CacheMaxSize is the maximum number of parsed templates to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cache_max_size" toml:"cache_max_size"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TemplatesDir:   "templates",
		OutputDir:      "BLITZ-output",
		Answers:        filepath.Join("ephemeral", "ai_responses.json"),
		DocumentName:   "AAR-TSS.docx",
		GapsName:       "Gaps.xlsx",
		PreambleMarker: assemble.DefaultPreambleMarker,
		Sentinel:       assemble.DefaultSentinel,
		SentinelMatch:  string(assemble.MatchExact),
		HighlightColor: assemble.DefaultHighlightColor,
		LogLevel:       "info",
		LogFormat:      "text",
		CacheMaxSize:   16,
	}
}

// Environment variables read by ApplyEnvironment
const (
	EnvTemplatesDir = "AARBUILD_TEMPLATES_DIR"
	EnvOutputDir    = "AARBUILD_OUTPUT_DIR"
	EnvAnswers      = "AARBUILD_ANSWERS"
	EnvSelections   = "AARBUILD_SELECTIONS"
	EnvLogLevel     = "AARBUILD_LOG_LEVEL"
	EnvLogFormat    = "AARBUILD_LOG_FORMAT"
	EnvMetricsFile  = "AARBUILD_METRICS_FILE"
	EnvCacheMaxSize = "AARBUILD_CACHE_MAX_SIZE"
)

// LoadConfig builds a configuration from the defaults, the optional file at
// path and the environment, in that order of precedence. A .env file in the
// working directory is loaded first without overriding variables that are
// already set.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	config := DefaultConfig()
	if path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, &ConfigError{Path: path, Cause: err}
		}
	}
	if err := config.ApplyEnvironment(); err != nil {
		return nil, &ConfigError{Path: path, Cause: err}
	}
	return config, nil
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	_ = config.ApplyEnvironment()
	return config
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data = []byte(os.ExpandEnv(string(data)))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parse toml: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

// ApplyEnvironment overrides fields from AARBUILD_* variables
func (c *Config) ApplyEnvironment() error {
	if val := os.Getenv(EnvTemplatesDir); val != "" {
		c.TemplatesDir = val
	}
	if val := os.Getenv(EnvOutputDir); val != "" {
		c.OutputDir = val
	}
	if val := os.Getenv(EnvAnswers); val != "" {
		c.Answers = val
	}
	if val := os.Getenv(EnvSelections); val != "" {
		c.Selections = splitList(val)
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv(EnvLogFormat); val != "" {
		c.LogFormat = val
	}
	if val := os.Getenv(EnvMetricsFile); val != "" {
		c.MetricsFile = val
	}
	if val := os.Getenv(EnvCacheMaxSize); val != "" {
		size, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheMaxSize, err)
		}
		c.CacheMaxSize = size
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var issues []ValidationIssue
	add := func(field, msg string) {
		issues = append(issues, ValidationIssue{Field: field, Message: msg})
	}

	if len(c.Selections) == 0 {
		add("selections", "at least one template must be selected")
	}
	for _, s := range c.Selections {
		if strings.TrimSpace(s) == "" {
			add("selections", "selection keys cannot be empty")
			break
		}
	}
	if c.TemplatesDir == "" {
		add("templates_dir", "cannot be empty")
	}
	if c.DocumentName == "" {
		add("document_name", "cannot be empty")
	}
	if c.GapsName == "" {
		add("gaps_name", "cannot be empty")
	}
	if c.CacheMaxSize < 0 {
		add("cache_max_size", "cannot be negative")
	}
	if !hexColor.MatchString(c.HighlightColor) {
		add("highlight_color", "must be six hex digits: "+c.HighlightColor)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		add("log_level", "invalid log level: "+c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		add("log_format", "must be text or json: "+c.LogFormat)
	}
	switch assemble.MatchMode(c.SentinelMatch) {
	case assemble.MatchExact, assemble.MatchContains:
	default:
		add("sentinel_match", "must be exact or contains: "+c.SentinelMatch)
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// TemplatePath returns the template file for a selection key
func (c *Config) TemplatePath(selection string) string {
	return filepath.Join(c.TemplatesDir, selection+TemplateSuffix)
}

// DocumentPath returns the output path of the assembled document
func (c *Config) DocumentPath() string {
	return filepath.Join(c.OutputDir, c.DocumentName)
}

// GapsPath returns the output path of the gap report
func (c *Config) GapsPath() string {
	return filepath.Join(c.OutputDir, c.GapsName)
}

// AssembleOptions converts the assembly settings
func (c *Config) AssembleOptions() assemble.Options {
	return assemble.Options{
		PreambleMarker: c.PreambleMarker,
		Sentinel:       c.Sentinel,
		SentinelMatch:  assemble.MatchMode(c.SentinelMatch),
		HighlightColor: strings.ToUpper(c.HighlightColor),
	}
}
