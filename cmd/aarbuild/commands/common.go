package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/metrics"
)

// Global carries state shared by every command
type Global struct {
	Version string
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewGlobal returns a Global writing to the process streams
func NewGlobal(version string) *Global {
	return &Global{Version: version, Stdout: os.Stdout, Stderr: os.Stderr}
}

// CLI definition & global flags
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (.yaml, .yml or .toml)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Assemble   AssembleCmd `cmd:"" help:"Assemble the report and the gap list from the selected templates"`
	Inspect    InspectCmd  `cmd:"" help:"Print the heading outline of a template"`
	Preview    PreviewCmd  `cmd:"" help:"Assemble in memory and write an HTML outline preview"`
	Watch      WatchCmd    `cmd:"" help:"Re-assemble whenever the answers or a template change"`
	VersionCmd VersionCmd  `cmd:"" name:"version" help:"Show version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	aarbuild.SetLogger(logger)
	return nil
}

// RunFlags are the overrides shared by the commands that assemble
type RunFlags struct {
	Selections  []string `arg:"" optional:"" help:"Template keys to assemble, in order"`
	Templates   string   `short:"t" help:"Directory holding <key>-template.docx files"`
	Answers     string   `short:"a" help:"Answers JSON file"`
	Output      string   `short:"o" help:"Output directory"`
	MetricsFile string   `name:"metrics-file" help:"Write Prometheus metrics to this textfile"`
}

func (f *RunFlags) apply(cfg *aarbuild.Config) {
	if len(f.Selections) > 0 {
		cfg.Selections = f.Selections
	}
	if f.Templates != "" {
		cfg.TemplatesDir = f.Templates
	}
	if f.Answers != "" {
		cfg.Answers = f.Answers
	}
	if f.Output != "" {
		cfg.OutputDir = f.Output
	}
	if f.MetricsFile != "" {
		cfg.MetricsFile = f.MetricsFile
	}
}

// LoadConfig loads the configuration file named by the global flag, applies
// overrides and validates the result. Unless --verbose is set, logging is
// reconfigured from the loaded level and format.
func LoadConfig(g *Global, root *CLI, override func(*aarbuild.Config)) (*aarbuild.Config, error) {
	cfg, err := aarbuild.LoadConfig(root.Config)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if root.Verbose {
		cfg.LogLevel = "debug"
	}
	logger := aarbuild.NewLoggerFromConfig(g.Stderr, cfg)
	slog.SetDefault(logger)
	aarbuild.SetLogger(logger)
	return cfg, nil
}

// newEngine builds an engine and, when a metrics file is configured, the
// Prometheus recorder that backs it
func newEngine(cfg *aarbuild.Config, opts ...aarbuild.Option) (*aarbuild.Engine, *metrics.PrometheusRecorder) {
	var recorder *metrics.PrometheusRecorder
	if cfg.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, aarbuild.WithRecorder(recorder))
	}
	return aarbuild.New(cfg, opts...), recorder
}

func flushMetrics(cfg *aarbuild.Config, recorder *metrics.PrometheusRecorder) {
	if recorder == nil {
		return
	}
	if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
		slog.Warn("Failed to write metrics", "path", cfg.MetricsFile, "error", err)
	}
}
