package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	RunFlags `embed:""`
	Out      string `name:"out" help:"HTML file to write (default: <output>/<document name>.html)"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root, p.apply)
	if err != nil {
		return err
	}

	engine, recorder := newEngine(cfg)
	defer flushMetrics(cfg, recorder)

	run, err := engine.Build(context.Background())
	if err != nil {
		return err
	}
	page, err := engine.Preview(run)
	if err != nil {
		return err
	}

	out := p.Out
	if out == "" {
		name := strings.TrimSuffix(cfg.DocumentName, filepath.Ext(cfg.DocumentName)) + ".html"
		out = filepath.Join(cfg.OutputDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return aarbuild.NewDocumentError("write", out, err)
	}
	if err := os.WriteFile(out, page, 0o644); err != nil {
		return aarbuild.NewDocumentError("write", out, err)
	}

	slog.Info("Preview written", "path", out, "blocks", len(run.Assembly.Items))
	fmt.Fprintln(g.Stdout, out)
	return nil
}
