package commands

import (
	"context"
	"log/slog"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild"
)

// AssembleCmd implements the 'assemble' command.
type AssembleCmd struct {
	RunFlags `embed:""`
}

func (a *AssembleCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root, a.apply)
	if err != nil {
		return err
	}
	return RunAssemble(context.Background(), g, cfg)
}

// RunAssemble runs one assembly and prints its summary
func RunAssemble(ctx context.Context, g *Global, cfg *aarbuild.Config, opts ...aarbuild.Option) error {
	engine, recorder := newEngine(cfg, opts...)
	defer flushMetrics(cfg, recorder)

	slog.Info("Starting assembly",
		"selections", cfg.Selections,
		"templates", cfg.TemplatesDir,
		"answers", cfg.Answers)

	summary, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	_, err = summary.WriteTo(g.Stdout)
	return err
}
