package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	RunFlags `embed:""`
	Debounce time.Duration `help:"Quiet period after the last change before re-assembling" default:"500ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root, w.apply)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunWatch(ctx, g, cfg, w.Debounce)
}

// RunWatch assembles once, then again after every settled change to the
// answers file or a selected template, until ctx is cancelled. Parsed
// templates are shared between runs through the cache.
func RunWatch(ctx context.Context, g *Global, cfg *aarbuild.Config, debounce time.Duration) error {
	cache := aarbuild.NewTemplateCache(cfg.CacheMaxSize)
	assemble := func(ctx context.Context) error {
		return RunAssemble(ctx, g, cfg, aarbuild.WithCache(cache))
	}

	if err := assemble(ctx); err != nil {
		slog.Error("Initial assembly failed", "error", err)
	}

	paths := []string{cfg.Answers}
	for _, sel := range cfg.Selections {
		paths = append(paths, cfg.TemplatePath(sel))
	}
	w, err := watch.New(paths, assemble, watch.WithDebounce(debounce), watch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
