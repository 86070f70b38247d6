package aarbuild

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/answers"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/assemble"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/docx"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/gaps"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/metrics"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/outline"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/preview"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/resolve"
)

// TemplateSuffix is appended to a selection key to form its template file name
const TemplateSuffix = "-template.docx"

// Engine runs the assembly pipeline described by a Config.
// Use New() to create a new engine instance.
type Engine struct {
	config   *Config
	cache    *TemplateCache
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger. The default is GetLogger().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder. The default records nothing.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(e *Engine) {
		if recorder != nil {
			e.recorder = recorder
		}
	}
}

// WithCache shares a template cache between engines
func WithCache(cache *TemplateCache) Option {
	return func(e *Engine) {
		if cache != nil {
			e.cache = cache
		}
	}
}

// New creates an engine for config. A nil config uses DefaultConfig.
func New(config *Config, opts ...Option) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	e := &Engine{
		config:   config,
		logger:   GetLogger(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewTemplateCache(config.CacheMaxSize)
	}
	return e
}

// Config returns the engine configuration
func (e *Engine) Config() *Config {
	return e.config
}

// Cache returns the template cache
func (e *Engine) Cache() *TemplateCache {
	return e.cache
}

// Run is the in-memory result of one pipeline pass
type Run struct {
	ID        string
	Templates []*outline.Template
	// Skipped lists selections whose template could not be loaded
	Skipped    []string
	// LoadErrors holds one error per skipped selection, in selection order
	LoadErrors *MultiError
	Answers    *answers.Document
	Registry   *resolve.Registry
	Resolution resolve.Result
	Links      int
	Assembly   *assemble.Result
}

// Summary reports what a run produced
type Summary struct {
	RunID         string
	DocumentPath  string
	DocumentSize  int64
	GapsPath      string
	GapRows       int
	Loaded        []string
	Skipped       []string
	SkipReasons   []error
	Links         int
	Resolved      int
	Unresolved    []resolve.Unresolved
	Shadowed      []resolve.Shadowed
	Headings      int
	Blocks        int
	DroppedBlocks int
	Highlighted   int
	Preamble      string
	Duration      time.Duration
}

// Build loads the selected templates and the answers and runs the pipeline
// in memory. Nothing is written.
func (e *Engine) Build(ctx context.Context) (*Run, error) {
	run := &Run{ID: uuid.NewString(), LoadErrors: NewMultiError()}
	logger := e.logger.With("run_id", run.ID)

	doc, err := answers.Load(e.config.Answers)
	if err != nil {
		return nil, NewDocumentError("read answers", e.config.Answers, err)
	}
	run.Answers = doc

	start := time.Now()
	pkgs, loadErrs, err := e.loadTemplates(ctx, logger)
	if err != nil {
		return nil, err
	}
	e.recorder.ObservePhaseDuration(metrics.PhaseLoad, time.Since(start))

	start = time.Now()
	for i, pkg := range pkgs {
		key := e.config.Selections[i]
		if pkg == nil {
			err := WithContext(loadErrs[i], "load template", map[string]interface{}{"selection": key, "index": i})
			logger.Warn("template skipped", "selection", key, "error", err)
			run.Skipped = append(run.Skipped, key)
			run.LoadErrors.Add(err)
			continue
		}
		t := outline.FromPackage(key, pkg)
		if t.Stats.OrphanHeadings > 0 || t.Stats.DroppedBlocks > 0 {
			logger.Debug("orphan content dropped",
				"template", key,
				"headings", t.Stats.OrphanHeadings,
				"blocks", t.Stats.DroppedBlocks)
		}
		run.Templates = append(run.Templates, t)
	}
	e.recorder.AddTemplates(len(run.Templates), len(run.Skipped))
	if len(run.Templates) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrEmptyTemplateSet, run.LoadErrors)
	}
	e.recorder.ObservePhaseDuration(metrics.PhaseBuild, time.Since(start))

	start = time.Now()
	for _, t := range run.Templates {
		n := outline.Link(t)
		logger.Debug("sections linked", "template", t.Key, "links", n)
		run.Links += n
	}
	e.recorder.AddLinks(run.Links)
	e.recorder.ObservePhaseDuration(metrics.PhaseLink, time.Since(start))

	start = time.Now()
	run.Registry = resolve.NewRegistry(run.Templates, resolve.WithLogger(logger))
	run.Resolution = run.Registry.Apply(doc.Records)
	for _, t := range run.Templates {
		outline.Propagate(t)
	}
	e.recorder.AddReferences(run.Resolution.Resolved, len(run.Resolution.Unresolved))
	e.recorder.ObservePhaseDuration(metrics.PhaseResolve, time.Since(start))

	start = time.Now()
	opts := e.config.AssembleOptions()
	opts.Logger = logger
	run.Assembly = assemble.New(opts).Assemble(run.Templates)
	e.recorder.AddBlocks(len(run.Assembly.Items), run.Assembly.Stats.DroppedBlocks)
	e.recorder.ObservePhaseDuration(metrics.PhaseAssemble, time.Since(start))

	return run, nil
}

// loadTemplates reads every selected template in parallel. Both results have
// one slot per selection; a nil package slot is a template that failed to
// load and its error slot says why.
func (e *Engine) loadTemplates(ctx context.Context, logger *slog.Logger) ([]*docx.Package, []error, error) {
	selections := e.config.Selections
	pkgs := make([]*docx.Package, len(selections))
	errs := make([]error, len(selections))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, key := range selections {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := e.config.TemplatePath(key)
			pkg, hit, err := e.cache.Load(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			logger.Debug("template loaded", "selection", key, "path", path, "cached", hit)
			pkgs[i] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return pkgs, errs, nil
}

// Compose builds the output package: the first template is the skeleton and
// every emitted block is appended with its relationships imported.
func (e *Engine) Compose(run *Run) *docx.Composer {
	c := docx.NewComposer(run.Templates[0].Package)
	for _, t := range run.Templates[1:] {
		c.Document().MergeNamespaces(t.Package.Document())
	}
	for _, item := range run.Assembly.Items {
		c.Append(item.Template.Package, item.Block)
	}
	return c
}

// Write saves the assembled document and the gap report of run
func (e *Engine) Write(run *Run) (*Summary, error) {
	start := time.Now()
	c := e.Compose(run)
	content, err := c.Bytes()
	if err != nil {
		return nil, NewDocumentError("compose", e.config.DocumentPath(), err)
	}
	if err := writeFile(e.config.DocumentPath(), content); err != nil {
		return nil, NewDocumentError("write", e.config.DocumentPath(), err)
	}
	if c.Unresolved > 0 {
		e.logger.Warn("relationships not imported", "run_id", run.ID, "count", c.Unresolved)
	}

	if err := gaps.WriteFile(e.config.GapsPath(), run.Answers.Gaps); err != nil {
		return nil, NewDocumentError("write", e.config.GapsPath(), err)
	}
	e.recorder.ObservePhaseDuration(metrics.PhaseWrite, time.Since(start))

	summary := run.Summary()
	summary.DocumentPath = e.config.DocumentPath()
	summary.DocumentSize = int64(len(content))
	summary.GapsPath = e.config.GapsPath()
	return summary, nil
}

// Run builds and writes the output documents
func (e *Engine) Run(ctx context.Context) (summary *Summary, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = RecoverError(r)
		}
		e.recorder.ObserveRunDuration(time.Since(start))
		if err != nil {
			e.recorder.IncRunOutcome("failed")
			return
		}
		e.recorder.IncRunOutcome("success")
		summary.Duration = time.Since(start)
	}()

	run, err := e.Build(ctx)
	if err != nil {
		return nil, err
	}
	summary, err = e.Write(run)
	if err != nil {
		return nil, err
	}
	e.logger.Info("assembly complete",
		"run_id", run.ID,
		"document", summary.DocumentPath,
		"templates", len(summary.Loaded),
		"resolved", summary.Resolved,
		"unresolved", len(summary.Unresolved),
		"blocks", summary.Blocks)
	return summary, nil
}

// Preview renders the assembled blocks of run as a standalone HTML page
func (e *Engine) Preview(run *Run) ([]byte, error) {
	page, err := preview.Page(run.Assembly.Items, preview.Options{
		Title:    e.config.DocumentName,
		Sentinel: e.config.Sentinel,
	})
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return page, nil
}

// Summary describes the in-memory result of run
func (run *Run) Summary() *Summary {
	s := &Summary{
		RunID:      run.ID,
		Skipped:    run.Skipped,
		Links:      run.Links,
		Resolved:   run.Resolution.Resolved,
		Unresolved: run.Resolution.Unresolved,
	}
	for _, t := range run.Templates {
		s.Loaded = append(s.Loaded, t.Key)
	}
	if run.LoadErrors != nil {
		s.SkipReasons = run.LoadErrors.Errors()
	}
	if run.Registry != nil {
		s.Shadowed = run.Registry.Shadowed()
	}
	if run.Answers != nil {
		s.GapRows = len(run.Answers.Gaps)
	}
	if run.Assembly != nil {
		stats := run.Assembly.Stats
		s.Headings = stats.Headings
		s.Blocks = len(run.Assembly.Items)
		s.DroppedBlocks = stats.DroppedBlocks
		s.Highlighted = stats.Highlighted
		s.Preamble = stats.PreambleTemplate
	}
	return s
}
