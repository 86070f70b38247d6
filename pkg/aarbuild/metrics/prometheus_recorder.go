package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "aarbuild"

// PrometheusRecorder implements Recorder using Prometheus metrics
type PrometheusRecorder struct {
	reg           *prom.Registry
	phaseDuration *prom.HistogramVec
	runDuration   prom.Histogram
	runOutcome    *prom.CounterVec
	templates     *prom.CounterVec
	references    *prom.CounterVec
	blocks        *prom.CounterVec
	links         prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		phaseDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of individual pipeline phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total assembly run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Assembly runs by final status",
		}, []string{"outcome"}),
		templates: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "templates_total",
			Help:      "Templates by load result",
		}, []string{"result"}),
		references: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "references_total",
			Help:      "Answer records by resolution result",
		}, []string{"result"}),
		blocks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Output blocks emitted and content blocks dropped by placeholder coverage",
		}, []string{"result"}),
		links: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "links_total",
			Help:      "Primary/secondary sections linked",
		}),
	}
	reg.MustRegister(pr.phaseDuration, pr.runDuration, pr.runOutcome, pr.templates, pr.references, pr.blocks, pr.links)
	return pr
}

// Registry returns the registry the metrics are registered with
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase string, d time.Duration) {
	if p == nil {
		return
	}
	p.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddTemplates(loaded, skipped int) {
	if p == nil {
		return
	}
	p.templates.WithLabelValues("loaded").Add(float64(loaded))
	p.templates.WithLabelValues("skipped").Add(float64(skipped))
}

func (p *PrometheusRecorder) AddReferences(resolved, unresolved int) {
	if p == nil {
		return
	}
	p.references.WithLabelValues("resolved").Add(float64(resolved))
	p.references.WithLabelValues("unresolved").Add(float64(unresolved))
}

func (p *PrometheusRecorder) AddBlocks(emitted, dropped int) {
	if p == nil {
		return
	}
	p.blocks.WithLabelValues("emitted").Add(float64(emitted))
	p.blocks.WithLabelValues("dropped").Add(float64(dropped))
}

func (p *PrometheusRecorder) AddLinks(n int) {
	if p == nil {
		return
	}
	p.links.Add(float64(n))
}

// WriteTextfile writes the collected metrics to path in the text exposition
// format read by the node exporter textfile collector
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
