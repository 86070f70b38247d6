// Package metrics records assembly run statistics. Callers receive a
// Recorder; NoopRecorder is the default and PrometheusRecorder collects into
// a registry that can be written as a node-exporter textfile.
package metrics

import "time"

// Phase names used as the phase label
const (
	PhaseLoad     = "load"
	PhaseBuild    = "build"
	PhaseLink     = "link"
	PhaseResolve  = "resolve"
	PhaseAssemble = "assemble"
	PhaseWrite    = "write"
)

// Recorder defines the hooks the engine calls during a run
type Recorder interface {
	ObservePhaseDuration(phase string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome string) // outcome: success|failed
	AddTemplates(loaded, skipped int)
	AddReferences(resolved, unresolved int)
	AddBlocks(emitted, dropped int)
	AddLinks(n int)
}

// NoopRecorder is a Recorder that does nothing
type NoopRecorder struct{}

func (NoopRecorder) ObservePhaseDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncRunOutcome(string)                       {}
func (NoopRecorder) AddTemplates(int, int)                      {}
func (NoopRecorder) AddReferences(int, int)                     {}
func (NoopRecorder) AddBlocks(int, int)                         {}
func (NoopRecorder) AddLinks(int)                               {}
