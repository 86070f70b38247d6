// Package resolve maps answer records onto the primary requirement leaves
// of the selected templates.
package resolve

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/answers"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/outline"
)

// Entry is the primary leaf a base key resolves to
type Entry struct {
	TemplateKey string
	Leaf        *outline.Node
}

// Shadowed records a primary leaf hidden by an earlier definition of the
// same base key
type Shadowed struct {
	BaseKey     string
	TemplateKey string
	Winner      string
}

// Unresolved is the notice produced for a record whose key matches no
// primary leaf
type Unresolved struct {
	RequirementKey string
	Index          int
}

func (u Unresolved) String() string {
	return fmt.Sprintf("record %d: requirement %q not found in any template", u.Index, u.RequirementKey)
}

// Result summarizes one Apply call
type Result struct {
	Resolved   int
	Unresolved []Unresolved
	// Skipped counts records with an empty requirement key
	Skipped int
}

// Registry is an immutable index from base key to primary leaf. It is built
// once over every selected template, in selection order, and the first
// definition of a key wins.
type Registry struct {
	entries  map[string]Entry
	order    []string
	shadowed []Shadowed
	logger   *slog.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for notices
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry indexes the primary leaves of templates
func NewRegistry(templates []*outline.Template, opts ...Option) *Registry {
	r := &Registry{entries: make(map[string]Entry), logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	for _, t := range templates {
		for _, leaf := range t.Leaves() {
			if leaf.Kind != outline.Primary {
				continue
			}
			if winner, ok := r.entries[leaf.BaseKey]; ok {
				r.shadowed = append(r.shadowed, Shadowed{
					BaseKey:     leaf.BaseKey,
					TemplateKey: t.Key,
					Winner:      winner.TemplateKey,
				})
				r.logger.Debug("duplicate requirement shadowed",
					"key", leaf.BaseKey, "template", t.Key, "winner", winner.TemplateKey)
				continue
			}
			r.entries[leaf.BaseKey] = Entry{TemplateKey: t.Key, Leaf: leaf}
			r.order = append(r.order, leaf.BaseKey)
		}
	}
	return r
}

// Lookup returns the entry for a base key
func (r *Registry) Lookup(key string) (Entry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// Keys returns the indexed base keys in first-definition order
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of indexed keys
func (r *Registry) Len() int {
	return len(r.entries)
}

// Shadowed returns the primary leaves hidden by an earlier template
func (r *Registry) Shadowed() []Shadowed {
	return append([]Shadowed(nil), r.shadowed...)
}

// Apply marks the leaf of every resolvable record as referenced and merges
// the record's answers into it. When several records target the same leaf
// their answers are merged and the last value for a key wins. Records that
// match nothing are reported, never fatal.
func (r *Registry) Apply(records []answers.Record) Result {
	var res Result
	for i, rec := range records {
		key := strings.TrimSpace(rec.RequirementKey)
		if key == "" {
			res.Skipped++
			continue
		}

		entry, ok := r.entries[key]
		if !ok {
			u := Unresolved{RequirementKey: key, Index: i}
			res.Unresolved = append(res.Unresolved, u)
			r.logger.Warn("unresolved requirement", "key", key, "record", i)
			continue
		}

		leaf := entry.Leaf
		leaf.Referenced = true
		if leaf.Answers == nil {
			leaf.Answers = make(map[string]string, len(rec.Answers))
		}
		for k, v := range rec.Answers {
			leaf.Answers[k] = v
		}
		res.Resolved++
	}
	return res
}
