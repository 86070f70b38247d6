// Package assemble walks resolved template outlines and produces the ordered
// block sequence of the output document.
//
// Assembly runs in three steps:
//
//   - Step A copies the first level-3 section, across all templates, whose
//     title starts with the preamble marker. The copy ignores the needed
//     flags.
//   - Step B walks every other level-3 section in template order and emits
//     needed sections, needed subsections and the level-5 leaves selected by
//     Decide. Owned blocks of a referenced primary pass the placeholder
//     coverage rule and are then filled with the leaf's answers.
//   - Step C recolors the table paragraphs that carry the sentinel text.
//
// A level-5 title is emitted at most once per document.
package assemble

import (
	"log/slog"
	"strings"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/outline"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/placeholder"
	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

// Item is one emitted block and the template it was copied from
type Item struct {
	Block    wml.Block
	Template *outline.Template
	// Level is the outline level of an emitted heading, 0 for content
	Level int
}

// Stats counts what an assembly emitted and dropped
type Stats struct {
	Headings      int
	ContentBlocks int
	// DroppedBlocks counts owned blocks rejected by the coverage rule
	DroppedBlocks    int
	Substituted      int
	Highlighted      int
	PreambleTemplate string
	SkippedLeaves    int
}

// Result is the output of Assemble
type Result struct {
	Items []Item
	Stats Stats
}

// Blocks returns the emitted blocks in order
func (r *Result) Blocks() []wml.Block {
	blocks := make([]wml.Block, len(r.Items))
	for i, it := range r.Items {
		blocks[i] = it.Block
	}
	return blocks
}

// Assembler builds the output block sequence
type Assembler struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Assembler
func New(opts Options) *Assembler {
	opts = opts.withDefaults()
	return &Assembler{opts: opts, logger: opts.Logger}
}

// run holds the state of one Assemble call
type run struct {
	*Assembler
	result  *Result
	emitted map[string]bool
	current *outline.Template
}

// Assemble produces the output blocks for templates, which must already be
// linked, resolved and propagated. Emitted blocks are deep copies; the
// templates are not modified.
func (a *Assembler) Assemble(templates []*outline.Template) *Result {
	r := &run{
		Assembler: a,
		result:    &Result{},
		emitted:   make(map[string]bool),
	}

	preamble := r.preamble(templates)
	for _, t := range templates {
		r.current = t
		for _, section := range t.Roots {
			if preamble && r.isPreamble(section) {
				continue
			}
			r.section(section)
		}
	}
	r.highlight()

	a.logger.Debug("assembly complete",
		"blocks", len(r.result.Items),
		"headings", r.result.Stats.Headings,
		"dropped", r.result.Stats.DroppedBlocks,
		"highlighted", r.result.Stats.Highlighted)
	return r.result
}

func (r *run) isPreamble(section *outline.Node) bool {
	return r.opts.PreambleMarker != "" && strings.HasPrefix(section.Title, r.opts.PreambleMarker)
}

// preamble performs Step A and reports whether a section was copied
func (r *run) preamble(templates []*outline.Template) bool {
	if r.opts.PreambleMarker == "" {
		return false
	}
	for _, t := range templates {
		for _, section := range t.Roots {
			if !r.isPreamble(section) {
				continue
			}
			r.current = t
			r.result.Stats.PreambleTemplate = t.Key
			r.logger.Debug("copying preamble", "template", t.Key, "title", section.Title)

			r.heading(section)
			for _, sub := range section.Children {
				r.heading(sub)
				for _, leaf := range sub.Children {
					r.preambleLeaf(leaf)
				}
			}
			return true
		}
	}
	return false
}

func (r *run) preambleLeaf(leaf *outline.Node) {
	// a linked secondary already went out with its primary
	if leaf.Linked && r.emitted[leaf.Title] {
		return
	}
	r.heading(leaf)
	r.emitted[leaf.Title] = true
	for _, b := range leaf.Blocks {
		c := b.CloneBlock()
		if leaf.Referenced {
			r.substitute(c, leaf.Answers)
		}
		r.content(c)
	}
	r.linked(leaf)
}

// section performs Step B for one level-3 node
func (r *run) section(section *outline.Node) {
	if !section.Needed {
		return
	}
	r.heading(section)
	for _, sub := range section.Children {
		if !sub.Needed {
			continue
		}
		r.heading(sub)
		for _, leaf := range sub.Children {
			switch Decide(leaf, r.emitted) {
			case EmitPrimary:
				r.primary(leaf)
			case EmitMisc:
				r.misc(leaf)
			default:
				r.result.Stats.SkippedLeaves++
			}
		}
	}
}

func (r *run) primary(leaf *outline.Node) {
	r.heading(leaf)
	r.emitted[leaf.Title] = true

	provided := leaf.ProvidedKeys()
	for _, b := range leaf.Blocks {
		if !placeholder.Covered(b, provided) {
			r.result.Stats.DroppedBlocks++
			r.logger.Debug("block dropped by coverage",
				"leaf", leaf.Title, "tokens", placeholder.Tokens(b.GetText()))
			continue
		}
		c := b.CloneBlock()
		r.substitute(c, leaf.Answers)
		r.content(c)
	}
	r.linked(leaf)
}

// linked emits the secondary paired with leaf unless its title is out already
func (r *run) linked(leaf *outline.Node) {
	secondary := leaf.LinkedSecondary
	if secondary == nil || len(leaf.LinkedBlocks) == 0 {
		return
	}
	if r.emitted[secondary.Title] {
		r.logger.Debug("linked section already emitted", "title", secondary.Title)
		return
	}
	r.result.Stats.Headings++
	r.result.Stats.ContentBlocks += len(leaf.LinkedBlocks) - 1
	for i, b := range leaf.LinkedBlocks {
		level := 0
		if i == 0 {
			level = secondary.Level
		}
		r.emit(b.CloneBlock(), level)
	}
	r.emitted[secondary.Title] = true
}

func (r *run) misc(leaf *outline.Node) {
	r.heading(leaf)
	r.emitted[leaf.Title] = true
	for _, b := range leaf.Blocks {
		r.content(b.CloneBlock())
	}
}

func (r *run) substitute(b wml.Block, answers map[string]string) {
	if placeholder.Substitute(b, answers) {
		r.result.Stats.Substituted++
	}
}

func (r *run) heading(n *outline.Node) {
	r.result.Stats.Headings++
	r.emit(n.Heading.CloneBlock(), n.Level)
}

func (r *run) content(b wml.Block) {
	r.result.Stats.ContentBlocks++
	r.emit(b, 0)
}

func (r *run) emit(b wml.Block, level int) {
	r.result.Items = append(r.result.Items, Item{Block: b, Template: r.current, Level: level})
}
