package assemble

import (
	"strings"

	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

// highlight performs Step C over the emitted tables
func (r *run) highlight() {
	if r.opts.Sentinel == "" {
		return
	}
	for _, it := range r.result.Items {
		if tbl, ok := it.Block.(*wml.Table); ok {
			r.result.Stats.Highlighted += Highlight(tbl, r.opts.Sentinel, r.opts.SentinelMatch, r.opts.HighlightColor)
		}
	}
}

// Highlight recolors every run of each cell paragraph in tbl whose text
// matches sentinel, including paragraphs of nested tables. It returns the
// number of paragraphs recolored.
func Highlight(tbl *wml.Table, sentinel string, mode MatchMode, color string) int {
	n := 0
	for _, cell := range tbl.Cells() {
		for _, b := range cell.Content {
			switch v := b.(type) {
			case *wml.Paragraph:
				if !matches(v.GetText(), sentinel, mode) {
					continue
				}
				for _, rn := range v.Runs() {
					rn.EnsureProperties().SetColor(color)
				}
				n++
			case *wml.Table:
				n += Highlight(v, sentinel, mode, color)
			}
		}
	}
	return n
}

func matches(text, sentinel string, mode MatchMode) bool {
	if mode == MatchContains {
		return strings.Contains(text, sentinel)
	}
	return strings.TrimSpace(text) == sentinel
}
