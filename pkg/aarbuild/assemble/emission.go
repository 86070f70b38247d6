package assemble

import (
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/outline"
)

// Emission is the decision taken for one level-5 leaf under a needed
// level-4 node
type Emission int

const (
	// EmitSkip leaves the leaf out
	EmitSkip Emission = iota
	// EmitPrimary emits a referenced primary with coverage-filtered,
	// substituted content followed by its linked secondary
	EmitPrimary
	// EmitMisc emits the heading and owned blocks verbatim
	EmitMisc
)

func (e Emission) String() string {
	switch e {
	case EmitPrimary:
		return "primary"
	case EmitMisc:
		return "misc"
	default:
		return "skip"
	}
}

// Decide computes the emission for leaf given the titles emitted so far.
// Linked secondaries are never emitted on their own; they travel with
// their primary.
func Decide(leaf *outline.Node, emitted map[string]bool) Emission {
	if leaf.Linked || emitted[leaf.Title] {
		return EmitSkip
	}
	if leaf.Referenced {
		return EmitPrimary
	}
	if leaf.Kind != outline.Primary {
		return EmitMisc
	}
	return EmitSkip
}
