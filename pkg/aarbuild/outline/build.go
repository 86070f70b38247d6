package outline

import (
	"strings"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/docx"
)

// Build reconstructs the level 3/4/5 heading tree from a flat block stream.
//
// A heading of level L replaces the open node at L and closes every deeper
// one. It is attached to the open node at L-1, or dropped when there is
// none, in which case anything that would nest under it is dropped too.
// Every other block, including headings of other levels, belongs to the
// open level-5 node or is dropped.
func Build(key string, blocks []docx.StyledBlock) *Template {
	t := &Template{Key: key}

	// open[0..2] hold the current level 3, 4 and 5 nodes
	var open [3]*Node

	for _, sb := range blocks {
		level := sb.Level
		if level < SectionLevel || level > LeafLevel {
			if leaf := open[2]; leaf != nil {
				leaf.Blocks = append(leaf.Blocks, sb.Block)
				t.Stats.ContentBlocks++
			} else {
				t.Stats.DroppedBlocks++
			}
			continue
		}

		t.Stats.Headings++
		slot := level - SectionLevel
		for i := slot; i < len(open); i++ {
			open[i] = nil
		}

		node := newNode(level, sb)
		if level == SectionLevel {
			t.Roots = append(t.Roots, node)
		} else if parent := open[slot-1]; parent != nil {
			parent.Children = append(parent.Children, node)
		} else {
			t.Stats.OrphanHeadings++
			continue
		}
		open[slot] = node
	}

	return t
}

// FromPackage builds the outline of a parsed template
func FromPackage(key string, pkg *docx.Package) *Template {
	t := Build(key, pkg.StyledBlocks())
	t.Package = pkg
	return t
}

func newNode(level int, sb docx.StyledBlock) *Node {
	title := strings.TrimSpace(sb.Block.GetText())
	n := &Node{Level: level, Title: title, Heading: sb.Block}
	if level == LeafLevel {
		n.Kind, n.BaseKey = Classify(title)
	}
	return n
}
