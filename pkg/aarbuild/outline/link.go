package outline

import (
	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

// Link pairs every primary leaf with the secondary leaf that immediately
// follows it under the same level-4 node, when both share a base key. Only
// the next sibling is considered. The secondary's heading and blocks are
// appended to the primary's LinkedBlocks and the secondary is marked linked.
// Link returns the number of new links; running it again makes none.
func Link(t *Template) int {
	links := 0
	for _, section := range t.Roots {
		for _, sub := range section.Children {
			links += linkLeaves(sub.Children)
		}
	}
	return links
}

func linkLeaves(leaves []*Node) int {
	links := 0
	for i := 0; i+1 < len(leaves); i++ {
		primary, next := leaves[i], leaves[i+1]
		if primary.Kind != Primary || primary.LinkedSecondary != nil {
			continue
		}
		if next.Kind != Secondary || next.Linked || next.BaseKey != primary.BaseKey {
			continue
		}

		linked := make([]wml.Block, 0, len(next.Blocks)+1)
		linked = append(linked, next.Heading)
		linked = append(linked, next.Blocks...)
		primary.LinkedBlocks = linked
		primary.LinkedSecondary = next
		next.Linked = true
		next.LinkedPrimary = primary
		links++
	}
	return links
}
