package outline

import (
	"fmt"
	"io"
	"strings"
)

// WriteTree prints an indented view of the outline, one heading per line,
// with the leaf kind, link and flag state. Used by the inspect command.
func (t *Template) WriteTree(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s: %d headings, %d orphan headings, %d content blocks, %d dropped blocks\n",
		t.Key, t.Stats.Headings, t.Stats.OrphanHeadings, t.Stats.ContentBlocks, t.Stats.DroppedBlocks); err != nil {
		return err
	}

	var err error
	t.Walk(func(n *Node) {
		if err != nil {
			return
		}
		indent := strings.Repeat("  ", n.Level-SectionLevel)
		var flags []string
		if n.Level == LeafLevel {
			flags = append(flags, n.Kind.String())
			if n.Kind != Misc {
				flags = append(flags, "key="+n.BaseKey)
			}
			if n.LinkedSecondary != nil {
				flags = append(flags, "links="+n.LinkedSecondary.Title)
			}
			if n.Linked {
				flags = append(flags, "linked")
			}
			if n.Referenced {
				flags = append(flags, "referenced")
			}
			flags = append(flags, fmt.Sprintf("blocks=%d", len(n.Blocks)))
		}
		if n.Needed {
			flags = append(flags, "needed")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = " [" + strings.Join(flags, " ") + "]"
		}
		_, err = fmt.Fprintf(w, "%sH%d %s%s\n", indent, n.Level, n.Title, suffix)
	})
	return err
}
