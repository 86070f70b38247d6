package outline

import (
	"strings"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/docx"
	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

// Structural heading levels. Other heading levels are treated as body text.
const (
	SectionLevel    = 3
	SubsectionLevel = 4
	LeafLevel       = 5
)

// Title suffixes that pair requirement leaves
const (
	PrimarySuffix   = " TSS"
	SecondarySuffix = " AGD"
)

// Kind classifies a level-5 leaf by its title suffix
type Kind int

const (
	// Misc is any leaf without a recognized suffix
	Misc Kind = iota
	// Primary leaves end in " TSS"
	Primary
	// Secondary leaves end in " AGD"
	Secondary
)

func (k Kind) String() string {
	switch k {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return "misc"
	}
}

// Node is one heading of the reconstructed outline
type Node struct {
	Level   int
	Title   string
	Heading wml.Block
	// Blocks are the body blocks owned by the node (level 5 only)
	Blocks   []wml.Block
	Children []*Node
	Needed   bool

	// Level-5 attributes
	Kind       Kind
	BaseKey    string
	Referenced bool
	// LinkedBlocks holds the secondary's heading followed by its blocks
	LinkedBlocks []wml.Block
	// Linked is set on a secondary once a primary claimed it
	Linked          bool
	LinkedPrimary   *Node
	LinkedSecondary *Node
	// Answers maps placeholder keys ("Ans#1") to values; its keys are the
	// provided keys used by the coverage rule
	Answers map[string]string
}

// Template is the outline of one selected template document
type Template struct {
	Key     string
	Package *docx.Package
	Roots   []*Node
	Stats   BuildStats
}

// BuildStats counts what the builder saw and dropped
type BuildStats struct {
	Headings       int
	OrphanHeadings int
	DroppedBlocks  int
	ContentBlocks  int
}

// Classify derives the kind and base key of a level-5 title
func Classify(title string) (Kind, string) {
	switch {
	case strings.HasSuffix(title, PrimarySuffix):
		return Primary, strings.TrimSuffix(title, PrimarySuffix)
	case strings.HasSuffix(title, SecondarySuffix):
		return Secondary, strings.TrimSuffix(title, SecondarySuffix)
	default:
		return Misc, title
	}
}

// BaseKey returns the title with any " TSS"/" AGD" suffix removed
func BaseKey(title string) string {
	_, key := Classify(title)
	return key
}

// HasProvided reports whether the leaf was given a value for key
func (n *Node) HasProvided(key string) bool {
	_, ok := n.Answers[key]
	return ok
}

// ProvidedKeys returns the set of answer keys supplied for the leaf
func (n *Node) ProvidedKeys() map[string]bool {
	keys := make(map[string]bool, len(n.Answers))
	for k := range n.Answers {
		keys[k] = true
	}
	return keys
}

// Contributes reports whether a level-5 leaf makes its ancestors needed:
// it is referenced, or it is a linked secondary of a referenced primary.
func (n *Node) Contributes() bool {
	if n.Referenced {
		return true
	}
	return n.Linked && n.LinkedPrimary != nil && n.LinkedPrimary.Referenced
}

// Walk visits every node depth-first in document order
func (t *Template) Walk(fn func(n *Node)) {
	var visit func(nodes []*Node)
	visit = func(nodes []*Node) {
		for _, n := range nodes {
			fn(n)
			visit(n.Children)
		}
	}
	visit(t.Roots)
}

// Leaves returns every level-5 node in document order
func (t *Template) Leaves() []*Node {
	var leaves []*Node
	t.Walk(func(n *Node) {
		if n.Level == LeafLevel {
			leaves = append(leaves, n)
		}
	})
	return leaves
}
