package xml

import (
	"encoding/xml"
)

// Block represents any element that can appear in a document body or a table cell
type Block interface {
	isBlock()
	// GetText returns the visible text of the block
	GetText() string
	// CloneBlock returns a deep copy that shares no state with the receiver
	CloneBlock() Block
	encode(e *xml.Encoder) error
}

// ParagraphContent represents any content that can appear in a paragraph
type ParagraphContent interface {
	isParagraphContent()
}

// RunContent represents any content that can appear in a run
type RunContent interface {
	isRunContent()
}

// TableContent represents any content that can appear directly in a table
type TableContent interface {
	isTableContent()
}

// RowContent represents any content that can appear directly in a table row
type RowContent interface {
	isRowContent()
}

// Style represents a style reference such as pStyle
type Style struct {
	Val string
}
