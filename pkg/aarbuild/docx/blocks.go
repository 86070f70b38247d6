package docx

import (
	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

// StyledBlock is a top-level body block tagged with its heading level.
// Level is 0 for tables and for paragraphs that are not headings.
type StyledBlock struct {
	Block wml.Block
	Level int
}

// StyledBlocks returns the paragraphs and tables of the document body in
// order. Other body children (content controls, bookmarks) are not part of
// the stream.
func (p *Package) StyledBlocks() []StyledBlock {
	if p.document == nil || p.document.Body == nil {
		return nil
	}
	blocks := make([]StyledBlock, 0, len(p.document.Body.Elements))
	for _, el := range p.document.Body.Elements {
		switch b := el.(type) {
		case *wml.Paragraph:
			blocks = append(blocks, StyledBlock{Block: b, Level: p.styles.HeadingLevel(b.StyleID())})
		case *wml.Table:
			blocks = append(blocks, StyledBlock{Block: b})
		}
	}
	return blocks
}
