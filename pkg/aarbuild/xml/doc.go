// Package xml provides the WordprocessingML structures used by aarbuild to
// read, rearrange and write the body of DOCX documents.
//
// # Structure Organization
//
//   - types.go: Core interfaces (Block, ParagraphContent, RunContent, ...)
//   - raw.go: RawElement and the prefix-preserving token decoder
//   - document.go: Document and Body, parsing and serialization
//   - paragraph.go: Paragraph, ParagraphProperties and Hyperlink
//   - run.go: Run, RunProperties, Text, Tab and Break
//   - table.go: Table, TableRow and TableCell
//
// # Key Concepts
//
// Block: an element that can appear in a body or a table cell. Paragraphs and
// tables are interpreted; everything else (bookmarks, content controls, ...)
// is kept as a RawElement and written back unchanged.
//
// Only what the assembler needs is interpreted: visible text, the paragraph
// style id, bold and color run properties. Element order is always preserved,
// and every type offers a deep Clone so a block can be copied into a new
// document without sharing state with its source.
//
// # XML Namespaces
//
// Tokens are read with encoding/xml's RawToken, so names keep the prefix used
// in the source part ("w:p", "r:id", "xmlns:w14"). Serialization writes those
// names back verbatim; the root element attributes carry the declarations.
//
//	doc, err := xml.ParseDocument(r)
//	for _, block := range doc.Body.Elements {
//	    fmt.Println(block.GetText())
//	}
package xml
