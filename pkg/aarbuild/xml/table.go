package xml

import (
	"encoding/xml"
	"strings"
)

// Table represents a table in the document
type Table struct {
	Attrs []xml.Attr
	// Content holds rows plus tblPr, tblGrid and any other preserved children
	Content []TableContent
}

func (t *Table) isBlock() {}

// NewTable creates a table with one single-paragraph cell per string
func NewTable(rows ...[]string) *Table {
	t := &Table{}
	for _, cells := range rows {
		row := &TableRow{}
		for _, text := range cells {
			row.Content = append(row.Content, &TableCell{Content: []Block{NewParagraph("", text)}})
		}
		t.Content = append(t.Content, row)
	}
	return t
}

// Rows returns the rows of the table
func (t *Table) Rows() []*TableRow {
	var rows []*TableRow
	for _, c := range t.Content {
		if r, ok := c.(*TableRow); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// Cells returns every cell in row-major order
func (t *Table) Cells() []*TableCell {
	var cells []*TableCell
	for _, r := range t.Rows() {
		cells = append(cells, r.Cells()...)
	}
	return cells
}

// GetText returns the text of every cell, row-major, joined by newlines
func (t *Table) GetText() string {
	cells := t.Cells()
	texts := make([]string, len(cells))
	for i, c := range cells {
		texts[i] = c.GetText()
	}
	return strings.Join(texts, "\n")
}

// CloneBlock implements Block
func (t *Table) CloneBlock() Block { return t.Clone() }

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := &Table{Attrs: copyAttrs(t.Attrs)}
	for _, c := range t.Content {
		switch v := c.(type) {
		case *TableRow:
			out.Content = append(out.Content, v.Clone())
		case *RawElement:
			out.Content = append(out.Content, v.Clone())
		}
	}
	return out
}

func parseTable(dec *decoder, start xml.StartElement) (*Table, error) {
	table := &Table{Attrs: start.Attr}
	for {
		tok, err := dec.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if localName(t.Name.Local) == "tr" {
				row, err := parseTableRow(dec, t)
				if err != nil {
					return nil, err
				}
				table.Content = append(table.Content, row)
				continue
			}
			raw, err := dec.capture(t)
			if err != nil {
				return nil, err
			}
			table.Content = append(table.Content, raw)
		case xml.EndElement:
			return table, nil
		}
	}
}

func (t *Table) encode(e *xml.Encoder) error {
	start, err := encodeStart(e, "w:tbl", t.Attrs)
	if err != nil {
		return err
	}
	for _, c := range t.Content {
		switch v := c.(type) {
		case *TableRow:
			err = v.encode(e)
		case *RawElement:
			err = v.encode(e)
		}
		if err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// TableRow represents a row in a table
type TableRow struct {
	Attrs   []xml.Attr
	Content []RowContent
}

func (r *TableRow) isTableContent() {}

// Cells returns the cells of the row
func (r *TableRow) Cells() []*TableCell {
	var cells []*TableCell
	for _, c := range r.Content {
		if cell, ok := c.(*TableCell); ok {
			cells = append(cells, cell)
		}
	}
	return cells
}

// Clone returns a deep copy of the row
func (r *TableRow) Clone() *TableRow {
	out := &TableRow{Attrs: copyAttrs(r.Attrs)}
	for _, c := range r.Content {
		switch v := c.(type) {
		case *TableCell:
			out.Content = append(out.Content, v.Clone())
		case *RawElement:
			out.Content = append(out.Content, v.Clone())
		}
	}
	return out
}

func parseTableRow(dec *decoder, start xml.StartElement) (*TableRow, error) {
	row := &TableRow{Attrs: start.Attr}
	for {
		tok, err := dec.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if localName(t.Name.Local) == "tc" {
				cell, err := parseTableCell(dec, t)
				if err != nil {
					return nil, err
				}
				row.Content = append(row.Content, cell)
				continue
			}
			raw, err := dec.capture(t)
			if err != nil {
				return nil, err
			}
			row.Content = append(row.Content, raw)
		case xml.EndElement:
			return row, nil
		}
	}
}

func (r *TableRow) encode(e *xml.Encoder) error {
	start, err := encodeStart(e, "w:tr", r.Attrs)
	if err != nil {
		return err
	}
	for _, c := range r.Content {
		switch v := c.(type) {
		case *TableCell:
			err = v.encode(e)
		case *RawElement:
			err = v.encode(e)
		}
		if err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// TableCell represents a cell in a table row
type TableCell struct {
	Attrs []xml.Attr
	// Content holds tcPr, paragraphs and nested tables in source order
	Content []Block
}

func (c *TableCell) isRowContent() {}

// Paragraphs returns the direct paragraphs of the cell
func (c *TableCell) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, b := range c.Content {
		if p, ok := b.(*Paragraph); ok {
			paras = append(paras, p)
		}
	}
	return paras
}

// GetText returns the text of the direct paragraphs joined by newlines
func (c *TableCell) GetText() string {
	paras := c.Paragraphs()
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = p.GetText()
	}
	return strings.Join(texts, "\n")
}

// Clone returns a deep copy of the cell
func (c *TableCell) Clone() *TableCell {
	out := &TableCell{Attrs: copyAttrs(c.Attrs)}
	for _, b := range c.Content {
		out.Content = append(out.Content, b.CloneBlock())
	}
	return out
}

func parseTableCell(dec *decoder, start xml.StartElement) (*TableCell, error) {
	cell := &TableCell{Attrs: start.Attr}
	for {
		tok, err := dec.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			block, err := parseBlock(dec, t)
			if err != nil {
				return nil, err
			}
			cell.Content = append(cell.Content, block)
		case xml.EndElement:
			return cell, nil
		}
	}
}

func (c *TableCell) encode(e *xml.Encoder) error {
	start, err := encodeStart(e, "w:tc", c.Attrs)
	if err != nil {
		return err
	}
	for _, b := range c.Content {
		if err := b.encode(e); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}
