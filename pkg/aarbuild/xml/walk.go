package xml

import (
	"encoding/xml"
)

// VisitAttrs calls fn for every attribute of every element inside b,
// including preserved raw markup. fn may modify the attribute in place.
func VisitAttrs(b Block, fn func(attr *xml.Attr)) {
	switch v := b.(type) {
	case *Paragraph:
		visitParagraph(v, fn)
	case *Table:
		visitTable(v, fn)
	case *RawElement:
		visitRaw(v, fn)
	}
}

func visitList(attrs []xml.Attr, fn func(attr *xml.Attr)) {
	for i := range attrs {
		fn(&attrs[i])
	}
}

func visitRaw(r *RawElement, fn func(attr *xml.Attr)) {
	if r == nil {
		return
	}
	for _, tok := range r.Tokens {
		if start, ok := tok.(xml.StartElement); ok {
			visitList(start.Attr, fn)
		}
	}
}

func visitParagraph(p *Paragraph, fn func(attr *xml.Attr)) {
	visitList(p.Attrs, fn)
	if p.Properties != nil {
		for _, el := range p.Properties.Elements {
			visitRaw(el, fn)
		}
	}
	visitContent(p.Content, fn)
}

func visitContent(content []ParagraphContent, fn func(attr *xml.Attr)) {
	for _, c := range content {
		switch v := c.(type) {
		case *Run:
			visitRun(v, fn)
		case *Hyperlink:
			visitList(v.Attrs, fn)
			visitContent(v.Content, fn)
		case *RawElement:
			visitRaw(v, fn)
		}
	}
}

func visitRun(r *Run, fn func(attr *xml.Attr)) {
	visitList(r.Attrs, fn)
	if r.Properties != nil {
		for _, el := range r.Properties.Elements {
			visitRaw(el, fn)
		}
	}
	for _, c := range r.Content {
		if raw, ok := c.(*RawElement); ok {
			visitRaw(raw, fn)
		}
	}
}

func visitTable(t *Table, fn func(attr *xml.Attr)) {
	visitList(t.Attrs, fn)
	for _, c := range t.Content {
		switch v := c.(type) {
		case *TableRow:
			visitList(v.Attrs, fn)
			for _, rc := range v.Content {
				switch cell := rc.(type) {
				case *TableCell:
					visitList(cell.Attrs, fn)
					for _, b := range cell.Content {
						VisitAttrs(b, fn)
					}
				case *RawElement:
					visitRaw(cell, fn)
				}
			}
		case *RawElement:
			visitRaw(v, fn)
		}
	}
}
