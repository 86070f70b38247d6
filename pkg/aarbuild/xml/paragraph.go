package xml

import (
	"encoding/xml"
	"strings"
)

// Paragraph represents a paragraph in the document
type Paragraph struct {
	Attrs      []xml.Attr
	Properties *ParagraphProperties
	// Content maintains the order of runs, hyperlinks and preserved elements
	Content []ParagraphContent
}

func (p *Paragraph) isBlock() {}

// NewParagraph creates a paragraph with the given style id and one run per text
func NewParagraph(styleID string, texts ...string) *Paragraph {
	p := &Paragraph{}
	if styleID != "" {
		p.Properties = &ParagraphProperties{Style: &Style{Val: styleID}}
	}
	for _, t := range texts {
		p.Content = append(p.Content, NewRun(t))
	}
	return p
}

// GetText returns the concatenated text of all runs in a paragraph
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for _, c := range p.Content {
		switch v := c.(type) {
		case *Run:
			sb.WriteString(v.GetText())
		case *Hyperlink:
			sb.WriteString(v.GetText())
		}
	}
	return sb.String()
}

// StyleID returns the pStyle value, or an empty string for the default style
func (p *Paragraph) StyleID() string {
	if p.Properties == nil || p.Properties.Style == nil {
		return ""
	}
	return p.Properties.Style.Val
}

// Runs returns every run of the paragraph, including runs inside hyperlinks
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, c := range p.Content {
		switch v := c.(type) {
		case *Run:
			runs = append(runs, v)
		case *Hyperlink:
			runs = append(runs, v.Runs()...)
		}
	}
	return runs
}

// ReplaceWithEmphasizedRun drops every run and hyperlink and appends a single
// bold run carrying text. Tabs and line breaks in text become w:tab and w:br.
// Per-run formatting of the original content is lost; non-text markup such as
// bookmarks is kept.
func (p *Paragraph) ReplaceWithEmphasizedRun(text string) {
	kept := p.Content[:0]
	for _, c := range p.Content {
		switch c.(type) {
		case *Run, *Hyperlink:
			continue
		}
		kept = append(kept, c)
	}
	run := NewLayoutRun(text)
	run.EnsureProperties().SetBold()
	p.Content = append(kept, run)
}

// CloneBlock implements Block
func (p *Paragraph) CloneBlock() Block { return p.Clone() }

// Clone returns a deep copy of the paragraph
func (p *Paragraph) Clone() *Paragraph {
	out := &Paragraph{Attrs: copyAttrs(p.Attrs), Properties: p.Properties.Clone()}
	if p.Content != nil {
		out.Content = cloneParagraphContent(p.Content)
	}
	return out
}

func cloneParagraphContent(content []ParagraphContent) []ParagraphContent {
	out := make([]ParagraphContent, len(content))
	for i, c := range content {
		switch v := c.(type) {
		case *Run:
			out[i] = v.Clone()
		case *Hyperlink:
			out[i] = v.Clone()
		case *RawElement:
			out[i] = v.Clone()
		}
	}
	return out
}

func parseParagraph(dec *decoder, start xml.StartElement) (*Paragraph, error) {
	p := &Paragraph{Attrs: start.Attr}
	for {
		tok, err := dec.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if localName(t.Name.Local) == "pPr" {
				props, err := parseParagraphProperties(dec, t)
				if err != nil {
					return nil, err
				}
				p.Properties = props
				continue
			}
			item, err := parseParagraphContent(dec, t)
			if err != nil {
				return nil, err
			}
			p.Content = append(p.Content, item)
		case xml.EndElement:
			return p, nil
		}
	}
}

func parseParagraphContent(dec *decoder, t xml.StartElement) (ParagraphContent, error) {
	switch localName(t.Name.Local) {
	case "r":
		return parseRun(dec, t)
	case "hyperlink":
		return parseHyperlink(dec, t)
	default:
		return dec.capture(t)
	}
}

func (p *Paragraph) encode(e *xml.Encoder) error {
	start, err := encodeStart(e, "w:p", p.Attrs)
	if err != nil {
		return err
	}
	if p.Properties != nil {
		if err := p.Properties.encode(e); err != nil {
			return err
		}
	}
	if err := encodeParagraphContent(e, p.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func encodeParagraphContent(e *xml.Encoder, content []ParagraphContent) error {
	for _, c := range content {
		var err error
		switch v := c.(type) {
		case *Run:
			err = v.encode(e)
		case *Hyperlink:
			err = v.encode(e)
		case *RawElement:
			err = v.encode(e)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ParagraphProperties represents paragraph formatting properties
type ParagraphProperties struct {
	Style *Style
	// Elements preserves every other pPr child in source order
	Elements []*RawElement
}

func parseParagraphProperties(dec *decoder, start xml.StartElement) (*ParagraphProperties, error) {
	props := &ParagraphProperties{}
	for {
		tok, err := dec.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if localName(t.Name.Local) == "pStyle" {
				props.Style = &Style{Val: attrValue(t.Attr, "w:val")}
				if err := dec.skip(); err != nil {
					return nil, err
				}
				continue
			}
			raw, err := dec.capture(t)
			if err != nil {
				return nil, err
			}
			props.Elements = append(props.Elements, raw)
		case xml.EndElement:
			return props, nil
		}
	}
}

// Clone returns a deep copy of the properties
func (pp *ParagraphProperties) Clone() *ParagraphProperties {
	if pp == nil {
		return nil
	}
	out := &ParagraphProperties{}
	if pp.Style != nil {
		out.Style = &Style{Val: pp.Style.Val}
	}
	for _, el := range pp.Elements {
		out.Elements = append(out.Elements, el.Clone())
	}
	return out
}

func (pp *ParagraphProperties) encode(e *xml.Encoder) error {
	start, err := encodeStart(e, "w:pPr", nil)
	if err != nil {
		return err
	}
	// pStyle is always the first child
	if pp.Style != nil {
		style := NewEmptyElement("w:pStyle", xml.Attr{Name: xml.Name{Local: "w:val"}, Value: pp.Style.Val})
		if err := style.encode(e); err != nil {
			return err
		}
	}
	for _, el := range pp.Elements {
		if err := el.encode(e); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// Hyperlink represents a hyperlink in the document
type Hyperlink struct {
	Attrs   []xml.Attr
	Content []ParagraphContent
}

func (h *Hyperlink) isParagraphContent() {}

// ID returns the relationship id of the hyperlink target
func (h *Hyperlink) ID() string {
	return attrValue(h.Attrs, "r:id")
}

// Runs returns the runs of the hyperlink
func (h *Hyperlink) Runs() []*Run {
	var runs []*Run
	for _, c := range h.Content {
		if r, ok := c.(*Run); ok {
			runs = append(runs, r)
		}
	}
	return runs
}

// GetText returns the concatenated text of all runs in a hyperlink
func (h *Hyperlink) GetText() string {
	var sb strings.Builder
	for _, r := range h.Runs() {
		sb.WriteString(r.GetText())
	}
	return sb.String()
}

// Clone returns a deep copy of the hyperlink
func (h *Hyperlink) Clone() *Hyperlink {
	return &Hyperlink{Attrs: copyAttrs(h.Attrs), Content: cloneParagraphContent(h.Content)}
}

func parseHyperlink(dec *decoder, start xml.StartElement) (*Hyperlink, error) {
	h := &Hyperlink{Attrs: start.Attr}
	for {
		tok, err := dec.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			item, err := parseParagraphContent(dec, t)
			if err != nil {
				return nil, err
			}
			h.Content = append(h.Content, item)
		case xml.EndElement:
			return h, nil
		}
	}
}

func (h *Hyperlink) encode(e *xml.Encoder) error {
	start, err := encodeStart(e, "w:hyperlink", h.Attrs)
	if err != nil {
		return err
	}
	if err := encodeParagraphContent(e, h.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}
