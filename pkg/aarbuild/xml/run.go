package xml

import (
	"encoding/xml"
	"strings"
)

// Run represents a run of text with common properties
type Run struct {
	Attrs      []xml.Attr
	Properties *RunProperties
	// Content keeps text, tabs, breaks and preserved elements in source order
	Content []RunContent
}

func (r *Run) isParagraphContent() {}

// NewRun creates a run holding a single text element
func NewRun(text string) *Run {
	return &Run{Content: []RunContent{NewText(text)}}
}

// NewLayoutRun creates a run from text, turning each tab into a w:tab and
// each line feed or carriage return into a w:br
func NewLayoutRun(text string) *Run {
	run := &Run{}
	start := 0
	for i := 0; i < len(text); i++ {
		var sep RunContent
		switch text[i] {
		case '\t':
			sep = &Tab{}
		case '\n', '\r':
			sep = &Break{Name: "w:br"}
		default:
			continue
		}
		if i > start {
			run.Content = append(run.Content, NewText(text[start:i]))
		}
		run.Content = append(run.Content, sep)
		start = i + 1
	}
	if start < len(text) || len(run.Content) == 0 {
		run.Content = append(run.Content, NewText(text[start:]))
	}
	return run
}

// GetText returns the visible text of the run
func (r *Run) GetText() string {
	var sb strings.Builder
	for _, c := range r.Content {
		switch v := c.(type) {
		case *Text:
			sb.WriteString(v.Value)
		case *Tab:
			sb.WriteString("\t")
		case *Break:
			sb.WriteString(v.GetText())
		}
	}
	return sb.String()
}

// Clone returns a deep copy of the run
func (r *Run) Clone() *Run {
	out := &Run{Attrs: copyAttrs(r.Attrs), Properties: r.Properties.Clone()}
	if r.Content != nil {
		out.Content = make([]RunContent, len(r.Content))
		for i, c := range r.Content {
			switch v := c.(type) {
			case *Text:
				cp := *v
				cp.Attrs = copyAttrs(v.Attrs)
				out.Content[i] = &cp
			case *Tab:
				out.Content[i] = &Tab{Attrs: copyAttrs(v.Attrs)}
			case *Break:
				out.Content[i] = &Break{Name: v.Name, Attrs: copyAttrs(v.Attrs)}
			case *RawElement:
				out.Content[i] = v.Clone()
			}
		}
	}
	return out
}

// EnsureProperties returns the run properties, creating them when absent
func (r *Run) EnsureProperties() *RunProperties {
	if r.Properties == nil {
		r.Properties = &RunProperties{}
	}
	return r.Properties
}

func parseRun(dec *decoder, start xml.StartElement) (*Run, error) {
	run := &Run{Attrs: start.Attr}
	for {
		tok, err := dec.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch localName(t.Name.Local) {
			case "rPr":
				props, err := parseRunProperties(dec, t)
				if err != nil {
					return nil, err
				}
				run.Properties = props
			case "t":
				value, err := dec.text(t)
				if err != nil {
					return nil, err
				}
				run.Content = append(run.Content, &Text{Value: value, Attrs: t.Attr})
			case "tab":
				if err := dec.skip(); err != nil {
					return nil, err
				}
				run.Content = append(run.Content, &Tab{Attrs: t.Attr})
			case "br", "cr":
				if err := dec.skip(); err != nil {
					return nil, err
				}
				run.Content = append(run.Content, &Break{Name: t.Name.Local, Attrs: t.Attr})
			default:
				raw, err := dec.capture(t)
				if err != nil {
					return nil, err
				}
				run.Content = append(run.Content, raw)
			}
		case xml.EndElement:
			return run, nil
		}
	}
}

func (r *Run) encode(e *xml.Encoder) error {
	start, err := encodeStart(e, "w:r", r.Attrs)
	if err != nil {
		return err
	}
	if r.Properties != nil && len(r.Properties.Elements) > 0 {
		if err := r.Properties.encode(e); err != nil {
			return err
		}
	}
	for _, c := range r.Content {
		switch v := c.(type) {
		case *Text:
			if err := v.encode(e); err != nil {
				return err
			}
		case *Tab:
			if err := NewEmptyElement("w:tab", v.Attrs...).encode(e); err != nil {
				return err
			}
		case *Break:
			name := v.Name
			if name == "" {
				name = "w:br"
			}
			if err := NewEmptyElement(name, v.Attrs...).encode(e); err != nil {
				return err
			}
		case *RawElement:
			if err := v.encode(e); err != nil {
				return err
			}
		}
	}
	return e.EncodeToken(start.End())
}

// Text represents a w:t element
type Text struct {
	Value string
	Attrs []xml.Attr
}

func (t *Text) isRunContent() {}

// NewText creates a text element; xml:space is added on encode when needed
func NewText(value string) *Text {
	return &Text{Value: value}
}

func (t *Text) encode(e *xml.Encoder) error {
	attrs := t.Attrs
	if attrValue(attrs, "xml:space") == "" && needsPreserve(t.Value) {
		attrs = append(copyAttrs(attrs), xml.Attr{Name: xml.Name{Local: "xml:space"}, Value: "preserve"})
	}
	start, err := encodeStart(e, "w:t", attrs)
	if err != nil {
		return err
	}
	if t.Value != "" {
		if err := e.EncodeToken(xml.CharData(t.Value)); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func needsPreserve(s string) bool {
	if s == "" {
		return false
	}
	return strings.TrimSpace(s) != s || strings.Contains(s, "  ")
}

// Tab represents a w:tab inside a run
type Tab struct {
	Attrs []xml.Attr
}

func (t *Tab) isRunContent() {}

// Break represents a w:br or w:cr element
type Break struct {
	Name  string
	Attrs []xml.Attr
}

func (b *Break) isRunContent() {}

// GetText returns a newline for line breaks and nothing for page or column breaks
func (b *Break) GetText() string {
	if localName(b.Name) == "cr" {
		return "\n"
	}
	switch attrValue(b.Attrs, "w:type") {
	case "", "textWrapping":
		return "\n"
	}
	return ""
}

// rPrOrder is the schema order of run property children
var rPrOrder = map[string]int{
	"rStyle": 1, "rFonts": 2, "b": 3, "bCs": 4, "i": 5, "iCs": 6, "caps": 7,
	"smallCaps": 8, "strike": 9, "dstrike": 10, "outline": 11, "shadow": 12,
	"emboss": 13, "imprint": 14, "noProof": 15, "snapToGrid": 16, "vanish": 17,
	"webHidden": 18, "color": 19, "spacing": 20, "w": 21, "kern": 22,
	"position": 23, "sz": 24, "szCs": 25, "highlight": 26, "u": 27, "effect": 28,
	"bdr": 29, "shd": 30, "fitText": 31, "vertAlign": 32, "rtl": 33, "cs": 34,
	"em": 35, "lang": 36, "eastAsianLayout": 37, "specVanish": 38, "oMath": 39,
	"rPrChange": 100,
}

// RunProperties represents run formatting. Children are kept in schema order.
type RunProperties struct {
	Elements []*RawElement
}

func parseRunProperties(dec *decoder, start xml.StartElement) (*RunProperties, error) {
	props := &RunProperties{}
	for {
		tok, err := dec.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
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
func (p *RunProperties) Clone() *RunProperties {
	if p == nil {
		return nil
	}
	out := &RunProperties{Elements: make([]*RawElement, len(p.Elements))}
	for i, el := range p.Elements {
		out.Elements[i] = el.Clone()
	}
	return out
}

// Get returns the child with the given local name
func (p *RunProperties) Get(local string) *RawElement {
	if p == nil {
		return nil
	}
	for _, el := range p.Elements {
		if localName(el.Name()) == local {
			return el
		}
	}
	return nil
}

// Set replaces the child with the same local name or inserts it in schema order
func (p *RunProperties) Set(el *RawElement) {
	local := localName(el.Name())
	for i, existing := range p.Elements {
		if localName(existing.Name()) == local {
			p.Elements[i] = el
			return
		}
	}
	rank, ok := rPrOrder[local]
	if !ok {
		rank = 99
	}
	pos := len(p.Elements)
	for i, existing := range p.Elements {
		r, known := rPrOrder[localName(existing.Name())]
		if known && r > rank {
			pos = i
			break
		}
	}
	p.Elements = append(p.Elements, nil)
	copy(p.Elements[pos+1:], p.Elements[pos:])
	p.Elements[pos] = el
}

// IsBold reports whether bold is switched on
func (p *RunProperties) IsBold() bool {
	b := p.Get("b")
	if b == nil {
		return false
	}
	switch b.Attr("w:val") {
	case "0", "false", "off":
		return false
	}
	return true
}

// SetBold switches bold on
func (p *RunProperties) SetBold() {
	p.Set(NewEmptyElement("w:b"))
}

// Color returns the hex value of w:color or an empty string
func (p *RunProperties) Color() string {
	if c := p.Get("color"); c != nil {
		return c.Attr("w:val")
	}
	return ""
}

// SetColor sets the font color to the given hex value, e.g. "FF0000"
func (p *RunProperties) SetColor(hex string) {
	p.Set(NewEmptyElement("w:color", xml.Attr{Name: xml.Name{Local: "w:val"}, Value: hex}))
}

func (p *RunProperties) encode(e *xml.Encoder) error {
	start, err := encodeStart(e, "w:rPr", nil)
	if err != nil {
		return err
	}
	for _, el := range p.Elements {
		if err := el.encode(e); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}
