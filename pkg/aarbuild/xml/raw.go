package xml

import (
	"encoding/xml"
	"fmt"
	"io"
)

// RawElement is an element we preserve but don't interpret. Its tokens are
// stored with prefixed local names ("w:bookmarkStart") so that re-encoding
// reproduces the source markup without namespace rewriting.
type RawElement struct {
	Tokens []xml.Token
}

func (r *RawElement) isBlock()            {}
func (r *RawElement) isParagraphContent() {}
func (r *RawElement) isRunContent()       {}
func (r *RawElement) isTableContent()     {}
func (r *RawElement) isRowContent()       {}

// Name returns the prefixed name of the element, e.g. "w:sectPr"
func (r *RawElement) Name() string {
	if r == nil || len(r.Tokens) == 0 {
		return ""
	}
	if start, ok := r.Tokens[0].(xml.StartElement); ok {
		return start.Name.Local
	}
	return ""
}

// Attr returns the value of the named attribute on the outer element
func (r *RawElement) Attr(name string) string {
	if r == nil || len(r.Tokens) == 0 {
		return ""
	}
	start, ok := r.Tokens[0].(xml.StartElement)
	if !ok {
		return ""
	}
	return attrValue(start.Attr, name)
}

// GetText returns an empty string: raw content is not part of the visible text
func (r *RawElement) GetText() string { return "" }

// CloneBlock implements Block
func (r *RawElement) CloneBlock() Block { return r.Clone() }

// Clone returns a deep copy of the element
func (r *RawElement) Clone() *RawElement {
	if r == nil {
		return nil
	}
	tokens := make([]xml.Token, len(r.Tokens))
	for i, tok := range r.Tokens {
		tokens[i] = xml.CopyToken(tok)
	}
	return &RawElement{Tokens: tokens}
}

func (r *RawElement) encode(e *xml.Encoder) error {
	if r == nil {
		return nil
	}
	for _, tok := range r.Tokens {
		if err := e.EncodeToken(tok); err != nil {
			return err
		}
	}
	return nil
}

// NewEmptyElement builds a childless raw element such as <w:b/>
func NewEmptyElement(name string, attrs ...xml.Attr) *RawElement {
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
	return &RawElement{Tokens: []xml.Token{start, xml.EndElement{Name: start.Name}}}
}

// decoder walks a WordprocessingML part with RawToken, flattening prefixes
// into local names so markup round-trips byte-compatible.
type decoder struct {
	d *xml.Decoder
}

func newDecoder(r io.Reader) *decoder {
	d := xml.NewDecoder(r)
	return &decoder{d: d}
}

// next returns the following token with prefixes flattened and data copied.
// Processing instructions and directives are dropped.
func (dec *decoder) next() (xml.Token, error) {
	for {
		tok, err := dec.d.RawToken()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return flattenStart(t), nil
		case xml.EndElement:
			return xml.EndElement{Name: flattenName(t.Name)}, nil
		case xml.CharData:
			return t.Copy(), nil
		case xml.Comment:
			return t.Copy(), nil
		default:
			continue
		}
	}
}

// capture reads the remainder of the element opened by start
func (dec *decoder) capture(start xml.StartElement) (*RawElement, error) {
	raw := &RawElement{Tokens: []xml.Token{start}}
	depth := 1
	for depth > 0 {
		tok, err := dec.next()
		if err != nil {
			return nil, fmt.Errorf("reading <%s>: %w", start.Name.Local, err)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
		raw.Tokens = append(raw.Tokens, tok)
	}
	return raw, nil
}

// skip discards the remainder of the current element
func (dec *decoder) skip() error {
	depth := 1
	for depth > 0 {
		tok, err := dec.next()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// text collects the character data of the current element
func (dec *decoder) text(start xml.StartElement) (string, error) {
	var buf []byte
	depth := 1
	for depth > 0 {
		tok, err := dec.next()
		if err != nil {
			return "", fmt.Errorf("reading <%s>: %w", start.Name.Local, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 1 {
				buf = append(buf, t...)
			}
		}
	}
	return string(buf), nil
}

func flattenName(n xml.Name) xml.Name {
	if n.Space == "" {
		return xml.Name{Local: n.Local}
	}
	return xml.Name{Local: n.Space + ":" + n.Local}
}

func flattenStart(t xml.StartElement) xml.StartElement {
	out := xml.StartElement{Name: flattenName(t.Name)}
	if len(t.Attr) > 0 {
		out.Attr = make([]xml.Attr, len(t.Attr))
		for i, a := range t.Attr {
			out.Attr[i] = xml.Attr{Name: flattenName(a.Name), Value: a.Value}
		}
	}
	return out
}

// localName strips the prefix from a flattened name
func localName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == ':' {
			return name[i+1:]
		}
	}
	return name
}

// attrValue looks an attribute up by flattened name, falling back to the
// local part so "w:val" and "val" both match.
func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	local := localName(name)
	for _, a := range attrs {
		if localName(a.Name.Local) == local {
			return a.Value
		}
	}
	return ""
}

func copyAttrs(attrs []xml.Attr) []xml.Attr {
	if attrs == nil {
		return nil
	}
	out := make([]xml.Attr, len(attrs))
	copy(out, attrs)
	return out
}

func encodeStart(e *xml.Encoder, name string, attrs []xml.Attr) (xml.StartElement, error) {
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
	return start, e.EncodeToken(start)
}
