package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Header is written before the root element of every serialized part
const Header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Document represents a Word document structure
type Document struct {
	// Name is the prefixed root element name, normally "w:document"
	Name string
	// Attrs preserves root element attributes (namespace declarations, mc:Ignorable)
	Attrs []xml.Attr
	// Extra holds root children other than the body, e.g. w:background
	Extra []*RawElement
	Body  *Body
}

// Body represents the document body
type Body struct {
	Attrs []xml.Attr
	// Elements maintains the order of all body elements
	Elements []Block
	// SectionProperties at the end of the body (critical for Word compatibility)
	SectionProperties *RawElement
}

// ParseDocument parses a Word document XML
func ParseDocument(r io.Reader) (*Document, error) {
	dec := newDecoder(r)
	for {
		tok, err := dec.next()
		if err == io.EOF {
			return nil, fmt.Errorf("failed to parse document: no root element")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		doc, err := parseDocumentRoot(dec, start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		return doc, nil
	}
}

func parseDocumentRoot(dec *decoder, start xml.StartElement) (*Document, error) {
	if localName(start.Name.Local) != "document" {
		return nil, fmt.Errorf("unexpected root element <%s>", start.Name.Local)
	}
	doc := &Document{Name: start.Name.Local, Attrs: start.Attr}
	for {
		tok, err := dec.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if localName(t.Name.Local) == "body" {
				body, err := parseBody(dec, t)
				if err != nil {
					return nil, err
				}
				doc.Body = body
				continue
			}
			raw, err := dec.capture(t)
			if err != nil {
				return nil, err
			}
			doc.Extra = append(doc.Extra, raw)
		case xml.EndElement:
			if doc.Body == nil {
				doc.Body = &Body{}
			}
			return doc, nil
		}
	}
}

func parseBody(dec *decoder, start xml.StartElement) (*Body, error) {
	body := &Body{Attrs: start.Attr}
	for {
		tok, err := dec.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if localName(t.Name.Local) == "sectPr" {
				raw, err := dec.capture(t)
				if err != nil {
					return nil, err
				}
				body.SectionProperties = raw
				continue
			}
			block, err := parseBlock(dec, t)
			if err != nil {
				return nil, err
			}
			body.Elements = append(body.Elements, block)
		case xml.EndElement:
			return body, nil
		}
	}
}

func parseBlock(dec *decoder, t xml.StartElement) (Block, error) {
	switch localName(t.Name.Local) {
	case "p":
		return parseParagraph(dec, t)
	case "tbl":
		return parseTable(dec, t)
	default:
		return dec.capture(t)
	}
}

// Clone returns a deep copy of the document
func (doc *Document) Clone() *Document {
	out := &Document{Name: doc.Name, Attrs: copyAttrs(doc.Attrs)}
	for _, el := range doc.Extra {
		out.Extra = append(out.Extra, el.Clone())
	}
	if doc.Body != nil {
		body := &Body{Attrs: copyAttrs(doc.Body.Attrs), SectionProperties: doc.Body.SectionProperties.Clone()}
		for _, b := range doc.Body.Elements {
			body.Elements = append(body.Elements, b.CloneBlock())
		}
		out.Body = body
	}
	return out
}

// Marshal serializes the document including the XML header
func (doc *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)
	e := xml.NewEncoder(&buf)

	name := doc.Name
	if name == "" {
		name = "w:document"
	}
	start, err := encodeStart(e, name, doc.Attrs)
	if err != nil {
		return nil, err
	}
	for _, el := range doc.Extra {
		if err := el.encode(e); err != nil {
			return nil, err
		}
	}
	if doc.Body != nil {
		if err := doc.Body.encode(e); err != nil {
			return nil, err
		}
	}
	if err := e.EncodeToken(start.End()); err != nil {
		return nil, err
	}
	if err := e.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *Body) encode(e *xml.Encoder) error {
	start, err := encodeStart(e, "w:body", b.Attrs)
	if err != nil {
		return err
	}
	for _, el := range b.Elements {
		if err := el.encode(e); err != nil {
			return err
		}
	}
	// Section properties must stay the last body child
	if b.SectionProperties != nil {
		if err := b.SectionProperties.encode(e); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// MergeNamespaces adds namespace declarations from other that doc lacks and
// extends mc:Ignorable with any prefix doc now declares.
func (doc *Document) MergeNamespaces(other *Document) {
	if other == nil {
		return
	}
	have := make(map[string]bool, len(doc.Attrs))
	for _, a := range doc.Attrs {
		have[a.Name.Local] = true
	}
	for _, a := range other.Attrs {
		if strings.HasPrefix(a.Name.Local, "xmlns:") && !have[a.Name.Local] {
			doc.Attrs = append(doc.Attrs, a)
			have[a.Name.Local] = true
		}
	}

	theirs := strings.Fields(attrValue(other.Attrs, "mc:Ignorable"))
	if len(theirs) == 0 {
		return
	}
	idx := -1
	for i, a := range doc.Attrs {
		if a.Name.Local == "mc:Ignorable" {
			idx = i
			break
		}
	}
	var ours []string
	if idx >= 0 {
		ours = strings.Fields(doc.Attrs[idx].Value)
	}
	seen := make(map[string]bool, len(ours))
	for _, p := range ours {
		seen[p] = true
	}
	for _, p := range theirs {
		if !seen[p] && have["xmlns:"+p] {
			ours = append(ours, p)
			seen[p] = true
		}
	}
	if len(ours) == 0 || !have["xmlns:mc"] {
		return
	}
	attr := xml.Attr{Name: xml.Name{Local: "mc:Ignorable"}, Value: strings.Join(ours, " ")}
	if idx >= 0 {
		doc.Attrs[idx] = attr
	} else {
		doc.Attrs = append(doc.Attrs, attr)
	}
}
