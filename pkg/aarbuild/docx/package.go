package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

// Well-known part names
const (
	DocumentPart     = "word/document.xml"
	DocumentRelsPart = "word/_rels/document.xml.rels"
	StylesPart       = "word/styles.xml"
	ContentTypesPart = "[Content_Types].xml"
	relationshipsNS  = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypesNS   = "http://schemas.openxmlformats.org/package/2006/content-types"
	externalMode     = "External"
)

// Relationship represents a relationship in the DOCX package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// Package is a parsed DOCX file. The main document, its relationships and
// the style sheet are decoded eagerly; every other part is kept as bytes.
type Package struct {
	// Name identifies the package in logs and imported media names
	Name string
	// Path is the file the package was read from, if any
	Path string

	parts    map[string][]byte
	order    []string
	document *wml.Document
	styles   *StyleSheet
	rels     []Relationship
}

// Read parses a DOCX archive
func Read(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	pkg := &Package{parts: make(map[string][]byte, len(zr.File))}
	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		content, err := readZipFile(file)
		if err != nil {
			return nil, err
		}
		pkg.parts[file.Name] = content
		pkg.order = append(pkg.order, file.Name)
	}

	docXML, ok := pkg.parts[DocumentPart]
	if !ok {
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", DocumentPart)
	}
	pkg.document, err = wml.ParseDocument(bytes.NewReader(docXML))
	if err != nil {
		return nil, err
	}

	if stylesXML, ok := pkg.parts[StylesPart]; ok {
		pkg.styles, err = ParseStyles(stylesXML)
		if err != nil {
			return nil, err
		}
	}

	if relsXML, ok := pkg.parts[DocumentRelsPart]; ok {
		var rels Relationships
		if err := xml.Unmarshal(relsXML, &rels); err != nil {
			return nil, fmt.Errorf("failed to parse relationships: %w", err)
		}
		pkg.rels = rels.Relationship
	}

	return pkg, nil
}

// FromBytes parses a DOCX held in memory
func FromBytes(content []byte) (*Package, error) {
	return Read(bytes.NewReader(content), int64(len(content)))
}

// Open reads and parses the DOCX file at path
func Open(filename string) (*Package, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	pkg, err := FromBytes(content)
	if err != nil {
		return nil, err
	}
	pkg.Path = filename
	pkg.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return pkg, nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", file.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", file.Name, err)
	}
	return content, nil
}

// Document returns the main document. Callers may mutate it; use Clone
// first when the package is shared.
func (p *Package) Document() *wml.Document {
	return p.document
}

// Styles returns the style sheet, or nil when the package has none
func (p *Package) Styles() *StyleSheet {
	return p.styles
}

// Part returns the raw content of a part
func (p *Package) Part(name string) ([]byte, bool) {
	content, ok := p.parts[name]
	return content, ok
}

// ListParts returns the part names in archive order
func (p *Package) ListParts() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Relationship looks up a main document relationship by id
func (p *Package) Relationship(id string) (Relationship, bool) {
	for _, rel := range p.rels {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// Clone returns a copy whose document can be mutated independently. Raw
// part content is immutable and shared.
func (p *Package) Clone() *Package {
	out := &Package{
		Name:     p.Name,
		Path:     p.Path,
		parts:    make(map[string][]byte, len(p.parts)),
		order:    append([]string(nil), p.order...),
		document: p.document.Clone(),
		styles:   p.styles,
		rels:     append([]Relationship(nil), p.rels...),
	}
	for name, content := range p.parts {
		out.parts[name] = content
	}
	return out
}

// partTarget resolves a document relationship target to a part name
func partTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(DocumentPart), target)
}
