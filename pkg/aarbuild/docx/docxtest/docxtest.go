// Package docxtest builds small in-memory DOCX files for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
)

// Builder accumulates body markup and extra parts
type Builder struct {
	body   strings.Builder
	rels   []string
	parts  map[string][]byte
	styles bool
}

// New returns a builder whose styles.xml defines Normal and Heading 1-6
func New() *Builder {
	return &Builder{parts: make(map[string][]byte), styles: true}
}

// WithoutStyles omits styles.xml so heading levels come from style ids
func (b *Builder) WithoutStyles() *Builder {
	b.styles = false
	return b
}

// Heading adds a paragraph styled HeadingN
func (b *Builder) Heading(level int, text string) *Builder {
	return b.Styled(fmt.Sprintf("Heading%d", level), text)
}

// Styled adds a single-run paragraph with the given style id
func (b *Builder) Styled(styleID, text string) *Builder {
	fmt.Fprintf(&b.body, `<w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr>%s</w:p>`, html.EscapeString(styleID), run(text))
	return b
}

// Para adds a body paragraph with one run per text
func (b *Builder) Para(texts ...string) *Builder {
	b.body.WriteString(`<w:p>`)
	for _, t := range texts {
		b.body.WriteString(run(t))
	}
	b.body.WriteString(`</w:p>`)
	return b
}

// Table adds a table with one paragraph per cell
func (b *Builder) Table(rows ...[]string) *Builder {
	b.body.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/></w:tblPr>`)
	for _, row := range rows {
		b.body.WriteString(`<w:tr>`)
		for _, cell := range row {
			fmt.Fprintf(&b.body, `<w:tc><w:p>%s</w:p></w:tc>`, run(cell))
		}
		b.body.WriteString(`</w:tr>`)
	}
	b.body.WriteString(`</w:tbl>`)
	return b
}

// Hyperlink adds a paragraph holding an external hyperlink with the given relationship id
func (b *Builder) Hyperlink(rID, target, text string) *Builder {
	fmt.Fprintf(&b.body, `<w:p><w:hyperlink r:id="%s">%s</w:hyperlink></w:p>`, rID, run(text))
	b.rels = append(b.rels, fmt.Sprintf(`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="%s" TargetMode="External"/>`, rID, html.EscapeString(target)))
	return b
}

// Image adds a paragraph referencing an embedded image part
func (b *Builder) Image(rID, target string, content []byte) *Builder {
	fmt.Fprintf(&b.body, `<w:p><w:r><w:drawing><wp:inline><a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="%s"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`, rID)
	b.rels = append(b.rels, fmt.Sprintf(`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="%s"/>`, rID, target))
	b.parts["word/"+target] = content
	return b
}

// Raw appends body markup verbatim
func (b *Builder) Raw(markup string) *Builder {
	b.body.WriteString(markup)
	return b
}

func run(text string) string {
	return fmt.Sprintf(`<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, html.EscapeString(text))
}

// Bytes returns the DOCX archive
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	add := func(name, content string) {
		f, _ := w.Create(name)
		io.WriteString(f, content)
	}

	add("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`)

	add("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`)

	rels := b.rels
	if b.styles {
		rels = append([]string{`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`}, rels...)
		add("word/styles.xml", stylesXML)
	}
	add("word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+strings.Join(rels, "")+`</Relationships>`)

	add("word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"><w:body>`+
		b.body.String()+
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`)

	for name, content := range b.parts {
		f, _ := w.Create(name)
		f.Write(content)
	}

	w.Close()
	return buf.Bytes()
}

// WriteFile writes the archive to path
func (b *Builder) WriteFile(path string) error {
	return os.WriteFile(path, b.Bytes(), 0o644)
}

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:basedOn w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading4"><w:name w:val="heading 4"/><w:basedOn w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading5"><w:name w:val="heading 5"/><w:basedOn w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading6"><w:name w:val="heading 6"/><w:basedOn w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="berschrift3"><w:name w:val="heading 3"/><w:basedOn w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/></w:style>
<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/></w:style>
</w:styles>`
