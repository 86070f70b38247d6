package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

var extensionContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
}

// ContentTypes represents [Content_Types].xml
type ContentTypes struct {
	XMLName   xml.Name              `xml:"Types"`
	Namespace string                `xml:"xmlns,attr"`
	Defaults  []ContentTypeDefault  `xml:"Default"`
	Overrides []ContentTypeOverride `xml:"Override"`
}

// ContentTypeDefault maps a file extension to a content type
type ContentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentTypeOverride maps a part name to a content type
type ContentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Composer builds a new DOCX from a base package whose body is replaced by
// appended blocks. Blocks taken from other packages get their relationship
// references (hyperlinks, images) imported into the output.
type Composer struct {
	base    *Package
	doc     *wml.Document
	rels    []Relationship
	nextID  int
	media   map[string][]byte
	order   []string
	imports map[*Package]map[string]string
	sources []*Package
	counter map[*Package]int

	// Unresolved counts relationship references that could not be imported
	Unresolved int
}

// NewComposer starts an output document from base. The base body is dropped;
// its section properties, styles, numbering and other parts are kept.
func NewComposer(base *Package) *Composer {
	doc := base.Document().Clone()
	if doc.Body == nil {
		doc.Body = &wml.Body{}
	}
	doc.Body.Elements = nil

	c := &Composer{
		base:    base,
		doc:     doc,
		rels:    append([]Relationship(nil), base.rels...),
		media:   make(map[string][]byte),
		imports: make(map[*Package]map[string]string),
		counter: make(map[*Package]int),
	}
	for _, rel := range c.rels {
		if n, err := extractRelationshipNumber(rel.ID); err == nil && n >= c.nextID {
			c.nextID = n + 1
		}
	}
	if c.nextID == 0 {
		c.nextID = 1
	}
	return c
}

// Document returns the output document being built
func (c *Composer) Document() *wml.Document {
	return c.doc
}

// Append adds block to the end of the output body. src is the package the
// block was copied from; nil or the base package means no import is needed.
func (c *Composer) Append(src *Package, block wml.Block) {
	if src != nil && src != c.base {
		c.importFrom(src, block)
	}
	c.doc.Body.Elements = append(c.doc.Body.Elements, block)
}

func (c *Composer) importFrom(src *Package, block wml.Block) {
	idMap, seen := c.imports[src]
	if !seen {
		idMap = make(map[string]string)
		c.imports[src] = idMap
		c.sources = append(c.sources, src)
		c.doc.MergeNamespaces(src.Document())
	}

	wml.VisitAttrs(block, func(attr *xml.Attr) {
		if !strings.HasPrefix(attr.Name.Local, "r:") || attr.Value == "" {
			return
		}
		if newID, ok := idMap[attr.Value]; ok {
			attr.Value = newID
			return
		}
		newID, ok := c.importRelationship(src, attr.Value)
		if !ok {
			c.Unresolved++
			return
		}
		idMap[attr.Value] = newID
		attr.Value = newID
	})
}

func (c *Composer) importRelationship(src *Package, id string) (string, bool) {
	rel, ok := src.Relationship(id)
	if !ok {
		return "", false
	}

	newRel := Relationship{ID: fmt.Sprintf("rId%d", c.nextID), Type: rel.Type, Target: rel.Target, TargetMode: rel.TargetMode}
	switch {
	case rel.TargetMode == externalMode:
	case isMediaRelationship(rel):
		content, ok := src.Part(partTarget(rel.Target))
		if !ok {
			return "", false
		}
		c.counter[src]++
		newRel.Target = renameMediaPath(rel.Target, src.Name, c.counter[src])
		partName := partTarget(newRel.Target)
		if _, exists := c.media[partName]; !exists {
			c.order = append(c.order, partName)
		}
		c.media[partName] = content
	default:
		return "", false
	}

	c.nextID++
	c.rels = append(c.rels, newRel)
	return newRel.ID, true
}

// extractRelationshipNumber extracts the numeric ID from a relationship ID like "rId6"
func extractRelationshipNumber(rID string) (int, error) {
	if !strings.HasPrefix(rID, "rId") {
		return 0, fmt.Errorf("invalid relationship ID format: %s", rID)
	}
	num, err := strconv.Atoi(strings.TrimPrefix(rID, "rId"))
	if err != nil {
		return 0, fmt.Errorf("invalid relationship ID number: %s", rID)
	}
	return num, nil
}

// renameMediaPath renames a media path to avoid conflicts
// Example: "media/image1.png" + "NDcPP" + 1 -> "media/image_NDcPP_1.png"
func renameMediaPath(originalPath, sourceName string, counter int) string {
	dir := path.Dir(originalPath)
	ext := path.Ext(originalPath)
	name := strings.Trim(unsafeNameChars.ReplaceAllString(sourceName, "_"), "_")
	if name == "" {
		name = "src"
	}
	return path.Join(dir, fmt.Sprintf("image_%s_%d%s", name, counter, ext))
}

// isMediaRelationship checks if a relationship is for media (images, video, etc.)
func isMediaRelationship(rel Relationship) bool {
	t := strings.ToLower(rel.Type)
	for _, mediaType := range []string{"image", "video", "audio"} {
		if strings.Contains(t, mediaType) {
			return true
		}
	}
	return false
}

// Bytes serializes the output package
func (c *Composer) Bytes() ([]byte, error) {
	docXML, err := c.doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	written := make(map[string]bool)
	write := func(name string, content []byte) error {
		fw, err := w.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		if _, err := fw.Write(content); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		written[name] = true
		return nil
	}

	for _, name := range c.base.order {
		content := c.base.parts[name]
		switch name {
		case DocumentPart:
			content = docXML
		case DocumentRelsPart:
			if content, err = c.relationshipsXML(); err != nil {
				return nil, err
			}
		case StylesPart:
			if content, err = c.stylesXML(content); err != nil {
				return nil, err
			}
		case ContentTypesPart:
			if content, err = c.contentTypesXML(content); err != nil {
				return nil, err
			}
		}
		if err := write(name, content); err != nil {
			return nil, err
		}
	}

	if !written[DocumentRelsPart] && len(c.rels) > 0 {
		content, err := c.relationshipsXML()
		if err != nil {
			return nil, err
		}
		if err := write(DocumentRelsPart, content); err != nil {
			return nil, err
		}
	}

	for _, name := range c.order {
		if written[name] {
			continue
		}
		if err := write(name, c.media[name]); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the output package to path
func (c *Composer) Save(filename string) error {
	content, err := c.Bytes()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func (c *Composer) relationshipsXML() ([]byte, error) {
	output, err := xml.Marshal(&Relationships{Namespace: relationshipsNS, Relationship: c.rels})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal relationships: %w", err)
	}
	return append([]byte(wml.Header), output...), nil
}

func (c *Composer) stylesXML(mainXML []byte) ([]byte, error) {
	var others []*StyleSheet
	for _, src := range c.sources {
		others = append(others, src.Styles())
	}
	merged, err := mergeStyles(mainXML, others...)
	if err != nil {
		return mainXML, nil
	}
	return merged, nil
}

func (c *Composer) contentTypesXML(original []byte) ([]byte, error) {
	if len(c.media) == 0 {
		return original, nil
	}

	var types ContentTypes
	if err := xml.Unmarshal(original, &types); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ContentTypesPart, err)
	}

	registered := make(map[string]bool)
	for _, def := range types.Defaults {
		registered[strings.ToLower(def.Extension)] = true
	}

	var missing []string
	for name := range c.media {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
		if ext != "" && !registered[ext] {
			registered[ext] = true
			missing = append(missing, ext)
		}
	}
	if len(missing) == 0 {
		return original, nil
	}
	sort.Strings(missing)
	for _, ext := range missing {
		contentType, ok := extensionContentTypes[ext]
		if !ok {
			contentType = "image/" + ext
		}
		types.Defaults = append(types.Defaults, ContentTypeDefault{Extension: ext, ContentType: contentType})
	}
	if types.Namespace == "" {
		types.Namespace = contentTypesNS
	}

	output, err := xml.Marshal(&types)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", ContentTypesPart, err)
	}
	return append([]byte(wml.Header), output...), nil
}
