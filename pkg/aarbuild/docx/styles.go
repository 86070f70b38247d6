package docx

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	headingNamePattern = regexp.MustCompile(`(?i)^heading\s*([1-9])$`)
	headingIDPattern   = regexp.MustCompile(`(?i)^heading([1-9])$`)
)

// Styles represents the w:styles element in styles.xml
type Styles struct {
	XMLName xml.Name        `xml:"styles"`
	Styles  []DocumentStyle `xml:"style"`
}

// DocumentStyle represents a single w:style element
type DocumentStyle struct {
	Type    string     `xml:"type,attr"`
	StyleID string     `xml:"styleId,attr"`
	Default string     `xml:"default,attr"`
	Name    *valueAttr `xml:"name"`
	RawXML  []byte     `xml:",innerxml"`
}

type valueAttr struct {
	Val string `xml:"val,attr"`
}

// StyleSheet maps style ids to their display names
type StyleSheet struct {
	styles      map[string]DocumentStyle
	defaultPara string
	order       []string
}

// ParseStyles parses a styles.xml part
func ParseStyles(stylesXML []byte) (*StyleSheet, error) {
	var styles Styles
	if err := xml.Unmarshal(stylesXML, &styles); err != nil {
		return nil, fmt.Errorf("failed to parse styles.xml: %w", err)
	}

	sheet := &StyleSheet{styles: make(map[string]DocumentStyle, len(styles.Styles))}
	for _, s := range styles.Styles {
		if _, dup := sheet.styles[s.StyleID]; dup {
			continue
		}
		sheet.styles[s.StyleID] = s
		sheet.order = append(sheet.order, s.StyleID)
		if s.Type == "paragraph" && isTrue(s.Default) && sheet.defaultPara == "" {
			sheet.defaultPara = s.StyleID
		}
	}
	return sheet, nil
}

func isTrue(v string) bool {
	switch v {
	case "1", "true", "on":
		return true
	}
	return false
}

// Name returns the display name of a style id
func (s *StyleSheet) Name(styleID string) (string, bool) {
	if s == nil {
		return "", false
	}
	style, ok := s.styles[styleID]
	if !ok || style.Name == nil {
		return "", ok
	}
	return style.Name.Val, true
}

// Has reports whether the style id is defined
func (s *StyleSheet) Has(styleID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.styles[styleID]
	return ok
}

// HeadingLevel returns the heading level of a paragraph style, or 0 for body
// text. Headings are recognized by their display name ("heading 3"), so
// localized style ids still work. A style id missing from the sheet falls
// back to the default paragraph style, as Word does. Without a style sheet
// the id itself ("Heading3") is used.
func (s *StyleSheet) HeadingLevel(styleID string) int {
	if s == nil || len(s.styles) == 0 {
		return levelFrom(headingIDPattern, styleID)
	}
	if styleID == "" || !s.Has(styleID) {
		styleID = s.defaultPara
	}
	name, ok := s.Name(styleID)
	if !ok {
		return 0
	}
	return levelFrom(headingNamePattern, strings.TrimSpace(name))
}

func levelFrom(re *regexp.Regexp, value string) int {
	m := re.FindStringSubmatch(value)
	if m == nil {
		return 0
	}
	level, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return level
}

// mergeStyles adds styles from other sheets that main does not define (by
// styleId) and returns the rebuilt styles.xml.
func mergeStyles(mainXML []byte, others ...*StyleSheet) ([]byte, error) {
	main, err := ParseStyles(mainXML)
	if err != nil {
		return nil, err
	}

	var added []DocumentStyle
	for _, other := range others {
		if other == nil {
			continue
		}
		for _, id := range other.order {
			if main.Has(id) {
				continue
			}
			style := other.styles[id]
			main.styles[id] = style
			added = append(added, style)
		}
	}

	if len(added) == 0 {
		return mainXML, nil
	}
	return rebuildStylesXML(mainXML, added)
}

// rebuildStylesXML inserts new styles before the closing tag
func rebuildStylesXML(originalXML []byte, newStyles []DocumentStyle) ([]byte, error) {
	xmlStr := string(originalXML)
	closingTag := "</w:styles>"
	closingIndex := strings.LastIndex(xmlStr, closingTag)
	if closingIndex < 0 {
		return nil, fmt.Errorf("styles.xml has no %s", closingTag)
	}

	var sb strings.Builder
	sb.WriteString(xmlStr[:closingIndex])
	for _, style := range newStyles {
		sb.WriteString(`<w:style w:type="`)
		xml.EscapeText(&sb, []byte(style.Type))
		sb.WriteString(`" w:styleId="`)
		xml.EscapeText(&sb, []byte(style.StyleID))
		sb.WriteString(`">`)
		sb.Write(style.RawXML)
		sb.WriteString(`</w:style>`)
	}
	sb.WriteString(xmlStr[closingIndex:])
	return []byte(sb.String()), nil
}
