// Package preview renders an assembled document as a Markdown outline and
// as sanitized HTML, so reviewers can check the selection without opening
// the DOCX.
package preview

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/assemble"
	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

// Options controls the preview output
type Options struct {
	// Title is rendered as the top-level heading when set
	Title string
	// Sentinel marks table cells whose text contains it
	Sentinel string
}

// Markdown renders the assembled items as Markdown
func Markdown(items []assemble.Item, opts Options) string {
	var sb strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", escape(opts.Title))
	}
	for _, it := range items {
		switch b := it.Block.(type) {
		case *wml.Paragraph:
			text := strings.TrimSpace(b.GetText())
			if text == "" {
				continue
			}
			if it.Level > 0 {
				fmt.Fprintf(&sb, "%s %s\n\n", strings.Repeat("#", it.Level), escape(text))
			} else {
				fmt.Fprintf(&sb, "%s\n\n", escapeLines(text))
			}
		case *wml.Table:
			writeTable(&sb, b, opts.Sentinel)
		}
	}
	return sb.String()
}

// HTML renders the assembled items as a sanitized HTML fragment
func HTML(items []assemble.Item, opts Options) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(items, opts)), &buf); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return bluemonday.UGCPolicy().SanitizeBytes(buf.Bytes()), nil
}

// Page wraps the HTML fragment in a minimal standalone document
func Page(items []assemble.Item, opts Options) ([]byte, error) {
	body, err := HTML(items, opts)
	if err != nil {
		return nil, err
	}
	title := opts.Title
	if title == "" {
		title = "Preview"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n", htmlEscaper.Replace(title))
	buf.WriteString("<style>body{font-family:Calibri,sans-serif;max-width:60em;margin:auto}table{border-collapse:collapse}td,th{border:1px solid #999;padding:4px}strong{color:#c00}</style>\n")
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

func writeTable(sb *strings.Builder, tbl *wml.Table, sentinel string) {
	rows := tbl.Rows()
	if len(rows) == 0 {
		return
	}
	width := 0
	for _, r := range rows {
		if n := len(r.Cells()); n > width {
			width = n
		}
	}
	if width == 0 {
		return
	}

	for i, r := range rows {
		cells := make([]string, width)
		for j, c := range r.Cells() {
			cells[j] = cellText(c, sentinel)
		}
		fmt.Fprintf(sb, "| %s |\n", strings.Join(cells, " | "))
		if i == 0 {
			fmt.Fprintf(sb, "|%s\n", strings.Repeat(" --- |", width))
		}
	}
	sb.WriteString("\n")
}

func cellText(c *wml.TableCell, sentinel string) string {
	text := strings.TrimSpace(strings.ReplaceAll(c.GetText(), "\n", " "))
	text = strings.ReplaceAll(escape(text), "|", `\|`)
	if sentinel != "" && strings.Contains(c.GetText(), sentinel) {
		return "**" + text + "**"
	}
	return text
}

var (
	markdownEscaper = strings.NewReplacer(
		`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
		"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`,
	)
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

// escapeLines keeps paragraph line breaks as Markdown hard breaks
func escapeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = escape(l)
	}
	return strings.Join(lines, "\\\n")
}
