package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/assemble"
	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

func sampleItems() []assemble.Item {
	return []assemble.Item{
		{Block: wml.NewParagraph("Heading3", "Section A"), Level: 3},
		{Block: wml.NewParagraph("Heading4", "Sub"), Level: 4},
		{Block: wml.NewParagraph("Heading5", "REQ1 TSS"), Level: 5},
		{Block: wml.NewParagraph("", "Value: 42 and <Ans#2>")},
		{Block: wml.NewParagraph("", "   ")},
		{Block: wml.NewTable(
			[]string{"Requirement", "Status"},
			[]string{"FCS_CKM.1", assemble.DefaultSentinel},
			[]string{"a|b"},
		)},
		{Block: wml.NewEmptyElement("w:sdt")},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleItems(), Options{Title: "AAR-TSS", Sentinel: assemble.DefaultSentinel})

	want := strings.Join([]string{
		"# AAR-TSS",
		"",
		"### Section A",
		"",
		"#### Sub",
		"",
		"##### REQ1 TSS",
		"",
		`Value: 42 and \<Ans\#2\>`,
		"",
		"| Requirement | Status |",
		"| --- | --- |",
		"| FCS\\_CKM.1 | **" + assemble.DefaultSentinel + "** |",
		`| a\|b |  |`,
		"",
		"",
	}, "\n")
	assert.Equal(t, want, md)
}

func TestHTML(t *testing.T) {
	out, err := HTML(sampleItems(), Options{Sentinel: assemble.DefaultSentinel})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<h3")
	assert.Contains(t, html, "Section A</h3>")
	assert.Contains(t, html, "<h5")
	assert.Contains(t, html, "&lt;Ans#2&gt;")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<strong>"+assemble.DefaultSentinel+"</strong>")
}

func TestHTMLSanitizesContent(t *testing.T) {
	items := []assemble.Item{{Block: wml.NewParagraph("", `<script>alert(1)</script> [x](javascript:alert(1))`)}}
	out, err := HTML(items, Options{})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")
	assert.NotContains(t, string(out), `href="javascript`)
}

func TestPage(t *testing.T) {
	out, err := Page(sampleItems(), Options{Title: `A&B "quoted"`})
	require.NoError(t, err)

	page := string(out)
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>A&amp;B &quot;quoted&quot;</title>")
	assert.Contains(t, page, "Section A</h3>")
}
