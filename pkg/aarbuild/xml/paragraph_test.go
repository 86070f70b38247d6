package xml

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceWithEmphasizedRun(t *testing.T) {
	doc := parseSample(t)
	para := doc.Body.Elements[1].(*Paragraph)

	para.ReplaceWithEmphasizedRun("Value: RSA")

	assert.Equal(t, "Value: RSA", para.GetText())
	runs := para.Runs()
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Properties.IsBold())
	assert.Nil(t, runs[0].Properties.Get("i"), "original run formatting is dropped")

	// bookmarks survive, hyperlinks do not
	var names []string
	for _, c := range para.Content {
		if raw, ok := c.(*RawElement); ok {
			names = append(names, raw.Name())
		}
		_, isLink := c.(*Hyperlink)
		assert.False(t, isLink)
	}
	assert.Equal(t, []string{"w:bookmarkStart", "w:bookmarkEnd"}, names)
}

func TestReplaceWithEmphasizedRunKeepsLayout(t *testing.T) {
	input := `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>Algorithm:</w:t><w:br/><w:tab/><w:t>&lt;Ans#1&gt;</w:t></w:r></w:p></w:body></w:document>`
	doc, err := ParseDocument(strings.NewReader(input))
	require.NoError(t, err)
	para := doc.Body.Elements[0].(*Paragraph)

	para.ReplaceWithEmphasizedRun(strings.Replace(para.GetText(), "<Ans#1>", "RSA", 1))

	runs := para.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "Algorithm:\n\tRSA", para.GetText())
	require.Len(t, runs[0].Content, 4)
	assert.IsType(t, &Break{}, runs[0].Content[1])
	assert.IsType(t, &Tab{}, runs[0].Content[2])

	out, err := doc.Marshal()
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "<w:t>Algorithm:</w:t><w:br></w:br><w:tab></w:tab><w:t>RSA</w:t>")
	assert.NotContains(t, s, "&#x9;")
	assert.NotContains(t, s, "&#xA;")
}

func TestNewLayoutRun(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "plain", input: "RSA 2048", want: []string{"t:RSA 2048"}},
		{name: "empty", input: "", want: []string{"t:"}},
		{name: "line feed", input: "a\nb", want: []string{"t:a", "br", "t:b"}},
		{name: "crlf", input: "a\r\nb", want: []string{"t:a", "br", "br", "t:b"}},
		{name: "tab", input: "key\tvalue", want: []string{"t:key", "tab", "t:value"}},
		{name: "leading and trailing", input: "\tx\n", want: []string{"tab", "t:x", "br"}},
		{name: "only separators", input: "\n\t", want: []string{"br", "tab"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, c := range NewLayoutRun(tt.input).Content {
				switch v := c.(type) {
				case *Text:
					got = append(got, "t:"+v.Value)
				case *Break:
					got = append(got, "br")
				case *Tab:
					got = append(got, "tab")
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunPropertiesSchemaOrder(t *testing.T) {
	props := &RunProperties{Elements: []*RawElement{
		NewEmptyElement("w:rFonts"),
		NewEmptyElement("w:sz", xml.Attr{Name: xml.Name{Local: "w:val"}, Value: "22"}),
	}}

	props.SetColor("FF0000")
	props.SetBold()
	props.SetColor("00FF00")

	var names []string
	for _, el := range props.Elements {
		names = append(names, el.Name())
	}
	assert.Equal(t, []string{"w:rFonts", "w:b", "w:color", "w:sz"}, names)
	assert.Equal(t, "00FF00", props.Color())
	assert.True(t, props.IsBold())
}

func TestRunPropertiesIsBold(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want bool
	}{
		{name: "no value", val: "", want: true},
		{name: "explicit on", val: "1", want: true},
		{name: "explicit off", val: "0", want: false},
		{name: "false", val: "false", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attrs []xml.Attr
			if tt.val != "" {
				attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "w:val"}, Value: tt.val})
			}
			props := &RunProperties{Elements: []*RawElement{NewEmptyElement("w:b", attrs...)}}
			assert.Equal(t, tt.want, props.IsBold())
		})
	}

	var none *RunProperties
	assert.False(t, none.IsBold())
}

func TestBreakText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "line break", input: `<w:br/>`, want: "a\nb"},
		{name: "page break", input: `<w:br w:type="page"/>`, want: "ab"},
		{name: "carriage return", input: `<w:cr/>`, want: "a\nb"},
		{name: "tab", input: `<w:tab/>`, want: "a\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>a</w:t>` + tt.input + `<w:t>b</w:t></w:r></w:p></w:body></w:document>`
			doc, err := ParseDocument(strings.NewReader(input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Body.Elements[0].GetText())
		})
	}
}

func TestNewParagraph(t *testing.T) {
	p := NewParagraph("Heading4", "Key ", "Management")
	assert.Equal(t, "Heading4", p.StyleID())
	assert.Equal(t, "Key Management", p.GetText())

	plain := NewParagraph("")
	assert.Equal(t, "", plain.StyleID())
	assert.Equal(t, "", plain.GetText())
}
