package docx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/docx/docxtest"
	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

func TestReadPackage(t *testing.T) {
	content := docxtest.New().Heading(3, "Crypto").Para("body").Bytes()

	pkg, err := FromBytes(content)
	require.NoError(t, err)

	assert.NotNil(t, pkg.Document())
	assert.NotNil(t, pkg.Styles())
	assert.Contains(t, pkg.ListParts(), DocumentPart)
	rel, ok := pkg.Relationship("rId1")
	require.True(t, ok)
	assert.Equal(t, "styles.xml", rel.Target)
}

func TestReadPackageErrors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		_, err := FromBytes([]byte("plain text"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "absent.docx"))
		assert.Error(t, err)
	})
}

func TestOpenSetsName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NDcPP-template.docx")
	require.NoError(t, docxtest.New().Para("x").WriteFile(path))

	pkg, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "NDcPP-template", pkg.Name)
	assert.Equal(t, path, pkg.Path)
}

func TestStyledBlocks(t *testing.T) {
	tests := []struct {
		name    string
		builder *docxtest.Builder
		want    []int
	}{
		{
			name: "levels from style names",
			builder: docxtest.New().
				Heading(1, "Doc title").
				Heading(3, "Section").
				Styled("berschrift3", "Localized").
				Heading(4, "Sub").
				Heading(5, "Leaf").
				Para("text").
				Table([]string{"a"}).
				Styled("Title", "Not a heading").
				Styled("UnknownStyle", "Falls back to Normal"),
			want: []int{1, 3, 3, 4, 5, 0, 0, 0, 0},
		},
		{
			name: "levels from style ids without styles part",
			builder: docxtest.New().WithoutStyles().
				Heading(3, "Section").
				Styled("heading5", "lower case id").
				Para("text"),
			want: []int{3, 5, 0},
		},
		{
			name:    "raw body children are skipped",
			builder: docxtest.New().Raw(`<w:bookmarkStart w:id="1" w:name="b"/>`).Para("x"),
			want:    []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, err := FromBytes(tt.builder.Bytes())
			require.NoError(t, err)

			var levels []int
			for _, b := range pkg.StyledBlocks() {
				levels = append(levels, b.Level)
			}
			assert.Equal(t, tt.want, levels)
		})
	}
}

func TestPackageClone(t *testing.T) {
	pkg, err := FromBytes(docxtest.New().Para("original").Bytes())
	require.NoError(t, err)

	clone := pkg.Clone()
	clone.Document().Body.Elements[0].(*wml.Paragraph).ReplaceWithEmphasizedRun("changed")

	assert.Equal(t, "original", pkg.Document().Body.Elements[0].GetText())
	assert.Equal(t, "changed", clone.Document().Body.Elements[0].GetText())
}

func TestHeadingLevelNilSheet(t *testing.T) {
	var sheet *StyleSheet
	assert.Equal(t, 4, sheet.HeadingLevel("Heading4"))
	assert.Equal(t, 0, sheet.HeadingLevel("Normal"))
	assert.Equal(t, 0, sheet.HeadingLevel(""))
}

func TestMergeStyles(t *testing.T) {
	main := []byte(`<w:styles xmlns:w="x"><w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style></w:styles>`)
	other, err := ParseStyles([]byte(`<w:styles xmlns:w="x"><w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Other"/></w:style><w:style w:type="table" w:styleId="Grid"><w:name w:val="Grid"/></w:style></w:styles>`))
	require.NoError(t, err)

	merged, err := mergeStyles(main, other)
	require.NoError(t, err)

	sheet, err := ParseStyles(merged)
	require.NoError(t, err)
	name, _ := sheet.Name("Normal")
	assert.Equal(t, "Normal", name)
	assert.True(t, sheet.Has("Grid"))

	unchanged, err := mergeStyles(main)
	require.NoError(t, err)
	assert.Equal(t, main, unchanged)
}
