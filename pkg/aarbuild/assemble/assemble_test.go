package assemble

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/answers"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/docx"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/outline"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/resolve"
	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

func h(level int, title string) docx.StyledBlock {
	return docx.StyledBlock{Block: wml.NewParagraph(fmt.Sprintf("Heading%d", level), title), Level: level}
}

func p(text string) docx.StyledBlock {
	return docx.StyledBlock{Block: wml.NewParagraph("", text)}
}

func tbl(rows ...[]string) docx.StyledBlock {
	return docx.StyledBlock{Block: wml.NewTable(rows...)}
}

// pipeline runs the phases that precede assembly
func pipeline(t *testing.T, records []answers.Record, templates ...*outline.Template) resolve.Result {
	t.Helper()
	for _, tmpl := range templates {
		outline.Link(tmpl)
	}
	res := resolve.NewRegistry(templates).Apply(records)
	for _, tmpl := range templates {
		outline.Propagate(tmpl)
	}
	return res
}

func texts(r *Result) []string {
	var out []string
	for _, b := range r.Blocks() {
		out = append(out, b.GetText())
	}
	return out
}

func record(key string, kv ...string) answers.Record {
	rec := answers.Record{RequirementKey: key, Answers: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		rec.Answers[kv[i]] = kv[i+1]
	}
	return rec
}

func TestAssembleEndToEnd(t *testing.T) {
	tmpl := outline.Build("sd", []docx.StyledBlock{
		h(3, "Section A"), h(4, "Sub"),
		h(5, "REQ1 TSS"), p("Value: <Ans#1>"),
		h(5, "REQ1 AGD"), p("Guidance text"),
	})
	pipeline(t, []answers.Record{record("REQ1", "Ans#1", "42")}, tmpl)

	res := New(DefaultOptions()).Assemble([]*outline.Template{tmpl})

	want := []string{"Section A", "Sub", "REQ1 TSS", "Value: 42", "REQ1 AGD", "Guidance text"}
	if diff := cmp.Diff(want, texts(res)); diff != "" {
		t.Errorf("assembled blocks mismatch (-want +got):\n%s", diff)
	}

	value := res.Items[3].Block.(*wml.Paragraph)
	require.Len(t, value.Runs(), 1)
	assert.True(t, value.Runs()[0].Properties.IsBold())

	guidance := res.Items[5].Block.(*wml.Paragraph)
	assert.Nil(t, guidance.Runs()[0].Properties, "linked content is copied verbatim")

	assert.Equal(t, 4, res.Stats.Headings)
	assert.Equal(t, 1, res.Stats.Substituted)
	for _, it := range res.Items {
		assert.Same(t, tmpl, it.Template)
	}

	// the template itself is left untouched
	assert.Equal(t, "Value: <Ans#1>", tmpl.Leaves()[0].Blocks[0].GetText())
}

func TestAssembleCoverage(t *testing.T) {
	tmpl := outline.Build("sd", []docx.StyledBlock{
		h(3, "S"), h(4, "Sub"), h(5, "REQ1 TSS"),
		p("Value: <Ans#1> and <Ans#2>"),
		p("Only <Ans#3>"),
		p("<Ans#3> first, then <Ans#1>"),
		p("static"),
		tbl([]string{"<Ans#1>", "<Ans#5>"}),
		tbl([]string{"<Ans#5>", "<Ans#1>"}),
	})
	pipeline(t, []answers.Record{record("REQ1", "Ans#1", "RSA")}, tmpl)

	res := New(DefaultOptions()).Assemble([]*outline.Template{tmpl})

	want := []string{
		"S", "Sub", "REQ1 TSS",
		"Value: RSA and <Ans#2>",
		"static",
		"RSA\n<Ans#5>",
	}
	if diff := cmp.Diff(want, texts(res)); diff != "" {
		t.Errorf("assembled blocks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, res.Stats.DroppedBlocks)
}

func TestAssembleSkipsUnneeded(t *testing.T) {
	tmpl := outline.Build("sd", []docx.StyledBlock{
		h(3, "Wanted"), h(4, "W1"), h(5, "REQ1 TSS"), p("a"), h(5, "Notes"), p("misc text"),
		h(4, "W2"), h(5, "Other notes"), p("not needed"),
		h(3, "Unwanted"), h(4, "U1"), h(5, "REQ2 TSS"), p("b"),
	})
	pipeline(t, []answers.Record{record("REQ1")}, tmpl)

	res := New(DefaultOptions()).Assemble([]*outline.Template{tmpl})
	assert.Equal(t, []string{"Wanted", "W1", "REQ1 TSS", "a", "Notes", "misc text"}, texts(res))
}

func TestAssembleUnlinkedSecondaryIsMisc(t *testing.T) {
	tmpl := outline.Build("sd", []docx.StyledBlock{
		h(3, "S"), h(4, "Sub"),
		h(5, "REQ1 TSS"), p("tss"),
		h(5, "Interlude"),
		h(5, "REQ1 AGD"), p("guidance"),
	})
	pipeline(t, []answers.Record{record("REQ1")}, tmpl)

	res := New(DefaultOptions()).Assemble([]*outline.Template{tmpl})
	assert.Equal(t, []string{"S", "Sub", "REQ1 TSS", "tss", "Interlude", "REQ1 AGD", "guidance"}, texts(res))
}

func TestAssembleDedup(t *testing.T) {
	first := outline.Build("A", []docx.StyledBlock{
		h(3, "S"), h(4, "Sub"), h(5, "REQ1 TSS"), p("from A"), h(5, "REQ1 AGD"), p("guidance A"),
		h(5, "Shared notes"), p("notes A"),
	})
	second := outline.Build("B", []docx.StyledBlock{
		h(3, "S"), h(4, "Sub"), h(5, "REQ2 TSS"), p("from B"), h(5, "REQ1 AGD"), p("guidance B"),
		h(5, "Shared notes"), p("notes B"),
	})
	pipeline(t, []answers.Record{record("REQ1"), record("REQ2")}, first, second)

	res := New(DefaultOptions()).Assemble([]*outline.Template{first, second})

	seen := map[string]int{}
	for _, it := range res.Items {
		if para, ok := it.Block.(*wml.Paragraph); ok && para.StyleID() == "Heading5" {
			seen[para.GetText()]++
		}
	}
	for title, n := range seen {
		assert.Equal(t, 1, n, "level-5 title %q emitted more than once", title)
	}
	assert.NotContains(t, texts(res), "guidance B")
	assert.NotContains(t, texts(res), "notes B")
	assert.Contains(t, texts(res), "from B")
	assert.Same(t, second, res.Items[len(res.Items)-2].Template)
}

func TestAssemblePreamble(t *testing.T) {
	general := func(key, body string) *outline.Template {
		return outline.Build(key, []docx.StyledBlock{
			h(3, DefaultPreambleMarker+" (DTOE)"), h(4, "Intro"),
			h(5, "GEN TSS"), p(body+" <Ans#1>"), h(5, "GEN AGD"), p("gen guidance"),
			h(5, "Background"), p("background"),
			h(3, "Section"), h(4, "Sub"), h(5, "REQ1 TSS"), p("req"),
		})
	}
	first, second := general("A", "first"), general("B", "second")
	pipeline(t, []answers.Record{record("GEN", "Ans#1", "yes"), record("REQ1")}, first, second)

	res := New(DefaultOptions()).Assemble([]*outline.Template{first, second})

	want := []string{
		DefaultPreambleMarker + " (DTOE)", "Intro",
		"GEN TSS", "first yes", "GEN AGD", "gen guidance",
		"Background", "background",
		"Section", "Sub", "REQ1 TSS", "req",
	}
	if diff := cmp.Diff(want, texts(res)); diff != "" {
		t.Errorf("assembled blocks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "A", res.Stats.PreambleTemplate)
}

func TestAssemblePreambleIgnoresNeeded(t *testing.T) {
	tmpl := outline.Build("A", []docx.StyledBlock{
		h(3, DefaultPreambleMarker), h(4, "Intro"), h(5, "Scope"), p("unconditional"),
	})
	pipeline(t, nil, tmpl)

	res := New(DefaultOptions()).Assemble([]*outline.Template{tmpl})
	assert.Equal(t, []string{DefaultPreambleMarker, "Intro", "Scope", "unconditional"}, texts(res))

	opts := DefaultOptions()
	opts.PreambleMarker = ""
	res = New(opts).Assemble([]*outline.Template{tmpl})
	assert.Empty(t, res.Items)
}

func TestAssembleUnresolvedReference(t *testing.T) {
	build := func() *outline.Template {
		return outline.Build("sd", []docx.StyledBlock{
			h(3, "S"), h(4, "Sub"), h(5, "REQ1 TSS"), p("Value: <Ans#1>"),
		})
	}

	base := build()
	pipeline(t, []answers.Record{record("REQ1", "Ans#1", "x")}, base)
	want := texts(New(DefaultOptions()).Assemble([]*outline.Template{base}))

	tmpl := build()
	res := pipeline(t, []answers.Record{record("REQ1", "Ans#1", "x"), record("NOPE", "Ans#1", "y")}, tmpl)
	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "NOPE", res.Unresolved[0].RequirementKey)
	assert.Equal(t, want, texts(New(DefaultOptions()).Assemble([]*outline.Template{tmpl})))
}

func TestDecide(t *testing.T) {
	primary := &outline.Node{Level: 5, Title: "R TSS", Kind: outline.Primary, Referenced: true}
	unreferenced := &outline.Node{Level: 5, Title: "Q TSS", Kind: outline.Primary}
	secondary := &outline.Node{Level: 5, Title: "R AGD", Kind: outline.Secondary, Linked: true}
	loose := &outline.Node{Level: 5, Title: "Q AGD", Kind: outline.Secondary}
	misc := &outline.Node{Level: 5, Title: "Notes"}

	tests := []struct {
		name    string
		leaf    *outline.Node
		emitted map[string]bool
		want    Emission
	}{
		{"referenced primary", primary, nil, EmitPrimary},
		{"emitted primary", primary, map[string]bool{"R TSS": true}, EmitSkip},
		{"unreferenced primary", unreferenced, nil, EmitSkip},
		{"linked secondary", secondary, nil, EmitSkip},
		{"unlinked secondary", loose, nil, EmitMisc},
		{"misc", misc, nil, EmitMisc},
		{"emitted misc", misc, map[string]bool{"Notes": true}, EmitSkip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.leaf, tt.emitted))
		})
	}
}
