package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/docx/docxtest"
)

type fixture struct {
	dir       string
	templates string
	answers   string
	output    string
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:       dir,
		templates: filepath.Join(dir, "templates"),
		answers:   filepath.Join(dir, "ai_responses.json"),
		output:    filepath.Join(dir, "BLITZ-output"),
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}
	require.NoError(t, os.MkdirAll(f.templates, 0o755))

	tmpl := docxtest.New().
		Heading(3, "Cryptographic Support").
		Heading(4, "FCS_CKM").
		Heading(5, "FCS_CKM.1 TSS").
		Para("Algorithm: <Ans#1>").
		Heading(5, "FCS_CKM.1 AGD").
		Para("Configure keys").
		Heading(5, "FCS_RBG.1 TSS").
		Para("Unused")
	require.NoError(t, tmpl.WriteFile(filepath.Join(f.templates, "NDcPP"+aarbuild.TemplateSuffix)))

	require.NoError(t, os.WriteFile(f.answers, []byte(`{
  "DOC": [{"SFR": "FCS_CKM.1", "Ans#1": "ECDSA"}, {"SFR": "FOO.1"}],
  "Excel": [{"SFR": "FCS_CKM.1", "Missing information": "curves"}]
}`), 0o644))
	return f
}

// run parses args like the binary does and executes the selected command
func (f *fixture) run(t *testing.T, args ...string) error {
	t.Helper()
	t.Cleanup(func() { aarbuild.SetLogger(nil) })

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("aarbuild"),
		kong.Vars{"version": "test"},
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&Global{Version: "test", Stdout: f.stdout, Stderr: f.stderr}, &cli)
}

func (f *fixture) runFlags() []string {
	return []string{"--templates", f.templates, "--answers", f.answers, "--output", f.output}
}

func TestAssembleCommand(t *testing.T) {
	f := newFixture(t)
	metricsFile := filepath.Join(f.dir, "metrics", "aarbuild.prom")

	args := append([]string{"assemble", "NDcPP"}, f.runFlags()...)
	args = append(args, "--metrics-file", metricsFile)
	require.NoError(t, f.run(t, args...))

	assert.FileExists(t, filepath.Join(f.output, "AAR-TSS.docx"))
	assert.FileExists(t, filepath.Join(f.output, "Gaps.xlsx"))
	assert.FileExists(t, metricsFile)

	out := f.stdout.String()
	assert.Contains(t, out, "templates:  NDcPP")
	assert.Contains(t, out, "resolved:   1")
	assert.Contains(t, out, "unresolved: 1")
	assert.Contains(t, out, `requirement "FOO.1" not found`)
}

func TestAssembleCommandListsSkipReasons(t *testing.T) {
	f := newFixture(t)
	args := append([]string{"assemble", "NDcPP", "MOD_GONE"}, f.runFlags()...)
	require.NoError(t, f.run(t, args...))

	out := f.stdout.String()
	assert.Contains(t, out, "skipped:    MOD_GONE")
	assert.Contains(t, out, "    - load template [index=1, selection=MOD_GONE]: ")
	assert.Contains(t, out, "MOD_GONE"+aarbuild.TemplateSuffix)
}

func TestAssembleCommandConfigFile(t *testing.T) {
	f := newFixture(t)
	config := filepath.Join(f.dir, "aarbuild.yaml")
	require.NoError(t, os.WriteFile(config, []byte(strings.Join([]string{
		"templates_dir: " + f.templates,
		"answers: " + f.answers,
		"output_dir: " + f.output,
		"selections: [NDcPP]",
		"gaps_name: Gaps.csv",
		"log_format: json",
	}, "\n")), 0o644))

	require.NoError(t, f.run(t, "--config", config, "assemble"))
	assert.FileExists(t, filepath.Join(f.output, "Gaps.csv"))
	assert.Contains(t, f.stderr.String(), `"msg":"assembly complete"`)
}

func TestAssembleCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(f *fixture) []string
		wantCode int
	}{
		{
			name:     "nothing selected",
			args:     func(f *fixture) []string { return append([]string{"assemble"}, f.runFlags()...) },
			wantCode: aarbuild.ExitConfig,
		},
		{
			name: "no template loads",
			args: func(f *fixture) []string {
				return append([]string{"assemble", "MISSING"}, f.runFlags()...)
			},
			wantCode: aarbuild.ExitEmptyTemplateSet,
		},
		{
			name: "missing config file",
			args: func(f *fixture) []string {
				return []string{"--config", filepath.Join(f.dir, "nope.yaml"), "assemble", "NDcPP"}
			},
			wantCode: aarbuild.ExitConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			err := f.run(t, tt.args(f)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, aarbuild.ExitCode(err))
		})
	}
}

func TestInspectCommand(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "inspect", "NDcPP", "--templates", f.templates))

	out := f.stdout.String()
	assert.Contains(t, out, "NDcPP: 5 headings")
	assert.Contains(t, out, "H3 Cryptographic Support")
	assert.Contains(t, out, "    H5 FCS_CKM.1 TSS [primary key=FCS_CKM.1 links=FCS_CKM.1 AGD blocks=1]")
	assert.Contains(t, out, "    H5 FCS_CKM.1 AGD [secondary key=FCS_CKM.1 linked blocks=1]")
}

func TestInspectCommandMissingTemplate(t *testing.T) {
	f := newFixture(t)
	err := f.run(t, "inspect", "OTHER", "--templates", f.templates)
	require.Error(t, err)
	assert.Equal(t, aarbuild.ExitDocument, aarbuild.ExitCode(err))
}

func TestPreviewCommand(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, append([]string{"preview", "NDcPP"}, f.runFlags()...)...))

	path := filepath.Join(f.output, "AAR-TSS.html")
	assert.Equal(t, path+"\n", f.stdout.String())
	page, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Algorithm: ECDSA")
	assert.NotContains(t, string(page), "FCS_RBG.1")
	assert.NoFileExists(t, filepath.Join(f.output, "AAR-TSS.docx"))
}

func TestVersionCommand(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "version"))
	assert.True(t, strings.HasPrefix(f.stdout.String(), "aarbuild test ("))
}

func TestRunWatchStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	cfg := aarbuild.DefaultConfig()
	cfg.TemplatesDir = f.templates
	cfg.Answers = f.answers
	cfg.OutputDir = f.output
	cfg.Selections = []string{"NDcPP"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	g := &Global{Version: "test", Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	go func() { done <- RunWatch(ctx, g, cfg, 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(f.output, "AAR-TSS.docx"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
