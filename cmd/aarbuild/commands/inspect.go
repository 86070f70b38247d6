package commands

import (
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/docx"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/outline"
)

// InspectCmd implements the 'inspect' command.
type InspectCmd struct {
	Selection string `arg:"" help:"Template key to inspect"`
	Templates string `short:"t" help:"Directory holding <key>-template.docx files"`
}

func (i *InspectCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root, func(c *aarbuild.Config) {
		c.Selections = []string{i.Selection}
		if i.Templates != "" {
			c.TemplatesDir = i.Templates
		}
	})
	if err != nil {
		return err
	}

	path := cfg.TemplatePath(i.Selection)
	pkg, err := docx.Open(path)
	if err != nil {
		return aarbuild.NewDocumentError("open", path, err)
	}

	t := outline.FromPackage(i.Selection, pkg)
	outline.Link(t)
	return t.WriteTree(g.Stdout)
}
