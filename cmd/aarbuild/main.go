package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/benjaminschreck/aarbuild/cmd/aarbuild/commands"
	"github.com/benjaminschreck/aarbuild/pkg/aarbuild"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli := &commands.CLI{}
	global := commands.NewGlobal(version)

	parser := kong.Parse(cli,
		kong.Name("aarbuild"),
		kong.Description("Assemble an Assurance Activity Report from requirement templates and answers."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	if err := parser.Run(global, cli); err != nil {
		slog.Error("Command failed", "command", parser.Command(), "error", err)
		os.Exit(aarbuild.ExitCode(err))
	}
}
