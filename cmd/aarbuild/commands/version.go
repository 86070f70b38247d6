package commands

import (
	"fmt"
	"runtime"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (v *VersionCmd) Run(g *Global) error {
	_, err := fmt.Fprintf(g.Stdout, "aarbuild %s (%s %s/%s)\n", g.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
