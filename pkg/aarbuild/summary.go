package aarbuild

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// WriteTo prints a human readable processing summary
func (s *Summary) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Run %s\n", s.RunID)
	fmt.Fprintf(&sb, "  templates:  %s\n", strings.Join(s.Loaded, ", "))
	if len(s.Skipped) > 0 {
		fmt.Fprintf(&sb, "  skipped:    %s\n", strings.Join(s.Skipped, ", "))
		for _, reason := range s.SkipReasons {
			fmt.Fprintf(&sb, "    - %v\n", reason)
		}
	}
	if s.Preamble != "" {
		fmt.Fprintf(&sb, "  preamble:   %s\n", s.Preamble)
	}
	fmt.Fprintf(&sb, "  links:      %d\n", s.Links)
	fmt.Fprintf(&sb, "  resolved:   %d\n", s.Resolved)
	fmt.Fprintf(&sb, "  unresolved: %d\n", len(s.Unresolved))
	for _, u := range s.Unresolved {
		fmt.Fprintf(&sb, "    - %s\n", u)
	}
	for _, sh := range s.Shadowed {
		fmt.Fprintf(&sb, "  shadowed:   %s in %s (defined by %s)\n", sh.BaseKey, sh.TemplateKey, sh.Winner)
	}
	fmt.Fprintf(&sb, "  blocks:     %d (%d headings, %d dropped by coverage)\n", s.Blocks, s.Headings, s.DroppedBlocks)
	fmt.Fprintf(&sb, "  highlighted: %d\n", s.Highlighted)
	if s.DocumentPath != "" {
		fmt.Fprintf(&sb, "  document:   %s (%s)\n", s.DocumentPath, humanize.Bytes(uint64(s.DocumentSize)))
	}
	if s.GapsPath != "" {
		fmt.Fprintf(&sb, "  gaps:       %s (%d rows)\n", s.GapsPath, s.GapRows)
	}
	if s.Duration > 0 {
		fmt.Fprintf(&sb, "  duration:   %s\n", s.Duration.Round(time.Millisecond))
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, content, 0o644)
}
