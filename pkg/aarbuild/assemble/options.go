package assemble

import (
	"log/slog"
)

// Defaults used when an option is left empty
const (
	DefaultPreambleMarker = "GENERAL REQUIREMENTS FOR DISTRIBUTED TOES"
	DefaultSentinel       = "This requirement is not being satisfied."
	DefaultHighlightColor = "FF0000"
)

// MatchMode selects how table paragraphs are compared with the sentinel
type MatchMode string

const (
	// MatchExact highlights a paragraph whose trimmed text equals the sentinel
	MatchExact MatchMode = "exact"
	// MatchContains highlights a paragraph whose text contains the sentinel
	MatchContains MatchMode = "contains"
)

// Options configures an Assembler
type Options struct {
	// PreambleMarker is the title prefix of the level-3 section copied first.
	// An empty marker disables the preamble.
	PreambleMarker string
	// Sentinel is the table text whose runs get recolored. An empty
	// sentinel disables highlighting.
	Sentinel       string
	SentinelMatch  MatchMode
	HighlightColor string
	Logger         *slog.Logger
}

// DefaultOptions returns the options the CLI starts from
func DefaultOptions() Options {
	return Options{
		PreambleMarker: DefaultPreambleMarker,
		Sentinel:       DefaultSentinel,
		SentinelMatch:  MatchExact,
		HighlightColor: DefaultHighlightColor,
	}
}

func (o Options) withDefaults() Options {
	if o.SentinelMatch == "" {
		o.SentinelMatch = MatchExact
	}
	if o.HighlightColor == "" {
		o.HighlightColor = DefaultHighlightColor
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
