// Package placeholder finds and fills the <Ans#N> tokens that templates use
// to mark where per-requirement answers go.
package placeholder

import (
	"regexp"
	"sort"
	"strings"

	wml "github.com/benjaminschreck/aarbuild/pkg/aarbuild/xml"
)

var (
	// tokenRegex matches a placeholder and captures its key ("Ans#12")
	tokenRegex = regexp.MustCompile(`<(Ans#[0-9]+)>`)

	keyRegex = regexp.MustCompile(`^Ans#[1-9][0-9]*$`)
)

// Token is one placeholder occurrence in a text
type Token struct {
	Key   string
	Start int
	End   int
}

// Scan returns every placeholder occurrence in text, in order
func Scan(text string) []Token {
	matches := tokenRegex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]Token, len(matches))
	for i, m := range matches {
		tokens[i] = Token{Key: text[m[2]:m[3]], Start: m[0], End: m[1]}
	}
	return tokens
}

// Tokens returns the keys of every placeholder in text, in scan order.
// Repeated placeholders are listed each time they occur.
func Tokens(text string) []string {
	var keys []string
	for _, tok := range Scan(text) {
		keys = append(keys, tok.Key)
	}
	return keys
}

// IsKey reports whether key has the Ans#<positive integer> form. Zero and
// zero-padded numbers are rejected.
func IsKey(key string) bool {
	return keyRegex.MatchString(key)
}

// Wrap returns the placeholder text for key
func Wrap(key string) string {
	return "<" + key + ">"
}

// Covered applies the coverage rule to a block: a block without
// placeholders is always covered; otherwise only its first placeholder
// decides, and the block is covered when that key was provided. Later
// placeholders are ignored.
func Covered(block wml.Block, provided map[string]bool) bool {
	return CoveredText(block.GetText(), provided)
}

// CoveredText is Covered for plain text
func CoveredText(text string, provided map[string]bool) bool {
	m := tokenRegex.FindStringSubmatch(text)
	if m == nil {
		return true
	}
	return provided[m[1]]
}

// Replace substitutes every <key> occurrence in text with its answer.
// Keys are applied in sorted order so the result does not depend on map
// iteration. It reports whether anything was replaced.
func Replace(text string, answers map[string]string) (string, bool) {
	if len(answers) == 0 || !strings.Contains(text, "<") {
		return text, false
	}
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	changed := false
	for _, k := range keys {
		token := Wrap(k)
		if strings.Contains(text, token) {
			text = strings.ReplaceAll(text, token, answers[k])
			changed = true
		}
	}
	return text, changed
}

// Substitute fills the placeholders of a paragraph or table in place.
//
// A paragraph containing at least one answered placeholder has its whole run
// structure replaced by a single bold run holding the substituted text, so
// per-run formatting in that paragraph is lost. Tables are handled cell by
// cell and paragraph by paragraph, including nested tables. Paragraphs with
// nothing to substitute are left untouched. Substitute reports whether any
// paragraph changed.
func Substitute(block wml.Block, answers map[string]string) bool {
	switch b := block.(type) {
	case *wml.Paragraph:
		text, ok := Replace(b.GetText(), answers)
		if !ok {
			return false
		}
		b.ReplaceWithEmphasizedRun(text)
		return true
	case *wml.Table:
		changed := false
		for _, cell := range b.Cells() {
			for _, inner := range cell.Content {
				if Substitute(inner, answers) {
					changed = true
				}
			}
		}
		return changed
	default:
		return false
	}
}
