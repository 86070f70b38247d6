// Package answers reads the per-requirement answer document that drives
// assembly and the gap report.
//
// The document is a JSON object with two arrays:
//
//	{"DOC":   [{"SFR": "FCS_CKM.1", "Ans#1": "RSA", "Ans#2": 2048}],
//	 "Excel": [{"SFR": "FCS_CKM.1", "TSS-requirement": "...", "Missing information": "..."}]}
//
// DOC entries become Records. Only keys of the form Ans#<digits> are answers;
// any other key is ignored. Excel entries become GapRows.
package answers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/placeholder"
)

// JSON field names of the answer document
const (
	FieldRequirement = "SFR"
	FieldNote        = "TSS-requirement"
	FieldGap         = "Missing information"
)

// Record carries the answers supplied for one requirement
type Record struct {
	RequirementKey string
	// Answers maps placeholder keys ("Ans#1") to their text. A key that is
	// present was provided, even when its value is empty.
	Answers map[string]string
}

// GapRow is one row of the gap report
type GapRow struct {
	RequirementKey string
	Note           string
	Gap            string
}

// Document is a decoded answer document
type Document struct {
	Records []Record
	Gaps    []GapRow
}

type rawDocument struct {
	DOC   []map[string]any `json:"DOC"`
	Excel []map[string]any `json:"Excel"`
}

// Decode reads an answer document from r
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw rawDocument
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}

	doc := &Document{}
	for i, entry := range raw.DOC {
		if entry == nil {
			return nil, fmt.Errorf("decode answers: DOC[%d] is not an object", i)
		}
		doc.Records = append(doc.Records, recordFrom(entry))
	}
	for i, entry := range raw.Excel {
		if entry == nil {
			return nil, fmt.Errorf("decode answers: Excel[%d] is not an object", i)
		}
		doc.Gaps = append(doc.Gaps, GapRow{
			RequirementKey: text(entry[FieldRequirement]),
			Note:           text(entry[FieldNote]),
			Gap:            text(entry[FieldGap]),
		})
	}
	return doc, nil
}

// Parse decodes an answer document held in memory
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads the answer document at path
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func recordFrom(entry map[string]any) Record {
	rec := Record{
		RequirementKey: strings.TrimSpace(text(entry[FieldRequirement])),
		Answers:        make(map[string]string),
	}
	for k, v := range entry {
		if !placeholder.IsKey(k) || v == nil {
			continue
		}
		rec.Answers[k] = text(v)
	}
	return rec
}

// text renders a decoded JSON value as the text placed into the document.
// Numbers keep their literal form and booleans read True or False. Null
// and missing values become "".
func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "True"
		}
		return "False"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
