// Package aarbuild assembles an Assurance Activity Report from requirement
// templates and a set of answers.
//
// Each selected template is a DOCX whose outline is built from its level 3,
// 4 and 5 headings. Level-5 titles ending in " TSS" are primary sections
// that answers refer to; a directly following " AGD" section with the same
// base key is linked to its primary and travels with it. Answers fill the
// <Ans#N> placeholders of the primary's content, and only the sections that
// were referenced end up in the output, together with the enclosing
// headings and the general-requirements preamble.
//
// # Quick Start
//
//	config, err := aarbuild.LoadConfig("aarbuild.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	config.Selections = []string{"NDcPP_v3.0"}
//	if err := config.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := aarbuild.New(config).Run(ctx)
//	if err != nil {
//	    os.Exit(aarbuild.ExitCode(err))
//	}
//	summary.WriteTo(os.Stdout)
//
// # Answers
//
// The answers document carries requirement records under "DOC" and gap rows
// under "Excel":
//
//	{"DOC":   [{"SFR": "FCS_CKM.1", "Ans#1": "RSA", "Ans#2": 2048}],
//	 "Excel": [{"SFR": "FCS_CKM.1", "TSS-requirement": "...", "Missing information": "..."}]}
//
// A content block survives only when its first placeholder has an answer.
// Filled paragraphs are rewritten as a single bold run.
//
// # Outputs
//
// Run writes the assembled document (AAR-TSS.docx by default), using the
// first loaded template as the skeleton, and the gap report as XLSX or CSV
// depending on the configured file name.
//
// # Configuration
//
// LoadConfig reads YAML or TOML, applies AARBUILD_* environment variables
// and loads a .env file from the working directory when present.
package aarbuild
