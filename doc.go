// Package justel runs the JUSTEL legal-document cleanup pipeline.
//
// # Quick Start
//
// Load a pipeline definition, build a runner, and run every stage:
//
//	cfg, err := config.Default()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, err := justel.New(cfg, justel.WithStdout(os.Stdout))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	reports, err := r.RunAll(ctx)
//
// # Stages
//
// A pipeline is an ordered list of stages. Each stage reads every file with
// a given extension from one directory and writes its result to another:
//
//   - erase: delete marker-delimited sequences, logging each one first
//   - replace: ordered literal replacements, optionally fixing footnotes
//   - html2md: convert scraped HTML to Markdown, keeping tables verbatim
//   - split: cut a document into title, contents, text and other sections
//   - render: Markdown to a styled HTML preview
//   - print: HTML preview to PDF through headless Chrome
//   - filter: copy JSON records whose document hierarchy is non-empty
//
// Stages other than filter share one driving loop: a file that fails is
// reported and skipped while the rest of the batch continues. A stage whose
// input directory is missing aborts RunAll.
//
// # Protected Spans
//
// Erase and replace stages accept a protect delimiter pair (typically
// "<table" and "</table>"). Text between the delimiters is hidden from the
// transform and restored byte-for-byte.
package justel
