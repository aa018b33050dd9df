// Package pipeline holds the machinery shared by every stage of a JUSTEL run.
//
// Batch drives one directory-to-directory pass: it lists the input files,
// decodes them, hands each to a stage function and writes what comes back,
// isolating per-file failures and reporting progress. AuditLog is the
// append-only side log some stages keep.
//
// The rest of the package renders converted texts for human review:
//   - Markdown preprocessing and goldmark rendering
//   - HTML sanitizing with bluemonday
//   - style and table-of-contents injection
//   - link rewriting against the JUSTEL site or a local directory
//
// PDF printing is handled by the root justel package with headless Chrome.
package pipeline
