package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Meta is what the record says about its own extraction.
type Meta struct {
	Number       string // document number, the input file stem
	Source       string // input file name
	Lang         string
	Extracted    time.Time
	TablesFilled int
}

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// Record encodes doc as an indented JSON object with document_metadata,
// preamble, document_hierarchy and extraction_metadata, in that order.
func Record(doc Document, meta Meta) ([]byte, error) {
	hierarchy, err := marshalRaw(doc.Hierarchy)
	if err != nil {
		return nil, err
	}

	out := []byte(`{}`)
	set := func(path string, value any) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, value)
		}
	}
	set("document_metadata.document_number", meta.Number)
	set("document_metadata.title", doc.Title)
	set("document_metadata.document_type", doc.Type)
	set("document_metadata.language", meta.Lang)
	set("preamble", doc.Preamble)
	if err == nil {
		out, err = sjson.SetRawBytes(out, "document_hierarchy", hierarchy)
	}
	set("extraction_metadata.extraction_date", meta.Extracted.Format(time.RFC3339))
	set("extraction_metadata.source_file", meta.Source)
	set("extraction_metadata.articles", doc.Articles())
	set("extraction_metadata.tables_filled", meta.TablesFilled)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", meta.Source, err)
	}
	return pretty.PrettyOptions(out, prettyOptions), nil
}

// marshalRaw encodes v without escaping the HTML of filled tables.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding hierarchy: %w", err)
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}
