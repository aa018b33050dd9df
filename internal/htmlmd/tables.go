package htmlmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/alnah/go-justel/internal/fileutil"
)

// ErrTablesSidecar indicates a table sidecar that is not a JSON object.
var ErrTablesSidecar = errors.New("invalid tables sidecar")

var markerPattern = regexp.MustCompile(`\[(TABLE_PLACEHOLDER_\d{4,})\]`)

// TableKey names the i-th table of a document in its sidecar.
func TableKey(i int) string {
	return fmt.Sprintf("TABLE_PLACEHOLDER_%04d", i)
}

// TableMarker is the text left in the Markdown where the i-th table was.
func TableMarker(i int) string {
	return "[" + TableKey(i) + "]"
}

// SidecarName returns the sidecar file name for an input document.
func SidecarName(docName string) string {
	return fileutil.Stem(docName) + "_tables.json"
}

// TablesJSON encodes tables as a JSON object keyed by TableKey, with HTML
// left unescaped. It returns nil when there are no tables.
func TablesJSON(tables []string) ([]byte, error) {
	if len(tables) == 0 {
		return nil, nil
	}
	byKey := make(map[string]string, len(tables))
	for i, t := range tables {
		byKey[TableKey(i)] = t
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(byKey); err != nil {
		return nil, fmt.Errorf("encoding tables: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseTables decodes a sidecar written by TablesJSON.
func ParseTables(data []byte) (map[string]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrTablesSidecar)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: want an object", ErrTablesSidecar)
	}
	tables := make(map[string]string)
	root.ForEach(func(key, value gjson.Result) bool {
		tables[key.String()] = value.String()
		return true
	})
	return tables, nil
}

// FillTables replaces every table marker found in tables with its markup.
// Markers with no entry are left in place and returned as missing.
func FillTables(md string, tables map[string]string) (out string, filled int, missing []string) {
	out = markerPattern.ReplaceAllStringFunc(md, func(m string) string {
		key := m[1 : len(m)-1]
		if t, ok := tables[key]; ok {
			filled++
			return t
		}
		missing = append(missing, key)
		return m
	})
	return out, filled, missing
}
