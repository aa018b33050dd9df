// Package htmlmd converts scraped JUSTEL HTML into Markdown.
//
// Tables are handled one of two ways. WithTableMarkers lifts every table out
// before anything else touches the page and leaves a [TABLE_PLACEHOLDER_NNNN]
// marker in its place; the raw markup goes to a sidecar keyed by the same
// names and FillTables puts it back later. WithPreserved instead keeps the
// table markup inline: it is hidden from the converter and restored verbatim.
//
// Footnote references are normalized before conversion so their bracket form
// survives it.
package htmlmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"

	"github.com/alnah/go-justel/internal/footnote"
	"github.com/alnah/go-justel/internal/protect"
)

// ErrConversion indicates html-to-markdown rejected a document.
var ErrConversion = errors.New("HTML to Markdown conversion failed")

// Converter turns one HTML document into Markdown.
type Converter struct {
	conv    *converter.Converter
	tables  *protect.Guard
	markers *protect.Guard
	domain  string
}

// Option configures a Converter.
type Option func(*Converter)

// WithPreserved keeps start...end spans (typically "<table" and "</table>")
// as raw HTML in the output instead of converting them.
func WithPreserved(start, end string) Option {
	return func(c *Converter) {
		c.tables = protect.New(start, end, protect.WithWrap("<p>", "</p>"))
	}
}

// WithTableMarkers replaces each table with its TableMarker before footnote
// normalization and conversion. Result.Tables holds the original markup, so
// TablesJSON(Result.Tables) is the sidecar the markers refer to.
func WithTableMarkers() Option {
	return func(c *Converter) {
		c.markers = protect.New("<table", "</table>", protect.WithWrap("<p>", "</p>"))
	}
}

// WithDomain resolves relative links against domain.
func WithDomain(domain string) Option {
	return func(c *Converter) {
		c.domain = domain
	}
}

// New returns a Converter with CommonMark output, escaping disabled so
// bracketed footnotes stay literal, and images, scripts and styles dropped.
func New(opts ...Option) *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
		converter.WithEscapeMode(converter.EscapeModeDisabled),
	)
	for _, tag := range []string{"img", "script", "style"} {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}

	c := &Converter{conv: conv}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is a converted document.
type Result struct {
	Markdown   string
	Tables     []string // lifted or preserved tables, in document order
	Mismatches []footnote.Mismatch
}

// Convert lifts marked tables out, normalizes footnotes, then converts
// everything outside the preserved spans.
func (c *Converter) Convert(html string) (Result, error) {
	html, tables := c.markers.Extract(html, TableMarker)
	html, mismatches := footnote.NormalizeHTML(html)

	md, err := c.tables.Transform(html, c.convert)
	if err != nil {
		return Result{}, err
	}
	if tables == nil {
		tables = c.tables.Spans(html)
	}

	return Result{
		Markdown:   strings.TrimSpace(md) + "\n",
		Tables:     tables,
		Mismatches: mismatches,
	}, nil
}

func (c *Converter) convert(html string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if c.domain != "" {
		opts = append(opts, converter.WithDomain(c.domain))
	}
	out, err := c.conv.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return out, nil
}
