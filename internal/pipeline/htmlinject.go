package pipeline

import (
	"context"
	"fmt"
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block before </head>, else right after
// <body>, else at the start of the content.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lower := strings.ToLower(htmlContent)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}
	if pos := afterBodyOpen(htmlContent, lower); pos != -1 {
		return htmlContent[:pos] + styleBlock + htmlContent[pos:]
	}
	return styleBlock + htmlContent
}

// sanitizeCSS keeps CSS from closing its <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// afterBodyOpen returns the offset just past the <body ...> tag, or -1.
func afterBodyOpen(content, lower string) int {
	idx := strings.Index(lower, "<body")
	if idx == -1 {
		return -1
	}
	end := strings.Index(content[idx:], ">")
	if end == -1 {
		return -1
	}
	return idx + end + 1
}

// TOCData configures the preview table of contents.
type TOCData struct {
	Title    string
	MinDepth int // shallowest heading level listed (default 2)
	MaxDepth int // deepest heading level listed (default 3)
}

// DefaultTOC lists the Titre/Chapitre/Section headings of a converted text.
func DefaultTOC() *TOCData {
	return &TOCData{Title: "Table des matières", MinDepth: 2, MaxDepth: 3}
}

// TOCInjector defines the contract for TOC injection into HTML.
type TOCInjector interface {
	InjectTOC(ctx context.Context, htmlContent string, data *TOCData) (string, error)
}

type headingInfo struct {
	Level int
	ID    string
	Text  string
}

// extractHeadings walks the parsed document and returns the headings with
// an id between minDepth and maxDepth, in document order.
func extractHeadings(htmlContent string, minDepth, maxDepth int) ([]headingInfo, error) {
	doc, _, err := parseHTML(htmlContent)
	if err != nil {
		return nil, err
	}

	var headings []headingInfo
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode {
			if level := headingLevel(n.DataAtom); level > 0 {
				id := attr(n, "id")
				if id != "" && level >= minDepth && level <= maxDepth {
					headings = append(headings, headingInfo{Level: level, ID: id, Text: textContent(n)})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return headings, nil
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates the text nodes under n with collapsed spaces.
func textContent(n *nethtml.Node) string {
	var b strings.Builder
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// generateTOC renders headings as nested entries. Legal headings carry
// their own numbering ("Art. 12", "CHAPITRE II"), so entries are not
// renumbered; only the indentation follows the level.
func generateTOC(headings []headingInfo, title string) string {
	if len(headings) == 0 {
		return ""
	}

	minLevel := headings[0].Level
	for _, h := range headings {
		minLevel = min(minLevel, h.Level)
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="toc">`)
	if title != "" {
		buf.WriteString(`<h2 class="toc-title">` + html.EscapeString(title) + `</h2>`)
	}
	buf.WriteString(`<div class="toc-list">`)
	for _, h := range headings {
		buf.WriteString(`<div class="toc-item"`)
		if depth := h.Level - minLevel; depth > 0 {
			fmt.Fprintf(&buf, ` style="padding-left:%.1fem"`, float64(depth)*1.5)
		}
		buf.WriteString(`><a href="#` + html.EscapeString(h.ID) + `">` + html.EscapeString(h.Text) + `</a></div>`)
	}
	buf.WriteString(`</div></nav>`)
	return buf.String()
}

// TOCInjection implements TOCInjector.
type TOCInjection struct{}

// InjectTOC inserts a table of contents right after <body>.
// A nil data or a document without matching headings is returned unchanged.
func (t *TOCInjection) InjectTOC(ctx context.Context, htmlContent string, data *TOCData) (string, error) {
	if data == nil {
		return htmlContent, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	headings, err := extractHeadings(htmlContent, data.MinDepth, data.MaxDepth)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	toc := generateTOC(headings, data.Title)
	if toc == "" {
		return htmlContent, nil
	}

	if pos := afterBodyOpen(htmlContent, strings.ToLower(htmlContent)); pos != -1 {
		return htmlContent[:pos] + toc + htmlContent[pos:], nil
	}
	return toc + htmlContent, nil
}
