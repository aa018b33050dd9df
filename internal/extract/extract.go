// Package extract turns a cleaned JUSTEL Markdown document into a structured
// record. The record's document_hierarchy nests the divisions of the text
// section (LIVRE down to sous-section) around the articles they contain.
package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// Ranks, outermost first. Articles are always leaves.
const (
	RankLivre = iota
	RankTitre
	RankChapitre
	RankSection
	RankSousSection
	RankArticle
)

// DefaultPreamble is the heading of the preamble section.
const DefaultPreamble = "## Préambule"

var ranks = map[string]int{
	"livre":        RankLivre,
	"titre":        RankTitre,
	"annexe":       RankTitre,
	"chapitre":     RankChapitre,
	"section":      RankSection,
	"sous-section": RankSousSection,
}

var (
	// The numbering is case-sensitive so prose such as "Section de la loi"
	// is not taken for a division.
	divisionPattern = regexp.MustCompile(
		`^(?i:(livre|titre|chapitre|sous-section|section|annexe))` +
			`(?:\s+((?:[0-9]+|[IVXLCDM]+)(?i:er|re|bis|ter)?|(?i:premier|première|unique)))?` +
			`\.?(?:\s*[-–:]\s*|\s+|$)(.*)$`,
	)

	articlePattern = regexp.MustCompile(
		`^(?i:art(?:icle)?)\.?\s*\[?(\d+(?:\.\d+)*(?:/\d+)?(?i:er|bis|ter|quater|quinquies|sexies|septies|octies|novies|decies)?|(?i:unique|premier))\]?\s*\.\s*(.*)$`,
	)

	markupCleaner = strings.NewReplacer("**", "", `\-`, "-", `\.`, ".")
)

// Node is one element of the hierarchy.
type Node struct {
	Type     string          `json:"type"`
	Label    string          `json:"label"`
	Metadata Metadata        `json:"metadata"`
	Article  *ArticleContent `json:"article_content,omitempty"`
	Children []*Node         `json:"children,omitempty"`
}

// Metadata describes a node's place in the hierarchy.
type Metadata struct {
	Rank         int    `json:"rank"`
	TitleType    string `json:"title_type,omitempty"`
	TitleContent string `json:"title_content,omitempty"`
	ArticleRange string `json:"article_range,omitempty"`
}

// ArticleContent is the text of an article.
type ArticleContent struct {
	ArticleNumber string `json:"article_number"`
	MainText      string `json:"main_text"`
}

// Headings locate the sections the record is built from. The text section
// runs from Text to the earliest End heading after it.
type Headings struct {
	Title    string
	Text     string
	End      []string
	Preamble string
}

// Document is the parsed form of one Markdown file.
type Document struct {
	Title     string
	Type      string // loi, arrete, decret, ordonnance, code, constitution or unknown
	Preamble  string
	Hierarchy []*Node
}

// Articles counts the article nodes of the hierarchy.
func (d Document) Articles() int {
	var count func(nodes []*Node) int
	count = func(nodes []*Node) int {
		n := 0
		for _, node := range nodes {
			if node.Metadata.Rank == RankArticle {
				n++
			}
			n += count(node.Children)
		}
		return n
	}
	return count(d.Hierarchy)
}

// Parse builds the document from md. A document without a text section has
// an empty hierarchy.
func Parse(md string, h Headings) Document {
	title := firstLine(section(md, h.Title, []string{"## "}))
	return Document{
		Title:     title,
		Type:      documentType(title),
		Preamble:  strings.TrimSpace(section(md, h.Preamble, []string{"## "})),
		Hierarchy: Hierarchy(section(md, h.Text, h.End)),
	}
}

// Hierarchy parses the lines of a text section into a tree.
func Hierarchy(text string) []*Node {
	b := &builder{}
	for _, raw := range strings.Split(text, "\n") {
		b.line(raw)
	}
	b.flush()
	if b.roots == nil {
		return []*Node{}
	}
	return b.roots
}

type builder struct {
	roots   []*Node
	stack   []*Node
	pending *Node // division still waiting for its title line
	article *Node
	body    []string
}

func (b *builder) line(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	clean := cleanLine(raw)

	if m := articlePattern.FindStringSubmatch(clean); m != nil {
		b.flush()
		b.pending = nil
		b.article = &Node{
			Type:     "article",
			Label:    "Art. " + m[1],
			Metadata: Metadata{Rank: RankArticle, ArticleRange: m[1]},
		}
		b.attach(b.article)
		if rest := strings.TrimSpace(m[2]); rest != "" {
			b.body = append(b.body, rest)
		}
		return
	}

	if node := division(clean); node != nil {
		b.flush()
		for len(b.stack) > 0 && b.stack[len(b.stack)-1].Metadata.Rank >= node.Metadata.Rank {
			b.stack = b.stack[:len(b.stack)-1]
		}
		b.attach(node)
		b.stack = append(b.stack, node)
		b.pending = nil
		if node.Metadata.TitleContent == "" {
			b.pending = node
		}
		return
	}

	switch {
	case b.article != nil:
		b.body = append(b.body, raw)
	case b.pending != nil:
		b.pending.Metadata.TitleContent = clean
		b.pending.Label += " " + clean
		b.pending = nil
	}
}

// attach adds node under the innermost open division, or at the root.
func (b *builder) attach(node *Node) {
	if len(b.stack) == 0 {
		b.roots = append(b.roots, node)
		return
	}
	parent := b.stack[len(b.stack)-1]
	parent.Children = append(parent.Children, node)
}

// flush closes the current article.
func (b *builder) flush() {
	if b.article == nil {
		return
	}
	b.article.Article = &ArticleContent{
		ArticleNumber: b.article.Metadata.ArticleRange,
		MainText:      strings.Join(b.body, "\n"),
	}
	b.article, b.body = nil, nil
}

func division(clean string) *Node {
	m := divisionPattern.FindStringSubmatch(clean)
	if m == nil {
		return nil
	}
	kind := strings.ToLower(m[1])
	if m[2] == "" && kind != "annexe" {
		return nil
	}

	titleType := strings.TrimSpace(m[1] + " " + m[2])
	content := strings.TrimSpace(m[3])
	label := titleType
	if content != "" {
		label += " " + content
	}
	return &Node{
		Type:  kind,
		Label: label,
		Metadata: Metadata{
			Rank:         ranks[kind],
			TitleType:    titleType,
			TitleContent: content,
		},
	}
}

// cleanLine strips Markdown emphasis, heading marks and the
// "TITLE[...]" wrapper some sources put around divisions.
func cleanLine(line string) string {
	line = strings.TrimSpace(strings.TrimLeft(line, "#"))
	line = markupCleaner.Replace(line)
	for _, wrapper := range []string{"TITLE", "ARTICLE", "ANNEXE"} {
		rest, ok := strings.CutPrefix(line, wrapper+"[")
		if !ok {
			continue
		}
		inner, after, found := strings.Cut(rest, "]")
		if !found {
			break
		}
		if wrapper == "ANNEXE" && !strings.HasPrefix(strings.ToLower(inner), "annexe") {
			inner = "ANNEXE " + inner
		}
		line = strings.TrimSpace(inner + " " + strings.TrimSpace(after))
		break
	}
	return line
}

// section returns the lines after the line holding heading, up to the line
// holding the earliest of ends. It is empty when heading does not occur.
func section(md, heading string, ends []string) string {
	if heading == "" {
		return ""
	}
	i := strings.Index(md, heading)
	if i < 0 {
		return ""
	}
	rest := md[i+len(heading):]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return ""
	}
	rest = rest[nl+1:]

	end := len(rest)
	for _, marker := range ends {
		if marker == "" {
			continue
		}
		if j := strings.Index(rest, marker); j >= 0 {
			// Cut at the start of the heading's line so tags around it go too.
			if start := strings.LastIndexByte(rest[:j], '\n') + 1; start < end {
				end = start
			}
		}
	}
	return rest[:end]
}

// firstLine returns the first non-empty line that is not a NUMAC number.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isNUMAC(line) {
			continue
		}
		return line
	}
	return ""
}

func isNUMAC(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

var documentTypes = map[string]string{
	"loi":          "loi",
	"arrêté":       "arrete",
	"arrete":       "arrete",
	"décret":       "decret",
	"decret":       "decret",
	"ordonnance":   "ordonnance",
	"code":         "code",
	"constitution": "constitution",
}

// documentType returns the first known act type named in title.
func documentType(title string) string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if t, ok := documentTypes[w]; ok {
			return t
		}
	}
	return "unknown"
}
