package pipeline

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips unsafe markup from rendered HTML.
type Sanitizer interface {
	Sanitize(html string) string
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// namedOrHexColor matches the values JUSTEL uses on <font color>.
var namedOrHexColor = regexp.MustCompile(`^(#[0-9a-fA-F]{3,6}|[a-zA-Z]+)$`)

// LegalPolicy returns the shared bluemonday policy for JUSTEL previews:
// user-generated-content rules plus the table and <font color> markup the
// source pages carry. The policy is built once and safe for concurrent use.
func LegalPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("font", "center")
		p.AllowAttrs("color").Matching(namedOrHexColor).OnElements("font")
		p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
		p.AllowAttrs("border", "cellpadding", "cellspacing").Matching(bluemonday.Integer).OnElements("table")
		p.AllowAttrs("align").Matching(bluemonday.CellAlign).OnElements("td", "th", "tr", "p")
		p.AllowAttrs("valign").Matching(bluemonday.CellVerticalAlign).OnElements("td", "th", "tr")
		p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		policy = p
	})
	return policy
}

// PolicySanitizer adapts a bluemonday policy to Sanitizer.
type PolicySanitizer struct {
	Policy *bluemonday.Policy
}

// NewSanitizer returns a Sanitizer using LegalPolicy.
func NewSanitizer() *PolicySanitizer {
	return &PolicySanitizer{Policy: LegalPolicy()}
}

// Sanitize implements Sanitizer.
func (s *PolicySanitizer) Sanitize(html string) string {
	return s.Policy.Sanitize(html)
}
