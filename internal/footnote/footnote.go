// Package footnote rewrites JUSTEL footnote references into the canonical
// bracket form "[N body]N".
//
// Two source shapes exist. Scraped HTML carries red superscript numbers:
//
//	[<sup><font color=red>3</font></sup> body ]<sup><font color=red>3</font></sup>
//
// and after Markdown conversion some references surface as:
//
//	[3] body][3]
//
// Both are normalized by the same routine. When the opening and closing
// numbers disagree the opening number wins and a Mismatch is reported.
package footnote

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	htmlPattern = regexp.MustCompile(
		`(?is)\[<sup><font color=["']?red["']?>(\d+)</font></sup>` +
			`(.*?)` +
			`\]<sup><font color=["']?red["']?>(\d+)</font></sup>`,
	)

	bracketPattern = regexp.MustCompile(`\[(\d+)\] ([^\]]+)\]\[(\d+)\]`)
)

// Mismatch records a reference whose closing number differs from its opening one.
type Mismatch struct {
	Open  string
	Close string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("mismatched footnote numbers: %s vs %s", m.Open, m.Close)
}

// NormalizeHTML rewrites the superscript HTML idiom.
func NormalizeHTML(text string) (string, []Mismatch) {
	return normalize(text, htmlPattern)
}

// NormalizeBrackets rewrites the "[N] body][N]" idiom.
func NormalizeBrackets(text string) (string, []Mismatch) {
	return normalize(text, bracketPattern)
}

// normalize expects pattern to capture opening number, body and closing number.
func normalize(text string, pattern *regexp.Regexp) (string, []Mismatch) {
	var mismatches []Mismatch
	out := pattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := pattern.FindStringSubmatch(m)
		open, body, closing := sub[1], strings.TrimSpace(sub[2]), sub[3]
		if open != closing {
			mismatches = append(mismatches, Mismatch{Open: open, Close: closing})
		}
		return Canonical(open, body)
	})
	return out, mismatches
}

// Canonical formats a reference in its normalized form.
func Canonical(number, body string) string {
	if body == "" {
		return "[" + number + "]" + number
	}
	return "[" + number + " " + body + "]" + number
}
