// Package replace applies ordered literal replacement rules to documents.
package replace

import (
	"fmt"
	"strings"

	"github.com/alnah/go-justel/internal/footnote"
	"github.com/alnah/go-justel/internal/protect"
)

// Rule replaces every occurrence of Old with New.
type Rule struct {
	Old string `yaml:"old"`
	New string `yaml:"new"`
}

// Rules is applied in slice order. Later rules see the output of earlier ones.
type Rules []Rule

// Apply runs every rule over text in declared order.
func (rs Rules) Apply(text string) string {
	for _, r := range rs {
		if r.Old == "" {
			continue
		}
		text = strings.ReplaceAll(text, r.Old, r.New)
	}
	return text
}

// Present returns the rules whose Old value occurs in original.
// This checks the pre-transform text, so a rule can be reported even when
// protection or an earlier rule kept it from firing.
func (rs Rules) Present(original string) Rules {
	var out Rules
	for _, r := range rs {
		if r.Old != "" && strings.Contains(original, r.Old) {
			out = append(out, r)
		}
	}
	return out
}

// AuditLine formats the log entry for a rule found in file.
func (r Rule) AuditLine(file string) string {
	return fmt.Sprintf("Replaced '%s' with '%s' in %s\n", r.Old, r.New, file)
}

// Engine applies a rule set inside an optional protection guard.
type Engine struct {
	Rules Rules

	// FixFootnotes rewrites "[N] body][N]" references before the literal pass.
	FixFootnotes bool

	// Guard hides delimited spans from the rules. Nil protects nothing.
	Guard *protect.Guard
}

// Transform returns text with fixups and rules applied outside protected spans.
func (e *Engine) Transform(text string) (string, []footnote.Mismatch) {
	var mismatches []footnote.Mismatch
	out := e.Guard.TransformString(text, func(s string) string {
		if e.FixFootnotes {
			s, mismatches = footnote.NormalizeBrackets(s)
		}
		return e.Rules.Apply(s)
	})
	return out, mismatches
}
