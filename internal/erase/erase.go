// Package erase removes marker-delimited sequences from documents.
package erase

import (
	"fmt"
	"regexp"

	"github.com/alnah/go-justel/internal/protect"
)

// Eraser deletes every non-greedy start...end sequence. Markers are literal
// and matched case-sensitively across lines.
type Eraser struct {
	start   string
	end     string
	pattern *regexp.Regexp
}

// New returns an Eraser for the given markers.
func New(start, end string) (*Eraser, error) {
	if start == "" || end == "" {
		return nil, fmt.Errorf("erase: start and end markers are required")
	}
	return &Eraser{
		start:   start,
		end:     end,
		pattern: regexp.MustCompile(`(?s)` + regexp.QuoteMeta(start) + `.*?` + regexp.QuoteMeta(end)),
	}, nil
}

// Find returns the sequences Erase would remove, in order.
func (e *Eraser) Find(text string) []string {
	return e.pattern.FindAllString(text, -1)
}

// Erase removes every sequence from text.
func (e *Eraser) Erase(text string) string {
	return e.pattern.ReplaceAllString(text, "")
}

// Result holds an erased document and the sequences removed from it.
type Result struct {
	Text    string
	Removed []string
}

// Apply erases sequences outside the spans protected by g, reporting each
// removed sequence to record before it is deleted. g may be nil.
func (e *Eraser) Apply(text string, g *protect.Guard, record func(span string) error) (Result, error) {
	var removed []string
	out, err := g.Transform(text, func(s string) (string, error) {
		removed = e.Find(s)
		for _, span := range removed {
			if record == nil {
				continue
			}
			if err := record(span); err != nil {
				return "", err
			}
		}
		return e.Erase(s), nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Text: out, Removed: removed}, nil
}

// LogEntry formats a removed sequence for the audit log.
func LogEntry(file, span string) string {
	return fmt.Sprintf("File: %s\n%s\n\n", file, span)
}
