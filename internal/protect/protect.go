// Package protect shields delimited spans of a document from a text transform.
//
// A Guard finds every span matching start...end (non-greedy, case-insensitive,
// multi-line), swaps each one for a positional sentinel token, lets the
// transform run on what remains, then puts the spans back verbatim.
//
// Tokens are built only from Unicode Private Use Area runes that do not occur
// in the input: an opening and a closing sentinel around the span index,
// written with ten more PUA runes standing in for the decimal digits. A
// transform that rewrites text, digits included, cannot reach into a token.
// Spans are addressed by position, not by content.
package protect

import (
	"regexp"
	"strconv"
	"strings"
)

// tokenRunes is the number of runes a token alphabet needs: two sentinels
// and ten digits.
const tokenRunes = 12

// Func transforms the unprotected part of a document.
type Func func(text string) (string, error)

// Private Use Area bounds used for sentinel runes.
const (
	puaFirst = '\uE000'
	puaLast  = '\uF8FF'
)

// Guard protects spans delimited by a start/end pair.
// A Guard built from an empty delimiter protects nothing.
type Guard struct {
	pattern *regexp.Regexp
	before  string
	after   string
}

// Option configures a Guard.
type Option func(*Guard)

// WithWrap surrounds each token with before and after while the transform runs.
// The wrapper is dropped again on restore.
func WithWrap(before, after string) Option {
	return func(g *Guard) {
		g.before = before
		g.after = after
	}
}

// New returns a Guard for the literal delimiters start and end.
func New(start, end string, opts ...Option) *Guard {
	g := &Guard{}
	if start != "" && end != "" {
		g.pattern = regexp.MustCompile(`(?is)` + regexp.QuoteMeta(start) + `.*?` + regexp.QuoteMeta(end))
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Enabled reports whether the guard protects anything.
func (g *Guard) Enabled() bool {
	return g != nil && g.pattern != nil
}

// Spans returns the protected spans of text in encounter order.
func (g *Guard) Spans(text string) []string {
	if !g.Enabled() {
		return nil
	}
	return g.pattern.FindAllString(text, -1)
}

// Transform runs fn on text with every delimited span hidden from it.
// Spans removed by fn stay removed; spans duplicated by fn are restored at
// every copy. With no spans, fn sees the whole document.
func (g *Guard) Transform(text string, fn Func) (string, error) {
	if !g.Enabled() {
		return fn(text)
	}

	locs := g.pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return fn(text)
	}

	alpha := newAlphabet(text)

	var b strings.Builder
	b.Grow(len(text))
	spans := make([]string, len(locs))
	prev := 0
	for i, loc := range locs {
		spans[i] = text[loc[0]:loc[1]]
		b.WriteString(text[prev:loc[0]])
		b.WriteString(g.before)
		alpha.writeToken(&b, i)
		b.WriteString(g.after)
		prev = loc[1]
	}
	b.WriteString(text[prev:])

	out, err := fn(b.String())
	if err != nil {
		return "", err
	}

	return alpha.restore(out, spans, g.before, g.after), nil
}

// Extract replaces every span with mark(i), wrapped like a token, and
// returns the text and the spans in encounter order. Unlike Transform the
// spans are not put back.
func (g *Guard) Extract(text string, mark func(i int) string) (string, []string) {
	if !g.Enabled() {
		return text, nil
	}

	var spans []string
	out := g.pattern.ReplaceAllStringFunc(text, func(span string) string {
		i := len(spans)
		spans = append(spans, span)
		return g.before + mark(i) + g.after
	})
	return out, spans
}

// TransformString is Transform for transforms that cannot fail.
func (g *Guard) TransformString(text string, fn func(string) string) string {
	out, _ := g.Transform(text, func(s string) (string, error) {
		return fn(s), nil
	})
	return out
}

// alphabet is the set of runes tokens are written with for one document.
type alphabet struct {
	open    rune
	closing rune
	digits  [10]rune
}

// newAlphabet picks tokenRunes distinct PUA runes absent from text.
func newAlphabet(text string) alphabet {
	used := make(map[rune]bool)
	for _, r := range text {
		if r >= puaFirst && r <= puaLast {
			used[r] = true
		}
	}

	picked := make([]rune, 0, tokenRunes)
	for r := rune(puaFirst); r <= puaLast && len(picked) < tokenRunes; r++ {
		if !used[r] {
			picked = append(picked, r)
		}
	}
	// A document using every PUA code point is not realistic; fall back to
	// noncharacters, which never appear in interchanged text.
	for n := 0; len(picked) < tokenRunes; n++ {
		picked = append(picked, rune(0xFDD0+n))
	}

	a := alphabet{open: picked[0], closing: picked[1]}
	copy(a.digits[:], picked[2:])
	return a
}

func (a alphabet) writeToken(b *strings.Builder, i int) {
	b.WriteRune(a.open)
	for _, d := range strconv.Itoa(i) {
		b.WriteRune(a.digits[d-'0'])
	}
	b.WriteRune(a.closing)
}

// index decodes the digit runes of a token body.
func (a alphabet) index(body string) (int, bool) {
	n := 0
	for _, r := range body {
		d := -1
		for v, dr := range a.digits {
			if r == dr {
				d = v
				break
			}
		}
		if d < 0 {
			return 0, false
		}
		n = n*10 + d
	}
	return n, body != ""
}

func (a alphabet) restore(text string, spans []string, before, after string) string {
	token := regexp.QuoteMeta(string(a.open)) + `([` + string(a.digits[:]) + `]+)` + regexp.QuoteMeta(string(a.closing))
	re := regexp.MustCompile(token)
	if before != "" || after != "" {
		re = regexp.MustCompile(`(?:` + regexp.QuoteMeta(before) + `)?` + token + `(?:` + regexp.QuoteMeta(after) + `)?`)
	}

	return re.ReplaceAllStringFunc(text, func(m string) string {
		sub := re.FindStringSubmatch(m)
		idx, ok := a.index(sub[1])
		if !ok || idx >= len(spans) {
			return m
		}
		return spans[idx]
	})
}
