package pipeline

import (
	"context"
	"regexp"
	"strings"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// JUSTEL exports pad lines with non-breaking spaces that goldmark would
	// otherwise keep as paragraph content.
	trailingNBSP = regexp.MustCompile(`[ \t\x{00A0}]+\n`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// LegalPreprocessor tidies stage output before it is rendered for preview.
type LegalPreprocessor struct{}

// PreprocessMarkdown normalizes line endings, trims trailing blanks and
// compresses runs of blank lines.
func (p *LegalPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = trailingNBSP.ReplaceAllString(content, "\n")
	content = compressBlankLines(content)
	return strings.TrimLeft(content, "\n")
}

func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to one.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// FirstHeading returns the text of the first ATX heading in content, or
// fallback when there is none. Used as the preview page title.
func FirstHeading(content, fallback string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		text := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if text != "" {
			return text
		}
	}
	return fallback
}
