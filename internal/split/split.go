// Package split cuts a converted JUSTEL document into its title, table of
// contents, text body and trailing material.
package split

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrHeadersNotFound is returned when a document lacks a required heading
// or has them out of order.
var ErrHeadersNotFound = errors.New("required headers not found")

// Output subdirectories, one per section.
const (
	DirTitles   = "1. Titles"
	DirContents = "2. Tables of Contents"
	DirTexts    = "3. Texts"
	DirOther    = "4. Other"
)

// Dirs lists the section subdirectories in order.
func Dirs() []string {
	return []string{DirTitles, DirContents, DirTexts, DirOther}
}

// Headings are the literal markers a document is cut on.
type Headings struct {
	Title    string
	Contents string
	Text     string
	End      []string // any of these closes the text section
}

// Sections holds the trimmed parts of a document. Other is empty when no
// end heading occurs after the text heading.
type Sections struct {
	Title    string
	Contents string
	Text     string
	Other    string
}

// Split locates the first occurrence of each required heading and slices
// the document between them. The text section runs until the earliest end
// heading found after it.
func Split(doc string, h Headings) (Sections, error) {
	title := strings.Index(doc, h.Title)
	contents := strings.Index(doc, h.Contents)
	text := strings.Index(doc, h.Text)

	var missing []string
	for _, m := range []struct {
		name string
		pos  int
	}{{h.Title, title}, {h.Contents, contents}, {h.Text, text}} {
		if m.pos < 0 {
			missing = append(missing, m.name)
		}
	}
	if len(missing) > 0 {
		return Sections{}, fmt.Errorf("%w: missing %s", ErrHeadersNotFound, strings.Join(missing, ", "))
	}
	if title > contents || contents > text {
		return Sections{}, fmt.Errorf("%w: headings out of order", ErrHeadersNotFound)
	}

	rest := doc[text:]
	end := len(rest)
	for _, marker := range h.End {
		if marker == "" {
			continue
		}
		if i := strings.Index(rest, marker); i >= 0 && i < end {
			end = i
		}
	}

	return Sections{
		Title:    strings.TrimSpace(doc[title:contents]),
		Contents: strings.TrimSpace(doc[contents:text]),
		Text:     strings.TrimSpace(rest[:end]),
		Other:    strings.TrimSpace(rest[end:]),
	}, nil
}

// File is one section ready to be written under a stage output directory.
type File struct {
	Path string
	Text string
}

// Files returns the non-empty sections of s as files named name inside
// their section directory.
func (s Sections) Files(name string) []File {
	var files []File
	for _, part := range []struct {
		dir  string
		text string
	}{
		{DirTitles, s.Title},
		{DirContents, s.Contents},
		{DirTexts, s.Text},
		{DirOther, s.Other},
	} {
		if part.text == "" {
			continue
		}
		files = append(files, File{Path: filepath.Join(part.dir, name), Text: part.text})
	}
	return files
}
