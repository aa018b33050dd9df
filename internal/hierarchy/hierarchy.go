// Package hierarchy keeps structured documents whose document_hierarchy is
// a non-empty array and sets the rest aside.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/alnah/go-justel/internal/fileutil"
)

// Field is the JSON key checked by the filter.
const Field = "document_hierarchy"

// DefaultSamples is the number of example names kept per category.
const DefaultSamples = 5

// Sentinel errors for filter operations.
var (
	ErrSourceNotFound = errors.New("source directory not found")
	ErrMalformedJSON  = errors.New("malformed JSON")
)

// Verdict is the outcome of checking one record.
type Verdict struct {
	Valid bool
	Count int // number of hierarchy elements
}

// Check reports whether data holds a JSON object with a non-empty
// document_hierarchy array.
func Check(data []byte) (Verdict, error) {
	if !gjson.ValidBytes(data) {
		return Verdict{}, ErrMalformedJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Verdict{}, nil
	}
	h := root.Get(Field)
	if !h.Exists() || !h.IsArray() {
		return Verdict{}, nil
	}
	n := len(h.Array())
	return Verdict{Valid: n > 0, Count: n}, nil
}

// Options configures a filter run.
type Options struct {
	Source  string
	Dest    string
	Samples int // 0 means DefaultSamples

	// Progress is called after each file with the number analyzed so far.
	Progress func(done, total int)

	// OnError is called for each file that could not be read or parsed.
	OnError func(name string, err error)
}

// Kept is a copied record and its hierarchy size.
type Kept struct {
	Name  string
	Count int
}

// Summary describes a filter run.
type Summary struct {
	Analyzed       int
	Valid          int
	Invalid        int
	Errors         int
	ValidSamples   []Kept
	InvalidSamples []string
}

// Filter copies every valid record from Source to Dest byte-for-byte.
// Files are visited in name order. A file that cannot be parsed counts as
// invalid and does not stop the run.
func Filter(ctx context.Context, opts Options) (*Summary, error) {
	info, err := os.Stat(opts.Source)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, opts.Source)
	}

	names, err := fileutil.ListByExt(opts.Source, ".json")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	if err := fileutil.EnsureDir(opts.Dest); err != nil {
		return nil, err
	}

	samples := opts.Samples
	if samples <= 0 {
		samples = DefaultSamples
	}

	s := &Summary{}
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return s, err
		}

		v, err := checkFile(filepath.Join(opts.Source, name))
		s.Analyzed++
		switch {
		case err != nil:
			s.Errors++
			s.Invalid++
			appendSample(&s.InvalidSamples, trimExt(name), samples)
			if opts.OnError != nil {
				opts.OnError(name, err)
			}
		case v.Valid:
			if err := fileutil.CopyFile(filepath.Join(opts.Source, name), filepath.Join(opts.Dest, name)); err != nil {
				s.Errors++
				s.Invalid++
				if opts.OnError != nil {
					opts.OnError(name, err)
				}
				break
			}
			s.Valid++
			if len(s.ValidSamples) < samples {
				s.ValidSamples = append(s.ValidSamples, Kept{Name: trimExt(name), Count: v.Count})
			}
		default:
			s.Invalid++
			appendSample(&s.InvalidSamples, trimExt(name), samples)
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(names))
		}
	}
	return s, nil
}

func checkFile(path string) (Verdict, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path built from a listed directory
	if err != nil {
		return Verdict{}, err
	}
	v, err := Check(data)
	if err != nil {
		return Verdict{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return v, nil
}

func appendSample(list *[]string, name string, limit int) {
	if len(*list) < limit {
		*list = append(*list, name)
	}
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// WriteReport prints the run summary with sample names for each category.
func (s *Summary) WriteReport(w io.Writer, dest string) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "FILTERING SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Total JSON files analyzed: %d\n", s.Analyzed)
	fmt.Fprintf(w, "Files with non-empty %s: %d\n", Field, s.Valid)
	fmt.Fprintf(w, "Files excluded: %d (%d unreadable)\n", s.Invalid, s.Errors)

	if len(s.ValidSamples) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Examples of files copied (with hierarchy count):")
		for _, k := range s.ValidSamples {
			fmt.Fprintf(w, "  [OK] %s.json (hierarchy elements: %d)\n", k.Name, k.Count)
		}
		if rest := s.Valid - len(s.ValidSamples); rest > 0 {
			fmt.Fprintf(w, "  ... and %d more files\n", rest)
		}
	}

	if len(s.InvalidSamples) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Examples of files excluded:")
		for _, name := range s.InvalidSamples {
			fmt.Fprintf(w, "  [SKIP] %s.json\n", name)
		}
		if rest := s.Invalid - len(s.InvalidSamples); rest > 0 {
			fmt.Fprintf(w, "  ... and %d more files\n", rest)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Valid JSON files are now available in: %s\n", dest)
}
