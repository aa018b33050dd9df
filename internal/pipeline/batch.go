package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-justel/internal/fileutil"
	"github.com/alnah/go-justel/internal/textenc"
)

// Sentinel errors for batch runs.
var (
	// ErrInputNotFound aborts a stage whose input directory does not exist.
	ErrInputNotFound = errors.New("input directory not found")

	// ErrSkip is returned by a Func that deliberately produces no output.
	ErrSkip = errors.New("no output for this file")

	// ErrReadInput wraps failures reading or decoding an input file.
	ErrReadInput = errors.New("reading input")

	// ErrWriteOutput wraps failures creating the output directory or writing a file.
	ErrWriteOutput = errors.New("writing output")

	// ErrTransformPanic wraps a panic recovered from a Func.
	ErrTransformPanic = errors.New("transform panicked")
)

// Document is one decoded input file handed to a Func.
type Document struct {
	Name    string // input file name, e.g. "1994021048.txt"
	Path    string // full input path
	Text    string // decoded, normalized content
	OutName string // default output name (input stem + output extension)
}

// Output is one file produced by a Func. Path is relative to the batch
// output directory and may contain subdirectories.
type Output struct {
	Path string
	Data []byte
}

// Single returns the usual one-file result for doc.
func Single(doc Document, text string) []Output {
	return []Output{{Path: doc.OutName, Data: []byte(text)}}
}

// Func transforms one document. Returning ErrSkip (possibly wrapped) marks
// the file as skipped; any other error marks it as failed.
type Func func(ctx context.Context, doc Document) ([]Output, error)

// Batch describes one stage's directory-to-directory run.
type Batch struct {
	Input     string // input directory
	Output    string // output directory, created if absent
	Ext       string // required input extension (empty = every file)
	OutExt    string // output extension (empty = keep input name)
	Encoding  string // input charset (empty = utf-8)
	Normalize string // Unicode normalization form (empty = none)
}

// Options controls reporting for a batch run.
type Options struct {
	Logger   zerolog.Logger // per-file failures and skips
	Progress io.Writer      // "Processed i/N (pp.pp%)" lines; nil discards
}

// FileError records a failed file.
type FileError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e FileError) Unwrap() error {
	return e.Err
}

// Result summarizes a batch run.
type Result struct {
	Total     int
	Processed int
	Failed    int
	Skipped   int
	Failures  []FileError
	Duration  time.Duration
}

// Run applies fn to every matching file in Input and writes its outputs
// under Output. Files are visited in directory-listing order. A failing or
// panicking file is reported and skipped; the batch continues. Run returns
// an error only when the batch cannot start or ctx is cancelled.
func (b Batch) Run(ctx context.Context, fn Func, opts Options) (*Result, error) {
	start := time.Now()

	if !fileutil.DirExists(b.Input) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, b.Input)
	}
	if err := fileutil.EnsureDir(b.Output); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	names, err := fileutil.ListByExt(b.Input, b.Ext)
	if err != nil {
		return nil, err
	}

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	log := opts.Logger

	res := &Result{Total: len(names)}
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		err := b.processFile(ctx, fn, name)
		switch {
		case err == nil:
			res.Processed++
		case errors.Is(err, ErrSkip):
			res.Skipped++
			log.Warn().Str("file", name).Err(err).Msg("skipping")
		default:
			res.Failed++
			res.Failures = append(res.Failures, FileError{Name: name, Err: err})
			log.Error().Str("file", name).Err(err).Msg("skipping " + name)
		}

		done := i + 1
		fmt.Fprintf(progress, "Processed %d/%d (%.2f%%)\n", done, res.Total, float64(done)/float64(res.Total)*100)
	}

	res.Duration = time.Since(start)
	return res, nil
}

// processFile is the per-file failure boundary.
func (b Batch) processFile(ctx context.Context, fn Func, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTransformPanic, r)
		}
	}()

	path := filepath.Join(b.Input, name)
	data, err := os.ReadFile(path) // #nosec G304 -- path built from a listed directory
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	text, err := textenc.Decode(data, b.Encoding)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	text, err = textenc.Normalize(text, b.Normalize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	outputs, err := fn(ctx, Document{
		Name:    name,
		Path:    path,
		Text:    text,
		OutName: fileutil.ReplaceExt(name, b.OutExt),
	})
	if err != nil {
		return err
	}

	for _, out := range outputs {
		if err := b.write(out); err != nil {
			return err
		}
	}
	return nil
}

func (b Batch) write(out Output) error {
	clean := filepath.Clean(out.Path)
	if out.Path == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: invalid output path %q", ErrWriteOutput, out.Path)
	}

	dst := filepath.Join(b.Output, clean)
	if err := fileutil.EnsureDir(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	if err := fileutil.WriteAtomic(dst, out.Data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}
