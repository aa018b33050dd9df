package justel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/alnah/go-justel/internal/assets"
	"github.com/alnah/go-justel/internal/config"
	"github.com/alnah/go-justel/internal/dateutil"
	"github.com/alnah/go-justel/internal/erase"
	"github.com/alnah/go-justel/internal/extract"
	"github.com/alnah/go-justel/internal/fileutil"
	"github.com/alnah/go-justel/internal/footnote"
	"github.com/alnah/go-justel/internal/htmlmd"
	"github.com/alnah/go-justel/internal/pipeline"
	"github.com/alnah/go-justel/internal/protect"
	"github.com/alnah/go-justel/internal/replace"
	"github.com/alnah/go-justel/internal/split"
)

// TablesDir holds the preserved-table sidecars written by html2md stages.
const TablesDir = "preserved_tables"

func noop() {}

// stageFunc builds the per-file transform for s. Counters land in rep; the
// batch loop is sequential so no locking is needed. cleanup releases what
// the transform holds once the batch is done.
func (r *Runner) stageFunc(s config.Stage, rep *StageReport, audit *pipeline.AuditLog, log zerolog.Logger) (pipeline.Func, func(), error) {
	guard := protect.New(s.Protect.Start, s.Protect.End)

	switch s.Kind {
	case config.KindErase:
		fn, err := eraseFunc(s, guard, audit, rep)
		return fn, noop, err
	case config.KindReplace:
		return replaceFunc(s, guard, audit, rep, log), noop, nil
	case config.KindHTML2MD:
		return html2mdFunc(s, rep, log), noop, nil
	case config.KindSplit:
		fn, err := splitFunc(s, r.cfg.OutputDir(s))
		return fn, noop, err
	case config.KindRender:
		fn, err := r.renderFunc(s, log)
		return fn, noop, err
	case config.KindExtract:
		return r.extractFunc(s, rep, log), noop, nil
	case config.KindPrint:
		return r.printFunc(s)
	}
	return nil, noop, fmt.Errorf("%w: %q", config.ErrUnknownStage, s.Kind)
}

// eraseFunc logs every sequence before removing it.
func eraseFunc(s config.Stage, guard *protect.Guard, audit *pipeline.AuditLog, rep *StageReport) (pipeline.Func, error) {
	e, err := erase.New(s.Erase.Start, s.Erase.End)
	if err != nil {
		return nil, err
	}

	return func(_ context.Context, doc pipeline.Document) ([]pipeline.Output, error) {
		res, err := e.Apply(doc.Text, guard, func(span string) error {
			return audit.Write(erase.LogEntry(doc.Name, span))
		})
		if err != nil {
			return nil, err
		}
		rep.Erased += len(res.Removed)
		return pipeline.Single(doc, res.Text), nil
	}, nil
}

// replaceFunc logs the rules whose old text occurs in the document, then
// applies them outside the protected spans.
func replaceFunc(s config.Stage, guard *protect.Guard, audit *pipeline.AuditLog, rep *StageReport, log zerolog.Logger) pipeline.Func {
	engine := &replace.Engine{
		Rules:        s.Rules.Rules(),
		FixFootnotes: s.FixFootnotes,
		Guard:        guard,
	}

	return func(_ context.Context, doc pipeline.Document) ([]pipeline.Output, error) {
		for _, rule := range engine.Rules.Present(doc.Text) {
			if err := audit.Write(rule.AuditLine(doc.Name)); err != nil {
				return nil, err
			}
			rep.Replacements++
		}

		out, mismatches := engine.Transform(doc.Text)
		warnMismatches(log, doc.Name, mismatches)
		rep.Mismatches += len(mismatches)
		return pipeline.Single(doc, out), nil
	}
}

// html2mdFunc converts HTML. With preserveTables, tables become markers in
// the Markdown and their markup goes to a sidecar; otherwise protected spans
// stay inline and verbatim.
func html2mdFunc(s config.Stage, rep *StageReport, log zerolog.Logger) pipeline.Func {
	var opts []htmlmd.Option
	switch {
	case s.PreserveTables:
		opts = append(opts, htmlmd.WithTableMarkers())
	case !s.Protect.IsZero():
		opts = append(opts, htmlmd.WithPreserved(s.Protect.Start, s.Protect.End))
	}
	if s.LinkBase != "" {
		opts = append(opts, htmlmd.WithDomain(s.LinkBase))
	}
	conv := htmlmd.New(opts...)

	return func(_ context.Context, doc pipeline.Document) ([]pipeline.Output, error) {
		res, err := conv.Convert(doc.Text)
		if err != nil {
			return nil, err
		}
		warnMismatches(log, doc.Name, res.Mismatches)
		rep.Mismatches += len(res.Mismatches)

		outputs := pipeline.Single(doc, res.Markdown)
		if s.PreserveTables {
			data, err := htmlmd.TablesJSON(res.Tables)
			if err != nil {
				return nil, err
			}
			if data != nil {
				outputs = append(outputs, pipeline.Output{
					Path: filepath.Join(TablesDir, htmlmd.SidecarName(doc.Name)),
					Data: data,
				})
			}
		}
		return outputs, nil
	}
}

// tableSource loads the sidecar of each document from one directory. A
// zero tableSource, or a document without a sidecar, fills nothing.
type tableSource struct {
	dir string
	log zerolog.Logger
}

// fill replaces the table markers of doc. Markers without an entry stay and
// are logged.
func (t tableSource) fill(doc pipeline.Document, md string) (string, int, error) {
	if t.dir == "" {
		return md, 0, nil
	}
	data, err := os.ReadFile(filepath.Join(t.dir, htmlmd.SidecarName(doc.Name))) // #nosec G304 -- configured sidecar directory
	if errors.Is(err, fs.ErrNotExist) {
		return md, 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", pipeline.ErrReadInput, err)
	}
	tables, err := htmlmd.ParseTables(data)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", htmlmd.SidecarName(doc.Name), err)
	}

	out, filled, missing := htmlmd.FillTables(md, tables)
	for _, key := range missing {
		t.log.Warn().Str("file", doc.Name).Str("table", key).Msg("table marker without sidecar entry")
	}
	return out, filled, nil
}

// splitFunc writes each section under its own subdirectory of out. All
// four subdirectories exist once it returns, so later stages reading one of
// them find their input even when no document filled it. Documents without
// the required headings are skipped.
func splitFunc(s config.Stage, out string) (pipeline.Func, error) {
	for _, dir := range split.Dirs() {
		if err := fileutil.EnsureDir(filepath.Join(out, dir)); err != nil {
			return nil, fmt.Errorf("%w: %w", pipeline.ErrWriteOutput, err)
		}
	}

	sc := s.Split.WithDefaults()
	h := split.Headings{Title: sc.Title, Contents: sc.Contents, Text: sc.Text, End: sc.End}

	return func(_ context.Context, doc pipeline.Document) ([]pipeline.Output, error) {
		secs, err := split.Split(doc.Text, h)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", pipeline.ErrSkip, err)
		}
		var outputs []pipeline.Output
		for _, f := range secs.Files(doc.OutName) {
			outputs = append(outputs, pipeline.Output{Path: f.Path, Data: []byte(f.Text)})
		}
		return outputs, nil
	}, nil
}

// extractFunc writes one JSON record per Markdown document, with table
// markers filled from the stage sidecars.
func (r *Runner) extractFunc(s config.Stage, rep *StageReport, log zerolog.Logger) pipeline.Func {
	sc := s.Split.WithDefaults()
	h := extract.Headings{Title: sc.Title, Text: sc.Text, End: sc.End, Preamble: extract.DefaultPreamble}
	tables := tableSource{dir: r.cfg.TablesDir(s), log: log}
	lang := s.Lang
	if lang == "" {
		lang = pipeline.DefaultLang
	}

	return func(_ context.Context, doc pipeline.Document) ([]pipeline.Output, error) {
		text, filled, err := tables.fill(doc, doc.Text)
		if err != nil {
			return nil, err
		}

		parsed := extract.Parse(text, h)
		data, err := extract.Record(parsed, extract.Meta{
			Number:       fileutil.Stem(doc.Name),
			Source:       doc.Name,
			Lang:         lang,
			Extracted:    r.now(),
			TablesFilled: filled,
		})
		if err != nil {
			return nil, err
		}

		n := parsed.Articles()
		if n == 0 {
			log.Debug().Str("file", doc.Name).Msg("no articles found")
		}
		rep.Articles += n
		return []pipeline.Output{{Path: doc.OutName, Data: data}}, nil
	}
}

// renderFunc turns Markdown into a standalone, styled HTML page. Table
// markers are filled from the stage sidecars first.
func (r *Runner) renderFunc(s config.Stage, log zerolog.Logger) (pipeline.Func, error) {
	style := s.Style
	if style == "" {
		style = assets.DefaultStyleName
	}
	css, err := r.assets.LoadStyle(style)
	if err != nil {
		return nil, fmt.Errorf("loading style %q: %w", style, err)
	}

	var (
		pre      pipeline.MarkdownPreprocessor = &pipeline.LegalPreprocessor{}
		conv     pipeline.HTMLConverter        = pipeline.NewGoldmarkConverter()
		san      pipeline.Sanitizer            = pipeline.NewSanitizer()
		css2html pipeline.CSSInjector          = &pipeline.CSSInjection{}
		toc      pipeline.TOCInjector          = &pipeline.TOCInjection{}
	)
	tables := tableSource{dir: r.cfg.TablesDir(s), log: log}

	return func(ctx context.Context, doc pipeline.Document) ([]pipeline.Output, error) {
		text, _, err := tables.fill(doc, doc.Text)
		if err != nil {
			return nil, err
		}
		md := pre.PreprocessMarkdown(ctx, text)

		fragment, err := conv.ToHTML(ctx, md)
		if err != nil {
			return nil, err
		}
		fragment = san.Sanitize(fragment)

		title := pipeline.FirstHeading(md, fileutil.Stem(doc.Name))
		page := pipeline.WrapPage(fragment, title, s.Lang)

		if s.TOC {
			page, err = toc.InjectTOC(ctx, page, pipeline.DefaultTOC())
			if err != nil {
				return nil, err
			}
		}
		page = css2html.InjectCSS(ctx, page, css)

		page, err = pipeline.RewriteRelativeLinks(page, s.LinkBase)
		if err != nil {
			return nil, err
		}
		return pipeline.Single(doc, page), nil
	}, nil
}

// printFunc renders each HTML file to PDF. Without an injected renderer a
// browser is launched on first use and closed by cleanup. The stamp is
// resolved once so every page of a run carries the same date.
func (r *Runner) printFunc(s config.Stage) (pipeline.Func, func(), error) {
	stamp, err := dateutil.Resolve(s.Stamp, r.now())
	if err != nil {
		return nil, noop, err
	}

	renderer := r.pdf
	cleanup := noop
	if renderer == nil {
		browser := newRodRenderer(r.timeout)
		renderer = browser
		cleanup = func() {
			if err := browser.Close(); err != nil {
				r.log.Warn().Err(err).Msg("closing browser")
			}
		}
	}

	return func(ctx context.Context, doc pipeline.Document) ([]pipeline.Output, error) {
		data, err := renderer.RenderFile(ctx, doc.Path, stamp)
		if err != nil {
			return nil, err
		}
		return []pipeline.Output{{Path: doc.OutName, Data: data}}, nil
	}, cleanup, nil
}

func warnMismatches(log zerolog.Logger, name string, mismatches []footnote.Mismatch) {
	for _, m := range mismatches {
		log.Warn().
			Str("file", name).
			Str("open", m.Open).
			Str("close", m.Close).
			Msg("footnote numbers differ, keeping the opening number")
	}
}
