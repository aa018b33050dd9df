package justel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-justel/internal/assets"
	"github.com/alnah/go-justel/internal/config"
	"github.com/alnah/go-justel/internal/hierarchy"
	"github.com/alnah/go-justel/internal/logging"
	"github.com/alnah/go-justel/internal/metrics"
	"github.com/alnah/go-justel/internal/pipeline"
)

// Runner executes the stages of a pipeline definition.
type Runner struct {
	cfg     *config.Config
	log     zerolog.Logger
	stdout  io.Writer
	metrics *metrics.Metrics
	assets  assets.AssetLoader
	timeout time.Duration
	now     func() time.Time

	// pdf is an injected renderer shared by every print stage. When nil,
	// each print stage launches and closes its own browser.
	pdf PDFRenderer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for stage and per-file reports.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// WithStdout sets the writer for progress lines and stage summaries.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) {
		r.stdout = w
	}
}

// WithMetrics records stage counters in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithPDFRenderer replaces headless Chrome for print stages.
// The Runner takes ownership of p: Runner.Close closes it.
func WithPDFRenderer(p PDFRenderer) Option {
	return func(r *Runner) {
		r.pdf = p
	}
}

// WithAssetLoader sets where render stages load their style from.
func WithAssetLoader(l assets.AssetLoader) Option {
	return func(r *Runner) {
		r.assets = l
	}
}

// WithTimeout sets the per-page load timeout for print stages.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithClock sets the clock used for print footer date stamps and extraction dates.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New validates cfg and returns a Runner for it.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidStage)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:     cfg,
		log:     zerolog.Nop(),
		stdout:  io.Discard,
		assets:  assets.NewEmbeddedLoader(),
		timeout: defaultPageTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Stages returns the configured stages in run order.
func (r *Runner) Stages() []config.Stage {
	return append([]config.Stage(nil), r.cfg.Stages...)
}

// Close releases the injected PDF renderer, if any.
func (r *Runner) Close() error {
	if r.pdf != nil {
		return r.pdf.Close()
	}
	return nil
}

// StageReport summarizes one stage run.
type StageReport struct {
	Name string
	Kind config.Kind

	// Batch is set for every kind except filter.
	Batch *pipeline.Result

	// Filter is set for filter stages.
	Filter *hierarchy.Summary

	Erased       int // sequences removed by erase stages
	Replacements int // rules logged by replace stages
	Mismatches   int // footnote numbering mismatches
	Logged       int // entries appended to the stage's audit log
	Articles     int // articles found by extract stages
	Duration     time.Duration
}

// Failed reports how many files failed, whatever the kind.
func (s *StageReport) Failed() int {
	switch {
	case s.Batch != nil:
		return s.Batch.Failed
	case s.Filter != nil:
		return s.Filter.Errors
	}
	return 0
}

// RunStage runs the stage with the given name. Per-file failures are
// reported in the StageReport; the returned error is reserved for failures
// that stop the whole stage.
func (r *Runner) RunStage(ctx context.Context, name string) (*StageReport, error) {
	s, ok := r.cfg.Stage(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStageNotFound, name)
	}

	log := logging.ForStage(r.log, s.Name, string(s.Kind))
	log.Info().
		Str("input", r.cfg.InputDir(s)).
		Str("output", r.cfg.OutputDir(s)).
		Msg("stage started")

	start := time.Now()
	rep := &StageReport{Name: s.Name, Kind: s.Kind}

	var err error
	if s.Kind == config.KindFilter {
		err = r.runFilter(ctx, s, rep, log)
	} else {
		err = r.runBatch(ctx, s, rep, log)
	}
	rep.Duration = time.Since(start)

	r.record(rep)
	if err != nil {
		return rep, fmt.Errorf("stage %s: %w", s.Name, err)
	}

	r.printSummary(rep)
	log.Info().
		Int("failed", rep.Failed()).
		Dur("duration", rep.Duration).
		Msg("stage finished")
	return rep, nil
}

// RunAll runs every stage in order and stops at the first stage-level
// error. Reports for the stages that ran are returned either way.
func (r *Runner) RunAll(ctx context.Context) ([]*StageReport, error) {
	return r.RunStages(ctx, nil)
}

// RunStages runs the named stages in the given order, or every stage when
// names is empty.
func (r *Runner) RunStages(ctx context.Context, names []string) ([]*StageReport, error) {
	if len(names) == 0 {
		for _, s := range r.cfg.Stages {
			names = append(names, s.Name)
		}
	}
	for _, name := range names {
		if _, ok := r.cfg.Stage(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrStageNotFound, name)
		}
	}

	reports := make([]*StageReport, 0, len(names))
	for _, name := range names {
		rep, err := r.RunStage(ctx, name)
		if rep != nil {
			reports = append(reports, rep)
		}
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (r *Runner) runBatch(ctx context.Context, s config.Stage, rep *StageReport, log zerolog.Logger) error {
	audit, err := pipeline.OpenAuditLog(r.cfg.LogPath(s))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := audit.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing audit log")
		}
	}()

	fn, cleanup, err := r.stageFunc(s, rep, audit, log)
	if err != nil {
		return err
	}
	defer cleanup()

	b := pipeline.Batch{
		Input:     r.cfg.InputDir(s),
		Output:    r.cfg.OutputDir(s),
		Ext:       s.InputExt(),
		OutExt:    s.OutputExt(),
		Encoding:  s.Encoding,
		Normalize: s.Normalize,
	}
	res, err := b.Run(ctx, fn, pipeline.Options{Logger: log, Progress: r.stdout})
	rep.Batch = res
	rep.Logged = audit.Entries()
	return err
}

func (r *Runner) runFilter(ctx context.Context, s config.Stage, rep *StageReport, log zerolog.Logger) error {
	dest := r.cfg.OutputDir(s)
	sum, err := hierarchy.Filter(ctx, hierarchy.Options{
		Source:  r.cfg.InputDir(s),
		Dest:    dest,
		Samples: s.Samples,
		Progress: func(done, total int) {
			fmt.Fprintf(r.stdout, "Processed %d/%d (%.2f%%)\n", done, total, float64(done)/float64(total)*100)
		},
		OnError: func(name string, err error) {
			log.Error().Str("file", name).Err(err).Msg("skipping " + name)
		},
	})
	rep.Filter = sum
	if err != nil {
		if errors.Is(err, hierarchy.ErrSourceNotFound) {
			return fmt.Errorf("%w: %w", pipeline.ErrInputNotFound, err)
		}
		return err
	}
	sum.WriteReport(r.stdout, dest)
	return nil
}

// record feeds the report into the metrics registry. Nil metrics are a no-op.
func (r *Runner) record(rep *StageReport) {
	m := r.metrics
	switch {
	case rep.Batch != nil:
		m.ObserveStage(rep.Name, rep.Batch.Processed, rep.Batch.Failed, rep.Batch.Skipped, rep.Duration)
	case rep.Filter != nil:
		m.ObserveStage(rep.Name, rep.Filter.Valid, rep.Filter.Errors, rep.Filter.Invalid-rep.Filter.Errors, rep.Duration)
	default:
		m.ObserveStage(rep.Name, 0, 0, 0, rep.Duration)
	}
	m.AddErased(rep.Name, rep.Erased)
	m.AddReplacements(rep.Name, rep.Replacements)
	m.AddMismatches(rep.Name, rep.Mismatches)
}

func (r *Runner) printSummary(rep *StageReport) {
	if rep.Batch == nil {
		return
	}
	b := rep.Batch
	fmt.Fprintf(r.stdout, "%s: %d processed, %d failed, %d skipped in %s",
		rep.Name, b.Processed, b.Failed, b.Skipped, rep.Duration.Round(time.Millisecond))
	if rep.Logged > 0 {
		fmt.Fprintf(r.stdout, ", %d audit entries", rep.Logged)
	}
	if rep.Articles > 0 {
		fmt.Fprintf(r.stdout, ", %d articles", rep.Articles)
	}
	fmt.Fprintln(r.stdout)
}
