package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	justel "github.com/alnah/go-justel"
	"github.com/alnah/go-justel/internal/assets"
	"github.com/alnah/go-justel/internal/config"
	"github.com/alnah/go-justel/internal/fileutil"
	"github.com/alnah/go-justel/internal/hierarchy"
	"github.com/alnah/go-justel/internal/hints"
	"github.com/alnah/go-justel/internal/logging"
	"github.com/alnah/go-justel/internal/metrics"
	"github.com/alnah/go-justel/internal/pipeline"
)

// ErrFilesFailed is returned by run --strict when any file failed.
var ErrFilesFailed = errors.New("some files failed")

// runRun executes the named stages, or all of them with --all.
func runRun(ctx context.Context, args []string, env *Environment) error {
	flags, names, err := parseRunFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	loader, err := resolveLoader(flags.paths.assetPath, env)
	if err != nil {
		return err
	}
	defer closeLoader(loader)
	cfg, err := loadPipeline(flags.common.config, envCfg, flags.paths, loader)
	if err != nil {
		return err
	}

	log := newLogger(flags.common, !flags.jsonLogs, env.Stderr)
	stdout := env.Stdout
	if flags.common.quiet {
		stdout = io.Discard
	}

	m := metrics.New()
	opts := []justel.Option{
		justel.WithLogger(log),
		justel.WithStdout(stdout),
		justel.WithMetrics(m),
		justel.WithAssetLoader(loader),
	}
	if flags.timeout > 0 {
		opts = append(opts, justel.WithTimeout(flags.timeout))
	}
	runner, err := justel.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = runner.Close() }()

	start := env.Now()
	reports, runErr := runner.RunStages(ctx, names)

	metricsFile := flags.metricsFile
	if metricsFile == "" {
		metricsFile = envCfg.MetricsFile
	}
	if metricsFile != "" {
		if err := m.WriteTextfile(metricsFile); err != nil {
			log.Warn().Err(err).Str("path", metricsFile).Msg("metrics not written")
		}
	}

	failed := 0
	browserDown, slowPages := false, false
	for _, rep := range reports {
		failed += rep.Failed()
		if rep.Batch == nil {
			continue
		}
		for _, f := range rep.Batch.Failures {
			browserDown = browserDown || errors.Is(f, justel.ErrBrowserConnect)
			slowPages = slowPages || errors.Is(f, justel.ErrPageLoad)
		}
	}
	if browserDown {
		fmt.Fprintf(env.Stderr, "warning: %v%s\n", justel.ErrBrowserConnect, hints.ForBrowserConnect(browserEnv()))
	}
	if slowPages {
		fmt.Fprintf(env.Stderr, "warning: %v%s\n", justel.ErrPageLoad, hints.ForTimeout())
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "\n%d stage(s) run, %d file(s) failed in %s\n",
			len(reports), failed, env.Now().Sub(start).Round(time.Millisecond))
	}

	if runErr != nil {
		return withHints(runErr, cfg, reports)
	}
	if flags.strict && failed > 0 {
		if browserDown {
			return fmt.Errorf("%w: %d file(s): %w", ErrFilesFailed, failed, justel.ErrBrowserConnect)
		}
		return fmt.Errorf("%w: %d file(s)", ErrFilesFailed, failed)
	}
	return nil
}

// runStages lists the stages of a pipeline with their resolved directories.
func runStages(args []string, env *Environment) error {
	flags, err := parseStagesFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	loader, err := resolveLoader(flags.paths.assetPath, env)
	if err != nil {
		return err
	}
	defer closeLoader(loader)
	cfg, err := loadPipeline(flags.common.config, envCfg, flags.paths, loader)
	if err != nil {
		return err
	}

	for i, s := range cfg.Stages {
		fmt.Fprintf(env.Stdout, "%2d. %-14s %-8s %s -> %s\n",
			i+1, s.Name, s.Kind, cfg.InputDir(s), cfg.OutputDir(s))
		if flags.common.verbose {
			if log := cfg.LogPath(s); log != "" {
				fmt.Fprintf(env.Stdout, "    log: %s\n", log)
			}
			fmt.Fprintf(env.Stdout, "    ext: %s -> %s\n", s.InputExt(), displayExt(s.OutputExt()))
		}
	}
	return nil
}

// runFilter runs a one-off hierarchy filter without a pipeline file.
func runFilter(ctx context.Context, args []string, env *Environment) error {
	flags, src, dst, err := parseFilterFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	log := newLogger(flags.common, true, env.Stderr)
	stdout := env.Stdout
	if flags.common.quiet {
		stdout = io.Discard
	}

	sum, err := hierarchy.Filter(ctx, hierarchy.Options{
		Source:  src,
		Dest:    dst,
		Samples: flags.samples,
		Progress: func(done, total int) {
			fmt.Fprintf(stdout, "Processed %d/%d (%.2f%%)\n", done, total, float64(done)/float64(total)*100)
		},
		OnError: func(name string, err error) {
			log.Error().Str("file", name).Err(err).Msg("skipping " + name)
		},
	})
	if err != nil {
		return err
	}
	sum.WriteReport(stdout, dst)
	return nil
}

// resolveLoader returns the environment loader, or a resolver rooted at
// assetPath that falls back to the embedded assets.
func resolveLoader(assetPath string, env *Environment) (assets.AssetLoader, error) {
	if assetPath == "" {
		return env.AssetLoader, nil
	}
	r, err := assets.NewAssetResolver(assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return r, nil
}

// closeLoader releases loaders that hold a directory open.
func closeLoader(l assets.AssetLoader) {
	if c, ok := l.(io.Closer); ok {
		_ = c.Close()
	}
}

// loadPipeline resolves the pipeline definition: --config, then
// JUSTEL_CONFIG, then the built-in pipeline. A bare name that is not a file
// on disk is looked up among the bundled pipelines. Root overrides are
// applied in env-then-flag order and the result is revalidated.
func loadPipeline(name string, envCfg *envConfig, paths pathFlags, loader assets.AssetLoader) (*config.Config, error) {
	if name == "" {
		name = envCfg.ConfigPath
	}

	var cfg *config.Config
	var err error
	switch {
	case name == "":
		cfg, err = parseBundled(assets.DefaultPipelineName, loader)
	default:
		cfg, err = config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			if bundled, berr := parseBundled(name, loader); berr == nil {
				cfg, err = bundled, nil
			}
		}
	}
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(nil))
		}
		if errors.Is(err, assets.ErrPipelineNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForAvailable(assets.BuiltinPipelines()))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}

	applyEnvConfig(envCfg, cfg)
	if paths.baseDir != "" {
		cfg.BaseDir = paths.baseDir
	}
	if paths.logDir != "" {
		cfg.LogDir = paths.logDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseBundled(name string, loader assets.AssetLoader) (*config.Config, error) {
	data, err := loader.LoadPipeline(name)
	if err != nil {
		return nil, err
	}
	return config.Parse(data)
}

// newLogger builds the CLI logger: console text on stderr by default,
// debug with --verbose, errors only with --quiet.
func newLogger(f commonFlags, pretty bool, w io.Writer) zerolog.Logger {
	level := "info"
	switch {
	case f.verbose:
		level = "debug"
	case f.quiet:
		level = "error"
	}
	return logging.New(logging.Config{Level: level, Pretty: pretty, Output: w})
}

// withHints appends actionable hints for the stage that stopped the run.
func withHints(err error, cfg *config.Config, reports []*justel.StageReport) error {
	switch {
	case errors.Is(err, pipeline.ErrInputNotFound) && len(reports) > 0:
		failed, _ := cfg.Stage(reports[len(reports)-1].Name)
		return fmt.Errorf("%w%s", err, hints.ForInputNotFound(producerOf(cfg, failed)))
	case errors.Is(err, pipeline.ErrWriteOutput):
		return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
	case errors.Is(err, assets.ErrStyleNotFound):
		return fmt.Errorf("%w%s", err, hints.ForAvailable(assets.BuiltinStyles()))
	}
	return err
}

func browserEnv() hints.Env {
	inContainer, _ := isContainer()
	return hints.Env{Getenv: os.Getenv, Container: inContainer}
}

// producerOf returns the name of the stage whose output directory is s's
// input, or "" when no stage writes it.
func producerOf(cfg *config.Config, s config.Stage) string {
	want := filepath.Clean(cfg.InputDir(s))
	for _, other := range cfg.Stages {
		if other.Name != s.Name && filepath.Clean(cfg.OutputDir(other)) == want {
			return other.Name
		}
	}
	return ""
}

func displayExt(ext string) string {
	if ext == "" {
		return "(same)"
	}
	return ext
}
