package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// ErrUsage wraps invalid command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pathFlags override the pipeline roots.
type pathFlags struct {
	baseDir   string
	logDir    string
	assetPath string
}

// runFlags holds flags for the run command.
type runFlags struct {
	common      commonFlags
	paths       pathFlags
	all         bool
	strict      bool
	metricsFile string
	timeout     time.Duration
	jsonLogs    bool
}

// stagesFlags holds flags for the stages command.
type stagesFlags struct {
	common commonFlags
	paths  pathFlags
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	paths  pathFlags
	json   bool
}

// filterFlags holds flags for the filter command.
type filterFlags struct {
	common  commonFlags
	samples int
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "pipeline name or path (default: built-in justel)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addPathFlags adds pipeline root overrides to a FlagSet.
func addPathFlags(fs *flag.FlagSet, f *pathFlags) {
	fs.StringVar(&f.baseDir, "base-dir", "", "root for relative stage paths")
	fs.StringVar(&f.logDir, "log-dir", "", "root for relative audit log paths")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory (styles/, pipelines/)")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting and
// prints usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseRunFlags parses run command flags and returns the stage names.
func parseRunFlags(args []string, w io.Writer) (*runFlags, []string, error) {
	f := &runFlags{}
	fs := newFlagSet("run", w, printRunUsage)
	fs.BoolVarP(&f.all, "all", "a", false, "run every stage in order")
	fs.BoolVar(&f.strict, "strict", false, "exit 1 when any file failed")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "page load timeout for print stages (e.g., 30s, 2m)")
	fs.BoolVar(&f.jsonLogs, "json-logs", false, "log as JSON lines instead of console text")
	addCommonFlags(fs, &f.common)
	addPathFlags(fs, &f.paths)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	names := fs.Args()

	switch {
	case f.all && len(names) > 0:
		return nil, nil, fmt.Errorf("%w: --all cannot be combined with stage names", ErrUsage)
	case !f.all && len(names) == 0:
		return nil, nil, fmt.Errorf("%w: name at least one stage or use --all", ErrUsage)
	case f.timeout < 0:
		return nil, nil, fmt.Errorf("%w: --timeout must be positive", ErrUsage)
	}
	return f, names, nil
}

// parseStagesFlags parses stages command flags.
func parseStagesFlags(args []string, w io.Writer) (*stagesFlags, error) {
	f := &stagesFlags{}
	fs := newFlagSet("stages", w, printStagesUsage)
	addCommonFlags(fs, &f.common)
	addPathFlags(fs, &f.paths)

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, w io.Writer) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor", w, printDoctorUsage)
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	addCommonFlags(fs, &f.common)
	addPathFlags(fs, &f.paths)

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

// parseFilterFlags parses filter command flags and returns source and destination.
func parseFilterFlags(args []string, w io.Writer) (*filterFlags, string, string, error) {
	f := &filterFlags{}
	fs := newFlagSet("filter", w, printFilterUsage)
	fs.IntVarP(&f.samples, "samples", "n", 0, "sample names shown per category (default: 5)")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, "", "", usageError(err)
	}
	if fs.NArg() != 2 {
		return nil, "", "", fmt.Errorf("%w: filter needs <source> and <destination>", ErrUsage)
	}
	if f.samples < 0 {
		return nil, "", "", fmt.Errorf("%w: --samples must be >= 0", ErrUsage)
	}
	return f, fs.Arg(0), fs.Arg(1), nil
}

// usageError keeps flag.ErrHelp recognizable and marks anything else as usage.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

func isHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
