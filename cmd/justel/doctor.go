package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-justel/internal/assets"
	"github.com/alnah/go-justel/internal/config"
	"github.com/alnah/go-justel/internal/fileutil"
	"github.com/alnah/go-justel/internal/hints"
)

// Report sections, in print order.
const (
	sectionEnv      = "Environment"
	sectionPipeline = "Pipeline"
	sectionChrome   = "Chrome/Chromium"
	sectionSystem   = "System"
)

var reportSections = []string{sectionEnv, sectionPipeline, sectionChrome, sectionSystem}

type severity string

const (
	sevOK    severity = "ok"
	sevWarn  severity = "warn"
	sevError severity = "error"
)

var severityTag = map[severity]string{sevOK: "[OK]", sevWarn: "[WARN]", sevError: "[ERROR]"}

// finding is one line of the report.
type finding struct {
	Section  string   `json:"section"`
	Severity severity `json:"severity"`
	Message  string   `json:"message"`
}

// doctorResult is the report, as printed with --json.
type doctorResult struct {
	Status   string       `json:"status"` // ready, warnings or errors
	Env      envInfo      `json:"environment"`
	Pipeline pipelineInfo `json:"pipeline"`
	Chrome   chromeInfo   `json:"chrome"`
	Findings []finding    `json:"findings"`
}

type envInfo struct {
	OS        string   `json:"os"`
	Arch      string   `json:"arch"`
	Container string   `json:"container,omitempty"` // detection signal
	CI        bool     `json:"ci"`
	Unknown   []string `json:"unknown_vars,omitempty"`
}

type pipelineInfo struct {
	Source      string   `json:"source"`
	Stages      int      `json:"stages"`
	BaseDir     string   `json:"base_dir,omitempty"`
	NeedsChrome bool     `json:"needs_chrome"`
	Unfed       []string `json:"unfed_stages,omitempty"` // input missing and written by no stage
}

type chromeInfo struct {
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// doctor collects the findings of one report.
type doctor struct {
	env    *Environment
	getenv func(string) string
	res    doctorResult
}

func (d *doctor) note(section string, sev severity, format string, args ...any) {
	d.res.Findings = append(d.res.Findings, finding{
		Section:  section,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

// runDoctorCmd prints the report. Warnings alone exit 0; any error exits 1.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if isHelp(err) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	d := &doctor{env: env, getenv: os.Getenv}
	res := d.run(flags)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
	} else {
		res.print(env.Stdout)
	}

	if res.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

func (d *doctor) run(flags *doctorFlags) *doctorResult {
	d.checkEnvironment()
	cfg := d.checkPipeline(flags)
	d.checkChrome()
	d.checkSystem(cfg)

	d.res.Status = "ready"
	for _, f := range d.res.Findings {
		switch f.Severity {
		case sevError:
			d.res.Status = "errors"
			return &d.res
		case sevWarn:
			d.res.Status = "warnings"
		}
	}
	return &d.res
}

func (d *doctor) checkEnvironment() {
	e := &d.res.Env
	e.OS, e.Arch = runtime.GOOS, runtime.GOARCH
	d.note(sectionEnv, sevOK, "Platform: %s/%s", e.OS, e.Arch)

	if ok, signal := isContainer(); ok {
		e.Container = signal
		d.note(sectionEnv, sevOK, "Container: detected (%s)", signal)
	}
	e.CI = hints.Env{Getenv: d.getenv}.CI()
	if e.CI {
		d.note(sectionEnv, sevOK, "CI: detected")
	}

	e.Unknown = unknownEnvVars(os.Environ())
	for _, name := range e.Unknown {
		d.note(sectionEnv, sevWarn, "Unknown variable %s (typo?)", name)
	}
}

// isContainer reports whether we run in a container, and which signal
// gave it away.
func isContainer() (bool, string) {
	if os.Getenv("JUSTEL_CONTAINER") == "1" {
		return true, "JUSTEL_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkPipeline loads the pipeline a plain "justel run --all" would use and
// checks that every stage can find its input and style.
func (d *doctor) checkPipeline(flags *doctorFlags) *config.Config {
	envCfg := loadEnvConfig()
	p := &d.res.Pipeline
	p.Source = flags.common.config
	if p.Source == "" {
		p.Source = envCfg.ConfigPath
	}
	if p.Source == "" {
		p.Source = "built-in"
	}

	loader, err := resolveLoader(flags.paths.assetPath, d.env)
	if err != nil {
		d.note(sectionPipeline, sevError, "Assets: %v", err)
		return nil
	}
	defer closeLoader(loader)

	cfg, err := loadPipeline(flags.common.config, envCfg, flags.paths, loader)
	if err != nil {
		d.note(sectionPipeline, sevError, "%s: %v", p.Source, err)
		return nil
	}
	p.Stages, p.BaseDir = len(cfg.Stages), cfg.BaseDir
	d.note(sectionPipeline, sevOK, "%s: %d stages, baseDir %s", p.Source, p.Stages, p.BaseDir)

	for _, s := range cfg.Stages {
		switch s.Kind {
		case config.KindPrint:
			p.NeedsChrome = true
		case config.KindRender:
			d.checkStyle(loader, s)
		}
		if !fileutil.DirExists(cfg.InputDir(s)) && producerOf(cfg, s) == "" {
			p.Unfed = append(p.Unfed, s.Name)
			d.note(sectionPipeline, sevWarn, "Stage %s reads %s, which is missing and written by no stage",
				s.Name, cfg.InputDir(s))
		}
	}
	return cfg
}

func (d *doctor) checkStyle(loader assets.AssetLoader, s config.Stage) {
	name := s.Style
	if name == "" {
		name = assets.DefaultStyleName
	}
	if _, err := loader.LoadStyle(name); err != nil {
		d.note(sectionPipeline, sevError, "Stage %s: %v%s", s.Name, err, hints.ForAvailable(assets.BuiltinStyles()))
	}
}

// checkChrome looks for a browser. A missing one only matters when the
// pipeline has print stages.
func (d *doctor) checkChrome() {
	needed := d.res.Pipeline.NeedsChrome
	missing, hint := sevOK, ""
	if needed {
		missing = sevWarn
		hint = hints.ForBrowserConnect(hints.Env{Getenv: d.getenv, Container: d.res.Env.Container != ""})
	}

	path := d.getenv("ROD_BROWSER_BIN")
	if path == "" {
		var found bool
		if path, found = launcher.LookPath(); !found {
			d.note(sectionChrome, missing, "Not found, PDF previews unavailable%s", hint)
			return
		}
	}
	if !fileutil.FileExists(path) {
		sev := sevWarn
		if needed {
			sev = sevError
		}
		d.note(sectionChrome, sev, "ROD_BROWSER_BIN points to %s, which does not exist", path)
		return
	}

	c := &d.res.Chrome
	c.Path = path
	d.note(sectionChrome, sevOK, "Found at %s", path)

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err != nil {
		d.note(sectionChrome, sevWarn, "Could not get version: %v", err)
	} else {
		c.Version = strings.TrimSpace(string(out))
		d.note(sectionChrome, sevOK, "Version: %s", c.Version)
	}

	c.Sandbox = d.getenv("ROD_NO_SANDBOX") != "1"
	switch {
	case !c.Sandbox:
		d.note(sectionChrome, sevOK, "Sandbox: disabled (ROD_NO_SANDBOX=1)")
	case needed && (d.res.Env.Container != "" || d.res.Env.CI):
		d.note(sectionChrome, sevWarn, "Sandbox: enabled in a container/CI, set ROD_NO_SANDBOX=1")
	default:
		d.note(sectionChrome, sevOK, "Sandbox: enabled")
	}
}

// checkSystem makes sure temp files and stage outputs can be written.
func (d *doctor) checkSystem(cfg *config.Config) {
	if err := checkWritable(os.TempDir()); err != nil {
		d.note(sectionSystem, sevError, "Temp directory not writable: %v", err)
	} else {
		d.note(sectionSystem, sevOK, "Temp directory: writable")
	}
	if cfg == nil {
		return
	}

	switch {
	case !fileutil.DirExists(cfg.BaseDir):
		d.note(sectionSystem, sevWarn, "Base directory %s does not exist", cfg.BaseDir)
	case checkWritable(cfg.BaseDir) != nil:
		d.note(sectionSystem, sevError, "Base directory %s not writable", cfg.BaseDir)
	default:
		d.note(sectionSystem, sevOK, "Base directory: writable")
	}
}

// checkWritable creates and removes a hidden file in dir.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".justel-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func (r *doctorResult) print(w io.Writer) {
	fmt.Fprintln(w, "justel doctor")
	for _, section := range reportSections {
		fmt.Fprintf(w, "\n%s\n", section)
		for _, f := range r.Findings {
			if f.Section == section {
				fmt.Fprintf(w, "  %s %s\n", severityTag[f.Severity], f.Message)
			}
		}
	}
	fmt.Fprintln(w)

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to run")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	default:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
