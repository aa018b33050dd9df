package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-justel/internal/assets"
	"github.com/alnah/go-justel/internal/dateutil"
	"github.com/alnah/go-justel/internal/fileutil"
	"github.com/alnah/go-justel/internal/replace"
	"github.com/alnah/go-justel/internal/textenc"
	"github.com/alnah/go-justel/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrUnknownStage    = errors.New("unknown stage kind")
	ErrInvalidStage    = errors.New("invalid stage")
)

// Field length limits.
const (
	MaxNameLength   = 100  // Stage name
	MaxPathLength   = 4096 // PATH_MAX on Linux
	MaxExtLength    = 20   // ".md", ".html"
	MaxMarkerLength = 200  // Delimiter or erase marker
	MaxRuleLength   = 2000 // One side of a replacement rule
	MaxStyleLength  = 100  // Preview style name
	MaxLangLength   = 35   // BCP 47 tag
	MaxHeadings     = 50   // End-of-text headings for split
	MaxStampLength  = 100  // Print footer stamp
)

// Kind selects the transform a stage runs.
type Kind string

// Stage kinds.
const (
	KindErase   Kind = "erase"   // delete marker-delimited sequences
	KindReplace Kind = "replace" // ordered literal replacements
	KindHTML2MD Kind = "html2md" // HTML to Markdown conversion
	KindSplit   Kind = "split"   // split a document by section headings
	KindRender  Kind = "render"  // Markdown to HTML preview
	KindPrint   Kind = "print"   // HTML preview to PDF
	KindExtract Kind = "extract" // Markdown to a structured JSON record
	KindFilter  Kind = "filter"  // keep JSON records with a document hierarchy
)

// Kinds lists every stage kind in documentation order.
func Kinds() []Kind {
	return []Kind{KindErase, KindReplace, KindHTML2MD, KindSplit, KindRender, KindPrint, KindExtract, KindFilter}
}

// Default extensions per kind, used when a stage leaves ext/outExt empty.
var defaultExt = map[Kind][2]string{
	KindErase:   {".txt", ""},
	KindReplace: {".md", ""},
	KindHTML2MD: {".txt", ".md"},
	KindSplit:   {".md", ""},
	KindRender:  {".md", ".html"},
	KindPrint:   {".html", ".pdf"},
	KindExtract: {".md", ".json"},
	KindFilter:  {".json", ""},
}

// Config holds a pipeline definition.
type Config struct {
	BaseDir string  `yaml:"baseDir"` // Root for relative stage paths (default: ".")
	LogDir  string  `yaml:"logDir"`  // Root for relative log paths (default: BaseDir)
	Stages  []Stage `yaml:"stages"`
}

// Stage describes one batch step: read Input, transform, write Output.
type Stage struct {
	Name      string `yaml:"name"`
	Kind      Kind   `yaml:"kind"`
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`
	Ext       string `yaml:"ext"`       // Input extension filter (default per kind)
	OutExt    string `yaml:"outExt"`    // Output extension (empty = keep input name)
	Log       string `yaml:"log"`       // Audit log file (empty = no audit log)
	Encoding  string `yaml:"encoding"`  // Input charset (default: utf-8)
	Normalize string `yaml:"normalize"` // Unicode form applied after decoding (e.g. "nfc")

	Protect Delimiters `yaml:"protect"` // Spans hidden from the transform
	Erase   Delimiters `yaml:"erase"`   // Markers removed by erase stages

	Rules        RuleList `yaml:"rules"`        // Replace stages
	FixFootnotes bool     `yaml:"fixFootnotes"` // Rewrite "[N] body][N]" before the rules

	PreserveTables bool   `yaml:"preserveTables"` // HTML2MD stages: leave table markers, write preserved_tables/<stem>_tables.json
	Tables         string `yaml:"tables"`         // Render and extract stages: sidecar directory to fill table markers from

	Split   SplitConfig `yaml:"split"`   // Split and extract stages
	Samples int         `yaml:"samples"` // Filter stages: sample names per category
	Style   string      `yaml:"style"`   // Render stages: preview CSS name

	TOC      bool   `yaml:"toc"`      // Render stages: prepend a table of contents
	LinkBase string `yaml:"linkBase"` // Render stages: base URL or directory for relative links
	Lang     string `yaml:"lang"`     // Render and extract stages: document language (default: fr)

	Stamp string `yaml:"stamp"` // Print stages: footer text, "auto" or "auto:FORMAT" for the date
}

// Delimiters is a start/end marker pair.
type Delimiters struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// IsZero reports whether neither marker is set.
func (d Delimiters) IsZero() bool {
	return d.Start == "" && d.End == ""
}

// SplitConfig names the headings that cut a document into sections.
type SplitConfig struct {
	Title    string   `yaml:"title"`    // default: "## Titre"
	Contents string   `yaml:"contents"` // default: "## Table des matières"
	Text     string   `yaml:"text"`     // default: "## Texte"
	End      []string `yaml:"end"`      // Headings that close the text section
}

// DefaultSplit returns the JUSTEL French section headings.
func DefaultSplit() SplitConfig {
	return SplitConfig{
		Title:    "## Titre",
		Contents: "## Table des matières",
		Text:     "## Texte",
		End: []string{
			"## Signatures",
			"## Préambule",
			"## Fiche des modifications",
			"## Liens",
			"## Lien externe",
			"## Liens externes",
			"## Travaux parlementaires",
		},
	}
}

// WithDefaults fills empty headings from DefaultSplit.
func (s SplitConfig) WithDefaults() SplitConfig {
	d := DefaultSplit()
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.Contents == "" {
		s.Contents = d.Contents
	}
	if s.Text == "" {
		s.Text = d.Text
	}
	if s.End == nil {
		s.End = d.End
	}
	return s
}

// RuleList is an ordered set of replacement rules. In YAML it is either a
// mapping (applied in document order) or a list of {old, new} pairs.
type RuleList []replace.Rule

// Rules converts the list for the replacement engine.
func (r RuleList) Rules() replace.Rules {
	return replace.Rules(r)
}

// UnmarshalYAML decodes a mapping in document order, or a list of pairs.
func (r *RuleList) UnmarshalYAML(unmarshal func(any) error) error {
	if ordered, err := yamlutil.OrderedPairs(unmarshal); err == nil {
		rules := make(RuleList, 0, len(ordered))
		for _, p := range ordered {
			rules = append(rules, replace.Rule{Old: p.Key, New: p.Value})
		}
		*r = rules
		return nil
	}

	var pairs []replace.Rule
	if err := unmarshal(&pairs); err != nil {
		return fmt.Errorf("rules: expected a mapping or a list of {old, new}: %w", err)
	}
	*r = pairs
	return nil
}

// InputExt returns the stage input extension, falling back to the kind default.
func (s Stage) InputExt() string {
	if s.Ext != "" {
		return s.Ext
	}
	return defaultExt[s.Kind][0]
}

// OutputExt returns the stage output extension, falling back to the kind default.
func (s Stage) OutputExt() string {
	if s.OutExt != "" {
		return s.OutExt
	}
	return defaultExt[s.Kind][1]
}

// InputDir resolves the stage input directory against BaseDir.
func (c *Config) InputDir(s Stage) string {
	return c.resolve(c.BaseDir, s.Input)
}

// OutputDir resolves the stage output directory against BaseDir.
func (c *Config) OutputDir(s Stage) string {
	return c.resolve(c.BaseDir, s.Output)
}

// TablesDir resolves the stage's table sidecar directory against BaseDir.
// Empty means table markers are left as they are.
func (c *Config) TablesDir(s Stage) string {
	return c.resolve(c.BaseDir, s.Tables)
}

// LogPath resolves the stage audit log against LogDir. Empty means no log.
func (c *Config) LogPath(s Stage) string {
	if s.Log == "" {
		return ""
	}
	dir := c.LogDir
	if dir != "" && !filepath.IsAbs(dir) {
		dir = c.resolve(c.BaseDir, dir)
	}
	if dir == "" {
		dir = c.BaseDir
	}
	return c.resolve(dir, s.Log)
}

func (c *Config) resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// Stage returns the stage with the given name.
func (c *Config) Stage(name string) (Stage, bool) {
	for _, s := range c.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// Validate checks names, kinds, required fields and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if len(c.Stages) == 0 {
		return fmt.Errorf("%w: no stages defined", ErrInvalidStage)
	}
	if err := validateFieldLength("baseDir", c.BaseDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("logDir", c.LogDir, MaxPathLength); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Stages))
	for i, s := range c.Stages {
		if s.Name == "" {
			return fmt.Errorf("%w: stages[%d]: name is required", ErrInvalidStage, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate stage name %q", ErrInvalidStage, s.Name)
		}
		seen[s.Name] = true

		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single stage.
func (s Stage) Validate() error {
	field := func(name string) string { return fmt.Sprintf("stages[%s].%s", s.Name, name) }

	if err := validateFieldLength(field("name"), s.Name, MaxNameLength); err != nil {
		return err
	}
	if _, ok := defaultExt[s.Kind]; !ok {
		names := make([]string, 0, len(defaultExt))
		for _, k := range Kinds() {
			names = append(names, string(k))
		}
		return fmt.Errorf("%w: %s: %q (want one of %s)", ErrUnknownStage, field("kind"), s.Kind, strings.Join(names, ", "))
	}
	if s.Input == "" || s.Output == "" {
		return fmt.Errorf("%w: %s: input and output are required", ErrInvalidStage, s.Name)
	}
	if filepath.Clean(s.Input) == filepath.Clean(s.Output) {
		return fmt.Errorf("%w: %s: input and output must differ", ErrInvalidStage, s.Name)
	}

	for name, value := range map[string]string{"input": s.Input, "output": s.Output, "log": s.Log, "tables": s.Tables} {
		if err := validateFieldLength(field(name), value, MaxPathLength); err != nil {
			return err
		}
	}
	for name, value := range map[string]string{"ext": s.Ext, "outExt": s.OutExt} {
		if err := validateFieldLength(field(name), value, MaxExtLength); err != nil {
			return err
		}
		if strings.ContainsAny(value, "/\\\x00") {
			return fmt.Errorf("%w: %s: %q contains a path separator", ErrInvalidStage, field(name), value)
		}
	}

	if _, err := textenc.Canonical(s.Encoding); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidStage, field("encoding"), err)
	}
	if !textenc.ValidForm(s.Normalize) {
		return fmt.Errorf("%w: %s: unsupported form %q", ErrInvalidStage, field("normalize"), s.Normalize)
	}

	if err := validateDelimiters(field("protect"), s.Protect); err != nil {
		return err
	}
	if err := validateDelimiters(field("erase"), s.Erase); err != nil {
		return err
	}

	switch s.Kind {
	case KindErase:
		if s.Erase.IsZero() {
			return fmt.Errorf("%w: %s: erase markers are required", ErrInvalidStage, s.Name)
		}
	case KindReplace:
		if len(s.Rules) == 0 && !s.FixFootnotes {
			return fmt.Errorf("%w: %s: rules or fixFootnotes are required", ErrInvalidStage, s.Name)
		}
		for i, r := range s.Rules {
			if r.Old == "" {
				return fmt.Errorf("%w: %s: rules[%d]: old value is empty", ErrInvalidStage, s.Name, i)
			}
			if err := validateFieldLength(fmt.Sprintf("%s[%d].old", field("rules"), i), r.Old, MaxRuleLength); err != nil {
				return err
			}
			if err := validateFieldLength(fmt.Sprintf("%s[%d].new", field("rules"), i), r.New, MaxRuleLength); err != nil {
				return err
			}
		}
	case KindSplit, KindExtract:
		if err := validateFieldLength(field("lang"), s.Lang, MaxLangLength); err != nil {
			return err
		}
		if len(s.Split.End) > MaxHeadings {
			return fmt.Errorf("%w: %s (%d headings, max %d)", ErrFieldTooLong, field("split.end"), len(s.Split.End), MaxHeadings)
		}
		for i, h := range s.Split.End {
			if err := validateFieldLength(fmt.Sprintf("%s[%d]", field("split.end"), i), h, MaxMarkerLength); err != nil {
				return err
			}
		}
	case KindPrint:
		if err := validateFieldLength(field("stamp"), s.Stamp, MaxStampLength); err != nil {
			return err
		}
		if _, err := dateutil.Resolve(s.Stamp, time.Time{}); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidStage, field("stamp"), err)
		}
	case KindFilter:
		if s.Samples < 0 {
			return fmt.Errorf("%w: %s: samples must be >= 0", ErrInvalidStage, s.Name)
		}
	case KindRender:
		if err := validateFieldLength(field("style"), s.Style, MaxStyleLength); err != nil {
			return err
		}
		if err := validateFieldLength(field("linkBase"), s.LinkBase, MaxPathLength); err != nil {
			return err
		}
		if err := validateFieldLength(field("lang"), s.Lang, MaxLangLength); err != nil {
			return err
		}
	}
	return nil
}

// validateDelimiters requires both markers or neither.
func validateDelimiters(fieldName string, d Delimiters) error {
	if (d.Start == "") != (d.End == "") {
		return fmt.Errorf("%w: %s: start and end must both be set", ErrInvalidStage, fieldName)
	}
	if err := validateFieldLength(fieldName+".start", d.Start, MaxMarkerLength); err != nil {
		return err
	}
	return validateFieldLength(fieldName+".end", d.End, MaxMarkerLength)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// Default returns the built-in JUSTEL pipeline.
func Default() (*Config, error) {
	data, err := assets.LoadPipeline(assets.DefaultPipelineName)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a pipeline definition.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = "."
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-justel/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-justel", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
