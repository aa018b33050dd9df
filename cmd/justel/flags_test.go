package main

import (
	"errors"
	"io"
	"slices"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestParseRunFlags
// ---------------------------------------------------------------------------

func TestParseRunFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		wantNames []string
		wantErr   error
		check     func(t *testing.T, f *runFlags)
	}{
		{
			name:      "stage names keep their order",
			args:      []string{"MD2", "MD0", "MD1"},
			wantNames: []string{"MD2", "MD0", "MD1"},
		},
		{
			name: "all with options",
			args: []string{"-a", "--strict", "-t", "45s", "--metrics-file", "out.prom", "--json-logs", "-c", "custom"},
			check: func(t *testing.T, f *runFlags) {
				if !f.all || !f.strict || !f.jsonLogs {
					t.Errorf("all/strict/jsonLogs = %v/%v/%v", f.all, f.strict, f.jsonLogs)
				}
				if f.timeout != 45*time.Second {
					t.Errorf("timeout = %v, want 45s", f.timeout)
				}
				if f.metricsFile != "out.prom" || f.common.config != "custom" {
					t.Errorf("metricsFile = %q, config = %q", f.metricsFile, f.common.config)
				}
			},
		},
		{
			name:      "path overrides",
			args:      []string{"MD3", "--base-dir", "/data", "--log-dir", "/logs", "--asset-path", "/assets"},
			wantNames: []string{"MD3"},
			check: func(t *testing.T, f *runFlags) {
				if f.paths != (pathFlags{baseDir: "/data", logDir: "/logs", assetPath: "/assets"}) {
					t.Errorf("paths = %+v", f.paths)
				}
			},
		},
		{name: "nothing to run", args: nil, wantErr: ErrUsage},
		{name: "all and names", args: []string{"--all", "MD0"}, wantErr: ErrUsage},
		{name: "negative timeout", args: []string{"--all", "--timeout", "-1s"}, wantErr: ErrUsage},
		{name: "bad duration", args: []string{"--all", "--timeout", "soon"}, wantErr: ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, names, err := parseRunFlags(tt.args, io.Discard)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(names, tt.wantNames) {
				t.Errorf("names = %v, want %v", names, tt.wantNames)
			}
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParseFilterFlags
// ---------------------------------------------------------------------------

func TestParseFilterFlags(t *testing.T) {
	t.Parallel()

	f, src, dst, err := parseFilterFlags([]string{"in", "out", "-n", "3", "-q"}, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src != "in" || dst != "out" || f.samples != 3 || !f.common.quiet {
		t.Errorf("got src=%q dst=%q samples=%d quiet=%v", src, dst, f.samples, f.common.quiet)
	}

	for _, args := range [][]string{{"in"}, {"in", "out", "extra"}, {"in", "out", "-n", "-2"}} {
		if _, _, _, err := parseFilterFlags(args, io.Discard); !errors.Is(err, ErrUsage) {
			t.Errorf("parseFilterFlags(%v) error = %v, want ErrUsage", args, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestParseStagesFlags
// ---------------------------------------------------------------------------

func TestParseStagesFlags(t *testing.T) {
	t.Parallel()

	if _, err := parseStagesFlags([]string{"MD1"}, io.Discard); !errors.Is(err, ErrUsage) {
		t.Errorf("positional argument: error = %v, want ErrUsage", err)
	}

	_, err := parseStagesFlags([]string{"--help"}, io.Discard)
	if !isHelp(err) {
		t.Errorf("--help: error = %v, want flag.ErrHelp", err)
	}
}
