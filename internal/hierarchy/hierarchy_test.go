package hierarchy

// Notes:
// - The CopyFile failure branch is not exercised: provoking it portably
//   needs an unwritable destination, which depends on the test runner's uid.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestCheck - Record validity
// ---------------------------------------------------------------------------

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantValid bool
		wantCount int
		wantErr   error
	}{
		{name: "non-empty array", data: `{"document_hierarchy": ["x"]}`, wantValid: true, wantCount: 1},
		{name: "nested objects", data: `{"document_hierarchy": [{"a":1},{"b":2}], "title": "t"}`, wantValid: true, wantCount: 2},
		{name: "empty array", data: `{"document_hierarchy": []}`},
		{name: "missing field", data: `{"title": "x"}`},
		{name: "field not an array", data: `{"document_hierarchy": "x"}`},
		{name: "field is object", data: `{"document_hierarchy": {"a": 1}}`},
		{name: "top-level array", data: `[{"document_hierarchy": ["x"]}]`},
		{name: "malformed", data: `{"document_hierarchy": [`, wantErr: ErrMalformedJSON},
		{name: "empty file", data: ``, wantErr: ErrMalformedJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Check([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Valid != tt.wantValid || v.Count != tt.wantCount {
				t.Errorf("Check() = %+v, want valid=%v count=%d", v, tt.wantValid, tt.wantCount)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFilter - Batch gate
// ---------------------------------------------------------------------------

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "valid_jsons")

	valid := "{\n  \"document_hierarchy\": [\"x\"],\n  \"id\": 1\n}\n"
	writeFiles(t, src, map[string]string{
		"a_empty.json":   `{"document_hierarchy": []}`,
		"b_broken.json":  `{not json`,
		"c_valid.json":   valid,
		"d_missing.json": `{"other": true}`,
		"notes.txt":      `{"document_hierarchy": ["ignored"]}`,
	})

	var errNames []string
	var progress []int
	s, err := Filter(context.Background(), Options{
		Source:   src,
		Dest:     dst,
		Progress: func(done, _ int) { progress = append(progress, done) },
		OnError:  func(name string, _ error) { errNames = append(errNames, name) },
	})
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}

	if s.Analyzed != 4 || s.Valid != 1 || s.Invalid != 3 || s.Errors != 1 {
		t.Errorf("summary = %+v, want analyzed=4 valid=1 invalid=3 errors=1", s)
	}
	if len(errNames) != 1 || errNames[0] != "b_broken.json" {
		t.Errorf("errors reported for %v, want [b_broken.json]", errNames)
	}
	if len(progress) != 4 || progress[3] != 4 {
		t.Errorf("progress = %v, want 1..4", progress)
	}

	// Valid record copied byte-for-byte, processed after the broken one.
	got, err := os.ReadFile(filepath.Join(dst, "c_valid.json"))
	if err != nil {
		t.Fatalf("valid file not copied: %v", err)
	}
	if string(got) != valid {
		t.Errorf("copied content = %q, want original bytes", got)
	}

	entries, _ := os.ReadDir(dst)
	if len(entries) != 1 {
		t.Errorf("destination has %d files, want 1", len(entries))
	}

	if len(s.ValidSamples) != 1 || s.ValidSamples[0].Name != "c_valid" || s.ValidSamples[0].Count != 1 {
		t.Errorf("ValidSamples = %+v", s.ValidSamples)
	}
	wantInvalid := []string{"a_empty", "b_broken", "d_missing"}
	if strings.Join(s.InvalidSamples, ",") != strings.Join(wantInvalid, ",") {
		t.Errorf("InvalidSamples = %v, want %v (sorted order)", s.InvalidSamples, wantInvalid)
	}
}

func TestFilter_SourceMissingAbortsWithoutOutput(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "out")
	_, err := Filter(context.Background(), Options{
		Source: filepath.Join(t.TempDir(), "nope"),
		Dest:   dst,
	})
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("error = %v, want ErrSourceNotFound", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("destination should not be created when the source is missing")
	}
}

func TestFilter_SampleLimit(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	files := map[string]string{}
	for _, n := range []string{"1", "2", "3", "4"} {
		files[n+".json"] = `{"document_hierarchy": []}`
	}
	writeFiles(t, src, files)

	s, err := Filter(context.Background(), Options{Source: src, Dest: t.TempDir(), Samples: 2})
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}
	if len(s.InvalidSamples) != 2 || s.Invalid != 4 {
		t.Errorf("samples = %v invalid = %d, want 2 samples of 4", s.InvalidSamples, s.Invalid)
	}

	var buf bytes.Buffer
	s.WriteReport(&buf, "valid_jsons")
	if !strings.Contains(buf.String(), "... and 2 more files") {
		t.Errorf("report missing overflow line:\n%s", buf.String())
	}
}

func TestFilter_Cancelled(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{"a.json": `{"document_hierarchy": ["x"]}`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Filter(ctx, Options{Source: src, Dest: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	s := &Summary{
		Analyzed:       2,
		Valid:          1,
		Invalid:        1,
		ValidSamples:   []Kept{{Name: "a", Count: 3}},
		InvalidSamples: []string{"b"},
	}
	var buf bytes.Buffer
	s.WriteReport(&buf, "valid_jsons")

	for _, want := range []string{
		"Total JSON files analyzed: 2",
		"a.json (hierarchy elements: 3)",
		"[SKIP] b.json",
		"available in: valid_jsons",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("report missing %q:\n%s", want, buf.String())
		}
	}
}
