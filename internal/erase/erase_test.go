package erase

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-justel/internal/protect"
)

// ---------------------------------------------------------------------------
// TestErase - Marker sequences
// ---------------------------------------------------------------------------

func TestErase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		start     string
		end       string
		input     string
		want      string
		wantFound int
	}{
		{
			name:      "custom markers",
			start:     "[µµAAAµµ]",
			end:       "[µµBBBµµ]",
			input:     "keep [µµAAAµµ]secret[µµBBBµµ] this",
			want:      "keep  this",
			wantFound: 1,
		},
		{
			name:      "markdown cross references",
			start:     "(#",
			end:       ")",
			input:     "Art. 1(#a1) and 2(#a2).",
			want:      "Art. 1 and 2.",
			wantFound: 2,
		},
		{
			name:      "multi-line sequence",
			start:     "[µµAAAµµ]",
			end:       "[µµBBBµµ]",
			input:     "a[µµAAAµµ]\nx\ny\n[µµBBBµµ]b",
			want:      "ab",
			wantFound: 1,
		},
		{
			name:      "non-greedy",
			start:     "(#",
			end:       ")",
			input:     "(#a) keep (#b)",
			want:      " keep ",
			wantFound: 2,
		},
		{
			name:      "case-sensitive markers",
			start:     "[µµAAAµµ]",
			end:       "[µµBBBµµ]",
			input:     "[µµaaaµµ]x[µµBBBµµ]",
			want:      "[µµaaaµµ]x[µµBBBµµ]",
			wantFound: 0,
		},
		{
			name:      "unterminated sequence kept",
			start:     "(#",
			end:       ")",
			input:     "see (#a",
			want:      "see (#a",
			wantFound: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, err := New(tt.start, tt.end)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if got := e.Erase(tt.input); got != tt.want {
				t.Errorf("Erase() = %q, want %q", got, tt.want)
			}
			if got := len(e.Find(tt.input)); got != tt.wantFound {
				t.Errorf("len(Find()) = %d, want %d", got, tt.wantFound)
			}
		})
	}
}

func TestNew_RequiresMarkers(t *testing.T) {
	t.Parallel()

	if _, err := New("", ")"); err == nil {
		t.Error("expected error for empty start marker")
	}
	if _, err := New("(#", ""); err == nil {
		t.Error("expected error for empty end marker")
	}
}

// ---------------------------------------------------------------------------
// TestApply - Logging before deletion, with protection
// ---------------------------------------------------------------------------

func TestApply_LogsBeforeDeleting(t *testing.T) {
	t.Parallel()

	e, _ := New("[µµAAAµµ]", "[µµBBBµµ]")

	var log strings.Builder
	res, err := e.Apply("x [µµAAAµµ]secret[µµBBBµµ] y", nil, func(span string) error {
		log.WriteString(LogEntry("doc.txt", span))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(log.String(), "secret") {
		t.Errorf("log = %q, want it to contain the erased text", log.String())
	}
	for _, s := range []string{"secret", "[µµAAAµµ]", "[µµBBBµµ]"} {
		if strings.Contains(res.Text, s) {
			t.Errorf("output %q still contains %q", res.Text, s)
		}
	}
	if len(res.Removed) != 1 {
		t.Errorf("Removed = %v, want one span", res.Removed)
	}
}

func TestApply_ProtectedSpansUntouched(t *testing.T) {
	t.Parallel()

	e, _ := New("(#", ")")
	g := protect.New("<table", "</table>")

	input := "a(#x) <table><a href=\"(#y)\">t</a></table> b(#z)"
	var logged []string
	res, err := e.Apply(input, g, func(span string) error {
		logged = append(logged, span)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "a <table><a href=\"(#y)\">t</a></table> b"
	if res.Text != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}
	if len(logged) != 2 || logged[0] != "(#x)" || logged[1] != "(#z)" {
		t.Errorf("logged = %v, want [(#x) (#z)]", logged)
	}
}

func TestApply_RecordErrorAborts(t *testing.T) {
	t.Parallel()

	e, _ := New("(#", ")")
	wantErr := errors.New("disk full")
	_, err := e.Apply("(#a)", nil, func(string) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestLogEntry(t *testing.T) {
	t.Parallel()

	if got := LogEntry("a.txt", "span"); got != "File: a.txt\nspan\n\n" {
		t.Errorf("LogEntry() = %q", got)
	}
}
