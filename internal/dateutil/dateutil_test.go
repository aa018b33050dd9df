package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var stampTime = time.Date(2026, time.February, 7, 15, 4, 0, 0, time.UTC)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		want    string
		wantErr error
	}{
		// Tokens
		{name: "YYYY", pattern: "YYYY", want: "2026"},
		{name: "YY", pattern: "YY", want: "26"},
		{name: "MMMM is the French month name", pattern: "MMMM", want: "février"},
		{name: "MMM is the French abbreviation", pattern: "MMM", want: "févr."},
		{name: "MM zero-padded", pattern: "MM", want: "02"},
		{name: "M not padded", pattern: "M", want: "2"},
		{name: "DD zero-padded", pattern: "DD", want: "07"},
		{name: "D not padded", pattern: "D", want: "7"},

		// Combined
		{name: "iso", pattern: "YYYY-MM-DD", want: "2026-02-07"},
		{name: "european", pattern: "DD/MM/YYYY", want: "07/02/2026"},
		{name: "long", pattern: "D MMMM YYYY", want: "7 février 2026"},

		// Literals
		{name: "bracket escape", pattern: "[le] D MMMM", want: "le 7 février"},
		{name: "bracketed token letters stay literal", pattern: "[DD/MM] DD", want: "DD/MM 07"},
		{name: "empty brackets", pattern: "[]YYYY", want: "2026"},
		{name: "other characters pass through", pattern: "YYYY.MM.DD", want: "2026.02.07"},

		// Errors
		{name: "empty", pattern: "", wantErr: ErrInvalidDateFormat},
		{name: "too long", pattern: strings.Repeat("Y", MaxDateFormatLength+1), wantErr: ErrInvalidDateFormat},
		{name: "unclosed bracket", pattern: "[le D MMMM", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Format(tt.pattern, stampTime)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Format(%q) error = %v, want %v", tt.pattern, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Format(%q) unexpected error: %v", tt.pattern, err)
			}
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestFormat_EveryMonth(t *testing.T) {
	t.Parallel()

	for m := time.January; m <= time.December; m++ {
		got, err := Format("MMMM", time.Date(2026, m, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("month %d: %v", m, err)
		}
		if got != monthNames[m-1] || got == "" {
			t.Errorf("month %d = %q", m, got)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{name: "empty stays empty", value: "", want: ""},
		{name: "literal passthrough", value: "Projet", want: "Projet"},
		{name: "auto uses default", value: "auto", want: "07/02/2026"},
		{name: "auto is case-insensitive", value: "AUTO", want: "07/02/2026"},
		{name: "custom pattern", value: "auto:YYYY/MM", want: "2026/02"},
		{name: "pattern keeps its case", value: "Auto:D MMMM", want: "7 février"},
		{name: "preset long", value: "auto:long", want: "7 février 2026"},
		{name: "preset is case-insensitive", value: "auto:ISO", want: "2026-02-07"},
		{name: "preset short", value: "auto:short", want: "7 févr. 2026"},
		{name: "missing colon", value: "automatic", wantErr: ErrInvalidDateFormat},
		{name: "empty pattern", value: "auto:", wantErr: ErrInvalidDateFormat},
		{name: "bad pattern", value: "auto:[DD", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.value, stampTime)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
