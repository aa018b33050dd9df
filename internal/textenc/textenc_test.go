package textenc

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestDecode - Charset conversion
// ---------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		enc     string
		want    string
		wantErr error
	}{
		{name: "utf-8 default", data: []byte("Arrêté royal"), enc: "", want: "Arrêté royal"},
		{name: "utf-8 strips BOM", data: []byte("\xEF\xBB\xBF## Titre"), enc: "utf-8", want: "## Titre"},
		{name: "utf-8 alias", data: []byte("é"), enc: "UTF8", want: "é"},
		{name: "invalid utf-8", data: []byte{'a', 0xE9, 'b'}, enc: "utf-8", wantErr: ErrInvalidUTF8},
		{name: "windows-1252", data: []byte{'A', 'r', 'r', 0xEA, 't', 0xE9, ' ', 0x80}, enc: "windows-1252", want: "Arrêté €"},
		{name: "cp1252 alias", data: []byte{0x93, 'x', 0x94}, enc: "cp1252", want: "\u201cx\u201d"},
		{name: "latin1", data: []byte{0xE0, 0xE7}, enc: "latin1", want: "àç"},
		{name: "iso-8859-15 euro", data: []byte{0xA4}, enc: "iso-8859-15", want: "€"},
		{name: "utf-16le with BOM", data: []byte{0xFF, 0xFE, 'o', 0, 'k', 0}, enc: "utf-16le", want: "ok"},
		{name: "unsupported", data: []byte("x"), enc: "ebcdic", wantErr: ErrUnsupportedEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(tt.data, tt.enc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	for _, name := range Supported() {
		got, err := Canonical(name)
		if err != nil || got != name {
			t.Errorf("Canonical(%q) = %q, %v; want itself", name, got, err)
		}
	}
	if got, _ := Canonical(" Latin-1 "); got != "iso-8859-1" {
		t.Errorf("Canonical(Latin-1) = %q, want iso-8859-1", got)
	}
}

// ---------------------------------------------------------------------------
// TestNormalize - Unicode normalization forms
// ---------------------------------------------------------------------------

func TestNormalize(t *testing.T) {
	t.Parallel()

	decomposed := "Arre\u0302te\u0301"
	composed := "Arr\u00eat\u00e9"

	tests := []struct {
		name    string
		in      string
		form    string
		want    string
		wantErr bool
	}{
		{name: "empty form is identity", in: decomposed, form: "", want: decomposed},
		{name: "nfc composes", in: decomposed, form: "nfc", want: composed},
		{name: "NFC upper case", in: decomposed, form: "NFC", want: composed},
		{name: "nfd decomposes", in: composed, form: "nfd", want: decomposed},
		{name: "nfkc folds ligature", in: "\ufb01n", form: "nfkc", want: "fin"},
		{name: "unknown form", in: composed, form: "nfx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.in, tt.form)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedForm) {
					t.Fatalf("Normalize() error = %v, want ErrUnsupportedForm", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidForm(t *testing.T) {
	t.Parallel()

	if !ValidForm("") || !ValidForm("nfc") {
		t.Error("ValidForm should accept empty and nfc")
	}
	if ValidForm("bogus") {
		t.Error("ValidForm(bogus) = true")
	}
}
