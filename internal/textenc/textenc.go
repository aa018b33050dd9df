// Package textenc decodes stage input to UTF-8 and applies Unicode normalization.
package textenc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// DefaultEncoding is used when a stage does not name one.
const DefaultEncoding = "utf-8"

// Sentinel errors for decoding.
var (
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrInvalidUTF8         = errors.New("input is not valid UTF-8")
	ErrUnsupportedForm     = errors.New("unsupported normalization form")
)

// decoders maps canonical names to their decoders. UTF-8 is handled apart
// so that invalid input is reported instead of silently replaced.
var decoders = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
}

var aliases = map[string]string{
	"":           DefaultEncoding,
	"utf8":       DefaultEncoding,
	"cp1252":     "windows-1252",
	"latin1":     "iso-8859-1",
	"latin-1":    "iso-8859-1",
	"latin9":     "iso-8859-15",
}

// Canonical returns the canonical name for an encoding, or an error if it
// is not supported.
func Canonical(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		n = a
	}
	if n == DefaultEncoding {
		return n, nil
	}
	if _, ok := decoders[n]; ok {
		return n, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
}

// Supported lists the accepted canonical encoding names.
func Supported() []string {
	return []string{DefaultEncoding, "windows-1252", "iso-8859-1", "iso-8859-15", "utf-16le", "utf-16be"}
}

// Decode converts data in the named encoding to a UTF-8 string.
// A leading UTF-8 byte order mark is removed.
func Decode(data []byte, name string) (string, error) {
	enc, err := Canonical(name)
	if err != nil {
		return "", err
	}

	if enc == DefaultEncoding {
		// The x/text decoder substitutes U+FFFD for bad bytes; reject them first.
		if !utf8.Valid(data) {
			return "", ErrInvalidUTF8
		}
		out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding utf-8: %w", err)
		}
		return string(out), nil
	}

	out, err := decoders[enc].NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", enc, err)
	}
	return string(out), nil
}

// Normalize applies a Unicode normalization form. An empty form returns s
// unchanged. Supported forms are nfc, nfd, nfkc and nfkd.
func Normalize(s, form string) (string, error) {
	switch strings.ToLower(form) {
	case "":
		return s, nil
	case "nfc":
		return norm.NFC.String(s), nil
	case "nfd":
		return norm.NFD.String(s), nil
	case "nfkc":
		return norm.NFKC.String(s), nil
	case "nfkd":
		return norm.NFKD.String(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedForm, form)
	}
}

// ValidForm reports whether form is accepted by Normalize.
func ValidForm(form string) bool {
	_, err := Normalize("", form)
	return err == nil
}
