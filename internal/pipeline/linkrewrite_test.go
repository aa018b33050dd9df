package pipeline

// Notes:
// - Error branches of parseHTML/renderHTML are not covered: x/net/html
//   does not fail on the inputs the preview stages produce.
// - Directory bases are exercised with Unix paths only.

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRewriteRelativeLinks_URLBase - Links resolved against the JUSTEL site
// ---------------------------------------------------------------------------

func TestRewriteRelativeLinks_URLBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "relative script link",
			html: `<a href="change_lg.pl?language=fr&amp;cn=1994021048">NL</a>`,
			want: `href="https://www.ejustice.just.fgov.be/cgi_loi/change_lg.pl?language=fr&amp;cn=1994021048"`,
		},
		{
			name: "root-relative link",
			html: `<a href="/mopdf/2020/01/02_1.pdf">PDF</a>`,
			want: `href="https://www.ejustice.just.fgov.be/mopdf/2020/01/02_1.pdf"`,
		},
		{
			name: "parent link",
			html: `<a href="../img/seal.gif">x</a>`,
			want: `href="https://www.ejustice.just.fgov.be/img/seal.gif"`,
		},
		{
			name: "relative image",
			html: `<img src="images/arrow.gif">`,
			want: `src="https://www.ejustice.just.fgov.be/cgi_loi/images/arrow.gif"`,
		},
		{
			name: "anchor unchanged",
			html: `<a href="#Art.1">Art. 1</a>`,
			want: `href="#Art.1"`,
		},
		{
			name: "absolute URL unchanged",
			html: `<a href="https://example.org/x">x</a>`,
			want: `href="https://example.org/x"`,
		},
		{
			name: "mailto unchanged",
			html: `<a href="mailto:info@just.fgov.be">mail</a>`,
			want: `href="mailto:info@just.fgov.be"`,
		},
		{
			name: "protocol-relative unchanged",
			html: `<img src="//cdn.example.org/a.png">`,
			want: `src="//cdn.example.org/a.png"`,
		},
		{
			name: "script src unchanged",
			html: `<script src="app.js"></script>`,
			want: `src="app.js"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteRelativeLinks(tt.html, DefaultLinkBase)
			if err != nil {
				t.Fatalf("RewriteRelativeLinks() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("RewriteRelativeLinks() = %q, want to contain %q", got, tt.want)
			}
		})
	}
}

func TestRewriteRelativeLinks_EmptyBase(t *testing.T) {
	t.Parallel()

	in := `<a href="change_lg.pl">x</a>`
	got, err := RewriteRelativeLinks(in, "")
	if err != nil {
		t.Fatalf("RewriteRelativeLinks() error = %v", err)
	}
	if got != in {
		t.Errorf("RewriteRelativeLinks() = %q, want unchanged", got)
	}
}

// ---------------------------------------------------------------------------
// TestRewriteRelativeLinks_DirBase - Links resolved to local files
// ---------------------------------------------------------------------------

func TestRewriteRelativeLinks_DirBase(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("Unix paths")
	}

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "relative image rewritten",
			html: `<img src="./img/logo.png">`,
			want: `src="file:///docs/img/logo.png"`,
		},
		{
			name: "relative link rewritten",
			html: `<a href="other.html">x</a>`,
			want: `href="file:///docs/other.html"`,
		},
		{
			name: "spaces encoded",
			html: `<img src="my images/a.png">`,
			want: `my%20images`,
		},
		{
			name: "traversal left alone",
			html: `<img src="../../etc/passwd">`,
			want: `src="../../etc/passwd"`,
		},
		{
			name: "root path left alone",
			html: `<img src="/abs/logo.png">`,
			want: `src="/abs/logo.png"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteRelativeLinks(tt.html, "/docs")
			if err != nil {
				t.Fatalf("RewriteRelativeLinks() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("RewriteRelativeLinks() = %q, want to contain %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRewriteRelativeLinks_DocumentShape - Document vs fragment output
// ---------------------------------------------------------------------------

func TestRewriteRelativeLinks_DocumentShape(t *testing.T) {
	t.Parallel()

	t.Run("full document keeps structure", func(t *testing.T) {
		t.Parallel()

		got, err := RewriteRelativeLinks(WrapPage(`<a href="x.pl">x</a>`, "T", ""), DefaultLinkBase)
		if err != nil {
			t.Fatalf("RewriteRelativeLinks() error = %v", err)
		}
		for _, want := range []string{"<html", `lang="fr"`, "<title>T</title>", `href="https://`} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q: %q", want, got)
			}
		}
	})

	t.Run("fragment not wrapped", func(t *testing.T) {
		t.Parallel()

		got, err := RewriteRelativeLinks(`<p>Art. 1</p><a href="x.pl">x</a>`, DefaultLinkBase)
		if err != nil {
			t.Fatalf("RewriteRelativeLinks() error = %v", err)
		}
		if strings.Contains(got, "<html") || !strings.HasPrefix(got, "<p>Art. 1</p>") {
			t.Errorf("fragment output = %q", got)
		}
	})

	t.Run("attributes preserved", func(t *testing.T) {
		t.Parallel()

		got, err := RewriteRelativeLinks(`<img src="a.gif" alt="seal" width="10">`, DefaultLinkBase)
		if err != nil {
			t.Fatalf("RewriteRelativeLinks() error = %v", err)
		}
		for _, want := range []string{`alt="seal"`, `width="10"`} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q: %q", want, got)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestIsRewritable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		link         string
		rootRelative bool
		want         bool
	}{
		{"a.pl", false, true},
		{"./a.pl", false, true},
		{"../a.pl", true, true},
		{"/a.pl", true, true},
		{"/a.pl", false, false},
		{"", true, false},
		{"#top", true, false},
		{"//cdn/x", true, false},
		{"HTTPS://x", true, false},
		{"javascript:void(0)", true, false},
		{"data:image/png;base64,AA", true, false},
	}

	for _, tt := range tests {
		if got := isRewritable(tt.link, tt.rootRelative); got != tt.want {
			t.Errorf("isRewritable(%q, %v) = %v, want %v", tt.link, tt.rootRelative, got, tt.want)
		}
	}
}

func TestIsPathUnderDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path, dir string
		want      bool
	}{
		{"/docs/a.png", "/docs", true},
		{"/docs/sub/a.png", "/docs/", true},
		{"/docs", "/docs", true},
		{"/docs-other/a.png", "/docs", false},
		{"/etc/passwd", "/docs", false},
	}

	for _, tt := range tests {
		path, dir := filepath.FromSlash(tt.path), filepath.FromSlash(tt.dir)
		if got := isPathUnderDir(path, dir); got != tt.want {
			t.Errorf("isPathUnderDir(%q, %q) = %v, want %v", path, dir, got, tt.want)
		}
	}
}

func TestPathToFileURL(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("Unix paths")
	}

	tests := []struct {
		in   string
		want string
	}{
		{in: "/docs/a.png", want: "file:///docs/a.png"},
		{in: "/docs/Arrêté royal.pdf", want: "file:///docs/Arr%C3%AAt%C3%A9%20royal.pdf"},
	}
	for _, tt := range tests {
		if got := pathToFileURL(tt.in); got != tt.want {
			t.Errorf("pathToFileURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
