package hints

import (
	"strings"
	"testing"
)

func envOf(container bool, vars map[string]string) Env {
	return Env{
		Getenv:    func(k string) string { return vars[k] },
		Container: container,
	}
}

// ---------------------------------------------------------------------------
// TestForBrowserConnect
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		env         Env
		wantSandbox bool
		wantBin     bool
	}{
		{name: "local machine", env: envOf(false, nil), wantBin: true},
		{name: "ci", env: envOf(false, map[string]string{"GITHUB_ACTIONS": "true"}), wantSandbox: true, wantBin: true},
		{name: "jenkins", env: envOf(false, map[string]string{"JENKINS_URL": "http://ci"}), wantSandbox: true, wantBin: true},
		{name: "docker", env: envOf(true, nil), wantSandbox: true, wantBin: true},
		{name: "sandbox already off", env: envOf(true, map[string]string{"ROD_NO_SANDBOX": "1"}), wantBin: true},
		{name: "custom binary set", env: envOf(false, map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"})},
		{
			name: "fully configured container",
			env:  envOf(true, map[string]string{"ROD_NO_SANDBOX": "1", "ROD_BROWSER_BIN": "/usr/bin/chromium"}),
		},
		{name: "zero env", env: Env{}, wantBin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ForBrowserConnect(tt.env)
			if strings.Contains(got, "ROD_NO_SANDBOX") != tt.wantSandbox {
				t.Errorf("sandbox hint present = %v, want %v: %q", !tt.wantSandbox, tt.wantSandbox, got)
			}
			if strings.Contains(got, "ROD_BROWSER_BIN") != tt.wantBin {
				t.Errorf("binary hint present = %v, want %v: %q", !tt.wantBin, tt.wantBin, got)
			}
			if !tt.wantSandbox && !tt.wantBin && got != "" {
				t.Errorf("ForBrowserConnect() = %q, want empty", got)
			}
			if tt.wantSandbox && tt.wantBin && !strings.Contains(got, "; ") {
				t.Errorf("hints should be joined with \"; \": %q", got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSingleHints
// ---------------------------------------------------------------------------

func TestSingleHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"timeout", ForTimeout(), "\n  hint: for large documents, use --timeout flag"},
		{"output directory", ForOutputDirectory(), "\n  hint: check parent directory exists and is writable"},
		{
			"input with producer", ForInputNotFound("MD1"),
			"\n  hint: run stage MD1 first, or check baseDir (JUSTEL_BASE_DIR)",
		},
		{
			"input without producer", ForInputNotFound(""),
			"\n  hint: check the stage input path and baseDir (JUSTEL_BASE_DIR)",
		},
		{"config, nothing searched", ForConfigNotFound(nil), "\n  hint: use --config /path/to/file.yaml"},
		{
			"config, user path searched",
			ForConfigNotFound([]string{"./justel.yaml", "/home/u/.config/go-justel/justel.yaml", "/home/u/.config/go-justel/other.yaml"}),
			"\n  hint: use --config /path/to/file.yaml or create /home/u/.config/go-justel/justel.yaml",
		},
		{"available names", ForAvailable([]string{"justel", "minimal"}), "\n  hint: available: justel, minimal"},
		{"nothing available", ForAvailable(nil), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
