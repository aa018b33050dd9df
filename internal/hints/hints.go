// Package hints builds the short remedies appended to CLI error messages.
// Every hint renders as "\n  hint: <text>".
package hints

import (
	"strings"
)

// Env is the part of the process environment browser hints depend on.
type Env struct {
	Getenv    func(string) string
	Container bool
}

func (e Env) get(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return e.Getenv(key)
}

// CI reports whether a common CI provider variable is set.
func (e Env) CI() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if e.get(key) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect suggests the rod variables that usually fix a browser
// that will not start: no sandbox in containers and CI, a custom binary
// otherwise.
func ForBrowserConnect(env Env) string {
	var parts []string
	if (env.Container || env.CI()) && env.get("ROD_NO_SANDBOX") != "1" {
		parts = append(parts, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if env.get("ROD_BROWSER_BIN") == "" {
		parts = append(parts, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	return render(strings.Join(parts, "; "))
}

// ForTimeout is shown when preview pages did not finish loading.
func ForTimeout() string {
	return render("for large documents, use --timeout flag")
}

// ForInputNotFound is shown when a stage input directory is missing.
// producer names the stage that writes that directory, if any.
func ForInputNotFound(producer string) string {
	if producer == "" {
		return render("check the stage input path and baseDir (JUSTEL_BASE_DIR)")
	}
	return render("run stage " + producer + " first, or check baseDir (JUSTEL_BASE_DIR)")
}

// ForConfigNotFound suggests --config, plus the first user config
// location among searched.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(p, ".config/go-justel") {
			return render(hint + " or create " + p)
		}
	}
	return render(hint)
}

// ForOutputDirectory is shown when a stage cannot create its output directory.
func ForOutputDirectory() string {
	return render("check parent directory exists and is writable")
}

// ForAvailable lists the names that would have been accepted.
func ForAvailable(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return render("available: " + strings.Join(names, ", "))
}

func render(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
