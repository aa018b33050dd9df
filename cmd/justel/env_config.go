package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-justel/internal/config"
)

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath  string // JUSTEL_CONFIG: pipeline name or path
	BaseDir     string // JUSTEL_BASE_DIR: root for stage paths
	LogDir      string // JUSTEL_LOG_DIR: root for audit logs
	MetricsFile string // JUSTEL_METRICS_FILE: node_exporter textfile
}

// knownEnvVars lists valid JUSTEL_* environment variables.
var knownEnvVars = map[string]bool{
	"JUSTEL_CONFIG":       true,
	"JUSTEL_BASE_DIR":     true,
	"JUSTEL_LOG_DIR":      true,
	"JUSTEL_METRICS_FILE": true,
	"JUSTEL_CONTAINER":    true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath:  os.Getenv("JUSTEL_CONFIG"),
		BaseDir:     os.Getenv("JUSTEL_BASE_DIR"),
		LogDir:      os.Getenv("JUSTEL_LOG_DIR"),
		MetricsFile: os.Getenv("JUSTEL_METRICS_FILE"),
	}
}

// unknownEnvVars returns the JUSTEL_* names in environ that are not
// recognized, in environ order.
func unknownEnvVars(environ []string) []string {
	var unknown []string
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "JUSTEL_") && !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// warnUnknownEnvVars prints a warning for each unrecognized JUSTEL_* variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, name := range unknownEnvVars(os.Environ()) {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overrides the pipeline roots. Pipeline files always carry
// a baseDir (it defaults to "."), so a set variable wins over the file;
// CLI flags are applied afterwards and win over both.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.BaseDir != "" {
		cfg.BaseDir = env.BaseDir
	}
	if env.LogDir != "" {
		cfg.LogDir = env.LogDir
	}
}
