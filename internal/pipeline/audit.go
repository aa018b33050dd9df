package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alnah/go-justel/internal/fileutil"
)

// AuditLog is an append-only line log shared by the files of one stage run.
// A nil *AuditLog accepts writes and discards them.
type AuditLog struct {
	mu      sync.Mutex
	f       *os.File
	entries int
}

// OpenAuditLog opens path for appending, creating it and its directory
// if needed. An empty path returns a nil log that discards entries.
func OpenAuditLog(path string) (*AuditLog, error) {
	if path == "" {
		return nil, nil
	}
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, fileutil.FilePermissions) // #nosec G304 -- configured log path
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &AuditLog{f: f}, nil
}

// Write appends entry, adding a final newline when it lacks one.
func (a *AuditLog) Write(entry string) error {
	if a == nil {
		return nil
	}
	if !strings.HasSuffix(entry, "\n") {
		entry += "\n"
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.f.WriteString(entry); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	a.entries++
	return nil
}

// Entries returns how many lines were written since the log was opened.
func (a *AuditLog) Entries() int {
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.entries
}

// Close closes the underlying file.
func (a *AuditLog) Close() error {
	if a == nil || a.f == nil {
		return nil
	}
	return a.f.Close()
}
