package main

import (
	"errors"
	"os"

	justel "github.com/alnah/go-justel"
	"github.com/alnah/go-justel/internal/assets"
	"github.com/alnah/go-justel/internal/config"
	"github.com/alnah/go-justel/internal/hierarchy"
	"github.com/alnah/go-justel/internal/pipeline"
)

// Exit codes for the justel CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every requested stage ran
	ExitGeneral = 1 // General/unexpected error, or failed files with --strict
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Missing input directory, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, justel.ErrBrowserConnect) ||
		errors.Is(err, justel.ErrPageCreate) ||
		errors.Is(err, justel.ErrPageLoad) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, pipeline.ErrInputNotFound) ||
		errors.Is(err, pipeline.ErrWriteOutput) ||
		errors.Is(err, hierarchy.ErrSourceNotFound) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, justel.ErrStageNotFound) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrUnknownStage) ||
		errors.Is(err, config.ErrInvalidStage) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrPipelineNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) {
		return ExitUsage
	}

	return ExitGeneral
}
