package justel

import "errors"

// Sentinel errors for library operations.
var (
	ErrStageNotFound  = errors.New("stage not found")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
)
