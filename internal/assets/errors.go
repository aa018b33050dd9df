package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrStyleNotFound indicates the requested style does not exist.
	ErrStyleNotFound = errors.New("style not found")

	// ErrPipelineNotFound indicates the requested pipeline definition does not exist.
	ErrPipelineNotFound = errors.New("pipeline not found")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the configured base path is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an asset exists but could not be read, including
	// reads refused for leaving the asset directory.
	ErrAssetRead = errors.New("failed to read asset")
)
