package assets

import "embed"

//go:embed styles pipelines
var embedded embed.FS

// EmbeddedLoader serves the assets compiled into the binary.
type EmbeddedLoader struct {
	fsLoader
}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsLoader{fsys: embedded}}
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
