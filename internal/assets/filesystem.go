package assets

import (
	"fmt"
	"os"
)

// FilesystemLoader serves assets from a directory on disk. Reads go through
// os.Root, so a symlink pointing outside the directory fails with
// ErrAssetRead instead of being followed.
type FilesystemLoader struct {
	fsLoader
	root *os.Root
}

// NewFilesystemLoader opens basePath. Returns ErrInvalidBasePath if it is
// empty, missing or not a directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, basePath)
	}
	root, err := os.OpenRoot(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	return &FilesystemLoader{fsLoader: fsLoader{fsys: root.FS()}, root: root}, nil
}

// Path returns the directory the loader reads from.
func (f *FilesystemLoader) Path() string {
	return f.root.Name()
}

// Close releases the directory handle.
func (f *FilesystemLoader) Close() error {
	return f.root.Close()
}

// Compile-time interface check.
var _ AssetLoader = (*FilesystemLoader)(nil)
