package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// AssetLoader loads preview styles and pipeline definitions by name.
// Names carry no extension. Unknown names return ErrStyleNotFound or
// ErrPipelineNotFound; unsafe names return ErrInvalidAssetName.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadPipeline(name string) ([]byte, error)
}

// fsLoader reads assets from an fs.FS with the styles/ and pipelines/ layout.
type fsLoader struct {
	fsys fs.FS
}

// LoadStyle reads styles/{name}.css.
func (l fsLoader) LoadStyle(name string) (string, error) {
	data, err := l.read(styleKind, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LoadPipeline reads pipelines/{name}.yaml.
func (l fsLoader) LoadPipeline(name string) ([]byte, error) {
	return l.read(pipelineKind, name)
}

func (l fsLoader) read(k kind, name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fsys, path.Join(k.dir, name+k.ext))
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %q", k.notFound, name)
	default:
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
}

// names lists the assets of kind k. A missing directory yields none.
func (l fsLoader) names(k kind) []string {
	entries, err := fs.ReadDir(l.fsys, k.dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), k.ext) {
			out = append(out, strings.TrimSuffix(e.Name(), k.ext))
		}
	}
	return out
}

// ValidateAssetName rejects empty names and names with path separators or
// dots, which could select another directory or extension.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
