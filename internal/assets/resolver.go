package assets

import "errors"

// AssetResolver reads from a custom directory first and falls back to the
// embedded assets for names the directory lacks. Invalid names and read
// errors from the custom directory are returned as is.
type AssetResolver struct {
	custom   *FilesystemLoader // nil without a custom path
	embedded *EmbeddedLoader
}

// NewAssetResolver creates a resolver. An empty customBasePath serves the
// embedded assets only.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadStyle loads a style from the custom directory, then the embedded set.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	if r.custom != nil {
		css, err := r.custom.LoadStyle(name)
		if !errors.Is(err, ErrStyleNotFound) {
			return css, err
		}
	}
	return r.embedded.LoadStyle(name)
}

// LoadPipeline loads a pipeline from the custom directory, then the embedded set.
func (r *AssetResolver) LoadPipeline(name string) ([]byte, error) {
	if r.custom != nil {
		data, err := r.custom.LoadPipeline(name)
		if !errors.Is(err, ErrPipelineNotFound) {
			return data, err
		}
	}
	return r.embedded.LoadPipeline(name)
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Close releases the custom directory, if any.
func (r *AssetResolver) Close() error {
	if r.custom == nil {
		return nil
	}
	return r.custom.Close()
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
