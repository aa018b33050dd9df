package assets

// DefaultPipelineName is the name of the built-in JUSTEL pipeline.
const DefaultPipelineName = "justel"

// DefaultStyleName is the name of the built-in preview style.
const DefaultStyleName = "preview"

// kind is one asset family: where it lives and how its files end.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	pipelineKind = kind{dir: "pipelines", ext: ".yaml", notFound: ErrPipelineNotFound}
)

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads an embedded CSS style by name, without the .css extension.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadPipeline loads an embedded pipeline definition by name, without the
// .yaml extension.
func LoadPipeline(name string) ([]byte, error) {
	return defaultLoader.LoadPipeline(name)
}

// BuiltinStyles returns the embedded style names, sorted.
func BuiltinStyles() []string {
	return defaultLoader.names(styleKind)
}

// BuiltinPipelines returns the embedded pipeline names, sorted.
func BuiltinPipelines() []string {
	return defaultLoader.names(pipelineKind)
}
