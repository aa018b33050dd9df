// Package assets provides the embedded pipeline definitions and preview styles.
//
// Every loader reads the same layout through an fs.FS:
//
//	{root}/
//	├── pipelines/{name}.yaml   # stage tables (built-in: justel)
//	└── styles/{name}.css       # preview styles (built-in: preview)
//
// EmbeddedLoader serves the files compiled into the binary. FilesystemLoader
// serves a directory opened with os.Root, which keeps reads inside it even
// through symlinks. AssetResolver tries a custom directory first and falls
// back to the embedded files for names it does not have.
package assets
