// Package api is the public entry point to the bundler, mirroring the
// shape of esbuild's own pkg/api: a small Options struct the caller fills
// in, a Build function that runs the whole pipeline, and a Result the
// caller can write to disk however it likes. Everything downstream
// (internal/bundler and below) is free to change without breaking callers
// of this package.
package api

import (
	"module-bundler/internal/bundler"
	"module-bundler/internal/config"
	"module-bundler/internal/fs"
)

// Options is the caller-facing build configuration; it mirrors
// config.Options field for field rather than aliasing it, so the internal
// package can evolve independently of this public surface.
type Options struct {
	// Input maps a logical output name to an entry file path.
	Input map[string]string
	// Root is the base directory specifiers resolve against; defaults to
	// the current directory when empty.
	Root string
	// External marks specifiers that should be left unbundled; wildcard
	// patterns use doublestar glob syntax ("*", "**", "?").
	External []string
	// Plugins runs in registration order for each of resolve/load/transform.
	Plugins []config.Plugin
	// Treeshake enables dead-code elimination. Defaults to true.
	Treeshake *bool

	// File sets an exact output file name; only honored with exactly one
	// entry. EntryFileNames is a "[name]"-templated path used otherwise,
	// defaulting to "[name].js".
	File           string
	EntryFileNames string
}

// OutputFile is one emitted file.
type OutputFile struct {
	Path string
	Code string
}

// Result is the outcome of a successful Build.
type Result struct {
	OutputFiles []OutputFile
}

// Build resolves, loads, links, tree-shakes and emits opts.Input. Build
// never writes to disk; the caller decides how (or whether) to persist
// Result.OutputFiles.
func Build(opts Options) (*Result, error) {
	internalOpts := config.DefaultOptions()
	internalOpts.Input = opts.Input
	internalOpts.Root = opts.Root
	internalOpts.Plugins = opts.Plugins
	if opts.Treeshake != nil {
		internalOpts.Treeshake = *opts.Treeshake
	}
	if opts.File != "" {
		internalOpts.File = opts.File
	}
	if opts.EntryFileNames != "" {
		internalOpts.EntryFileNames = opts.EntryFileNames
	}
	for _, pattern := range opts.External {
		internalOpts.External = append(internalOpts.External, config.WildcardExternal(pattern))
	}

	root := opts.Root
	if root == "" {
		root = "."
	}

	res, err := bundler.Build(fs.NewRealFS(), root, internalOpts)
	if err != nil {
		return nil, err
	}

	out := &Result{OutputFiles: make([]OutputFile, len(res.Files))}
	for i, f := range res.Files {
		out.OutputFiles[i] = OutputFile{Path: f.Path, Code: f.Code}
	}
	return out, nil
}
