// Package resolver implements component B: turning a (specifier, importer)
// pair into a ResolvedId, and loading a resolved id's source text. It
// follows the rule ordering of esbuild's resolver.Resolve (plugins first,
// then builtin resolution), trimmed to the three rules §4.B specifies:
// plugin short-circuit, bare-specifier-is-external, and relative/absolute
// path joining with extension inference.
package resolver

import (
	"strings"

	"module-bundler/internal/berrors"
	"module-bundler/internal/config"
	"module-bundler/internal/fs"
	"module-bundler/internal/graph"
)

// knownExtensions lists the extensions a specifier's resulting path may
// already carry; a path with none of them gets ".js" appended.
var knownExtensions = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".mjs": true,
}

type Resolver struct {
	fs      fs.FS
	root    string
	plugins []config.Plugin
	options *config.Options
}

func New(filesystem fs.FS, root string, options *config.Options) *Resolver {
	return &Resolver{fs: filesystem, root: root, plugins: options.Plugins, options: options}
}

func isBare(specifier string) bool {
	return !strings.HasPrefix(specifier, ".") && !strings.HasPrefix(specifier, "/")
}

// Resolve applies §4.B's three rules in order.
func (r *Resolver) Resolve(specifier string, importer string) (graph.ResolvedId, error) {
	// Rule 1: plugin chain, first ok wins.
	for _, p := range r.plugins {
		if p.Resolve == nil {
			continue
		}
		if id, external, ok := p.Resolve(specifier, importer); ok {
			return graph.ResolvedId{Id: id, External: external}, nil
		}
	}

	// Rule 2: bare specifier with an importer set is external.
	if importer != "" && isBare(specifier) {
		return graph.ResolvedId{Id: specifier, External: true}, nil
	}

	// Rule 3: join importer's directory (or root if no importer), normalize,
	// and append ".js" if there's no recognized extension.
	var base string
	if importer != "" {
		base = r.fs.Dir(importer)
	} else {
		base = r.root
	}
	joined := r.fs.Abs(r.fs.Join(base, specifier))
	if ext := r.fs.Ext(joined); !knownExtensions[ext] {
		joined += ".js"
	}

	// The `external` predicate chain (§6) can still override a path that
	// rules 1-3 would otherwise pull into the bundle, now that we have a
	// concrete resolved id to test it against.
	if r.options.IsExternal(specifier, importer, true) || r.options.IsExternal(joined, importer, true) {
		return graph.ResolvedId{Id: joined, External: true}, nil
	}

	return graph.ResolvedId{Id: joined, External: false}, nil
}

// Load first asks plugins, then falls back to a filesystem read (§4.B).
func (r *Resolver) Load(id string) (string, error) {
	for _, p := range r.plugins {
		if p.Load == nil {
			continue
		}
		if source, ok := p.Load(id); ok {
			return r.transform(source, id)
		}
	}
	source, err := r.fs.ReadFile(id)
	if err != nil {
		return "", &berrors.LoadError{Id: id, Underlying: err}
	}
	return r.transform(source, id)
}

func (r *Resolver) transform(source, id string) (string, error) {
	var err error
	for _, p := range r.plugins {
		if p.Transform == nil {
			continue
		}
		source, err = p.Transform(source, id)
		if err != nil {
			return "", err
		}
	}
	return source, nil
}
