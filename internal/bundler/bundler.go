// Package bundler implements component I: the orchestrator that wires
// resolve -> load -> scan (components B/C/E) into the graph builder
// (component F), names the result (component H), and hands each entry's
// reachable subgraph to the chunk assembler (component G). It plays the
// role esbuild's internal/bundler.Bundle/Compile pair does: the one place
// that knows the whole pipeline, leaving every stage itself ignorant of
// what comes before or after it.
package bundler

import (
	"sort"
	"strings"

	"github.com/gosimple/slug"

	"module-bundler/internal/chunk"
	"module-bundler/internal/config"
	"module-bundler/internal/fs"
	"module-bundler/internal/graph"
	"module-bundler/internal/loader"
	"module-bundler/internal/logger"
	"module-bundler/internal/mark"
	"module-bundler/internal/renamer"
	"module-bundler/internal/resolver"
)

// OutputFile is one emitted file, path already expanded from
// Options.EntryFileNames / Options.File.
type OutputFile struct {
	Path string
	Code string
}

// Result is a finished build: every emitted file, plus whatever
// diagnostics the log accumulated (warnings survive a successful build;
// errors are returned from Build directly instead).
type Result struct {
	Files []OutputFile
	Log   []logger.Msg
}

// Build runs the full pipeline for opts against filesystem, rooted at
// root. The first error encountered - a resolve/load/parse/scan failure
// from the loader, or a link failure from the graph builder - stops the
// build and is returned; nothing partial is ever in Result.
func Build(filesystem fs.FS, root string, opts config.Options) (*Result, error) {
	runBuildStart(&opts)

	result, err := build(filesystem, root, opts)
	runBuildEnd(&opts)
	return result, err
}

func runBuildStart(opts *config.Options) {
	for _, p := range opts.Plugins {
		if p.BuildStart != nil {
			p.BuildStart()
		}
	}
}

func runBuildEnd(opts *config.Options) {
	for _, p := range opts.Plugins {
		if p.BuildEnd != nil {
			p.BuildEnd()
		}
	}
}

func build(filesystem fs.FS, root string, opts config.Options) (*Result, error) {
	log := logger.NewLog()
	box := mark.NewBox()
	unresolved := box.New("<unresolved>")

	res := resolver.New(filesystem, root, &opts)
	pool := loader.New(res, box, log, unresolved)

	names := make([]string, 0, len(opts.Input))
	for name := range opts.Input {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic entry processing order

	entries := make([]loader.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, loader.Entry{Name: name, Path: opts.Input[name]})
	}

	msgs, err := pool.Run(entries, &opts)
	if err != nil {
		return nil, err
	}

	g := graph.NewGraph(box)
	entryModules := make(map[string]*graph.Module, len(names))
	for _, msg := range msgs {
		if msg.Kind != loader.MsgModuleReady {
			continue
		}
		m := msg.Module.Module
		if msg.Module.EntryName != "" {
			m.IsEntry = true
			entryModules[msg.Module.EntryName] = m
		}
		g.AddModule(m)
	}
	for _, msg := range msgs {
		if msg.Kind != loader.MsgDependencyReference {
			continue
		}
		g.AddEdge(graph.Edge{From: msg.Importer, To: msg.Resolved.Id, Kind: graph.EdgeImport, Dynamic: msg.IsDynamic})
	}

	order := g.Order()
	if err := g.LinkExports(order); err != nil {
		return nil, err
	}
	if err := g.LinkImports(order); err != nil {
		return nil, err
	}

	if opts.Treeshake {
		g.Include(order)
	} else {
		for _, id := range order {
			includeWholeModule(g.Modules[id])
		}
	}

	ren := renamer.Build(box, order, g.Modules)

	files := make([]OutputFile, 0, len(names))
	for _, name := range names {
		entry := entryModules[name]
		if entry == nil {
			continue // its own resolve/load error already aborted Run above
		}
		out := chunk.Assemble(entry, g, order, ren)
		files = append(files, OutputFile{
			Path: outputPath(opts, name, len(names)),
			Code: out.Code,
		})
	}

	return &Result{Files: files, Log: log.Done()}, nil
}

func includeWholeModule(m *graph.Module) {
	if m == nil {
		return
	}
	m.Included = true
	for _, stmt := range m.TopLevel {
		stmt.Included = true
	}
}

// outputPath expands Options.File (when there is exactly one entry and an
// exact name was given) or Options.EntryFileNames's "[name]" placeholder,
// the same single-token template esbuild's entryNames setting supports.
func outputPath(opts config.Options, name string, entryCount int) string {
	if opts.File != "" && entryCount == 1 {
		return opts.File
	}
	template := opts.EntryFileNames
	if template == "" {
		template = "[name].js"
	}
	return strings.ReplaceAll(template, config.PathPlaceholder, safeEntryName(name))
}

// safeEntryName slugifies a logical entry name into something safe to join
// into a filesystem path: input keys are free-form strings (a scoped
// package name, something with spaces) and are not guaranteed to already be
// a valid path segment.
func safeEntryName(name string) string {
	if name == "" {
		return name
	}
	return slug.Make(name)
}
