package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"module-bundler/internal/berrors"
	"module-bundler/internal/mark"
)

// stem returns a module id's file name with its extension removed, the
// same "derive a name from the file" convention esbuild's default
// namespace-export naming falls back to when no import alias suggests a
// better one.
func stem(id string) string {
	base := path.Base(id)
	return strings.TrimSuffix(base, path.Ext(base))
}

// LinkExports runs §4.E stage 2 over every module in increasing execution
// order - order[0] is the first module a postorder DFS finished, i.e. a
// leaf with no unresolved dependencies of its own, so by the time a given
// module is processed every module it re-exports from already has a
// settled MergedExports to pull from. Because each dependency's
// MergedExports already holds everything it re-exports, merging one hop
// here is enough to make re-export chains of any length complete, and
// LinkImports needs only a single MergedExports lookup per import.
func (g *Graph) LinkExports(order []string) error {
	for _, id := range order {
		m := g.Modules[id]
		if m == nil {
			continue
		}
		g.resolvePendingSideEffect(m)
		for name, mk := range m.LocalExports {
			m.MergedExports[name] = mk
		}

		for source, specs := range m.ReExports {
			resolved := m.ResolvedModuleIds[source]
			dep := g.Modules[resolved.Id]
			if dep == nil {
				continue // external re-export source; nothing to merge
			}
			for _, spec := range specs {
				mk, ok := dep.MergedExports[spec.Original]
				if !ok {
					return &berrors.LinkError{Importer: m.Id, Source: dep.Id, Original: spec.Original, Suggestion: nearestExportName(dep, spec.Original)}
				}
				m.MergedExports[spec.Alias] = mk
			}
		}

		starSource := make(map[string]string) // name -> `export *` source that contributed it
		for _, src := range m.ReExportAllSrcs {
			resolved := m.ResolvedModuleIds[src]
			dep := g.Modules[resolved.Id]
			if dep == nil {
				continue // external `export *` source; nothing to merge
			}
			for name, mk := range dep.MergedExports {
				if name == "default" {
					continue // `export *` never forwards a default export
				}
				if existing, ok := m.MergedExports[name]; ok && existing != mk {
					source1 := m.Id
					if prev, ok := starSource[name]; ok {
						source1 = prev
					}
					return &berrors.DuplicateExport{
						Module: m.Id, Name: name, Source1: source1, Source2: dep.Id,
					}
				}
				m.MergedExports[name] = mk
				starSource[name] = dep.Id
			}
		}
	}
	return nil
}

// resolvePendingSideEffect settles a bare `import "x"` module's side-effect
// classification, left as Pending by the scanner because whether it has an
// observable effect depends on what "x" itself does. order is forward
// topological so every non-external, non-cyclic dependency of m has already
// run through this same resolution by the time m is processed; an external
// dependency is assumed to have a side effect (we cannot inspect it), and a
// dependency this module cycles back to (still Pending) is assumed to as
// well rather than risk dropping a real effect.
func (g *Graph) resolvePendingSideEffect(m *Module) {
	if m.SideEffect != SideEffectPending {
		return
	}
	for _, specifier := range m.Dependencies {
		resolved, ok := m.ResolvedModuleIds[specifier]
		if !ok {
			continue
		}
		if resolved.External {
			m.SideEffect = SideEffectFnCall
			return
		}
		dep := g.Modules[resolved.Id]
		if dep == nil {
			continue
		}
		if dep.SideEffect != SideEffectNone {
			m.SideEffect = SideEffectFnCall
			return
		}
	}
	m.SideEffect = SideEffectNone
}

// LinkImports runs §4.E stage 3: for every import binding in every module,
// chase the target's re-export chain to the module that actually declares
// the name, then union the importing local's mark with the declaration's
// mark so every reference to the import becomes a reference to the same
// equivalence class the declaration's own references use (esbuild's
// ref-to-ref aliasing via Symbol.Link, done here with mark.Box.Union).
func (g *Graph) LinkImports(order []string) error {
	for _, id := range order {
		m := g.Modules[id]
		for source, specs := range m.Imports {
			resolved, ok := m.ResolvedModuleIds[source]
			if !ok {
				continue
			}
			for _, spec := range specs {
				if resolved.External {
					// An external target has no marks of its own; the
					// importer's local alias stays its own equivalence
					// class, referencing an opaque external binding.
					continue
				}
				if spec.Original == "*" {
					g.bindNamespaceImport(m, spec, resolved.Id)
					continue
				}
				target := g.Modules[resolved.Id]
				if target == nil {
					continue
				}
				declMark, err := g.resolveExportChain(target, spec.Original, m.Id)
				if err != nil {
					return err
				}
				g.Marks.Union(spec.AliasMark, declMark)
				if spec.Original == "default" {
					target.SuggestedNames["default"] = spec.AliasName
				}
			}
		}
	}
	return nil
}

// resolveExportChain finds the mark backing name in mod's merged exports,
// reporting a LinkError (with a levenshtein-nearest suggestion among the
// names actually available, the same UX esbuild's "did you mean" resolver
// hints give) if it is missing.
func (g *Graph) resolveExportChain(mod *Module, name string, importer string) (mark.Mark, error) {
	if mk, ok := mod.MergedExports[name]; ok {
		return mk, nil
	}
	return 0, &berrors.LinkError{
		Importer:   importer,
		Source:     mod.Id,
		Original:   name,
		Suggestion: nearestExportName(mod, name),
	}
}

// nearestExportName returns the exported name of mod with the smallest
// Levenshtein distance to name, empty if mod exports nothing.
func nearestExportName(mod *Module, name string) string {
	best := ""
	bestDist := -1
	names := make([]string, 0, len(mod.MergedExports))
	for n := range mod.MergedExports {
		names = append(names, n)
	}
	sort.Strings(names) // deterministic tie-break
	for _, n := range names {
		d := levenshtein.Distance(name, n, nil)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = n
		}
	}
	return best
}

// bindNamespaceImport marks every exported binding of the target module as
// used and records that the importer needs a namespace object; the chunk
// assembler materializes the actual object once it sees NamespaceMark set.
func (g *Graph) bindNamespaceImport(importer *Module, spec SpecifierId, targetId string) {
	target := g.Modules[targetId]
	if target == nil {
		return
	}
	if !target.NamespaceMark.Valid() {
		target.NamespaceMark = g.Marks.New(stem(target.Id) + "_ns")
		target.NamespaceName = stem(target.Id) + "_ns"
	}
	for _, mk := range target.MergedExports {
		target.UsedExportedIds[mk] = true
	}
	g.Marks.Union(spec.AliasMark, target.NamespaceMark)
}

