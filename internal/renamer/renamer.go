// Package renamer implements component H: once linking has unified every
// import with the declaration it resolves to, many previously-distinct
// marks now share an equivalence class, and many unrelated declarations
// across different modules may carry the same human-readable name. This
// package walks every included declaration in reverse execution order and
// assigns each equivalence class a final, collision-free identifier, the
// same "last writer wins, earlier declarations get renamed out of the way"
// policy esbuild's renamer.NewNumberRenamer documents for its top-level
// scope.
package renamer

import (
	"fmt"

	"module-bundler/internal/graph"
	"module-bundler/internal/mark"
)

// Renamer is a NameResolver-compatible lookup built once per build and
// shared by every entry's chunk.
type Renamer struct {
	box   *mark.Box
	names map[mark.Mark]string
}

// Build assigns one final name per equivalence class reachable from the
// included top-level statements of modules, walking modules in reverse
// execution order (entry-most first) so that, on a name collision, the
// module closest to the entry keeps its preferred spelling and earlier
// dependencies are the ones renamed - mirroring esbuild's convention that
// a bundle's own entry code reads exactly as written, with library
// internals getting suffixed where they'd collide.
func Build(box *mark.Box, order []string, modules map[string]*graph.Module) *Renamer {
	r := &Renamer{box: box, names: make(map[mark.Mark]string)}

	used := make(map[string]bool, 64)
	assigned := make(map[mark.Mark]bool, 64)

	assign := func(root mark.Mark, preferred string) {
		if assigned[root] {
			return
		}
		assigned[root] = true
		name := preferred
		if name == "" {
			name = "_"
		}
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s$%d", preferred, n)
		}
		used[name] = true
		r.names[root] = name
	}

	for i := len(order) - 1; i >= 0; i-- {
		m := modules[order[i]]
		if m == nil || !m.Included {
			continue
		}
		defaultMark := m.LocalExports["default"]
		for _, stmt := range m.TopLevel {
			if !stmt.Included {
				continue
			}
			for _, mk := range stmt.DeclaredMarks {
				root := box.Find(mk)
				preferred := box.Name(root)
				if mk == defaultMark {
					if suggested, ok := m.SuggestedNames["default"]; ok {
						preferred = suggested
					}
				}
				assign(root, preferred)
			}
		}
		if m.NamespaceMark.Valid() {
			root := box.Find(m.NamespaceMark)
			assign(root, box.Name(root))
		}
	}

	return r
}

// Resolve is a jsprinter.NameResolver: it looks up mk's equivalence class
// and returns the name this Renamer assigned it, falling back to the
// caller-supplied spelling for a mark this Renamer never saw (e.g. an
// unresolved free variable, which must print verbatim).
func (r *Renamer) Resolve(mk mark.Mark, fallback string) string {
	if !mk.Valid() {
		return fallback
	}
	root := r.box.Find(mk)
	if name, ok := r.names[root]; ok {
		return name
	}
	return fallback
}
