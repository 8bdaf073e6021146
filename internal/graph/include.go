package graph

import "module-bundler/internal/mark"

// Include runs §4.E stage 4: a work-list reachability walk seeded from
// every entry module's exports (an entry's other top-level statements are
// retained only when reached from those exports or through its own side
// effect), pulling in whichever top-level statements declare a mark once something
// reachable references it, and - per the literal wording of the inclusion
// rule - retaining every statement of a module outright once that module's
// own SideEffect is non-None, rather than only the one statement that
// caused it.
func (g *Graph) Include(order []string) {
	declaredBy := make(map[mark.Mark]*TopLevelStmt, 64)
	declaredIn := make(map[mark.Mark]*Module, 64)
	namespaceOwner := make(map[mark.Mark]*Module, 8)
	for _, id := range order {
		m := g.Modules[id]
		for _, stmt := range m.TopLevel {
			for _, mk := range stmt.DeclaredMarks {
				root := g.Marks.Find(mk)
				declaredBy[root] = stmt
				declaredIn[root] = m
			}
		}
		if m.NamespaceMark.Valid() {
			namespaceOwner[g.Marks.Find(m.NamespaceMark)] = m
		}
	}

	var work []mark.Mark
	seen := make(map[mark.Mark]bool, 64)
	push := func(mk mark.Mark) {
		root := g.Marks.Find(mk)
		if !root.Valid() || seen[root] {
			return
		}
		seen[root] = true
		work = append(work, root)
	}

	// includeStmt marks stmt (and its module) included and pushes whatever
	// it references, so a statement reached only through whole-module
	// retention still seeds the worklist exactly as one reached through the
	// normal declared/referenced walk would.
	includeStmt := func(stmt *TopLevelStmt, mod *Module) {
		stmt.Included = true
		mod.Included = true
		for _, ref := range stmt.ReferencedMarks {
			push(ref)
		}
	}

	// Seed: every export of every entry module, plus whole-module retention
	// for any module whose top-level code has an observable side effect.
	for _, id := range order {
		m := g.Modules[id]
		if m.IsEntry {
			for _, mk := range m.MergedExports {
				push(mk)
			}
		}
		if m.SideEffect != SideEffectNone {
			for _, stmt := range m.TopLevel {
				includeStmt(stmt, m)
			}
		}
	}

	for len(work) > 0 {
		mk := work[len(work)-1]
		work = work[:len(work)-1]

		// A namespace import pulls in every name the namespace exposes,
		// not just the ones individually referenced off of it.
		if owner, ok := namespaceOwner[mk]; ok {
			for _, exported := range owner.MergedExports {
				push(exported)
			}
		}

		stmt, ok := declaredBy[mk]
		if !ok {
			continue // e.g. a namespace mark with no declaring statement
		}
		if stmt.Included {
			continue
		}
		includeStmt(stmt, declaredIn[mk])
	}
}
