package graph

// Order runs §4.E stage 1: two iterative DFSs over the same visited set,
// first rooted at the static entries following only static import/re-export
// edges, then rooted at every module reached dynamically, following the
// same static edges onward from there. A module is appended to the result
// on its second visit (postorder), and ExecOrder is assigned 0, 1, 2, ...
// in that order - the same "visit children, then yourself" shape esbuild's
// own findImportsAndExports traversal uses to get a bottom-up module list,
// done here with an explicit stack instead of recursion so a long import
// chain can't blow the Go stack.
func (g *Graph) Order() []string {
	visited := make(map[string]bool, len(g.Modules))
	var ordered []string

	dfs := func(root string) {
		type frame struct {
			id      string
			edgeIdx int
		}
		if visited[root] {
			return
		}
		stack := []frame{{id: root}}
		visited[root] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.staticChildren(top.id)

			advanced := false
			for top.edgeIdx < len(children) {
				child := children[top.edgeIdx]
				top.edgeIdx++
				if _, ok := g.Modules[child]; !ok {
					continue // external, never joins the module graph
				}
				if visited[child] {
					continue
				}
				visited[child] = true
				stack = append(stack, frame{id: child})
				advanced = true
				break
			}
			if advanced {
				continue
			}

			ordered = append(ordered, top.id)
			stack = stack[:len(stack)-1]
		}
	}

	for _, id := range g.InsertionOrder {
		if m := g.Modules[id]; m != nil && m.IsEntry {
			dfs(id)
		}
	}
	for _, e := range g.Edges {
		if e.Dynamic {
			dfs(e.To)
		}
	}
	// Anything still unreached: a defensive catch-all, in insertion order,
	// for ids AddModule saw but neither an entry nor a dynamic edge above
	// led to.
	for _, id := range g.InsertionOrder {
		dfs(id)
	}

	for i, id := range ordered {
		g.Modules[id].ExecOrder = i
	}
	return ordered
}

// staticChildren returns the ids a module reaches via static import or
// re-export edges, in source order.
func (g *Graph) staticChildren(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.From == id && !e.Dynamic && (e.Kind == EdgeImport || e.Kind == EdgeReExport || e.Kind == EdgeReExportAll) {
			out = append(out, e.To)
		}
	}
	return out
}
