// Package chunk implements component G: once linking and tree-shaking have
// decided which statements survive, this package turns one entry point's
// reachable, included modules into a single self-contained program. It
// strips every module-syntax statement, synthesizes the namespace objects
// and default-export shims the linker's bookkeeping asked for, and emits a
// trailing `export { ... }` naming the entry's own surface - the same
// "concatenate in dependency order, rewrite the edges" approach esbuild's
// linker.generateChunkJS takes, minus code splitting (a single chunk per
// entry; shared dependencies are duplicated across entries rather than
// factored into a shared chunk, which this bundler does not attempt).
package chunk

import (
	"sort"

	"module-bundler/internal/ast"
	"module-bundler/internal/graph"
	"module-bundler/internal/jsprinter"
	"module-bundler/internal/renamer"
)

// Output is one emitted file body, not yet given a final path; the
// orchestrator (component I) owns expanding entryFileNames into a name.
type Output struct {
	Code string
}

// Assemble builds entry's chunk: every included module reachable from it
// (via static or dynamic edges; a dynamic import() target still lands in
// the same chunk since this bundler never splits), concatenated in
// execution order.
func Assemble(entry *graph.Module, g *graph.Graph, order []string, ren *renamer.Renamer) Output {
	resolve := jsprinter.NameResolver(ren.Resolve)
	reachable := reachableFrom(entry, g)

	var stmts []ast.Stmt
	for _, id := range order {
		if !reachable[id] {
			continue
		}
		m := g.Modules[id]
		if m == nil || !m.Included {
			continue
		}
		stmts = append(stmts, namespaceStmtsFor(m)...)
		for _, tls := range m.TopLevel {
			if !tls.Included {
				continue
			}
			if s := lowerStmt(tls.Stmt, m); s != nil {
				stmts = append(stmts, *s)
			}
		}
	}

	if export := entryExportStmt(entry, resolve); export != nil {
		stmts = append(stmts, *export)
	}

	return Output{Code: jsprinter.Print(stmts, resolve)}
}

// reachableFrom walks every edge (static and dynamic alike) starting at
// entry, never crossing into a module the graph doesn't have a record for
// (an external specifier).
func reachableFrom(entry *graph.Module, g *graph.Graph) map[string]bool {
	seen := map[string]bool{entry.Id: true}
	stack := []string{entry.Id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.Edges {
			if e.From != id || seen[e.To] {
				continue
			}
			if g.Modules[e.To] == nil {
				continue
			}
			seen[e.To] = true
			stack = append(stack, e.To)
		}
	}
	return seen
}

// lowerStmt turns one included top-level statement into something the
// printer can render: import/export-named/export-all statements carry no
// runtime code of their own and are dropped; the export-qualified
// declaration forms are unwrapped into their plain declaration; a default
// export is handed to lowerDefault.
func lowerStmt(stmt ast.Stmt, m *graph.Module) *ast.Stmt {
	switch d := stmt.Data.(type) {
	case *ast.SImport:
		// An import of an external module is never inlined - nothing to
		// unify its bindings with - so the import itself must survive,
		// renamed like any other declaration so it stays collision-free
		// against the rest of the chunk.
		if resolved, ok := m.ResolvedModuleIds[d.Specifier]; ok && resolved.External {
			imp := *d
			return &ast.Stmt{Data: &imp, Loc: stmt.Loc}
		}
		return nil

	case *ast.SExportNamed, *ast.SExportAll:
		return nil

	case *ast.SExportVarDecl:
		return &ast.Stmt{Data: &d.Decl, Loc: stmt.Loc}

	case *ast.SExportFunctionDecl:
		return &ast.Stmt{Data: &d.Decl, Loc: stmt.Loc}

	case *ast.SExportClassDecl:
		return &ast.Stmt{Data: &d.Decl, Loc: stmt.Loc}

	case *ast.SExportDefault:
		return lowerDefault(d, m, stmt.Loc)

	default:
		return &stmt
	}
}

// lowerDefault implements the three rewrite shapes §9 distinguishes: a
// named function/class declaration prints as itself (it already bound its
// own name during scanning); an anonymous one was minted a synthetic
// "default" mark at scan time and prints under whatever name the renamer
// gave that mark; a bare identifier prints nothing, since the default
// export already shares that identifier's declaration mark; any other bare
// expression is lifted into its own `var` so other statements in the chunk
// can reference the default export by mark like any other binding.
func lowerDefault(d *ast.SExportDefault, m *graph.Module, loc ast.Loc) *ast.Stmt {
	switch {
	case d.Func != nil:
		fn := *d.Func
		return &ast.Stmt{Data: &fn, Loc: loc}

	case d.Class != nil:
		cl := *d.Class
		return &ast.Stmt{Data: &cl, Loc: loc}

	default:
		if _, ok := d.Value.Data.(*ast.EIdentifier); ok {
			return nil
		}
		mk := m.LocalExports["default"]
		return &ast.Stmt{Loc: loc, Data: &ast.SVarDecl{
			Kind: ast.VarVar,
			Decls: []ast.Declarator{{
				Binding: ast.Ident{Name: "default", Mark: mk},
				Value:   d.Value,
			}},
		}}
	}
}

// namespaceStmtsFor synthesizes `var ns = Object.freeze({ __proto__:
// null, ... })` for a module whose namespace object some importer actually
// needs (NamespaceMark set during linking, §9's frozen-namespace-object
// design), with keys in sorted order so chunk output is deterministic
// regardless of map iteration.
func namespaceStmtsFor(m *graph.Module) []ast.Stmt {
	if !m.NamespaceMark.Valid() {
		return nil
	}

	names := make([]string, 0, len(m.MergedExports))
	for n := range m.MergedExports {
		names = append(names, n)
	}
	sort.Strings(names)

	props := []ast.Property{{Key: "__proto__", Value: ast.Expr{Data: &ast.ENull{}}}}
	for _, n := range names {
		props = append(props, ast.Property{
			Key:   n,
			Value: ast.Expr{Data: &ast.EIdentifier{Ref: ast.Ident{Name: n, Mark: m.MergedExports[n]}}},
		})
	}

	freeze := ast.Expr{Data: &ast.ECall{
		Callee: ast.Expr{Data: &ast.EDot{
			Target: ast.Expr{Data: &ast.EIdentifier{Ref: ast.Ident{Name: "Object"}}},
			Prop:   "freeze",
		}},
		Args: []ast.Expr{{Data: &ast.EObject{Properties: props}}},
	}}

	decl := ast.Stmt{Data: &ast.SVarDecl{
		Kind: ast.VarVar,
		Decls: []ast.Declarator{{
			Binding: ast.Ident{Name: m.NamespaceName, Mark: m.NamespaceMark},
			Value:   &freeze,
		}},
	}}
	return []ast.Stmt{decl}
}

// entryExportStmt names entry's own surface, the same trailing `export {
// ... }` esbuild emits for an ESM entry chunk; Local is already the final,
// de-conflicted spelling since printExportNamed prints its specifiers
// verbatim rather than resolving them through a NameResolver.
func entryExportStmt(entry *graph.Module, resolve jsprinter.NameResolver) *ast.Stmt {
	names := make([]string, 0, len(entry.MergedExports))
	for n := range entry.MergedExports {
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	specs := make([]ast.ExportSpecifier, 0, len(names))
	for _, n := range names {
		specs = append(specs, ast.ExportSpecifier{
			Local:    resolve(entry.MergedExports[n], n),
			Exported: n,
		})
	}
	return &ast.Stmt{Data: &ast.SExportNamed{Specs: specs}}
}
