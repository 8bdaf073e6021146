// Package scanner implements component C: a single AST traversal that
// mints declaration marks, resolves every identifier reference to a mark,
// and scrapes the import/export/dependency relations and side-effect
// classification a Module record needs. It mirrors the shape of esbuild's
// parser-time binding pass (internal/js_parser's scope stack and "declare
// then resolve" structure) except split out as its own pass over an
// already-parsed ast.Program, per this bundler's external parser boundary.
package scanner

import (
	"fmt"

	"module-bundler/internal/ast"
	"module-bundler/internal/berrors"
	"module-bundler/internal/graph"
	"module-bundler/internal/mark"
)

// Scan runs the scanner over a parsed program, returning a populated
// Module. unresolved is the bundle-wide mark stamped on every free
// identifier reference.
func Scan(id string, prog ast.Program, box *mark.Box, unresolved mark.Mark) (*graph.Module, error) {
	m := graph.NewModule(id)
	m.Program = prog
	s := &scannerState{module: m, box: box, unresolved: unresolved, id: id,
		seenDeps: map[string]bool{}, seenDynDeps: map[string]bool{}, seenReExportAll: map[string]bool{},
		varNames: map[string]bool{}}

	top := newScope(scopeModule, nil)
	if err := s.declarePass(prog.Stmts, top); err != nil {
		return nil, err
	}
	if err := s.resolvePass(prog.Stmts, top); err != nil {
		return nil, err
	}
	return m, nil
}

type scannerState struct {
	module          *graph.Module
	box             *mark.Box
	unresolved      mark.Mark
	id              string
	seenDeps        map[string]bool
	seenDynDeps     map[string]bool
	seenReExportAll map[string]bool
	varNames        map[string]bool
}

func (s *scannerState) fail(format string, args ...interface{}) error {
	return &berrors.ScanError{Id: s.id, Reason: fmt.Sprintf(format, args...)}
}

func (s *scannerState) addDependency(specifier string) {
	if !s.seenDeps[specifier] {
		s.seenDeps[specifier] = true
		s.module.Dependencies = append(s.module.Dependencies, specifier)
	}
}

func (s *scannerState) addDynDependency(specifier string) {
	if !s.seenDynDeps[specifier] {
		s.seenDynDeps[specifier] = true
		s.module.DynDependencies = append(s.module.DynDependencies, specifier)
	}
}

// declareTop declares name in the module's top scope, honoring the "var
// redeclaration is fine, anything else is a hard error" rule, and returns
// the mark to use (reusing an existing var's mark on redeclaration).
func (s *scannerState) declareTop(top *scope, name string, kind ast.VarKind, isVar bool) (mark.Mark, error) {
	if existing, ok := top.declared[name]; ok {
		if isVar && s.varNames[name] {
			return existing, nil
		}
		return 0, s.fail("duplicate declaration of %q", name)
	}
	newMark := s.box.New(name)
	top.declared[name] = newMark
	s.module.LocalBindedIds[name] = newMark
	if isVar {
		s.varNames[name] = true
	}
	return newMark, nil
}

func (s *scannerState) declarePass(stmts []ast.Stmt, top *scope) error {
	// Pre-pass: function/class/var/let/const/import declarations are all
	// collected before the resolve pass runs, so forward references within
	// the same module (most commonly to a function declared later) work
	// without a separate hoister step.
	for i := range stmts {
		if err := s.declareStmt(&stmts[i], top); err != nil {
			return err
		}
	}
	return nil
}

func (s *scannerState) declareStmt(stmt *ast.Stmt, top *scope) error {
	switch d := stmt.Data.(type) {
	case *ast.SVarDecl:
		return s.declareVarDecl(d, top)

	case *ast.SExportVarDecl:
		if err := s.declareVarDecl(&d.Decl, top); err != nil {
			return err
		}
		for _, decl := range d.Decl.Decls {
			s.module.LocalExports[decl.Binding.Name] = top.declared[decl.Binding.Name]
		}
		return nil

	case *ast.SFunctionDecl:
		m, err := s.declareTop(top, d.Name.Name, ast.VarVar, false)
		if err != nil {
			return err
		}
		d.Name.Mark = m
		return nil

	case *ast.SExportFunctionDecl:
		m, err := s.declareTop(top, d.Decl.Name.Name, ast.VarVar, false)
		if err != nil {
			return err
		}
		d.Decl.Name.Mark = m
		s.module.LocalExports[d.Decl.Name.Name] = m
		return nil

	case *ast.SClassDecl:
		m, err := s.declareTop(top, d.Name.Name, ast.VarVar, false)
		if err != nil {
			return err
		}
		d.Name.Mark = m
		return nil

	case *ast.SExportClassDecl:
		m, err := s.declareTop(top, d.Decl.Name.Name, ast.VarVar, false)
		if err != nil {
			return err
		}
		d.Decl.Name.Mark = m
		s.module.LocalExports[d.Decl.Name.Name] = m
		return nil

	case *ast.SImport:
		return s.declareImport(d, top)

	case *ast.SExportNamed:
		if d.Specifier != "" {
			s.addDependency(d.Specifier)
			for _, spec := range d.Specs {
				s.module.ReExports[d.Specifier] = append(s.module.ReExports[d.Specifier], graph.Specifier{Alias: spec.Exported, Original: spec.Local})
			}
		}
		// Local-only `export { a, b as c }` is resolved against the module
		// scope (top-level declarations and imports) in the resolve pass,
		// once every top-level name is known to be declared.
		return nil

	case *ast.SExportAll:
		s.addDependency(d.Specifier)
		if !s.seenReExportAll[d.Specifier] {
			s.seenReExportAll[d.Specifier] = true
			s.module.ReExportAllSrcs = append(s.module.ReExportAllSrcs, d.Specifier)
		}
		return nil

	case *ast.SExportDefault:
		return s.declareExportDefault(d, top)
	}
	return nil
}

func (s *scannerState) declareVarDecl(d *ast.SVarDecl, top *scope) error {
	for i := range d.Decls {
		m, err := s.declareTop(top, d.Decls[i].Binding.Name, d.Kind, d.Kind == ast.VarVar)
		if err != nil {
			return err
		}
		d.Decls[i].Binding.Mark = m
	}
	return nil
}

func (s *scannerState) declareImport(d *ast.SImport, top *scope) error {
	s.addDependency(d.Specifier)
	addBinding := func(alias string, original string) graph.SpecifierId {
		if _, exists := top.declared[alias]; exists {
			return graph.SpecifierId{}
		}
		m := s.box.New(alias)
		top.declared[alias] = m
		return graph.SpecifierId{AliasName: alias, AliasMark: m, Original: original}
	}
	var specs []graph.SpecifierId
	if d.DefaultLocal != nil {
		sid := addBinding(d.DefaultLocal.Name, "default")
		d.DefaultLocal.Mark = sid.AliasMark
		specs = append(specs, sid)
	}
	if d.NamespaceLocal != nil {
		sid := addBinding(d.NamespaceLocal.Name, "*")
		d.NamespaceLocal.Mark = sid.AliasMark
		specs = append(specs, sid)
	}
	for i := range d.Named {
		sid := addBinding(d.Named[i].Local.Name, d.Named[i].Imported)
		d.Named[i].Local.Mark = sid.AliasMark
		specs = append(specs, sid)
	}
	if len(specs) > 0 {
		s.module.Imports[d.Specifier] = append(s.module.Imports[d.Specifier], specs...)
	} else if d.DefaultLocal == nil && d.NamespaceLocal == nil && len(d.Named) == 0 {
		// Bare `import "x"`: side effect only, resolved during linking.
		s.module.SideEffect = firstNonNone(s.module.SideEffect, graph.SideEffectPending)
	}
	return nil
}

func (s *scannerState) declareExportDefault(d *ast.SExportDefault, top *scope) error {
	switch {
	case d.Func != nil:
		if d.Func.Name.Name == "" {
			newMark := s.box.New("default")
			d.Func.Name.Mark = newMark
			s.module.LocalExports["default"] = newMark
			s.module.DefaultNeedsName = true
			return nil
		}
		m, err := s.declareTop(top, d.Func.Name.Name, ast.VarVar, false)
		if err != nil {
			return err
		}
		d.Func.Name.Mark = m
		s.module.LocalExports["default"] = m
		return nil

	case d.Class != nil:
		if d.Class.Name.Name == "" {
			newMark := s.box.New("default")
			d.Class.Name.Mark = newMark
			s.module.LocalExports["default"] = newMark
			s.module.DefaultNeedsName = true
			return nil
		}
		m, err := s.declareTop(top, d.Class.Name.Name, ast.VarVar, false)
		if err != nil {
			return err
		}
		d.Class.Name.Mark = m
		s.module.LocalExports["default"] = m
		return nil

	default: // export default <expr>
		if _, ok := d.Value.Data.(*ast.EIdentifier); ok {
			// Left for the resolve pass: the identifier might reference a
			// declaration this pre-pass hasn't reached yet, so its mark
			// isn't known until scope resolution runs.
			return nil
		}
		newMark := s.box.New("default")
		s.module.LocalExports["default"] = newMark
		s.module.DefaultNeedsBinding = true
		return nil
	}
}

func firstNonNone(cur, next graph.SideEffect) graph.SideEffect {
	if cur != graph.SideEffectNone {
		return cur
	}
	return next
}
