package scanner

import (
	"module-bundler/internal/ast"
	"module-bundler/internal/graph"
	"module-bundler/internal/mark"
)

func (s *scannerState) resolvePass(stmts []ast.Stmt, top *scope) error {
	for i := range stmts {
		tls, err := s.resolveTopLevelStmt(&stmts[i], top)
		if err != nil {
			return err
		}
		if tls != nil {
			s.module.TopLevel = append(s.module.TopLevel, tls)
			s.module.SideEffect = firstNonNone(s.module.SideEffect, tls.SideEffect)
		}
	}
	return nil
}

func (s *scannerState) resolveTopLevelStmt(stmt *ast.Stmt, top *scope) (*graph.TopLevelStmt, error) {
	tls := &graph.TopLevelStmt{Stmt: *stmt}
	collect := func(m mark.Mark) {
		if m.Valid() {
			tls.ReferencedMarks = append(tls.ReferencedMarks, m)
		}
	}

	switch d := stmt.Data.(type) {
	case *ast.SVarDecl:
		for i := range d.Decls {
			tls.DeclaredMarks = append(tls.DeclaredMarks, d.Decls[i].Binding.Mark)
			if d.Decls[i].Value != nil {
				se := s.resolveExpr(d.Decls[i].Value, top, collect)
				tls.SideEffect = firstNonNone(tls.SideEffect, se)
			}
		}

	case *ast.SExportVarDecl:
		for i := range d.Decl.Decls {
			tls.DeclaredMarks = append(tls.DeclaredMarks, d.Decl.Decls[i].Binding.Mark)
			if d.Decl.Decls[i].Value != nil {
				se := s.resolveExpr(d.Decl.Decls[i].Value, top, collect)
				tls.SideEffect = firstNonNone(tls.SideEffect, se)
			}
		}

	case *ast.SFunctionDecl:
		tls.DeclaredMarks = append(tls.DeclaredMarks, d.Name.Mark)
		s.resolveFunctionBody(d.Params, d.Body, top, collect)

	case *ast.SExportFunctionDecl:
		tls.DeclaredMarks = append(tls.DeclaredMarks, d.Decl.Name.Mark)
		s.resolveFunctionBody(d.Decl.Params, d.Decl.Body, top, collect)

	case *ast.SClassDecl:
		tls.DeclaredMarks = append(tls.DeclaredMarks, d.Name.Mark)
		s.resolveClassBody(d.SuperClass, d.Body, top, collect)

	case *ast.SExportClassDecl:
		tls.DeclaredMarks = append(tls.DeclaredMarks, d.Decl.Name.Mark)
		s.resolveClassBody(d.Decl.SuperClass, d.Decl.Body, top, collect)

	case *ast.SExpr:
		se := s.resolveExpr(&d.Value, top, collect)
		tls.SideEffect = firstNonNone(tls.SideEffect, se)

	case *ast.SImport:
		tls.IsModuleSyntax = true
		for _, sids := range s.module.Imports[d.Specifier] {
			tls.DeclaredMarks = append(tls.DeclaredMarks, sids.AliasMark)
		}

	case *ast.SExportNamed:
		tls.IsModuleSyntax = true
		if d.Specifier == "" {
			for _, spec := range d.Specs {
				m, ok := top.lookup(spec.Local)
				if !ok {
					return nil, s.fail("export of undeclared name %q", spec.Local)
				}
				s.module.LocalExports[spec.Exported] = m
				collect(m)
			}
		}

	case *ast.SExportAll:
		tls.IsModuleSyntax = true

	case *ast.SExportDefault:
		tls.IsModuleSyntax = true
		switch {
		case d.Func != nil:
			tls.DeclaredMarks = append(tls.DeclaredMarks, d.Func.Name.Mark)
			s.resolveFunctionBody(d.Func.Params, d.Func.Body, top, collect)
		case d.Class != nil:
			tls.DeclaredMarks = append(tls.DeclaredMarks, d.Class.Name.Mark)
			s.resolveClassBody(d.Class.SuperClass, d.Class.Body, top, collect)
		default:
			se := s.resolveExpr(d.Value, top, collect)
			tls.SideEffect = firstNonNone(tls.SideEffect, se)
			if id, ok := d.Value.Data.(*ast.EIdentifier); ok {
				s.module.LocalExports["default"] = id.Ref.Mark
			} else {
				tls.DeclaredMarks = append(tls.DeclaredMarks, s.module.LocalExports["default"])
			}
		}

	default:
		// SReturn/SIf/SBlock never appear at true module top level for
		// valid ESM; nothing to do if they sneak in from a malformed file.
	}

	return tls, nil
}

// resolveFunctionBody pushes a function scope with the given params and
// walks the body, collecting marks referenced from outside the function
// via collect (so including the enclosing declaration pulls in whatever it
// calls).
func (s *scannerState) resolveFunctionBody(params []string, body []ast.Stmt, parent *scope, collect func(mark.Mark)) {
	fnScope := newScope(scopeFn, parent)
	for _, p := range params {
		fnScope.declared[p] = s.box.New(p)
	}
	s.resolveStmts(body, fnScope, collect)
}

func (s *scannerState) resolveClassBody(super *ast.Expr, members []ast.ClassMember, parent *scope, collect func(mark.Mark)) {
	if super != nil {
		s.resolveExpr(super, parent, collect)
	}
	for i := range members {
		if members[i].Value == nil {
			continue
		}
		if fn, ok := members[i].Value.Data.(*ast.EFunctionExpr); ok {
			s.resolveFunctionBody(fn.Params, fn.Body, parent, collect)
			continue
		}
		s.resolveExpr(members[i].Value, parent, collect)
	}
}

func (s *scannerState) resolveStmts(stmts []ast.Stmt, sc *scope, collect func(mark.Mark)) {
	for i := range stmts {
		s.resolveNestedStmt(&stmts[i], sc, collect)
	}
}

// resolveNestedStmt handles statement forms that can appear inside a
// function/class body. Declarations made here are function-scoped (no
// block scoping distinction is modeled, matching this bundler's reduced
// grammar).
func (s *scannerState) resolveNestedStmt(stmt *ast.Stmt, sc *scope, collect func(mark.Mark)) {
	switch d := stmt.Data.(type) {
	case *ast.SVarDecl:
		target := sc
		if d.Kind == ast.VarVar {
			target = sc.nearestHoistTarget()
		}
		for i := range d.Decls {
			name := d.Decls[i].Binding.Name
			m, ok := target.declared[name]
			if !ok {
				m = s.box.New(name)
				target.declared[name] = m
			}
			d.Decls[i].Binding.Mark = m
			if d.Decls[i].Value != nil {
				s.resolveExpr(d.Decls[i].Value, sc, collect)
			}
		}

	case *ast.SFunctionDecl:
		m := s.box.New(d.Name.Name)
		sc.nearestHoistTarget().declared[d.Name.Name] = m
		d.Name.Mark = m
		s.resolveFunctionBody(d.Params, d.Body, sc, collect)

	case *ast.SExpr:
		s.resolveExpr(&d.Value, sc, collect)

	case *ast.SReturn:
		if d.Value != nil {
			s.resolveExpr(d.Value, sc, collect)
		}

	case *ast.SIf:
		s.resolveExpr(&d.Test, sc, collect)
		s.resolveStmts(d.Yes, sc, collect)
		s.resolveStmts(d.No, sc, collect)

	case *ast.SBlock:
		s.resolveStmts(d.Stmts, sc, collect)
	}
}

// resolveExpr resolves every identifier reference inside e (recursively),
// stamping marks and reporting each one via collect, and returns the
// side-effect classification of e in isolation (used by SVarDecl
// initializers and bare expression statements).
func (s *scannerState) resolveExpr(e *ast.Expr, sc *scope, collect func(mark.Mark)) graph.SideEffect {
	switch d := e.Data.(type) {
	case *ast.EIdentifier:
		if m, ok := sc.lookup(d.Ref.Name); ok {
			d.Ref.Mark = m
			collect(m)
			return graph.SideEffectNone
		}
		d.Ref.Mark = s.unresolved
		return graph.SideEffectVisitGlobalVar

	case *ast.EThis:
		return graph.SideEffectVisitThis

	case *ast.ENumber, *ast.EString, *ast.EBoolean, *ast.ENull, *ast.EUndefined:
		return graph.SideEffectNone

	case *ast.ECall:
		s.resolveExpr(&d.Callee, sc, collect)
		for i := range d.Args {
			s.resolveExpr(&d.Args[i], sc, collect)
		}
		return graph.SideEffectFnCall

	case *ast.EImportCall:
		if str, ok := d.Arg.Data.(*ast.EString); ok {
			s.addDynDependency(str.Value)
		} else {
			s.resolveExpr(&d.Arg, sc, collect)
		}
		return graph.SideEffectFnCall

	case *ast.EDot:
		known := isKnownLocalChain(d.Target, sc)
		s.resolveExpr(&d.Target, sc, collect)
		if known {
			return graph.SideEffectNone
		}
		return graph.SideEffectVisitProp

	case *ast.EIndex:
		s.resolveExpr(&d.Target, sc, collect)
		s.resolveExpr(&d.Index, sc, collect)
		return graph.SideEffectVisitProp

	case *ast.ETemplate:
		for i := range d.Exprs {
			s.resolveExpr(&d.Exprs[i], sc, collect)
		}
		if d.Tag != nil {
			s.resolveExpr(d.Tag, sc, collect)
			return graph.SideEffectFnCall
		}
		return graph.SideEffectNone

	case *ast.EBinary:
		s.resolveExpr(&d.Left, sc, collect)
		s.resolveExpr(&d.Right, sc, collect)
		return graph.SideEffectNone

	case *ast.ECond:
		s.resolveExpr(&d.Test, sc, collect)
		s.resolveExpr(&d.Yes, sc, collect)
		s.resolveExpr(&d.No, sc, collect)
		return graph.SideEffectNone

	case *ast.EFunctionExpr:
		s.resolveFunctionBody(d.Params, d.Body, sc, collect)
		return graph.SideEffectNone

	case *ast.EArrow:
		fnScope := newScope(scopeFn, sc)
		for _, p := range d.Params {
			fnScope.declared[p] = s.box.New(p)
		}
		if d.Expr != nil {
			s.resolveExpr(d.Expr, fnScope, collect)
		} else {
			s.resolveStmts(d.Body, fnScope, collect)
		}
		return graph.SideEffectNone

	case *ast.EClassExpr:
		s.resolveClassBody(d.SuperClass, d.Body, sc, collect)
		return graph.SideEffectNone

	case *ast.EObject:
		for i := range d.Properties {
			s.resolveExpr(&d.Properties[i].Value, sc, collect)
		}
		return graph.SideEffectNone

	case *ast.EArray:
		for i := range d.Items {
			s.resolveExpr(&d.Items[i], sc, collect)
		}
		return graph.SideEffectNone
	}
	return graph.SideEffectNone
}

// isKnownLocalChain reports whether the base of a member-access chain is a
// resolvable local binding, used to tell `knownLocal.prop` (no side effect)
// apart from `freeOrGlobal.prop` (VisitProp) per the scanner's table.
func isKnownLocalChain(e ast.Expr, sc *scope) bool {
	switch d := e.Data.(type) {
	case *ast.EIdentifier:
		_, ok := sc.lookup(d.Ref.Name)
		return ok
	case *ast.EDot:
		return isKnownLocalChain(d.Target, sc)
	case *ast.EIndex:
		return isKnownLocalChain(d.Target, sc)
	default:
		return false
	}
}
