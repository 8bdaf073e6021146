// Package jsprinter renders an ast.Program back to source text. It is the
// "accepts an AST, yields source text" half of the parser/codegen contract
// the specification treats as an external collaborator. Mirrors the shape
// of esbuild's js_printer (a single Printer struct accumulating into a
// byte buffer, one printStmt/printExpr pair per node kind) at a fraction of
// the size, since this bundler core never needs to print syntax this
// subset doesn't parse.
package jsprinter

import (
	"fmt"
	"strconv"
	"strings"

	"module-bundler/internal/ast"
	"module-bundler/internal/mark"
)

// NameResolver maps a mark to its final, de-conflicted spelling. The chunk
// assembler's renamer (component H) builds one of these per chunk.
type NameResolver func(m mark.Mark, fallback string) string

type Printer struct {
	sb       strings.Builder
	resolve  NameResolver
	indent   int
}

func New(resolve NameResolver) *Printer {
	if resolve == nil {
		resolve = func(_ mark.Mark, fallback string) string { return fallback }
	}
	return &Printer{resolve: resolve}
}

// Print renders every statement in stmts (already ordered and filtered by
// the inclusion pass) as a single program. Each module's statements are
// expected to have been concatenated by the caller (the chunk assembler).
func Print(stmts []ast.Stmt, resolve NameResolver) string {
	p := New(resolve)
	for _, s := range stmts {
		p.printStmt(s)
	}
	return p.sb.String()
}

func (p *Printer) writeIndent() {
	p.sb.WriteString(strings.Repeat("  ", p.indent))
}

func (p *Printer) name(id ast.Ident) string {
	return p.resolve(id.Mark, id.Name)
}

func (p *Printer) printStmt(s ast.Stmt) {
	p.writeIndent()
	switch d := s.Data.(type) {
	case *ast.SVarDecl:
		p.printVarDecl(*d)
		p.sb.WriteString(";\n")

	case *ast.SFunctionDecl:
		p.printFunctionDecl(*d)
		p.sb.WriteString("\n")

	case *ast.SClassDecl:
		p.printClassDecl(*d)
		p.sb.WriteString("\n")

	case *ast.SExpr:
		p.printExpr(d.Value, lowest)
		p.sb.WriteString(";\n")

	case *ast.SReturn:
		p.sb.WriteString("return")
		if d.Value != nil {
			p.sb.WriteString(" ")
			p.printExpr(*d.Value, lowest)
		}
		p.sb.WriteString(";\n")

	case *ast.SIf:
		p.sb.WriteString("if (")
		p.printExpr(d.Test, lowest)
		p.sb.WriteString(") {\n")
		p.indent++
		for _, s := range d.Yes {
			p.printStmt(s)
		}
		p.indent--
		p.writeIndent()
		p.sb.WriteString("}")
		if len(d.No) > 0 {
			p.sb.WriteString(" else {\n")
			p.indent++
			for _, s := range d.No {
				p.printStmt(s)
			}
			p.indent--
			p.writeIndent()
			p.sb.WriteString("}")
		}
		p.sb.WriteString("\n")

	case *ast.SBlock:
		if len(d.Stmts) == 0 {
			p.sb.WriteString("\n")
			return
		}
		p.sb.WriteString("{\n")
		p.indent++
		for _, s := range d.Stmts {
			p.printStmt(s)
		}
		p.indent--
		p.writeIndent()
		p.sb.WriteString("}\n")

	case *ast.SExportNamed:
		p.printExportNamed(*d)

	case *ast.SImport:
		// The chunk assembler only lets an SImport survive to the printer
		// when its specifier names an external module - every other import
		// is stripped before rendering since its bindings were unified into
		// the bundled declaration they point at.
		p.printImport(*d)

	case *ast.SExportAll, *ast.SExportDefault, *ast.SExportVarDecl,
		*ast.SExportFunctionDecl, *ast.SExportClassDecl:
		panic(fmt.Sprintf("internal error: module-syntax statement %T reached the printer; the chunk assembler must strip it first", d))

	default:
		panic(fmt.Sprintf("internal error: unhandled statement kind %T", d))
	}
}

func (p *Printer) printImport(d ast.SImport) {
	p.sb.WriteString("import ")
	wroteClause := false
	if d.DefaultLocal != nil {
		p.sb.WriteString(p.name(*d.DefaultLocal))
		wroteClause = true
	}
	if d.NamespaceLocal != nil {
		if wroteClause {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString("* as ")
		p.sb.WriteString(p.name(*d.NamespaceLocal))
		wroteClause = true
	}
	if len(d.Named) > 0 {
		if wroteClause {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString("{ ")
		for i, spec := range d.Named {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteString(spec.Imported)
			local := p.name(spec.Local)
			if local != spec.Imported {
				p.sb.WriteString(" as ")
				p.sb.WriteString(local)
			}
		}
		p.sb.WriteString(" }")
		wroteClause = true
	}
	if wroteClause {
		p.sb.WriteString(" from ")
	}
	p.sb.WriteString(quote(d.Specifier))
	p.sb.WriteString(";\n")
}

func (p *Printer) printExportNamed(d ast.SExportNamed) {
	p.sb.WriteString("export { ")
	for i, spec := range d.Specs {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(spec.Local)
		if spec.Exported != spec.Local {
			p.sb.WriteString(" as ")
			p.sb.WriteString(spec.Exported)
		}
	}
	p.sb.WriteString(" };\n")
}

func (p *Printer) printVarDecl(d ast.SVarDecl) {
	p.sb.WriteString(d.Kind.String())
	p.sb.WriteString(" ")
	for i, decl := range d.Decls {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.name(decl.Binding))
		if decl.Value != nil {
			p.sb.WriteString(" = ")
			p.printExpr(*decl.Value, lAssign)
		}
	}
}

func (p *Printer) printFunctionDecl(d ast.SFunctionDecl) {
	if d.IsAsync {
		p.sb.WriteString("async ")
	}
	p.sb.WriteString("function")
	if d.IsGen {
		p.sb.WriteString("*")
	}
	p.sb.WriteString(" ")
	p.sb.WriteString(p.name(d.Name))
	p.printParamsAndBody(d.Params, d.Body)
}

func (p *Printer) printParamsAndBody(params []string, body []ast.Stmt) {
	p.sb.WriteString("(")
	p.sb.WriteString(strings.Join(params, ", "))
	p.sb.WriteString(") {\n")
	p.indent++
	for _, s := range body {
		p.printStmt(s)
	}
	p.indent--
	p.writeIndent()
	p.sb.WriteString("}")
}

func (p *Printer) printClassDecl(d ast.SClassDecl) {
	p.sb.WriteString("class ")
	p.sb.WriteString(p.name(d.Name))
	if d.SuperClass != nil {
		p.sb.WriteString(" extends ")
		p.printExpr(*d.SuperClass, lCall)
	}
	p.printClassBody(d.Body)
}

func (p *Printer) printClassBody(members []ast.ClassMember) {
	p.sb.WriteString(" {\n")
	p.indent++
	for _, m := range members {
		p.writeIndent()
		if m.IsStatic {
			p.sb.WriteString("static ")
		}
		if m.Value != nil {
			if fn, ok := m.Value.Data.(*ast.EFunctionExpr); ok {
				p.sb.WriteString(m.Key)
				p.printParamsAndBody(fn.Params, fn.Body)
				p.sb.WriteString("\n")
				continue
			}
			p.sb.WriteString(m.Key)
			p.sb.WriteString(" = ")
			p.printExpr(*m.Value, lAssign)
			p.sb.WriteString(";\n")
			continue
		}
		p.sb.WriteString(m.Key)
		p.sb.WriteString(";\n")
	}
	p.indent--
	p.writeIndent()
	p.sb.WriteString("}")
}

// Precedence levels, used only to decide when to parenthesize a
// subexpression while printing.
type level uint8

const (
	lowest level = iota
	lAssign
	lCond
	lNullish
	lOr
	lAnd
	lEquals
	lCompare
	lAdd
	lMultiply
	lCall
)

var binOpLevel = map[string]level{
	"??": lNullish, "||": lOr, "&&": lAnd,
	"==": lEquals, "!=": lEquals, "===": lEquals, "!==": lEquals,
	"<": lCompare, ">": lCompare, "<=": lCompare, ">=": lCompare,
	"+": lAdd, "-": lAdd,
	"*": lMultiply, "/": lMultiply, "%": lMultiply,
}

func (p *Printer) printExpr(e ast.Expr, minLevel level) {
	switch d := e.Data.(type) {
	case *ast.EIdentifier:
		p.sb.WriteString(p.name(d.Ref))

	case *ast.ENumber:
		p.sb.WriteString(formatNumber(d.Value))

	case *ast.EString:
		p.sb.WriteString(quote(d.Value))

	case *ast.EBoolean:
		p.sb.WriteString(strconv.FormatBool(d.Value))

	case *ast.ENull:
		p.sb.WriteString("null")

	case *ast.EUndefined:
		p.sb.WriteString("undefined")

	case *ast.EThis:
		p.sb.WriteString("this")

	case *ast.ECall:
		wrap := d.IsNew && minLevel > lCall
		if wrap {
			p.sb.WriteString("(")
		}
		if d.IsNew {
			p.sb.WriteString("new ")
		}
		p.printExpr(d.Callee, lCall)
		p.sb.WriteString("(")
		for i, a := range d.Args {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.printExpr(a, lAssign)
		}
		p.sb.WriteString(")")
		if wrap {
			p.sb.WriteString(")")
		}

	case *ast.EImportCall:
		p.sb.WriteString("import(")
		p.printExpr(d.Arg, lAssign)
		p.sb.WriteString(")")

	case *ast.EDot:
		p.printExpr(d.Target, lCall)
		p.sb.WriteString(".")
		p.sb.WriteString(d.Prop)

	case *ast.EIndex:
		p.printExpr(d.Target, lCall)
		p.sb.WriteString("[")
		p.printExpr(d.Index, lowest)
		p.sb.WriteString("]")

	case *ast.ETemplate:
		if d.Tag != nil {
			p.printExpr(*d.Tag, lCall)
		}
		p.sb.WriteString("`")
		for i, q := range d.Quasis {
			p.sb.WriteString(q)
			if i < len(d.Exprs) {
				p.sb.WriteString("${")
				p.printExpr(d.Exprs[i], lowest)
				p.sb.WriteString("}")
			}
		}
		p.sb.WriteString("`")

	case *ast.EBinary:
		opLevel, isAssign := binOpLevel[d.Op], d.Op == "=" || strings.HasSuffix(d.Op, "=") && d.Op != "==" && d.Op != "!=" && d.Op != "===" && d.Op != "!=="
		wantLevel := opLevel
		if isAssign {
			wantLevel = lAssign
		}
		wrap := wantLevel < minLevel
		if wrap {
			p.sb.WriteString("(")
		}
		leftLevel, rightLevel := wantLevel, wantLevel+1
		if isAssign {
			leftLevel, rightLevel = lowest+1, lAssign
		}
		p.printExpr(d.Left, leftLevel)
		p.sb.WriteString(" ")
		p.sb.WriteString(d.Op)
		p.sb.WriteString(" ")
		p.printExpr(d.Right, rightLevel)
		if wrap {
			p.sb.WriteString(")")
		}

	case *ast.ECond:
		wrap := lCond < minLevel
		if wrap {
			p.sb.WriteString("(")
		}
		p.printExpr(d.Test, lNullish)
		p.sb.WriteString(" ? ")
		p.printExpr(d.Yes, lAssign)
		p.sb.WriteString(" : ")
		p.printExpr(d.No, lAssign)
		if wrap {
			p.sb.WriteString(")")
		}

	case *ast.EFunctionExpr:
		p.sb.WriteString("function")
		if d.Name != "" {
			p.sb.WriteString(" ")
			p.sb.WriteString(d.Name)
		}
		p.sb.WriteString(" ")
		p.printParamsAndBody(d.Params, d.Body)

	case *ast.EArrow:
		p.sb.WriteString("(")
		p.sb.WriteString(strings.Join(d.Params, ", "))
		p.sb.WriteString(") => ")
		if d.Body != nil {
			p.sb.WriteString("{\n")
			p.indent++
			for _, s := range d.Body {
				p.printStmt(s)
			}
			p.indent--
			p.writeIndent()
			p.sb.WriteString("}")
		} else {
			p.printExpr(*d.Expr, lAssign)
		}

	case *ast.EClassExpr:
		p.sb.WriteString("class")
		if d.Name != "" {
			p.sb.WriteString(" ")
			p.sb.WriteString(d.Name)
		}
		if d.SuperClass != nil {
			p.sb.WriteString(" extends ")
			p.printExpr(*d.SuperClass, lCall)
		}
		p.printClassBody(d.Body)

	case *ast.EObject:
		p.sb.WriteString("{ ")
		for i, prop := range d.Properties {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			if ident, ok := prop.Value.Data.(*ast.EIdentifier); ok && prop.Shorthand && p.name(ident.Ref) == prop.Key {
				p.sb.WriteString(prop.Key)
			} else {
				p.sb.WriteString(prop.Key)
				p.sb.WriteString(": ")
				p.printExpr(prop.Value, lAssign)
			}
		}
		p.sb.WriteString(" }")

	case *ast.EArray:
		p.sb.WriteString("[")
		for i, item := range d.Items {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.printExpr(item, lAssign)
		}
		p.sb.WriteString("]")

	default:
		panic(fmt.Sprintf("internal error: unhandled expression kind %T", d))
	}
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func quote(s string) string {
	return strconv.Quote(s)
}
