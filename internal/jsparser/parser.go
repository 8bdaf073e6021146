// Package jsparser turns source text into an ast.Program. It implements the
// "accepts source text, yields an AST" half of the parser/codegen contract
// the specification treats as an external collaborator; this is a compact
// recursive-descent parser over the ECMAScript subset the bundler core
// needs (module declarations, and enough statement/expression grammar to
// track side effects and references), modeled after the statement/
// expression-level structure of esbuild's js_parser (parseStmt / parseExpr
// with a precedence-climbing expression parser), not a spec-complete parser.
//
// Identifiers are parsed with a zero Mark; internal/scanner is the pass
// that mints and resolves marks.
package jsparser

import (
	"fmt"

	"module-bundler/internal/ast"
	"module-bundler/internal/jslexer"
)

// Parser holds the lexer and does not do any binding resolution itself.
type Parser struct {
	lex  *jslexer.Lexer
	path string
}

// Parse parses source text from the named file (used only for error
// messages) into a Program.
func Parse(path, source string) (ast.Program, error) {
	p := &Parser{lex: jslexer.NewLexer(source), path: path}
	var prog ast.Program
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if pe, ok := r.(parseError); ok {
					err = fmt.Errorf("%s: %s", path, pe.msg)
					return
				}
				panic(r)
			}
		}()
		for p.lex.Token != jslexer.TEndOfFile {
			prog.Stmts = append(prog.Stmts, p.parseStmt())
		}
	}()
	return prog, err
}

type parseError struct{ msg string }

func (p *Parser) fail(format string, args ...interface{}) {
	panic(parseError{msg: fmt.Sprintf(format, args...) + fmt.Sprintf(" (byte %d)", p.lex.Start())})
}

func (p *Parser) expectPunct(punct string) {
	if !p.lex.IsPunct(punct) {
		p.fail("expected %q but found %q", punct, p.lex.Raw())
	}
	p.lex.Next()
}

func (p *Parser) expectIdentifier() string {
	if p.lex.Token != jslexer.TIdentifier {
		p.fail("expected identifier but found %q", p.lex.Raw())
	}
	name := p.lex.Ident
	p.lex.Next()
	return name
}

func (p *Parser) ident() ast.Ident {
	loc := ast.Loc{Start: int32(p.lex.Start())}
	name := p.expectIdentifier()
	return ast.Ident{Name: name, Loc: loc}
}

// skipSemi consumes an optional trailing ";" (ASI is not modeled precisely;
// a missing semicolon before the next statement is tolerated).
func (p *Parser) skipSemi() {
	if p.lex.IsPunct(";") {
		p.lex.Next()
	}
}

// ---------------------------------------------------------------- statements

func (p *Parser) parseStmt() ast.Stmt {
	loc := ast.Loc{Start: int32(p.lex.Start())}

	switch {
	case p.lex.IsKeyword("import") && p.peekIsPunct("("):
		e := p.parseExpr(lowest)
		p.skipSemi()
		return ast.Stmt{Loc: loc, Data: &ast.SExpr{Value: e}}

	case p.lex.IsKeyword("import"):
		return ast.Stmt{Loc: loc, Data: p.parseImport()}

	case p.lex.IsKeyword("export"):
		return ast.Stmt{Loc: loc, Data: p.parseExport()}

	case p.lex.IsKeyword("var") || p.lex.IsKeyword("let") || p.lex.IsKeyword("const"):
		decl := p.parseVarDecl()
		p.skipSemi()
		return ast.Stmt{Loc: loc, Data: &decl}

	case p.lex.IsKeyword("function"):
		fn := p.parseFunctionDecl()
		return ast.Stmt{Loc: loc, Data: &fn}

	case p.lex.IsKeyword("async") && p.peekIsFunction():
		p.lex.Next()
		fn := p.parseFunctionDecl()
		fn.IsAsync = true
		return ast.Stmt{Loc: loc, Data: &fn}

	case p.lex.IsKeyword("class"):
		cls := p.parseClassDecl()
		return ast.Stmt{Loc: loc, Data: &cls}

	case p.lex.IsKeyword("return"):
		p.lex.Next()
		var value *ast.Expr
		if !p.lex.IsPunct(";") && !p.lex.IsPunct("}") {
			e := p.parseExpr(lowest)
			value = &e
		}
		p.skipSemi()
		return ast.Stmt{Loc: loc, Data: &ast.SReturn{Value: value}}

	case p.lex.IsKeyword("if"):
		p.lex.Next()
		p.expectPunct("(")
		test := p.parseExpr(lowest)
		p.expectPunct(")")
		yes := p.parseStmtOrBlock()
		var no []ast.Stmt
		if p.lex.IsKeyword("else") {
			p.lex.Next()
			no = p.parseStmtOrBlock()
		}
		return ast.Stmt{Loc: loc, Data: &ast.SIf{Test: test, Yes: yes, No: no}}

	case p.lex.IsPunct("{"):
		return ast.Stmt{Loc: loc, Data: &ast.SBlock{Stmts: p.parseBlock()}}

	case p.lex.IsPunct(";"):
		p.lex.Next()
		return ast.Stmt{Loc: loc, Data: &ast.SBlock{}}

	default:
		e := p.parseExpr(lowest)
		p.skipSemi()
		return ast.Stmt{Loc: loc, Data: &ast.SExpr{Value: e}}
	}
}

func (p *Parser) peekIsFunction() bool {
	// The lexer has no lookahead buffer; "async function" is common enough
	// that we special-case it by checking the raw source right after the
	// current token without consuming it permanently.
	save := *p.lex
	p.lex.Next()
	isFn := p.lex.IsKeyword("function")
	*p.lex = save
	return isFn
}

// peekIsPunct reports whether the token right after the current one is the
// punctuation p, without permanently consuming it. Used to tell the
// `import(...)` expression apart from the `import ... from "..."` statement,
// both of which start with the keyword "import".
func (p *Parser) peekIsPunct(punct string) bool {
	save := *p.lex
	p.lex.Next()
	is := p.lex.IsPunct(punct)
	*p.lex = save
	return is
}

func (p *Parser) parseStmtOrBlock() []ast.Stmt {
	if p.lex.IsPunct("{") {
		return p.parseBlock()
	}
	return []ast.Stmt{p.parseStmt()}
}

func (p *Parser) parseBlock() []ast.Stmt {
	p.expectPunct("{")
	var stmts []ast.Stmt
	for !p.lex.IsPunct("}") && p.lex.Token != jslexer.TEndOfFile {
		stmts = append(stmts, p.parseStmt())
	}
	p.expectPunct("}")
	return stmts
}

func (p *Parser) parseVarDecl() ast.SVarDecl {
	var kind ast.VarKind
	switch {
	case p.lex.IsKeyword("let"):
		kind = ast.VarLet
	case p.lex.IsKeyword("const"):
		kind = ast.VarConst
	default:
		kind = ast.VarVar
	}
	p.lex.Next()

	var decls []ast.Declarator
	for {
		binding := p.ident()
		var value *ast.Expr
		if p.lex.IsPunct("=") {
			p.lex.Next()
			e := p.parseExpr(lAssign)
			value = &e
		}
		decls = append(decls, ast.Declarator{Binding: binding, Value: value})
		if p.lex.IsPunct(",") {
			p.lex.Next()
			continue
		}
		break
	}
	return ast.SVarDecl{Kind: kind, Decls: decls}
}

func (p *Parser) parseFunctionDecl() ast.SFunctionDecl {
	p.lex.Next() // "function"
	isGen := false
	if p.lex.IsPunct("*") {
		isGen = true
		p.lex.Next()
	}
	var name ast.Ident
	if p.lex.Token == jslexer.TIdentifier {
		name = p.ident()
	}
	params := p.parseParams()
	body := p.parseBlock()
	return ast.SFunctionDecl{Name: name, IsGen: isGen, Params: params, Body: body}
}

func (p *Parser) parseParams() []string {
	p.expectPunct("(")
	var params []string
	for !p.lex.IsPunct(")") {
		params = append(params, p.expectIdentifier())
		if p.lex.IsPunct(",") {
			p.lex.Next()
			continue
		}
		break
	}
	p.expectPunct(")")
	return params
}

func (p *Parser) parseClassDecl() ast.SClassDecl {
	p.lex.Next() // "class"
	var name ast.Ident
	if p.lex.Token == jslexer.TIdentifier && !p.lex.IsKeyword("extends") {
		name = p.ident()
	}
	var super *ast.Expr
	if p.lex.IsKeyword("extends") {
		p.lex.Next()
		e := p.parseExpr(lCall)
		super = &e
	}
	body := p.parseClassBody()
	return ast.SClassDecl{Name: name, SuperClass: super, Body: body}
}

func (p *Parser) parseClassBody() []ast.ClassMember {
	p.expectPunct("{")
	var members []ast.ClassMember
	for !p.lex.IsPunct("}") && p.lex.Token != jslexer.TEndOfFile {
		if p.lex.IsPunct(";") {
			p.lex.Next()
			continue
		}
		isStatic := false
		if p.lex.IsKeyword("static") {
			isStatic = true
			p.lex.Next()
		}
		key := p.expectIdentifier()
		if p.lex.IsPunct("(") {
			params := p.parseParams()
			body := p.parseBlock()
			fn := ast.Expr{Data: &ast.EFunctionExpr{Params: params, Body: body}}
			members = append(members, ast.ClassMember{Key: key, IsStatic: isStatic, Value: &fn})
		} else {
			var value *ast.Expr
			if p.lex.IsPunct("=") {
				p.lex.Next()
				e := p.parseExpr(lAssign)
				value = &e
			}
			p.skipSemi()
			members = append(members, ast.ClassMember{Key: key, IsStatic: isStatic, Value: value})
		}
	}
	p.expectPunct("}")
	return members
}

// ------------------------------------------------------------- import/export

func (p *Parser) parseImport() ast.S {
	p.lex.Next() // "import"

	if p.lex.Token == jslexer.TStringLiteral {
		spec := p.lex.Ident
		p.lex.Next()
		p.skipSemi()
		return &ast.SImport{Specifier: spec}
	}

	imp := &ast.SImport{}

	if p.lex.Token == jslexer.TIdentifier && !p.lex.IsPunct("*") && !p.lex.IsPunct("{") {
		id := p.ident()
		imp.DefaultLocal = &id
		if p.lex.IsPunct(",") {
			p.lex.Next()
		}
	}

	if p.lex.IsPunct("*") {
		p.lex.Next()
		if !p.lex.IsKeyword("as") {
			p.fail("expected \"as\" after \"*\" in import")
		}
		p.lex.Next()
		id := p.ident()
		imp.NamespaceLocal = &id
	} else if p.lex.IsPunct("{") {
		imp.Named = p.parseNamedImportClause()
	}

	if !p.lex.IsKeyword("from") {
		p.fail("expected \"from\" in import declaration")
	}
	p.lex.Next()
	if p.lex.Token != jslexer.TStringLiteral {
		p.fail("expected a string literal for the import source")
	}
	imp.Specifier = p.lex.Ident
	p.lex.Next()
	p.skipSemi()
	return imp
}

func (p *Parser) parseNamedImportClause() []ast.ImportSpecifier {
	p.expectPunct("{")
	var specs []ast.ImportSpecifier
	for !p.lex.IsPunct("}") {
		imported := p.expectIdentifier()
		local := imported
		if p.lex.IsKeyword("as") {
			p.lex.Next()
			local = p.expectIdentifier()
		}
		specs = append(specs, ast.ImportSpecifier{Imported: imported, Local: ast.Ident{Name: local}})
		if p.lex.IsPunct(",") {
			p.lex.Next()
			continue
		}
		break
	}
	p.expectPunct("}")
	return specs
}

func (p *Parser) parseExport() ast.S {
	p.lex.Next() // "export"

	switch {
	case p.lex.IsKeyword("default"):
		p.lex.Next()
		return p.parseExportDefault()

	case p.lex.IsPunct("*"):
		p.lex.Next()
		as := ""
		if p.lex.IsKeyword("as") {
			p.lex.Next()
			as = p.expectIdentifier()
		}
		if !p.lex.IsKeyword("from") {
			p.fail("expected \"from\" after \"export *\"")
		}
		p.lex.Next()
		spec := p.lex.Ident
		p.lex.Next()
		p.skipSemi()
		return &ast.SExportAll{Specifier: spec, As: as}

	case p.lex.IsPunct("{"):
		specs := p.parseExportClause()
		specifier := ""
		if p.lex.IsKeyword("from") {
			p.lex.Next()
			specifier = p.lex.Ident
			p.lex.Next()
		}
		p.skipSemi()
		return &ast.SExportNamed{Specifier: specifier, Specs: specs}

	case p.lex.IsKeyword("var") || p.lex.IsKeyword("let") || p.lex.IsKeyword("const"):
		decl := p.parseVarDecl()
		p.skipSemi()
		return &ast.SExportVarDecl{Decl: decl}

	case p.lex.IsKeyword("function"):
		fn := p.parseFunctionDecl()
		return &ast.SExportFunctionDecl{Decl: fn}

	case p.lex.IsKeyword("async") && p.peekIsFunction():
		p.lex.Next()
		fn := p.parseFunctionDecl()
		fn.IsAsync = true
		return &ast.SExportFunctionDecl{Decl: fn}

	case p.lex.IsKeyword("class"):
		cls := p.parseClassDecl()
		return &ast.SExportClassDecl{Decl: cls}

	default:
		p.fail("unexpected token %q after \"export\"", p.lex.Raw())
		return nil
	}
}

func (p *Parser) parseExportClause() []ast.ExportSpecifier {
	p.expectPunct("{")
	var specs []ast.ExportSpecifier
	for !p.lex.IsPunct("}") {
		local := p.expectIdentifier()
		exported := local
		if p.lex.IsKeyword("as") {
			p.lex.Next()
			exported = p.expectIdentifier()
		}
		specs = append(specs, ast.ExportSpecifier{Local: local, Exported: exported})
		if p.lex.IsPunct(",") {
			p.lex.Next()
			continue
		}
		break
	}
	p.expectPunct("}")
	return specs
}

func (p *Parser) parseExportDefault() ast.S {
	switch {
	case p.lex.IsKeyword("function"):
		fn := p.parseFunctionDecl()
		return &ast.SExportDefault{Func: &fn}
	case p.lex.IsKeyword("async") && p.peekIsFunction():
		p.lex.Next()
		fn := p.parseFunctionDecl()
		fn.IsAsync = true
		return &ast.SExportDefault{Func: &fn}
	case p.lex.IsKeyword("class"):
		cls := p.parseClassDecl()
		return &ast.SExportDefault{Class: &cls}
	default:
		e := p.parseExpr(lAssign)
		p.skipSemi()
		return &ast.SExportDefault{Value: &e}
	}
}
