package jsparser

import (
	"module-bundler/internal/ast"
	"module-bundler/internal/jslexer"
)

// Binding power levels, named and ordered the way esbuild's js_ast.L is:
// lowest first, call/member tightest. Only the levels this subset's
// operators need are represented.
type level uint8

const (
	lowest level = iota
	lComma
	lAssign
	lConditional
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

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true,
}

func (p *Parser) parseExpr(minLevel level) ast.Expr {
	left := p.parsePrefix()
	return p.parseSuffix(left, minLevel)
}

func (p *Parser) parsePrefix() ast.Expr {
	loc := ast.Loc{Start: int32(p.lex.Start())}

	switch p.lex.Token {
	case jslexer.TNumericLiteral:
		v, err := p.lex.NumericValue()
		if err != nil {
			p.fail("invalid number %q", p.lex.Raw())
		}
		p.lex.Next()
		return ast.Expr{Loc: loc, Data: &ast.ENumber{Value: v}}

	case jslexer.TStringLiteral:
		v := p.lex.Ident
		p.lex.Next()
		return ast.Expr{Loc: loc, Data: &ast.EString{Value: v}}

	case jslexer.TNoSubstitutionTemplateLiteral:
		v := p.lex.Ident
		p.lex.Next()
		return ast.Expr{Loc: loc, Data: &ast.ETemplate{Quasis: []string{v}}}

	case jslexer.TTemplateHead:
		return p.parseTemplateTail(loc, nil)

	case jslexer.TIdentifier:
		return p.parseIdentLikePrefix(loc)

	case jslexer.TPunctuation:
		return p.parsePunctPrefix(loc)

	default:
		p.fail("unexpected token %q", p.lex.Raw())
		return ast.Expr{}
	}
}

func (p *Parser) parseTemplateTail(loc ast.Loc, tag *ast.Expr) ast.Expr {
	tmpl := &ast.ETemplate{Tag: tag}
	tmpl.Quasis = append(tmpl.Quasis, p.lex.Ident)
	for {
		p.lex.Next() // token after "${"
		e := p.parseExpr(lowest)
		tmpl.Exprs = append(tmpl.Exprs, e)
		if !p.lex.IsPunct("}") {
			p.fail("expected \"}\" to close template substitution")
		}
		p.lex.ResumeTemplate()
		tmpl.Quasis = append(tmpl.Quasis, p.lex.Ident)
		if p.lex.Token == jslexer.TTemplateTail {
			break
		}
	}
	p.lex.Next()
	return ast.Expr{Loc: loc, Data: tmpl}
}

func (p *Parser) parseIdentLikePrefix(loc ast.Loc) ast.Expr {
	switch p.lex.Ident {
	case "this":
		p.lex.Next()
		return ast.Expr{Loc: loc, Data: &ast.EThis{}}
	case "true":
		p.lex.Next()
		return ast.Expr{Loc: loc, Data: &ast.EBoolean{Value: true}}
	case "false":
		p.lex.Next()
		return ast.Expr{Loc: loc, Data: &ast.EBoolean{Value: false}}
	case "null":
		p.lex.Next()
		return ast.Expr{Loc: loc, Data: &ast.ENull{}}
	case "undefined":
		p.lex.Next()
		return ast.Expr{Loc: loc, Data: &ast.EUndefined{}}
	case "new":
		p.lex.Next()
		callee := p.parsePrefix()
		for p.lex.IsPunct(".") {
			dotLoc := ast.Loc{Start: int32(p.lex.Start())}
			p.lex.Next()
			prop := p.expectIdentifier()
			callee = ast.Expr{Loc: dotLoc, Data: &ast.EDot{Target: callee, Prop: prop}}
		}
		var args []ast.Expr
		if p.lex.IsPunct("(") {
			args = p.parseArgs()
		}
		return ast.Expr{Loc: loc, Data: &ast.ECall{Callee: callee, Args: args, IsNew: true}}
	case "function":
		fn := p.parseFunctionDecl()
		return ast.Expr{Loc: loc, Data: &ast.EFunctionExpr{Name: fn.Name.Name, Params: fn.Params, Body: fn.Body}}
	case "class":
		cls := p.parseClassDecl()
		return ast.Expr{Loc: loc, Data: &ast.EClassExpr{Name: cls.Name.Name, SuperClass: cls.SuperClass, Body: cls.Body}}
	case "async":
		save := *p.lex
		p.lex.Next()
		if p.lex.IsPunct("(") || p.lex.Token == jslexer.TIdentifier {
			if arrow, ok := p.tryParseArrow(); ok {
				return arrow
			}
		}
		*p.lex = save

	case "import":
		p.lex.Next()
		p.expectPunct("(")
		arg := p.parseExpr(lAssign)
		p.expectPunct(")")
		return ast.Expr{Loc: loc, Data: &ast.EImportCall{Arg: arg}}
	}

	if arrow, ok := p.tryParseArrow(); ok {
		return arrow
	}

	id := p.ident()
	return ast.Expr{Loc: loc, Data: &ast.EIdentifier{Ref: id}}
}

// tryParseArrow attempts `ident => ...` or `(params) => ...`, restoring
// lexer state and returning ok=false if it doesn't pan out.
func (p *Parser) tryParseArrow() (ast.Expr, bool) {
	save := *p.lex
	loc := ast.Loc{Start: int32(p.lex.Start())}

	var params []string
	if p.lex.Token == jslexer.TIdentifier {
		name := p.lex.Ident
		p.lex.Next()
		if !p.lex.IsPunct("=>") {
			*p.lex = save
			return ast.Expr{}, false
		}
		params = []string{name}
	} else if p.lex.IsPunct("(") {
		ok := p.tryParseParenParams(&params)
		if !ok || !p.lex.IsPunct("=>") {
			*p.lex = save
			return ast.Expr{}, false
		}
	} else {
		return ast.Expr{}, false
	}

	p.lex.Next() // "=>"
	arrow := &ast.EArrow{Params: params}
	if p.lex.IsPunct("{") {
		arrow.Body = p.parseBlock()
	} else {
		e := p.parseExpr(lAssign)
		arrow.Expr = &e
	}
	return ast.Expr{Loc: loc, Data: arrow}, true
}

// tryParseParenParams parses "(" ident, ident, ... ")" as a plain identifier
// param list, bailing out (returning false) on anything fancier (this
// parser does not support destructuring or default params).
func (p *Parser) tryParseParenParams(out *[]string) bool {
	p.lex.Next() // "("
	for !p.lex.IsPunct(")") {
		if p.lex.Token != jslexer.TIdentifier {
			return false
		}
		*out = append(*out, p.lex.Ident)
		p.lex.Next()
		if p.lex.IsPunct(",") {
			p.lex.Next()
			continue
		}
		break
	}
	if !p.lex.IsPunct(")") {
		return false
	}
	p.lex.Next()
	return true
}

func (p *Parser) parsePunctPrefix(loc ast.Loc) ast.Expr {
	switch p.lex.Ident {
	case "(":
		p.lex.Next()
		e := p.parseExpr(lowest)
		p.expectPunct(")")
		return e
	case "[":
		p.lex.Next()
		var items []ast.Expr
		for !p.lex.IsPunct("]") {
			items = append(items, p.parseExpr(lAssign))
			if p.lex.IsPunct(",") {
				p.lex.Next()
				continue
			}
			break
		}
		p.expectPunct("]")
		return ast.Expr{Loc: loc, Data: &ast.EArray{Items: items}}
	case "{":
		return p.parseObjectLiteral(loc)
	default:
		p.fail("unexpected token %q", p.lex.Raw())
		return ast.Expr{}
	}
}

func (p *Parser) parseObjectLiteral(loc ast.Loc) ast.Expr {
	p.expectPunct("{")
	var props []ast.Property
	for !p.lex.IsPunct("}") {
		key := p.expectIdentifier()
		if p.lex.IsPunct(":") {
			p.lex.Next()
			v := p.parseExpr(lAssign)
			props = append(props, ast.Property{Key: key, Value: v})
		} else {
			props = append(props, ast.Property{
				Key:       key,
				Value:     ast.Expr{Data: &ast.EIdentifier{Ref: ast.Ident{Name: key}}},
				Shorthand: true,
			})
		}
		if p.lex.IsPunct(",") {
			p.lex.Next()
			continue
		}
		break
	}
	p.expectPunct("}")
	return ast.Expr{Loc: loc, Data: &ast.EObject{Properties: props}}
}

func (p *Parser) parseArgs() []ast.Expr {
	p.expectPunct("(")
	var args []ast.Expr
	for !p.lex.IsPunct(")") {
		args = append(args, p.parseExpr(lAssign))
		if p.lex.IsPunct(",") {
			p.lex.Next()
			continue
		}
		break
	}
	p.expectPunct(")")
	return args
}

func (p *Parser) parseSuffix(left ast.Expr, minLevel level) ast.Expr {
	for {
		loc := ast.Loc{Start: int32(p.lex.Start())}
		switch {
		case p.lex.IsPunct(".") && lCall >= minLevel:
			p.lex.Next()
			prop := p.expectIdentifier()
			left = ast.Expr{Loc: loc, Data: &ast.EDot{Target: left, Prop: prop}}

		case p.lex.IsPunct("?.") && lCall >= minLevel:
			p.lex.Next()
			prop := p.expectIdentifier()
			left = ast.Expr{Loc: loc, Data: &ast.EDot{Target: left, Prop: prop}}

		case p.lex.IsPunct("[") && lCall >= minLevel:
			p.lex.Next()
			idx := p.parseExpr(lowest)
			p.expectPunct("]")
			left = ast.Expr{Loc: loc, Data: &ast.EIndex{Target: left, Index: idx}}

		case p.lex.IsPunct("(") && lCall >= minLevel:
			args := p.parseArgs()
			left = ast.Expr{Loc: loc, Data: &ast.ECall{Callee: left, Args: args}}

		case (p.lex.Token == jslexer.TNoSubstitutionTemplateLiteral || p.lex.Token == jslexer.TTemplateHead) && lCall >= minLevel:
			tag := left
			if p.lex.Token == jslexer.TNoSubstitutionTemplateLiteral {
				v := p.lex.Ident
				p.lex.Next()
				left = ast.Expr{Loc: loc, Data: &ast.ETemplate{Tag: &tag, Quasis: []string{v}}}
			} else {
				left = p.parseTemplateTail(loc, &tag)
			}

		case p.lex.Token == jslexer.TPunctuation && assignOps[p.lex.Ident] && lAssign >= minLevel:
			op := p.lex.Ident
			p.lex.Next()
			right := p.parseExpr(lAssign)
			left = ast.Expr{Loc: loc, Data: &ast.EBinary{Op: op, Left: left, Right: right}}

		case p.lex.Token == jslexer.TPunctuation && binOpLevel[p.lex.Ident] != 0 && binOpLevel[p.lex.Ident] >= minLevel:
			opLevel := binOpLevel[p.lex.Ident]
			op := p.lex.Ident
			p.lex.Next()
			right := p.parseExpr(opLevel + 1)
			left = ast.Expr{Loc: loc, Data: &ast.EBinary{Op: op, Left: left, Right: right}}

		case p.lex.IsPunct("?") && lConditional >= minLevel:
			p.lex.Next()
			yes := p.parseExpr(lAssign)
			p.expectPunct(":")
			no := p.parseExpr(lAssign)
			left = ast.Expr{Loc: loc, Data: &ast.ECond{Test: left, Yes: yes, No: no}}

		case p.lex.IsPunct(",") && lComma >= minLevel:
			p.lex.Next()
			_ = p.parseExpr(lAssign)

		default:
			return left
		}
	}
}
