package jsparser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"module-bundler/internal/ast"
)

func parseOne(t *testing.T, source string) ast.Stmt {
	t.Helper()
	prog, err := Parse("test.js", source)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 1)
	return prog.Stmts[0]
}

func TestParseVarDecl(t *testing.T) {
	stmt := parseOne(t, "let x = 1;")
	decl, ok := stmt.Data.(*ast.SVarDecl)
	require.True(t, ok)
	require.Equal(t, ast.VarLet, decl.Kind)
	require.Len(t, decl.Decls, 1)
	require.Equal(t, "x", decl.Decls[0].Binding.Name)
	require.NotNil(t, decl.Decls[0].Value)
	num, ok := decl.Decls[0].Value.Data.(*ast.ENumber)
	require.True(t, ok)
	require.Equal(t, 1.0, num.Value)
}

func TestParseVarDeclMultipleBindings(t *testing.T) {
	stmt := parseOne(t, "var a = 1, b = 2;")
	decl := stmt.Data.(*ast.SVarDecl)
	require.Equal(t, ast.VarVar, decl.Kind)
	require.Len(t, decl.Decls, 2)
	require.Equal(t, "a", decl.Decls[0].Binding.Name)
	require.Equal(t, "b", decl.Decls[1].Binding.Name)
}

func TestParseLetWithoutInitializerValueIsNil(t *testing.T) {
	stmt := parseOne(t, "let x;")
	decl := stmt.Data.(*ast.SVarDecl)
	require.Nil(t, decl.Decls[0].Value)
}

func TestParseFunctionDecl(t *testing.T) {
	stmt := parseOne(t, "function add(a, b) { return a; }")
	fn, ok := stmt.Data.(*ast.SFunctionDecl)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name.Name)
	require.False(t, fn.IsAsync)
	require.False(t, fn.IsGen)
	require.Equal(t, []string{"a", "b"}, fn.Params)
	require.Len(t, fn.Body, 1)
	_, ok = fn.Body[0].Data.(*ast.SReturn)
	require.True(t, ok)
}

func TestParseAsyncFunctionDecl(t *testing.T) {
	stmt := parseOne(t, "async function go() {}")
	fn := stmt.Data.(*ast.SFunctionDecl)
	require.True(t, fn.IsAsync)
}

func TestParseGeneratorFunctionDecl(t *testing.T) {
	stmt := parseOne(t, "function* gen() {}")
	fn := stmt.Data.(*ast.SFunctionDecl)
	require.True(t, fn.IsGen)
}

func TestParseAnonymousFunctionDecl(t *testing.T) {
	stmt := parseOne(t, "export default function() { return 1; }")
	def, ok := stmt.Data.(*ast.SExportDefault)
	require.True(t, ok)
	require.NotNil(t, def.Func)
	require.Equal(t, "", def.Func.Name.Name)
}

func TestParseClassDecl(t *testing.T) {
	stmt := parseOne(t, "class Point { x = 0; static origin = 1; greet() { return 1; } }")
	cls, ok := stmt.Data.(*ast.SClassDecl)
	require.True(t, ok)
	require.Equal(t, "Point", cls.Name.Name)
	require.Nil(t, cls.SuperClass)
	require.Len(t, cls.Body, 3)

	require.Equal(t, "x", cls.Body[0].Key)
	require.False(t, cls.Body[0].IsStatic)

	require.Equal(t, "origin", cls.Body[1].Key)
	require.True(t, cls.Body[1].IsStatic)

	require.Equal(t, "greet", cls.Body[2].Key)
	_, isFn := cls.Body[2].Value.Data.(*ast.EFunctionExpr)
	require.True(t, isFn)
}

func TestParseClassDeclWithSuperclass(t *testing.T) {
	stmt := parseOne(t, "class Circle extends Shape {}")
	cls := stmt.Data.(*ast.SClassDecl)
	require.Equal(t, "Circle", cls.Name.Name)
	require.NotNil(t, cls.SuperClass)
	id, ok := cls.SuperClass.Data.(*ast.EIdentifier)
	require.True(t, ok)
	require.Equal(t, "Shape", id.Ref.Name)
}

func TestParseImportDefault(t *testing.T) {
	stmt := parseOne(t, `import foo from "./foo.js";`)
	imp, ok := stmt.Data.(*ast.SImport)
	require.True(t, ok)
	require.Equal(t, "./foo.js", imp.Specifier)
	require.NotNil(t, imp.DefaultLocal)
	require.Equal(t, "foo", imp.DefaultLocal.Name)
	require.Nil(t, imp.NamespaceLocal)
	require.Empty(t, imp.Named)
}

func TestParseImportNamespace(t *testing.T) {
	stmt := parseOne(t, `import * as ns from "./mod.js";`)
	imp := stmt.Data.(*ast.SImport)
	require.NotNil(t, imp.NamespaceLocal)
	require.Equal(t, "ns", imp.NamespaceLocal.Name)
}

func TestParseImportNamed(t *testing.T) {
	stmt := parseOne(t, `import { a, b as c } from "./mod.js";`)
	imp := stmt.Data.(*ast.SImport)
	require.Len(t, imp.Named, 2)
	require.Equal(t, "a", imp.Named[0].Imported)
	require.Equal(t, "a", imp.Named[0].Local.Name)
	require.Equal(t, "b", imp.Named[1].Imported)
	require.Equal(t, "c", imp.Named[1].Local.Name)
}

func TestParseImportDefaultAndNamed(t *testing.T) {
	stmt := parseOne(t, `import foo, { a } from "./mod.js";`)
	imp := stmt.Data.(*ast.SImport)
	require.NotNil(t, imp.DefaultLocal)
	require.Equal(t, "foo", imp.DefaultLocal.Name)
	require.Len(t, imp.Named, 1)
}

func TestParseBareImport(t *testing.T) {
	stmt := parseOne(t, `import "./side-effect.js";`)
	imp := stmt.Data.(*ast.SImport)
	require.Equal(t, "./side-effect.js", imp.Specifier)
	require.Nil(t, imp.DefaultLocal)
	require.Nil(t, imp.NamespaceLocal)
	require.Empty(t, imp.Named)
}

func TestParseDynamicImportAsStatement(t *testing.T) {
	stmt := parseOne(t, `import("./lazy.js");`)
	se, ok := stmt.Data.(*ast.SExpr)
	require.True(t, ok)
	call, ok := se.Value.Data.(*ast.EImportCall)
	require.True(t, ok)
	str, ok := call.Arg.Data.(*ast.EString)
	require.True(t, ok)
	require.Equal(t, "./lazy.js", str.Value)
}

func TestParseDynamicImportAsSubExpression(t *testing.T) {
	stmt := parseOne(t, `const p = import("./a.js");`)
	decl := stmt.Data.(*ast.SVarDecl)
	require.Equal(t, ast.VarConst, decl.Kind)
	call, ok := decl.Decls[0].Value.Data.(*ast.EImportCall)
	require.True(t, ok)
	str := call.Arg.Data.(*ast.EString)
	require.Equal(t, "./a.js", str.Value)
}

func TestParseDynamicImportWithComputedSpecifier(t *testing.T) {
	stmt := parseOne(t, `import(path);`)
	se := stmt.Data.(*ast.SExpr)
	call := se.Value.Data.(*ast.EImportCall)
	_, ok := call.Arg.Data.(*ast.EIdentifier)
	require.True(t, ok)
}

func TestParseExportNamed(t *testing.T) {
	stmt := parseOne(t, `export { a, b as c };`)
	exp, ok := stmt.Data.(*ast.SExportNamed)
	require.True(t, ok)
	require.Equal(t, "", exp.Specifier)
	require.Len(t, exp.Specs, 2)
	require.Equal(t, "a", exp.Specs[0].Local)
	require.Equal(t, "a", exp.Specs[0].Exported)
	require.Equal(t, "b", exp.Specs[1].Local)
	require.Equal(t, "c", exp.Specs[1].Exported)
}

func TestParseExportNamedReExport(t *testing.T) {
	stmt := parseOne(t, `export { a } from "./mod.js";`)
	exp := stmt.Data.(*ast.SExportNamed)
	require.Equal(t, "./mod.js", exp.Specifier)
}

func TestParseExportAll(t *testing.T) {
	stmt := parseOne(t, `export * from "./mod.js";`)
	exp, ok := stmt.Data.(*ast.SExportAll)
	require.True(t, ok)
	require.Equal(t, "./mod.js", exp.Specifier)
	require.Equal(t, "", exp.As)
}

func TestParseExportAllAs(t *testing.T) {
	stmt := parseOne(t, `export * as ns from "./mod.js";`)
	exp := stmt.Data.(*ast.SExportAll)
	require.Equal(t, "ns", exp.As)
}

func TestParseExportVarDecl(t *testing.T) {
	stmt := parseOne(t, `export const x = 1;`)
	exp, ok := stmt.Data.(*ast.SExportVarDecl)
	require.True(t, ok)
	require.Equal(t, ast.VarConst, exp.Decl.Kind)
}

func TestParseExportFunctionDecl(t *testing.T) {
	stmt := parseOne(t, `export function f() {}`)
	exp, ok := stmt.Data.(*ast.SExportFunctionDecl)
	require.True(t, ok)
	require.Equal(t, "f", exp.Decl.Name.Name)
}

func TestParseExportClassDecl(t *testing.T) {
	stmt := parseOne(t, `export class C {}`)
	exp, ok := stmt.Data.(*ast.SExportClassDecl)
	require.True(t, ok)
	require.Equal(t, "C", exp.Decl.Name.Name)
}

func TestParseExportDefaultExpr(t *testing.T) {
	stmt := parseOne(t, `export default 1 + 2;`)
	exp := stmt.Data.(*ast.SExportDefault)
	require.NotNil(t, exp.Value)
	require.Nil(t, exp.Func)
	require.Nil(t, exp.Class)
	bin, ok := exp.Value.Data.(*ast.EBinary)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
}

func TestParseExportDefaultNamedFunction(t *testing.T) {
	stmt := parseOne(t, `export default function named() {}`)
	exp := stmt.Data.(*ast.SExportDefault)
	require.NotNil(t, exp.Func)
	require.Equal(t, "named", exp.Func.Name.Name)
}

func TestParseExportDefaultClass(t *testing.T) {
	stmt := parseOne(t, `export default class {}`)
	exp := stmt.Data.(*ast.SExportDefault)
	require.NotNil(t, exp.Class)
}

func TestParseArrowExpressionBody(t *testing.T) {
	stmt := parseOne(t, "const f = x => x;")
	decl := stmt.Data.(*ast.SVarDecl)
	arrow, ok := decl.Decls[0].Value.Data.(*ast.EArrow)
	require.True(t, ok)
	require.Equal(t, []string{"x"}, arrow.Params)
	require.NotNil(t, arrow.Expr)
	require.Nil(t, arrow.Body)
}

func TestParseArrowBlockBodyMultipleParams(t *testing.T) {
	stmt := parseOne(t, "const f = (a, b) => { return a; };")
	decl := stmt.Data.(*ast.SVarDecl)
	arrow := decl.Decls[0].Value.Data.(*ast.EArrow)
	require.Equal(t, []string{"a", "b"}, arrow.Params)
	require.Nil(t, arrow.Expr)
	require.Len(t, arrow.Body, 1)
}

func TestParseTemplateLiteralNoSubstitution(t *testing.T) {
	stmt := parseOne(t, "const s = `hello`;")
	decl := stmt.Data.(*ast.SVarDecl)
	tmpl, ok := decl.Decls[0].Value.Data.(*ast.ETemplate)
	require.True(t, ok)
	require.Equal(t, []string{"hello"}, tmpl.Quasis)
	require.Empty(t, tmpl.Exprs)
}

func TestParseTemplateLiteralWithSubstitution(t *testing.T) {
	stmt := parseOne(t, "const s = `a${x}b`;")
	decl := stmt.Data.(*ast.SVarDecl)
	tmpl := decl.Decls[0].Value.Data.(*ast.ETemplate)
	require.Equal(t, []string{"a", "b"}, tmpl.Quasis)
	require.Len(t, tmpl.Exprs, 1)
	id, ok := tmpl.Exprs[0].Data.(*ast.EIdentifier)
	require.True(t, ok)
	require.Equal(t, "x", id.Ref.Name)
}

func TestOperatorPrecedenceMultiplyBindsTighterThanAdd(t *testing.T) {
	stmt := parseOne(t, "const x = 1 + 2 * 3;")
	decl := stmt.Data.(*ast.SVarDecl)
	top, ok := decl.Decls[0].Value.Data.(*ast.EBinary)
	require.True(t, ok)
	require.Equal(t, "+", top.Op)
	_, leftIsNum := top.Left.Data.(*ast.ENumber)
	require.True(t, leftIsNum)
	right, ok := top.Right.Data.(*ast.EBinary)
	require.True(t, ok)
	require.Equal(t, "*", right.Op)
}

func TestCallExpressionOnMemberAccess(t *testing.T) {
	stmt := parseOne(t, "foo.bar(1, 2);")
	se := stmt.Data.(*ast.SExpr)
	call, ok := se.Value.Data.(*ast.ECall)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	dot, ok := call.Callee.Data.(*ast.EDot)
	require.True(t, ok)
	require.Equal(t, "bar", dot.Prop)
}

func TestNewExpression(t *testing.T) {
	stmt := parseOne(t, "new Foo(1);")
	se := stmt.Data.(*ast.SExpr)
	call, ok := se.Value.Data.(*ast.ECall)
	require.True(t, ok)
	require.True(t, call.IsNew)
}

func TestIfElseStatement(t *testing.T) {
	stmt := parseOne(t, "if (a) { b; } else { c; }")
	ifs, ok := stmt.Data.(*ast.SIf)
	require.True(t, ok)
	require.Len(t, ifs.Yes, 1)
	require.Len(t, ifs.No, 1)
}

func TestMultipleStatementsInProgram(t *testing.T) {
	prog, err := Parse("t.js", `import a from "./a.js"; export const b = a;`)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 2)
	_, ok := prog.Stmts[0].Data.(*ast.SImport)
	require.True(t, ok)
	_, ok = prog.Stmts[1].Data.(*ast.SExportVarDecl)
	require.True(t, ok)
}

func TestSyntaxErrorReportsPathAndOffset(t *testing.T) {
	_, err := Parse("broken.js", "let 1 = 2;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken.js")
	require.Contains(t, err.Error(), "(byte 4)")
}
