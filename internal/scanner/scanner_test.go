package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"module-bundler/internal/berrors"
	"module-bundler/internal/graph"
	"module-bundler/internal/jsparser"
	"module-bundler/internal/mark"
)

func scan(t *testing.T, source string) (*graph.Module, *mark.Box) {
	t.Helper()
	prog, err := jsparser.Parse("mod.js", source)
	require.NoError(t, err)
	box := mark.NewBox()
	unresolved := box.New("<unresolved>")
	m, err := Scan("mod.js", prog, box, unresolved)
	require.NoError(t, err)
	return m, box
}

func TestScanTopLevelVarDeclIsLocallyBound(t *testing.T) {
	m, box := scan(t, "const x = 1;")
	mk, ok := m.LocalBindedIds["x"]
	require.True(t, ok)
	require.True(t, mk.Valid())
	require.Equal(t, "x", box.Name(mk))
}

func TestScanExportVarDeclAddsLocalExport(t *testing.T) {
	m, _ := scan(t, "export const x = 1;")
	_, ok := m.LocalExports["x"]
	require.True(t, ok)
}

func TestScanDuplicateLetDeclarationIsError(t *testing.T) {
	prog, err := jsparser.Parse("mod.js", "let x = 1; let x = 2;")
	require.NoError(t, err)
	box := mark.NewBox()
	_, err = Scan("mod.js", prog, box, box.New("<unresolved>"))
	require.Error(t, err)
	var scanErr *berrors.ScanError
	require.ErrorAs(t, err, &scanErr)
}

func TestScanVarRedeclarationIsAllowed(t *testing.T) {
	m, _ := scan(t, "var x = 1; var x = 2;")
	require.Len(t, m.LocalBindedIds, 1)
}

func TestScanImportDefaultRecordsSpecifier(t *testing.T) {
	m, _ := scan(t, `import foo from "./foo.js";`)
	require.Equal(t, []string{"./foo.js"}, m.Dependencies)
	specs := m.Imports["./foo.js"]
	require.Len(t, specs, 1)
	require.Equal(t, "default", specs[0].Original)
	require.Equal(t, "foo", specs[0].AliasName)
}

func TestScanImportNamedRecordsOriginalName(t *testing.T) {
	m, _ := scan(t, `import { a as b } from "./mod.js";`)
	specs := m.Imports["./mod.js"]
	require.Len(t, specs, 1)
	require.Equal(t, "a", specs[0].Original)
	require.Equal(t, "b", specs[0].AliasName)
}

func TestScanImportNamespaceRecordsStarOriginal(t *testing.T) {
	m, _ := scan(t, `import * as ns from "./mod.js";`)
	specs := m.Imports["./mod.js"]
	require.Len(t, specs, 1)
	require.Equal(t, "*", specs[0].Original)
}

func TestScanBareImportIsPendingSideEffect(t *testing.T) {
	m, _ := scan(t, `import "./side-effect.js";`)
	require.Equal(t, graph.SideEffectPending, m.SideEffect)
	require.Equal(t, []string{"./side-effect.js"}, m.Dependencies)
	require.Empty(t, m.Imports["./side-effect.js"])
}

func TestScanDynamicImportRecordsDynDependency(t *testing.T) {
	m, _ := scan(t, `const p = import("./lazy.js");`)
	require.Equal(t, []string{"./lazy.js"}, m.DynDependencies)
	require.Empty(t, m.Dependencies)
}

func TestScanDynamicImportWithComputedArgIsNotRecorded(t *testing.T) {
	m, _ := scan(t, `const path = "./x.js"; const p = import(path);`)
	require.Empty(t, m.DynDependencies)
}

func TestScanExportNamedLocalResolvesMark(t *testing.T) {
	m, _ := scan(t, "const a = 1;\nexport { a as b };")
	mk, ok := m.LocalExports["b"]
	require.True(t, ok)
	require.Equal(t, m.LocalBindedIds["a"], mk)
}

func TestScanExportNamedOfUndeclaredNameIsError(t *testing.T) {
	prog, err := jsparser.Parse("mod.js", "export { missing };")
	require.NoError(t, err)
	box := mark.NewBox()
	_, err = Scan("mod.js", prog, box, box.New("<unresolved>"))
	require.Error(t, err)
}

func TestScanExportNamedReExportTracksSpecifier(t *testing.T) {
	m, _ := scan(t, `export { a } from "./mod.js";`)
	require.Equal(t, []string{"./mod.js"}, m.Dependencies)
	require.Equal(t, []graph.Specifier{{Alias: "a", Original: "a"}}, m.ReExports["./mod.js"])
}

func TestScanExportAllTracksSource(t *testing.T) {
	m, _ := scan(t, `export * from "./mod.js";`)
	require.Equal(t, []string{"./mod.js"}, m.ReExportAllSrcs)
}

func TestScanExportDefaultAnonymousFunctionNeedsName(t *testing.T) {
	m, _ := scan(t, "export default function() { return 1; }")
	require.True(t, m.DefaultNeedsName)
	_, ok := m.LocalExports["default"]
	require.True(t, ok)
}

func TestScanExportDefaultNamedFunctionUsesItsOwnMark(t *testing.T) {
	m, _ := scan(t, "export default function f() {}")
	require.False(t, m.DefaultNeedsName)
	require.Equal(t, m.LocalBindedIds["f"], m.LocalExports["default"])
}

func TestScanExportDefaultExpressionNeedsBinding(t *testing.T) {
	m, _ := scan(t, "export default 1 + 2;")
	require.True(t, m.DefaultNeedsBinding)
}

func TestScanExportDefaultIdentifierReusesMark(t *testing.T) {
	m, _ := scan(t, "const a = 1;\nexport default a;")
	require.Equal(t, m.LocalBindedIds["a"], m.LocalExports["default"])
	require.False(t, m.DefaultNeedsBinding)
}

func TestScanSideEffectFnCall(t *testing.T) {
	m, _ := scan(t, "foo();")
	require.Len(t, m.TopLevel, 1)
	require.Equal(t, graph.SideEffectFnCall, m.TopLevel[0].SideEffect)
	require.Equal(t, graph.SideEffectFnCall, m.SideEffect)
}

func TestScanSideEffectVisitThis(t *testing.T) {
	m, _ := scan(t, "this;")
	require.Equal(t, graph.SideEffectVisitThis, m.TopLevel[0].SideEffect)
}

func TestScanSideEffectVisitGlobalVar(t *testing.T) {
	m, _ := scan(t, "globalThing;")
	require.Equal(t, graph.SideEffectVisitGlobalVar, m.TopLevel[0].SideEffect)
}

func TestScanKnownLocalPropertyAccessHasNoSideEffect(t *testing.T) {
	m, _ := scan(t, "const a = {};\na.b;")
	require.Equal(t, graph.SideEffectNone, m.TopLevel[1].SideEffect)
}

func TestScanUnknownPropertyAccessIsVisitProp(t *testing.T) {
	m, _ := scan(t, "something.prop;")
	require.Equal(t, graph.SideEffectVisitProp, m.TopLevel[0].SideEffect)
}

func TestScanPureVarDeclHasNoSideEffect(t *testing.T) {
	m, _ := scan(t, "const x = 1;")
	require.Equal(t, graph.SideEffectNone, m.SideEffect)
}

func TestScanReferencedMarksIncludeCallee(t *testing.T) {
	m, _ := scan(t, "function f(a) { return a; }\nf(1);")
	last := m.TopLevel[len(m.TopLevel)-1]
	require.Contains(t, last.ReferencedMarks, m.LocalBindedIds["f"])
}

func TestScanFunctionHoistingAllowsForwardReference(t *testing.T) {
	m, _ := scan(t, "callIt();\nfunction callIt() {}")
	require.Contains(t, m.LocalBindedIds, "callIt")
	first := m.TopLevel[0]
	require.Contains(t, first.ReferencedMarks, m.LocalBindedIds["callIt"])
}
