// Package graph holds the module record produced by the scanner (component
// D), the directed multigraph connecting modules, and the graph builder
// that orders, links and tree-shakes them (component F). It follows the
// arena-and-index shape esbuild's internal/graph and internal/bundler
// packages use: once modules join the graph they live in a map keyed by
// module id and are referred to by that id, and only the single-threaded
// graph builder mutates them.
package graph

import (
	"module-bundler/internal/ast"
	"module-bundler/internal/mark"
)

// SideEffect classifies whether a module's top-level code can have an
// observable effect when evaluated, per the table in the scanner's design.
type SideEffect uint8

const (
	SideEffectNone SideEffect = iota
	SideEffectPending
	SideEffectFnCall
	SideEffectVisitThis
	SideEffectVisitProp
	SideEffectVisitGlobalVar
	SideEffectTodo
)

func (s SideEffect) String() string {
	switch s {
	case SideEffectNone:
		return "none"
	case SideEffectPending:
		return "pending"
	case SideEffectFnCall:
		return "fn-call"
	case SideEffectVisitThis:
		return "visit-this"
	case SideEffectVisitProp:
		return "visit-prop"
	case SideEffectVisitGlobalVar:
		return "visit-global-var"
	default:
		return "todo"
	}
}

// ResolvedId is the loader's answer to a specifier: an absolute id, plus
// whether it names something outside the bundle.
type ResolvedId struct {
	Id       string
	External bool
}

// SpecifierId is an import binding: the local alias (name + mark) and the
// name it was imported as from the source module ("default", "*", or an
// identifier).
type SpecifierId struct {
	AliasName string
	AliasMark mark.Mark
	Original  string
}

// Specifier is a re-export binding; re-exports never bind a local name so
// there is no mark here.
type Specifier struct {
	Alias    string
	Original string
}

// TopLevelStmt wraps one top-level statement with the bookkeeping the
// linker and tree-shaker need: which marks it declares, which marks a
// reachability walk must pull in when this statement is included, and
// whether it survived inclusion.
type TopLevelStmt struct {
	Stmt            ast.Stmt
	DeclaredMarks   []mark.Mark
	ReferencedMarks []mark.Mark
	SideEffect      SideEffect
	Included        bool

	// Set on SImport / SExportNamed / SExportAll / SExportDefault statements.
	// The chunk assembler decides what to strip by statement type, not by
	// this flag.
	IsModuleSyntax bool
}

// Module is the per-file record. Fields before linking are filled in by the
// scanner (component C) under the sole ownership of the worker that created
// it; ResolvedModuleIds is filled in by that same loader worker, and the
// fields after it by the single-threaded graph builder (component F), which
// is the only thing allowed to touch a Module once it has been inserted
// into the Graph.
type Module struct {
	Id        string
	ExecOrder int // assigned once, by the graph builder's ordering pass

	Program ast.Program

	TopLevel []*TopLevelStmt

	Dependencies    []string        // ordered, de-duplicated static import/re-export specifiers
	DynDependencies []string        // ordered, de-duplicated dynamic import() specifiers
	Imports         map[string][]SpecifierId
	ReExports       map[string][]Specifier
	ReExportAllSrcs []string // ordered set of `export * from` specifiers

	LocalExports  map[string]mark.Mark // exported name -> declaration mark
	MergedExports map[string]mark.Mark // filled by linker; superset of LocalExports

	LocalBindedIds map[string]mark.Mark // every top-level binding name -> its declaration mark

	SideEffect SideEffect

	SuggestedNames map[string]string // exported name -> preferred local name, from importer aliases

	IsEntry  bool
	Included bool

	// -- filled by the loader --
	ResolvedModuleIds map[string]ResolvedId

	// -- filled by the linker (§4.E stage 3) --
	UsedExportedIds map[mark.Mark]bool

	// -- filled by the linker, once some importer takes this module's
	// namespace with `import * as`; read by the chunk assembler --
	NamespaceMark mark.Mark
	NamespaceName string

	// Default export shim name. No pass currently assigns it; it stays "".
	DefaultShimName string

	// Default-export bookkeeping the chunk assembler's shim step (§4.F step
	// 2) needs: whether the default export is an anonymous function/class
	// (NeedsName) or a bare non-identifier expression that must be lifted
	// into its own `var <name> = <expr>` declaration (NeedsBinding).
	DefaultNeedsName    bool
	DefaultNeedsBinding bool
}

func NewModule(id string) *Module {
	return &Module{
		Id:                id,
		Imports:           make(map[string][]SpecifierId),
		ReExports:         make(map[string][]Specifier),
		LocalExports:      make(map[string]mark.Mark),
		MergedExports:     make(map[string]mark.Mark),
		LocalBindedIds:    make(map[string]mark.Mark),
		SuggestedNames:    make(map[string]string),
		ResolvedModuleIds: make(map[string]ResolvedId),
		UsedExportedIds:   make(map[mark.Mark]bool),
	}
}

// EdgeKind tags a graph edge with the relation that created it.
type EdgeKind uint8

const (
	EdgeImport EdgeKind = iota
	EdgeReExport
	EdgeReExportAll
)

// Edge connects two modules by id. Order is the position of the
// corresponding specifier in the source file; the ordering passes do not
// read it and follow edges in the order AddEdge received them.
type Edge struct {
	From, To string
	Kind     EdgeKind
	Order    int
	Dynamic  bool
}

// Graph is the directed multigraph over module ids.
type Graph struct {
	Modules map[string]*Module
	// InsertionOrder holds ids in the order AddModule saw them, used as a
	// deterministic root-enumeration order before Order (the exec_order
	// computation, §4.E stage 1) has run.
	InsertionOrder []string
	Edges          []Edge

	// Marks is the single mark.Box every module in this graph was scanned
	// with; the linker unions marks through it to equate imports with the
	// declarations they resolve to.
	Marks *mark.Box
}

func NewGraph(marks *mark.Box) *Graph {
	return &Graph{Modules: make(map[string]*Module), Marks: marks}
}

func (g *Graph) AddModule(m *Module) {
	if _, exists := g.Modules[m.Id]; exists {
		return
	}
	g.Modules[m.Id] = m
	g.InsertionOrder = append(g.InsertionOrder, m.Id)
}

func (g *Graph) AddEdge(e Edge) {
	g.Edges = append(g.Edges, e)
}
