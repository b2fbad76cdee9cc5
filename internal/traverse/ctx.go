package traverse

import (
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
)

// Ancestor identifies one node on the path from the program root down to the
// node currently being visited. Exactly one field is set. Ancestors are
// read-only to passes: mutate only the node your hook was invoked for.
type Ancestor struct {
	Stmt *js_ast.Stmt
	Expr *js_ast.Expr
}

// Ctx is the traversal context threaded through every hook invocation. It
// owns the ancestor stack and the symbol and scope tables for the duration
// of one walk.
type Ctx struct {
	Symbols     js_ast.SymbolMap
	ModuleScope *js_ast.Scope
	Program     *js_ast.AST

	ancestors []Ancestor
}

func (ctx *Ctx) pushStmt(stmt *js_ast.Stmt) {
	ctx.ancestors = append(ctx.ancestors, Ancestor{Stmt: stmt})
}

func (ctx *Ctx) pushExpr(expr *js_ast.Expr) {
	ctx.ancestors = append(ctx.ancestors, Ancestor{Expr: expr})
}

func (ctx *Ctx) pop() {
	ctx.ancestors = ctx.ancestors[:len(ctx.ancestors)-1]
}

// Parent returns the immediate ancestor of the current node (the node whose
// descent invoked the current hook). It returns a zero Ancestor at the
// program root.
func (ctx *Ctx) Parent() Ancestor {
	if len(ctx.ancestors) == 0 {
		return Ancestor{}
	}
	return ctx.ancestors[len(ctx.ancestors)-1]
}

// Ancestors returns the path from the program root to the current node. The
// slice is owned by the walker; treat it as read-only.
func (ctx *Ctx) Ancestors() []Ancestor {
	return ctx.ancestors
}

func (ctx *Ctx) ParentIsExpressionStatement() bool {
	parent := ctx.Parent()
	if parent.Stmt == nil {
		return false
	}
	_, ok := parent.Stmt.Data.(*js_ast.SExpr)
	return ok
}

// IsAssignmentTarget reports whether the given expression slot is written to
// by its parent: the operand of an update operator, the left side of an
// assignment operator, or the loop target of a for-in/for-of statement.
// Rewrites that replace a reference with a value (like "undefined" =>
// "void 0") must skip these positions.
func (ctx *Ctx) IsAssignmentTarget(expr *js_ast.Expr) bool {
	parent := ctx.Parent()

	if parent.Expr != nil {
		switch e := parent.Expr.Data.(type) {
		case *js_ast.EUnary:
			return e.Op.UnaryAssignTarget() != js_ast.AssignTargetNone && expr == &e.Value
		case *js_ast.EBinary:
			return e.Op.BinaryAssignTarget() != js_ast.AssignTargetNone && expr == &e.Left
		}
		return false
	}

	// "for (x in y)" and "for (x of y)" wrap a non-declaration loop target in
	// an expression statement slot
	if parent.Stmt != nil {
		if _, ok := parent.Stmt.Data.(*js_ast.SExpr); ok {
			ancestors := ctx.Ancestors()
			if len(ancestors) >= 2 {
				grand := ancestors[len(ancestors)-2]
				if grand.Stmt != nil {
					switch s := grand.Stmt.Data.(type) {
					case *js_ast.SForIn:
						return parent.Stmt == &s.Init
					case *js_ast.SForOf:
						return parent.Stmt == &s.Init
					}
				}
			}
		}
	}
	return false
}

// IsUnresolvedReference is true when the expression is an identifier
// reference whose symbol never resolved to a declaration, i.e. an implicit
// global with the given name. A user binding of the same name resolves to a
// non-unbound symbol, so this check cannot be fooled by shadowing.
func (ctx *Ctx) IsUnresolvedReference(data js_ast.E, name string) bool {
	id, ok := data.(*js_ast.EIdentifier)
	if !ok {
		return false
	}
	symbol := ctx.Symbols.Get(js_ast.FollowSymbols(ctx.Symbols, id.Ref))
	return symbol.Kind == js_ast.SymbolUnbound && symbol.OriginalName == name
}

// IsExpressionUndefined is true iff the expression is statically known to be
// the undefined value: the "undefined" literal node, a reference that
// resolves to the global intrinsic "undefined", or "void <literal>". A
// reference shadowed by a local binding named "undefined" is NOT undefined.
func (ctx *Ctx) IsExpressionUndefined(expr js_ast.Expr) bool {
	switch expr.Data.(type) {
	case *js_ast.EUndefined:
		return true
	}
	if ctx.IsUnresolvedReference(expr.Data, "undefined") {
		return true
	}
	return js_ast.IsVoidOfLiteral(expr.Data)
}

// NewSymbol appends a fresh symbol to the program's symbol slice and records
// it in the module scope's generated list. The traversal engine owns table
// maintenance for nodes created mid-walk; passes go through this helper
// instead of touching the tables directly.
func (ctx *Ctx) NewSymbol(kind js_ast.SymbolKind, originalName string) js_ast.Ref {
	sourceIndex := ctx.Program.SourceIndex
	symbols := ctx.Symbols.SymbolsForSource[sourceIndex]
	ref := js_ast.Ref{
		SourceIndex: sourceIndex,
		InnerIndex:  uint32(len(symbols)),
	}
	ctx.Symbols.SymbolsForSource[sourceIndex] = append(symbols, js_ast.Symbol{
		Kind:         kind,
		OriginalName: originalName,
		Link:         js_ast.InvalidRef,
	})
	if ctx.ModuleScope != nil {
		ctx.ModuleScope.Generated = append(ctx.ModuleScope.Generated, ref)
	}
	return ref
}

// RecordUsage bumps the use count estimate for a symbol when a pass
// synthesizes a new reference to it.
func (ctx *Ctx) RecordUsage(ref js_ast.Ref) {
	if ref.IsValid() {
		ctx.Symbols.Get(ref).UseCountEstimate++
	}
}

// RecordDeclaredSymbol adds a generated binding to a scope so the scope tree
// keeps mirroring the lexical structure of the transformed tree.
func (ctx *Ctx) RecordDeclaredSymbol(scope *js_ast.Scope, name string, ref js_ast.Ref, loc logger.Loc) {
	if scope.Members == nil {
		scope.Members = make(map[string]js_ast.ScopeMember)
	}
	scope.Members[name] = js_ast.ScopeMember{Ref: ref, Loc: loc}
}
