package traverse

// This package drives a single depth-first walk of a mutable program. For
// each node the visitor's enter hook fires before descent and the exit hook
// fires after, in matched pairs. Hooks receive a pointer to the slot holding
// the node, so a pass can mutate the node in place or replace it wholesale;
// the walker re-reads the slot after each enter hook, which means descent
// observes replacements instead of the original node.
//
// The walker never validates AST shape. A pass that synthesizes a malformed
// node will not be detected here; diagnostics are the pass's responsibility.

import (
	"github.com/arborjs/arbor/internal/js_ast"
)

// A Visitor declares hooks by node kind. Default hooks are no-ops; embed
// NoopVisitor and override only what the pass needs.
type Visitor interface {
	EnterProgram(program *js_ast.AST, ctx *Ctx)
	ExitProgram(program *js_ast.AST, ctx *Ctx)

	// Slice-level hooks: fire once per statement list, before and after the
	// per-statement hooks of its members. These are the only hooks that may
	// grow or shrink a statement list.
	EnterStatements(stmts *[]js_ast.Stmt, ctx *Ctx)
	ExitStatements(stmts *[]js_ast.Stmt, ctx *Ctx)

	EnterStatement(stmt *js_ast.Stmt, ctx *Ctx)
	ExitStatement(stmt *js_ast.Stmt, ctx *Ctx)

	EnterExpression(expr *js_ast.Expr, ctx *Ctx)
	ExitExpression(expr *js_ast.Expr, ctx *Ctx)

	// Typed hooks. The node behind the pointer is guaranteed to have the
	// matching data kind when the hook is invoked.
	EnterCall(expr *js_ast.Expr, call *js_ast.ECall, ctx *Ctx)
	ExitCall(expr *js_ast.Expr, call *js_ast.ECall, ctx *Ctx)
	ExitBinary(expr *js_ast.Expr, binary *js_ast.EBinary, ctx *Ctx)
	EnterArrow(expr *js_ast.Expr, arrow *js_ast.EArrow, ctx *Ctx)
	ExitArrow(expr *js_ast.Expr, arrow *js_ast.EArrow, ctx *Ctx)
	EnterLocal(stmt *js_ast.Stmt, local *js_ast.SLocal, ctx *Ctx)
	ExitReturn(stmt *js_ast.Stmt, ret *js_ast.SReturn, ctx *Ctx)
	EnterForOf(stmt *js_ast.Stmt, forOf *js_ast.SForOf, ctx *Ctx)

	EnterFunction(fn *js_ast.Fn, ctx *Ctx)
	ExitFunction(fn *js_ast.Fn, ctx *Ctx)
	EnterClass(class *js_ast.Class, ctx *Ctx)
	EnterCatch(catch *js_ast.Catch, ctx *Ctx)
}

// NoopVisitor implements Visitor with empty hooks
type NoopVisitor struct{}

func (NoopVisitor) EnterProgram(*js_ast.AST, *Ctx)                          {}
func (NoopVisitor) ExitProgram(*js_ast.AST, *Ctx)                           {}
func (NoopVisitor) EnterStatements(*[]js_ast.Stmt, *Ctx)                    {}
func (NoopVisitor) ExitStatements(*[]js_ast.Stmt, *Ctx)                     {}
func (NoopVisitor) EnterStatement(*js_ast.Stmt, *Ctx)                       {}
func (NoopVisitor) ExitStatement(*js_ast.Stmt, *Ctx)                        {}
func (NoopVisitor) EnterExpression(*js_ast.Expr, *Ctx)                      {}
func (NoopVisitor) ExitExpression(*js_ast.Expr, *Ctx)                       {}
func (NoopVisitor) EnterCall(*js_ast.Expr, *js_ast.ECall, *Ctx)             {}
func (NoopVisitor) ExitCall(*js_ast.Expr, *js_ast.ECall, *Ctx)              {}
func (NoopVisitor) ExitBinary(*js_ast.Expr, *js_ast.EBinary, *Ctx)          {}
func (NoopVisitor) EnterArrow(*js_ast.Expr, *js_ast.EArrow, *Ctx)           {}
func (NoopVisitor) ExitArrow(*js_ast.Expr, *js_ast.EArrow, *Ctx)            {}
func (NoopVisitor) EnterLocal(*js_ast.Stmt, *js_ast.SLocal, *Ctx)           {}
func (NoopVisitor) ExitReturn(*js_ast.Stmt, *js_ast.SReturn, *Ctx)          {}
func (NoopVisitor) EnterForOf(*js_ast.Stmt, *js_ast.SForOf, *Ctx)           {}
func (NoopVisitor) EnterFunction(*js_ast.Fn, *Ctx)                          {}
func (NoopVisitor) ExitFunction(*js_ast.Fn, *Ctx)                           {}
func (NoopVisitor) EnterClass(*js_ast.Class, *Ctx)                          {}
func (NoopVisitor) EnterCatch(*js_ast.Catch, *Ctx)                          {}

// Walk runs the visitor over the program to completion and returns the
// (possibly updated) symbol and scope tables. The tables move in and out by
// value; the walker exclusively borrows them for the duration of the walk.
func Walk(program *js_ast.AST, visitor Visitor, symbols js_ast.SymbolMap, scopes *js_ast.Scope) (js_ast.SymbolMap, *js_ast.Scope) {
	ctx := &Ctx{
		Symbols:     symbols,
		ModuleScope: scopes,
		Program:     program,
	}

	visitor.EnterProgram(program, ctx)
	w := walker{visitor: visitor, ctx: ctx}
	w.stmts(&program.Stmts)
	visitor.ExitProgram(program, ctx)

	return ctx.Symbols, ctx.ModuleScope
}

type walker struct {
	visitor Visitor
	ctx     *Ctx
}

func (w *walker) stmts(stmts *[]js_ast.Stmt) {
	w.visitor.EnterStatements(stmts, w.ctx)

	// Re-read the length on every iteration: the slice-level enter hook ran
	// already, but a per-statement hook is allowed to rewrite the current
	// statement into a shape with a different child list (not to splice the
	// list itself, which only the slice-level hooks may do).
	for i := 0; i < len(*stmts); i++ {
		w.stmt(&(*stmts)[i])
	}

	w.visitor.ExitStatements(stmts, w.ctx)
}

func (w *walker) stmt(stmt *js_ast.Stmt) {
	w.visitor.EnterStatement(stmt, w.ctx)

	// Typed enter hooks observe whatever the generic enter hook left behind
	switch s := stmt.Data.(type) {
	case *js_ast.SLocal:
		w.visitor.EnterLocal(stmt, s, w.ctx)
	case *js_ast.SForOf:
		w.visitor.EnterForOf(stmt, s, w.ctx)
	}

	w.ctx.pushStmt(stmt)

	switch s := stmt.Data.(type) {
	case *js_ast.SBlock:
		w.stmts(&s.Stmts)

	case *js_ast.SExpr:
		w.expr(&s.Value)

	case *js_ast.SLocal:
		for i := range s.Decls {
			decl := &s.Decls[i]
			w.binding(&decl.Binding)
			if decl.ValueOrNil.Data != nil {
				w.expr(&decl.ValueOrNil)
			}
		}

	case *js_ast.SIf:
		w.expr(&s.Test)
		w.stmt(&s.Yes)
		if s.NoOrNil.Data != nil {
			w.stmt(&s.NoOrNil)
		}

	case *js_ast.SFor:
		if s.InitOrNil.Data != nil {
			w.stmt(&s.InitOrNil)
		}
		if s.TestOrNil.Data != nil {
			w.expr(&s.TestOrNil)
		}
		if s.UpdateOrNil.Data != nil {
			w.expr(&s.UpdateOrNil)
		}
		w.stmt(&s.Body)

	case *js_ast.SForIn:
		w.stmt(&s.Init)
		w.expr(&s.Value)
		w.stmt(&s.Body)

	case *js_ast.SForOf:
		w.stmt(&s.Init)
		w.expr(&s.Value)
		w.stmt(&s.Body)

	case *js_ast.SWhile:
		w.expr(&s.Test)
		w.stmt(&s.Body)

	case *js_ast.SDoWhile:
		w.stmt(&s.Body)
		w.expr(&s.Test)

	case *js_ast.SReturn:
		if s.ValueOrNil.Data != nil {
			w.expr(&s.ValueOrNil)
		}

	case *js_ast.SThrow:
		w.expr(&s.Value)

	case *js_ast.STry:
		w.stmts(&s.Block.Stmts)
		if s.Catch != nil {
			w.visitor.EnterCatch(s.Catch, w.ctx)
			if s.Catch.BindingOrNil.Data != nil {
				w.binding(&s.Catch.BindingOrNil)
			}
			w.stmts(&s.Catch.Block.Stmts)
		}
		if s.Finally != nil {
			w.stmts(&s.Finally.Block.Stmts)
		}

	case *js_ast.SSwitch:
		w.expr(&s.Test)
		for i := range s.Cases {
			c := &s.Cases[i]
			if c.ValueOrNil.Data != nil {
				w.expr(&c.ValueOrNil)
			}
			w.stmts(&c.Body)
		}

	case *js_ast.SFunction:
		w.fn(&s.Fn)

	case *js_ast.SClass:
		w.class(&s.Class)

	case *js_ast.SEnum:
		for i := range s.Values {
			if s.Values[i].ValueOrNil.Data != nil {
				w.expr(&s.Values[i].ValueOrNil)
			}
		}

	case *js_ast.SNamespace:
		w.stmts(&s.Stmts)

	case *js_ast.SLabel:
		w.stmt(&s.Stmt)

	case *js_ast.SExportDefault:
		w.stmt(&s.Value)

	case *js_ast.SExportEquals:
		w.expr(&s.Value)
	}

	w.ctx.pop()

	switch s := stmt.Data.(type) {
	case *js_ast.SReturn:
		w.visitor.ExitReturn(stmt, s, w.ctx)
	}

	w.visitor.ExitStatement(stmt, w.ctx)
}

func (w *walker) expr(expr *js_ast.Expr) {
	w.visitor.EnterExpression(expr, w.ctx)

	switch e := expr.Data.(type) {
	case *js_ast.ECall:
		w.visitor.EnterCall(expr, e, w.ctx)
	case *js_ast.EArrow:
		w.visitor.EnterArrow(expr, e, w.ctx)
	}

	w.ctx.pushExpr(expr)

	switch e := expr.Data.(type) {
	case *js_ast.EArray:
		for i := range e.Items {
			if e.Items[i].Data != nil {
				w.expr(&e.Items[i])
			}
		}

	case *js_ast.EUnary:
		w.expr(&e.Value)

	case *js_ast.EBinary:
		w.expr(&e.Left)
		w.expr(&e.Right)

	case *js_ast.ENew:
		w.expr(&e.Target)
		for i := range e.Args {
			w.expr(&e.Args[i])
		}

	case *js_ast.ECall:
		w.expr(&e.Target)
		for i := range e.Args {
			w.expr(&e.Args[i])
		}

	case *js_ast.EDot:
		w.expr(&e.Target)

	case *js_ast.EIndex:
		w.expr(&e.Target)
		w.expr(&e.Index)

	case *js_ast.EArrow:
		w.args(e.Args)
		w.stmts(&e.Body.Block.Stmts)

	case *js_ast.EFunction:
		w.fn(&e.Fn)

	case *js_ast.EClass:
		w.class(&e.Class)

	case *js_ast.EJSXElement:
		if e.TagOrNil.Data != nil {
			w.expr(&e.TagOrNil)
		}
		w.properties(e.Properties)
		for i := range e.Children {
			w.expr(&e.Children[i])
		}

	case *js_ast.EObject:
		w.properties(e.Properties)

	case *js_ast.ESpread:
		w.expr(&e.Value)

	case *js_ast.ETemplate:
		if e.TagOrNil.Data != nil {
			w.expr(&e.TagOrNil)
		}
		for i := range e.Parts {
			w.expr(&e.Parts[i].Value)
		}

	case *js_ast.EIf:
		w.expr(&e.Test)
		w.expr(&e.Yes)
		w.expr(&e.No)

	case *js_ast.EAwait:
		w.expr(&e.Value)

	case *js_ast.EYield:
		if e.ValueOrNil.Data != nil {
			w.expr(&e.ValueOrNil)
		}

	case *js_ast.EImportCall:
		w.expr(&e.Expr)
		if e.OptionsOrNil.Data != nil {
			w.expr(&e.OptionsOrNil)
		}
	}

	w.ctx.pop()

	switch e := expr.Data.(type) {
	case *js_ast.EBinary:
		w.visitor.ExitBinary(expr, e, w.ctx)
	case *js_ast.ECall:
		w.visitor.ExitCall(expr, e, w.ctx)
	case *js_ast.EArrow:
		w.visitor.ExitArrow(expr, e, w.ctx)
	}

	w.visitor.ExitExpression(expr, w.ctx)
}

func (w *walker) properties(properties []js_ast.Property) {
	for i := range properties {
		property := &properties[i]
		if property.ClassStaticBlock != nil {
			w.stmts(&property.ClassStaticBlock.Block.Stmts)
			continue
		}
		if property.IsComputed && property.Key.Data != nil {
			w.expr(&property.Key)
		}
		if property.ValueOrNil.Data != nil {
			w.expr(&property.ValueOrNil)
		}
		if property.InitializerOrNil.Data != nil {
			w.expr(&property.InitializerOrNil)
		}
	}
}

func (w *walker) args(args []js_ast.Arg) {
	for i := range args {
		arg := &args[i]
		w.binding(&arg.Binding)
		if arg.DefaultOrNil.Data != nil {
			w.expr(&arg.DefaultOrNil)
		}
	}
}

func (w *walker) fn(fn *js_ast.Fn) {
	w.visitor.EnterFunction(fn, w.ctx)
	w.args(fn.Args)
	w.stmts(&fn.Body.Block.Stmts)
	w.visitor.ExitFunction(fn, w.ctx)
}

func (w *walker) class(class *js_ast.Class) {
	w.visitor.EnterClass(class, w.ctx)
	if class.ExtendsOrNil.Data != nil {
		w.expr(&class.ExtendsOrNil)
	}
	w.properties(class.Properties)
}

func (w *walker) binding(binding *js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BArray:
		for i := range b.Items {
			item := &b.Items[i]
			w.binding(&item.Binding)
			if item.DefaultOrNil.Data != nil {
				w.expr(&item.DefaultOrNil)
			}
		}

	case *js_ast.BObject:
		for i := range b.Properties {
			property := &b.Properties[i]
			if property.IsComputed && property.Key.Data != nil {
				w.expr(&property.Key)
			}
			w.binding(&property.Value)
			if property.DefaultOrNil.Data != nil {
				w.expr(&property.DefaultOrNil)
			}
		}
	}
}
