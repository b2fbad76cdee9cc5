package transformer

import (
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
	"github.com/arborjs/arbor/internal/traverse"
)

// ES2017: async functions. An async function body becomes a generator driven
// by the "__async" runtime helper, with each "await" rewritten to "yield":
//
//	async function f() { return await x }
//	=>
//	function f() { return __async(this, arguments, function* () { return yield x }) }
//
// The composer tracks which enclosing function is being lowered (see
// TransformCtx.LoweredAwait); this pass rewrites awaits bottom-up during the
// same traversal, so by function exit the body is already await-free.
type es2017Pass struct {
	ctx *TransformCtx
}

func (p *es2017Pass) exitExpression(expr *js_ast.Expr, tctx *traverse.Ctx) {
	if await, ok := expr.Data.(*js_ast.EAwait); ok {
		if lowered, ok := p.ctx.LoweredAwait(expr.Loc, await.Value); ok {
			*expr = lowered
		}
	}
}

func (p *es2017Pass) exitFunction(fn *js_ast.Fn, tctx *traverse.Ctx) {
	if !fn.IsAsync || fn.IsGenerator {
		return
	}
	loc := fn.Body.Loc
	fn.IsAsync = false
	fn.Body.Block.Stmts = []js_ast.Stmt{{Loc: loc, Data: &js_ast.SReturn{
		ValueOrNil: p.asyncWrapper(loc, fn.Body.Block.Stmts, true, tctx),
	}}}
}

func (p *es2017Pass) exitArrow(expr *js_ast.Expr, arrow *js_ast.EArrow, tctx *traverse.Ctx) {
	if !arrow.IsAsync {
		return
	}
	loc := arrow.Body.Loc
	arrow.IsAsync = false
	arrow.Body.Block.Stmts = []js_ast.Stmt{{Loc: loc, Data: &js_ast.SReturn{
		// Arrows have no "arguments" binding of their own to forward
		ValueOrNil: p.asyncWrapper(loc, arrow.Body.Block.Stmts, false, tctx),
	}}}
	arrow.PreferExpr = true
}

// "__async(this, arguments, function* () { ... })"
func (p *es2017Pass) asyncWrapper(loc logger.Loc, body []js_ast.Stmt, forwardArguments bool, tctx *traverse.Ctx) js_ast.Expr {
	args := js_ast.Expr{Loc: loc, Data: js_ast.ENullShared}
	if forwardArguments {
		args = refExpr(tctx, loc, p.ctx.UnboundRef(tctx, "arguments"))
	}
	generator := js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: js_ast.Fn{
		IsGenerator:  true,
		ArgumentsRef: js_ast.InvalidRef,
		Body:         js_ast.FnBody{Loc: loc, Block: js_ast.SBlock{Stmts: body}},
	}}}
	return p.ctx.CallRuntime(tctx, loc, "__async", []js_ast.Expr{
		{Loc: loc, Data: js_ast.EThisShared},
		args,
		generator,
	})
}
