package transformer

import (
	"github.com/arborjs/arbor/internal/compat"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
	"github.com/arborjs/arbor/internal/traverse"
)

// ES2018: object rest/spread and async iteration.
//
// Spread in object literals lowers to "__spreadValues"/"__spreadProps" calls
// that preserve the order of side effects. Rest in variable declarations
// lowers to "__rest" calls. "for await" lowers to a loop over the async
// iterator protocol via the "__forAwait" helper.
type es2018Pass struct {
	ctx *TransformCtx
}

func (p *es2018Pass) exitExpression(expr *js_ast.Expr, tctx *traverse.Ctx) {
	object, ok := expr.Data.(*js_ast.EObject)
	if !ok || !p.ctx.IsUnsupported(compat.ObjectRestSpread) {
		return
	}
	hasSpread := false
	for _, property := range object.Properties {
		if property.Kind == js_ast.PropertySpread {
			hasSpread = true
			break
		}
	}
	if !hasSpread {
		return
	}
	*expr = p.lowerObjectSpread(expr.Loc, object, tctx)
}

// Non-spread properties are grouped into object literals and passed to the
// helpers pairwise to preserve the order of side effects:
//
//	"{a, ...b, c}" => "__spreadProps(__spreadValues({a}, b), {c})"
//	"{...a, b}"    => "__spreadProps(__spreadValues({}, a), {b})"
//
// Merging everything with one variadic call would run getters in the wrong
// order relative to the spreads.
func (p *es2018Pass) lowerObjectSpread(loc logger.Loc, object *js_ast.EObject, tctx *traverse.Ctx) js_ast.Expr {
	var result js_ast.Expr
	var group []js_ast.Property

	flushGroup := func() {
		if len(group) == 0 {
			return
		}
		literal := js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: group}}
		if result.Data == nil {
			result = literal
		} else {
			result = p.ctx.CallRuntime(tctx, loc, "__spreadProps", []js_ast.Expr{result, literal})
		}
		group = nil
	}

	for _, property := range object.Properties {
		if property.Kind != js_ast.PropertySpread {
			group = append(group, property)
			continue
		}
		flushGroup()
		if result.Data == nil {
			result = js_ast.Expr{Loc: loc, Data: &js_ast.EObject{}}
		}
		result = p.ctx.CallRuntime(tctx, loc, "__spreadValues", []js_ast.Expr{result, property.ValueOrNil})
	}
	flushGroup()

	if result.Data == nil {
		result = js_ast.Expr{Loc: loc, Data: &js_ast.EObject{}}
	}
	return result
}

// "var {a, ...r} = x" => "var _a = x, {a} = _a, r = __rest(_a, ['a'])"
func (p *es2018Pass) exitStatements(stmts *[]js_ast.Stmt, tctx *traverse.Ctx) {
	if !p.ctx.IsUnsupported(compat.ObjectRestSpread) {
		return
	}

	for i := range *stmts {
		local, ok := (*stmts)[i].Data.(*js_ast.SLocal)
		if !ok {
			continue
		}
		var decls []js_ast.Decl
		changed := false
		for _, decl := range local.Decls {
			if expanded, ok := p.expandRestDecl(decl, tctx); ok {
				decls = append(decls, expanded...)
				changed = true
			} else {
				decls = append(decls, decl)
			}
		}
		if changed {
			local.Decls = decls
		}
	}
}

func (p *es2018Pass) expandRestDecl(decl js_ast.Decl, tctx *traverse.Ctx) ([]js_ast.Decl, bool) {
	object, ok := decl.Binding.Data.(*js_ast.BObject)
	if !ok || decl.ValueOrNil.Data == nil {
		return nil, false
	}

	restIndex := -1
	for i, property := range object.Properties {
		if property.IsSpread {
			restIndex = i
		}
	}
	if restIndex == -1 {
		return nil, false
	}

	var excluded []js_ast.Expr
	for i, property := range object.Properties {
		if i == restIndex {
			continue
		}
		if property.IsComputed {
			p.ctx.AddError(property.Key.Loc, "Computed keys cannot be lowered next to a rest pattern")
			return nil, false
		}
		if key, ok := property.Key.Data.(*js_ast.EString); ok {
			excluded = append(excluded, stringExpr(property.Key.Loc, key.Value))
		}
	}

	loc := decl.Binding.Loc
	sourceRef := p.ctx.NewTempWithoutDeclaration(tctx)
	restBinding := object.Properties[restIndex].Value

	keep := make([]js_ast.PropertyBinding, 0, len(object.Properties)-1)
	keep = append(keep, object.Properties[:restIndex]...)
	keep = append(keep, object.Properties[restIndex+1:]...)

	decls := []js_ast.Decl{{
		Binding:    js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Ref: sourceRef}},
		ValueOrNil: decl.ValueOrNil,
	}}
	if len(keep) > 0 {
		decls = append(decls, js_ast.Decl{
			Binding:    js_ast.Binding{Loc: loc, Data: &js_ast.BObject{Properties: keep}},
			ValueOrNil: refExpr(tctx, loc, sourceRef),
		})
	}
	decls = append(decls, js_ast.Decl{
		Binding: restBinding,
		ValueOrNil: p.ctx.CallRuntime(tctx, loc, "__rest", []js_ast.Expr{
			refExpr(tctx, loc, sourceRef),
			{Loc: loc, Data: &js_ast.EArray{Items: excluded}},
		}),
	})
	return decls, true
}

// Lowers "for await (const x of y) { ... }" to a loop over the async
// iterator protocol. The iterator is closed on early exit and the original
// completion value is preserved:
//
//	try {
//	  for (iter = __forAwait(y); more = await iter.next(), !more.done; ) {
//	    const x = await more.value;
//	    ...
//	  }
//	} catch (temp) {
//	  error = [temp];
//	} finally {
//	  try {
//	    more && !more.done && (temp = iter.return) && await temp.call(iter);
//	  } finally {
//	    if (error) throw error[0];
//	  }
//	}
func (p *es2018Pass) exitStatement(stmt *js_ast.Stmt, tctx *traverse.Ctx) {
	forOf, ok := stmt.Data.(*js_ast.SForOf)
	if !ok || !forOf.IsAwait || !p.ctx.IsUnsupported(compat.ForAwait) {
		return
	}

	loc := stmt.Loc
	iterRef := p.ctx.NewTemp(tctx)
	moreRef := p.ctx.NewTemp(tctx)
	tempRef := p.ctx.NewTemp(tctx)
	errorRef := p.ctx.NewTemp(tctx)

	iter := func() js_ast.Expr { return refExpr(tctx, loc, iterRef) }
	more := func() js_ast.Expr { return refExpr(tctx, loc, moreRef) }
	temp := func() js_ast.Expr { return refExpr(tctx, loc, tempRef) }
	errorVal := func() js_ast.Expr { return refExpr(tctx, loc, errorRef) }

	await := func(value js_ast.Expr) js_ast.Expr {
		if lowered, ok := p.ctx.LoweredAwait(loc, value); ok {
			return lowered
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.EAwait{Value: value}}
	}

	// "iter = __forAwait(y)"
	init := js_ast.Assign(iter(), p.ctx.CallRuntime(tctx, loc, "__forAwait", []js_ast.Expr{forOf.Value}))

	// "more = await iter.next(), !more.done"
	test := js_ast.JoinWithComma(
		js_ast.Assign(more(), await(js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
			Target: dotExpr(iter(), "next", loc),
		}})),
		js_ast.Not(dotExpr(more(), "done", loc)),
	)

	// The loop binding takes its value from the iterator result
	value := await(dotExpr(more(), "value", loc))
	var bindingStmt js_ast.Stmt
	switch init := forOf.Init.Data.(type) {
	case *js_ast.SLocal:
		decls := init.Decls
		if len(decls) == 1 {
			decls[0].ValueOrNil = value
		}
		bindingStmt = js_ast.Stmt{Loc: forOf.Init.Loc, Data: init}
	case *js_ast.SExpr:
		bindingStmt = js_ast.Stmt{Loc: forOf.Init.Loc, Data: &js_ast.SExpr{
			Value: js_ast.Assign(init.Value, value),
		}}
	default:
		p.ctx.AddError(forOf.Init.Loc, "Unexpected loop target in \"for await\"")
		return
	}

	bodyStmts := []js_ast.Stmt{bindingStmt}
	if block, ok := forOf.Body.Data.(*js_ast.SBlock); ok {
		bodyStmts = append(bodyStmts, block.Stmts...)
	} else {
		bodyStmts = append(bodyStmts, forOf.Body)
	}

	loop := js_ast.Stmt{Loc: loc, Data: &js_ast.SFor{
		InitOrNil: js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: init}},
		TestOrNil: test,
		Body:      js_ast.Stmt{Loc: loc, Data: &js_ast.SBlock{Stmts: bodyStmts}},
	}}

	// "catch (temp) { error = [temp] }" distinguishes "threw undefined" from
	// "did not throw"
	catchRef := tctx.NewSymbol(js_ast.SymbolOther, "temp")
	catchClause := &js_ast.Catch{
		Loc:          loc,
		BindingOrNil: js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Ref: catchRef}},
		Block: js_ast.SBlock{Stmts: []js_ast.Stmt{
			js_ast.AssignStmt(errorVal(), js_ast.Expr{Loc: loc, Data: &js_ast.EArray{
				Items: []js_ast.Expr{refExpr(tctx, loc, catchRef)},
			}}),
		}},
	}

	// "more && !more.done && (temp = iter.return) && await temp.call(iter)"
	closeIter := js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{
		Op: js_ast.BinOpLogicalAnd,
		Left: js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{
			Op: js_ast.BinOpLogicalAnd,
			Left: js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{
				Op:    js_ast.BinOpLogicalAnd,
				Left:  more(),
				Right: js_ast.Not(dotExpr(more(), "done", loc)),
			}},
			Right: js_ast.Assign(temp(), dotExpr(iter(), "return", loc)),
		}},
		Right: await(js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
			Target: dotExpr(temp(), "call", loc),
			Args:   []js_ast.Expr{iter()},
		}}),
	}}

	rethrow := js_ast.Stmt{Loc: loc, Data: &js_ast.SIf{
		Test: errorVal(),
		Yes: js_ast.Stmt{Loc: loc, Data: &js_ast.SThrow{
			Value: js_ast.Expr{Loc: loc, Data: &js_ast.EIndex{
				Target: errorVal(),
				Index:  js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Value: 0}},
			}},
		}},
	}}

	finallyBlock := &js_ast.Finally{Loc: loc, Block: js_ast.SBlock{Stmts: []js_ast.Stmt{
		{Loc: loc, Data: &js_ast.STry{
			Block: js_ast.SBlock{Stmts: []js_ast.Stmt{
				{Loc: loc, Data: &js_ast.SExpr{Value: closeIter}},
			}},
			Finally: &js_ast.Finally{Loc: loc, Block: js_ast.SBlock{Stmts: []js_ast.Stmt{rethrow}}},
		}},
	}}}

	stmt.Data = &js_ast.STry{
		Block:   js_ast.SBlock{Stmts: []js_ast.Stmt{loop}},
		Catch:   catchClause,
		Finally: finallyBlock,
	}
}

// Async generators have no compact lowering without a full state-machine
// runtime, so they are reported instead of silently mis-compiled. The node
// is left in its original (valid but un-lowered) form.
func (p *es2018Pass) exitFunction(fn *js_ast.Fn, tctx *traverse.Ctx) {
	if fn.IsAsync && fn.IsGenerator && p.ctx.IsUnsupported(compat.AsyncGenerator) {
		p.ctx.AddError(fn.Body.Loc, "Async generators are not supported by the configured target environment")
	}
}
