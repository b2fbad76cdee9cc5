package transformer

import (
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/traverse"
)

// ES2021: logical assignment operators.
//
//	"a ||= b"   => "a || (a = b)"
//	"a &&= b"   => "a && (a = b)"
//	"a ??= b"   => "a ?? (a = b)"
//	"x.y ||= b" => "(_a = x).y || (_a.y = b)"
//
// The rewrite happens on enter so that the resulting "??" (and the member
// accesses) are visited by the rest of this traversal; the es2020 pass then
// lowers the nullish coalescing on exit when it too is targeted.
type es2021Pass struct {
	ctx *TransformCtx
}

func (p *es2021Pass) enterExpression(expr *js_ast.Expr, tctx *traverse.Ctx) {
	binary, ok := expr.Data.(*js_ast.EBinary)
	if !ok {
		return
	}

	var op js_ast.OpCode
	switch binary.Op {
	case js_ast.BinOpLogicalOrAssign:
		op = js_ast.BinOpLogicalOr
	case js_ast.BinOpLogicalAndAssign:
		op = js_ast.BinOpLogicalAnd
	case js_ast.BinOpNullishCoalescingAssign:
		op = js_ast.BinOpNullishCoalescing
	default:
		return
	}

	read, write, ok := p.splitTarget(binary.Left, tctx)
	if !ok {
		return
	}

	expr.Data = &js_ast.EBinary{
		Op:    op,
		Left:  read,
		Right: js_ast.Assign(write, binary.Right),
	}
}

// Splits an assignment target into a read expression and a write expression
// that evaluate the target's object and index exactly once between them.
func (p *es2021Pass) splitTarget(target js_ast.Expr, tctx *traverse.Ctx) (read js_ast.Expr, write js_ast.Expr, ok bool) {
	switch left := target.Data.(type) {
	case *js_ast.EIdentifier:
		return refExpr(tctx, target.Loc, left.Ref), refExpr(tctx, target.Loc, left.Ref), true

	case *js_ast.EDot:
		first, capture := p.ctx.CaptureValue(tctx, left.Target)
		obj := capture()
		if first.Data != nil {
			obj = first
		}
		return dotExpr(obj, left.Name, left.NameLoc), dotExpr(capture(), left.Name, left.NameLoc), true

	case *js_ast.EIndex:
		objFirst, objCapture := p.ctx.CaptureValue(tctx, left.Target)
		indexFirst, indexCapture := p.ctx.CaptureValue(tctx, left.Index)
		obj := objCapture()
		if objFirst.Data != nil {
			obj = objFirst
		}
		index := indexCapture()
		if indexFirst.Data != nil {
			index = indexFirst
		}
		read = js_ast.Expr{Loc: target.Loc, Data: &js_ast.EIndex{Target: obj, Index: index}}
		write = js_ast.Expr{Loc: target.Loc, Data: &js_ast.EIndex{Target: objCapture(), Index: indexCapture()}}
		return read, write, true
	}
	return js_ast.Expr{}, js_ast.Expr{}, false
}
