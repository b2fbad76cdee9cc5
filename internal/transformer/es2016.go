package transformer

import (
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
	"github.com/arborjs/arbor/internal/traverse"
)

// ES2016: the exponentiation operator. "a ** b" becomes "__pow(a, b)" and
// "a **= b" becomes "a = __pow(a, b)" with single evaluation of member
// targets.
type es2016Pass struct {
	ctx *TransformCtx
}

func (p *es2016Pass) exitExpression(expr *js_ast.Expr, tctx *traverse.Ctx) {
	binary, ok := expr.Data.(*js_ast.EBinary)
	if !ok {
		return
	}

	switch binary.Op {
	case js_ast.BinOpPow:
		*expr = p.ctx.CallRuntime(tctx, expr.Loc, "__pow", []js_ast.Expr{binary.Left, binary.Right})

	case js_ast.BinOpPowAssign:
		*expr = p.lowerAssignment(expr.Loc, binary, tctx)
	}
}

// "a **= b"   => "a = __pow(a, b)"
// "a.b **= c" => "(_a = a).b = __pow(_a.b, c)"
func (p *es2016Pass) lowerAssignment(loc logger.Loc, binary *js_ast.EBinary, tctx *traverse.Ctx) js_ast.Expr {
	makeAssign := func(target js_ast.Expr, read js_ast.Expr) js_ast.Expr {
		return js_ast.Assign(target, p.ctx.CallRuntime(tctx, loc, "__pow", []js_ast.Expr{read, binary.Right}))
	}

	switch left := binary.Left.Data.(type) {
	case *js_ast.EIdentifier:
		return makeAssign(
			refExpr(tctx, binary.Left.Loc, left.Ref),
			refExpr(tctx, binary.Left.Loc, left.Ref),
		)

	case *js_ast.EDot:
		first, capture := p.ctx.CaptureValue(tctx, left.Target)
		target := capture()
		if first.Data != nil {
			target = first
		}
		assign := makeAssign(
			dotExpr(target, left.Name, left.NameLoc),
			dotExpr(capture(), left.Name, left.NameLoc),
		)
		return assign

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
		return makeAssign(
			js_ast.Expr{Loc: binary.Left.Loc, Data: &js_ast.EIndex{Target: obj, Index: index}},
			js_ast.Expr{Loc: binary.Left.Loc, Data: &js_ast.EIndex{Target: objCapture(), Index: indexCapture()}},
		)

	default:
		// The parser rejects other assignment targets
		return js_ast.Expr{Loc: loc, Data: binary}
	}
}
