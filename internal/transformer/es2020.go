package transformer

import (
	"github.com/arborjs/arbor/internal/compat"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/traverse"
)

// ES2020: nullish coalescing, optional chaining, BigInt literals and
// "import.meta". All rewrites run on expression exit so earlier folds on the
// operands are already visible.
type es2020Pass struct {
	ctx *TransformCtx
}

func (p *es2020Pass) exitExpression(expr *js_ast.Expr, tctx *traverse.Ctx) {
	switch e := expr.Data.(type) {
	case *js_ast.EBinary:
		if e.Op == js_ast.BinOpNullishCoalescing && p.ctx.IsUnsupported(compat.NullishCoalescing) {
			*expr = p.lowerNullishCoalescing(e, tctx)
		}

	case *js_ast.EDot, *js_ast.EIndex, *js_ast.ECall:
		if p.ctx.IsUnsupported(compat.OptionalChain) && js_ast.IsOptionalChain(*expr) && p.isChainRoot(expr, tctx) {
			*expr = p.lowerOptionalChain(*expr, tctx)
		}

	case *js_ast.EBigInt:
		if p.ctx.IsUnsupported(compat.BigInt) {
			// "123n" => "BigInt('123')". The construction is equivalent for
			// every literal form, including hex and binary.
			bigIntRef := p.ctx.UnboundRef(tctx, "BigInt")
			*expr = js_ast.Expr{Loc: expr.Loc, Data: &js_ast.ECall{
				Target: refExpr(tctx, expr.Loc, bigIntRef),
				Args:   []js_ast.Expr{stringExpr(expr.Loc, e.Value)},
			}}
		}

	case *js_ast.EImportMeta:
		if p.ctx.IsUnsupported(compat.ImportMeta) {
			// The closest available shim is an empty object
			expr.Data = &js_ast.EObject{}
		}
	}
}

// "a ?? b" => "a == null ? b : a" (the test is built by NullCheck), evaluating
// "a" once
func (p *es2020Pass) lowerNullishCoalescing(binary *js_ast.EBinary, tctx *traverse.Ctx) js_ast.Expr {
	first, capture := p.ctx.CaptureValue(tctx, binary.Left)
	testOperand := first
	if testOperand.Data == nil {
		testOperand = capture()
	}
	return js_ast.Expr{Loc: binary.Left.Loc, Data: &js_ast.EIf{
		Test: p.ctx.NullCheck(testOperand, capture),
		Yes:  binary.Right,
		No:   capture(),
	}}
}

// A chain lowers as a unit at its root: the outermost member access or call
// that still carries a chain marking. Lowering an inner link on its own
// would detach the short-circuit from the rest of the chain.
func (p *es2020Pass) isChainRoot(expr *js_ast.Expr, tctx *traverse.Ctx) bool {
	parent := tctx.Parent()
	if parent.Expr == nil {
		return true
	}
	switch e := parent.Expr.Data.(type) {
	case *js_ast.EDot:
		return e.OptionalChain == js_ast.OptionalChainNone || expr != &e.Target
	case *js_ast.EIndex:
		return e.OptionalChain == js_ast.OptionalChainNone || expr != &e.Target
	case *js_ast.ECall:
		return e.OptionalChain == js_ast.OptionalChainNone || expr != &e.Target
	}
	return true
}

type chainLink struct {
	dot   *js_ast.EDot
	index *js_ast.EIndex
	call  *js_ast.ECall

	// True when this link was written with "?." and so introduces a check
	optional bool
}

// "a?.b.c" => "(_a = a) == null ? void 0 : _a.b.c"
// "a?.b?.()" => "(_a = a) == null ? void 0 : (_b = _a.b) == null ? void 0 : _b.call(_a)"
func (p *es2020Pass) lowerOptionalChain(expr js_ast.Expr, tctx *traverse.Ctx) js_ast.Expr {
	// Flatten the chain from root down to its base
	var links []chainLink
	base := expr
flatten:
	for {
		switch e := base.Data.(type) {
		case *js_ast.EDot:
			if e.OptionalChain == js_ast.OptionalChainNone {
				break flatten
			}
			links = append(links, chainLink{dot: e, optional: e.OptionalChain == js_ast.OptionalChainStart})
			base = e.Target
		case *js_ast.EIndex:
			if e.OptionalChain == js_ast.OptionalChainNone {
				break flatten
			}
			links = append(links, chainLink{index: e, optional: e.OptionalChain == js_ast.OptionalChainStart})
			base = e.Target
		case *js_ast.ECall:
			if e.OptionalChain == js_ast.OptionalChainNone {
				break flatten
			}
			links = append(links, chainLink{call: e, optional: e.OptionalChain == js_ast.OptionalChainStart})
			base = e.Target
		default:
			break flatten
		}
	}

	// Reverse so links run base-outward
	for i, j := 0, len(links)-1; i < j; i, j = i+1, j-1 {
		links[i], links[j] = links[j], links[i]
	}

	value := base
	var tests []js_ast.Expr

	// References to the object a method was read off, for "this" binding of
	// a following optional call
	var thisCapture func() js_ast.Expr

	for i, link := range links {
		if link.optional {
			first, capture := p.ctx.CaptureValue(tctx, value)
			testOperand := first
			if testOperand.Data == nil {
				testOperand = capture()
			}
			tests = append(tests, p.ctx.NullCheck(testOperand, capture))
			value = capture()
		}

		switch {
		case link.dot != nil:
			if i+1 < len(links) && links[i+1].call != nil && links[i+1].optional {
				// The next link is an optional call: capture the object so
				// the method can be invoked with the right "this"
				first, capture := p.ctx.CaptureValue(tctx, value)
				obj := capture()
				if first.Data != nil {
					obj = first
				}
				thisCapture = capture
				value = dotExpr(obj, link.dot.Name, link.dot.NameLoc)
			} else {
				value = dotExpr(value, link.dot.Name, link.dot.NameLoc)
				thisCapture = nil
			}

		case link.index != nil:
			if i+1 < len(links) && links[i+1].call != nil && links[i+1].optional {
				first, capture := p.ctx.CaptureValue(tctx, value)
				obj := capture()
				if first.Data != nil {
					obj = first
				}
				thisCapture = capture
				value = js_ast.Expr{Loc: expr.Loc, Data: &js_ast.EIndex{Target: obj, Index: link.index.Index}}
			} else {
				value = js_ast.Expr{Loc: expr.Loc, Data: &js_ast.EIndex{Target: value, Index: link.index.Index}}
				thisCapture = nil
			}

		case link.call != nil:
			if link.optional && thisCapture != nil {
				// "a.b?.()" => "_b.call(_a)" to preserve the receiver
				value = js_ast.Expr{Loc: expr.Loc, Data: &js_ast.ECall{
					Target: dotExpr(value, "call", expr.Loc),
					Args:   append([]js_ast.Expr{thisCapture()}, link.call.Args...),
				}}
			} else {
				value = js_ast.Expr{Loc: expr.Loc, Data: &js_ast.ECall{
					Target: value,
					Args:   link.call.Args,
				}}
			}
			thisCapture = nil
		}
	}

	// Later checks nest inside the else branch of earlier ones so they only
	// evaluate after the earlier part of the chain proved non-null
	for i := len(tests) - 1; i >= 0; i-- {
		value = js_ast.Expr{Loc: expr.Loc, Data: &js_ast.EIf{
			Test: tests[i],
			Yes:  void0(expr.Loc),
			No:   value,
		}}
	}
	return value
}
