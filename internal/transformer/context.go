package transformer

import (
	"fmt"

	"github.com/arborjs/arbor/internal/compat"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
	"github.com/arborjs/arbor/internal/traverse"
)

// TransformCtx is the state shared by all passes for one pipeline run: the
// source being transformed, the diagnostic sink, the compiled feature matrix,
// and the node-synthesis helpers. It is exclusively borrowed by the traversal
// for its lifetime.
type TransformCtx struct {
	Log    logger.Log
	Source *logger.Source

	SourcePath  string
	SourceType  js_ast.SourceType
	unsupported compat.JSFeature
	assumptions CompilerAssumptions
	module      Module
	helperOpts  HelperLoaderOptions

	// Helper loader state: name => ref, plus the order helpers were first used
	helperRefs  map[string]js_ast.Ref
	helperOrder []string

	// Stack of statement lists currently being traversed. Temporaries created
	// while visiting a list are declared with a "var" prepended to the
	// innermost list on its exit; "var" hoisting makes any enclosing block a
	// correct declaration site.
	stmtFrames []stmtListFrame

	// Innermost function whose "await" expressions are being rewritten. See
	// the es2017 and es2018 passes.
	asyncLowering []asyncLoweringKind

	tempCount int
}

type stmtListFrame struct {
	slice *[]js_ast.Stmt
	temps []js_ast.Ref
}

type asyncLoweringKind uint8

const (
	asyncNotLowered asyncLoweringKind = iota

	// A plain async function being rewritten to a generator driven by the
	// "__async" runtime helper
	asyncLoweredToGenerator
)

func (ctx *TransformCtx) IsUnsupported(feature compat.JSFeature) bool {
	return ctx.unsupported.Has(feature)
}

func (ctx *TransformCtx) AddError(loc logger.Loc, text string) {
	ctx.Log.AddError(ctx.Source, loc, text)
}

func (ctx *TransformCtx) AddRangeError(r logger.Range, text string) {
	ctx.Log.AddRangeError(ctx.Source, r, text)
}

/* Node synthesis. All helpers stamp the span of the construct they replace. */

func void0(loc logger.Loc) js_ast.Expr {
	return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{
		Op:    js_ast.UnOpVoid,
		Value: js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Value: 0}},
	}}
}

func nullExpr(loc logger.Loc) js_ast.Expr {
	return js_ast.Expr{Loc: loc, Data: js_ast.ENullShared}
}

func stringExpr(loc logger.Loc, value string) js_ast.Expr {
	return js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: value}}
}

// refExpr creates a new reference to an existing symbol and bumps its use count
func refExpr(tctx *traverse.Ctx, loc logger.Loc, ref js_ast.Ref) js_ast.Expr {
	tctx.RecordUsage(ref)
	return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Ref: ref}}
}

func dotExpr(target js_ast.Expr, name string, loc logger.Loc) js_ast.Expr {
	return js_ast.Expr{Loc: target.Loc, Data: &js_ast.EDot{
		Target:  target,
		Name:    name,
		NameLoc: loc,
	}}
}

// UnboundRef returns a reference to a global intrinsic such as "Object" or
// "RegExp", creating the unbound symbol on first use.
func (ctx *TransformCtx) UnboundRef(tctx *traverse.Ctx, name string) js_ast.Ref {
	if member, ok := tctx.ModuleScope.Members[name]; ok {
		return member.Ref
	}
	ref := tctx.NewSymbol(js_ast.SymbolUnbound, name)
	tctx.RecordDeclaredSymbol(tctx.ModuleScope, name, ref, logger.Loc{})
	return ref
}

// NewTemp allocates a fresh temporary symbol and schedules its "var"
// declaration on the innermost statement list.
func (ctx *TransformCtx) NewTemp(tctx *traverse.Ctx) js_ast.Ref {
	name := "_" + tempName(ctx.tempCount)
	ctx.tempCount++
	ref := tctx.NewSymbol(js_ast.SymbolGenerated, name)
	if n := len(ctx.stmtFrames); n > 0 {
		frame := &ctx.stmtFrames[n-1]
		frame.temps = append(frame.temps, ref)
	}
	return ref
}

// NewTempWithoutDeclaration allocates a temporary symbol the caller will
// bind itself, so no "var" is scheduled for it.
func (ctx *TransformCtx) NewTempWithoutDeclaration(tctx *traverse.Ctx) js_ast.Ref {
	name := "_" + tempName(ctx.tempCount)
	ctx.tempCount++
	return tctx.NewSymbol(js_ast.SymbolGenerated, name)
}

func tempName(i int) string {
	name := string(rune('a' + i%26))
	if i >= 26 {
		name += fmt.Sprintf("%d", i/26)
	}
	return name
}

// CaptureValue returns an expression that evaluates "value" exactly once
// plus a factory producing references to the captured result. Identifiers
// are reused directly and "first" comes back empty; everything else goes
// through a temporary:
//
//	"a"   => (nil,         func() => "a")
//	"a()" => ("_a = a()",  func() => "_a")
//
// When "first" is non-empty the caller must sequence it before the first
// capture, typically with a comma expression or as a conditional test.
func (ctx *TransformCtx) CaptureValue(tctx *traverse.Ctx, value js_ast.Expr) (first js_ast.Expr, capture func() js_ast.Expr) {
	if id, ok := value.Data.(*js_ast.EIdentifier); ok {
		return js_ast.Expr{}, func() js_ast.Expr {
			return refExpr(tctx, value.Loc, id.Ref)
		}
	}

	ref := ctx.NewTemp(tctx)
	first = js_ast.Assign(refExpr(tctx, value.Loc, ref), value)
	return first, func() js_ast.Expr {
		return refExpr(tctx, value.Loc, ref)
	}
}

// NullCheck builds the test "value is null or undefined" honoring the
// NoDocumentAll assumption: "x == null" when granted, otherwise the exact
// "x === null || x === void 0".
func (ctx *TransformCtx) NullCheck(value js_ast.Expr, capture func() js_ast.Expr) js_ast.Expr {
	loc := value.Loc
	if ctx.assumptions.NoDocumentAll {
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{
			Op:    js_ast.BinOpLooseEq,
			Left:  value,
			Right: nullExpr(loc),
		}}
	}
	return js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{
		Op: js_ast.BinOpLogicalOr,
		Left: js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{
			Op:    js_ast.BinOpStrictEq,
			Left:  value,
			Right: nullExpr(loc),
		}},
		Right: js_ast.Expr{Loc: loc, Data: &js_ast.EBinary{
			Op:    js_ast.BinOpStrictEq,
			Left:  capture(),
			Right: void0(loc),
		}},
	}}
}

// HelperRef returns the symbol for a runtime helper, creating it on first
// use. The common pass injects the helper's definition or import at program
// exit.
func (ctx *TransformCtx) HelperRef(tctx *traverse.Ctx, name string) js_ast.Ref {
	if ref, ok := ctx.helperRefs[name]; ok {
		return ref
	}
	kind := js_ast.SymbolGenerated
	if ctx.helperOpts.Mode == HelpersImport {
		kind = js_ast.SymbolImport
	}
	ref := tctx.NewSymbol(kind, name)
	ctx.helperRefs[name] = ref
	ctx.helperOrder = append(ctx.helperOrder, name)
	return ref
}

// CallRuntime builds a call to a runtime helper such as "__pow"
func (ctx *TransformCtx) CallRuntime(tctx *traverse.Ctx, loc logger.Loc, name string, args []js_ast.Expr) js_ast.Expr {
	ref := ctx.HelperRef(tctx, name)
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: refExpr(tctx, loc, ref),
		Args:   args,
	}}
}

/* Async lowering bookkeeping shared by the es2017 and es2018 passes */

func (ctx *TransformCtx) pushAsyncLowering(kind asyncLoweringKind) {
	ctx.asyncLowering = append(ctx.asyncLowering, kind)
}

func (ctx *TransformCtx) popAsyncLowering() {
	ctx.asyncLowering = ctx.asyncLowering[:len(ctx.asyncLowering)-1]
}

func (ctx *TransformCtx) currentAsyncLowering() asyncLoweringKind {
	if n := len(ctx.asyncLowering); n > 0 {
		return ctx.asyncLowering[n-1]
	}
	return asyncNotLowered
}

// LoweredAwait rewrites an awaited value for the innermost lowered function:
// "await x" becomes "yield x" inside "__async" generators. Outside a lowered
// function the await is left alone.
func (ctx *TransformCtx) LoweredAwait(loc logger.Loc, value js_ast.Expr) (js_ast.Expr, bool) {
	if ctx.currentAsyncLowering() == asyncLoweredToGenerator {
		return js_ast.Expr{Loc: loc, Data: &js_ast.EYield{ValueOrNil: value}}, true
	}
	return js_ast.Expr{}, false
}

/* Statement-list frames for temporary declarations */

func (ctx *TransformCtx) pushStmtFrame(stmts *[]js_ast.Stmt) {
	ctx.stmtFrames = append(ctx.stmtFrames, stmtListFrame{slice: stmts})
}

func (ctx *TransformCtx) popStmtFrame(stmts *[]js_ast.Stmt) {
	n := len(ctx.stmtFrames)
	if n == 0 || ctx.stmtFrames[n-1].slice != stmts {
		panic("Internal error: unbalanced statement-list frames")
	}
	frame := ctx.stmtFrames[n-1]
	ctx.stmtFrames = ctx.stmtFrames[:n-1]

	if len(frame.temps) > 0 {
		decls := make([]js_ast.Decl, len(frame.temps))
		for i, ref := range frame.temps {
			decls[i] = js_ast.Decl{Binding: js_ast.Binding{Data: &js_ast.BIdentifier{Ref: ref}}}
		}
		local := js_ast.Stmt{Data: &js_ast.SLocal{Kind: js_ast.LocalVar, Decls: decls}}
		*stmts = append([]js_ast.Stmt{local}, *stmts...)
	}
}
