package transformer

import (
	"github.com/arborjs/arbor/internal/compat"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
	"github.com/arborjs/arbor/internal/traverse"
)

// Transformer lowers modern ECMAScript, JSX and TypeScript syntax to a
// configured target level in a single traversal of the program. All passes
// share one walk: enter hooks for a node fire in the declared pass order
// before descent, exit hooks fire in reverse order after, so later passes
// observe earlier passes' output on the same node without a re-walk.
type Transformer struct {
	ctx     *TransformCtx
	options TransformOptions
}

type TransformerReturn struct {
	Errors  []logger.Msg
	Symbols js_ast.SymbolMap
	Scopes  *js_ast.Scope
}

func NewTransformer(log logger.Log, source *logger.Source, options TransformOptions) (*Transformer, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}

	unsupported, err := options.Env.unsupportedFeatures()
	if err != nil {
		return nil, err
	}

	helperOpts := options.HelperLoader
	if helperOpts.ModuleName == "" {
		helperOpts.ModuleName = defaultHelperModuleName
	}

	return &Transformer{
		options: options,
		ctx: &TransformCtx{
			Log:         log,
			Source:      source,
			SourcePath:  source.PrettyPath,
			unsupported: unsupported,
			assumptions: options.Assumptions,
			module:      options.Module,
			helperOpts:  helperOpts,
			helperRefs:  make(map[string]js_ast.Ref),
		},
	}, nil
}

// BuildWithSymbolsAndScopes runs the pipeline over the program. The symbol
// and scope tables move in by value and are returned together with the
// collected diagnostics; the program is mutated in place.
func (t *Transformer) BuildWithSymbolsAndScopes(
	symbols js_ast.SymbolMap,
	scopes *js_ast.Scope,
	program *js_ast.AST,
) TransformerReturn {
	ctx := t.ctx
	ctx.SourceType = program.SourceType

	// NOTE: all hooks must forward to these passes in field order; exit hooks
	// forward in reverse. A disabled pass is nil and absent from the walk.
	impl := &transformerImpl{ctx: ctx}
	if program.SourceType.IsTypeScript {
		impl.ts = newTypeScriptPass(ctx, t.options.TypeScript)
	}
	if program.SourceType.UsesJSX {
		impl.jsx = newJsxPass(ctx, t.options.Jsx)
	}
	if ctx.unsupported.Has(compat.ClassField | compat.ClassStaticField | compat.ClassStaticBlocks) {
		impl.es2022 = &es2022Pass{ctx: ctx}
	}
	if ctx.unsupported.Has(compat.LogicalAssignment) {
		impl.es2021 = &es2021Pass{ctx: ctx}
	}
	if ctx.unsupported.Has(compat.NullishCoalescing | compat.OptionalChain | compat.BigInt | compat.ImportMeta) {
		impl.es2020 = &es2020Pass{ctx: ctx}
	}
	if ctx.unsupported.Has(compat.OptionalCatchBinding) {
		impl.es2019 = &es2019Pass{ctx: ctx}
	}
	if ctx.unsupported.Has(compat.ObjectRestSpread | compat.ForAwait | compat.AsyncGenerator) {
		impl.es2018 = &es2018Pass{ctx: ctx}
	}
	if ctx.unsupported.Has(compat.AsyncAwait) {
		impl.es2017 = &es2017Pass{ctx: ctx}
	}
	if ctx.unsupported.Has(compat.ExponentOperator) {
		impl.es2016 = &es2016Pass{ctx: ctx}
	}
	if ctx.unsupported.Has(compat.RegexpDotAllFlag | compat.RegexpLookbehindAssertions |
		compat.RegexpMatchIndices | compat.RegexpNamedCaptureGroups |
		compat.RegexpSetNotation | compat.RegexpStickyAndUnicodeFlags) {
		impl.regexp = &regexpPass{ctx: ctx}
	}
	impl.common = &commonPass{ctx: ctx}

	symbols, scopes = traverse.Walk(program, impl, symbols, scopes)

	return TransformerReturn{
		Errors:  ctx.Log.Done(),
		Symbols: symbols,
		Scopes:  scopes,
	}
}

type transformerImpl struct {
	traverse.NoopVisitor

	ctx *TransformCtx

	ts     *typeScriptPass
	jsx    *jsxPass
	es2022 *es2022Pass
	es2021 *es2021Pass
	es2020 *es2020Pass
	es2019 *es2019Pass
	es2018 *es2018Pass
	es2017 *es2017Pass
	es2016 *es2016Pass
	regexp *regexpPass
	common *commonPass
}

// A statement that was fully removed by an earlier pass's enter hook. Later
// passes' enter hooks for it are skipped.
func stmtWasRemoved(stmt *js_ast.Stmt) bool {
	switch stmt.Data.(type) {
	case *js_ast.SEmpty, *js_ast.STypeScript:
		return true
	}
	return false
}

func (t *transformerImpl) EnterProgram(program *js_ast.AST, tctx *traverse.Ctx) {
	if t.jsx != nil {
		t.jsx.enterProgram(program, tctx)
	}
}

func (t *transformerImpl) ExitProgram(program *js_ast.AST, tctx *traverse.Ctx) {
	t.common.exitProgram(program, tctx)
	if t.jsx != nil {
		t.jsx.exitProgram(program, tctx)
	}
}

func (t *transformerImpl) EnterStatements(stmts *[]js_ast.Stmt, tctx *traverse.Ctx) {
	t.ctx.pushStmtFrame(stmts)
	if t.ts != nil {
		t.ts.enterStatements(stmts, tctx)
	}
	if t.es2022 != nil {
		t.es2022.enterStatements(stmts, tctx)
	}
}

func (t *transformerImpl) ExitStatements(stmts *[]js_ast.Stmt, tctx *traverse.Ctx) {
	if t.es2018 != nil {
		t.es2018.exitStatements(stmts, tctx)
	}
	t.ctx.popStmtFrame(stmts)
}

func (t *transformerImpl) EnterStatement(stmt *js_ast.Stmt, tctx *traverse.Ctx) {
	if t.ts != nil {
		t.ts.enterStatement(stmt, tctx)
		if stmtWasRemoved(stmt) {
			return
		}
	}
}

func (t *transformerImpl) ExitStatement(stmt *js_ast.Stmt, tctx *traverse.Ctx) {
	if t.es2018 != nil {
		t.es2018.exitStatement(stmt, tctx)
	}
}

func (t *transformerImpl) EnterExpression(expr *js_ast.Expr, tctx *traverse.Ctx) {
	if t.es2021 != nil {
		t.es2021.enterExpression(expr, tctx)
	}
	if t.regexp != nil {
		t.regexp.enterExpression(expr, tctx)
	}
}

func (t *transformerImpl) ExitExpression(expr *js_ast.Expr, tctx *traverse.Ctx) {
	if t.es2016 != nil {
		t.es2016.exitExpression(expr, tctx)
	}
	if t.es2017 != nil {
		t.es2017.exitExpression(expr, tctx)
	}
	if t.es2018 != nil {
		t.es2018.exitExpression(expr, tctx)
	}
	if t.es2020 != nil {
		t.es2020.exitExpression(expr, tctx)
	}
	if t.es2022 != nil {
		t.es2022.exitExpression(expr, tctx)
	}
	if t.jsx != nil {
		t.jsx.exitExpression(expr, tctx)
	}
}

func (t *transformerImpl) EnterFunction(fn *js_ast.Fn, tctx *traverse.Ctx) {
	t.ctx.pushAsyncLowering(t.asyncKindForFn(fn))
}

func (t *transformerImpl) ExitFunction(fn *js_ast.Fn, tctx *traverse.Ctx) {
	if t.es2017 != nil {
		t.es2017.exitFunction(fn, tctx)
	}
	if t.es2018 != nil {
		t.es2018.exitFunction(fn, tctx)
	}
	t.ctx.popAsyncLowering()
}

func (t *transformerImpl) EnterArrow(expr *js_ast.Expr, arrow *js_ast.EArrow, tctx *traverse.Ctx) {
	kind := asyncNotLowered
	if arrow.IsAsync && t.ctx.IsUnsupported(compat.AsyncAwait) {
		kind = asyncLoweredToGenerator
	}
	t.ctx.pushAsyncLowering(kind)
}

func (t *transformerImpl) ExitArrow(expr *js_ast.Expr, arrow *js_ast.EArrow, tctx *traverse.Ctx) {
	if t.es2017 != nil {
		t.es2017.exitArrow(expr, arrow, tctx)
	}
	t.ctx.popAsyncLowering()

	// Some passes may have pushed statements ahead of the original expression
	// of an expression-bodied arrow. Convert to block-bodied form so the
	// invariant holds: an expression-bodied arrow has exactly one statement,
	// a trailing return of its expression.
	if arrow, ok := expr.Data.(*js_ast.EArrow); ok && arrow.PreferExpr && len(arrow.Body.Block.Stmts) > 1 {
		last := arrow.Body.Block.Stmts[len(arrow.Body.Block.Stmts)-1]
		if _, ok := last.Data.(*js_ast.SReturn); !ok {
			panic("Internal error: the last statement in an expression-bodied arrow should always be a return statement")
		}
		arrow.PreferExpr = false
	}
}

func (t *transformerImpl) EnterClass(class *js_ast.Class, tctx *traverse.Ctx) {
	if t.ts != nil {
		t.ts.enterClass(class, tctx)
	}
}

func (t *transformerImpl) EnterCatch(catch *js_ast.Catch, tctx *traverse.Ctx) {
	if t.es2019 != nil {
		t.es2019.enterCatch(catch, tctx)
	}
}

func (t *transformerImpl) asyncKindForFn(fn *js_ast.Fn) asyncLoweringKind {
	if fn.IsAsync && !fn.IsGenerator && t.ctx.IsUnsupported(compat.AsyncAwait) {
		return asyncLoweredToGenerator
	}
	return asyncNotLowered
}
