package traverse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborjs/arbor/internal/js_ast"
)

type recordingVisitor struct {
	NoopVisitor

	events []string
}

func (v *recordingVisitor) EnterStatement(stmt *js_ast.Stmt, ctx *Ctx) {
	v.events = append(v.events, "enter:"+stmtName(stmt))
}

func (v *recordingVisitor) ExitStatement(stmt *js_ast.Stmt, ctx *Ctx) {
	v.events = append(v.events, "exit:"+stmtName(stmt))
}

func (v *recordingVisitor) EnterExpression(expr *js_ast.Expr, ctx *Ctx) {
	v.events = append(v.events, "enterExpr")
}

func (v *recordingVisitor) ExitExpression(expr *js_ast.Expr, ctx *Ctx) {
	v.events = append(v.events, "exitExpr")
}

func stmtName(stmt *js_ast.Stmt) string {
	switch stmt.Data.(type) {
	case *js_ast.SBlock:
		return "block"
	case *js_ast.SExpr:
		return "expr"
	case *js_ast.SReturn:
		return "return"
	case *js_ast.SEmpty:
		return "empty"
	default:
		return "other"
	}
}

func emptySymbols() js_ast.SymbolMap {
	return js_ast.NewSymbolMap(1)
}

func numberExpr(value float64) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.ENumber{Value: value}}
}

func TestEnterAndExitFireInMatchedPairs(t *testing.T) {
	program := &js_ast.AST{Stmts: []js_ast.Stmt{
		{Data: &js_ast.SBlock{Stmts: []js_ast.Stmt{
			{Data: &js_ast.SExpr{Value: numberExpr(1)}},
		}}},
	}}

	visitor := &recordingVisitor{}
	Walk(program, visitor, emptySymbols(), nil)

	assert.Equal(t, []string{
		"enter:block",
		"enter:expr",
		"enterExpr",
		"exitExpr",
		"exit:expr",
		"exit:block",
	}, visitor.events)
}

// Child order for a call expression is the callee followed by the arguments
// in index order
func TestCallChildOrder(t *testing.T) {
	var order []float64
	collector := &leafCollector{order: &order}
	program := &js_ast.AST{Stmts: []js_ast.Stmt{
		{Data: &js_ast.SExpr{Value: js_ast.Expr{Data: &js_ast.ECall{
			Target: numberExpr(0),
			Args:   []js_ast.Expr{numberExpr(1), numberExpr(2)},
		}}}},
	}}

	Walk(program, collector, emptySymbols(), nil)
	assert.Equal(t, []float64{0, 1, 2}, order)
}

type leafCollector struct {
	NoopVisitor

	order *[]float64
}

func (v *leafCollector) EnterExpression(expr *js_ast.Expr, ctx *Ctx) {
	if num, ok := expr.Data.(*js_ast.ENumber); ok {
		*v.order = append(*v.order, num.Value)
	}
}

// A replacement made during enter must be observed by descent: the walker
// descends into the replacement, not the original
type replacingVisitor struct {
	NoopVisitor

	visitedAfterReplace []float64
}

func (v *replacingVisitor) EnterStatement(stmt *js_ast.Stmt, ctx *Ctx) {
	if _, ok := stmt.Data.(*js_ast.SDebugger); ok {
		stmt.Data = &js_ast.SExpr{Value: numberExpr(42)}
	}
}

func (v *replacingVisitor) EnterExpression(expr *js_ast.Expr, ctx *Ctx) {
	if num, ok := expr.Data.(*js_ast.ENumber); ok {
		v.visitedAfterReplace = append(v.visitedAfterReplace, num.Value)
	}
}

func TestReplacementIsObservedByDescent(t *testing.T) {
	program := &js_ast.AST{Stmts: []js_ast.Stmt{{Data: &js_ast.SDebugger{}}}}

	visitor := &replacingVisitor{}
	Walk(program, visitor, emptySymbols(), nil)

	require.Equal(t, []float64{42}, visitor.visitedAfterReplace)
	_, ok := program.Stmts[0].Data.(*js_ast.SExpr)
	assert.True(t, ok)
}

type ancestorChecker struct {
	NoopVisitor

	t           *testing.T
	sawCall     bool
	parentOfArg string
}

func (v *ancestorChecker) EnterExpression(expr *js_ast.Expr, ctx *Ctx) {
	if _, ok := expr.Data.(*js_ast.ENumber); ok {
		parent := ctx.Parent()
		if parent.Expr != nil {
			if _, ok := parent.Expr.Data.(*js_ast.ECall); ok {
				v.parentOfArg = "call"
			}
		}
	}
	if _, ok := expr.Data.(*js_ast.ECall); ok {
		v.sawCall = true
		assert.True(v.t, ctx.ParentIsExpressionStatement())
	}
}

func TestAncestorStack(t *testing.T) {
	program := &js_ast.AST{Stmts: []js_ast.Stmt{
		{Data: &js_ast.SExpr{Value: js_ast.Expr{Data: &js_ast.ECall{
			Target: js_ast.Expr{Data: &js_ast.EMissing{}},
			Args:   []js_ast.Expr{numberExpr(1)},
		}}}},
	}}

	visitor := &ancestorChecker{t: t}
	Walk(program, visitor, emptySymbols(), nil)

	assert.True(t, visitor.sawCall)
	assert.Equal(t, "call", visitor.parentOfArg)
}

func TestWalkReturnsTables(t *testing.T) {
	symbols := emptySymbols()
	scope := &js_ast.Scope{Kind: js_ast.ScopeEntry}
	program := &js_ast.AST{}

	gotSymbols, gotScope := Walk(program, NoopVisitor{}, symbols, scope)

	assert.Equal(t, scope, gotScope)
	assert.Len(t, gotSymbols.SymbolsForSource, 1)
}

func TestNewSymbolUpdatesTables(t *testing.T) {
	symbols := emptySymbols()
	scope := &js_ast.Scope{Kind: js_ast.ScopeEntry}
	program := &js_ast.AST{Stmts: []js_ast.Stmt{{Data: &js_ast.SEmpty{}}}}

	creator := &symbolCreator{}
	gotSymbols, gotScope := Walk(program, creator, symbols, scope)

	require.Len(t, gotSymbols.SymbolsForSource[0], 1)
	symbol := gotSymbols.SymbolsForSource[0][0]
	assert.Equal(t, "temp", symbol.OriginalName)
	assert.Equal(t, js_ast.SymbolGenerated, symbol.Kind)
	assert.Equal(t, js_ast.InvalidRef, symbol.Link)
	require.Len(t, gotScope.Generated, 1)
}

type symbolCreator struct {
	NoopVisitor
}

func (v *symbolCreator) EnterStatement(stmt *js_ast.Stmt, ctx *Ctx) {
	ctx.NewSymbol(js_ast.SymbolGenerated, "temp")
}

func TestIsExpressionUndefined(t *testing.T) {
	symbols := emptySymbols()
	symbols.SymbolsForSource[0] = []js_ast.Symbol{
		{OriginalName: "undefined", Kind: js_ast.SymbolUnbound, Link: js_ast.InvalidRef},
		{OriginalName: "undefined", Kind: js_ast.SymbolHoisted, Link: js_ast.InvalidRef},
	}
	ctx := &Ctx{Symbols: symbols}

	unresolved := js_ast.Expr{Data: &js_ast.EIdentifier{Ref: js_ast.Ref{InnerIndex: 0}}}
	shadowed := js_ast.Expr{Data: &js_ast.EIdentifier{Ref: js_ast.Ref{InnerIndex: 1}}}

	assert.True(t, ctx.IsExpressionUndefined(unresolved))
	assert.False(t, ctx.IsExpressionUndefined(shadowed))
	assert.True(t, ctx.IsExpressionUndefined(js_ast.Expr{Data: &js_ast.EUndefined{}}))
	assert.True(t, ctx.IsExpressionUndefined(js_ast.Expr{Data: &js_ast.EUnary{
		Op:    js_ast.UnOpVoid,
		Value: numberExpr(0),
	}}))
	assert.False(t, ctx.IsExpressionUndefined(js_ast.Expr{Data: &js_ast.EUnary{
		Op:    js_ast.UnOpVoid,
		Value: js_ast.Expr{Data: &js_ast.ECall{}},
	}}))
}
