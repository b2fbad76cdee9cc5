package js_ast

import (
	"github.com/arborjs/arbor/internal/logger"
)

func Assign(a Expr, b Expr) Expr {
	return Expr{Loc: a.Loc, Data: &EBinary{Op: BinOpAssign, Left: a, Right: b}}
}

func AssignStmt(a Expr, b Expr) Stmt {
	return Stmt{Loc: a.Loc, Data: &SExpr{Value: Assign(a, b)}}
}

func Not(expr Expr) Expr {
	return Expr{Loc: expr.Loc, Data: &EUnary{Op: UnOpNot, Value: expr}}
}

func JoinWithComma(a Expr, b Expr) Expr {
	if a.Data == nil {
		return b
	}
	if b.Data == nil {
		return a
	}
	return Expr{Loc: a.Loc, Data: &EBinary{Op: BinOpComma, Left: a, Right: b}}
}

func JoinAllWithComma(all []Expr) (result Expr) {
	for _, value := range all {
		result = JoinWithComma(result, value)
	}
	return
}

// IsDeclaration distinguishes statements that declare a binding from plain
// statements. Unwrapping a block around a declaration changes scoping (and
// AnnexB function-in-block hoisting), so passes must check this first.
func IsDeclaration(stmt Stmt) bool {
	switch stmt.Data.(type) {
	case *SFunction, *SClass, *SEnum, *SNamespace, *SImport, *SLocal,
		*SExportClause, *SExportFrom, *SExportDefault, *SExportStar, *SExportEquals:
		return true
	default:
		return false
	}
}

func IsPrimitiveLiteral(data E) bool {
	switch data.(type) {
	case *ENull, *EUndefined, *EBoolean, *ENumber, *EBigInt, *EString:
		return true
	}
	return false
}

// "void <literal>" is known to evaluate to undefined without side effects.
// Note that "void foo()" is deliberately excluded: the operand must run.
func IsVoidOfLiteral(data E) bool {
	if unary, ok := data.(*EUnary); ok && unary.Op == UnOpVoid {
		return IsPrimitiveLiteral(unary.Value.Data)
	}
	return false
}

func IsStringLiteral(data E, value string) bool {
	str, ok := data.(*EString)
	return ok && str.Value == value
}

func IsOptionalChain(value Expr) bool {
	switch e := value.Data.(type) {
	case *EDot:
		return e.OptionalChain != OptionalChainNone
	case *EIndex:
		return e.OptionalChain != OptionalChainNone
	case *ECall:
		return e.OptionalChain != OptionalChainNone
	}
	return false
}

// IsIdentifierNamed reports whether this expression is a reference to the
// given name. Callers that care about shadowing must also consult the symbol
// table; the name alone never decides intrinsic-ness.
func IsIdentifierNamed(symbols SymbolMap, data E, name string) bool {
	if id, ok := data.(*EIdentifier); ok {
		return symbols.Get(FollowSymbols(symbols, id.Ref)).OriginalName == name
	}
	return false
}

// Statements inside an expression-bodied arrow have an invariant shape: a
// single trailing return of the expression. ExprFromSingleReturn recovers the
// expression form.
func ExprFromSingleReturn(stmts []Stmt) (Expr, bool) {
	if len(stmts) == 1 {
		if ret, ok := stmts[0].Data.(*SReturn); ok && ret.ValueOrNil.Data != nil {
			return ret.ValueOrNil, true
		}
	}
	return Expr{}, false
}

// ExtractSpreads splits call or array items into the longest non-spread
// prefix and the rest. No pass in the pipeline calls it.
func ExtractSpreads(items []Expr) (prefix []Expr, rest []Expr) {
	for i, item := range items {
		if _, ok := item.Data.(*ESpread); ok {
			return items[:i], items[i:]
		}
	}
	return items, nil
}

// CloneIdentifier makes a fresh reference node for the same symbol. The use
// count estimate must be bumped by the caller via the traversal context.
func CloneIdentifier(loc logger.Loc, id *EIdentifier) Expr {
	return Expr{Loc: loc, Data: &EIdentifier{Ref: id.Ref}}
}
