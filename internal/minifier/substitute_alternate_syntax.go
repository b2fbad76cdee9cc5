package minifier

import (
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/traverse"
)

// SubstituteAlternateSyntax is a peephole pass that minimizes code by
// swapping constructs for shorter equivalents: block unwrapping, boolean
// literals as "!0"/"!1", "undefined" as "void 0", and redundant return
// arguments and var initializers dropped.
//
// The pass carries exactly two pieces of state: "changed" is sticky for the
// whole pass and is read by the driver to decide a second application, and
// "inDefineExport" is scoped to a single call expression.
type SubstituteAlternateSyntax struct {
	traverse.NoopVisitor

	options        CompressOptions
	inDefineExport bool
	changed        bool
}

func NewSubstituteAlternateSyntax(options CompressOptions) *SubstituteAlternateSyntax {
	return &SubstituteAlternateSyntax{options: options}
}

func (p *SubstituteAlternateSyntax) Changed() bool {
	return p.changed
}

func (p *SubstituteAlternateSyntax) Build(program *js_ast.AST, symbols js_ast.SymbolMap, scopes *js_ast.Scope) (js_ast.SymbolMap, *js_ast.Scope) {
	p.changed = false
	return traverse.Walk(program, p, symbols, scopes)
}

func (p *SubstituteAlternateSyntax) EnterStatement(stmt *js_ast.Stmt, ctx *traverse.Ctx) {
	p.compressBlock(stmt)
}

// We may fold "void 1" to "void 0", so compress the argument after visiting
func (p *SubstituteAlternateSyntax) ExitReturn(stmt *js_ast.Stmt, ret *js_ast.SReturn, ctx *traverse.Ctx) {
	p.compressReturnStatement(ret, ctx)
}

func (p *SubstituteAlternateSyntax) EnterLocal(stmt *js_ast.Stmt, local *js_ast.SLocal, ctx *traverse.Ctx) {
	for i := range local.Decls {
		p.compressVariableDeclarator(local, &local.Decls[i], ctx)
	}
}

// Set the "inDefineExport" flag if this is a top-level statement of form:
//
//	Object.defineProperty(exports, 'Foo', {
//	  enumerable: true,
//	  get: function() { return Foo_1.Foo; }
//	});
func (p *SubstituteAlternateSyntax) EnterCall(expr *js_ast.Expr, call *js_ast.ECall, ctx *traverse.Ctx) {
	if ctx.ParentIsExpressionStatement() && isObjectDefinePropertyExports(call, ctx) {
		p.inDefineExport = true
	}
}

func (p *SubstituteAlternateSyntax) ExitCall(expr *js_ast.Expr, call *js_ast.ECall, ctx *traverse.Ctx) {
	p.inDefineExport = false
}

func (p *SubstituteAlternateSyntax) EnterExpression(expr *js_ast.Expr, ctx *traverse.Ctx) {
	if !p.compressUndefined(expr, ctx) {
		p.compressBoolean(expr)
	}
}

// Runs on exit so that an "undefined => void 0" rewrite on either operand is
// already visible here
func (p *SubstituteAlternateSyntax) ExitBinary(expr *js_ast.Expr, binary *js_ast.EBinary, ctx *traverse.Ctx) {
	p.compressTypeofUndefined(expr, binary)
}

/* Statements */

// Remove block from single line blocks
// "{ block }" => "block"
func (p *SubstituteAlternateSyntax) compressBlock(stmt *js_ast.Stmt) {
	if block, ok := stmt.Data.(*js_ast.SBlock); ok {
		// Avoid compressing "if (x) { var x = 1 }" to "if (x) var x = 1" due
		// to different semantics according to AnnexB, which lead to different
		// semantics.
		if len(block.Stmts) == 1 && !js_ast.IsDeclaration(block.Stmts[0]) {
			*stmt = block.Stmts[0]
			p.compressBlock(stmt)
			p.changed = true
		}
	}
}

/* Expressions */

// Transforms "undefined" => "void 0"
func (p *SubstituteAlternateSyntax) compressUndefined(expr *js_ast.Expr, ctx *traverse.Ctx) bool {
	if ctx.IsAssignmentTarget(expr) {
		return false
	}
	if !ctx.IsExpressionUndefined(*expr) {
		return false
	}

	// Replacing "void 0" with itself would make the pass report a change on
	// every application and never converge
	if !isVoid0(expr.Data) {
		expr.Data = void0Data()
		p.changed = true
	}
	return true
}

// Transforms boolean expression "true" => "!0", "false" => "!1".
// Enabled by Booleans.
// Do not compress "true" in "Object.defineProperty(exports, 'Foo',
// {enumerable: true, ...})".
func (p *SubstituteAlternateSyntax) compressBoolean(expr *js_ast.Expr) bool {
	boolean, ok := expr.Data.(*js_ast.EBoolean)
	if !ok {
		return false
	}
	if p.options.Booleans && !p.inDefineExport {
		var num float64
		if !boolean.Value {
			num = 1
		}
		expr.Data = &js_ast.EUnary{
			Op:    js_ast.UnOpNot,
			Value: js_ast.Expr{Loc: expr.Loc, Data: &js_ast.ENumber{Value: num}},
		}
		p.changed = true
		return true
	}
	return false
}

// Compress `typeof foo == "undefined"` into `typeof foo > "u"`.
// Enabled by Typeofs.
func (p *SubstituteAlternateSyntax) compressTypeofUndefined(expr *js_ast.Expr, binary *js_ast.EBinary) {
	if !p.options.Typeofs {
		return
	}
	if binary.Op != js_ast.BinOpLooseEq && binary.Op != js_ast.BinOpStrictEq {
		return
	}

	// The operands commute: accept the string literal on either side
	checkString := func(e js_ast.Expr) bool {
		return js_ast.IsStringLiteral(e.Data, "undefined")
	}
	checkTypeofIdent := func(e js_ast.Expr) (*js_ast.EIdentifier, bool) {
		if unary, ok := e.Data.(*js_ast.EUnary); ok && unary.Op == js_ast.UnOpTypeof {
			// Only an identifier reference: "typeof someExpression()" must
			// keep its operand evaluation visible
			if id, ok := unary.Value.Data.(*js_ast.EIdentifier); ok {
				return id, true
			}
		}
		return nil, false
	}

	var id *js_ast.EIdentifier
	var idLoc js_ast.Expr
	if checkString(binary.Left) {
		if found, ok := checkTypeofIdent(binary.Right); ok {
			id, idLoc = found, binary.Right
		}
	} else if checkString(binary.Right) {
		if found, ok := checkTypeofIdent(binary.Left); ok {
			id, idLoc = found, binary.Left
		}
	}
	if id == nil {
		return
	}

	expr.Data = &js_ast.EBinary{
		Op: js_ast.BinOpGt,
		Left: js_ast.Expr{Loc: idLoc.Loc, Data: &js_ast.EUnary{
			Op:    js_ast.UnOpTypeof,
			Value: js_ast.CloneIdentifier(idLoc.Loc, id),
		}},
		Right: js_ast.Expr{Loc: expr.Loc, Data: &js_ast.EString{Value: "u"}},
	}
	p.changed = true
}

// Removes the redundant argument of a return statement
//
//	"return undefined" => "return"
//	"return void 0" => "return"
func (p *SubstituteAlternateSyntax) compressReturnStatement(ret *js_ast.SReturn, ctx *traverse.Ctx) {
	if ret.ValueOrNil.Data == nil {
		return
	}
	// This matches the syntactic forms "undefined" (resolved to the
	// intrinsic) and "void <literal>". "void foo()" does not qualify: the
	// call must run.
	if ctx.IsExpressionUndefined(ret.ValueOrNil) {
		ret.ValueOrNil = js_ast.Expr{}
		p.changed = true
	}
}

// Drops "= undefined" initializers from non-const declarators
func (p *SubstituteAlternateSyntax) compressVariableDeclarator(local *js_ast.SLocal, decl *js_ast.Decl, ctx *traverse.Ctx) {
	if local.Kind == js_ast.LocalConst {
		return
	}
	if decl.ValueOrNil.Data != nil && ctx.IsExpressionUndefined(decl.ValueOrNil) {
		decl.ValueOrNil = js_ast.Expr{}
		p.changed = true
	}
}

/* Utilities */

func isVoid0(data js_ast.E) bool {
	if unary, ok := data.(*js_ast.EUnary); ok && unary.Op == js_ast.UnOpVoid {
		if num, ok := unary.Value.Data.(*js_ast.ENumber); ok {
			return num.Value == 0
		}
	}
	return false
}

func void0Data() js_ast.E {
	return &js_ast.EUnary{
		Op:    js_ast.UnOpVoid,
		Value: js_ast.Expr{Data: &js_ast.ENumber{Value: 0}},
	}
}

// Test for "Object.defineProperty(exports, ...)". This is a tighter check
// than a generic member-access test because we're looking for the static
// "Object.defineProperty" form specifically, not "Object['defineProperty']".
func isObjectDefinePropertyExports(call *js_ast.ECall, ctx *traverse.Ctx) bool {
	if len(call.Args) == 0 || !js_ast.IsIdentifierNamed(ctx.Symbols, call.Args[0].Data, "exports") {
		return false
	}

	dot, ok := call.Target.Data.(*js_ast.EDot)
	if !ok || dot.Name != "defineProperty" {
		return false
	}
	return js_ast.IsIdentifierNamed(ctx.Symbols, dot.Target.Data, "Object")
}
