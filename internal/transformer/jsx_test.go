package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborjs/arbor/internal/js_ast"
)

func jsxProgram(stmts ...js_ast.Stmt) *js_ast.AST {
	return &js_ast.AST{
		SourceType: js_ast.SourceType{Kind: js_ast.SourceModule, UsesJSX: true},
		Stmts:      stmts,
	}
}

func strExpr(value string) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EString{Value: value}}
}

func jsxElement(tag js_ast.Expr, properties []js_ast.Property, children ...js_ast.Expr) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EJSXElement{
		TagOrNil:   tag,
		Properties: properties,
		Children:   children,
	}}
}

func TestJsxClassicRuntime(t *testing.T) {
	// <div id="x">{child}</div> => React.createElement("div", { id: "x" }, child)
	f := newFixture()
	child := f.declare(js_ast.SymbolHoisted, "child")

	element := jsxElement(strExpr("div"),
		[]js_ast.Property{{Key: strExpr("id"), ValueOrNil: strExpr("x")}},
		f.ident(child))
	program := jsxProgram(exprStmt(element))

	ret := f.transform(t, program, TransformOptions{})
	require.Empty(t, ret.Errors)

	call := program.Stmts[0].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
	factory := call.Target.Data.(*js_ast.EDot)
	assert.Equal(t, "createElement", factory.Name)
	assert.Equal(t, "React", f.name(factory.Target.Data.(*js_ast.EIdentifier).Ref))

	require.Len(t, call.Args, 3)
	assert.Equal(t, "div", call.Args[0].Data.(*js_ast.EString).Value)
	props := call.Args[1].Data.(*js_ast.EObject)
	require.Len(t, props.Properties, 1)
	_, childIsIdent := call.Args[2].Data.(*js_ast.EIdentifier)
	assert.True(t, childIsIdent)
}

func TestJsxClassicFragmentAndEmptyProps(t *testing.T) {
	// <>text</> => React.createElement(React.Fragment, null, "text")
	f := newFixture()
	element := jsxElement(js_ast.Expr{}, nil, strExpr("text"))
	program := jsxProgram(exprStmt(element))

	ret := f.transform(t, program, TransformOptions{})
	require.Empty(t, ret.Errors)

	call := program.Stmts[0].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
	fragment := call.Args[0].Data.(*js_ast.EDot)
	assert.Equal(t, "Fragment", fragment.Name)
	_, isNull := call.Args[1].Data.(*js_ast.ENull)
	assert.True(t, isNull)
}

func TestJsxCustomPragma(t *testing.T) {
	f := newFixture()
	element := jsxElement(strExpr("div"), nil)
	program := jsxProgram(exprStmt(element))

	ret := f.transform(t, program, TransformOptions{
		Jsx: JsxOptions{Pragma: "h", PragmaFrag: "Frag"},
	})
	require.Empty(t, ret.Errors)

	call := program.Stmts[0].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
	target := call.Target.Data.(*js_ast.EIdentifier)
	assert.Equal(t, "h", f.name(target.Ref))
}

func TestJsxPragmaComments(t *testing.T) {
	// /* @jsx h */ overrides the factory option before descent
	f := newFixture()
	element := jsxElement(strExpr("div"), nil)
	program := jsxProgram(exprStmt(element))
	program.Comments = []js_ast.Comment{{Text: "@jsx h"}}

	ret := f.transform(t, program, TransformOptions{})
	require.Empty(t, ret.Errors)

	call := program.Stmts[0].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
	target := call.Target.Data.(*js_ast.EIdentifier)
	assert.Equal(t, "h", f.name(target.Ref))
}

func TestJsxAutomaticRuntime(t *testing.T) {
	t.Run("single child uses jsx with a children prop", func(t *testing.T) {
		f := newFixture()
		child := f.declare(js_ast.SymbolHoisted, "child")
		element := jsxElement(strExpr("div"), nil, f.ident(child))
		program := jsxProgram(exprStmt(element))

		ret := f.transform(t, program, TransformOptions{
			Jsx: JsxOptions{Runtime: JsxRuntimeAutomatic},
		})
		require.Empty(t, ret.Errors)

		// The runtime import is injected at the top
		imp, ok := program.Stmts[0].Data.(*js_ast.SImport)
		require.True(t, ok, "expected the jsx-runtime import, got %T", program.Stmts[0].Data)
		assert.Equal(t, "react/jsx-runtime", program.ImportRecords[imp.ImportRecordIndex].Path.Text)
		require.NotNil(t, imp.Items)
		assert.Equal(t, "jsx", (*imp.Items)[0].Alias)

		call := program.Stmts[1].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
		assert.Equal(t, "jsx", f.name(call.Target.Data.(*js_ast.EIdentifier).Ref))
		require.Len(t, call.Args, 2)
		props := call.Args[1].Data.(*js_ast.EObject)
		require.Len(t, props.Properties, 1)
		assert.Equal(t, "children", props.Properties[0].Key.Data.(*js_ast.EString).Value)
	})

	t.Run("multiple children use jsxs with an array", func(t *testing.T) {
		f := newFixture()
		element := jsxElement(strExpr("ul"), nil, strExpr("a"), strExpr("b"))
		program := jsxProgram(exprStmt(element))

		ret := f.transform(t, program, TransformOptions{
			Jsx: JsxOptions{Runtime: JsxRuntimeAutomatic},
		})
		require.Empty(t, ret.Errors)

		call := program.Stmts[1].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
		assert.Equal(t, "jsxs", f.name(call.Target.Data.(*js_ast.EIdentifier).Ref))
		props := call.Args[1].Data.(*js_ast.EObject)
		_, isArray := props.Properties[0].ValueOrNil.Data.(*js_ast.EArray)
		assert.True(t, isArray)
	})

	t.Run("the key attribute moves to the third argument", func(t *testing.T) {
		f := newFixture()
		element := jsxElement(strExpr("li"), []js_ast.Property{
			{Key: strExpr("key"), ValueOrNil: strExpr("k1")},
			{Key: strExpr("id"), ValueOrNil: strExpr("x")},
		})
		program := jsxProgram(exprStmt(element))

		ret := f.transform(t, program, TransformOptions{
			Jsx: JsxOptions{Runtime: JsxRuntimeAutomatic},
		})
		require.Empty(t, ret.Errors)

		call := program.Stmts[1].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
		require.Len(t, call.Args, 3)
		assert.Equal(t, "k1", call.Args[2].Data.(*js_ast.EString).Value)
		props := call.Args[1].Data.(*js_ast.EObject)
		require.Len(t, props.Properties, 1)
		assert.Equal(t, "id", props.Properties[0].Key.Data.(*js_ast.EString).Value)
	})

	t.Run("development mode uses jsxDEV from the dev runtime", func(t *testing.T) {
		f := newFixture()
		element := jsxElement(strExpr("div"), nil)
		program := jsxProgram(exprStmt(element))

		ret := f.transform(t, program, TransformOptions{
			Jsx: JsxOptions{Runtime: JsxRuntimeAutomatic, Development: true},
		})
		require.Empty(t, ret.Errors)

		imp := program.Stmts[0].Data.(*js_ast.SImport)
		assert.Equal(t, "react/jsx-dev-runtime", program.ImportRecords[imp.ImportRecordIndex].Path.Text)

		call := program.Stmts[1].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
		assert.Equal(t, "jsxDEV", f.name(call.Target.Data.(*js_ast.EIdentifier).Ref))
		require.Len(t, call.Args, 4)
	})

	t.Run("import source is configurable", func(t *testing.T) {
		f := newFixture()
		element := jsxElement(strExpr("div"), nil)
		program := jsxProgram(exprStmt(element))

		ret := f.transform(t, program, TransformOptions{
			Jsx: JsxOptions{Runtime: JsxRuntimeAutomatic, ImportSource: "preact"},
		})
		require.Empty(t, ret.Errors)

		imp := program.Stmts[0].Data.(*js_ast.SImport)
		assert.Equal(t, "preact/jsx-runtime", program.ImportRecords[imp.ImportRecordIndex].Path.Text)
	})
}

func TestJsxNestedElementsLowerBottomUp(t *testing.T) {
	// <a><b/></a>: the inner element is already a call when the outer lowers
	f := newFixture()
	inner := jsxElement(strExpr("b"), nil)
	outer := jsxElement(strExpr("a"), nil, inner)
	program := jsxProgram(exprStmt(outer))

	ret := f.transform(t, program, TransformOptions{})
	require.Empty(t, ret.Errors)

	call := program.Stmts[0].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
	require.Len(t, call.Args, 3)
	_, childIsCall := call.Args[2].Data.(*js_ast.ECall)
	assert.True(t, childIsCall)
}
