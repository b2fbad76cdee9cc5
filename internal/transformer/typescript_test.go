package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborjs/arbor/internal/ast"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
)

func tsProgram(stmts ...js_ast.Stmt) *js_ast.AST {
	return &js_ast.AST{
		SourceType: js_ast.SourceType{Kind: js_ast.SourceModule, IsTypeScript: true},
		Stmts:      stmts,
	}
}

func TestEnumLowering(t *testing.T) {
	// enum Foo { A, B = 5, C = "x" }
	f := newFixture()
	fooRef := f.declare(js_ast.SymbolTSEnum, "Foo")
	argRef := f.declare(js_ast.SymbolHoisted, "Foo")

	program := tsProgram(js_ast.Stmt{Data: &js_ast.SEnum{
		Name: js_ast.LocRef{Ref: fooRef},
		Arg:  argRef,
		Values: []js_ast.EnumValue{
			{Name: "A"},
			{Name: "B", ValueOrNil: numberExpr(5)},
			{Name: "C", ValueOrNil: js_ast.Expr{Data: &js_ast.EString{Value: "x"}}},
		},
	}})

	ret := f.transform(t, program, TransformOptions{})
	require.Empty(t, ret.Errors)

	local, ok := program.Stmts[0].Data.(*js_ast.SLocal)
	require.True(t, ok, "expected var, got %T", program.Stmts[0].Data)
	assert.Equal(t, js_ast.LocalVar, local.Kind)

	call := local.Decls[0].ValueOrNil.Data.(*js_ast.ECall)
	arrow := call.Target.Data.(*js_ast.EArrow)

	// Three member statements plus the trailing return
	require.Len(t, arrow.Body.Block.Stmts, 4)

	// "Foo[Foo['A'] = 0] = 'A'" has the reverse mapping...
	first := arrow.Body.Block.Stmts[0].Data.(*js_ast.SExpr).Value.Data.(*js_ast.EBinary)
	reverse := first.Left.Data.(*js_ast.EIndex)
	memberAssign := reverse.Index.Data.(*js_ast.EBinary)
	assert.Equal(t, float64(0), memberAssign.Right.Data.(*js_ast.ENumber).Value)

	second := arrow.Body.Block.Stmts[1].Data.(*js_ast.SExpr).Value.Data.(*js_ast.EBinary)
	secondAssign := second.Left.Data.(*js_ast.EIndex).Index.Data.(*js_ast.EBinary)
	assert.Equal(t, float64(5), secondAssign.Right.Data.(*js_ast.ENumber).Value)

	// ...while the string member "C" assigns forward only
	third := arrow.Body.Block.Stmts[2].Data.(*js_ast.SExpr).Value.Data.(*js_ast.EBinary)
	_, thirdIsString := third.Right.Data.(*js_ast.EString)
	assert.True(t, thirdIsString)

	// "(Foo || {})" seeds repeated declarations from the existing object
	seed := call.Args[0].Data.(*js_ast.EBinary)
	assert.Equal(t, js_ast.BinOpLogicalOr, seed.Op)
}

func TestEnumAutoIncrementAfterComputedMember(t *testing.T) {
	f := newFixture()
	fooRef := f.declare(js_ast.SymbolTSEnum, "Foo")
	argRef := f.declare(js_ast.SymbolHoisted, "Foo")
	external := f.declare(js_ast.SymbolHoisted, "external")

	program := tsProgram(js_ast.Stmt{Data: &js_ast.SEnum{
		Name: js_ast.LocRef{Ref: fooRef},
		Arg:  argRef,
		Values: []js_ast.EnumValue{
			{Name: "A", ValueOrNil: f.ident(external)},
			{Name: "B"}, // cannot be auto-numbered after a computed member
		},
	}})

	ret := f.transform(t, program, TransformOptions{})
	require.Len(t, ret.Errors, 1)
	assert.Contains(t, ret.Errors[0].Data.Text, "initializer")
}

func TestNamespaceLowering(t *testing.T) {
	// namespace A { export function f() {} }
	f := newFixture()
	nsRef := f.declare(js_ast.SymbolTSNamespace, "A")
	argRef := f.declare(js_ast.SymbolHoisted, "A")
	fnRef := f.declare(js_ast.SymbolHoistedFunction, "f")

	program := tsProgram(js_ast.Stmt{Data: &js_ast.SNamespace{
		Name: js_ast.LocRef{Ref: nsRef},
		Arg:  argRef,
		Stmts: []js_ast.Stmt{{Data: &js_ast.SFunction{
			IsExport: true,
			Fn: js_ast.Fn{
				Name:         &js_ast.LocRef{Ref: fnRef},
				ArgumentsRef: js_ast.InvalidRef,
			},
		}}},
	}})

	ret := f.transform(t, program, TransformOptions{})
	require.Empty(t, ret.Errors)
	require.Len(t, program.Stmts, 2)

	// "var A;"
	local := program.Stmts[0].Data.(*js_ast.SLocal)
	assert.Nil(t, local.Decls[0].ValueOrNil.Data)

	// "((A) => { function f() {} A.f = f; })(A || (A = {}));"
	call := program.Stmts[1].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
	arrow := call.Target.Data.(*js_ast.EArrow)
	require.Len(t, arrow.Body.Block.Stmts, 2)

	fn := arrow.Body.Block.Stmts[0].Data.(*js_ast.SFunction)
	assert.False(t, fn.IsExport)

	assign := arrow.Body.Block.Stmts[1].Data.(*js_ast.SExpr).Value.Data.(*js_ast.EBinary)
	dot := assign.Left.Data.(*js_ast.EDot)
	assert.Equal(t, "f", dot.Name)

	seed := call.Args[0].Data.(*js_ast.EBinary)
	assert.Equal(t, js_ast.BinOpLogicalOr, seed.Op)
	_, seedsAssignment := seed.Right.Data.(*js_ast.EBinary)
	assert.True(t, seedsAssignment)
}

func TestExportEquals(t *testing.T) {
	t.Run("commonjs lowers to module.exports", func(t *testing.T) {
		f := newFixture()
		x := f.declare(js_ast.SymbolHoisted, "x")
		program := tsProgram(js_ast.Stmt{Data: &js_ast.SExportEquals{Value: f.ident(x)}})

		ret := f.transform(t, program, TransformOptions{Module: ModuleCommonJS})
		require.Empty(t, ret.Errors)

		assign := program.Stmts[0].Data.(*js_ast.SExpr).Value.Data.(*js_ast.EBinary)
		dot := assign.Left.Data.(*js_ast.EDot)
		assert.Equal(t, "exports", dot.Name)
		assert.Equal(t, "module", f.name(dot.Target.Data.(*js_ast.EIdentifier).Ref))
	})

	t.Run("esm reports and leaves an inert node", func(t *testing.T) {
		f := newFixture()
		x := f.declare(js_ast.SymbolHoisted, "x")
		program := tsProgram(js_ast.Stmt{Data: &js_ast.SExportEquals{Value: f.ident(x)}})

		ret := f.transform(t, program, TransformOptions{Module: ModuleESModule})
		require.Len(t, ret.Errors, 1)
		_, isInert := program.Stmts[0].Data.(*js_ast.STypeScript)
		assert.True(t, isInert)
	})
}

func TestImportElision(t *testing.T) {
	makeImport := func(f *fixture, used uint32) (*js_ast.AST, js_ast.Ref) {
		ref := f.declare(js_ast.SymbolImport, "T")
		f.symbols.Get(ref).UseCountEstimate = used
		items := []js_ast.ClauseItem{{Alias: "T", OriginalName: "T", Name: js_ast.LocRef{Ref: ref}}}
		nsRef := f.declare(js_ast.SymbolImport, "ns")
		program := tsProgram(js_ast.Stmt{Data: &js_ast.SImport{
			Items:        &items,
			NamespaceRef: nsRef,
		}})
		program.ImportRecords = []ast.ImportRecord{{Path: logger.Path{Text: "./types"}}}
		return program, ref
	}

	t.Run("an unused import is elided", func(t *testing.T) {
		f := newFixture()
		program, _ := makeImport(f, 0)
		ret := f.transform(t, program, TransformOptions{})
		require.Empty(t, ret.Errors)
		_, elided := program.Stmts[0].Data.(*js_ast.STypeScript)
		assert.True(t, elided)
	})

	t.Run("a used import is kept", func(t *testing.T) {
		f := newFixture()
		program, _ := makeImport(f, 1)
		ret := f.transform(t, program, TransformOptions{})
		require.Empty(t, ret.Errors)
		_, kept := program.Stmts[0].Data.(*js_ast.SImport)
		assert.True(t, kept)
	})

	t.Run("OnlyRemoveTypeImports keeps unused value imports", func(t *testing.T) {
		f := newFixture()
		program, _ := makeImport(f, 0)
		ret := f.transform(t, program, TransformOptions{
			TypeScript: TypeScriptOptions{OnlyRemoveTypeImports: true},
		})
		require.Empty(t, ret.Errors)
		_, kept := program.Stmts[0].Data.(*js_ast.SImport)
		assert.True(t, kept)
	})

	t.Run("import type is always removed", func(t *testing.T) {
		f := newFixture()
		nsRef := f.declare(js_ast.SymbolImport, "ns")
		program := tsProgram(js_ast.Stmt{Data: &js_ast.SImport{
			IsTypeOnly:   true,
			NamespaceRef: nsRef,
		}})
		program.ImportRecords = []ast.ImportRecord{{Path: logger.Path{Text: "./types"}}}
		ret := f.transform(t, program, TransformOptions{
			TypeScript: TypeScriptOptions{OnlyRemoveTypeImports: true},
		})
		require.Empty(t, ret.Errors)
		_, elided := program.Stmts[0].Data.(*js_ast.STypeScript)
		assert.True(t, elided)
	})
}

func TestRewriteImportExtensions(t *testing.T) {
	f := newFixture()
	nsRef := f.declare(js_ast.SymbolImport, "ns")
	program := tsProgram(js_ast.Stmt{Data: &js_ast.SImport{NamespaceRef: nsRef}})
	program.ImportRecords = []ast.ImportRecord{{Path: logger.Path{Text: "./util.ts"}}}

	ret := f.transform(t, program, TransformOptions{
		TypeScript: TypeScriptOptions{RewriteImportExtensions: RewriteExtensionsRewrite},
	})
	require.Empty(t, ret.Errors)
	assert.Equal(t, "./util.js", program.ImportRecords[0].Path.Text)
}

func TestParameterProperties(t *testing.T) {
	// class Foo { constructor(public x: boolean) {} }
	f := newFixture()
	classRef := f.declare(js_ast.SymbolClass, "Foo")
	xRef := f.declare(js_ast.SymbolHoisted, "x")

	ctor := js_ast.Property{
		IsMethod: true,
		Key:      js_ast.Expr{Data: &js_ast.EString{Value: "constructor"}},
		ValueOrNil: js_ast.Expr{Data: &js_ast.EFunction{Fn: js_ast.Fn{
			ArgumentsRef: js_ast.InvalidRef,
			Args: []js_ast.Arg{{
				Binding:               js_ast.Binding{Data: &js_ast.BIdentifier{Ref: xRef}},
				IsTypeScriptCtorField: true,
			}},
		}}},
	}
	program := tsProgram(js_ast.Stmt{Data: &js_ast.SClass{Class: js_ast.Class{
		Name:       &js_ast.LocRef{Ref: classRef},
		Properties: []js_ast.Property{ctor},
	}}})

	ret := f.transform(t, program, TransformOptions{})
	require.Empty(t, ret.Errors)

	class := program.Stmts[0].Data.(*js_ast.SClass).Class
	fn := class.Properties[0].ValueOrNil.Data.(*js_ast.EFunction).Fn
	require.Len(t, fn.Body.Block.Stmts, 1)

	assign := fn.Body.Block.Stmts[0].Data.(*js_ast.SExpr).Value.Data.(*js_ast.EBinary)
	dot := assign.Left.Data.(*js_ast.EDot)
	assert.Equal(t, "x", dot.Name)
	_, isThis := dot.Target.Data.(*js_ast.EThis)
	assert.True(t, isThis)
}

func TestDeclareStatementsAreRemoved(t *testing.T) {
	f := newFixture()
	x := f.declare(js_ast.SymbolHoisted, "x")
	program := tsProgram(js_ast.Stmt{Data: &js_ast.SLocal{
		Kind:                js_ast.LocalVar,
		IsTypeScriptDeclare: true,
		Decls:               []js_ast.Decl{{Binding: js_ast.Binding{Data: &js_ast.BIdentifier{Ref: x}}}},
	}})

	ret := f.transform(t, program, TransformOptions{})
	require.Empty(t, ret.Errors)
	_, removed := program.Stmts[0].Data.(*js_ast.STypeScript)
	assert.True(t, removed)
}
