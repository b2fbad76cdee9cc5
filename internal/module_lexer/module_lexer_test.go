package module_lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborjs/arbor/internal/ast"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
)

type fixture struct {
	symbols js_ast.SymbolMap
}

func newFixture() *fixture {
	return &fixture{symbols: js_ast.NewSymbolMap(1)}
}

func (f *fixture) declare(name string) js_ast.Ref {
	inner := f.symbols.SymbolsForSource[0]
	ref := js_ast.Ref{SourceIndex: 0, InnerIndex: uint32(len(inner))}
	f.symbols.SymbolsForSource[0] = append(inner, js_ast.Symbol{
		OriginalName: name,
		Kind:         js_ast.SymbolHoisted,
		Link:         js_ast.InvalidRef,
	})
	return ref
}

// "import { a } from './dep';" with the specifier at bytes 18..25
func staticImportProgram() *js_ast.AST {
	items := []js_ast.ClauseItem{{Alias: "a", OriginalName: "a"}}
	return &js_ast.AST{
		SourceType: js_ast.SourceType{Kind: js_ast.SourceModule},
		Stmts: []js_ast.Stmt{{Data: &js_ast.SImport{
			Items:             &items,
			ImportRecordIndex: 0,
		}}},
		ImportRecords: []ast.ImportRecord{{
			Kind:           ast.ImportStmt,
			Path:           logger.Path{Text: "./dep"},
			Range:          logger.Range{Loc: logger.Loc{Start: 18}, Len: 7},
			StatementRange: logger.Range{Loc: logger.Loc{Start: 0}, Len: 26},
		}},
	}
}

func TestStaticImport(t *testing.T) {
	f := newFixture()
	result := Build(staticImportProgram(), f.symbols)

	require.Len(t, result.Imports, 1)
	imp := result.Imports[0]
	assert.True(t, imp.HasName)
	assert.Equal(t, "./dep", imp.Name)
	assert.Equal(t, uint32(19), imp.Start, "the span excludes the opening quote")
	assert.Equal(t, uint32(24), imp.End, "the span excludes the closing quote")
	assert.Equal(t, uint32(0), imp.StatementStart)
	assert.Equal(t, uint32(26), imp.StatementEnd)
	assert.Equal(t, ImportStatic, imp.Kind)
	assert.False(t, imp.HasAssertionStart)

	assert.True(t, result.HasModuleSyntax)
	assert.True(t, result.Facade, "a module of only imports is a facade")
}

func TestExportClause(t *testing.T) {
	// "export { foo as bar };"
	f := newFixture()
	fooRef := f.declare("foo")
	program := &js_ast.AST{Stmts: []js_ast.Stmt{{Data: &js_ast.SExportClause{
		Items: []js_ast.ClauseItem{{
			Alias:        "bar",
			AliasLoc:     logger.Loc{Start: 16},
			OriginalName: "foo",
			Name:         js_ast.LocRef{Loc: logger.Loc{Start: 9}, Ref: fooRef},
		}},
	}}}}

	result := Build(program, f.symbols)

	require.Len(t, result.Exports, 1)
	export := result.Exports[0]
	assert.Equal(t, "bar", export.Name)
	assert.Equal(t, uint32(16), export.Start)
	assert.Equal(t, uint32(19), export.End)
	assert.True(t, export.HasLocal)
	assert.Equal(t, "foo", export.LocalName)
	assert.Equal(t, uint32(9), export.LocalStart)
	assert.Equal(t, uint32(12), export.LocalEnd)
}

func TestExportStar(t *testing.T) {
	f := newFixture()
	program := &js_ast.AST{
		Stmts: []js_ast.Stmt{{Data: &js_ast.SExportStar{ImportRecordIndex: 0}}},
		ImportRecords: []ast.ImportRecord{{
			Kind:           ast.ImportExportStar,
			Path:           logger.Path{Text: "./other"},
			Range:          logger.Range{Loc: logger.Loc{Start: 14}, Len: 9},
			StatementRange: logger.Range{Loc: logger.Loc{Start: 0}, Len: 24},
		}},
	}

	result := Build(program, f.symbols)

	require.Len(t, result.Imports, 1)
	assert.Equal(t, ExportStar, result.Imports[0].Kind)
	assert.True(t, result.HasModuleSyntax)
	assert.True(t, result.Facade)
}

func TestDynamicImport(t *testing.T) {
	t.Run("string literal argument", func(t *testing.T) {
		f := newFixture()
		program := &js_ast.AST{
			Stmts: []js_ast.Stmt{{Data: &js_ast.SExpr{Value: js_ast.Expr{
				Loc: logger.Loc{Start: 0},
				Data: &js_ast.EImportCall{
					Expr:              js_ast.Expr{Loc: logger.Loc{Start: 7}, Data: &js_ast.EString{Value: "./lazy"}},
					ImportRecordIndex: ast.MakeIndex32(0),
				},
			}}}},
			ImportRecords: []ast.ImportRecord{{
				Kind:           ast.ImportDynamic,
				Path:           logger.Path{Text: "./lazy"},
				Range:          logger.Range{Loc: logger.Loc{Start: 7}, Len: 8},
				StatementRange: logger.Range{Loc: logger.Loc{Start: 0}, Len: 16},
			}},
		}

		result := Build(program, f.symbols)

		require.Len(t, result.Imports, 1)
		imp := result.Imports[0]
		assert.Equal(t, ImportDynamic, imp.Kind)
		assert.True(t, imp.HasName)
		assert.Equal(t, "./lazy", imp.Name)
		assert.False(t, result.HasModuleSyntax, "dynamic import alone is valid in scripts")
		assert.False(t, result.Facade)
	})

	t.Run("non-literal argument has no name", func(t *testing.T) {
		f := newFixture()
		ref := f.declare("specifier")
		program := &js_ast.AST{
			Stmts: []js_ast.Stmt{{Data: &js_ast.SExpr{Value: js_ast.Expr{
				Data: &js_ast.EImportCall{
					Expr: js_ast.Expr{Loc: logger.Loc{Start: 7}, Data: &js_ast.EIdentifier{Ref: ref}},
				},
			}}}},
		}

		result := Build(program, f.symbols)

		require.Len(t, result.Imports, 1)
		assert.False(t, result.Imports[0].HasName)
	})
}

func TestImportMeta(t *testing.T) {
	f := newFixture()
	program := &js_ast.AST{Stmts: []js_ast.Stmt{{Data: &js_ast.SExpr{Value: js_ast.Expr{
		Loc:  logger.Loc{Start: 10},
		Data: &js_ast.EImportMeta{RangeLen: 11},
	}}}}}

	result := Build(program, f.symbols)

	require.Len(t, result.Imports, 1)
	imp := result.Imports[0]
	assert.Equal(t, ImportMeta, imp.Kind)
	assert.Equal(t, uint32(10), imp.Start)
	assert.Equal(t, uint32(21), imp.End)
	assert.True(t, result.HasModuleSyntax, "import.meta is module syntax")
}

func TestExportedDeclarations(t *testing.T) {
	f := newFixture()
	fooRef := f.declare("foo")
	program := &js_ast.AST{Stmts: []js_ast.Stmt{{Data: &js_ast.SFunction{
		IsExport: true,
		Fn: js_ast.Fn{
			Name:         &js_ast.LocRef{Loc: logger.Loc{Start: 16}, Ref: fooRef},
			ArgumentsRef: js_ast.InvalidRef,
		},
	}}}}

	result := Build(program, f.symbols)

	require.Len(t, result.Exports, 1)
	export := result.Exports[0]
	assert.Equal(t, "foo", export.Name)
	assert.True(t, export.HasLocal)
	assert.Equal(t, "foo", export.LocalName)
	assert.False(t, result.Facade, "a function body breaks the facade property")
}

func TestFacadeDetection(t *testing.T) {
	t.Run("imports and re-exports only", func(t *testing.T) {
		f := newFixture()
		program := staticImportProgram()
		program.Stmts = append(program.Stmts, js_ast.Stmt{Data: &js_ast.SExportClause{}})
		result := Build(program, f.symbols)
		assert.True(t, result.Facade)
	})

	t.Run("a plain statement breaks it", func(t *testing.T) {
		f := newFixture()
		program := staticImportProgram()
		program.Stmts = append(program.Stmts, js_ast.Stmt{Data: &js_ast.SExpr{
			Value: js_ast.Expr{Data: &js_ast.ENumber{Value: 1}},
		}})
		result := Build(program, f.symbols)
		assert.False(t, result.Facade)
	})

	t.Run("an empty module is not a facade", func(t *testing.T) {
		f := newFixture()
		result := Build(&js_ast.AST{}, f.symbols)
		assert.False(t, result.Facade)
	})
}
