package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborjs/arbor/internal/ast"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
)

func testSymbols(names ...string) (js_ast.SymbolMap, *js_ast.Scope, []js_ast.Ref) {
	symbols := js_ast.NewSymbolMap(1)
	scope := &js_ast.Scope{Kind: js_ast.ScopeEntry, Members: make(map[string]js_ast.ScopeMember)}
	var refs []js_ast.Ref
	for _, name := range names {
		ref := js_ast.Ref{SourceIndex: 0, InnerIndex: uint32(len(symbols.SymbolsForSource[0]))}
		symbols.SymbolsForSource[0] = append(symbols.SymbolsForSource[0], js_ast.Symbol{
			OriginalName: name,
			Kind:         js_ast.SymbolUnbound,
			Link:         js_ast.InvalidRef,
		})
		scope.Members[name] = js_ast.ScopeMember{Ref: ref}
		refs = append(refs, ref)
	}
	return symbols, scope, refs
}

func TestTransformWithCompression(t *testing.T) {
	// "return undefined" inside a function, with the minifier enabled
	symbols, scope, refs := testSymbols("undefined")

	fnSymbols := symbols
	fnRef := js_ast.Ref{SourceIndex: 0, InnerIndex: 1}
	fnSymbols.SymbolsForSource[0] = append(fnSymbols.SymbolsForSource[0], js_ast.Symbol{
		OriginalName: "f",
		Kind:         js_ast.SymbolHoistedFunction,
		Link:         js_ast.InvalidRef,
	})

	program := &js_ast.AST{Stmts: []js_ast.Stmt{{Data: &js_ast.SFunction{Fn: js_ast.Fn{
		Name:         &js_ast.LocRef{Ref: fnRef},
		ArgumentsRef: js_ast.InvalidRef,
		Body: js_ast.FnBody{Block: js_ast.SBlock{Stmts: []js_ast.Stmt{
			{Data: &js_ast.SReturn{ValueOrNil: js_ast.Expr{Data: &js_ast.EIdentifier{Ref: refs[0]}}}},
		}}},
	}}}}}

	result := Transform(TransformInput{
		Program:    program,
		Symbols:    fnSymbols,
		Scopes:     scope,
		SourcePath: "input.js",
	}, TransformOptions{Compress: &CompressOptions{}})

	require.Empty(t, result.Errors)
	require.NotNil(t, result.Program)

	ret := result.Program.Stmts[0].Data.(*js_ast.SFunction).Fn.Body.Block.Stmts[0].Data.(*js_ast.SReturn)
	assert.Nil(t, ret.ValueOrNil.Data)
}

func TestTransformReportsOptionErrors(t *testing.T) {
	symbols, scope, _ := testSymbols()
	result := Transform(TransformInput{
		Program: &js_ast.AST{},
		Symbols: symbols,
		Scopes:  scope,
	}, TransformOptions{Env: EnvOptions{ESTarget: "es1999"}})

	require.Len(t, result.Errors, 1)
	assert.Nil(t, result.Program)
}

func TestTransformAsyncDeliversTheResult(t *testing.T) {
	symbols, scope, _ := testSymbols()
	task := TransformAsync(TransformInput{
		Program: &js_ast.AST{},
		Symbols: symbols,
		Scopes:  scope,
	}, TransformOptions{})

	result := <-task.C
	assert.Empty(t, result.Errors)
}

func moduleLexerFixtureProgram() (*js_ast.AST, js_ast.SymbolMap) {
	symbols := js_ast.NewSymbolMap(1)
	items := []js_ast.ClauseItem{}
	program := &js_ast.AST{
		SourceType: js_ast.SourceType{Kind: js_ast.SourceModule},
		Stmts: []js_ast.Stmt{
			{Data: &js_ast.SImport{Items: &items, ImportRecordIndex: 0}},
			{Data: &js_ast.SExportStar{ImportRecordIndex: 1}},
			{Data: &js_ast.SExpr{Value: js_ast.Expr{
				Loc:  logger.Loc{Start: 50},
				Data: &js_ast.EImportMeta{RangeLen: 11},
			}}},
		},
		ImportRecords: []ast.ImportRecord{
			{
				Kind:           ast.ImportStmt,
				Path:           logger.Path{Text: "./a"},
				Range:          logger.Range{Loc: logger.Loc{Start: 7}, Len: 5},
				StatementRange: logger.Range{Loc: logger.Loc{Start: 0}, Len: 13},
			},
			{
				Kind:           ast.ImportExportStar,
				Path:           logger.Path{Text: "./b"},
				Range:          logger.Range{Loc: logger.Loc{Start: 28}, Len: 5},
				StatementRange: logger.Range{Loc: logger.Loc{Start: 14}, Len: 20},
			},
		},
	}
	return program, symbols
}

// The discriminator sentinels are part of the external contract: -1 static,
// -2 import.meta, -3 export star, and the start offset for dynamic imports.
func TestModuleLexerSentinels(t *testing.T) {
	program, symbols := moduleLexerFixtureProgram()
	result := ModuleLexerSync(program, symbols)

	require.Len(t, result.Imports, 3)

	static := result.Imports[0]
	assert.Equal(t, int64(-1), static.D)
	assert.Equal(t, int64(-1), static.A)
	require.NotNil(t, static.N)
	assert.Equal(t, "./a", *static.N)

	star := result.Imports[1]
	assert.Equal(t, int64(-3), star.D)

	meta := result.Imports[2]
	assert.Equal(t, int64(-2), meta.D)

	assert.True(t, result.HasModuleSyntax)
	assert.False(t, result.Facade)
}

func TestModuleLexerJSONFieldNames(t *testing.T) {
	program, symbols := moduleLexerFixtureProgram()
	result := ModuleLexerSync(program, symbols)

	encoded, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Contains(t, decoded, "imports")
	assert.Contains(t, decoded, "exports")
	assert.Contains(t, decoded, "hasModuleSyntax")
	assert.Contains(t, decoded, "facade")

	imports := decoded["imports"].([]interface{})
	first := imports[0].(map[string]interface{})
	for _, field := range []string{"n", "s", "e", "ss", "se", "d", "a"} {
		assert.Contains(t, first, field)
	}
}

func TestModuleLexerAsync(t *testing.T) {
	program, symbols := moduleLexerFixtureProgram()
	task := ModuleLexerAsync(program, symbols)
	result := <-task.C
	assert.Len(t, result.Imports, 3)
}
