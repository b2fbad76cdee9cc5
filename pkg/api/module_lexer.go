package api

import (
	"github.com/arborjs/arbor/internal/module_lexer"
)

// These DTO field names and discriminator sentinels are part of the external
// contract with host runtimes and must be preserved bit-exact.

type ModuleLexerImportSpecifier struct {
	// Module name.
	//
	// For dynamic import expressions, this field is absent when the argument
	// is not a string literal.
	N *string `json:"n,omitempty"`

	// Start of module specifier
	S uint32 `json:"s"`

	// End of module specifier
	E uint32 `json:"e"`

	// Start of import statement
	Ss uint32 `json:"ss"`

	// End of import statement
	Se uint32 `json:"se"`

	// Import type:
	// * If this import is a dynamic import, this is the start value.
	// * If this import is a static import, this is -1.
	// * If this import is an import.meta expression, this is -2.
	// * If this import is an "export *", this is -3.
	D int64 `json:"d"`

	// If this import has an import assertion, this is the start value.
	// Otherwise this is -1.
	A int64 `json:"a"`
}

type ModuleLexerExportSpecifier struct {
	// Exported name
	N string `json:"n"`

	// Local name, or absent
	Ln *string `json:"ln,omitempty"`

	// Start of exported name
	S uint32 `json:"s"`

	// End of exported name
	E uint32 `json:"e"`

	// Start of local name
	Ls *uint32 `json:"ls,omitempty"`

	// End of local name
	Le *uint32 `json:"le,omitempty"`
}

type ModuleLexerResult struct {
	Imports []ModuleLexerImportSpecifier `json:"imports"`
	Exports []ModuleLexerExportSpecifier `json:"exports"`

	// The use of ESM syntax: import / export statements and "import.meta"
	HasModuleSyntax bool `json:"hasModuleSyntax"`

	// Facade modules only use import / export syntax
	Facade bool `json:"facade"`
}

// ModuleLexerSync outputs the list of exports and locations of import
// specifiers, including dynamic import and import meta handling.
func ModuleLexerSync(program *Program, symbols SymbolMap) ModuleLexerResult {
	built := module_lexer.Build(program, symbols)

	imports := make([]ModuleLexerImportSpecifier, 0, len(built.Imports))
	for _, imp := range built.Imports {
		specifier := ModuleLexerImportSpecifier{
			S:  imp.Start,
			E:  imp.End,
			Ss: imp.StatementStart,
			Se: imp.StatementEnd,
			A:  -1,
		}
		if imp.HasName {
			name := imp.Name
			specifier.N = &name
		}
		switch imp.Kind {
		case module_lexer.ImportDynamic:
			specifier.D = int64(imp.StatementStart)
		case module_lexer.ImportStatic:
			specifier.D = -1
		case module_lexer.ImportMeta:
			specifier.D = -2
		case module_lexer.ExportStar:
			specifier.D = -3
		}
		if imp.HasAssertionStart {
			specifier.A = int64(imp.AssertionStart)
		}
		imports = append(imports, specifier)
	}

	exports := make([]ModuleLexerExportSpecifier, 0, len(built.Exports))
	for _, export := range built.Exports {
		specifier := ModuleLexerExportSpecifier{
			N: export.Name,
			S: export.Start,
			E: export.End,
		}
		if export.HasLocal {
			name := export.LocalName
			start := export.LocalStart
			end := export.LocalEnd
			specifier.Ln = &name
			specifier.Ls = &start
			specifier.Le = &end
		}
		exports = append(exports, specifier)
	}

	return ModuleLexerResult{
		Imports:         imports,
		Exports:         exports,
		HasModuleSyntax: built.HasModuleSyntax,
		Facade:          built.Facade,
	}
}

// ModuleLexerTask is the async wrapper around ModuleLexerSync
type ModuleLexerTask struct {
	C <-chan ModuleLexerResult
}

func ModuleLexerAsync(program *Program, symbols SymbolMap) *ModuleLexerTask {
	c := make(chan ModuleLexerResult, 1)
	go func() {
		c <- ModuleLexerSync(program, symbols)
	}()
	return &ModuleLexerTask{C: c}
}
