package module_lexer

// This package extracts the import/export surface of a parsed program in the
// shape host runtimes expect from an es-module-lexer style scan: one record
// per import specifier (static, dynamic, "import.meta" and "export *" forms)
// and one record per exported name, plus the module-syntax summary bits.

import (
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
	"github.com/arborjs/arbor/internal/traverse"
)

type ImportKind uint8

const (
	// A static import statement
	ImportStatic ImportKind = iota

	// A dynamic "import()" expression
	ImportDynamic

	// An "import.meta" expression
	ImportMeta

	// An "export * from ..." statement
	ExportStar
)

type Import struct {
	// Specifier text. Absent for dynamic imports whose argument is not a
	// string literal.
	Name    string
	HasName bool

	// Span of the specifier contents, excluding quotes. For non-literal
	// dynamic imports this span is empty and sits at the start of the
	// argument expression.
	Start uint32
	End   uint32

	// Span of the whole import or export statement, taken from the import
	// record. For non-literal dynamic imports this span is empty and sits at
	// the start of the call expression.
	StatementStart uint32
	StatementEnd   uint32

	Kind ImportKind

	// Start of the import assertion, when present
	AssertionStart    uint32
	HasAssertionStart bool
}

type Export struct {
	// Exported name and its span
	Name  string
	Start uint32
	End   uint32

	// Local name and its span. Absent for re-exports.
	LocalName  string
	HasLocal   bool
	LocalStart uint32
	LocalEnd   uint32
}

type ModuleLexer struct {
	Imports []Import
	Exports []Export

	// The use of ESM syntax: import / export statements and "import.meta"
	HasModuleSyntax bool

	// Facade modules only use import / export syntax
	Facade bool
}

// Build scans the program. Top-level statements carry the static surface;
// dynamic imports and "import.meta" can appear anywhere, so those are found
// with a traversal. Only imports, re-exports, export clauses, directives,
// comments and empty statements keep the facade property; any other
// statement (including "export default" and exported declarations), a
// dynamic import or "import.meta" breaks it, and a module with no imports
// or exports is not a facade.
func Build(program *js_ast.AST, symbols js_ast.SymbolMap) ModuleLexer {
	result := ModuleLexer{Facade: true}

	nameOf := func(ref js_ast.Ref) string {
		return symbols.Get(js_ast.FollowSymbols(symbols, ref)).OriginalName
	}

	localExport := func(name string, loc logger.Loc) Export {
		return Export{
			Name:       name,
			Start:      uint32(loc.Start),
			End:        uint32(loc.Start) + uint32(len(name)),
			LocalName:  name,
			HasLocal:   true,
			LocalStart: uint32(loc.Start),
			LocalEnd:   uint32(loc.Start) + uint32(len(name)),
		}
	}

	for _, stmt := range program.Stmts {
		switch s := stmt.Data.(type) {
		case *js_ast.SImport:
			result.HasModuleSyntax = true
			result.Imports = append(result.Imports, importFromRecord(program, s.ImportRecordIndex, ImportStatic))

		case *js_ast.SExportFrom:
			result.HasModuleSyntax = true
			result.Imports = append(result.Imports, importFromRecord(program, s.ImportRecordIndex, ImportStatic))
			for _, item := range s.Items {
				// Re-exports have no local binding in this module
				result.Exports = append(result.Exports, Export{
					Name:  item.Alias,
					Start: uint32(item.AliasLoc.Start),
					End:   uint32(item.AliasLoc.Start) + uint32(len(item.Alias)),
				})
			}

		case *js_ast.SExportStar:
			result.HasModuleSyntax = true
			result.Imports = append(result.Imports, importFromRecord(program, s.ImportRecordIndex, ExportStar))
			if s.Alias != nil {
				result.Exports = append(result.Exports, Export{
					Name:  s.Alias.OriginalName,
					Start: uint32(s.Alias.Loc.Start),
					End:   uint32(s.Alias.Loc.Start) + uint32(len(s.Alias.OriginalName)),
				})
			}

		case *js_ast.SExportClause:
			result.HasModuleSyntax = true
			for _, item := range s.Items {
				result.Exports = append(result.Exports, Export{
					Name:       item.Alias,
					Start:      uint32(item.AliasLoc.Start),
					End:        uint32(item.AliasLoc.Start) + uint32(len(item.Alias)),
					LocalName:  item.OriginalName,
					HasLocal:   true,
					LocalStart: uint32(item.Name.Loc.Start),
					LocalEnd:   uint32(item.Name.Loc.Start) + uint32(len(item.OriginalName)),
				})
			}

		case *js_ast.SExportDefault:
			result.HasModuleSyntax = true
			result.Facade = false
			export := Export{
				Name:  "default",
				Start: uint32(stmt.Loc.Start),
				End:   uint32(stmt.Loc.Start) + uint32(len("default")),
			}
			switch value := s.Value.Data.(type) {
			case *js_ast.SFunction:
				if value.Fn.Name != nil {
					name := nameOf(value.Fn.Name.Ref)
					export.LocalName = name
					export.HasLocal = true
					export.LocalStart = uint32(value.Fn.Name.Loc.Start)
					export.LocalEnd = uint32(value.Fn.Name.Loc.Start) + uint32(len(name))
				}
			case *js_ast.SClass:
				if value.Class.Name != nil {
					name := nameOf(value.Class.Name.Ref)
					export.LocalName = name
					export.HasLocal = true
					export.LocalStart = uint32(value.Class.Name.Loc.Start)
					export.LocalEnd = uint32(value.Class.Name.Loc.Start) + uint32(len(name))
				}
			}
			result.Exports = append(result.Exports, export)

		case *js_ast.SFunction:
			result.Facade = false
			if s.IsExport && s.Fn.Name != nil {
				result.HasModuleSyntax = true
				result.Exports = append(result.Exports, localExport(nameOf(s.Fn.Name.Ref), s.Fn.Name.Loc))
			}

		case *js_ast.SClass:
			result.Facade = false
			if s.IsExport && s.Class.Name != nil {
				result.HasModuleSyntax = true
				result.Exports = append(result.Exports, localExport(nameOf(s.Class.Name.Ref), s.Class.Name.Loc))
			}

		case *js_ast.SLocal:
			result.Facade = false
			if s.IsExport {
				result.HasModuleSyntax = true
				for _, decl := range s.Decls {
					if id, ok := decl.Binding.Data.(*js_ast.BIdentifier); ok {
						result.Exports = append(result.Exports, localExport(nameOf(id.Ref), decl.Binding.Loc))
					}
				}
			}

		case *js_ast.SDirective, *js_ast.SEmpty, *js_ast.SComment:
			// Neutral for facade detection

		default:
			result.Facade = false
		}
	}

	// Dynamic imports and "import.meta" can be nested anywhere
	collector := &importCollector{program: program, result: &result}
	traverse.Walk(program, collector, symbols, nil)

	if len(result.Imports) == 0 && len(result.Exports) == 0 {
		result.Facade = false
	}
	return result
}

func importFromRecord(program *js_ast.AST, importRecordIndex uint32, kind ImportKind) Import {
	record := &program.ImportRecords[importRecordIndex]

	// The record's range covers the quoted string; the contract wants the
	// contents
	imp := Import{
		Name:           record.Path.Text,
		HasName:        true,
		Start:          uint32(record.Range.Loc.Start) + 1,
		End:            uint32(record.Range.End()) - 1,
		StatementStart: uint32(record.StatementRange.Loc.Start),
		StatementEnd:   uint32(record.StatementRange.End()),
		Kind:           kind,
	}
	if record.Assertions != nil {
		imp.AssertionStart = uint32(record.Assertions.KeywordLoc.Start)
		imp.HasAssertionStart = true
	}
	return imp
}

type importCollector struct {
	traverse.NoopVisitor

	program *js_ast.AST
	result  *ModuleLexer
}

func (c *importCollector) EnterExpression(expr *js_ast.Expr, ctx *traverse.Ctx) {
	switch e := expr.Data.(type) {
	case *js_ast.EImportCall:
		c.result.Facade = false
		imp := Import{Kind: ImportDynamic}
		if e.ImportRecordIndex.IsValid() {
			record := &c.program.ImportRecords[e.ImportRecordIndex.GetIndex()]
			imp.Name = record.Path.Text
			imp.HasName = true
			imp.Start = uint32(record.Range.Loc.Start) + 1
			imp.End = uint32(record.Range.End()) - 1
			imp.StatementStart = uint32(record.StatementRange.Loc.Start)
			imp.StatementEnd = uint32(record.StatementRange.End())
			if record.Assertions != nil {
				imp.AssertionStart = uint32(record.Assertions.KeywordLoc.Start)
				imp.HasAssertionStart = true
			}
		} else {
			// A non-literal argument has no specifier text, and the AST has
			// no end offsets here, so both spans are empty at start offsets
			imp.Start = uint32(e.Expr.Loc.Start)
			imp.End = uint32(e.Expr.Loc.Start)
			imp.StatementStart = uint32(expr.Loc.Start)
			imp.StatementEnd = uint32(expr.Loc.Start)
		}
		c.result.Imports = append(c.result.Imports, imp)

	case *js_ast.EImportMeta:
		c.result.HasModuleSyntax = true
		c.result.Facade = false
		c.result.Imports = append(c.result.Imports, Import{
			Kind:           ImportMeta,
			Start:          uint32(expr.Loc.Start),
			End:            uint32(expr.Loc.Start) + uint32(e.RangeLen),
			StatementStart: uint32(expr.Loc.Start),
			StatementEnd:   uint32(expr.Loc.Start) + uint32(e.RangeLen),
		})
	}
}
