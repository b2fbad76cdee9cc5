package ast

// This file contains data structures that are shared between the AST for
// different languages and the module graph machinery around it. The AST for
// JavaScript is in the "js_ast" package.

import "github.com/arborjs/arbor/internal/logger"

type ImportKind uint8

const (
	// An entry point provided by the user
	ImportEntryPoint ImportKind = iota

	// An ES6 import or re-export statement
	ImportStmt

	// A call to "require()"
	ImportRequire

	// An "import()" expression with a string argument
	ImportDynamic

	// An "import()" expression with a non-string argument
	ImportDynamicExpr

	// An "import.meta" expression
	ImportMeta

	// An "export * from ..." statement
	ImportExportStar
)

type ImportRecord struct {
	Assertions *ImportAssertions
	Path       logger.Path

	// The span of the import specifier string, including quotes
	Range logger.Range

	// The span of the whole import or export statement this record came from.
	// For dynamic "import()" expressions this covers the full call expression.
	StatementRange logger.Range

	Kind ImportKind
}

type ImportAssertions struct {
	Entries    []AssertEntry
	KeywordLoc logger.Loc
}

type AssertEntry struct {
	Key      string
	Value    string
	KeyLoc   logger.Loc
	ValueLoc logger.Loc
}

func FindAssertion(assertions []AssertEntry, name string) *AssertEntry {
	for i := range assertions {
		entry := &assertions[i]
		if entry.Key == name {
			return entry
		}
	}
	return nil
}

// This is a 32-bit index where the zero value is an invalid index. This is a
// better alternative to storing the index as a pointer since that has the
// same properties but takes up more space and costs an extra pointer traversal.
type Index32 struct {
	flippedBits uint32
}

func MakeIndex32(index uint32) Index32 {
	return Index32{flippedBits: ^index}
}

func (i Index32) IsValid() bool {
	return i.flippedBits != 0
}

func (i Index32) GetIndex() uint32 {
	return ^i.flippedBits
}
