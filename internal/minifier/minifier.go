package minifier

import (
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/traverse"
)

// CompressOptions selects which peephole rewrites are enabled. Rewrites that
// are always safe (dropping redundant "return undefined" arguments, block
// unwrapping) have no switch.
type CompressOptions struct {
	// Transform "true" into "!0" and "false" into "!1"
	Booleans bool

	// Transform `typeof foo == "undefined"` into `typeof foo > "u"`
	Typeofs bool

	// Accepted and passed through, but no pass in this package reads it:
	// "while (x)" loops are not rewritten
	Loops bool
}

// A CompressorPass is a single rewrite pass over one program. The driver
// reads Changed after a build to decide whether another application could
// make further progress.
type CompressorPass interface {
	traverse.Visitor
	Changed() bool
	Build(program *js_ast.AST, symbols js_ast.SymbolMap, scopes *js_ast.Scope) (js_ast.SymbolMap, *js_ast.Scope)
}

// Compressor drives a set of compressor passes to a fixed point. Each pass
// is confluent under repeated application on its own output, so the loop is
// bounded in practice; the iteration cap is a backstop against a pass that
// keeps reporting changes.
type Compressor struct {
	passes []CompressorPass
}

const maxIterations = 10

func NewCompressor(options CompressOptions) *Compressor {
	return &Compressor{
		passes: []CompressorPass{
			NewSubstituteAlternateSyntax(options),
		},
	}
}

func (c *Compressor) Build(program *js_ast.AST, symbols js_ast.SymbolMap, scopes *js_ast.Scope) (js_ast.SymbolMap, *js_ast.Scope) {
	for i := 0; i < maxIterations; i++ {
		changed := false
		for _, pass := range c.passes {
			symbols, scopes = pass.Build(program, symbols, scopes)
			changed = changed || pass.Changed()
		}
		if !changed {
			break
		}
	}
	return symbols, scopes
}
