package transformer

import (
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/traverse"
)

// ES2019: optional catch binding. "try {} catch {}" gains a synthesized
// unused binding for targets that require one.
type es2019Pass struct {
	ctx *TransformCtx
}

func (p *es2019Pass) enterCatch(catch *js_ast.Catch, tctx *traverse.Ctx) {
	if catch.BindingOrNil.Data != nil {
		return
	}
	ref := tctx.NewSymbol(js_ast.SymbolOther, "e")
	catch.BindingOrNil = js_ast.Binding{Loc: catch.Loc, Data: &js_ast.BIdentifier{Ref: ref}}
}
