package transformer

import (
	"github.com/arborjs/arbor/internal/ast"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
	"github.com/arborjs/arbor/internal/runtime"
	"github.com/arborjs/arbor/internal/traverse"
)

// The common pass owns the helper loader: every "__pow"-style reference the
// lowering passes created through TransformCtx.CallRuntime is resolved at
// program exit, either to an import from the helper module or to an inline
// definition prepended to the program. Each helper is loaded exactly once no
// matter how many call sites used it.
type commonPass struct {
	ctx *TransformCtx
}

func (p *commonPass) exitProgram(program *js_ast.AST, tctx *traverse.Ctx) {
	if len(p.ctx.helperOrder) == 0 {
		return
	}

	if p.ctx.helperOpts.Mode == HelpersImport {
		p.injectHelperImport(program, tctx)
	} else {
		p.injectInlineHelpers(program, tctx)
	}
}

// "import { __pow, __async } from '@arborjs/helpers';"
func (p *commonPass) injectHelperImport(program *js_ast.AST, tctx *traverse.Ctx) {
	items := make([]js_ast.ClauseItem, len(p.ctx.helperOrder))
	for i, name := range p.ctx.helperOrder {
		items[i] = js_ast.ClauseItem{
			Alias:        name,
			OriginalName: name,
			Name:         js_ast.LocRef{Ref: p.ctx.helperRefs[name]},
		}
	}

	importRecordIndex := uint32(len(program.ImportRecords))
	program.ImportRecords = append(program.ImportRecords, ast.ImportRecord{
		Kind: ast.ImportStmt,
		Path: logger.Path{Text: p.ctx.helperOpts.ModuleName},
	})

	namespaceRef := tctx.NewSymbol(js_ast.SymbolImport, "helpers")
	stmt := js_ast.Stmt{Data: &js_ast.SImport{
		Items:             &items,
		NamespaceRef:      namespaceRef,
		ImportRecordIndex: importRecordIndex,
	}}
	program.Stmts = append([]js_ast.Stmt{stmt}, program.Stmts...)
}

// "var __pow = Math.pow;" and friends, in first-use order
func (p *commonPass) injectInlineHelpers(program *js_ast.AST, tctx *traverse.Ctx) {
	builder := &runtime.Builder{
		NewSymbol: func(name string) js_ast.Ref {
			return tctx.NewSymbol(js_ast.SymbolGenerated, name)
		},
		GlobalRef: func(name string) js_ast.Expr {
			ref := p.ctx.UnboundRef(tctx, name)
			return js_ast.Expr{Data: &js_ast.EIdentifier{Ref: ref}}
		},
	}

	var decls []js_ast.Stmt
	for _, name := range p.ctx.helperOrder {
		value, ok := builder.Build(name)
		if !ok {
			panic("Internal error: unknown runtime helper " + name)
		}
		decls = append(decls, js_ast.Stmt{Data: &js_ast.SLocal{
			Kind: js_ast.LocalVar,
			Decls: []js_ast.Decl{{
				Binding:    js_ast.Binding{Data: &js_ast.BIdentifier{Ref: p.ctx.helperRefs[name]}},
				ValueOrNil: value,
			}},
		}})
	}

	program.Stmts = append(decls, program.Stmts...)
}
