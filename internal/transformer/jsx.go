package transformer

import (
	"strings"

	"github.com/arborjs/arbor/internal/ast"
	"github.com/arborjs/arbor/internal/compat"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
	"github.com/arborjs/arbor/internal/traverse"
)

// The JSX pass lowers elements, fragments and attributes to calls per the
// configured runtime: classic ("React.createElement" factory calls) or
// automatic ("jsx"/"jsxs"/"jsxDEV" imported from "<source>/jsx-runtime").
type jsxPass struct {
	ctx     *TransformCtx
	options JsxOptions

	// Automatic runtime: names imported from the runtime module, in first-use
	// order
	importRefs  map[string]js_ast.Ref
	importOrder []string
}

func newJsxPass(ctx *TransformCtx, options JsxOptions) *jsxPass {
	if options.ImportSource == "" {
		options.ImportSource = defaultJsxImportSource
	}
	if options.Pragma == "" {
		options.Pragma = defaultJsxPragma
	}
	if options.PragmaFrag == "" {
		options.PragmaFrag = defaultJsxPragmaFrag
	}
	if options.RefreshOptions.RefreshReg == "" {
		options.RefreshOptions.RefreshReg = "$RefreshReg$"
	}
	return &jsxPass{
		ctx:        ctx,
		options:    options,
		importRefs: make(map[string]js_ast.Ref),
	}
}

// Comments on the program may override the JSX options. They are read at
// program enter, before descent.
func (p *jsxPass) enterProgram(program *js_ast.AST, tctx *traverse.Ctx) {
	updateJsxOptionsWithComments(program.Comments, &p.options)
}

func updateJsxOptionsWithComments(comments []js_ast.Comment, options *JsxOptions) {
	for _, comment := range comments {
		for _, line := range strings.Split(comment.Text, "\n") {
			fields := strings.Fields(line)
			for i, field := range fields {
				if i+1 >= len(fields) {
					break
				}
				value := fields[i+1]
				switch field {
				case "@jsxRuntime":
					switch value {
					case "classic":
						options.Runtime = JsxRuntimeClassic
					case "automatic":
						options.Runtime = JsxRuntimeAutomatic
					}
				case "@jsxImportSource":
					options.ImportSource = value
				case "@jsx":
					options.Pragma = value
				case "@jsxFrag":
					options.PragmaFrag = value
				}
			}
		}
	}
}

// Elements lower on expression exit so that attribute values and children
// have already been transformed by every pass in this traversal.
func (p *jsxPass) exitExpression(expr *js_ast.Expr, tctx *traverse.Ctx) {
	element, ok := expr.Data.(*js_ast.EJSXElement)
	if !ok {
		return
	}

	children := make([]js_ast.Expr, 0, len(element.Children))
	for _, child := range element.Children {
		if child.Data != nil {
			children = append(children, child)
		}
	}

	if p.options.Runtime == JsxRuntimeAutomatic {
		*expr = p.lowerAutomatic(expr.Loc, element, children, tctx)
	} else {
		*expr = p.lowerClassic(expr.Loc, element, children, tctx)
	}
}

// "<a b={c}>{d}</a>" => "React.createElement('a', { b: c }, d)"
func (p *jsxPass) lowerClassic(loc logger.Loc, element *js_ast.EJSXElement, children []js_ast.Expr, tctx *traverse.Ctx) js_ast.Expr {
	tag := element.TagOrNil
	if tag.Data == nil {
		tag = p.memberChain(tctx, loc, p.options.PragmaFrag)
	}

	props := nullExpr(loc)
	if len(element.Properties) > 0 {
		props = p.propsObject(loc, element.Properties, tctx)
	}

	args := append([]js_ast.Expr{tag, props}, children...)
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: p.memberChain(tctx, loc, p.options.Pragma),
		Args:   args,
	}}
}

// "<a b={c}>{d}</a>" => "jsx('a', { b: c, children: d })", with "jsxs" when
// there is more than one static child and "jsxDEV" in development mode
func (p *jsxPass) lowerAutomatic(loc logger.Loc, element *js_ast.EJSXElement, children []js_ast.Expr, tctx *traverse.Ctx) js_ast.Expr {
	tag := element.TagOrNil
	if tag.Data == nil {
		tag = refExpr(tctx, loc, p.runtimeImportRef(tctx, "Fragment"))
	}

	// The key attribute moves out of the props and into its own argument
	var keyOrNil js_ast.Expr
	properties := make([]js_ast.Property, 0, len(element.Properties))
	for _, property := range element.Properties {
		if !property.IsComputed && property.Kind == js_ast.PropertyNormal {
			if key, ok := property.Key.Data.(*js_ast.EString); ok && key.Value == "key" {
				keyOrNil = property.ValueOrNil
				continue
			}
		}
		properties = append(properties, property)
	}

	isStaticChildren := len(children) > 1
	if len(children) == 1 {
		properties = append(properties, js_ast.Property{
			Key:        stringExpr(loc, "children"),
			ValueOrNil: children[0],
		})
	} else if len(children) > 1 {
		properties = append(properties, js_ast.Property{
			Key:        stringExpr(loc, "children"),
			ValueOrNil: js_ast.Expr{Loc: loc, Data: &js_ast.EArray{Items: children}},
		})
	}

	props := p.propsObject(loc, properties, tctx)

	if p.options.Development {
		key := keyOrNil
		if key.Data == nil {
			key = void0(loc)
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
			Target: refExpr(tctx, loc, p.runtimeImportRef(tctx, "jsxDEV")),
			Args: []js_ast.Expr{tag, props, key,
				{Loc: loc, Data: &js_ast.EBoolean{Value: isStaticChildren}}},
		}}
	}

	name := "jsx"
	if isStaticChildren {
		name = "jsxs"
	}
	args := []js_ast.Expr{tag, props}
	if keyOrNil.Data != nil {
		args = append(args, keyOrNil)
	}
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: refExpr(tctx, loc, p.runtimeImportRef(tctx, name)),
		Args:   args,
	}}
}

// Builds the props argument. When the attributes contain a spread and the
// target doesn't support object spread, the merge is expressed with
// "Object.assign" instead of leaving spread syntax behind: nodes created
// during exit hooks are not revisited by the lowering passes.
func (p *jsxPass) propsObject(loc logger.Loc, properties []js_ast.Property, tctx *traverse.Ctx) js_ast.Expr {
	hasSpread := false
	for _, property := range properties {
		if property.Kind == js_ast.PropertySpread {
			hasSpread = true
			break
		}
	}

	if len(properties) == 0 {
		return js_ast.Expr{Loc: loc, Data: &js_ast.EObject{}}
	}

	if !hasSpread || !p.ctx.IsUnsupported(compat.ObjectRestSpread) {
		return js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: properties}}
	}

	// "{...a, b: 1}" => "Object.assign({}, a, { b: 1 })"
	args := []js_ast.Expr{{Loc: loc, Data: &js_ast.EObject{}}}
	var group []js_ast.Property
	flush := func() {
		if len(group) > 0 {
			args = append(args, js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: group}})
			group = nil
		}
	}
	for _, property := range properties {
		if property.Kind == js_ast.PropertySpread {
			flush()
			args = append(args, property.ValueOrNil)
		} else {
			group = append(group, property)
		}
	}
	flush()

	objectRef := p.ctx.UnboundRef(tctx, "Object")
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: dotExpr(refExpr(tctx, loc, objectRef), "assign", loc),
		Args:   args,
	}}
}

// "React.createElement" => member chain off the (possibly imported) root
func (p *jsxPass) memberChain(tctx *traverse.Ctx, loc logger.Loc, pragma string) js_ast.Expr {
	parts := strings.Split(pragma, ".")
	result := refExpr(tctx, loc, p.ctx.UnboundRef(tctx, parts[0]))
	for _, part := range parts[1:] {
		result = dotExpr(result, part, loc)
	}
	return result
}

func (p *jsxPass) runtimeImportRef(tctx *traverse.Ctx, name string) js_ast.Ref {
	if ref, ok := p.importRefs[name]; ok {
		return ref
	}
	ref := tctx.NewSymbol(js_ast.SymbolImport, name)
	p.importRefs[name] = ref
	p.importOrder = append(p.importOrder, name)
	return ref
}

// Injects the automatic runtime import and, in refresh mode, component
// registrations for hot reloading.
func (p *jsxPass) exitProgram(program *js_ast.AST, tctx *traverse.Ctx) {
	if p.options.Refresh {
		p.appendRefreshRegistrations(program, tctx)
	}

	if len(p.importOrder) == 0 {
		return
	}

	source := p.options.ImportSource + "/jsx-runtime"
	if p.options.Development {
		source = p.options.ImportSource + "/jsx-dev-runtime"
	}

	items := make([]js_ast.ClauseItem, len(p.importOrder))
	for i, name := range p.importOrder {
		items[i] = js_ast.ClauseItem{
			Alias:        name,
			OriginalName: name,
			Name:         js_ast.LocRef{Ref: p.importRefs[name]},
		}
	}

	importRecordIndex := uint32(len(program.ImportRecords))
	program.ImportRecords = append(program.ImportRecords, ast.ImportRecord{
		Kind: ast.ImportStmt,
		Path: logger.Path{Text: source},
	})

	namespaceRef := tctx.NewSymbol(js_ast.SymbolImport, "jsx_runtime")
	stmt := js_ast.Stmt{Data: &js_ast.SImport{
		Items:             &items,
		NamespaceRef:      namespaceRef,
		ImportRecordIndex: importRecordIndex,
	}}
	program.Stmts = append([]js_ast.Stmt{stmt}, program.Stmts...)
}

// A light-weight version of the react-refresh registration transform: every
// top-level component declaration (a capitalized function or class) gets a
// "$RefreshReg$(Component, 'Component')" call appended to the module.
func (p *jsxPass) appendRefreshRegistrations(program *js_ast.AST, tctx *traverse.Ctx) {
	regRef := p.ctx.UnboundRef(tctx, p.options.RefreshOptions.RefreshReg)

	var registrations []js_ast.Stmt
	register := func(loc logger.Loc, ref js_ast.Ref) {
		name := tctx.Symbols.Get(js_ast.FollowSymbols(tctx.Symbols, ref)).OriginalName
		if name == "" || name[0] < 'A' || name[0] > 'Z' {
			return
		}
		registrations = append(registrations, js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{
			Value: js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
				Target: refExpr(tctx, loc, regRef),
				Args:   []js_ast.Expr{refExpr(tctx, loc, ref), stringExpr(loc, name)},
			}},
		}})
	}

	for _, stmt := range program.Stmts {
		switch s := stmt.Data.(type) {
		case *js_ast.SFunction:
			if s.Fn.Name != nil {
				register(stmt.Loc, s.Fn.Name.Ref)
			}
		case *js_ast.SClass:
			if s.Class.Name != nil {
				register(stmt.Loc, s.Class.Name.Ref)
			}
		}
	}

	program.Stmts = append(program.Stmts, registrations...)
}
