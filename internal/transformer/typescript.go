package transformer

import (
	"strings"

	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/logger"
	"github.com/arborjs/arbor/internal/traverse"
)

// The TypeScript pass removes type-only syntax so the result is valid
// ECMAScript, and lowers the TypeScript constructs that do have runtime
// semantics: enums, namespaces, "export =" assignments, and constructor
// parameter properties.
type typeScriptPass struct {
	ctx     *TransformCtx
	options TypeScriptOptions
}

func newTypeScriptPass(ctx *TransformCtx, options TypeScriptOptions) *typeScriptPass {
	return &typeScriptPass{ctx: ctx, options: options}
}

// Enum and namespace declarations expand to more than one statement, so they
// are lowered at the slice level before descent. The walker then visits the
// lowered output, which lets the other passes in this same traversal see it.
func (p *typeScriptPass) enterStatements(stmts *[]js_ast.Stmt, tctx *traverse.Ctx) {
	var result []js_ast.Stmt
	changed := false

	for _, stmt := range *stmts {
		switch s := stmt.Data.(type) {
		case *js_ast.SEnum:
			result = append(result, p.lowerEnum(stmt.Loc, s, tctx))
			changed = true
			continue

		case *js_ast.SNamespace:
			result = append(result, p.lowerNamespace(stmt.Loc, s, tctx)...)
			changed = true
			continue

		default:
			result = append(result, stmt)
		}
	}

	if changed {
		*stmts = result
	}
}

func (p *typeScriptPass) enterStatement(stmt *js_ast.Stmt, tctx *traverse.Ctx) {
	switch s := stmt.Data.(type) {
	case *js_ast.SLocal:
		if s.IsTypeScriptDeclare {
			stmt.Data = js_ast.STypeScriptShared
		}

	case *js_ast.SFunction:
		if s.IsTypeScriptDeclare {
			stmt.Data = js_ast.STypeScriptShared
		}

	case *js_ast.SClass:
		if s.IsTypeScriptDeclare {
			stmt.Data = js_ast.STypeScriptShared
		}

	case *js_ast.SImport:
		p.stripImport(stmt, s, tctx)

	case *js_ast.SExportClause:
		items := s.Items[:0]
		for _, item := range s.Items {
			if !item.IsTypeOnly {
				items = append(items, item)
			}
		}
		s.Items = items

	case *js_ast.SExportFrom:
		items := s.Items[:0]
		for _, item := range s.Items {
			if !item.IsTypeOnly {
				items = append(items, item)
			}
		}
		s.Items = items
		p.rewriteImportExtension(tctx, s.ImportRecordIndex)

	case *js_ast.SExportStar:
		p.rewriteImportExtension(tctx, s.ImportRecordIndex)

	case *js_ast.SExportEquals:
		p.lowerExportEquals(stmt, s, tctx)
	}
}

// Remove "import type" statements and type-only specifiers. Unless the user
// opted out, value imports whose bindings are completely unused are removed
// as well because they are probably type-only imports.
func (p *typeScriptPass) stripImport(stmt *js_ast.Stmt, s *js_ast.SImport, tctx *traverse.Ctx) {
	p.rewriteImportExtension(tctx, s.ImportRecordIndex)

	if s.IsTypeOnly {
		stmt.Data = js_ast.STypeScriptShared
		return
	}

	hadBindings := s.DefaultName != nil || s.StarNameLoc != nil || s.Items != nil

	keepUnused := p.options.OnlyRemoveTypeImports
	isUsed := func(ref js_ast.Ref) bool {
		return keepUnused || tctx.Symbols.Get(js_ast.FollowSymbols(tctx.Symbols, ref)).UseCountEstimate > 0
	}

	if s.DefaultName != nil && !isUsed(s.DefaultName.Ref) {
		s.DefaultName = nil
	}
	if s.StarNameLoc != nil && !isUsed(s.NamespaceRef) {
		s.StarNameLoc = nil
	}
	if s.Items != nil {
		items := (*s.Items)[:0]
		for _, item := range *s.Items {
			if !item.IsTypeOnly && isUsed(item.Name.Ref) {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			s.Items = nil
		} else {
			*s.Items = items
		}
	}

	// "import 'path'" side-effect imports are always kept. An import that had
	// bindings and lost all of them is elided entirely.
	if hadBindings && s.DefaultName == nil && s.StarNameLoc == nil && s.Items == nil {
		stmt.Data = js_ast.STypeScriptShared
	}
}

var importExtensionRewrites = map[string]string{
	".ts":  ".js",
	".tsx": ".js",
	".mts": ".mjs",
	".cts": ".cjs",
}

func (p *typeScriptPass) rewriteImportExtension(tctx *traverse.Ctx, importRecordIndex uint32) {
	if p.options.RewriteImportExtensions == RewriteExtensionsNone {
		return
	}
	records := tctx.Program.ImportRecords
	if importRecordIndex >= uint32(len(records)) {
		return
	}
	record := &records[importRecordIndex]
	path := record.Path.Text
	if !strings.HasPrefix(path, "./") && !strings.HasPrefix(path, "../") {
		return
	}
	for old, replacement := range importExtensionRewrites {
		if strings.HasSuffix(path, old) {
			switch p.options.RewriteImportExtensions {
			case RewriteExtensionsRewrite:
				record.Path.Text = path[:len(path)-len(old)] + replacement
			case RewriteExtensionsRemove:
				record.Path.Text = path[:len(path)-len(old)]
			}
			return
		}
	}
}

// "export = X" is TypeScript's CommonJS escape hatch. It lowers to
// "module.exports = X" when targeting CommonJS and has no ES module
// equivalent.
func (p *typeScriptPass) lowerExportEquals(stmt *js_ast.Stmt, s *js_ast.SExportEquals, tctx *traverse.Ctx) {
	switch p.ctx.module {
	case ModuleCommonJS:
		moduleRef := p.ctx.UnboundRef(tctx, "module")
		stmt.Data = &js_ast.SExpr{Value: js_ast.Assign(
			dotExpr(refExpr(tctx, stmt.Loc, moduleRef), "exports", stmt.Loc),
			s.Value,
		)}

	case ModuleESModule:
		p.ctx.AddError(stmt.Loc, "The TypeScript \"export =\" syntax cannot be used with the \"esm\" module format")
		stmt.Data = js_ast.STypeScriptShared
	}
}

// Lowers "enum Foo { A, B = 5, C = 'x' }" to a runtime initializer:
//
//	var Foo = ((Foo) => {
//	  Foo[Foo["A"] = 0] = "A";
//	  Foo[Foo["B"] = 5] = "B";
//	  Foo["C"] = "x";
//	  return Foo;
//	})(Foo || {});
//
// Repeated declarations of the same enum merge because the initializer picks
// up the existing object.
func (p *typeScriptPass) lowerEnum(loc logger.Loc, s *js_ast.SEnum, tctx *traverse.Ctx) js_ast.Stmt {
	var body []js_ast.Stmt

	nextValue := float64(0)
	hasNextValue := true

	for _, value := range s.Values {
		arg := refExpr(tctx, value.Loc, s.Arg)
		member := js_ast.Expr{Loc: value.Loc, Data: &js_ast.EIndex{
			Target: arg,
			Index:  stringExpr(value.Loc, value.Name),
		}}

		var init js_ast.Expr
		isString := false
		switch v := value.ValueOrNil.Data.(type) {
		case nil:
			if !hasNextValue {
				p.ctx.AddError(value.Loc, "Enum member must have an initializer")
				continue
			}
			init = js_ast.Expr{Loc: value.Loc, Data: &js_ast.ENumber{Value: nextValue}}
			nextValue++

		case *js_ast.ENumber:
			init = value.ValueOrNil
			nextValue = v.Value + 1
			hasNextValue = true

		case *js_ast.EString:
			init = value.ValueOrNil
			isString = true

		default:
			init = value.ValueOrNil
			hasNextValue = false
		}

		assign := js_ast.Assign(member, init)
		if isString {
			// String members have no reverse mapping
			body = append(body, js_ast.Stmt{Loc: value.Loc, Data: &js_ast.SExpr{Value: assign}})
			continue
		}
		reverse := js_ast.Assign(
			js_ast.Expr{Loc: value.Loc, Data: &js_ast.EIndex{
				Target: refExpr(tctx, value.Loc, s.Arg),
				Index:  assign,
			}},
			stringExpr(value.Loc, value.Name),
		)
		body = append(body, js_ast.Stmt{Loc: value.Loc, Data: &js_ast.SExpr{Value: reverse}})
	}

	body = append(body, js_ast.Stmt{Loc: loc, Data: &js_ast.SReturn{
		ValueOrNil: refExpr(tctx, loc, s.Arg),
	}})

	init := js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: js_ast.Expr{Loc: loc, Data: &js_ast.EArrow{
			Args: []js_ast.Arg{{Binding: js_ast.Binding{Loc: s.Name.Loc, Data: &js_ast.BIdentifier{Ref: s.Arg}}}},
			Body: js_ast.FnBody{Loc: loc, Block: js_ast.SBlock{Stmts: body}},
		}},
		Args: []js_ast.Expr{{Loc: loc, Data: &js_ast.EBinary{
			Op:    js_ast.BinOpLogicalOr,
			Left:  refExpr(tctx, loc, s.Name.Ref),
			Right: js_ast.Expr{Loc: loc, Data: &js_ast.EObject{}},
		}}},
	}}

	return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{
		Kind:     js_ast.LocalVar,
		IsExport: s.IsExport,
		Decls: []js_ast.Decl{{
			Binding:    js_ast.Binding{Loc: s.Name.Loc, Data: &js_ast.BIdentifier{Ref: s.Name.Ref}},
			ValueOrNil: init,
		}},
	}}
}

// Lowers "namespace A { export function f() {} }" to:
//
//	var A;
//	((A) => {
//	  function f() {}
//	  A.f = f;
//	})(A || (A = {}));
//
// Exported members become assignments onto the namespace argument after
// their declaration. Nested namespaces are lowered when the walker descends
// into the synthesized body.
func (p *typeScriptPass) lowerNamespace(loc logger.Loc, s *js_ast.SNamespace, tctx *traverse.Ctx) []js_ast.Stmt {
	var body []js_ast.Stmt

	for _, stmt := range s.Stmts {
		exported := p.exportedRefs(stmt)
		body = append(body, stmt)
		for _, export := range exported {
			name := tctx.Symbols.Get(js_ast.FollowSymbols(tctx.Symbols, export)).OriginalName
			body = append(body, js_ast.AssignStmt(
				dotExpr(refExpr(tctx, stmt.Loc, s.Arg), name, stmt.Loc),
				refExpr(tctx, stmt.Loc, export),
			))
		}
	}

	decl := js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{
		Kind:     js_ast.LocalVar,
		IsExport: s.IsExport,
		Decls: []js_ast.Decl{{
			Binding: js_ast.Binding{Loc: s.Name.Loc, Data: &js_ast.BIdentifier{Ref: s.Name.Ref}},
		}},
	}}

	call := js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{
		DoesNotAffectTreeShaking: true,
		Value: js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
			Target: js_ast.Expr{Loc: loc, Data: &js_ast.EArrow{
				Args: []js_ast.Arg{{Binding: js_ast.Binding{Loc: s.Name.Loc, Data: &js_ast.BIdentifier{Ref: s.Arg}}}},
				Body: js_ast.FnBody{Loc: loc, Block: js_ast.SBlock{Stmts: body}},
			}},
			Args: []js_ast.Expr{{Loc: loc, Data: &js_ast.EBinary{
				Op:   js_ast.BinOpLogicalOr,
				Left: refExpr(tctx, loc, s.Name.Ref),
				Right: js_ast.Assign(
					refExpr(tctx, loc, s.Name.Ref),
					js_ast.Expr{Loc: loc, Data: &js_ast.EObject{}},
				),
			}}},
		}},
	}}

	return []js_ast.Stmt{decl, call}
}

// Collects the refs a namespace member statement exports, clearing the
// export flag in the process (the lowered body is plain statements).
func (p *typeScriptPass) exportedRefs(stmt js_ast.Stmt) []js_ast.Ref {
	switch s := stmt.Data.(type) {
	case *js_ast.SFunction:
		if s.IsExport && s.Fn.Name != nil {
			s.IsExport = false
			return []js_ast.Ref{s.Fn.Name.Ref}
		}

	case *js_ast.SClass:
		if s.IsExport && s.Class.Name != nil {
			s.IsExport = false
			return []js_ast.Ref{s.Class.Name.Ref}
		}

	case *js_ast.SLocal:
		if s.IsExport {
			s.IsExport = false
			var refs []js_ast.Ref
			for _, decl := range s.Decls {
				if id, ok := decl.Binding.Data.(*js_ast.BIdentifier); ok {
					refs = append(refs, id.Ref)
				}
			}
			return refs
		}

	case *js_ast.SEnum:
		if s.IsExport {
			s.IsExport = false
			return []js_ast.Ref{s.Name.Ref}
		}

	case *js_ast.SNamespace:
		if s.IsExport {
			s.IsExport = false
			return []js_ast.Ref{s.Name.Ref}
		}
	}
	return nil
}

// Drops type-only class members and expands constructor parameter properties
// into field initializations at the top of the constructor body.
func (p *typeScriptPass) enterClass(class *js_ast.Class, tctx *traverse.Ctx) {
	properties := class.Properties[:0]
	for _, property := range class.Properties {
		// "declare x: number" and abstract or overload members have no
		// runtime value
		if property.Kind == js_ast.PropertyDeclare {
			continue
		}
		if property.IsMethod && property.ValueOrNil.Data == nil {
			continue
		}
		properties = append(properties, property)
	}
	class.Properties = properties

	for i := range class.Properties {
		property := &class.Properties[i]
		if !property.IsMethod {
			continue
		}
		key, ok := property.Key.Data.(*js_ast.EString)
		if !ok || key.Value != "constructor" {
			continue
		}
		fn, ok := property.ValueOrNil.Data.(*js_ast.EFunction)
		if !ok {
			continue
		}
		p.expandParameterProperties(&fn.Fn, class, tctx)
		break
	}
}

// "constructor(public x: boolean) {}" assigns each parameter property to the
// matching instance field. The assignments go after a leading "super()" call
// when the class has a superclass.
func (p *typeScriptPass) expandParameterProperties(fn *js_ast.Fn, class *js_ast.Class, tctx *traverse.Ctx) {
	var inits []js_ast.Stmt

	for _, arg := range fn.Args {
		if !arg.IsTypeScriptCtorField {
			continue
		}
		id, ok := arg.Binding.Data.(*js_ast.BIdentifier)
		if !ok {
			p.ctx.AddError(arg.Binding.Loc, "Parameter properties cannot be used with binding patterns")
			continue
		}
		name := tctx.Symbols.Get(js_ast.FollowSymbols(tctx.Symbols, id.Ref)).OriginalName
		inits = append(inits, js_ast.AssignStmt(
			dotExpr(js_ast.Expr{Loc: arg.Binding.Loc, Data: js_ast.EThisShared}, name, arg.Binding.Loc),
			refExpr(tctx, arg.Binding.Loc, id.Ref),
		))
	}

	if len(inits) == 0 {
		return
	}

	stmts := fn.Body.Block.Stmts
	insertAt := 0
	if class.ExtendsOrNil.Data != nil && len(stmts) > 0 {
		if expr, ok := stmts[0].Data.(*js_ast.SExpr); ok {
			if call, ok := expr.Value.Data.(*js_ast.ECall); ok {
				if _, ok := call.Target.Data.(*js_ast.ESuper); ok {
					insertAt = 1
				}
			}
		}
	}

	result := make([]js_ast.Stmt, 0, len(stmts)+len(inits))
	result = append(result, stmts[:insertAt]...)
	result = append(result, inits...)
	result = append(result, stmts[insertAt:]...)
	fn.Body.Block.Stmts = result
}
