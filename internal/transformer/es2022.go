package transformer

import (
	"github.com/arborjs/arbor/internal/compat"
	"github.com/arborjs/arbor/internal/js_ast"
	"github.com/arborjs/arbor/internal/traverse"
)

// ES2022: class fields and static blocks.
//
// Instance fields move into the constructor, static fields and static blocks
// become statements after the class declaration. Field semantics honor the
// SetPublicClassFields assumption: plain assignments when granted, the
// "__publicField" define helper otherwise.
type es2022Pass struct {
	ctx *TransformCtx
}

// Class statements are lowered at the slice level because static members
// expand to statements after the declaration. Lowering happens on enter so
// the rewritten output is visited by the rest of this traversal.
func (p *es2022Pass) enterStatements(stmts *[]js_ast.Stmt, tctx *traverse.Ctx) {
	var result []js_ast.Stmt
	changed := false

	for i := range *stmts {
		stmt := (*stmts)[i]
		class := extractClassFromStmt(stmt)
		if class == nil || !p.classNeedsLowering(class) {
			result = append(result, stmt)
			continue
		}

		if class.Name == nil {
			// "export default class { static x = 1 }" has no binding to hang
			// the static initializers on, so synthesize one
			ref := tctx.NewSymbol(js_ast.SymbolClass, "_default")
			class.Name = &js_ast.LocRef{Loc: stmt.Loc, Ref: ref}
		}

		p.lowerInstanceFields(class, tctx)
		statics := p.lowerStaticMembers(class, class.Name.Ref, tctx)

		result = append(result, stmt)
		result = append(result, statics...)
		if len(statics) > 0 {
			changed = true
		}
	}

	if changed {
		*stmts = result
	}
}

// Class expressions get their instance fields lowered in place. Static
// members in class expressions would need a temporary and a comma sequence;
// that form is rare and is reported instead.
func (p *es2022Pass) exitExpression(expr *js_ast.Expr, tctx *traverse.Ctx) {
	class, ok := expr.Data.(*js_ast.EClass)
	if !ok || !p.classNeedsLowering(&class.Class) {
		return
	}

	p.lowerInstanceFields(&class.Class, tctx)

	for _, property := range class.Class.Properties {
		isStaticField := property.IsStatic && !property.IsMethod && property.Kind == js_ast.PropertyNormal
		if property.ClassStaticBlock != nil && p.ctx.IsUnsupported(compat.ClassStaticBlocks) {
			p.ctx.AddError(property.ClassStaticBlock.Loc, "Static blocks in class expressions are not lowered")
			return
		}
		if isStaticField && p.ctx.IsUnsupported(compat.ClassStaticField) {
			p.ctx.AddError(property.Key.Loc, "Static fields in class expressions are not lowered")
			return
		}
	}
}

func extractClassFromStmt(stmt js_ast.Stmt) *js_ast.Class {
	switch s := stmt.Data.(type) {
	case *js_ast.SClass:
		return &s.Class
	case *js_ast.SExportDefault:
		if class, ok := s.Value.Data.(*js_ast.SClass); ok {
			return &class.Class
		}
	}
	return nil
}

func (p *es2022Pass) classNeedsLowering(class *js_ast.Class) bool {
	for _, property := range class.Properties {
		if property.ClassStaticBlock != nil {
			if p.ctx.IsUnsupported(compat.ClassStaticBlocks) {
				return true
			}
			continue
		}
		if property.IsMethod || property.Kind != js_ast.PropertyNormal {
			continue
		}
		if _, isPrivate := property.Key.Data.(*js_ast.EPrivateIdentifier); isPrivate {
			// Private fields have their own feature set and are out of scope
			// for this pass
			continue
		}
		if property.IsStatic && p.ctx.IsUnsupported(compat.ClassStaticField) {
			return true
		}
		if !property.IsStatic && p.ctx.IsUnsupported(compat.ClassField) {
			return true
		}
	}
	return false
}

func (p *es2022Pass) isLoweredField(property js_ast.Property) bool {
	if property.ClassStaticBlock != nil || property.IsMethod || property.Kind != js_ast.PropertyNormal {
		return false
	}
	if _, isPrivate := property.Key.Data.(*js_ast.EPrivateIdentifier); isPrivate {
		return false
	}
	if property.IsStatic {
		return p.ctx.IsUnsupported(compat.ClassStaticField)
	}
	return p.ctx.IsUnsupported(compat.ClassField)
}

// Removes instance fields from the class body and assigns them at the top of
// the constructor, after a leading "super()" call for derived classes. A
// constructor is synthesized when the class has none.
func (p *es2022Pass) lowerInstanceFields(class *js_ast.Class, tctx *traverse.Ctx) {
	var inits []js_ast.Stmt
	properties := class.Properties[:0]

	for _, property := range class.Properties {
		if !p.isLoweredField(property) || property.IsStatic {
			properties = append(properties, property)
			continue
		}
		this := js_ast.Expr{Loc: property.Key.Loc, Data: js_ast.EThisShared}
		inits = append(inits, js_ast.Stmt{Loc: property.Key.Loc, Data: &js_ast.SExpr{
			Value: p.fieldInit(this, property, tctx),
		}})
	}
	class.Properties = properties

	if len(inits) == 0 {
		return
	}

	ctor := p.findConstructor(class)
	if ctor == nil {
		ctor = p.synthesizeConstructor(class, tctx)
	}

	stmts := ctor.Body.Block.Stmts
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
	ctor.Body.Block.Stmts = result
}

// Static fields become assignments onto the class binding after the
// declaration; static blocks run in order between them with "this" bound to
// the class.
func (p *es2022Pass) lowerStaticMembers(class *js_ast.Class, nameRef js_ast.Ref, tctx *traverse.Ctx) []js_ast.Stmt {
	var statics []js_ast.Stmt
	properties := class.Properties[:0]

	for _, property := range class.Properties {
		if property.ClassStaticBlock != nil && p.ctx.IsUnsupported(compat.ClassStaticBlocks) {
			loc := property.ClassStaticBlock.Loc
			fn := js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: js_ast.Fn{
				ArgumentsRef: js_ast.InvalidRef,
				Body:         js_ast.FnBody{Loc: loc, Block: property.ClassStaticBlock.Block},
			}}}
			statics = append(statics, js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{
				Value: js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
					Target: dotExpr(fn, "call", loc),
					Args:   []js_ast.Expr{refExpr(tctx, loc, nameRef)},
				}},
			}})
			continue
		}
		if !p.isLoweredField(property) || !property.IsStatic {
			properties = append(properties, property)
			continue
		}
		target := refExpr(tctx, property.Key.Loc, nameRef)
		statics = append(statics, js_ast.Stmt{Loc: property.Key.Loc, Data: &js_ast.SExpr{
			Value: p.fieldInit(target, property, tctx),
		}})
	}
	class.Properties = properties
	return statics
}

// One field initialization: "target.key = init" with the set-semantics
// assumption, "__publicField(target, 'key', init)" without it
func (p *es2022Pass) fieldInit(target js_ast.Expr, property js_ast.Property, tctx *traverse.Ctx) js_ast.Expr {
	loc := property.Key.Loc
	init := property.InitializerOrNil
	if init.Data == nil {
		init = void0(loc)
	}

	if p.ctx.assumptions.SetPublicClassFields {
		var member js_ast.Expr
		if key, ok := property.Key.Data.(*js_ast.EString); ok && !property.IsComputed {
			member = dotExpr(target, key.Value, loc)
		} else {
			member = js_ast.Expr{Loc: loc, Data: &js_ast.EIndex{Target: target, Index: property.Key}}
		}
		return js_ast.Assign(member, init)
	}

	return p.ctx.CallRuntime(tctx, loc, "__publicField", []js_ast.Expr{target, property.Key, init})
}

func (p *es2022Pass) findConstructor(class *js_ast.Class) *js_ast.Fn {
	for i := range class.Properties {
		property := &class.Properties[i]
		if !property.IsMethod || property.IsComputed {
			continue
		}
		if key, ok := property.Key.Data.(*js_ast.EString); ok && key.Value == "constructor" {
			if fn, ok := property.ValueOrNil.Data.(*js_ast.EFunction); ok {
				return &fn.Fn
			}
		}
	}
	return nil
}

// "constructor() { super(...arguments) }" for derived classes, an empty
// constructor otherwise
func (p *es2022Pass) synthesizeConstructor(class *js_ast.Class, tctx *traverse.Ctx) *js_ast.Fn {
	loc := class.BodyLoc

	var stmts []js_ast.Stmt
	if class.ExtendsOrNil.Data != nil {
		args := refExpr(tctx, loc, p.ctx.UnboundRef(tctx, "arguments"))
		stmts = append(stmts, js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{
			Value: js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
				Target: js_ast.Expr{Loc: loc, Data: js_ast.ESuperShared},
				Args:   []js_ast.Expr{{Loc: loc, Data: &js_ast.ESpread{Value: args}}},
			}},
		}})
	}

	fn := &js_ast.EFunction{Fn: js_ast.Fn{
		ArgumentsRef: js_ast.InvalidRef,
		Body:         js_ast.FnBody{Loc: loc, Block: js_ast.SBlock{Stmts: stmts}},
	}}

	// The synthesized constructor goes before the other members
	class.Properties = append([]js_ast.Property{{
		Key:        stringExpr(loc, "constructor"),
		ValueOrNil: js_ast.Expr{Loc: loc, Data: fn},
		IsMethod:   true,
	}}, class.Properties...)

	return &fn.Fn
}
