package runtime

// The runtime library contains the helper functions injected by the lowering
// passes. There is no parser in this module, so each helper is constructed
// directly as an AST value; the canonical JavaScript source appears as a
// comment above each constructor.
//
// Helper bodies deliberately reference only their own parameters and global
// intrinsics, which makes them safe to inject into any program prefix.

import (
	"github.com/arborjs/arbor/internal/js_ast"
)

// Builder supplies the two symbol factories helper construction needs: fresh
// local symbols for parameters and references to global intrinsics.
type Builder struct {
	NewSymbol func(name string) js_ast.Ref
	GlobalRef func(name string) js_ast.Expr
}

// HelperNames lists every helper in this library
func HelperNames() []string {
	return []string{
		"__pow",
		"__publicField",
		"__spreadValues",
		"__spreadProps",
		"__rest",
		"__async",
		"__forAwait",
	}
}

// Build constructs the value to bind a helper name to
func (b *Builder) Build(name string) (js_ast.Expr, bool) {
	switch name {
	case "__pow":
		return b.buildPow(), true
	case "__publicField":
		return b.buildPublicField(), true
	case "__spreadValues":
		return b.buildSpreadValues(), true
	case "__spreadProps":
		return b.buildSpreadProps(), true
	case "__rest":
		return b.buildRest(), true
	case "__async":
		return b.buildAsync(), true
	case "__forAwait":
		return b.buildForAwait(), true
	}
	return js_ast.Expr{}, false
}

// var __pow = Math.pow;
func (b *Builder) buildPow() js_ast.Expr {
	return dot(b.GlobalRef("Math"), "pow")
}

// var __publicField = (obj, key, value) => (Object.defineProperty(obj, key, {
//   enumerable: true, configurable: true, writable: true, value
// }), value);
func (b *Builder) buildPublicField() js_ast.Expr {
	obj := b.NewSymbol("obj")
	key := b.NewSymbol("key")
	value := b.NewSymbol("value")

	descriptor := object(
		prop("enumerable", boolean(true)),
		prop("configurable", boolean(true)),
		prop("writable", boolean(true)),
		prop("value", ident(value)),
	)
	define := call(dot(b.GlobalRef("Object"), "defineProperty"),
		ident(obj), ident(key), descriptor)

	return exprArrow(params(obj, key, value), comma(define, ident(value)))
}

// var __spreadValues = (a, b) => Object.assign(a, b);
func (b *Builder) buildSpreadValues() js_ast.Expr {
	a := b.NewSymbol("a")
	bb := b.NewSymbol("b")
	return exprArrow(params(a, bb),
		call(dot(b.GlobalRef("Object"), "assign"), ident(a), ident(bb)))
}

// var __spreadProps = (a, b) => Object.defineProperties(a, Object.getOwnPropertyDescriptors(b));
func (b *Builder) buildSpreadProps() js_ast.Expr {
	a := b.NewSymbol("a")
	bb := b.NewSymbol("b")
	objectRef := b.GlobalRef("Object")
	return exprArrow(params(a, bb),
		call(dot(objectRef, "defineProperties"), ident(a),
			call(dot(b.GlobalRef("Object"), "getOwnPropertyDescriptors"), ident(bb))))
}

// var __rest = (source, exclude) => {
//   var target = {};
//   for (var prop in source)
//     if (Object.prototype.hasOwnProperty.call(source, prop) && exclude.indexOf(prop) < 0)
//       target[prop] = source[prop];
//   return target;
// };
func (b *Builder) buildRest() js_ast.Expr {
	source := b.NewSymbol("source")
	exclude := b.NewSymbol("exclude")
	target := b.NewSymbol("target")
	propRef := b.NewSymbol("prop")

	hasOwn := call(
		dot(dot(dot(b.GlobalRef("Object"), "prototype"), "hasOwnProperty"), "call"),
		ident(source), ident(propRef))
	notExcluded := binary(js_ast.BinOpLt,
		call(dot(ident(exclude), "indexOf"), ident(propRef)),
		number(0))
	copyProp := js_ast.AssignStmt(
		index(ident(target), ident(propRef)),
		index(ident(source), ident(propRef)))

	loop := js_ast.Stmt{Data: &js_ast.SForIn{
		Init: js_ast.Stmt{Data: &js_ast.SLocal{
			Kind:  js_ast.LocalVar,
			Decls: []js_ast.Decl{{Binding: binding(propRef)}},
		}},
		Value: ident(source),
		Body: js_ast.Stmt{Data: &js_ast.SIf{
			Test: binary(js_ast.BinOpLogicalAnd, hasOwn, notExcluded),
			Yes:  copyProp,
		}},
	}}

	return arrow(params(source, exclude),
		varStmt(target, object()),
		loop,
		ret(ident(target)),
	)
}

// var __async = (__this, __arguments, generator) => {
//   return new Promise((resolve, reject) => {
//     var fulfilled = (value) => { try { step(generator.next(value)) } catch (e) { reject(e) } };
//     var rejected = (value) => { try { step(generator.throw(value)) } catch (e) { reject(e) } };
//     var step = (x) => x.done ? resolve(x.value) : Promise.resolve(x.value).then(fulfilled, rejected);
//     generator = generator.apply(__this, __arguments);
//     step(generator.next());
//   });
// };
func (b *Builder) buildAsync() js_ast.Expr {
	thisArg := b.NewSymbol("__this")
	argumentsArg := b.NewSymbol("__arguments")
	generator := b.NewSymbol("generator")
	resolve := b.NewSymbol("resolve")
	reject := b.NewSymbol("reject")
	fulfilled := b.NewSymbol("fulfilled")
	rejected := b.NewSymbol("rejected")
	step := b.NewSymbol("step")

	stepBranch := func(method string) js_ast.Expr {
		value := b.NewSymbol("value")
		err := b.NewSymbol("e")
		tryStep := js_ast.Stmt{Data: &js_ast.STry{
			Block: js_ast.SBlock{Stmts: []js_ast.Stmt{
				exprStmt(call(ident(step), call(dot(ident(generator), method), ident(value)))),
			}},
			Catch: &js_ast.Catch{
				BindingOrNil: binding(err),
				Block: js_ast.SBlock{Stmts: []js_ast.Stmt{
					exprStmt(call(ident(reject), ident(err))),
				}},
			},
		}}
		return arrow(params(value), tryStep)
	}

	x := b.NewSymbol("x")
	stepFn := exprArrow(params(x), conditional(
		dot(ident(x), "done"),
		call(ident(resolve), dot(ident(x), "value")),
		call(dot(call(dot(b.GlobalRef("Promise"), "resolve"), dot(ident(x), "value")), "then"),
			ident(fulfilled), ident(rejected)),
	))

	executor := arrow(params(resolve, reject),
		varStmt(fulfilled, stepBranch("next")),
		varStmt(rejected, stepBranch("throw")),
		varStmt(step, stepFn),
		js_ast.AssignStmt(ident(generator),
			call(dot(ident(generator), "apply"), ident(thisArg), ident(argumentsArg))),
		exprStmt(call(ident(step), call(dot(ident(generator), "next")))),
	)

	promise := js_ast.Expr{Data: &js_ast.ENew{
		Target: b.GlobalRef("Promise"),
		Args:   []js_ast.Expr{executor},
	}}
	return arrow(params(thisArg, argumentsArg, generator), ret(promise))
}

// var __forAwait = (obj) => {
//   var method = obj[Symbol.asyncIterator];
//   return method ? method.call(obj) : obj[Symbol.iterator]();
// };
func (b *Builder) buildForAwait() js_ast.Expr {
	obj := b.NewSymbol("obj")
	method := b.NewSymbol("method")

	return arrow(params(obj),
		varStmt(method, index(ident(obj), dot(b.GlobalRef("Symbol"), "asyncIterator"))),
		ret(conditional(
			ident(method),
			call(dot(ident(method), "call"), ident(obj)),
			call(index(ident(obj), dot(b.GlobalRef("Symbol"), "iterator"))),
		)),
	)
}

/* A tiny construction vocabulary so the helpers above read like the
   JavaScript they produce */

func ident(ref js_ast.Ref) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EIdentifier{Ref: ref}}
}

func binding(ref js_ast.Ref) js_ast.Binding {
	return js_ast.Binding{Data: &js_ast.BIdentifier{Ref: ref}}
}

func number(value float64) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.ENumber{Value: value}}
}

func boolean(value bool) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EBoolean{Value: value}}
}

func dot(target js_ast.Expr, name string) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EDot{Target: target, Name: name}}
}

func index(target js_ast.Expr, i js_ast.Expr) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EIndex{Target: target, Index: i}}
}

func call(target js_ast.Expr, args ...js_ast.Expr) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.ECall{Target: target, Args: args}}
}

func binary(op js_ast.OpCode, left js_ast.Expr, right js_ast.Expr) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EBinary{Op: op, Left: left, Right: right}}
}

func comma(first js_ast.Expr, rest ...js_ast.Expr) js_ast.Expr {
	result := first
	for _, expr := range rest {
		result = binary(js_ast.BinOpComma, result, expr)
	}
	return result
}

func conditional(test js_ast.Expr, yes js_ast.Expr, no js_ast.Expr) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EIf{Test: test, Yes: yes, No: no}}
}

func object(properties ...js_ast.Property) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EObject{Properties: properties}}
}

func prop(name string, value js_ast.Expr) js_ast.Property {
	return js_ast.Property{
		Key:        js_ast.Expr{Data: &js_ast.EString{Value: name}},
		ValueOrNil: value,
	}
}

func params(refs ...js_ast.Ref) []js_ast.Arg {
	args := make([]js_ast.Arg, len(refs))
	for i, ref := range refs {
		args[i] = js_ast.Arg{Binding: binding(ref)}
	}
	return args
}

func arrow(args []js_ast.Arg, stmts ...js_ast.Stmt) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EArrow{
		Args: args,
		Body: js_ast.FnBody{Block: js_ast.SBlock{Stmts: stmts}},
	}}
}

func exprArrow(args []js_ast.Arg, value js_ast.Expr) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EArrow{
		Args:       args,
		Body:       js_ast.FnBody{Block: js_ast.SBlock{Stmts: []js_ast.Stmt{ret(value)}}},
		PreferExpr: true,
	}}
}

func ret(value js_ast.Expr) js_ast.Stmt {
	return js_ast.Stmt{Data: &js_ast.SReturn{ValueOrNil: value}}
}

func exprStmt(value js_ast.Expr) js_ast.Stmt {
	return js_ast.Stmt{Data: &js_ast.SExpr{Value: value}}
}

func varStmt(ref js_ast.Ref, init js_ast.Expr) js_ast.Stmt {
	return js_ast.Stmt{Data: &js_ast.SLocal{
		Kind:  js_ast.LocalVar,
		Decls: []js_ast.Decl{{Binding: binding(ref), ValueOrNil: init}},
	}}
}
