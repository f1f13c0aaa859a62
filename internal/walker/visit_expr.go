package walker

import (
	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// visitExpr runs the five-phase pipeline (pre-processing/binding/traversal/
// clean-up/analysis, §4.1) for one expression node: resolve or bind Name
// occurrences, recurse into children in Python's left-to-right evaluation
// order, then dispatch to registered ExprRule hooks.
//
// BooleanTest is dropped at entry unless the node keeps boolean context
// alive (`and`/`or` chains and `not`); the pre-entry flags are restored
// before rule dispatch, so hooks observe the context the node was reached
// in (§4.1 "Boolean-test context", §9 "Boolean-test scoping").
func (e *Engine) visitExpr(expr pyast.Expr) {
	if expr == nil {
		return
	}

	saved := e.flags
	if !preservesBooleanTest(expr) {
		e.flags = e.flags.Without(model.BooleanTest)
	}

	switch n := expr.(type) {
	case *pyast.Name:
		e.visitName(n)

	case *pyast.BoolOp:
		for _, v := range n.Values {
			e.visitExpr(v)
		}

	case *pyast.NamedExpr:
		e.visitExpr(n.Value)
		e.handleStore(n.Target, storeNamedExpr)

	case *pyast.BinOp:
		e.visitExpr(n.Left)
		e.visitExpr(n.Right)

	case *pyast.UnaryOp:
		e.visitExpr(n.Operand)

	case *pyast.Lambda:
		e.visitLambda(n)

	case *pyast.IfExp:
		e.withFlags(model.BooleanTest, func() { e.visitExpr(n.Test) })
		e.visitExpr(n.Body)
		e.visitExpr(n.Orelse)

	case *pyast.Dict:
		for i := range n.Values {
			if n.Keys[i] != nil {
				e.visitExpr(n.Keys[i])
			}
			e.visitExpr(n.Values[i])
		}

	case *pyast.Set:
		for _, elt := range n.Elts {
			e.visitExpr(elt)
		}

	case *pyast.ListComp:
		e.visitComprehensionExpr(n.Gens, func() { e.visitExpr(n.Elt) })
	case *pyast.SetComp:
		e.visitComprehensionExpr(n.Gens, func() { e.visitExpr(n.Elt) })
	case *pyast.GeneratorExp:
		e.visitComprehensionExpr(n.Gens, func() { e.visitExpr(n.Elt) })
	case *pyast.DictComp:
		e.visitComprehensionExpr(n.Gens, func() {
			e.visitExpr(n.Key)
			e.visitExpr(n.Value)
		})

	case *pyast.Await:
		e.visitExpr(n.Value)
	case *pyast.Yield:
		e.visitExpr(n.Value)
	case *pyast.YieldFrom:
		e.visitExpr(n.Value)

	case *pyast.Compare:
		e.visitExpr(n.Left)
		for _, c := range n.Comparators {
			e.visitExpr(c)
		}

	case *pyast.Call:
		e.visitCall(n)

	case *pyast.FormattedValue:
		e.visitExpr(n.Value)
		e.visitExpr(n.FormatSpec)
	case *pyast.JoinedStr:
		e.withFlags(model.FStringContext, func() {
			for _, v := range n.Values {
				e.visitExpr(v)
			}
		})

	case *pyast.Constant:
		// a bare string literal in ordinary expression position is never a
		// forward reference; only visitAnnotation routes Constants to the
		// string-type-definition queue.

	case *pyast.Attribute:
		// `del obj.attr` deletes an attribute, not a name; in every context
		// only the object expression is walked.
		e.visitExpr(n.Value)

	case *pyast.Slice:
		e.visitExpr(n.Lower)
		e.visitExpr(n.Upper)
		e.visitExpr(n.Step)

	case *pyast.Subscript:
		e.visitExpr(n.Value)
		e.withFlags(model.Subscript, func() { e.visitExpr(n.Index) })

	case *pyast.Starred:
		e.visitExpr(n.Value)

	case *pyast.List:
		for _, elt := range n.Elts {
			e.visitExpr(elt)
		}
	case *pyast.Tuple:
		for _, elt := range n.Elts {
			e.visitExpr(elt)
		}
	}

	e.flags = (saved &^ model.LatchMask) | (e.flags & model.LatchMask)

	if e.rules != nil {
		e.rules.DispatchExpr(e, expr)
	}
}

// preservesBooleanTest reports whether descending into expr keeps
// boolean-test context alive: `a and b`, `a or b`, and `not a` pass
// truthiness through to their operands, every other expression ends it.
func preservesBooleanTest(expr pyast.Expr) bool {
	switch n := expr.(type) {
	case *pyast.BoolOp:
		return true
	case *pyast.UnaryOp:
		return n.Op == "not"
	}
	return false
}

// visitName resolves a Load occurrence against the scope chain, records a
// Store as an ordinary Assignment (the fallback for Name nodes reached
// through generic recursion rather than a statement's own target-handling
// path), and routes a Del through the binder's delete path.
//
// A Load that fails to resolve records no Reference (the Arena's invariant
// is that every Reference attaches to a Binding); the occurrence is
// collected on the engine's unresolved list for the post-walk
// unresolved-reference pass instead (§4.4).
func (e *Engine) visitName(n *pyast.Name) {
	switch n.Ctx {
	case pyast.Store:
		e.handleStore(n, storeAssignment)
	case pyast.Del:
		e.handleDelete(n)
	default:
		if id, ok := e.arena.LookupChain(n.Id); ok {
			e.arena.NewReference(id, n.Span(), pyast.Load, e.flags)
			return
		}
		e.unresolved = append(e.unresolved, UnresolvedName{Name: n.Id, Range: n.Span(), Flags: e.flags})
	}
}

// visitCall walks a call's callee and arguments, first giving
// visitTypingSpecialFormCall the chance to route type-expression arguments
// when the callee is a recognized typing special form, whatever the
// surrounding context.
func (e *Engine) visitCall(call *pyast.Call) {
	if fn, ok := call.Func.(*pyast.Name); ok && fn.Id == "locals" {
		e.arena.Scope(e.arena.CurrentScopeID()).UsesLocals = true
	}
	if e.visitTypingSpecialFormCall(call) {
		return
	}
	e.visitExpr(call.Func)
	for _, a := range call.Args {
		e.visitExpr(a)
	}
	for _, kw := range call.Keywords {
		e.visitExpr(kw.Value)
	}
}

// visitLambda walks parameter defaults eagerly in the current scope
// (defaults are evaluated at `def`/`lambda` time in real Python), pushes a
// Lambda scope, binds parameters there (walking any annotations in that
// scope), and defers the body to the lambdas queue (§4.3 "lambdas").
func (e *Engine) visitLambda(n *pyast.Lambda) {
	e.visitArgumentDefaults(n.Args)

	e.arena.PushScope(model.ScopeLambda)
	e.bindArguments(n.Args)
	e.deferLambda(n)
	e.arena.PopScope()
}

// visitArgumentDefaults walks every default-value expression of args in
// the enclosing (not the function's own) scope.
func (e *Engine) visitArgumentDefaults(args *pyast.Arguments) {
	if args == nil {
		return
	}
	for _, d := range args.Defaults {
		e.visitExpr(d)
	}
	for _, d := range args.KwDefaults {
		e.visitExpr(d)
	}
}

// bindArguments binds every parameter name as an Argument binding in the
// current (already-pushed) scope, and walks each parameter's annotation as
// runtime-evaluated (annotations execute at def time unless `__future__`
// annotations defers them, §4.1).
func (e *Engine) bindArguments(args *pyast.Arguments) {
	if args == nil {
		return
	}
	bind := func(a *pyast.Arg) {
		if a == nil {
			return
		}
		e.visitAnnotation(a.Annotation, annotationRuntimeEvaluated)
		e.arena.AddBinding(a.Name, a.Range, model.KindArgument, 0)
	}
	for _, a := range args.Posonly {
		bind(a)
	}
	for _, a := range args.Args {
		bind(a)
	}
	bind(args.Vararg)
	for _, a := range args.KwOnly {
		bind(a)
	}
	bind(args.Kwarg)
}

// visitComprehensionExpr implements the generator/comprehension
// evaluation-order rule (§4.1, Testable Property P3): the first
// generator's iterable is walked in the *outer* scope, then a Generator
// scope is pushed for everything else (the first generator's target and
// `if`s, every subsequent generator in full, and the element/key/value
// expression).
func (e *Engine) visitComprehensionExpr(gens []*pyast.Comprehension, visitElt func()) {
	if len(gens) == 0 {
		visitElt()
		return
	}

	e.visitExpr(gens[0].Iter)

	e.arena.PushScope(model.ScopeGenerator)
	e.bindComprehensionTarget(gens[0].Target)
	for _, cond := range gens[0].Ifs {
		e.visitExpr(cond)
	}

	for _, gen := range gens[1:] {
		e.visitExpr(gen.Iter)
		e.bindComprehensionTarget(gen.Target)
		for _, cond := range gen.Ifs {
			e.visitExpr(cond)
		}
	}

	visitElt()
	e.arena.PopScope()
}

// bindComprehensionTarget binds every Name leaf of a `for` clause's target
// (a bare name, or a tuple/list unpacking it) as a ComprehensionVar.
func (e *Engine) bindComprehensionTarget(target pyast.Expr) {
	names, _ := collectTargetNames(target)
	for _, n := range names {
		e.handleStore(n, storeComprehension)
	}
}
