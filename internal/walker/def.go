package walker

import (
	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// pushTypeParamScope pushes a TypeParam scope and binds each PEP 695 type
// parameter when params is non-empty, deferring each bound expression to
// the type_param_definitions queue so it is evaluated once the scope it
// belongs to is fully set up (§4.3). Returns whether a scope was pushed, so
// callers know whether to pop it.
func (e *Engine) pushTypeParamScope(params []*pyast.TypeParam) bool {
	if len(params) == 0 {
		return false
	}
	e.arena.PushScope(model.ScopeTypeParam)
	for _, p := range params {
		e.arena.AddBinding(p.Name, p.Range, model.KindTypeParam, 0)
		if p.Bound != nil {
			e.deferTypeParamDefinition(p.Bound)
		}
	}
	return true
}

// visitFunctionDef walks `def`/`async def`: decorators and parameter
// defaults run in the enclosing scope, then any PEP 695 type parameters are
// bound in a TypeParam scope, parameter annotations (and the return
// annotation) are evaluated, the function name is bound in the enclosing
// scope, and finally the function's own scope is pushed, its parameters
// bound there, and its body deferred (§4.1, §4.3 "functions").
func (e *Engine) visitFunctionDef(n *pyast.FunctionDef) {
	for _, d := range n.Decorators {
		e.visitExpr(d)
	}

	e.visitArgumentDefaults(n.Args)

	typeParamsPushed := e.pushTypeParamScope(n.TypeParams)

	annCtx := annotationRuntimeEvaluated
	if decoratorsRequireRuntimeAnnotations(n.Decorators) {
		annCtx = annotationRuntimeRequired
	}
	// A singledispatch implementation reads only its first parameter's
	// annotation at runtime; the flag is spent after one parameter, the
	// rest of the signature keeps the ordinary classification.
	singledispatch := decoratorsAreSingledispatch(n.Decorators)

	if n.Args != nil {
		visitParamAnnotations := func(a *pyast.Arg) {
			if a == nil {
				return
			}
			if singledispatch {
				e.visitAnnotation(a.Annotation, annotationRuntimeRequired)
			} else {
				e.visitAnnotation(a.Annotation, annCtx)
			}
			singledispatch = false
		}
		for _, a := range n.Args.Posonly {
			visitParamAnnotations(a)
		}
		for _, a := range n.Args.Args {
			visitParamAnnotations(a)
		}
		for _, a := range n.Args.KwOnly {
			visitParamAnnotations(a)
		}
		if n.Args.Vararg != nil {
			e.visitAnnotation(n.Args.Vararg.Annotation, annCtx)
		}
		if n.Args.Kwarg != nil {
			e.visitAnnotation(n.Args.Kwarg.Annotation, annCtx)
		}
	}
	e.visitAnnotation(n.Returns, annCtx)

	var funcID model.BindingID
	if typeParamsPushed {
		// PEP 695 generic functions bind their own name one level up, in
		// the scope enclosing the synthetic type-parameter scope.
		e.withEnclosingScope(func() {
			funcID = e.arena.AddBinding(n.Name, n.NameRange, model.KindFunctionDefinition, 0)
		})
	} else {
		funcID = e.arena.AddBinding(n.Name, n.NameRange, model.KindFunctionDefinition, 0)
	}

	funcScope := e.arena.PushScope(model.ScopeFunction)
	e.arena.Binding(funcID).Data.BodyScope = funcScope
	e.bindParamsOnly(n.Args)
	e.deferFunction(n)
	e.arena.PopScope()

	if typeParamsPushed {
		e.arena.PopScope()
	}
}

// bindParamsOnly adds Argument bindings for every parameter without
// re-walking their (already-visited) annotations.
func (e *Engine) bindParamsOnly(args *pyast.Arguments) {
	if args == nil {
		return
	}
	bind := func(a *pyast.Arg) {
		if a != nil {
			e.arena.AddBinding(a.Name, a.Range, model.KindArgument, 0)
		}
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

// withEnclosingScope runs fn with the current scope popped to its parent
// for the duration of the call, used only for the narrow case of binding a
// generic function/class's own name one level above its PEP 695
// type-parameter scope.
func (e *Engine) withEnclosingScope(fn func()) {
	chain := e.arena.Chain()
	e.arena.RestoreChain(chain[:len(chain)-1])
	fn()
	e.arena.RestoreChain(chain)
}

// visitClassDef walks `class C[T](Base, meta=M): ...`: decorators run in the
// enclosing scope, PEP 695 type parameters (if any) get their own scope
// around the base list and body (so base and keyword expressions run in
// that scope when it exists, else in the enclosing one), the class name binds
// in the enclosing scope, and the body is walked immediately — class
// bodies execute eagerly at class-definition time, unlike function bodies,
// so they are never deferred (§4.1).
func (e *Engine) visitClassDef(n *pyast.ClassDef) {
	for _, d := range n.Decorators {
		e.visitExpr(d)
	}

	typeParamsPushed := e.pushTypeParamScope(n.TypeParams)

	for _, b := range n.Bases {
		e.visitExpr(b)
	}
	for _, kw := range n.Keywords {
		e.visitExpr(kw.Value)
	}

	var classID model.BindingID
	if typeParamsPushed {
		e.withEnclosingScope(func() {
			classID = e.arena.AddBinding(n.Name, n.NameRange, model.KindClassDefinition, 0)
		})
	} else {
		classID = e.arena.AddBinding(n.Name, n.NameRange, model.KindClassDefinition, 0)
	}

	classScope := e.arena.PushScope(model.ScopeClass)
	e.arena.Binding(classID).Data.BodyScope = classScope
	savedRR := e.runtimeRequiredCtx
	e.runtimeRequiredCtx = savedRR || decoratorsRequireRuntimeAnnotations(n.Decorators)
	e.enterDocstringScope()
	e.visitSuite(n.Body)
	e.runtimeRequiredCtx = savedRR
	e.arena.PopScope()

	if typeParamsPushed {
		e.arena.PopScope()
	}
}
