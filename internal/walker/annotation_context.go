package walker

import (
	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/hostapi"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// annotationContext classifies how an annotation expression is evaluated,
// mirroring typing's own three-way split (§4.1 "Annotation contexts"):
//
//   - runtimeRequired: always evaluated at runtime regardless of
//     `__future__` annotations (dataclass fields, `TypeVar` bounds and
//     constraints, the `InitVar` head itself).
//   - runtimeEvaluated: evaluated at runtime unless
//     `from __future__ import annotations` is active, in which case it is
//     deferred like any other annotation.
//   - typingOnly: never evaluated at runtime; only consulted by external
//     type checkers. Function signature annotations are runtimeEvaluated
//     by default; typingOnly is used for the argument of `InitVar[...]` and
//     for runtimeEvaluated annotations in stub files.
type annotationContext int

const (
	annotationTypingOnly annotationContext = iota
	annotationRuntimeEvaluated
	annotationRuntimeRequired
)

// visitAnnotation walks an annotation expression under the flags matching
// its context, deferring the walk to the string/future-type-definition
// queues when appropriate instead of visiting immediately (§4.1, §4.3).
// Every path that does visit now (rather than deferring) always routes
// through visitTypeExpr, so subscript/typing-special-form routing applies
// uniformly regardless of whether the annotation happens to be evaluated
// eagerly or deferred (§4.1 "Typing special forms" applies to every
// annotation context, not only typingOnly ones).
func (e *Engine) visitAnnotation(expr pyast.Expr, ctx annotationContext) {
	if expr == nil {
		return
	}

	// In a stub file a runtime-evaluated annotation is treated as
	// typing-only, since stubs are never executed; runtime-required
	// annotations keep their classification.
	if ctx == annotationRuntimeEvaluated && e.srcType == hostapi.StubFile {
		ctx = annotationTypingOnly
	}

	switch ctx {
	case annotationRuntimeRequired:
		e.withFlags(model.RuntimeRequiredAnnotation|model.TypeDefinition, func() {
			e.visitTypeExpr(expr)
		})
		return
	case annotationRuntimeEvaluated:
		if !e.flags.Has(model.FutureAnnotations) {
			e.withFlags(model.RuntimeEvaluatedAnnotation|model.TypeDefinition, func() {
				e.visitTypeExpr(expr)
			})
			return
		}
	}

	// typingOnly, or runtimeEvaluated deferred by `__future__` annotations:
	// quoted literals and deferred-annotations contexts hand the
	// expression to a deferred queue instead of visiting it immediately
	// (§4.3).
	if c, ok := expr.(*pyast.Constant); ok && c.Kind == pyast.ConstString {
		e.deferStringTypeDefinition(c)
		return
	}

	if e.flags.Has(model.FutureAnnotations) {
		e.deferFutureTypeDefinition(expr)
		return
	}

	e.withFlags(model.TypeDefinition|model.TypingOnlyAnnotation, func() {
		e.visitTypeExpr(expr)
	})
}

// visitTypeExpr walks an expression known to be a type definition (either
// an annotation or a deferred string/future payload), routing subscripts
// and typing-special-form calls through their dedicated handlers instead
// of a plain recursive visit (§4.1 "Typing special forms").
func (e *Engine) visitTypeExpr(expr pyast.Expr) {
	switch n := expr.(type) {
	case *pyast.Subscript:
		e.visitTypeSubscript(n)
		return
	case *pyast.Call:
		if e.visitTypingSpecialFormCall(n) {
			return
		}
	case *pyast.Constant:
		if n.Kind == pyast.ConstString && !e.flags.Has(model.TypingLiteral) {
			e.deferStringTypeDefinition(n)
			return
		}
	}
	e.visitExpr(expr)
}

// isInitVarHead recognizes the `dataclasses.InitVar` subscript head, which
// the dataclass machinery introspects at class-body execution time and is
// therefore escalated to runtime-required even when the surrounding
// classification is typing-only (§4.1 "Annotation contexts").
func isInitVarHead(name string) bool {
	return name == "InitVar" || name == "dataclasses.InitVar"
}

// runtimeRequiredDecorators are decorator spellings that make a function's
// or class's annotations inspectable at runtime (`typing.get_type_hints`
// and friends run against them), forcing RuntimeRequired classification for
// every annotation they govern.
var runtimeRequiredDecorators = map[string]bool{
	"dataclass": true, "dataclasses.dataclass": true,
	"attr.s": true, "attr.attrs": true, "attr.define": true,
	"attrs.define": true, "attrs.frozen": true, "attrs.mutable": true,
}

// singledispatchDecorators mark a dispatch implementation: only the first
// parameter's annotation is read at runtime (it selects the registered
// overload), so it alone is escalated — never the whole signature.
var singledispatchDecorators = map[string]bool{
	"singledispatch": true, "functools.singledispatch": true,
	"singledispatchmethod": true, "functools.singledispatchmethod": true,
}

func matchesDecoratorSet(decorators []pyast.Expr, set map[string]bool) bool {
	for _, d := range decorators {
		expr := d
		if call, ok := d.(*pyast.Call); ok {
			expr = call.Func
		}
		if set[subscriptBaseName(expr)] {
			return true
		}
	}
	return false
}

// decoratorsRequireRuntimeAnnotations reports whether any decorator in the
// list (called or bare) is a whole-signature runtime-annotation inspector,
// per the recognized set above plus nothing else — project-specific
// decorators are a Settings concern the classifier doesn't second-guess.
func decoratorsRequireRuntimeAnnotations(decorators []pyast.Expr) bool {
	return matchesDecoratorSet(decorators, runtimeRequiredDecorators)
}

// decoratorsAreSingledispatch reports whether the list carries a
// singledispatch-style decorator (§4.1 "`@singledispatch` first
// parameter").
func decoratorsAreSingledispatch(decorators []pyast.Expr) bool {
	return matchesDecoratorSet(decorators, singledispatchDecorators)
}
