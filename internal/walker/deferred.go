package walker

import (
	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/diagnostic"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// deferredFunction is one function/method body suite to walk after the
// enclosing scope finishes.
type deferredFunction struct {
	node *pyast.FunctionDef
	snap Snapshot
}

// deferredLambda is one lambda body; parameter defaults were already
// walked eagerly in the outer scope (§4.3).
type deferredLambda struct {
	node *pyast.Lambda
	snap Snapshot
}

// deferredTypeParamDef is an expression used as a PEP 695 type-parameter
// bound or a `type X[T] = E` right-hand side.
type deferredTypeParamDef struct {
	expr pyast.Expr
	snap Snapshot
}

// deferredFutureTypeDef is an annotation expression encountered while
// `from __future__ import annotations` is in effect.
type deferredFutureTypeDef struct {
	expr pyast.Expr
	snap Snapshot
}

// deferredStringTypeDef is a quoted forward reference awaiting on-demand
// parsing; simple records whether the literal's value maps cleanly onto
// its source text (no escapes, prefixes, or implicit concatenation).
type deferredStringTypeDef struct {
	r      pyast.Range
	value  string
	simple bool
	snap   Snapshot
}

// registry holds the five deferred-work queues (§4.3). Drain order is
// functions -> type_param_definitions -> lambdas -> future_type_definitions
// -> string_type_definitions, looped until all five are simultaneously
// empty (Testable Property P4), since earlier drains may enqueue later
// kinds (e.g. a function body drain can discover a string annotation).
type registry struct {
	functions             []deferredFunction
	lambdas               []deferredLambda
	typeParamDefinitions  []deferredTypeParamDef
	futureTypeDefinitions []deferredFutureTypeDef
	stringTypeDefinitions []deferredStringTypeDef
}

func (e *Engine) deferFunction(n *pyast.FunctionDef) {
	e.queues.functions = append(e.queues.functions, deferredFunction{node: n, snap: e.snapshot()})
}

func (e *Engine) deferLambda(n *pyast.Lambda) {
	e.queues.lambdas = append(e.queues.lambdas, deferredLambda{node: n, snap: e.snapshot()})
}

func (e *Engine) deferTypeParamDefinition(expr pyast.Expr) {
	e.queues.typeParamDefinitions = append(e.queues.typeParamDefinitions, deferredTypeParamDef{expr: expr, snap: e.snapshot()})
}

func (e *Engine) deferFutureTypeDefinition(expr pyast.Expr) {
	e.queues.futureTypeDefinitions = append(e.queues.futureTypeDefinitions, deferredFutureTypeDef{expr: expr, snap: e.snapshot()})
}

func (e *Engine) deferStringTypeDefinition(c *pyast.Constant) {
	value, _ := c.Value.(string)
	e.queues.stringTypeDefinitions = append(e.queues.stringTypeDefinitions, deferredStringTypeDef{
		r:      c.Span(),
		value:  value,
		simple: isSimpleStringAnnotation(c.Raw, value),
		snap:   e.snapshot(),
	})
}

// isSimpleStringAnnotation reports whether a quoted annotation's value is
// exactly its source text minus one pair of plain quotes. Escapes, string
// prefixes, triple quoting, and implicit concatenation all make the range
// mapping back into the file unreliable, which is what the
// ComplexStringTypeDefinition bit signals to rules.
func isSimpleStringAnnotation(raw, value string) bool {
	if raw == value {
		return true
	}
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1:len(raw)-1] == value
	}
	return false
}

func (e *Engine) isQueuesEmpty() bool {
	q := e.queues
	return len(q.functions) == 0 && len(q.lambdas) == 0 &&
		len(q.typeParamDefinitions) == 0 && len(q.futureTypeDefinitions) == 0 &&
		len(q.stringTypeDefinitions) == 0
}

// drainDeferred loops over the five queues until a fixpoint, restoring each
// entry's snapshot, setting the appropriate flag bits, walking the payload,
// and clearing flags via the snapshot restore afterward (§4.3).
func (e *Engine) drainDeferred() {
	for !e.isQueuesEmpty() {
		functions := e.queues.functions
		e.queues.functions = nil
		for _, d := range functions {
			e.withSnapshot(d.snap, func() {
				e.enterDocstringScope()
				e.visitSuite(d.node.Body)
			})
		}

		typeParams := e.queues.typeParamDefinitions
		e.queues.typeParamDefinitions = nil
		for _, d := range typeParams {
			e.withSnapshot(d.snap, func() {
				e.withFlags(model.TypeDefinition|model.DeferredTypeDefinition|model.TypeParamDefinition, func() {
					e.visitTypeExpr(d.expr)
				})
			})
		}

		lambdas := e.queues.lambdas
		e.queues.lambdas = nil
		for _, d := range lambdas {
			e.withSnapshot(d.snap, func() {
				e.visitExpr(d.node.Body)
			})
		}

		futures := e.queues.futureTypeDefinitions
		e.queues.futureTypeDefinitions = nil
		for _, d := range futures {
			e.withSnapshot(d.snap, func() {
				e.withFlags(model.TypeDefinition|model.DeferredTypeDefinition|model.FutureTypeDefinition, func() {
					e.visitTypeExpr(d.expr)
				})
			})
		}

		strings := e.queues.stringTypeDefinitions
		e.queues.stringTypeDefinitions = nil
		for _, d := range strings {
			e.drainStringTypeDefinition(d)
		}
	}
}

// drainStringTypeDefinition parses a quoted forward reference on demand
// (§4.3). The parsed node is appended to e.stringArena, which outlives the
// whole deferred loop (§9), since the parse can itself enqueue further
// deferred string/type-param work. A parse failure yields a
// ForwardAnnotationSyntaxError diagnostic and skips the node (§7.1).
func (e *Engine) drainStringTypeDefinition(d deferredStringTypeDef) {
	if e.stringParser == nil {
		return
	}
	expr, err := e.stringParser(d.value)
	if err != nil {
		e.Report(diagnostic.Diagnostic{
			Range:   d.r,
			Code:    diagnostic.CodeForwardAnnotationSyntaxError,
			Message: "syntax error in forward annotation: " + err.Error(),
		})
		return
	}
	e.stringArena = append(e.stringArena, expr)

	if d.snap.flags.Has(model.FutureAnnotations) && e.ruleEnabled(diagnostic.CodeQuotedAnnotation) {
		e.Report(diagnostic.Diagnostic{
			Range:   d.r,
			Code:    diagnostic.CodeQuotedAnnotation,
			Message: "quoted annotation is redundant under `from __future__ import annotations`",
		})
	}

	e.withSnapshot(d.snap, func() {
		mask := model.TypeDefinition | model.DeferredTypeDefinition
		if d.simple {
			mask |= model.SimpleStringTypeDefinition
		} else {
			mask |= model.ComplexStringTypeDefinition
		}
		if d.snap.flags.Has(model.FutureAnnotations) {
			mask |= model.FutureTypeDefinition
		}
		e.withFlags(mask, func() {
			e.visitTypeExpr(expr)
		})
	})
}
