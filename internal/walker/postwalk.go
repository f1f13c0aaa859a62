package walker

import (
	"fmt"

	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/diagnostic"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// postWalk runs every analysis pass that needs the fully-drained semantic
// model: export resolution, the deferred-bindings pass over the whole
// binding arena, then the deferred_scopes rule-dispatch pass over every
// scope ever created (§4.4).
func (e *Engine) postWalk() {
	e.visitExports()
	e.deferredBindings()
	e.deferredScopes()
}

// visitExports resolves every Export binding's name list against the
// module scope, reporting UndefinedExport for a name with no binding, or
// UndefinedLocalWithImportStarUsage instead when the module scope has at
// least one `from x import *` that could plausibly have supplied it
// (Testable Property P6). An element that wasn't a string literal
// (InvalidAllObject) is skipped; it already carries its own diagnostic
// surface via the binding's flags for rule hooks to report.
func (e *Engine) visitExports() {
	module := e.arena.ModuleScope()
	for _, name := range module.Order {
		id, ok := module.Lookup(name)
		if !ok {
			continue
		}
		b := e.arena.Binding(id)
		if b.Kind != model.KindExport {
			continue
		}
		for _, exp := range b.Data.ExportNames {
			if !exp.Valid {
				continue
			}
			if target, bound := module.Lookup(exp.Name); bound {
				e.arena.NewReference(target, exp.Range, pyast.Load, e.flags)
				e.arena.Binding(target).Flags |= model.ExplicitExport
				continue
			}
			if module.HasStarImport {
				e.Report(diagnostic.Diagnostic{
					Range:   exp.Range,
					Code:    diagnostic.CodeUndefinedLocalWithStarImport,
					Message: fmt.Sprintf("undefined name %q in `__all__`, possibly from a star import", exp.Name),
				})
				continue
			}
			e.Report(diagnostic.Diagnostic{
				Range:   exp.Range,
				Code:    diagnostic.CodeUndefinedExport,
				Message: fmt.Sprintf("undefined name %q in `__all__`", exp.Name),
			})
		}
	}
}

// deferredBindings runs every registered BindingRule over every binding in
// the arena, in creation order.
func (e *Engine) deferredBindings() {
	if e.rules == nil || len(e.rules.Bindings) == 0 {
		return
	}
	for _, b := range e.arena.AllBindings() {
		e.rules.DispatchBinding(e, b)
	}
}

// deferredScopes runs every registered ScopeRule over every scope ever
// created, in creation order, after every other pass has completed
// (§4.4 "deferred_scopes").
func (e *Engine) deferredScopes() {
	if e.rules == nil {
		return
	}
	for _, scope := range e.arena.AllScopes() {
		e.rules.DispatchScope(e, scope)
	}
}
