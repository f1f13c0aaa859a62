package walker

import (
	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// storeContext is the enclosing-statement hint handle_node_store uses to
// pick a binding Kind (§4.2). The zero value is storeAssignment.
type storeContext int

const (
	storeAssignment storeContext = iota
	storeAnnotationNoValue
	storeFor
	storeWithItem
	storeNamedExpr
	storeComprehension
	storeUnpacked
)

// handleStore implements handle_node_store: pick a binding Kind from the
// enclosing-statement hint and add the binding. Walrus and comprehension
// targets additionally stamp the matching semantic-context bit for the
// duration of the store, so any reference inherited from a shadowed
// binding carries the right context (§4.2).
func (e *Engine) handleStore(name *pyast.Name, ctx storeContext) {
	var flags model.BindingFlags
	var mask model.SemanticFlags
	kind := model.KindAssignment

	switch ctx {
	case storeAnnotationNoValue:
		kind = model.KindAnnotation
	case storeFor:
		kind = model.KindLoopVar
	case storeWithItem:
		kind = model.KindWithItemVar
	case storeNamedExpr:
		kind = model.KindNamedExprAssignment
		mask = model.NamedExprAssignment
	case storeComprehension:
		kind = model.KindComprehensionVar
		mask = model.ComprehensionAssignment
	case storeUnpacked:
		flags |= model.UnpackedAssignment
	}

	if mask != 0 {
		e.withFlags(mask, func() {
			e.arena.AddBinding(name.Id, name.Span(), kind, flags)
		})
		return
	}
	e.arena.AddBinding(name.Id, name.Span(), kind, flags)
}

// handleModuleAllAssign records an `__all__ = [...]` module-level binding
// as Export, resolving each element to a string literal or flagging
// InvalidAllObject; a non-list/tuple/set right-hand side is flagged
// InvalidAllFormat (§4.4 "export resolution").
func (e *Engine) handleModuleAllAssign(name *pyast.Name, value pyast.Expr) {
	var flags model.BindingFlags
	var elts []pyast.Expr

	switch v := value.(type) {
	case *pyast.List:
		elts = v.Elts
	case *pyast.Tuple:
		elts = v.Elts
	case *pyast.Set:
		elts = v.Elts
	default:
		flags |= model.InvalidAllFormat
	}

	var names []model.ExportName
	for _, elt := range elts {
		c, ok := elt.(*pyast.Constant)
		if ok && c.Kind == pyast.ConstString {
			names = append(names, model.ExportName{Name: c.Value.(string), Valid: true, Range: c.Span()})
			continue
		}
		flags |= model.InvalidAllObject
		names = append(names, model.ExportName{Valid: false, Range: elt.Span()})
	}

	flags |= model.ExplicitExport
	id := e.arena.AddBinding(name.Id, name.Span(), model.KindExport, flags)
	e.arena.Binding(id).Data.ExportNames = names
}

// isDunderAllTarget reports whether target is the bare name `__all__`,
// used to route an assignment to handleModuleAllAssign instead of the
// ordinary Assignment path; only module-scope assignments qualify (§4.4).
func isDunderAllTarget(target pyast.Expr) (*pyast.Name, bool) {
	n, ok := target.(*pyast.Name)
	if !ok || n.Id != "__all__" {
		return nil, false
	}
	return n, true
}

// handleDelete implements handle_node_delete for one `del` target,
// consulting the current branch depth to decide whether deletion is
// conditional (§4.2).
func (e *Engine) handleDelete(name *pyast.Name) {
	e.arena.Delete(name.Id, name.Span(), e.BranchDepth() > 0, e.flags)
}

// handleGlobal resolves one `global name` declaration against the module
// scope.
func (e *Engine) handleGlobal(name string, r pyast.Range) {
	e.arena.GlobalOrNonlocal(name, r, e.arena.ModuleScope().ID, false)
}

// handleNonlocal resolves one `nonlocal name` declaration against the
// nearest enclosing function scope, reporting nothing (a resolution
// failure here is a rule's concern, not an engine invariant) when no such
// scope exists.
func (e *Engine) handleNonlocal(name string, r pyast.Range) {
	target, ok := e.arena.NearestFunctionScope()
	if !ok {
		e.arena.AddBinding(name, r, model.KindNonlocal, model.Nonlocal)
		return
	}
	e.arena.GlobalOrNonlocal(name, r, target, true)
}

// collectTargetNames flattens an assignment target (possibly a Tuple/List/
// Starred nest from unpacking) into the Name leaves that receive bindings,
// reporting whether unpacking was observed at all (§4.2 "Unpacking
// detection").
func collectTargetNames(target pyast.Expr) (names []*pyast.Name, unpacked bool) {
	switch t := target.(type) {
	case *pyast.Name:
		return []*pyast.Name{t}, false
	case *pyast.Starred:
		inner, _ := collectTargetNames(t.Value)
		return inner, true
	case *pyast.Tuple:
		var out []*pyast.Name
		for _, e := range t.Elts {
			n, _ := collectTargetNames(e)
			out = append(out, n...)
		}
		return out, true
	case *pyast.List:
		var out []*pyast.Name
		for _, e := range t.Elts {
			n, _ := collectTargetNames(e)
			out = append(out, n...)
		}
		return out, true
	default:
		// Attribute/Subscript targets mutate an object rather than bind a
		// name; they still need a Load visit, handled by the caller.
		return nil, false
	}
}
