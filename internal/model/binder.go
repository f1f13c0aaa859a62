package model

import (
	"github.com/cwbudde/pywalk/pkg/ident"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// HoistTarget walks the active chain from the innermost scope outward and
// returns the id of the nearest non-generator ancestor, the scope a named
// expression's target is hoisted to (§3 invariant, §4.1 "Named
// expressions").
func (a *Arena) HoistTarget() ScopeID {
	for i := len(a.chain) - 1; i >= 0; i-- {
		if a.scopes[a.chain[i]].Kind != ScopeGenerator {
			return a.chain[i]
		}
	}
	return a.chain[0]
}

// AddBinding implements §4.2 add_binding: compute the owning scope (walrus
// hoisting aside, the current scope), allocate the binding, mark
// PrivateDeclaration, and either link it to an existing same-name binding
// (inheriting references/Global/Nonlocal, or — for Annotation — leaving the
// existing binding unshadowed and recording a delayed-annotation link
// instead, P5) or record a shadowed-binding link against an ancestor
// Module/Function scope.
func (a *Arena) AddBinding(name string, r pyast.Range, kind Kind, flags BindingFlags) BindingID {
	owner := a.CurrentScopeID()
	if kind == KindNamedExprAssignment {
		owner = a.HoistTarget()
	}

	if ident.IsPrivate(name) {
		flags |= PrivateDeclaration
	}

	id := a.NewBinding(owner, name, r, kind)
	b := a.bindings[id]
	b.Flags = flags

	scope := a.scopes[owner]
	if existingID, ok := scope.Lookup(name); ok {
		existing := a.bindings[existingID]

		if kind == KindAnnotation {
			existing.DelayedAnnotation = id
			return id
		}

		if existing.Kind != KindBuiltin && existing.Kind != KindDeletion && existing.Kind != KindUnboundException {
			b.References = append(b.References, existing.References...)
			b.Flags |= existing.Flags & (Global | Nonlocal)
		}
		b.Shadowed = existingID
	} else if anc, ok := a.findAncestorModuleOrFunctionBinding(owner, name); ok {
		b.Shadowed = anc
	}

	scope.set(name, id)
	return id
}

// findAncestorModuleOrFunctionBinding looks for an existing binding of name
// in the nearest enclosing Module or Function scope above owner, for the
// shadowing diagnostics link in step 5 of add_binding.
func (a *Arena) findAncestorModuleOrFunctionBinding(owner ScopeID, name string) (BindingID, bool) {
	cur := a.scopes[owner].Parent
	for cur != NoScope {
		s := a.scopes[cur]
		if s.Kind == ScopeModule || s.Kind == ScopeFunction {
			if id, ok := s.Lookup(name); ok {
				return id, true
			}
		}
		cur = s.Parent
	}
	return NoBinding, false
}

// LookupChain resolves name starting at the current scope and walking
// parents, honoring CPython's rule that a Class scope is visible only to
// its own body, never to a nested Function/Lambda/Generator scope's free
// variables (Testable Property P3). A scope is skipped during outward
// search exactly when it is a Class scope and the search didn't start
// there.
func (a *Arena) LookupChain(name string) (BindingID, bool) {
	chain := a.chain
	for i := len(chain) - 1; i >= 0; i-- {
		s := a.scopes[chain[i]]
		if s.Kind == ScopeClass && i != len(chain)-1 {
			continue
		}
		if id, ok := s.Lookup(name); ok {
			return id, true
		}
	}
	return NoBinding, false
}

// Delete implements §4.2 handle_node_delete: resolve the reference to the
// current binding (if any), then — unless occurring on a conditional
// branch — record a Deletion binding that shadows the name.
func (a *Arena) Delete(name string, r pyast.Range, conditional bool, flags SemanticFlags) (ReferenceID, bool) {
	id, ok := a.LookupChain(name)
	var refID ReferenceID
	if ok {
		refID = a.NewReference(id, r, pyast.Del, flags)
	}
	if !conditional {
		a.AddBinding(name, r, KindDeletion, 0)
	}
	return refID, ok
}

// GlobalOrNonlocal implements the `global`/`nonlocal` half of §4.2: resolve
// name in targetScope (the module scope for `global`, the nearest
// enclosing function scope for `nonlocal`), record a rebinding-scope entry
// on the pre-existing binding there (if any), and add a local binding in
// the current scope carrying the corresponding flag.
func (a *Arena) GlobalOrNonlocal(name string, r pyast.Range, targetScope ScopeID, nonlocal bool) BindingID {
	if existingID, ok := a.scopes[targetScope].Lookup(name); ok {
		existing := a.bindings[existingID]
		existing.RenamedInScope = append(existing.RenamedInScope, a.CurrentScopeID())
	}

	flag := Global
	kind := KindGlobal
	if nonlocal {
		flag = Nonlocal
		kind = KindNonlocal
	}
	id := a.AddBinding(name, r, kind, flag)
	if nonlocal {
		a.bindings[id].Data.EnclosingScope = targetScope
	}
	return id
}

// NearestFunctionScope walks outward from the current scope (excluding the
// current scope itself) and returns the first Function/Lambda scope,
// needed to resolve `nonlocal` targets.
func (a *Arena) NearestFunctionScope() (ScopeID, bool) {
	cur := a.scopes[a.CurrentScopeID()].Parent
	for cur != NoScope {
		s := a.scopes[cur]
		if s.Kind == ScopeFunction || s.Kind == ScopeLambda {
			return cur, true
		}
		cur = s.Parent
	}
	return NoScope, false
}
