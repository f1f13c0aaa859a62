package model

import (
	"github.com/cwbudde/pywalk/internal/walkerr"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// Arena is the semantic model facade: the flat binding/reference storage
// plus the scope tree, addressed by id so scopes never hold binding
// objects directly (§9). One Arena backs one analysis.
type Arena struct {
	scopes   []*Scope
	bindings []*Binding
	refs     []*Reference

	// chain is the active scope stack: always a path from some leaf to the
	// module root (§3 invariant, Testable Property P1).
	chain []ScopeID
}

// NewArena creates an Arena seeded with the module scope, already pushed
// onto the chain.
func NewArena() *Arena {
	a := &Arena{}
	moduleID := a.newScope(ScopeModule, NoScope)
	a.chain = []ScopeID{moduleID}
	return a
}

func (a *Arena) newScope(kind ScopeKind, parent ScopeID) ScopeID {
	id := ScopeID(len(a.scopes))
	a.scopes = append(a.scopes, newScope(id, kind, parent))
	return id
}

// PushScope opens a new scope of kind kind as a child of the current scope
// and makes it current.
func (a *Arena) PushScope(kind ScopeKind) ScopeID {
	id := a.newScope(kind, a.CurrentScopeID())
	a.chain = append(a.chain, id)
	return id
}

// PopScope leaves the current scope. Popping the module scope is an
// engine-invariant violation (§7.2), raised through walkerr so the
// analysis entry point's Recover turns it into a structured report rather
// than a lint finding.
func (a *Arena) PopScope() {
	if len(a.chain) <= 1 {
		walkerr.Raise("model: cannot pop the module scope")
	}
	a.chain = a.chain[:len(a.chain)-1]
}

// CurrentScopeID returns the innermost active scope.
func (a *Arena) CurrentScopeID() ScopeID {
	if len(a.chain) == 0 {
		walkerr.Raise("model: scope chain is empty")
	}
	return a.chain[len(a.chain)-1]
}

// Scope dereferences a ScopeID.
func (a *Arena) Scope(id ScopeID) *Scope { return a.scopes[id] }

// ModuleScope returns the root scope.
func (a *Arena) ModuleScope() *Scope { return a.scopes[0] }

// AllScopes returns every scope ever created, in creation order, for
// post-walk scope analyses (§4.4).
func (a *Arena) AllScopes() []*Scope { return a.scopes }

// Chain returns a copy of the active scope-id chain, leaf-first is the
// last element; used by snapshots.
func (a *Arena) Chain() []ScopeID {
	out := make([]ScopeID, len(a.chain))
	copy(out, a.chain)
	return out
}

// RestoreChain replaces the active chain wholesale, used when resuming a
// deferred entry.
func (a *Arena) RestoreChain(chain []ScopeID) {
	a.chain = append([]ScopeID(nil), chain...)
}

// NewBinding allocates a binding and returns its id. It does not insert it
// into any scope; callers use Bind for that.
func (a *Arena) NewBinding(scope ScopeID, name string, r pyast.Range, kind Kind) BindingID {
	id := BindingID(len(a.bindings))
	a.bindings = append(a.bindings, &Binding{
		ID:                id,
		Scope:             scope,
		Name:              name,
		Range:             r,
		Kind:              kind,
		Shadowed:          NoBinding,
		DelayedAnnotation: NoBinding,
	})
	return id
}

// Binding dereferences a BindingID.
func (a *Arena) Binding(id BindingID) *Binding { return a.bindings[id] }

// AllBindings returns every binding ever created, in creation order.
func (a *Arena) AllBindings() []*Binding { return a.bindings }

// NewReference allocates a reference, attaches it to binding's reference
// list, and returns its id. Every Load/Store/Del reference is attached to
// exactly one binding (§3 invariant).
func (a *Arena) NewReference(binding BindingID, r pyast.Range, ctx pyast.ExprContext, flags SemanticFlags) ReferenceID {
	id := ReferenceID(len(a.refs))
	a.refs = append(a.refs, &Reference{
		ID:      id,
		Binding: binding,
		Range:   r,
		Ctx:     ctx,
		Flags:   flags,
	})
	a.bindings[binding].References = append(a.bindings[binding].References, id)
	return id
}

// Reference dereferences a ReferenceID.
func (a *Arena) Reference(id ReferenceID) *Reference { return a.refs[id] }
