package model

import (
	"testing"

	"github.com/cwbudde/pywalk/internal/walkerr"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

func rng(start, end int) pyast.Range {
	return pyast.Range{Start: pyast.Pos(start), End: pyast.Pos(end)}
}

func TestArenaScopeDiscipline(t *testing.T) {
	a := NewArena()
	if a.CurrentScopeID() != a.ModuleScope().ID {
		t.Fatalf("fresh arena should be positioned at the module scope")
	}

	fn := a.PushScope(ScopeFunction)
	if a.CurrentScopeID() != fn {
		t.Fatalf("PushScope should make the new scope current")
	}
	if a.Scope(fn).Parent != a.ModuleScope().ID {
		t.Fatalf("function scope should parent to the module scope")
	}

	a.PopScope()
	if a.CurrentScopeID() != a.ModuleScope().ID {
		t.Fatalf("PopScope should restore the module scope as current")
	}
}

func TestArenaPopModuleScopePanics(t *testing.T) {
	a := NewArena()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("popping the module scope should panic (engine invariant)")
		}
		if _, ok := r.(*walkerr.Invariant); !ok {
			t.Fatalf("the panic value must be a *walkerr.Invariant so walker.Analyze's Recover reports it, got %T", r)
		}
	}()
	a.PopScope()
}

func TestAddBindingShadowsAndInheritsReferences(t *testing.T) {
	a := NewArena()

	first := a.AddBinding("x", rng(0, 1), KindAssignment, 0)
	a.NewReference(first, rng(2, 3), pyast.Load, 0)

	second := a.AddBinding("x", rng(4, 5), KindAssignment, 0)
	b := a.Binding(second)
	if b.Shadowed != first {
		t.Fatalf("second binding should shadow the first")
	}
	if len(b.References) != 1 {
		t.Fatalf("second binding should inherit the shadowed binding's references, got %d", len(b.References))
	}
}

// TestAddBindingAnnotationDoesNotShadow is Testable Property P5: `x: int`
// after `x = 1` must not shadow; it links via DelayedAnnotation instead.
func TestAddBindingAnnotationDoesNotShadow(t *testing.T) {
	a := NewArena()

	assign := a.AddBinding("x", rng(0, 1), KindAssignment, 0)
	a.NewReference(assign, rng(2, 3), pyast.Load, 0)

	ann := a.AddBinding("x", rng(4, 5), KindAnnotation, 0)

	got := a.Binding(assign)
	if got.DelayedAnnotation != ann {
		t.Fatalf("assignment binding should record a delayed-annotation link to %v, got %v", ann, got.DelayedAnnotation)
	}
	if len(got.References) != 1 {
		t.Fatalf("the original assignment's references must be left untouched")
	}

	scope := a.ModuleScope()
	id, ok := scope.Lookup("x")
	if !ok || id != assign {
		t.Fatalf("scope should still resolve %q to the original assignment, not the annotation", "x")
	}
}

func TestAddBindingSubsequentAssignmentShadowsAnnotation(t *testing.T) {
	a := NewArena()

	ann := a.AddBinding("x", rng(0, 1), KindAnnotation, 0)
	assign := a.AddBinding("x", rng(2, 3), KindAssignment, 0)

	got := a.Binding(assign)
	if got.Shadowed != ann {
		t.Fatalf("assignment following a bare annotation should shadow it")
	}
}

func TestLookupChainSkipsClassScopeForNestedFunctions(t *testing.T) {
	a := NewArena()
	a.AddBinding("ClassAttr", rng(0, 1), KindAssignment, 0)

	classScope := a.PushScope(ScopeClass)
	a.AddBinding("ClassAttr", rng(2, 3), KindAssignment, 0)

	// Directly inside the class body, ClassAttr resolves to the class's own
	// binding (P3's "outer" generator case is analogous to this rule).
	if id, ok := a.LookupChain("ClassAttr"); !ok || id != mustLookup(t, a.Scope(classScope), "ClassAttr") {
		t.Fatalf("class body should see its own ClassAttr binding")
	}

	fn := a.PushScope(ScopeFunction)
	_ = fn
	// A function nested in the class body must skip the class scope and
	// resolve to the module-level binding instead (Testable Property P3's
	// underlying rule).
	id, ok := a.LookupChain("ClassAttr")
	if !ok {
		t.Fatalf("nested function should still resolve ClassAttr via the module scope")
	}
	if id == mustLookup(t, a.Scope(classScope), "ClassAttr") {
		t.Fatalf("nested function must not see the class scope's ClassAttr binding")
	}
}

func mustLookup(t *testing.T, s *Scope, name string) BindingID {
	t.Helper()
	id, ok := s.Lookup(name)
	if !ok {
		t.Fatalf("expected %q to be bound in scope %v", name, s.ID)
	}
	return id
}

func TestDeleteConditionalSuppression(t *testing.T) {
	a := NewArena()
	a.AddBinding("x", rng(0, 1), KindAssignment, 0)

	_, ok := a.Delete("x", rng(2, 3), true, 0)
	if !ok {
		t.Fatalf("delete should resolve the existing binding")
	}
	id, _ := a.ModuleScope().Lookup("x")
	if a.Binding(id).Kind == KindDeletion {
		t.Fatalf("a conditional delete must not record a Deletion binding")
	}

	a.Delete("x", rng(4, 5), false, 0)
	id, _ = a.ModuleScope().Lookup("x")
	if a.Binding(id).Kind != KindDeletion {
		t.Fatalf("an unconditional delete must record a Deletion binding")
	}
}

func TestGlobalOrNonlocalRecordsRebindingScope(t *testing.T) {
	a := NewArena()
	a.AddBinding("counter", rng(0, 1), KindAssignment, 0)

	fn := a.PushScope(ScopeFunction)
	a.GlobalOrNonlocal("counter", rng(2, 3), a.ModuleScope().ID, false)

	moduleBindingID, _ := a.ModuleScope().Lookup("counter")
	moduleBinding := a.Binding(moduleBindingID)

	found := false
	for _, s := range moduleBinding.RenamedInScope {
		if s == fn {
			found = true
		}
	}
	if !found {
		t.Fatalf("global declaration should record the using scope against the module binding")
	}

	localID, ok := a.Scope(fn).Lookup("counter")
	if !ok || a.Binding(localID).Kind != KindGlobal {
		t.Fatalf("a local Global binding should be added in the declaring scope")
	}
}

func TestHoistTargetSkipsGeneratorScopes(t *testing.T) {
	a := NewArena()
	fn := a.PushScope(ScopeFunction)
	a.PushScope(ScopeGenerator)

	if got := a.HoistTarget(); got != fn {
		t.Fatalf("named-expression hoist target should skip the generator scope and land on %v, got %v", fn, got)
	}
}

func TestPrivateDeclarationFlag(t *testing.T) {
	a := NewArena()
	id := a.AddBinding("_private", rng(0, 1), KindAssignment, 0)
	if !a.Binding(id).Flags.Has(PrivateDeclaration) {
		t.Fatalf("a name starting with '_' should be flagged PrivateDeclaration")
	}
}
