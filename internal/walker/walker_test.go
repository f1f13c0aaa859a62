package walker

import (
	"testing"

	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/internal/rules"
	"github.com/cwbudde/pywalk/pkg/diagnostic"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// recordingHandlerRule is a test-only HandlerRule that captures the
// handled-exception stack active while a handler body is dispatched.
type recordingHandlerRule struct {
	out *[]string
}

func (recordingHandlerRule) Code() diagnostic.Code { return "test-recording-handler" }

func (r recordingHandlerRule) CheckHandler(ctx rules.Context, h *pyast.ExceptHandler) {
	if eng, ok := ctx.(*Engine); ok {
		*r.out = append(*r.out, eng.HandledExceptions()...)
	}
}

func rng(start, end int) pyast.Range {
	return pyast.Range{Start: pyast.Pos(start), End: pyast.Pos(end)}
}

func name(id string, ctx pyast.ExprContext) *pyast.Name {
	return &pyast.Name{Id: id, Ctx: ctx}
}

func exprStmt(e pyast.Expr) *pyast.ExprStmt { return &pyast.ExprStmt{Value: e} }

func strConst(raw string) *pyast.Constant {
	return &pyast.Constant{Kind: pyast.ConstString, Value: raw, Raw: raw}
}

func module(body ...pyast.Stmt) *pyast.Module {
	return &pyast.Module{Body: body}
}

func analyze(t *testing.T, m *pyast.Module) (*Engine, diagnostic.Vector) {
	t.Helper()
	e := New(Options{StringParser: func(src string) (pyast.Expr, error) {
		return name(src, pyast.Load), nil
	}})
	e.visitModuleLevel(ModuleDescriptor{Root: m})
	e.visitModuleBody(m.Body)
	e.drainDeferred()
	e.postWalk()
	return e, e.diags
}

// Scenario 1 (spec §8): `import os` followed by `import os.path` binds two
// names: a plain Import then a SubmoduleImport shadowing it.
func TestImportThenDottedImportShadows(t *testing.T) {
	m := module(
		&pyast.Import{Names: []*pyast.Alias{{Name: "os"}}},
		&pyast.Import{Names: []*pyast.Alias{{Name: "os.path"}}},
	)
	e, _ := analyze(t, m)

	id, ok := e.arena.ModuleScope().Lookup("os")
	if !ok {
		t.Fatalf("expected a binding for os")
	}
	b := e.arena.Binding(id)
	if b.Kind != model.KindSubmoduleImport {
		t.Fatalf("second import should be SubmoduleImport, got %v", b.Kind)
	}
	if b.Data.QualifiedName != "os.path" {
		t.Fatalf("expected qualified name os.path, got %q", b.Data.QualifiedName)
	}

	first := e.arena.Binding(b.Shadowed)
	if first.Kind != model.KindImport || first.Data.QualifiedName != "os" {
		t.Fatalf("shadowed binding should be the plain `import os`, got %+v", first)
	}
}

// Scenario 3 (spec §8): `x = 1` then `x: int` at module level: first
// binding is Assignment, second is Annotation that does not shadow, and
// the assignment keeps its prior references (Testable Property P5).
func TestAssignThenAnnotationDoesNotShadow(t *testing.T) {
	m := module(
		&pyast.Assign{Targets: []pyast.Expr{name("x", pyast.Store)}, Value: &pyast.Constant{Kind: pyast.ConstNumber, Value: 1}},
		&pyast.AnnAssign{Target: name("x", pyast.Store), Annotation: name("int", pyast.Load), Simple: true},
	)
	e, _ := analyze(t, m)

	id, ok := e.arena.ModuleScope().Lookup("x")
	if !ok {
		t.Fatalf("expected x to be bound")
	}
	b := e.arena.Binding(id)
	if b.Kind != model.KindAssignment {
		t.Fatalf("scope should still resolve x to the Assignment, got %v", b.Kind)
	}
	if b.DelayedAnnotation == model.NoBinding {
		t.Fatalf("expected a delayed-annotation link from the assignment")
	}
	ann := e.arena.Binding(b.DelayedAnnotation)
	if ann.Kind != model.KindAnnotation {
		t.Fatalf("delayed annotation should point at an Annotation binding, got %v", ann.Kind)
	}
}

// Scenario 4 / Testable Property P3: `[x for x in range(3) for y in (x,)]`
// in function scope: one Generator scope, and the *second* generator's
// iterable sees the inner (Generator) scope's `x`, not some outer one.
func TestComprehensionEvaluationOrder(t *testing.T) {
	m := module(&pyast.FunctionDef{
		Name: "f",
		Args: &pyast.Arguments{},
		Body: []pyast.Stmt{exprStmt(&pyast.ListComp{
			Elt: name("x", pyast.Load),
			Gens: []*pyast.Comprehension{
				{Target: name("x", pyast.Store), Iter: &pyast.Call{Func: name("range", pyast.Load), Args: []pyast.Expr{&pyast.Constant{Kind: pyast.ConstNumber, Value: 3}}}},
				{Target: name("y", pyast.Store), Iter: &pyast.Tuple{Elts: []pyast.Expr{name("x", pyast.Load)}}},
			},
		})},
	})
	e, _ := analyze(t, m)

	fnID, ok := e.arena.ModuleScope().Lookup("f")
	if !ok {
		t.Fatalf("expected f to be bound")
	}
	fnScope := e.arena.Binding(fnID).Data.BodyScope

	var genScope *model.Scope
	for _, s := range e.arena.AllScopes() {
		if s.Kind == model.ScopeGenerator && s.Parent == fnScope {
			genScope = s
		}
	}
	if genScope == nil {
		t.Fatalf("expected exactly one Generator scope under the function scope")
	}

	xID, ok := genScope.Lookup("x")
	if !ok {
		t.Fatalf("x should be bound in the generator scope")
	}
	xBinding := e.arena.Binding(xID)
	if len(xBinding.References) != 2 {
		t.Fatalf("x's binding should accrue both the element-expr Load and the second generator's iterable Load, got %d", len(xBinding.References))
	}
}

// Testable Property P3, class-scope variant: a comprehension inside a class
// body sees the class attribute for its first generator's iterable (walked
// in the outer scope before the Generator scope is pushed) but the second
// generator's iterable, walked inside the Generator scope, must not resolve
// to the class scope at all (CPython's class-scope invisibility rule).
func TestComprehensionInClassBodySkipsClassScopeForInnerLookups(t *testing.T) {
	m := module(&pyast.ClassDef{
		Name: "C",
		Body: []pyast.Stmt{
			&pyast.Assign{Targets: []pyast.Expr{name("T", pyast.Store)}, Value: &pyast.List{}},
			exprStmt(&pyast.ListComp{
				Elt: name("x", pyast.Load),
				Gens: []*pyast.Comprehension{
					{Target: name("x", pyast.Store), Iter: name("T", pyast.Load)},
					{Target: name("y", pyast.Store), Iter: name("T", pyast.Load)},
				},
			}),
		},
	})
	e, _ := analyze(t, m)

	classID, _ := e.arena.ModuleScope().Lookup("C")
	classScope := e.arena.Binding(classID).Data.BodyScope
	tID, _ := e.arena.Scope(classScope).Lookup("T")
	tBinding := e.arena.Binding(tID)

	// Only the first generator's iterable (walked in the outer/class scope)
	// should have resolved to the class attribute; the second generator's
	// iterable runs inside the Generator scope and must not see it.
	if len(tBinding.References) != 1 {
		t.Fatalf("expected exactly one Load against the class attribute T, got %d", len(tBinding.References))
	}
}

// Scenario 5 (spec §8): `__all__ = ["foo", 1]` at module level with `foo`
// undefined and no star imports: one Export binding with InvalidAllObject
// set, one UndefinedExport diagnostic for foo.
func TestDunderAllInvalidElementAndUndefinedExport(t *testing.T) {
	m := module(&pyast.Assign{
		Targets: []pyast.Expr{name("__all__", pyast.Store)},
		Value: &pyast.List{Elts: []pyast.Expr{
			strConst("foo"),
			&pyast.Constant{Kind: pyast.ConstNumber, Value: 1},
		}},
	})
	e, diags := analyze(t, m)

	id, ok := e.arena.ModuleScope().Lookup("__all__")
	if !ok {
		t.Fatalf("expected __all__ to be bound")
	}
	b := e.arena.Binding(id)
	if b.Kind != model.KindExport {
		t.Fatalf("expected Export kind, got %v", b.Kind)
	}
	if !b.Flags.Has(model.InvalidAllObject) {
		t.Fatalf("expected InvalidAllObject to be set for the non-string element")
	}
	if !b.Flags.Has(model.PrivateDeclaration) {
		t.Fatalf("an underscore-prefixed name is a private declaration, dunders included")
	}

	found := false
	for _, d := range diags {
		if d.Code == diagnostic.CodeUndefinedExport {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an UndefinedExport diagnostic for 'foo', got %+v", diags)
	}
}

// Testable Property P6, star-import variant: the same undefined export
// becomes UndefinedLocalWithImportStarUsage when the module has a star
// import.
func TestDunderAllUndefinedWithStarImportUsesDifferentCode(t *testing.T) {
	m := module(
		&pyast.ImportFrom{Module: "os", Names: []*pyast.Alias{{Name: "*"}}},
		&pyast.Assign{
			Targets: []pyast.Expr{name("__all__", pyast.Store)},
			Value:   &pyast.List{Elts: []pyast.Expr{strConst("foo")}},
		},
	)
	_, diags := analyze(t, m)

	if len(diags) != 1 || diags[0].Code != diagnostic.CodeUndefinedLocalWithStarImport {
		t.Fatalf("expected a single UndefinedLocalWithImportStarUsage diagnostic, got %+v", diags)
	}
}

// Scenario 6 (spec §8): a handler's Assignment binding carries the
// handled-exception context (here observed via the pushed/popped stack
// around the handler body).
func TestTryExceptHandledExceptionStack(t *testing.T) {
	var duringHandler []string
	m := module(&pyast.Try{
		Body: []pyast.Stmt{&pyast.Import{Names: []*pyast.Alias{{Name: "optional_dep"}}}},
		Handlers: []*pyast.ExceptHandler{{
			Type: &pyast.ExceptType{Expr: name("ImportError", pyast.Load)},
			Body: []pyast.Stmt{&pyast.Assign{
				Targets: []pyast.Expr{name("optional_dep", pyast.Store)},
				Value:   &pyast.Constant{Kind: pyast.ConstNone},
			}},
		}},
	})

	e := New(Options{})
	e.rules.Handlers = append(e.rules.Handlers, recordingHandlerRule{out: &duringHandler})
	e.visitModuleLevel(ModuleDescriptor{Root: m})
	e.visitModuleBody(m.Body)

	if len(duringHandler) != 1 || duringHandler[0] != "ImportError" {
		t.Fatalf("expected the handler body to run with ImportError on the handled-exception stack, got %v", duringHandler)
	}
	if len(e.HandledExceptions()) != 0 {
		t.Fatalf("handled-exception stack must be empty once the try statement finishes")
	}

	id, ok := e.arena.ModuleScope().Lookup("optional_dep")
	if !ok {
		t.Fatalf("expected optional_dep to be bound")
	}
	if e.arena.Binding(id).Kind != model.KindAssignment {
		t.Fatalf("handler-body assignment should still be an ordinary Assignment binding")
	}
}

// Testable Property P1: scope push/pop stays balanced across a nested
// function/class/lambda tree.
func TestScopeDisciplineAcrossNesting(t *testing.T) {
	m := module(&pyast.ClassDef{
		Name: "C",
		Body: []pyast.Stmt{&pyast.FunctionDef{
			Name: "method",
			Args: &pyast.Arguments{},
			Body: []pyast.Stmt{exprStmt(&pyast.Lambda{
				Args: &pyast.Arguments{},
				Body: name("method", pyast.Load),
			})},
		}},
	})
	e, _ := analyze(t, m)

	if e.arena.CurrentScopeID() != e.arena.ModuleScope().ID {
		t.Fatalf("after a full analysis, the active scope must be back at the module scope")
	}
}

// Testable Property P2: the flag stack observed before a node equals the
// flag stack observed after, even across a BooleanTest/Subscript descent.
func TestFlagStackDiscipline(t *testing.T) {
	m := module(&pyast.If{
		Test: &pyast.Call{Func: name("bool", pyast.Load), Args: []pyast.Expr{name("x", pyast.Load)}},
		Body: []pyast.Stmt{exprStmt(name("x", pyast.Load))},
	})
	e := New(Options{})
	before := e.flags &^ model.LatchMask
	e.visitModuleLevel(ModuleDescriptor{Root: m})
	e.visitModuleBody(m.Body)
	after := e.flags &^ model.LatchMask
	if after != before {
		t.Fatalf("non-latch flags after a full module visit should equal flags before: before=%v after=%v", before, after)
	}
}

// Scenario 2 (spec §8): under `from __future__ import annotations`, a
// quoted annotation is deferred, parsed on drain, and walked under
// TypeDefinition|SimpleStringTypeDefinition|FutureTypeDefinition.
func TestFutureAnnotationsDefersQuotedAnnotation(t *testing.T) {
	var observedFlags model.SemanticFlags
	m := module(
		&pyast.ImportFrom{Module: "__future__", Names: []*pyast.Alias{{Name: "annotations"}}},
		&pyast.FunctionDef{
			Name: "f",
			Args: &pyast.Arguments{Args: []*pyast.Arg{{Name: "x", Annotation: strConst("List[int]")}}},
			Body: []pyast.Stmt{&pyast.Pass{}},
		},
	)

	e := New(Options{StringParser: func(src string) (pyast.Expr, error) {
		return name(src, pyast.Load), nil
	}})
	e.rules.Exprs = append(e.rules.Exprs, recordingExprRule{out: &observedFlags})

	e.visitModuleLevel(ModuleDescriptor{Root: m})
	e.visitModuleBody(m.Body)
	if len(e.queues.stringTypeDefinitions) == 0 {
		t.Fatalf("expected the quoted annotation to be enqueued as a string-type definition")
	}

	e.drainDeferred()
	if !e.isQueuesEmpty() {
		t.Fatalf("deferred queues must reach fixpoint (P4)")
	}

	want := model.TypeDefinition | model.SimpleStringTypeDefinition | model.FutureTypeDefinition
	if !observedFlags.Has(want) {
		t.Fatalf("parsed forward reference should be walked under TypeDefinition|SimpleStringTypeDefinition|FutureTypeDefinition, got %v", observedFlags)
	}
}

// recordingExprRule is a test-only ExprRule that captures the flags active
// on the last expression it observed.
type recordingExprRule struct {
	out *model.SemanticFlags
}

func (recordingExprRule) Code() diagnostic.Code { return "test-recording-expr" }

func (r recordingExprRule) CheckExpr(ctx rules.Context, expr pyast.Expr) {
	if n, ok := expr.(*pyast.Name); ok && n.Id == "List[int]" {
		*r.out = ctx.Flags()
	}
}

// flagRecorder is a test-only ExprRule capturing the flags observed at
// dispatch time for every Name, keyed by identifier.
type flagRecorder struct {
	out map[string]model.SemanticFlags
}

func (flagRecorder) Code() diagnostic.Code { return "test-flag-recorder" }

func (r flagRecorder) CheckExpr(ctx rules.Context, expr pyast.Expr) {
	if n, ok := expr.(*pyast.Name); ok {
		r.out[n.Id] = ctx.Flags()
	}
}

func analyzeWithRecorder(t *testing.T, m *pyast.Module) (*Engine, map[string]model.SemanticFlags) {
	t.Helper()
	rec := flagRecorder{out: map[string]model.SemanticFlags{}}
	e := New(Options{StringParser: func(src string) (pyast.Expr, error) {
		return name(src, pyast.Load), nil
	}})
	e.rules.Exprs = append(e.rules.Exprs, rec)
	e.visitModuleLevel(ModuleDescriptor{Root: m})
	e.visitModuleBody(m.Body)
	e.drainDeferred()
	e.postWalk()
	return e, rec.out
}

// An `if` test enters BooleanTest; `not` keeps it alive for its operand,
// while descent into a call's arguments drops it (§4.1 "Boolean-test
// context").
func TestBooleanTestSetOnIfTestAndDroppedInSubexpressions(t *testing.T) {
	m := module(
		&pyast.If{
			Test: &pyast.UnaryOp{Op: "not", Operand: name("x", pyast.Load)},
			Body: []pyast.Stmt{&pyast.Pass{}},
		},
		&pyast.If{
			Test: &pyast.Call{Func: name("f", pyast.Load), Args: []pyast.Expr{name("y", pyast.Load)}},
			Body: []pyast.Stmt{&pyast.Pass{}},
		},
	)
	_, flags := analyzeWithRecorder(t, m)

	if !flags["x"].Has(model.BooleanTest) {
		t.Fatalf("`not x` keeps boolean-test context alive for x, got %v", flags["x"])
	}
	if flags["y"].Has(model.BooleanTest) {
		t.Fatalf("a call argument inside an if test must not be in boolean-test context, got %v", flags["y"])
	}
}

// `x: InitVar[T]` escalates the InitVar head to runtime-required while the
// parameter stays typing-only (§4.1 "Annotation contexts").
func TestInitVarHeadEscalatedInnerStaysTypingOnly(t *testing.T) {
	m := module(&pyast.AnnAssign{
		Target: name("x", pyast.Store),
		Annotation: &pyast.Subscript{
			Value: name("InitVar", pyast.Load),
			Index: name("T", pyast.Load),
		},
		Simple: true,
	})
	_, flags := analyzeWithRecorder(t, m)

	if !flags["InitVar"].Has(model.RuntimeRequiredAnnotation) {
		t.Fatalf("InitVar head should carry RuntimeRequiredAnnotation, got %v", flags["InitVar"])
	}
	if flags["T"].Has(model.RuntimeRequiredAnnotation) {
		t.Fatalf("InitVar's parameter must stay typing-only, got %v", flags["T"])
	}
	if !flags["T"].Has(model.TypingOnlyAnnotation) {
		t.Fatalf("InitVar's parameter should carry TypingOnlyAnnotation, got %v", flags["T"])
	}
}

// Scenario 2's diagnostic half: quoting an annotation is redundant once
// `from __future__ import annotations` is active.
func TestQuotedAnnotationDiagnosticUnderFutureAnnotations(t *testing.T) {
	m := module(
		&pyast.ImportFrom{Module: "__future__", Names: []*pyast.Alias{{Name: "annotations"}}},
		&pyast.FunctionDef{
			Name: "f",
			Args: &pyast.Arguments{Args: []*pyast.Arg{{Name: "x", Annotation: strConst("List[int]")}}},
			Body: []pyast.Stmt{&pyast.Pass{}},
		},
	)
	_, diags := analyze(t, m)

	found := false
	for _, d := range diags {
		if d.Code == diagnostic.CodeQuotedAnnotation {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a quoted-annotation diagnostic, got %+v", diags)
	}
}

// On handler exit the `as name` binding flips to UnboundException with a
// predecessor link back to the bound-phase binding (§3, §4.1 phase 4).
func TestHandlerNameUnboundOnExitWithPredecessor(t *testing.T) {
	m := module(&pyast.Try{
		Body: []pyast.Stmt{&pyast.Pass{}},
		Handlers: []*pyast.ExceptHandler{{
			Type: &pyast.ExceptType{Expr: name("ValueError", pyast.Load)},
			Name: "err",
			Body: []pyast.Stmt{&pyast.Pass{}},
		}},
	})
	e, _ := analyze(t, m)

	id, ok := e.arena.ModuleScope().Lookup("err")
	if !ok {
		t.Fatalf("expected err to be bound")
	}
	b := e.arena.Binding(id)
	if b.Kind != model.KindUnboundException {
		t.Fatalf("after the handler exits, err should be UnboundException, got %v", b.Kind)
	}
	if b.Data.Predecessor == model.NoBinding {
		t.Fatalf("unbound exception should link its bound-phase predecessor")
	}
	if e.arena.Binding(b.Data.Predecessor).Kind != model.KindBoundException {
		t.Fatalf("predecessor should be the BoundException binding")
	}
}

// `if False:` is a legacy type-checking guard; Loads inside its body carry
// the TypeCheckingBlock context (Testable Property P7).
func TestIfFalseBodyCarriesTypeCheckingBlockFlag(t *testing.T) {
	m := module(
		&pyast.Assign{Targets: []pyast.Expr{name("helper", pyast.Store)}, Value: &pyast.Constant{Kind: pyast.ConstNumber, Value: 1}},
		&pyast.If{
			Test: &pyast.Constant{Kind: pyast.ConstBool, Value: false},
			Body: []pyast.Stmt{exprStmt(name("helper", pyast.Load))},
		},
	)
	_, flags := analyzeWithRecorder(t, m)

	if !flags["helper"].Has(model.TypeCheckingBlock) {
		t.Fatalf("a Load inside `if False:` should carry TypeCheckingBlock, got %v", flags["helper"])
	}
}

// A bare `locals()` call marks the enclosing scope (§3 "uses locals()").
func TestLocalsCallMarksEnclosingScope(t *testing.T) {
	m := module(&pyast.FunctionDef{
		Name: "f",
		Args: &pyast.Arguments{},
		Body: []pyast.Stmt{exprStmt(&pyast.Call{Func: name("locals", pyast.Load)})},
	})
	e, _ := analyze(t, m)

	fnID, _ := e.arena.ModuleScope().Lookup("f")
	fnScope := e.arena.Scope(e.arena.Binding(fnID).Data.BodyScope)
	if !fnScope.UsesLocals {
		t.Fatalf("the function scope should be marked as using locals()")
	}
}

// A well-formed `__all__` entry that resolves records a global Load
// reference against the named binding (§4.4, Testable Property P6).
func TestExportResolutionRecordsGlobalReference(t *testing.T) {
	m := module(
		&pyast.Assign{Targets: []pyast.Expr{name("foo", pyast.Store)}, Value: &pyast.Constant{Kind: pyast.ConstNumber, Value: 1}},
		&pyast.Assign{
			Targets: []pyast.Expr{name("__all__", pyast.Store)},
			Value:   &pyast.List{Elts: []pyast.Expr{strConst("foo")}},
		},
	)
	e, diags := analyze(t, m)

	if len(diags) != 0 {
		t.Fatalf("a resolvable export should produce no diagnostics, got %+v", diags)
	}
	fooID, _ := e.arena.ModuleScope().Lookup("foo")
	if len(e.arena.Binding(fooID).References) != 1 {
		t.Fatalf("export resolution should attach one Load reference to foo")
	}
}

// A Load that resolves to no binding lands on the unresolved list for the
// post-walk unresolved-reference pass (§4.4).
func TestUnresolvedLoadCollected(t *testing.T) {
	m := module(exprStmt(name("missing", pyast.Load)))
	e, _ := analyze(t, m)

	unresolved := e.UnresolvedNames()
	if len(unresolved) != 1 || unresolved[0].Name != "missing" {
		t.Fatalf("expected exactly one unresolved Load for 'missing', got %+v", unresolved)
	}
}

// A quoted annotation whose literal uses implicit concatenation drains
// under ComplexStringTypeDefinition rather than Simple (§3 flag list).
func TestComplexStringAnnotationFlag(t *testing.T) {
	m := module(&pyast.AnnAssign{
		Target: name("x", pyast.Store),
		Annotation: &pyast.Constant{
			Kind:  pyast.ConstString,
			Value: "int",
			Raw:   `"in" "t"`,
		},
		Simple: true,
	})
	_, flags := analyzeWithRecorder(t, m)

	got, ok := flags["int"]
	if !ok {
		t.Fatalf("the parsed forward reference should have been walked")
	}
	if !got.Has(model.ComplexStringTypeDefinition) || got.Has(model.SimpleStringTypeDefinition) {
		t.Fatalf("concatenated string annotation should be complex, got %v", got)
	}
}

// `@singledispatch` escalates only the first parameter's annotation — the
// dispatch machinery reads arg 0's type at runtime, nothing else (§4.1
// "Annotation contexts").
func TestSingledispatchEscalatesOnlyFirstParameter(t *testing.T) {
	m := module(&pyast.FunctionDef{
		Name:       "f",
		Decorators: []pyast.Expr{name("singledispatch", pyast.Load)},
		Args: &pyast.Arguments{Args: []*pyast.Arg{
			{Name: "a", Annotation: name("A", pyast.Load)},
			{Name: "b", Annotation: name("B", pyast.Load)},
		}},
		Body: []pyast.Stmt{&pyast.Pass{}},
	})
	_, flags := analyzeWithRecorder(t, m)

	if !flags["A"].Has(model.RuntimeRequiredAnnotation) {
		t.Fatalf("the first parameter's annotation should be runtime-required, got %v", flags["A"])
	}
	if flags["B"].Has(model.RuntimeRequiredAnnotation) {
		t.Fatalf("a later parameter must keep the ordinary classification, got %v", flags["B"])
	}
	if !flags["B"].Has(model.RuntimeEvaluatedAnnotation) {
		t.Fatalf("a later parameter should stay runtime-evaluated, got %v", flags["B"])
	}
}

// The driver-built module descriptor is stamped on the engine and readable
// by rule hooks for the duration of the analysis (§2, §3 "Module
// descriptor").
func TestModuleDescriptorStampedForRules(t *testing.T) {
	m := module(&pyast.Pass{})
	e := New(Options{})
	e.visitModuleLevel(ModuleDescriptor{
		Kind:   PackageModule,
		Source: ModuleSource{Path: "pkg/__init__.py", Dotted: "pkg"},
		Root:   m,
	})
	e.visitModuleBody(m.Body)

	if e.Module().Kind != PackageModule {
		t.Fatalf("expected the package kind to be visible to rules, got %v", e.Module().Kind)
	}
	if e.Module().Source.Path != "pkg/__init__.py" || e.Module().Source.Dotted != "pkg" {
		t.Fatalf("expected the module source to round-trip, got %+v", e.Module().Source)
	}
}

func TestDeferredQueuesReachFixpoint(t *testing.T) {
	m := module(&pyast.FunctionDef{
		Name: "outer",
		Args: &pyast.Arguments{},
		Body: []pyast.Stmt{&pyast.FunctionDef{
			Name: "inner",
			Args: &pyast.Arguments{},
			Body: []pyast.Stmt{exprStmt(&pyast.Lambda{Args: &pyast.Arguments{}, Body: name("outer", pyast.Load)})},
		}},
	})
	_, _ = analyze(t, m)
}
