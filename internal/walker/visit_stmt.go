package walker

import (
	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/ident"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// visitModuleLevel runs the module-level half of the driver sequence (§2):
// stamp the immutable descriptor and arm the docstring FSM before any
// statement is visited.
func (e *Engine) visitModuleLevel(desc ModuleDescriptor) {
	e.module = desc
	e.enterDocstringScope()
}

// visitModuleBody visits each top-level statement, updating the three
// module-boundary latches before each one (§4.1 "Module-level boundary
// tracking") and resetting the import-boundary latch at notebook cell
// boundaries.
func (e *Engine) visitModuleBody(body []pyast.Stmt) {
	prevCell := -1
	for i, stmt := range body {
		if e.notebook != nil {
			if cell, ok := e.notebook.CellForOffset(stmt.Span().Start); ok {
				if i > 0 && cell != prevCell {
					e.resetImportBoundaryForCell()
				}
				prevCell = cell
			}
		}
		e.updateModuleBoundaries(stmt, i == 0)
		e.visitTopLevelStmt(stmt)
	}
}

// visitTopLevelStmt wraps visitStmt with the module docstring gate, which
// only applies to the outermost suite (§4.5).
func (e *Engine) visitTopLevelStmt(stmt pyast.Stmt) {
	e.visitStmtDocstringGate(stmt, func(isDocstring bool) {
		if isDocstring {
			e.withFlags(model.Docstring, func() { e.visitStmt(stmt) })
			return
		}
		e.visitStmt(stmt)
	})
}

// visitSuite walks an ordinary nested statement sequence (function/class
// bodies, loop/conditional/with/try blocks). It never arms the docstring
// FSM itself; for function and class bodies the caller arms it with
// enterDocstringScope before the call.
func (e *Engine) visitSuite(suite []pyast.Stmt) {
	for _, stmt := range suite {
		e.visitStmtDocstringGate(stmt, func(isDocstring bool) {
			if isDocstring {
				e.withFlags(model.Docstring, func() { e.visitStmt(stmt) })
				return
			}
			e.visitStmt(stmt)
		})
	}
}

// visitStmt runs the five-phase pipeline for one statement, then dispatches
// to registered StmtRule hooks (§4.1 phase 5).
func (e *Engine) visitStmt(stmt pyast.Stmt) {
	switch n := stmt.(type) {
	case *pyast.FunctionDef:
		e.visitFunctionDef(n)
	case *pyast.ClassDef:
		e.visitClassDef(n)
	case *pyast.Return:
		e.visitExpr(n.Value)
	case *pyast.Delete:
		for _, t := range n.Targets {
			e.visitDeleteTarget(t)
		}
	case *pyast.Assign:
		e.visitAssign(n)
	case *pyast.AugAssign:
		e.visitExpr(n.Target)
		e.visitExpr(n.Value)
	case *pyast.AnnAssign:
		e.visitAnnAssign(n)
	case *pyast.For:
		e.visitFor(n)
	case *pyast.While:
		e.withFlags(model.BooleanTest, func() { e.visitExpr(n.Test) })
		e.visitSuite(n.Body)
		e.visitSuite(n.Orelse)
	case *pyast.If:
		e.visitIf(n)
	case *pyast.With:
		e.visitWith(n)
	case *pyast.Raise:
		e.visitExpr(n.Exc)
		e.visitExpr(n.Cause)
	case *pyast.Try:
		e.visitTry(n)
	case *pyast.Assert:
		e.withFlags(model.BooleanTest, func() { e.visitExpr(n.Test) })
		e.visitExpr(n.Msg)
	case *pyast.Import:
		e.visitImport(n)
	case *pyast.ImportFrom:
		e.visitImportFrom(n)
	case *pyast.Global:
		for _, name := range n.Names {
			e.handleGlobal(name, n.Span())
		}
	case *pyast.Nonlocal:
		for _, name := range n.Names {
			e.handleNonlocal(name, n.Span())
		}
	case *pyast.ExprStmt:
		e.visitExpr(n.Value)
	case *pyast.Pass, *pyast.Break, *pyast.Continue:
		// no children, no bindings
	case *pyast.TypeAlias:
		e.visitTypeAlias(n)
	case *pyast.Match:
		e.visitMatch(n)
	}

	if e.rules != nil {
		e.rules.DispatchStmt(e, stmt)
	}
}

// visitDeleteTarget handles one element of a `del a, b.c, d[0]` statement:
// a bare name removes a binding, anything else only evaluates the object
// being mutated (§4.2).
func (e *Engine) visitDeleteTarget(target pyast.Expr) {
	switch t := target.(type) {
	case *pyast.Name:
		e.handleDelete(t)
	case *pyast.Attribute:
		e.visitExpr(t.Value)
	case *pyast.Subscript:
		e.visitExpr(t.Value)
		e.visitExpr(t.Index)
	case *pyast.Tuple:
		for _, elt := range t.Elts {
			e.visitDeleteTarget(elt)
		}
	case *pyast.List:
		for _, elt := range t.Elts {
			e.visitDeleteTarget(elt)
		}
	}
}

// visitAssign walks the value first (Python evaluates the right-hand side
// before any target), then binds each target, recognizing a module-level
// bare-name `__all__` assignment as an export list instead of an ordinary
// Assignment (§4.2, §4.4).
func (e *Engine) visitAssign(n *pyast.Assign) {
	e.visitExpr(n.Value)
	for _, target := range n.Targets {
		if name, ok := isDunderAllTarget(target); ok && e.arena.CurrentScopeID() == e.arena.ModuleScope().ID {
			e.handleModuleAllAssign(name, n.Value)
			continue
		}
		e.visitAssignTarget(target)
	}
}

// visitAssignTarget recursively binds an assignment target, routing
// Attribute/Subscript targets through a Load visit of the object being
// mutated instead of a binding, and flagging every leaf of a tuple/list/
// starred unpacking with UnpackedAssignment (§4.2).
func (e *Engine) visitAssignTarget(target pyast.Expr) {
	switch t := target.(type) {
	case *pyast.Name:
		e.handleStore(t, storeAssignment)
	case *pyast.Attribute:
		e.visitExpr(t.Value)
	case *pyast.Subscript:
		e.visitExpr(t.Value)
		e.visitExpr(t.Index)
	case *pyast.Starred:
		e.visitUnpackedTarget(t.Value)
	case *pyast.Tuple:
		for _, elt := range t.Elts {
			e.visitUnpackedTarget(elt)
		}
	case *pyast.List:
		for _, elt := range t.Elts {
			e.visitUnpackedTarget(elt)
		}
	}
}

// visitUnpackedTarget is visitAssignTarget for a leaf found inside a
// tuple/list/starred unpacking target, binding Name leaves with the
// UnpackedAssignment flag instead of a plain Assignment.
func (e *Engine) visitUnpackedTarget(target pyast.Expr) {
	switch t := target.(type) {
	case *pyast.Name:
		e.handleStore(t, storeUnpacked)
	case *pyast.Attribute:
		e.visitExpr(t.Value)
	case *pyast.Subscript:
		e.visitExpr(t.Value)
		e.visitExpr(t.Index)
	case *pyast.Starred:
		e.visitUnpackedTarget(t.Value)
	case *pyast.Tuple:
		for _, elt := range t.Elts {
			e.visitUnpackedTarget(elt)
		}
	case *pyast.List:
		for _, elt := range t.Elts {
			e.visitUnpackedTarget(elt)
		}
	}
}

// visitAnnAssign walks `target: annotation [= value]`. The annotation is
// evaluated (runtime-evaluated, subject to `__future__` deferral) before
// the value; a target with no value produces an Annotation binding instead
// of an Assignment (P5: it never shadows the existing binding) (§4.2).
func (e *Engine) visitAnnAssign(n *pyast.AnnAssign) {
	ctx := annotationRuntimeEvaluated
	if e.runtimeRequiredCtx {
		ctx = annotationRuntimeRequired
	}

	if sub, ok := n.Annotation.(*pyast.Subscript); ok && isInitVarHead(subscriptBaseName(sub.Value)) {
		// `InitVar[T]` is introspected by the dataclass machinery, so the
		// head is runtime-required even when the parameter T stays deferred
		// with every other annotation (§4.1 "Annotation contexts").
		e.withFlags(model.RuntimeRequiredAnnotation|model.TypeDefinition, func() {
			e.visitExpr(sub.Value)
		})
		e.withFlags(model.Subscript, func() {
			e.visitAnnotation(sub.Index, annotationTypingOnly)
		})
	} else {
		e.visitAnnotation(n.Annotation, ctx)
	}

	if n.Value != nil {
		e.visitExpr(n.Value)
		e.visitAssignTarget(n.Target)
		return
	}

	if name, ok := n.Target.(*pyast.Name); ok && n.Simple {
		e.handleStore(name, storeAnnotationNoValue)
		return
	}
	e.visitAssignTarget(n.Target)
}

// visitFor walks `for target in iter: body [else: orelse]`, binding the
// loop target as LoopVar after the iterable is evaluated (§4.2).
func (e *Engine) visitFor(n *pyast.For) {
	e.visitExpr(n.Iter)
	for _, name := range namesOf(n.Target) {
		e.handleStore(name, storeFor)
	}
	e.visitSuite(n.Body)
	e.visitSuite(n.Orelse)
}

// namesOf is collectTargetNames without the unpacking flag, used by
// statement forms that pick their own Kind regardless of unpacking shape.
func namesOf(target pyast.Expr) []*pyast.Name {
	names, _ := collectTargetNames(target)
	return names
}

// visitIf walks `if test: body [else: orelse]`, detecting a
// `if TYPE_CHECKING:` guard and walking its body under TypeCheckingBlock so
// every reference and rule hook inside it observes that flag; the body is
// otherwise walked like any other (§4.1, Testable Property P7).
func (e *Engine) visitIf(n *pyast.If) {
	e.withFlags(model.BooleanTest, func() { e.visitExpr(n.Test) })

	if e.isTypeCheckingGuard(n.Test) {
		if e.importer != nil {
			e.importer.VisitTypeCheckingBlock(n)
		}
		e.withFlags(model.TypeCheckingBlock, func() {
			e.bumpBranch(func() { e.visitSuite(n.Body) })
		})
		e.bumpBranch(func() { e.visitSuite(n.Orelse) })
		return
	}

	e.bumpBranch(func() { e.visitSuite(n.Body) })
	e.bumpBranch(func() { e.visitSuite(n.Orelse) })
}

// isTypeCheckingGuard recognizes `if TYPE_CHECKING:`,
// `if typing.TYPE_CHECKING:`, the aliased-import form
// (`from typing import TYPE_CHECKING as TC`), and the legacy `if False:` /
// `if 0:` spellings older codebases use for the same purpose (§4.1).
func (e *Engine) isTypeCheckingGuard(test pyast.Expr) bool {
	aliases := e.typeCheckingAliases
	switch t := test.(type) {
	case *pyast.Name:
		return ident.IsTypeCheckingName(t.Id, aliases)
	case *pyast.Attribute:
		if base, ok := t.Value.(*pyast.Name); ok {
			return ident.IsTypeCheckingName(base.Id+"."+t.Attr, aliases)
		}
	case *pyast.Constant:
		switch t.Kind {
		case pyast.ConstBool:
			return t.Value == false
		case pyast.ConstNumber:
			return t.Value == "0" || t.Value == 0
		}
	}
	return false
}

// visitWith walks `with expr as target, ...: body`, binding each
// `as`-target as a WithItemVar after its context-manager expression is
// evaluated (§4.2).
func (e *Engine) visitWith(n *pyast.With) {
	for _, item := range n.Items {
		e.visitExpr(item.ContextExpr)
		if item.OptionalVars != nil {
			for _, name := range namesOf(item.OptionalVars) {
				e.handleStore(name, storeWithItem)
			}
		}
	}
	e.visitSuite(n.Body)
}

// visitTry walks `try/except*/else/finally`, pushing the resolved
// exception-class name onto the handled-exception stack for each handler's
// body and bumping the branch counter around every independent branch
// (§4.1 "try statement").
func (e *Engine) visitTry(n *pyast.Try) {
	e.bumpBranch(func() { e.visitSuite(n.Body) })

	for _, h := range n.Handlers {
		var excNames []string
		if h.Type != nil {
			e.visitExpr(h.Type.Expr)
			excNames = handlerExceptionNames(h.Type.Expr)
		}
		boundID := model.NoBinding
		if h.Name != "" {
			boundID = e.arena.AddBinding(h.Name, h.Span(), model.KindBoundException, 0)
		}
		for _, name := range excNames {
			e.pushHandledException(name)
		}
		e.withFlags(model.ExceptionHandler, func() {
			e.bumpBranch(func() { e.visitSuite(h.Body) })
			if e.rules != nil {
				e.rules.DispatchHandler(e, h)
			}
		})
		for range excNames {
			e.popHandledException()
		}
		if h.Name != "" {
			// CPython unbinds the `as name` variable when the handler exits;
			// the predecessor link lets rules reach the bound-phase binding.
			unboundID := e.arena.AddBinding(h.Name, h.Span(), model.KindUnboundException, 0)
			e.arena.Binding(unboundID).Data.Predecessor = boundID
		}
	}

	e.bumpBranch(func() { e.visitSuite(n.Orelse) })
	e.bumpBranch(func() { e.visitSuite(n.Finally) })
}

// handlerExceptionNames flattens an except clause's class expression into
// the dotted names pushed onto the handled-exception stack: a bare name, a
// dotted attribute chain, or a tuple of either.
func handlerExceptionNames(expr pyast.Expr) []string {
	switch t := expr.(type) {
	case *pyast.Name:
		return []string{t.Id}
	case *pyast.Attribute:
		if dotted := subscriptBaseName(t); dotted != "" {
			return []string{dotted}
		}
	case *pyast.Tuple:
		var out []string
		for _, elt := range t.Elts {
			out = append(out, handlerExceptionNames(elt)...)
		}
		return out
	}
	return nil
}

// visitImport binds each `import a.b.c [as x]` alias: a plain dotted
// import with no `as` binds only its top-level component as
// SubmoduleImport when part of a dotted chain, otherwise Import; an
// aliased import binds Import under the given name with the Alias flag
// (§4.2 "Import bindings").
func (e *Engine) visitImport(n *pyast.Import) {
	if e.importer != nil {
		e.importer.VisitImport(n)
	}
	for _, alias := range n.Names {
		if alias.AsName != "" {
			id := e.arena.AddBinding(alias.AsName, alias.NameRange, model.KindImport, model.Alias)
			e.arena.Binding(id).Data.QualifiedName = alias.Name
			continue
		}
		top, isDotted := firstDottedComponent(alias.Name)
		kind := model.KindImport
		if isDotted {
			kind = model.KindSubmoduleImport
		}
		id := e.arena.AddBinding(top, alias.NameRange, kind, 0)
		e.arena.Binding(id).Data.QualifiedName = alias.Name
	}
}

func firstDottedComponent(dotted string) (string, bool) {
	for i := 0; i < len(dotted); i++ {
		if dotted[i] == '.' {
			return dotted[:i], true
		}
	}
	return dotted, false
}

// visitImportFrom binds each `from [.]*module import name [as x]` alias as
// FromImport, recognizing `from __future__ import annotations` to latch
// FutureAnnotations and binding every `__future__` name as FutureImport
// tagged with its feature on the binding's KindData (§4 supplement "future-feature-
// specific tracking").
func (e *Engine) visitImportFrom(n *pyast.ImportFrom) {
	if e.importer != nil {
		e.importer.VisitImport(n)
	}
	isFuture := n.Module == "__future__"
	isStar := len(n.Names) == 1 && n.Names[0].Name == "*"

	if isStar {
		e.arena.Scope(e.arena.CurrentScopeID()).StarImports = append(
			e.arena.Scope(e.arena.CurrentScopeID()).StarImports,
			model.StarImport{Level: n.Level, Module: n.Module},
		)
		e.arena.Scope(e.arena.CurrentScopeID()).HasStarImport = true
		return
	}

	for _, alias := range n.Names {
		localName := alias.Name
		if alias.AsName != "" {
			localName = alias.AsName
		}

		if isFuture {
			if alias.Name == "annotations" {
				e.flags |= model.FutureAnnotations
			}
			id := e.arena.AddBinding(localName, alias.NameRange, model.KindFutureImport, 0)
			e.arena.Binding(id).Data.FutureFeature = alias.Name
			continue
		}

		var flags model.BindingFlags
		if alias.AsName != "" {
			flags |= model.Alias
		}
		id := e.arena.AddBinding(localName, alias.NameRange, model.KindFromImport, flags)
		e.arena.Binding(id).Data.QualifiedName = n.Module + "." + alias.Name

		if ident.IsTypeCheckingName(alias.Name, nil) {
			if e.typeCheckingAliases == nil {
				e.typeCheckingAliases = map[string]string{}
			}
			e.typeCheckingAliases[localName] = "TYPE_CHECKING"
		}
	}
}

// visitTypeAlias walks the PEP 695 `type X[T] = value` statement: a
// TypeParam scope holds X's own parameters, the right-hand side is
// deferred as a type-param definition with that scope active, and only
// then is the name X bound in the enclosing scope (§4.1).
func (e *Engine) visitTypeAlias(n *pyast.TypeAlias) {
	pushed := e.pushTypeParamScope(n.TypeParams)
	e.deferTypeParamDefinition(n.Value)
	if pushed {
		e.arena.PopScope()
	}

	e.arena.AddBinding(n.Name, n.Span(), model.KindAssignment, 0)
}

// visitMatch walks `match subject: case pattern [if guard]: body`; capture
// names inside a pattern surface as ordinary Name(Store) nodes (§ note on
// pyast.Match), so each case only needs an ordinary target/body visit.
func (e *Engine) visitMatch(n *pyast.Match) {
	e.visitExpr(n.Subject)
	for _, c := range n.Cases {
		e.bumpBranch(func() {
			e.visitAssignTarget(c.Pattern)
			if c.Guard != nil {
				e.withFlags(model.BooleanTest, func() { e.visitExpr(c.Guard) })
			}
			e.visitSuite(c.Body)
		})
	}
}
