package walker

import (
	"strings"

	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// moduleBoundary tracks whether the module has already seen its docstring,
// its `__future__` imports, and its top-level import block, independent of
// the latch bits stamped onto model.SemanticFlags (which is what rules
// actually query; this struct is the engine's bookkeeping to decide when to
// set them).
type moduleBoundary struct {
	pastDocstring bool
	pastFutures   bool
	pastImports   bool
}

// sysPathMutators are calls that are exempted from ending the import
// boundary, matching ruff's treatment of common "still setting up the
// import environment" idioms (§4.1 exceptions to boundary (c)).
var sysPathMutators = map[string]bool{
	"sys.path.append": true, "sys.path.insert": true, "sys.path.extend": true,
	"os.environ.setdefault": true, "matplotlib.use": true,
}

// dottedCallName renders `a.b.c(...)`'s callee as "a.b.c", or "" if the
// callee isn't a plain dotted-attribute chain.
func dottedCallName(call *pyast.Call) string {
	var parts []string
	var cur pyast.Expr = call.Func
	for {
		switch n := cur.(type) {
		case *pyast.Attribute:
			parts = append([]string{n.Attr}, parts...)
			cur = n.Value
		case *pyast.Name:
			parts = append([]string{n.Id}, parts...)
			return strings.Join(parts, ".")
		default:
			return ""
		}
	}
}

// isDunderAssignment reports whether stmt assigns to a single dunder name
// at module level (`__version__ = ...`), exempted from ending the import
// boundary.
func isDunderAssignment(stmt pyast.Stmt) bool {
	a, ok := stmt.(*pyast.Assign)
	if !ok || len(a.Targets) != 1 {
		return false
	}
	name, ok := a.Targets[0].(*pyast.Name)
	return ok && strings.HasPrefix(name.Id, "__") && strings.HasSuffix(name.Id, "__")
}

// isBoundaryExempt reports whether a top-level statement is exempted from
// ending the import-boundary latch (§4.1 "Exceptions to (c)").
func isBoundaryExempt(stmt pyast.Stmt) bool {
	if isDunderAssignment(stmt) {
		return true
	}
	es, ok := stmt.(*pyast.ExprStmt)
	if !ok {
		return false
	}
	call, ok := es.Value.(*pyast.Call)
	if !ok {
		return false
	}
	return sysPathMutators[dottedCallName(call)]
}

// updateModuleBoundaries runs once per top-level statement (module-level
// body only; nested blocks never affect these latches, per §4.1) before
// visiting it, latching ModuleDocstringBoundary/FuturesBoundary/
// ImportBoundary the first time each condition is crossed.
func (e *Engine) updateModuleBoundaries(stmt pyast.Stmt, isFirstStmt bool) {
	if !e.moduleBoundary.pastDocstring {
		if !(isFirstStmt && isDocstringStmt(stmt)) {
			e.moduleBoundary.pastDocstring = true
			e.latchModuleBit(model.ModuleDocstringBoundary)
		}
	}

	if !e.moduleBoundary.pastFutures {
		if !isFutureImport(stmt) {
			e.moduleBoundary.pastFutures = true
			e.latchModuleBit(model.FuturesBoundary)
		}
	}

	if !e.moduleBoundary.pastImports {
		if !isImportStmt(stmt) && !isBoundaryExempt(stmt) {
			e.moduleBoundary.pastImports = true
			e.latchModuleBit(model.ImportBoundary)
		}
	}
}

// resetImportBoundaryForCell implements the notebook exception: the
// import-boundary bit is reset when a cell boundary falls between two
// top-level statements.
func (e *Engine) resetImportBoundaryForCell() {
	e.moduleBoundary.pastImports = false
	e.flags = e.flags.Without(model.ImportBoundary)
}

func isDocstringStmt(stmt pyast.Stmt) bool {
	es, ok := stmt.(*pyast.ExprStmt)
	if !ok {
		return false
	}
	c, ok := es.Value.(*pyast.Constant)
	return ok && c.Kind == pyast.ConstString
}

func isFutureImport(stmt pyast.Stmt) bool {
	imp, ok := stmt.(*pyast.ImportFrom)
	return ok && imp.Module == "__future__"
}

func isImportStmt(stmt pyast.Stmt) bool {
	switch stmt.(type) {
	case *pyast.Import, *pyast.ImportFrom:
		return true
	}
	return false
}
