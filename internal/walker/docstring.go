package walker

import "github.com/cwbudde/pywalk/pkg/pyast"

// docstringState is the two-state FSM of §4.5: entering a function or
// class body (and module entry) sets Expected; visiting any statement
// reads and then resets it.
type docstringState int

const (
	docstringExpected docstringState = iota
	docstringOther
)

// enterDocstringScope arms the FSM on module/function/class entry.
func (e *Engine) enterDocstringScope() {
	e.docstringState = docstringExpected
}

// visitStmtDocstringGate reads and resets the FSM for one top-level statement
// of a suite, setting model.Docstring for the descent if the statement is
// a string-literal expression statement at that point.
func (e *Engine) visitStmtDocstringGate(stmt pyast.Stmt, descend func(isDocstring bool)) {
	wasExpected := e.docstringState == docstringExpected
	e.docstringState = docstringOther

	isDocstring := false
	if wasExpected {
		if es, ok := stmt.(*pyast.ExprStmt); ok {
			if c, ok := es.Value.(*pyast.Constant); ok && c.Kind == pyast.ConstString {
				isDocstring = true
			}
		}
	}
	descend(isDocstring)
}
