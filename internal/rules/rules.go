// Package rules defines the analysis-dispatch seam (§2 "Analysis
// dispatch", §4.1 phase 5): the engine completes a node's traversal, then
// hands it to every registered rule hook for that node granularity. Rule
// bodies themselves are out of scope for this core (§1); this package only
// fixes the interfaces and a registry, plus the two demonstration rules in
// demo.go.
package rules

import (
	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/diagnostic"
	"github.com/cwbudde/pywalk/pkg/hostapi"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// Context is the narrow read/report surface a rule hook receives. It never
// exposes scope push/pop or binding mutation: rules observe a completed
// node, they don't participate in building the semantic model.
type Context interface {
	Flags() model.SemanticFlags
	Arena() *model.Arena
	Settings() hostapi.Settings
	Report(d diagnostic.Diagnostic)
}

// StmtRule is invoked at phase 5 for a completed statement.
type StmtRule interface {
	Code() diagnostic.Code
	CheckStmt(ctx Context, stmt pyast.Stmt)
}

// ExprRule is invoked at phase 5 for a completed expression.
type ExprRule interface {
	Code() diagnostic.Code
	CheckExpr(ctx Context, expr pyast.Expr)
}

// HandlerRule is invoked when an except-handler's body finishes, with the
// handled-exception context still active.
type HandlerRule interface {
	Code() diagnostic.Code
	CheckHandler(ctx Context, h *pyast.ExceptHandler)
}

// ScopeRule is invoked once per scope during the deferred_scopes pass
// (§4.4), after every other pass has run.
type ScopeRule interface {
	Code() diagnostic.Code
	CheckScope(ctx Context, scope *model.Scope)
}

// BindingRule is invoked once per binding during the post-walk deferred
// bindings pass (§4.4), before the scope pass.
type BindingRule interface {
	Code() diagnostic.Code
	CheckBinding(ctx Context, b *model.Binding)
}

// Registry holds the enabled rule hooks, filtered by hostapi.Settings at
// construction time. Bindings is appended to directly (there is no
// constructor slot for it; binding-granular rules are rarer than the other
// four and callers opt in per rule).
type Registry struct {
	Stmts    []StmtRule
	Exprs    []ExprRule
	Handlers []HandlerRule
	Scopes   []ScopeRule
	Bindings []BindingRule
}

// NewRegistry builds a Registry containing only the rules whose code is
// enabled per settings.
func NewRegistry(settings hostapi.Settings, stmts []StmtRule, exprs []ExprRule, handlers []HandlerRule, scopes []ScopeRule) *Registry {
	r := &Registry{}
	enabled := func(code diagnostic.Code) bool {
		return settings == nil || settings.IsRuleEnabled(string(code))
	}
	for _, s := range stmts {
		if enabled(s.Code()) {
			r.Stmts = append(r.Stmts, s)
		}
	}
	for _, e := range exprs {
		if enabled(e.Code()) {
			r.Exprs = append(r.Exprs, e)
		}
	}
	for _, h := range handlers {
		if enabled(h.Code()) {
			r.Handlers = append(r.Handlers, h)
		}
	}
	for _, sc := range scopes {
		if enabled(sc.Code()) {
			r.Scopes = append(r.Scopes, sc)
		}
	}
	return r
}

func (r *Registry) DispatchStmt(ctx Context, stmt pyast.Stmt) {
	for _, rule := range r.Stmts {
		rule.CheckStmt(ctx, stmt)
	}
}

func (r *Registry) DispatchExpr(ctx Context, expr pyast.Expr) {
	for _, rule := range r.Exprs {
		rule.CheckExpr(ctx, expr)
	}
}

func (r *Registry) DispatchHandler(ctx Context, h *pyast.ExceptHandler) {
	for _, rule := range r.Handlers {
		rule.CheckHandler(ctx, h)
	}
}

func (r *Registry) DispatchScope(ctx Context, scope *model.Scope) {
	for _, rule := range r.Scopes {
		rule.CheckScope(ctx, scope)
	}
}

func (r *Registry) DispatchBinding(ctx Context, b *model.Binding) {
	for _, rule := range r.Bindings {
		rule.CheckBinding(ctx, b)
	}
}
