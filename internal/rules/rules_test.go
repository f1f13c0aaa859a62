package rules

import (
	"testing"

	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/diagnostic"
	"github.com/cwbudde/pywalk/pkg/hostapi"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

type fakeSettings struct {
	ignored map[string]bool
}

func (s fakeSettings) IsRuleEnabled(code string) bool { return !s.ignored[code] }
func (fakeSettings) ExtraBuiltins() []string           { return nil }
func (fakeSettings) TypingModuleAliases() []string     { return nil }
func (fakeSettings) Preview() bool                     { return false }
func (fakeSettings) ExtendGenerics() []string          { return nil }
func (fakeSettings) TargetVersion() string             { return "3.12" }

var _ hostapi.Settings = fakeSettings{}

type fakeContext struct {
	arena *model.Arena
	diags []diagnostic.Diagnostic
}

func (c *fakeContext) Flags() model.SemanticFlags    { return 0 }
func (c *fakeContext) Arena() *model.Arena           { return c.arena }
func (c *fakeContext) Settings() hostapi.Settings    { return nil }
func (c *fakeContext) Report(d diagnostic.Diagnostic) { c.diags = append(c.diags, d) }

func TestNewRegistryFiltersDisabledRules(t *testing.T) {
	settings := fakeSettings{ignored: map[string]bool{"bare-except": true}}
	reg := NewRegistry(settings, nil, nil, []HandlerRule{BareExceptRule{}}, nil)
	if len(reg.Handlers) != 0 {
		t.Fatalf("expected bare-except to be filtered out by settings, got %d handlers", len(reg.Handlers))
	}
}

func TestNewRegistryNilSettingsEnablesEverything(t *testing.T) {
	reg := NewRegistry(nil, nil, nil, []HandlerRule{BareExceptRule{}}, nil)
	if len(reg.Handlers) != 1 {
		t.Fatalf("nil settings should enable every rule by default")
	}
}

func TestBareExceptRuleFlagsOnlyBareHandlers(t *testing.T) {
	ctx := &fakeContext{}
	rule := BareExceptRule{}

	rule.CheckHandler(ctx, &pyast.ExceptHandler{})
	if len(ctx.diags) != 1 {
		t.Fatalf("a handler with no Type should be flagged, got %d diagnostics", len(ctx.diags))
	}

	ctx2 := &fakeContext{}
	rule.CheckHandler(ctx2, &pyast.ExceptHandler{Type: &pyast.ExceptType{Expr: &pyast.Name{Id: "ValueError"}}})
	if len(ctx2.diags) != 0 {
		t.Fatalf("a typed handler should not be flagged")
	}
}

func TestUnusedImportRuleFlagsOnlyUnreferencedImports(t *testing.T) {
	a := model.NewArena()
	used := a.AddBinding("used", pyast.Range{}, model.KindImport, 0)
	a.NewReference(used, pyast.Range{Start: 1, End: 2}, pyast.Load, 0)
	a.AddBinding("unused", pyast.Range{}, model.KindImport, 0)
	a.AddBinding("not_an_import", pyast.Range{}, model.KindAssignment, 0)

	ctx := &fakeContext{arena: a}
	rule := UnusedImportRule{}
	rule.CheckScope(ctx, a.ModuleScope())

	if len(ctx.diags) != 1 {
		t.Fatalf("expected exactly one unused-import diagnostic, got %d: %+v", len(ctx.diags), ctx.diags)
	}
}

func TestDispatchRunsOnlyEnabledHooks(t *testing.T) {
	reg := NewRegistry(nil, nil, nil, []HandlerRule{BareExceptRule{}}, nil)
	ctx := &fakeContext{}
	reg.DispatchHandler(ctx, &pyast.ExceptHandler{})
	if len(ctx.diags) != 1 {
		t.Fatalf("expected the registered handler rule to run once")
	}
}
