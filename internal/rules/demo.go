package rules

import (
	"fmt"

	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/diagnostic"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// BareExceptRule flags a `except:` clause with no exception type, mirroring
// the kind of style rule the rest of the pack's lint engines would plug in
// at the handler-hook granularity.
type BareExceptRule struct{}

func (BareExceptRule) Code() diagnostic.Code { return "bare-except" }

func (BareExceptRule) CheckHandler(ctx Context, h *pyast.ExceptHandler) {
	if h.Type != nil {
		return
	}
	ctx.Report(diagnostic.Diagnostic{
		Range:   h.Span(),
		Code:    "bare-except",
		Message: "bare `except:` catches BaseException, including KeyboardInterrupt and SystemExit",
	})
}

// UnusedImportRule flags a scope-level Import/FromImport/SubmoduleImport
// binding that accrued no reference of any kind and is not an explicit
// export, the canonical deferred_scopes-style check named in §4.4.
type UnusedImportRule struct{}

func (UnusedImportRule) Code() diagnostic.Code { return "unused-import" }

func (UnusedImportRule) CheckScope(ctx Context, scope *model.Scope) {
	arena := ctx.Arena()
	for _, name := range scope.Order {
		id, ok := scope.Lookup(name)
		if !ok {
			continue
		}
		b := arena.Binding(id)
		if b.Kind != model.KindImport && b.Kind != model.KindFromImport && b.Kind != model.KindSubmoduleImport {
			continue
		}
		if len(b.References) > 0 {
			continue
		}
		if b.Flags.Any(model.ExplicitExport) {
			continue
		}
		ctx.Report(diagnostic.Diagnostic{
			Range:   b.Range,
			Code:    "unused-import",
			Message: fmt.Sprintf("%q imported but unused", b.Name),
		})
	}
}
