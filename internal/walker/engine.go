// Package walker implements the traversal engine: the per-node
// pre/binding/recurse/cleanup/analyze pipeline that builds the semantic
// model and schedules deferred sub-walks (§4.1). It is grounded on
// CWBudde/go-dws's internal/semantic.Analyzer — a single struct that owns
// every piece of per-file state and is constructed once per analysis — but
// rebuilt around Python's evaluation-order and deferred-annotation rules
// instead of DWScript's type checker.
package walker

import (
	"github.com/google/uuid"

	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/internal/rules"
	"github.com/cwbudde/pywalk/internal/walkerr"
	"github.com/cwbudde/pywalk/pkg/diagnostic"
	"github.com/cwbudde/pywalk/pkg/hostapi"
	"github.com/cwbudde/pywalk/pkg/ident"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// PythonBuiltins are the names seeded into the module scope as Builtin
// bindings before any user code is visited (§6 "Builtins seeding"). This is
// not an exhaustive list of every CPython builtin; it covers the set
// commonly consulted by name-resolution rules.
var PythonBuiltins = []string{
	"abs", "aiter", "anext", "all", "any", "ascii", "bin", "bool", "breakpoint",
	"bytearray", "bytes", "callable", "chr", "classmethod", "compile", "complex",
	"delattr", "dict", "dir", "divmod", "enumerate", "eval", "exec", "filter",
	"float", "format", "frozenset", "getattr", "globals", "hasattr", "hash",
	"help", "hex", "id", "input", "int", "isinstance", "issubclass", "iter",
	"len", "list", "locals", "map", "max", "memoryview", "min", "next", "object",
	"oct", "open", "ord", "pow", "print", "property", "range", "repr", "reversed",
	"round", "set", "setattr", "slice", "sorted", "staticmethod", "str", "sum",
	"super", "tuple", "type", "vars", "zip", "True", "False", "None", "NotImplemented",
	"Ellipsis", "__debug__",
	// exception types
	"BaseException", "Exception", "ArithmeticError", "AssertionError",
	"AttributeError", "BlockingIOError", "BrokenPipeError", "BufferError",
	"BytesWarning", "ChildProcessError", "ConnectionAbortedError",
	"ConnectionError", "ConnectionRefusedError", "ConnectionResetError",
	"DeprecationWarning", "EOFError", "EnvironmentError",
	"FileExistsError", "FileNotFoundError", "FloatingPointError", "FutureWarning",
	"GeneratorExit", "IOError", "ImportError", "ImportWarning", "IndentationError",
	"IndexError", "InterruptedError", "IsADirectoryError", "KeyError",
	"KeyboardInterrupt", "LookupError", "MemoryError", "ModuleNotFoundError",
	"NameError", "NotADirectoryError", "NotImplementedError", "OSError",
	"OverflowError", "PendingDeprecationWarning", "PermissionError",
	"ProcessLookupError", "RecursionError", "ReferenceError", "ResourceWarning",
	"RuntimeError", "RuntimeWarning", "StopAsyncIteration", "StopIteration",
	"SyntaxError", "SyntaxWarning", "SystemError", "SystemExit", "TabError",
	"TimeoutError", "TypeError", "UnboundLocalError", "UnicodeDecodeError",
	"UnicodeEncodeError", "UnicodeError", "UnicodeTranslateError", "UnicodeWarning",
	"UserWarning", "ValueError", "Warning", "ZeroDivisionError",
}

// Engine is the traversal engine. One Engine analyzes one module; it is
// never reused across files (§5 "single-threaded and cooperative").
type Engine struct {
	arena  *model.Arena
	flags  model.SemanticFlags
	diags  diagnostic.Vector
	module ModuleDescriptor

	branchDepth      int
	handledExcStack  []string
	docstringState   docstringState
	moduleBoundary   moduleBoundary

	// runtimeRequiredCtx is true while visiting annotations governed by a
	// whole-signature runtime-annotation inspector (`@dataclass`,
	// `@attrs.define`), forcing the classifier to RuntimeRequired.
	runtimeRequiredCtx bool

	// unresolved collects Load occurrences that matched no binding on the
	// scope chain, for the post-walk unresolved-reference pass (§4.4).
	unresolved []UnresolvedName

	queues registry

	// typeCheckingAliases maps a locally bound name to the real typing
	// name it was imported as (currently only ever "TYPE_CHECKING"),
	// resolved via `from typing import TYPE_CHECKING as TC` (§4
	// supplement).
	typeCheckingAliases map[string]string

	runID string

	locator  hostapi.Locator
	indexer  hostapi.Indexer
	style    hostapi.StyleDetector
	importer hostapi.Importer
	noqa     hostapi.NoqaMap
	settings hostapi.Settings
	srcType  hostapi.SourceType
	notebook hostapi.NotebookIndex

	rules *rules.Registry

	// stringArena owns expression nodes parsed on demand from forward-
	// reference string literals; it must outlive the whole deferred loop
	// (§4.3, §9 "Forward-reference arena").
	stringArena []pyast.Expr

	// stringParser parses a quoted forward reference into an expression;
	// the real implementation lives with the caller's parser (§1
	// out-of-scope), so it is injected.
	stringParser func(src string) (pyast.Expr, error)
}

// Options configures a new Engine; every field is an optional collaborator
// per §6.
type Options struct {
	Locator      hostapi.Locator
	Indexer      hostapi.Indexer
	Style        hostapi.StyleDetector
	Importer     hostapi.Importer
	Noqa         hostapi.NoqaMap
	Settings     hostapi.Settings
	SourceType   hostapi.SourceType
	Notebook     hostapi.NotebookIndex
	Rules        *rules.Registry
	StringParser func(src string) (pyast.Expr, error)
}

// New constructs an Engine and seeds the module scope's builtins.
func New(opts Options) *Engine {
	e := &Engine{
		arena:        model.NewArena(),
		locator:      opts.Locator,
		indexer:      opts.Indexer,
		style:        opts.Style,
		importer:     opts.Importer,
		noqa:         opts.Noqa,
		settings:     opts.Settings,
		srcType:      opts.SourceType,
		notebook:     opts.Notebook,
		rules:        opts.Rules,
		stringParser: opts.StringParser,
		runID:        uuid.NewString(),
	}
	if e.rules == nil {
		e.rules = rules.NewRegistry(opts.Settings,
			nil,
			nil,
			[]rules.HandlerRule{rules.BareExceptRule{}},
			[]rules.ScopeRule{rules.UnusedImportRule{}},
		)
	}
	e.seedBuiltins()
	e.docstringState = docstringExpected
	return e
}

// RunID returns the per-analysis identifier stamped on a crash report.
func (e *Engine) RunID() string { return e.runID }

// UnresolvedName is a Load occurrence that matched no binding on the scope
// chain, carrying the semantic flags active at the point of use.
type UnresolvedName struct {
	Name  string
	Range pyast.Range
	Flags model.SemanticFlags
}

// UnresolvedNames returns every Load occurrence that resolved to no
// binding, in visit order, for the post-walk unresolved-reference pass and
// for rule hooks that report undefined names (§4.4).
func (e *Engine) UnresolvedNames() []UnresolvedName { return e.unresolved }

// seedBuiltins binds, as Builtin kind, the Python builtin names, the magic
// globals, any caller-configured extra builtins, and — for notebook cells —
// IPython's injected names (§6 "Builtins seeding").
func (e *Engine) seedBuiltins() {
	zero := pyast.Range{}
	bind := func(name string) {
		e.arena.AddBinding(name, zero, model.KindBuiltin, 0)
	}
	for _, n := range PythonBuiltins {
		bind(n)
	}
	for _, n := range ident.MagicGlobals {
		bind(n)
	}
	if e.settings != nil {
		for _, n := range e.settings.ExtraBuiltins() {
			bind(n)
		}
	}
	if e.srcType == hostapi.NotebookCell {
		for _, n := range []string{"get_ipython", "display", "In", "Out"} {
			bind(n)
		}
	}
}

// Arena exposes the semantic model to rule hooks via rules.Context.
func (e *Engine) Arena() *model.Arena { return e.arena }

// Module returns the descriptor of the module under analysis, for rule
// hooks that behave differently inside a package `__init__` module.
func (e *Engine) Module() ModuleDescriptor { return e.module }

// Flags exposes the current flag stack to rule hooks.
func (e *Engine) Flags() model.SemanticFlags { return e.flags }

// Settings exposes the injected settings to rule hooks.
func (e *Engine) Settings() hostapi.Settings { return e.settings }

// Report appends a diagnostic to the output vector, usable directly by the
// engine and, via rules.Context, by rule hooks.
func (e *Engine) Report(d diagnostic.Diagnostic) { e.diags.Append(d) }

// ruleEnabled gates the handful of diagnostics the engine emits itself
// (rather than through a rule hook) on the caller's settings.
func (e *Engine) ruleEnabled(code diagnostic.Code) bool {
	return e.settings == nil || e.settings.IsRuleEnabled(string(code))
}

// Analyze runs the whole analysis: module-level visit, body visit,
// deferred-queue drain to fixpoint, post-walk analyses (§2). It never
// returns a partial diagnostic vector alongside a crash report (§7);
// exactly one of the two return values is meaningful.
func Analyze(module ModuleDescriptor, opts Options) (diags diagnostic.Vector, report *walkerr.Report) {
	e := New(opts)
	defer walkerr.Recover(&report, e.runID)

	e.visitModuleLevel(module)
	e.visitModuleBody(module.Root.Body)
	e.drainDeferred()
	e.postWalk()

	return e.diags, nil
}
