package walker

import (
	"strings"

	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// typingSpecialForms are call targets whose arguments need bespoke
// annotation-context routing instead of being visited as plain call
// arguments (§4.1 "Typing special forms").
var typingSpecialForms = map[string]bool{
	"cast": true, "typing.cast": true,
	"NewType": true, "typing.NewType": true,
	"TypeVar": true, "typing.TypeVar": true,
	"NamedTuple": true, "typing.NamedTuple": true, "collections.namedtuple": true,
	"TypedDict": true, "typing.TypedDict": true,
	"Arg": true, "mypy_extensions.Arg": true,
	"DefaultArg": true, "mypy_extensions.DefaultArg": true,
	"NamedArg": true, "mypy_extensions.NamedArg": true,
	"DefaultNamedArg": true, "mypy_extensions.DefaultNamedArg": true,
	"VarArg": true, "mypy_extensions.VarArg": true,
	"KwArg": true, "mypy_extensions.KwArg": true,
	"bool": true,
}

func baseName(dotted string) string {
	if i := strings.LastIndexByte(dotted, '.'); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}

// visitTypingSpecialFormCall routes a call's own arguments when Func
// resolves to one of typingSpecialForms, returning false (meaning "not
// handled, fall through to ordinary Call visiting") for every other call.
func (e *Engine) visitTypingSpecialFormCall(call *pyast.Call) bool {
	dotted := e.canonicalTypingName(dottedCallName(call))
	if dotted == "" || !typingSpecialForms[dotted] {
		return false
	}

	e.visitExpr(call.Func)
	keywordsHandled := false

	switch baseName(dotted) {
	case "cast":
		// cast(typ, val): first positional argument is a type expression,
		// evaluated at runtime regardless of `__future__` annotations
		// because `typing.cast` is itself a plain runtime call.
		if len(call.Args) > 0 {
			e.visitAnnotation(call.Args[0], annotationRuntimeRequired)
		}
		for _, a := range call.Args[1:] {
			e.visitExpr(a)
		}
	case "NewType":
		// NewType(name, tp): the second positional argument is the
		// underlying runtime type.
		for i, a := range call.Args {
			if i == 1 {
				e.visitAnnotation(a, annotationRuntimeRequired)
				continue
			}
			e.visitExpr(a)
		}
	case "TypeVar":
		// TypeVar(name, *constraints, bound=..., ...): constraints and
		// bound are runtime-required type expressions.
		for i, a := range call.Args {
			if i == 0 {
				e.visitExpr(a)
				continue
			}
			e.visitAnnotation(a, annotationRuntimeRequired)
		}
		for _, kw := range call.Keywords {
			if kw.Arg == "bound" {
				e.visitAnnotation(kw.Value, annotationRuntimeRequired)
				continue
			}
			e.visitExpr(kw.Value)
		}
		keywordsHandled = true
	case "NamedTuple", "TypedDict", "namedtuple":
		e.visitNamedTupleOrTypedDictCall(call)
		keywordsHandled = true
	case "Arg", "DefaultArg", "NamedArg", "DefaultNamedArg", "VarArg", "KwArg":
		// mypy_extensions.Arg(type, 'name'): first positional argument is
		// a type expression.
		for i, a := range call.Args {
			if i == 0 {
				e.visitAnnotation(a, annotationRuntimeRequired)
				continue
			}
			e.visitExpr(a)
		}
	case "bool":
		// bool(x): the first argument is evaluated in boolean-test context
		// so truthiness-style rules can observe it.
		for i, a := range call.Args {
			if i == 0 {
				e.withFlags(model.BooleanTest, func() { e.visitExpr(a) })
				continue
			}
			e.visitExpr(a)
		}
	}

	if !keywordsHandled {
		for _, kw := range call.Keywords {
			e.visitExpr(kw.Value)
		}
	}
	return true
}

// visitNamedTupleOrTypedDictCall walks the functional forms
// `NamedTuple("N", [("field", type), ...])` and
// `TypedDict("N", {"field": type})`, treating each field's type as a
// runtime-required annotation.
func (e *Engine) visitNamedTupleOrTypedDictCall(call *pyast.Call) {
	for i, a := range call.Args {
		if i == 0 {
			e.visitExpr(a)
			continue
		}
		switch fields := a.(type) {
		case *pyast.List:
			for _, elt := range fields.Elts {
				if tup, ok := elt.(*pyast.Tuple); ok && len(tup.Elts) == 2 {
					e.visitExpr(tup.Elts[0])
					e.visitAnnotation(tup.Elts[1], annotationRuntimeRequired)
					continue
				}
				e.visitExpr(elt)
			}
		case *pyast.Dict:
			for _, v := range fields.Values {
				e.visitAnnotation(v, annotationRuntimeRequired)
			}
		default:
			e.visitExpr(a)
		}
	}
	for _, kw := range call.Keywords {
		e.visitAnnotation(kw.Value, annotationRuntimeRequired)
	}
}
