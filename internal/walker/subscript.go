package walker

import (
	"strings"

	"github.com/cwbudde/pywalk/internal/model"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// literalSubscriptNames are the spellings of `typing.Literal` recognized
// without needing full import-alias resolution (§4.1 "Subscript routing").
var literalSubscriptNames = map[string]bool{
	"Literal": true, "typing.Literal": true, "typing_extensions.Literal": true,
}

var annotatedSubscriptNames = map[string]bool{
	"Annotated": true, "typing.Annotated": true, "typing_extensions.Annotated": true,
}

// subscriptBaseName renders value's dotted name the same way
// dottedCallName does for a call's Func, with its own walk of the
// "a.b.c" attribute chain.
func subscriptBaseName(value pyast.Expr) string {
	switch n := value.(type) {
	case *pyast.Name:
		return n.Id
	case *pyast.Attribute:
		if base := subscriptBaseName(n.Value); base != "" {
			return base + "." + n.Attr
		}
	}
	return ""
}

// visitTypeSubscript routes a subscript known to be in type-definition
// context (§4.1 "Subscript routing"):
//
//   - `Literal[...]`: every slice element is a literal value, never a type
//     expression, and must not be walked as one (flagged TypingLiteral so
//     nested routing doesn't misfire).
//   - `Annotated[T, *metadata]`: only the first slice element is a type;
//     the rest are arbitrary runtime values.
//   - anything else (bare generics, `list[int]`, `Optional[X]`, ...): every
//     slice element is itself a type expression.
func (e *Engine) visitTypeSubscript(sub *pyast.Subscript) {
	e.visitExpr(sub.Value)

	name := e.canonicalTypingName(subscriptBaseName(sub.Value))
	elts := subscriptElements(sub.Index)

	switch {
	case literalSubscriptNames[name]:
		e.withFlags(model.TypingLiteral, func() {
			for _, elt := range elts {
				e.visitExpr(elt)
			}
		})
	case annotatedSubscriptNames[name]:
		if len(elts) > 0 {
			e.visitTypeExpr(elts[0])
		}
		for _, elt := range elts[1:] {
			e.visitExpr(elt)
		}
	default:
		for _, elt := range elts {
			e.visitTypeExpr(elt)
		}
	}
}

// canonicalTypingName rewrites `mymod.Literal`-style dotted names to their
// `typing.`-spelled equivalent when mymod is one of the configured
// typing-module aliases, so routing tables only need the canonical
// spellings.
func (e *Engine) canonicalTypingName(dotted string) string {
	if e.settings == nil {
		return dotted
	}
	for _, mod := range e.settings.TypingModuleAliases() {
		if strings.HasPrefix(dotted, mod+".") {
			return "typing." + strings.TrimPrefix(dotted, mod+".")
		}
	}
	return dotted
}

// subscriptElements flattens a subscript index into its component
// expressions: a *Slice and a plain scalar each count as one element, a
// Tuple's elements are flattened (CPython represents `X[a, b]` as a Tuple
// index).
func subscriptElements(index pyast.Expr) []pyast.Expr {
	if t, ok := index.(*pyast.Tuple); ok {
		return t.Elts
	}
	return []pyast.Expr{index}
}
