package model

import "github.com/cwbudde/pywalk/pkg/pyast"

// BindingID identifies a binding in the Arena. Scopes store ids, never
// binding objects, so the otherwise-cyclic shape (scope -> binding ->
// binding referenced in another scope) doesn't need reference counting
// (§9 "Back-references vs. ownership").
type BindingID int

// NoBinding is the sentinel meaning "no binding"; it is -1, not the zero
// value, since 0 is a valid binding id.
const NoBinding BindingID = -1

// Kind is the closed enumeration of binding variants (§3). Use a tagged
// struct rather than subclass-style polymorphism; rule hooks switch on Kind
// (§9 "Dynamic dispatch on binding kind").
type Kind int

const (
	KindAssignment Kind = iota
	KindAnnotation
	KindLoopVar
	KindWithItemVar
	KindNamedExprAssignment
	KindComprehensionVar
	KindArgument
	KindTypeParam
	KindGlobal
	KindNonlocal
	KindImport
	KindFromImport
	KindSubmoduleImport
	KindFutureImport
	KindExport
	KindFunctionDefinition
	KindClassDefinition
	KindBoundException
	KindUnboundException
	KindDeletion
	KindBuiltin
)

func (k Kind) String() string {
	switch k {
	case KindAssignment:
		return "Assignment"
	case KindAnnotation:
		return "Annotation"
	case KindLoopVar:
		return "LoopVar"
	case KindWithItemVar:
		return "WithItemVar"
	case KindNamedExprAssignment:
		return "NamedExprAssignment"
	case KindComprehensionVar:
		return "ComprehensionVar"
	case KindArgument:
		return "Argument"
	case KindTypeParam:
		return "TypeParam"
	case KindGlobal:
		return "Global"
	case KindNonlocal:
		return "Nonlocal"
	case KindImport:
		return "Import"
	case KindFromImport:
		return "FromImport"
	case KindSubmoduleImport:
		return "SubmoduleImport"
	case KindFutureImport:
		return "FutureImport"
	case KindExport:
		return "Export"
	case KindFunctionDefinition:
		return "FunctionDefinition"
	case KindClassDefinition:
		return "ClassDefinition"
	case KindBoundException:
		return "BoundException"
	case KindUnboundException:
		return "UnboundException"
	case KindDeletion:
		return "Deletion"
	case KindBuiltin:
		return "Builtin"
	}
	return "Unknown"
}

// KindData carries the per-kind payload that doesn't fit a single shared
// shape: qualified import names, a nonlocal's enclosing scope, a function/
// class body scope id, the predecessor of an unbound exception, and the
// export's name list.
type KindData struct {
	QualifiedName   string     // Import, FromImport, SubmoduleImport
	EnclosingScope  ScopeID    // Nonlocal
	BodyScope       ScopeID    // FunctionDefinition, ClassDefinition
	Predecessor     BindingID  // UnboundException
	FutureFeature   string     // FutureImport: which `__future__` name
	ExportNames     []ExportName // Export
}

// ExportName is one element of a module's `__all__` list; Valid is false
// when the element wasn't a string literal (InvalidAllObject).
type ExportName struct {
	Name  string
	Valid bool
	Range pyast.Range
}

// Binding is a named declaration event. Once created its Range and Kind
// never change; its Flags and References accrue as the walk proceeds (§3
// invariants).
type Binding struct {
	ID        BindingID
	Scope     ScopeID
	Name      string
	Range     pyast.Range
	Kind      Kind
	Flags     BindingFlags
	Data      KindData
	References []ReferenceID

	// Shadowed is the binding this one shadowed in the same scope, or
	// NoBinding. An Annotation never shadows (P5); it instead links via
	// DelayedAnnotation on the prior binding.
	Shadowed BindingID

	// DelayedAnnotation points at an Annotation binding added for this
	// name after this binding, without replacing it (P5).
	DelayedAnnotation BindingID

	// RenamedInScope collects the scope ids in which `global`/`nonlocal`
	// rebinds this name.
	RenamedInScope []ScopeID
}

// Reference is a (binding, range, context) use-site, carrying a snapshot of
// the semantic flags active at the point of use.
type Reference struct {
	ID      ReferenceID
	Binding BindingID
	Range   pyast.Range
	Ctx     pyast.ExprContext
	Flags   SemanticFlags
}

// ReferenceID identifies a Reference in the Arena.
type ReferenceID int
