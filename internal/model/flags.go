package model

// SemanticFlags is the single bitset the engine mutates and restores around
// sub-walks (§3 "Semantic-model flag stack"). Bits set on entry to a
// sub-context are cleared on exit, so the set observed before a node's
// pre-processing phase equals the set observed after its analysis phase
// (Testable Property P2); the LatchMask bits below are the exception.
type SemanticFlags uint64

const (
	ModuleDocstringBoundary SemanticFlags = 1 << iota
	FuturesBoundary
	ImportBoundary
	FutureAnnotations
	Docstring
	ExceptionHandler
	TypingOnlyAnnotation
	RuntimeEvaluatedAnnotation
	RuntimeRequiredAnnotation
	TypeDefinition
	TypingLiteral
	FStringContext
	Subscript
	BooleanTest
	NamedExprAssignment
	ComprehensionAssignment
	FutureTypeDefinition
	SimpleStringTypeDefinition
	ComplexStringTypeDefinition
	TypeParamDefinition
	TypeCheckingBlock
	DeferredTypeDefinition
)

// LatchMask is the set of module-level boundary bits (§4.1 "Module-level
// boundary tracking") that are monotonic latches rather than
// stack-discipline flags: once set by the engine they are never cleared by
// a flag-stack restore, unlike every other bit in SemanticFlags (P2 applies
// to all bits except these three).
const LatchMask = ModuleDocstringBoundary | FuturesBoundary | ImportBoundary

// Has reports whether all bits in mask are set.
func (f SemanticFlags) Has(mask SemanticFlags) bool { return f&mask == mask }

// Any reports whether at least one bit of mask is set.
func (f SemanticFlags) Any(mask SemanticFlags) bool { return f&mask != 0 }

// With returns f with mask's bits set.
func (f SemanticFlags) With(mask SemanticFlags) SemanticFlags { return f | mask }

// Without returns f with mask's bits cleared.
func (f SemanticFlags) Without(mask SemanticFlags) SemanticFlags { return f &^ mask }

// BindingFlags annotate an individual binding (distinct bitset from
// SemanticFlags, which tracks traversal context rather than binding
// identity).
type BindingFlags uint16

const (
	External BindingFlags = 1 << iota
	Alias
	ExplicitExport
	Global
	Nonlocal
	UnpackedAssignment
	PrivateDeclaration
	InvalidAllObject
	InvalidAllFormat
)

func (f BindingFlags) Has(mask BindingFlags) bool { return f&mask == mask }
func (f BindingFlags) Any(mask BindingFlags) bool { return f&mask != 0 }
