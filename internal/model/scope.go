package model

// ScopeID identifies a Scope in the Arena.
type ScopeID int

// NoScope is the sentinel meaning "no scope"; it is -1, not the zero value,
// and is the module scope's Parent.
const NoScope ScopeID = -1

// ScopeKind classifies a node in the scope tree (§3).
type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeClass
	ScopeFunction
	ScopeLambda
	ScopeGenerator
	ScopeTypeParam
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "Module"
	case ScopeClass:
		return "Class"
	case ScopeFunction:
		return "Function"
	case ScopeLambda:
		return "Lambda"
	case ScopeGenerator:
		return "Generator"
	case ScopeTypeParam:
		return "TypeParam"
	}
	return "Unknown"
}

// StarImport records one `from mod import *` at the level/module pair that
// introduced it.
type StarImport struct {
	Level  int
	Module string
}

// Scope is a node in the lexical scope tree. It is born when a
// scope-introducing node is entered and never destroyed afterward, so
// post-walk scope analyses (§4.4 deferred_scopes) can revisit it.
type Scope struct {
	ID     ScopeID
	Kind   ScopeKind
	Parent ScopeID // NoScope for the module scope

	// Bindings maps a name to the last-writer binding id in this scope.
	Bindings map[string]BindingID
	// Order preserves insertion order for deterministic iteration (e.g.
	// __all__ resolution, unused-import scans).
	Order []string

	StarImports  []StarImport
	UsesLocals   bool
	HasStarImport bool
}

func newScope(id ScopeID, kind ScopeKind, parent ScopeID) *Scope {
	return &Scope{
		ID:       id,
		Kind:     kind,
		Parent:   parent,
		Bindings: make(map[string]BindingID),
	}
}

// Lookup returns the current binding for name in this scope only.
func (s *Scope) Lookup(name string) (BindingID, bool) {
	id, ok := s.Bindings[name]
	return id, ok
}

// set installs name -> id as the scope's current binding for that name,
// recording insertion order the first time the name appears.
func (s *Scope) set(name string, id BindingID) {
	if _, existed := s.Bindings[name]; !existed {
		s.Order = append(s.Order, name)
	}
	s.Bindings[name] = id
}

// IsFunctionLike reports whether this scope's locals are erased at exit in
// the way CPython compiles function/lambda/generator bodies (as opposed to
// Module/Class scopes, which a comprehension's first iterable can still
// observe per the evaluation-order rule in §4.1).
func (k ScopeKind) IsFunctionLike() bool {
	return k == ScopeFunction || k == ScopeLambda || k == ScopeGenerator
}
