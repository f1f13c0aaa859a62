package walker

import "github.com/cwbudde/pywalk/internal/model"

// Snapshot is the engine state needed to resume analysis mid-traversal with
// identical semantics to an in-place visit (§9). It holds the scope chain,
// the flag bitset, the branch counter, and the handled-exception stack
// depth; deferred payloads carry the AST node to visit directly, so unlike
// the design note's literal "node cursor index" this snapshot doesn't need
// a separate cursor field — the payload node doubles as it.
type Snapshot struct {
	chain       []model.ScopeID
	flags       model.SemanticFlags
	branchDepth int
	excDepth    int
}

// snapshot captures the engine's current resumable state.
func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		chain:       e.arena.Chain(),
		flags:       e.flags,
		branchDepth: e.branchDepth,
		excDepth:    len(e.handledExcStack),
	}
}

// withSnapshot restores s, runs fn, then restores whatever was active
// before the call — deferred work must never leak its scope chain or flags
// back into the caller's context.
func (e *Engine) withSnapshot(s Snapshot, fn func()) {
	savedChain := e.arena.Chain()
	savedFlags := e.flags
	savedBranch := e.branchDepth
	savedExc := e.handledExcStack

	e.arena.RestoreChain(s.chain)
	e.flags = s.flags
	e.branchDepth = s.branchDepth
	if s.excDepth <= len(savedExc) {
		e.handledExcStack = savedExc[:s.excDepth]
	}

	fn()

	e.arena.RestoreChain(savedChain)
	e.flags = savedFlags
	e.branchDepth = savedBranch
	e.handledExcStack = savedExc
}
