package walker

import "github.com/cwbudde/pywalk/internal/model"

// withFlags runs fn with mask bits added to the flag stack, then restores
// the prior flags — except for the three latch bits in model.LatchMask,
// which the restore must never clear once the engine has set them (§4.1).
// This is the mechanism behind Testable Property P2: flags observed before
// a node's pre-processing equal those observed after its analysis phase.
func (e *Engine) withFlags(mask model.SemanticFlags, fn func()) {
	saved := e.flags
	e.flags = e.flags.With(mask)
	fn()
	e.flags = (saved &^ model.LatchMask) | (e.flags & model.LatchMask)
}

// withoutFlags runs fn with mask bits cleared, restoring the prior value
// afterward (used e.g. to drop BooleanTest on descent into a non-boolean
// subexpression).
func (e *Engine) withoutFlags(mask model.SemanticFlags, fn func()) {
	saved := e.flags
	e.flags = e.flags.Without(mask)
	fn()
	e.flags = (saved &^ model.LatchMask) | (e.flags & model.LatchMask)
}

// latchModuleBit sets one of the three monotonic module-boundary bits; it
// bypasses withFlags's restore because latches are meant to persist.
func (e *Engine) latchModuleBit(bit model.SemanticFlags) {
	e.flags |= bit
}

// pushHandledException pushes a resolved exception-class name onto the
// stack consulted by rules while walking a `try` handler body (§4.1 "try
// statement").
func (e *Engine) pushHandledException(name string) {
	e.handledExcStack = append(e.handledExcStack, name)
}

func (e *Engine) popHandledException() {
	e.handledExcStack = e.handledExcStack[:len(e.handledExcStack)-1]
}

// HandledExceptions returns the exception-class names currently active on
// the handled-exception stack, innermost last.
func (e *Engine) HandledExceptions() []string {
	return e.handledExcStack
}

// bumpBranch increments the straight-line branch counter around one
// try-statement branch (body+else, each handler, finally) for the Non-goal-
// scoped branch-counting rules named in §1.
func (e *Engine) bumpBranch(fn func()) {
	e.branchDepth++
	defer func() { e.branchDepth-- }()
	fn()
}

// BranchDepth returns the current branch nesting depth.
func (e *Engine) BranchDepth() int { return e.branchDepth }
