// Package walkerr separates the two error surfaces the engine can hit
// (§7): diagnostics for invalid input, which never abort analysis, and
// engine-invariant violations, which are programming errors and must never
// be confused with lint findings.
package walkerr

import "fmt"

// Invariant is an engine-invariant violation: popping a scope when none is
// active, deferring a function with no enclosing-function snapshot, and
// similar "this should be impossible" conditions. Raise one with panic;
// Recover turns it into a Report distinct from the diagnostic vector.
type Invariant struct {
	Message string
}

func (i *Invariant) Error() string { return i.Message }

// Raise panics with an Invariant, formatting like fmt.Sprintf.
func Raise(format string, args ...any) {
	panic(&Invariant{Message: fmt.Sprintf(format, args...)})
}

// Report is the structured internal-error result of a crashed analysis.
// Callers get either a full diagnostic vector or a Report, never a mix of
// the two (§7 "No retries...").
type Report struct {
	RunID   string
	Message string
}

func (r *Report) Error() string { return r.Message }

// Recover should be deferred once at the single public entry point. It
// turns a panicking *Invariant into *out, leaving out untouched and
// re-panicking for any other recovered value (which indicates a bug in
// this package, not in caller input).
func Recover(out **Report, runID string) {
	r := recover()
	if r == nil {
		return
	}
	inv, ok := r.(*Invariant)
	if !ok {
		panic(r)
	}
	*out = &Report{RunID: runID, Message: inv.Message}
}
