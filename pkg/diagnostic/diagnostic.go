// Package diagnostic defines the flat output vector the walker produces:
// one entry per finding, each carrying a source range, a rule identifier,
// message data, and an optional fix.
package diagnostic

import "github.com/cwbudde/pywalk/pkg/pyast"

// Isolation controls how many fixes from a single fixer pass may touch one
// indented block. Group is used whenever a fix deletes a statement, so at
// most one statement-deleting fix lands per block per pass.
type Isolation struct {
	Grouped bool
	NodeID  uintptr
}

// Unrelated is the default isolation: this fix never conflicts with
// siblings.
var Unrelated = Isolation{}

// Group returns the isolation level for a fix that deletes a statement
// belonging to the block rooted at nodeID.
func Group(nodeID uintptr) Isolation {
	return Isolation{Grouped: true, NodeID: nodeID}
}

// Edit is one replacement of a source range with new text.
type Edit struct {
	Range pyast.Range
	Text  string
}

// Fix is a suggested set of edits plus the isolation level callers must
// respect when applying many fixes in one pass.
type Fix struct {
	Edits     []Edit
	Message   string
	Isolation Isolation
}

// Code identifies a rule. Core-emitted diagnostics (§7.1, §8) use the
// Code* constants below; rule-hook diagnostics carry whatever code the
// rule registry assigns them.
type Code string

const (
	CodeForwardAnnotationSyntaxError Code = "forward-annotation-syntax-error"
	CodeUndefinedExport              Code = "undefined-export"
	CodeUndefinedLocalWithStarImport Code = "undefined-local-with-import-star-usage"
	CodeQuotedAnnotation             Code = "quoted-annotation"
)

// Diagnostic is one finding.
type Diagnostic struct {
	Range   pyast.Range
	Code    Code
	Message string
	Fix     *Fix
}

// Vector is the ordered output of one analysis: diagnostics in emission
// order. Sort by (Range.Start, Code) before comparing two vectors, since
// tests should be robust to intentional reorderings (§5).
type Vector []Diagnostic

// Append records a new diagnostic in emission order.
func (v *Vector) Append(d Diagnostic) {
	*v = append(*v, d)
}
