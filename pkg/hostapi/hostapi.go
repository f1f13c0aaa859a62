// Package hostapi fixes the narrow interfaces through which the walker
// borrows read-only resources from its caller (§6 of the design). None of
// these are implemented by this module's core; internal/ptsource and
// internal/config provide one concrete binding used by cmd/pywalk.
package hostapi

import "github.com/cwbudde/pywalk/pkg/pyast"

// LineNumber is a 1-based source line.
type LineNumber int

// Locator maps byte ranges to source text and lines.
type Locator interface {
	Slice(r pyast.Range) string
	LineIndex(offset pyast.Pos) LineNumber
}

// FStringRange records where an f-string's literal text begins and ends,
// used to tell whether an offset falls inside one (so forward-reference
// detection inside format specs can be suppressed).
type FStringRange struct {
	Range pyast.Range
}

// Indexer exposes comment and f-string-range lookups derived from the raw
// token stream, independent of the AST.
type Indexer interface {
	// Innermost returns the narrowest FStringRange containing offset, if any.
	Innermost(offset pyast.Pos) (FStringRange, bool)
	CommentRanges() []pyast.Range
}

// Quote is the preferred string-quote style reported by the style detector.
type Quote int

const (
	QuoteDouble Quote = iota
	QuoteSingle
)

// StyleDetector reports source formatting conventions inferred once per
// file.
type StyleDetector interface {
	IndentWidth() int
	PreferredQuote() Quote
	LineEndingCRLF() bool
}

// Importer receives top-level import statements and TYPE_CHECKING blocks so
// an external import-reorganizer can track them; the core never inspects
// its own return value.
type Importer interface {
	VisitImport(stmt pyast.Stmt)
	VisitTypeCheckingBlock(stmt pyast.Stmt)
}

// NoqaMap answers whether a rule's diagnostic at a given offset is
// suppressed by a `# noqa` comment. The walker accepts one through
// walker.Options but never calls it: neither rule dispatch nor any fix is
// gated on it.
type NoqaMap interface {
	RuleIsIgnored(rule string, offset pyast.Pos) bool
}

// SourceType tags the kind of input being analyzed.
type SourceType int

const (
	SourceFile SourceType = iota
	StubFile
	NotebookCell
)

// NotebookIndex maps a top-level-statement boundary offset to the notebook
// cell it falls in, used to reset the import-boundary latch between cells.
type NotebookIndex interface {
	CellForOffset(offset pyast.Pos) (cell int, ok bool)
}

// Settings carries the configuration a caller supplies; see
// internal/config for the concrete YAML-backed implementation.
type Settings interface {
	IsRuleEnabled(code string) bool
	ExtraBuiltins() []string
	TypingModuleAliases() []string
	Preview() bool
	ExtendGenerics() []string
	TargetVersion() string // e.g. "3.12"
}
