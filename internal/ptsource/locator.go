package ptsource

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/cwbudde/pywalk/pkg/hostapi"
	"github.com/cwbudde/pywalk/pkg/pyast"
)

// collectAncillary walks the full (not just named) tree once to gather
// comment ranges and f-string ranges (string literals whose prefix holds an
// `f`/`F`), the token-stream-level facts hostapi.Indexer exposes
// independent of the pyast tree (§6).
func collectAncillary(src []byte, root *sitter.Node) (comments []pyast.Range, fstrings []hostapi.FStringRange) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "comment":
			comments = append(comments, spanOf(n))
		case "string":
			text := n.Content(src)
			if q := strings.IndexAny(text, `"'`); q > 0 && strings.ContainsAny(text[:q], "fF") {
				fstrings = append(fstrings, hostapi.FStringRange{Range: spanOf(n)})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return comments, fstrings
}

// locator is the hostapi.Locator/Indexer/StyleDetector binding this package
// produces for cmd/pywalk, built once per parsed file alongside its Source.
type locator struct {
	src        []byte
	lineStarts []pyast.Pos
	comments   []pyast.Range
	fstrings   []hostapi.FStringRange
	indent     int
	quote      hostapi.Quote
	crlf       bool
}

// NewLocator builds the Locator/Indexer/StyleDetector triple for src,
// re-walking the tree tree-sitter already produced for comment and
// f-string ranges.
func NewLocator(src []byte, root *sitter.Node) (hostapi.Locator, hostapi.Indexer, hostapi.StyleDetector) {
	comments, fstrings := collectAncillary(src, root)
	l := &locator{
		src:        src,
		lineStarts: lineStarts(src),
		comments:   comments,
		fstrings:   fstrings,
		indent:     detectIndent(src),
		quote:      detectQuote(src),
		crlf:       strings.Contains(string(src), "\r\n"),
	}
	return l, l, l
}

func lineStarts(src []byte) []pyast.Pos {
	starts := []pyast.Pos{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, pyast.Pos(i+1))
		}
	}
	return starts
}

// Slice implements hostapi.Locator.
func (l *locator) Slice(r pyast.Range) string {
	if int(r.Start) < 0 || int(r.End) > len(l.src) || r.Start > r.End {
		return ""
	}
	return string(l.src[r.Start:r.End])
}

// LineIndex implements hostapi.Locator with a binary search over the
// precomputed line-start table (mirrors the linear getLine helper other
// tooling in the pack uses, but avoids rescanning on every call).
func (l *locator) LineIndex(offset pyast.Pos) hostapi.LineNumber {
	lo, hi := 0, len(l.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return hostapi.LineNumber(lo + 1)
}

// Innermost implements hostapi.Indexer, returning the narrowest f-string
// range containing offset (a nested f-string's inner range is shorter than
// its enclosing one).
func (l *locator) Innermost(offset pyast.Pos) (hostapi.FStringRange, bool) {
	var best hostapi.FStringRange
	found := false
	for _, fr := range l.fstrings {
		if fr.Range.Start > offset || offset >= fr.Range.End {
			continue
		}
		if !found || (fr.Range.End-fr.Range.Start) < (best.Range.End-best.Range.Start) {
			best, found = fr, true
		}
	}
	return best, found
}

// CommentRanges implements hostapi.Indexer.
func (l *locator) CommentRanges() []pyast.Range { return l.comments }

// IndentWidth implements hostapi.StyleDetector.
func (l *locator) IndentWidth() int { return l.indent }

// PreferredQuote implements hostapi.StyleDetector.
func (l *locator) PreferredQuote() hostapi.Quote { return l.quote }

// LineEndingCRLF implements hostapi.StyleDetector.
func (l *locator) LineEndingCRLF() bool { return l.crlf }

// detectIndent scans for the first indented line and reports its leading
// space count, defaulting to 4 (PEP 8) when no indentation is observed.
func detectIndent(src []byte) int {
	lines := strings.Split(string(src), "\n")
	for _, line := range lines {
		if !strings.HasPrefix(line, " ") {
			continue
		}
		n := 0
		for n < len(line) && line[n] == ' ' {
			n++
		}
		if n < len(line) {
			return n
		}
	}
	return 4
}

// detectQuote counts every single vs double quote character in src and
// reports whichever is more common, defaulting to double (PEP 8).
func detectQuote(src []byte) hostapi.Quote {
	var doubles, singles int
	for _, b := range src {
		switch b {
		case '"':
			doubles++
		case '\'':
			singles++
		}
	}
	if singles > doubles {
		return hostapi.QuoteSingle
	}
	return hostapi.QuoteDouble
}
