package diagnostic

import (
	"testing"

	"github.com/cwbudde/pywalk/pkg/pyast"
)

func TestVectorAppendPreservesEmissionOrder(t *testing.T) {
	var v Vector
	v.Append(Diagnostic{Code: CodeQuotedAnnotation, Range: pyast.Range{Start: 10}})
	v.Append(Diagnostic{Code: CodeUndefinedExport, Range: pyast.Range{Start: 2}})

	if len(v) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(v))
	}
	if v[0].Code != CodeQuotedAnnotation || v[1].Code != CodeUndefinedExport {
		t.Fatalf("Append must preserve emission order, not sort by range")
	}
}

func TestGroupIsolationCarriesNodeID(t *testing.T) {
	iso := Group(42)
	if !iso.Grouped {
		t.Fatalf("Group should mark the isolation as grouped")
	}
	if iso.NodeID != 42 {
		t.Fatalf("Group should carry the block's node id, got %d", iso.NodeID)
	}
	if Unrelated.Grouped {
		t.Fatalf("Unrelated must not be grouped")
	}
}
