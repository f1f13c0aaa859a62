package pyast

import "testing"

func TestRangeContains(t *testing.T) {
	outer := Range{Start: 0, End: 10}
	inner := Range{Start: 2, End: 5}
	if !outer.Contains(inner) {
		t.Fatalf("expected %v to contain %v", outer, inner)
	}
	if outer.Contains(Range{Start: 0, End: 11}) {
		t.Fatalf("range must not contain a span extending past its end")
	}
	if outer.Contains(Range{Start: -1, End: 5}) {
		t.Fatalf("range must not contain a span starting before it")
	}
}

func TestExprContextString(t *testing.T) {
	cases := map[ExprContext]string{
		Load: "Load",
		Store: "Store",
		Del:  "Del",
	}
	for ctx, want := range cases {
		if got := ctx.String(); got != want {
			t.Errorf("ExprContext(%d).String() = %q, want %q", ctx, got, want)
		}
	}
}

func TestNodeSpan(t *testing.T) {
	var n Node = &Name{baseExpr: baseExpr{Range: Range{Start: 3, End: 7}}, Id: "x"}
	if n.Span() != (Range{Start: 3, End: 7}) {
		t.Fatalf("Span() = %v", n.Span())
	}
}
