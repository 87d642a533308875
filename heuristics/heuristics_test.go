package heuristics

import (
	"testing"

	"github.com/xDarkicex/dpelim/cnf"
	"github.com/xDarkicex/dpelim/zdd"
)

func newCNF(clauses []cnf.Clause) (*cnf.Builder, *cnf.CNF) {
	b := cnf.NewBuilder(zdd.NewKernel(), 0)
	return b, b.FromVector(clauses)
}

func TestSimplePicksRoot(t *testing.T) {
	_, c := newCNF([]cnf.Clause{{3, 4}, {5}})
	defer c.Release()

	result := Simple(c)
	if !result.Success || result.Literal != c.GetRootLiteral() {
		t.Fatalf("expected Simple to pick the root literal, got %+v", result)
	}
}

func TestUnitLiteralFallsBackToRoot(t *testing.T) {
	_, c := newCNF([]cnf.Clause{{3, 4}, {5, 6}})
	defer c.Release()

	result := UnitLiteral(c)
	if result.Success {
		t.Fatalf("expected no unit literal to be found, got %+v", result)
	}
	if result.Literal != c.GetRootLiteral() {
		t.Fatalf("expected fallback to root literal, got %+v", result)
	}
}

func TestUnitLiteralFound(t *testing.T) {
	_, c := newCNF([]cnf.Clause{{1}, {1, 2}})
	defer c.Release()

	result := UnitLiteral(c)
	if !result.Success || result.Literal != 1 {
		t.Fatalf("expected unit literal 1, got %+v", result)
	}
}

func TestMinimalScoreBloat(t *testing.T) {
	// variable 1 occurs twice each way (bloat score = 2*2 - 4 = 0);
	// variable 2 occurs once each way (bloat score = 1*1 - 2 = -1, better)
	_, c := newCNF([]cnf.Clause{{1, 2}, {1, -2}, {-1, 3}, {-1, -3}})
	defer c.Release()

	h := MinimalScore(1, 2, BloatScore)
	result := h(c)
	if !result.Success {
		t.Fatalf("expected MinimalScore to find a variable in range")
	}
	if result.Literal != 2 && result.Literal != -2 {
		t.Fatalf("expected variable 2 to have the minimal bloat score, got %+v", result)
	}
}

func TestMinimalScoreOutOfRange(t *testing.T) {
	_, c := newCNF([]cnf.Clause{{10}})
	defer c.Release()

	h := MinimalScore(1, 2, BloatScore)
	result := h(c)
	if result.Success {
		t.Fatalf("expected no variable in [1,2] to be found, got %+v", result)
	}
}
