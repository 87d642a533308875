package dp

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/xDarkicex/dpelim/absorb"
	"github.com/xDarkicex/dpelim/cnf"
	"github.com/xDarkicex/dpelim/heuristics"
	"github.com/xDarkicex/dpelim/metrics"
	"github.com/xDarkicex/dpelim/zdd"
)

func newBuilder() *cnf.Builder {
	return cnf.NewBuilder(zdd.NewKernel(), 0)
}

func clauseKey(c cnf.Clause) string {
	sorted := append([]cnf.Literal(nil), c...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	key := ""
	for _, l := range sorted {
		key += fmt.Sprintf("%d,", l)
	}
	return key
}

func clauseSetsEqual(a, b []cnf.Clause) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int)
	for _, c := range a {
		seen[clauseKey(c)]++
	}
	for _, c := range b {
		k := clauseKey(c)
		if seen[k] == 0 {
			return false
		}
		seen[k]--
	}
	return true
}

// spec.md §8 scenario 1: eliminate({{1,2},{-1,-2}}, 1) = ∅
func TestEliminateResolvesToEmptyFormula(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]cnf.Clause{{1, 2}, {-1, -2}})
	defer c.Release()

	result := Eliminate(c, 1, nil, nil)
	defer result.Release()

	require.True(t, result.IsEmpty(), "expected eliminating 1 from {{1,2},{-1,-2}} to produce the empty formula, got %v", result.ToVector())
}

// spec.md §8 scenario 2: eliminate({{1},{-1}}, 1) contains the empty clause.
func TestEliminateProducesEmptyClauseOnConflict(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]cnf.Clause{{1}, {-1}})
	defer c.Release()

	result := Eliminate(c, 1, nil, nil)
	defer result.Release()

	require.True(t, result.ContainsEmptyClause(), "expected eliminating 1 from {{1},{-1}} to contain the empty clause, got %v", result.ToVector())
}

// spec.md §8 scenario 3.
func TestEliminateMatchesWorkedExample(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]cnf.Clause{{1, 2, 3}, {2, 4}, {1, 3, 4}, {2, 5, 6}, {-4}})
	defer c.Release()

	result := Eliminate(c, 4, nil, nil)
	defer result.Release()

	want := []cnf.Clause{{2}, {1, 3}}
	got := result.ToVector()
	require.True(t, clauseSetsEqual(got, want), "eliminate(...,4) = %v, want %v", got, want)
}

// spec.md §8 scenario 4.
func TestIsSat(t *testing.T) {
	b := newBuilder()
	unsat := b.FromVector([]cnf.Clause{{1}, {-1}})
	defer unsat.Release()
	require.False(t, IsSat(unsat, nil, nil, nil), "expected {{1},{-1}} to be unsatisfiable")

	sat := b.FromVector([]cnf.Clause{{1, 2}})
	defer sat.Release()
	require.True(t, IsSat(sat, nil, nil, nil), "expected {{1,2}} to be satisfiable")
}

func TestEliminateVarsExhaustsAndEmptiesSatisfiableFormula(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]cnf.Clause{{1, 2}})
	defer c.Release()

	result, reason := EliminateVars(context.Background(), c, Options{
		Heuristic:       heuristics.Simple,
		NumVars:         5,
		AbsorbedBackend: absorb.WithConversion,
	})
	defer result.Release()

	require.Contains(t, []StopReason{FormulaDecided, Exhausted}, reason)
	require.True(t, result.IsEmpty(), "expected a satisfiable formula to reduce to empty, got %v", result.ToVector())
}

func TestEliminateVarsDetectsUnsatFormula(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]cnf.Clause{{1}, {-1}})
	defer c.Release()

	result, reason := EliminateVars(context.Background(), c, Options{
		Heuristic: heuristics.Simple,
		NumVars:   5,
	})
	defer result.Release()

	require.Equal(t, FormulaDecided, reason)
	require.True(t, result.ContainsEmptyClause())
}

func TestEliminateVarsStopsOnCancelledContext(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]cnf.Clause{{1, 2, 3}, {2, 4}, {1, 3, 4}, {2, 5, 6}, {-4}})
	defer c.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, reason := EliminateVars(ctx, c, Options{
		Heuristic: heuristics.Simple,
		NumVars:   5,
	})
	defer result.Release()

	require.Equal(t, ContextDone, reason)
}

func TestEliminateVarsRecordsUnitLiteralsRemoved(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]cnf.Clause{{1}, {1, 2}, {-1, 2, 3}, {2, -3}})
	defer c.Release()

	promReg := prometheus.NewRegistry()
	reg := metrics.NewRegistry(promReg)

	result, _ := EliminateVars(context.Background(), c, Options{
		Heuristic: heuristics.UnitLiteral,
		NumVars:   1,
		Metrics:   reg,
	})
	defer result.Release()

	families, err := promReg.Gather()
	require.NoError(t, err)

	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "dpelim_unit_literals_removed" {
			found = f
		}
	}
	require.NotNil(t, found, "expected dpelim_unit_literals_removed to be registered")
	require.Len(t, found.Metric, 1)
	require.EqualValues(t, 1, found.Metric[0].GetHistogram().GetSampleCount(), "eliminating unit literal 1 should record exactly one observation")
	require.InDelta(t, 1.0, found.Metric[0].GetHistogram().GetSampleSum(), 1e-9, "observed value should be 1 (a unit literal was eliminated)")
}

func TestEliminateVarsWithAbsorbedIntervalRemovesAbsorbedClauses(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]cnf.Clause{{1, -2}, {-1, 2, 3}, {-1, 2}, {-1, 2, -4}})
	defer c.Release()

	result, _ := EliminateVars(context.Background(), c, Options{
		Heuristic:        heuristics.Simple,
		NumVars:          0,
		AbsorbedInterval: 1,
		AbsorbedPolicy:   absorb.IncludeFirstIteration,
		AbsorbedBackend:  absorb.WithConversion,
	})
	defer result.Release()

	want := []cnf.Clause{{1, -2}, {-1, 2}}
	got := result.ToVector()
	require.True(t, clauseSetsEqual(got, want), "expected absorbed clauses removed leaving %v, got %v", want, got)
}
