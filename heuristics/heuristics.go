// Package heuristics selects the next variable for Davis–Putnan
// elimination to resolve away, grounded on
// original_source/lib/algorithms/heuristics.hpp.
package heuristics

import "github.com/xDarkicex/dpelim/cnf"

// Score is a heuristic's internal ranking value; lower is better for
// MinimalScore.
type Score = int64

// Result reports a heuristic's choice: Success is false when the
// heuristic couldn't find what it was looking for. UnitLiteral and
// ClearLiteral then fall back to the formula's root literal; Simple on a
// formula with no nodes, and MinimalScore with no candidate in range,
// report Literal 0.
type Result struct {
	Success bool
	Literal cnf.Literal
	Score   Score
}

// Func picks the next literal to eliminate from a CNF.
type Func func(c *cnf.CNF) Result

// Simple always eliminates the variable at the ZDD root.
func Simple(c *cnf.CNF) Result {
	l := c.GetRootLiteral()
	return Result{Success: l != 0, Literal: l}
}

// UnitLiteral prefers a literal that already occurs as a unit clause
// (eliminating it can only shrink the formula), falling back to the root
// literal when there is none.
func UnitLiteral(c *cnf.CNF) Result {
	l := c.GetUnitLiteral()
	if l == 0 {
		return Result{Success: false, Literal: c.GetRootLiteral()}
	}
	return Result{Success: true, Literal: l}
}

// ClearLiteral prefers a pure literal (a variable occurring with only one
// polarity, so eliminating it can't introduce new resolvents), falling
// back to the root literal when there is none.
func ClearLiteral(c *cnf.CNF) Result {
	l := c.GetClearLiteral()
	if l == 0 {
		return Result{Success: false, Literal: c.GetRootLiteral()}
	}
	return Result{Success: true, Literal: l}
}

// ScoreEvaluator scores a candidate variable from its occurrence counts;
// MinimalScore picks the variable with the lowest score in range.
type ScoreEvaluator func(stats cnf.VariableStats) Score

// BloatScore estimates how much eliminating a variable would grow the
// formula: the resolvents produced (positive occurrences × negative
// occurrences) minus the clauses consumed (positive + negative
// occurrences). Negative means the formula is expected to shrink.
func BloatScore(stats cnf.VariableStats) Score {
	pos := Score(stats.PositiveClauseCount)
	neg := Score(stats.NegativeClauseCount)
	return pos*neg - (pos + neg)
}

// MinimalScore builds a heuristic that scores every variable in
// [minVar, maxVar] (clamped to the variables actually present in the
// formula) with evaluator and picks the lowest-scoring one.
func MinimalScore(minVar, maxVar int, evaluator ScoreEvaluator) Func {
	return func(c *cnf.CNF) Result {
		stats := c.GetFormulaStatistics()
		if len(stats.Vars) == 0 {
			return Result{Success: false, Literal: 0}
		}
		lo := minVar
		if stats.IndexShift > lo {
			lo = stats.IndexShift
		}
		hi := maxVar
		if last := stats.IndexShift + len(stats.Vars) - 1; last < hi {
			hi = last
		}

		bestScore := Score(1)<<62 - 1 // sentinel: no finite score exceeds this
		bestVar := 0
		for v := lo; v <= hi; v++ {
			idx := v - stats.IndexShift
			vs := stats.Vars[idx]
			if vs.PositiveClauseCount == 0 && vs.NegativeClauseCount == 0 {
				continue
			}
			score := evaluator(vs)
			if score < bestScore {
				bestScore = score
				bestVar = v
			}
		}
		if bestVar == 0 {
			return Result{Success: false, Literal: 0}
		}
		return Result{Success: true, Literal: cnf.Literal(bestVar), Score: bestScore}
	}
}
