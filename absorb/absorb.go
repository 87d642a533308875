// Package absorb detects and removes absorbed clauses, grounded on
// original_source/lib/algorithms/unit_propagation.cpp's two back-ends: a
// symbolic one that works directly on the ZDD-CNF family (package cnf),
// and a with-conversion one that serializes to a vector and runs
// detection over package watch's watched-literals engine.
//
// A clause is absorbed (also called "blocked" in some SAT literature
// variants, though this is the resolution-based absorption notion rather
// than blocked-clause elimination) when the formula without it already
// implies it by unit propagation for every literal in it — a strictly
// stronger redundancy notion than subsumption. Detection requires the
// input to be tautology-free: a tautological clause would trivially
// "empower" every literal in it against itself.
package absorb

import (
	"github.com/xDarkicex/dpelim/cnf"
	"github.com/xDarkicex/dpelim/watch"
)

// Backend selects which absorbed-clause detection implementation
// package dp's driver should use.
type Backend int

const (
	WithConversion Backend = iota
	WithoutConversion
)

// IntervalPolicy resolves spec.md §9's open question on whether the first
// DP elimination iteration (i=0) counts toward the absorbed-clause removal
// interval. The original C++ uses i % interval == 0, which fires on the
// first iteration; IncludeFirstIteration preserves that, SkipFirstIteration
// requires i > 0 as well.
type IntervalPolicy int

const (
	IncludeFirstIteration IntervalPolicy = iota
	SkipFirstIteration
)

// Due reports whether an absorbed-clause removal pass should run after
// iteration i, given the configured interval and policy. interval <= 0
// disables periodic removal entirely.
func (p IntervalPolicy) Due(i, interval int) bool {
	if interval <= 0 {
		return false
	}
	if i%interval != 0 {
		return false
	}
	if p == SkipFirstIteration && i == 0 {
		return false
	}
	return true
}

// unitPropagationStep is the symbolic equivalent of one resolution-free
// unit-propagation step: remove every clause containing the literal
// (satisfied, gone for good) and shrink every clause containing its
// negation by removing that occurrence.
func unitPropagationStep(c *cnf.CNF, unitLiteral cnf.Literal) *cnf.CNF {
	withoutL := c.Subset0(unitLiteral)
	withNotL := c.Subset1(-unitLiteral)
	result := withoutL.Unify(withNotL)
	withoutL.Release()
	withNotL.Release()
	return result
}

// unitPropagationImpliesLiteral runs unit propagation, short-circuiting as
// soon as it can decide whether stopLiteral is implied. curr is consumed:
// callers pass a value they're prepared to have released.
func unitPropagationImpliesLiteral(curr *cnf.CNF, stopLiteral cnf.Literal) (implied bool, remainder *cnf.CNF) {
	for {
		if curr.ContainsEmptyClause() {
			return true, curr
		}
		l := curr.GetUnitLiteral()
		if l == 0 {
			return false, curr
		}
		if l == stopLiteral || curr.ContainsUnitLiteral(stopLiteral) {
			return true, curr
		}
		if l == -stopLiteral || curr.ContainsUnitLiteral(-stopLiteral) {
			return false, curr
		}
		next := unitPropagationStep(curr, l)
		curr.Release()
		curr = next
	}
}

// IsClauseAbsorbedSymbolic decides absorption directly on the ZDD-CNF
// family, without ever materializing a clause vector. c is the formula
// without clause. Tautological clauses are not detected here; clause is
// assumed tautology-free.
func IsClauseAbsorbedSymbolic(c *cnf.CNF, clause cnf.Clause) bool {
	if c.ContainsEmptyClause() {
		return false
	}
	for _, testedLiteral := range clause {
		base := c.Clone()
		implied, after := unitPropagationImpliesLiteral(base, testedLiteral)
		if implied {
			after.Release()
			continue
		}
		isEmpowered := true
		curr := after
		for _, l := range clause {
			if l == testedLiteral {
				continue
			}
			next := unitPropagationStep(curr, -l)
			curr.Release()
			curr = next
			implied, curr = unitPropagationImpliesLiteral(curr, testedLiteral)
			if implied {
				isEmpowered = false
				break
			}
		}
		curr.Release()
		if isEmpowered {
			return false
		}
	}
	return true
}

// RemoveAbsorbedWithoutConversion removes every absorbed clause from c
// using the symbolic back-end, one candidate clause at a time (each
// tested against the family with that one clause removed). Like
// IsClauseAbsorbedSymbolic, it assumes c contains no tautological clause.
func RemoveAbsorbedWithoutConversion(c *cnf.CNF) *cnf.CNF {
	output := c.Clone()
	c.ForAllClauses(func(clause cnf.Clause) bool {
		singleton := c.Builder().FromVector([]cnf.Clause{clause})
		remaining := output.Subtract(singleton)
		singleton.Release()
		if IsClauseAbsorbedSymbolic(remaining, clause) {
			output.Release()
			output = remaining
		} else {
			remaining.Release()
		}
		return true
	})
	return output
}

// IsClauseAbsorbedWatched decides absorption using a watched-literals
// engine already primed with every other active clause (the candidate
// clause itself must already be deactivated by the caller).
func IsClauseAbsorbedWatched(w *watch.Engine, clause watch.Clause) bool {
	if w.ContainsEmpty() {
		return false
	}
	for _, literal := range clause {
		w.BacktrackTo(0)
		if w.GetAssignment(literal) == watch.Positive {
			continue
		}
		isEmpowered := true
		for _, l := range clause {
			if l == literal {
				continue
			}
			a := w.GetAssignment(-l)
			if a == watch.Negative {
				isEmpowered = false
				break
			}
			if a == watch.Positive {
				continue
			}
			if !w.AssignValue(-l) {
				isEmpowered = false
				break
			}
			if w.GetAssignment(literal) == watch.Positive {
				isEmpowered = false
				break
			}
		}
		if isEmpowered {
			return false
		}
	}
	return true
}

// RemoveAbsorbedWatched removes every absorbed clause from the vector
// using the watched-literals back-end: clause 0 starts deactivated (it's
// the first candidate), and ChangeActiveClauses swaps which single clause
// is held out as each candidate is tested in turn.
func RemoveAbsorbedWatched(clauses []watch.Clause) []watch.Clause {
	if len(clauses) == 0 {
		return nil
	}
	w := watch.FromVectorDeactivated(clauses, map[int]bool{0: true})

	var output []watch.Clause
	toReactivate := []int{0}
	if IsClauseAbsorbedWatched(w, clauses[0]) {
		toReactivate = nil
	} else {
		output = append(output, clauses[0])
	}
	for i := 1; i < len(clauses); i++ {
		w.ChangeActiveClauses(toReactivate, []int{i})
		toReactivate = []int{i}
		if IsClauseAbsorbedWatched(w, clauses[i]) {
			toReactivate = nil
		} else {
			output = append(output, clauses[i])
		}
	}
	return output
}

// UnifyWithNonAbsorbed tests each of candidates, in order, for absorption
// by stable plus every other candidate not already found absorbed, holding
// out only the candidate under test the same way RemoveAbsorbedWatched
// does, and returns stable extended with exactly the ones that survive.
func UnifyWithNonAbsorbed(stable []watch.Clause, candidates []watch.Clause) []watch.Clause {
	if len(candidates) == 0 {
		return append([]watch.Clause(nil), stable...)
	}
	all := append(append([]watch.Clause(nil), stable...), candidates...)
	w := watch.FromVectorDeactivated(all, map[int]bool{len(stable): true})

	output := append([]watch.Clause(nil), stable...)
	toReactivate := []int{}
	for i, c := range candidates {
		idx := len(stable) + i
		w.ChangeActiveClauses(toReactivate, []int{idx})
		toReactivate = []int{idx}
		if IsClauseAbsorbedWatched(w, c) {
			toReactivate = nil
		} else {
			output = append(output, c)
		}
	}
	return output
}

// RemoveAbsorbedWithConversion removes every absorbed clause from c by
// serializing it to a vector, running the watched-literals back-end, and
// rebuilding the ZDD from the surviving clauses. A trivially
// empty/empty-containing formula is returned unchanged, matching the
// original's short-circuit (absorption is undefined once a conflict
// already exists).
func RemoveAbsorbedWithConversion(c *cnf.CNF) *cnf.CNF {
	if c.IsEmpty() || c.ContainsEmptyClause() {
		return c.Clone()
	}
	vector := c.ToVector()
	watchClauses := make([]watch.Clause, len(vector))
	for i, clause := range vector {
		watchClauses[i] = watch.Clause(clause)
	}
	reduced := RemoveAbsorbedWatched(watchClauses)
	cnfClauses := make([]cnf.Clause, len(reduced))
	for i, clause := range reduced {
		cnfClauses[i] = cnf.Clause(clause)
	}
	return c.Builder().FromVector(cnfClauses)
}
