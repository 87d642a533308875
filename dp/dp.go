// Package dp implements Davis–Putnam variable elimination over the
// ZDD-CNF family in package cnf, grounded on
// original_source/lib/algorithms/dp_elimination.hpp.
package dp

import (
	"context"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/xDarkicex/dpelim/absorb"
	"github.com/xDarkicex/dpelim/cnf"
	"github.com/xDarkicex/dpelim/errs"
	"github.com/xDarkicex/dpelim/heuristics"
	"github.com/xDarkicex/dpelim/metrics"
)

// StopReason reports why EliminateVars stopped before Options.NumVars
// iterations ran, or that it ran them all (Exhausted).
type StopReason int

const (
	Exhausted StopReason = iota
	HeuristicFailed
	ScorePositive
	ContextDone
	FormulaDecided
)

func (r StopReason) String() string {
	switch r {
	case Exhausted:
		return "exhausted"
	case HeuristicFailed:
		return "heuristic failed"
	case ScorePositive:
		return "score positive"
	case ContextDone:
		return "context done"
	case FormulaDecided:
		return "formula decided"
	default:
		return "unknown"
	}
}

// Options configures EliminateVars.
type Options struct {
	// Heuristic picks the next literal to eliminate each iteration.
	// Required.
	Heuristic heuristics.Func
	// NumVars bounds the number of elimination iterations.
	NumVars int
	// AbsorbedInterval, if > 0, runs absorbed-clause removal every
	// AbsorbedInterval-th iteration (per AbsorbedPolicy) and once more
	// after the loop. Zero disables absorbed-clause removal entirely.
	AbsorbedInterval int
	// AbsorbedPolicy resolves whether the interval check includes
	// iteration 0.
	AbsorbedPolicy absorb.IntervalPolicy
	// AbsorbedBackend selects which of package absorb's two detection
	// back-ends runs the periodic removal passes.
	AbsorbedBackend absorb.Backend
	// Logger defaults to hclog.L() when nil.
	Logger hclog.Logger
	// Metrics is optional; a nil *metrics.Registry records nothing.
	Metrics *metrics.Registry
}

func (o Options) logger() hclog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return hclog.L()
}

// Eliminate computes DP resolution on literal l: every clause containing
// l is resolved against every clause containing -l, tautologies and
// subsumed clauses are stripped from the resolvents, the result is
// unified with clauses untouched by l, and a final subsumption pass
// catches cross-subsumption between old and new clauses. The variable
// |l| does not appear in the result. c is not modified.
func Eliminate(c *cnf.CNF, l cnf.Literal, logger hclog.Logger, m *metrics.Registry) *cnf.CNF {
	if logger == nil {
		logger = hclog.L()
	}
	logger.Debug("eliminating literal", "literal", l)

	total := m.TimeEliminateVarTotal()
	defer total.Stop()

	decomp := m.TimeEliminateVarSubsetDecomposition()
	withPos := c.Subset1(l)
	withNeg := c.Subset1(-l)
	without0 := c.Subset0(l)
	without := without0.Subset0(-l)
	without0.Release()
	decomp.Stop()

	resolution := m.TimeEliminateVarResolution()
	resolvents := withPos.Multiply(withNeg)
	resolution.Stop()
	withPos.Release()
	withNeg.Release()

	tautologies := m.TimeEliminateVarTautologiesRemoval()
	noTautologies := resolvents.RemoveTautologies()
	tautologies.Stop()
	resolvents.Release()

	subsumed1 := m.TimeEliminateVarSubsumedRemoval1()
	cleaned := noTautologies.RemoveSubsumedClauses()
	subsumed1.Stop()
	noTautologies.Release()

	unification := m.TimeEliminateVarUnification()
	unified := cleaned.Unify(without)
	unification.Stop()
	cleaned.Release()
	without.Release()

	subsumed2 := m.TimeEliminateVarSubsumedRemoval2()
	result := unified.RemoveSubsumedClauses()
	subsumed2.Stop()
	unified.Release()

	return result
}

func removeAbsorbed(c *cnf.CNF, opts Options, logger hclog.Logger, m *metrics.Registry) *cnf.CNF {
	m.IncRemoveAbsorbedCallCount()
	before := c.CountClauses()

	var result *cnf.CNF
	if opts.AbsorbedBackend == absorb.WithoutConversion {
		result = absorb.RemoveAbsorbedWithoutConversion(c)
	} else {
		timer := m.TimeRemoveAbsorbedWithConversion()
		result = absorb.RemoveAbsorbedWithConversion(c)
		timer.Stop()
	}

	after := result.CountClauses()
	m.AddAbsorbedClausesRemoved(before - after)
	logger.Debug("removed absorbed clauses", "removed", before-after, "remaining", after)
	return result
}

// EliminateVars runs up to opts.NumVars elimination rounds over c,
// consulting opts.Heuristic for the next literal each round and
// periodically compacting absorbed clauses away. It returns the
// resulting formula (never c itself — callers retain ownership of c)
// along with the reason it stopped.
//
// The stop predicate is ctx: cancellation is checked once per outer
// iteration, after the previous round's resolution and absorbed-clause
// removal, before the next heuristic consultation — granular to one
// variable elimination, never interrupting mid-primitive.
func EliminateVars(ctx context.Context, c *cnf.CNF, opts Options) (*cnf.CNF, StopReason) {
	logger := opts.logger()
	m := opts.Metrics
	logger.Info("starting DP elimination algorithm", "num_vars", opts.NumVars)

	overall := m.TimeEliminateVars()
	defer overall.Stop()

	current := c.Clone()
	for i := 0; i < opts.NumVars; i++ {
		if current.IsEmpty() || current.ContainsEmptyClause() {
			return current, FormulaDecided
		}
		if err := ctx.Err(); err != nil {
			return current, ContextDone
		}

		result := opts.Heuristic(current)
		if !result.Success {
			return current, HeuristicFailed
		}
		if result.Score > 0 {
			return current, ScorePositive
		}

		wasUnit := current.ContainsUnitLiteral(result.Literal)

		next := Eliminate(current, result.Literal, logger, m)
		current.Release()
		current = next

		if wasUnit {
			m.ObserveUnitLiteralsRemoved(1)
		} else {
			m.ObserveUnitLiteralsRemoved(0)
		}
		m.SampleFormula(current.CountNodes(), current.CountClauses(), current.CountDepth())

		if opts.AbsorbedPolicy.Due(i, opts.AbsorbedInterval) {
			reduced := removeAbsorbed(current, opts, logger, m)
			current.Release()
			current = reduced
		}
	}

	if opts.AbsorbedInterval > 0 {
		reduced := removeAbsorbed(current, opts, logger, m)
		current.Release()
		current = reduced
	}
	return current, Exhausted
}

// IsSat is the degenerate driver described in spec.md §4.3: eliminate
// variables by heuristic (defaulting to heuristics.Simple) until the
// formula is empty (satisfiable) or contains the empty clause
// (unsatisfiable). c is not modified.
func IsSat(c *cnf.CNF, heuristic heuristics.Func, logger hclog.Logger, m *metrics.Registry) bool {
	if heuristic == nil {
		heuristic = heuristics.Simple
	}
	if logger == nil {
		logger = hclog.L()
	}
	logger.Info("starting DP elimination algorithm")

	current := c.Clone()
	for {
		if current.IsEmpty() {
			current.Release()
			return true
		}
		if current.ContainsEmptyClause() {
			current.Release()
			return false
		}
		result := heuristic(current)
		if !result.Success && result.Literal == 0 {
			current.Release()
			errs.Panic("dp.IsSat", "heuristic produced no literal for an undecided formula")
		}
		next := Eliminate(current, result.Literal, logger, m)
		current.Release()
		current = next
	}
}
