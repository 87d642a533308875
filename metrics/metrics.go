// Package metrics exposes the DP elimination pipeline's counters, series
// and durations as Prometheus collectors, grounded on
// original_source/lib/metrics/dp_metrics.hpp and metrics_collector.hpp's
// generic counter/series/duration triad (translated here to
// prometheus.Counter/Gauge/Histogram rather than a hand-rolled exporter,
// since the corpus already reaches for client_golang wherever it needs
// metrics).
//
// A *Registry is optional everywhere it's threaded through: a nil
// *Registry is safe to call every method on, so library callers of
// package dp never have to stand up a running Prometheus registry just to
// use the core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xDarkicex/dpelim/errs"
)

// Registry holds every collector the DP pipeline reports to. Register it
// against a prometheus.Registerer (prometheus.DefaultRegisterer, or a
// private one for tests) with NewRegistry.
type Registry struct {
	removeAbsorbedCallCount     prometheus.Counter
	absorbedClausesRemovedTotal prometheus.Counter
	unitLiteralsRemoved         prometheus.Histogram

	durEliminateVars                    prometheus.Histogram
	durRemoveAbsorbedWithConversion      prometheus.Histogram
	durEliminateVarTotal                 prometheus.Histogram
	durEliminateVarSubsetDecomposition    prometheus.Histogram
	durEliminateVarResolution             prometheus.Histogram
	durEliminateVarTautologiesRemoval     prometheus.Histogram
	durEliminateVarSubsumedRemoval1       prometheus.Histogram
	durEliminateVarSubsumedRemoval2       prometheus.Histogram
	durEliminateVarUnification            prometheus.Histogram

	nodeCount    prometheus.Gauge
	clauseCount  prometheus.Gauge
	diagramDepth prometheus.Gauge
}

// NewRegistry builds and registers every collector under the "dpelim"
// namespace. reg may be prometheus.DefaultRegisterer, or nil to skip
// registration entirely (the collectors are still created and usable,
// just not exported) — useful for tests that don't want to pollute the
// default registry.
func NewRegistry(reg prometheus.Registerer) *Registry {
	newCounter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dpelim", Name: name, Help: help})
		if reg != nil {
			reg.MustRegister(c)
		}
		return c
	}
	newHistogram := func(name, help string) prometheus.Histogram {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "dpelim", Name: name, Help: help})
		if reg != nil {
			reg.MustRegister(h)
		}
		return h
	}
	newGauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "dpelim", Name: name, Help: help})
		if reg != nil {
			reg.MustRegister(g)
		}
		return g
	}

	return &Registry{
		removeAbsorbedCallCount:     newCounter("remove_absorbed_clauses_call_count", "Number of times absorbed-clause removal ran."),
		absorbedClausesRemovedTotal: newCounter("absorbed_clauses_removed_total", "Cumulative count of clauses removed as absorbed."),
		unitLiteralsRemoved:         newHistogram("unit_literals_removed", "Unit literals removed per elimination round."),

		durEliminateVars:                 newHistogram("eliminate_vars_seconds", "Wall time of a full EliminateVars run."),
		durRemoveAbsorbedWithConversion:   newHistogram("remove_absorbed_with_conversion_seconds", "Wall time of one with-conversion absorbed-clause removal pass."),
		durEliminateVarTotal:              newHistogram("eliminate_var_total_seconds", "Wall time of one variable elimination round."),
		durEliminateVarSubsetDecomposition: newHistogram("eliminate_var_subset_decomposition_seconds", "Wall time splitting a formula into with/without-l subsets."),
		durEliminateVarResolution:          newHistogram("eliminate_var_resolution_seconds", "Wall time of the resolution (multiply) step."),
		durEliminateVarTautologiesRemoval:  newHistogram("eliminate_var_tautologies_removal_seconds", "Wall time removing tautologies from resolvents."),
		durEliminateVarSubsumedRemoval1:    newHistogram("eliminate_var_subsumed_removal_1_seconds", "Wall time of the first subsumption pass."),
		durEliminateVarSubsumedRemoval2:    newHistogram("eliminate_var_subsumed_removal_2_seconds", "Wall time of the final subsumption pass."),
		durEliminateVarUnification:         newHistogram("eliminate_var_unification_seconds", "Wall time unifying resolvents with unaffected clauses."),

		nodeCount:    newGauge("zdd_node_count", "ZDD node count sampled after each elimination round."),
		clauseCount:  newGauge("zdd_clause_count", "Clause count sampled after each elimination round."),
		diagramDepth: newGauge("zdd_depth", "ZDD depth sampled after each elimination round."),
	}
}

// IncRemoveAbsorbedCallCount records one absorbed-clause removal pass.
func (r *Registry) IncRemoveAbsorbedCallCount() {
	if r == nil {
		return
	}
	r.removeAbsorbedCallCount.Inc()
}

// AddAbsorbedClausesRemoved adds n to the cumulative removed-clause total.
func (r *Registry) AddAbsorbedClausesRemoved(n int) {
	if r == nil || n == 0 {
		return
	}
	r.absorbedClausesRemovedTotal.Add(float64(n))
}

// ObserveUnitLiteralsRemoved records how many unit literals one
// elimination round removed.
func (r *Registry) ObserveUnitLiteralsRemoved(n int) {
	if r == nil {
		return
	}
	r.unitLiteralsRemoved.Observe(float64(n))
}

// SampleFormula records the ZDD node count, clause count and depth after
// an elimination round.
func (r *Registry) SampleFormula(nodes, clauses, depth int) {
	if r == nil {
		return
	}
	r.nodeCount.Set(float64(nodes))
	r.clauseCount.Set(float64(clauses))
	r.diagramDepth.Set(float64(depth))
}

// Timer measures one duration metric. It mirrors
// metrics_collector.hpp's Timer: stopping an already-stopped timer is a
// programming error and panics, matching the original's
// std::logic_error. A Timer obtained from a nil *Registry records nothing
// (calling Stop on it twice still panics).
type Timer struct {
	observer prometheus.Observer
	start    time.Time
	stopped  bool
}

func newTimer(o prometheus.Observer) *Timer {
	if o == nil {
		return &Timer{}
	}
	return &Timer{observer: o, start: time.Now()}
}

// Stop records the elapsed duration. Calling Stop twice panics.
func (t *Timer) Stop() {
	if t.stopped {
		errs.Panic("metrics.Timer.Stop", "timer already stopped")
	}
	t.stopped = true
	if t.observer != nil {
		t.observer.Observe(time.Since(t.start).Seconds())
	}
}

func (r *Registry) timer(pick func(*Registry) prometheus.Histogram) *Timer {
	if r == nil {
		return newTimer(nil)
	}
	return newTimer(pick(r))
}

func (r *Registry) TimeEliminateVars() *Timer {
	return r.timer(func(r *Registry) prometheus.Histogram { return r.durEliminateVars })
}

func (r *Registry) TimeRemoveAbsorbedWithConversion() *Timer {
	return r.timer(func(r *Registry) prometheus.Histogram { return r.durRemoveAbsorbedWithConversion })
}

func (r *Registry) TimeEliminateVarTotal() *Timer {
	return r.timer(func(r *Registry) prometheus.Histogram { return r.durEliminateVarTotal })
}

func (r *Registry) TimeEliminateVarSubsetDecomposition() *Timer {
	return r.timer(func(r *Registry) prometheus.Histogram { return r.durEliminateVarSubsetDecomposition })
}

func (r *Registry) TimeEliminateVarResolution() *Timer {
	return r.timer(func(r *Registry) prometheus.Histogram { return r.durEliminateVarResolution })
}

func (r *Registry) TimeEliminateVarTautologiesRemoval() *Timer {
	return r.timer(func(r *Registry) prometheus.Histogram { return r.durEliminateVarTautologiesRemoval })
}

func (r *Registry) TimeEliminateVarSubsumedRemoval1() *Timer {
	return r.timer(func(r *Registry) prometheus.Histogram { return r.durEliminateVarSubsumedRemoval1 })
}

func (r *Registry) TimeEliminateVarSubsumedRemoval2() *Timer {
	return r.timer(func(r *Registry) prometheus.Histogram { return r.durEliminateVarSubsumedRemoval2 })
}

func (r *Registry) TimeEliminateVarUnification() *Timer {
	return r.timer(func(r *Registry) prometheus.Histogram { return r.durEliminateVarUnification })
}
