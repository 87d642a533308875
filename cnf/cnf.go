// Package cnf builds the CNF-specific semantics of spec.md §4.2 on top of
// the bare decision-diagram kernel in package zdd: a CNF formula is
// represented as a ZDD family of sets of encoded literals, one set per
// clause, built the way original_source/lib/data_structures/sylvan_zdd_cnf.{hpp,cpp}
// builds it on top of Sylvan's ZDD package.
//
// A literal ℓ (a non-zero int32, positive for a positive literal) is
// encoded as a kernel Var via enc(+v) = 2v, enc(-v) = 2v+1, so that two
// complementary literals always occupy consecutive Var values — the
// property Builder.removeTautologiesImpl in algebra.go depends on.
package cnf

import (
	"github.com/xDarkicex/dpelim/errs"
	"github.com/xDarkicex/dpelim/lru"
	"github.com/xDarkicex/dpelim/zdd"
)

// Literal is a DIMACS-style literal: a non-zero variable number, negative
// for a negated occurrence.
type Literal = int32

// Clause is an ordered list of literals; order is insignificant to the
// represented set but preserved on read from and write to DIMACS text.
type Clause = []Literal

// VariableStats counts how many clauses a variable occurs in, split by
// polarity.
type VariableStats struct {
	PositiveClauseCount int
	NegativeClauseCount int
}

// FormulaStats is a dense per-variable histogram over the range
// [IndexShift, IndexShift+len(Vars)-1], used by the MinimalScore family of
// heuristics.
type FormulaStats struct {
	Vars       []VariableStats
	IndexShift int
}

// Builder owns one kernel and the persistent operation caches shared by
// every CNF value built from it — mirroring the file-scope static caches
// (s_multiply_cache, s_remove_tautologies_cache, ...) in the original
// sylvan_zdd_cnf.cpp, which live for the lifetime of the Sylvan ZDD
// universe rather than per call.
type Builder struct {
	K *zdd.Kernel

	multiplyCache  *protectingBinaryCache
	tautologyCache *protectingUnaryCache
	subsumedCache  *protectingUnaryCache
	supersetsCache *protectingBinaryCache
}

// NewBuilder creates a Builder with the given per-operation cache
// capacity (spec.md §4.1 default is 32, exposed as lru.DefaultCapacity).
func NewBuilder(k *zdd.Kernel, cacheCapacity int) *Builder {
	if cacheCapacity <= 0 {
		cacheCapacity = lru.DefaultCapacity
	}
	return &Builder{
		K:              k,
		multiplyCache:  newProtectingBinaryCache(k, cacheCapacity),
		tautologyCache: newProtectingUnaryCache(k, cacheCapacity),
		subsumedCache:  newProtectingUnaryCache(k, cacheCapacity),
		supersetsCache: newProtectingBinaryCache(k, cacheCapacity),
	}
}

// CNF is one ZDD-backed family of clauses, protected against kernel
// compaction for as long as it's alive.
type CNF struct {
	b      *Builder
	handle *zdd.Handle
}

func newCNF(b *Builder, r zdd.Ref) *CNF {
	return &CNF{b: b, handle: b.K.NewHandle(r)}
}

// Ref returns the underlying kernel reference.
func (c *CNF) Ref() zdd.Ref { return c.handle.Ref() }

// Builder returns the Builder c was constructed from, so that code
// holding only a *CNF can still build further CNF values sharing its
// kernel and operation caches.
func (c *CNF) Builder() *Builder { return c.b }

// Clone returns an independently-releasable CNF value over the same
// underlying ZDD, mirroring the original's copy-constructor semantics
// (each copy holds its own zdd_protect).
func (c *CNF) Clone() *CNF { return newCNF(c.b, c.Ref()) }

// Release unprotects the underlying node. After Release, c must not be
// used again.
func (c *CNF) Release() { c.handle.Release() }

// Empty returns the CNF representing the empty family of clauses (a
// trivially satisfiable formula containing no clauses at all — not to be
// confused with a formula containing the empty clause).
func Empty(b *Builder) *CNF { return newCNF(b, zdd.False) }

func literalToVar(l Literal) zdd.Var {
	if l == 0 {
		errs.Panic("cnf.literalToVar", "literal 0 is not valid")
	}
	if l > 0 {
		return zdd.Var(2 * l)
	}
	return zdd.Var(2*(-l) + 1)
}

func varToLiteral(v zdd.Var) Literal {
	q, r := v/2, v%2
	if r == 0 {
		return Literal(q)
	}
	return -Literal(q)
}

// clauseRef builds the ZDD set representing a single clause: the set of
// its (sorted, deduplication is natural since MakeNode hash-conses) encoded
// literals, terminated by True.
func clauseRef(k *zdd.Kernel, clause Clause) zdd.Ref {
	vars := make([]zdd.Var, len(clause))
	for i, l := range clause {
		vars[i] = literalToVar(l)
	}
	sortVars(vars)
	r := zdd.True
	for i := len(vars) - 1; i >= 0; i-- {
		r = k.MakeNode(vars[i], zdd.False, r)
	}
	return r
}

func sortVars(vars []zdd.Var) {
	// insertion sort: clause arity is small in practice and this avoids
	// pulling in sort.Slice for a handful of elements
	for i := 1; i < len(vars); i++ {
		for j := i; j > 0 && vars[j-1] > vars[j]; j-- {
			vars[j-1], vars[j] = vars[j], vars[j-1]
		}
	}
}

// FromVector builds a CNF containing exactly the given clauses.
func (b *Builder) FromVector(clauses []Clause) *CNF {
	r := zdd.False
	for _, c := range clauses {
		r = b.K.Or(r, clauseRef(b.K, c))
	}
	return newCNF(b, r)
}

// IsEmpty reports whether the formula has no clauses at all.
func (c *CNF) IsEmpty() bool { return c.Ref() == zdd.False }

// ContainsEmptyClause reports whether the family includes the empty
// clause (⊥, unsatisfiable on its own) — the member reached by following
// only low edges from the root. Sylvan represents this with a complement
// tag on the ZDD root; the in-repo kernel has no tag bits, so this walks
// the all-low path explicitly, which is the same O(depth) cost.
func (c *CNF) ContainsEmptyClause() bool {
	return c.b.containsEmptyClause(c.Ref())
}

func (b *Builder) containsEmptyClause(r zdd.Ref) bool {
	k := b.K
	for !k.IsTerminal(r) {
		r = k.LowOf(r)
	}
	return r == zdd.True
}

// CountClauses counts the clauses (set members) in the family.
func (c *CNF) CountClauses() int {
	k := c.b.K
	memo := make(map[zdd.Ref]int)
	var count func(zdd.Ref) int
	count = func(r zdd.Ref) int {
		if r == zdd.False {
			return 0
		}
		if r == zdd.True {
			return 1
		}
		if v, ok := memo[r]; ok {
			return v
		}
		v := count(k.LowOf(r)) + count(k.HighOf(r))
		memo[r] = v
		return v
	}
	return count(c.Ref())
}

// CountNodes counts the distinct ZDD nodes in the representation.
func (c *CNF) CountNodes() int { return c.b.K.CountNodes(c.Ref()) }

// CountDepth returns the longest root-to-terminal path length.
func (c *CNF) CountDepth() int { return c.b.K.CountDepth(c.Ref()) }

// GetSmallestVariable returns the smallest variable (not literal) that
// occurs anywhere in the formula, or 0 if the formula is empty or contains
// only the empty clause.
func (c *CNF) GetSmallestVariable() Literal {
	l := c.GetRootLiteral()
	if l < 0 {
		return -l
	}
	return l
}

// GetLargestVariable returns the largest variable occurring anywhere.
func (c *CNF) GetLargestVariable() Literal {
	k := c.b.K
	if k.IsTerminal(c.Ref()) {
		return 0
	}
	var walk func(zdd.Ref) zdd.Var
	memo := make(map[zdd.Ref]zdd.Var)
	walk = func(r zdd.Ref) zdd.Var {
		if k.IsTerminal(r) {
			return 0
		}
		if v, ok := memo[r]; ok {
			return v
		}
		v := k.VarOf(r)
		lo := walk(k.LowOf(r))
		hi := walk(k.HighOf(r))
		if lo > v {
			v = lo
		}
		if hi > v {
			v = hi
		}
		memo[r] = v
		return v
	}
	v := walk(c.Ref())
	l := varToLiteral(v)
	if l < 0 {
		return -l
	}
	return l
}

// GetRootLiteral returns the literal at the root node, or 0 if the formula
// has no nodes (is empty or {∅}). Heuristics.Simple picks the next
// elimination variable this way.
func (c *CNF) GetRootLiteral() Literal {
	k := c.b.K
	if k.IsTerminal(c.Ref()) {
		return 0
	}
	return varToLiteral(k.VarOf(c.Ref()))
}

// ContainsUnitLiteral reports whether l occurs in the formula as a unit
// clause on its own (distinct from GetUnitLiteral, which returns some
// arbitrary unit literal rather than testing for a specific one).
func (c *CNF) ContainsUnitLiteral(l Literal) bool {
	v := literalToVar(l)
	restricted := c.b.K.Eval(c.Ref(), v, 1)
	return c.b.containsEmptyClause(restricted)
}

// GetUnitLiteral returns a literal that occurs in the formula as a unit
// clause, or 0 if there is none. A node's high child containing the empty
// clause means that node's literal, alone, is a member of the family.
func (c *CNF) GetUnitLiteral() Literal {
	k := c.b.K
	r := c.Ref()
	for !k.IsTerminal(r) {
		high := k.HighOf(r)
		if c.b.containsEmptyClause(high) {
			return varToLiteral(k.VarOf(r))
		}
		r = k.LowOf(r)
	}
	return 0
}

// GetClearLiteral returns a literal whose variable occurs with only one
// polarity across the whole formula (a "pure" literal), or 0 if every
// variable occurs both positively and negatively.
func (c *CNF) GetClearLiteral() Literal {
	const (
		positive = 1 << 0
		negative = 1 << 1
	)
	k := c.b.K
	occurrences := make(map[Literal]int)
	var order []Literal
	visited := make(map[zdd.Ref]bool)
	var walk func(zdd.Ref)
	walk = func(r zdd.Ref) {
		if k.IsTerminal(r) || visited[r] {
			return
		}
		visited[r] = true
		l := varToLiteral(k.VarOf(r))
		v := l
		occ := positive
		if l < 0 {
			v = -l
			occ = negative
		}
		if _, ok := occurrences[v]; !ok {
			order = append(order, v)
		}
		occurrences[v] |= occ
		walk(k.LowOf(r))
		walk(k.HighOf(r))
	}
	walk(c.Ref())
	for _, v := range order {
		occ := occurrences[v]
		switch occ {
		case positive:
			return v
		case negative:
			return -v
		}
	}
	return 0
}

// GetFormulaStatistics builds the per-variable occurrence histogram used
// by heuristics.MinimalScore.
func (c *CNF) GetFormulaStatistics() FormulaStats {
	shift := int(c.GetSmallestVariable())
	largest := int(c.GetLargestVariable())
	stats := FormulaStats{IndexShift: shift}
	if largest >= shift {
		stats.Vars = make([]VariableStats, largest-shift+1)
	}
	c.ForAllClauses(func(clause Clause) bool {
		for _, l := range clause {
			v := l
			if v < 0 {
				v = -v
			}
			idx := int(v) - shift
			if idx < 0 || idx >= len(stats.Vars) {
				continue
			}
			if l > 0 {
				stats.Vars[idx].PositiveClauseCount++
			} else {
				stats.Vars[idx].NegativeClauseCount++
			}
		}
		return true
	})
	return stats
}
