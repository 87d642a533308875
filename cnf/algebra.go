package cnf

import "github.com/xDarkicex/dpelim/zdd"

// Subset0 (ZDD restriction, branch 0) returns the sub-family of clauses
// that do NOT contain l.
func (c *CNF) Subset0(l Literal) *CNF {
	r := c.b.K.Eval(c.Ref(), literalToVar(l), 0)
	return newCNF(c.b, r)
}

// Subset1 (ZDD restriction, branch 1) returns the sub-family of clauses
// that DO contain l, with l itself removed from each — the form needed so
// that multiplying two subset1 results performs resolution rather than
// reproducing l ∧ ¬l in every resolvent.
func (c *CNF) Subset1(l Literal) *CNF {
	r := c.b.K.Eval(c.Ref(), literalToVar(l), 1)
	return newCNF(c.b, r)
}

// Unify returns the union of the two clause families (spec.md: unify).
func (c *CNF) Unify(other *CNF) *CNF {
	return newCNF(c.b, c.b.K.Or(c.Ref(), other.Ref()))
}

// Intersect returns the clauses present in both families.
func (c *CNF) Intersect(other *CNF) *CNF {
	return newCNF(c.b, c.b.K.And(c.Ref(), other.Ref()))
}

// Subtract returns the clauses in c that are not in other.
func (c *CNF) Subtract(other *CNF) *CNF {
	return newCNF(c.b, c.b.K.Diff(c.Ref(), other.Ref()))
}

// Multiply computes the clause-wise union product of the two families:
// { a ∪ b | a ∈ c, b ∈ other }, the operation underlying DP resolution.
// Grounded on sylvan_zdd_cnf.cpp's multiply_impl, including its persistent
// binary cache.
func (c *CNF) Multiply(other *CNF) *CNF {
	return newCNF(c.b, c.b.multiplyImpl(c.Ref(), other.Ref()))
}

func (b *Builder) multiplyImpl(p, q zdd.Ref) zdd.Ref {
	k := b.K
	switch {
	case p == zdd.False:
		return zdd.False
	case p == zdd.True:
		return q
	case q == zdd.False:
		return zdd.False
	case q == zdd.True:
		return p
	}
	pVar := k.VarOf(p)
	qVar := k.VarOf(q)
	if pVar > qVar {
		return b.multiplyImpl(q, p)
	}
	if result, ok := b.multiplyCache.get(p, q); ok {
		return result
	}

	x := pVar
	p0, p1 := k.LowOf(p), k.HighOf(p)
	var q0, q1 zdd.Ref
	if qVar == pVar {
		q0, q1 = k.LowOf(q), k.HighOf(q)
	} else {
		q0, q1 = q, zdd.False
	}
	p0q0 := b.multiplyImpl(p0, q0)
	p0q1 := b.multiplyImpl(p0, q1)
	p1q0 := b.multiplyImpl(p1, q0)
	p1q1 := b.multiplyImpl(p1, q1)
	tmp := k.Or(k.Or(p1q1, p1q0), p0q1)
	result := k.MakeNode(x, p0q0, tmp)
	b.multiplyCache.put(p, q, result)
	return result
}

// RemoveTautologies strips out every clause that contains a variable and
// its negation. This relies on the literal encoding's invariant that
// complementary literals are consecutive Var values (var/2 identifies the
// variable regardless of polarity): a node's high child corresponds to a
// complementary literal exactly when they share that quotient.
func (c *CNF) RemoveTautologies() *CNF {
	return newCNF(c.b, c.b.removeTautologiesImpl(c.Ref()))
}

func (b *Builder) removeTautologiesImpl(r zdd.Ref) zdd.Ref {
	k := b.K
	if k.IsTerminal(r) {
		return r
	}
	if result, ok := b.tautologyCache.get(r); ok {
		return result
	}
	v := k.VarOf(r)
	low := b.removeTautologiesImpl(k.LowOf(r))
	high := b.removeTautologiesImpl(k.HighOf(r))

	var result zdd.Ref
	if k.IsTerminal(high) {
		result = k.MakeNode(v, low, high)
	} else if v/2 == k.VarOf(high)/2 {
		result = k.MakeNode(v, low, k.LowOf(high))
	} else {
		result = k.MakeNode(v, low, high)
	}
	b.tautologyCache.put(r, result)
	return result
}

// RemoveSubsumedClauses strips out every clause that is a strict superset
// of some other clause present in the family, via the remove_supersets
// helper below.
func (c *CNF) RemoveSubsumedClauses() *CNF {
	return newCNF(c.b, c.b.removeSubsumedImpl(c.Ref()))
}

func (b *Builder) removeSubsumedImpl(r zdd.Ref) zdd.Ref {
	k := b.K
	if k.IsTerminal(r) {
		return r
	}
	if result, ok := b.subsumedCache.get(r); ok {
		return result
	}
	v := k.VarOf(r)
	low := b.removeSubsumedImpl(k.LowOf(r))
	high := b.removeSubsumedImpl(k.HighOf(r))
	highWithoutSupersets := b.removeSupersetsImpl(high, low)
	result := k.MakeNode(v, low, highWithoutSupersets)
	b.subsumedCache.put(r, result)
	return result
}

// removeSupersetsImpl removes from p every clause that is a superset of
// some clause in q. Not commutative in p and q, so its cache key is the
// pair as given, unswapped.
func (b *Builder) removeSupersetsImpl(p, q zdd.Ref) zdd.Ref {
	k := b.K
	if p == zdd.False || b.containsEmptyClause(q) || p == q {
		return zdd.False
	}
	if p == zdd.True || q == zdd.False {
		return p
	}
	if result, ok := b.supersetsCache.get(p, q); ok {
		return result
	}

	pVar := k.VarOf(p)
	qVar := k.VarOf(q)
	topVar := pVar
	if qVar < topVar {
		topVar = qVar
	}
	p0 := k.Eval(p, topVar, 0)
	p1 := k.Eval(p, topVar, 1)
	q0 := k.Eval(q, topVar, 0)
	q1 := k.Eval(q, topVar, 1)

	tmp1 := b.removeSupersetsImpl(p1, q0)
	tmp2 := b.removeSupersetsImpl(p1, q1)
	low := b.removeSupersetsImpl(p0, q0)
	high := k.And(tmp1, tmp2)
	result := k.MakeNode(topVar, low, high)
	b.supersetsCache.put(p, q, result)
	return result
}
