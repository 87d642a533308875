// Package zdd is the decision-diagram kernel collaborator described in
// spec.md §6: a canonicalising node table for Zero-suppressed Binary
// Decision Diagrams, the primitive set-algebra operations over it (Or, And,
// Diff, Eval), and a reference-protection scheme that guards nodes against
// reclamation by Compact.
//
// The kernel knows nothing about literals or clauses; it manipulates opaque
// (Var, Ref) pairs. Package cnf builds the CNF-specific semantics (literal
// encoding, tautology/subsumption removal, clause multiplication) on top of
// it, exactly as spec.md §6 describes the boundary between the core and its
// decision-diagram collaborator.
//
// Structurally this package follows the node-table design of the retrieved
// zzenonn/go-zdd package (dense node slice, a hash map keyed by the node
// shape for structural sharing, and the high==False reduction rule) rather
// than wrapping an external BDD/ZDD binding, since no such binding exists in
// the retrieved dependency corpus.
package zdd

import "github.com/xDarkicex/dpelim/errs"

// Var is an opaque node variable. Package cnf injects literal semantics by
// choosing how literals map onto Var values (spec.md §3: enc(+v) = 2v,
// enc(-v) = 2v+1); the kernel only requires that Var values used along any
// root-to-terminal path strictly increase.
type Var uint32

// Ref is a handle to a ZDD node, or one of the two terminals. Refs are only
// comparable meaningfully against other Refs produced by the same Kernel.
type Ref uint32

// The two terminals. False represents "no clause" (the empty family of
// clauses); True represents the family containing exactly the empty
// clause, {∅}.
const (
	False Ref = 0
	True  Ref = 1
)

type node struct {
	v    Var
	low  Ref
	high Ref
}

type pairKey struct{ p, q Ref }

// Kernel owns the node table for a single ZDD universe. All Refs from one
// Kernel are foreign to any other Kernel and must not be mixed.
type Kernel struct {
	nodes   []node
	unique  map[node]Ref
	protect map[Ref]int

	orMemo   map[pairKey]Ref
	andMemo  map[pairKey]Ref
	diffMemo map[pairKey]Ref
}

// NewKernel creates an empty kernel containing only the two terminals.
func NewKernel() *Kernel {
	return &Kernel{
		nodes:    make([]node, 2), // slots 0 (False), 1 (True) are never dereferenced
		unique:   make(map[node]Ref),
		protect:  make(map[Ref]int),
		orMemo:   make(map[pairKey]Ref),
		andMemo:  make(map[pairKey]Ref),
		diffMemo: make(map[pairKey]Ref),
	}
}

// IsTerminal reports whether r is True or False.
func (k *Kernel) IsTerminal(r Ref) bool {
	return r == False || r == True
}

func (k *Kernel) nodeAt(r Ref) node {
	idx := int(r)
	if idx < 0 || idx >= len(k.nodes) {
		errs.Panic("zdd.Kernel", "node reference %d out of range", r)
	}
	n := k.nodes[idx]
	if idx >= 2 && n.high == False {
		// A stored node always has high != False (MakeNode suppresses that
		// case before insertion), so this shape only occurs for a slot
		// cleared by Compact.
		errs.Panic("zdd.Kernel", "use of node %d after compaction reclaimed it; it was not protected", r)
	}
	return n
}

// VarOf returns the node variable at r, or 0 if r is a terminal.
func (k *Kernel) VarOf(r Ref) Var {
	if k.IsTerminal(r) {
		return 0
	}
	return k.nodeAt(r).v
}

// LowOf returns the low (element-excluded) child of r, or r itself if r is a
// terminal.
func (k *Kernel) LowOf(r Ref) Ref {
	if k.IsTerminal(r) {
		return r
	}
	return k.nodeAt(r).low
}

// HighOf returns the high (element-included) child of r, or False if r is a
// terminal.
func (k *Kernel) HighOf(r Ref) Ref {
	if k.IsTerminal(r) {
		return False
	}
	return k.nodeAt(r).high
}

// MakeNode returns the canonical Ref for (v, low, high), applying the ZDD
// zero-suppression rule: a node whose high child is False is redundant and
// collapses to low.
func (k *Kernel) MakeNode(v Var, low, high Ref) Ref {
	if high == False {
		return low
	}
	n := node{v: v, low: low, high: high}
	if existing, ok := k.unique[n]; ok {
		return existing
	}
	r := Ref(len(k.nodes))
	k.nodes = append(k.nodes, n)
	k.unique[n] = r
	return r
}

// Protect pins r so that Compact will not reclaim it (or anything it
// reaches), until a matching Unprotect. Protecting a terminal is a no-op.
func (k *Kernel) Protect(r Ref) {
	if k.IsTerminal(r) {
		return
	}
	k.protect[r]++
}

// Unprotect releases one protection held on r by a prior Protect call. It is
// an invariant violation to unprotect a ref that isn't currently protected.
func (k *Kernel) Unprotect(r Ref) {
	if k.IsTerminal(r) {
		return
	}
	c, ok := k.protect[r]
	if !ok || c <= 0 {
		errs.Panic("zdd.Kernel", "unprotect of ref %d that was never protected", r)
	}
	if c == 1 {
		delete(k.protect, r)
	} else {
		k.protect[r] = c - 1
	}
}

// Handle is an RAII-style guard: it protects a Ref for as long as it's
// alive. Long-lived CNF values and cache entries hold one of these instead
// of a raw Ref, per the protection discipline in spec.md §5.
type Handle struct {
	k *Kernel
	r Ref
}

// NewHandle wraps r in a Handle, protecting it immediately.
func (k *Kernel) NewHandle(r Ref) *Handle {
	k.Protect(r)
	return &Handle{k: k, r: r}
}

// Ref returns the protected reference.
func (h *Handle) Ref() Ref { return h.r }

// Release unprotects the held reference. Calling Release more than once is
// an invariant violation.
func (h *Handle) Release() {
	if h.k == nil {
		errs.Panic("zdd.Handle", "released twice")
	}
	h.k.Unprotect(h.r)
	h.k = nil
}

// Compact reclaims every node not reachable from a currently-protected ref
// (or from True/False). It simulates the external garbage collection that
// spec.md §5 says a real decision-diagram kernel performs; Refs into
// reclaimed nodes become invalid and later dereferencing one panics.
func (k *Kernel) Compact() {
	reachable := make(map[Ref]bool, len(k.nodes))
	var mark func(Ref)
	mark = func(r Ref) {
		if k.IsTerminal(r) || reachable[r] {
			return
		}
		reachable[r] = true
		n := k.nodes[r]
		mark(n.low)
		mark(n.high)
	}
	for r, count := range k.protect {
		if count > 0 {
			mark(r)
		}
	}
	for idx := 2; idx < len(k.nodes); idx++ {
		r := Ref(idx)
		if reachable[r] {
			continue
		}
		n := k.nodes[idx]
		if n.high == False {
			continue // already reclaimed
		}
		delete(k.unique, n)
		k.nodes[idx] = node{}
	}
	k.orMemo = make(map[pairKey]Ref)
	k.andMemo = make(map[pairKey]Ref)
	k.diffMemo = make(map[pairKey]Ref)
}

// CountNodes returns the number of distinct non-terminal nodes reachable
// from r.
func (k *Kernel) CountNodes(r Ref) int {
	visited := make(map[Ref]bool)
	var walk func(Ref)
	walk = func(x Ref) {
		if k.IsTerminal(x) || visited[x] {
			return
		}
		visited[x] = true
		walk(k.LowOf(x))
		walk(k.HighOf(x))
	}
	walk(r)
	return len(visited)
}

// CountDepth returns the length of the longest root-to-terminal path.
func (k *Kernel) CountDepth(r Ref) int {
	if k.IsTerminal(r) {
		return 0
	}
	lo := k.CountDepth(k.LowOf(r))
	hi := k.CountDepth(k.HighOf(r))
	if lo > hi {
		return lo + 1
	}
	return hi + 1
}

// VerifyOrdering checks the invariant from spec.md §8: every reachable
// node's children have a strictly larger variable than the node itself.
// Intended for tests, not hot paths.
func (k *Kernel) VerifyOrdering(r Ref) bool {
	return k.verifyOrderingFrom(r, 0)
}

func (k *Kernel) verifyOrderingFrom(r Ref, parent Var) bool {
	if k.IsTerminal(r) {
		return true
	}
	v := k.VarOf(r)
	if v <= parent {
		return false
	}
	return k.verifyOrderingFrom(k.LowOf(r), v) && k.verifyOrderingFrom(k.HighOf(r), v)
}

// topVar returns the variable at r, treating both terminals as carrying no
// variable (reported as 0, which never collides with a real Var since
// callers only ever compare it for equality against another topVar result
// or a concrete node's Var).
func (k *Kernel) topVar(r Ref) (v Var, isTerminal bool) {
	if k.IsTerminal(r) {
		return 0, true
	}
	return k.VarOf(r), false
}

// Eval restricts r to the branch (0 or 1) of variable v: subset0 discards
// every member containing v, subset1 keeps only members containing v and
// then strips v out of them. Nodes whose variable is below v are rebuilt
// unchanged on the way back up; terminals and nodes above v never mention
// it, so they pass through untouched for subset0 and yield False for
// subset1.
func (k *Kernel) Eval(r Ref, v Var, branch int) Ref {
	if k.IsTerminal(r) {
		if branch == 1 {
			return False
		}
		return r
	}
	rv := k.VarOf(r)
	switch {
	case rv > v:
		if branch == 1 {
			return False
		}
		return r
	case rv == v:
		if branch == 0 {
			return k.LowOf(r)
		}
		return k.HighOf(r)
	default: // rv < v: v does not occur on this node, recurse into both children
		lo := k.Eval(k.LowOf(r), v, branch)
		hi := k.Eval(k.HighOf(r), v, branch)
		return k.MakeNode(rv, lo, hi)
	}
}

// Split is Eval under its spec.md name: subset0/subset1 combined into one
// call selected by branch.
func (k *Kernel) Split(r Ref, v Var, branch int) Ref {
	return k.Eval(r, v, branch)
}

func normalizedPair(p, q Ref) pairKey {
	if p <= q {
		return pairKey{p, q}
	}
	return pairKey{q, p}
}

// Or computes the union of the two families of sets represented by p and q.
func (k *Kernel) Or(p, q Ref) Ref {
	if p == False {
		return q
	}
	if q == False {
		return p
	}
	if p == q {
		return p
	}
	key := normalizedPair(p, q)
	if v, ok := k.orMemo[key]; ok {
		return v
	}
	pv, pTerm := k.topVar(p)
	qv, qTerm := k.topVar(q)
	var v Var
	var pl, ph, ql, qh Ref
	switch {
	case !pTerm && (qTerm || pv < qv):
		v, pl, ph, ql, qh = pv, k.LowOf(p), k.HighOf(p), q, False
	case !qTerm && (pTerm || qv < pv):
		v, pl, ph, ql, qh = qv, p, False, k.LowOf(q), k.HighOf(q)
	default: // pv == qv, both non-terminal
		v, pl, ph, ql, qh = pv, k.LowOf(p), k.HighOf(p), k.LowOf(q), k.HighOf(q)
	}
	lo := k.Or(pl, ql)
	hi := k.Or(ph, qh)
	result := k.MakeNode(v, lo, hi)
	k.orMemo[key] = result
	return result
}

// And computes the intersection of the two families of sets.
func (k *Kernel) And(p, q Ref) Ref {
	if p == False || q == False {
		return False
	}
	if p == q {
		return p
	}
	key := normalizedPair(p, q)
	if v, ok := k.andMemo[key]; ok {
		return v
	}
	pv, pTerm := k.topVar(p)
	qv, qTerm := k.topVar(q)
	var result Ref
	switch {
	case pTerm && qTerm:
		// p == True, q == True was handled by p == q above; True & False
		// was handled by the p == False || q == False guard. Unreachable.
		result = False
	case !pTerm && (qTerm || pv < qv):
		result = k.And(k.LowOf(p), q)
	case !qTerm && (pTerm || qv < pv):
		result = k.And(p, k.LowOf(q))
	default:
		lo := k.And(k.LowOf(p), k.LowOf(q))
		hi := k.And(k.HighOf(p), k.HighOf(q))
		result = k.MakeNode(pv, lo, hi)
	}
	k.andMemo[key] = result
	return result
}

// Diff computes the set difference p \ q: every set in p that is not in q.
func (k *Kernel) Diff(p, q Ref) Ref {
	if p == False || p == q {
		return False
	}
	if q == False {
		return p
	}
	key := pairKey{p, q} // not commutative: do not normalize
	if v, ok := k.diffMemo[key]; ok {
		return v
	}
	pv, pTerm := k.topVar(p)
	qv, qTerm := k.topVar(q)
	var result Ref
	switch {
	case !pTerm && (qTerm || pv < qv):
		lo := k.Diff(k.LowOf(p), q)
		result = k.MakeNode(pv, lo, k.HighOf(p))
	case !qTerm && (pTerm || qv < pv):
		result = k.Diff(p, k.LowOf(q))
	default:
		lo := k.Diff(k.LowOf(p), k.LowOf(q))
		hi := k.Diff(k.HighOf(p), k.HighOf(q))
		result = k.MakeNode(pv, lo, hi)
	}
	k.diffMemo[key] = result
	return result
}
