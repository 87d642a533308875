package cnf

import (
	"testing"

	"github.com/xDarkicex/dpelim/zdd"
)

func newBuilder() *Builder {
	return NewBuilder(zdd.NewKernel(), 0)
}

func clauseSetsEqual(t *testing.T, got, want []Clause) {
	t.Helper()
	toSet := func(cs []Clause) map[string]bool {
		set := make(map[string]bool, len(cs))
		for _, c := range cs {
			key := ""
			for _, l := range c {
				key += litKey(l)
			}
			set[key] = true
		}
		return set
	}
	gotSet, wantSet := toSet(got), toSet(want)
	if len(gotSet) != len(wantSet) {
		t.Fatalf("clause count mismatch: got %v want %v", got, want)
	}
	for k := range wantSet {
		if !gotSet[k] {
			t.Fatalf("missing expected clause (key %q): got %v want %v", k, got, want)
		}
	}
}

func litKey(l Literal) string {
	if l < 0 {
		return "n" + itoa(int(-l)) + ","
	}
	return "p" + itoa(int(l)) + ","
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestFromVectorRoundTrip(t *testing.T) {
	b := newBuilder()
	clauses := []Clause{{1, -2}, {2, 3}, {-1}}
	c := b.FromVector(clauses)
	defer c.Release()

	if got := c.CountClauses(); got != 3 {
		t.Fatalf("expected 3 clauses, got %d", got)
	}
	clauseSetsEqual(t, c.ToVector(), clauses)
}

func TestCanonicity(t *testing.T) {
	b := newBuilder()
	c1 := b.FromVector([]Clause{{1, 2}, {-1, 3}})
	defer c1.Release()
	c2 := b.FromVector([]Clause{{-1, 3}, {1, 2}}) // different insertion order
	defer c2.Release()

	if c1.Ref() != c2.Ref() {
		t.Fatalf("expected the same clause set built in different order to canonicalize to the same ref")
	}
}

func TestContainsEmptyClause(t *testing.T) {
	b := newBuilder()
	withEmpty := b.FromVector([]Clause{{}, {1}})
	defer withEmpty.Release()
	if !withEmpty.ContainsEmptyClause() {
		t.Fatalf("expected formula containing {} to report ContainsEmptyClause")
	}

	withoutEmpty := b.FromVector([]Clause{{1}, {2}})
	defer withoutEmpty.Release()
	if withoutEmpty.ContainsEmptyClause() {
		t.Fatalf("expected formula without {} to report !ContainsEmptyClause")
	}
}

func TestSubset0Subset1(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]Clause{{1, 2}, {-1, 3}, {4}})
	defer c.Release()

	with1 := c.Subset1(1)
	defer with1.Release()
	clauseSetsEqual(t, with1.ToVector(), []Clause{{2}})

	without1 := c.Subset0(1).Subset0(-1)
	defer without1.Release()
	clauseSetsEqual(t, without1.ToVector(), []Clause{{4}})
}

func TestUnifyIntersectSubtract(t *testing.T) {
	b := newBuilder()
	a := b.FromVector([]Clause{{1}, {2}})
	defer a.Release()
	c := b.FromVector([]Clause{{2}, {3}})
	defer c.Release()

	u := a.Unify(c)
	defer u.Release()
	clauseSetsEqual(t, u.ToVector(), []Clause{{1}, {2}, {3}})

	i := a.Intersect(c)
	defer i.Release()
	clauseSetsEqual(t, i.ToVector(), []Clause{{2}})

	d := a.Subtract(c)
	defer d.Release()
	clauseSetsEqual(t, d.ToVector(), []Clause{{1}})
}

func TestMultiplyResolutionProduct(t *testing.T) {
	b := newBuilder()
	// {1,2} x {3} = {1,2,3}; {1} x {2,3} = {1,2,3}
	a := b.FromVector([]Clause{{1, 2}})
	defer a.Release()
	c := b.FromVector([]Clause{{3}})
	defer c.Release()

	product := a.Multiply(c)
	defer product.Release()
	clauseSetsEqual(t, product.ToVector(), []Clause{{1, 2, 3}})
}

func TestMultiplyIdempotentOnEmptyClauseIdentity(t *testing.T) {
	b := newBuilder()
	a := b.FromVector([]Clause{{1}, {2}})
	defer a.Release()
	identity := b.FromVector([]Clause{{}}) // {∅}, the multiplicative identity
	defer identity.Release()

	product := a.Multiply(identity)
	defer product.Release()
	clauseSetsEqual(t, product.ToVector(), a.ToVector())
}

func TestRemoveTautologies(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]Clause{{1, -1, 2}, {3}})
	defer c.Release()

	cleaned := c.RemoveTautologies()
	defer cleaned.Release()
	clauseSetsEqual(t, cleaned.ToVector(), []Clause{{3}})

	// idempotent
	again := cleaned.RemoveTautologies()
	defer again.Release()
	if again.Ref() != cleaned.Ref() {
		t.Fatalf("expected RemoveTautologies to be idempotent")
	}
}

func TestRemoveSubsumedClauses(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]Clause{{1}, {1, 2}, {3, 4}, {3, 4, 5}})
	defer c.Release()

	cleaned := c.RemoveSubsumedClauses()
	defer cleaned.Release()
	clauseSetsEqual(t, cleaned.ToVector(), []Clause{{1}, {3, 4}})

	again := cleaned.RemoveSubsumedClauses()
	defer again.Release()
	if again.Ref() != cleaned.Ref() {
		t.Fatalf("expected RemoveSubsumedClauses to be idempotent")
	}
}

func TestGetRootUnitClearLiteral(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]Clause{{1}, {1, 2}, {-3, 4}})
	defer c.Release()

	if got := c.GetRootLiteral(); got != 1 {
		t.Fatalf("expected root literal 1, got %d", got)
	}
	if got := c.GetUnitLiteral(); got != 1 {
		t.Fatalf("expected unit literal 1, got %d", got)
	}

	pure := b.FromVector([]Clause{{1, 2}, {-1, 3}, {4}})
	defer pure.Release()
	// variable 4 occurs only positively; 2 and 3 occur only once each
	// (also pure). get_clear_literal returns the first one found in
	// traversal order, any of which is a valid pure literal.
	clear := pure.GetClearLiteral()
	if clear == 0 {
		t.Fatalf("expected a clear (pure) literal to be found")
	}
}

func TestFormulaStatistics(t *testing.T) {
	b := newBuilder()
	c := b.FromVector([]Clause{{1, 2}, {-1, 2}, {3}})
	defer c.Release()

	stats := c.GetFormulaStatistics()
	idx := func(v int) VariableStats { return stats.Vars[v-stats.IndexShift] }

	v1 := idx(1)
	if v1.PositiveClauseCount != 1 || v1.NegativeClauseCount != 1 {
		t.Fatalf("expected variable 1 to occur once positively and once negatively, got %+v", v1)
	}
	v2 := idx(2)
	if v2.PositiveClauseCount != 2 || v2.NegativeClauseCount != 0 {
		t.Fatalf("expected variable 2 to occur twice positively, got %+v", v2)
	}
}

func TestMultiplyCacheEvictionUnprotects(t *testing.T) {
	// Exercises the protecting cache under heavy churn; the kernel must
	// not panic dereferencing a cached ref after many evictions followed
	// by Compact, since every cache entry should be (un)protected in step
	// with insertion and eviction.
	b := NewBuilder(zdd.NewKernel(), 2)
	var kept *CNF
	for i := 1; i <= 10; i++ {
		a := b.FromVector([]Clause{{Literal(i)}})
		c := b.FromVector([]Clause{{Literal(i + 100)}})
		product := a.Multiply(c)
		if i == 10 {
			kept = product
		} else {
			product.Release()
		}
		a.Release()
		c.Release()
	}
	b.K.Compact()
	if kept.CountClauses() != 1 {
		t.Fatalf("expected kept product to survive compaction with 1 clause, got %d", kept.CountClauses())
	}
	kept.Release()
}
