package zdd

import "testing"

func TestMakeNodeReductionRule(t *testing.T) {
	k := NewKernel()
	// A node whose high child is False is redundant under zero-suppression
	// and must collapse to its low child instead of being stored.
	r := k.MakeNode(1, True, False)
	if r != True {
		t.Fatalf("expected reduction to collapse to low child True, got %d", r)
	}
	if k.CountNodes(r) != 0 {
		t.Fatalf("expected no nodes to be allocated for a reduced node")
	}
}

func TestMakeNodeStructuralSharing(t *testing.T) {
	k := NewKernel()
	a := k.MakeNode(3, False, True)
	b := k.MakeNode(3, False, True)
	if a != b {
		t.Fatalf("expected identical node shapes to share one ref, got %d and %d", a, b)
	}

	c := k.MakeNode(2, a, True)
	d := k.MakeNode(2, a, True)
	if c != d {
		t.Fatalf("expected identical parent node shapes to share one ref, got %d and %d", c, d)
	}
}

func TestVerifyOrdering(t *testing.T) {
	k := NewKernel()
	leaf := k.MakeNode(5, False, True)
	root := k.MakeNode(2, False, leaf)
	if !k.VerifyOrdering(root) {
		t.Fatalf("expected strictly increasing variable order to verify")
	}
}

func TestEvalSplitStripsLiteral(t *testing.T) {
	k := NewKernel()
	// {1} represented as a single node at var 1 with high -> True.
	singleton := k.MakeNode(1, False, True)

	if got := k.Eval(singleton, 1, 0); got != False {
		t.Fatalf("subset0 of {{1}} on var 1 should be empty, got %d", got)
	}
	if got := k.Eval(singleton, 1, 1); got != True {
		t.Fatalf("subset1 of {{1}} on var 1 should strip the literal down to {{}}, got %d", got)
	}
}

func TestOrUnion(t *testing.T) {
	k := NewKernel()
	a := k.MakeNode(1, False, True) // {{1}}
	b := k.MakeNode(2, False, True) // {{2}}
	u := k.Or(a, b)

	if k.Eval(u, 1, 1) == False {
		t.Fatalf("union should still contain {1}")
	}
	if k.Eval(u, 2, 1) == False {
		t.Fatalf("union should still contain {2}")
	}
	// Idempotence
	if k.Or(u, u) != u {
		t.Fatalf("union of a set with itself should be itself")
	}
}

func TestAndIntersection(t *testing.T) {
	k := NewKernel()
	a := k.MakeNode(1, False, True) // {{1}}
	b := k.MakeNode(1, False, True)
	if k.And(a, b) != a {
		t.Fatalf("intersection of identical sets should equal the set itself")
	}

	c := k.MakeNode(2, False, True) // {{2}}, disjoint from a
	if k.And(a, c) != False {
		t.Fatalf("intersection of disjoint singleton families should be empty")
	}
}

func TestDiffSetMinus(t *testing.T) {
	k := NewKernel()
	a := k.MakeNode(1, False, True) // {{1}}
	b := k.MakeNode(2, False, True) // {{2}}
	u := k.Or(a, b)                // {{1},{2}}

	d := k.Diff(u, a) // should be {{2}}
	if d != b {
		t.Fatalf("expected {{1},{2}} \\ {{1}} == {{2}}, got ref %d want %d", d, b)
	}
	if k.Diff(u, u) != False {
		t.Fatalf("a set minus itself should be empty")
	}
}

func TestProtectUnprotectBalancesAcrossCompact(t *testing.T) {
	k := NewKernel()
	a := k.MakeNode(1, False, True)
	h := k.NewHandle(a)

	k.Compact()
	// a must survive compaction because it is protected through h.
	if k.VarOf(h.Ref()) != 1 {
		t.Fatalf("expected protected node to survive Compact")
	}

	h.Release()
}

func TestUnprotectWithoutProtectPanics(t *testing.T) {
	k := NewKernel()
	a := k.MakeNode(1, False, True)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when unprotecting a ref that was never protected")
		}
	}()
	k.Unprotect(a)
}

func TestDereferenceAfterCompactPanics(t *testing.T) {
	k := NewKernel()
	a := k.MakeNode(1, False, True)
	_ = k.MakeNode(2, False, a) // root, not protected

	k.Compact() // nothing protected, everything is reclaimed

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when dereferencing a node reclaimed by Compact")
		}
	}()
	k.VarOf(a)
}
