package watch

import "testing"

func TestUnitPropagationDerivesForcedAssignments(t *testing.T) {
	// {1}, {-1, 2}: unit propagation must derive 1 and then 2.
	e := FromVector([]Clause{{1}, {-1, 2}})
	if e.ContainsEmpty() {
		t.Fatalf("expected no conflict from a satisfiable unit chain")
	}
	if got := e.GetAssignment(1); got != Positive {
		t.Fatalf("expected 1 to be forced positive, got %v", got)
	}
	if got := e.GetAssignment(2); got != Positive {
		t.Fatalf("expected 2 to be forced positive by propagation, got %v", got)
	}
}

func TestAssignValueConflict(t *testing.T) {
	e := FromVector([]Clause{{1}, {-1}})
	if !e.ContainsEmpty() {
		t.Fatalf("expected {1},{-1} to immediately conflict during initial propagation")
	}
}

func TestAssignValueAndBacktrack(t *testing.T) {
	e := FromVector([]Clause{{1, 2}, {-1, 3}})
	level0 := e.AssignmentLevel()

	ok := e.AssignValue(-2)
	if !ok {
		t.Fatalf("expected assigning -2 to succeed")
	}
	if got := e.GetAssignment(1); got != Positive {
		t.Fatalf("expected 1 to be forced positive once 2 is false, got %v", got)
	}
	if got := e.GetAssignment(3); got != Positive {
		t.Fatalf("expected 3 to be forced positive transitively, got %v", got)
	}

	e.BacktrackTo(level0)
	if got := e.GetAssignment(1); got != Unassigned {
		t.Fatalf("expected 1 to be unassigned again after backtracking, got %v", got)
	}
	if got := e.GetAssignment(3); got != Unassigned {
		t.Fatalf("expected 3 to be unassigned again after backtracking, got %v", got)
	}
}

func TestAssigningAlreadyAssignedVariablePanics(t *testing.T) {
	e := FromVector([]Clause{{1, 2}})
	e.AssignValue(1)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected assigning an already-assigned variable to panic")
		}
	}()
	e.AssignValue(1)
}

func TestBacktrackPastStackPanics(t *testing.T) {
	e := FromVector([]Clause{{1, 2}})

	defer func() {
		if recover() == nil {
			t.Fatalf("expected backtracking past the base level to panic")
		}
	}()
	e.Backtrack(100)
}

func TestChangeActiveClausesDeactivatesAConflict(t *testing.T) {
	e := New([]Clause{{1}, {-1}}, 1, nil)
	if !e.ContainsEmpty() {
		t.Fatalf("expected initial conflict with both unit clauses active")
	}

	e.ChangeActiveClauses(nil, []int{1})
	if e.ContainsEmpty() {
		t.Fatalf("expected deactivating clause 1 (-1) to clear the conflict")
	}
	if got := e.GetAssignment(1); got != Positive {
		t.Fatalf("expected 1 to be forced positive once the conflicting unit clause is deactivated, got %v", got)
	}
}
