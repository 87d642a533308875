// Package watch implements the two-watched-literals unit-propagation
// engine from spec.md §4.4, grounded directly on
// original_source/lib/data_structures/watched_literals.{hpp,cpp}: each
// clause keeps two watched literal slots, and only the variable
// assignments that touch a watch ever need to re-examine that clause,
// which is what makes incremental propagation and backtracking cheap.
//
// This is deliberately not a CDCL solver (no learning, no restarts, no
// conflict analysis) — it exists solely to let package absorb decide
// clause absorption by propagation, per spec.md's non-goals.
package watch

import "github.com/xDarkicex/dpelim/errs"

// Literal is a DIMACS-style literal.
type Literal = int32

// Clause is an ordered list of literals.
type Clause = []Literal

// Assignment is a variable's current truth value.
type Assignment int8

const (
	Unassigned Assignment = 0
	Negative   Assignment = -1
	Positive   Assignment = 1
)

func negate(a Assignment) Assignment {
	switch a {
	case Unassigned:
		return Unassigned
	case Negative:
		return Positive
	case Positive:
		return Negative
	default:
		errs.Panic("watch.negate", "unexpected assignment value %d", a)
		return Unassigned
	}
}

type clauseData struct {
	clause   Clause
	watched1 int
	watched2 int
	isActive bool
}

type varData struct {
	watchedPositive map[int]struct{}
	watchedNegative map[int]struct{}
	assignment      Assignment
}

func newVarData() varData {
	return varData{watchedPositive: make(map[int]struct{}), watchedNegative: make(map[int]struct{})}
}

// Engine is one watched-literals propagation state over a fixed set of
// variables [1, maxVar] and clauses.
type Engine struct {
	maxVar    int
	clauses   []clauseData
	variables []varData
	stack     [][]Literal

	unitClauses        map[int]struct{}
	initialUnitClauses map[int]struct{}
	emptyCount         int
	initialEmptyCount  int
}

// FindMaxVar returns the largest variable number occurring in clauses.
func FindMaxVar(clauses []Clause) int {
	maxVar := 0
	for _, c := range clauses {
		for _, l := range c {
			v := int(l)
			if v < 0 {
				v = -v
			}
			if v > maxVar {
				maxVar = v
			}
		}
	}
	return maxVar
}

// New builds an engine over clauses, with maxVar variables, deactivating
// the clauses (by index) present in deactivated.
func New(clauses []Clause, maxVar int, deactivated map[int]bool) *Engine {
	e := &Engine{maxVar: maxVar}
	e.variables = make([]varData, maxVar)
	for i := range e.variables {
		e.variables[i] = newVarData()
	}
	e.unitClauses = make(map[int]struct{})
	e.initialUnitClauses = make(map[int]struct{})
	for i, c := range clauses {
		e.addClauseImpl(c, !deactivated[i])
	}
	e.init()
	return e
}

// FromVector builds an engine sized to exactly fit the given clauses.
func FromVector(clauses []Clause) *Engine {
	return FromVectorDeactivated(clauses, nil)
}

// FromVectorDeactivated is FromVector with a set of initially-inactive
// clause indices.
func FromVectorDeactivated(clauses []Clause, deactivated map[int]bool) *Engine {
	return New(clauses, FindMaxVar(clauses), deactivated)
}

func (e *Engine) getVarIndex(l Literal) int {
	if l == 0 {
		errs.Panic("watch.Engine", "literal 0 is not valid")
	}
	v := l
	if v < 0 {
		v = -v
	}
	return int(v) - 1
}

// ContainsEmpty reports whether propagation has derived the empty clause
// (a conflict).
func (e *Engine) ContainsEmpty() bool { return e.emptyCount > 0 }

// AssignmentLevel returns the current decision level (0 is the base
// level with no decisions made yet).
func (e *Engine) AssignmentLevel() int {
	if len(e.stack) == 0 {
		errs.Panic("watch.Engine", "assignment level queried with an empty stack")
	}
	return len(e.stack) - 1
}

// AssignValue assigns l true (and its variable accordingly), propagates,
// and reports whether the result is still consistent (false means a
// conflict — the empty clause — was derived). Assigning an already-
// assigned variable is an invariant violation, not a recoverable error:
// callers must check GetAssignment first if that's a live possibility.
func (e *Engine) AssignValue(l Literal) bool {
	if e.ContainsEmpty() {
		return false
	}
	if e.getVarIndex(l) >= len(e.variables) {
		return true
	}
	if e.GetAssignment(l) != Unassigned {
		errs.Panic("watch.Engine.AssignValue", "cannot assign to an already assigned variable %d", l)
	}
	e.stack = append(e.stack, nil)
	if !e.assignValueImpl(l) {
		return false
	}
	return e.propagate()
}

// GetAssignment returns l's current truth value (Unassigned if l's
// variable is outside the engine's range or hasn't been assigned).
func (e *Engine) GetAssignment(l Literal) Assignment {
	idx := e.getVarIndex(l)
	if idx >= len(e.variables) {
		return Unassigned
	}
	a := e.variables[idx].assignment
	if l > 0 {
		return a
	}
	return negate(a)
}

// Backtrack undoes numLevels decision levels.
func (e *Engine) Backtrack(numLevels int) {
	current := e.AssignmentLevel()
	if numLevels > current {
		errs.Panic("watch.Engine.Backtrack", "trying to backtrack %d levels past %d assignments", numLevels, current)
	}
	if numLevels > 0 {
		e.unitClauses = make(map[int]struct{})
		e.emptyCount = 0
	}
	for ; numLevels > 0; numLevels-- {
		e.backtrackImpl()
	}
}

// BacktrackTo undoes levels until exactly targetLevel remains.
func (e *Engine) BacktrackTo(targetLevel int) {
	current := e.AssignmentLevel()
	if targetLevel > current {
		errs.Panic("watch.Engine.BacktrackTo", "trying to backtrack to level %d above current level %d", targetLevel, current)
	}
	e.Backtrack(current - targetLevel)
}

// ChangeActiveClauses activates and deactivates the given clause indices,
// resetting the engine back to the base decision level first.
func (e *Engine) ChangeActiveClauses(activate, deactivate []int) {
	e.BacktrackTo(0)
	e.backtrackImpl()
	for _, idx := range activate {
		e.activateClause(idx, true)
	}
	for _, idx := range deactivate {
		e.deactivateClause(idx, true)
	}
	e.init()
}

// AddClause appends one new clause, growing the variable range if needed.
func (e *Engine) AddClause(clause Clause, active bool) {
	e.BacktrackTo(0)
	e.backtrackImpl()
	e.growToFit(FindMaxVar([]Clause{clause}))
	e.addClauseImpl(clause, active)
	e.init()
}

// AddClauses appends several new clauses at once.
func (e *Engine) AddClauses(clauses []Clause, deactivated map[int]bool) {
	e.BacktrackTo(0)
	e.backtrackImpl()
	e.growToFit(FindMaxVar(clauses))
	for i, c := range clauses {
		e.addClauseImpl(c, !deactivated[i])
	}
	e.init()
}

func (e *Engine) growToFit(maxVar int) {
	if maxVar <= len(e.variables) {
		return
	}
	for len(e.variables) < maxVar {
		e.variables = append(e.variables, newVarData())
	}
	e.maxVar = maxVar
}

func (e *Engine) init() {
	e.emptyCount = e.initialEmptyCount
	e.unitClauses = make(map[int]struct{}, len(e.initialUnitClauses))
	for idx := range e.initialUnitClauses {
		e.unitClauses[idx] = struct{}{}
	}
	e.stack = append(e.stack, nil)
	if !e.ContainsEmpty() {
		e.propagate()
	}
}

func (e *Engine) addClauseImpl(clause Clause, active bool) {
	idx := len(e.clauses)
	data := clauseData{clause: clause, watched1: 0}
	if len(clause) > 1 {
		data.watched2 = 1
	}
	e.clauses = append(e.clauses, data)
	if active {
		e.activateClause(idx, false)
	} else {
		e.clauses[idx].isActive = false
	}
}

func (e *Engine) watchSetFor(l Literal, varIdx int) map[int]struct{} {
	if l > 0 {
		return e.variables[varIdx].watchedPositive
	}
	return e.variables[varIdx].watchedNegative
}

func (e *Engine) activateClause(clauseIndex int, skipIfActive bool) {
	data := &e.clauses[clauseIndex]
	if skipIfActive && data.isActive {
		return
	}
	data.isActive = true
	switch len(data.clause) {
	case 0:
		e.initialEmptyCount++
	case 1:
		l := data.clause[0]
		varIdx := e.getVarIndex(l)
		e.watchSetFor(l, varIdx)[clauseIndex] = struct{}{}
		e.initialUnitClauses[clauseIndex] = struct{}{}
	default:
		l1, l2 := data.clause[data.watched1], data.clause[data.watched2]
		e.watchSetFor(l1, e.getVarIndex(l1))[clauseIndex] = struct{}{}
		e.watchSetFor(l2, e.getVarIndex(l2))[clauseIndex] = struct{}{}
	}
}

func (e *Engine) deactivateClause(clauseIndex int, skipIfNotActive bool) {
	data := &e.clauses[clauseIndex]
	if skipIfNotActive && !data.isActive {
		return
	}
	data.isActive = false
	switch len(data.clause) {
	case 0:
		e.initialEmptyCount--
	case 1:
		l := data.clause[0]
		varIdx := e.getVarIndex(l)
		delete(e.watchSetFor(l, varIdx), clauseIndex)
		delete(e.initialUnitClauses, clauseIndex)
	default:
		l1, l2 := data.clause[data.watched1], data.clause[data.watched2]
		delete(e.watchSetFor(l1, e.getVarIndex(l1)), clauseIndex)
		delete(e.watchSetFor(l2, e.getVarIndex(l2)), clauseIndex)
	}
}

func (e *Engine) propagate() bool {
	for len(e.unitClauses) > 0 {
		var clauseIdx int
		for idx := range e.unitClauses {
			clauseIdx = idx
			break
		}
		delete(e.unitClauses, clauseIdx)

		data := &e.clauses[clauseIdx]
		l1, l2 := data.clause[data.watched1], data.clause[data.watched2]
		a1, a2 := e.GetAssignment(l1), e.GetAssignment(l2)

		var l Literal
		if a1 == Positive || a2 == Positive {
			continue
		} else if a1 == Unassigned {
			l = l1
		} else {
			l = l2
		}

		if !e.assignValueImpl(l) {
			return false
		}
	}
	return true
}

func (e *Engine) assignValueImpl(l Literal) bool {
	varIdx := e.getVarIndex(l)
	vd := &e.variables[varIdx]
	if l > 0 {
		vd.assignment = Positive
	} else {
		vd.assignment = Negative
	}
	e.stack[len(e.stack)-1] = append(e.stack[len(e.stack)-1], l)

	var watched map[int]struct{}
	if l > 0 {
		watched = vd.watchedNegative
	} else {
		watched = vd.watchedPositive
	}
	for clauseIdx := range watched {
		if e.updateWatchedLiteral(clauseIdx, varIdx) {
			delete(watched, clauseIdx)
		}
		if e.ContainsEmpty() {
			return false
		}
	}
	return true
}

func (e *Engine) updateWatchedLiteral(clauseIndex, varIndex int) (movedToNewLiteral bool) {
	data := &e.clauses[clauseIndex]
	w1, w2 := data.watched1, data.watched2
	var1Idx := e.getVarIndex(data.clause[w1])
	var2Idx := e.getVarIndex(data.clause[w2])
	if var1Idx != varIndex {
		w1, w2 = w2, w1
		var1Idx, var2Idx = var2Idx, var1Idx
	}
	_ = var2Idx

	a1 := e.GetAssignment(data.clause[w1])
	a2 := e.GetAssignment(data.clause[w2])
	if a1 == Positive || a2 == Positive {
		data.watched1, data.watched2 = w1, w2
		return false
	}
	if a2 == Negative {
		e.emptyCount++
		data.watched1, data.watched2 = w1, w2
		return false
	}

	wNew := w1
	for {
		wNew++
		if wNew == w2 {
			wNew++
		}
		if wNew >= len(data.clause) {
			if w2 == 0 {
				wNew = 1
			} else {
				wNew = 0
			}
		}
		if wNew == w1 {
			data.watched1, data.watched2 = w1, w2
			e.unitClauses[clauseIndex] = struct{}{}
			return false
		}
		l := data.clause[wNew]
		a := e.GetAssignment(l)
		switch a {
		case Negative:
			continue
		case Positive, Unassigned:
			data.watched1, data.watched2 = wNew, w2
			e.watchSetFor(l, e.getVarIndex(l))[clauseIndex] = struct{}{}
			return true
		default:
			errs.Panic("watch.Engine.updateWatchedLiteral", "unexpected assignment value %d", a)
			return false
		}
	}
}

func (e *Engine) backtrackImpl() {
	assignments := e.stack[len(e.stack)-1]
	for _, l := range assignments {
		e.variables[e.getVarIndex(l)].assignment = Unassigned
	}
	e.stack = e.stack[:len(e.stack)-1]
}
