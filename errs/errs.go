// Package errs defines the error and panic types shared by every dpelim
// subpackage, grounded on the Op/Message error shape used throughout the
// xDarkicex/logic package family.
package errs

import "fmt"

// LogicError reports a recoverable failure in a core operation, such as a
// rejected configuration (malformed DIMACS input is reported as a
// *dimacs.ParseError instead). Op names the failing
// operation; Message carries the detail.
type LogicError struct {
	System  string
	Op      string
	Message string
}

func (e *LogicError) Error() string {
	if e.System != "" {
		return fmt.Sprintf("%s: %s: %s", e.System, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// New creates a LogicError scoped to the given system ("dimacs", "config", ...).
func New(system, op, message string) *LogicError {
	return &LogicError{System: system, Op: op, Message: message}
}

// InvariantError is the panic value raised when the core detects its own
// programming invariants have been violated: assigning an already-assigned
// watched-literal variable, backtracking past the bottom of the stack,
// dereferencing a ZDD node that was never protected against compaction, and
// so on. Per spec.md §7 these are programming errors and are never
// recovered inside the core.
type InvariantError struct {
	Op      string
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Message)
}

// Panic raises an InvariantError for the given operation.
func Panic(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Message: fmt.Sprintf(format, args...)})
}
