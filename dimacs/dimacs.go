// Package dimacs reads and writes the DIMACS CNF text format: a header
// line "p cnf <num_vars> <num_clauses>" followed by whitespace-separated
// clauses, each terminated by a literal 0.
//
// The reader's tolerances (blank/comment/CRLF lines skipped, a missing
// trailing 0 accepted, mismatched clause counts and out-of-range variables
// reported as warnings rather than hard failures) are grounded on
// original_source/src/io/cnf_reader.cpp; warnings are accumulated with
// github.com/hashicorp/go-multierror rather than printed directly, so a
// caller embedding this package as a library can decide how to surface
// them instead of having them written straight to stderr.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/xDarkicex/dpelim/errs"
)

// ParseError reports a fatal problem with the input: a missing or malformed
// header, a malformed literal, or a file that could not be opened. Per-line tolerances (clause
// count mismatches, out-of-range variables) are warnings, not ParseErrors.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid CNF input file [line %d]: %s", e.Line, e.Message)
}

func newParseError(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// AddClauseFunc receives one fully-read clause (with its trailing 0
// stripped) at a time.
type AddClauseFunc func(clause []int32) error

// ReadStream parses DIMACS CNF from r, invoking add once per clause.
// It returns the header's declared variable and clause counts, a non-nil
// *multierror.Error collecting every format warning encountered (nil if
// there were none), and a *ParseError if the input could not be parsed at
// all.
func ReadStream(r io.Reader, add AddClauseFunc) (numVars, numClauses int, warnings error, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	started := false
	var curr []int32
	clauseCount := 0
	lineNum := 0

	minVar := int64(math.MaxInt64)
	maxVar := int64(math.MinInt64)

	var warn *multierror.Error

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if line == "" || line == "\r" || (len(line) > 0 && line[0] == 'c') {
			continue
		}

		if !started {
			fields := strings.Fields(line)
			if len(fields) < 1 || fields[0] != "p" {
				return 0, 0, warn.ErrorOrNil(), newParseError(lineNum, "doesn't contain problem definition (p).")
			}
			if len(fields) != 4 || fields[1] != "cnf" {
				return 0, 0, warn.ErrorOrNil(), newParseError(lineNum, "invalid problem definition (p)")
			}
			nv, errNv := strconv.Atoi(fields[2])
			nc, errNc := strconv.Atoi(fields[3])
			if errNv != nil || errNc != nil || nv < 0 || nc < 0 {
				return 0, 0, warn.ErrorOrNil(), newParseError(lineNum, "invalid problem definition (p)")
			}
			numVars, numClauses = nv, nc
			started = true
			continue
		}

		for _, tok := range strings.Fields(line) {
			lit, convErr := strconv.ParseInt(tok, 10, 32)
			if convErr != nil {
				return numVars, numClauses, warn.ErrorOrNil(), newParseError(lineNum, "malformed literal %q", tok)
			}
			if lit == 0 {
				if err := add(curr); err != nil {
					return numVars, numClauses, warn.ErrorOrNil(), err
				}
				curr = nil
				clauseCount++
				continue
			}
			curr = append(curr, int32(lit))
			v := lit
			if v < 0 {
				v = -v
			}
			if v > maxVar {
				if v-minVar > int64(numVars) {
					warn = multierror.Append(warn, fmt.Errorf("line %d: variable outside the range defined in the problem definition (p)", lineNum))
				} else {
					maxVar = v
				}
			}
			if v < minVar {
				if maxVar-v > int64(numVars) {
					warn = multierror.Append(warn, fmt.Errorf("line %d: variable outside the range defined in the problem definition (p)", lineNum))
				} else {
					minVar = v
				}
			}
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return numVars, numClauses, warn.ErrorOrNil(), fmt.Errorf("reading CNF input: %w", scanErr)
	}

	// the final 0 might be omitted
	if len(curr) > 0 {
		if err := add(curr); err != nil {
			return numVars, numClauses, warn.ErrorOrNil(), err
		}
		clauseCount++
	}

	if clauseCount != numClauses {
		warn = multierror.Append(warn, fmt.Errorf("line %d: the number of clauses doesn't match the problem definition (p)", lineNum))
	}

	return numVars, numClauses, warn.ErrorOrNil(), nil
}

// ReadFile opens path and parses it as DIMACS CNF.
func ReadFile(path string, add AddClauseFunc) (numVars, numClauses int, warnings error, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return 0, 0, nil, &ParseError{Line: 0, Message: "failed to open the input file"}
	}
	defer f.Close()
	return ReadStream(f, add)
}

// ReadFileToVector reads every clause in path into a slice, in file order.
func ReadFileToVector(path string) (clauses [][]int32, numVars, numClauses int, warnings error, err error) {
	numVars, numClauses, warnings, err = ReadFile(path, func(c []int32) error {
		cc := make([]int32, len(c))
		copy(cc, c)
		clauses = append(clauses, cc)
		return nil
	})
	return clauses, numVars, numClauses, warnings, err
}

// Writer emits clauses in DIMACS CNF format: a header line declaring
// maxVar and numClauses up front (the original writer requires both known
// before the first clause is written, since the header precedes the body),
// then one 0-terminated, space-separated clause per line.
type Writer struct {
	w           io.Writer
	maxVar      int
	numClauses  int
	clauseCount int
	finished    bool
	headerErr   error
}

// NewWriter creates a Writer over w, writing the header immediately.
func NewWriter(w io.Writer, maxVar, numClauses int) *Writer {
	wr := &Writer{w: w, maxVar: maxVar, numClauses: numClauses}
	_, wr.headerErr = fmt.Fprintf(w, "p cnf %d %d\n", maxVar, numClauses)
	return wr
}

// NewFileWriter creates path and returns a Writer over it, along with the
// *os.File so the caller can Close it after Finish.
func NewFileWriter(path string, maxVar, numClauses int) (*Writer, *os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open the output file: %w", err)
	}
	return NewWriter(f, maxVar, numClauses), f, nil
}

// WriteClause writes one clause, 0-terminated.
func (w *Writer) WriteClause(clause []int32) error {
	if w.finished {
		errs.Panic("dimacs.Writer", "WriteClause called after Finish")
	}
	if w.headerErr != nil {
		return w.headerErr
	}
	parts := make([]string, 0, len(clause)+1)
	for _, lit := range clause {
		parts = append(parts, strconv.FormatInt(int64(lit), 10))
	}
	parts = append(parts, "0")
	_, err := fmt.Fprintln(w.w, strings.Join(parts, " "))
	if err == nil {
		w.clauseCount++
	}
	return err
}

// Finish marks the writer done. It does not itself flush or close the
// underlying writer; callers using NewFileWriter close the *os.File
// separately.
func (w *Writer) Finish() {
	w.finished = true
}
