package cnf

import (
	"fmt"
	"io"
	"os"

	"github.com/xDarkicex/dpelim/dimacs"
	"github.com/xDarkicex/dpelim/zdd"
)

// ClauseFunc is called once per clause during enumeration; returning false
// stops the walk early.
type ClauseFunc func(clause Clause) bool

// ForAllClauses enumerates every clause in the family in ZDD traversal
// order (low subtree first, then this node's literal, then high subtree),
// grounded on for_all_clauses_impl.
func (c *CNF) ForAllClauses(f ClauseFunc) {
	var stack Clause
	var walk func(r zdd.Ref) bool
	k := c.b.K
	walk = func(r zdd.Ref) bool {
		if r == zdd.True {
			return f(append(Clause(nil), stack...))
		}
		if r == zdd.False {
			return true
		}
		if !walk(k.LowOf(r)) {
			return false
		}
		l := varToLiteral(k.VarOf(r))
		stack = append(stack, l)
		if !walk(k.HighOf(r)) {
			return false
		}
		stack = stack[:len(stack)-1]
		return true
	}
	walk(c.Ref())
}

// ToVector materializes every clause into a slice, in ForAllClauses order.
func (c *CNF) ToVector() []Clause {
	var out []Clause
	c.ForAllClauses(func(clause Clause) bool {
		out = append(out, clause)
		return true
	})
	return out
}

// FromFile reads path as DIMACS CNF text and builds the corresponding
// family. warnings (non-nil *multierror.Error) reports tolerated format
// issues; err is non-nil only for input the reader could not make sense
// of at all.
func (b *Builder) FromFile(path string) (cnfOut *CNF, warnings error, err error) {
	var clauses []Clause
	_, _, warnings, err = dimacs.ReadFile(path, func(clause []int32) error {
		clauses = append(clauses, append(Clause(nil), clause...))
		return nil
	})
	if err != nil {
		return nil, warnings, err
	}
	return b.FromVector(clauses), warnings, nil
}

// WriteDimacsToFile writes the family as DIMACS CNF text, grounded on
// write_dimacs_to_file: the header declares the largest variable and the
// exact clause count found by walking the diagram.
func (c *CNF) WriteDimacsToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open the output file: %w", err)
	}
	defer f.Close()
	return c.writeDimacs(f)
}

func (c *CNF) writeDimacs(w io.Writer) error {
	maxVar := int(c.GetLargestVariable())
	numClauses := c.CountClauses()
	writer := dimacs.NewWriter(w, maxVar, numClauses)
	var writeErr error
	c.ForAllClauses(func(clause Clause) bool {
		if err := writer.WriteClause(clause); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	writer.Finish()
	return writeErr
}

// Draw writes a Graphviz DOT description of the underlying diagram,
// useful for inspecting small test formulas by hand. Dropped from
// spec.md's distillation but present in the original as draw_to_file.
func (c *CNF) Draw(w io.Writer) error {
	k := c.b.K
	if _, err := fmt.Fprintln(w, "digraph zdd {"); err != nil {
		return err
	}
	visited := make(map[zdd.Ref]bool)
	var walk func(r zdd.Ref) error
	walk = func(r zdd.Ref) error {
		if k.IsTerminal(r) || visited[r] {
			return nil
		}
		visited[r] = true
		v := k.VarOf(r)
		low, high := k.LowOf(r), k.HighOf(r)
		if _, err := fmt.Fprintf(w, "  n%d [label=\"%d\"];\n", r, v); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  n%d -> %s [style=dashed];\n", r, nodeLabel(low)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  n%d -> %s;\n", r, nodeLabel(high)); err != nil {
			return err
		}
		if err := walk(low); err != nil {
			return err
		}
		return walk(high)
	}
	if err := walk(c.Ref()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func nodeLabel(r zdd.Ref) string {
	switch r {
	case zdd.False:
		return "false"
	case zdd.True:
		return "true"
	default:
		return fmt.Sprintf("n%d", r)
	}
}
