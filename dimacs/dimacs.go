// Package dimacs reads the DIMACS CNF textual format (spec.md §6.2) and
// loads it into a SAT solver. It is an external collaborator of the core
// solver: the core never parses text, it only consumes literals through
// its programmatic API.
package dimacs

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	dimacsfmt "github.com/rhartert/dimacs"
	"github.com/tholden/cdcl/internal/sat"
)

// Solver is the subset of the core solver's façade the loader needs.
type Solver interface {
	NewVar() int
	AddClause([]sat.Literal) bool
}

func open(filename string, gzipped bool) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(f)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			f.Close()
			return nil, err
		}
	}
	return rc, nil
}

// Load parses the DIMACS CNF file at filename (optionally gzip-compressed)
// and loads its variables and clauses into solver, in file order
// (spec.md §6.2: "the driver allocates n_var variables and submits each
// clause unchanged").
func Load(filename string, gzipped bool, solver Solver) error {
	r, err := open(filename, gzipped)
	if err != nil {
		return fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer r.Close()
	return LoadReader(r, solver)
}

// LoadReader is Load without the filesystem/gzip bookkeeping, for callers
// that already have an io.Reader (e.g. stdin).
func LoadReader(r io.Reader, solver Solver) error {
	b := &builder{solver: solver}
	if err := dimacsfmt.ReadBuilder(r, b); err != nil {
		return fmt.Errorf("dimacs: malformed input: %w", err)
	}
	return nil
}

// builder adapts Solver to the github.com/rhartert/dimacs streaming reader.
type builder struct {
	solver Solver
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("dimacs: problem type %q is not supported, want %q", problem, "cnf")
	}
	for i := 0; i < nVars; i++ {
		b.solver.NewVar()
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]sat.Literal, len(tmpClause))
	for i, l := range tmpClause {
		if l < 0 {
			clause[i] = sat.NegativeLiteral(-l - 1)
		} else {
			clause[i] = sat.PositiveLiteral(l - 1)
		}
	}
	b.solver.AddClause(clause)
	return nil
}

func (b *builder) Comment(_ string) error {
	return nil
}
