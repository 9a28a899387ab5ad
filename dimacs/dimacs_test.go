package dimacs

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tholden/cdcl/internal/sat"
)

// fakeSolver records what Load/LoadReader submit to it, so tests can assert
// on the driver contract in spec.md §6.2 ("the driver allocates n_var
// variables and submits each clause unchanged") without depending on the
// full CDCL engine.
type fakeSolver struct {
	nVars   int
	clauses [][]sat.Literal
}

func (f *fakeSolver) NewVar() int {
	id := f.nVars
	f.nVars++
	return id
}

func (f *fakeSolver) AddClause(c []sat.Literal) bool {
	f.clauses = append(f.clauses, append([]sat.Literal(nil), c...))
	return true
}

// S5: p cnf 3 2 / 1 -2 0 / 2 3 0.
func TestLoadReaderS5(t *testing.T) {
	const instance = "p cnf 3 2\n1 -2 0\n2 3 0\n"

	f := &fakeSolver{}
	if err := LoadReader(strings.NewReader(instance), f); err != nil {
		t.Fatalf("LoadReader() error = %v", err)
	}

	if f.nVars != 3 {
		t.Fatalf("nVars = %d, want 3", f.nVars)
	}
	want := [][]sat.Literal{
		{sat.PositiveLiteral(0), sat.NegativeLiteral(1)},
		{sat.PositiveLiteral(1), sat.PositiveLiteral(2)},
	}
	if len(f.clauses) != len(want) {
		t.Fatalf("got %d clauses, want %d", len(f.clauses), len(want))
	}
	for i := range want {
		if len(f.clauses[i]) != len(want[i]) {
			t.Fatalf("clause %d = %v, want %v", i, f.clauses[i], want[i])
		}
		for j := range want[i] {
			if f.clauses[i][j] != want[i][j] {
				t.Fatalf("clause %d literal %d = %v, want %v", i, j, f.clauses[i][j], want[i][j])
			}
		}
	}
}

func TestLoadReaderIgnoresComments(t *testing.T) {
	const instance = "c a comment line\np cnf 2 1\nc another comment\n1 2 0\n"

	f := &fakeSolver{}
	if err := LoadReader(strings.NewReader(instance), f); err != nil {
		t.Fatalf("LoadReader() error = %v", err)
	}
	if f.nVars != 2 || len(f.clauses) != 1 {
		t.Fatalf("got nVars=%d clauses=%d, want 2, 1", f.nVars, len(f.clauses))
	}
}

func TestLoadReaderRejectsNonCNF(t *testing.T) {
	const instance = "p wcnf 2 1\n1 2 0\n"
	f := &fakeSolver{}
	if err := LoadReader(strings.NewReader(instance), f); err == nil {
		t.Fatal("LoadReader() error = nil, want a non-cnf rejection")
	}
}

func TestLoadGzippedFile(t *testing.T) {
	const instance = "p cnf 1 1\n1 0\n"

	dir := t.TempDir()
	path := filepath.Join(dir, "instance.cnf.gz")

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte(instance)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &fakeSolver{}
	if err := Load(path, true, f); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.nVars != 1 || len(f.clauses) != 1 {
		t.Fatalf("got nVars=%d clauses=%d, want 1, 1", f.nVars, len(f.clauses))
	}
}

func TestLoadModels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.cnf.models")
	content := "1 -2 3\n-1 -2 -3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	models, err := LoadModels(path)
	if err != nil {
		t.Fatalf("LoadModels() error = %v", err)
	}
	want := [][]bool{
		{true, false, true},
		{false, false, false},
	}
	if len(models) != len(want) {
		t.Fatalf("got %d models, want %d", len(models), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if models[i][j] != want[i][j] {
				t.Fatalf("model %d = %v, want %v", i, models[i], want[i])
			}
		}
	}
}
