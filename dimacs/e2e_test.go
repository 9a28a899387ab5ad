package dimacs

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tholden/cdcl/internal/sat"
)

// This suite evaluates end-to-end correctness over a small corpus of
// DIMACS instances with known verdicts (see testdataDir). Unlike a solver
// that supports incremental solving, each Solver instance here is used for
// exactly one Solve call (spec.md §7): a non-empty *.cnf.models fixture
// marks an instance as satisfiable (its contents are not compared for
// exact equality, since any one of several valid models may be returned),
// an empty one marks it unsatisfiable.
var testdataDir = "../testdata"

type testCase struct {
	name         string
	instanceFile string
	modelsFile   string
}

func listTestCases(dir string) ([]testCase, error) {
	var cases []testCase
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".cnf") {
			return nil
		}
		cases = append(cases, testCase{
			name:         d.Name(),
			instanceFile: path,
			modelsFile:   path + ".models",
		})
		return nil
	})
	return cases, err
}

func TestEndToEndFixtures(t *testing.T) {
	cases, err := listTestCases(testdataDir)
	if err != nil {
		t.Fatalf("listTestCases: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("no fixtures found under testdata")
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			wantModels, err := LoadModels(tc.modelsFile)
			if err != nil {
				t.Fatalf("LoadModels(%q): %v", tc.modelsFile, err)
			}
			wantSAT := len(wantModels) > 0

			s := sat.NewDefaultSolver()
			if err := Load(tc.instanceFile, false, s); err != nil {
				t.Fatalf("Load(%q): %v", tc.instanceFile, err)
			}

			gotSAT := s.Solve()
			if gotSAT != wantSAT {
				t.Fatalf("Solve() = %v, want %v", gotSAT, wantSAT)
			}
			if gotSAT {
				model := s.Model()
				if len(model) != s.NumVariables() {
					t.Fatalf("len(Model()) = %d, want %d", len(model), s.NumVariables())
				}
			}
		})
	}
}
