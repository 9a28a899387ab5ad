// Command cdcl is the CLI entry point for the solver (spec.md §6.3): it
// reads a DIMACS CNF instance (from a file argument or standard input),
// decides satisfiability, and prints the result and search statistics.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/tholden/cdcl/dimacs"
	"github.com/tholden/cdcl/internal/sat"
)

var (
	flagCPUProfile = flag.Bool("cpuprof", false, "save a pprof CPU profile to cpuprof")
	flagMemProfile = flag.Bool("memprof", false, "save a pprof heap profile to memprof")
	flagVerbose    = flag.Bool("v", false, "print periodic search statistics")
	flagGzip       = flag.Bool("gzip", false, "treat the instance file as gzip-compressed")
)

type config struct {
	instanceFile string // empty means read from stdin
	gzip         bool
	verbose      bool
	cpuProfile   bool
	memProfile   bool
}

func parseConfig() *config {
	flag.Parse()
	return &config{
		instanceFile: flag.Arg(0),
		gzip:         *flagGzip,
		verbose:      *flagVerbose,
		cpuProfile:   *flagCPUProfile,
		memProfile:   *flagMemProfile,
	}
}

func run(cfg *config) error {
	s := sat.NewSolver(sat.Options{
		ClauseDecay:   sat.DefaultOptions.ClauseDecay,
		VariableDecay: sat.DefaultOptions.VariableDecay,
		MaxConflicts:  -1,
		Timeout:       -1,
		PhaseSaving:   false,
		Verbose:       cfg.verbose,
	})

	var err error
	if cfg.instanceFile == "" {
		err = dimacs.LoadReader(os.Stdin, s)
	} else {
		err = dimacs.Load(cfg.instanceFile, cfg.gzip, s)
	}
	if err != nil {
		return fmt.Errorf("could not parse instance: %w", err)
	}

	fmt.Printf("c variables: %d\n", s.NumVariables())
	fmt.Printf("c clauses:   %d\n", s.NumConstraints())

	start := time.Now()
	satisfiable := s.Solve()
	elapsed := time.Since(start)

	stats := s.Stats()
	if satisfiable {
		fmt.Println("SAT")
	} else {
		fmt.Println("UNSAT")
	}
	fmt.Printf("c time (sec):  %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:   %d\n", stats.Conflicts)
	fmt.Printf("c restarts:    %d\n", stats.Restarts)
	fmt.Printf("c propagations: %d\n", stats.Propagations)

	return nil
}

func main() {
	cfg := parseConfig()

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		pprof.WriteHeapProfile(f)
	}
}
