// Package sat implements a conflict-driven clause-learning (CDCL) SAT
// solver in the style of MiniSat (Eén & Sörensson, SAT 2003): trail-based
// assignment, two-watched-literal unit propagation, first-UIP conflict
// analysis, non-chronological backjumping, VSIDS activity heuristics, a
// learnt-clause reducer, and a geometric restart schedule.
package sat

import (
	"fmt"
	"log"
	"sort"
	"time"
)

// Options configures a Solver. The zero value is not meant to be used
// directly; start from DefaultOptions.
type Options struct {
	ClauseDecay   float64
	VariableDecay float64
	MaxConflicts  int64 // negative disables the limit
	Timeout       time.Duration
	PhaseSaving   bool
	Verbose       bool
}

// DefaultOptions mirrors the decay factors and stop conditions spec.md §4.6
// and §4.8 specify.
var DefaultOptions = Options{
	ClauseDecay:   0.999,
	VariableDecay: 0.95,
	MaxConflicts:  -1,
	Timeout:       -1,
	PhaseSaving:   false,
	Verbose:       false,
}

// Stats reports the monotonic counters spec.md §6.1 requires of stats().
type Stats struct {
	Restarts     int64
	Conflicts    int64
	Propagations int64
}

// Solver is a CDCL SAT instance. The zero value is not usable; construct
// one with NewSolver or NewDefaultSolver. A Solver must not be used from
// more than one goroutine at a time and Solve must not be called twice on
// the same instance (spec.md §5, §7).
type Solver struct {
	options Options

	// Clause database.
	constraints []*Clause
	learnts     []*Clause
	clauseInc   float64

	// Variable ordering / branching.
	order *varOrder

	// Propagation and watchers: watchers[l] lists the clauses watching
	// literal l (spec.md §3).
	watchers  [][]*Clause
	propQueue *Queue[Literal]

	// Per-literal truth value.
	assigns []LBool

	// Trail and decision levels.
	trail    []Literal
	trailLim []int
	reason   []*Clause
	level    []int

	// Set once the instance is known unsatisfiable at the root level.
	unsat bool

	// Set once Solve has been called; Solve is not reentrant-safe.
	solveCalled bool

	stats     Stats
	startTime time.Time

	// model is the satisfying assignment captured just before the final
	// cancelUntil(0) on a SAT result; nil until then.
	model []bool

	// seenVar is reused across calls to analyze.
	seenVar *ResetSet

	// tmpWatchers, tmpLearnts and tmpReason are reusable scratch buffers to
	// avoid reallocating on every Propagate/analyze call.
	tmpWatchers []*Clause
	tmpLearnts  []Literal
	tmpReason   []Literal
}

// NewDefaultSolver returns a Solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// NewSolver returns a new Solver configured with the given options.
func NewSolver(opts Options) *Solver {
	return &Solver{
		options:   opts,
		clauseInc: 1,
		order:     newVarOrder(opts.VariableDecay, opts.PhaseSaving),
		propQueue: NewQueue[Literal](128),
		seenVar:   &ResetSet{},
	}
}

func (s *Solver) shouldStop() bool {
	if s.options.MaxConflicts >= 0 && s.stats.Conflicts >= s.options.MaxConflicts {
		return true
	}
	if s.options.Timeout >= 0 && time.Since(s.startTime) >= s.options.Timeout {
		return true
	}
	return false
}

// NumVariables returns the number of variables allocated so far.
func (s *Solver) NumVariables() int {
	return len(s.assigns) / 2
}

// NumAssigns returns the number of currently assigned variables.
func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

// NumConstraints returns the number of input (non-learnt) clauses.
func (s *Solver) NumConstraints() int {
	return len(s.constraints)
}

// NumLearnts returns the number of currently retained learnt clauses.
func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

// VarValue returns the current value of variable x.
func (s *Solver) VarValue(x int) LBool {
	return s.assigns[PositiveLiteral(x)]
}

// LitValue returns the current value of literal l.
func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// NewVar allocates a fresh variable and returns its ID (spec.md §4.1
// new_var).
func (s *Solver) NewVar() int {
	id := s.NumVariables()

	s.watchers = append(s.watchers, nil, nil)
	s.reason = append(s.reason, nil)
	s.level = append(s.level, -1)
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.seenVar.Expand()
	s.order.addVar()

	return id
}

func (s *Solver) watch(c *Clause, onFalseOf Literal) {
	s.watchers[onFalseOf] = append(s.watchers[onFalseOf], c)
}

func (s *Solver) unwatch(c *Clause, onFalseOf Literal) {
	w := s.watchers[onFalseOf]
	j := 0
	for i := range w {
		if w[i] != c {
			w[j] = w[i]
			j++
		}
	}
	s.watchers[onFalseOf] = w[:j]
}

// AddClause adds an input clause to the problem. Literals already false at
// the root level are dropped; it returns false iff no literal is left (the
// empty clause, or a unit clause contradicting an existing root-level
// assignment), which makes the instance unsatisfiable (spec.md §4.1).
// AddClause aborts the program via log.Fatal (a contract violation, spec.md
// §7) if the clause is added after search has left the root level, or if it
// references a variable that was never allocated with NewVar.
func (s *Solver) AddClause(clause []Literal) bool {
	if s.decisionLevel() != 0 {
		log.Fatal("sat: AddClause called away from the root decision level")
	}
	for _, l := range clause {
		if l.VarID() >= s.NumVariables() || l < 0 {
			log.Fatalf("sat: AddClause given literal %v for an unallocated variable", l)
		}
	}

	c, ok := newClause(s, clause, false)
	if c != nil {
		s.constraints = append(s.constraints, c)
	}
	if !ok {
		s.unsat = true
	}
	return ok
}

// enqueue implements spec.md §4.2 enqueue(l, r).
func (s *Solver) enqueue(l Literal, from *Clause) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		varID := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.level[varID] = s.decisionLevel()
		s.reason[varID] = from
		s.trail = append(s.trail, l)
		s.propQueue.Push(l)
		return true
	}
}

// assume implements spec.md §4.2 assume(l): push a new decision level and
// enqueue l as a Branch (reason nil, as the first entry of the level whose
// boundary was just pushed).
func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	return s.enqueue(l, nil)
}

// Propagate drains the propagation queue, implementing spec.md §4.3. It
// returns the first conflicting clause found, or nil once a fixed point is
// reached.
func (s *Solver) Propagate() *Clause {
	for s.propQueue.Size() > 0 {
		l := s.propQueue.Pop()

		watchList := s.watchers[l]
		s.tmpWatchers = append(s.tmpWatchers[:0], watchList...)
		s.watchers[l] = watchList[:0]

		for i, c := range s.tmpWatchers {
			if c.erased {
				continue
			}

			kept, moved, ok := c.visit(s, l)

			// The watch is re-attached regardless of ok: on conflict, c's
			// watched position did not move (all of c[1:] are falsified), so
			// c is still watching l just like every clause that kept its
			// watch on a satisfied or inconclusive check.
			if kept {
				s.watchers[l] = append(s.watchers[l], c)
			} else {
				s.watchers[moved] = append(s.watchers[moved], c)
			}

			if !ok {
				// Conflict: re-attach the un-visited, non-erased remainder
				// and bail (spec.md §4.3 step 2).
				for _, rem := range s.tmpWatchers[i+1:] {
					if !rem.erased {
						s.watchers[l] = append(s.watchers[l], rem)
					}
				}
				s.propQueue.Clear()
				return c
			}
			s.stats.Propagations++
		}
	}
	return nil
}

// explain returns the reason literals for l's assignment, or for the
// conflict itself when l == -1 (spec.md §4.4's "reason clause").
func (s *Solver) explain(c *Clause, l Literal) []Literal {
	if c.learnt {
		s.bumpClauseActivity(c)
	}
	if l == -1 {
		s.tmpReason = c.explainConflict(s.tmpReason)
	} else {
		s.tmpReason = c.explainAssign(s.tmpReason)
	}
	return s.tmpReason
}

// analyze implements spec.md §4.4: first-UIP conflict analysis. It returns
// the learnt clause (position 0 is the asserting literal) and the backjump
// level.
func (s *Solver) analyze(confl *Clause) ([]Literal, int) {
	nImplicationPoints := 0

	s.tmpLearnts = append(s.tmpLearnts[:0], -1) // reserve slot 0 for the UIP

	nextLiteral := len(s.trail) - 1
	l := Literal(-1)
	s.seenVar.Clear()
	backtrackLevel := 0

	for {
		for _, q := range s.explain(confl, l) {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)
			s.order.bump(v)

			if s.level[v] == s.decisionLevel() {
				nImplicationPoints++
				continue
			}
			s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
			if lvl := s.level[v]; lvl > backtrackLevel {
				backtrackLevel = lvl
			}
		}

		// Walk the trail backward until the next visited variable, reading
		// each entry's reason as the index steps past it. The trail itself
		// is not popped here; cancelUntil clears these entries afterwards.
		for {
			l = s.trail[nextLiteral]
			nextLiteral--
			v := l.VarID()
			confl = s.reason[v]
			if s.seenVar.Contains(v) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
	}

	s.tmpLearnts[0] = l.Opposite()
	return s.tmpLearnts, backtrackLevel
}

// record admits a learnt clause and enqueues its asserting literal (spec.md
// §4.5 step 4/5).
func (s *Solver) record(clause []Literal) {
	c, _ := newClause(s, clause, true)
	s.enqueue(clause[0], c)
	if c != nil {
		s.learnts = append(s.learnts, c)
		s.bumpClauseActivity(c)
	}
}

func (s *Solver) bumpClauseActivity(c *Clause) {
	c.activity += s.clauseInc
	if c.activity > 1e100 {
		s.clauseInc *= 1e-100
		for _, l := range s.learnts {
			l.activity *= 1e-100
		}
	}
}

func (s *Solver) decayClauseActivity() {
	s.clauseInc *= s.options.ClauseDecay
}

// undoOne pops the top trail entry, clearing its variable's assignment
// (spec.md §4.2 pop_level, one step).
func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	val := s.assigns[l]
	s.order.undo(v, val)
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.reason[v] = nil
	s.level[v] = -1

	s.trail = s.trail[:len(s.trail)-1]
}

func (s *Solver) cancel() {
	n := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; n != 0; n-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// cancelUntil pops decision levels until the current level equals level
// (spec.md §4.5 step 2).
func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		s.cancel()
	}
}

// simplify removes clauses satisfied at the root level from both the
// constraint and learnt databases; it must only be called at decision
// level 0 with an empty propagation queue.
func (s *Solver) simplify() bool {
	if s.decisionLevel() != 0 {
		log.Fatal("sat: simplify called away from the root decision level")
	}
	if s.unsat || s.Propagate() != nil {
		s.unsat = true
		return false
	}
	s.simplifyInPlace(&s.learnts)
	s.simplifyInPlace(&s.constraints)
	return true
}

func (s *Solver) simplifyInPlace(clausesPtr *[]*Clause) {
	clauses := *clausesPtr
	j := 0
	for i := range clauses {
		if clauses[i].simplify(s) {
			clauses[i].remove(s)
		} else {
			clauses[j] = clauses[i]
			j++
		}
	}
	*clausesPtr = clauses[:j]
}

// reduceDB implements spec.md §4.7.
func (s *Solver) reduceDB() {
	lim := s.clauseInc / float64(len(s.learnts))

	sort.Slice(s.learnts, func(i, j int) bool {
		return s.learnts[i].activity < s.learnts[j].activity
	})

	i, j := 0, 0
	for ; i < len(s.learnts)/2; i++ {
		if s.learnts[i].locked(s) {
			s.learnts[j] = s.learnts[i]
			j++
		} else {
			s.learnts[i].erased = true
			s.learnts[i].remove(s)
		}
	}
	for ; i < len(s.learnts); i++ {
		if !s.learnts[i].locked(s) && s.learnts[i].activity < lim {
			s.learnts[i].erased = true
			s.learnts[i].remove(s)
		} else {
			s.learnts[j] = s.learnts[i]
			j++
		}
	}
	s.learnts = s.learnts[:j]
}

// search implements spec.md §4.8/§4.5/§4.4's inner loop: alternate
// propagation and decision, learning from every conflict, until the
// instance is decided or the given budgets are exceeded.
func (s *Solver) search(nConflicts, nLearnts int) LBool {
	if s.unsat {
		return False
	}

	s.stats.Restarts++
	conflictCount := 0

	for {
		conflict := s.Propagate()
		if conflict != nil {
			conflictCount++
			s.stats.Conflicts++

			if s.decisionLevel() == 0 {
				s.unsat = true
				return False
			}

			learnt, backtrackLevel := s.analyze(conflict)
			s.cancelUntil(backtrackLevel)
			s.record(learnt)

			s.decayClauseActivity()
			s.order.decayActivity()
			continue
		}

		// Fixed point reached with no conflict: this is the only point at
		// which a budget-triggered restart may fire (spec.md §4.8).
		if s.decisionLevel() == 0 {
			s.simplify()
		}

		if len(s.learnts)-s.NumAssigns() >= nLearnts {
			s.reduceDB()
		}

		if s.NumAssigns() == s.NumVariables() {
			s.captureModel()
			s.cancelUntil(0)
			return True
		}

		if conflictCount > nConflicts || s.shouldStop() {
			s.cancelUntil(0)
			return Unknown
		}

		l := s.order.selectLiteral(s)
		s.assume(l)
	}
}

func (s *Solver) captureModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		v := s.VarValue(i)
		if v == Unknown {
			log.Fatal("sat: captureModel called with an incomplete assignment")
		}
		model[i] = v == True
	}
	s.model = model
}

// Solve runs the restart controller (spec.md §4.8) to a terminal verdict.
// It returns true iff the instance is satisfiable, in which case Model
// returns a satisfying assignment. Solve must not be called more than once
// per Solver instance (spec.md §7).
func (s *Solver) Solve() bool {
	if s.solveCalled {
		log.Fatal("sat: Solve called twice on the same Solver")
	}
	s.solveCalled = true
	s.startTime = time.Now()

	conflictBudget := 100
	learntBudget := s.NumConstraints() / 3
	status := Unknown

	for status == Unknown {
		status = s.search(conflictBudget, learntBudget)
		if s.options.Verbose {
			s.printSearchStats()
		}
		if status != Unknown || s.shouldStop() {
			break
		}
		conflictBudget = conflictBudget * 3 / 2
		learntBudget = learntBudget * 11 / 10
	}

	s.cancelUntil(0)
	return status == True
}

// Model returns the satisfying assignment found by a successful Solve
// call, or nil if Solve has not been called or returned false.
func (s *Solver) Model() []bool {
	return s.model
}

// Stats returns the solver's monotonic search counters (spec.md §6.1).
func (s *Solver) Stats() Stats {
	return s.stats
}

func (s *Solver) printSearchStats() {
	fmt.Printf(
		"c %14.3fs %14d conflicts %14d restarts %14d learnts\n",
		time.Since(s.startTime).Seconds(),
		s.stats.Conflicts,
		s.stats.Restarts,
		len(s.learnts))
}
