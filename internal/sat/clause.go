package sat

import "strings"

// Clause is an ordered, growable-arena member: a disjunction of literals.
// Positions 0 and 1 are the watched positions maintained by the propagator
// (spec.md §3, §4.3). A Clause's identity is its pointer; pointers are
// never cyclic (a Clause only ever points at Literals, which are plain
// integers) so this stands in for the integer clause IDs of spec.md §3
// without needing a separate arena-index indirection.
type Clause struct {
	literals []Literal
	learnt   bool
	erased   bool // tombstoned by reduceDB; watchers scrub it lazily
	activity float64
}

// newClause builds and registers a clause from tmpLiterals. tmpLiterals may
// be reordered and truncated in place. It returns (clause, ok): ok is false
// iff the clause (or the problem) is now known to be unsatisfiable; clause
// is nil when the input collapsed to a fact (unit/always-true/empty) rather
// than producing a stored clause.
//
// learnt clauses are assumed already minimal and are not deduplicated or
// checked for tautology: analyze never produces a learnt clause with a
// repeated or complementary pair of literals.
func newClause(s *Solver, tmpLiterals []Literal, learnt bool) (*Clause, bool) {
	size := len(tmpLiterals)

	if !learnt {
		seen := map[Literal]struct{}{}
		for i := size - 1; i >= 0; i-- {
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return nil, true // tautology: clause is always true
			}
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return nil, true // clause already satisfied at the root
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}
		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		return nil, false
	case 1:
		return nil, s.enqueue(tmpLiterals[0], nil)
	default:
		c := &Clause{
			learnt:   learnt,
			literals: append([]Literal(nil), tmpLiterals...),
		}

		// Seed the second watched position with a maximum-level literal
		// among positions 1..n-1, applied uniformly to input and learnt
		// clauses (spec.md §9, resolving the open question on this point).
		maxLevel := -1
		wl := -1
		for i := 1; i < len(c.literals); i++ {
			if lvl := s.level[c.literals[i].VarID()]; lvl > maxLevel {
				maxLevel = lvl
				wl = i
			}
		}
		if wl >= 0 {
			c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
		}

		s.watch(c, c.literals[0].Opposite())
		s.watch(c, c.literals[1].Opposite())

		return c, true
	}
}

// locked reports whether c is currently serving as the antecedent of the
// literal assigned at its first position, in which case reduceDB must not
// erase it (spec.md §4.7).
func (c *Clause) locked(s *Solver) bool {
	return s.reason[c.literals[0].VarID()] == c
}

// remove unregisters c from the watcher lists it occupies. It does not
// tombstone c; callers that logically erase a learnt clause also set
// c.erased.
func (c *Clause) remove(s *Solver) {
	s.unwatch(c, c.literals[0].Opposite())
	s.unwatch(c, c.literals[1].Opposite())
}

// simplify drops any literal assigned False at the root level and reports
// whether the clause is now satisfied (and can be dropped entirely). Only
// meaningful at decision level 0.
func (c *Clause) simplify(s *Solver) bool {
	j := 0
	for _, l := range c.literals {
		switch s.LitValue(l) {
		case True:
			return true
		case False:
			// discard
		default:
			c.literals[j] = l
			j++
		}
	}
	c.literals = c.literals[:j]
	return false
}

// visit implements spec.md §4.3's visit(c, l): on entry ¬l occupies one of
// c's two watched positions. It returns (kept, moved, ok): kept is true
// both when the watch stays on l (clause satisfied, or c[0] was forced as a
// new implication) and when the clause is conflicting; conflict is
// signalled by ok=false. When kept is false, moved is the watcher-list
// literal the clause should move to.
func (c *Clause) visit(s *Solver, l Literal) (kept bool, moved Literal, ok bool) {
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0], c.literals[1] = c.literals[1], opp
	}

	if s.LitValue(c.literals[0]) == True {
		return true, 0, true // clause already satisfied, keep watch on l
	}

	for i := 2; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.literals[1], c.literals[i] = c.literals[i], c.literals[1]
			return false, c.literals[1].Opposite(), true
		}
	}

	// All of c[1:] are falsified; c[0] must become True or the clause
	// conflicts.
	if s.enqueue(c.literals[0], c) {
		return true, 0, true
	}
	return true, 0, false
}

// explainConflict returns the negation of every literal in c, used by
// analyze when c is the conflicting clause itself (spec.md §4.4).
func (c *Clause) explainConflict(out []Literal) []Literal {
	out = out[:0]
	for _, l := range c.literals {
		out = append(out, l.Opposite())
	}
	return out
}

// explainAssign returns the negation of every literal but the first,
// used by analyze when c is the reason c forced literal c.literals[0]
// (spec.md §4.4).
func (c *Clause) explainAssign(out []Literal) []Literal {
	out = out[:0]
	for _, l := range c.literals[1:] {
		out = append(out, l.Opposite())
	}
	return out
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
