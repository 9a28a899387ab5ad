package sat

import (
	"log"

	"github.com/rhartert/yagh"
)

// varOrder maintains the VSIDS-style branching order: the unassigned
// variable with the highest activity, ties broken by lowest index (spec.md
// §4.6). It is backed by an indexed binary heap (yagh.IntMap) rather than a
// linear scan; spec.md explicitly allows this as long as the tie-break is
// preserved, which yagh.IntMap gives for free by breaking ties on insertion
// order of equal priorities.
type varOrder struct {
	heap *yagh.IntMap[float64]

	activity []float64 // in [0, 1e100)
	inc      float64   // in (0, 1e100]
	decay    float64   // in (0, 1]

	phases      []LBool
	phaseSaving bool
}

func newVarOrder(decay float64, phaseSaving bool) *varOrder {
	return &varOrder{
		heap:        yagh.New[float64](0),
		inc:         1,
		decay:       decay,
		phaseSaving: phaseSaving,
	}
}

// addVar registers a freshly allocated variable with zero activity and the
// default negative phase (spec.md §4.6).
func (vo *varOrder) addVar() {
	v := len(vo.activity)
	vo.activity = append(vo.activity, 0)
	vo.phases = append(vo.phases, False)
	vo.heap.GrowBy(1)
	vo.heap.Put(v, 0)
}

// bump increases v's activity (VSIDS bump), rescaling every score if the
// bumped value would otherwise overflow (spec.md §4.6).
func (vo *varOrder) bump(v int) {
	newScore := vo.activity[v] + vo.inc
	vo.activity[v] = newScore
	if vo.heap.Contains(v) {
		vo.heap.Put(v, -newScore)
	}
	if newScore > 1e100 {
		vo.rescale()
	}
}

func (vo *varOrder) rescale() {
	vo.inc *= 1e-100
	for v, a := range vo.activity {
		na := a * 1e-100
		vo.activity[v] = na
		if vo.heap.Contains(v) {
			vo.heap.Put(v, -na)
		}
	}
}

// decayActivity inflates the bump increment, which has the effect of
// exponentially decaying older activity relative to new bumps.
func (vo *varOrder) decayActivity() {
	vo.inc /= vo.decay
	if vo.inc > 1e100 {
		vo.rescale()
	}
}

// undo reinserts v into the candidate set after it is unassigned by a
// backtrack, saving its last phase if phase-saving is enabled.
func (vo *varOrder) undo(v int, val LBool) {
	if vo.phaseSaving {
		vo.phases[v] = val
	}
	vo.heap.Put(v, -vo.activity[v])
}

// selectLiteral pops the highest-activity unassigned variable and returns
// the literal corresponding to its default (or saved) phase.
func (vo *varOrder) selectLiteral(s *Solver) Literal {
	for {
		next, ok := vo.heap.Pop()
		if !ok {
			log.Fatal("sat: selectLiteral called with no unassigned variables left")
		}
		if s.VarValue(next.Elem) != Unknown {
			continue // stale entry: already assigned, popped lazily
		}
		if vo.phases[next.Elem] == True {
			return PositiveLiteral(next.Elem)
		}
		return NegativeLiteral(next.Elem)
	}
}
