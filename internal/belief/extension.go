package belief

import (
	"math"

	"github.com/Harshitk-cp/coref/internal/domain"
)

// Included returns the indices of entities consistent with the current
// target and distractor: those entailing the target description and not
// entailing a non-empty distractor. The classification is cached until the
// next constraint merge.
func (s *State) Included() ([]int, error) {
	if s.included != nil {
		return s.included, nil
	}
	target := s.Target()
	distractor := s.Distractor()
	checkDistractor := distractor.Len() > 0

	included := make([]int, 0, s.dom.Len())
	for i := 0; i < s.dom.Len(); i++ {
		props := s.dom.Entity(i).Props
		ok, err := props.Entails(target)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if checkDistractor {
			out, err := props.Entails(distractor)
			if err != nil {
				return nil, err
			}
			if out {
				continue
			}
		}
		included = append(included, i)
	}
	s.included = included
	return included, nil
}

// sizeBounds resolves the arity intervals against k included entities into
// the inclusive [lo, hi] range of permitted target group sizes. The target
// group is non-empty and the untaken remainder k-s must fit contrast_arity.
func (s *State) sizeBounds(k int) (int, int) {
	tlo, thi := s.TargetArity().Bounds()
	dlo, dhi := s.ContrastArity().Bounds()

	lo := max(ceilBound(tlo), 1)
	if !math.IsInf(dhi, 1) {
		lo = max(lo, k-floorBound(dhi))
	}
	hi := min(floorBound(thi), k, k-ceilBound(dlo))
	return lo, hi
}

// Size returns how many entity groups satisfy the state: the closed-form
// binomial sum over permitted group sizes, with no subset materialized.
// Zero is a normal outcome for over-constrained states. Counts saturate at
// math.MaxInt64, reachable once roughly 63 entities are included.
func (s *State) Size() (int64, error) {
	included, err := s.Included()
	if err != nil {
		return 0, err
	}
	lo, hi := s.sizeBounds(len(included))
	return countSubsets(len(included), lo, hi), nil
}

// TupleIterator lazily enumerates satisfying groups as ascending index
// tuples, smallest groups first and lexicographic within one size. Each
// call to Tuples starts a fresh pass.
type TupleIterator struct {
	included []int
	size     int // current combination size
	maxSize  int
	comb     []int // positions into included, nil before first Next
}

// Tuples returns a restartable iterator over the satisfying index tuples.
func (s *State) Tuples() (*TupleIterator, error) {
	included, err := s.Included()
	if err != nil {
		return nil, err
	}
	lo, hi := s.sizeBounds(len(included))
	if lo < 1 {
		lo = 1
	}
	return &TupleIterator{included: included, size: lo, maxSize: hi}, nil
}

// Next returns the next index tuple, or ok=false when the sequence is
// exhausted. The returned slice is owned by the caller.
func (it *TupleIterator) Next() ([]int, bool) {
	for it.size <= it.maxSize && it.size <= len(it.included) {
		if it.comb == nil {
			it.comb = make([]int, it.size)
			for i := range it.comb {
				it.comb[i] = i
			}
			return it.tuple(), true
		}
		if it.advance() {
			return it.tuple(), true
		}
		it.size++
		it.comb = nil
	}
	return nil, false
}

// advance steps comb to the next lexicographic combination of positions.
func (it *TupleIterator) advance() bool {
	n, r := len(it.included), it.size
	i := r - 1
	for i >= 0 && it.comb[i] == n-r+i {
		i--
	}
	if i < 0 {
		return false
	}
	it.comb[i]++
	for j := i + 1; j < r; j++ {
		it.comb[j] = it.comb[j-1] + 1
	}
	return true
}

func (it *TupleIterator) tuple() []int {
	out := make([]int, len(it.comb))
	for i, p := range it.comb {
		out[i] = it.included[p]
	}
	return out
}

// ReferentIterator wraps TupleIterator, yielding entity groups.
type ReferentIterator struct {
	dom    *domain.ContextSet
	tuples *TupleIterator
}

// Referents returns a restartable iterator over the satisfying entity
// groups.
func (s *State) Referents() (*ReferentIterator, error) {
	tuples, err := s.Tuples()
	if err != nil {
		return nil, err
	}
	return &ReferentIterator{dom: s.dom, tuples: tuples}, nil
}

// Next returns the next entity group, or ok=false when exhausted.
func (it *ReferentIterator) Next() ([]*domain.Entity, bool) {
	tuple, ok := it.tuples.Next()
	if !ok {
		return nil, false
	}
	out := make([]*domain.Entity, len(tuple))
	for i, idx := range tuple {
		out[i] = it.dom.Entity(idx)
	}
	return out, true
}

// ceilBound converts an interval lower bound to the smallest admissible
// integer; -Inf clamps to 0.
func ceilBound(v float64) int {
	if math.IsInf(v, -1) {
		return 0
	}
	return int(math.Ceil(v))
}

// floorBound converts an interval upper bound to the largest admissible
// integer; +Inf clamps to MaxInt.
func floorBound(v float64) int {
	if math.IsInf(v, 1) {
		return math.MaxInt
	}
	return int(math.Floor(v))
}
