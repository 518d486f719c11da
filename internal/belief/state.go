// Package belief implements partial-information states over a fixed context
// set and the extension engine that counts and enumerates the entity groups
// consistent with them.
package belief

import (
	"fmt"

	"github.com/Harshitk-cp/coref/internal/cell"
	"github.com/Harshitk-cp/coref/internal/domain"
)

// Reserved state fields.
const (
	FieldTarget        = "target"
	FieldDistractor    = "distractor"
	FieldTargetArity   = "target_arity"
	FieldContrastArity = "contrast_arity"
	FieldPartOfSpeech  = "part_of_speech"
)

// MergeOp selects how a value combines with the cell at a path.
type MergeOp string

const (
	OpSet     MergeOp = "set"
	OpAtLeast MergeOp = "at_least"
	OpAtMost  MergeOp = "at_most"
)

// State is a belief about an unknown group of entities from one context
// set: a record cell with reserved constraint fields, write-once
// environment variables, and a queue of deferred effects keyed on
// part-of-speech transitions. States are not safe for concurrent use;
// parallel exploration works on copies.
type State struct {
	dom   *domain.ContextSet
	props *cell.DictCell
	pos   string
	env   map[string]string

	effects []*Effect

	// included entity indices, computed lazily; nil when stale
	included []int
}

// NewState returns an unconstrained state over dom: empty target and
// distractor records and unrestricted arities.
func NewState(dom *domain.ContextSet) *State {
	props := cell.DictOf(map[string]cell.Cell{
		FieldTarget:        cell.NewDictCell(),
		FieldDistractor:    cell.NewDictCell(),
		FieldTargetArity:   cell.NewIntervalCell(),
		FieldContrastArity: cell.NewIntervalCell(),
	})
	return &State{
		dom:   dom,
		props: props,
		env:   make(map[string]string),
	}
}

// Domain returns the context set the state ranges over.
func (s *State) Domain() *domain.ContextSet { return s.dom }

// Target returns the target description record.
func (s *State) Target() *cell.DictCell {
	f, _ := s.props.Field(FieldTarget)
	return f.(*cell.DictCell)
}

// Distractor returns the distractor description record.
func (s *State) Distractor() *cell.DictCell {
	f, _ := s.props.Field(FieldDistractor)
	return f.(*cell.DictCell)
}

// TargetArity returns the permitted target group size range.
func (s *State) TargetArity() *cell.IntervalCell {
	f, _ := s.props.Field(FieldTargetArity)
	return f.(*cell.IntervalCell)
}

// ContrastArity returns the permitted count of included-but-unchosen
// entities.
func (s *State) ContrastArity() *cell.IntervalCell {
	f, _ := s.props.Field(FieldContrastArity)
	return f.(*cell.IntervalCell)
}

// PartOfSpeech returns the current trigger symbol, or "".
func (s *State) PartOfSpeech() string { return s.pos }

// At returns the cell at path.
func (s *State) At(path []string) (cell.Cell, error) {
	return s.props.At(path)
}

// Merge combines value into the cell at path. Paths under target and
// distractor that do not exist yet are stemmed from the entity schema, so a
// bare scalar can open a new constraint field. Merging the part_of_speech
// path fires deferred effects (see effects.go). A failed merge leaves the
// state unchanged.
func (s *State) Merge(path []string, value any) error {
	return s.MergeWith(path, value, OpSet)
}

// MergeWith is Merge with an explicit operator. OpAtLeast and OpAtMost are
// lower/upper-bound merges valid only on interval-valued paths.
func (s *State) MergeWith(path []string, value any, op MergeOp) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty merge path", cell.ErrPathNotFound)
	}
	if path[0] == FieldPartOfSpeech {
		if len(path) != 1 {
			return fmt.Errorf("%w: part_of_speech has no sub-fields", cell.ErrPathNotFound)
		}
		sym, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: part_of_speech wants a symbol, got %T", cell.ErrTypeMismatch, value)
		}
		return s.SetPartOfSpeech(sym)
	}

	if err := s.mergeProps(path, value, op); err != nil {
		return err
	}
	if constraintField(path[0]) {
		s.included = nil
	}
	return nil
}

func (s *State) mergeProps(path []string, value any, op MergeOp) error {
	if op != OpSet {
		return s.mergeBound(path, value, op)
	}
	if descriptionField(path[0]) && len(path) > 1 && !s.props.ContainsPath(path) {
		stem, err := s.stemFor(path[1:])
		if err != nil {
			return err
		}
		// merge into the stem before attaching, so a contradiction or
		// mismatch leaves the state without the new field
		if err := stem.Merge(value); err != nil {
			return err
		}
		return s.props.AddAt(path, stem)
	}
	return s.props.MergeAt(path, value)
}

func (s *State) mergeBound(path []string, value any, op MergeOp) error {
	n, ok := toFloat(value)
	if !ok {
		return fmt.Errorf("%w: %s merge wants a number, got %T", cell.ErrTypeMismatch, op, value)
	}
	target, err := s.props.At(path)
	if err != nil {
		if !descriptionField(path[0]) || len(path) < 2 {
			return err
		}
		stem, serr := s.stemFor(path[1:])
		if serr != nil {
			return err
		}
		iv, ok := stem.(*cell.IntervalCell)
		if !ok {
			return fmt.Errorf("%w: %s merge wants an interval path", cell.ErrTypeMismatch, op)
		}
		// bound the stem before attaching, so a failure leaves the state
		// without the new field
		if err := applyBound(iv, n, op); err != nil {
			return err
		}
		return s.props.AddAt(path, iv)
	}
	iv, ok := target.(*cell.IntervalCell)
	if !ok {
		return fmt.Errorf("%w: %s merge wants an interval path", cell.ErrTypeMismatch, op)
	}
	return applyBound(iv, n, op)
}

func applyBound(iv *cell.IntervalCell, n float64, op MergeOp) error {
	if op == OpAtLeast {
		return iv.MergeAtLeast(n)
	}
	return iv.MergeAtMost(n)
}

// stemFor derives an unconstrained cell for a target/distractor sub-path
// from the entity schema: every entity carries the same attribute shapes,
// so the first entity's cell supplies the stem.
func (s *State) stemFor(sub []string) (cell.Cell, error) {
	if s.dom.Len() == 0 {
		return nil, fmt.Errorf("%w: empty domain has no attribute %q", cell.ErrPathNotFound, sub)
	}
	c, err := s.dom.Entity(0).Props.At(sub)
	if err != nil {
		return nil, err
	}
	return c.Stem(), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

func descriptionField(name string) bool {
	return name == FieldTarget || name == FieldDistractor
}

func constraintField(name string) bool {
	switch name {
	case FieldTarget, FieldDistractor, FieldTargetArity, FieldContrastArity:
		return true
	}
	return false
}

// SetEnv records a write-once environment variable on the state.
func (s *State) SetEnv(key, value string) error {
	if prev, ok := s.env[key]; ok {
		if prev == value {
			return nil
		}
		return fmt.Errorf("%w: environment variable %q already set to %q",
			cell.ErrContradiction, key, prev)
	}
	s.env[key] = value
	return nil
}

// Env returns the environment variable named key.
func (s *State) Env(key string) (string, bool) {
	v, ok := s.env[key]
	return v, ok
}

// Copy returns an independently mutable state. The context set and its
// taxonomy are shared by reference; every value cell is deep-copied, so
// merges on the copy never surface on the original.
func (s *State) Copy() *State {
	env := make(map[string]string, len(s.env))
	for k, v := range s.env {
		env[k] = v
	}
	effects := make([]*Effect, len(s.effects))
	copy(effects, s.effects)

	var included []int
	if s.included != nil {
		included = make([]int, len(s.included))
		copy(included, s.included)
	}
	return &State{
		dom:      s.dom,
		props:    s.props.Copy().(*cell.DictCell),
		pos:      s.pos,
		env:      env,
		effects:  effects,
		included: included,
	}
}
