package cell

import (
	"fmt"
	"math"
)

// IntervalCell is a closed interval [lo, hi] over float64. The default is
// [0, +Inf), the least-informative cardinal; a degenerate interval [n, n]
// represents an exact value. Merge is interval intersection.
type IntervalCell struct {
	lo, hi float64
}

// NewIntervalCell returns the default interval [0, +Inf).
func NewIntervalCell() *IntervalCell {
	return &IntervalCell{lo: 0, hi: math.Inf(1)}
}

// NewInterval returns the interval [lo, hi]. hi must not be below lo.
func NewInterval(lo, hi float64) (*IntervalCell, error) {
	if hi < lo {
		return nil, fmt.Errorf("invalid interval: high %v below low %v", hi, lo)
	}
	return &IntervalCell{lo: lo, hi: hi}, nil
}

// Exact returns the degenerate interval [n, n].
func Exact(n float64) *IntervalCell {
	return &IntervalCell{lo: n, hi: n}
}

// Bounds returns the (lo, hi) pair.
func (c *IntervalCell) Bounds() (float64, float64) {
	return c.lo, c.hi
}

// Low returns the lower bound.
func (c *IntervalCell) Low() float64 { return c.lo }

// High returns the upper bound.
func (c *IntervalCell) High() float64 { return c.hi }

// IsExact reports whether the interval is degenerate.
func (c *IntervalCell) IsExact() bool { return c.lo == c.hi }

func coerceInterval(v any) (*IntervalCell, error) {
	switch o := v.(type) {
	case *IntervalCell:
		return o, nil
	case int:
		return Exact(float64(o)), nil
	case int64:
		return Exact(float64(o)), nil
	case float64:
		return Exact(o), nil
	case float32:
		return Exact(float64(o)), nil
	case []float64:
		return intervalFromSlice(o)
	case []int:
		fs := make([]float64, len(o))
		for i, n := range o {
			fs[i] = float64(n)
		}
		return intervalFromSlice(fs)
	default:
		return nil, mismatchf("cannot coerce %T to IntervalCell", v)
	}
}

func intervalFromSlice(vals []float64) (*IntervalCell, error) {
	switch len(vals) {
	case 1:
		return Exact(vals[0]), nil
	case 2:
		if vals[1] < vals[0] {
			return nil, contradictionf("interval low %v above high %v", vals[0], vals[1])
		}
		return &IntervalCell{lo: vals[0], hi: vals[1]}, nil
	default:
		return nil, mismatchf("interval literal needs 1 or 2 values, got %d", len(vals))
	}
}

// entailedBy reports whether o is bounded within c.
func (c *IntervalCell) entailedBy(o *IntervalCell) bool {
	return o.lo >= c.lo && o.hi <= c.hi
}

func (c *IntervalCell) contradicts(o *IntervalCell) bool {
	return math.Max(c.lo, o.lo) > math.Min(c.hi, o.hi)
}

func (c *IntervalCell) Merge(other any) error {
	o, err := coerceInterval(other)
	if err != nil {
		return err
	}
	switch {
	case c.lo == o.lo && c.hi == o.hi:
		return nil
	case c.entailedBy(o):
		c.lo, c.hi = o.lo, o.hi
		return nil
	case o.entailedBy(c):
		return nil
	case c.contradicts(o):
		return contradictionf("cannot merge [%v, %v] with [%v, %v]", c.lo, c.hi, o.lo, o.hi)
	default:
		c.lo = math.Max(c.lo, o.lo)
		c.hi = math.Min(c.hi, o.hi)
		return nil
	}
}

// MergeAtLeast narrows the interval to values >= n.
func (c *IntervalCell) MergeAtLeast(n float64) error {
	return c.Merge(&IntervalCell{lo: n, hi: math.Inf(1)})
}

// MergeAtMost narrows the interval to values <= n.
func (c *IntervalCell) MergeAtMost(n float64) error {
	return c.Merge(&IntervalCell{lo: math.Inf(-1), hi: n})
}

func (c *IntervalCell) Entails(other any) (bool, error) {
	o, err := coerceInterval(other)
	if err != nil {
		return false, err
	}
	return o.entailedBy(c), nil
}

func (c *IntervalCell) IsEntailedBy(other any) (bool, error) {
	o, err := coerceInterval(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o), nil
}

func (c *IntervalCell) IsEqual(other any) (bool, error) {
	o, err := coerceInterval(other)
	if err != nil {
		return false, err
	}
	return c.lo == o.lo && c.hi == o.hi, nil
}

func (c *IntervalCell) Copy() Cell {
	return &IntervalCell{lo: c.lo, hi: c.hi}
}

func (c *IntervalCell) Stem() Cell {
	return NewIntervalCell()
}

func (c *IntervalCell) String() string {
	if c.IsExact() {
		return fmt.Sprintf("%v", c.lo)
	}
	return fmt.Sprintf("[%v, %v]", c.lo, c.hi)
}
