package cell

import (
	"fmt"
	"slices"
)

// LinearOrderedCell generalizes IntervalCell to symbols under a fixed total
// order. The value is a [low, high] range of domain positions; merge
// intersects the ranges.
type LinearOrderedCell struct {
	domain []string       // shared, immutable
	index  map[string]int // shared, immutable
	lo, hi int
}

// NewLinearOrderedCell returns an unconstrained cell spanning the whole
// ordered domain. The domain must not contain duplicates.
func NewLinearOrderedCell(domain []string) (*LinearOrderedCell, error) {
	if len(domain) == 0 {
		return nil, fmt.Errorf("ordered domain must not be empty")
	}
	index := make(map[string]int, len(domain))
	for i, s := range domain {
		if _, dup := index[s]; dup {
			return nil, fmt.Errorf("duplicate symbol %q in ordered domain", s)
		}
		index[s] = i
	}
	owned := make([]string, len(domain))
	copy(owned, domain)
	return &LinearOrderedCell{domain: owned, index: index, lo: 0, hi: len(domain) - 1}, nil
}

// NewLinearOrdered returns a cell bounded to [low, high] within domain.
func NewLinearOrdered(domain []string, low, high string) (*LinearOrderedCell, error) {
	c, err := NewLinearOrderedCell(domain)
	if err != nil {
		return nil, err
	}
	lo, ok := c.index[low]
	if !ok {
		return nil, fmt.Errorf("low bound %q not in ordered domain", low)
	}
	hi, ok := c.index[high]
	if !ok {
		return nil, fmt.Errorf("high bound %q not in ordered domain", high)
	}
	if lo > hi {
		return nil, fmt.Errorf("low bound %q above high bound %q", low, high)
	}
	c.lo, c.hi = lo, hi
	return c, nil
}

// Bounds returns the current (low, high) symbols.
func (c *LinearOrderedCell) Bounds() (string, string) {
	return c.domain[c.lo], c.domain[c.hi]
}

func (c *LinearOrderedCell) coerce(v any) (*LinearOrderedCell, error) {
	switch o := v.(type) {
	case *LinearOrderedCell:
		if c.index != nil && o.index != nil && !slices.Equal(c.domain, o.domain) {
			return nil, mismatchf("incomparable orderings: different domains")
		}
		return o, nil
	case string:
		i, ok := c.index[o]
		if !ok {
			return nil, mismatchf("symbol %q not in ordered domain", o)
		}
		return &LinearOrderedCell{domain: c.domain, index: c.index, lo: i, hi: i}, nil
	case []string:
		if len(o) == 0 {
			return nil, mismatchf("empty bound list for ordered cell")
		}
		lo, hi := len(c.domain), -1
		for _, s := range o {
			i, ok := c.index[s]
			if !ok {
				return nil, mismatchf("symbol %q not in ordered domain", s)
			}
			lo = min(lo, i)
			hi = max(hi, i)
		}
		return &LinearOrderedCell{domain: c.domain, index: c.index, lo: lo, hi: hi}, nil
	default:
		return nil, mismatchf("cannot coerce %T to LinearOrderedCell", v)
	}
}

func (c *LinearOrderedCell) entailedBy(o *LinearOrderedCell) bool {
	return o.lo >= c.lo && o.hi <= c.hi
}

func (c *LinearOrderedCell) contradicts(o *LinearOrderedCell) bool {
	return max(c.lo, o.lo) > min(c.hi, o.hi)
}

func (c *LinearOrderedCell) Merge(other any) error {
	o, err := c.coerce(other)
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
		return contradictionf("cannot merge [%s, %s] with [%s, %s]",
			c.domain[c.lo], c.domain[c.hi], o.domain[o.lo], o.domain[o.hi])
	default:
		c.lo = max(c.lo, o.lo)
		c.hi = min(c.hi, o.hi)
		return nil
	}
}

func (c *LinearOrderedCell) Entails(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return o.entailedBy(c), nil
}

func (c *LinearOrderedCell) IsEntailedBy(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o), nil
}

func (c *LinearOrderedCell) IsEqual(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return c.lo == o.lo && c.hi == o.hi, nil
}

func (c *LinearOrderedCell) Copy() Cell {
	return &LinearOrderedCell{domain: c.domain, index: c.index, lo: c.lo, hi: c.hi}
}

func (c *LinearOrderedCell) Stem() Cell {
	return &LinearOrderedCell{domain: c.domain, index: c.index, lo: 0, hi: len(c.domain) - 1}
}

func (c *LinearOrderedCell) String() string {
	return fmt.Sprintf("[%s, %s]", c.domain[c.lo], c.domain[c.hi])
}
