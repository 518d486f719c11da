package cell

import (
	"fmt"
	"sort"
	"strings"
)

// symbolDomain is the fixed universe a set cell draws from. Immutable after
// construction, so copies share it by reference.
type symbolDomain struct {
	members map[string]struct{}
	sorted  []string
}

func newSymbolDomain(symbols []string) (*symbolDomain, error) {
	members := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if _, dup := members[s]; dup {
			return nil, fmt.Errorf("duplicate domain symbol %q", s)
		}
		members[s] = struct{}{}
	}
	sorted := make([]string, 0, len(members))
	for s := range members {
		sorted = append(sorted, s)
	}
	sort.Strings(sorted)
	return &symbolDomain{members: members, sorted: sorted}, nil
}

func (d *symbolDomain) contains(s string) bool {
	_, ok := d.members[s]
	return ok
}

// SetIntersectionCell is a shrinking set of symbols from a fixed universe.
// A nil value set is the lattice bottom and stands for the whole domain;
// merges intersect, so cardinality only decreases as knowledge accumulates.
type SetIntersectionCell struct {
	domain *symbolDomain
	values map[string]struct{} // nil means the full domain
}

// NewSetIntersectionCell returns a cell over the given symbol universe,
// initially unconstrained.
func NewSetIntersectionCell(domain []string) (*SetIntersectionCell, error) {
	d, err := newSymbolDomain(domain)
	if err != nil {
		return nil, err
	}
	return &SetIntersectionCell{domain: d}, nil
}

// Values returns the current possibilities in sorted order.
func (c *SetIntersectionCell) Values() []string {
	if c.values == nil {
		out := make([]string, len(c.domain.sorted))
		copy(out, c.domain.sorted)
		return out
	}
	out := make([]string, 0, len(c.values))
	for s := range c.values {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether s is still a possibility.
func (c *SetIntersectionCell) Contains(s string) bool {
	if c.values == nil {
		return c.domain.contains(s)
	}
	_, ok := c.values[s]
	return ok
}

// Len returns the number of remaining possibilities.
func (c *SetIntersectionCell) Len() int {
	if c.values == nil {
		return len(c.domain.members)
	}
	return len(c.values)
}

func (c *SetIntersectionCell) coerce(v any) (*SetIntersectionCell, error) {
	switch o := v.(type) {
	case *SetIntersectionCell:
		if !sameDomain(c.domain, o.domain) {
			return nil, mismatchf("set cells have different domains")
		}
		return o, nil
	case string:
		if !c.domain.contains(o) {
			return nil, mismatchf("symbol %q not in set domain", o)
		}
		return &SetIntersectionCell{domain: c.domain, values: map[string]struct{}{o: {}}}, nil
	case []string:
		values := make(map[string]struct{}, len(o))
		for _, s := range o {
			if !c.domain.contains(s) {
				return nil, mismatchf("symbol %q not in set domain", s)
			}
			values[s] = struct{}{}
		}
		return &SetIntersectionCell{domain: c.domain, values: values}, nil
	default:
		return nil, mismatchf("cannot coerce %T to SetIntersectionCell", v)
	}
}

func sameDomain(a, b *symbolDomain) bool {
	if a == b {
		return true
	}
	if len(a.members) != len(b.members) {
		return false
	}
	for s := range a.members {
		if !b.contains(s) {
			return false
		}
	}
	return true
}

func (c *SetIntersectionCell) current() map[string]struct{} {
	if c.values != nil {
		return c.values
	}
	return c.domain.members
}

// entailedBy reports whether o's possibilities are a subset of c's.
func (c *SetIntersectionCell) entailedBy(o *SetIntersectionCell) bool {
	cv, ov := c.current(), o.current()
	if len(ov) > len(cv) {
		return false
	}
	for s := range ov {
		if _, ok := cv[s]; !ok {
			return false
		}
	}
	return true
}

func (c *SetIntersectionCell) disjoint(o *SetIntersectionCell) bool {
	cv, ov := c.current(), o.current()
	for s := range ov {
		if _, ok := cv[s]; ok {
			return false
		}
	}
	return true
}

func (c *SetIntersectionCell) Merge(other any) error {
	o, err := c.coerce(other)
	if err != nil {
		return err
	}
	if c.disjoint(o) {
		return contradictionf("set intersection is empty")
	}
	cv, ov := c.current(), o.current()
	merged := make(map[string]struct{})
	for s := range cv {
		if _, ok := ov[s]; ok {
			merged[s] = struct{}{}
		}
	}
	c.values = merged
	return nil
}

func (c *SetIntersectionCell) Entails(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return o.entailedBy(c), nil
}

func (c *SetIntersectionCell) IsEntailedBy(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o), nil
}

func (c *SetIntersectionCell) IsEqual(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o) && o.entailedBy(c), nil
}

func (c *SetIntersectionCell) Copy() Cell {
	copied := &SetIntersectionCell{domain: c.domain}
	if c.values != nil {
		copied.values = make(map[string]struct{}, len(c.values))
		for s := range c.values {
			copied.values[s] = struct{}{}
		}
	}
	return copied
}

func (c *SetIntersectionCell) Stem() Cell {
	return &SetIntersectionCell{domain: c.domain}
}

func (c *SetIntersectionCell) String() string {
	return "{" + strings.Join(c.Values(), ", ") + "}"
}

// SetUnionCell accumulates symbols from a fixed universe; merges take the
// union, so the empty set is the lattice bottom.
type SetUnionCell struct {
	domain *symbolDomain
	values map[string]struct{}
}

// NewSetUnionCell returns an empty union cell over the given universe.
func NewSetUnionCell(domain []string) (*SetUnionCell, error) {
	d, err := newSymbolDomain(domain)
	if err != nil {
		return nil, err
	}
	return &SetUnionCell{domain: d, values: make(map[string]struct{})}, nil
}

// Values returns the accumulated symbols in sorted order.
func (c *SetUnionCell) Values() []string {
	out := make([]string, 0, len(c.values))
	for s := range c.values {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of accumulated symbols.
func (c *SetUnionCell) Len() int {
	return len(c.values)
}

func (c *SetUnionCell) coerce(v any) (*SetUnionCell, error) {
	switch o := v.(type) {
	case *SetUnionCell:
		if !sameDomain(c.domain, o.domain) {
			return nil, mismatchf("set cells have different domains")
		}
		return o, nil
	case string:
		if !c.domain.contains(o) {
			return nil, mismatchf("symbol %q not in set domain", o)
		}
		return &SetUnionCell{domain: c.domain, values: map[string]struct{}{o: {}}}, nil
	case []string:
		values := make(map[string]struct{}, len(o))
		for _, s := range o {
			if !c.domain.contains(s) {
				return nil, mismatchf("symbol %q not in set domain", s)
			}
			values[s] = struct{}{}
		}
		return &SetUnionCell{domain: c.domain, values: values}, nil
	default:
		return nil, mismatchf("cannot coerce %T to SetUnionCell", v)
	}
}

// entailedBy reports whether c's symbols are a subset of o's.
func (c *SetUnionCell) entailedBy(o *SetUnionCell) bool {
	for s := range c.values {
		if _, ok := o.values[s]; !ok {
			return false
		}
	}
	return true
}

func (c *SetUnionCell) Merge(other any) error {
	o, err := c.coerce(other)
	if err != nil {
		return err
	}
	for s := range o.values {
		c.values[s] = struct{}{}
	}
	return nil
}

func (c *SetUnionCell) Entails(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return o.entailedBy(c), nil
}

func (c *SetUnionCell) IsEntailedBy(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o), nil
}

func (c *SetUnionCell) IsEqual(other any) (bool, error) {
	o, err := c.coerce(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o) && o.entailedBy(c), nil
}

func (c *SetUnionCell) Copy() Cell {
	values := make(map[string]struct{}, len(c.values))
	for s := range c.values {
		values[s] = struct{}{}
	}
	return &SetUnionCell{domain: c.domain, values: values}
}

func (c *SetUnionCell) Stem() Cell {
	return &SetUnionCell{domain: c.domain, values: make(map[string]struct{})}
}

func (c *SetUnionCell) String() string {
	return "{" + strings.Join(c.Values(), ", ") + "}"
}
