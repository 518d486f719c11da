package cell

import (
	"fmt"
	"sort"
	"strings"
)

// DictCell is a record of named child cells. Unlike the scalar variants its
// field set may grow on merge: fields present only in the incoming value are
// adopted, shared fields merge recursively. A failed merge leaves the
// receiver unchanged (the merge works on a snapshot and commits only on
// success).
type DictCell struct {
	fields map[string]Cell
}

// NewDictCell returns an empty record (lattice bottom).
func NewDictCell() *DictCell {
	return &DictCell{fields: make(map[string]Cell)}
}

// DictOf returns a record populated with the given fields. The cells are
// adopted, not copied.
func DictOf(fields map[string]Cell) *DictCell {
	d := NewDictCell()
	for k, v := range fields {
		d.fields[k] = v
	}
	return d
}

// Keys returns the field names in sorted order.
func (c *DictCell) Keys() []string {
	out := make([]string, 0, len(c.fields))
	for k := range c.fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of fields.
func (c *DictCell) Len() int {
	return len(c.fields)
}

// Field returns the named child cell.
func (c *DictCell) Field(name string) (Cell, bool) {
	f, ok := c.fields[name]
	return f, ok
}

// Put sets a field, replacing any existing cell. Use MergeAt to combine with
// an existing value instead.
func (c *DictCell) Put(name string, value Cell) {
	c.fields[name] = value
}

// At returns the cell at the end of path, descending through nested records.
func (c *DictCell) At(path []string) (Cell, error) {
	var cur Cell = c
	for i, key := range path {
		d, ok := cur.(*DictCell)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a record", ErrPathNotFound, strings.Join(path[:i], "."))
		}
		cur, ok = d.fields[key]
		if !ok {
			return nil, fmt.Errorf("%w: no field %q", ErrPathNotFound, strings.Join(path[:i+1], "."))
		}
	}
	return cur, nil
}

// ContainsPath reports whether path resolves to a cell.
func (c *DictCell) ContainsPath(path []string) bool {
	_, err := c.At(path)
	return err == nil
}

// AddAt inserts leaf at path, creating intermediate records as needed. Fails
// if the path already resolves or crosses a non-record cell.
func (c *DictCell) AddAt(path []string, leaf Cell) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrPathNotFound)
	}
	cur := c
	for _, key := range path[:len(path)-1] {
		next, ok := cur.fields[key]
		if !ok {
			d := NewDictCell()
			cur.fields[key] = d
			cur = d
			continue
		}
		d, ok := next.(*DictCell)
		if !ok {
			return fmt.Errorf("%w: field %q is not a record", ErrPathNotFound, key)
		}
		cur = d
	}
	last := path[len(path)-1]
	if _, exists := cur.fields[last]; exists {
		return fmt.Errorf("field %q already exists", last)
	}
	cur.fields[last] = leaf
	return nil
}

// MergeAt merges value into the cell at path. A new leaf field may be added
// only when value is itself a Cell; merging a bare scalar into a missing
// field is a path error because the variant cannot be inferred.
func (c *DictCell) MergeAt(path []string, value any) error {
	if len(path) == 0 {
		return c.Merge(value)
	}
	target, err := c.At(path)
	if err != nil {
		leaf, ok := value.(Cell)
		if !ok {
			return err
		}
		return c.AddAt(path, leaf.Copy())
	}
	return target.Merge(value)
}

func coerceDict(v any) (*DictCell, error) {
	switch o := v.(type) {
	case *DictCell:
		return o, nil
	case map[string]Cell:
		return DictOf(o), nil
	default:
		return nil, mismatchf("cannot coerce %T to DictCell", v)
	}
}

// entailedBy reports whether o carries at least c's fields, each at least as
// specific.
func (c *DictCell) entailedBy(o *DictCell) (bool, error) {
	for key, val := range c.fields {
		oval, ok := o.fields[key]
		if !ok {
			return false, nil
		}
		ent, err := oval.Entails(val)
		if err != nil {
			return false, err
		}
		if !ent {
			return false, nil
		}
	}
	return true, nil
}

func (c *DictCell) Merge(other any) error {
	o, err := coerceDict(other)
	if err != nil {
		return err
	}
	// Work on a snapshot so a mid-recursion failure cannot leave the
	// receiver half-merged.
	work := c.Copy().(*DictCell)
	for key, oval := range o.fields {
		cur, ok := work.fields[key]
		if !ok {
			work.fields[key] = oval.Copy()
			continue
		}
		if err := cur.Merge(oval); err != nil {
			return err
		}
	}
	c.fields = work.fields
	return nil
}

func (c *DictCell) Entails(other any) (bool, error) {
	o, err := coerceDict(other)
	if err != nil {
		return false, err
	}
	return o.entailedBy(c)
}

func (c *DictCell) IsEntailedBy(other any) (bool, error) {
	o, err := coerceDict(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o)
}

func (c *DictCell) IsEqual(other any) (bool, error) {
	o, err := coerceDict(other)
	if err != nil {
		return false, err
	}
	if len(c.fields) != len(o.fields) {
		return false, nil
	}
	for key, val := range c.fields {
		oval, ok := o.fields[key]
		if !ok {
			return false, nil
		}
		eq, err := val.IsEqual(oval)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

func (c *DictCell) Copy() Cell {
	fields := make(map[string]Cell, len(c.fields))
	for k, v := range c.fields {
		fields[k] = v.Copy()
	}
	return &DictCell{fields: fields}
}

func (c *DictCell) Stem() Cell {
	return NewDictCell()
}

func (c *DictCell) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, k := range c.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, c.fields[k])
	}
	b.WriteString("}")
	return b.String()
}
