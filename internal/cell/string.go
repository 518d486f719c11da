package cell

import "strings"

// StringCell holds a lowercase string. One string entails another when the
// other appears in it as a character subsequence; merging keeps the more
// specific (longer) string and fails when neither is a subsequence of the
// other.
type StringCell struct {
	value string
}

// NewStringCell returns an empty string cell (lattice bottom).
func NewStringCell() *StringCell {
	return &StringCell{}
}

// NewString returns a string cell holding s, normalized.
func NewString(s string) *StringCell {
	return &StringCell{value: strings.ToLower(strings.TrimSpace(s))}
}

// Value returns the current string.
func (c *StringCell) Value() string {
	return c.value
}

func coerceString(v any) (*StringCell, error) {
	switch o := v.(type) {
	case *StringCell:
		return o, nil
	case string:
		return NewString(o), nil
	default:
		return nil, mismatchf("cannot coerce %T to StringCell", v)
	}
}

// subsequenceOf reports whether every rune of needle appears in order in
// haystack.
func subsequenceOf(needle, haystack string) bool {
	ns := []rune(needle)
	i := 0
	for _, r := range haystack {
		if i < len(ns) && ns[i] == r {
			i++
		}
	}
	return i == len(ns)
}

// entailedBy reports whether c's value appears as a subsequence of o's.
func (c *StringCell) entailedBy(o *StringCell) bool {
	if c.value == "" {
		return true
	}
	if o.value == "" {
		return false
	}
	return subsequenceOf(c.value, o.value)
}

func (c *StringCell) Merge(other any) error {
	o, err := coerceString(other)
	if err != nil {
		return err
	}
	switch {
	case c.value == o.value:
		return nil
	case o.entailedBy(c):
		return nil
	case c.entailedBy(o):
		c.value = o.value
		return nil
	default:
		return contradictionf("cannot merge %q with %q", c.value, o.value)
	}
}

func (c *StringCell) Entails(other any) (bool, error) {
	o, err := coerceString(other)
	if err != nil {
		return false, err
	}
	return o.entailedBy(c), nil
}

func (c *StringCell) IsEntailedBy(other any) (bool, error) {
	o, err := coerceString(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o), nil
}

func (c *StringCell) IsEqual(other any) (bool, error) {
	o, err := coerceString(other)
	if err != nil {
		return false, err
	}
	return c.value == o.value, nil
}

func (c *StringCell) Copy() Cell {
	return &StringCell{value: c.value}
}

func (c *StringCell) Stem() Cell {
	return NewStringCell()
}

func (c *StringCell) String() string {
	return c.value
}
