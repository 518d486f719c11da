package cell

import (
	"slices"
	"strings"
)

// PrefixCell holds an ordered symbol sequence. Two sequences merge only when
// one is a prefix of the other; the longer wins.
type PrefixCell struct {
	seq []string
}

// NewPrefixCell returns an empty prefix cell.
func NewPrefixCell() *PrefixCell {
	return &PrefixCell{}
}

// NewPrefix returns a prefix cell holding seq.
func NewPrefix(seq []string) *PrefixCell {
	owned := make([]string, len(seq))
	copy(owned, seq)
	return &PrefixCell{seq: owned}
}

// Values returns a copy of the sequence.
func (c *PrefixCell) Values() []string {
	out := make([]string, len(c.seq))
	copy(out, c.seq)
	return out
}

// Len returns the sequence length.
func (c *PrefixCell) Len() int {
	return len(c.seq)
}

// Append extends the sequence by one element.
func (c *PrefixCell) Append(s string) {
	c.seq = append(c.seq, s)
}

func coercePrefix(v any) (*PrefixCell, error) {
	switch o := v.(type) {
	case *PrefixCell:
		return o, nil
	case []string:
		return NewPrefix(o), nil
	case string:
		return NewPrefix([]string{o}), nil
	default:
		return nil, mismatchf("cannot coerce %T to PrefixCell", v)
	}
}

// entailedBy reports whether c's sequence is a prefix of o's.
func (c *PrefixCell) entailedBy(o *PrefixCell) bool {
	if len(o.seq) < len(c.seq) {
		return false
	}
	return slices.Equal(c.seq, o.seq[:len(c.seq)])
}

func (c *PrefixCell) Merge(other any) error {
	o, err := coercePrefix(other)
	if err != nil {
		return err
	}
	switch {
	case c.entailedBy(o):
		c.seq = append(c.seq[:0:0], o.seq...)
		return nil
	case o.entailedBy(c):
		return nil
	default:
		return contradictionf("neither sequence is a prefix of the other")
	}
}

func (c *PrefixCell) Entails(other any) (bool, error) {
	o, err := coercePrefix(other)
	if err != nil {
		return false, err
	}
	return o.entailedBy(c), nil
}

func (c *PrefixCell) IsEntailedBy(other any) (bool, error) {
	o, err := coercePrefix(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o), nil
}

func (c *PrefixCell) IsEqual(other any) (bool, error) {
	o, err := coercePrefix(other)
	if err != nil {
		return false, err
	}
	return slices.Equal(c.seq, o.seq), nil
}

func (c *PrefixCell) Copy() Cell {
	return NewPrefix(c.seq)
}

func (c *PrefixCell) Stem() Cell {
	return NewPrefixCell()
}

func (c *PrefixCell) String() string {
	return "[" + strings.Join(c.seq, ", ") + "]"
}
