package cell

// Truth is a three-valued logic value. Unknown is the lattice bottom; True
// and False are incomparable maximal elements.
type Truth uint8

const (
	Unknown Truth = iota
	True
	False
)

func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// BoolCell holds a three-valued boolean.
type BoolCell struct {
	value Truth
}

// NewBoolCell returns a BoolCell at the lattice bottom (Unknown).
func NewBoolCell() *BoolCell {
	return &BoolCell{value: Unknown}
}

// NewBool returns a BoolCell holding t.
func NewBool(t Truth) *BoolCell {
	return &BoolCell{value: t}
}

// Value returns the current truth value.
func (c *BoolCell) Value() Truth {
	return c.value
}

func coerceBool(v any) (*BoolCell, error) {
	switch o := v.(type) {
	case *BoolCell:
		return o, nil
	case Truth:
		return &BoolCell{value: o}, nil
	case bool:
		if o {
			return &BoolCell{value: True}, nil
		}
		return &BoolCell{value: False}, nil
	case nil:
		return &BoolCell{value: Unknown}, nil
	default:
		return nil, mismatchf("cannot coerce %T to BoolCell", v)
	}
}

func (c *BoolCell) entailedBy(o *BoolCell) bool {
	return c.value == Unknown || c.value == o.value
}

func (c *BoolCell) Merge(other any) error {
	o, err := coerceBool(other)
	if err != nil {
		return err
	}
	switch {
	case c.value == o.value:
		return nil
	case o.value == Unknown:
		return nil
	case c.value == Unknown:
		c.value = o.value
		return nil
	default:
		return contradictionf("cannot merge %s with %s", c.value, o.value)
	}
}

func (c *BoolCell) Entails(other any) (bool, error) {
	o, err := coerceBool(other)
	if err != nil {
		return false, err
	}
	return o.entailedBy(c), nil
}

func (c *BoolCell) IsEntailedBy(other any) (bool, error) {
	o, err := coerceBool(other)
	if err != nil {
		return false, err
	}
	return c.entailedBy(o), nil
}

func (c *BoolCell) IsEqual(other any) (bool, error) {
	o, err := coerceBool(other)
	if err != nil {
		return false, err
	}
	return c.value == o.value, nil
}

func (c *BoolCell) Copy() Cell {
	return &BoolCell{value: c.value}
}

func (c *BoolCell) Stem() Cell {
	return NewBoolCell()
}

func (c *BoolCell) String() string {
	return c.value.String()
}
