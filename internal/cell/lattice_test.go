package cell

import (
	"errors"
	"testing"
)

// latticeFixtures builds, per variant, a slice of comparable cells to run the
// shared algebraic laws over. Every pair in a slice must merge without
// contradiction.
func latticeFixtures(t *testing.T) map[string][]Cell {
	t.Helper()

	setA := mustSet(t, []string{"a", "b", "c", "d"})
	setB := mustSet(t, []string{"a", "b", "c", "d"})
	if err := setB.Merge([]string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}
	setC := mustSet(t, []string{"a", "b", "c", "d"})
	if err := setC.Merge([]string{"b", "c", "d"}); err != nil {
		t.Fatal(err)
	}

	tax := shapeTaxonomy(t)
	posA := NewPartialOrderedCell(tax)
	posB, err := NewPartialOrdered(tax, "shape")
	if err != nil {
		t.Fatal(err)
	}
	posC, err := NewPartialOrdered(tax, "polygon")
	if err != nil {
		t.Fatal(err)
	}

	ordA, err := NewLinearOrderedCell(sizeOrder)
	if err != nil {
		t.Fatal(err)
	}

	return map[string][]Cell{
		"bool":     {NewBoolCell(), NewBoolCell(), NewBool(True)},
		"interval": {NewIntervalCell(), mustInterval(t, 0, 10), mustInterval(t, 5, 20)},
		"set":      {setA, setB, setC},
		"ordered":  {ordA, mustRange("small", "large"), mustRange("medium", "huge")},
		"prefix":   {NewPrefixCell(), NewPrefix([]string{"a"}), NewPrefix([]string{"a", "b"})},
		"string":   {NewStringCell(), NewString("gt"), NewString("goat")},
		"partial":  {posA, posB, posC},
		"dict": {
			NewDictCell(),
			DictOf(map[string]Cell{"n": mustInterval(t, 0, 10)}),
			DictOf(map[string]Cell{"n": mustInterval(t, 5, 20), "ok": NewBool(True)}),
		},
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	for name, cells := range latticeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			for _, c := range cells {
				merged := c.Copy()
				if err := merged.Merge(c); err != nil {
					t.Fatalf("self-merge failed: %v", err)
				}
				eq, err := merged.IsEqual(c)
				if err != nil {
					t.Fatal(err)
				}
				if !eq {
					t.Errorf("self-merge changed %v to %v", c, merged)
				}
			}
		})
	}
}

func TestMergeIsCommutative(t *testing.T) {
	for name, cells := range latticeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			for i, a := range cells {
				for j, b := range cells {
					ab := a.Copy()
					errAB := ab.Merge(b)
					ba := b.Copy()
					errBA := ba.Merge(a)
					if (errAB == nil) != (errBA == nil) {
						t.Fatalf("pair (%d, %d): asymmetric failure: %v vs %v", i, j, errAB, errBA)
					}
					if errAB != nil {
						continue
					}
					eq, err := ab.IsEqual(ba)
					if err != nil {
						t.Fatal(err)
					}
					if !eq {
						t.Errorf("pair (%d, %d): %v != %v", i, j, ab, ba)
					}
				}
			}
		})
	}
}

func TestMergeIsAssociative(t *testing.T) {
	for name, cells := range latticeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			a, b, c := cells[0], cells[1], cells[2]

			left := a.Copy()
			if err := left.Merge(b); err != nil {
				t.Fatal(err)
			}
			if err := left.Merge(c); err != nil {
				t.Fatal(err)
			}

			bc := b.Copy()
			if err := bc.Merge(c); err != nil {
				t.Fatal(err)
			}
			right := a.Copy()
			if err := right.Merge(bc); err != nil {
				t.Fatal(err)
			}

			eq, err := left.IsEqual(right)
			if err != nil {
				t.Fatal(err)
			}
			if !eq {
				t.Errorf("(a+b)+c = %v, a+(b+c) = %v", left, right)
			}
		})
	}
}

func TestMergeResultEntailsBothInputs(t *testing.T) {
	for name, cells := range latticeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			for i, a := range cells {
				for j, b := range cells {
					merged := a.Copy()
					if err := merged.Merge(b); err != nil {
						if !errors.Is(err, ErrContradiction) {
							t.Fatalf("pair (%d, %d): %v", i, j, err)
						}
						continue
					}
					if got, _ := merged.Entails(a); !got {
						t.Errorf("pair (%d, %d): merge result does not entail first input", i, j)
					}
					if got, _ := merged.Entails(b); !got {
						t.Errorf("pair (%d, %d): merge result does not entail second input", i, j)
					}
				}
			}
		})
	}
}

func TestEntailmentIsReflexiveAndTransitive(t *testing.T) {
	for name, cells := range latticeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			for _, c := range cells {
				if got, _ := c.Entails(c); !got {
					t.Errorf("%v does not entail itself", c)
				}
			}
			// fixtures are ordered least- to most-specific in positions 0..2
			// for the comparable chains
			a, c := cells[0], cells[2]
			if got, _ := c.Entails(a); !got {
				t.Errorf("most specific %v should entail least specific %v", c, a)
			}
		})
	}
}

func TestCopyIsIndependent(t *testing.T) {
	for name, cells := range latticeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			orig := cells[0]
			before := orig.Copy()
			cp := orig.Copy()
			if err := cp.Merge(cells[2]); err != nil {
				t.Fatal(err)
			}
			eq, err := orig.IsEqual(before)
			if err != nil {
				t.Fatal(err)
			}
			if !eq {
				t.Errorf("merging a copy mutated the original: %v", orig)
			}
		})
	}
}

func TestStemIsBottom(t *testing.T) {
	for name, cells := range latticeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			for _, c := range cells {
				stem := c.Stem()
				if got, _ := c.Entails(stem); !got {
					t.Errorf("%v should entail its stem", c)
				}
			}
		})
	}
}
