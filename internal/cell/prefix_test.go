package cell

import (
	"errors"
	"reflect"
	"testing"
)

func TestPrefixCellMerge(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []string
		want    []string
		wantErr error
	}{
		{"longer wins", []string{"go"}, []string{"go", "to", "store"}, []string{"go", "to", "store"}, nil},
		{"shorter is no-op", []string{"go", "to", "store"}, []string{"go"}, []string{"go", "to", "store"}, nil},
		{"equal is no-op", []string{"go", "to"}, []string{"go", "to"}, []string{"go", "to"}, nil},
		{"empty absorbs anything", nil, []string{"go"}, []string{"go"}, nil},
		{"divergent fails", []string{"go", "to"}, []string{"go", "from"}, []string{"go", "to"}, ErrContradiction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewPrefix(tt.a)
			err := a.Merge(NewPrefix(tt.b))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Merge() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Merge() unexpected error: %v", err)
			}
			if got := a.Values(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Values() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrefixCellEntailment(t *testing.T) {
	long := NewPrefix([]string{"a", "b", "c"})
	short := NewPrefix([]string{"a", "b"})
	other := NewPrefix([]string{"a", "x"})

	if got, _ := long.Entails(short); !got {
		t.Error("longer sequence should entail its prefix")
	}
	if got, _ := short.Entails(long); got {
		t.Error("prefix should not entail the longer sequence")
	}
	if got, _ := long.Entails(other); got {
		t.Error("divergent sequences should not entail each other")
	}
	if got, _ := short.IsEntailedBy(long); !got {
		t.Error("prefix should be entailed by its extension")
	}
}

func TestPrefixCellAppend(t *testing.T) {
	c := NewPrefixCell()
	c.Append("pick")
	c.Append("up")
	if got := c.Values(); !reflect.DeepEqual(got, []string{"pick", "up"}) {
		t.Errorf("Values() = %v, want [pick up]", got)
	}
	if err := c.Merge("pick"); err != nil {
		t.Errorf("merging own prefix: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestPrefixCellCopyIndependence(t *testing.T) {
	orig := NewPrefix([]string{"a"})
	cp := orig.Copy().(*PrefixCell)
	cp.Append("b")
	if orig.Len() != 1 {
		t.Errorf("original grew with copy: %v", orig.Values())
	}
}
