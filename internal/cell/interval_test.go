package cell

import (
	"errors"
	"math"
	"testing"
)

func mustInterval(t *testing.T, lo, hi float64) *IntervalCell {
	t.Helper()
	c, err := NewInterval(lo, hi)
	if err != nil {
		t.Fatalf("NewInterval(%v, %v): %v", lo, hi, err)
	}
	return c
}

func TestIntervalCellMerge(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name           string
		a, b           [2]float64
		wantLo, wantHi float64
		wantErr        error
	}{
		{"overlap narrows", [2]float64{0, 10}, [2]float64{5, 20}, 5, 10, nil},
		{"contained keeps narrower", [2]float64{0, 100}, [2]float64{10, 20}, 10, 20, nil},
		{"equal is no-op", [2]float64{3, 7}, [2]float64{3, 7}, 3, 7, nil},
		{"unbounded absorbs", [2]float64{2, inf}, [2]float64{0, 9}, 2, 9, nil},
		{"disjoint fails", [2]float64{5, 10}, [2]float64{20, 30}, 5, 10, ErrContradiction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustInterval(t, tt.a[0], tt.a[1])
			err := a.Merge(mustInterval(t, tt.b[0], tt.b[1]))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Merge() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Merge() unexpected error: %v", err)
			}
			lo, hi := a.Bounds()
			if lo != tt.wantLo || hi != tt.wantHi {
				t.Errorf("bounds = [%v, %v], want [%v, %v]", lo, hi, tt.wantLo, tt.wantHi)
			}
		})
	}
}

func TestIntervalCellDefault(t *testing.T) {
	c := NewIntervalCell()
	lo, hi := c.Bounds()
	if lo != 0 || !math.IsInf(hi, 1) {
		t.Fatalf("default bounds = [%v, %v], want [0, +Inf)", lo, hi)
	}
}

func TestIntervalCellCoercion(t *testing.T) {
	c := NewIntervalCell()
	if err := c.Merge(5); err != nil {
		t.Fatalf("Merge(5): %v", err)
	}
	if !c.IsExact() || c.Low() != 5 {
		t.Errorf("after Merge(5), cell = %v, want exact 5", c)
	}

	c2 := NewIntervalCell()
	if err := c2.Merge([]float64{2, 8}); err != nil {
		t.Fatalf("Merge([2,8]): %v", err)
	}
	if lo, hi := c2.Bounds(); lo != 2 || hi != 8 {
		t.Errorf("bounds = [%v, %v], want [2, 8]", lo, hi)
	}

	if err := c2.Merge("three"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Merge(string) error = %v, want ErrTypeMismatch", err)
	}
}

func TestIntervalCellEntailment(t *testing.T) {
	wide := mustInterval(t, 0, 100)
	narrow := mustInterval(t, 10, 20)

	if got, _ := narrow.Entails(wide); !got {
		t.Error("narrow should entail wide")
	}
	if got, _ := wide.Entails(narrow); got {
		t.Error("wide should not entail narrow")
	}
	if got, _ := wide.IsEntailedBy(narrow); !got {
		t.Error("wide should be entailed by narrow")
	}
}

func TestIntervalCellBoundedMergeOps(t *testing.T) {
	c := NewIntervalCell()
	if err := c.MergeAtLeast(2); err != nil {
		t.Fatalf("MergeAtLeast: %v", err)
	}
	if c.Low() != 2 {
		t.Errorf("low = %v, want 2", c.Low())
	}
	if err := c.MergeAtMost(9); err != nil {
		t.Fatalf("MergeAtMost: %v", err)
	}
	if c.High() != 9 {
		t.Errorf("high = %v, want 9", c.High())
	}
	if err := c.MergeAtLeast(10); !errors.Is(err, ErrContradiction) {
		t.Errorf("MergeAtLeast above high = %v, want ErrContradiction", err)
	}
}

func TestIntervalCellFailedMergeLeavesOriginal(t *testing.T) {
	a := mustInterval(t, 5, 10)
	if err := a.Merge(mustInterval(t, 20, 30)); !errors.Is(err, ErrContradiction) {
		t.Fatalf("expected contradiction, got %v", err)
	}
	if lo, hi := a.Bounds(); lo != 5 || hi != 10 {
		t.Errorf("original mutated: [%v, %v]", lo, hi)
	}
}
