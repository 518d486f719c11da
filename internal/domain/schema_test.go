package domain

import (
	"errors"
	"testing"

	"github.com/Harshitk-cp/coref/internal/cell"
)

func shapesSpec() Spec {
	return Spec{
		Name: "shapes",
		Taxonomy: TaxonomySpec{
			Edges: []cell.TaxonomyEdge{
				{Parent: "thing", Child: "shape"},
				{Parent: "shape", Child: "polygon"},
				{Parent: "shape", Child: "ellipse"},
				{Parent: "polygon", Child: "triangle"},
				{Parent: "polygon", Child: "square"},
				{Parent: "ellipse", Child: "circle"},
			},
		},
		Attributes: []AttributeSpec{
			{Name: "color", Type: AttributeSet, Domain: []string{"red", "green", "blue"}},
			{Name: "sides", Type: AttributeInterval},
			{Name: "filled", Type: AttributeBool},
		},
		Entities: []EntitySpec{
			{Kind: "square", Values: map[string]any{"color": "red", "sides": float64(4), "filled": true}},
			{Kind: "triangle", Values: map[string]any{"color": "blue", "sides": float64(3)}},
			{Kind: "circle", Values: map[string]any{"color": "red"}},
		},
	}
}

func TestCompile(t *testing.T) {
	cs, err := Compile(shapesSpec())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if cs.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", cs.Len())
	}
	if cs.Taxonomy().Root() != "thing" {
		t.Errorf("taxonomy root = %q", cs.Taxonomy().Root())
	}

	e := cs.Entity(0)
	if e.Kind() != "square" {
		t.Errorf("entity 0 kind = %q, want square", e.Kind())
	}
	sides, err := e.Props.At([]string{"sides"})
	if err != nil {
		t.Fatal(err)
	}
	if !sides.(*cell.IntervalCell).IsExact() || sides.(*cell.IntervalCell).Low() != 4 {
		t.Errorf("entity 0 sides = %v, want 4", sides)
	}

	// undeclared attributes stay at their stem
	filled, err := cs.Entity(1).Props.At([]string{"filled"})
	if err != nil {
		t.Fatal(err)
	}
	if filled.(*cell.BoolCell).Value() != cell.Unknown {
		t.Errorf("entity 1 filled = %v, want unknown", filled)
	}
}

func TestCompileEntitiesEntailKindQueries(t *testing.T) {
	cs, err := Compile(shapesSpec())
	if err != nil {
		t.Fatal(err)
	}
	poly, err := cell.NewPartialOrdered(cs.Taxonomy(), "polygon")
	if err != nil {
		t.Fatal(err)
	}
	query := cell.DictOf(map[string]cell.Cell{KindField: poly})

	wantPoly := []bool{true, true, false} // square, triangle, circle
	for i, want := range wantPoly {
		got, err := cs.Entity(i).Props.Entails(query)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("entity %d entails polygon = %v, want %v", i, got, want)
		}
	}
}

func TestCompileRejectsBadSpecs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantErr error // nil means any error
	}{
		{"missing name", func(s *Spec) { s.Name = "" }, nil},
		{"cyclic taxonomy", func(s *Spec) {
			s.Taxonomy.Edges = append(s.Taxonomy.Edges, cell.TaxonomyEdge{Parent: "square", Child: "thing"})
		}, cell.ErrCycleDetected},
		{"reserved attribute", func(s *Spec) {
			s.Attributes = append(s.Attributes, AttributeSpec{Name: KindField, Type: AttributeBool})
		}, nil},
		{"duplicate attribute", func(s *Spec) {
			s.Attributes = append(s.Attributes, AttributeSpec{Name: "color", Type: AttributeBool})
		}, nil},
		{"unknown attribute type", func(s *Spec) {
			s.Attributes[0].Type = "vector"
		}, nil},
		{"unknown kind", func(s *Spec) { s.Entities[0].Kind = "pentagon" }, nil},
		{"undeclared value", func(s *Spec) { s.Entities[0].Values["weight"] = 1.5 }, nil},
		{"value outside domain", func(s *Spec) { s.Entities[0].Values["color"] = "purple" }, cell.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := shapesSpec()
			tt.mutate(&spec)
			_, err := Compile(spec)
			if err == nil {
				t.Fatal("Compile() succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	if got := NormalizeValue(true); got != cell.True {
		t.Errorf("NormalizeValue(true) = %v", got)
	}
	if got, ok := NormalizeValue([]any{"a", "b"}).([]string); !ok || len(got) != 2 {
		t.Errorf("string list not normalized: %v", got)
	}
	if got, ok := NormalizeValue([]any{1.0, 2.0}).([]float64); !ok || got[1] != 2 {
		t.Errorf("number list not normalized: %v", got)
	}
}
