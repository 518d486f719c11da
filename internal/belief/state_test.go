package belief

import (
	"errors"
	"testing"

	"github.com/Harshitk-cp/coref/internal/cell"
	"github.com/Harshitk-cp/coref/internal/domain"
)

func TestMergeStemsNewConstraintFields(t *testing.T) {
	s := NewState(sixEntitySet(t))
	if err := s.Merge([]string{FieldTarget, "color"}, "red"); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	got, err := s.At([]string{FieldTarget, "color"})
	if err != nil {
		t.Fatal(err)
	}
	set := got.(*cell.SetIntersectionCell)
	if set.Len() != 1 || !set.Contains("red") {
		t.Errorf("target color = %v, want {red}", set)
	}
}

func TestMergeContradictionLeavesStateUsable(t *testing.T) {
	s := NewState(sixEntitySet(t))
	if err := s.Merge([]string{FieldTarget, "color"}, "red"); err != nil {
		t.Fatal(err)
	}
	err := s.Merge([]string{FieldTarget, "color"}, "blue")
	if !errors.Is(err, cell.ErrContradiction) {
		t.Fatalf("Merge error = %v, want ErrContradiction", err)
	}
	// the failed merge did not narrow anything: still the three reds
	if got := mustSize(t, s); got != 7 {
		t.Errorf("Size() after failed merge = %d, want 7", got)
	}
}

func TestMergeFailedStemLeavesNoField(t *testing.T) {
	s := NewState(sixEntitySet(t))
	err := s.Merge([]string{FieldTarget, "color"}, "purple")
	if !errors.Is(err, cell.ErrTypeMismatch) {
		t.Fatalf("Merge error = %v, want ErrTypeMismatch", err)
	}
	if s.Target().Len() != 0 {
		t.Errorf("failed stem merge left field behind: %v", s.Target().Keys())
	}
}

func TestMergeUnknownPath(t *testing.T) {
	s := NewState(sixEntitySet(t))
	err := s.Merge([]string{FieldTarget, "weight"}, 3)
	if !errors.Is(err, cell.ErrPathNotFound) {
		t.Errorf("Merge error = %v, want ErrPathNotFound", err)
	}
	if err := s.Merge(nil, 3); !errors.Is(err, cell.ErrPathNotFound) {
		t.Errorf("empty path error = %v, want ErrPathNotFound", err)
	}
}

func TestMergeInvalidatesCachedClassification(t *testing.T) {
	s := NewState(sixEntitySet(t))
	if got := mustSize(t, s); got != 63 {
		t.Fatal("precondition failed")
	}
	if err := s.Merge([]string{FieldTarget, domain.KindField}, "square"); err != nil {
		t.Fatal(err)
	}
	if got := mustSize(t, s); got != 7 {
		t.Errorf("Size() after constraint merge = %d, want 7", got)
	}
}

func TestMergeBoundOpsRejectNonIntervalPaths(t *testing.T) {
	s := NewState(sixEntitySet(t))
	if err := s.Merge([]string{FieldTarget, "color"}, "red"); err != nil {
		t.Fatal(err)
	}
	err := s.MergeWith([]string{FieldTarget, "color"}, 2, OpAtLeast)
	if !errors.Is(err, cell.ErrTypeMismatch) {
		t.Errorf("MergeWith on set path = %v, want ErrTypeMismatch", err)
	}
}

func TestFailedBoundOpLeavesNoField(t *testing.T) {
	s := NewState(sixEntitySet(t))
	err := s.MergeWith([]string{FieldTarget, "color"}, 2, OpAtLeast)
	if !errors.Is(err, cell.ErrTypeMismatch) {
		t.Fatalf("MergeWith error = %v, want ErrTypeMismatch", err)
	}
	if s.Target().Len() != 0 {
		t.Errorf("failed bound merge left field behind: %v", s.Target().Keys())
	}
	if got := mustSize(t, s); got != 63 {
		t.Errorf("Size() after failed bound merge = %d, want 63 untouched", got)
	}
}

func TestCopyIndependence(t *testing.T) {
	orig := NewState(sixEntitySet(t))
	if err := orig.Merge([]string{FieldTarget, domain.KindField}, "shape"); err != nil {
		t.Fatal(err)
	}

	fork := orig.Copy()
	if err := fork.Merge([]string{FieldTarget, domain.KindField}, "square"); err != nil {
		t.Fatal(err)
	}
	if err := fork.Merge([]string{FieldTargetArity}, 2); err != nil {
		t.Fatal(err)
	}

	if got := mustSize(t, fork); got != 3 {
		t.Errorf("fork Size() = %d, want 3 (C(3,2))", got)
	}
	if got := mustSize(t, orig); got != 63 {
		t.Errorf("original Size() = %d, want 63 untouched", got)
	}
}

func TestEnvironmentVariablesAreWriteOnce(t *testing.T) {
	s := NewState(sixEntitySet(t))
	if err := s.SetEnv("speaker", "sam"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEnv("speaker", "sam"); err != nil {
		t.Errorf("re-setting the same value should be a no-op: %v", err)
	}
	err := s.SetEnv("speaker", "alex")
	if !errors.Is(err, cell.ErrContradiction) {
		t.Errorf("conflicting env write = %v, want ErrContradiction", err)
	}
	if v, ok := s.Env("speaker"); !ok || v != "sam" {
		t.Errorf("Env(speaker) = %q, %v", v, ok)
	}

	fork := s.Copy()
	if err := fork.SetEnv("mood", "calm"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Env("mood"); ok {
		t.Error("copy env write leaked into original")
	}
}

func TestDeferredEffectsFireOnTrigger(t *testing.T) {
	s := NewState(sixEntitySet(t))
	if err := s.AddEffect(&Effect{
		Trigger: "noun",
		Apply: func(st *State) error {
			return st.Merge([]string{FieldTarget, domain.KindField}, "square")
		},
	}); err != nil {
		t.Fatal(err)
	}

	// unrelated transition leaves the effect queued
	if err := s.Merge([]string{FieldPartOfSpeech}, "determiner"); err != nil {
		t.Fatal(err)
	}
	if s.PendingEffects() != 1 {
		t.Fatalf("effect consumed by non-matching trigger")
	}
	if got := mustSize(t, s); got != 63 {
		t.Fatalf("Size() = %d, effect fired early", got)
	}

	if err := s.Merge([]string{FieldPartOfSpeech}, "noun"); err != nil {
		t.Fatal(err)
	}
	if s.PendingEffects() != 0 {
		t.Error("one-shot effect not consumed")
	}
	if got := mustSize(t, s); got != 7 {
		t.Errorf("Size() after effect = %d, want 7", got)
	}
}

func TestDeferredEffectsFireInInsertionOrder(t *testing.T) {
	s := NewState(sixEntitySet(t))
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		if err := s.AddEffect(&Effect{
			Trigger: "noun",
			Apply: func(*State) error {
				order = append(order, i)
				return nil
			},
		}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SetPartOfSpeech("noun"); err != nil {
		t.Fatal(err)
	}
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("effects fired in order %v", order)
	}
}

func TestPersistentEffectsSurviveFiring(t *testing.T) {
	s := NewState(sixEntitySet(t))
	fired := 0
	if err := s.AddEffect(&Effect{
		Trigger:    "noun",
		Persistent: true,
		Apply:      func(*State) error { fired++; return nil },
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPartOfSpeech("noun"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPartOfSpeech("verb"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPartOfSpeech("noun"); err != nil {
		t.Fatal(err)
	}
	if fired != 2 {
		t.Errorf("persistent effect fired %d times, want 2", fired)
	}
	if s.PendingEffects() != 1 {
		t.Error("persistent effect removed from queue")
	}
}

func TestEffectsRegisteredDuringFiringSurvive(t *testing.T) {
	s := NewState(sixEntitySet(t))
	innerFired := false
	if err := s.AddEffect(&Effect{
		Trigger: "noun",
		Apply: func(st *State) error {
			return st.AddEffect(&Effect{
				Trigger: "verb",
				Apply:   func(*State) error { innerFired = true; return nil },
			})
		},
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.SetPartOfSpeech("noun"); err != nil {
		t.Fatal(err)
	}
	if s.PendingEffects() != 1 {
		t.Fatalf("PendingEffects() = %d, want the follow-up effect queued", s.PendingEffects())
	}

	if err := s.SetPartOfSpeech("verb"); err != nil {
		t.Fatal(err)
	}
	if !innerFired {
		t.Error("follow-up effect never fired")
	}
	if s.PendingEffects() != 0 {
		t.Errorf("PendingEffects() = %d after firing, want 0", s.PendingEffects())
	}
}

func TestTaxonomyTriggersMatchSpecializations(t *testing.T) {
	s := NewState(sixEntitySet(t))
	fired := false
	if err := s.AddEffect(&Effect{
		Trigger: "shape",
		Apply:   func(*State) error { fired = true; return nil },
	}); err != nil {
		t.Fatal(err)
	}
	// square is a shape in the set's taxonomy
	if err := s.SetPartOfSpeech("square"); err != nil {
		t.Fatal(err)
	}
	if !fired {
		t.Error("taxonomy-entailed trigger did not fire")
	}
}

func TestFailingEffectPropagatesContradiction(t *testing.T) {
	s := NewState(sixEntitySet(t))
	if err := s.Merge([]string{FieldTarget, "color"}, "red"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEffect(&Effect{
		Trigger: "noun",
		Apply: func(st *State) error {
			return st.Merge([]string{FieldTarget, "color"}, "blue")
		},
	}); err != nil {
		t.Fatal(err)
	}
	err := s.SetPartOfSpeech("noun")
	if !errors.Is(err, cell.ErrContradiction) {
		t.Errorf("SetPartOfSpeech error = %v, want ErrContradiction", err)
	}
}

func TestRepeatedPartOfSpeechIsNoOp(t *testing.T) {
	s := NewState(sixEntitySet(t))
	fired := 0
	if err := s.AddEffect(&Effect{
		Trigger:    "noun",
		Persistent: true,
		Apply:      func(*State) error { fired++; return nil },
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPartOfSpeech("noun"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPartOfSpeech("noun"); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Errorf("effect fired %d times on repeated value, want 1", fired)
	}
}
