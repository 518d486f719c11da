package belief

import "fmt"

// Effect is a deferred transformation of a state, held until
// part_of_speech transitions to (or below) its trigger symbol. One-shot
// unless Persistent.
type Effect struct {
	Trigger    string
	Persistent bool
	Apply      func(*State) error
}

// AddEffect queues an effect. Effects fire in insertion order.
func (s *State) AddEffect(e *Effect) error {
	if e == nil || e.Apply == nil {
		return fmt.Errorf("effect has no apply function")
	}
	if e.Trigger == "" {
		return fmt.Errorf("effect has no trigger symbol")
	}
	s.effects = append(s.effects, e)
	return nil
}

// PendingEffects returns the number of queued effects.
func (s *State) PendingEffects() int { return len(s.effects) }

// SetPartOfSpeech moves the trigger symbol and fires every queued effect
// whose trigger matches the new value, in insertion order. A matching
// trigger is either the symbol itself or, when both symbols are taxonomy
// nodes, a generalization of it. Consumed one-shot effects are removed;
// an effect failure propagates and stops the scan.
func (s *State) SetPartOfSpeech(sym string) error {
	if sym == s.pos {
		return nil
	}
	s.pos = sym

	// Drain the queue first: a firing effect may register follow-up
	// effects, which land on s.effects and must survive the write-back.
	queue := s.effects
	s.effects = nil

	kept := queue[:0:0]
	for i, e := range queue {
		if !s.triggerMatches(e.Trigger, sym) {
			kept = append(kept, e)
			continue
		}
		if err := e.Apply(s); err != nil {
			// unfired effects stay queued, ahead of anything registered
			// during the scan
			kept = append(kept, queue[i+1:]...)
			s.effects = append(kept, s.effects...)
			return fmt.Errorf("deferred effect on %q: %w", e.Trigger, err)
		}
		if e.Persistent {
			kept = append(kept, e)
		}
	}
	s.effects = append(kept, s.effects...)
	return nil
}

func (s *State) triggerMatches(trigger, sym string) bool {
	if trigger == sym {
		return true
	}
	tax := s.dom.Taxonomy()
	return tax.Contains(trigger) && tax.Contains(sym) && tax.Reaches(trigger, sym)
}
