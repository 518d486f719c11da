package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Harshitk-cp/coref/internal/cell"
)

// KindField is the reserved entity attribute holding the taxonomy position.
const KindField = "kind"

// Entity is one member of a context set: a record cell carrying a taxonomy
// kind plus typed attributes. The index identifies it for the lifetime of
// the set.
type Entity struct {
	Index int
	Props *cell.DictCell
}

// Kind returns the entity's taxonomy node, or "" when the kind field is
// missing or unpositioned.
func (e *Entity) Kind() string {
	f, ok := e.Props.Field(KindField)
	if !ok {
		return ""
	}
	p, ok := f.(*cell.PartialOrderedCell)
	if !ok {
		return ""
	}
	return p.Node()
}

// ContextSet is a fixed, ordered universe of entities sharing one taxonomy.
// Immutable after construction; belief states hold it by reference.
type ContextSet struct {
	ID        uuid.UUID
	Name      string
	Spec      Spec
	CreatedAt time.Time

	taxonomy *cell.Taxonomy
	entities []*Entity
}

// NewContextSet assembles a context set from already-built entity cells.
// Entity indices are assigned from position.
func NewContextSet(name string, tax *cell.Taxonomy, props []*cell.DictCell) (*ContextSet, error) {
	if tax == nil {
		return nil, fmt.Errorf("context set %q has no taxonomy", name)
	}
	cs := &ContextSet{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		taxonomy:  tax,
		entities:  make([]*Entity, len(props)),
	}
	for i, p := range props {
		cs.entities[i] = &Entity{Index: i, Props: p}
	}
	return cs, nil
}

// Taxonomy returns the shared kind order.
func (cs *ContextSet) Taxonomy() *cell.Taxonomy { return cs.taxonomy }

// Len returns the number of entities.
func (cs *ContextSet) Len() int { return len(cs.entities) }

// Entity returns the entity at index i.
func (cs *ContextSet) Entity(i int) *Entity { return cs.entities[i] }

// Entities returns the entities in index order. The slice is a copy; the
// entities themselves are shared.
func (cs *ContextSet) Entities() []*Entity {
	out := make([]*Entity, len(cs.entities))
	copy(out, cs.entities)
	return out
}
