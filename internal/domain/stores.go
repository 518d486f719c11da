package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContextSetSummary is the listing projection of a stored context set.
type ContextSetSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Entities  int       `json:"entities"`
	CreatedAt time.Time `json:"created_at"`
}

// ContextSetStore persists context set specs. Implementations return the
// compiled set on read.
type ContextSetStore interface {
	Create(ctx context.Context, cs *ContextSet) error
	GetByID(ctx context.Context, id uuid.UUID) (*ContextSet, error)
	List(ctx context.Context, limit int) ([]ContextSetSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
