package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/coref/internal/belief"
	"github.com/Harshitk-cp/coref/internal/domain"
	"github.com/Harshitk-cp/coref/internal/store"
)

var (
	ErrContextSetNotFound = errors.New("context set not found")
	ErrInvalidSpec        = errors.New("invalid context set spec")
	ErrSessionNotFound    = errors.New("session not found")
	ErrEmptyMergePath     = errors.New("merge path is required")
	ErrInvalidMergeOp     = errors.New("invalid merge op")
)

// BeliefService mediates between the HTTP surface and the lattice core:
// context sets go through the persistent store, sessions are live belief
// states held in memory.
type BeliefService struct {
	contextSets domain.ContextSetStore
	sessions    *store.SessionStore
	logger      *zap.Logger
}

func NewBeliefService(cs domain.ContextSetStore, ss *store.SessionStore, logger *zap.Logger) *BeliefService {
	return &BeliefService{
		contextSets: cs,
		sessions:    ss,
		logger:      logger,
	}
}

func (s *BeliefService) CreateContextSet(ctx context.Context, spec domain.Spec) (*domain.ContextSet, error) {
	cs, err := domain.Compile(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if err := s.contextSets.Create(ctx, cs); err != nil {
		return nil, err
	}
	s.logger.Info("context set created",
		zap.String("id", cs.ID.String()),
		zap.String("name", cs.Name),
		zap.Int("entities", cs.Len()))
	return cs, nil
}

func (s *BeliefService) GetContextSet(ctx context.Context, id uuid.UUID) (*domain.ContextSet, error) {
	cs, err := s.contextSets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrContextSetNotFound
		}
		return nil, err
	}
	return cs, nil
}

func (s *BeliefService) ListContextSets(ctx context.Context, limit int) ([]domain.ContextSetSummary, error) {
	return s.contextSets.List(ctx, limit)
}

func (s *BeliefService) DeleteContextSet(ctx context.Context, id uuid.UUID) error {
	if err := s.contextSets.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrContextSetNotFound
		}
		return err
	}
	return nil
}

// CreateSession opens a fresh, unconstrained belief state over the context
// set.
func (s *BeliefService) CreateSession(ctx context.Context, contextSetID uuid.UUID) (*store.Session, error) {
	cs, err := s.GetContextSet(ctx, contextSetID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &store.Session{
		ID:           uuid.New(),
		ContextSetID: cs.ID,
		State:        belief.NewState(cs),
		CreatedAt:    now,
		LastAccess:   now,
	}
	s.sessions.Put(sess)
	s.logger.Info("session created",
		zap.String("session_id", sess.ID.String()),
		zap.String("context_set_id", cs.ID.String()))
	return sess, nil
}

func (s *BeliefService) GetSession(id uuid.UUID) (*store.Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *BeliefService) DeleteSession(id uuid.UUID) error {
	if err := s.sessions.Delete(id); err != nil {
		return ErrSessionNotFound
	}
	return nil
}

// Merge applies one constraint to a session's belief state. Values arriving
// from JSON are normalized first; lattice errors (Contradiction,
// TypeMismatch, PathNotFound) pass through for the handler to map.
func (s *BeliefService) Merge(sessionID uuid.UUID, path []string, value any, op belief.MergeOp) error {
	if len(path) == 0 {
		return ErrEmptyMergePath
	}
	if op == "" {
		op = belief.OpSet
	}
	switch op {
	case belief.OpSet, belief.OpAtLeast, belief.OpAtMost:
	default:
		return ErrInvalidMergeOp
	}
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}
	if err := sess.State.MergeWith(path, domain.NormalizeValue(value), op); err != nil {
		s.logger.Debug("merge rejected",
			zap.String("session_id", sessionID.String()),
			zap.Strings("path", path),
			zap.Error(err))
		return err
	}
	return nil
}

// SetEnv records a write-once environment variable on the session.
func (s *BeliefService) SetEnv(sessionID uuid.UUID, key, value string) error {
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}
	return sess.State.SetEnv(key, value)
}

// Size returns the closed-form count of satisfying entity groups.
func (s *BeliefService) Size(sessionID uuid.UUID) (int64, error) {
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return 0, err
	}
	return sess.State.Size()
}

// EntityView is the wire projection of one entity inside a referent group.
type EntityView struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
}

// Referents drains up to limit groups from a fresh enumeration pass.
// limit <= 0 means no cap; enumeration is lazy, so a small limit on a huge
// state stays cheap.
func (s *BeliefService) Referents(sessionID uuid.UUID, limit int) ([][]EntityView, error) {
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	it, err := sess.State.Referents()
	if err != nil {
		return nil, err
	}
	out := [][]EntityView{}
	for limit <= 0 || len(out) < limit {
		group, ok := it.Next()
		if !ok {
			break
		}
		views := make([]EntityView, len(group))
		for i, e := range group {
			views[i] = EntityView{Index: e.Index, Kind: e.Kind()}
		}
		out = append(out, views)
	}
	return out, nil
}

// ReferentTuples drains up to limit raw index tuples.
func (s *BeliefService) ReferentTuples(sessionID uuid.UUID, limit int) ([][]int, error) {
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	it, err := sess.State.Tuples()
	if err != nil {
		return nil, err
	}
	out := [][]int{}
	for limit <= 0 || len(out) < limit {
		tuple, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, tuple)
	}
	return out, nil
}

// Fork copies the session's belief state into a new session, the entry
// point for external search procedures: explore a branch on the fork,
// discard it on contradiction.
func (s *BeliefService) Fork(sessionID uuid.UUID) (*store.Session, error) {
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	fork := &store.Session{
		ID:           uuid.New(),
		ContextSetID: sess.ContextSetID,
		State:        sess.State.Copy(),
		CreatedAt:    now,
		LastAccess:   now,
	}
	s.sessions.Put(fork)
	s.logger.Info("session forked",
		zap.String("parent_id", sess.ID.String()),
		zap.String("fork_id", fork.ID.String()))
	return fork, nil
}
