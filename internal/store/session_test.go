package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	s := NewSessionStore()
	sess := &Session{
		ID:         uuid.New(),
		CreatedAt:  time.Now().UTC(),
		LastAccess: time.Now().UTC(),
	}
	s.Put(sess)

	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("Get returned wrong session")
	}

	if _, err := s.Get(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) = %v, want ErrNotFound", err)
	}

	if err := s.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestSessionStoreDeleteIdle(t *testing.T) {
	s := NewSessionStore()
	stale := &Session{ID: uuid.New(), LastAccess: time.Now().UTC().Add(-2 * time.Hour)}
	fresh := &Session{ID: uuid.New(), LastAccess: time.Now().UTC()}
	s.Put(stale)
	s.Put(fresh)

	if removed := s.DeleteIdle(time.Hour); removed != 1 {
		t.Fatalf("DeleteIdle removed %d, want 1", removed)
	}
	if _, err := s.Get(stale.ID); !errors.Is(err, ErrNotFound) {
		t.Error("stale session survived eviction")
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Errorf("fresh session evicted: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSessionStoreGetRefreshesLastAccess(t *testing.T) {
	s := NewSessionStore()
	sess := &Session{ID: uuid.New(), LastAccess: time.Now().UTC().Add(-2 * time.Hour)}
	s.Put(sess)

	if _, err := s.Get(sess.ID); err != nil {
		t.Fatal(err)
	}
	if removed := s.DeleteIdle(time.Hour); removed != 0 {
		t.Errorf("recently read session evicted")
	}
}
