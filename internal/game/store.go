package game

import (
	"context"
	"sync"
)

// SessionStore keeps the latest snapshot of each session.
type SessionStore interface {
	Save(ctx context.Context, snap SessionSnapshot) error
	Load(ctx context.Context, sessionID string) (SessionSnapshot, bool, error)
}

// InMemorySessionStore is used when no Redis is configured.
type InMemorySessionStore struct {
	mu sync.Mutex
	m  map[string]SessionSnapshot
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		m: make(map[string]SessionSnapshot),
	}
}

func (s *InMemorySessionStore) Save(ctx context.Context, snap SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[snap.ID] = snap
	return nil
}

func (s *InMemorySessionStore) Load(ctx context.Context, sessionID string) (SessionSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.m[sessionID]
	return snap, ok, nil
}
