package repository

import (
	"context"
	"sync"
	"time"

	"guidechat/internal/model"
)

// MemoryStore keeps sessions in process memory. Sessions idle for longer
// than the TTL are dropped on access; a zero TTL keeps them forever.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*model.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a copy of the session.
func (m *MemoryStore) Get(ctx context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.expired(s) {
		m.mu.Lock()
		if cur, ok := m.sessions[id]; ok && m.expired(cur) {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Put stores a copy of the session and stamps its UpdatedAt.
func (m *MemoryStore) Put(ctx context.Context, s *model.Session) error {
	c := s.Clone()
	c.UpdatedAt = m.now()
	m.mu.Lock()
	m.sessions[c.SessionID] = c
	m.mu.Unlock()
	s.UpdatedAt = c.UpdatedAt
	return nil
}

// Delete removes a session. Unknown ids are not an error.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) expired(s *model.Session) bool {
	return m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl
}
