// Package session persists in-flight booking dialogs so a bot restart does
// not lose a half-filled form.
package session

import (
	"context"
	"sync"
	"time"

	"darbot/internal/booking"
)

// Store keeps dialog sessions keyed by telegram user id. A missing session
// is returned as (nil, nil).
type Store interface {
	Get(ctx context.Context, userID int64) (*booking.Session, error)
	Set(ctx context.Context, session *booking.Session) error
	Delete(ctx context.Context, userID int64) error
}

// MemoryStore is a process-local Store. It backs tests and serves as the
// fallback when redis is unreachable.
type MemoryStore struct {
	sessions map[int64]*booking.Session
	mu       sync.RWMutex
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{
		sessions: make(map[int64]*booking.Session),
		ttl:      ttl,
	}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*booking.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok || s.IsExpired(m.ttl) {
		return nil, nil
	}
	return s, nil
}

func (m *MemoryStore) Set(_ context.Context, session *booking.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.UserID] = session
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Cleanup drops expired sessions and returns how many were removed.
func (m *MemoryStore) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for userID, s := range m.sessions {
		if s.IsExpired(m.ttl) {
			delete(m.sessions, userID)
			removed++
		}
	}
	return removed
}
