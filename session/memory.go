package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory. Intended for tests and
// local development; state does not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Session)}
}

// Get returns the session for a chat or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, chatID int64) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[chatID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// Put stores the session, replacing any previous record for the chat.
func (m *MemoryStore) Put(_ context.Context, sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ChatID] = sess
	return nil
}
