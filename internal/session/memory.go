package session

import (
	"context"
	"sync"

	"github.com/m3rciful/finbot/internal/catalog"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStore constructs an in-process Store for development and tests.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[int64]*Session),
	}
}

// Get returns a copy of the session, creating an empty one on first access.
func (m *memoryStore) Get(_ context.Context, conversationID int64) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[conversationID]
	if ok {
		out := *s
		m.mu.RUnlock()
		return out, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.ensure(conversationID), nil
}

// SetLocale updates the locale of a conversation.
func (m *memoryStore) SetLocale(_ context.Context, conversationID int64, loc catalog.Locale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(conversationID).Locale = loc
	return nil
}

// SetCurrency updates the currency of a conversation.
func (m *memoryStore) SetCurrency(_ context.Context, conversationID int64, cur Currency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(conversationID).Currency = cur
	return nil
}

// ensure must be called with mu held for writing.
func (m *memoryStore) ensure(conversationID int64) *Session {
	s, ok := m.sessions[conversationID]
	if !ok {
		s = &Session{}
		m.sessions[conversationID] = s
	}
	return s
}
