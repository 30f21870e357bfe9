package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
)

// MockOAuthSessionStore is an in-memory OAuthSessionStore for testing
type MockOAuthSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.OAuthSession

	SaveErr    error
	GetErr     error
	CleanupErr error
	PingErr    error

	cleanups int
}

// NewMockOAuthSessionStore creates a new MockOAuthSessionStore
func NewMockOAuthSessionStore() *MockOAuthSessionStore {
	return &MockOAuthSessionStore{
		sessions: make(map[string]*domain.OAuthSession),
	}
}

func (m *MockOAuthSessionStore) Save(ctx context.Context, session *domain.OAuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}

	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *MockOAuthSessionStore) GetAndDelete(ctx context.Context, sessionID string) (*domain.OAuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	delete(m.sessions, sessionID)

	if session.IsExpired() {
		return nil, nil
	}
	return session, nil
}

func (m *MockOAuthSessionStore) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cleanups++
	if m.CleanupErr != nil {
		return m.CleanupErr
	}

	now := time.Now()
	for id, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *MockOAuthSessionStore) Ping(ctx context.Context) error {
	return m.PingErr
}

// Peek returns a stored session without consuming it.
func (m *MockOAuthSessionStore) Peek(sessionID string) *domain.OAuthSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	cp := *session
	return &cp
}

// Count returns the number of stored sessions.
func (m *MockOAuthSessionStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CleanupCount returns how many times Cleanup was called.
func (m *MockOAuthSessionStore) CleanupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanups
}
