package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
)

// MockIntegrationStore is an in-memory IntegrationStore for testing.
// Set the *Err fields to make the corresponding method fail.
type MockIntegrationStore struct {
	mu           sync.RWMutex
	integrations map[string]*domain.Integration

	SaveErr   error
	GetErr    error
	ListErr   error
	FindErr   error
	DeleteErr error

	saves int
}

// NewMockIntegrationStore creates a new MockIntegrationStore
func NewMockIntegrationStore() *MockIntegrationStore {
	return &MockIntegrationStore{
		integrations: make(map[string]*domain.Integration),
	}
}

func (m *MockIntegrationStore) Save(ctx context.Context, integration *domain.Integration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}

	cp := *integration
	m.integrations[integration.ID] = &cp
	m.saves++
	return nil
}

func (m *MockIntegrationStore) Get(ctx context.Context, id string) (*domain.Integration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}

	integration, ok := m.integrations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *integration
	return &cp, nil
}

func (m *MockIntegrationStore) ListByUser(ctx context.Context, userID string) ([]*domain.Integration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var result []*domain.Integration
	for _, integration := range m.sorted() {
		if integration.UserID == userID {
			cp := *integration
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MockIntegrationStore) FindActiveByUserAndProvider(ctx context.Context, userID string, provider domain.ProviderType) (*domain.Integration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FindErr != nil {
		return nil, m.FindErr
	}

	for _, integration := range m.sorted() {
		if integration.UserID == userID && integration.IsActiveFor(provider) {
			cp := *integration
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockIntegrationStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	delete(m.integrations, id)
	return nil
}

// Count returns the number of stored integrations.
func (m *MockIntegrationStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.integrations)
}

// SaveCount returns how many successful Save calls were made.
func (m *MockIntegrationStore) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// sorted returns integrations oldest first. Caller must hold the lock.
func (m *MockIntegrationStore) sorted() []*domain.Integration {
	out := make([]*domain.Integration, 0, len(m.integrations))
	for _, integration := range m.integrations {
		out = append(out, integration)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
