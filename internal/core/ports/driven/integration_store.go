package driven

import (
	"context"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
)

// IntegrationStore persists provider credentials with encrypted tokens.
type IntegrationStore interface {
	// Save stores a new integration or updates an existing one by ID.
	// Credentials are encrypted before storage.
	Save(ctx context.Context, integration *domain.Integration) error

	// Get retrieves an integration by ID with decrypted credentials.
	// Returns domain.ErrNotFound if the integration doesn't exist.
	Get(ctx context.Context, id string) (*domain.Integration, error)

	// ListByUser retrieves all integrations for a user, active or not.
	ListByUser(ctx context.Context, userID string) ([]*domain.Integration, error)

	// FindActiveByUserAndProvider returns the user's oldest active integration
	// for the provider. Returns nil, nil if there is none.
	FindActiveByUserAndProvider(ctx context.Context, userID string, provider domain.ProviderType) (*domain.Integration, error)

	// Delete removes an integration by ID. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
}
