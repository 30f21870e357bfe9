package driving

import (
	"context"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
)

// IntegrationService manages stored provider credentials directly.
type IntegrationService interface {
	// Create stores a new integration and returns its summary.
	Create(ctx context.Context, req CreateIntegrationRequest) (*domain.IntegrationSummary, error)

	// Get retrieves an integration summary by ID.
	// Returns ErrNotFound if the integration doesn't exist.
	Get(ctx context.Context, id string) (*domain.IntegrationSummary, error)

	// ListByUser returns every integration the user holds.
	ListByUser(ctx context.Context, userID string) ([]*domain.IntegrationSummary, error)

	// Update replaces the mutable fields of an integration.
	// Returns ErrNotFound if the integration doesn't exist.
	Update(ctx context.Context, id string, req UpdateIntegrationRequest) (*domain.IntegrationSummary, error)

	// Delete removes an integration.
	Delete(ctx context.Context, id string) error
}

// CreateIntegrationRequest creates a stored credential.
// @Description Request to store a provider credential
type CreateIntegrationRequest struct {
	UserID      string              `json:"userId" validate:"required" example:"user-123"`
	Provider    domain.ProviderType `json:"provider" validate:"required" example:"notion"`
	Credentials string              `json:"credentials" validate:"required" example:"secret_abc"`
	Active      *bool               `json:"active,omitempty" example:"true"`
}

// UpdateIntegrationRequest updates a stored credential.
// Nil fields are left unchanged.
// @Description Request to update a provider credential
type UpdateIntegrationRequest struct {
	Credentials *string `json:"credentials,omitempty" example:"secret_def"`
	Active      *bool   `json:"active,omitempty" example:"false"`
}
