package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driving"
)

// Ensure integrationService implements IntegrationService
var _ driving.IntegrationService = (*integrationService)(nil)

// integrationService manages stored credentials directly.
type integrationService struct {
	store  driven.IntegrationStore
	logger *slog.Logger
}

// NewIntegrationService creates a new integration service.
func NewIntegrationService(store driven.IntegrationStore, logger *slog.Logger) driving.IntegrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &integrationService{
		store:  store,
		logger: logger.With("service", "integration"),
	}
}

func (s *integrationService) Create(ctx context.Context, req driving.CreateIntegrationRequest) (*domain.IntegrationSummary, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if !req.Provider.IsSupported() {
		return nil, domain.InvalidInput("unsupported provider %q", req.Provider)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	integration := &domain.Integration{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Provider:    req.Provider,
		Credentials: req.Credentials,
		Active:      active,
	}
	if err := s.store.Save(ctx, integration); err != nil {
		return nil, fmt.Errorf("save integration: %w", err)
	}

	s.logger.Info("integration created", "integration_id", integration.ID, "user_id", integration.UserID)
	return integration.ToSummary(), nil
}

func (s *integrationService) Get(ctx context.Context, id string) (*domain.IntegrationSummary, error) {
	integration, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return integration.ToSummary(), nil
}

func (s *integrationService) ListByUser(ctx context.Context, userID string) ([]*domain.IntegrationSummary, error) {
	if err := requireField("userId", userID); err != nil {
		return nil, err
	}

	integrations, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}

	summaries := make([]*domain.IntegrationSummary, 0, len(integrations))
	for _, integration := range integrations {
		summaries = append(summaries, integration.ToSummary())
	}
	return summaries, nil
}

func (s *integrationService) Update(ctx context.Context, id string, req driving.UpdateIntegrationRequest) (*domain.IntegrationSummary, error) {
	integration, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Credentials != nil {
		integration.Credentials = *req.Credentials
	}
	if req.Active != nil {
		integration.Active = *req.Active
	}

	if err := s.store.Save(ctx, integration); err != nil {
		return nil, fmt.Errorf("save integration: %w", err)
	}
	return integration.ToSummary(), nil
}

func (s *integrationService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete integration: %w", err)
	}
	s.logger.Info("integration deleted", "integration_id", id)
	return nil
}
