package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driving"
)

// Ensure oauthService implements OAuthService
var _ driving.OAuthService = (*oauthService)(nil)

// OAuthServiceConfig holds configuration for the OAuth service.
type OAuthServiceConfig struct {
	// Provider builds consent URLs and exchanges codes.
	Provider driven.ProviderClient

	// Sessions holds the pending attempt per browser session.
	Sessions driven.OAuthSessionStore

	// Integrations persists the resulting credential.
	Integrations driven.IntegrationStore

	// SessionTTL bounds how long an attempt stays valid. Defaults to 10 minutes.
	SessionTTL time.Duration

	Logger *slog.Logger
}

// oauthService implements the OAuthService interface.
type oauthService struct {
	provider     driven.ProviderClient
	sessions     driven.OAuthSessionStore
	integrations driven.IntegrationStore
	sessionTTL   time.Duration
	logger       *slog.Logger
}

// NewOAuthService creates a new OAuth service.
func NewOAuthService(cfg OAuthServiceConfig) driving.OAuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = domain.DefaultOAuthSessionTTL
	}

	return &oauthService{
		provider:     cfg.Provider,
		sessions:     cfg.Sessions,
		integrations: cfg.Integrations,
		sessionTTL:   ttl,
		logger:       logger.With("service", "oauth"),
	}
}

// Authorize records a fresh state for the browser session and returns the
// provider consent URL. A previous pending attempt for the session is replaced.
func (s *oauthService) Authorize(ctx context.Context, sessionID, userID string) (*driving.AuthorizeResponse, error) {
	if err := requireField("userId", userID); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, domain.InvalidInput("session is required")
	}

	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	authURL, err := s.provider.AuthorizationURL(state)
	if err != nil {
		return nil, fmt.Errorf("build authorization url: %w", err)
	}

	now := time.Now()
	session := &domain.OAuthSession{
		ID:        sessionID,
		UserID:    userID,
		State:     state,
		Status:    domain.OAuthFlowAwaitingCallback,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save oauth session: %w", err)
	}

	s.logger.Info("authorization started", "user_id", userID)

	return &driving.AuthorizeResponse{
		AuthURL:   authURL,
		State:     state,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// Callback validates the returned state against the session's pending
// attempt, exchanges the code and stores the credential. The pending attempt
// is consumed on every path, and nothing is written unless all checks pass.
func (s *oauthService) Callback(ctx context.Context, sessionID string, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	var session *domain.OAuthSession
	if sessionID != "" {
		var err error
		session, err = s.sessions.GetAndDelete(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("get oauth session: %w", err)
		}
	}

	hasUser := session != nil && session.UserID != ""
	stateMatches := session != nil && req.State != "" &&
		subtle.ConstantTimeCompare([]byte(req.State), []byte(session.State)) == 1

	if !hasUser || !stateMatches {
		s.logger.Warn("oauth callback rejected",
			"status", domain.OAuthFlowFailed,
			"session_found", session != nil,
			"has_user_id", hasUser,
			"state_present", req.State != "",
			"state_matches", stateMatches,
			"provider_error", req.Error,
		)
		return nil, domain.ErrCSRFMismatch
	}

	if req.Error != "" {
		s.logger.Warn("provider returned oauth error",
			"status", domain.OAuthFlowFailed,
			"user_id", session.UserID,
			"error", req.Error,
			"error_description", req.ErrorDescription,
		)
		return nil, &domain.OAuthError{Code: req.Error, Description: req.ErrorDescription}
	}

	if req.Code == "" {
		s.logger.Warn("oauth callback without code", "status", domain.OAuthFlowFailed, "user_id", session.UserID)
		return nil, domain.InvalidInput("code is required")
	}

	tokens, err := s.provider.ExchangeCode(ctx, req.Code)
	if err != nil {
		s.logger.Error("code exchange failed", "status", domain.OAuthFlowFailed, "user_id", session.UserID, "error", err)
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	integration, err := s.integrations.FindActiveByUserAndProvider(ctx, session.UserID, domain.ProviderNotion)
	if err != nil {
		s.logger.Error("find existing integration failed", "status", domain.OAuthFlowFailed, "user_id", session.UserID, "error", err)
		return nil, fmt.Errorf("find existing integration: %w", err)
	}
	if integration == nil {
		integration = &domain.Integration{
			ID:       uuid.NewString(),
			UserID:   session.UserID,
			Provider: domain.ProviderNotion,
			Active:   true,
		}
	}
	integration.Credentials = tokens.AccessToken

	if err := s.integrations.Save(ctx, integration); err != nil {
		s.logger.Error("save integration failed", "status", domain.OAuthFlowFailed, "user_id", session.UserID, "error", err)
		return nil, fmt.Errorf("save integration: %w", err)
	}

	s.logger.Info("provider connected",
		"status", domain.OAuthFlowCompleted,
		"user_id", session.UserID,
		"integration_id", integration.ID,
		"workspace", tokens.WorkspaceName,
	)

	return &driving.CallbackResponse{
		Integration:   integration.ToSummary(),
		WorkspaceName: tokens.WorkspaceName,
		Status:        domain.OAuthFlowCompleted,
	}, nil
}

// Disconnect deactivates every active credential the user holds.
func (s *oauthService) Disconnect(ctx context.Context, userID string) (*driving.DisconnectResponse, error) {
	if err := requireField("userId", userID); err != nil {
		return nil, err
	}

	integrations, err := s.integrations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}

	deactivated := 0
	for _, integration := range integrations {
		if !integration.IsActiveFor(domain.ProviderNotion) {
			continue
		}
		integration.Active = false
		if err := s.integrations.Save(ctx, integration); err != nil {
			return nil, fmt.Errorf("deactivate integration %s: %w", integration.ID, err)
		}
		deactivated++
	}

	s.logger.Info("provider disconnected", "user_id", userID, "deactivated", deactivated)

	return &driving.DisconnectResponse{Deactivated: deactivated}, nil
}

// CheckAuth reports whether the user has an active credential.
func (s *oauthService) CheckAuth(ctx context.Context, userID string) (bool, error) {
	if err := requireField("userId", userID); err != nil {
		return false, err
	}

	integration, err := s.integrations.FindActiveByUserAndProvider(ctx, userID, domain.ProviderNotion)
	if err != nil {
		s.logger.Error("check auth failed", "user_id", userID, "error", err)
		return false, nil
	}
	return integration != nil, nil
}

// generateState returns 32 random bytes, hex encoded.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
