package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driving"
)

// Ensure notionService implements NotionService
var _ driving.NotionService = (*notionService)(nil)

// NotionServiceConfig holds configuration for the resource proxy.
type NotionServiceConfig struct {
	Provider     driven.ProviderClient
	Integrations driven.IntegrationStore
	Logger       *slog.Logger
}

// notionService resolves the caller's stored token and forwards each call
// to the provider client. No call is retried.
type notionService struct {
	provider     driven.ProviderClient
	integrations driven.IntegrationStore
	logger       *slog.Logger
}

// NewNotionService creates a new resource proxy service.
func NewNotionService(cfg NotionServiceConfig) driving.NotionService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &notionService{
		provider:     cfg.Provider,
		integrations: cfg.Integrations,
		logger:       logger.With("service", "notion"),
	}
}

// accessToken returns the user's active token or domain.ErrNotConnected.
func (s *notionService) accessToken(ctx context.Context, userID string) (string, error) {
	integration, err := s.integrations.FindActiveByUserAndProvider(ctx, userID, domain.ProviderNotion)
	if err != nil {
		return "", fmt.Errorf("find integration: %w", err)
	}
	if integration == nil {
		return "", domain.ErrNotConnected
	}
	return integration.AccessToken(), nil
}

func (s *notionService) CreatePage(ctx context.Context, req driving.CreatePageRequest) (*driving.CreatePageResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	token, err := s.accessToken(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	pageID, err := s.provider.CreatePage(ctx, req.ParentID, req.Title, req.Content, token)
	if err != nil {
		s.logger.Error("create page failed", "user_id", req.UserID, "parent_id", req.ParentID, "error", err)
		return nil, fmt.Errorf("create page: %w", err)
	}

	return &driving.CreatePageResponse{
		PageID:  pageID,
		Message: "Page created successfully",
	}, nil
}

func (s *notionService) GetPage(ctx context.Context, userID, pageID string) (map[string]any, error) {
	if err := requireField("userId", userID); err != nil {
		return nil, err
	}
	if err := requireResourceID("pageId", pageID); err != nil {
		return nil, err
	}

	token, err := s.accessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	page, err := s.provider.GetPage(ctx, pageID, token)
	if err != nil {
		s.logger.Error("get page failed", "user_id", userID, "page_id", pageID, "error", err)
		return nil, fmt.Errorf("get page: %w", err)
	}
	return page, nil
}

func (s *notionService) ListPages(ctx context.Context, userID string) (map[string]any, error) {
	if err := requireField("userId", userID); err != nil {
		return nil, err
	}

	token, err := s.accessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.provider.ListPages(ctx, token)
	if err != nil {
		s.logger.Error("list pages failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return result, nil
}

// Status reports connected=false without error when the user has never
// connected; otherwise it asks the provider whether the token still works.
func (s *notionService) Status(ctx context.Context, userID string) (*driving.StatusResponse, error) {
	if err := requireField("userId", userID); err != nil {
		return nil, err
	}

	token, err := s.accessToken(ctx, userID)
	if errors.Is(err, domain.ErrNotConnected) {
		return &driving.StatusResponse{Connected: false}, nil
	}
	if err != nil {
		return nil, err
	}

	return &driving.StatusResponse{Connected: s.provider.ValidateToken(ctx, token)}, nil
}

func (s *notionService) UploadFile(ctx context.Context, req driving.FileRequest) (*driving.FileResponse, error) {
	if err := validateFile(req); err != nil {
		return nil, err
	}

	token, err := s.accessToken(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	fileID, err := s.provider.UploadFile(ctx, req.Reader, req.FileName, req.MimeType, token)
	if err != nil {
		s.logger.Error("upload file failed", "user_id", req.UserID, "file_name", req.FileName, "error", err)
		return nil, fmt.Errorf("upload file: %w", err)
	}

	viewURL, err := s.provider.FileViewURL(ctx, fileID, token)
	if err != nil {
		return nil, fmt.Errorf("file view url: %w", err)
	}

	return &driving.FileResponse{FileID: fileID, ViewURL: viewURL}, nil
}

func (s *notionService) FileViewURL(ctx context.Context, userID, fileID string) (string, error) {
	if err := requireField("userId", userID); err != nil {
		return "", err
	}
	if err := requireResourceID("fileId", fileID); err != nil {
		return "", err
	}

	token, err := s.accessToken(ctx, userID)
	if err != nil {
		return "", err
	}

	viewURL, err := s.provider.FileViewURL(ctx, fileID, token)
	if err != nil {
		s.logger.Error("file view url failed", "user_id", userID, "file_id", fileID, "error", err)
		return "", fmt.Errorf("file view url: %w", err)
	}
	return viewURL, nil
}

func (s *notionService) DeleteFile(ctx context.Context, userID, fileID string) error {
	if err := requireField("userId", userID); err != nil {
		return err
	}
	if err := requireResourceID("fileId", fileID); err != nil {
		return err
	}

	token, err := s.accessToken(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.provider.DeleteFile(ctx, fileID, token); err != nil {
		s.logger.Error("delete file failed", "user_id", userID, "file_id", fileID, "error", err)
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *notionService) UpdateFile(ctx context.Context, fileID string, req driving.FileRequest) (*driving.FileResponse, error) {
	if err := validateFile(req); err != nil {
		return nil, err
	}
	if err := requireResourceID("fileId", fileID); err != nil {
		return nil, err
	}

	token, err := s.accessToken(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	updatedID, err := s.provider.UpdateFile(ctx, fileID, req.Reader, req.FileName, req.MimeType, token)
	if err != nil {
		s.logger.Error("update file failed", "user_id", req.UserID, "file_id", fileID, "error", err)
		return nil, fmt.Errorf("update file: %w", err)
	}

	viewURL, err := s.provider.FileViewURL(ctx, updatedID, token)
	if err != nil {
		return nil, fmt.Errorf("file view url: %w", err)
	}

	return &driving.FileResponse{FileID: updatedID, ViewURL: viewURL}, nil
}

func validateFile(req driving.FileRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if req.Reader == nil {
		return domain.InvalidInput("file is required")
	}
	return nil
}
