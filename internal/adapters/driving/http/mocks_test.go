package http

import (
	"context"
	"errors"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driving"
)

// Mock services for testing

type mockOAuthService struct {
	authorizeFn  func(ctx context.Context, sessionID, userID string) (*driving.AuthorizeResponse, error)
	callbackFn   func(ctx context.Context, sessionID string, req driving.CallbackRequest) (*driving.CallbackResponse, error)
	disconnectFn func(ctx context.Context, userID string) (*driving.DisconnectResponse, error)
	checkAuthFn  func(ctx context.Context, userID string) (bool, error)
}

func (m *mockOAuthService) Authorize(ctx context.Context, sessionID, userID string) (*driving.AuthorizeResponse, error) {
	if m.authorizeFn != nil {
		return m.authorizeFn(ctx, sessionID, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockOAuthService) Callback(ctx context.Context, sessionID string, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	if m.callbackFn != nil {
		return m.callbackFn(ctx, sessionID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockOAuthService) Disconnect(ctx context.Context, userID string) (*driving.DisconnectResponse, error) {
	if m.disconnectFn != nil {
		return m.disconnectFn(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockOAuthService) CheckAuth(ctx context.Context, userID string) (bool, error) {
	if m.checkAuthFn != nil {
		return m.checkAuthFn(ctx, userID)
	}
	return false, nil
}

type mockNotionService struct {
	createPageFn  func(ctx context.Context, req driving.CreatePageRequest) (*driving.CreatePageResponse, error)
	getPageFn     func(ctx context.Context, userID, pageID string) (map[string]any, error)
	listPagesFn   func(ctx context.Context, userID string) (map[string]any, error)
	statusFn      func(ctx context.Context, userID string) (*driving.StatusResponse, error)
	uploadFileFn  func(ctx context.Context, req driving.FileRequest) (*driving.FileResponse, error)
	fileViewURLFn func(ctx context.Context, userID, fileID string) (string, error)
	deleteFileFn  func(ctx context.Context, userID, fileID string) error
	updateFileFn  func(ctx context.Context, fileID string, req driving.FileRequest) (*driving.FileResponse, error)
}

func (m *mockNotionService) CreatePage(ctx context.Context, req driving.CreatePageRequest) (*driving.CreatePageResponse, error) {
	if m.createPageFn != nil {
		return m.createPageFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNotionService) GetPage(ctx context.Context, userID, pageID string) (map[string]any, error) {
	if m.getPageFn != nil {
		return m.getPageFn(ctx, userID, pageID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNotionService) ListPages(ctx context.Context, userID string) (map[string]any, error) {
	if m.listPagesFn != nil {
		return m.listPagesFn(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNotionService) Status(ctx context.Context, userID string) (*driving.StatusResponse, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNotionService) UploadFile(ctx context.Context, req driving.FileRequest) (*driving.FileResponse, error) {
	if m.uploadFileFn != nil {
		return m.uploadFileFn(ctx, req)
	}
	return nil, domain.ErrUnsupported
}

func (m *mockNotionService) FileViewURL(ctx context.Context, userID, fileID string) (string, error) {
	if m.fileViewURLFn != nil {
		return m.fileViewURLFn(ctx, userID, fileID)
	}
	return "", domain.ErrUnsupported
}

func (m *mockNotionService) DeleteFile(ctx context.Context, userID, fileID string) error {
	if m.deleteFileFn != nil {
		return m.deleteFileFn(ctx, userID, fileID)
	}
	return domain.ErrUnsupported
}

func (m *mockNotionService) UpdateFile(ctx context.Context, fileID string, req driving.FileRequest) (*driving.FileResponse, error) {
	if m.updateFileFn != nil {
		return m.updateFileFn(ctx, fileID, req)
	}
	return nil, domain.ErrUnsupported
}

type mockIntegrationService struct {
	createFn func(ctx context.Context, req driving.CreateIntegrationRequest) (*domain.IntegrationSummary, error)
	getFn    func(ctx context.Context, id string) (*domain.IntegrationSummary, error)
	listFn   func(ctx context.Context, userID string) ([]*domain.IntegrationSummary, error)
	updateFn func(ctx context.Context, id string, req driving.UpdateIntegrationRequest) (*domain.IntegrationSummary, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockIntegrationService) Create(ctx context.Context, req driving.CreateIntegrationRequest) (*domain.IntegrationSummary, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockIntegrationService) Get(ctx context.Context, id string) (*domain.IntegrationSummary, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockIntegrationService) ListByUser(ctx context.Context, userID string) ([]*domain.IntegrationSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []*domain.IntegrationSummary{}, nil
}

func (m *mockIntegrationService) Update(ctx context.Context, id string, req driving.UpdateIntegrationRequest) (*domain.IntegrationSummary, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil, domain.ErrNotFound
}

func (m *mockIntegrationService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}
