package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
)

// MockProviderClient is a testify mock of ProviderClient.
type MockProviderClient struct {
	mock.Mock
}

func (m *MockProviderClient) AuthorizationURL(state string) (string, error) {
	args := m.Called(state)
	if fn, ok := args.Get(0).(func(string) string); ok {
		return fn(state), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

func (m *MockProviderClient) ExchangeCode(ctx context.Context, code string) (*domain.TokenBundle, error) {
	args := m.Called(ctx, code)
	if fn, ok := args.Get(0).(func(context.Context, string) *domain.TokenBundle); ok {
		return fn(ctx, code), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenBundle), args.Error(1)
}

func (m *MockProviderClient) CreatePage(ctx context.Context, parentID, title, content, accessToken string) (string, error) {
	args := m.Called(ctx, parentID, title, content, accessToken)
	return args.String(0), args.Error(1)
}

func (m *MockProviderClient) GetPage(ctx context.Context, pageID, accessToken string) (map[string]any, error) {
	args := m.Called(ctx, pageID, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockProviderClient) ListPages(ctx context.Context, accessToken string) (map[string]any, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockProviderClient) ValidateToken(ctx context.Context, accessToken string) bool {
	args := m.Called(ctx, accessToken)
	return args.Bool(0)
}

func (m *MockProviderClient) UploadFile(ctx context.Context, r io.Reader, fileName, mimeType, accessToken string) (string, error) {
	args := m.Called(ctx, r, fileName, mimeType, accessToken)
	return args.String(0), args.Error(1)
}

func (m *MockProviderClient) FileViewURL(ctx context.Context, fileID, accessToken string) (string, error) {
	args := m.Called(ctx, fileID, accessToken)
	return args.String(0), args.Error(1)
}

func (m *MockProviderClient) DeleteFile(ctx context.Context, fileID, accessToken string) error {
	args := m.Called(ctx, fileID, accessToken)
	return args.Error(0)
}

func (m *MockProviderClient) UpdateFile(ctx context.Context, fileID string, r io.Reader, fileName, mimeType, accessToken string) (string, error) {
	args := m.Called(ctx, fileID, r, fileName, mimeType, accessToken)
	return args.String(0), args.Error(1)
}
