package notion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
)

// Ensure MockClient implements the interface.
var _ driven.ProviderClient = (*MockClient)(nil)

const (
	mockTokenPrefix  = "mock_token_"
	mockCreatedTime  = "2023-01-01T00:00:00.000Z"
	mockViewURLBase  = "https://notion.so/mock/"
	mockListedPages  = 3
	mockWorkspaceTag = "Notion Workspace (Mock)"
)

// MockClient is a network-free stand-in used when the Notion integration is
// disabled. It returns deterministic shapes with random identifiers.
type MockClient struct {
	logger *slog.Logger
}

// NewMockClient creates a MockClient.
func NewMockClient(logger *slog.Logger) *MockClient {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "notion_mock")
	logger.Info("notion integration disabled, using mock provider client")
	return &MockClient{logger: logger}
}

func (m *MockClient) AuthorizationURL(state string) (string, error) {
	return DefaultBaseURL + "/oauth/authorize?mock=true&state=" + url.QueryEscape(state), nil
}

func (m *MockClient) ExchangeCode(ctx context.Context, code string) (*domain.TokenBundle, error) {
	m.logger.Debug("mock code exchange")
	return &domain.TokenBundle{
		AccessToken:   mockTokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", ""),
		WorkspaceID:   "mock_workspace_" + uuid.NewString()[:8],
		WorkspaceName: mockWorkspaceTag,
		BotID:         "mock_bot_" + uuid.NewString()[:8],
	}, nil
}

func (m *MockClient) CreatePage(ctx context.Context, parentID, title, content, accessToken string) (string, error) {
	m.logger.Debug("mock create page", "parent_id", parentID, "title", title)
	return "mock_page_" + uuid.NewString(), nil
}

func (m *MockClient) GetPage(ctx context.Context, pageID, accessToken string) (map[string]any, error) {
	page := mockPage(pageID, "Mock Notion Page")
	page["last_edited_time"] = mockCreatedTime
	return page, nil
}

func (m *MockClient) ListPages(ctx context.Context, accessToken string) (map[string]any, error) {
	results := make([]any, 0, mockListedPages)
	for i := 0; i < mockListedPages; i++ {
		results = append(results, mockPage(fmt.Sprintf("mock_page_%d", i), fmt.Sprintf("Mock Page %d", i+1)))
	}
	return map[string]any{
		"object":   "list",
		"has_more": false,
		"results":  results,
	}, nil
}

func mockPage(id, title string) map[string]any {
	return map[string]any{
		"id":           id,
		"url":          mockViewURLBase + id,
		"created_time": mockCreatedTime,
		"properties": map[string]any{
			"title": map[string]any{"title": title},
		},
	}
}

func (m *MockClient) ValidateToken(ctx context.Context, accessToken string) bool {
	return strings.HasPrefix(accessToken, mockTokenPrefix)
}

func (m *MockClient) UploadFile(ctx context.Context, r io.Reader, fileName, mimeType, accessToken string) (string, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	m.logger.Debug("mock upload file", "file_name", fileName, "mime_type", mimeType, "bytes", n)
	return "mock_notion_file_" + uuid.NewString(), nil
}

func (m *MockClient) FileViewURL(ctx context.Context, fileID, accessToken string) (string, error) {
	return mockViewURLBase + fileID, nil
}

func (m *MockClient) DeleteFile(ctx context.Context, fileID, accessToken string) error {
	m.logger.Debug("mock delete file", "file_id", fileID)
	return nil
}

func (m *MockClient) UpdateFile(ctx context.Context, fileID string, r io.Reader, fileName, mimeType, accessToken string) (string, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	m.logger.Debug("mock update file", "file_id", fileID, "file_name", fileName, "bytes", n)
	return fileID, nil
}
