package driving

import (
	"context"
	"io"
)

// NotionService proxies page and file operations to the provider using the
// caller's stored credential.
type NotionService interface {
	// CreatePage creates a page under the given parent.
	CreatePage(ctx context.Context, req CreatePageRequest) (*CreatePageResponse, error)

	// GetPage returns the provider's page object unmodified.
	GetPage(ctx context.Context, userID, pageID string) (map[string]any, error)

	// ListPages returns the provider's page search result unmodified.
	ListPages(ctx context.Context, userID string) (map[string]any, error)

	// Status reports whether the user's stored credential is still accepted.
	Status(ctx context.Context, userID string) (*StatusResponse, error)

	// UploadFile stores a file with the provider.
	UploadFile(ctx context.Context, req FileRequest) (*FileResponse, error)

	// FileViewURL returns a browser URL for a stored file.
	FileViewURL(ctx context.Context, userID, fileID string) (string, error)

	// DeleteFile removes a stored file.
	DeleteFile(ctx context.Context, userID, fileID string) error

	// UpdateFile replaces a stored file's contents.
	UpdateFile(ctx context.Context, fileID string, req FileRequest) (*FileResponse, error)
}

// CreatePageRequest creates a child page.
// @Description Request to create a page
type CreatePageRequest struct {
	UserID   string `json:"-" validate:"required"`
	ParentID string `json:"-" validate:"required"`
	Title    string `json:"title" validate:"required" example:"Meeting notes"`
	Content  string `json:"content,omitempty" example:"Agenda for Monday"`
}

// CreatePageResponse contains the new page ID.
// @Description Response after creating a page
type CreatePageResponse struct {
	PageID  string `json:"pageId" example:"59833787-2cf9-4fdf-8782-e53db20768a5"`
	Message string `json:"message" example:"Page created successfully"`
}

// StatusResponse reports whether the user's credential is usable.
// @Description Connection status for a user
type StatusResponse struct {
	Connected bool `json:"connected" example:"true"`
}

// FileRequest carries an upload or replacement.
type FileRequest struct {
	UserID   string `validate:"required"`
	Reader   io.Reader
	FileName string
	MimeType string
}

// FileResponse identifies a stored file.
// @Description Stored file reference
type FileResponse struct {
	FileID  string `json:"fileId" example:"mock_notion_file_1b4e28ba-2fa1-11d2-883f-0016d3cca427"`
	ViewURL string `json:"viewUrl" example:"https://notion.so/mock/mock_notion_file_1b4e28ba-2fa1-11d2-883f-0016d3cca427"`
}
