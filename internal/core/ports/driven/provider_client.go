package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
)

// ProviderClient talks to a third-party provider API on behalf of a user.
// Implementations must be safe for concurrent use.
type ProviderClient interface {
	// AuthorizationURL builds the provider consent URL carrying state.
	AuthorizationURL(state string) (string, error)

	// ExchangeCode trades an authorization code for an access token.
	// Fails with a domain.ProviderError of kind domain.ErrExchangeFailed.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenBundle, error)

	// CreatePage creates a child page under parentID and returns its ID.
	CreatePage(ctx context.Context, parentID, title, content, accessToken string) (string, error)

	// GetPage returns the provider's page object unmodified.
	GetPage(ctx context.Context, pageID, accessToken string) (map[string]any, error)

	// ListPages returns the provider's page search result unmodified.
	ListPages(ctx context.Context, accessToken string) (map[string]any, error)

	// ValidateToken reports whether the token is accepted by the provider.
	// Any failure is reported as false.
	ValidateToken(ctx context.Context, accessToken string) bool

	// UploadFile stores a file and returns its provider ID.
	UploadFile(ctx context.Context, r io.Reader, fileName, mimeType, accessToken string) (string, error)

	// FileViewURL returns a browser URL for a stored file.
	FileViewURL(ctx context.Context, fileID, accessToken string) (string, error)

	// DeleteFile removes a stored file.
	DeleteFile(ctx context.Context, fileID, accessToken string) error

	// UpdateFile replaces a stored file's contents and returns its ID.
	UpdateFile(ctx context.Context, fileID string, r io.Reader, fileName, mimeType, accessToken string) (string, error)
}
