package driving

import (
	"context"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
)

// OAuthService runs the provider authorization flow and manages the lifecycle
// of the stored credential it produces.
type OAuthService interface {
	// Authorize starts an authorization attempt bound to the browser session.
	// Returns the provider URL the browser should be redirected to.
	Authorize(ctx context.Context, sessionID, userID string) (*AuthorizeResponse, error)

	// Callback completes the attempt started by Authorize for the same session.
	// The pending attempt is consumed whether or not the callback succeeds.
	Callback(ctx context.Context, sessionID string, req CallbackRequest) (*CallbackResponse, error)

	// Disconnect deactivates every active credential the user holds for the provider.
	Disconnect(ctx context.Context, userID string) (*DisconnectResponse, error)

	// CheckAuth reports whether the user holds an active credential.
	// Store failures are reported as false.
	CheckAuth(ctx context.Context, userID string) (bool, error)
}

// AuthorizeResponse contains the authorization URL and state.
// @Description Response containing the provider authorization URL
type AuthorizeResponse struct {
	// AuthURL is the URL to redirect the user to for authorization.
	AuthURL string `json:"authUrl" example:"https://api.notion.com/v1/oauth/authorize?client_id=...&response_type=code&owner=user&state=..."`

	// State is the CSRF token that will be returned in the callback.
	State string `json:"-"`

	// ExpiresAt is when the authorization attempt expires.
	ExpiresAt string `json:"-"`
}

// CallbackRequest represents the OAuth callback from the provider.
type CallbackRequest struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackResponse contains the result of a completed callback.
type CallbackResponse struct {
	// Integration is the stored credential summary.
	Integration *domain.IntegrationSummary `json:"integration"`

	// WorkspaceName is the provider workspace the user connected.
	WorkspaceName string `json:"workspaceName,omitempty"`

	// Status is always completed on success.
	Status domain.OAuthFlowStatus `json:"status"`
}

// DisconnectRequest is the body of a disconnect call.
// @Description Request to disconnect a user from the provider
type DisconnectRequest struct {
	UserID string `json:"userId" validate:"required" example:"user-123"`
}

// DisconnectResponse reports how many credentials were deactivated.
type DisconnectResponse struct {
	Deactivated int `json:"deactivated"`
}

// CheckAuthResponse reports whether a user is connected.
// @Description Authentication status for a user
type CheckAuthResponse struct {
	Authenticated bool   `json:"authenticated" example:"true"`
	Provider      string `json:"provider,omitempty" example:"notion"`
}
