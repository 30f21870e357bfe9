package driven

import (
	"context"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
)

// OAuthSessionStore keeps in-flight authorization attempts keyed by browser
// session ID. Sessions are single-use and expire after a short period.
type OAuthSessionStore interface {
	// Save stores the session, replacing any previous attempt for the same ID.
	// The session expires at ExpiresAt.
	Save(ctx context.Context, session *domain.OAuthSession) error

	// GetAndDelete atomically retrieves and deletes the session.
	// Returns nil, nil if the session doesn't exist or has expired.
	GetAndDelete(ctx context.Context, sessionID string) (*domain.OAuthSession, error)

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error

	// Ping checks the backing store is reachable.
	Ping(ctx context.Context) error
}
