package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
)

// oauthSessionStore implements driven.OAuthSessionStore.
type oauthSessionStore struct {
	store *Store
}

var _ driven.OAuthSessionStore = (*oauthSessionStore)(nil)

// Save stores the session, replacing any pending attempt for the same browser session.
func (s *oauthSessionStore) Save(ctx context.Context, session *domain.OAuthSession) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = now.Add(domain.DefaultOAuthSessionTTL)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO oauth_sessions (session_id, user_id, state, status, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			user_id = excluded.user_id,
			state = excluded.state,
			status = excluded.status,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, session.ID, session.UserID, session.State, string(session.Status),
		toNanos(session.CreatedAt), toNanos(session.ExpiresAt))
	if err != nil {
		return fmt.Errorf("saving oauth session: %w", err)
	}
	return nil
}

// GetAndDelete atomically retrieves and deletes the session.
func (s *oauthSessionStore) GetAndDelete(ctx context.Context, sessionID string) (*domain.OAuthSession, error) {
	var session domain.OAuthSession
	var status string
	var createdAt, expiresAt int64

	err := s.store.db.QueryRowContext(ctx, `
		DELETE FROM oauth_sessions
		WHERE session_id = ?
		RETURNING session_id, user_id, state, status, created_at, expires_at
	`, sessionID).Scan(&session.ID, &session.UserID, &session.State, &status, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consuming oauth session: %w", err)
	}

	session.Status = domain.OAuthFlowStatus(status)
	session.CreatedAt = fromNanos(createdAt)
	session.ExpiresAt = fromNanos(expiresAt)

	if session.IsExpired() {
		return nil, nil
	}
	return &session, nil
}

// Cleanup removes expired sessions.
func (s *oauthSessionStore) Cleanup(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx,
		`DELETE FROM oauth_sessions WHERE expires_at < ?`, toNanos(time.Now())); err != nil {
		return fmt.Errorf("cleaning up oauth sessions: %w", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (s *oauthSessionStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
