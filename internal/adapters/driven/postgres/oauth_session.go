package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
)

// Ensure OAuthSessionStore implements the interface.
var _ driven.OAuthSessionStore = (*OAuthSessionStore)(nil)

// OAuthSessionStore implements driven.OAuthSessionStore using PostgreSQL.
type OAuthSessionStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewOAuthSessionStore creates a new PostgreSQL-backed OAuth session store.
func NewOAuthSessionStore(db *sql.DB) *OAuthSessionStore {
	return &OAuthSessionStore{
		db:  db,
		ttl: domain.DefaultOAuthSessionTTL,
	}
}

// Save stores the session, replacing any pending attempt for the same browser session.
func (s *OAuthSessionStore) Save(ctx context.Context, session *domain.OAuthSession) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = now.Add(s.ttl)
	}

	query := `
		INSERT INTO oauth_sessions (session_id, user_id, state, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			state = EXCLUDED.state,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.State,
		session.Status,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save oauth session: %w", err)
	}

	return nil
}

// GetAndDelete atomically retrieves and deletes the session.
// Uses DELETE ... RETURNING for single-use semantics.
func (s *OAuthSessionStore) GetAndDelete(ctx context.Context, sessionID string) (*domain.OAuthSession, error) {
	query := `
		DELETE FROM oauth_sessions
		WHERE session_id = $1
		RETURNING session_id, user_id, state, status, created_at, expires_at
	`

	var session domain.OAuthSession
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.State,
		&session.Status,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get and delete oauth session: %w", err)
	}

	// An expired row is still removed so it cannot be retried.
	if session.IsExpired() {
		return nil, nil
	}

	return &session, nil
}

// Cleanup removes expired sessions.
func (s *OAuthSessionStore) Cleanup(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM oauth_sessions WHERE expires_at < NOW()`); err != nil {
		return fmt.Errorf("cleanup oauth sessions: %w", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (s *OAuthSessionStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
