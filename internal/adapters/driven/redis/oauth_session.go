package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.OAuthSessionStore = (*OAuthSessionStore)(nil)

const oauthSessionPrefix = "cloud:oauth:session:"

// OAuthSessionStore implements driven.OAuthSessionStore using Redis.
// Expiry is delegated to Redis TTLs.
type OAuthSessionStore struct {
	client *redis.Client
}

// NewOAuthSessionStore creates a new Redis-backed OAuthSessionStore
func NewOAuthSessionStore(client *redis.Client) *OAuthSessionStore {
	return &OAuthSessionStore{client: client}
}

// Save stores the session with a TTL derived from ExpiresAt.
func (s *OAuthSessionStore) Save(ctx context.Context, session *domain.OAuthSession) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = now.Add(domain.DefaultOAuthSessionTTL)
	}

	ttl := session.TTL()
	if ttl <= 0 {
		// Already expired; make sure no older attempt survives either.
		if err := s.client.Del(ctx, oauthSessionPrefix+session.ID).Err(); err != nil {
			return fmt.Errorf("failed to clear oauth session: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal oauth session: %w", err)
	}

	if err := s.client.Set(ctx, oauthSessionPrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth session: %w", err)
	}
	return nil
}

// GetAndDelete atomically retrieves and deletes the session with GETDEL.
func (s *OAuthSessionStore) GetAndDelete(ctx context.Context, sessionID string) (*domain.OAuthSession, error) {
	data, err := s.client.GetDel(ctx, oauthSessionPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth session: %w", err)
	}

	var session domain.OAuthSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal oauth session: %w", err)
	}

	if session.IsExpired() {
		return nil, nil
	}
	return &session, nil
}

// Cleanup is a no-op; Redis expires keys itself.
func (s *OAuthSessionStore) Cleanup(ctx context.Context) error {
	return nil
}

// Ping checks Redis is reachable.
func (s *OAuthSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
