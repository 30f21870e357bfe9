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

// integrationStore implements driven.IntegrationStore.
type integrationStore struct {
	store *Store
}

var _ driven.IntegrationStore = (*integrationStore)(nil)

const integrationColumns = `id, user_id, provider, credentials, active, created_at, updated_at`

// Save stores or updates an integration.
func (s *integrationStore) Save(ctx context.Context, integration *domain.Integration) error {
	var blob []byte
	if integration.Credentials != "" {
		var err error
		blob, err = s.store.cipher.Seal(integration.Credentials, integration.ID)
		if err != nil {
			return fmt.Errorf("encrypting credentials: %w", err)
		}
	}

	now := time.Now().UTC()
	if integration.CreatedAt.IsZero() {
		integration.CreatedAt = now
	}
	integration.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cloud_integrations (`+integrationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			provider = excluded.provider,
			credentials = excluded.credentials,
			active = excluded.active,
			updated_at = excluded.updated_at
	`, integration.ID, integration.UserID, string(integration.Provider), blob,
		integration.Active, toNanos(integration.CreatedAt), toNanos(integration.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving integration: %w", err)
	}
	return nil
}

// Get retrieves an integration by ID.
func (s *integrationStore) Get(ctx context.Context, id string) (*domain.Integration, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+integrationColumns+` FROM cloud_integrations WHERE id = ?`, id)

	integration, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting integration: %w", err)
	}
	return integration, nil
}

// ListByUser retrieves all integrations for a user, oldest first.
func (s *integrationStore) ListByUser(ctx context.Context, userID string) ([]*domain.Integration, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+integrationColumns+`
		FROM cloud_integrations
		WHERE user_id = ?
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}
	defer rows.Close()

	var result []*domain.Integration
	for rows.Next() {
		integration, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning integration: %w", err)
		}
		result = append(result, integration)
	}
	return result, rows.Err()
}

// FindActiveByUserAndProvider returns the oldest active integration, or nil.
func (s *integrationStore) FindActiveByUserAndProvider(ctx context.Context, userID string, provider domain.ProviderType) (*domain.Integration, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+integrationColumns+`
		FROM cloud_integrations
		WHERE user_id = ? AND provider = ? AND active = 1
		ORDER BY created_at, id
		LIMIT 1
	`, userID, string(provider))

	integration, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding active integration: %w", err)
	}
	return integration, nil
}

// Delete removes an integration by ID.
func (s *integrationStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM cloud_integrations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting integration: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *integrationStore) scan(row rowScanner) (*domain.Integration, error) {
	var integration domain.Integration
	var provider string
	var blob []byte
	var createdAt, updatedAt int64

	if err := row.Scan(&integration.ID, &integration.UserID, &provider, &blob,
		&integration.Active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	integration.Provider = domain.ProviderType(provider)
	integration.CreatedAt = fromNanos(createdAt)
	integration.UpdatedAt = fromNanos(updatedAt)

	if len(blob) > 0 {
		credentials, err := s.store.cipher.Open(blob, integration.ID)
		if err != nil {
			return nil, fmt.Errorf("decrypting credentials for %s: %w", integration.ID, err)
		}
		integration.Credentials = credentials
	}

	return &integration, nil
}
