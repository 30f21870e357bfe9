package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/cloud-integration/internal/adapters/driven/secrets"
	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
)

// Ensure IntegrationStore implements the interface.
var _ driven.IntegrationStore = (*IntegrationStore)(nil)

// IntegrationStore implements driven.IntegrationStore using PostgreSQL.
type IntegrationStore struct {
	db     *sql.DB
	cipher *secrets.Cipher
}

// NewIntegrationStore creates a new PostgreSQL-backed integration store.
func NewIntegrationStore(db *sql.DB, cipher *secrets.Cipher) *IntegrationStore {
	return &IntegrationStore{
		db:     db,
		cipher: cipher,
	}
}

const integrationColumns = `id, user_id, provider, credentials, active, created_at, updated_at`

// Save stores a new integration or updates an existing one.
func (s *IntegrationStore) Save(ctx context.Context, integration *domain.Integration) error {
	var blob []byte
	if integration.Credentials != "" {
		var err error
		blob, err = s.cipher.Seal(integration.Credentials, integration.ID)
		if err != nil {
			return fmt.Errorf("encrypt credentials: %w", err)
		}
	}

	now := time.Now()
	if integration.CreatedAt.IsZero() {
		integration.CreatedAt = now
	}
	integration.UpdatedAt = now

	query := `
		INSERT INTO cloud_integrations (` + integrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			provider = EXCLUDED.provider,
			credentials = EXCLUDED.credentials,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		integration.ID,
		integration.UserID,
		integration.Provider,
		blob,
		integration.Active,
		integration.CreatedAt,
		integration.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save integration: %w", err)
	}

	return nil
}

// Get retrieves an integration by ID with decrypted credentials.
func (s *IntegrationStore) Get(ctx context.Context, id string) (*domain.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM cloud_integrations WHERE id = $1`

	integration, err := s.scan(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get integration: %w", err)
	}
	return integration, nil
}

// ListByUser retrieves all integrations for a user, oldest first.
func (s *IntegrationStore) ListByUser(ctx context.Context, userID string) ([]*domain.Integration, error) {
	query := `
		SELECT ` + integrationColumns + `
		FROM cloud_integrations
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()

	var result []*domain.Integration
	for rows.Next() {
		integration, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		result = append(result, integration)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate integrations: %w", err)
	}

	return result, nil
}

// FindActiveByUserAndProvider returns the oldest active integration, or nil.
func (s *IntegrationStore) FindActiveByUserAndProvider(ctx context.Context, userID string, provider domain.ProviderType) (*domain.Integration, error) {
	query := `
		SELECT ` + integrationColumns + `
		FROM cloud_integrations
		WHERE user_id = $1 AND provider = $2 AND active
		ORDER BY created_at, id
		LIMIT 1
	`

	integration, err := s.scan(s.db.QueryRowContext(ctx, query, userID, provider))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active integration: %w", err)
	}
	return integration, nil
}

// Delete removes an integration by ID.
func (s *IntegrationStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cloud_integrations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete integration: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *IntegrationStore) scan(row rowScanner) (*domain.Integration, error) {
	var integration domain.Integration
	var blob []byte

	err := row.Scan(
		&integration.ID,
		&integration.UserID,
		&integration.Provider,
		&blob,
		&integration.Active,
		&integration.CreatedAt,
		&integration.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(blob) > 0 {
		credentials, err := s.cipher.Open(blob, integration.ID)
		if err != nil {
			return nil, fmt.Errorf("decrypt credentials for %s: %w", integration.ID, err)
		}
		integration.Credentials = credentials
	}

	return &integration, nil
}
