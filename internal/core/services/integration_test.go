package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driving"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestIntegrationService_CreateAndGet(t *testing.T) {
	store := mocks.NewMockIntegrationStore()
	svc := NewIntegrationService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, driving.CreateIntegrationRequest{
		UserID:      "user-1",
		Provider:    domain.ProviderNotion,
		Credentials: "secret_abc",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
	assert.True(t, created.HasCredentials)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	stored, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret_abc", stored.Credentials)
}

func TestIntegrationService_Create_Validation(t *testing.T) {
	svc := NewIntegrationService(mocks.NewMockIntegrationStore(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, driving.CreateIntegrationRequest{Provider: domain.ProviderNotion, Credentials: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "userId")

	_, err = svc.Create(ctx, driving.CreateIntegrationRequest{UserID: "u", Credentials: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(ctx, driving.CreateIntegrationRequest{UserID: "u", Provider: "dropbox", Credentials: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIntegrationService_Create_Inactive(t *testing.T) {
	svc := NewIntegrationService(mocks.NewMockIntegrationStore(), nil)

	created, err := svc.Create(context.Background(), driving.CreateIntegrationRequest{
		UserID: "user-1", Provider: domain.ProviderNotion, Credentials: "x", Active: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, created.Active)
}

func TestIntegrationService_GetNotFound(t *testing.T) {
	svc := NewIntegrationService(mocks.NewMockIntegrationStore(), nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegrationService_ListByUser(t *testing.T) {
	store := mocks.NewMockIntegrationStore()
	svc := NewIntegrationService(store, nil)
	ctx := context.Background()

	for _, user := range []string{"user-1", "user-1", "user-2"} {
		_, err := svc.Create(ctx, driving.CreateIntegrationRequest{UserID: user, Provider: domain.ProviderNotion, Credentials: "x"})
		require.NoError(t, err)
	}

	list, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	empty, err := svc.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.ListByUser(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIntegrationService_Update(t *testing.T) {
	store := mocks.NewMockIntegrationStore()
	svc := NewIntegrationService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, driving.CreateIntegrationRequest{UserID: "user-1", Provider: domain.ProviderNotion, Credentials: "old"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, driving.UpdateIntegrationRequest{Credentials: strPtr("new"), Active: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	stored, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Credentials)
	assert.Equal(t, "user-1", stored.UserID)

	_, err = svc.Update(ctx, "missing", driving.UpdateIntegrationRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegrationService_Delete(t *testing.T) {
	store := mocks.NewMockIntegrationStore()
	svc := NewIntegrationService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, driving.CreateIntegrationRequest{UserID: "user-1", Provider: domain.ProviderNotion, Credentials: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Zero(t, store.Count())

	store.DeleteErr = errors.New("db down")
	assert.Error(t, svc.Delete(ctx, "x"))
}
