package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driving"
)

type oauthFixture struct {
	service      driving.OAuthService
	provider     *mocks.MockProviderClient
	sessions     *mocks.MockOAuthSessionStore
	integrations *mocks.MockIntegrationStore
	logs         *bytes.Buffer
}

func newOAuthFixture(t *testing.T) *oauthFixture {
	t.Helper()

	f := &oauthFixture{
		provider:     &mocks.MockProviderClient{},
		sessions:     mocks.NewMockOAuthSessionStore(),
		integrations: mocks.NewMockIntegrationStore(),
		logs:         &bytes.Buffer{},
	}
	f.provider.On("AuthorizationURL", mock.AnythingOfType("string")).Return(
		func(state string) string {
			return "https://api.notion.com/v1/oauth/authorize?state=" + url.QueryEscape(state)
		}, nil).Maybe()

	f.service = NewOAuthService(OAuthServiceConfig{
		Provider:     f.provider,
		Sessions:     f.sessions,
		Integrations: f.integrations,
		Logger:       slog.New(slog.NewJSONHandler(f.logs, nil)),
	})
	return f
}

// authorize starts a flow and returns the stored state.
func (f *oauthFixture) authorize(t *testing.T, sessionID, userID string) string {
	t.Helper()
	resp, err := f.service.Authorize(context.Background(), sessionID, userID)
	require.NoError(t, err)
	return resp.State
}

func TestOAuthService_Authorize(t *testing.T) {
	f := newOAuthFixture(t)

	resp, err := f.service.Authorize(context.Background(), "sid-1", "user-1")
	require.NoError(t, err)

	assert.Len(t, resp.State, 64)
	assert.Contains(t, resp.AuthURL, "state="+resp.State)
	assert.NotEmpty(t, resp.ExpiresAt)

	stored := f.sessions.Peek("sid-1")
	require.NotNil(t, stored)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, resp.State, stored.State)
	assert.Equal(t, domain.OAuthFlowAwaitingCallback, stored.Status)
	assert.WithinDuration(t, time.Now().Add(domain.DefaultOAuthSessionTTL), stored.ExpiresAt, 5*time.Second)
}

func TestOAuthService_Authorize_MissingUserID(t *testing.T) {
	f := newOAuthFixture(t)

	_, err := f.service.Authorize(context.Background(), "sid-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "userId")
	assert.Zero(t, f.sessions.Count())
}

func TestOAuthService_Authorize_StatesAreUnique(t *testing.T) {
	f := newOAuthFixture(t)

	first := f.authorize(t, "sid-1", "user-1")
	second := f.authorize(t, "sid-1", "user-1")
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, f.sessions.Peek("sid-1").State)
}

func TestOAuthService_Authorize_StoreError(t *testing.T) {
	f := newOAuthFixture(t)
	f.sessions.SaveErr = errors.New("redis down")

	_, err := f.service.Authorize(context.Background(), "sid-1", "user-1")
	assert.Error(t, err)
}

func TestOAuthService_Callback_Success(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()
	state := f.authorize(t, "sid-1", "user-1")

	f.provider.On("ExchangeCode", mock.Anything, "code-1").Return(&domain.TokenBundle{
		AccessToken:   "secret_abc",
		WorkspaceName: "Acme",
	}, nil).Once()

	resp, err := f.service.Callback(ctx, "sid-1", driving.CallbackRequest{Code: "code-1", State: state})
	require.NoError(t, err)
	assert.Equal(t, domain.OAuthFlowCompleted, resp.Status)
	assert.Equal(t, "Acme", resp.WorkspaceName)
	assert.True(t, resp.Integration.Active)

	stored, err := f.integrations.FindActiveByUserAndProvider(ctx, "user-1", domain.ProviderNotion)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "secret_abc", stored.Credentials)
	assert.Equal(t, resp.Integration.ID, stored.ID)

	assert.Nil(t, f.sessions.Peek("sid-1"), "session must be consumed")
	f.provider.AssertExpectations(t)
}

func TestOAuthService_Callback_ReconnectReusesActiveRow(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	f.provider.On("ExchangeCode", mock.Anything, "code-1").Return(&domain.TokenBundle{AccessToken: "first"}, nil).Once()
	f.provider.On("ExchangeCode", mock.Anything, "code-2").Return(&domain.TokenBundle{AccessToken: "second"}, nil).Once()

	state := f.authorize(t, "sid-1", "user-1")
	first, err := f.service.Callback(ctx, "sid-1", driving.CallbackRequest{Code: "code-1", State: state})
	require.NoError(t, err)

	state = f.authorize(t, "sid-1", "user-1")
	second, err := f.service.Callback(ctx, "sid-1", driving.CallbackRequest{Code: "code-2", State: state})
	require.NoError(t, err)

	assert.Equal(t, first.Integration.ID, second.Integration.ID)

	rows, err := f.integrations.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "second", rows[0].Credentials)
	assert.True(t, rows[0].Active)
}

func TestOAuthService_Callback_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		req       func(state string) driving.CallbackRequest
		wantErr   error
	}{
		{
			name:      "state mismatch",
			sessionID: "sid-1",
			req:       func(string) driving.CallbackRequest { return driving.CallbackRequest{Code: "c", State: "forged"} },
			wantErr:   domain.ErrCSRFMismatch,
		},
		{
			name:      "state missing",
			sessionID: "sid-1",
			req:       func(string) driving.CallbackRequest { return driving.CallbackRequest{Code: "c"} },
			wantErr:   domain.ErrCSRFMismatch,
		},
		{
			name:      "no session",
			sessionID: "other-sid",
			req:       func(state string) driving.CallbackRequest { return driving.CallbackRequest{Code: "c", State: state} },
			wantErr:   domain.ErrCSRFMismatch,
		},
		{
			name:      "empty session id",
			sessionID: "",
			req:       func(state string) driving.CallbackRequest { return driving.CallbackRequest{Code: "c", State: state} },
			wantErr:   domain.ErrCSRFMismatch,
		},
		{
			name:      "code missing",
			sessionID: "sid-1",
			req:       func(state string) driving.CallbackRequest { return driving.CallbackRequest{State: state} },
			wantErr:   domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOAuthFixture(t)
			state := f.authorize(t, "sid-1", "user-1")

			_, err := f.service.Callback(context.Background(), tt.sessionID, tt.req(state))
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Zero(t, f.integrations.SaveCount(), "no credential may be written")
			f.provider.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
		})
	}
}

func TestOAuthService_Callback_ProviderError(t *testing.T) {
	f := newOAuthFixture(t)
	state := f.authorize(t, "sid-1", "user-1")

	_, err := f.service.Callback(context.Background(), "sid-1", driving.CallbackRequest{
		State:            state,
		Error:            "access_denied",
		ErrorDescription: "user cancelled",
	})

	var oerr *domain.OAuthError
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, "access_denied", oerr.Code)
	assert.Zero(t, f.integrations.SaveCount())
	assert.Nil(t, f.sessions.Peek("sid-1"))
}

func TestOAuthService_Callback_LogsFlowStatus(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		f := newOAuthFixture(t)
		state := f.authorize(t, "sid-1", "user-1")
		f.provider.On("ExchangeCode", mock.Anything, "code-1").
			Return(&domain.TokenBundle{AccessToken: "secret_abc", WorkspaceName: "Acme"}, nil).Once()

		_, err := f.service.Callback(context.Background(), "sid-1", driving.CallbackRequest{Code: "code-1", State: state})
		require.NoError(t, err)
		assert.Contains(t, f.logs.String(), `"status":"completed"`)
		assert.NotContains(t, f.logs.String(), "secret_abc")
	})

	t.Run("failed on state mismatch", func(t *testing.T) {
		f := newOAuthFixture(t)
		f.authorize(t, "sid-1", "user-1")

		_, err := f.service.Callback(context.Background(), "sid-1", driving.CallbackRequest{Code: "code-1", State: "forged"})
		require.ErrorIs(t, err, domain.ErrCSRFMismatch)
		assert.Contains(t, f.logs.String(), `"status":"failed"`)
		assert.NotContains(t, f.logs.String(), `"status":"completed"`)
	})

	t.Run("failed on exchange error", func(t *testing.T) {
		f := newOAuthFixture(t)
		state := f.authorize(t, "sid-1", "user-1")
		f.provider.On("ExchangeCode", mock.Anything, "code-1").
			Return(nil, domain.NewProviderError(domain.ErrExchangeFailed, 400, "invalid_grant")).Once()

		_, err := f.service.Callback(context.Background(), "sid-1", driving.CallbackRequest{Code: "code-1", State: state})
		require.Error(t, err)
		assert.Contains(t, f.logs.String(), `"status":"failed"`)
	})
}

func TestOAuthService_Callback_ExchangeFails(t *testing.T) {
	f := newOAuthFixture(t)
	state := f.authorize(t, "sid-1", "user-1")

	f.provider.On("ExchangeCode", mock.Anything, "code-1").
		Return(nil, domain.NewProviderError(domain.ErrExchangeFailed, 401, "unauthorized")).Once()

	_, err := f.service.Callback(context.Background(), "sid-1", driving.CallbackRequest{Code: "code-1", State: state})
	assert.ErrorIs(t, err, domain.ErrExchangeFailed)
	assert.Zero(t, f.integrations.SaveCount())
}

func TestOAuthService_Callback_Replay(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()
	state := f.authorize(t, "sid-1", "user-1")

	f.provider.On("ExchangeCode", mock.Anything, "code-1").Return(&domain.TokenBundle{AccessToken: "t"}, nil).Once()

	_, err := f.service.Callback(ctx, "sid-1", driving.CallbackRequest{Code: "code-1", State: state})
	require.NoError(t, err)

	_, err = f.service.Callback(ctx, "sid-1", driving.CallbackRequest{Code: "code-1", State: state})
	assert.ErrorIs(t, err, domain.ErrCSRFMismatch)
	assert.Equal(t, 1, f.integrations.SaveCount())
}

func TestOAuthService_Callback_ExpiredSession(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sessions.Save(ctx, &domain.OAuthSession{
		ID:        "sid-1",
		UserID:    "user-1",
		State:     "state-1",
		Status:    domain.OAuthFlowAwaitingCallback,
		ExpiresAt: time.Now().Add(-time.Second),
	}))

	_, err := f.service.Callback(ctx, "sid-1", driving.CallbackRequest{Code: "c", State: "state-1"})
	assert.ErrorIs(t, err, domain.ErrCSRFMismatch)
}

func TestOAuthService_Callback_SessionStoreError(t *testing.T) {
	f := newOAuthFixture(t)
	f.sessions.GetErr = errors.New("redis down")

	_, err := f.service.Callback(context.Background(), "sid-1", driving.CallbackRequest{Code: "c", State: "s"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCSRFMismatch)
}

func TestOAuthService_Disconnect(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	now := time.Now()
	for i, active := range []bool{true, true, false} {
		require.NoError(t, f.integrations.Save(ctx, &domain.Integration{
			ID:        fmt.Sprintf("int-%d", i),
			UserID:    "user-1",
			Provider:  domain.ProviderNotion,
			Active:    active,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, f.integrations.Save(ctx, &domain.Integration{ID: "other", UserID: "user-2", Provider: domain.ProviderNotion, Active: true}))

	resp, err := f.service.Disconnect(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Deactivated)

	found, err := f.integrations.FindActiveByUserAndProvider(ctx, "user-1", domain.ProviderNotion)
	require.NoError(t, err)
	assert.Nil(t, found)

	other, err := f.integrations.FindActiveByUserAndProvider(ctx, "user-2", domain.ProviderNotion)
	require.NoError(t, err)
	assert.NotNil(t, other)

	again, err := f.service.Disconnect(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, again.Deactivated)

	rows, err := f.integrations.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, rows, 3, "disconnect must not delete rows")
}

func TestOAuthService_Disconnect_Errors(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.Disconnect(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.integrations.Save(ctx, &domain.Integration{ID: "int-1", UserID: "user-1", Provider: domain.ProviderNotion, Active: true}))
	f.integrations.SaveErr = errors.New("db down")

	_, err = f.service.Disconnect(ctx, "user-1")
	assert.Error(t, err)
}

func TestOAuthService_CheckAuth(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	ok, err := f.service.CheckAuth(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.integrations.Save(ctx, &domain.Integration{ID: "int-1", UserID: "user-1", Provider: domain.ProviderNotion, Active: true}))

	ok, err = f.service.CheckAuth(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	f.integrations.FindErr = errors.New("db down")
	ok, err = f.service.CheckAuth(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.service.CheckAuth(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOAuthService_ConcurrentSessions(t *testing.T) {
	f := newOAuthFixture(t)
	ctx := context.Background()

	f.provider.On("ExchangeCode", mock.Anything, mock.Anything).Return(
		func(_ context.Context, code string) *domain.TokenBundle {
			return &domain.TokenBundle{AccessToken: "token-" + code}
		}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := fmt.Sprintf("sid-%d", i)
			user := fmt.Sprintf("user-%d", i)

			resp, err := f.service.Authorize(ctx, sid, user)
			if !assert.NoError(t, err) {
				return
			}
			_, err = f.service.Callback(ctx, sid, driving.CallbackRequest{Code: sid, State: resp.State})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		found, err := f.integrations.FindActiveByUserAndProvider(ctx, fmt.Sprintf("user-%d", i), domain.ProviderNotion)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, fmt.Sprintf("token-sid-%d", i), found.Credentials)
	}
}
