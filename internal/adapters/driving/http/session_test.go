package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/custodia-labs/cloud-integration/internal/adapters/driven/auth"
)

type failingTokens struct{}

func (failingTokens) GenerateToken(string, time.Duration) (string, error) {
	return "", errors.New("signing failed")
}

func (failingTokens) ParseToken(string) (string, error) {
	return "", errors.New("invalid")
}

func sessionEcho(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetSessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware_IssuesCookie(t *testing.T) {
	cfg := SessionConfig{CookieName: "sid_cookie", TTL: time.Hour, Secure: true}
	middleware := NewSessionMiddleware(auth.NewAdapter("secret"), cfg, discardLogger())

	var got string
	rr := httptest.NewRecorder()
	middleware.Handler(sessionEcho(&got)).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if got == "" {
		t.Fatal("expected a session id in context")
	}

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "sid_cookie" || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected cookie attributes %+v", c)
	}
	if c.MaxAge != 3600 {
		t.Errorf("expected MaxAge 3600, got %d", c.MaxAge)
	}
	if c.Value == got {
		t.Error("cookie must carry a signed token, not the raw session id")
	}
}

func TestSessionMiddleware_ReusesValidCookie(t *testing.T) {
	tokens := auth.NewAdapter("secret")
	middleware := NewSessionMiddleware(tokens, DefaultSessionConfig(), discardLogger())

	token, err := tokens.GenerateToken("sid-known", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "cloud_session", Value: token})

	var got string
	rr := httptest.NewRecorder()
	middleware.Handler(sessionEcho(&got)).ServeHTTP(rr, req)

	if got != "sid-known" {
		t.Errorf("expected sid-known, got %q", got)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("expected no new cookie for a valid session")
	}
}

func TestSessionMiddleware_ReplacesForgedCookie(t *testing.T) {
	forged, _ := auth.NewAdapter("attacker").GenerateToken("sid-victim", time.Hour)
	middleware := NewSessionMiddleware(auth.NewAdapter("secret"), DefaultSessionConfig(), discardLogger())

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "cloud_session", Value: forged})

	var got string
	rr := httptest.NewRecorder()
	middleware.Handler(sessionEcho(&got)).ServeHTTP(rr, req)

	if got == "sid-victim" || got == "" {
		t.Errorf("expected a fresh session id, got %q", got)
	}
	if len(rr.Result().Cookies()) != 1 {
		t.Error("expected a replacement cookie")
	}
}

func TestSessionMiddleware_SigningFailure(t *testing.T) {
	middleware := NewSessionMiddleware(failingTokens{}, DefaultSessionConfig(), discardLogger())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	rr := httptest.NewRecorder()
	middleware.Handler(handler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestGetSessionID_EmptyContext(t *testing.T) {
	if got := GetSessionID(context.Background()); got != "" {
		t.Errorf("expected empty session id, got %q", got)
	}
}
