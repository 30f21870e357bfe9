package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Context keys
type contextKey string

const sessionContextKey contextKey = "session_id"

// SessionConfig configures the browser-session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// DefaultSessionConfig returns sensible defaults
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName: "cloud_session",
		TTL:        24 * time.Hour,
		Secure:     false,
	}
}

// SessionMiddleware makes sure every request carries a browser session id.
// The id lives in a signed HttpOnly cookie; a fresh one is issued when the
// cookie is missing or does not verify.
type SessionMiddleware struct {
	tokens SessionTokens
	cfg    SessionConfig
	logger *slog.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware
func NewSessionMiddleware(tokens SessionTokens, cfg SessionConfig, logger *slog.Logger) *SessionMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionConfig().CookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionConfig().TTL
	}
	return &SessionMiddleware{
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
	}
}

// Handler resolves the session id and stores it in the request context.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := m.existingSession(r)
		if sessionID == "" {
			sessionID = uuid.NewString()
			token, err := m.tokens.GenerateToken(sessionID, m.cfg.TTL)
			if err != nil {
				m.logger.Error("failed to sign session cookie", "error", err)
				writeError(w, http.StatusInternalServerError, "failed to start session")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     m.cfg.CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(m.cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   m.cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) existingSession(r *http.Request) string {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	sessionID, err := m.tokens.ParseToken(cookie.Value)
	if err != nil {
		m.logger.Debug("discarding invalid session cookie", "error", err)
		return ""
	}
	return sessionID
}

// GetSessionID retrieves the browser session id from request context
func GetSessionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	sessionID, _ := ctx.Value(sessionContextKey).(string)
	return sessionID
}
