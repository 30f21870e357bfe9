package domain

import "time"

// DefaultOAuthSessionTTL bounds how long an authorization attempt stays valid.
const DefaultOAuthSessionTTL = 10 * time.Minute

// OAuthFlowStatus is the state of one authorization attempt.
type OAuthFlowStatus string

const (
	OAuthFlowAwaitingCallback OAuthFlowStatus = "awaiting_callback"
	OAuthFlowCompleted        OAuthFlowStatus = "completed"
	OAuthFlowFailed           OAuthFlowStatus = "failed"
)

// OAuthSession is the per-browser-session record written by authorize and
// consumed exactly once by the callback.
type OAuthSession struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	State     string          `json:"state"`
	Status    OAuthFlowStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// IsExpired returns true if the session can no longer complete a callback.
func (s *OAuthSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TTL returns the remaining lifetime, zero once expired.
func (s *OAuthSession) TTL() time.Duration {
	d := time.Until(s.ExpiresAt)
	if d < 0 {
		return 0
	}
	return d
}
