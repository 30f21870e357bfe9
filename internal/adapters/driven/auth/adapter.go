package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSessionID is returned when a token carries no session id.
var ErrMissingSessionID = errors.New("session token has no sid")

// sessionClaims is the payload of a browser-session cookie.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Adapter signs and verifies browser-session tokens with HMAC-SHA256.
type Adapter struct {
	secret []byte
	issuer string
}

// NewAdapter creates a new session token adapter with the given secret.
func NewAdapter(secret string) *Adapter {
	return &Adapter{
		secret: []byte(secret),
		issuer: "cloud-integration",
	}
}

// GenerateToken returns a signed token carrying sessionID that expires
// after ttl.
func (a *Adapter) GenerateToken(sessionID string, ttl time.Duration) (string, error) {
	if sessionID == "" {
		return "", ErrMissingSessionID
	}

	now := time.Now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseToken validates a token and returns the session id it carries.
func (a *Adapter) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(a.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	if claims.SessionID == "" {
		return "", ErrMissingSessionID
	}
	return claims.SessionID, nil
}
