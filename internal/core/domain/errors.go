package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a required field is missing or malformed
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConnected indicates the user has no active credential for the provider
	ErrNotConnected = errors.New("user is not connected to the provider")

	// ErrUnsupported indicates the provider does not support the operation
	ErrUnsupported = errors.New("operation not supported by provider")

	// ErrCSRFMismatch indicates the OAuth callback state does not match the session
	ErrCSRFMismatch = errors.New("oauth state mismatch")

	// ErrProvider matches every ProviderError regardless of kind
	ErrProvider = errors.New("provider request failed")

	// Provider failure kinds carried by ProviderError
	ErrExchangeFailed   = errors.New("token exchange failed")
	ErrPageCreateFailed = errors.New("page create failed")
	ErrPageFetchFailed  = errors.New("page fetch failed")
	ErrPageListFailed   = errors.New("page list failed")
)

// ProviderError describes a failed call to the third-party API.
// StatusCode is zero when the request never produced a response.
type ProviderError struct {
	Kind       error
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrProvider or the error's kind.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider || target == e.Kind
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError builds a ProviderError for a non-success HTTP response.
func NewProviderError(kind error, statusCode int, body string) *ProviderError {
	return &ProviderError{Kind: kind, StatusCode: statusCode, Body: body}
}

// WrapProviderError builds a ProviderError for a transport or decoding failure.
func WrapProviderError(kind error, err error) *ProviderError {
	return &ProviderError{Kind: kind, Err: err}
}

// OAuthError is an error reported by the provider on the OAuth callback.
type OAuthError struct {
	Code        string `json:"error" example:"access_denied"`
	Description string `json:"error_description,omitempty" example:"The user denied access"`
}

func (e *OAuthError) Error() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}
	return e.Code
}

// InvalidInput wraps ErrInvalidInput with a field-specific message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
