package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrNotConnected", ErrNotConnected, "user is not connected to the provider"},
		{"ErrUnsupported", ErrUnsupported, "operation not supported by provider"},
		{"ErrCSRFMismatch", ErrCSRFMismatch, "oauth state mismatch"},
		{"ErrExchangeFailed", ErrExchangeFailed, "token exchange failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrNotConnected,
		ErrUnsupported,
		ErrCSRFMismatch,
		ErrProvider,
		ErrExchangeFailed,
		ErrPageCreateFailed,
		ErrPageFetchFailed,
		ErrPageListFailed,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestProviderError_Is(t *testing.T) {
	err := fmt.Errorf("exchange: %w", NewProviderError(ErrExchangeFailed, 401, `{"error":"unauthorized"}`))

	if !errors.Is(err, ErrProvider) {
		t.Error("expected ProviderError to match ErrProvider")
	}
	if !errors.Is(err, ErrExchangeFailed) {
		t.Error("expected ProviderError to match its kind")
	}
	if errors.Is(err, ErrPageCreateFailed) {
		t.Error("ProviderError should not match another kind")
	}

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatal("expected errors.As to find ProviderError")
	}
	if perr.StatusCode != 401 {
		t.Errorf("expected status 401, got %d", perr.StatusCode)
	}
}

func TestProviderError_Message(t *testing.T) {
	err := NewProviderError(ErrPageFetchFailed, 404, "object_not_found")
	want := "page fetch failed: status 404: object_not_found"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	wrapped := WrapProviderError(ErrPageListFailed, errors.New("connection refused"))
	if wrapped.Error() != "page list failed: connection refused" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if !errors.Is(wrapped, ErrPageListFailed) {
		t.Error("expected wrapped error to match its kind")
	}
}

func TestOAuthError(t *testing.T) {
	err := &OAuthError{Code: "access_denied", Description: "user cancelled"}
	if err.Error() != "access_denied: user cancelled" {
		t.Errorf("unexpected message %q", err.Error())
	}

	bare := &OAuthError{Code: "access_denied"}
	if bare.Error() != "access_denied" {
		t.Errorf("unexpected message %q", bare.Error())
	}
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("%s is required", "userId")
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected InvalidInput to wrap ErrInvalidInput")
	}
	if err.Error() != "invalid input: userId is required" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
