package domain

import "time"

// Integration is a stored credential linking a user to a provider account.
// A user has at most one active integration per provider; inactive rows are
// kept for history.
type Integration struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	Provider ProviderType `json:"provider"`

	// Credentials holds the provider access token (never serialized)
	Credentials string `json:"-"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IntegrationSummary is a safe view without the credential.
type IntegrationSummary struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Provider       ProviderType `json:"provider"`
	Active         bool         `json:"active"`
	HasCredentials bool         `json:"has_credentials"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ToSummary converts Integration to IntegrationSummary.
func (i *Integration) ToSummary() *IntegrationSummary {
	return &IntegrationSummary{
		ID:             i.ID,
		UserID:         i.UserID,
		Provider:       i.Provider,
		Active:         i.Active,
		HasCredentials: i.Credentials != "",
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// IsActiveFor returns true if the integration is active for the given provider.
func (i *Integration) IsActiveFor(provider ProviderType) bool {
	return i.Active && i.Provider == provider
}

// AccessToken returns the stored credential.
func (i *Integration) AccessToken() string {
	return i.Credentials
}
