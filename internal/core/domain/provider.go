package domain

// ProviderType identifies a third-party cloud provider
type ProviderType string

const (
	ProviderNotion ProviderType = "notion"
)

// SupportedProviders returns the providers this service can connect to
func SupportedProviders() []ProviderType {
	return []ProviderType{ProviderNotion}
}

// IsSupported returns true if the provider type is known.
func (p ProviderType) IsSupported() bool {
	for _, s := range SupportedProviders() {
		if p == s {
			return true
		}
	}
	return false
}

// TokenBundle is the result of a successful authorization code exchange.
// Only AccessToken is persisted; the workspace fields are informational.
type TokenBundle struct {
	AccessToken   string `json:"-"`
	WorkspaceID   string `json:"workspace_id,omitempty"`
	WorkspaceName string `json:"workspace_name,omitempty"`
	WorkspaceIcon string `json:"workspace_icon,omitempty"`
	BotID         string `json:"bot_id,omitempty"`
}
