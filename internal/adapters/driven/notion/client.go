package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ProviderClient = (*Client)(nil)

const (
	DefaultBaseURL    = "https://api.notion.com/v1"
	DefaultAPIVersion = "2022-06-28"
	DefaultTimeout    = 30 * time.Second

	// maxErrorBody caps how much of an error response is kept for diagnostics.
	maxErrorBody = 4096
)

// Config holds the OAuth application and API settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// BaseURL is the API root; AuthURL and TokenURL default to paths under it.
	BaseURL    string
	AuthURL    string
	TokenURL   string
	APIVersion string
	Timeout    time.Duration
}

// Client talks to the Notion REST API.
type Client struct {
	oauth      *oauth2.Config
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Notion client. Zero-valued Config fields take defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.AuthURL == "" {
		cfg.AuthURL = cfg.BaseURL + "/oauth/authorize"
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = cfg.BaseURL + "/oauth/token"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &versionTransport{
				base:    http.DefaultTransport,
				version: cfg.APIVersion,
			},
		},
		logger: logger.With("component", "notion"),
	}
}

// versionTransport stamps every request with the Notion-Version header.
type versionTransport struct {
	base    http.RoundTripper
	version string
}

func (t *versionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Notion-Version", t.version)
	return t.base.RoundTrip(req)
}

// AuthorizationURL builds the consent URL for a user-owned integration.
func (c *Client) AuthorizationURL(state string) (string, error) {
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("owner", "user")), nil
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.TokenBundle, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return nil, domain.NewProviderError(domain.ErrExchangeFailed, rerr.Response.StatusCode, truncate(rerr.Body))
		}
		return nil, domain.WrapProviderError(domain.ErrExchangeFailed, err)
	}

	return &domain.TokenBundle{
		AccessToken:   token.AccessToken,
		WorkspaceID:   extraString(token, "workspace_id"),
		WorkspaceName: extraString(token, "workspace_name"),
		WorkspaceIcon: extraString(token, "workspace_icon"),
		BotID:         extraString(token, "bot_id"),
	}, nil
}

func extraString(token *oauth2.Token, key string) string {
	if v, ok := token.Extra(key).(string); ok {
		return v
	}
	return ""
}

// CreatePage creates a child page under parentID.
func (c *Client) CreatePage(ctx context.Context, parentID, title, content, accessToken string) (string, error) {
	body := createPageBody(parentID, title, content)

	var page struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/pages", accessToken, body, &page, domain.ErrPageCreateFailed); err != nil {
		return "", err
	}
	if page.ID == "" {
		return "", domain.WrapProviderError(domain.ErrPageCreateFailed, errors.New("response has no page id"))
	}
	return page.ID, nil
}

type richText struct {
	Type string `json:"type"`
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

func newRichText(s string) []richText {
	rt := richText{Type: "text"}
	rt.Text.Content = s
	return []richText{rt}
}

func createPageBody(parentID, title, content string) map[string]any {
	body := map[string]any{
		"parent": map[string]any{"page_id": parentID},
		"properties": map[string]any{
			"title": map[string]any{"title": newRichText(title)},
		},
	}
	if content != "" {
		body["children"] = []any{
			map[string]any{
				"object": "block",
				"type":   "paragraph",
				"paragraph": map[string]any{
					"rich_text": newRichText(content),
				},
			},
		}
	}
	return body
}

// GetPage returns the page object as delivered by the API.
func (c *Client) GetPage(ctx context.Context, pageID, accessToken string) (map[string]any, error) {
	var page map[string]any
	if err := c.do(ctx, http.MethodGet, "/pages/"+url.PathEscape(pageID), accessToken, nil, &page, domain.ErrPageFetchFailed); err != nil {
		return nil, err
	}
	return page, nil
}

// ListPages returns the page search result as delivered by the API.
func (c *Client) ListPages(ctx context.Context, accessToken string) (map[string]any, error) {
	body := map[string]any{
		"filter": map[string]any{"property": "object", "value": "page"},
	}

	var result map[string]any
	if err := c.do(ctx, http.MethodPost, "/search", accessToken, body, &result, domain.ErrPageListFailed); err != nil {
		return nil, err
	}
	return result, nil
}

// ValidateToken reports whether /users/me accepts the token.
func (c *Client) ValidateToken(ctx context.Context, accessToken string) bool {
	err := c.do(ctx, http.MethodGet, "/users/me", accessToken, nil, nil, domain.ErrProvider)
	if err != nil {
		c.logger.Debug("token validation failed", "error", err)
		return false
	}
	return true
}

// UploadFile is not offered by the Notion API.
func (c *Client) UploadFile(ctx context.Context, r io.Reader, fileName, mimeType, accessToken string) (string, error) {
	c.logger.Warn("file upload requested but not supported", "file_name", fileName)
	return "", fmt.Errorf("upload file: %w", domain.ErrUnsupported)
}

// FileViewURL is not offered by the Notion API.
func (c *Client) FileViewURL(ctx context.Context, fileID, accessToken string) (string, error) {
	c.logger.Warn("file view URL requested but not supported", "file_id", fileID)
	return "", fmt.Errorf("file view url: %w", domain.ErrUnsupported)
}

// DeleteFile is not offered by the Notion API.
func (c *Client) DeleteFile(ctx context.Context, fileID, accessToken string) error {
	c.logger.Warn("file delete requested but not supported", "file_id", fileID)
	return fmt.Errorf("delete file: %w", domain.ErrUnsupported)
}

// UpdateFile is not offered by the Notion API.
func (c *Client) UpdateFile(ctx context.Context, fileID string, r io.Reader, fileName, mimeType, accessToken string) (string, error) {
	c.logger.Warn("file update requested but not supported", "file_id", fileID)
	return "", fmt.Errorf("update file: %w", domain.ErrUnsupported)
}

// do performs an authenticated API call. Failures are reported as a
// domain.ProviderError of the given kind. out may be nil.
func (c *Client) do(ctx context.Context, method, path, accessToken string, in, out any, kind error) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return domain.WrapProviderError(kind, fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return domain.WrapProviderError(kind, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapProviderError(kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("notion API error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", string(data),
		)
		return domain.NewProviderError(kind, resp.StatusCode, string(data))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapProviderError(kind, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
