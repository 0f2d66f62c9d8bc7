// discord.go -- Discord OAuth2 client implementation.
// Token-endpoint calls go through golang.org/x/oauth2; profile fetches are
// plain authenticated GETs.
package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// Discord's fixed OAuth2 endpoints. Tests point a client at a local server
// via NewDiscordClientURLs instead of overriding these.
const (
	DiscordAuthURL    = "https://discord.com/api/oauth2/authorize"
	DiscordTokenURL   = "https://discord.com/api/oauth2/token"
	DiscordProfileURL = "https://discord.com/api/users/@me"
)

// maxResponseBytes caps how much of a remote response body is read (1 MB).
const maxResponseBytes = 1 << 20

// DiscordClient implements Client against Discord's OAuth2 API.
type DiscordClient struct {
	config     *oauth2.Config
	httpClient *http.Client // nil means http.DefaultClient
}

// NewDiscordClient creates a client for Discord's production endpoints.
// An empty clientSecret is accepted here -- refresh exchanges will then fail
// at the token endpoint with an invalid-credentials error.
func NewDiscordClient(clientID, clientSecret string) *DiscordClient {
	return NewDiscordClientURLs(clientID, clientSecret, DiscordAuthURL, DiscordTokenURL)
}

// NewDiscordClientURLs creates a client against custom authorization and
// token endpoints. Used by tests to target a local httptest server.
func NewDiscordClientURLs(clientID, clientSecret, authURL, tokenURL string) *DiscordClient {
	return &DiscordClient{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// AuthCodeURL returns the Discord consent page URL with state and the given
// scopes embedded. Scopes default to "identify" when none are provided.
func (c *DiscordClient) AuthCodeURL(state string, scopes ...string) string {
	if len(scopes) == 0 {
		scopes = []string{"identify"}
	}
	cfg := *c.config
	cfg.Scopes = scopes
	return cfg.AuthCodeURL(state)
}

// Get fetches url with the access token attached as a bearer credential.
// The token travels in the Authorization header, never the query string.
// Non-200 responses are errors; this endpoint has no partial-success shape.
func (c *DiscordClient) Get(ctx context.Context, url, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return body, nil
}

// ExchangeRefreshToken trades refreshToken for a fresh pair via the token
// endpoint (grant_type=refresh_token). When Discord rotates the refresh
// token, the returned pair carries the new one; otherwise the original is
// echoed back by the oauth2 token source.
func (c *DiscordClient) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	ts := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}, nil
}

func (c *DiscordClient) http() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}
