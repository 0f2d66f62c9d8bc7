// provider.go -- OAuth2 client capability and shared types.
package oauth

import "context"

// TokenPair is the result of a refresh-token exchange: a fresh access token
// plus the (possibly rotated) refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Client is the OAuth2 transport capability consumed by the strategy.
// Implementations own the token endpoint and authenticated resource fetches;
// they do not retry -- a failed call is reported once to the caller.
type Client interface {
	// Get issues an authenticated GET to url with the access token sent as an
	// RFC 6750 bearer credential in the Authorization header -- never as a
	// query parameter. Returns the raw response body.
	Get(ctx context.Context, url, accessToken string) ([]byte, error)

	// ExchangeRefreshToken trades refreshToken for a fresh token pair via the
	// token endpoint using grant_type=refresh_token.
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}
