// strategy.go -- Strategy construction and configuration.
//
// The strategy composes an injected oauth.Client rather than subclassing a
// transport; internal/oauth owns the wire details.
package strategy

import (
	"context"
	"errors"

	"github.com/MGallo-Code/janus/internal/oauth"
)

// Default field names searched in each carrier.
const (
	DefaultAccessTokenField  = "access_token"
	DefaultRefreshTokenField = "refresh_token"
)

// VerifyFunc is the application callback invoked after a successful profile
// fetch. The access and refresh tokens are passed exactly as resolved (or as
// returned by the refresh exchange). Returning a nil user with a nil error
// signals a clean authentication failure; info carries the reason either way.
type VerifyFunc func(ctx context.Context, accessToken, refreshToken string, profile *oauth.Profile) (user any, info string, err error)

// VerifyWithRequestFunc is VerifyFunc with the originating Request prepended,
// for callbacks that need carrier data beyond the credentials themselves.
type VerifyWithRequestFunc func(ctx context.Context, req *Request, accessToken, refreshToken string, profile *oauth.Profile) (user any, info string, err error)

// Config holds the strategy's immutable configuration. Resolved once in New;
// never mutated afterwards, so one Strategy is safe to share across requests.
type Config struct {
	// ClientID is required; New fails fast without it. ClientSecret is
	// optional -- when absent, refresh exchanges fail at the token endpoint
	// with an invalid-credentials error rather than here.
	ClientID     string
	ClientSecret string

	// Field names searched in each carrier.
	// Default: access_token / refresh_token.
	AccessTokenField  string
	RefreshTokenField string

	// Lookups is the ordered carrier list consulted by credential resolution.
	// Earlier carriers win. Defaults to DefaultLookups (body, query, header).
	Lookups []Carrier

	// BearerFallback enables parsing "Authorization: Bearer <token>" as a
	// secondary access-token source after the ordered carrier search misses.
	// An explicit field match always beats the bearer scheme.
	BearerFallback bool

	// RefreshFallback enables exchanging a lone refresh token for a fresh
	// token pair. When disabled, a request carrying only a refresh token
	// fails rather than erroring.
	RefreshFallback bool

	// ProfileURL overrides the profile endpoint. Defaults to Discord's
	// /users/@me. Used by tests to point at a local server.
	ProfileURL string
}

// Strategy resolves bearer credentials from a Request, drives refresh
// exchange and profile fetch through an oauth.Client, and dispatches the
// result to the verify callback. All fields are set at construction and never
// mutated; everything else is request-scoped, so no locking is needed.
type Strategy struct {
	cfg           Config
	client        oauth.Client
	verify        VerifyFunc
	verifyWithReq VerifyWithRequestFunc
}

// New validates cfg, applies defaults, and returns a ready Strategy.
// Misconfiguration fails here, at construction, never at request time.
func New(cfg Config, client oauth.Client, verify VerifyFunc) (*Strategy, error) {
	if verify == nil {
		return nil, errors.New("strategy: verify callback is required")
	}
	s, err := newStrategy(cfg, client)
	if err != nil {
		return nil, err
	}
	s.verify = verify
	return s, nil
}

// NewWithRequest is New for callbacks that receive the originating Request
// as their first argument.
func NewWithRequest(cfg Config, client oauth.Client, verify VerifyWithRequestFunc) (*Strategy, error) {
	if verify == nil {
		return nil, errors.New("strategy: verify callback is required")
	}
	s, err := newStrategy(cfg, client)
	if err != nil {
		return nil, err
	}
	s.verifyWithReq = verify
	return s, nil
}

func newStrategy(cfg Config, client oauth.Client) (*Strategy, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("strategy: client id is required")
	}
	if client == nil {
		return nil, errors.New("strategy: oauth client is required")
	}
	if cfg.AccessTokenField == "" {
		cfg.AccessTokenField = DefaultAccessTokenField
	}
	if cfg.RefreshTokenField == "" {
		cfg.RefreshTokenField = DefaultRefreshTokenField
	}
	if len(cfg.Lookups) == 0 {
		cfg.Lookups = DefaultLookups
	}
	if cfg.ProfileURL == "" {
		cfg.ProfileURL = oauth.DiscordProfileURL
	}
	return &Strategy{cfg: cfg, client: client}, nil
}
