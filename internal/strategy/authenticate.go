// authenticate.go -- The credential-resolution and exchange orchestrator.
//
// One authentication attempt is a single sequential chain: resolve tokens,
// optionally exchange a lone refresh token, fetch the profile, then hand off
// to the verify callback. The refresh exchange and profile fetch never run
// concurrently; the fetch only starts once a resolved access token exists.
// No retries -- retry policy belongs to the underlying transport.
package strategy

import (
	"context"
	"fmt"

	"github.com/MGallo-Code/janus/internal/oauth"
)

// Caller-visible failure messages for the credential-resolution stage.
// These are stable strings; handlers surface them verbatim.
const (
	MsgNoTokens = "Neither access token nor refresh token could be parsed from the request"

	MsgNoAccessToken = "Access token could not be parsed from the request (refresh token exchange disabled)"
)

// Authenticate runs one authentication attempt against req and returns
// exactly one Disposition. Credentials are resolved fresh per call -- nothing
// is cached across requests.
func (s *Strategy) Authenticate(ctx context.Context, req *Request) Disposition {
	accessToken, haveAccess := s.locateAccessToken(req)
	refreshToken, haveRefresh := Locate(req, s.cfg.RefreshTokenField, s.cfg.Lookups)

	switch {
	case !haveAccess && !haveRefresh:
		return Fail(MsgNoTokens)

	case !haveAccess && !s.cfg.RefreshFallback:
		return Fail(MsgNoAccessToken)

	case !haveAccess:
		pair, err := s.client.ExchangeRefreshToken(ctx, refreshToken)
		if err != nil {
			return Error(fmt.Errorf("Failed to exchange refresh token for access token: %w", err))
		}
		// The exchange replaces both tokens; the refresh token may have
		// been rotated by the provider.
		accessToken = pair.AccessToken
		refreshToken = pair.RefreshToken
	}

	profile, err := oauth.FetchProfile(ctx, s.client, s.cfg.ProfileURL, accessToken)
	if err != nil {
		return Error(err)
	}

	var (
		user any
		info string
		verr error
	)
	if s.verifyWithReq != nil {
		user, info, verr = s.verifyWithReq(ctx, req, accessToken, refreshToken, profile)
	} else {
		user, info, verr = s.verify(ctx, accessToken, refreshToken, profile)
	}
	switch {
	case verr != nil:
		return Error(verr)
	case user == nil:
		return Fail(info)
	}
	return Success(user, info)
}

// locateAccessToken runs the ordered carrier search for the access-token
// field, then -- only on a miss, and only when enabled -- falls back to the
// RFC 6750 bearer header. Explicit field matches always beat the bearer
// scheme.
func (s *Strategy) locateAccessToken(req *Request) (string, bool) {
	if v, ok := Locate(req, s.cfg.AccessTokenField, s.cfg.Lookups); ok {
		return v, true
	}
	if !s.cfg.BearerFallback {
		return "", false
	}
	raw, ok := HeaderValue(req.carrier(CarrierHeader), "Authorization")
	if !ok {
		return "", false
	}
	return ParseBearer(raw)
}
