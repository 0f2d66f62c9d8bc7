// profile.go -- Remote user-profile retrieval and normalization.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
)

// ProviderName tags every Profile produced by this package.
const ProviderName = "discord"

// Profile is the normalized record built from Discord's /users/@me document.
// Known fields are broken out; everything the provider returned -- including
// fields added after this struct was written -- survives in Fields, and the
// verbatim response body in Raw. A Profile is created fresh per fetch and
// owned by the caller; nothing here is persisted or shared.
type Profile struct {
	Provider      string // always "discord"
	ID            string
	Username      string
	GlobalName    string
	Discriminator string
	Avatar        string
	Email         string
	Verified      bool
	MFAEnabled    bool
	Locale        string
	PremiumType   int
	Flags         int
	Banner        string
	AccentColor   int

	Fields map[string]any // every field of the source document
	Raw    []byte         // verbatim response body
}

// FetchProfile retrieves profileURL through client with the given access
// token and parses the body into a provider-tagged Profile.
//
// Transport failures come back wrapped with "Failed to fetch user profile".
// Parse failures preserve the underlying encoding/json error type (reachable
// via errors.As) so callers can tell a malformed document from transport
// trouble; no Profile is produced in either case.
func FetchProfile(ctx context.Context, client Client, profileURL, accessToken string) (*Profile, error) {
	body, err := client.Get(ctx, profileURL, accessToken)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch user profile: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("parsing user profile: %w", err)
	}

	var doc struct {
		ID            string `json:"id"`
		Username      string `json:"username"`
		GlobalName    string `json:"global_name"`
		Discriminator string `json:"discriminator"`
		Avatar        string `json:"avatar"`
		Email         string `json:"email"`
		Verified      bool   `json:"verified"`
		MFAEnabled    bool   `json:"mfa_enabled"`
		Locale        string `json:"locale"`
		PremiumType   int    `json:"premium_type"`
		Flags         int    `json:"flags"`
		Banner        string `json:"banner"`
		AccentColor   int    `json:"accent_color"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing user profile: %w", err)
	}

	return &Profile{
		Provider:      ProviderName,
		ID:            doc.ID,
		Username:      doc.Username,
		GlobalName:    doc.GlobalName,
		Discriminator: doc.Discriminator,
		Avatar:        doc.Avatar,
		Email:         doc.Email,
		Verified:      doc.Verified,
		MFAEnabled:    doc.MFAEnabled,
		Locale:        doc.Locale,
		PremiumType:   doc.PremiumType,
		Flags:         doc.Flags,
		Banner:        doc.Banner,
		AccentColor:   doc.AccentColor,
		Fields:        fields,
		Raw:           body,
	}, nil
}
