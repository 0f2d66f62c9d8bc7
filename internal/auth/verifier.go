// verifier.go -- The application verify callback wired into the strategy.
//
// Maps a fetched Discord profile onto a stored user, creating one on first
// login. Lives here rather than in the strategy package: what "verified"
// means is the application's decision, not the strategy's.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MGallo-Code/janus/internal/oauth"
	"github.com/MGallo-Code/janus/internal/store"
	"github.com/MGallo-Code/janus/internal/strategy"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// NewVerifier returns the verify callback for the Discord strategy.
// A profile without a user id is rejected (clean failure, not an error);
// store failures are errors and surface on the error channel.
func NewVerifier(ps Store) strategy.VerifyFunc {
	return func(ctx context.Context, _, _ string, profile *oauth.Profile) (any, string, error) {
		if profile.ID == "" {
			return nil, "profile document has no user id", nil
		}

		// Returning user -- refresh mutable profile fields, non-fatal.
		user, err := ps.GetUserByProvider(ctx, profile.Provider, profile.ID)
		if err == nil {
			if upErr := ps.UpdateOAuthProfile(ctx, user.ID,
				strOrNil(profile.Username), strOrNil(profile.GlobalName),
				strOrNil(profile.Email), strOrNil(avatarURL(profile)),
			); upErr != nil {
				slog.Warn("failed to refresh oauth profile", "error", upErr, "user_id", user.ID)
			}
			return user, "", nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, "", fmt.Errorf("looking up oauth user: %w", err)
		}

		// New user.
		userID, err := uuid.NewV7()
		if err != nil {
			return nil, "", fmt.Errorf("generating user id: %w", err)
		}
		username := strOrNil(profile.Username)
		globalName := strOrNil(profile.GlobalName)
		email := strOrNil(profile.Email)
		avatar := strOrNil(avatarURL(profile))
		if err := ps.CreateOAuthUser(ctx, userID, profile.Provider, profile.ID,
			username, globalName, email, avatar,
		); err != nil {
			// Unique violation: a concurrent login created the user first.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				existing, lookupErr := ps.GetUserByProvider(ctx, profile.Provider, profile.ID)
				if lookupErr != nil {
					return nil, "", fmt.Errorf("refetching oauth user after create race: %w", lookupErr)
				}
				return existing, "", nil
			}
			return nil, "", fmt.Errorf("creating oauth user: %w", err)
		}

		slog.Info("discord user created", "user_id", userID, "discord_id", profile.ID)
		return &store.User{
			ID:         userID,
			Provider:   profile.Provider,
			ProviderID: profile.ID,
			Username:   username,
			GlobalName: globalName,
			Email:      email,
			AvatarURL:  avatar,
		}, "", nil
	}
}

// avatarURL builds the CDN URL for the profile's avatar hash.
// Empty when the user has no custom avatar.
func avatarURL(p *oauth.Profile) string {
	if p.Avatar == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", p.ID, p.Avatar)
}

// strOrNil converts an empty string to nil; non-empty strings are returned as a pointer.
// Used to map optional profile fields to nullable DB columns.
func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
