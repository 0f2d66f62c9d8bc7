// handler.go -- HTTP handlers for the bearer-login and session endpoints.
//
// The login handler plays the host-framework role for the strategy: it
// adapts the HTTP request into carriers, runs one authentication attempt,
// and maps the single terminal disposition onto HTTP + session issuance.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MGallo-Code/janus/internal/store"
	"github.com/MGallo-Code/janus/internal/strategy"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// SessionCache defines session cache operations needed by auth handlers.
// Satisfied by *store.RedisStore -- defined here (at consumer) per Go convention.
type SessionCache interface {
	// GetSession retrieves cached session by token hash.
	GetSession(ctx context.Context, tokenHash string) (*store.CachedSession, error)

	// SetSession caches session with given TTL in seconds.
	SetSession(ctx context.Context, tokenHash string, sessionData store.Session, ttl int) error

	// DeleteSession removes session and its entry in the user tracking set.
	DeleteSession(ctx context.Context, tokenHash string, userID uuid.UUID) error

	// DeleteAllUserSessions removes all cached sessions for a user.
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error

	// CheckHealth pings the cache backend.
	CheckHealth(ctx context.Context) error
}

// Store defines database operations needed by auth handlers.
// Satisfied by *store.PostgresStore -- defined here (at consumer) per Go convention.
type Store interface {
	// GetUserByProvider fetches the user owning the given OAuth identity.
	// Returns pgx.ErrNoRows if no user holds it.
	GetUserByProvider(ctx context.Context, provider, providerID string) (*store.User, error)

	// GetUserByID fetches a user row by primary key.
	GetUserByID(ctx context.Context, id uuid.UUID) (*store.User, error)

	// CreateOAuthUser inserts a new user identified by an OAuth identity.
	CreateOAuthUser(ctx context.Context, id uuid.UUID, provider, providerID string, username, globalName, email, avatarURL *string) error

	// UpdateOAuthProfile refreshes profile columns; nil fields are left untouched.
	UpdateOAuthProfile(ctx context.Context, id uuid.UUID, username, globalName, email, avatarURL *string) error

	// CreateSession inserts new session row with token hash and CSRF token.
	CreateSession(ctx context.Context, id uuid.UUID, userID uuid.UUID, tokenHash []byte, csrfToken []byte, expiresAt time.Time, ip *string, userAgent *string) error

	// GetSessionByTokenHash fetches valid (non-expired) session by token hash.
	// Returns pgx.ErrNoRows if not found or expired.
	GetSessionByTokenHash(ctx context.Context, tokenHash []byte) (*store.Session, error)

	// DeleteSession removes single session row by token hash.
	DeleteSession(ctx context.Context, tokenHash []byte) error

	// DeleteAllUserSessions removes all sessions for a user.
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error

	// CheckHealth pings the database.
	CheckHealth(ctx context.Context) error
}

// RateLimiter checks and records rate limit state for a given key and policy.
// Satisfied by *store.RedisRateLimiter -- defined here per Go convention.
type RateLimiter interface {
	// Allow checks whether the action is within policy, records the attempt.
	// Returns nil if allowed; ErrRateLimitExceeded if locked out.
	Allow(ctx context.Context, key string, policy store.RateLimit) error
}

// LoginPolicy is the rate limit applied per client IP on login attempts.
// Applied before any credential resolution or outbound Discord calls.
var LoginPolicy = store.RateLimit{
	MaxAttempts: 20,
	Window:      10 * time.Minute,
	LockoutTTL:  15 * time.Minute,
}

// AuthHandler holds dependencies for all HTTP handlers and middleware.
type AuthHandler struct {
	Strategy   *strategy.Strategy
	PS         Store
	RS         SessionCache
	RL         RateLimiter
	SessionTTL time.Duration
}

// LoginDiscord handles POST /login/discord -- authenticates a request
// carrying Discord bearer credentials (body, query, headers, or an RFC 6750
// Authorization header) and issues a cookie session.
// Returns 200 with user_id + csrf_token, 401 when credentials are missing or
// rejected, 429 when rate limited, 500 for transport or server errors.
func (h *AuthHandler) LoginDiscord(w http.ResponseWriter, r *http.Request) {
	// RemoteAddr includes port -- rate limit key wants the bare IP.
	ipAddr, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ipAddr = r.RemoteAddr
	}
	if err := h.RL.Allow(r.Context(), fmt.Sprintf("login:ip:%s", ipAddr), LoginPolicy); err != nil {
		if errors.Is(err, store.ErrRateLimitExceeded) {
			logInfo(r, "login rate limited", "ip", ipAddr)
			TooManyRequests(w)
			return
		}
		InternalServerError(w, r, err)
		return
	}

	disp := h.Strategy.Authenticate(r.Context(), StrategyRequest(r))
	switch disp.Kind {
	case strategy.KindFail:
		logInfo(r, "login failed", "reason", disp.Info)
		Unauthorized(w, r, disp.Info)
		return
	case strategy.KindError:
		logError(r, "login errored", "error", disp.Err)
		InternalServerError(w, r, disp.Err)
		return
	}

	user, ok := disp.User.(*store.User)
	if !ok {
		InternalServerError(w, r, fmt.Errorf("verify callback returned %T, want *store.User", disp.User))
		return
	}

	token, tokenHash, err := GenerateToken()
	if err != nil {
		InternalServerError(w, r, err)
		return
	}
	csrfToken, err := GenerateCSRFToken()
	if err != nil {
		InternalServerError(w, r, err)
		return
	}
	sessionID, err := uuid.NewV7()
	if err != nil {
		InternalServerError(w, r, err)
		return
	}

	expiresAt := time.Now().Add(h.SessionTTL)
	ttl := int(h.SessionTTL.Seconds())
	userAgent := r.UserAgent()

	if err := h.PS.CreateSession(r.Context(), sessionID, user.ID, tokenHash[:], csrfToken[:], expiresAt, &ipAddr, &userAgent); err != nil {
		logError(r, "failed to create session in database", "error", err)
		InternalServerError(w, r, err)
		return
	}

	// Cache in Redis -- non-fatal; Postgres is source of truth.
	if err := h.RS.SetSession(r.Context(), base64.RawURLEncoding.EncodeToString(tokenHash[:]), store.Session{
		ID:        sessionID,
		UserID:    user.ID,
		TokenHash: tokenHash[:],
		CSRFToken: csrfToken[:],
		ExpiresAt: expiresAt,
	}, ttl); err != nil {
		logWarn(r, "failed to cache session in redis", "error", err)
	}

	SetSessionCookie(w, *token, expiresAt)
	logInfo(r, "discord user logged in", "user_id", user.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(struct {
		UserID    string `json:"user_id"`
		CSRFToken string `json:"csrf_token"`
	}{user.ID.String(), base64.RawURLEncoding.EncodeToString(csrfToken[:])})
}

// Me handles GET /me -- returns the authenticated user's stored profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		logError(r, "me called without user_id in context")
		InternalServerError(w, r, errors.New("missing session context"))
		return
	}

	user, err := h.PS.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Session exists but the user row is gone (deleted account).
			Unauthorized(w, r, "unauthorized")
			return
		}
		InternalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(struct {
		UserID     string  `json:"user_id"`
		Provider   string  `json:"provider"`
		ProviderID string  `json:"provider_id"`
		Username   *string `json:"username,omitempty"`
		GlobalName *string `json:"global_name,omitempty"`
		Email      *string `json:"email,omitempty"`
		AvatarURL  *string `json:"avatar_url,omitempty"`
	}{user.ID.String(), user.Provider, user.ProviderID, user.Username, user.GlobalName, user.Email, user.AvatarURL})
}

// Logout handles POST /logout -- ends the authenticated session.
// Deletes from Redis (non-fatal) then Postgres (fatal), clears cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		logError(r, "logout called without user_id in context")
		InternalServerError(w, r, errors.New("missing session context"))
		return
	}

	tokenHash, ok := TokenHashFromContext(r.Context())
	if !ok {
		InternalServerError(w, r, errors.New("missing session context"))
		return
	}

	redisKey := base64.RawURLEncoding.EncodeToString(tokenHash)
	if err := h.RS.DeleteSession(r.Context(), redisKey, userID); err != nil {
		logWarn(r, "failed to delete session from redis", "error", err)
	}

	if err := h.PS.DeleteSession(r.Context(), tokenHash); err != nil {
		logError(r, "failed to delete session from database", "error", err)
		InternalServerError(w, r, err)
		return
	}

	ClearSessionCookie(w)
	logInfo(r, "user logged out", "user_id", userID)
	OK(w, "logged out")
}

// LogoutAll handles POST /logout-all -- ends every session for the
// authenticated user. Deletes all sessions from Redis (non-fatal) then
// Postgres (fatal), clears cookie.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		logError(r, "logout-all called without user_id in context")
		InternalServerError(w, r, errors.New("missing session context"))
		return
	}

	if err := h.RS.DeleteAllUserSessions(r.Context(), userID); err != nil {
		logWarn(r, "failed to delete all sessions from redis", "error", err)
	}

	if err := h.PS.DeleteAllUserSessions(r.Context(), userID); err != nil {
		logError(r, "failed to delete all sessions from database", "error", err)
		InternalServerError(w, r, err)
		return
	}

	ClearSessionCookie(w)
	logInfo(r, "user logged out of all devices", "user_id", userID)
	OK(w, "logged out of all devices")
}
