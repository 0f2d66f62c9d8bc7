// Package store handles all database and cache interactions.
//
// postgres.go -- pgxpool connection setup and queries.
// Creates a connection pool at startup, shared across all handlers.
// All queries use parameterized statements (no string concatenation).
package store

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore wraps a pgx connection pool for all durable queries.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a verified connection pool and returns a
// ready-to-use store. Call once at startup from main.go; the returned store
// is safe for concurrent use.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool}, nil
}

// Close shuts down the connection pool and releases all resources.
// Call via defer in main.go after creating the store.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// CheckHealth pings the database. Used by the health endpoint.
func (s *PostgresStore) CheckHealth(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// GetUserByProvider fetches the user owning the given OAuth identity.
// Returns pgx.ErrNoRows when no user holds it.
func (s *PostgresStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, provider, provider_id, username, global_name, email, avatar_url, created_at, updated_at
		 FROM users WHERE provider = $1 AND provider_id = $2`,
		provider, providerID,
	).Scan(&u.ID, &u.Provider, &u.ProviderID, &u.Username, &u.GlobalName, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches a user row by primary key.
// Returns pgx.ErrNoRows when the user does not exist.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, provider, provider_id, username, global_name, email, avatar_url, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Provider, &u.ProviderID, &u.Username, &u.GlobalName, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateOAuthUser inserts a new user identified by an OAuth identity.
// The caller generates the UUID v7 before calling this. Returns the raw pgx
// error; handlers inspect it for unique violations (duplicate identity).
func (s *PostgresStore) CreateOAuthUser(ctx context.Context, id uuid.UUID, provider, providerID string, username, globalName, email, avatarURL *string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, provider, provider_id, username, global_name, email, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, provider, providerID, username, globalName, email, avatarURL)
	return err
}

// UpdateOAuthProfile refreshes the profile columns from a new provider
// document. Only non-nil values overwrite; nil leaves the column untouched.
func (s *PostgresStore) UpdateOAuthProfile(ctx context.Context, id uuid.UUID, username, globalName, email, avatarURL *string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET
			username    = COALESCE($2, username),
			global_name = COALESCE($3, global_name),
			email       = COALESCE($4, email),
			avatar_url  = COALESCE($5, avatar_url),
			updated_at  = now()
		 WHERE id = $1`,
		id, username, globalName, email, avatarURL)
	return err
}

// CreateSession inserts a new session row with token hash and CSRF token.
func (s *PostgresStore) CreateSession(ctx context.Context, id, userID uuid.UUID, tokenHash, csrfToken []byte, expiresAt time.Time, ip, userAgent *string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, csrf_token, expires_at, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, tokenHash, csrfToken, expiresAt, ip, userAgent)
	return err
}

// GetSessionByTokenHash fetches a valid (non-expired) session by token hash.
// Returns pgx.ErrNoRows if not found or expired.
func (s *PostgresStore) GetSessionByTokenHash(ctx context.Context, tokenHash []byte) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, token_hash, csrf_token, expires_at, ip_address, user_agent, created_at
		 FROM sessions WHERE token_hash = $1 AND expires_at > now()`,
		tokenHash,
	).Scan(&sess.ID, &sess.UserID, &sess.TokenHash, &sess.CSRFToken, &sess.ExpiresAt, &sess.IPAddress, &sess.UserAgent, &sess.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteSession removes a single session row by token hash.
func (s *PostgresStore) DeleteSession(ctx context.Context, tokenHash []byte) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash)
	return err
}

// DeleteAllUserSessions removes all sessions for a user.
func (s *PostgresStore) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM sessions WHERE user_id = $1", userID)
	return err
}

// CleanupExpiredSessions deletes sessions expired for longer than retention.
// Returns the number of rows removed. Run periodically from main.go.
func (s *PostgresStore) CleanupExpiredSessions(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM sessions WHERE expires_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
