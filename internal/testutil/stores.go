// stores.go
//
// Shared mock implementations of auth.Store, auth.SessionCache, and
// auth.RateLimiter. Imported by test files across packages to avoid
// duplicate mock definitions.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/MGallo-Code/janus/internal/store"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// MockStore implements auth.Store for tests.
//
// Always stateful: Users and Sessions are maps, like a real store.
// Use *Err fields to inject errors for specific operations.
type MockStore struct {
	// Error injection -- zero value means no error.
	GetUserErr           error
	CreateUserErr        error
	UpdateProfileErr     error
	CreateSessionErr     error
	GetSessionErr        error
	DeleteSessionErr     error
	DeleteAllSessionsErr error
	HealthErr            error

	Users    map[string]*store.User    // keyed by provider + "/" + provider_id
	Sessions map[string]*store.Session // keyed by string(tokenHash)

	mu sync.Mutex
}

// NewMockStore returns a MockStore seeded with the given users, indexed by
// their OAuth identity.
func NewMockStore(users ...*store.User) *MockStore {
	ms := &MockStore{
		Users:    make(map[string]*store.User),
		Sessions: make(map[string]*store.Session),
	}
	for _, u := range users {
		ms.Users[u.Provider+"/"+u.ProviderID] = u
	}
	return ms
}

func (m *MockStore) GetUserByProvider(_ context.Context, provider, providerID string) (*store.User, error) {
	if m.GetUserErr != nil {
		return nil, m.GetUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[provider+"/"+providerID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *MockStore) GetUserByID(_ context.Context, id uuid.UUID) (*store.User, error) {
	if m.GetUserErr != nil {
		return nil, m.GetUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *MockStore) CreateOAuthUser(_ context.Context, id uuid.UUID, provider, providerID string, username, globalName, email, avatarURL *string) error {
	if m.CreateUserErr != nil {
		return m.CreateUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[provider+"/"+providerID] = &store.User{
		ID:         id,
		Provider:   provider,
		ProviderID: providerID,
		Username:   username,
		GlobalName: globalName,
		Email:      email,
		AvatarURL:  avatarURL,
	}
	return nil
}

func (m *MockStore) UpdateOAuthProfile(_ context.Context, id uuid.UUID, username, globalName, email, avatarURL *string) error {
	if m.UpdateProfileErr != nil {
		return m.UpdateProfileErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.ID != id {
			continue
		}
		if username != nil {
			u.Username = username
		}
		if globalName != nil {
			u.GlobalName = globalName
		}
		if email != nil {
			u.Email = email
		}
		if avatarURL != nil {
			u.AvatarURL = avatarURL
		}
	}
	return nil
}

func (m *MockStore) CreateSession(_ context.Context, id, userID uuid.UUID, tokenHash, csrfToken []byte, expiresAt time.Time, ip, userAgent *string) error {
	if m.CreateSessionErr != nil {
		return m.CreateSessionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[string(tokenHash)] = &store.Session{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		CSRFToken: csrfToken,
		ExpiresAt: expiresAt,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	return nil
}

func (m *MockStore) GetSessionByTokenHash(_ context.Context, tokenHash []byte) (*store.Session, error) {
	if m.GetSessionErr != nil {
		return nil, m.GetSessionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[string(tokenHash)]
	if !ok || time.Now().After(s.ExpiresAt) {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (m *MockStore) DeleteSession(_ context.Context, tokenHash []byte) error {
	if m.DeleteSessionErr != nil {
		return m.DeleteSessionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, string(tokenHash))
	return nil
}

func (m *MockStore) DeleteAllUserSessions(_ context.Context, userID uuid.UUID) error {
	if m.DeleteAllSessionsErr != nil {
		return m.DeleteAllSessionsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, s := range m.Sessions {
		if s.UserID == userID {
			delete(m.Sessions, k)
		}
	}
	return nil
}

func (m *MockStore) CheckHealth(_ context.Context) error {
	return m.HealthErr
}

// MockCache implements auth.SessionCache for tests.
// Stateful map keyed by the base64 token hash; *Err fields inject failures.
type MockCache struct {
	GetErr       error
	SetErr       error
	DeleteErr    error
	DeleteAllErr error
	HealthErr    error

	Sessions map[string]*store.CachedSession

	mu sync.Mutex
}

// NewMockCache returns an empty, ready-to-use MockCache.
func NewMockCache() *MockCache {
	return &MockCache{Sessions: make(map[string]*store.CachedSession)}
}

func (m *MockCache) GetSession(_ context.Context, tokenHash string) (*store.CachedSession, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[tokenHash]
	if !ok {
		return nil, store.ErrCacheMiss
	}
	return s, nil
}

func (m *MockCache) SetSession(_ context.Context, tokenHash string, sessionData store.Session, _ int) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[tokenHash] = &store.CachedSession{
		UserID:    sessionData.UserID,
		CSRFToken: sessionData.CSRFToken,
		ExpiresAt: sessionData.ExpiresAt,
	}
	return nil
}

func (m *MockCache) DeleteSession(_ context.Context, tokenHash string, _ uuid.UUID) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, tokenHash)
	return nil
}

func (m *MockCache) DeleteAllUserSessions(_ context.Context, userID uuid.UUID) error {
	if m.DeleteAllErr != nil {
		return m.DeleteAllErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, s := range m.Sessions {
		if s.UserID == userID {
			delete(m.Sessions, k)
		}
	}
	return nil
}

func (m *MockCache) CheckHealth(_ context.Context) error {
	return m.HealthErr
}

// MockRateLimiter implements auth.RateLimiter for tests.
// Returns AllowErr on every call; zero value always allows.
type MockRateLimiter struct {
	AllowErr error
	Calls    int
}

func (m *MockRateLimiter) Allow(_ context.Context, _ string, _ store.RateLimit) error {
	m.Calls++
	return m.AllowErr
}
