// oauthclient.go
//
// Shared mock implementation of oauth.Client for strategy and handler tests.
package testutil

import (
	"context"
	"sync"

	"github.com/MGallo-Code/janus/internal/oauth"
)

// MockOAuthClient implements oauth.Client with canned responses.
// Records the tokens it was called with so tests can assert the strategy
// passed credentials through unchanged.
type MockOAuthClient struct {
	// Get behavior.
	ProfileBody []byte
	GetErr      error

	// ExchangeRefreshToken behavior.
	Pair        *oauth.TokenPair
	ExchangeErr error

	// Recorded calls.
	GetURLs       []string
	GetTokens     []string
	ExchangedWith []string
	ExchangeCalls int
	GetCalls      int

	mu sync.Mutex
}

func (m *MockOAuthClient) Get(_ context.Context, url, accessToken string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	m.GetURLs = append(m.GetURLs, url)
	m.GetTokens = append(m.GetTokens, accessToken)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.ProfileBody, nil
}

func (m *MockOAuthClient) ExchangeRefreshToken(_ context.Context, refreshToken string) (*oauth.TokenPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExchangeCalls++
	m.ExchangedWith = append(m.ExchangedWith, refreshToken)
	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	return m.Pair, nil
}
