// discord_test.go -- unit tests for DiscordClient against a local httptest server.
package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTokenServer returns an httptest server acting as the token endpoint.
// It records the parsed form of the last request and serves the given JSON.
func newTokenServer(t *testing.T, status int, body string) (*httptest.Server, *map[string][]string) {
	t.Helper()
	var lastForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		lastForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &lastForm
}

// --- ExchangeRefreshToken ---

// TestExchangeRefreshToken_Rotated verifies the refresh grant is sent with the
// right parameters and a rotated pair is returned.
func TestExchangeRefreshToken_Rotated(t *testing.T) {
	srv, form := newTokenServer(t, http.StatusOK,
		`{"access_token":"new-access","refresh_token":"new-refresh","token_type":"Bearer","expires_in":604800}`)
	c := NewDiscordClientURLs("client-id", "client-secret", DiscordAuthURL, srv.URL)

	pair, err := c.ExchangeRefreshToken(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("ExchangeRefreshToken: %v", err)
	}

	if pair.AccessToken != "new-access" {
		t.Errorf("access token: expected new-access, got %q", pair.AccessToken)
	}
	if pair.RefreshToken != "new-refresh" {
		t.Errorf("refresh token: expected new-refresh, got %q", pair.RefreshToken)
	}

	got := *form
	if v := got["grant_type"]; len(v) != 1 || v[0] != "refresh_token" {
		t.Errorf("grant_type: expected refresh_token, got %v", v)
	}
	if v := got["refresh_token"]; len(v) != 1 || v[0] != "old-refresh" {
		t.Errorf("refresh_token: expected old-refresh, got %v", v)
	}
	if v := got["client_id"]; len(v) != 1 || v[0] != "client-id" {
		t.Errorf("client_id: expected client-id, got %v", v)
	}
	if v := got["client_secret"]; len(v) != 1 || v[0] != "client-secret" {
		t.Errorf("client_secret: expected client-secret, got %v", v)
	}
}

// TestExchangeRefreshToken_NotRotated verifies the original refresh token is
// echoed back when the provider omits one from the response.
func TestExchangeRefreshToken_NotRotated(t *testing.T) {
	srv, _ := newTokenServer(t, http.StatusOK,
		`{"access_token":"new-access","token_type":"Bearer"}`)
	c := NewDiscordClientURLs("client-id", "client-secret", DiscordAuthURL, srv.URL)

	pair, err := c.ExchangeRefreshToken(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("ExchangeRefreshToken: %v", err)
	}

	if pair.AccessToken != "new-access" {
		t.Errorf("access token: expected new-access, got %q", pair.AccessToken)
	}
	if pair.RefreshToken != "old-refresh" {
		t.Errorf("refresh token: expected original echoed back, got %q", pair.RefreshToken)
	}
}

// TestExchangeRefreshToken_Error verifies a token-endpoint rejection surfaces
// as an error.
func TestExchangeRefreshToken_Error(t *testing.T) {
	srv, _ := newTokenServer(t, http.StatusUnauthorized, `{"error":"invalid_grant"}`)
	c := NewDiscordClientURLs("client-id", "client-secret", DiscordAuthURL, srv.URL)

	if _, err := c.ExchangeRefreshToken(context.Background(), "revoked"); err == nil {
		t.Fatal("expected error for rejected grant")
	}
}

// --- Get ---

func TestGet(t *testing.T) {
	t.Run("token travels in the Authorization header", func(t *testing.T) {
		var gotAuth string
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotQuery = r.URL.RawQuery
			w.Write([]byte(`{"id":"1"}`))
		}))
		defer srv.Close()

		c := NewDiscordClient("client-id", "client-secret")
		body, err := c.Get(context.Background(), srv.URL, "the-token")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}

		if gotAuth != "Bearer the-token" {
			t.Errorf("Authorization: expected %q, got %q", "Bearer the-token", gotAuth)
		}
		if strings.Contains(gotQuery, "the-token") {
			t.Error("access token must never appear in the query string")
		}
		if string(body) != `{"id":"1"}` {
			t.Errorf("body: expected raw response, got %q", body)
		}
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"401: Unauthorized"}`))
		}))
		defer srv.Close()

		c := NewDiscordClient("client-id", "client-secret")
		if _, err := c.Get(context.Background(), srv.URL, "bad-token"); err == nil {
			t.Fatal("expected error for 401 response")
		}
	})
}

// --- AuthCodeURL ---

func TestAuthCodeURL(t *testing.T) {
	c := NewDiscordClient("client-id", "client-secret")

	t.Run("default scope", func(t *testing.T) {
		u := c.AuthCodeURL("state-1")
		if !strings.HasPrefix(u, DiscordAuthURL) {
			t.Errorf("expected %q prefix, got %q", DiscordAuthURL, u)
		}
		if !strings.Contains(u, "state=state-1") {
			t.Errorf("expected state parameter, got %q", u)
		}
		if !strings.Contains(u, "scope=identify") {
			t.Errorf("expected identify scope, got %q", u)
		}
	})

	t.Run("explicit scopes", func(t *testing.T) {
		u := c.AuthCodeURL("state-2", "identify", "email")
		if !strings.Contains(u, "scope=identify+email") {
			t.Errorf("expected identify+email scope, got %q", u)
		}
	})
}
